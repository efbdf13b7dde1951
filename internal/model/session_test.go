package model

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSession_AdvancePushesHistory(t *testing.T) {
	s := Session{Flow: FlowBuy, State: ExpectingBuyAmount}

	s.Advance(ExpectingBuyName)
	s.Advance(ExpectingBuyIban)

	assert.Equal(t, ExpectingBuyIban, s.State)
	assert.Equal(t, []State{ExpectingBuyAmount, ExpectingBuyName}, s.History)
}

func TestSession_StepBackPreservesCollectedFields(t *testing.T) {
	s := Session{Flow: FlowBuy, State: ExpectingBuyAmount}
	s.Amount = decimal.NewFromInt(500_000)
	s.QuotedAmount = decimal.NewFromInt(975_000)
	s.Advance(ExpectingBuyName)
	s.Name = "Budi Santoso"
	s.Advance(ExpectingBuyIban)

	require.True(t, s.StepBack())

	assert.Equal(t, ExpectingBuyName, s.State)
	assert.Equal(t, "Budi Santoso", s.Name)
	assert.True(t, s.Amount.Equal(decimal.NewFromInt(500_000)))
	assert.True(t, s.QuotedAmount.Equal(decimal.NewFromInt(975_000)))
}

func TestSession_StepBackOnEmptyHistory(t *testing.T) {
	s := Session{Flow: FlowBuy, State: ExpectingBuyAmount}

	assert.False(t, s.StepBack())
	assert.Equal(t, ExpectingBuyAmount, s.State)
}

func TestSession_Reset(t *testing.T) {
	s := Session{Flow: FlowSell, State: ExpectingSellConfirmation, Name: "Siti"}
	s.Advance(ExpectingSellTransferAck)

	s.Reset()

	assert.Equal(t, FlowNone, s.Flow)
	assert.Equal(t, DefaultState, s.State)
	assert.Empty(t, s.History)
	assert.Empty(t, s.Name)
}
