package model

import "github.com/shopspring/decimal"

type Flow int

const (
	FlowNone Flow = iota
	FlowBuy
	FlowSell
	FlowStockUpdate
)

type State int

const (
	DefaultState State = iota

	ExpectingBuyAmount
	ExpectingBuyName
	ExpectingBuyIban
	ExpectingBuyConfirmation
	ExpectingBuyPaymentAck

	ExpectingSellAmount
	ExpectingSellName
	ExpectingSellAccount
	ExpectingSellConfirmation
	ExpectingSellTransferAck

	ExpectingStockDelta
)

// Session holds one chat's in-progress conversation. Fields are only filled
// by the step that validated them; later steps must not assume presence.
type Session struct {
	Flow          Flow
	State         State
	History       []State
	Amount        decimal.Decimal
	QuotedAmount  decimal.Decimal
	RawRate       decimal.Decimal
	Name          string
	Destination   string
	StockCurrency Currency
}

// Advance moves to the next state, remembering the current one for Back.
func (s *Session) Advance(next State) {
	s.History = append(s.History, s.State)
	s.State = next
}

// StepBack pops the previous state off the history. Returns false when there
// is nothing to go back to (caller should fall through to the main menu).
func (s *Session) StepBack() bool {
	if len(s.History) == 0 {
		return false
	}
	s.State = s.History[len(s.History)-1]
	s.History = s.History[:len(s.History)-1]
	return true
}

// Reset drops all collected fields and returns the session to idle.
func (s *Session) Reset() {
	*s = Session{}
}
