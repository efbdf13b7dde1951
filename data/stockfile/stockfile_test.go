package stockfile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/lirakuid/liraku_bot/internal/model"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	store := New(filepath.Join(t.TempDir(), "nope.json"))

	balances := store.Load()

	assert.True(t, balances[model.IDR].Equal(decimal.NewFromInt(2_500_000)))
	assert.True(t, balances[model.TRY].IsZero())
}

func TestLoad_CorruptFileReturnsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stock.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0644))

	balances := New(path).Load()

	assert.True(t, balances[model.IDR].Equal(decimal.NewFromInt(2_500_000)))
	assert.True(t, balances[model.TRY].IsZero())
}

func TestLoad_PartialFileFallsBackPerKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stock.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"lira": 750.5}`), 0644))

	balances := New(path).Load()

	assert.True(t, balances[model.IDR].Equal(decimal.NewFromInt(2_500_000)))
	assert.True(t, balances[model.TRY].Equal(decimal.RequireFromString("750.5")))
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stock.json")
	store := New(path)

	err := store.Save(map[model.Currency]decimal.Decimal{
		model.IDR: decimal.NewFromInt(1_750_000),
		model.TRY: decimal.RequireFromString("320.25"),
	})
	require.NoError(t, err)

	balances := store.Load()
	assert.True(t, balances[model.IDR].Equal(decimal.NewFromInt(1_750_000)))
	assert.True(t, balances[model.TRY].Equal(decimal.RequireFromString("320.25")))
}
