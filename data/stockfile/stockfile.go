package stockfile

import (
	"encoding/json"
	"log/slog"
	"os"

	"github.com/lirakuid/liraku_bot/internal/model"
	"github.com/shopspring/decimal"
)

// File keys, kept compatible with the original stock_data.json format.
const (
	keyRupiah = "rupiah"
	keyLira   = "lira"
)

// Store persists the full balance set as a small JSON document. The format
// is owned by the ledger: read once at startup, overwritten wholesale on
// every mutation.
type Store struct {
	path string
}

func New(path string) *Store {
	return &Store{path: path}
}

// DefaultBalances is the documented fallback when the stock file is missing
// or unreadable at startup.
func DefaultBalances() map[model.Currency]decimal.Decimal {
	return map[model.Currency]decimal.Decimal{
		model.IDR: decimal.NewFromInt(2_500_000),
		model.TRY: decimal.Zero,
	}
}

func (s *Store) Load() map[model.Currency]decimal.Decimal {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		slog.Warn("can't read stock file, using default balances", slog.String("path", s.path), slog.String("err", err.Error()))
		return DefaultBalances()
	}

	fileData := map[string]decimal.Decimal{}
	if err := json.Unmarshal(raw, &fileData); err != nil {
		slog.Warn("corrupt stock file, using default balances", slog.String("path", s.path), slog.String("err", err.Error()))
		return DefaultBalances()
	}

	balances := DefaultBalances()
	if v, ok := fileData[keyRupiah]; ok {
		balances[model.IDR] = v
	}
	if v, ok := fileData[keyLira]; ok {
		balances[model.TRY] = v
	}

	slog.Info("stock loaded", slog.String("rupiah", balances[model.IDR].String()), slog.String("lira", balances[model.TRY].String()))

	return balances
}

func (s *Store) Save(balances map[model.Currency]decimal.Decimal) error {
	fileData := map[string]decimal.Decimal{
		keyRupiah: balances[model.IDR],
		keyLira:   balances[model.TRY],
	}

	raw, err := json.Marshal(fileData)
	if err != nil {
		return err
	}

	return os.WriteFile(s.path, raw, 0644)
}
