package model

import "github.com/shopspring/decimal"

// Simulation is the rate ladder shown in the simulation view, quoted with
// the hidden margin already applied.
type Simulation struct {
	BuyRungs  []Quote
	SellRungs []Quote
}

// StockOverview is the stock-check view: both balances plus, when the rate
// fetch succeeded, their margin-quoted equivalents in the other currency.
type StockOverview struct {
	Rupiah              decimal.Decimal
	Lira                decimal.Decimal
	RupiahEquivalentTRY *decimal.Decimal
	LiraEquivalentIDR   *decimal.Decimal
}
