package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Quote is an ephemeral converted amount. RawRate is kept for the operator
// view only and must never reach the end user.
type Quote struct {
	SourceAmount   decimal.Decimal
	SourceCurrency Currency
	QuotedAmount   decimal.Decimal
	QuotedCurrency Currency
	RawRate        decimal.Decimal
}

// Transaction is immutable once built at settlement acknowledgment.
type Transaction struct {
	CreatedAt   time.Time
	Name        string
	Destination string
	AmountIDR   decimal.Decimal
	AmountTRY   decimal.Decimal
	Status      string
	Username    string
	UserID      int64
	Flow        Flow
}

const StatusPendingConfirmation = "Menunggu Konfirmasi"

func (f Flow) Label() string {
	switch f {
	case FlowBuy:
		return "Beli Lira"
	case FlowSell:
		return "Jual Lira"
	case FlowStockUpdate:
		return "Update Stok"
	default:
		return "-"
	}
}
