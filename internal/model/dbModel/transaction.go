package dbModel

import (
	"time"

	"github.com/shopspring/decimal"
)

type Transaction struct {
	ID          int64           `db:"transaction_id"`
	CreatedAt   time.Time       `db:"dt_create"`
	Name        string          `db:"name"`
	Destination string          `db:"destination"`
	AmountIDR   decimal.Decimal `db:"amount_idr"`
	AmountTRY   decimal.Decimal `db:"amount_try"`
	Status      string          `db:"status"`
	Username    string          `db:"username"`
	UserID      int64           `db:"user_id"`
	Flow        string          `db:"flow"`
}
