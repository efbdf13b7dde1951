package stockledger

import "errors"

var (
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrWouldGoNegative   = errors.New("stock would go negative")
)
