package model

// Currency is one of the two currencies the desk trades. The set is closed:
// ledger operations panic on anything else.
type Currency string

const (
	IDR Currency = "IDR"
	TRY Currency = "TRY"
)
