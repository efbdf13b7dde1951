package service

import "errors"

var (
	ErrRateUnavailable    = errors.New("exchange rate unavailable")
	ErrInvalidAmount      = errors.New("invalid amount")
	ErrBelowMinimum       = errors.New("amount below minimum")
	ErrInvalidName        = errors.New("invalid name")
	ErrInvalidDestination = errors.New("invalid destination")
	ErrIncompleteSession  = errors.New("incomplete session data")
)
