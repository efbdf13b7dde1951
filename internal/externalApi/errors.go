package externalApi

import "errors"

var (
	ErrUnavailable = errors.New("external api unavailable")
)
