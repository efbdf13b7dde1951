package rateModel

import "encoding/json"

// PairConversion is the exchangerate-api v6 /pair response. ConversionRate is
// kept raw and parsed into a decimal by the caller to avoid float drift.
type PairConversion struct {
	Result         string      `json:"result"`
	ErrorType      string      `json:"error-type"`
	BaseCode       string      `json:"base_code"`
	TargetCode     string      `json:"target_code"`
	ConversionRate json.Number `json:"conversion_rate"`
}
