package telebotConverter

import (
	"strings"

	"github.com/shopspring/decimal"
)

// groupThousands inserts '.' separators into a plain integer string.
func groupThousands(s string) string {
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}

	var sb strings.Builder
	for i, r := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			sb.WriteByte('.')
		}
		sb.WriteRune(r)
	}

	if neg {
		return "-" + sb.String()
	}
	return sb.String()
}

// FormatIDR renders a rupiah amount, e.g. Rp1.500.000.
func FormatIDR(amount decimal.Decimal) string {
	return "Rp" + groupThousands(amount.RoundDown(0).StringFixed(0))
}

// FormatTRY renders a lira amount, e.g. ₺1.250,75.
func FormatTRY(amount decimal.Decimal) string {
	fixed := amount.StringFixed(2)
	intPart, fracPart, _ := strings.Cut(fixed, ".")
	return "₺" + groupThousands(intPart) + "," + fracPart
}

// FormatAmount picks the right rendering for the currency code.
func FormatAmount(amount decimal.Decimal, currency string) string {
	if currency == "TRY" {
		return FormatTRY(amount)
	}
	return FormatIDR(amount)
}
