package utils

import (
	"strings"

	"github.com/shopspring/decimal"
)

// FormatCurrency formats an amount as whole dong with comma thousand separators.
// Example: 50000 -> "50,000đ"
func FormatCurrency(amount decimal.Decimal) string {
	s := amount.Round(0).StringFixed(0)
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")

	var b strings.Builder
	for i, r := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	if neg {
		return "-" + b.String() + "đ"
	}
	return b.String() + "đ"
}
