// Package export renders quotes as PDF and Excel documents.
package export

import (
	"strings"

	"github.com/shopspring/decimal"
)

// FormatUSD formats an amount as US dollars, e.g. "$1,234.56" or "-$12.00".
func FormatUSD(amount float64) string {
	sign, digits := split(decimal.NewFromFloat(amount).Round(2).StringFixed(2))
	whole, frac, _ := strings.Cut(digits, ".")
	return sign + "$" + group(whole) + "." + frac
}

// FormatSqft formats an area rounded to whole square feet, e.g. "1,250 sq ft".
func FormatSqft(sqft float64) string {
	sign, digits := split(decimal.NewFromFloat(sqft).Round(0).StringFixed(0))
	return sign + group(digits) + " sq ft"
}

func split(fixed string) (sign, digits string) {
	if strings.HasPrefix(fixed, "-") {
		sign, fixed = "-", fixed[1:]
	}
	if strings.Trim(fixed, "0.") == "" {
		sign = ""
	}
	return sign, fixed
}

// group inserts thousands separators into a run of digits.
func group(whole string) string {
	var b strings.Builder
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	return b.String()
}
