// Package core holds the domain model, the statistics engine and the money
// parsing/formatting helpers shared by every backend and the web layer.
//
// Amounts are plain float64 dollars; no rounding happens before display
// formatting.
package core

import (
	"strconv"
	"strings"
)

// ParseAmount converts a form field to a non-negative dollar amount.
// It accepts both dot (12.34) and comma (12,34) decimal separators.
// An empty string parses as zero, matching an untouched form field.
func ParseAmount(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	s = strings.ReplaceAll(s, ",", ".")
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	if f < 0 {
		return 0, ErrNegativeAmount
	}
	return f, nil
}

// ParseHours converts a form field to a non-negative duration in hours.
func ParseHours(s string) (float64, error) {
	f, err := ParseAmount(s)
	if err != nil {
		return 0, ErrInvalidDuration
	}
	return f, nil
}

// FormatDollars renders an amount for display: two decimals, thousands
// separators and a dollar prefix, e.g. -1234.5 -> "-$1,234.50".
func FormatDollars(amount float64) string {
	neg := amount < 0
	if neg {
		amount = -amount
	}
	s := strconv.FormatFloat(amount, 'f', 2, 64)

	intPart, fracPart, _ := strings.Cut(s, ".")
	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	out := "$" + b.String() + "." + fracPart
	if neg {
		return "-" + out
	}
	return out
}

// FormatPercent renders a ratio already expressed in percent, e.g. 13.636 ->
// "13.64%".
func FormatPercent(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64) + "%"
}
