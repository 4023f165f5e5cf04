// Package core holds the domain model of the debt ledger: money and date
// normalization, debt and payment entities, status derivation and the pure
// summary math. It has no dependencies outside the standard library.
package core

import (
	"strconv"
	"strings"
	"unicode"
)

// Money is a rupiah amount in fixed-point cents (two decimals).
// All arithmetic in the engine happens on cents; floats only appear at the
// presentation boundary.
type Money struct {
	Cents int64
}

// ParseDecimalToCents converts a free-form decimal string to cents.
//
// It tolerates both decimal separators ("12.34" and "12,34") as well as
// thousands separators ("1.234.567,89", "1,234,567.89", "1 250 000").
// When both '.' and ',' appear, the one occurring last is the decimal
// separator and the other is stripped. Half-up rounding is applied on the
// third decimal digit. Returns ErrInvalidAmount for anything unparseable,
// negative or zero.
func ParseDecimalToCents(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidAmount
	}
	if strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		return 0, ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, " ", "")

	lastDot := strings.LastIndex(s, ".")
	lastComma := strings.LastIndex(s, ",")
	switch {
	case lastDot >= 0 && lastComma >= 0:
		// The later of the two is the decimal separator.
		if lastComma > lastDot {
			s = strings.ReplaceAll(s, ".", "")
			s = strings.Replace(s, ",", ".", 1)
		} else {
			s = strings.ReplaceAll(s, ",", "")
		}
	case lastComma >= 0:
		if strings.Count(s, ",") > 1 {
			// Multiple commas can only be thousands separators.
			s = strings.ReplaceAll(s, ",", "")
		} else {
			s = strings.Replace(s, ",", ".", 1)
		}
	case lastDot >= 0:
		if strings.Count(s, ".") > 1 {
			s = strings.ReplaceAll(s, ".", "")
		} else if groupLike(s, lastDot) {
			// A single dot followed by exactly three digits is ambiguous;
			// "1.250" reads as one thousand two hundred fifty rupiah.
			s = strings.ReplaceAll(s, ".", "")
		}
	}

	parts := strings.Split(s, ".")
	if len(parts) > 2 {
		return 0, ErrInvalidAmount
	}
	intPart := parts[0]
	fracPart := ""
	if len(parts) == 2 {
		fracPart = parts[1]
	}
	if intPart == "" {
		intPart = "0"
	}
	for _, r := range intPart {
		if !unicode.IsDigit(r) {
			return 0, ErrInvalidAmount
		}
	}
	for _, r := range fracPart {
		if !unicode.IsDigit(r) {
			return 0, ErrInvalidAmount
		}
	}

	iv, err := strconv.ParseInt(intPart, 10, 64)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	const maxSafeInt64 = (1<<63 - 1) / 100
	if iv > maxSafeInt64 {
		return 0, ErrInvalidAmount
	}

	// First two fractional digits, half-up on the third.
	var fracCents int64
	if len(fracPart) > 0 {
		fracCents = int64(fracPart[0]-'0') * 10
		if len(fracPart) > 1 {
			fracCents += int64(fracPart[1] - '0')
			if len(fracPart) > 2 && fracPart[2] >= '5' {
				fracCents++
			}
		}
	}

	cents := iv*100 + fracCents
	if cents <= 0 {
		return 0, ErrInvalidAmount
	}
	return cents, nil
}

// ParsePercent parses an interest rate and clamps it to [0,100].
// Accepts the same separator conventions as ParseDecimalToCents.
func ParsePercent(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidPercent
	}
	s = strings.Replace(s, ",", ".", 1)
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, ErrInvalidPercent
	}
	return ClampPercent(v), nil
}

// ClampPercent clamps a rate to the [0,100] range.
func ClampPercent(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

// groupLike reports whether the single dot at position i looks like a
// thousands separator: exactly three digits follow it and at least one
// digit precedes it.
func groupLike(s string, i int) bool {
	return i > 0 && len(s)-i-1 == 3
}

func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

// Rupiah returns the decimal value as float64 for display purposes only.
func (m Money) Rupiah() float64 {
	return float64(m.Cents) / 100.0
}

// Add returns m + other.
func (m Money) Add(other Money) Money {
	return Money{Cents: m.Cents + other.Cents}
}

// Sub returns m - other, floored at zero.
func (m Money) Sub(other Money) Money {
	if other.Cents >= m.Cents {
		return Money{}
	}
	return Money{Cents: m.Cents - other.Cents}
}
