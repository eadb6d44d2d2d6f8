// Package money handles parsing, formatting, and validation of USD donation
// amounts.
//
// Amounts are carried as float64 dollars at the model boundary but every
// conversion goes through whole cents to avoid floating-point drift.
package money

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"unicode"
)

var (
	ErrInvalidAmount = errors.New("invalid amount")
	ErrNotPositive   = errors.New("amount must be greater than 0")
	ErrPrecision     = errors.New("amount must have at most 2 decimal places")
)

// ParseUSD converts a currency string to dollars.
//
// It accepts an optional leading dollar sign, thousands separators, and both
// dot (12.34) and comma (12,34) decimal separators. More than two decimal
// places or a non-positive value is an error.
//
// Examples:
//
//	ParseUSD("$1,234.56") -> 1234.56, nil
//	ParseUSD("$1,234")    -> 1234, nil
//	ParseUSD("12,34")     -> 12.34, nil
//	ParseUSD("12.345")    -> 0, ErrPrecision
func ParseUSD(s string) (float64, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "$")
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidAmount
	}
	if strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		// Only positive values are ever recorded
		return 0, ErrNotPositive
	}

	if strings.Contains(s, ".") {
		// Dot is the decimal separator; commas are grouping
		s = strings.ReplaceAll(s, ",", "")
	} else if i := strings.LastIndex(s, ","); i >= 0 {
		if len(s)-i-1 == 3 {
			// A trailing group of three digits is a thousands
			// separator: "$1,234" is 1234, not 1.234
			s = strings.ReplaceAll(s, ",", "")
		} else {
			// Otherwise a lone comma acts as a decimal comma
			s = strings.Replace(s, ",", ".", 1)
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
	if len(fracPart) > 2 {
		return 0, ErrPrecision
	}

	var cents int64
	for _, r := range intPart {
		d := int64(r - '0')
		if cents > (math.MaxInt64-d)/10 {
			return 0, ErrInvalidAmount
		}
		cents = cents*10 + d
	}
	const maxWholeDollars = math.MaxInt64 / 100
	if cents > maxWholeDollars {
		return 0, ErrInvalidAmount
	}
	cents *= 100
	if len(fracPart) > 0 {
		cents += int64(fracPart[0]-'0') * 10
	}
	if len(fracPart) > 1 {
		cents += int64(fracPart[1] - '0')
	}
	if cents <= 0 {
		return 0, ErrNotPositive
	}

	return float64(cents) / 100, nil
}

// FormatUSD renders dollars as "$1,234.56".
func FormatUSD(a float64) string {
	cents := int64(math.Round(a * 100))
	neg := cents < 0
	if neg {
		cents = -cents
	}

	whole := cents / 100
	frac := cents % 100

	digits := fmt.Sprintf("%d", whole)
	var b strings.Builder
	for i, r := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}

	sign := ""
	if neg {
		sign = "-"
	}
	return fmt.Sprintf("%s$%s.%02d", sign, b.String(), frac)
}

// ValidateAmount checks that a donation amount is positive and representable
// in whole cents.
func ValidateAmount(a float64) error {
	if a <= 0 {
		return ErrNotPositive
	}
	cents := a * 100
	if math.Abs(cents-math.Round(cents)) > 1e-6 {
		return ErrPrecision
	}
	return nil
}

// FromMinorUnits converts a provider integer amount in cents to dollars.
func FromMinorUnits(n int64) float64 {
	return float64(n) / 100
}

// ToMinorUnits converts dollars to a provider integer amount in cents. The
// conversion rounds: a plain truncating cast drops a cent on values like
// 19.99 whose float representation sits just under the true amount.
func ToMinorUnits(a float64) int64 {
	return int64(math.Round(a * 100))
}

// PartialPaymentNote builds the disclosure appended to a donation when an
// invoice was paid for less than the amount due.
func PartialPaymentNote(paid, due float64) string {
	return fmt.Sprintf("Partial payment: %s received of %s due", FormatUSD(paid), FormatUSD(due))
}
