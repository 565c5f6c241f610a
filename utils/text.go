package utils

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
	"golang.org/x/text/unicode/norm"
)

var (
	ErrNotANumber         = errors.New("not a number")
	ErrFractionNotAllowed = errors.New("fractional part not allowed")
)

var plainNumber = regexp.MustCompile(`^[0-9]+(?:\.[0-9]+)?$`)

// NormalizeText collapses every run of whitespace or control characters in
// OCR output into a single space and trims both ends. Letter case is kept.
func NormalizeText(raw string) string {
	raw = norm.NFC.String(raw)

	var b strings.Builder
	b.Grow(len(raw))

	pendingSpace := false
	for _, r := range raw {
		if isBlank(r) {
			pendingSpace = b.Len() > 0
			continue
		}
		if pendingSpace {
			b.WriteByte(' ')
			pendingSpace = false
		}
		b.WriteRune(r)
	}
	return b.String()
}

func isBlank(r rune) bool {
	switch r {
	case '\u200b', '\ufeff':
		return true
	}
	return unicode.IsSpace(r) || unicode.IsControl(r)
}

// ParseAmount converts an OCR number like "1,23,450.00" or "12 500" into a
// fixed-point decimal. Thousands separators (commas and spaces) are dropped.
// Signs, currency symbols and exponents are not accepted.
func ParseAmount(raw string, allowFraction bool) (decimal.Decimal, error) {
	cleaned := strings.Map(func(r rune) rune {
		switch r {
		case ',', ' ', '\u00a0', '\u202f':
			return -1
		}
		return r
	}, strings.TrimSpace(raw))

	if !plainNumber.MatchString(cleaned) {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrNotANumber, raw)
	}
	if !allowFraction && strings.Contains(cleaned, ".") {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrFractionNotAllowed, raw)
	}

	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q: %v", ErrNotANumber, raw, err)
	}
	return d, nil
}
