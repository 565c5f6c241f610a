package extractor

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Bounds is the plausible range of a numeric field. Both ends are inclusive
// unless MinExclusive is set; an invalid end is unbounded.
type Bounds struct {
	Min          decimal.NullDecimal
	Max          decimal.NullDecimal
	MinExclusive bool
}

func (b Bounds) Contains(v decimal.Decimal) bool {
	if b.Min.Valid {
		if b.MinExclusive && v.LessThanOrEqual(b.Min.Decimal) {
			return false
		}
		if v.LessThan(b.Min.Decimal) {
			return false
		}
	}
	if b.Max.Valid && v.GreaterThan(b.Max.Decimal) {
		return false
	}
	return true
}

func (b Bounds) String() string {
	var sb strings.Builder
	switch {
	case !b.Min.Valid:
		sb.WriteString("(-inf")
	case b.MinExclusive:
		sb.WriteString("(" + b.Min.Decimal.String())
	default:
		sb.WriteString("[" + b.Min.Decimal.String())
	}
	sb.WriteString(", ")
	if b.Max.Valid {
		sb.WriteString(b.Max.Decimal.String() + "]")
	} else {
		sb.WriteString("+inf)")
	}
	return sb.String()
}
