package extractor

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
)

// FieldID names one extractable field, e.g. "monthly_salary".
type FieldID string

// Domain is the value type a field's captures are parsed into.
type Domain string

const (
	DomainCurrency   Domain = "currency"
	DomainQuantity   Domain = "quantity"
	DomainIdentifier Domain = "identifier"
	DomainText       Domain = "text"
)

// Numeric reports whether values of the domain are decimals.
func (d Domain) Numeric() bool {
	return d == DomainCurrency || d == DomainQuantity
}

func (d Domain) valid() bool {
	switch d {
	case DomainCurrency, DomainQuantity, DomainIdentifier, DomainText:
		return true
	}
	return false
}

var ErrUnknownProfile = errors.New("unknown document profile")

// Rule is one step of a field's cascade.
type Rule struct {
	Name    string
	Pattern *regexp.Regexp
	Group   int
}

// FieldSpec is the static extraction configuration for one field. Rules are
// tried in order and the first one producing a valid value wins.
type FieldSpec struct {
	ID          FieldID
	Description string
	Domain      Domain
	Rules       []Rule
	Bounds      Bounds

	// AllowFraction is false for fields such as meter readings that are
	// printed as whole numbers.
	AllowFraction bool
	RequireDigit  bool
	StopWords     []string
	MaxWords      int
}

// FieldTable is the loaded rule table. It is never modified after LoadTable
// returns, so one instance can serve any number of goroutines.
type FieldTable struct {
	version  int
	specs    []FieldSpec
	index    map[FieldID]int
	profiles map[string][]FieldID
}

func (t *FieldTable) Version() int {
	return t.version
}

// Specs returns every field in table order.
func (t *FieldTable) Specs() []FieldSpec {
	out := make([]FieldSpec, len(t.specs))
	copy(out, t.specs)
	return out
}

func (t *FieldTable) Spec(id FieldID) (FieldSpec, bool) {
	i, ok := t.index[id]
	if !ok {
		return FieldSpec{}, false
	}
	return t.specs[i], true
}

// Profile returns the fields of a named document profile in table order.
// An empty name selects the whole table.
func (t *FieldTable) Profile(name string) ([]FieldSpec, error) {
	if name == "" {
		return t.Specs(), nil
	}
	ids, ok := t.profiles[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownProfile, name)
	}

	wanted := make(map[FieldID]bool, len(ids))
	for _, id := range ids {
		wanted[id] = true
	}
	out := make([]FieldSpec, 0, len(ids))
	for _, spec := range t.specs {
		if wanted[spec.ID] {
			out = append(out, spec)
		}
	}
	return out, nil
}

// Profiles lists profile names in sorted order.
func (t *FieldTable) Profiles() []string {
	names := make([]string, 0, len(t.profiles))
	for name := range t.profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
