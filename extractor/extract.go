package extractor

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/Aashish23092/ocr-green-finance/utils"
	"github.com/shopspring/decimal"
)

// NormalizedText is OCR text with whitespace collapsed by Normalize. Rule
// patterns assume this form.
type NormalizedText string

// Normalize produces the canonical single-spaced text every rule runs on.
func Normalize(raw string) NormalizedText {
	return NormalizedText(utils.NormalizeText(raw))
}

// ExtractedField is one field value together with the rule that produced it.
// Amount is set for numeric domains, Text for identifier and text domains.
type ExtractedField struct {
	Field     FieldID
	Domain    Domain
	Amount    decimal.Decimal
	Text      string
	Raw       string
	Rule      string
	RuleIndex int
}

// Value renders the field value as a string.
func (f ExtractedField) Value() string {
	if f.Domain.Numeric() {
		return f.Amount.String()
	}
	return f.Text
}

var (
	errUnparseable = errors.New("unparseable candidate")
	errOutOfRange  = errors.New("out of range")
	errEmpty       = errors.New("empty after cleanup")
	errIdentifier  = errors.New("malformed identifier")
)

var identifierPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9/\-]*$`)

// rejectFunc observes cascade steps that matched but did not validate.
type rejectFunc func(spec FieldSpec, rule Rule, raw string, err error)

// Extract runs the field's cascade over text. The result is absent when no
// rule yields a value that parses and passes validation.
func Extract(spec FieldSpec, text NormalizedText) (ExtractedField, bool) {
	return extract(spec, text, nil)
}

func extract(spec FieldSpec, text NormalizedText, onReject rejectFunc) (ExtractedField, bool) {
	for i, rule := range spec.Rules {
		m := rule.Pattern.FindStringSubmatch(string(text))
		if m == nil || rule.Group >= len(m) || m[rule.Group] == "" {
			continue
		}
		raw := m[rule.Group]

		field, err := parseCandidate(spec, raw)
		if err != nil {
			if onReject != nil {
				onReject(spec, rule, raw, err)
			}
			continue
		}
		field.Raw = raw
		field.Rule = rule.Name
		field.RuleIndex = i
		return field, true
	}
	return ExtractedField{}, false
}

func parseCandidate(spec FieldSpec, raw string) (ExtractedField, error) {
	field := ExtractedField{Field: spec.ID, Domain: spec.Domain}

	switch spec.Domain {
	case DomainCurrency, DomainQuantity:
		amount, err := utils.ParseAmount(raw, spec.AllowFraction)
		if err != nil {
			return ExtractedField{}, fmt.Errorf("%w: %w", errUnparseable, err)
		}
		if !spec.Bounds.Contains(amount) {
			return ExtractedField{}, fmt.Errorf("%w: %s not in %s", errOutOfRange, amount, spec.Bounds)
		}
		field.Amount = amount

	case DomainIdentifier:
		id := strings.Trim(raw, " .:#-/")
		if !identifierPattern.MatchString(id) {
			return ExtractedField{}, fmt.Errorf("%w: %q", errIdentifier, raw)
		}
		if spec.RequireDigit && !strings.ContainsAny(id, "0123456789") {
			return ExtractedField{}, fmt.Errorf("%w: %q has no digit", errIdentifier, raw)
		}
		field.Text = id

	case DomainText:
		text := cleanText(raw, spec.StopWords, spec.MaxWords)
		if text == "" {
			return ExtractedField{}, errEmpty
		}
		field.Text = text

	default:
		return ExtractedField{}, fmt.Errorf("%w: domain %q", errUnparseable, spec.Domain)
	}

	return field, nil
}

// cleanText cuts captured text at the first stop word, so a greedy capture
// like "John Doe Employee ID" keeps only "John Doe", then caps the word count.
func cleanText(raw string, stopWords []string, maxWords int) string {
	words := strings.Fields(raw)
	kept := make([]string, 0, len(words))

	for _, w := range words {
		if isStopWord(strings.Trim(w, ".:,;"), stopWords) {
			break
		}
		kept = append(kept, w)
		if maxWords > 0 && len(kept) == maxWords {
			break
		}
	}
	return strings.Trim(strings.Join(kept, " "), " .:,;-")
}

func isStopWord(w string, stopWords []string) bool {
	for _, s := range stopWords {
		if strings.EqualFold(w, s) {
			return true
		}
	}
	return false
}
