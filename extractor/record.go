package extractor

import (
	"bytes"
	"encoding/json"
	"sort"

	"github.com/shopspring/decimal"
)

// DocumentRecord holds the fields found in one document. Fields that were
// not found are simply missing. A record cannot be changed once assembled.
type DocumentRecord struct {
	fields map[FieldID]ExtractedField
}

// NewDocumentRecord builds a record from already extracted fields. When a
// field id repeats, the first value is kept.
func NewDocumentRecord(fields ...ExtractedField) DocumentRecord {
	m := make(map[FieldID]ExtractedField, len(fields))
	for _, f := range fields {
		if _, ok := m[f.Field]; ok {
			continue
		}
		m[f.Field] = f
	}
	return DocumentRecord{fields: m}
}

// Assemble runs every spec over the same text.
func Assemble(specs []FieldSpec, text NormalizedText) DocumentRecord {
	return assemble(specs, text, nil)
}

func assemble(specs []FieldSpec, text NormalizedText, onReject rejectFunc) DocumentRecord {
	m := make(map[FieldID]ExtractedField, len(specs))
	for _, spec := range specs {
		if f, ok := extract(spec, text, onReject); ok {
			m[spec.ID] = f
		}
	}
	return DocumentRecord{fields: m}
}

func (r DocumentRecord) Get(id FieldID) (ExtractedField, bool) {
	f, ok := r.fields[id]
	return f, ok
}

func (r DocumentRecord) Has(id FieldID) bool {
	_, ok := r.fields[id]
	return ok
}

// Amount returns the decimal value of a numeric field.
func (r DocumentRecord) Amount(id FieldID) (decimal.Decimal, bool) {
	f, ok := r.fields[id]
	if !ok || !f.Domain.Numeric() {
		return decimal.Zero, false
	}
	return f.Amount, true
}

// Text returns the value of an identifier or text field.
func (r DocumentRecord) Text(id FieldID) (string, bool) {
	f, ok := r.fields[id]
	if !ok || f.Domain.Numeric() {
		return "", false
	}
	return f.Text, true
}

func (r DocumentRecord) Len() int {
	return len(r.fields)
}

// IDs lists the present fields in sorted order.
func (r DocumentRecord) IDs() []FieldID {
	ids := make([]FieldID, 0, len(r.fields))
	for id := range r.fields {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Fields returns the present fields sorted by id.
func (r DocumentRecord) Fields() []ExtractedField {
	out := make([]ExtractedField, 0, len(r.fields))
	for _, id := range r.IDs() {
		out = append(out, r.fields[id])
	}
	return out
}

type fieldJSON struct {
	Value     string `json:"value"`
	Domain    Domain `json:"domain"`
	Raw       string `json:"raw"`
	Rule      string `json:"rule"`
	RuleIndex int    `json:"rule_index"`
}

// MarshalJSON renders the record as an object keyed by field id, in id order.
func (r DocumentRecord) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range r.Fields() {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(string(f.Field))
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(fieldJSON{
			Value:     f.Value(),
			Domain:    f.Domain,
			Raw:       f.Raw,
			Rule:      f.Rule,
			RuleIndex: f.RuleIndex,
		})
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
