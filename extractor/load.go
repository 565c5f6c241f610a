package extractor

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/shopspring/decimal"
)

//go:embed fieldspecs.yaml
var defaultTableYAML []byte

// ErrInvalidTable wraps every rule table problem found at load time.
var ErrInvalidTable = errors.New("invalid field table")

type tableFile struct {
	Version  int                 `yaml:"version"`
	Fields   []fieldEntry        `yaml:"fields"`
	Profiles map[string][]string `yaml:"profiles"`
}

type fieldEntry struct {
	ID           string      `yaml:"id"`
	Description  string      `yaml:"description"`
	Domain       string      `yaml:"domain"`
	Min          string      `yaml:"min"`
	Max          string      `yaml:"max"`
	MinExclusive bool        `yaml:"min_exclusive"`
	Fraction     *bool       `yaml:"fraction"`
	RequireDigit bool        `yaml:"require_digit"`
	MaxWords     int         `yaml:"max_words"`
	StopWords    []string    `yaml:"stop_words"`
	Rules        []ruleEntry `yaml:"rules"`
}

type ruleEntry struct {
	Name    string `yaml:"name"`
	Pattern string `yaml:"pattern"`
	Group   *int   `yaml:"group"`
}

// DefaultTable loads the rule table compiled into the binary.
func DefaultTable() (*FieldTable, error) {
	return LoadTable(defaultTableYAML)
}

// DefaultTableYAML returns a copy of the built-in rule table source.
func DefaultTableYAML() []byte {
	out := make([]byte, len(defaultTableYAML))
	copy(out, defaultTableYAML)
	return out
}

// LoadTableFile reads a rule table from disk.
func LoadTableFile(path string) (*FieldTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read field table %s: %w", path, err)
	}
	table, err := LoadTable(data)
	if err != nil {
		return nil, fmt.Errorf("load field table %s: %w", path, err)
	}
	return table, nil
}

// LoadTable validates and compiles a YAML rule table. Any problem, from a
// schema violation to an uncompilable pattern, rejects the whole table.
func LoadTable(data []byte) (*FieldTable, error) {
	if err := validateTableSchema(data); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidTable, err)
	}

	var file tableFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("%w: decode: %w", ErrInvalidTable, err)
	}

	table, err := compileTable(file)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidTable, err)
	}
	return table, nil
}

func compileTable(file tableFile) (*FieldTable, error) {
	table := &FieldTable{
		version:  file.Version,
		specs:    make([]FieldSpec, 0, len(file.Fields)),
		index:    make(map[FieldID]int, len(file.Fields)),
		profiles: make(map[string][]FieldID, len(file.Profiles)),
	}

	for _, entry := range file.Fields {
		spec, err := compileField(entry)
		if err != nil {
			return nil, err
		}
		if _, dup := table.index[spec.ID]; dup {
			return nil, fmt.Errorf("field %q defined twice", spec.ID)
		}
		table.index[spec.ID] = len(table.specs)
		table.specs = append(table.specs, spec)
	}

	for name, ids := range file.Profiles {
		if strings.TrimSpace(name) == "" {
			return nil, errors.New("profile with empty name")
		}
		fields := make([]FieldID, 0, len(ids))
		for _, id := range ids {
			if _, ok := table.index[FieldID(id)]; !ok {
				return nil, fmt.Errorf("profile %q references unknown field %q", name, id)
			}
			fields = append(fields, FieldID(id))
		}
		table.profiles[name] = fields
	}

	return table, nil
}

func compileField(entry fieldEntry) (FieldSpec, error) {
	spec := FieldSpec{
		ID:            FieldID(entry.ID),
		Description:   entry.Description,
		Domain:        Domain(entry.Domain),
		AllowFraction: true,
		RequireDigit:  entry.RequireDigit,
		MaxWords:      entry.MaxWords,
	}
	if !spec.Domain.valid() {
		return FieldSpec{}, fmt.Errorf("field %q: unknown domain %q", entry.ID, entry.Domain)
	}
	if entry.Fraction != nil {
		spec.AllowFraction = *entry.Fraction
	}

	if spec.Domain.Numeric() {
		bounds, err := compileBounds(entry)
		if err != nil {
			return FieldSpec{}, fmt.Errorf("field %q: %w", entry.ID, err)
		}
		spec.Bounds = bounds
	} else if entry.Min != "" || entry.Max != "" || entry.MinExclusive {
		return FieldSpec{}, fmt.Errorf("field %q: bounds are only allowed on numeric domains", entry.ID)
	}

	if spec.Domain != DomainText && (entry.MaxWords > 0 || len(entry.StopWords) > 0) {
		return FieldSpec{}, fmt.Errorf("field %q: max_words and stop_words are only allowed on text fields", entry.ID)
	}
	for _, w := range entry.StopWords {
		spec.StopWords = append(spec.StopWords, strings.ToLower(w))
	}

	seen := make(map[string]bool, len(entry.Rules))
	for i, r := range entry.Rules {
		if seen[r.Name] {
			return FieldSpec{}, fmt.Errorf("field %q: rule %q defined twice", entry.ID, r.Name)
		}
		seen[r.Name] = true

		re, err := regexp.Compile(r.Pattern)
		if err != nil {
			return FieldSpec{}, fmt.Errorf("field %q rule %d (%s): %w", entry.ID, i, r.Name, err)
		}
		group := 1
		if r.Group != nil {
			group = *r.Group
		}
		if group > re.NumSubexp() {
			return FieldSpec{}, fmt.Errorf("field %q rule %q: group %d but pattern has %d", entry.ID, r.Name, group, re.NumSubexp())
		}
		spec.Rules = append(spec.Rules, Rule{Name: r.Name, Pattern: re, Group: group})
	}

	return spec, nil
}

func compileBounds(entry fieldEntry) (Bounds, error) {
	var b Bounds
	if entry.Min != "" {
		d, err := decimal.NewFromString(entry.Min)
		if err != nil {
			return Bounds{}, fmt.Errorf("min %q: %w", entry.Min, err)
		}
		b.Min = decimal.NewNullDecimal(d)
	}
	if entry.Max != "" {
		d, err := decimal.NewFromString(entry.Max)
		if err != nil {
			return Bounds{}, fmt.Errorf("max %q: %w", entry.Max, err)
		}
		b.Max = decimal.NewNullDecimal(d)
	}
	b.MinExclusive = entry.MinExclusive
	if b.MinExclusive && !b.Min.Valid {
		return Bounds{}, errors.New("min_exclusive set without min")
	}
	if b.Min.Valid && b.Max.Valid {
		if b.Min.Decimal.GreaterThan(b.Max.Decimal) ||
			(b.MinExclusive && b.Min.Decimal.Equal(b.Max.Decimal)) {
			return Bounds{}, fmt.Errorf("empty range: min %s, max %s", b.Min.Decimal, b.Max.Decimal)
		}
	}
	return b, nil
}
