// Package norm binds spreadsheet headers to the canonical bug-record fields
// and rewrites their values into the canonical enumerations.
package norm

import (
	"fmt"
	"slices"
	"strings"

	"github.com/huangsam/bugsheet/internal/contract"
	"github.com/huangsam/bugsheet/schema"
)

// Normalizer applies one vocabulary to any number of tables.
// It holds only folded copies of the vocabulary and is safe for concurrent use.
type Normalizer struct {
	synonyms      map[schema.Field][]string
	severityWords map[schema.Severity][]string
	negators      []string
	program       []string
	fixed         []string
	unfixed       []string
	defaultType   schema.DefectType
}

// New prepares a normalizer for the given vocabulary.
func New(vocab contract.Vocabulary) *Normalizer {
	n := &Normalizer{
		synonyms:      map[schema.Field][]string{},
		severityWords: map[schema.Severity][]string{},
		negators:      foldAll(vocab.DefectNegators),
		program:       foldAll(vocab.ProgramKeywords),
		fixed:         foldAll(vocab.FixedKeywords),
		unfixed:       foldAll(vocab.UnfixedKeywords),
		defaultType:   vocab.DefaultDefectType,
	}
	for field, words := range vocab.Synonyms {
		n.synonyms[field] = foldAll(words)
	}
	for level, words := range vocab.SeverityWords {
		n.severityWords[level] = foldAll(words)
	}
	return n
}

// Binding is the outcome of matching one table's headers.
type Binding struct {
	// Fields maps each bound field to its column position.
	Fields map[schema.Field]int

	// Anomalies lists columns that matched more than one field.
	Anomalies []schema.Anomaly
}

// Bind matches headers to fields. Fields are visited in canonical order; for each
// field the synonyms are tried in priority order and the first unbound header that
// equals the field name or contains the synonym wins. A column binds at most once.
func (n *Normalizer) Bind(headers []string) Binding {
	folded := foldAll(headers)
	bound := map[int]schema.Field{}
	binding := Binding{Fields: map[schema.Field]int{}}

	for _, field := range schema.BindableFields {
		col := n.matchField(field, folded, bound)
		if col < 0 {
			continue
		}
		bound[col] = field
		binding.Fields[field] = col
	}

	// Report columns that other fields would also have claimed
	for _, col := range sortedKeys(bound) {
		field := bound[col]
		var others []string
		for _, other := range schema.BindableFields {
			if other != field && n.headerMatches(other, folded[col]) {
				others = append(others, string(other))
			}
		}
		if len(others) > 0 {
			binding.Anomalies = append(binding.Anomalies, schema.Anomaly{
				Kind:   schema.SchemaBindingAmbiguity,
				Column: headers[col],
				Detail: fmt.Sprintf("bound to %s, also matches %s", field, strings.Join(others, ", ")),
			})
		}
	}
	return binding
}

// MatchesAnyField reports whether any header would bind to a field.
func (n *Normalizer) MatchesAnyField(headers []string) bool {
	for _, h := range foldAll(headers) {
		for _, field := range schema.BindableFields {
			if n.headerMatches(field, h) {
				return true
			}
		}
	}
	return false
}

func (n *Normalizer) matchField(field schema.Field, folded []string, bound map[int]schema.Field) int {
	free := func(col int) bool {
		_, taken := bound[col]
		return !taken
	}

	for col, h := range folded {
		if free(col) && h == string(field) {
			return col
		}
	}
	for _, syn := range n.synonyms[field] {
		for col, h := range folded {
			if free(col) && h != "" && strings.Contains(h, syn) {
				return col
			}
		}
	}
	return -1
}

func (n *Normalizer) headerMatches(field schema.Field, folded string) bool {
	if folded == "" {
		return false
	}
	if folded == string(field) {
		return true
	}
	for _, syn := range n.synonyms[field] {
		if strings.Contains(folded, syn) {
			return true
		}
	}
	return false
}

// Normalize returns a copy of t whose bound columns carry canonical names and values.
// Unbound columns pass through untouched. The source_file column is never bound.
// Renamed headers are recorded in Bindings.
func (n *Normalizer) Normalize(t *schema.Table) (*schema.Table, []schema.Anomaly) {
	out := t.Clone()

	headers := slices.Clone(t.Columns)
	sourceCol := t.ColumnIndex(string(schema.SourceFileField))
	if sourceCol >= 0 {
		// Keep provenance out of matching
		headers[sourceCol] = ""
	}

	binding := n.Bind(headers)
	for i := range binding.Anomalies {
		binding.Anomalies[i].Source = t.Name
	}

	if out.Bindings == nil {
		out.Bindings = map[string]schema.Field{}
	}
	for _, field := range schema.BindableFields {
		col, ok := binding.Fields[field]
		if !ok {
			continue
		}
		if original := t.Columns[col]; original != string(field) {
			out.Bindings[original] = field
		}
		out.Columns[col] = string(field)
		for _, row := range out.Rows {
			row[col] = n.normalizeCell(field, row[col])
		}
	}
	return out, binding.Anomalies
}

func (n *Normalizer) normalizeCell(field schema.Field, c schema.Cell) schema.Cell {
	switch field {
	case schema.SeverityField:
		return schema.TextCell(string(n.Severity(cellText(c))))
	case schema.DefectTypeField:
		return schema.TextCell(string(n.DefectType(cellText(c))))
	case schema.FixStatusField:
		return schema.TextCell(string(n.FixStatus(cellText(c))))
	case schema.ModuleField:
		if text := strings.TrimSpace(cellText(c)); text != "" {
			return schema.TextCell(text)
		}
		return schema.TextCell(schema.UnclassifiedModule)
	default:
		return c
	}
}

func cellText(c schema.Cell) string {
	if c.IsEmpty() {
		return ""
	}
	return c.String()
}

func foldAll(words []string) []string {
	out := make([]string, len(words))
	for i, w := range words {
		out[i] = contract.Fold(w)
	}
	return out
}

func sortedKeys(m map[int]schema.Field) []int {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
