// Package stats computes aggregate bug statistics over normalized tables.
package stats

import (
	"cmp"
	"crypto/sha256"
	"slices"
	"strings"

	"github.com/huangsam/bugsheet/core/merge"
	"github.com/huangsam/bugsheet/schema"
)

// Analyze computes every aggregate for t in one pass over the rows plus a
// duplicate pass. Missing or unrecognized enum values count as UNCLASSIFIED,
// so each enum breakdown sums to the row count.
func Analyze(t *schema.Table) schema.AggregateStats {
	out := schema.AggregateStats{
		TotalRows:    len(t.Rows),
		TotalColumns: len(t.Columns),
		Severity:     schema.NewSeverityCounts(),
		DefectType:   schema.NewDefectTypeCounts(),
		FixStatus:    schema.NewFixStatusCounts(),
		ColumnKinds:  map[schema.CellKind]int{},
		Merged:       t.Merged,
	}

	sevCol := t.FieldIndex(schema.SeverityField)
	typeCol := t.FieldIndex(schema.DefectTypeField)
	statusCol := t.FieldIndex(schema.FixStatusField)
	moduleCol := t.FieldIndex(schema.ModuleField)
	dateCol := t.FieldIndex(schema.ReportedAtField)
	sourceCol := t.FieldIndex(schema.SourceFileField)

	for _, field := range schema.BindableFields {
		if t.FieldIndex(field) >= 0 {
			out.BoundFields = append(out.BoundFields, field)
		}
	}

	emptyByCol := make([]int, len(t.Columns))
	kindsByCol := make([]map[schema.CellKind]int, len(t.Columns))
	for c := range kindsByCol {
		kindsByCol[c] = map[schema.CellKind]int{}
	}
	modules := map[string]int{}
	daily := map[string]*schema.DailyStats{}
	bySource := map[string]*schema.SourceStats{}
	var sourceOrder []string
	if t.Merged {
		sourceOrder = slices.Clone(t.Sources)
	}

	for _, row := range t.Rows {
		sev := severityOf(row, sevCol)
		typ := defectTypeOf(row, typeCol)
		status := fixStatusOf(row, statusCol)

		out.Severity[sev]++
		out.DefectType[typ]++
		out.FixStatus[status]++
		tallyType(&out.ProgramBugs, &out.NonProgramBugs, typ, status)

		if moduleCol >= 0 {
			module := strings.TrimSpace(cellText(row[moduleCol]))
			if module == "" {
				module = schema.UnclassifiedModule
			}
			modules[module]++
		}
		if dateCol >= 0 {
			if day, ok := dayOf(row[dateCol]); ok {
				d, seen := daily[day]
				if !seen {
					d = &schema.DailyStats{Date: day}
					daily[day] = d
				}
				d.Total++
				tallyType(&d.ProgramBugs, &d.NonProgramBugs, typ, status)
				tallyStatus(&d.Fixed, &d.Unfixed, status)
			}
		}

		for c, cell := range row {
			if cell.IsEmpty() {
				emptyByCol[c]++
				continue
			}
			kindsByCol[c][cell.Kind]++
		}

		if t.Merged {
			source := ""
			if sourceCol >= 0 {
				source = cellText(row[sourceCol])
			}
			s, ok := bySource[source]
			if !ok {
				s = &schema.SourceStats{Source: source, Severity: schema.NewSeverityCounts()}
				bySource[source] = s
				if !slices.Contains(sourceOrder, source) {
					sourceOrder = append(sourceOrder, source)
				}
			}
			s.Rows++
			s.Severity[sev]++
			tallyType(&s.ProgramBugs, &s.NonProgramBugs, typ, status)
			tallyStatus(&s.Fixed, &s.Unfixed, status)
		}
	}

	out.FixRate = schema.FixRate(out.FixStatus[schema.Fixed], out.FixStatus[schema.Unfixed])
	finishType(&out.ProgramBugs)
	finishType(&out.NonProgramBugs)

	for c, name := range t.Columns {
		out.EmptyCells += emptyByCol[c]
		if emptyByCol[c] > 0 {
			out.EmptyByColumn = append(out.EmptyByColumn, schema.ColumnCount{Column: name, Count: emptyByCol[c]})
		}
		out.ColumnKinds[dominantKind(kindsByCol[c])]++
	}
	if cells := len(t.Rows) * len(t.Columns); cells > 0 {
		out.Completeness = 1 - float64(out.EmptyCells)/float64(cells)
	} else {
		out.Completeness = 1
	}

	out.Modules = sortedCounts(modules, func(a, b schema.NamedCount) int {
		return cmp.Or(cmp.Compare(b.Count, a.Count), strings.Compare(a.Name, b.Name))
	})
	for _, d := range daily {
		d.FixRate = schema.FixRate(d.Fixed, d.Unfixed)
		finishType(&d.ProgramBugs)
		finishType(&d.NonProgramBugs)
		out.Daily = append(out.Daily, *d)
	}
	slices.SortFunc(out.Daily, func(a, b schema.DailyStats) int {
		return strings.Compare(a.Date, b.Date)
	})

	if t.Merged {
		for _, source := range sourceOrder {
			s, ok := bySource[source]
			if !ok {
				s = &schema.SourceStats{Source: source, Severity: schema.NewSeverityCounts()}
			}
			s.Label = merge.SourceLabel(source)
			s.FixRate = schema.FixRate(s.Fixed, s.Unfixed)
			finishType(&s.ProgramBugs)
			finishType(&s.NonProgramBugs)
			out.BySource = append(out.BySource, *s)
		}
	}

	out.DuplicateRows = countDuplicates(t, sourceCol)
	return out
}

// countDuplicates counts rows whose content, keyed by column name, matches an earlier row.
// The source_file column is ignored so repeats across files are found.
func countDuplicates(t *schema.Table, sourceCol int) int {
	order := make([]int, 0, len(t.Columns))
	for c := range t.Columns {
		if c != sourceCol {
			order = append(order, c)
		}
	}
	slices.SortStableFunc(order, func(a, b int) int {
		return strings.Compare(t.Columns[a], t.Columns[b])
	})

	seen := make(map[[sha256.Size]byte]struct{}, len(t.Rows))
	dups := 0
	for _, row := range t.Rows {
		h := sha256.New()
		for _, c := range order {
			cell := row[c]
			h.Write([]byte(t.Columns[c]))
			h.Write([]byte{0})
			h.Write([]byte(cell.Kind))
			h.Write([]byte{0})
			h.Write([]byte(cell.String()))
			h.Write([]byte{1})
		}
		var key [sha256.Size]byte
		copy(key[:], h.Sum(nil))
		if _, ok := seen[key]; ok {
			dups++
			continue
		}
		seen[key] = struct{}{}
	}
	return dups
}

func severityOf(row []schema.Cell, col int) schema.Severity {
	if col < 0 {
		return schema.SeverityUnclassified
	}
	s := schema.Severity(cellText(row[col]))
	if _, ok := schema.ValidSeverities[s]; !ok {
		return schema.SeverityUnclassified
	}
	return s
}

func defectTypeOf(row []schema.Cell, col int) schema.DefectType {
	if col < 0 {
		return schema.DefectUnclassified
	}
	d := schema.DefectType(cellText(row[col]))
	if _, ok := schema.ValidDefectTypes[d]; !ok {
		return schema.DefectUnclassified
	}
	return d
}

func fixStatusOf(row []schema.Cell, col int) schema.FixStatus {
	if col < 0 {
		return schema.StatusUnclassified
	}
	s := schema.FixStatus(cellText(row[col]))
	if _, ok := schema.ValidFixStatuses[s]; !ok {
		return schema.StatusUnclassified
	}
	return s
}

func tallyType(program, nonProgram *schema.TypeBreakdown, typ schema.DefectType, status schema.FixStatus) {
	var b *schema.TypeBreakdown
	switch typ {
	case schema.ProgramBug:
		b = program
	case schema.NonProgramBug:
		b = nonProgram
	default:
		return
	}
	b.Total++
	switch status {
	case schema.Fixed:
		b.Fixed++
	case schema.Unfixed:
		b.Unfixed++
	}
}

func tallyStatus(fixed, unfixed *int, status schema.FixStatus) {
	switch status {
	case schema.Fixed:
		*fixed++
	case schema.Unfixed:
		*unfixed++
	}
}

func finishType(b *schema.TypeBreakdown) {
	b.FixRate = schema.FixRate(b.Fixed, b.Unfixed)
}

func dayOf(c schema.Cell) (string, bool) {
	switch c.Kind {
	case schema.KindDate:
		return c.Time.Format(schema.DateFormat), true
	case schema.KindText:
		if t, ok := schema.ParseDate(c.Text); ok {
			return t.Format(schema.DateFormat), true
		}
	}
	return "", false
}

// dominantKind picks the most common non-empty kind, preferring text on ties.
func dominantKind(counts map[schema.CellKind]int) schema.CellKind {
	best, bestCount := schema.KindEmpty, 0
	for _, kind := range []schema.CellKind{schema.KindText, schema.KindNumber, schema.KindDate} {
		if counts[kind] > bestCount {
			best, bestCount = kind, counts[kind]
		}
	}
	return best
}

func cellText(c schema.Cell) string {
	if c.IsEmpty() {
		return ""
	}
	return c.String()
}

func sortedCounts(m map[string]int, less func(a, b schema.NamedCount) int) []schema.NamedCount {
	out := make([]schema.NamedCount, 0, len(m))
	for name, count := range m {
		out = append(out, schema.NamedCount{Name: name, Count: count})
	}
	slices.SortFunc(out, less)
	return out
}
