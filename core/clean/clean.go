// Package clean validates raw tables: it trims values, drops empty rows and
// columns, makes headers unique and records what it found.
package clean

import (
	"fmt"
	"strings"

	"github.com/huangsam/bugsheet/schema"
)

// excelErrors are formula error literals that carry no value.
var excelErrors = map[string]struct{}{
	"#N/A":    {},
	"#VALUE!": {},
	"#REF!":   {},
	"#DIV/0!": {},
	"#NAME?":  {},
	"#NUM!":   {},
	"#NULL!":  {},
}

// Clean returns a cleaned copy of raw and a report of every change.
// It never fails and never adds rows or columns.
func Clean(raw *schema.Table) (*schema.Table, schema.ValidationReport) {
	report := schema.ValidationReport{
		Source:     raw.Name,
		EmptyCells: map[string]int{},
	}

	// 1. Trim text and blank out error literals
	rows := make([][]schema.Cell, len(raw.Rows))
	for r, row := range raw.Rows {
		cells := make([]schema.Cell, len(raw.Columns))
		for c := range cells {
			if c < len(row) {
				cells[c] = trimCell(row[c])
			} else {
				cells[c] = schema.EmptyCell()
			}
			if cells[c].Kind == schema.KindText {
				if _, bad := excelErrors[strings.ToUpper(cells[c].Text)]; bad {
					report.Anomalies = append(report.Anomalies, schema.Anomaly{
						Kind:   schema.UnparseableCell,
						Source: raw.Name,
						Column: headerAt(raw.Columns, c),
						Row:    r + 1,
						Detail: cells[c].Text,
					})
					cells[c] = schema.EmptyCell()
				}
			}
		}
		rows[r] = cells
	}

	// 2. Keep columns that hold at least one value
	var keep []int
	for c, name := range raw.Columns {
		if columnHasValue(rows, c) || (len(rows) == 0 && strings.TrimSpace(name) != "") {
			keep = append(keep, c)
			continue
		}
		report.DroppedColumns = append(report.DroppedColumns, displayHeader(name, c))
	}

	// 3. Keep rows that hold at least one value
	kept := make([][]schema.Cell, 0, len(rows))
	for _, row := range rows {
		projected := make([]schema.Cell, len(keep))
		empty := true
		for i, c := range keep {
			projected[i] = row[c]
			if !row[c].IsEmpty() {
				empty = false
			}
		}
		if empty {
			report.DroppedRows++
			continue
		}
		kept = append(kept, projected)
	}

	// 4. Name blank headers and make duplicates unique
	columns := uniqueHeaders(raw, keep, &report)

	// 5. Count what is still missing
	for i, name := range columns {
		count := 0
		for _, row := range kept {
			if row[i].IsEmpty() {
				count++
			}
		}
		report.EmptyCells[name] = count
	}

	if len(kept) == 0 {
		report.Anomalies = append(report.Anomalies, schema.Anomaly{
			Kind:   schema.EmptySheet,
			Source: raw.Name,
			Detail: "no data rows",
		})
	}

	out := raw.Clone()
	out.Columns = columns
	out.Rows = kept
	return out, report
}

// uniqueHeaders names blank headers after their position and suffixes repeats with
// their occurrence index, skipping names another column already uses.
func uniqueHeaders(raw *schema.Table, keep []int, report *schema.ValidationReport) []string {
	names := make([]string, len(keep))
	taken := map[string]struct{}{}
	for i, c := range keep {
		names[i] = strings.TrimSpace(raw.Columns[c])
		if names[i] == "" {
			names[i] = displayHeader("", c)
			report.Anomalies = append(report.Anomalies, schema.Anomaly{
				Kind:   schema.UnnamedColumn,
				Source: raw.Name,
				Column: names[i],
				Detail: fmt.Sprintf("blank header at position %d", c+1),
			})
		}
		taken[names[i]] = struct{}{}
	}

	seen := map[string]int{}
	assigned := map[string]struct{}{}
	for i, name := range names {
		seen[name]++
		if seen[name] == 1 {
			assigned[name] = struct{}{}
			continue
		}
		k := seen[name]
		renamed := fmt.Sprintf("%s_%d", name, k)
		for {
			_, clash := taken[renamed]
			_, used := assigned[renamed]
			if !clash && !used {
				break
			}
			k++
			renamed = fmt.Sprintf("%s_%d", name, k)
		}
		seen[name] = k
		assigned[renamed] = struct{}{}
		names[i] = renamed
		report.HeaderCollisions = append(report.HeaderCollisions, schema.HeaderCollision{
			Original: name,
			Renamed:  renamed,
			Position: keep[i] + 1,
		})
		report.Anomalies = append(report.Anomalies, schema.Anomaly{
			Kind:   schema.DuplicateHeader,
			Source: raw.Name,
			Column: renamed,
			Detail: fmt.Sprintf("%q repeated, renamed to %q", name, renamed),
		})
	}
	return names
}

func trimCell(c schema.Cell) schema.Cell {
	if c.Kind != schema.KindText {
		if c.Kind == "" {
			return schema.EmptyCell()
		}
		return c
	}
	text := strings.TrimSpace(c.Text)
	if text == "" {
		return schema.EmptyCell()
	}
	return schema.TextCell(text)
}

func columnHasValue(rows [][]schema.Cell, c int) bool {
	for _, row := range rows {
		if !row[c].IsEmpty() {
			return true
		}
	}
	return false
}

func headerAt(columns []string, c int) string {
	return displayHeader(strings.TrimSpace(columns[c]), c)
}

func displayHeader(name string, c int) string {
	if name = strings.TrimSpace(name); name != "" {
		return name
	}
	return fmt.Sprintf("column_%d", c+1)
}
