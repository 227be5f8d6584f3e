// Package merge joins normalized tables from several files into one table
// with a source_file column.
package merge

import (
	"fmt"
	"maps"
	"slices"

	"github.com/huangsam/bugsheet/schema"
)

// MergedName is the name given to every merged table.
const MergedName = "merged"

// Merge concatenates tables in input order under the first-seen union of their
// columns. Each row is tagged with the name of the table it came from unless it
// already carries a source; source_file is always the last column.
func Merge(tables []*schema.Table, names []string) (*schema.Table, error) {
	if len(tables) == 0 {
		return nil, &schema.EmptyBatchError{}
	}
	if len(tables) != len(names) {
		return nil, fmt.Errorf("merge: %d tables but %d names", len(tables), len(names))
	}

	sourceName := string(schema.SourceFileField)
	var columns []string
	index := map[string]int{}
	for _, t := range tables {
		for _, c := range t.Columns {
			if _, ok := index[c]; ok || c == sourceName {
				continue
			}
			index[c] = len(columns)
			columns = append(columns, c)
		}
	}
	sourceCol := len(columns)
	columns = append(columns, sourceName)

	out := &schema.Table{
		Name:     MergedName,
		Columns:  columns,
		Merged:   true,
		Bindings: map[string]schema.Field{},
	}

	total := 0
	for _, t := range tables {
		total += len(t.Rows)
	}
	out.Rows = make([][]schema.Cell, 0, total)

	for i, t := range tables {
		if t.Merged && len(t.Sources) > 0 {
			out.Sources = append(out.Sources, t.Sources...)
		} else {
			out.Sources = append(out.Sources, names[i])
		}
		maps.Copy(out.Bindings, t.Bindings)

		from := make([]int, len(t.Columns))
		for c, name := range t.Columns {
			if name == sourceName {
				from[c] = sourceCol
			} else {
				from[c] = index[name]
			}
		}

		for _, row := range t.Rows {
			merged := make([]schema.Cell, len(columns))
			for c := range merged {
				merged[c] = schema.EmptyCell()
			}
			for c, cell := range row {
				merged[from[c]] = cell
			}
			if merged[sourceCol].IsEmpty() {
				merged[sourceCol] = schema.TextCell(names[i])
			}
			out.Rows = append(out.Rows, merged)
		}
	}
	out.Sources = uniqueInOrder(out.Sources)
	return out, nil
}

func uniqueInOrder(items []string) []string {
	var out []string
	for _, s := range items {
		if !slices.Contains(out, s) {
			out = append(out, s)
		}
	}
	return out
}
