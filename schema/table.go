package schema

import (
	"strconv"
	"strings"
	"time"
)

// Cell is a single typed spreadsheet value.
type Cell struct {
	Kind   CellKind  `json:"kind"`
	Text   string    `json:"text,omitempty"`
	Number float64   `json:"number,omitempty"`
	Time   time.Time `json:"time,omitzero"`
}

// TextCell returns a text cell.
func TextCell(s string) Cell { return Cell{Kind: KindText, Text: s} }

// NumberCell returns a numeric cell.
func NumberCell(n float64) Cell { return Cell{Kind: KindNumber, Number: n} }

// DateCell returns a date cell.
func DateCell(t time.Time) Cell { return Cell{Kind: KindDate, Time: t} }

// EmptyCell returns the empty marker.
func EmptyCell() Cell { return Cell{Kind: KindEmpty} }

// IsEmpty reports whether the cell holds no value.
func (c Cell) IsEmpty() bool {
	return c.Kind == KindEmpty || c.Kind == ""
}

// String renders the cell the way it appears in reports.
func (c Cell) String() string {
	switch c.Kind {
	case KindText:
		return c.Text
	case KindNumber:
		return strconv.FormatFloat(c.Number, 'f', -1, 64)
	case KindDate:
		if c.Time.Hour() == 0 && c.Time.Minute() == 0 && c.Time.Second() == 0 {
			return c.Time.Format(DateFormat)
		}
		return c.Time.Format(DateTimeFormat)
	default:
		return ""
	}
}

// Report date layouts.
const (
	DateFormat     = "2006-01-02"
	DateTimeFormat = "2006-01-02 15:04:05"
)

// dateLayouts are tried in order when a text value might be a date.
var dateLayouts = []string{
	DateFormat,
	DateTimeFormat,
	"2006-01-02 15:04",
	"2006/01/02",
	"2006/1/2",
	"2006/01/02 15:04:05",
	"2006/1/2 15:04",
	"2006-1-2",
	"2006.01.02",
	"2006年1月2日",
	"01-02-06",
	"1/2/06",
	time.RFC3339,
}

// ParseDate parses s with the known spreadsheet date layouts.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// Table is an ordered grid of cells read from one source or merged from many.
// Every row holds exactly len(Columns) cells.
type Table struct {
	Name     string           `json:"name"`
	Path     string           `json:"path,omitempty"`
	Sheet    string           `json:"sheet,omitempty"`
	Columns  []string         `json:"columns"`
	Rows     [][]Cell         `json:"rows"`
	Merged   bool             `json:"merged,omitempty"`
	Sources  []string         `json:"sources,omitempty"`
	Bindings map[string]Field `json:"bindings,omitempty"`
}

// ColumnIndex returns the position of the named column, or -1.
func (t *Table) ColumnIndex(name string) int {
	for i, c := range t.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// FieldIndex returns the position of a canonical field column, or -1.
func (t *Table) FieldIndex(f Field) int {
	return t.ColumnIndex(string(f))
}

// RowCount returns the number of data rows.
func (t *Table) RowCount() int {
	return len(t.Rows)
}

// Clone returns a deep copy of the table.
func (t *Table) Clone() *Table {
	clone := *t
	clone.Columns = append([]string(nil), t.Columns...)
	clone.Sources = append([]string(nil), t.Sources...)
	clone.Rows = make([][]Cell, len(t.Rows))
	for i, row := range t.Rows {
		clone.Rows[i] = append([]Cell(nil), row...)
	}
	if t.Bindings != nil {
		clone.Bindings = make(map[string]Field, len(t.Bindings))
		for k, v := range t.Bindings {
			clone.Bindings[k] = v
		}
	}
	return &clone
}

// HeaderCollision records a duplicate header that was renamed.
type HeaderCollision struct {
	Original string `json:"original"`
	Renamed  string `json:"renamed"`
	Position int    `json:"position"`
}

// Anomaly is a non-fatal structural problem tagged with where it was found.
type Anomaly struct {
	Kind   AnomalyKind `json:"kind"`
	Source string      `json:"source"`
	Column string      `json:"column,omitempty"`
	Row    int         `json:"row,omitempty"` // 1-based data row, 0 when not row-specific
	Detail string      `json:"detail,omitempty"`
}

// ValidationReport describes what cleaning changed in a table.
type ValidationReport struct {
	Source           string            `json:"source"`
	DroppedColumns   []string          `json:"dropped_columns,omitempty"`
	DroppedRows      int               `json:"dropped_rows"`
	HeaderCollisions []HeaderCollision `json:"header_collisions,omitempty"`
	EmptyCells       map[string]int    `json:"empty_cells"`
	Anomalies        []Anomaly         `json:"anomalies,omitempty"`
}
