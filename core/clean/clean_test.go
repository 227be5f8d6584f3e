package clean

import (
	"math/rand/v2"
	"testing"

	"github.com/huangsam/bugsheet/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func text(s string) schema.Cell { return schema.TextCell(s) }
func num(n float64) schema.Cell { return schema.NumberCell(n) }
func empty() schema.Cell        { return schema.EmptyCell() }

func TestCleanScenario(t *testing.T) {
	raw := &schema.Table{
		Name:    "bugs.xlsx",
		Columns: []string{"编号", "严重级别", "修复状态"},
		Rows: [][]schema.Cell{
			{num(1), text("S"), text("已修复")},
			{num(2), text("X"), text("未修复")},
			{num(3), empty(), empty()},
			{empty(), empty(), empty()},
		},
	}

	out, report := Clean(raw)

	assert.Equal(t, []string{"编号", "严重级别", "修复状态"}, out.Columns)
	assert.Len(t, out.Rows, 3)
	assert.Equal(t, 1, report.DroppedRows)
	assert.Empty(t, report.DroppedColumns)
	assert.Equal(t, map[string]int{"编号": 0, "严重级别": 1, "修复状态": 1}, report.EmptyCells)
	assert.Equal(t, "bugs.xlsx", report.Source)

	// The input is left alone
	assert.Len(t, raw.Rows, 4)
}

func TestCleanTrimsAndDropsEmptyColumns(t *testing.T) {
	raw := &schema.Table{
		Name:    "a.xlsx",
		Columns: []string{" 模块 ", "备注", "状态"},
		Rows: [][]schema.Cell{
			{text("  登录 "), text("   "), text("已修复")},
			{text("支付"), empty(), text(" 未修复")},
		},
	}

	out, report := Clean(raw)

	assert.Equal(t, []string{"模块", "状态"}, out.Columns)
	assert.Equal(t, []string{"备注"}, report.DroppedColumns)
	assert.Equal(t, [][]schema.Cell{
		{text("登录"), text("已修复")},
		{text("支付"), text("未修复")},
	}, out.Rows)
}

func TestCleanDuplicateHeaders(t *testing.T) {
	tests := []struct {
		name       string
		columns    []string
		expected   []string
		collisions []schema.HeaderCollision
	}{
		{
			name:     "unique headers",
			columns:  []string{"a", "b"},
			expected: []string{"a", "b"},
		},
		{
			name:     "simple repeat",
			columns:  []string{"编号", "编号", "编号"},
			expected: []string{"编号", "编号_2", "编号_3"},
			collisions: []schema.HeaderCollision{
				{Original: "编号", Renamed: "编号_2", Position: 2},
				{Original: "编号", Renamed: "编号_3", Position: 3},
			},
		},
		{
			name:     "suffix already taken",
			columns:  []string{"编号", "编号_2", "编号"},
			expected: []string{"编号", "编号_2", "编号_3"},
			collisions: []schema.HeaderCollision{
				{Original: "编号", Renamed: "编号_3", Position: 3},
			},
		},
		{
			name:     "repeat after trimming",
			columns:  []string{"状态", " 状态 "},
			expected: []string{"状态", "状态_2"},
			collisions: []schema.HeaderCollision{
				{Original: "状态", Renamed: "状态_2", Position: 2},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			row := make([]schema.Cell, len(tt.columns))
			for i := range row {
				row[i] = num(float64(i))
			}
			out, report := Clean(&schema.Table{Columns: tt.columns, Rows: [][]schema.Cell{row}})

			assert.Equal(t, tt.expected, out.Columns)
			assert.Equal(t, tt.collisions, report.HeaderCollisions)
			duplicates := 0
			for _, a := range report.Anomalies {
				if a.Kind == schema.DuplicateHeader {
					duplicates++
				}
			}
			assert.Equal(t, len(tt.collisions), duplicates)
		})
	}
}

func TestCleanUnnamedColumn(t *testing.T) {
	raw := &schema.Table{
		Name:    "x.csv",
		Columns: []string{"severity", "", "status"},
		Rows:    [][]schema.Cell{{text("S"), text("note"), text("fixed")}},
	}

	out, report := Clean(raw)

	assert.Equal(t, []string{"severity", "column_2", "status"}, out.Columns)
	require.Len(t, report.Anomalies, 1)
	assert.Equal(t, schema.UnnamedColumn, report.Anomalies[0].Kind)
	assert.Equal(t, "column_2", report.Anomalies[0].Column)
}

func TestCleanExcelErrors(t *testing.T) {
	raw := &schema.Table{
		Name:    "calc.xlsx",
		Columns: []string{"模块", "修复率"},
		Rows: [][]schema.Cell{
			{text("登录"), text("#DIV/0!")},
			{text("支付"), text("#n/a")},
			{text("订单"), num(0.5)},
		},
	}

	out, report := Clean(raw)

	assert.True(t, out.Rows[0][1].IsEmpty())
	assert.True(t, out.Rows[1][1].IsEmpty())
	assert.Equal(t, 2, report.EmptyCells["修复率"])

	var unparseable []schema.Anomaly
	for _, a := range report.Anomalies {
		if a.Kind == schema.UnparseableCell {
			unparseable = append(unparseable, a)
		}
	}
	require.Len(t, unparseable, 2)
	assert.Equal(t, schema.Anomaly{
		Kind: schema.UnparseableCell, Source: "calc.xlsx", Column: "修复率", Row: 1, Detail: "#DIV/0!",
	}, unparseable[0])
}

func TestCleanEmptySheet(t *testing.T) {
	t.Run("header only keeps named headers", func(t *testing.T) {
		out, report := Clean(&schema.Table{Name: "h.xlsx", Columns: []string{"严重级别", "", "状态"}, Rows: [][]schema.Cell{}})

		assert.Equal(t, []string{"严重级别", "状态"}, out.Columns)
		assert.Empty(t, out.Rows)
		assert.Equal(t, []string{"column_2"}, report.DroppedColumns)
		require.NotEmpty(t, report.Anomalies)
		assert.Equal(t, schema.EmptySheet, report.Anomalies[len(report.Anomalies)-1].Kind)
	})

	t.Run("all rows empty", func(t *testing.T) {
		out, report := Clean(&schema.Table{
			Columns: []string{"a", "b"},
			Rows:    [][]schema.Cell{{empty(), text(" ")}, {empty(), empty()}},
		})

		assert.Empty(t, out.Columns)
		assert.Empty(t, out.Rows)
		assert.Equal(t, 2, report.DroppedRows)
		assert.Equal(t, []string{"a", "b"}, report.DroppedColumns)
	})

	t.Run("nothing at all", func(t *testing.T) {
		out, _ := Clean(&schema.Table{})
		assert.Empty(t, out.Columns)
		assert.Empty(t, out.Rows)
	})
}

// randomTable builds a table where roughly a third of the cells are empty.
func randomTable(r *rand.Rand) *schema.Table {
	cols := r.IntN(6)
	rows := r.IntN(8)
	t := &schema.Table{Name: "random"}
	for c := range cols {
		t.Columns = append(t.Columns, string(rune('a'+c)))
	}
	for range rows {
		row := make([]schema.Cell, cols)
		for c := range row {
			switch r.IntN(4) {
			case 0:
				row[c] = empty()
			case 1:
				row[c] = text(" ")
			case 2:
				row[c] = num(float64(r.IntN(100)))
			default:
				row[c] = text(" v ")
			}
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

func TestCleanNeverGrows(t *testing.T) {
	r := rand.New(rand.NewPCG(7, 11))
	for range 500 {
		raw := randomTable(r)
		out, report := Clean(raw)

		require.LessOrEqual(t, len(out.Rows), len(raw.Rows))
		require.LessOrEqual(t, len(out.Columns), len(raw.Columns))
		require.Equal(t, len(raw.Rows)-report.DroppedRows, len(out.Rows))
		for _, row := range out.Rows {
			require.Len(t, row, len(out.Columns))
		}
	}
}

func TestCleanUnchangedWithoutEmpties(t *testing.T) {
	r := rand.New(rand.NewPCG(3, 5))
	for range 200 {
		cols := 1 + r.IntN(5)
		raw := &schema.Table{Name: "full"}
		for c := range cols {
			raw.Columns = append(raw.Columns, string(rune('a'+c)))
		}
		for range 1 + r.IntN(6) {
			row := make([]schema.Cell, cols)
			for c := range row {
				if r.IntN(2) == 0 {
					row[c] = num(float64(r.IntN(10)))
				} else {
					row[c] = text("  x  ")
				}
			}
			raw.Rows = append(raw.Rows, row)
		}

		out, report := Clean(raw)

		require.Equal(t, raw.Columns, out.Columns)
		require.Len(t, out.Rows, len(raw.Rows))
		require.Zero(t, report.DroppedRows)
		for i, row := range raw.Rows {
			for c, cell := range row {
				if cell.Kind == schema.KindText {
					require.Equal(t, text("x"), out.Rows[i][c])
				} else {
					require.Equal(t, cell, out.Rows[i][c])
				}
			}
		}
	}
}
