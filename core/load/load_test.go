package load

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/huangsam/bugsheet/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/transform"
)

type testSheet struct {
	name string
	rows [][]any
}

// writeWorkbook saves the given sheets, in order, to dir/name.
func writeWorkbook(t *testing.T, dir, name string, sheets ...testSheet) string {
	t.Helper()
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	for i, sheet := range sheets {
		if i == 0 {
			if sheet.name != "Sheet1" {
				require.NoError(t, f.SetSheetName("Sheet1", sheet.name))
			}
		} else {
			_, err := f.NewSheet(sheet.name)
			require.NoError(t, err)
		}
		for r, row := range sheet.rows {
			cell, err := excelize.CoordinatesToCellName(1, r+1)
			require.NoError(t, err)
			values := row
			require.NoError(t, f.SetSheetRow(sheet.name, cell, &values))
		}
	}

	path := filepath.Join(dir, name)
	require.NoError(t, f.SaveAs(path))
	return path
}

func allExtensions() Options {
	return Options{Extensions: []string{".xlsx", ".xlsm", ".csv"}}
}

func TestLoadWorkbook(t *testing.T) {
	dir := t.TempDir()
	path := writeWorkbook(t, dir, "bugs.xlsx", testSheet{
		name: "Bugs",
		rows: [][]any{
			{"编号", "严重级别", "修复状态", "日期"},
			{1, "S", "已修复", "2024-08-04"},
			{2, "A"},
		},
	})

	table, err := Load(path, allExtensions())
	require.NoError(t, err)

	assert.Equal(t, "bugs.xlsx", table.Name)
	assert.Equal(t, path, table.Path)
	assert.Equal(t, "Bugs", table.Sheet)
	assert.Equal(t, []string{"编号", "严重级别", "修复状态", "日期"}, table.Columns)
	require.Len(t, table.Rows, 2)

	first := table.Rows[0]
	assert.Equal(t, schema.NumberCell(1), first[0])
	assert.Equal(t, schema.TextCell("S"), first[1])
	assert.Equal(t, schema.DateCell(time.Date(2024, 8, 4, 0, 0, 0, 0, time.UTC)), first[3])

	// Short rows are padded to the header width
	second := table.Rows[1]
	require.Len(t, second, 4)
	assert.True(t, second[2].IsEmpty())
	assert.True(t, second[3].IsEmpty())
}

func TestLoadHeaderOnly(t *testing.T) {
	path := writeWorkbook(t, t.TempDir(), "header.xlsx", testSheet{
		name: "Sheet1",
		rows: [][]any{{"严重级别", "修复状态"}},
	})

	table, err := Load(path, allExtensions())
	require.NoError(t, err)
	assert.Equal(t, []string{"严重级别", "修复状态"}, table.Columns)
	assert.Empty(t, table.Rows)
}

func TestLoadEmptyWorkbook(t *testing.T) {
	path := writeWorkbook(t, t.TempDir(), "empty.xlsx", testSheet{name: "Sheet1"})

	table, err := Load(path, allExtensions())
	require.NoError(t, err)
	assert.Empty(t, table.Columns)
	assert.Empty(t, table.Rows)
}

func TestLoadSkipsLeadingBlankRows(t *testing.T) {
	path := writeWorkbook(t, t.TempDir(), "offset.xlsx", testSheet{
		name: "Sheet1",
		rows: [][]any{{""}, {"", ""}, {"模块", "状态"}, {"登录", "未修复"}},
	})

	table, err := Load(path, allExtensions())
	require.NoError(t, err)
	assert.Equal(t, []string{"模块", "状态"}, table.Columns)
	require.Len(t, table.Rows, 1)
	assert.Equal(t, schema.TextCell("登录"), table.Rows[0][0])
}

func TestLoadSheetSelection(t *testing.T) {
	dir := t.TempDir()
	path := writeWorkbook(t, dir, "multi.xlsx",
		testSheet{name: "封面", rows: [][]any{{"测试报告"}, {"版本 1.0"}}},
		testSheet{name: "缺陷", rows: [][]any{{"严重级别", "修复状态"}, {"S", "已修复"}}},
		testSheet{name: "附录", rows: [][]any{{"备注"}, {"无"}}},
	)
	matcher := func(headers []string) bool {
		for _, h := range headers {
			if strings.Contains(h, "严重") {
				return true
			}
		}
		return false
	}

	tests := []struct {
		name     string
		opts     Options
		expected string
	}{
		{"no matcher reads first sheet", Options{}, "封面"},
		{"matcher picks bug sheet", Options{SheetMatcher: matcher}, "缺陷"},
		{"configured sheet wins", Options{Sheet: "附录", SheetMatcher: matcher}, "附录"},
		{"missing configured sheet falls back", Options{Sheet: "nope", SheetMatcher: matcher}, "缺陷"},
		{"no match falls back to first", Options{SheetMatcher: func([]string) bool { return false }}, "封面"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.opts.Extensions = []string{".xlsx"}
			table, err := Load(path, tt.opts)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, table.Sheet)
		})
	}
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()
	corrupt := filepath.Join(dir, "corrupt.xlsx")
	require.NoError(t, os.WriteFile(corrupt, []byte("definitely not a zip archive"), 0o644))
	folder := filepath.Join(dir, "folder.xlsx")
	require.NoError(t, os.Mkdir(folder, 0o755))
	notes := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(notes, []byte("hello"), 0o644))
	legacy := filepath.Join(dir, "legacy.xls")
	require.NoError(t, os.WriteFile(legacy, []byte("old"), 0o644))

	tests := []struct {
		name        string
		path        string
		opts        Options
		unsupported bool
	}{
		{"missing file", filepath.Join(dir, "missing.xlsx"), allExtensions(), false},
		{"corrupt workbook", corrupt, allExtensions(), false},
		{"directory", folder, allExtensions(), false},
		{"extension not configured", notes, allExtensions(), true},
		{"configured but no reader", legacy, Options{Extensions: []string{".xls"}}, true},
		{"reader but not configured", corrupt, Options{Extensions: []string{".csv"}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table, err := Load(tt.path, tt.opts)
			require.Error(t, err)
			assert.Nil(t, table)
			if tt.unsupported {
				var target *schema.UnsupportedFormatError
				assert.ErrorAs(t, err, &target)
			} else {
				var target *schema.UnreadableFileError
				assert.ErrorAs(t, err, &target)
				assert.Equal(t, tt.path, target.Path)
			}
		})
	}
}

func TestLoadExtensionCaseInsensitive(t *testing.T) {
	dir := t.TempDir()
	lower := writeWorkbook(t, dir, "lower.xlsx", testSheet{
		name: "Sheet1",
		rows: [][]any{{"level"}, {"S"}},
	})
	path := filepath.Join(dir, "UPPER.XLSX")
	require.NoError(t, os.Rename(lower, path))

	table, err := Load(path, allExtensions())
	require.NoError(t, err)
	assert.Len(t, table.Rows, 1)
}

func TestLoadCSV(t *testing.T) {
	dir := t.TempDir()

	utf8Path := filepath.Join(dir, "bom.csv")
	content := append([]byte{0xEF, 0xBB, 0xBF}, []byte("严重级别,修复状态\nS,已修复\nB\n")...)
	require.NoError(t, os.WriteFile(utf8Path, content, 0o644))

	gbk, _, err := transform.Bytes(simplifiedchinese.GBK.NewEncoder(), []byte("严重级别,修复状态\nA,未修复\n"))
	require.NoError(t, err)
	gbkPath := filepath.Join(dir, "gbk.csv")
	require.NoError(t, os.WriteFile(gbkPath, gbk, 0o644))

	t.Run("utf8 with bom", func(t *testing.T) {
		table, err := Load(utf8Path, allExtensions())
		require.NoError(t, err)
		assert.Equal(t, []string{"严重级别", "修复状态"}, table.Columns)
		require.Len(t, table.Rows, 2)
		assert.True(t, table.Rows[1][1].IsEmpty())
		assert.Empty(t, table.Sheet)
	})

	t.Run("gbk", func(t *testing.T) {
		table, err := Load(gbkPath, allExtensions())
		require.NoError(t, err)
		assert.Equal(t, []string{"严重级别", "修复状态"}, table.Columns)
		require.Len(t, table.Rows, 1)
		assert.Equal(t, schema.TextCell("未修复"), table.Rows[0][1])
	})
}

func TestParseCell(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		expected schema.Cell
	}{
		{"empty", "", schema.EmptyCell()},
		{"integer", "42", schema.NumberCell(42)},
		{"negative float", "-3.5", schema.NumberCell(-3.5)},
		{"exponent", "1e3", schema.NumberCell(1000)},
		{"padded number", " 7 ", schema.NumberCell(7)},
		{"iso date", "2024-08-04", schema.DateCell(time.Date(2024, 8, 4, 0, 0, 0, 0, time.UTC))},
		{"slash date", "2024/8/4", schema.DateCell(time.Date(2024, 8, 4, 0, 0, 0, 0, time.UTC))},
		{"chinese date", "2024年8月4日", schema.DateCell(time.Date(2024, 8, 4, 0, 0, 0, 0, time.UTC))},
		{"text keeps spaces", " 已修复 ", schema.TextCell(" 已修复 ")},
		{"whitespace only is text", "   ", schema.TextCell("   ")},
		{"version string is text", "1.2.3", schema.TextCell("1.2.3")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ParseCell(tt.raw))
		})
	}
}

func TestSupported(t *testing.T) {
	exts := []string{".xlsx", ".csv", ".xls"}
	assert.True(t, Supported("a/b.xlsx", exts))
	assert.True(t, Supported("a/b.CSV", exts))
	assert.False(t, Supported("a/b.xls", exts))
	assert.False(t, Supported("a/b.xlsm", exts))
	assert.False(t, Supported("a/b", exts))
}
