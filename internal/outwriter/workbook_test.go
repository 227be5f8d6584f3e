package outwriter

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/huangsam/bugsheet/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func readFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	return string(data), err
}

func readSheet(t *testing.T, path, sheet string) [][]string {
	t.Helper()
	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()
	rows, err := f.GetRows(sheet)
	require.NoError(t, err)
	return rows
}

func TestWriteWorkbook(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.xlsx")
	require.NoError(t, WriteWorkbook(sampleResult().Report, path))
	require.NoError(t, VerifyWorkbook(path))

	detail := readSheet(t, path, schema.DetailSheetName)
	require.Len(t, detail, 3)
	assert.Equal(t, []string{"严重级别", "修复状态", "描述", "文件来源"}, detail[0])
	assert.Equal(t, []string{"S", "FIXED", "登录失败", "bugs.xlsx"}, detail[1])

	stats := readSheet(t, path, schema.StatsSheetName)
	assert.Equal(t, []string{schema.StatsItemHeader, schema.StatsValueHeader}, stats[0])
	assert.Equal(t, []string{"【基本信息】"}, stats[1])
	assert.Equal(t, []string{"总行数", "2"}, stats[2])
	assert.Equal(t, []string{"【修复状态】"}, stats[3])
	assert.Equal(t, []string{"修复率", "50.0%"}, stats[4])
}

func TestWriteWorkbookNoData(t *testing.T) {
	model := sampleResult().Report
	model.Detail = schema.DetailSection{Columns: []string{"severity"}, Rows: [][]string{}, NoData: true}

	path := filepath.Join(t.TempDir(), "empty.xlsx")
	require.NoError(t, WriteWorkbook(model, path))
	require.NoError(t, VerifyWorkbook(path))

	detail := readSheet(t, path, schema.DetailSheetName)
	assert.Equal(t, [][]string{{schema.NoDataHeader}, {schema.NoDataText}}, detail)
}

func TestVerifyWorkbook(t *testing.T) {
	dir := t.TempDir()

	t.Run("missing stats sheet", func(t *testing.T) {
		f := excelize.NewFile()
		require.NoError(t, f.SetSheetName("Sheet1", schema.DetailSheetName))
		path := filepath.Join(dir, "partial.xlsx")
		require.NoError(t, f.SaveAs(path))
		require.NoError(t, f.Close())

		err := VerifyWorkbook(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), schema.StatsSheetName)
	})

	t.Run("wrong stats header", func(t *testing.T) {
		f := excelize.NewFile()
		require.NoError(t, f.SetSheetName("Sheet1", schema.DetailSheetName))
		_, err := f.NewSheet(schema.StatsSheetName)
		require.NoError(t, err)
		require.NoError(t, f.SetCellValue(schema.StatsSheetName, "A1", "item"))
		path := filepath.Join(dir, "header.xlsx")
		require.NoError(t, f.SaveAs(path))
		require.NoError(t, f.Close())

		assert.ErrorContains(t, VerifyWorkbook(path), "unexpected header")
	})

	t.Run("not a workbook", func(t *testing.T) {
		path := filepath.Join(dir, "plain.xlsx")
		require.NoError(t, os.WriteFile(path, []byte("not a zip"), 0o600))
		assert.Error(t, VerifyWorkbook(path))
	})
}

func TestColumnWidths(t *testing.T) {
	widths := columnWidths([]string{"a", "严重级别"}, [][]string{{"short", "x"}, {string(make([]byte, 80)), ""}})
	require.Len(t, widths, 2)
	assert.Equal(t, float64(maxColumnWidth), widths[0])
	assert.Equal(t, float64(minColumnWidth), widths[1])
}

func TestTextWidth(t *testing.T) {
	assert.Equal(t, 3, textWidth("abc"))
	assert.Equal(t, 4, textWidth("模块"))
	assert.Equal(t, 0, textWidth(""))
}
