package outwriter

import (
	"fmt"
	"slices"
	"unicode/utf8"

	"github.com/huangsam/bugsheet/schema"
	"github.com/xuri/excelize/v2"
)

// Column widths are measured in characters; CJK text counts double.
const (
	minColumnWidth = 10
	maxColumnWidth = 50
	headerFill     = "4472C4"
)

// WriteWorkbook renders the report model as a two-sheet xlsx file at path.
func WriteWorkbook(model schema.ReportModel, path string) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", schema.DetailSheetName); err != nil {
		return fmt.Errorf("failed to name detail sheet: %w", err)
	}
	if _, err := f.NewSheet(schema.StatsSheetName); err != nil {
		return fmt.Errorf("failed to create stats sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{headerFill}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}
	sectionStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create section style: %w", err)
	}

	if err := writeDetailSheet(f, model.Detail, headerStyle); err != nil {
		return err
	}
	if err := writeStatsSheet(f, model.Stats.Entries, headerStyle, sectionStyle); err != nil {
		return err
	}

	f.SetActiveSheet(0)
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save report %s: %w", path, err)
	}
	return nil
}

// VerifyWorkbook checks that a report file carries both sheets and the stats header.
func VerifyWorkbook(path string) error {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return fmt.Errorf("failed to open report %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	for _, name := range []string{schema.DetailSheetName, schema.StatsSheetName} {
		if !slices.Contains(sheets, name) {
			return fmt.Errorf("report %s is missing sheet %q", path, name)
		}
	}

	rows, err := f.GetRows(schema.StatsSheetName)
	if err != nil {
		return fmt.Errorf("failed to read sheet %q: %w", schema.StatsSheetName, err)
	}
	if len(rows) == 0 || len(rows[0]) < 2 ||
		rows[0][0] != schema.StatsItemHeader || rows[0][1] != schema.StatsValueHeader {
		return fmt.Errorf("report %s has an unexpected header on sheet %q", path, schema.StatsSheetName)
	}
	return nil
}

func writeDetailSheet(f *excelize.File, detail schema.DetailSection, headerStyle int) error {
	sheet := schema.DetailSheetName
	if detail.NoData || len(detail.Columns) == 0 {
		return writeRows(f, sheet, []string{schema.NoDataHeader}, [][]string{{schema.NoDataText}}, headerStyle)
	}

	headers := make([]string, len(detail.Columns))
	for i, col := range detail.Columns {
		headers[i] = displayLabel(col)
	}
	return writeRows(f, sheet, headers, detail.Rows, headerStyle)
}

func writeStatsSheet(f *excelize.File, entries []schema.StatEntry, headerStyle, sectionStyle int) error {
	sheet := schema.StatsSheetName
	headers := []string{schema.StatsItemHeader, schema.StatsValueHeader}

	var rows [][]string
	var sectionRows []int
	section := ""
	for _, e := range entries {
		if e.Section != section {
			section = e.Section
			rows = append(rows, []string{"【" + section + "】"})
			sectionRows = append(sectionRows, len(rows)+1)
		}
		rows = append(rows, []string{e.Item, e.Value})
	}
	if err := writeRows(f, sheet, headers, rows, headerStyle); err != nil {
		return err
	}

	for _, r := range sectionRows {
		cell, err := excelize.CoordinatesToCellName(1, r)
		if err != nil {
			return err
		}
		if err := f.SetCellStyle(sheet, cell, cell, sectionStyle); err != nil {
			return fmt.Errorf("failed to style section row %d: %w", r, err)
		}
	}
	return nil
}

// writeRows writes a styled header row, the data rows below it and sizes every column.
func writeRows(f *excelize.File, sheet string, headers []string, rows [][]string, headerStyle int) error {
	if err := setRow(f, sheet, 1, headers); err != nil {
		return err
	}
	for i, row := range rows {
		if err := setRow(f, sheet, i+2, row); err != nil {
			return err
		}
	}

	last, err := excelize.CoordinatesToCellName(len(headers), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", last, headerStyle); err != nil {
		return fmt.Errorf("failed to style header of %q: %w", sheet, err)
	}

	for i, width := range columnWidths(headers, rows) {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		if err := f.SetColWidth(sheet, col, col, width); err != nil {
			return fmt.Errorf("failed to size column %s of %q: %w", col, sheet, err)
		}
	}
	return nil
}

func setRow(f *excelize.File, sheet string, row int, values []string) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	cells := make([]any, len(values))
	for i, v := range values {
		cells[i] = v
	}
	if err := f.SetSheetRow(sheet, cell, &cells); err != nil {
		return fmt.Errorf("failed to write row %d of %q: %w", row, sheet, err)
	}
	return nil
}

func columnWidths(headers []string, rows [][]string) []float64 {
	widths := make([]float64, len(headers))
	for i, h := range headers {
		widths[i] = float64(textWidth(h))
	}
	for _, row := range rows {
		for i := 0; i < len(row) && i < len(widths); i++ {
			widths[i] = max(widths[i], float64(textWidth(row[i])))
		}
	}
	for i := range widths {
		widths[i] = min(max(widths[i]+2, minColumnWidth), maxColumnWidth)
	}
	return widths
}

func textWidth(s string) int {
	n := 0
	for _, r := range s {
		if utf8.RuneLen(r) > 1 {
			n += 2
		} else {
			n++
		}
	}
	return n
}

func displayLabel(column string) string {
	if label, ok := schema.FieldLabels[schema.Field(column)]; ok {
		return label
	}
	return column
}
