package load

import (
	"fmt"
	"slices"

	"github.com/xuri/excelize/v2"
)

// readWorkbook returns the rows of the selected worksheet.
func readWorkbook(path string, opts Options) (string, [][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return "", nil, fmt.Errorf("open workbook: %w", err)
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return "", nil, fmt.Errorf("workbook has no sheets")
	}

	if opts.Sheet != "" && slices.Contains(sheets, opts.Sheet) {
		rows, err := f.GetRows(opts.Sheet)
		if err != nil {
			return "", nil, fmt.Errorf("read sheet %s: %w", opts.Sheet, err)
		}
		return opts.Sheet, rows, nil
	}

	var firstRows [][]string
	for i, name := range sheets {
		rows, err := f.GetRows(name)
		if err != nil {
			return "", nil, fmt.Errorf("read sheet %s: %w", name, err)
		}
		if i == 0 {
			firstRows = rows
		}
		if opts.SheetMatcher == nil {
			break
		}
		if header := firstNonBlank(rows); header != nil && opts.SheetMatcher(header) {
			return name, rows, nil
		}
	}
	return sheets[0], firstRows, nil
}

func firstNonBlank(rows [][]string) []string {
	for _, row := range rows {
		if !blankRow(row) {
			return row
		}
	}
	return nil
}
