// Package load reads spreadsheet files into raw tables.
package load

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/huangsam/bugsheet/schema"
)

// Options control how a file is read.
type Options struct {
	// Extensions is the supported set, lower-case with a leading dot.
	Extensions []string

	// Sheet names the worksheet to read when the workbook has it.
	Sheet string

	// SheetMatcher reports whether a header row looks like a bug list.
	// The first sheet it accepts is read; nil means the first sheet.
	SheetMatcher func(headers []string) bool
}

// reader turns a file into header-less row grids.
type reader func(path string, opts Options) (sheet string, rows [][]string, err error)

// readers maps each extension we know how to parse to its reader.
var readers = map[string]reader{
	".xlsx": readWorkbook,
	".xlsm": readWorkbook,
	".xltx": readWorkbook,
	".xltm": readWorkbook,
	".csv":  readCSV,
}

// Supported reports whether path has an extension that is both configured and readable.
func Supported(path string, extensions []string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	if !slices.Contains(extensions, ext) {
		return false
	}
	_, ok := readers[ext]
	return ok
}

// Load reads path into a raw table named after the file.
// A header-only file yields zero rows; a file without any value yields zero columns.
func Load(path string, opts Options) (*schema.Table, error) {
	ext := strings.ToLower(filepath.Ext(path))
	read, ok := readers[ext]
	if !ok || !slices.Contains(opts.Extensions, ext) {
		return nil, &schema.UnsupportedFormatError{Path: path, Ext: ext}
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, &schema.UnreadableFileError{Path: path, Err: err}
	}
	if info.IsDir() {
		return nil, &schema.UnreadableFileError{Path: path, Err: fmt.Errorf("is a directory")}
	}

	sheet, rows, err := read(path, opts)
	if err != nil {
		return nil, &schema.UnreadableFileError{Path: path, Err: err}
	}

	table := buildTable(rows)
	table.Name = filepath.Base(path)
	table.Path = path
	table.Sheet = sheet
	return table, nil
}

// buildTable uses the first row with a value as the header and types every cell below it.
func buildTable(rows [][]string) *schema.Table {
	header := -1
	for i, row := range rows {
		if !blankRow(row) {
			header = i
			break
		}
	}
	if header < 0 {
		return &schema.Table{Columns: []string{}, Rows: [][]schema.Cell{}}
	}

	width := 0
	for _, row := range rows[header:] {
		width = max(width, len(row))
	}

	columns := make([]string, width)
	copy(columns, rows[header])

	data := make([][]schema.Cell, 0, len(rows)-header-1)
	for _, row := range rows[header+1:] {
		cells := make([]schema.Cell, width)
		for i := range cells {
			if i < len(row) {
				cells[i] = ParseCell(row[i])
			} else {
				cells[i] = schema.EmptyCell()
			}
		}
		data = append(data, cells)
	}
	return &schema.Table{Columns: columns, Rows: data}
}

func blankRow(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
