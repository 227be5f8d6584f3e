package load

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/huangsam/bugsheet/schema"
)

var numberPattern = regexp.MustCompile(`^[-+]?(\d+\.?\d*|\.\d+)([eE][-+]?\d+)?$`)

// ParseCell types a raw spreadsheet string as a number, a date, text or empty.
// Text keeps its surrounding whitespace; trimming is the validator's job.
func ParseCell(raw string) schema.Cell {
	trimmed := strings.TrimSpace(raw)
	if raw == "" {
		return schema.EmptyCell()
	}
	if numberPattern.MatchString(trimmed) {
		if n, err := strconv.ParseFloat(trimmed, 64); err == nil {
			return schema.NumberCell(n)
		}
	}
	if t, ok := schema.ParseDate(trimmed); ok {
		return schema.DateCell(t)
	}
	return schema.TextCell(raw)
}
