package schema

import "time"

// DetailSection holds the row-level part of a report.
type DetailSection struct {
	Columns   []string   `json:"columns"`
	Rows      [][]string `json:"rows"`
	NoData    bool       `json:"no_data"`
	Truncated bool       `json:"truncated"`
	TotalRows int        `json:"total_rows"`
}

// StatEntry is one line of the statistics sheet.
type StatEntry struct {
	Section string `json:"section"`
	Item    string `json:"item"`
	Value   string `json:"value"`
}

// StatsSection holds the aggregate part of a report.
type StatsSection struct {
	Aggregate AggregateStats `json:"aggregate"`
	Entries   []StatEntry    `json:"entries"`
}

// ReportMetadata describes how and from what a report was produced.
type ReportMetadata struct {
	GeneratedAt time.Time `json:"generated_at"`
	SourceCount int       `json:"source_count"`
	RunID       string    `json:"run_id"`
	Sources     []string  `json:"sources"`
}

// ReportModel is the renderer-independent report.
type ReportModel struct {
	Detail   DetailSection  `json:"detail"`
	Stats    StatsSection   `json:"stats"`
	Metadata ReportMetadata `json:"metadata"`
}

// Report sheet names and headers used by the workbook renderer.
const (
	DetailSheetName  = "详细数据"
	StatsSheetName   = "分析统计"
	StatsItemHeader  = "统计项"
	StatsValueHeader = "值"
	NoDataHeader     = "说明"
	NoDataText       = "无数据"
)
