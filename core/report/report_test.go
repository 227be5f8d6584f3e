package report

import (
	"testing"
	"time"

	"github.com/huangsam/bugsheet/core/stats"
	"github.com/huangsam/bugsheet/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var generatedAt = time.Date(2024, 8, 4, 9, 30, 0, 0, time.UTC)

func sampleTable() *schema.Table {
	return &schema.Table{
		Columns: []string{"编号", "severity", "fix_status", "reported_at"},
		Rows: [][]schema.Cell{
			{schema.NumberCell(1), schema.TextCell("S"), schema.TextCell("FIXED"), schema.DateCell(time.Date(2024, 8, 1, 0, 0, 0, 0, time.UTC))},
			{schema.NumberCell(2.5), schema.TextCell("A"), schema.TextCell("UNFIXED"), schema.EmptyCell()},
			{schema.NumberCell(3), schema.TextCell("UNCLASSIFIED"), schema.TextCell("UNCLASSIFIED"), schema.EmptyCell()},
		},
	}
}

func findEntry(entries []schema.StatEntry, section, item string) (schema.StatEntry, bool) {
	for _, e := range entries {
		if e.Section == section && e.Item == item {
			return e, true
		}
	}
	return schema.StatEntry{}, false
}

func TestBuildDetail(t *testing.T) {
	table := sampleTable()
	model := Build(table, stats.Analyze(table), schema.ReportMetadata{GeneratedAt: generatedAt, SourceCount: 1}, Options{})

	assert.Equal(t, table.Columns, model.Detail.Columns)
	assert.False(t, model.Detail.NoData)
	assert.False(t, model.Detail.Truncated)
	assert.Equal(t, 3, model.Detail.TotalRows)
	assert.Equal(t, [][]string{
		{"1", "S", "FIXED", "2024-08-01"},
		{"2.5", "A", "UNFIXED", ""},
		{"3", "UNCLASSIFIED", "UNCLASSIFIED", ""},
	}, model.Detail.Rows)
	assert.Equal(t, 1, model.Metadata.SourceCount)
	assert.Equal(t, generatedAt, model.Metadata.GeneratedAt)
}

func TestBuildPreviewCap(t *testing.T) {
	table := sampleTable()
	model := Build(table, stats.Analyze(table), schema.ReportMetadata{}, Options{PreviewRows: 2})

	assert.True(t, model.Detail.Truncated)
	assert.Len(t, model.Detail.Rows, 2)
	assert.Equal(t, 3, model.Detail.TotalRows)
	assert.Equal(t, 3, model.Stats.Aggregate.TotalRows)
}

func TestBuildNoData(t *testing.T) {
	table := &schema.Table{Columns: []string{"severity"}}
	model := Build(table, stats.Analyze(table), schema.ReportMetadata{GeneratedAt: generatedAt}, Options{})

	assert.True(t, model.Detail.NoData)
	assert.Empty(t, model.Detail.Rows)
	assert.NotNil(t, model.Detail.Rows)
	entry, ok := findEntry(model.Stats.Entries, SectionStatus, "修复率")
	require.True(t, ok)
	assert.Equal(t, "0.0%", entry.Value)
}

func TestBuildEntries(t *testing.T) {
	table := sampleTable()
	meta := schema.ReportMetadata{
		GeneratedAt: generatedAt,
		SourceCount: 7,
		RunID:       "run-1",
		Sources:     []string{"a", "b", "c", "d", "e", "f", "g"},
	}
	entries := Build(table, stats.Analyze(table), meta, Options{}).Stats.Entries

	tests := []struct {
		section string
		item    string
		value   string
	}{
		{SectionBasic, "生成时间", "2024-08-04 09:30:00"},
		{SectionBasic, "文件数量", "7"},
		{SectionBasic, "总行数", "3"},
		{SectionBasic, "运行ID", "run-1"},
		{SectionSeverity, "S级", "1个 (33.3%)"},
		{SectionSeverity, "B级", "0个 (0.0%)"},
		{SectionSeverity, "未分级", "1个 (33.3%)"},
		{SectionStatus, "已修复", "1个 (33.3%)"},
		{SectionStatus, "修复率", "50.0%"},
		{SectionType, "未分类", "3个 (100.0%)"},
		{SectionType, "程序Bug修复率", "0.0% (0/0)"},
		{SectionQuality, "空值单元格", "2"},
		{SectionQuality, "日期 缺失", "2个 (66.7%)"},
		{SectionQuality, "重复行", "0"},
		{SectionKinds, "数值列", "1"},
		{SectionKinds, "文本列", "2"},
		{SectionKinds, "日期列", "1"},
		{SectionSources, "来源数量", "7"},
		{SectionSources, "来源列表", "a、b、c、d、e 等7个"},
		{SectionDaily, "2024-08-01", "共1个, 程序Bug 0 (已修复 0, 0.0%), 非程序Bug 0 (已修复 0, 0.0%), 修复率 100.0%"},
	}

	for _, tt := range tests {
		t.Run(tt.section+"/"+tt.item, func(t *testing.T) {
			entry, ok := findEntry(entries, tt.section, tt.item)
			require.True(t, ok, "missing entry %s/%s", tt.section, tt.item)
			assert.Equal(t, tt.value, entry.Value)
		})
	}
}

func TestBuildPerSourceEntries(t *testing.T) {
	table := &schema.Table{
		Columns: []string{"severity", "fix_status", "source_file"},
		Merged:  true,
		Sources: []string{"记录0804_王超.xlsx"},
		Rows: [][]schema.Cell{
			{schema.TextCell("S"), schema.TextCell("FIXED"), schema.TextCell("记录0804_王超.xlsx")},
		},
	}
	entries := Build(table, stats.Analyze(table), schema.ReportMetadata{Sources: table.Sources}, Options{}).Stats.Entries

	entry, ok := findEntry(entries, SectionSources, "0804_王超 (记录0804_王超.xlsx)")
	require.True(t, ok)
	assert.Equal(t, "1行, S级 1, A级 0, B级 0, C级 0, 未分级 0, 程序Bug 0 (已修复 0, 0.0%), 非程序Bug 0 (已修复 0, 0.0%), 修复率 100.0%", entry.Value)
}

func TestBuildPerSourceEntriesWithSharedLabel(t *testing.T) {
	table := &schema.Table{
		Columns: []string{"severity", "defect_type", "fix_status", "source_file"},
		Merged:  true,
		Sources: []string{"a.xlsx", "b.xlsx"},
		Rows: [][]schema.Cell{
			{schema.TextCell("S"), schema.TextCell("PROGRAM_BUG"), schema.TextCell("FIXED"), schema.TextCell("a.xlsx")},
			{schema.TextCell("A"), schema.TextCell("PROGRAM_BUG"), schema.TextCell("UNFIXED"), schema.TextCell("b.xlsx")},
			{schema.TextCell("C"), schema.TextCell("NON_PROGRAM_BUG"), schema.TextCell("FIXED"), schema.TextCell("b.xlsx")},
		},
	}
	entries := Build(table, stats.Analyze(table), schema.ReportMetadata{Sources: table.Sources}, Options{}).Stats.Entries

	tests := []struct {
		item  string
		value string
	}{
		{"未识别_质检 (a.xlsx)", "1行, S级 1, A级 0, B级 0, C级 0, 未分级 0, 程序Bug 1 (已修复 1, 100.0%), 非程序Bug 0 (已修复 0, 0.0%), 修复率 100.0%"},
		{"未识别_质检 (b.xlsx)", "2行, S级 0, A级 1, B级 0, C级 1, 未分级 0, 程序Bug 1 (已修复 0, 0.0%), 非程序Bug 1 (已修复 1, 100.0%), 修复率 50.0%"},
		{"合计", "3行, S级 1, A级 1, B级 0, C级 1, 未分级 0, 程序Bug 2 (已修复 1, 50.0%), 非程序Bug 1 (已修复 1, 100.0%), 修复率 66.7%"},
	}
	for _, tt := range tests {
		t.Run(tt.item, func(t *testing.T) {
			entry, ok := findEntry(entries, SectionSources, tt.item)
			require.True(t, ok, "missing entry %s", tt.item)
			assert.Equal(t, tt.value, entry.Value)
		})
	}
}

func TestBuildDoesNotMutate(t *testing.T) {
	table := sampleTable()
	before := table.Clone()
	_ = Build(table, stats.Analyze(table), schema.ReportMetadata{}, Options{PreviewRows: 1})
	assert.Equal(t, before, table)
}

func TestFileName(t *testing.T) {
	assert.Equal(t, "bug_analysis_20240804_093000.xlsx", FileName("bug_analysis", generatedAt))
}
