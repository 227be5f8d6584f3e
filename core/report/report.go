// Package report assembles the renderer-independent report model.
package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/huangsam/bugsheet/schema"
)

// Options tune how much of the table goes into the detail section.
type Options struct {
	PreviewRows int // 0 keeps every row
}

// Section titles of the statistics sheet.
const (
	SectionBasic    = "基本信息"
	SectionSeverity = "严重级别"
	SectionType     = "Bug类型"
	SectionStatus   = "修复状态"
	SectionQuality  = "数据质量"
	SectionKinds    = "列类型"
	SectionSources  = "文件来源"
	SectionDaily    = "日期分布"
	SectionModules  = "模块分布"
)

// maxListedSources caps the inline source list.
const maxListedSources = 5

var kindLabels = map[schema.CellKind]string{
	schema.KindText:   "文本列",
	schema.KindNumber: "数值列",
	schema.KindDate:   "日期列",
	schema.KindEmpty:  "空列",
}

// Build assembles the detail and statistics sections. It performs no I/O.
func Build(t *schema.Table, stats schema.AggregateStats, meta schema.ReportMetadata, opts Options) schema.ReportModel {
	return schema.ReportModel{
		Detail:   buildDetail(t, opts),
		Stats:    schema.StatsSection{Aggregate: stats, Entries: buildEntries(stats, meta)},
		Metadata: meta,
	}
}

// FileName returns the report file name for a run started at ts.
func FileName(prefix string, ts time.Time) string {
	return fmt.Sprintf("%s_%s.xlsx", prefix, ts.Format("20060102_150405"))
}

func buildDetail(t *schema.Table, opts Options) schema.DetailSection {
	detail := schema.DetailSection{
		Columns:   append([]string{}, t.Columns...),
		Rows:      [][]string{},
		TotalRows: len(t.Rows),
		NoData:    len(t.Rows) == 0,
	}
	rows := t.Rows
	if opts.PreviewRows > 0 && len(rows) > opts.PreviewRows {
		rows = rows[:opts.PreviewRows]
		detail.Truncated = true
	}
	for _, row := range rows {
		values := make([]string, len(row))
		for i, cell := range row {
			values[i] = cell.String()
		}
		detail.Rows = append(detail.Rows, values)
	}
	return detail
}

func buildEntries(stats schema.AggregateStats, meta schema.ReportMetadata) []schema.StatEntry {
	var b entryBuilder

	b.add(SectionBasic, "生成时间", meta.GeneratedAt.Format(schema.DateTimeFormat))
	b.add(SectionBasic, "文件数量", fmt.Sprint(meta.SourceCount))
	b.add(SectionBasic, "总行数", fmt.Sprint(stats.TotalRows))
	b.add(SectionBasic, "总列数", fmt.Sprint(stats.TotalColumns))
	if meta.RunID != "" {
		b.add(SectionBasic, "运行ID", meta.RunID)
	}

	for _, s := range schema.AllSeverities {
		b.add(SectionSeverity, schema.SeverityLabels[s], share(stats.Severity[s], stats.TotalRows))
	}

	for _, d := range schema.AllDefectTypes {
		b.add(SectionType, schema.DefectTypeLabels[d], share(stats.DefectType[d], stats.TotalRows))
	}
	b.add(SectionType, "程序Bug修复率", typeRate(stats.ProgramBugs))
	b.add(SectionType, "非程序Bug修复率", typeRate(stats.NonProgramBugs))

	for _, s := range schema.AllFixStatuses {
		b.add(SectionStatus, schema.FixStatusLabels[s], share(stats.FixStatus[s], stats.TotalRows))
	}
	b.add(SectionStatus, "修复率", percent(stats.FixRate))

	b.add(SectionQuality, "空值单元格", fmt.Sprint(stats.EmptyCells))
	b.add(SectionQuality, "数据完整性", percent(stats.Completeness))
	b.add(SectionQuality, "重复行", fmt.Sprint(stats.DuplicateRows))
	for _, c := range stats.EmptyByColumn {
		b.add(SectionQuality, columnLabel(c.Column)+" 缺失", share(c.Count, stats.TotalRows))
	}

	for _, kind := range []schema.CellKind{schema.KindText, schema.KindNumber, schema.KindDate, schema.KindEmpty} {
		if n := stats.ColumnKinds[kind]; n > 0 {
			b.add(SectionKinds, kindLabels[kind], fmt.Sprint(n))
		}
	}

	if len(meta.Sources) > 0 {
		b.add(SectionSources, "来源数量", fmt.Sprint(len(meta.Sources)))
		b.add(SectionSources, "来源列表", sourceList(meta.Sources))
	}
	if len(stats.BySource) > 0 {
		total := schema.SourceStats{Severity: schema.NewSeverityCounts()}
		for _, s := range stats.BySource {
			b.add(SectionSources, sourceItem(s), sourceLine(s))
			addSource(&total, s)
		}
		b.add(SectionSources, "合计", sourceLine(total))
	}

	for _, d := range stats.Daily {
		b.add(SectionDaily, d.Date, fmt.Sprintf("共%d个, 程序Bug %s, 非程序Bug %s, 修复率 %s",
			d.Total, typeLine(d.ProgramBugs), typeLine(d.NonProgramBugs), percent(d.FixRate)))
	}
	for _, m := range stats.Modules {
		name := m.Name
		if name == schema.UnclassifiedModule {
			name = schema.DefectTypeLabels[schema.DefectUnclassified]
		}
		b.add(SectionModules, name, share(m.Count, stats.TotalRows))
	}
	return b.entries
}

type entryBuilder struct {
	entries []schema.StatEntry
}

func (b *entryBuilder) add(section, item, value string) {
	b.entries = append(b.entries, schema.StatEntry{Section: section, Item: item, Value: value})
}

// share renders "N个 (x%)" against the row total.
func share(n, total int) string {
	rate := 0.0
	if total > 0 {
		rate = float64(n) / float64(total)
	}
	return fmt.Sprintf("%d个 (%s)", n, percent(rate))
}

func percent(rate float64) string {
	return fmt.Sprintf("%.1f%%", rate*100)
}

func typeRate(b schema.TypeBreakdown) string {
	return fmt.Sprintf("%s (%d/%d)", percent(b.FixRate), b.Fixed, b.Fixed+b.Unfixed)
}

// sourceItem keys a per-source line by its file, led by the short label.
func sourceItem(s schema.SourceStats) string {
	if s.Label == "" || s.Label == s.Source {
		return s.Source
	}
	return fmt.Sprintf("%s (%s)", s.Label, s.Source)
}

func sourceLine(s schema.SourceStats) string {
	levels := make([]string, 0, len(schema.AllSeverities))
	for _, level := range schema.AllSeverities {
		levels = append(levels, fmt.Sprintf("%s %d", schema.SeverityLabels[level], s.Severity[level]))
	}
	return fmt.Sprintf("%d行, %s, 程序Bug %s, 非程序Bug %s, 修复率 %s",
		s.Rows, strings.Join(levels, ", "), typeLine(s.ProgramBugs), typeLine(s.NonProgramBugs), percent(s.FixRate))
}

func addSource(total *schema.SourceStats, s schema.SourceStats) {
	total.Rows += s.Rows
	for level, n := range s.Severity {
		total.Severity[level] += n
	}
	addType(&total.ProgramBugs, s.ProgramBugs)
	addType(&total.NonProgramBugs, s.NonProgramBugs)
	total.Fixed += s.Fixed
	total.Unfixed += s.Unfixed
	total.FixRate = schema.FixRate(total.Fixed, total.Unfixed)
}

func addType(total *schema.TypeBreakdown, b schema.TypeBreakdown) {
	total.Total += b.Total
	total.Fixed += b.Fixed
	total.Unfixed += b.Unfixed
	total.FixRate = schema.FixRate(total.Fixed, total.Unfixed)
}

// typeLine renders "N (已修复 F, x%)".
func typeLine(b schema.TypeBreakdown) string {
	return fmt.Sprintf("%d (已修复 %d, %s)", b.Total, b.Fixed, percent(b.FixRate))
}

func columnLabel(column string) string {
	if label, ok := schema.FieldLabels[schema.Field(column)]; ok {
		return label
	}
	return column
}

func sourceList(sources []string) string {
	if len(sources) <= maxListedSources {
		return strings.Join(sources, "、")
	}
	return fmt.Sprintf("%s 等%d个", strings.Join(sources[:maxListedSources], "、"), len(sources))
}

