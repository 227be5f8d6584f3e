package outwriter

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/huangsam/bugsheet/internal/contract"
	"github.com/huangsam/bugsheet/internal/parquet"
	"github.com/huangsam/bugsheet/schema"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// PrintRunResult outputs the run result, dispatching based on the output format configured.
func PrintRunResult(result *schema.RunResult, cfg *contract.Config) error {
	fmtRate, intFmt := createFormatters(cfg.Precision)

	switch cfg.Output {
	case schema.JSONOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeRunJSON(w, result)
		}, "Wrote JSON"); err != nil {
			return fmt.Errorf("error writing JSON output: %w", err)
		}
	case schema.CSVOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeRunCSV(w, result)
		}, "Wrote CSV"); err != nil {
			return fmt.Errorf("error writing CSV output: %w", err)
		}
	case schema.ParquetOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeRunParquet(w, result)
		}, "Wrote Parquet"); err != nil {
			return fmt.Errorf("error writing Parquet output: %w", err)
		}
	default:
		// Default to human-readable tables
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeRunTables(w, result, cfg, fmtRate, intFmt)
		}, "Wrote table")
	}
	return nil
}

// writeRunJSON writes the summary and the report model.
func writeRunJSON(w io.Writer, result *schema.RunResult) error {
	return writeJSON(w, result)
}

// writeRunCSV writes one line per statistics entry.
func writeRunCSV(w io.Writer, result *schema.RunResult) error {
	return writeCSVWithHeader(w, []string{"section", "item", "value"}, func(cw *csv.Writer) error {
		for _, e := range result.Report.Stats.Entries {
			if err := cw.Write([]string{e.Section, e.Item, e.Value}); err != nil {
				return err
			}
		}
		return nil
	})
}

// writeRunParquet writes the analyzed rows with their canonical columns.
func writeRunParquet(w io.Writer, result *schema.RunResult) error {
	if result.Table == nil {
		return errors.New("no table to export")
	}
	rows, err := parquet.ConvertTable(result.Table, result.Summary.RunID)
	if err != nil {
		return err
	}
	return parquet.WriteDetailRows(w, rows)
}

// writeRunTables renders the per-file outcomes and the headline statistics.
func writeRunTables(w io.Writer, result *schema.RunResult, cfg *contract.Config, fmtRate func(float64) string, intFmt string) error {
	if err := writeFileOutcomeTable(w, result.Summary.Files, cfg, intFmt); err != nil {
		return err
	}
	if len(result.Stats.BySource) > 0 {
		if err := writeSourceTable(w, result.Stats.BySource, cfg, fmtRate, intFmt); err != nil {
			return err
		}
	}
	if err := writeSeverityTable(w, result.Stats, cfg, fmtRate, intFmt); err != nil {
		return err
	}
	if err := writeFixTable(w, result.Stats, fmtRate, intFmt); err != nil {
		return err
	}

	summary := result.Summary
	if _, err := fmt.Fprintf(w, "%s (rows: %d, anomalies: %d)\n", summary.String(), result.Stats.TotalRows, len(summary.Anomalies)); err != nil {
		return err
	}
	if result.ReportPath != "" {
		if _, err := fmt.Fprintf(w, "Report written to %s\n", result.ReportPath); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintf(w, "Run completed in %v with %d workers. Cache backend: %s\n", summary.Duration, cfg.Workers, cfg.CacheBackend); err != nil {
		return err
	}
	return nil
}

func writeFileOutcomeTable(w io.Writer, files []schema.FileOutcome, cfg *contract.Config, intFmt string) error {
	table := tablewriter.NewWriter(w)
	table.Header([]string{"#", "File", "Status", "Sheet", "Rows", "Note"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	maxWidth := GetMaxTablePathWidth(cfg)
	var data [][]string
	for i, f := range files {
		status := string(f.Status)
		if cfg.UseColors {
			status = contract.GetColorFileStatus(f.Status)
		}
		note := fileNote(f)
		data = append(data, []string{
			strconv.Itoa(i + 1),
			contract.TruncatePath(f.Path, maxWidth),
			status,
			f.Sheet,
			fmt.Sprintf(intFmt, f.Rows),
			note,
		})
	}

	if err := table.Bulk(data); err != nil {
		return err
	}
	return table.Render()
}

// fileNote says why a file was skipped, or what cleaning did to it.
func fileNote(f schema.FileOutcome) string {
	if f.Status == schema.FileSkipped {
		return f.ErrorKind
	}
	var parts []string
	if f.CacheHit {
		parts = append(parts, "cached")
	}
	if f.DroppedRows > 0 {
		parts = append(parts, fmt.Sprintf("-%d empty rows", f.DroppedRows))
	}
	if n := len(f.DroppedColumns); n > 0 {
		parts = append(parts, fmt.Sprintf("-%d empty cols", n))
	}
	if f.RenamedHeaders > 0 {
		parts = append(parts, fmt.Sprintf("%d renamed", f.RenamedHeaders))
	}
	return strings.Join(parts, ", ")
}

// writeSourceTable shows one line per merged file and a totals line.
func writeSourceTable(w io.Writer, sources []schema.SourceStats, cfg *contract.Config, fmtRate func(float64) string, intFmt string) error {
	table := tablewriter.NewWriter(w)
	header := []string{"Source", "Label", "Rows"}
	for _, level := range schema.AllSeverities {
		header = append(header, contract.GetPlainSeverityLabel(level))
	}
	header = append(header, "Program", "Program Fixed", "Non-program", "Non-program Fixed", "Fix Rate")
	table.Header(header)
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	line := func(name, label string, rows int, severity map[schema.Severity]int, program, nonProgram schema.TypeBreakdown, rate float64) []string {
		out := []string{name, label, fmt.Sprintf(intFmt, rows)}
		for _, level := range schema.AllSeverities {
			out = append(out, fmt.Sprintf(intFmt, severity[level]))
		}
		return append(out,
			fmt.Sprintf(intFmt, program.Total), fmt.Sprintf(intFmt, program.Fixed),
			fmt.Sprintf(intFmt, nonProgram.Total), fmt.Sprintf(intFmt, nonProgram.Fixed),
			fmtRate(rate))
	}

	maxWidth := GetMaxTablePathWidth(cfg)
	var data [][]string
	totalRows, fixed, unfixed := 0, 0, 0
	severity := schema.NewSeverityCounts()
	var program, nonProgram schema.TypeBreakdown
	for _, s := range sources {
		data = append(data, line(contract.TruncatePath(s.Source, maxWidth), s.Label, s.Rows, s.Severity, s.ProgramBugs, s.NonProgramBugs, s.FixRate))
		totalRows += s.Rows
		fixed += s.Fixed
		unfixed += s.Unfixed
		for level, n := range s.Severity {
			severity[level] += n
		}
		program.Total += s.ProgramBugs.Total
		program.Fixed += s.ProgramBugs.Fixed
		nonProgram.Total += s.NonProgramBugs.Total
		nonProgram.Fixed += s.NonProgramBugs.Fixed
	}
	data = append(data, line("合计", "", totalRows, severity, program, nonProgram, schema.FixRate(fixed, unfixed)))

	if err := table.Bulk(data); err != nil {
		return err
	}
	return table.Render()
}

func writeSeverityTable(w io.Writer, stats schema.AggregateStats, cfg *contract.Config, fmtRate func(float64) string, intFmt string) error {
	table := tablewriter.NewWriter(w)
	table.Header([]string{"Severity", "Count", "Share"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	var data [][]string
	for _, s := range schema.AllSeverities {
		label := contract.GetPlainSeverityLabel(s)
		if cfg.UseColors {
			label = contract.GetColorSeverityLabel(s)
		}
		n := stats.Severity[s]
		data = append(data, []string{label, fmt.Sprintf(intFmt, n), fmtRate(share(n, stats.TotalRows))})
	}

	if err := table.Bulk(data); err != nil {
		return err
	}
	return table.Render()
}

func writeFixTable(w io.Writer, stats schema.AggregateStats, fmtRate func(float64) string, intFmt string) error {
	table := tablewriter.NewWriter(w)
	table.Header([]string{"Type", "Total", "Fixed", "Unfixed", "Fix Rate"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	row := func(label string, b schema.TypeBreakdown) []string {
		return []string{
			label,
			fmt.Sprintf(intFmt, b.Total),
			fmt.Sprintf(intFmt, b.Fixed),
			fmt.Sprintf(intFmt, b.Unfixed),
			fmtRate(b.FixRate),
		}
	}
	all := schema.TypeBreakdown{
		Total:   stats.TotalRows,
		Fixed:   stats.FixStatus[schema.Fixed],
		Unfixed: stats.FixStatus[schema.Unfixed],
		FixRate: stats.FixRate,
	}
	data := [][]string{
		row(schema.DefectTypeLabels[schema.ProgramBug], stats.ProgramBugs),
		row(schema.DefectTypeLabels[schema.NonProgramBug], stats.NonProgramBugs),
		row("合计", all),
	}

	if err := table.Bulk(data); err != nil {
		return err
	}
	return table.Render()
}

func share(n, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(n) / float64(total)
}
