package outwriter

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/huangsam/bugsheet/internal/contract"
	"github.com/huangsam/bugsheet/schema"
)

// LogRunHeader prints a concise, 2-line header before a run starts.
func LogRunHeader(w io.Writer, cfg *contract.Config, inputs []string) {
	// Line 1: what is being read and how
	_, _ = fmt.Fprintf(w, "%sInputs: %d path(s) (workers: %d, extensions: %v)\n",
		icon(cfg, "🔎 "), len(inputs), cfg.Workers, cfg.Extensions)

	// Line 2: where the report goes
	if cfg.WriteReport {
		_, _ = fmt.Fprintf(w, "%sReport: %s\n", icon(cfg, "📄 "),
			filepath.Join(cfg.ReportDir, cfg.ReportPrefix+"_*.xlsx"))
	} else {
		_, _ = fmt.Fprintf(w, "%sReport: disabled\n", icon(cfg, "📄 "))
	}
}

// PrintProgress prints one line per finished file and per pipeline stage.
func PrintProgress(w io.Writer, ev schema.ProgressEvent, cfg *contract.Config) {
	switch ev.Stage {
	case schema.StageFileDone:
		_, _ = fmt.Fprintf(w, "%s[%d/%d] %s\n", icon(cfg, "✅ "), ev.Done, ev.Total, ev.Path)
	case schema.StageFileSkipped:
		_, _ = fmt.Fprintf(w, "%s[%d/%d] %s skipped: %v\n", icon(cfg, "⚠️ "), ev.Done, ev.Total, ev.Path, ev.Err)
	case schema.StageMerge:
		_, _ = fmt.Fprintf(w, "%sMerging %d table(s)\n", icon(cfg, "🔗 "), ev.Done)
	case schema.StageAnalyze:
		_, _ = fmt.Fprintf(w, "%sAnalyzing\n", icon(cfg, "📊 "))
	}
}

func icon(cfg *contract.Config, s string) string {
	if cfg.UseEmojis {
		return s
	}
	return ""
}
