package contract

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/huangsam/bugsheet/schema"
)

// Color variables for console output.
var (
	CriticalColor = color.New(color.FgRed, color.Bold)     // CriticalColor marks S-level bugs.
	HighColor     = color.New(color.FgMagenta, color.Bold) // HighColor marks A-level bugs.
	ModerateColor = color.New(color.FgYellow)              // ModerateColor marks B-level bugs.
	LowColor      = color.New(color.FgCyan)                // LowColor marks C-level bugs.
	MutedColor    = color.New(color.FgHiBlack)             // MutedColor marks anything unclassified.
	SuccessColor  = color.New(color.FgGreen)               // SuccessColor marks succeeded files.
)

// GetPlainSeverityLabel returns the display label for a severity level.
func GetPlainSeverityLabel(s schema.Severity) string {
	if label, ok := schema.SeverityLabels[s]; ok {
		return label
	}
	return schema.SeverityLabels[schema.SeverityUnclassified]
}

// GetColorSeverityLabel returns a colored severity label for console output (table).
func GetColorSeverityLabel(s schema.Severity) string {
	text := GetPlainSeverityLabel(s)

	switch s {
	case schema.SeverityS:
		return CriticalColor.Sprint(text)
	case schema.SeverityA:
		return HighColor.Sprint(text)
	case schema.SeverityB:
		return ModerateColor.Sprint(text)
	case schema.SeverityC:
		return LowColor.Sprint(text)
	default:
		return MutedColor.Sprint(text)
	}
}

// GetColorFileStatus returns a colored per-file status for console output.
func GetColorFileStatus(status schema.FileStatus) string {
	if status == schema.FileSucceeded {
		return SuccessColor.Sprint(string(status))
	}
	return CriticalColor.Sprint(string(status))
}

// SelectOutputFile returns the appropriate file handle for output, based on the provided
// file path. It falls back to os.Stdout when no path is given.
func SelectOutputFile(filePath string) (*os.File, error) {
	if filePath == "" {
		return os.Stdout, nil
	}
	return os.Create(filePath)
}

// LogFatal logs an error and exits the program.
func LogFatal(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "Fatal %s: %v\n", msg, err)
	os.Exit(1)
}

// LogWarn logs a warning message to stderr.
func LogWarn(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "Warn %s: %v\n", msg, err)
}

// GetCacheDBFilePath returns the path to the SQLite DB file for load cache storage.
func GetCacheDBFilePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".bugsheet_cache.db"
	}
	return filepath.Join(homeDir, ".bugsheet_cache.db")
}

// GetRunDBFilePath returns the path to the SQLite DB file for run history.
func GetRunDBFilePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".bugsheet_runs.db"
	}
	return filepath.Join(homeDir, ".bugsheet_runs.db")
}

// TruncatePath truncates a file path to a maximum width with ellipsis prefix.
// Requires maxWidth > 3 to ensure there's space for both the "..." prefix and at least one character of content.
func TruncatePath(path string, maxWidth int) string {
	runes := []rune(path)
	if len(runes) > maxWidth && maxWidth > 3 {
		return "..." + string(runes[len(runes)-maxWidth+3:])
	}
	return path
}

// ParseBoolString parses a string value into a boolean.
// Accepts "yes", "no", "true", "false", "1", "0" (case-insensitive).
// Returns an error for invalid values.
func ParseBoolString(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "yes", "true", "1":
		return true, nil
	case "no", "false", "0":
		return false, nil
	default:
		return false, fmt.Errorf("invalid boolean string: %s (expected yes/no/true/false/1/0)", s)
	}
}
