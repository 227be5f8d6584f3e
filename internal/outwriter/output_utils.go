package outwriter

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/huangsam/bugsheet/internal/contract"
)

// writeWithFile sends the output of write to outputFile, or stdout when it is empty.
// A note naming the file goes to stderr so piped stdout stays clean.
func writeWithFile(outputFile string, write func(io.Writer) error, successMsg string) error {
	out, err := contract.SelectOutputFile(outputFile)
	if err != nil {
		return err
	}
	toFile := out != os.Stdout
	if toFile {
		defer func() { _ = out.Close() }()
	}

	if err := write(out); err != nil {
		return err
	}
	if toFile {
		_, _ = fmt.Fprintf(os.Stderr, "💾 %s to %s\n", successMsg, outputFile)
	}
	return nil
}

// writeJSON encodes data as indented JSON.
func writeJSON(w io.Writer, data any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(data); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}

// writeCSVWithHeader writes header, then lets writeRows fill in the records.
func writeCSVWithHeader(w io.Writer, header []string, writeRows func(*csv.Writer) error) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	if err := writeRows(cw); err != nil {
		return err
	}
	cw.Flush()
	return cw.Error()
}

// createFormatters returns the percentage formatter for rates and the integer verb.
func createFormatters(precision int) (fmtRate func(float64) string, intFmt string) {
	fmtRate = func(v float64) string {
		return fmt.Sprintf("%.*f%%", precision, v*100)
	}
	return fmtRate, "%d"
}
