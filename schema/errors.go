package schema

import (
	"errors"
	"fmt"
)

// ErrRunCancelled is returned when a run is cancelled before it completes.
var ErrRunCancelled = errors.New("run cancelled")

// Error kinds recorded in file outcomes and run history.
const (
	UnreadableFileKind    = "unreadable_file"
	UnsupportedFormatKind = "unsupported_format"
	EmptyBatchKind        = "empty_batch"
	OtherErrorKind        = "error"
)

// UnreadableFileError means the file is missing, corrupt, locked or has no sheets.
type UnreadableFileError struct {
	Path string
	Err  error
}

func (e *UnreadableFileError) Error() string {
	return fmt.Sprintf("unreadable file %s: %v", e.Path, e.Err)
}

func (e *UnreadableFileError) Unwrap() error { return e.Err }

// UnsupportedFormatError means the file extension has no reader.
type UnsupportedFormatError struct {
	Path string
	Ext  string
}

func (e *UnsupportedFormatError) Error() string {
	if e.Ext == "" {
		return fmt.Sprintf("unsupported format for %s: missing file extension", e.Path)
	}
	return fmt.Sprintf("unsupported format %q for %s", e.Ext, e.Path)
}

// EmptyBatchError means a run had no usable input at all.
type EmptyBatchError struct {
	Skipped []FileOutcome
}

func (e *EmptyBatchError) Error() string {
	if len(e.Skipped) == 0 {
		return "empty batch: no input files"
	}
	return fmt.Sprintf("empty batch: all %d input file(s) were skipped", len(e.Skipped))
}

// ErrorKind classifies err for file outcomes and run history.
func ErrorKind(err error) string {
	var unreadable *UnreadableFileError
	var unsupported *UnsupportedFormatError
	var empty *EmptyBatchError
	switch {
	case err == nil:
		return ""
	case errors.As(err, &unreadable):
		return UnreadableFileKind
	case errors.As(err, &unsupported):
		return UnsupportedFormatKind
	case errors.As(err, &empty):
		return EmptyBatchKind
	default:
		return OtherErrorKind
	}
}
