package core

import (
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/huangsam/bugsheet/core/load"
	"github.com/huangsam/bugsheet/schema"
)

// Input is one file the pipeline will try to process. Err is set when the
// path was already known to be unusable during discovery.
type Input struct {
	Path string
	Err  error
}

// ResolveInputs expands folders into their supported files and keeps explicit
// files as given. Folders are not walked recursively and office lock files are
// skipped. Missing paths become inputs carrying an UnreadableFileError so they
// show up as skipped in the run summary.
func ResolveInputs(paths []string, extensions []string) []Input {
	var inputs []Input
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			inputs = append(inputs, Input{Path: path, Err: &schema.UnreadableFileError{Path: path, Err: err}})
			continue
		}
		if !info.IsDir() {
			inputs = append(inputs, Input{Path: path})
			continue
		}

		entries, err := os.ReadDir(path)
		if err != nil {
			inputs = append(inputs, Input{Path: path, Err: &schema.UnreadableFileError{Path: path, Err: err}})
			continue
		}
		var files []string
		for _, entry := range entries {
			name := entry.Name()
			if entry.IsDir() || isLockFile(name) || !load.Supported(name, extensions) {
				continue
			}
			files = append(files, filepath.Join(path, name))
		}
		slices.Sort(files)
		for _, f := range files {
			inputs = append(inputs, Input{Path: f})
		}
	}
	return inputs
}

// isLockFile matches the owner files Excel and LibreOffice leave next to open workbooks.
func isLockFile(name string) bool {
	return strings.HasPrefix(name, "~$") || strings.HasPrefix(name, ".~")
}

// sourceNames picks the source_file value of each table: the base name,
// or the full path when two inputs share a base name.
func sourceNames(paths []string) []string {
	counts := make(map[string]int, len(paths))
	for _, p := range paths {
		counts[filepath.Base(p)]++
	}
	names := make([]string, len(paths))
	for i, p := range paths {
		if base := filepath.Base(p); counts[base] == 1 {
			names[i] = base
		} else {
			names[i] = p
		}
	}
	return names
}
