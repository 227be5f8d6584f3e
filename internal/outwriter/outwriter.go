// Package outwriter renders run results: the xlsx report, the terminal summary
// and the machine-readable summary formats.
package outwriter

import (
	"os"

	"github.com/huangsam/bugsheet/internal/contract"
	"golang.org/x/term"
)

// Widths used to fit the file outcome table into the terminal.
const (
	fallbackTermWidth = 80 // CI and pipes report no size
	outcomeFixedWidth = 60 // #, Status, Sheet, Rows, Note plus borders
	minPathWidth      = 15
	maxPathWidth      = 70
)

// GetMaxTablePathWidth returns how many characters of a file path fit in the
// outcome table. --width wins over the detected terminal width.
func GetMaxTablePathWidth(cfg *contract.Config) int {
	termWidth := cfg.Width
	if termWidth <= 0 {
		termWidth = fallbackTermWidth
		if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 {
			termWidth = w
		}
	}
	return min(max(termWidth-outcomeFixedWidth, minPathWidth), maxPathWidth)
}
