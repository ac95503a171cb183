// Package progress formats the live status view for a running search.
//
// Rendering is a pure function of the snapshot: the caller decides
// where the text goes and what color it gets.
package progress

import (
	"fmt"
	"strings"
	"time"

	"github.com/shipsearch/sss/internal/engine"
)

// Info is one progress snapshot taken between engine bursts.
type Info struct {
	Phase   int
	Height  int
	Cells   int
	Elapsed time.Duration
	Grid    engine.Grid
}

// Banner returns the single-line status header, right-padded with '='
// to width-1 columns. A banner already wider than that is left alone.
func (i Info) Banner(width int) string {
	s := fmt.Sprintf("=GEN:%d==HEIGHT:%d==CELLS:%d==TIME:%s",
		i.Phase, i.Height, i.Cells, formatElapsed(i.Elapsed))
	if pad := width - 1 - len(s); pad > 0 {
		s += strings.Repeat("=", pad)
	}
	return s
}

// GridView renders the grid one character per cell, each row clipped
// to width-1 columns. Rows are truncated, never wrapped.
func (i Info) GridView(width int) string {
	rows := make([]string, len(i.Grid))
	for y, row := range i.Grid {
		rows[y] = renderRow(row, width-1)
	}
	return strings.Join(rows, "\n")
}

// Render returns the banner followed by the grid view, both clipped to
// the given terminal width.
func (i Info) Render(width int) string {
	if len(i.Grid) == 0 {
		return i.Banner(width)
	}
	return i.Banner(width) + "\n" + i.GridView(width)
}

func renderRow(row []engine.Cell, max int) string {
	var b strings.Builder
	for x, c := range row {
		if max >= 0 && x >= max {
			break
		}
		b.WriteRune(c.Rune())
	}
	return b.String()
}

// formatElapsed trims a duration to display precision.
func formatElapsed(d time.Duration) string {
	return d.Round(10 * time.Millisecond).String()
}
