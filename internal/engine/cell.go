package engine

import (
	"fmt"
	"strings"
)

// Cell is one cell state. 0 is dead and 1 is alive; rules with more
// than two states use successive values for the dying generations.
// Unknown marks a cell the engine has not decided yet.
type Cell uint8

const (
	Dead    Cell = 0
	Alive   Cell = 1
	Unknown Cell = 0xFF
)

// Rune returns the display character for a cell: '.' dead, 'o' alive,
// '?' unknown, letters from 'B' for dying generations.
func (c Cell) Rune() rune {
	switch c {
	case Dead:
		return '.'
	case Alive:
		return 'o'
	case Unknown:
		return '?'
	default:
		return 'A' + rune(c) - 1
	}
}

// CellForRune is the inverse of Rune. It also accepts 'O' and '*' for
// alive and ' ' for dead so hand-written grids parse.
func CellForRune(r rune) (Cell, error) {
	switch r {
	case '.', ' ':
		return Dead, nil
	case 'o', 'O', '*':
		return Alive, nil
	case '?':
		return Unknown, nil
	}
	if r >= 'A' && r <= 'X' {
		return Cell(r-'A') + 1, nil
	}
	return Dead, fmt.Errorf("unknown cell symbol %q", r)
}

// Grid is a rectangular block of cells, indexed rows-first.
type Grid [][]Cell

// ParseGrid builds a grid from one string per row. Short rows are
// padded with dead cells to the widest row.
func ParseGrid(rows []string) (Grid, error) {
	width := 0
	for _, row := range rows {
		if n := len([]rune(row)); n > width {
			width = n
		}
	}
	g := make(Grid, len(rows))
	for y, row := range rows {
		cells := make([]Cell, width)
		for x, r := range []rune(row) {
			c, err := CellForRune(r)
			if err != nil {
				return nil, fmt.Errorf("row %d: %w", y, err)
			}
			cells[x] = c
		}
		g[y] = cells
	}
	return g, nil
}

// Width returns the number of columns.
func (g Grid) Width() int {
	if len(g) == 0 {
		return 0
	}
	return len(g[0])
}

// Height returns the number of rows.
func (g Grid) Height() int { return len(g) }

// Population counts live cells. Unknown cells do not count.
func (g Grid) Population() int {
	n := 0
	for _, row := range g {
		for _, c := range row {
			if c != Dead && c != Unknown {
				n++
			}
		}
	}
	return n
}

// String renders the grid one row per line.
func (g Grid) String() string {
	var b strings.Builder
	for y, row := range g {
		if y > 0 {
			b.WriteByte('\n')
		}
		for _, c := range row {
			b.WriteRune(c.Rune())
		}
	}
	return b.String()
}
