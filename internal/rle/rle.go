// Package rle encodes pattern grids in the run-length-encoded text
// format used for sharing cellular-automaton patterns, and decodes
// that format back into grids.
//
// A pattern block is a header line
//
//	x = <width>, y = <height>, rule = <rule>
//
// followed by the body: cells row by row, dead cells as 'b', live
// cells as 'o' (letters from 'A' when the grid carries more than two
// states), '$' ending a row and '!' ending the pattern, with runs of
// equal symbols collapsed to a count prefix. Body lines stay within 70
// columns and only break between tokens, never inside a count/symbol
// pair.
package rle

import (
	"fmt"
	"strings"

	"github.com/shipsearch/sss/internal/engine"
)

// MaxLineWidth is the longest body line Encode emits.
const MaxLineWidth = 70

// Encode serializes one generation's grid as a header plus encoded
// body. Trailing dead or unknown cells in a row carry no information
// and are dropped, as are trailing all-empty rows; interior dead cells
// are kept. Unknown cells encode as dead.
func Encode(g engine.Grid, rule string) string {
	rows := trimmedRows(g)
	width := 0
	for _, row := range rows {
		if len(row) > width {
			width = len(row)
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "x = %d, y = %d, rule = %s\n", width, len(rows), rule)

	multi := multiState(g)
	var tokens []token
	for y, row := range rows {
		if y > 0 {
			tokens = appendToken(tokens, '$')
		}
		for _, c := range row {
			tokens = appendToken(tokens, symbol(c, multi))
		}
	}
	tokens = appendToken(tokens, '!')
	writeTokens(&b, tokens)
	return b.String()
}

// trimmedRows drops trailing blanks from each row and trailing empty
// rows from the grid.
func trimmedRows(g engine.Grid) [][]engine.Cell {
	rows := make([][]engine.Cell, 0, len(g))
	for _, row := range g {
		end := len(row)
		for end > 0 && blank(row[end-1]) {
			end--
		}
		rows = append(rows, row[:end])
	}
	for len(rows) > 0 && len(rows[len(rows)-1]) == 0 {
		rows = rows[:len(rows)-1]
	}
	return rows
}

func blank(c engine.Cell) bool {
	return c == engine.Dead || c == engine.Unknown
}

// multiState reports whether the grid uses states beyond dead/alive,
// which switches live cells from 'o' to letter codes.
func multiState(g engine.Grid) bool {
	for _, row := range g {
		for _, c := range row {
			if c != engine.Unknown && c > engine.Alive {
				return true
			}
		}
	}
	return false
}

func symbol(c engine.Cell, multi bool) byte {
	switch c {
	case engine.Dead, engine.Unknown:
		return 'b'
	case engine.Alive:
		if multi {
			return 'A'
		}
		return 'o'
	default:
		return byte('A' + int(c) - 1)
	}
}

type token struct {
	count  int
	symbol byte
}

func appendToken(tokens []token, sym byte) []token {
	if n := len(tokens); n > 0 && tokens[n-1].symbol == sym {
		tokens[n-1].count++
		return tokens
	}
	return append(tokens, token{count: 1, symbol: sym})
}

func (t token) render() string {
	if t.count == 1 {
		return string(t.symbol)
	}
	return fmt.Sprintf("%d%c", t.count, t.symbol)
}

// writeTokens emits the token stream wrapped at MaxLineWidth, breaking
// only between tokens.
func writeTokens(b *strings.Builder, tokens []token) {
	line := 0
	for _, t := range tokens {
		tok := t.render()
		if line > 0 && line+len(tok) > MaxLineWidth {
			b.WriteByte('\n')
			line = 0
		}
		b.WriteString(tok)
		line += len(tok)
	}
	b.WriteByte('\n')
}

// Decode parses a pattern block produced by Encode (or by hand) back
// into a grid and its rule. It tolerates '.' for dead cells and 'O'
// for live ones, and ignores anything after the '!' terminator.
func Decode(text string) (engine.Grid, string, error) {
	header, body, ok := strings.Cut(text, "\n")
	if !ok {
		return nil, "", fmt.Errorf("pattern has no body")
	}
	var w, h int
	var rule string
	if _, err := fmt.Sscanf(strings.TrimSpace(header), "x = %d, y = %d, rule = %s", &w, &h, &rule); err != nil {
		return nil, "", fmt.Errorf("parsing header %q: %w", strings.TrimSpace(header), err)
	}

	var g engine.Grid
	var row []engine.Cell
	count := 0
	done := false
	for _, r := range body {
		if done {
			break
		}
		switch {
		case r >= '0' && r <= '9':
			count = count*10 + int(r-'0')
		case r == '\n' || r == '\r' || r == ' ' || r == '\t':
			// wrapped line; the pending count carries over
		case r == '$':
			n := take(&count)
			g = append(g, row)
			row = nil
			for i := 1; i < n; i++ {
				g = append(g, nil)
			}
		case r == '!':
			done = true
		default:
			c, err := cellForCode(r)
			if err != nil {
				return nil, "", err
			}
			for n := take(&count); n > 0; n-- {
				row = append(row, c)
			}
		}
	}
	if !done {
		return nil, "", fmt.Errorf("pattern body missing '!' terminator")
	}
	if len(row) > 0 {
		g = append(g, row)
	}

	// Restore the rectangle the header promises: trailing dead cells and
	// rows were trimmed at encode time.
	for len(g) < h {
		g = append(g, nil)
	}
	width := w
	for _, row := range g {
		if len(row) > width {
			width = len(row)
		}
	}
	for i, row := range g {
		for len(row) < width {
			row = append(row, engine.Dead)
		}
		g[i] = row
	}
	return g, rule, nil
}

func cellForCode(r rune) (engine.Cell, error) {
	switch r {
	case 'b', '.':
		return engine.Dead, nil
	case 'o', 'O':
		return engine.Alive, nil
	}
	if r >= 'A' && r <= 'X' {
		return engine.Cell(r-'A') + 1, nil
	}
	return engine.Dead, fmt.Errorf("unknown pattern code %q", r)
}

func take(count *int) int {
	n := *count
	*count = 0
	if n == 0 {
		n = 1
	}
	return n
}
