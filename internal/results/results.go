// Package results names, finds, and inspects the pattern files a
// search run writes.
//
// One file exists per distinct (cells, period, dx, dy) tuple; repeat
// finds with the same shape append to the same file, so a file can
// hold several encoded patterns.
package results

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Ext is the result file extension.
const Ext = ".rle"

// Result describes one result file found on disk.
type Result struct {
	Path   string
	Cells  int
	Period int
	DX     int
	DY     int
}

// Filename builds the canonical result file name for a find.
func Filename(cells, period, dx, dy int) string {
	return fmt.Sprintf("%dP%dH%dV%d%s", cells, period, dx, dy, Ext)
}

// ParseFilename recovers the (cells, period, dx, dy) tuple from a
// result file name.
func ParseFilename(name string) (cells, period, dx, dy int, err error) {
	stem, ok := strings.CutSuffix(filepath.Base(name), Ext)
	if !ok {
		return 0, 0, 0, 0, fmt.Errorf("not a %s file: %s", Ext, name)
	}
	if _, err := fmt.Sscanf(stem, "%dP%dH%dV%d", &cells, &period, &dx, &dy); err != nil {
		return 0, 0, 0, 0, fmt.Errorf("unrecognized result name %q: %w", name, err)
	}
	if Filename(cells, period, dx, dy) != filepath.Base(name) {
		return 0, 0, 0, 0, fmt.Errorf("unrecognized result name %q", name)
	}
	return cells, period, dx, dy, nil
}

// Scan walks dir for result files and returns them sorted by cell
// count, smallest first. A missing directory yields no results.
func Scan(dir string) ([]Result, error) {
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return nil, nil
	}

	var found []Result
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil // Skip unreadable entries
		}
		if info.IsDir() {
			return nil
		}
		cells, period, dx, dy, perr := ParseFilename(info.Name())
		if perr != nil {
			return nil // Not a result file
		}
		found = append(found, Result{
			Path:   path,
			Cells:  cells,
			Period: period,
			DX:     dx,
			DY:     dy,
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scanning results: %w", err)
	}

	sort.Slice(found, func(i, j int) bool {
		if found[i].Cells != found[j].Cells {
			return found[i].Cells < found[j].Cells
		}
		return found[i].Path < found[j].Path
	})
	return found, nil
}

// Split cuts a result file's content into its appended pattern blocks.
// Each block starts at an "x = " header line.
func Split(content string) []string {
	var blocks []string
	var current []string

	flush := func() {
		if len(current) > 0 {
			blocks = append(blocks, strings.Join(current, "\n"))
			current = nil
		}
	}

	for _, line := range strings.Split(content, "\n") {
		if strings.HasPrefix(line, "x = ") {
			flush()
		}
		if line != "" || len(current) > 0 {
			current = append(current, line)
		}
	}
	flush()
	return blocks
}

// Latest returns the last pattern block in a result file, which is the
// most recent find appended to it.
func Latest(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading result file: %w", err)
	}
	blocks := Split(string(data))
	if len(blocks) == 0 {
		return "", fmt.Errorf("no patterns in %s", path)
	}
	return strings.TrimRight(blocks[len(blocks)-1], "\n"), nil
}
