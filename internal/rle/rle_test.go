package rle

import (
	"strings"
	"testing"

	"github.com/shipsearch/sss/internal/engine"
)

func mustGrid(t *testing.T, rows ...string) engine.Grid {
	t.Helper()
	g, err := engine.ParseGrid(rows)
	if err != nil {
		t.Fatalf("ParseGrid: %v", err)
	}
	return g
}

func TestEncodeBasics(t *testing.T) {
	tests := []struct {
		name string
		rows []string
		want string
	}{
		{
			"single row with interior dead",
			[]string{"oo.o"},
			"x = 4, y = 1, rule = B3/S23\n2obo!\n",
		},
		{
			"glider",
			[]string{".o.", "..o", "ooo"},
			"x = 3, y = 3, rule = B3/S23\nbo$2bo$3o!\n",
		},
		{
			"trailing dead cells trimmed",
			[]string{"o..."},
			"x = 1, y = 1, rule = B3/S23\no!\n",
		},
		{
			"trailing empty rows trimmed",
			[]string{"oo", "..", ".."},
			"x = 2, y = 1, rule = B3/S23\n2o!\n",
		},
		{
			"interior empty row kept",
			[]string{"o", ".", "o"},
			"x = 1, y = 3, rule = B3/S23\no$$o!\n",
		},
		{
			"leading dead cells kept",
			[]string{"..o"},
			"x = 3, y = 1, rule = B3/S23\n2bo!\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Encode(mustGrid(t, tt.rows...), "B3/S23")
			if got != tt.want {
				t.Errorf("Encode = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestEncodeEmptyPattern(t *testing.T) {
	got := Encode(mustGrid(t, "."), "B3/S23")
	want := "x = 0, y = 0, rule = B3/S23\n!\n"
	if got != want {
		t.Errorf("all-dead grid: got %q, want %q", got, want)
	}

	// A nil grid encodes the same way.
	if got := Encode(nil, "B3/S23"); got != want {
		t.Errorf("nil grid: got %q, want %q", got, want)
	}
}

func TestEncodeUnknownAsDead(t *testing.T) {
	// Unknown inside the pattern encodes as dead; trailing unknown is
	// trimmed like trailing dead.
	got := Encode(mustGrid(t, "?o?"), "B3/S23")
	want := "x = 2, y = 1, rule = B3/S23\nbo!\n"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestEncodeMultiState(t *testing.T) {
	// A dying generation anywhere in the grid switches live cells to
	// letter codes; dead cells stay 'b'.
	got := Encode(mustGrid(t, "oB.o"), "345/2/4")
	want := "x = 4, y = 1, rule = 345/2/4\nABbA!\n"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestEncodeRuleInHeader(t *testing.T) {
	got := Encode(mustGrid(t, "o"), "B36/S23")
	if !strings.HasPrefix(got, "x = 1, y = 1, rule = B36/S23\n") {
		t.Errorf("header missing rule: %q", got)
	}
}

// wideGrid builds rows with runs of varying lengths so the body carries
// multi-digit counts and wraps over several lines.
func wideGrid(t *testing.T) engine.Grid {
	t.Helper()
	var rows []string
	for y := 1; y <= 12; y++ {
		var b strings.Builder
		for x := 0; x < 8; x++ {
			b.WriteString(strings.Repeat("o", (y*7+x*3)%23+1))
			b.WriteString(strings.Repeat(".", (y+x)%5+1))
		}
		b.WriteString("o")
		rows = append(rows, b.String())
	}
	return mustGrid(t, rows...)
}

func TestEncodeLineWidth(t *testing.T) {
	body := strings.SplitN(Encode(wideGrid(t), "B3/S23"), "\n", 2)[1]
	lines := strings.Split(strings.TrimRight(body, "\n"), "\n")
	if len(lines) < 2 {
		t.Fatalf("expected a wrapped body, got %d line(s)", len(lines))
	}
	for i, line := range lines {
		if len(line) == 0 {
			t.Errorf("line %d is empty", i)
		}
		if len(line) > MaxLineWidth {
			t.Errorf("line %d is %d chars: %q", i, len(line), line)
		}
		// A wrap may not split a <count><symbol> pair, so no line can
		// end mid-count.
		if last := line[len(line)-1]; last >= '0' && last <= '9' {
			t.Errorf("line %d ends inside a count: %q", i, line)
		}
	}
	if last := lines[len(lines)-1]; !strings.HasSuffix(last, "!") {
		t.Errorf("body should end with '!', got %q", last)
	}
}

func TestDecode(t *testing.T) {
	g, rule, err := Decode("x = 3, y = 3, rule = B3/S23\nbo$2bo$3o!\n")
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if rule != "B3/S23" {
		t.Errorf("rule = %q", rule)
	}
	want := mustGrid(t, ".o.", "..o", "ooo")
	if g.String() != want.String() {
		t.Errorf("grid mismatch:\n%s\nwant:\n%s", g, want)
	}
}

func TestDecodeRestoresTrimmedRectangle(t *testing.T) {
	// Encoded form drops trailing dead cells; the header width brings
	// them back on decode.
	g, _, err := Decode("x = 4, y = 2, rule = B3/S23\no$o!\n")
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if g.Width() != 4 || g.Height() != 2 {
		t.Errorf("got %dx%d, want 4x2", g.Width(), g.Height())
	}
	if g[1][3] != engine.Dead {
		t.Error("padding should be dead")
	}
}

func TestDecodeErrors(t *testing.T) {
	cases := []struct {
		name string
		text string
	}{
		{"no body", "x = 1, y = 1, rule = B3/S23"},
		{"bad header", "pattern time!\no!\n"},
		{"missing terminator", "x = 1, y = 1, rule = B3/S23\no\n"},
		{"bad code", "x = 1, y = 1, rule = B3/S23\nz!\n"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, _, err := Decode(tc.text); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestRoundTripIdempotence(t *testing.T) {
	grids := []engine.Grid{
		mustGrid(t, "oo.o"),
		mustGrid(t, ".o.", "..o", "ooo"),
		mustGrid(t, "o", ".", "o"),
		mustGrid(t, "."),
		mustGrid(t, "oB.o"),
		wideGrid(t),
	}
	for i, g := range grids {
		first := Encode(g, "B3/S23")
		decoded, rule, err := Decode(first)
		if err != nil {
			t.Fatalf("grid %d: Decode: %v", i, err)
		}
		second := Encode(decoded, rule)
		if second != first {
			t.Errorf("grid %d: re-encode differs:\nfirst:  %q\nsecond: %q", i, first, second)
		}
	}
}

func TestDecodeToleratesWrappedCounts(t *testing.T) {
	// A count split from its symbol by a newline still applies; the
	// encoder never emits this but the decoder stays liberal.
	g, _, err := Decode("x = 12, y = 1, rule = B3/S23\n12\no!\n")
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if g.Population() != 12 {
		t.Errorf("population = %d, want 12", g.Population())
	}
}
