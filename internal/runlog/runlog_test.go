package runlog

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestFormatLogLine(t *testing.T) {
	ts := time.Date(2026, 8, 23, 15, 30, 45, 0, time.UTC)

	tests := []struct {
		name     string
		event    Event
		contains []string
	}{
		{
			name: "start event",
			event: Event{
				Timestamp: ts,
				Type:      EventStart,
				Run:       "p4h0v1",
				Context:   "height 6, bound 40",
			},
			contains: []string{"2026-08-23 15:30:45", "[start]", "p4h0v1", "started (height 6, bound 40)"},
		},
		{
			name: "found event",
			event: Event{
				Timestamp: ts,
				Type:      EventFound,
				Run:       "p4h0v1",
				Context:   "16 cells at phase 2",
			},
			contains: []string{"[found]", "found 16 cells at phase 2"},
		},
		{
			name: "height event",
			event: Event{
				Timestamp: ts,
				Type:      EventHeight,
				Run:       "p4h0v1",
				Context:   "height 8",
			},
			contains: []string{"[height]", "extended search to height 8"},
		},
		{
			name: "bound event",
			event: Event{
				Timestamp: ts,
				Type:      EventBound,
				Run:       "p4h0v1",
				Context:   "15",
			},
			contains: []string{"[bound]", "tightened cell bound to 15"},
		},
		{
			name: "halt event",
			event: Event{
				Timestamp: ts,
				Type:      EventHalt,
				Run:       "p4h0v1",
				Context:   "interrupt",
			},
			contains: []string{"[halt]", "halted (interrupt)"},
		},
		{
			name: "fault event",
			event: Event{
				Timestamp: ts,
				Type:      EventFault,
				Run:       "p4h0v1",
				Context:   "engine suspended",
			},
			contains: []string{"[fault]", "fault: engine suspended"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			line := formatLogLine(tt.event)
			for _, want := range tt.contains {
				if !strings.Contains(line, want) {
					t.Errorf("formatLogLine() = %q, want it to contain %q", line, want)
				}
			}
		})
	}
}

func TestParseLogLine(t *testing.T) {
	tests := []struct {
		name    string
		line    string
		wantErr bool
		check   func(Event) bool
	}{
		{
			name: "valid start line",
			line: "2026-08-23 15:30:45 [start] p4h0v1 started (height 6)",
			check: func(e Event) bool {
				return e.Type == EventStart && e.Run == "p4h0v1"
			},
		},
		{
			name: "valid found line",
			line: "2026-08-23 15:31:02 [found] p4h0v1 found 16 cells at phase 2",
			check: func(e Event) bool {
				return e.Type == EventFound && e.Run == "p4h0v1" &&
					strings.Contains(e.Context, "16 cells")
			},
		},
		{
			name:    "too short",
			line:    "short",
			wantErr: true,
		},
		{
			name:    "missing bracket",
			line:    "2026-08-23 15:30:45 start p4h0v1",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			event, err := parseLogLine(tt.line)
			if tt.wantErr {
				if err == nil {
					t.Errorf("parseLogLine() expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Errorf("parseLogLine() unexpected error: %v", err)
				return
			}
			if tt.check != nil && !tt.check(event) {
				t.Errorf("parseLogLine() check failed for event: %+v", event)
			}
		})
	}
}

func TestLoggerLogEvent(t *testing.T) {
	tmpDir := t.TempDir()

	logger := NewLogger(tmpDir)

	err := logger.Log(EventStart, "p4h0v1", "height 6")
	if err != nil {
		t.Fatalf("Log() error: %v", err)
	}

	// Verify log file was created
	logPath := filepath.Join(tmpDir, "logs", "run.log")
	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("reading log file: %v", err)
	}

	if !strings.Contains(string(content), "[start]") {
		t.Errorf("log file should contain [start], got: %s", content)
	}
	if !strings.Contains(string(content), "p4h0v1") {
		t.Errorf("log file should contain run name, got: %s", content)
	}
}

func TestReadEventsRoundTrip(t *testing.T) {
	tmpDir := t.TempDir()
	logger := NewLogger(tmpDir)

	for _, e := range []struct {
		typ      EventType
		run, ctx string
	}{
		{EventStart, "p4h0v1", "height 6"},
		{EventFound, "p4h0v1", "16 cells at phase 2"},
		{EventHalt, "p4h0v1", "interrupt"},
	} {
		if err := logger.Log(e.typ, e.run, e.ctx); err != nil {
			t.Fatalf("Log(%s): %v", e.typ, err)
		}
	}

	events, err := ReadEvents(tmpDir)
	if err != nil {
		t.Fatalf("ReadEvents: %v", err)
	}
	if len(events) != 3 {
		t.Fatalf("got %d events, want 3", len(events))
	}
	if events[0].Type != EventStart || events[1].Type != EventFound || events[2].Type != EventHalt {
		t.Errorf("event order wrong: %+v", events)
	}
}

func TestReadEventsMissingFile(t *testing.T) {
	events, err := ReadEvents(t.TempDir())
	if err != nil {
		t.Fatalf("missing log should not error: %v", err)
	}
	if events != nil {
		t.Errorf("expected no events, got %d", len(events))
	}
}

func TestTailEvents(t *testing.T) {
	tmpDir := t.TempDir()
	logger := NewLogger(tmpDir)

	for i := 0; i < 5; i++ {
		if err := logger.Log(EventCheckpoint, "p4h0v1", ""); err != nil {
			t.Fatal(err)
		}
	}
	if err := logger.Log(EventHalt, "p4h0v1", "interrupt"); err != nil {
		t.Fatal(err)
	}

	events, err := TailEvents(tmpDir, 2)
	if err != nil {
		t.Fatalf("TailEvents: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("got %d events, want 2", len(events))
	}
	if events[1].Type != EventHalt {
		t.Errorf("last event should be halt, got %s", events[1].Type)
	}
}

func TestFilterEvents(t *testing.T) {
	now := time.Now()
	events := []Event{
		{Timestamp: now.Add(-2 * time.Hour), Type: EventStart, Run: "p4h0v1", Context: "height 6"},
		{Timestamp: now.Add(-1 * time.Hour), Type: EventHeight, Run: "p4h0v1", Context: "height 7"},
		{Timestamp: now.Add(-30 * time.Minute), Type: EventFound, Run: "p4h0v1", Context: "16 cells"},
		{Timestamp: now.Add(-10 * time.Minute), Type: EventStart, Run: "p3h1v1", Context: "height 6"},
	}

	tests := []struct {
		name      string
		filter    Filter
		wantCount int
	}{
		{
			name:      "no filter",
			filter:    Filter{},
			wantCount: 4,
		},
		{
			name:      "filter by type",
			filter:    Filter{Type: EventStart},
			wantCount: 2,
		},
		{
			name:      "filter by run prefix",
			filter:    Filter{Run: "p4"},
			wantCount: 3,
		},
		{
			name:      "filter by time",
			filter:    Filter{Since: now.Add(-45 * time.Minute)},
			wantCount: 2,
		},
		{
			name:      "combined filters",
			filter:    Filter{Type: EventStart, Run: "p4"},
			wantCount: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := FilterEvents(events, tt.filter)
			if len(result) != tt.wantCount {
				t.Errorf("FilterEvents() got %d events, want %d", len(result), tt.wantCount)
			}
		})
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		input  string
		maxLen int
		want   string
	}{
		{"short", 10, "short"},
		{"exactly10c", 10, "exactly10c"},
		{"this is a longer string", 10, "this is..."},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := truncate(tt.input, tt.maxLen)
			if got != tt.want {
				t.Errorf("truncate(%q, %d) = %q, want %q", tt.input, tt.maxLen, got, tt.want)
			}
		})
	}
}
