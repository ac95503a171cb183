// Package runlog provides centralized logging for search run lifecycle events.
package runlog

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// EventType represents the type of search lifecycle event.
type EventType string

const (
	// EventStart indicates a fresh search run began.
	EventStart EventType = "start"
	// EventResume indicates a run was resumed from a checkpoint.
	EventResume EventType = "resume"
	// EventFound indicates the engine reported a completed pattern.
	EventFound EventType = "found"
	// EventHeight indicates the search space grew by a row.
	EventHeight EventType = "height"
	// EventBound indicates the population bound was tightened.
	EventBound EventType = "bound"
	// EventCheckpoint indicates run state was persisted.
	EventCheckpoint EventType = "checkpoint"
	// EventHalt indicates the run stopped on request.
	EventHalt EventType = "halt"
	// EventFault indicates the run stopped on an error.
	EventFault EventType = "fault"
)

// Event represents a single search lifecycle event.
type Event struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
	Run       string    `json:"run"`               // e.g., "p4h0v1"
	Context   string    `json:"context,omitempty"` // Additional context (cell count, error message, etc.)
}

// Logger handles writing events to the run log file.
type Logger struct {
	logPath string
	mu      sync.Mutex
}

// logDir returns the directory for run logs.
func logDir(stateDir string) string {
	return filepath.Join(stateDir, "logs")
}

// logPath returns the path to the run log file.
func logPath(stateDir string) string {
	return filepath.Join(logDir(stateDir), "run.log")
}

// NewLogger creates a new Logger for the given state directory.
func NewLogger(stateDir string) *Logger {
	return &Logger{
		logPath: logPath(stateDir),
	}
}

// LogEvent logs a single event to the run log.
func (l *Logger) LogEvent(event Event) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	// Ensure log directory exists
	if err := os.MkdirAll(filepath.Dir(l.logPath), 0755); err != nil {
		return fmt.Errorf("creating log directory: %w", err)
	}

	// Open file for appending
	f, err := os.OpenFile(l.logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return fmt.Errorf("opening log file: %w", err)
	}
	defer f.Close()

	// Write human-readable log line
	line := formatLogLine(event)
	if _, err := f.WriteString(line + "\n"); err != nil {
		return fmt.Errorf("writing log line: %w", err)
	}

	return nil
}

// Log is a convenience method that creates an Event and logs it.
func (l *Logger) Log(eventType EventType, run, context string) error {
	return l.LogEvent(Event{
		Timestamp: time.Now(),
		Type:      eventType,
		Run:       run,
		Context:   context,
	})
}

// formatLogLine formats an event as a human-readable log line.
// Format: 2026-08-23 15:30:45 [found] p4h0v1 found 16 cells at phase 2
func formatLogLine(e Event) string {
	ts := e.Timestamp.Format("2006-01-02 15:04:05")

	var detail string
	switch e.Type {
	case EventStart:
		if e.Context != "" {
			detail = fmt.Sprintf("started (%s)", e.Context)
		} else {
			detail = "started"
		}
	case EventResume:
		detail = "resumed from checkpoint"
		if e.Context != "" {
			detail += fmt.Sprintf(" (%s)", e.Context)
		}
	case EventFound:
		if e.Context != "" {
			detail = fmt.Sprintf("found %s", e.Context)
		} else {
			detail = "found a result"
		}
	case EventHeight:
		if e.Context != "" {
			detail = fmt.Sprintf("extended search to %s", e.Context)
		} else {
			detail = "extended search"
		}
	case EventBound:
		if e.Context != "" {
			detail = fmt.Sprintf("tightened cell bound to %s", e.Context)
		} else {
			detail = "tightened cell bound"
		}
	case EventCheckpoint:
		if e.Context != "" {
			detail = fmt.Sprintf("checkpointed (%s)", e.Context)
		} else {
			detail = "checkpointed"
		}
	case EventHalt:
		if e.Context != "" {
			detail = fmt.Sprintf("halted (%s)", e.Context)
		} else {
			detail = "halted"
		}
	case EventFault:
		if e.Context != "" {
			detail = fmt.Sprintf("fault: %s", truncate(e.Context, 120))
		} else {
			detail = "fault"
		}
	default:
		detail = string(e.Type)
		if e.Context != "" {
			detail += fmt.Sprintf(" (%s)", e.Context)
		}
	}

	return fmt.Sprintf("%s [%s] %s %s", ts, e.Type, e.Run, detail)
}

// truncate shortens a string to max length with ellipsis.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}

// ReadEvents reads all events from the log file.
// Useful for filtering and analysis.
func ReadEvents(stateDir string) ([]Event, error) {
	path := logPath(stateDir)

	content, err := os.ReadFile(path) //nolint:gosec // G304: path is constructed from trusted stateDir
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil // No log file yet
		}
		return nil, fmt.Errorf("reading log file: %w", err)
	}

	return ParseLogLines(string(content))
}

// ParseLogLines parses log lines back into Events.
// This is the inverse of formatLogLine for filtering.
func ParseLogLines(content string) ([]Event, error) {
	var events []Event
	lines := splitLines(content)

	for _, line := range lines {
		if line == "" {
			continue
		}
		event, err := parseLogLine(line)
		if err != nil {
			continue // Skip malformed lines
		}
		events = append(events, event)
	}

	return events, nil
}

// parseLogLine parses a single log line into an Event.
// Format: 2026-08-23 15:30:45 [found] p4h0v1 found 16 cells at phase 2
func parseLogLine(line string) (Event, error) {
	var event Event

	// Parse timestamp (first 19 chars: "2006-01-02 15:04:05")
	if len(line) < 19 {
		return event, fmt.Errorf("line too short")
	}
	ts, err := time.Parse("2006-01-02 15:04:05", line[:19])
	if err != nil {
		return event, fmt.Errorf("parsing timestamp: %w", err)
	}
	event.Timestamp = ts

	// Find event type in brackets
	rest := line[20:] // Skip timestamp and space
	if len(rest) < 3 || rest[0] != '[' {
		return event, fmt.Errorf("missing event type")
	}

	closeBracket := -1
	for i, c := range rest {
		if c == ']' {
			closeBracket = i
			break
		}
	}
	if closeBracket < 0 {
		return event, fmt.Errorf("unclosed bracket")
	}

	event.Type = EventType(rest[1:closeBracket])

	// Rest is " run details"
	rest = rest[closeBracket+1:]
	if len(rest) < 2 || rest[0] != ' ' {
		return event, fmt.Errorf("missing run name")
	}
	rest = rest[1:]

	// Find first space after the run name
	spaceIdx := -1
	for i, c := range rest {
		if c == ' ' {
			spaceIdx = i
			break
		}
	}
	if spaceIdx < 0 {
		event.Run = rest
	} else {
		event.Run = rest[:spaceIdx]
		event.Context = rest[spaceIdx+1:]
	}

	return event, nil
}

func splitLines(s string) []string {
	var lines []string
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			lines = append(lines, s[start:i])
			start = i + 1
		}
	}
	if start < len(s) {
		lines = append(lines, s[start:])
	}
	return lines
}

// TailEvents returns the last n events from the log.
func TailEvents(stateDir string, n int) ([]Event, error) {
	events, err := ReadEvents(stateDir)
	if err != nil {
		return nil, err
	}
	if len(events) <= n {
		return events, nil
	}
	return events[len(events)-n:], nil
}

// Filter selects events by type, run name prefix, and age.
type Filter struct {
	Type  EventType // Filter by event type (empty for all)
	Run   string    // Filter by run name prefix (empty for all)
	Since time.Time // Filter by time (zero for all)
}

// FilterEvents applies a filter to events.
func FilterEvents(events []Event, f Filter) []Event {
	var result []Event
	for _, e := range events {
		if f.Type != "" && e.Type != f.Type {
			continue
		}
		if f.Run != "" && !hasPrefix(e.Run, f.Run) {
			continue
		}
		if !f.Since.IsZero() && e.Timestamp.Before(f.Since) {
			continue
		}
		result = append(result, e)
	}
	return result
}

func hasPrefix(s, prefix string) bool {
	if len(s) < len(prefix) {
		return false
	}
	return s[:len(prefix)] == prefix
}

// LogPath returns the run log location for external tailing.
func LogPath(stateDir string) string {
	return logPath(stateDir)
}
