package watch

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/shipsearch/sss/internal/ui"
)

// maxResultRows caps how many result files the top panel lists.
const maxResultRows = 5

// Styles for the watch TUI
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ui.ColorAccent)

	headingStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ui.ColorAccent)

	labelStyle = lipgloss.NewStyle().
			Foreground(ui.ColorMuted)

	lockStyle = lipgloss.NewStyle().
			Foreground(ui.ColorWarn)

	cellsStyle = lipgloss.NewStyle().
			Foreground(ui.ColorPass)

	previewStyle = lipgloss.NewStyle().
			Foreground(ui.ColorPass)

	timestampStyle = lipgloss.NewStyle().
			Foreground(ui.ColorMuted)

	errorStyle = lipgloss.NewStyle().
			Foreground(ui.ColorFail)

	helpStyle = lipgloss.NewStyle().
			Foreground(ui.ColorMuted)
)

// renderView renders the entire dashboard.
func (m *Model) renderView() string {
	var b strings.Builder

	b.WriteString(m.renderTop())
	b.WriteString("\n")
	b.WriteString(m.eventsViewport.View())
	b.WriteString("\n")

	if m.showHelp {
		b.WriteString(m.help.View(m.keys))
	} else {
		b.WriteString(helpStyle.Render("j/k:scroll  p:preview  r:refresh  q:quit  ?:help"))
	}

	return b.String()
}

// renderTop renders everything above the event viewport: title line,
// checkpoint panel, result list, and the optional pattern preview.
func (m *Model) renderTop() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("sss watch"))
	if status := m.state.lockStatus; status != "" {
		b.WriteString("  ")
		if status == "free" {
			b.WriteString(labelStyle.Render("lock free"))
		} else {
			b.WriteString(lockStyle.Render("lock " + status))
		}
	}
	b.WriteString("\n")

	if m.err != nil {
		b.WriteString(errorStyle.Render(fmt.Sprintf("error: %v", m.err)))
		b.WriteString("\n")
	}

	b.WriteString(headingStyle.Render("CHECKPOINT"))
	b.WriteString("\n")
	if cp := m.state.checkpoint; cp != nil {
		b.WriteString("  ")
		b.WriteString(cp.Summary())
		b.WriteString("\n  ")
		saved := fmt.Sprintf("saved %s ago, %s searched",
			cp.Age().Round(time.Second), cp.Elapsed.Round(time.Second))
		if cp.RunID != "" {
			saved += ", run " + shortID(cp.RunID)
		}
		b.WriteString(labelStyle.Render(saved))
		b.WriteString("\n")
	} else {
		b.WriteString(labelStyle.Render("  none yet"))
		b.WriteString("\n")
	}

	b.WriteString(headingStyle.Render("RESULTS"))
	b.WriteString("\n")
	if len(m.state.results) == 0 {
		b.WriteString(labelStyle.Render("  none yet"))
		b.WriteString("\n")
	} else {
		shown := m.state.results
		if len(shown) > maxResultRows {
			shown = shown[:maxResultRows]
		}
		for _, r := range shown {
			b.WriteString("  ")
			b.WriteString(cellsStyle.Render(fmt.Sprintf("%3d cells", r.Cells)))
			b.WriteString("  ")
			b.WriteString(filepath.Base(r.Path))
			b.WriteString("\n")
		}
		if extra := len(m.state.results) - len(shown); extra > 0 {
			b.WriteString(labelStyle.Render(fmt.Sprintf("  … and %d more", extra)))
			b.WriteString("\n")
		}
	}

	if m.showPreview && m.state.preview != "" {
		b.WriteString(headingStyle.Render("LIGHTEST"))
		b.WriteString("\n")
		for _, line := range strings.Split(m.state.preview, "\n") {
			b.WriteString("  ")
			b.WriteString(previewStyle.Render(line))
			b.WriteString("\n")
		}
	}

	b.WriteString(headingStyle.Render("EVENTS"))
	return b.String()
}

// renderEvents renders the run log tail for the events viewport.
func (m *Model) renderEvents() string {
	if len(m.state.events) == 0 {
		return labelStyle.Render("no run log events yet")
	}
	var b strings.Builder
	for i, ev := range m.state.events {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(timestampStyle.Render(ev.Timestamp.Format("15:04:05")))
		b.WriteString(" ")
		b.WriteString(ui.RenderEventType(string(ev.Type)))
		b.WriteString(" ")
		b.WriteString(ev.Context)
	}
	return b.String()
}

// lineCount counts rendered lines, treating the empty string as zero.
func lineCount(s string) int {
	if s == "" {
		return 0
	}
	return strings.Count(s, "\n") + 1
}

// shortID abbreviates a run ID for display.
func shortID(id string) string {
	runes := []rune(id)
	if len(runes) <= 8 {
		return id
	}
	return string(runes[:8])
}
