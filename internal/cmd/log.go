package cmd

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/shipsearch/sss/internal/runlog"
	"github.com/shipsearch/sss/internal/style"
)

// Log command flags
var (
	logTail     int
	logType     string
	logRun      string
	logSince    string
	logFollow   bool
	logStateDir string
)

var logCmd = &cobra.Command{
	Use:     "log",
	GroupID: GroupDiag,
	Short:   "View the run event log",
	Long: `View the log of search run lifecycle events.

Events logged include:
  start      - fresh run started
  resume     - run resumed from its checkpoint
  found      - result recorded
  height     - search grew to a taller grid
  bound      - live-cell bound tightened
  checkpoint - state saved
  halt       - run stopped on request
  fault      - run stopped on an error

Examples:
  sss log                    # Show last 20 events
  sss log -n 50              # Show last 50 events
  sss log --type found       # Show only found events
  sss log --run p3           # Show events for period-3 runs
  sss log --since 1h         # Show events from last hour
  sss log -f                 # Follow log (like tail -f)`,
	RunE: runLog,
}

func init() {
	logCmd.Flags().IntVarP(&logTail, "tail", "n", 20, "Number of events to show")
	logCmd.Flags().StringVarP(&logType, "type", "t", "", "Filter by event type (start,resume,found,height,bound,checkpoint,halt,fault)")
	logCmd.Flags().StringVarP(&logRun, "run", "r", "", "Filter by run name prefix (e.g., p3, p4h0v1)")
	logCmd.Flags().StringVar(&logSince, "since", "", "Show events since duration (e.g., 1h, 30m, 24h)")
	logCmd.Flags().BoolVarP(&logFollow, "follow", "f", false, "Follow log output (like tail -f)")
	logCmd.Flags().StringVar(&logStateDir, "state-dir", "", "State directory holding the log")
	rootCmd.AddCommand(logCmd)
}

func runLog(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	stateDir := cfg.StateDir
	if logStateDir != "" {
		stateDir = logStateDir
	}

	logPath := runlog.LogPath(stateDir)

	// If following, use tail -f
	if logFollow {
		return followLog(logPath)
	}

	// Check if log file exists
	if _, err := os.Stat(logPath); os.IsNotExist(err) {
		fmt.Printf("%s No run log yet (no events recorded)\n", style.Dim.Render("○"))
		return nil
	}

	// Read events
	events, err := runlog.ReadEvents(stateDir)
	if err != nil {
		return fmt.Errorf("reading events: %w", err)
	}

	if len(events) == 0 {
		fmt.Printf("%s No events in log\n", style.Dim.Render("○"))
		return nil
	}

	// Build filter
	filter := runlog.Filter{}

	if logType != "" {
		filter.Type = runlog.EventType(logType)
	}

	if logRun != "" {
		filter.Run = logRun
	}

	if logSince != "" {
		duration, err := time.ParseDuration(logSince)
		if err != nil {
			return fmt.Errorf("invalid --since duration: %w", err)
		}
		filter.Since = time.Now().Add(-duration)
	}

	// Apply filter
	events = runlog.FilterEvents(events, filter)

	// Apply tail limit
	if logTail > 0 && len(events) > logTail {
		events = events[len(events)-logTail:]
	}

	if len(events) == 0 {
		fmt.Printf("%s No events match filter\n", style.Dim.Render("○"))
		return nil
	}

	// Print events
	for _, e := range events {
		printEvent(e)
	}

	return nil
}

// followLog uses tail -f to follow the log file.
func followLog(logPath string) error {
	// Check if log file exists, create empty if not
	if _, err := os.Stat(logPath); os.IsNotExist(err) {
		if err := os.MkdirAll(filepath.Dir(logPath), 0755); err != nil {
			return fmt.Errorf("creating logs directory: %w", err)
		}
		if _, err := os.Create(logPath); err != nil {
			return fmt.Errorf("creating log file: %w", err)
		}
	}

	fmt.Printf("%s Following %s (Ctrl+C to stop)\n\n", style.Dim.Render("○"), logPath)

	tailCmd := exec.Command("tail", "-f", logPath)
	tailCmd.Stdout = os.Stdout
	tailCmd.Stderr = os.Stderr

	return tailCmd.Run()
}

// printEvent prints a single event with styling.
func printEvent(e runlog.Event) {
	ts := e.Timestamp.Format("2006-01-02 15:04:05")

	// Color-code event types
	var typeStr string
	switch e.Type {
	case runlog.EventStart:
		typeStr = style.Info.Render("[start]")
	case runlog.EventResume:
		typeStr = style.Info.Render("[resume]")
	case runlog.EventFound:
		typeStr = style.Success.Render("[found]")
	case runlog.EventHeight:
		typeStr = style.Bold.Render("[height]")
	case runlog.EventBound:
		typeStr = style.Dim.Render("[bound]")
	case runlog.EventCheckpoint:
		typeStr = style.Dim.Render("[checkpoint]")
	case runlog.EventHalt:
		typeStr = style.Warning.Render("[halt]")
	case runlog.EventFault:
		typeStr = style.Error.Render("[fault]")
	default:
		typeStr = fmt.Sprintf("[%s]", e.Type)
	}

	detail := formatEventDetail(e)
	fmt.Printf("%s %s %s %s\n", style.Dim.Render(ts), typeStr, e.Run, detail)
}

// formatEventDetail returns a human-readable detail string for an event.
func formatEventDetail(e runlog.Event) string {
	switch e.Type {
	case runlog.EventStart:
		if e.Context != "" {
			return fmt.Sprintf("started (%s)", e.Context)
		}
		return "started"
	case runlog.EventResume:
		if e.Context != "" {
			return fmt.Sprintf("resumed (%s)", e.Context)
		}
		return "resumed"
	case runlog.EventFound:
		if e.Context != "" {
			return "found " + e.Context
		}
		return "found a ship"
	case runlog.EventHeight:
		if e.Context != "" {
			return "grew to " + e.Context
		}
		return "grew the grid"
	case runlog.EventBound:
		if e.Context != "" {
			return "bound tightened to " + e.Context
		}
		return "bound tightened"
	case runlog.EventCheckpoint:
		if e.Context != "" {
			return fmt.Sprintf("saved (%s)", e.Context)
		}
		return "saved"
	case runlog.EventHalt:
		if e.Context != "" {
			return fmt.Sprintf("halted (%s)", e.Context)
		}
		return "halted"
	case runlog.EventFault:
		if e.Context != "" {
			return "faulted: " + truncateStr(e.Context, 80)
		}
		return "faulted"
	default:
		if e.Context != "" {
			return fmt.Sprintf("%s (%s)", e.Type, e.Context)
		}
		return string(e.Type)
	}
}

func truncateStr(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
