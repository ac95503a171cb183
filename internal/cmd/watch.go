package cmd

import (
	"fmt"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/shipsearch/sss/internal/runlog"
	"github.com/shipsearch/sss/internal/tui/watch"
	"github.com/shipsearch/sss/internal/ui"
)

var (
	watchStateDir   string
	watchResultsDir string
)

var watchCmd = &cobra.Command{
	Use:     "watch",
	GroupID: GroupDiag,
	Short:   "Live dashboard for a running search",
	Long: `Open a live dashboard over the search's state directory: checkpoint,
run lock, results found so far, a preview of the lightest ship, and a
scrolling event stream.

The view refreshes when the files change (and every couple of seconds
as a fallback), so it can sit in a second terminal next to a running
'sss search'.

Keys: j/k scroll events, p toggle preview, r refresh, q quit, ? help.

Examples:
  sss watch                        # Watch the configured search
  sss watch --state-dir /var/sss   # Watch a run elsewhere`,
	RunE: runWatch,
}

func init() {
	f := watchCmd.Flags()
	f.StringVar(&watchStateDir, "state-dir", "", "State directory to watch")
	f.StringVar(&watchResultsDir, "results-dir", "", "Results directory to watch")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if watchStateDir != "" {
		cfg.StateDir = watchStateDir
	}
	if watchResultsDir != "" {
		cfg.ResultsDir = watchResultsDir
	}
	resultsDir := cfg.ResultsPath()

	// No terminal to draw in: print the one-shot report instead.
	if !ui.IsTerminal() {
		printStatus(cfg.RunName(), collectStatus(cfg.StateDir, resultsDir))
		return nil
	}

	w, err := watch.NewWatcher(cfg.StateDir, filepath.Dir(runlog.LogPath(cfg.StateDir)), resultsDir)
	if err != nil {
		return fmt.Errorf("starting file watcher: %w", err)
	}
	defer func() { _ = w.Close() }()

	m := watch.NewModel(cfg.StateDir, resultsDir)
	m.SetChangeChannel(w.Changes())

	p := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running TUI: %w", err)
	}
	return nil
}
