package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/shipsearch/sss/internal/config"
	"github.com/shipsearch/sss/internal/engine"
	_ "github.com/shipsearch/sss/internal/engine/replay"
	"github.com/shipsearch/sss/internal/progress"
	"github.com/shipsearch/sss/internal/runlock"
	"github.com/shipsearch/sss/internal/runlog"
	"github.com/shipsearch/sss/internal/search"
	"github.com/shipsearch/sss/internal/style"
	"github.com/shipsearch/sss/internal/ui"
)

// lockWait bounds how long search waits for the run lock before giving
// up with the holder's details.
const lockWait = 2 * time.Second

var (
	searchFresh           bool
	searchEngine          string
	searchEngineOpts      []string
	searchStateDir        string
	searchResultsDir      string
	searchPeriod          int
	searchDX              int
	searchDY              int
	searchHeight          int
	searchMaxWidth        int
	searchMaxCells        int
	searchRule            string
	searchSymmetry        string
	searchStepBudget      uint64
	searchCheckpointEvery int
)

var searchCmd = &cobra.Command{
	Use:     "search",
	GroupID: GroupSearch,
	Short:   "Run (or resume) the configured spaceship search",
	Long: `Run the spaceship search described by sss.toml and these flags.

The search never finishes on its own: when a grid height is exhausted
the next taller one is opened, and every result found tightens the
live-cell bound. Interrupt with Ctrl+C; the run checkpoints and the
next 'sss search' resumes it. Flags override the config file for this
run only.

Examples:
  sss search                          # Run (or resume) the configured search
  sss search --fresh                  # Ignore the checkpoint and start over
  sss search --period 4 --dy 1        # Override the search instance
  sss search --max-cells 40           # Only accept ships up to 40 cells
  sss search --engine replay --engine-opt script=story.json`,
	RunE: runSearch,
}

func init() {
	f := searchCmd.Flags()
	f.BoolVar(&searchFresh, "fresh", false, "Ignore any checkpoint and start over")
	f.StringVar(&searchEngine, "engine", "", "Engine backend to drive")
	f.StringArrayVar(&searchEngineOpts, "engine-opt", nil, "Backend option as key=value (repeatable)")
	f.StringVar(&searchStateDir, "state-dir", "", "Directory for checkpoint, lock, and run log")
	f.StringVar(&searchResultsDir, "results-dir", "", "Directory for result patterns")
	f.IntVar(&searchPeriod, "period", 0, "Ship period in generations")
	f.IntVar(&searchDX, "dx", 0, "Horizontal translation per period")
	f.IntVar(&searchDY, "dy", 0, "Vertical translation per period")
	f.IntVar(&searchHeight, "height", 0, "Starting grid height")
	f.IntVar(&searchMaxWidth, "max-width", 0, "Grid width bound")
	f.IntVar(&searchMaxCells, "max-cells", 0, "Live-cell bound (-1 for unbounded)")
	f.StringVar(&searchRule, "rule", "", "Cellular automaton rule, e.g. B3/S23")
	f.StringVar(&searchSymmetry, "symmetry", "", "Symmetry class (C1, C2, C4, D2-, D2|, ...)")
	f.Uint64Var(&searchStepBudget, "step-budget", 0, "Engine steps per burst")
	f.IntVar(&searchCheckpointEvery, "checkpoint-every", 0, "Bursts between checkpoint saves")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := applySearchFlags(cmd, &cfg); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Take the run lock before touching the checkpoint so two searches
	// cannot resume the same state directory.
	lockCtx, cancel := context.WithTimeout(ctx, lockWait)
	lock, err := runlock.Acquire(lockCtx, cfg.StateDir, runlock.Info{RunName: cfg.RunName()})
	cancel()
	if err != nil {
		return err
	}
	defer func() { _ = lock.Release() }()

	s, err := search.New(cfg, engine.BackendFactory(cfg.Engine, cfg.EngineOpts), searchFresh, runlog.NewLogger(cfg.StateDir))
	if err != nil {
		return err
	}

	printSearchHeader(s)

	s.OnProgress = func(status engine.Status, info progress.Info) {
		width := ui.Width()
		fmt.Println(style.Banner.Render(info.Banner(width)))
		if len(info.Grid) == 0 {
			return
		}
		if status == engine.StatusFound {
			fmt.Println(style.Found.Render(info.GridView(width)))
		} else {
			fmt.Println(style.Searching.Render(info.GridView(width)))
		}
	}

	err = s.Run(ctx)
	if errors.Is(err, context.Canceled) {
		p := message.NewPrinter(language.English)
		fmt.Println()
		p.Printf("%s Interrupted; checkpoint saved after %d bursts (%v searched)\n",
			style.SuccessPrefix, s.Bursts(), s.Elapsed().Round(time.Second))
		return nil
	}
	return err
}

// printSearchHeader describes the run before the first burst report.
func printSearchHeader(s *search.Searcher) {
	cfg := s.Config()
	sc := cfg.Search
	p := message.NewPrinter(language.English)

	fmt.Printf("%s p%d ship, translation (%d,%d), rule %s, symmetry %s, height %d\n",
		style.ArrowPrefix, sc.Period, sc.DX, sc.DY, sc.Rule, sc.Symmetry, sc.Height)
	fmt.Printf("%s engine %s, results %s, state %s\n",
		style.ArrowPrefix, cfg.Engine, cfg.ResultsPath(), cfg.StateDir)
	if s.Resumed() {
		p.Printf("%s resumed run %s: %d bursts, %v searched\n",
			style.ArrowPrefix, shortID(s.RunID()), s.Bursts(), s.Elapsed().Round(time.Second))
	} else {
		fmt.Printf("%s fresh run %s\n", style.ArrowPrefix, shortID(s.RunID()))
	}
	if s.Best() > 0 {
		fmt.Printf("%s cell bound %d\n", style.ArrowPrefix, s.Best())
	}
}

// applySearchFlags folds flags the user actually set into the loaded
// config. Unset flags leave the file's values alone.
func applySearchFlags(cmd *cobra.Command, cfg *config.Config) error {
	f := cmd.Flags()
	if f.Changed("engine") {
		cfg.Engine = searchEngine
	}
	if f.Changed("state-dir") {
		cfg.StateDir = searchStateDir
	}
	if f.Changed("results-dir") {
		cfg.ResultsDir = searchResultsDir
	}
	if f.Changed("step-budget") {
		cfg.StepBudget = searchStepBudget
	}
	if f.Changed("checkpoint-every") {
		cfg.CheckpointEvery = searchCheckpointEvery
	}
	if f.Changed("period") {
		cfg.Search.Period = searchPeriod
	}
	if f.Changed("dx") {
		cfg.Search.DX = searchDX
	}
	if f.Changed("dy") {
		cfg.Search.DY = searchDY
	}
	if f.Changed("height") {
		cfg.Search.Height = searchHeight
	}
	if f.Changed("max-width") {
		cfg.Search.MaxWidth = searchMaxWidth
	}
	if f.Changed("max-cells") {
		cfg.Search.MaxCells = searchMaxCells
	}
	if f.Changed("rule") {
		cfg.Search.Rule = searchRule
	}
	if f.Changed("symmetry") {
		cfg.Search.Symmetry = config.Symmetry(searchSymmetry)
	}

	for _, opt := range searchEngineOpts {
		key, value, ok := strings.Cut(opt, "=")
		if !ok || key == "" {
			return fmt.Errorf("invalid --engine-opt %q (want key=value)", opt)
		}
		if cfg.EngineOpts == nil {
			cfg.EngineOpts = make(map[string]string)
		}
		cfg.EngineOpts[key] = value
	}
	return nil
}

// shortID abbreviates a run ID for display.
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
