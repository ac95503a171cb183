package cmd

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strconv"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/shipsearch/sss/internal/checkpoint"
	"github.com/shipsearch/sss/internal/results"
	"github.com/shipsearch/sss/internal/runlock"
	"github.com/shipsearch/sss/internal/style"
	"github.com/shipsearch/sss/internal/ui"
)

var (
	statusJSON       bool
	statusQuiet      bool
	statusStateDir   string
	statusResultsDir string
)

// SearchStatus is the report 'sss status' prints, shaped for --json.
type SearchStatus struct {
	StateDir   string           `json:"state_dir"`
	ResultsDir string           `json:"results_dir"`
	Lock       string           `json:"lock"`
	Holder     *runlock.Info    `json:"holder,omitempty"`
	Checkpoint *CheckpointBrief `json:"checkpoint,omitempty"`
	Error      string           `json:"error,omitempty"`
	Results    []ResultBrief    `json:"results"`
}

// CheckpointBrief summarizes the saved checkpoint for status output.
type CheckpointBrief struct {
	RunID    string    `json:"run_id,omitempty"`
	SavedAt  time.Time `json:"saved_at"`
	Age      string    `json:"age"`
	Searched string    `json:"searched"`
	Bursts   uint64    `json:"bursts"`
	Phase    int       `json:"phase"`
	Engine   string    `json:"engine"`
	Height   int       `json:"height"`
	Period   int       `json:"period"`
	DX       int       `json:"dx"`
	DY       int       `json:"dy"`
	Rule     string    `json:"rule"`
	Bound    int       `json:"bound"`
}

// ResultBrief is one result file in status output.
type ResultBrief struct {
	Cells int    `json:"cells"`
	File  string `json:"file"`
}

var statusCmd = &cobra.Command{
	Use:     "status",
	GroupID: GroupDiag,
	Short:   "Show the state of the configured search",
	Long: `Show the state of the configured search: the saved checkpoint, who
holds the run lock, and the results found so far (lightest first).

Examples:
  sss status                    # Human-readable report
  sss status --json             # Machine-readable report
  sss status -q && sss search   # Resume only when a checkpoint exists`,
	RunE: runStatus,
}

func init() {
	f := statusCmd.Flags()
	f.BoolVar(&statusJSON, "json", false, "Output status as JSON")
	f.BoolVarP(&statusQuiet, "quiet", "q", false, "No output; exit 0 if a checkpoint exists, 1 otherwise")
	f.StringVar(&statusStateDir, "state-dir", "", "State directory to inspect")
	f.StringVar(&statusResultsDir, "results-dir", "", "Results directory to inspect")
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if statusStateDir != "" {
		cfg.StateDir = statusStateDir
	}
	if statusResultsDir != "" {
		cfg.ResultsDir = statusResultsDir
	}

	st := collectStatus(cfg.StateDir, cfg.ResultsPath())

	if statusQuiet {
		if st.Checkpoint == nil {
			return NewSilentExit(1)
		}
		return nil
	}

	if statusJSON {
		data, err := json.MarshalIndent(st, "", "  ")
		if err != nil {
			return fmt.Errorf("encoding status: %w", err)
		}
		fmt.Println(string(data))
		return nil
	}

	printStatus(cfg.RunName(), st)
	return nil
}

// collectStatus gathers everything status reports. Partial answers are
// fine: a missing checkpoint or results directory is an empty field,
// not a failure.
func collectStatus(stateDir, resultsDir string) *SearchStatus {
	st := &SearchStatus{
		StateDir:   stateDir,
		ResultsDir: resultsDir,
		Results:    []ResultBrief{},
	}

	held, holder, err := runlock.Check(stateDir)
	switch {
	case err != nil:
		st.Lock = "unknown"
		st.Error = err.Error()
	case held:
		st.Lock = "held"
		st.Holder = holder
	default:
		st.Lock = "free"
	}

	cp, err := checkpoint.Load(stateDir)
	if err != nil {
		st.Error = err.Error()
	} else if cp != nil {
		st.Checkpoint = &CheckpointBrief{
			RunID:    cp.RunID,
			SavedAt:  cp.SavedAt,
			Age:      cp.Age().Round(time.Second).String(),
			Searched: cp.Elapsed.Round(time.Second).String(),
			Bursts:   cp.Bursts,
			Phase:    cp.Phase,
			Height:   cp.Search.Height,
			Period:   cp.Search.Period,
			DX:       cp.Search.DX,
			DY:       cp.Search.DY,
			Rule:     cp.Search.Rule,
			Bound:    cp.Search.MaxCells,
		}
		if cp.Engine != nil {
			st.Checkpoint.Engine = cp.Engine.Backend
		}
	}

	found, err := results.Scan(resultsDir)
	if err == nil {
		for _, r := range found {
			st.Results = append(st.Results, ResultBrief{Cells: r.Cells, File: r.Path})
		}
	}
	return st
}

func printStatus(runName string, st *SearchStatus) {
	p := message.NewPrinter(language.English)

	fmt.Printf("%s %s\n", ui.RenderCategory("search"), style.Bold.Render(runName))
	fmt.Println(ui.RenderSeparator())

	if st.Checkpoint != nil {
		cp := st.Checkpoint
		bound := "none"
		if cp.Bound >= 0 {
			bound = strconv.Itoa(cp.Bound)
		}
		p.Printf("  %s %-10s p%d (%d,%d) %s, height %d, bound %s, %d bursts, engine %s\n",
			ui.RenderPassIcon(), "checkpoint", cp.Period, cp.DX, cp.DY, cp.Rule,
			cp.Height, bound, cp.Bursts, cp.Engine)
		detail := fmt.Sprintf("saved %s ago, %s searched", cp.Age, cp.Searched)
		if cp.RunID != "" {
			detail = "run " + shortID(cp.RunID) + ", " + detail
		}
		fmt.Printf("    %s\n", style.Dim.Render(detail))
	} else {
		fmt.Printf("  %s %-10s %s\n", ui.RenderSkipIcon(), "checkpoint",
			style.Dim.Render("none (run 'sss search' to start)"))
	}

	switch st.Lock {
	case "held":
		desc := "held by another process"
		if st.Holder != nil {
			desc = fmt.Sprintf("held by PID %d since %s",
				st.Holder.PID, st.Holder.AcquiredAt.Format("15:04:05"))
		}
		fmt.Printf("  %s %-10s %s\n", ui.RenderWarnIcon(), "lock", desc)
	case "free":
		fmt.Printf("  %s %-10s %s\n", ui.RenderPassIcon(), "lock", style.Dim.Render("free"))
	default:
		fmt.Printf("  %s %-10s %s\n", ui.RenderFailIcon(), "lock", st.Lock)
	}

	if st.Error != "" {
		fmt.Printf("  %s %-10s %s\n", ui.RenderFailIcon(), "error", st.Error)
	}

	fmt.Println()
	if len(st.Results) == 0 {
		fmt.Printf("  %s\n", style.Dim.Render("No results yet in "+st.ResultsDir))
		return
	}

	fmt.Printf("  %s in %s\n", plural(len(st.Results), "result"), st.ResultsDir)
	tbl := style.NewTable(
		style.Column{Name: "CELLS", Width: 6, Align: style.AlignRight},
		style.Column{Name: "FILE", Width: 40, Style: style.Info},
	)
	for _, r := range st.Results {
		tbl.AddRow(strconv.Itoa(r.Cells), filepath.Base(r.File))
	}
	fmt.Print(tbl.Render())
}

// plural formats "1 result" / "3 results".
func plural(n int, noun string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, noun)
	}
	return fmt.Sprintf("%d %ss", n, noun)
}
