// Package config holds the driver's configuration: the search instance
// handed to engine builds, the process surface around it, TOML file
// loading, and the derive operations the orchestrator uses when it
// grows or tightens a search.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// FileName is the conventional config file looked for in the working
// directory.
const FileName = "sss.toml"

const (
	// DefaultStepBudget is how many engine steps one burst may spend
	// before control returns to the driver.
	DefaultStepBudget uint64 = 1 << 22

	// DefaultCheckpointEvery is how many bursts pass between checkpoint
	// saves.
	DefaultCheckpointEvery = 8

	// DefaultRule is the Game of Life rule string.
	DefaultRule = "B3/S23"

	// DefaultMaxWidth bounds pattern width when none is given.
	DefaultMaxWidth = 1024
)

// Symmetry names the symmetry class the engine should impose, in the
// conventional notation for the ten symmetry classes of a rectangle.
// Interpreting it belongs to the engine.
type Symmetry string

const (
	SymmetryC1      Symmetry = "C1"
	SymmetryC2      Symmetry = "C2"
	SymmetryC4      Symmetry = "C4"
	SymmetryD2Row   Symmetry = "D2-"
	SymmetryD2Col   Symmetry = "D2|"
	SymmetryD2Diag  Symmetry = "D2\\"
	SymmetryD2Anti  Symmetry = "D2/"
	SymmetryD4Ortho Symmetry = "D4+"
	SymmetryD4Diag  Symmetry = "D4X"
	SymmetryD8      Symmetry = "D8"
)

var symmetries = map[Symmetry]bool{
	SymmetryC1:      true,
	SymmetryC2:      true,
	SymmetryC4:      true,
	SymmetryD2Row:   true,
	SymmetryD2Col:   true,
	SymmetryD2Diag:  true,
	SymmetryD2Anti:  true,
	SymmetryD4Ortho: true,
	SymmetryD4Diag:  true,
	SymmetryD8:      true,
}

// Search describes one search instance handed to an engine build.
//
// It is a value type: the orchestrator derives changed copies with
// WithHeight and WithMaxCells instead of mutating in place, so every
// transition is explicit.
type Search struct {
	MaxWidth int      `toml:"max_width" json:"max_width"`
	Height   int      `toml:"height" json:"height"`
	Period   int      `toml:"period" json:"period"`
	DX       int      `toml:"dx" json:"dx"`
	DY       int      `toml:"dy" json:"dy"`
	Symmetry Symmetry `toml:"symmetry" json:"symmetry"`
	Rule     string   `toml:"rule" json:"rule"`

	// MaxCells bounds the live-cell count of acceptable results.
	// Negative means unbounded.
	MaxCells int `toml:"max_cells" json:"max_cells"`

	// PreferEmpty asks the engine to try the empty state first for
	// undecided cells.
	PreferEmpty bool `toml:"prefer_empty" json:"prefer_empty"`

	// NonEmptyFront requires the leading row of the pattern to be
	// non-empty, anchoring a ship to its front.
	NonEmptyFront bool `toml:"non_empty_front" json:"non_empty_front"`

	// ReduceMax lets the engine tighten its own bound as results appear.
	ReduceMax bool `toml:"reduce_max" json:"reduce_max"`
}

// WithHeight returns a copy with the grid height replaced.
func (s Search) WithHeight(h int) Search {
	s.Height = h
	return s
}

// WithMaxCells returns a copy with the live-cell bound replaced.
func (s Search) WithMaxCells(n int) Search {
	s.MaxCells = n
	return s
}

// Validate checks the range constraints engine builds assume.
func (s Search) Validate() error {
	if s.MaxWidth < 1 {
		return fmt.Errorf("max_width must be at least 1, got %d", s.MaxWidth)
	}
	if s.Height < 1 {
		return fmt.Errorf("height must be at least 1, got %d", s.Height)
	}
	if s.Period < 1 {
		return fmt.Errorf("period must be at least 1, got %d", s.Period)
	}
	if s.Rule == "" {
		return fmt.Errorf("rule must not be empty")
	}
	if !symmetries[s.Symmetry] {
		return fmt.Errorf("unknown symmetry %q", s.Symmetry)
	}
	return nil
}

// Config is the full process surface for one driver run.
type Config struct {
	// Engine names a backend registered with the engine registry.
	Engine string `toml:"engine"`

	// EngineOpts passes backend-specific settings through to the build.
	EngineOpts map[string]string `toml:"engine_opts"`

	// ResultsDir receives result pattern files. Empty means derive
	// spaceships/p<period>/h<dx>v<dy> from the search parameters.
	ResultsDir string `toml:"results_dir"`

	// StateDir holds the checkpoint, run lock, and run log.
	StateDir string `toml:"state_dir"`

	StepBudget      uint64 `toml:"step_budget"`
	CheckpointEvery int    `toml:"checkpoint_every"`

	// Theme forces the CLI color scheme: "dark", "light", or "auto".
	// Empty means detect from the terminal background.
	Theme string `toml:"theme"`

	Search Search `toml:"search"`
}

// Default returns the configuration used when no file or flags override
// it: a period-3, (0,1)-translation Life search starting at height 1.
func Default() Config {
	return Config{
		Engine:          "replay",
		StateDir:        ".",
		StepBudget:      DefaultStepBudget,
		CheckpointEvery: DefaultCheckpointEvery,
		Search: Search{
			MaxWidth:      DefaultMaxWidth,
			Height:        1,
			Period:        3,
			DX:            0,
			DY:            1,
			Symmetry:      SymmetryC1,
			Rule:          DefaultRule,
			MaxCells:      -1,
			PreferEmpty:   true,
			NonEmptyFront: true,
			ReduceMax:     true,
		},
	}
}

// Load reads the TOML file at path over the defaults. A missing file
// yields the defaults with found=false, so callers can decide whether
// that is an error.
func Load(path string) (cfg Config, found bool, err error) {
	cfg = Default()
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, false, nil
	}
	if err != nil {
		return cfg, false, fmt.Errorf("reading config: %w", err)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, true, fmt.Errorf("parsing %s: %w", path, err)
	}
	return cfg, true, nil
}

// Validate checks the whole surface before the orchestrator is
// constructed.
func (c Config) Validate() error {
	if c.Engine == "" {
		return fmt.Errorf("engine backend not set")
	}
	if c.StateDir == "" {
		return fmt.Errorf("state_dir must not be empty")
	}
	if c.StepBudget == 0 {
		return fmt.Errorf("step_budget must be positive")
	}
	if c.CheckpointEvery < 1 {
		return fmt.Errorf("checkpoint_every must be at least 1, got %d", c.CheckpointEvery)
	}
	return c.Search.Validate()
}

// ResultsPath resolves the results directory, deriving the conventional
// spaceships/p<period>/h<dx>v<dy> layout when none is configured.
func (c Config) ResultsPath() string {
	if c.ResultsDir != "" {
		return c.ResultsDir
	}
	return filepath.Join("spaceships",
		fmt.Sprintf("p%d", c.Search.Period),
		fmt.Sprintf("h%dv%d", c.Search.DX, c.Search.DY))
}

// RunName is the short label for this search used in log lines and
// lock metadata, e.g. "p3h0v1".
func (c Config) RunName() string {
	return fmt.Sprintf("p%dh%dv%d", c.Search.Period, c.Search.DX, c.Search.DY)
}
