// Package replay implements a scripted engine backend.
//
// A replay engine does no searching: it plays back a fixed sequence of
// burst outcomes, with optional per-phase grids attached to each step.
// That makes it the reference backend for exercising the driver loop:
// tests script exact status sequences, and `sss search --engine replay
// --engine-opt script=...` runs the whole binary against a known
// story. The script cursor lives in the shared script, so one sequence
// spans engine rebuilds (height growth) the way a real search would.
package replay

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/shipsearch/sss/internal/config"
	"github.com/shipsearch/sss/internal/engine"
)

// Name is the backend name in the engine registry.
const Name = "replay"

func init() {
	engine.Register(Name, &Builder{})
}

// Step is one scripted burst outcome. Phases holds row strings per
// phase ('.' dead, 'o' alive, '?' unknown, letters for further
// states); a step with fewer grids than phases asked for repeats its
// last grid.
type Step struct {
	Status engine.Status `json:"status"`
	Phases [][]string    `json:"phases,omitempty"`
}

// Script is an ordered list of steps plus the cursor shared by every
// engine built from it.
type Script struct {
	Steps []Step `json:"steps"`

	// Cursor indexes the next step to play.
	Cursor int `json:"cursor"`
}

func (s *Script) next() (int, *Step) {
	if s.Cursor >= len(s.Steps) {
		return -1, nil
	}
	idx := s.Cursor
	s.Cursor++
	return idx, &s.Steps[idx]
}

// Builder builds replay engines. Scripts load once per path, so
// rebuilds after height growth continue where the script left off.
type Builder struct {
	mu      sync.Mutex
	scripts map[string]*Script
}

// Build returns an engine playing the script named by opts["script"].
// No script option means an empty script, which suspends on the first
// burst.
func (b *Builder) Build(cfg config.Search, opts map[string]string) (engine.Engine, error) {
	script, err := b.script(opts["script"])
	if err != nil {
		return nil, err
	}
	return newEngine(cfg, script), nil
}

func (b *Builder) script(path string) (*Script, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.scripts == nil {
		b.scripts = map[string]*Script{}
	}
	if s, ok := b.scripts[path]; ok {
		return s, nil
	}
	s := &Script{}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading replay script: %w", err)
		}
		if err := json.Unmarshal(data, s); err != nil {
			return nil, fmt.Errorf("parsing replay script %s: %w", path, err)
		}
	}
	b.scripts[path] = s
	return s, nil
}

// Restore rebuilds an engine from a snapshot payload. The payload
// carries the whole script, so restoring never reads the script file.
func (b *Builder) Restore(data json.RawMessage) (engine.Engine, error) {
	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("parsing replay snapshot: %w", err)
	}
	if snap.Script == nil {
		return nil, fmt.Errorf("replay snapshot has no script")
	}
	e := newEngine(snap.Config, snap.Script)
	e.played = snap.Played
	e.steps = snap.Steps
	e.bound = snap.MaxCells
	e.bounded = snap.MaxSet
	return e, nil
}

// Engine plays a shared script. It tracks the live-cell bound it is
// told about so the driver's ratchet survives snapshot round-trips.
type Engine struct {
	cfg    config.Search
	script *Script

	// played is the index of the last consumed step, -1 before the
	// first burst.
	played  int
	steps   uint64
	bound   int
	bounded bool
}

// NewEngine returns an engine over its own private script, for direct
// use in tests.
func NewEngine(cfg config.Search, steps []Step) *Engine {
	return newEngine(cfg, &Script{Steps: steps})
}

func newEngine(cfg config.Search, script *Script) *Engine {
	e := &Engine{cfg: cfg, script: script, played: -1}
	if cfg.MaxCells >= 0 {
		e.bound, e.bounded = cfg.MaxCells, true
	}
	return e
}

// Step consumes the next scripted outcome. A script that runs dry
// suspends, which the driver treats as fatal: a loud stop for tests
// and demo runs alike.
func (e *Engine) Step(budget uint64) engine.Status {
	e.steps += budget
	idx, s := e.script.next()
	if s == nil {
		return engine.StatusSuspended
	}
	e.played = idx
	return s.Status
}

// Steps reports the total step budget consumed so far.
func (e *Engine) Steps() uint64 { return e.steps }

// Generation returns the grid for one phase of the last played step.
// Steps without grids, and bursts before the first step, render as an
// all-unknown grid sized from the configuration.
func (e *Engine) Generation(phase int) engine.Grid {
	rows := e.phaseRows(phase)
	if rows == nil {
		return e.unknownGrid()
	}
	g, err := engine.ParseGrid(rows)
	if err != nil {
		return e.unknownGrid()
	}
	return g
}

// Population returns the live-cell count of one phase's grid.
func (e *Engine) Population(phase int) int {
	return e.Generation(phase).Population()
}

// MaxPopulation reports the bound currently in effect.
func (e *Engine) MaxPopulation() (int, bool) {
	return e.bound, e.bounded
}

// SetMaxPopulation records a tightened bound.
func (e *Engine) SetMaxPopulation(limit int) {
	e.bound, e.bounded = limit, true
}

func (e *Engine) phaseRows(phase int) []string {
	if e.played < 0 || e.played >= len(e.script.Steps) {
		return nil
	}
	phases := e.script.Steps[e.played].Phases
	if len(phases) == 0 {
		return nil
	}
	if phase < 0 {
		phase = 0
	}
	if phase >= len(phases) {
		phase = len(phases) - 1
	}
	return phases[phase]
}

func (e *Engine) unknownGrid() engine.Grid {
	w := e.cfg.MaxWidth
	if w > 16 {
		w = 16 // keep the placeholder narrow enough to read
	}
	g := make(engine.Grid, e.cfg.Height)
	for y := range g {
		row := make([]engine.Cell, w)
		for x := range row {
			row[x] = engine.Unknown
		}
		g[y] = row
	}
	return g
}

type snapshot struct {
	Config   config.Search `json:"config"`
	Script   *Script       `json:"script"`
	Played   int           `json:"played"`
	Steps    uint64        `json:"steps"`
	MaxCells int           `json:"max_cells"`
	MaxSet   bool          `json:"max_set"`
}

// Snapshot serializes the engine, script included, so a checkpoint can
// restore it without the original script file.
func (e *Engine) Snapshot() (*engine.Snapshot, error) {
	data, err := json.Marshal(snapshot{
		Config:   e.cfg,
		Script:   e.script,
		Played:   e.played,
		Steps:    e.steps,
		MaxCells: e.bound,
		MaxSet:   e.bounded,
	})
	if err != nil {
		return nil, fmt.Errorf("marshaling replay snapshot: %w", err)
	}
	return &engine.Snapshot{Backend: Name, Data: data}, nil
}
