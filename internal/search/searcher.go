// Package search implements the driver loop around an engine: bounded
// bursts, the found/exhausted/searching state machine, bound
// ratcheting, height growth, result writing, and checkpoint cadence.
package search

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/shipsearch/sss/internal/checkpoint"
	"github.com/shipsearch/sss/internal/config"
	"github.com/shipsearch/sss/internal/engine"
	"github.com/shipsearch/sss/internal/progress"
	"github.com/shipsearch/sss/internal/results"
	"github.com/shipsearch/sss/internal/rle"
	"github.com/shipsearch/sss/internal/runlog"
)

// ErrSuspended reports an engine suspension. This driver never requests
// one, so observing it means the engine and driver disagree on the
// contract.
var ErrSuspended = errors.New("engine suspended itself: driver/engine contract violation")

// Reporter receives one progress snapshot per reporting burst, tagged
// with the status that produced it so the caller can style the output.
type Reporter func(status engine.Status, info progress.Info)

// Searcher owns the mutable search configuration, the live engine, and
// the ratchet/height bookkeeping. It is single-threaded: one Run (or
// sequence of Step calls) at a time.
type Searcher struct {
	cfg     config.Config
	factory engine.Factory
	eng     engine.Engine
	log     *runlog.Logger

	runID   string
	phase   int
	best    int
	bursts  uint64
	prior   time.Duration
	started time.Time
	resumed bool

	// OnProgress, when set, is called after bursts that end in Found or
	// Searching, before the phase pointer advances.
	OnProgress Reporter
}

// New builds a Searcher. Unless fresh is set it first tries to resume
// from the checkpoint in cfg.StateDir; any load or restore failure
// falls back silently to a fresh engine build, which is the designed
// recovery path, not an error.
func New(cfg config.Config, factory engine.Factory, fresh bool, log *runlog.Logger) (*Searcher, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	s := &Searcher{
		cfg:     cfg,
		factory: factory,
		log:     log,
		started: time.Now(),
	}

	if !fresh && s.tryResume() {
		return s, nil
	}

	eng, err := factory.Build(cfg.Search)
	if err != nil {
		return nil, fmt.Errorf("building engine: %w", err)
	}
	s.eng = eng
	s.runID = uuid.New().String()
	if cfg.Search.MaxCells >= 0 {
		s.best = cfg.Search.MaxCells
	}
	return s, nil
}

// tryResume rebuilds the searcher from the checkpoint on disk. It
// reports whether that succeeded; every failure mode leaves the
// searcher untouched for the fresh-build path.
func (s *Searcher) tryResume() bool {
	cp, err := checkpoint.Load(s.cfg.StateDir)
	if err != nil || cp == nil {
		return false
	}
	if err := cp.Search.Validate(); err != nil {
		return false
	}
	eng, err := engine.Restore(cp.Engine)
	if err != nil {
		return false
	}

	s.eng = eng
	s.cfg.Search = cp.Search
	s.runID = cp.RunID
	s.bursts = cp.Bursts
	s.prior = cp.Elapsed
	s.phase = cp.Phase
	if s.phase < 0 || s.phase >= cp.Search.Period {
		s.phase = 0
	}
	// The engine's own bound is authoritative over whatever the config
	// said at startup: best is one above it, or unset without one.
	if bound, ok := eng.MaxPopulation(); ok {
		s.best = bound + 1
	} else {
		s.best = 0
	}
	s.resumed = true
	return true
}

// Run bursts the engine until ctx is canceled or the search faults.
// The loop itself never finishes: ships keep getting taller.
func (s *Searcher) Run(ctx context.Context) error {
	s.logStart()
	for {
		select {
		case <-ctx.Done():
			s.logEvent(runlog.EventHalt, "interrupt")
			if err := s.saveCheckpoint(); err != nil {
				s.logEvent(runlog.EventFault, err.Error())
				return err
			}
			return ctx.Err()
		default:
		}
		if err := s.Step(); err != nil {
			s.logEvent(runlog.EventFault, err.Error())
			return err
		}
	}
}

// Step issues one bounded burst and applies the resulting status
// transition. Checkpoints are taken every CheckpointEvery bursts.
func (s *Searcher) Step() error {
	status := s.eng.Step(s.cfg.StepBudget)
	s.bursts++

	var err error
	switch status {
	case engine.StatusFound:
		err = s.handleFound()
	case engine.StatusExhausted:
		err = s.handleExhausted()
	case engine.StatusSearching:
		s.handleSearching()
	case engine.StatusSuspended:
		return ErrSuspended
	default:
		return fmt.Errorf("engine returned unknown status %v", status)
	}
	if err != nil {
		return err
	}

	if s.bursts%uint64(s.cfg.CheckpointEvery) == 0 {
		return s.saveCheckpoint()
	}
	return nil
}

// handleFound records a result: pick the lightest phase, report it,
// write the pattern file, then ratchet the bound one below the new
// best on both the config and the live engine. The engine keeps its
// height and keeps searching under the tighter bound.
func (s *Searcher) handleFound() error {
	phase, count := s.lightestPhase()
	if count == 0 {
		return fmt.Errorf("engine reported a result with zero live cells")
	}
	s.phase = phase
	s.best = count
	s.report(engine.StatusFound)

	if err := s.writeResult(phase, count); err != nil {
		return err
	}

	bound := count - 1
	s.cfg.Search = s.cfg.Search.WithMaxCells(bound)
	s.eng.SetMaxPopulation(bound)

	s.logEvent(runlog.EventFound, fmt.Sprintf("%d cells at phase %d", count, phase))
	s.logEvent(runlog.EventBound, strconv.Itoa(bound))
	return nil
}

// handleExhausted grows the grid by one row and rebuilds the engine;
// the cell bound carries over in the config. The old config survives
// if the build fails, so a fault leaves the state machine auditable.
func (s *Searcher) handleExhausted() error {
	next := s.cfg.Search.WithHeight(s.cfg.Search.Height + 1)
	eng, err := s.factory.Build(next)
	if err != nil {
		return fmt.Errorf("rebuilding engine at height %d: %w", next.Height, err)
	}
	s.cfg.Search = next
	s.eng = eng
	s.phase = 0
	s.logEvent(runlog.EventHeight, fmt.Sprintf("height %d", next.Height))
	return nil
}

// handleSearching reports the phase reached before this burst, then
// advances the display pointer for the next one.
func (s *Searcher) handleSearching() {
	s.report(engine.StatusSearching)
	s.phase = (s.phase + 1) % s.cfg.Search.Period
}

// lightestPhase returns the phase with the fewest live cells, ties
// resolved to the lowest index.
func (s *Searcher) lightestPhase() (phase, count int) {
	count = s.eng.Population(0)
	for p := 1; p < s.cfg.Search.Period; p++ {
		if c := s.eng.Population(p); c < count {
			phase, count = p, c
		}
	}
	return phase, count
}

func (s *Searcher) report(status engine.Status) {
	if s.OnProgress == nil {
		return
	}
	s.OnProgress(status, progress.Info{
		Phase:   s.phase,
		Height:  s.cfg.Search.Height,
		Cells:   s.best,
		Elapsed: s.Elapsed(),
		Grid:    s.eng.Generation(s.phase),
	})
}

// writeResult appends the encoded pattern to its deterministically
// named file, retrying once: losing a found result is the one failure
// this driver must not shrug off.
func (s *Searcher) writeResult(phase, count int) error {
	if err := s.appendResult(phase, count); err != nil {
		if rerr := s.appendResult(phase, count); rerr != nil {
			return fmt.Errorf("writing result (after retry): %w", rerr)
		}
	}
	return nil
}

func (s *Searcher) appendResult(phase, count int) error {
	dir := s.cfg.ResultsPath()
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	text := rle.Encode(s.eng.Generation(phase), s.cfg.Search.Rule)
	name := results.Filename(count, s.cfg.Search.Period, s.cfg.Search.DX, s.cfg.Search.DY)

	f, err := os.OpenFile(filepath.Join(dir, name), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	if _, err := f.WriteString(text); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// saveCheckpoint snapshots the engine and persists it, retrying the
// write once before halting the run.
func (s *Searcher) saveCheckpoint() error {
	snap, err := s.eng.Snapshot()
	if err != nil {
		return fmt.Errorf("snapshotting engine: %w", err)
	}
	cp := &checkpoint.Checkpoint{
		RunID:   s.runID,
		Elapsed: s.Elapsed(),
		Bursts:  s.bursts,
		Phase:   s.phase,
		Search:  s.cfg.Search,
		Engine:  snap,
	}
	if err := checkpoint.Save(s.cfg.StateDir, cp); err != nil {
		if rerr := checkpoint.Save(s.cfg.StateDir, cp); rerr != nil {
			return fmt.Errorf("saving checkpoint (after retry): %w", rerr)
		}
	}
	s.logEvent(runlog.EventCheckpoint, cp.Summary())
	return nil
}

func (s *Searcher) logStart() {
	if s.resumed {
		s.logEvent(runlog.EventResume,
			fmt.Sprintf("height %d, %d bursts", s.cfg.Search.Height, s.bursts))
		return
	}
	ctx := fmt.Sprintf("height %d", s.cfg.Search.Height)
	if s.cfg.Search.MaxCells >= 0 {
		ctx += fmt.Sprintf(", bound %d", s.cfg.Search.MaxCells)
	}
	s.logEvent(runlog.EventStart, ctx)
}

// logEvent appends to the run log; log failures never stop a search.
func (s *Searcher) logEvent(t runlog.EventType, context string) {
	if s.log == nil {
		return
	}
	_ = s.log.Log(t, s.cfg.RunName(), context)
}

// Elapsed is total search time, including sessions before a resume.
func (s *Searcher) Elapsed() time.Duration {
	return s.prior + time.Since(s.started)
}

// RunID identifies this run across resumes.
func (s *Searcher) RunID() string { return s.runID }

// Resumed reports whether the searcher came from a checkpoint.
func (s *Searcher) Resumed() bool { return s.resumed }

// Best is the smallest live-cell count found so far, or the starting
// bound before any find; zero means no bound yet.
func (s *Searcher) Best() int { return s.best }

// Bursts counts engine bursts issued, including before a resume.
func (s *Searcher) Bursts() uint64 { return s.bursts }

// Config returns the current configuration, including ratchet and
// height transitions applied since construction.
func (s *Searcher) Config() config.Config { return s.cfg }
