// Package engine defines the capability contract between the search
// driver and a constraint-solving engine, plus a registry of named
// backends.
//
// An Engine owns the full search state for one grid configuration. The
// driver advances it in bounded bursts and reads cells and populations
// per phase; it never sees inside the search itself. Backends register
// themselves under a name (usually from an init function) and are
// selected by configuration, the same way database drivers are.
package engine

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/shipsearch/sss/internal/config"
)

// Engine is one live search instance built from a config.Search.
// Implementations need not be safe for concurrent use; the driver is
// single-threaded.
type Engine interface {
	// Step advances the search by at most budget steps and reports the
	// outcome.
	Step(budget uint64) Status

	// Generation returns the grid for one phase of the current pattern.
	Generation(phase int) Grid

	// Population returns the live-cell count for one phase.
	Population(phase int) int

	// MaxPopulation reports the live-cell upper bound currently in
	// effect, if any.
	MaxPopulation() (int, bool)

	// SetMaxPopulation tightens the live-cell upper bound on the running
	// search.
	SetMaxPopulation(limit int)

	// Snapshot serializes the engine so Restore can rebuild it.
	Snapshot() (*Snapshot, error)
}

// Factory builds fresh engines. The driver uses it for the initial
// build and for every height-growth rebuild.
type Factory interface {
	Build(cfg config.Search) (Engine, error)
}

// Builder is a named backend registered with Register.
type Builder interface {
	// Build creates an engine from a configuration. opts carries
	// backend-specific settings, e.g. the replay backend's script path.
	Build(cfg config.Search, opts map[string]string) (Engine, error)

	// Restore rebuilds an engine from a snapshot payload produced by the
	// same backend.
	Restore(data json.RawMessage) (Engine, error)
}

// Snapshot is a self-describing engine checkpoint: the backend that
// produced it plus that backend's own payload.
type Snapshot struct {
	Backend string          `json:"backend"`
	Data    json.RawMessage `json:"data"`
}

var (
	buildersMu sync.RWMutex
	builders   = map[string]Builder{}
)

// Register makes a backend available under name. It panics on a nil
// builder or a duplicate name.
func Register(name string, b Builder) {
	buildersMu.Lock()
	defer buildersMu.Unlock()
	if b == nil {
		panic("engine: Register builder is nil")
	}
	if _, dup := builders[name]; dup {
		panic("engine: Register called twice for backend " + name)
	}
	builders[name] = b
}

func lookup(name string) (Builder, error) {
	buildersMu.RLock()
	b, ok := builders[name]
	buildersMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unknown engine backend %q (known: %s)", name, strings.Join(Backends(), ", "))
	}
	return b, nil
}

// New builds an engine with the named backend.
func New(name string, cfg config.Search, opts map[string]string) (Engine, error) {
	b, err := lookup(name)
	if err != nil {
		return nil, err
	}
	return b.Build(cfg, opts)
}

// Restore rebuilds an engine from a snapshot, dispatching on the
// backend recorded in it.
func Restore(snap *Snapshot) (Engine, error) {
	if snap == nil {
		return nil, fmt.Errorf("nil engine snapshot")
	}
	b, err := lookup(snap.Backend)
	if err != nil {
		return nil, err
	}
	return b.Restore(snap.Data)
}

// Backends lists the registered backend names, sorted.
func Backends() []string {
	buildersMu.RLock()
	defer buildersMu.RUnlock()
	names := make([]string, 0, len(builders))
	for name := range builders {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// BackendFactory curries a backend name and its options into a Factory
// for the driver's rebuild path.
func BackendFactory(name string, opts map[string]string) Factory {
	return backendFactory{name: name, opts: opts}
}

type backendFactory struct {
	name string
	opts map[string]string
}

func (f backendFactory) Build(cfg config.Search) (Engine, error) {
	return New(f.name, cfg, f.opts)
}
