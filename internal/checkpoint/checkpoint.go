// Package checkpoint persists the driver's resumable state between
// runs.
//
// One JSON file per state directory, overwritten on every save. A
// missing file is a normal condition (fresh run) and is reported as
// nil without error. Saves write a temp file in the same directory and
// rename it over the old checkpoint, so a crash mid-write leaves the
// previous checkpoint intact.
package checkpoint

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/shipsearch/sss/internal/config"
	"github.com/shipsearch/sss/internal/engine"
)

// Filename is the checkpoint file name within the state directory.
const Filename = ".sss-checkpoint.json"

// Version is written into every checkpoint; Load rejects files written
// with a different layout.
const Version = 1

// Checkpoint is the state needed to resume a search: the search
// configuration in effect (including the current height), loop
// bookkeeping, and the engine's own snapshot.
type Checkpoint struct {
	Version int       `json:"version"`
	RunID   string    `json:"run_id,omitempty"`
	SavedAt time.Time `json:"saved_at"`

	// Elapsed accumulates search time across resumes.
	Elapsed time.Duration `json:"elapsed_ns"`

	// Bursts counts engine bursts completed so far.
	Bursts uint64 `json:"bursts"`

	// Phase is the display phase pointer at save time.
	Phase int `json:"phase"`

	// Search is the configuration in effect, height growth included.
	Search config.Search `json:"search"`

	// Engine is the backend's own serialized state.
	Engine *engine.Snapshot `json:"engine"`
}

// Path returns the checkpoint file path for a given state directory.
func Path(stateDir string) string {
	return filepath.Join(stateDir, Filename)
}

// Load reads the checkpoint from the state directory.
// Returns nil, nil if no checkpoint exists; structural problems are
// errors the caller may treat as "start fresh".
func Load(stateDir string) (*Checkpoint, error) {
	data, err := os.ReadFile(Path(stateDir))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading checkpoint: %w", err)
	}

	var cp Checkpoint
	if err := json.Unmarshal(data, &cp); err != nil {
		return nil, fmt.Errorf("parsing checkpoint: %w", err)
	}
	if cp.Version != Version {
		return nil, fmt.Errorf("checkpoint version %d not supported (want %d)", cp.Version, Version)
	}
	if cp.Engine == nil {
		return nil, fmt.Errorf("checkpoint has no engine snapshot")
	}
	return &cp, nil
}

// Save writes the checkpoint to the state directory, creating the
// directory if needed. Version and SavedAt are filled in.
func Save(stateDir string, cp *Checkpoint) error {
	if cp.Engine == nil {
		return fmt.Errorf("refusing to save checkpoint without engine snapshot")
	}
	if err := os.MkdirAll(stateDir, 0755); err != nil {
		return fmt.Errorf("creating state dir: %w", err)
	}
	cp.Version = Version
	cp.SavedAt = time.Now()

	data, err := json.MarshalIndent(cp, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling checkpoint: %w", err)
	}
	if err := atomicWrite(Path(stateDir), data); err != nil {
		return fmt.Errorf("writing checkpoint: %w", err)
	}
	return nil
}

// Remove deletes the checkpoint file.
func Remove(stateDir string) error {
	if err := os.Remove(Path(stateDir)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing checkpoint: %w", err)
	}
	return nil
}

// Age returns how long ago the checkpoint was written.
func (cp *Checkpoint) Age() time.Duration {
	return time.Since(cp.SavedAt)
}

// Summary returns a concise one-line description for status output.
func (cp *Checkpoint) Summary() string {
	var parts []string
	parts = append(parts, fmt.Sprintf("height %d", cp.Search.Height))
	if cp.Search.MaxCells >= 0 {
		parts = append(parts, fmt.Sprintf("bound %d", cp.Search.MaxCells))
	}
	parts = append(parts, fmt.Sprintf("%d bursts", cp.Bursts))
	if cp.Engine != nil && cp.Engine.Backend != "" {
		parts = append(parts, fmt.Sprintf("engine %s", cp.Engine.Backend))
	}
	return strings.Join(parts, ", ")
}

// atomicWrite publishes data at path via a temp file in the same
// directory: write, sync, close, rename. The rename is atomic on POSIX
// systems, so readers see either the old or the new checkpoint.
func atomicWrite(path string, data []byte) error {
	tmp := path + ".tmp"
	f, err := os.OpenFile(tmp, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return err
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return err
	}
	return nil
}
