// Package runlock guards a state directory against concurrent search runs.
//
// The lock file lives at <stateDir>/.sss.lock and records:
// - PID of the owning process
// - run ID and run name
// - timestamp when the lock was acquired
//
// Mutual exclusion comes from the OS advisory lock, not the file's
// existence, so a crashed run never leaves the directory wedged: the
// kernel drops the lock with the process and the next Acquire succeeds.
package runlock

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
)

// Filename is the lock file name inside the state directory.
const Filename = ".sss.lock"

// retryDelay is how often Acquire re-tries the lock while waiting.
const retryDelay = 100 * time.Millisecond

// Common errors
var (
	ErrHeld      = errors.New("state directory is in use by another run")
	ErrNotLocked = errors.New("state directory is not locked")
)

// Info records who holds the lock. It is written into the lock file
// for diagnostics only; the advisory lock is the source of truth.
type Info struct {
	PID        int       `json:"pid"`
	RunID      string    `json:"run_id,omitempty"`
	RunName    string    `json:"run_name,omitempty"`
	Hostname   string    `json:"hostname,omitempty"`
	AcquiredAt time.Time `json:"acquired_at"`
}

// Lock is a held run lock. Release it when the run ends.
type Lock struct {
	fl   *flock.Flock
	path string
}

// Path returns the lock file location for a state directory.
func Path(stateDir string) string {
	return filepath.Join(stateDir, Filename)
}

// Acquire takes the run lock for stateDir, retrying until ctx expires.
// Returns ErrHeld (with holder details when readable) if another live
// process has the directory.
func Acquire(ctx context.Context, stateDir string, info Info) (*Lock, error) {
	path := Path(stateDir)

	if err := os.MkdirAll(stateDir, 0755); err != nil {
		return nil, fmt.Errorf("creating state directory: %w", err)
	}

	fl := flock.New(path)
	locked, err := fl.TryLockContext(ctx, retryDelay)
	if !locked {
		if holder, herr := ReadInfo(stateDir); herr == nil {
			return nil, fmt.Errorf("%w: PID %d (%s, acquired %s)",
				ErrHeld, holder.PID, holder.describe(), holder.AcquiredAt.Format(time.RFC3339))
		}
		if err != nil && !errors.Is(err, context.DeadlineExceeded) && !errors.Is(err, context.Canceled) {
			return nil, fmt.Errorf("acquiring run lock: %w", err)
		}
		return nil, ErrHeld
	}

	info.PID = os.Getpid()
	if info.Hostname == "" {
		info.Hostname, _ = os.Hostname()
	}
	info.AcquiredAt = time.Now()

	data, err := json.MarshalIndent(info, "", "  ")
	if err != nil {
		_ = fl.Unlock()
		return nil, fmt.Errorf("marshaling lock info: %w", err)
	}
	// Writing through a second descriptor is fine: the advisory lock
	// belongs to the flock handle, not this one.
	if err := os.WriteFile(path, data, 0644); err != nil { //nolint:gosec // G306: lock files are non-sensitive operational data
		_ = fl.Unlock()
		return nil, fmt.Errorf("writing lock info: %w", err)
	}

	return &Lock{fl: fl, path: path}, nil
}

// Release drops the advisory lock. The lock file itself stays behind;
// unlinking it would race a concurrent Acquire that already opened it.
func (l *Lock) Release() error {
	if err := l.fl.Unlock(); err != nil {
		return fmt.Errorf("releasing run lock: %w", err)
	}
	return nil
}

// Path returns the lock file location.
func (l *Lock) Path() string {
	return l.path
}

func (i *Info) describe() string {
	if i.RunName != "" {
		return "run " + i.RunName
	}
	if i.Hostname != "" {
		return "host " + i.Hostname
	}
	return "unknown run"
}

// ReadInfo reads the holder details from the lock file without taking
// the lock. Returns ErrNotLocked if the file is absent or never written.
func ReadInfo(stateDir string) (*Info, error) {
	data, err := os.ReadFile(Path(stateDir))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotLocked
		}
		return nil, fmt.Errorf("reading lock file: %w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, ErrNotLocked
	}

	var info Info
	if err := json.Unmarshal(data, &info); err != nil {
		return nil, fmt.Errorf("parsing lock file: %w", err)
	}
	return &info, nil
}

// Check probes whether the state directory is currently held. A leftover
// lock file from a finished run reads as free.
func Check(stateDir string) (held bool, info *Info, err error) {
	path := Path(stateDir)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return false, nil, nil
	}

	fl := flock.New(path)
	locked, err := fl.TryLock()
	if err != nil {
		return false, nil, fmt.Errorf("probing run lock: %w", err)
	}
	if locked {
		_ = fl.Unlock()
		return false, nil, nil
	}

	holder, herr := ReadInfo(stateDir)
	if herr != nil {
		return true, nil, nil
	}
	return true, holder, nil
}

// Status returns a human-readable description of the lock state.
func Status(stateDir string) string {
	held, info, err := Check(stateDir)
	if err != nil {
		return fmt.Sprintf("error: %v", err)
	}
	if !held {
		return "free"
	}
	if info == nil {
		return "held"
	}
	return fmt.Sprintf("held by PID %d (%s)", info.PID, info.describe())
}
