package checkpoint

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/shipsearch/sss/internal/config"
	"github.com/shipsearch/sss/internal/engine"
)

func sample() *Checkpoint {
	return &Checkpoint{
		RunID:   "run-123",
		Elapsed: 90 * time.Second,
		Bursts:  16,
		Phase:   2,
		Search:  config.Default().Search.WithHeight(7).WithMaxCells(27),
		Engine: &engine.Snapshot{
			Backend: "replay",
			Data:    json.RawMessage(`{"cursor":3}`),
		},
	}
}

func TestPath(t *testing.T) {
	dir := "/some/state/dir"
	got := Path(dir)
	want := filepath.Join(dir, Filename)
	if got != want {
		t.Errorf("Path(%q) = %q, want %q", dir, got, want)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()

	if err := Save(dir, sample()); err != nil {
		t.Fatalf("Save: unexpected error: %v", err)
	}

	cp, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: unexpected error: %v", err)
	}
	if cp == nil {
		t.Fatal("Load returned nil for existing checkpoint")
	}
	if cp.RunID != "run-123" {
		t.Errorf("RunID = %q, want run-123", cp.RunID)
	}
	if cp.Bursts != 16 || cp.Phase != 2 {
		t.Errorf("bookkeeping lost: bursts=%d phase=%d", cp.Bursts, cp.Phase)
	}
	if cp.Elapsed != 90*time.Second {
		t.Errorf("Elapsed = %v, want 90s", cp.Elapsed)
	}
	if cp.Search.Height != 7 || cp.Search.MaxCells != 27 {
		t.Errorf("search config lost: %+v", cp.Search)
	}
	if cp.Engine == nil || cp.Engine.Backend != "replay" {
		t.Fatalf("engine snapshot lost: %+v", cp.Engine)
	}
	if string(cp.Engine.Data) != `{"cursor":3}` {
		t.Errorf("engine payload = %s", cp.Engine.Data)
	}
	if cp.SavedAt.IsZero() {
		t.Error("SavedAt should be set by Save")
	}
	if cp.Version != Version {
		t.Errorf("Version = %d, want %d", cp.Version, Version)
	}
}

func TestLoadMissing(t *testing.T) {
	cp, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("missing checkpoint should not error: %v", err)
	}
	if cp != nil {
		t.Fatal("expected nil checkpoint for empty dir")
	}
}

func TestLoadCorrupt(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(Path(dir), []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(dir); err == nil {
		t.Fatal("expected error for corrupt checkpoint")
	}
}

func TestLoadVersionSkew(t *testing.T) {
	dir := t.TempDir()
	content := `{"version": 99, "engine": {"backend": "replay", "data": {}}}`
	if err := os.WriteFile(Path(dir), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := Load(dir)
	if err == nil {
		t.Fatal("expected error for version skew")
	}
	if !strings.Contains(err.Error(), "version") {
		t.Errorf("error should mention version: %v", err)
	}
}

func TestLoadMissingEngine(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(Path(dir), []byte(`{"version": 1}`), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(dir); err == nil {
		t.Fatal("expected error for checkpoint without engine snapshot")
	}
}

func TestSaveRequiresEngine(t *testing.T) {
	cp := sample()
	cp.Engine = nil
	if err := Save(t.TempDir(), cp); err == nil {
		t.Fatal("expected error saving without engine snapshot")
	}
}

func TestSaveCreatesStateDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "state")
	if err := Save(dir, sample()); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if _, err := os.Stat(Path(dir)); err != nil {
		t.Fatalf("checkpoint not created: %v", err)
	}
}

func TestSaveOverwrites(t *testing.T) {
	dir := t.TempDir()

	if err := Save(dir, sample()); err != nil {
		t.Fatalf("first Save: %v", err)
	}

	second := sample()
	second.Bursts = 32
	second.Search = second.Search.WithMaxCells(19)
	if err := Save(dir, second); err != nil {
		t.Fatalf("second Save: %v", err)
	}

	cp, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cp.Bursts != 32 || cp.Search.MaxCells != 19 {
		t.Errorf("last save should win: bursts=%d bound=%d", cp.Bursts, cp.Search.MaxCells)
	}
}

func TestSaveLeavesNoTempFile(t *testing.T) {
	dir := t.TempDir()
	if err := Save(dir, sample()); err != nil {
		t.Fatalf("Save: %v", err)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), ".tmp") {
			t.Errorf("temp file left behind: %s", e.Name())
		}
	}
}

func TestSavePreservesOldOnRenameFailure(t *testing.T) {
	dir := t.TempDir()
	if err := Save(dir, sample()); err != nil {
		t.Fatalf("initial Save: %v", err)
	}

	// Block the temp path with a directory so the rename step fails.
	if err := os.Mkdir(Path(dir)+".tmp", 0o755); err != nil {
		t.Fatal(err)
	}
	next := sample()
	next.Bursts = 999
	if err := Save(dir, next); err == nil {
		t.Fatal("expected Save to fail when the temp path is blocked")
	}

	cp, err := Load(dir)
	if err != nil {
		t.Fatalf("previous checkpoint should survive: %v", err)
	}
	if cp.Bursts != 16 {
		t.Errorf("previous checkpoint clobbered: bursts=%d", cp.Bursts)
	}
}

func TestRemove(t *testing.T) {
	dir := t.TempDir()
	if err := Save(dir, sample()); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := Remove(dir); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if cp, err := Load(dir); err != nil || cp != nil {
		t.Errorf("after Remove: cp=%v err=%v", cp, err)
	}
	// Removing again is a no-op.
	if err := Remove(dir); err != nil {
		t.Errorf("second Remove: %v", err)
	}
}

func TestSummary(t *testing.T) {
	cp := sample()
	s := cp.Summary()
	for _, want := range []string{"height 7", "bound 27", "16 bursts", "engine replay"} {
		if !strings.Contains(s, want) {
			t.Errorf("summary %q missing %q", s, want)
		}
	}

	cp.Search = cp.Search.WithMaxCells(-1)
	if s := cp.Summary(); strings.Contains(s, "bound") {
		t.Errorf("unbounded summary should omit the bound: %q", s)
	}
}
