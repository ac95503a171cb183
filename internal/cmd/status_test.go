package cmd

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shipsearch/sss/internal/checkpoint"
	"github.com/shipsearch/sss/internal/config"
	"github.com/shipsearch/sss/internal/engine"
	"github.com/shipsearch/sss/internal/results"
)

func TestCollectStatus_EmptyDirectories(t *testing.T) {
	dir := t.TempDir()

	st := collectStatus(dir, filepath.Join(dir, "spaceships"))

	if st.Checkpoint != nil {
		t.Errorf("Checkpoint = %+v, want nil for empty state dir", st.Checkpoint)
	}
	if st.Lock != "free" {
		t.Errorf("Lock = %q, want free", st.Lock)
	}
	if len(st.Results) != 0 {
		t.Errorf("Results = %v, want none", st.Results)
	}
	if st.Error != "" {
		t.Errorf("Error = %q, want empty", st.Error)
	}
}

func TestCollectStatus_WithCheckpointAndResults(t *testing.T) {
	stateDir := t.TempDir()
	resultsDir := t.TempDir()

	cp := &checkpoint.Checkpoint{
		RunID:   "3e1f0a9c-0000-0000-0000-000000000000",
		Elapsed: 90 * time.Second,
		Bursts:  16,
		Phase:   1,
		Search:  config.Default().Search.WithHeight(7).WithMaxCells(27),
		Engine:  &engine.Snapshot{Backend: "replay", Data: json.RawMessage(`{}`)},
	}
	if err := checkpoint.Save(stateDir, cp); err != nil {
		t.Fatalf("saving checkpoint: %v", err)
	}

	for _, cells := range []int{28, 16} {
		name := results.Filename(cells, 3, 0, 1)
		if err := os.WriteFile(filepath.Join(resultsDir, name), []byte("x = 1, y = 1, rule = B3/S23\no!\n"), 0644); err != nil {
			t.Fatalf("writing result: %v", err)
		}
	}

	st := collectStatus(stateDir, resultsDir)

	if st.Checkpoint == nil {
		t.Fatal("Checkpoint = nil, want summary")
	}
	if st.Checkpoint.Height != 7 {
		t.Errorf("Height = %d, want 7", st.Checkpoint.Height)
	}
	if st.Checkpoint.Bound != 27 {
		t.Errorf("Bound = %d, want 27", st.Checkpoint.Bound)
	}
	if st.Checkpoint.Bursts != 16 {
		t.Errorf("Bursts = %d, want 16", st.Checkpoint.Bursts)
	}
	if st.Checkpoint.Engine != "replay" {
		t.Errorf("Engine = %q, want replay", st.Checkpoint.Engine)
	}
	if st.Checkpoint.Searched != "1m30s" {
		t.Errorf("Searched = %q, want 1m30s", st.Checkpoint.Searched)
	}
	if st.Lock != "free" {
		t.Errorf("Lock = %q, want free (no live holder)", st.Lock)
	}

	if len(st.Results) != 2 {
		t.Fatalf("Results = %v, want 2 entries", st.Results)
	}
	if st.Results[0].Cells != 16 || st.Results[1].Cells != 28 {
		t.Errorf("Results order = %d, %d; want lightest first (16, 28)",
			st.Results[0].Cells, st.Results[1].Cells)
	}
}

func TestCollectStatus_CorruptCheckpointSurfacesError(t *testing.T) {
	stateDir := t.TempDir()
	if err := os.WriteFile(checkpoint.Path(stateDir), []byte("not json"), 0644); err != nil {
		t.Fatal(err)
	}

	st := collectStatus(stateDir, filepath.Join(stateDir, "spaceships"))

	if st.Checkpoint != nil {
		t.Error("Checkpoint should be nil for a corrupt file")
	}
	if st.Error == "" {
		t.Error("Error should describe the corrupt checkpoint")
	}
}

func TestSearchStatusJSONShape(t *testing.T) {
	st := collectStatus(t.TempDir(), "nowhere")
	data, err := json.Marshal(st)
	if err != nil {
		t.Fatalf("marshaling status: %v", err)
	}

	var decoded map[string]interface{}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshaling status: %v", err)
	}
	if decoded["lock"] != "free" {
		t.Errorf("lock = %v, want free", decoded["lock"])
	}
	if _, ok := decoded["results"]; !ok {
		t.Error("results key should always be present")
	}
	if _, ok := decoded["checkpoint"]; ok {
		t.Error("checkpoint key should be omitted when absent")
	}
}

func TestPlural(t *testing.T) {
	if got := plural(1, "result"); got != "1 result" {
		t.Errorf("plural(1) = %q", got)
	}
	if got := plural(3, "result"); got != "3 results" {
		t.Errorf("plural(3) = %q", got)
	}
	if got := plural(0, "result"); got != "0 results" {
		t.Errorf("plural(0) = %q", got)
	}
}
