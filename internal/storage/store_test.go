package storage

import (
	"bytes"
	"errors"
	"log"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/san-kum/aquarium/internal/todo"
)

func newTestStore(t *testing.T) (*Store, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	s := New(t.TempDir(), log.New(&buf, "", 0))
	if err := s.Init(); err != nil {
		t.Fatal(err)
	}
	return s, &buf
}

func TestLoadItems_Missing(t *testing.T) {
	s, _ := newTestStore(t)
	items, err := s.LoadItems()
	if err != nil {
		t.Fatal(err)
	}
	if items == nil || len(items) != 0 {
		t.Errorf("expected empty list, got %v", items)
	}
}

func TestSaveLoadItems(t *testing.T) {
	s, _ := newTestStore(t)
	want := []todo.Item{
		{ID: "1", Content: "buy milk", Priority: todo.High, CompletedText: "done", CreateDate: "2024-05-01"},
		{ID: "2", Content: "walk dog", Priority: todo.Low, Completed: true, Position: &todo.Position{X: 10, Y: 20, Angle: 0.5}},
	}
	if err := s.SaveItems(want); err != nil {
		t.Fatal(err)
	}

	got, err := s.LoadItems()
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 items, got %d", len(got))
	}
	if got[0].Position != nil {
		t.Error("unplaced item should load without a position")
	}
	if got[1].Position == nil || *got[1].Position != *want[1].Position {
		t.Errorf("position not preserved: %+v", got[1].Position)
	}
	if got[0].Content != "buy milk" || got[1].Completed != true {
		t.Errorf("unexpected items %+v", got)
	}
}

func TestLoadItems_NotArray(t *testing.T) {
	s, logs := newTestStore(t)
	if err := os.WriteFile(s.ItemsPath(), []byte(`{"id":"1"}`), 0644); err != nil {
		t.Fatal(err)
	}
	items, err := s.LoadItems()
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 0 {
		t.Errorf("expected empty list, got %d", len(items))
	}
	if !strings.Contains(logs.String(), "warning") {
		t.Error("expected a warning")
	}
}

func TestLoadItems_SkipsInvalidRecords(t *testing.T) {
	s, logs := newTestStore(t)
	data := `[
	  {"id": "1", "content": "ok", "priority": "low", "completed": false},
	  {"id": "2", "content": "no flag", "priority": "low"},
	  {"id": "3", "content": "bad pos", "priority": "high", "completed": false, "position": {"x": "a", "y": 1}},
	  {"id": "4", "content": "null pos", "priority": "medium", "completed": true, "position": null}
	]`
	if err := os.WriteFile(s.ItemsPath(), []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	items, err := s.LoadItems()
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 2 || items[0].ID != "1" || items[1].ID != "4" {
		t.Errorf("expected items 1 and 4, got %+v", items)
	}
	if strings.Count(logs.String(), "skipped") != 2 {
		t.Errorf("expected 2 skip warnings, got:\n%s", logs.String())
	}
}

func TestSaveItems_NoTempFilesLeft(t *testing.T) {
	s, _ := newTestStore(t)
	if err := s.SaveItems(nil); err != nil {
		t.Fatal(err)
	}
	entries, err := os.ReadDir(filepath.Dir(s.ItemsPath()))
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range entries {
		if strings.Contains(e.Name(), ".tmp") {
			t.Errorf("temp file left behind: %s", e.Name())
		}
	}
	data, _ := os.ReadFile(s.ItemsPath())
	if strings.TrimSpace(string(data)) != "[]" {
		t.Errorf("nil list should save as [], got %q", data)
	}
}

func TestRuns(t *testing.T) {
	s, _ := newTestStore(t)

	id, err := s.SaveRun(RunMetadata{Seed: 3, Width: 800, Height: 600, Frames: 120, Metrics: map[string]float64{"motion": 0.1}})
	if err != nil {
		t.Fatal(err)
	}

	meta, err := s.LoadRun(id)
	if err != nil {
		t.Fatal(err)
	}
	if meta.Seed != 3 || meta.Frames != 120 || meta.Metrics["motion"] != 0.1 {
		t.Errorf("unexpected metadata %+v", meta)
	}

	runs, err := s.ListRuns()
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 1 || runs[0].ID != id {
		t.Errorf("expected one run %s, got %+v", id, runs)
	}

	if _, err := s.LoadRun("missing"); !errors.Is(err, ErrRunNotFound) {
		t.Errorf("expected ErrRunNotFound, got %v", err)
	}
}
