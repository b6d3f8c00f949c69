package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/san-kum/aquarium/internal/todo"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

const (
	ItemsFile    = "todos.json"
	runsDir      = "runs"
	metadataFile = "metadata.json"
)

var ErrRunNotFound = errors.New("storage: run not found")

const itemSchema = `{
  "type": "object",
  "required": ["id", "content", "priority", "completed"],
  "properties": {
    "id": {"type": "string", "minLength": 1},
    "content": {"type": "string"},
    "priority": {"type": "string"},
    "completed": {"type": "boolean"},
    "completedText": {"type": "string"},
    "createDate": {"type": "string"},
    "completedDate": {"type": "string"},
    "position": {
      "type": ["object", "null"],
      "required": ["x", "y"],
      "properties": {
        "x": {"type": "number"},
        "y": {"type": "number"},
        "angle": {"type": "number"}
      }
    }
  }
}`

var schema = jsonschema.MustCompileString("todo-item.schema.json", itemSchema)

type Store struct {
	baseDir string
	logger  *log.Logger
}

func New(baseDir string, logger *log.Logger) *Store {
	if logger == nil {
		logger = log.New(io.Discard, "[storage] ", log.LstdFlags)
	}
	return &Store{baseDir: baseDir, logger: logger}
}

func (s *Store) Init() error {
	return os.MkdirAll(filepath.Join(s.baseDir, runsDir), 0755)
}

func (s *Store) ItemsPath() string {
	return filepath.Join(s.baseDir, ItemsFile)
}

// LoadItems reads the item file. A missing file is an empty list. A file that
// is not a JSON array is discarded with a warning, and so is every record
// that does not match the item schema.
func (s *Store) LoadItems() ([]todo.Item, error) {
	data, err := os.ReadFile(s.ItemsPath())
	if err != nil {
		if os.IsNotExist(err) {
			return []todo.Item{}, nil
		}
		return nil, err
	}

	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		s.logger.Printf("warning: %s is not a list of items, starting empty: %v", s.ItemsPath(), err)
		return []todo.Item{}, nil
	}

	items := make([]todo.Item, 0, len(raw))
	for i, rec := range raw {
		var doc any
		if err := json.Unmarshal(rec, &doc); err != nil {
			s.logger.Printf("warning: record %d: %v", i, err)
			continue
		}
		if err := schema.Validate(doc); err != nil {
			s.logger.Printf("warning: record %d skipped: %v", i, err)
			continue
		}

		var it todo.Item
		if err := json.Unmarshal(rec, &it); err != nil {
			s.logger.Printf("warning: record %d: %v", i, err)
			continue
		}
		items = append(items, it)
	}
	return items, nil
}

func (s *Store) SaveItems(items []todo.Item) error {
	if items == nil {
		items = []todo.Item{}
	}
	data, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return err
	}
	return writeFileAtomic(s.ItemsPath(), data)
}

type RunMetadata struct {
	ID        string             `json:"id"`
	Timestamp time.Time          `json:"timestamp"`
	Seed      int64              `json:"seed"`
	Preset    string             `json:"preset,omitempty"`
	Width     float64            `json:"width"`
	Height    float64            `json:"height"`
	Frames    int                `json:"frames"`
	Items     int                `json:"items"`
	Recording string             `json:"recording,omitempty"`
	Metrics   map[string]float64 `json:"metrics"`
}

// SaveRun stores metadata for a headless run and returns its id.
func (s *Store) SaveRun(meta RunMetadata) (string, error) {
	if meta.Timestamp.IsZero() {
		meta.Timestamp = time.Now()
	}
	if meta.ID == "" {
		meta.ID = fmt.Sprintf("run_%d", meta.Timestamp.UnixNano())
	}
	runDir := filepath.Join(s.baseDir, runsDir, meta.ID)
	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return "", err
	}
	if err := writeFileAtomic(filepath.Join(runDir, metadataFile), data); err != nil {
		return "", err
	}
	return meta.ID, nil
}

// ListRuns returns stored runs, oldest first. Unreadable entries are skipped.
func (s *Store) ListRuns() ([]RunMetadata, error) {
	entries, err := os.ReadDir(filepath.Join(s.baseDir, runsDir))
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		meta, err := s.LoadRun(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}

	sort.Slice(runs, func(i, j int) bool { return runs[i].Timestamp.Before(runs[j].Timestamp) })
	return runs, nil
}

func (s *Store) LoadRun(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runsDir, runID, metadataFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		}
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

// RunDir is where a run's artifacts (recordings) live.
func (s *Store) RunDir(runID string) string {
	return filepath.Join(s.baseDir, runsDir, runID)
}

func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
