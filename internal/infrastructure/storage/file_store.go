package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync/atomic"

	"screen-vision/internal/domain/entity"
	"screen-vision/internal/domain/port"
)

const (
	summaryFile = "labels.json"
	textFile    = "text.json"
)

// FileSnapshotStore persists the current snapshot as one JSON file per label
// plus a labels.json summary, so other processes can read detection state
// from disk. Every file is written to a temporary name and renamed into
// place, which keeps concurrent readers from ever seeing a torn write.
//
// Generations are tracked in memory per process; the on-disk layout carries
// no version counter.
type FileSnapshotStore struct {
	dir string
	gen atomic.Uint64
}

// NewFileSnapshotStore creates the output directory if needed.
func NewFileSnapshotStore(dir string) (*FileSnapshotStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create store directory: %w", err)
	}
	return &FileSnapshotStore{dir: dir}, nil
}

// Publish writes one <label>.json per label and the labels.json summary,
// each via temp-file-then-rename.
func (s *FileSnapshotStore) Publish(snapshot *entity.Snapshot) error {
	if snapshot == nil {
		return errors.New("publish nil snapshot")
	}
	for label, boxes := range snapshot.Boxes {
		if err := writeJSONAtomic(filepath.Join(s.dir, labelFileName(label)), boxes); err != nil {
			return fmt.Errorf("write boxes for %q: %w", label, err)
		}
	}
	if err := writeJSONAtomic(filepath.Join(s.dir, summaryFile), snapshot.Counts); err != nil {
		return fmt.Errorf("write summary: %w", err)
	}
	snapshot.Generation = s.gen.Add(1)
	return nil
}

// Current reassembles a snapshot from disk. A missing or corrupt file reads
// as cold start: empty mappings, never an error to the caller. The summary
// carries no label order, so labels are sorted to keep reads deterministic.
func (s *FileSnapshotStore) Current() *entity.Snapshot {
	snapshot := entity.NewSnapshot(nil)
	snapshot.Generation = s.gen.Load()

	var counts map[string]int
	if err := readJSON(filepath.Join(s.dir, summaryFile), &counts); err != nil {
		return snapshot
	}
	labels := make([]string, 0, len(counts))
	for label := range counts {
		labels = append(labels, label)
	}
	sort.Strings(labels)
	for _, label := range labels {
		snapshot.Labels = append(snapshot.Labels, label)
		snapshot.Counts[label] = counts[label]
		var boxes []entity.Box
		if err := readJSON(filepath.Join(s.dir, labelFileName(label)), &boxes); err != nil || boxes == nil {
			boxes = []entity.Box{}
		}
		snapshot.Boxes[label] = boxes
	}
	return snapshot
}

// FileTextStore persists the current text map as a single text.json file,
// replaced atomically on publish.
type FileTextStore struct {
	dir string
	gen atomic.Uint64
}

// NewFileTextStore creates the output directory if needed.
func NewFileTextStore(dir string) (*FileTextStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create store directory: %w", err)
	}
	return &FileTextStore{dir: dir}, nil
}

// Publish writes the consolidated text map via temp-file-then-rename.
func (s *FileTextStore) Publish(textMap *entity.TextMap) error {
	if textMap == nil {
		return errors.New("publish nil text map")
	}
	if err := writeJSONAtomic(filepath.Join(s.dir, textFile), textMap.Entries); err != nil {
		return fmt.Errorf("write text map: %w", err)
	}
	textMap.Generation = s.gen.Add(1)
	return nil
}

// Current reads the text map back. Missing or corrupt file reads as an
// empty map.
func (s *FileTextStore) Current() *entity.TextMap {
	m := entity.NewTextMap()
	m.Generation = s.gen.Load()

	var entries map[string]entity.Box
	if err := readJSON(filepath.Join(s.dir, textFile), &entries); err != nil || entries == nil {
		return m
	}
	m.Entries = entries
	return m
}

// labelFileName maps a model label to a safe file name. Labels may contain
// spaces ("cell phone") or separators; anything outside a small safe set
// becomes an underscore.
func labelFileName(label string) string {
	mapped := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, label)
	return mapped + ".json"
}

// writeJSONAtomic writes v to path via a temporary file in the same
// directory followed by a rename, so readers see either the old or the new
// content, never a partial file.
func writeJSONAtomic(path string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("rename into place: %w", err)
	}
	return nil
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}

var (
	_ port.SnapshotStore = (*FileSnapshotStore)(nil)
	_ port.TextStore     = (*FileTextStore)(nil)
)
