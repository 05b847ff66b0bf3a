package storage

import (
	"errors"
	"sync/atomic"

	"screen-vision/internal/domain/entity"
	"screen-vision/internal/domain/port"
)

// MemorySnapshotStore keeps the current snapshot in an atomic pointer.
// Publish swaps the whole value, so readers never lock and never observe a
// half-written snapshot.
type MemorySnapshotStore struct {
	current atomic.Pointer[entity.Snapshot]
	gen     atomic.Uint64
}

// NewMemorySnapshotStore creates a store primed with the cold-start
// snapshot: generation 0, empty mappings.
func NewMemorySnapshotStore() *MemorySnapshotStore {
	s := &MemorySnapshotStore{}
	s.current.Store(entity.NewSnapshot(nil))
	return s
}

// Publish assigns the next generation and replaces the current snapshot.
// The snapshot must not be mutated after this call.
func (s *MemorySnapshotStore) Publish(snapshot *entity.Snapshot) error {
	if snapshot == nil {
		return errors.New("publish nil snapshot")
	}
	snapshot.Generation = s.gen.Add(1)
	s.current.Store(snapshot)
	return nil
}

// Current returns the latest published snapshot, or the cold-start snapshot
// before the first publish. Never blocks.
func (s *MemorySnapshotStore) Current() *entity.Snapshot {
	return s.current.Load()
}

// MemoryTextStore is the text-map counterpart of MemorySnapshotStore.
type MemoryTextStore struct {
	current atomic.Pointer[entity.TextMap]
	gen     atomic.Uint64
}

// NewMemoryTextStore creates a store primed with an empty generation-0 map.
func NewMemoryTextStore() *MemoryTextStore {
	s := &MemoryTextStore{}
	s.current.Store(entity.NewTextMap())
	return s
}

// Publish assigns the next generation and replaces the current map.
func (s *MemoryTextStore) Publish(textMap *entity.TextMap) error {
	if textMap == nil {
		return errors.New("publish nil text map")
	}
	textMap.Generation = s.gen.Add(1)
	s.current.Store(textMap)
	return nil
}

// Current returns the latest published map. Never blocks.
func (s *MemoryTextStore) Current() *entity.TextMap {
	return s.current.Load()
}

var (
	_ port.SnapshotStore = (*MemorySnapshotStore)(nil)
	_ port.TextStore     = (*MemoryTextStore)(nil)
)
