package port

import "screen-vision/internal/domain/entity"

// SnapshotStore holds the single current detection snapshot.
//
// Publish replaces the current snapshot atomically and assigns the next
// generation. Current returns a complete snapshot from some generation,
// never a partial one, and never blocks on an in-progress publish. Before
// the first publish, Current returns an empty generation-0 snapshot.
// Single writer (the detector), any number of readers.
type SnapshotStore interface {
	Publish(snapshot *entity.Snapshot) error
	Current() *entity.Snapshot
}

// TextStore holds the single current text map under the same atomic-publish
// contract as SnapshotStore. Single writer (the text extractor).
type TextStore interface {
	Publish(textMap *entity.TextMap) error
	Current() *entity.TextMap
}
