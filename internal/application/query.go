package app

import (
	"context"
	"fmt"
	"time"

	"screen-vision/internal/domain/entity"
	"screen-vision/internal/domain/port"
)

// QueryService answers "what is on screen" questions from the current
// stores. Stateless; cold stores and unknown labels yield empty values,
// never errors.
type QueryService struct {
	snapshots  port.SnapshotStore
	texts      port.TextStore
	frames     port.FrameGrabber
	recognizer port.TextRecognizer
	margin     float64
	ocrTimeout time.Duration
}

// NewQueryService wires the read-only facade. margin and ocrTimeout follow
// the same policy as the text extractor.
func NewQueryService(snapshots port.SnapshotStore, texts port.TextStore, frames port.FrameGrabber, recognizer port.TextRecognizer, margin float64, ocrTimeout time.Duration) *QueryService {
	return &QueryService{
		snapshots:  snapshots,
		texts:      texts,
		frames:     frames,
		recognizer: recognizer,
		margin:     margin,
		ocrTimeout: ocrTimeout,
	}
}

// Labels returns the current per-label detection counts.
func (s *QueryService) Labels() map[string]int {
	counts := s.snapshots.Current().Counts
	out := make(map[string]int, len(counts))
	for label, count := range counts {
		out[label] = count
	}
	return out
}

// Positions returns the current boxes for a label. An unknown label or a
// cold store yields an empty list.
func (s *QueryService) Positions(label string) []entity.Box {
	boxes := s.snapshots.Current().Boxes[label]
	out := make([]entity.Box, len(boxes))
	copy(out, boxes)
	return out
}

// Texts returns the current consolidated text map entries.
func (s *QueryService) Texts() map[string]entity.Box {
	entries := s.texts.Current().Entries
	out := make(map[string]entity.Box, len(entries))
	for text, box := range entries {
		out[text] = box
	}
	return out
}

// Generation returns the current snapshot generation, for health reporting.
func (s *QueryService) Generation() uint64 {
	return s.snapshots.Current().Generation
}

// ReadRegion captures a fresh frame, crops the region (expanded by the
// margin and clamped to frame bounds) and OCRs it. The raw recognized text
// is returned.
func (s *QueryService) ReadRegion(ctx context.Context, box entity.Box) (string, error) {
	frame, err := s.frames.Grab(ctx)
	if err != nil {
		return "", fmt.Errorf("grab frame: %w", err)
	}

	crop := frame.Crop(box.Expand(s.margin))
	img, err := crop.EncodePNG()
	if err != nil {
		return "", fmt.Errorf("encode region: %w", err)
	}

	octx, cancel := context.WithTimeout(ctx, s.ocrTimeout)
	defer cancel()
	return s.recognizer.Recognize(octx, img)
}

// ReadImage OCRs an already-encoded image directly. Empty input yields an
// empty string.
func (s *QueryService) ReadImage(ctx context.Context, image []byte) (string, error) {
	if len(image) == 0 {
		return "", nil
	}
	octx, cancel := context.WithTimeout(ctx, s.ocrTimeout)
	defer cancel()
	return s.recognizer.Recognize(octx, image)
}
