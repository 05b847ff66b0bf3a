package port

import (
	"screen-vision/internal/domain/entity"
)

// FrameAnnotator draws a snapshot's boxes and captions over a frame and
// encodes the result for the stream transport.
type FrameAnnotator interface {
	// Annotate returns JPEG bytes of the frame with snapshot overlays.
	// A nil snapshot renders the frame unannotated.
	Annotate(frame *entity.Frame, snapshot *entity.Snapshot) ([]byte, error)
}
