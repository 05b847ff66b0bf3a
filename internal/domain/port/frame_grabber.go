package port

import (
	"context"

	"screen-vision/internal/domain/entity"
)

// FrameGrabber captures the current image of the primary display.
type FrameGrabber interface {
	// Grab returns one freshly captured frame. Synchronous; no queuing.
	Grab(ctx context.Context) (*entity.Frame, error)
}
