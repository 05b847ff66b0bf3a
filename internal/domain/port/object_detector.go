package port

import (
	"context"

	"screen-vision/internal/domain/entity"
)

// ObjectDetector runs the loaded detection model over one frame.
type ObjectDetector interface {
	// Labels returns the model's class vocabulary, fixed at load time.
	Labels() []string

	// Detect runs inference over the frame and returns raw detections.
	Detect(ctx context.Context, frame *entity.Frame) ([]entity.Detection, error)
}
