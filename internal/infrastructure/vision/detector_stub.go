//go:build !gocv
// +build !gocv

package vision

import (
	"context"
	"errors"

	"screen-vision/internal/domain/entity"
)

// YOLODetector without the gocv build tag: the vocabulary is available but
// inference is not.
type YOLODetector struct {
	names []string
}

// NewYOLODetector returns a detector stub carrying only the vocabulary.
func NewYOLODetector(cfg Config) (*YOLODetector, error) {
	if len(cfg.ClassNames) == 0 {
		return nil, errors.New("empty class vocabulary")
	}
	return &YOLODetector{names: cfg.ClassNames}, nil
}

// Labels returns the class vocabulary.
func (d *YOLODetector) Labels() []string {
	return d.names
}

// Detect returns an error when built without the gocv tag.
func (d *YOLODetector) Detect(ctx context.Context, frame *entity.Frame) ([]entity.Detection, error) {
	_ = ctx
	_ = frame
	return nil, errors.New("gocv build tag is not enabled")
}

// Close is a no-op for the stub.
func (d *YOLODetector) Close() error { return nil }
