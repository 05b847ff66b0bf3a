//go:build !gocv
// +build !gocv

package vision

import (
	"bytes"
	"fmt"
	"image/jpeg"

	"screen-vision/internal/domain/entity"
)

// BoxAnnotator without the gocv build tag: frames are passed through as
// plain JPEG with no overlays, so the stream stays usable.
type BoxAnnotator struct {
	Quality int
}

// NewBoxAnnotator creates an annotator with the given JPEG quality.
func NewBoxAnnotator(quality int) *BoxAnnotator {
	if quality <= 0 || quality > 100 {
		quality = 90
	}
	return &BoxAnnotator{Quality: quality}
}

// Annotate encodes the frame without overlays.
func (a *BoxAnnotator) Annotate(frame *entity.Frame, snapshot *entity.Snapshot) ([]byte, error) {
	_ = snapshot
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, frame.ToImage(), &jpeg.Options{Quality: a.Quality}); err != nil {
		return nil, fmt.Errorf("encode frame: %w", err)
	}
	return buf.Bytes(), nil
}
