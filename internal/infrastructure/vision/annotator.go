//go:build gocv
// +build gocv

package vision

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"

	"gocv.io/x/gocv"

	"screen-vision/internal/domain/entity"
)

// BoxAnnotator draws snapshot overlays with OpenCV primitives and encodes
// the result as JPEG for the video stream.
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

// Annotate draws each label's boxes and a "label: count" caption over the
// frame. A nil snapshot renders the plain frame.
func (a *BoxAnnotator) Annotate(frame *entity.Frame, snapshot *entity.Snapshot) ([]byte, error) {
	mat, err := gocv.NewMatFromBytes(frame.Height, frame.Width, gocv.MatTypeCV8UC3, frame.Pixels)
	if err != nil {
		return nil, fmt.Errorf("wrap frame: %w", err)
	}
	defer mat.Close()

	if snapshot != nil {
		green := color.RGBA{G: 255, A: 255}
		for label, boxes := range snapshot.Boxes {
			caption := fmt.Sprintf("%s: %d", label, snapshot.Counts[label])
			for _, b := range boxes {
				r := b.Rect()
				gocv.Rectangle(&mat, r, green, 2)
				gocv.PutText(&mat, caption, image.Pt(r.Min.X, r.Min.Y-10),
					gocv.FontHersheySimplex, 0.9, green, 2)
			}
		}
	}

	img, err := mat.ToImage()
	if err != nil {
		return nil, fmt.Errorf("convert frame: %w", err)
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: a.Quality}); err != nil {
		return nil, fmt.Errorf("encode frame: %w", err)
	}
	return buf.Bytes(), nil
}
