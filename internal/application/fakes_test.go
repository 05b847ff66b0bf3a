package app

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image/png"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"screen-vision/internal/domain/entity"
)

// testFrame builds a width×height frame of zeroed pixels.
func testFrame(t *testing.T, width, height int) *entity.Frame {
	t.Helper()
	f, err := entity.NewFrame(make([]byte, width*height*3), width, height)
	require.NoError(t, err)
	return f
}

type fakeGrabber struct {
	frame *entity.Frame
	err   error
	calls atomic.Int64
}

func (g *fakeGrabber) Grab(ctx context.Context) (*entity.Frame, error) {
	g.calls.Add(1)
	if g.err != nil {
		return nil, g.err
	}
	return g.frame, nil
}

type fakeDetector struct {
	labels     []string
	detections []entity.Detection
	err        error
}

func (d *fakeDetector) Labels() []string { return d.labels }

func (d *fakeDetector) Detect(ctx context.Context, frame *entity.Frame) ([]entity.Detection, error) {
	if d.err != nil {
		return nil, d.err
	}
	return d.detections, nil
}

// fakeRecognizer keys its answers by crop dimensions, so results are
// deterministic per box regardless of read-list order. A crop size listed
// in fail returns an error; block makes every call wait for ctx expiry.
type fakeRecognizer struct {
	texts map[string]string
	fail  map[string]bool
	block bool
}

func newFakeRecognizer() *fakeRecognizer {
	return &fakeRecognizer{texts: map[string]string{}, fail: map[string]bool{}}
}

func (r *fakeRecognizer) Recognize(ctx context.Context, image []byte) (string, error) {
	if r.block {
		<-ctx.Done()
		return "", ctx.Err()
	}
	img, err := png.Decode(bytes.NewReader(image))
	if err != nil {
		return "", err
	}
	b := img.Bounds()
	key := fmt.Sprintf("%dx%d", b.Dx(), b.Dy())
	if r.fail[key] {
		return "", errors.New("recognition failed")
	}
	return r.texts[key], nil
}

type fakeAnnotator struct {
	err      error
	lastSnap *entity.Snapshot
	calls    atomic.Int64
}

func (a *fakeAnnotator) Annotate(frame *entity.Frame, snapshot *entity.Snapshot) ([]byte, error) {
	a.calls.Add(1)
	a.lastSnap = snapshot
	if a.err != nil {
		return nil, a.err
	}
	return []byte("jpeg-frame"), nil
}
