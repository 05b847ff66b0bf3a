package entity

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"time"
)

// Frame is one captured screen image as a packed BGR buffer, 3 bytes per
// pixel, rows top to bottom. Frames are treated as read-only after capture.
type Frame struct {
	Pixels   []byte
	Width    int
	Height   int
	Captured time.Time
}

// NewFrame wraps a BGR pixel buffer, validating its size against the
// declared dimensions.
func NewFrame(pixels []byte, width, height int) (*Frame, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid frame dimensions %dx%d", width, height)
	}
	if len(pixels) != width*height*3 {
		return nil, fmt.Errorf("frame buffer is %d bytes, want %d for %dx%d BGR", len(pixels), width*height*3, width, height)
	}
	return &Frame{Pixels: pixels, Width: width, Height: height, Captured: time.Now()}, nil
}

// Crop copies the region covered by box into a new frame. The box is
// clamped to the frame bounds first.
func (f *Frame) Crop(b Box) *Frame {
	r := b.Clamp(f.Width, f.Height).Rect()
	w, h := r.Dx(), r.Dy()
	out := make([]byte, w*h*3)
	for row := 0; row < h; row++ {
		src := ((r.Min.Y+row)*f.Width + r.Min.X) * 3
		copy(out[row*w*3:(row+1)*w*3], f.Pixels[src:src+w*3])
	}
	return &Frame{Pixels: out, Width: w, Height: h, Captured: f.Captured}
}

// ToImage converts the BGR buffer to an RGBA image.
func (f *Frame) ToImage() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, f.Width, f.Height))
	for y := 0; y < f.Height; y++ {
		for x := 0; x < f.Width; x++ {
			i := (y*f.Width + x) * 3
			img.SetRGBA(x, y, color.RGBA{
				R: f.Pixels[i+2],
				G: f.Pixels[i+1],
				B: f.Pixels[i],
				A: 0xff,
			})
		}
	}
	return img
}

// EncodePNG renders the frame as PNG bytes, the input format the OCR
// collaborator accepts.
func (f *Frame) EncodePNG() ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, f.ToImage()); err != nil {
		return nil, fmt.Errorf("encode frame: %w", err)
	}
	return buf.Bytes(), nil
}
