package entity

import (
	"encoding/json"
	"fmt"
	"image"
)

// Box is an axis-aligned rectangle in frame pixel coordinates.
// Invariant: X1 < X2 and Y1 < Y2.
type Box struct {
	X1, Y1, X2, Y2 float64
}

// NewBox validates the corner ordering and returns the box.
func NewBox(x1, y1, x2, y2 float64) (Box, error) {
	if x1 >= x2 || y1 >= y2 {
		return Box{}, fmt.Errorf("invalid box [%v %v %v %v]: corners must satisfy x1<x2, y1<y2", x1, y1, x2, y2)
	}
	return Box{X1: x1, Y1: y1, X2: x2, Y2: y2}, nil
}

// Center returns the middle point of the box.
func (b Box) Center() (x, y float64) {
	return (b.X1 + b.X2) / 2, (b.Y1 + b.Y2) / 2
}

// Width returns the horizontal extent in pixels.
func (b Box) Width() float64 { return b.X2 - b.X1 }

// Height returns the vertical extent in pixels.
func (b Box) Height() float64 { return b.Y2 - b.Y1 }

// Expand grows the box by margin pixels on every side.
func (b Box) Expand(margin float64) Box {
	return Box{
		X1: b.X1 - margin,
		Y1: b.Y1 - margin,
		X2: b.X2 + margin,
		Y2: b.Y2 + margin,
	}
}

// Clamp restricts the box to a width×height frame. A box lying entirely
// outside is pulled back to the nearest edge, and the result always keeps
// at least one pixel of extent, so a clamped box is a valid crop region
// within [0,width]×[0,height].
func (b Box) Clamp(width, height int) Box {
	w, h := float64(width), float64(height)
	c := b
	if c.X1 < 0 {
		c.X1 = 0
	}
	if c.X1 > w-1 {
		c.X1 = w - 1
	}
	if c.Y1 < 0 {
		c.Y1 = 0
	}
	if c.Y1 > h-1 {
		c.Y1 = h - 1
	}
	if c.X2 > w {
		c.X2 = w
	}
	if c.Y2 > h {
		c.Y2 = h
	}
	if c.X2 <= c.X1 {
		c.X2 = c.X1 + 1
	}
	if c.Y2 <= c.Y1 {
		c.Y2 = c.Y1 + 1
	}
	return c
}

// Rect converts the box to integer pixel bounds for cropping.
func (b Box) Rect() image.Rectangle {
	return image.Rect(int(b.X1), int(b.Y1), int(b.X2), int(b.Y2))
}

// MarshalJSON encodes the box as a [x1,y1,x2,y2] array, the wire form
// consumers of the positions API expect.
func (b Box) MarshalJSON() ([]byte, error) {
	return json.Marshal([4]float64{b.X1, b.Y1, b.X2, b.Y2})
}

// UnmarshalJSON decodes the [x1,y1,x2,y2] array form.
func (b *Box) UnmarshalJSON(data []byte) error {
	var coords []float64
	if err := json.Unmarshal(data, &coords); err != nil {
		return fmt.Errorf("decode box: %w", err)
	}
	if len(coords) != 4 {
		return fmt.Errorf("decode box: want 4 coordinates, got %d", len(coords))
	}
	b.X1, b.Y1, b.X2, b.Y2 = coords[0], coords[1], coords[2], coords[3]
	return nil
}
