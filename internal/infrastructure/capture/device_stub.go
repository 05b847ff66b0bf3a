//go:build !gocv
// +build !gocv

package capture

import (
	"context"
	"errors"

	"screen-vision/internal/domain/entity"
)

// DeviceGrabber without the gocv build tag.
type DeviceGrabber struct{}

// NewDeviceGrabber returns an error when built without the gocv tag.
func NewDeviceGrabber(device string) (*DeviceGrabber, error) {
	_ = device
	return nil, errors.New("gocv build tag is not enabled")
}

// Grab is unreachable in the stub but keeps the type on the port.
func (g *DeviceGrabber) Grab(ctx context.Context) (*entity.Frame, error) {
	_ = ctx
	return nil, errors.New("gocv build tag is not enabled")
}

// Close is a no-op for the stub.
func (g *DeviceGrabber) Close() error { return nil }
