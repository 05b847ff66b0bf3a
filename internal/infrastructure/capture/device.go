//go:build gocv
// +build gocv

package capture

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"gocv.io/x/gocv"

	"screen-vision/internal/domain/entity"
)

// DeviceGrabber reads frames from a camera or video device through OpenCV.
// Useful when the perception pipeline watches a capture card instead of the
// local display.
type DeviceGrabber struct {
	mu sync.Mutex
	vc *gocv.VideoCapture
}

// NewDeviceGrabber opens the device. The argument is a device index ("0")
// or a stream source OpenCV understands.
func NewDeviceGrabber(device string) (*DeviceGrabber, error) {
	vc, err := gocv.OpenVideoCapture(device)
	if err != nil {
		return nil, fmt.Errorf("open capture device %s: %w", device, err)
	}
	return &DeviceGrabber{vc: vc}, nil
}

// Grab reads the next frame from the device.
func (g *DeviceGrabber) Grab(ctx context.Context) (*entity.Frame, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	mat := gocv.NewMat()
	defer mat.Close()
	if ok := g.vc.Read(&mat); !ok || mat.Empty() {
		return nil, errors.New("device returned no frame")
	}

	data, err := mat.DataPtrUint8()
	if err != nil {
		return nil, fmt.Errorf("read frame data: %w", err)
	}
	pixels := make([]byte, len(data))
	copy(pixels, data)
	return entity.NewFrame(pixels, mat.Cols(), mat.Rows())
}

// Close releases the device.
func (g *DeviceGrabber) Close() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.vc.Close()
}
