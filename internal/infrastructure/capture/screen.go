// Package capture implements the frame sources: the primary display via an
// ffmpeg rawvideo pipe, and video devices via OpenCV.
package capture

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"runtime"

	"screen-vision/internal/domain/entity"
	"screen-vision/internal/domain/port"
)

// ScreenGrabber captures the primary display by spawning ffmpeg for a
// single rawvideo BGR frame per call. Synchronous, no frame queuing: every
// Grab reflects the screen at call time.
type ScreenGrabber struct {
	FFmpegPath string
	Display    string
	Width      int
	Height     int
}

// NewScreenGrabber configures a grabber for a width×height display.
// Display is the capture input ffmpeg expects (":0.0" for X11, "desktop"
// for Windows); empty selects the platform default.
func NewScreenGrabber(display string, width, height int) (*ScreenGrabber, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid display dimensions %dx%d", width, height)
	}
	if display == "" {
		display = defaultDisplay()
	}
	return &ScreenGrabber{
		FFmpegPath: "ffmpeg",
		Display:    display,
		Width:      width,
		Height:     height,
	}, nil
}

// Grab captures one frame of the display.
func (g *ScreenGrabber) Grab(ctx context.Context) (*entity.Frame, error) {
	args := []string{
		"-loglevel", "error",
		"-f", grabFormat(),
		"-video_size", fmt.Sprintf("%dx%d", g.Width, g.Height),
		"-i", g.Display,
		"-frames:v", "1",
		"-f", "rawvideo",
		"-pix_fmt", "bgr24",
		"pipe:1",
	}
	cmd := exec.CommandContext(ctx, g.FFmpegPath, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("ffmpeg capture: %w: %s", err, bytes.TrimSpace(stderr.Bytes()))
	}
	frame, err := entity.NewFrame(stdout.Bytes(), g.Width, g.Height)
	if err != nil {
		return nil, fmt.Errorf("ffmpeg output: %w", err)
	}
	return frame, nil
}

func grabFormat() string {
	switch runtime.GOOS {
	case "windows":
		return "gdigrab"
	case "darwin":
		return "avfoundation"
	default:
		return "x11grab"
	}
}

func defaultDisplay() string {
	switch runtime.GOOS {
	case "windows":
		return "desktop"
	case "darwin":
		return "1"
	default:
		return ":0.0"
	}
}

var (
	_ port.FrameGrabber = (*ScreenGrabber)(nil)
	_ port.FrameGrabber = (*DeviceGrabber)(nil)
)
