//go:build gocv
// +build gocv

package vision

import (
	"context"
	"errors"
	"fmt"
	"image"

	"gocv.io/x/gocv"

	"screen-vision/internal/domain/entity"
)

// YOLODetector runs a YOLO-family ONNX model through the OpenCV DNN module.
// Not safe for concurrent use; the detector loop is its only caller.
type YOLODetector struct {
	net    gocv.Net
	names  []string
	conf   float32
	nms    float32
	inSize int
}

// NewYOLODetector loads the model. A load failure here is fatal for the
// process: the pipeline cannot run without a model.
func NewYOLODetector(cfg Config) (*YOLODetector, error) {
	if len(cfg.ClassNames) == 0 {
		return nil, errors.New("empty class vocabulary")
	}
	net := gocv.ReadNetFromONNX(cfg.ModelPath)
	if net.Empty() {
		return nil, fmt.Errorf("failed to load model %s", cfg.ModelPath)
	}
	conf := cfg.ConfThreshold
	if conf <= 0 {
		conf = 0.25
	}
	nms := cfg.NMSThreshold
	if nms <= 0 {
		nms = 0.45
	}
	inSize := cfg.InputSize
	if inSize <= 0 {
		inSize = 640
	}
	return &YOLODetector{
		net:    net,
		names:  cfg.ClassNames,
		conf:   conf,
		nms:    nms,
		inSize: inSize,
	}, nil
}

// Labels returns the model's class vocabulary.
func (d *YOLODetector) Labels() []string {
	return d.names
}

// Detect runs one inference over the frame and returns detections above the
// confidence threshold, after non-maximum suppression.
func (d *YOLODetector) Detect(ctx context.Context, frame *entity.Frame) ([]entity.Detection, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	mat, err := gocv.NewMatFromBytes(frame.Height, frame.Width, gocv.MatTypeCV8UC3, frame.Pixels)
	if err != nil {
		return nil, fmt.Errorf("wrap frame: %w", err)
	}
	defer mat.Close()

	blob := gocv.BlobFromImage(mat, 1.0/255.0, image.Pt(d.inSize, d.inSize),
		gocv.NewScalar(0, 0, 0, 0), true, false)
	defer blob.Close()

	d.net.SetInput(blob, "")
	output := d.net.Forward("")
	defer output.Close()

	return d.decode(output, frame.Width, frame.Height)
}

// decode parses a [1, 4+classes, boxes] output tensor: center-format boxes
// in input-size coordinates followed by per-class scores.
func (d *YOLODetector) decode(output gocv.Mat, frameW, frameH int) ([]entity.Detection, error) {
	sz := output.Size()
	if len(sz) != 3 || sz[1] < 5 {
		return nil, fmt.Errorf("unexpected output shape %v", sz)
	}
	rows, cols := sz[1], sz[2]
	if rows != len(d.names)+4 {
		return nil, fmt.Errorf("output has %d classes, vocabulary has %d", rows-4, len(d.names))
	}

	data := output.Reshape(1, rows)
	defer data.Close()

	scaleX := float32(frameW) / float32(d.inSize)
	scaleY := float32(frameH) / float32(d.inSize)

	var (
		rects   []image.Rectangle
		scores  []float32
		classes []int
	)
	for i := 0; i < cols; i++ {
		best := 0
		bestScore := float32(0)
		for c := 4; c < rows; c++ {
			if s := data.GetFloatAt(c, i); s > bestScore {
				bestScore = s
				best = c - 4
			}
		}
		if bestScore < d.conf {
			continue
		}
		cx := data.GetFloatAt(0, i) * scaleX
		cy := data.GetFloatAt(1, i) * scaleY
		w := data.GetFloatAt(2, i) * scaleX
		h := data.GetFloatAt(3, i) * scaleY
		rects = append(rects, image.Rect(
			int(cx-w/2), int(cy-h/2), int(cx+w/2), int(cy+h/2)))
		scores = append(scores, bestScore)
		classes = append(classes, best)
	}
	if len(rects) == 0 {
		return nil, nil
	}

	keep := gocv.NMSBoxes(rects, scores, d.conf, d.nms)
	detections := make([]entity.Detection, 0, len(keep))
	for _, idx := range keep {
		r := rects[idx]
		box := entity.Box{
			X1: float64(r.Min.X), Y1: float64(r.Min.Y),
			X2: float64(r.Max.X), Y2: float64(r.Max.Y),
		}.Clamp(frameW, frameH)
		detections = append(detections, entity.Detection{
			Label:      d.names[classes[idx]],
			Box:        box,
			Confidence: scores[idx],
		})
	}
	return detections, nil
}

// Close releases the loaded network.
func (d *YOLODetector) Close() error {
	return d.net.Close()
}
