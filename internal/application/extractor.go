package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"screen-vision/internal/domain/entity"
	"screen-vision/internal/domain/port"
)

// TextExtractorService OCRs the regions of the current snapshot at its own,
// slower cadence and publishes the consolidated text map. It is the only
// writer of its text store.
type TextExtractorService struct {
	frames     port.FrameGrabber
	recognizer port.TextRecognizer
	snapshots  port.SnapshotStore
	texts      port.TextStore
	interval   time.Duration
	margin     float64
	ocrTimeout time.Duration
	log        *slog.Logger
}

// NewTextExtractorService wires the extractor loop. margin is the pixel
// padding applied around each box before cropping; ocrTimeout bounds each
// recognition call.
func NewTextExtractorService(frames port.FrameGrabber, recognizer port.TextRecognizer, snapshots port.SnapshotStore, texts port.TextStore, interval time.Duration, margin float64, ocrTimeout time.Duration, log *slog.Logger) *TextExtractorService {
	if log == nil {
		log = slog.Default()
	}
	return &TextExtractorService{
		frames:     frames,
		recognizer: recognizer,
		snapshots:  snapshots,
		texts:      texts,
		interval:   interval,
		margin:     margin,
		ocrTimeout: ocrTimeout,
		log:        log.With("service", "extractor"),
	}
}

// Run loops until the context is cancelled, checking cancellation at the
// top of each cycle only.
func (s *TextExtractorService) Run(ctx context.Context) {
	s.log.Info("text extractor started", "interval", s.interval)
	for {
		select {
		case <-ctx.Done():
			s.log.Info("text extractor stopped")
			return
		default:
		}

		if err := s.Cycle(ctx); err != nil {
			s.log.Warn("extraction cycle skipped", "error", err)
		}

		select {
		case <-ctx.Done():
			s.log.Info("text extractor stopped")
			return
		case <-time.After(s.interval):
		}
	}
}

// Cycle reads one generation's read list, OCRs each region from a fresh
// frame, and publishes the resulting text map. A failed or timed-out OCR
// call skips that box only. Re-running on an unchanged snapshot with
// deterministic OCR yields the same map.
func (s *TextExtractorService) Cycle(ctx context.Context) error {
	snapshot := s.snapshots.Current()
	readList := snapshot.ReadList()

	textMap := entity.NewTextMap()
	if len(readList) == 0 {
		if err := s.texts.Publish(textMap); err != nil {
			return fmt.Errorf("publish text map: %w", err)
		}
		return nil
	}

	frame, err := s.frames.Grab(ctx)
	if err != nil {
		return fmt.Errorf("grab frame: %w", err)
	}

	for _, box := range readList {
		text, err := s.readBox(ctx, frame, box)
		if err != nil {
			s.log.Warn("box skipped", "box", box, "error", err)
			continue
		}
		// The cleaned text keys the map; the originating box (without
		// margin) is the stored position.
		textMap.Put(entity.CleanText(text), box)
	}

	if err := s.texts.Publish(textMap); err != nil {
		return fmt.Errorf("publish text map: %w", err)
	}
	s.log.Debug("text map published",
		"generation", textMap.Generation, "entries", textMap.Len(), "snapshot", snapshot.Generation)
	return nil
}

func (s *TextExtractorService) readBox(ctx context.Context, frame *entity.Frame, box entity.Box) (string, error) {
	crop := frame.Crop(box.Expand(s.margin))
	img, err := crop.EncodePNG()
	if err != nil {
		return "", err
	}

	octx, cancel := context.WithTimeout(ctx, s.ocrTimeout)
	defer cancel()
	return s.recognizer.Recognize(octx, img)
}
