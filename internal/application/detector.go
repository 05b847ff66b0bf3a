package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"screen-vision/internal/domain/entity"
	"screen-vision/internal/domain/port"
)

// DetectorService is the perception writer: each cycle it grabs one frame,
// runs the detection model, and publishes a fresh snapshot. It is the only
// writer of its snapshot store.
type DetectorService struct {
	frames   port.FrameGrabber
	detector port.ObjectDetector
	store    port.SnapshotStore
	interval time.Duration
	log      *slog.Logger
}

// NewDetectorService wires the detector loop.
func NewDetectorService(frames port.FrameGrabber, detector port.ObjectDetector, store port.SnapshotStore, interval time.Duration, log *slog.Logger) *DetectorService {
	if log == nil {
		log = slog.Default()
	}
	return &DetectorService{
		frames:   frames,
		detector: detector,
		store:    store,
		interval: interval,
		log:      log.With("service", "detector"),
	}
}

// Run loops until the context is cancelled. Cancellation is checked at the
// top of each cycle, never mid-collaborator-call; an in-flight inference is
// allowed to finish. A failed cycle is logged and skipped, leaving the
// previous snapshot current.
func (s *DetectorService) Run(ctx context.Context) {
	s.log.Info("detector started", "interval", s.interval)
	for {
		select {
		case <-ctx.Done():
			s.log.Info("detector stopped")
			return
		default:
		}

		if err := s.Cycle(ctx); err != nil {
			s.log.Warn("detection cycle skipped", "error", err)
		}

		select {
		case <-ctx.Done():
			s.log.Info("detector stopped")
			return
		case <-time.After(s.interval):
		}
	}
}

// Cycle performs one capture → infer → publish pass.
func (s *DetectorService) Cycle(ctx context.Context) error {
	frame, err := s.frames.Grab(ctx)
	if err != nil {
		return fmt.Errorf("grab frame: %w", err)
	}

	detections, err := s.detector.Detect(ctx, frame)
	if err != nil {
		return fmt.Errorf("detect: %w", err)
	}

	// Every vocabulary label is present even with zero detections;
	// confidence is dropped from the published snapshot.
	snapshot := entity.NewSnapshot(s.detector.Labels())
	for _, det := range detections {
		if _, known := snapshot.Counts[det.Label]; !known {
			s.log.Warn("detection with unknown label dropped", "label", det.Label)
			continue
		}
		snapshot.Add(det.Label, det.Box)
	}

	if err := s.store.Publish(snapshot); err != nil {
		return fmt.Errorf("publish snapshot: %w", err)
	}
	s.log.Debug("snapshot published", "generation", snapshot.Generation, "detections", snapshot.Total())
	return nil
}
