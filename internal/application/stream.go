package app

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"screen-vision/internal/domain/port"
)

// Hub fans encoded frames out to stream subscribers. Slow subscribers drop
// their oldest pending frame rather than stalling the broadcast: a live
// view wants the newest frame, not a backlog.
type Hub struct {
	mu     sync.RWMutex
	subs   map[uuid.UUID]chan []byte
	buffer int
}

// NewHub creates a hub with the given per-subscriber channel depth.
func NewHub(buffer int) *Hub {
	if buffer <= 0 {
		buffer = 1
	}
	return &Hub{
		subs:   make(map[uuid.UUID]chan []byte),
		buffer: buffer,
	}
}

// Subscribe registers a consumer and returns its id and frame channel.
func (h *Hub) Subscribe() (uuid.UUID, <-chan []byte) {
	id := uuid.New()
	ch := make(chan []byte, h.buffer)

	h.mu.Lock()
	h.subs[id] = ch
	h.mu.Unlock()
	return id, ch
}

// Unsubscribe removes a consumer and closes its channel.
func (h *Hub) Unsubscribe(id uuid.UUID) {
	h.mu.Lock()
	if ch, ok := h.subs[id]; ok {
		delete(h.subs, id)
		close(ch)
	}
	h.mu.Unlock()
}

// Broadcast delivers one frame to every subscriber without blocking.
func (h *Hub) Broadcast(frame []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, ch := range h.subs {
		select {
		case ch <- frame:
		default:
			// Full: make room by discarding the oldest frame.
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- frame:
			default:
			}
		}
	}
}

// Count returns the number of active subscribers.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

// StreamService renders the annotated live view: each tick it grabs a fresh
// frame, overlays the current snapshot, and broadcasts the JPEG to the hub.
type StreamService struct {
	frames    port.FrameGrabber
	annotator port.FrameAnnotator
	snapshots port.SnapshotStore
	hub       *Hub
	interval  time.Duration
	log       *slog.Logger
}

// NewStreamService wires the stream loop.
func NewStreamService(frames port.FrameGrabber, annotator port.FrameAnnotator, snapshots port.SnapshotStore, hub *Hub, interval time.Duration, log *slog.Logger) *StreamService {
	if log == nil {
		log = slog.Default()
	}
	return &StreamService{
		frames:    frames,
		annotator: annotator,
		snapshots: snapshots,
		hub:       hub,
		interval:  interval,
		log:       log.With("service", "stream"),
	}
}

// Hub exposes the subscriber hub for the transport layer.
func (s *StreamService) Hub() *Hub {
	return s.hub
}

// Run loops until the context is cancelled. A tick with no subscribers does
// no capture work. Per-tick failures are logged and the loop continues.
func (s *StreamService) Run(ctx context.Context) {
	s.log.Info("stream started", "interval", s.interval)
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.log.Info("stream stopped")
			return
		case <-ticker.C:
		}

		if s.hub.Count() == 0 {
			continue
		}
		if err := s.Tick(ctx); err != nil {
			s.log.Warn("stream tick skipped", "error", err)
		}
	}
}

// Tick renders and broadcasts one frame.
func (s *StreamService) Tick(ctx context.Context) error {
	frame, err := s.frames.Grab(ctx)
	if err != nil {
		return err
	}

	// Before the first publish there is nothing to overlay; render the
	// plain frame.
	snapshot := s.snapshots.Current()
	if snapshot.Generation == 0 && snapshot.Total() == 0 {
		snapshot = nil
	}

	jpeg, err := s.annotator.Annotate(frame, snapshot)
	if err != nil {
		return err
	}
	s.hub.Broadcast(jpeg)
	return nil
}
