package container

import (
	"log/slog"
	"time"

	app "screen-vision/internal/application"
	"screen-vision/internal/domain/port"
)

// Deps are the infrastructure adapters the application services run on.
type Deps struct {
	Frames     port.FrameGrabber
	Detector   port.ObjectDetector
	Recognizer port.TextRecognizer
	Annotator  port.FrameAnnotator
	Snapshots  port.SnapshotStore
	Texts      port.TextStore
	Logger     *slog.Logger
}

// Options are the pipeline tunables.
type Options struct {
	DetectInterval  time.Duration
	ExtractInterval time.Duration
	StreamInterval  time.Duration
	OCRMargin       float64
	OCRTimeout      time.Duration
	StreamBuffer    int
}

// Container wires the application services.
type Container struct {
	Detector  *app.DetectorService
	Extractor *app.TextExtractorService
	Stream    *app.StreamService
	Query     *app.QueryService
	Hub       *app.Hub
}

// New assembles the services around the shared stores.
func New(deps Deps, opts Options) *Container {
	hub := app.NewHub(opts.StreamBuffer)

	return &Container{
		Detector: app.NewDetectorService(
			deps.Frames, deps.Detector, deps.Snapshots, opts.DetectInterval, deps.Logger),
		Extractor: app.NewTextExtractorService(
			deps.Frames, deps.Recognizer, deps.Snapshots, deps.Texts,
			opts.ExtractInterval, opts.OCRMargin, opts.OCRTimeout, deps.Logger),
		Stream: app.NewStreamService(
			deps.Frames, deps.Annotator, deps.Snapshots, hub, opts.StreamInterval, deps.Logger),
		Query: app.NewQueryService(
			deps.Snapshots, deps.Texts, deps.Frames, deps.Recognizer,
			opts.OCRMargin, opts.OCRTimeout),
		Hub: hub,
	}
}
