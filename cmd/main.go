package main

import (
	"context"
	"log"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"screen-vision/config"
	"screen-vision/internal/api"
	"screen-vision/internal/container"
	"screen-vision/internal/domain/port"
	"screen-vision/internal/infrastructure/capture"
	"screen-vision/internal/infrastructure/ocr"
	"screen-vision/internal/infrastructure/storage"
	"screen-vision/internal/infrastructure/vision"
	"screen-vision/internal/logging"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	logger := logging.Init(cfg.LogLevel)

	if cfg.ModelPath == "" || cfg.ClassesPath == "" {
		log.Fatal("MODEL_PATH and MODEL_CLASSES are required")
	}

	// A model that fails to load is fatal: the pipeline cannot run
	// without it.
	classNames, err := vision.LoadClassNames(cfg.ClassesPath)
	if err != nil {
		log.Fatalf("Failed to load class list: %v", err)
	}
	detector, err := vision.NewYOLODetector(vision.Config{
		ModelPath:     cfg.ModelPath,
		ClassNames:    classNames,
		ConfThreshold: cfg.ConfThreshold,
		NMSThreshold:  cfg.NMSThreshold,
		InputSize:     cfg.InputSize,
	})
	if err != nil {
		log.Fatalf("Failed to load detection model: %v", err)
	}
	defer detector.Close()

	recognizer, err := ocr.NewTesseractRecognizer(cfg.OCRLanguages...)
	if err != nil {
		log.Fatalf("Failed to initialize OCR engine: %v", err)
	}
	defer recognizer.Close()

	grabber, err := buildGrabber(cfg)
	if err != nil {
		log.Fatalf("Failed to set up frame capture: %v", err)
	}

	snapshots, texts, err := buildStores(cfg)
	if err != nil {
		log.Fatalf("Failed to set up stores: %v", err)
	}

	c := container.New(container.Deps{
		Frames:     grabber,
		Detector:   detector,
		Recognizer: recognizer,
		Annotator:  vision.NewBoxAnnotator(cfg.JPEGQuality),
		Snapshots:  snapshots,
		Texts:      texts,
		Logger:     logger,
	}, container.Options{
		DetectInterval:  cfg.DetectInterval,
		ExtractInterval: cfg.ExtractInterval,
		StreamInterval:  cfg.StreamInterval,
		OCRMargin:       cfg.OCRMargin,
		OCRTimeout:      cfg.OCRTimeout,
		StreamBuffer:    cfg.StreamBuffer,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var wg sync.WaitGroup
	for _, run := range []func(context.Context){
		c.Detector.Run,
		c.Extractor.Run,
		c.Stream.Run,
	} {
		wg.Add(1)
		go func(run func(context.Context)) {
			defer wg.Done()
			run(ctx)
		}(run)
	}

	server := api.NewServer(c.Query, c.Hub, logger)
	go func() {
		if err := server.Start(cfg.ListenAddr); err != nil {
			logger.Error("http server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Warn("http shutdown", "error", err)
	}
	wg.Wait()
	logger.Info("stopped")
}

// buildGrabber selects the frame source: a video device when configured,
// the primary display otherwise.
func buildGrabber(cfg *config.Config) (port.FrameGrabber, error) {
	if cfg.CaptureDevice != "" {
		return capture.NewDeviceGrabber(cfg.CaptureDevice)
	}
	return capture.NewScreenGrabber(cfg.CaptureDisplay, cfg.CaptureWidth, cfg.CaptureHeight)
}

// buildStores selects in-memory or file-backed stores.
func buildStores(cfg *config.Config) (port.SnapshotStore, port.TextStore, error) {
	if cfg.StoreBackend == "file" {
		snapshots, err := storage.NewFileSnapshotStore(cfg.StoreDir)
		if err != nil {
			return nil, nil, err
		}
		texts, err := storage.NewFileTextStore(cfg.StoreDir)
		if err != nil {
			return nil, nil, err
		}
		return snapshots, texts, nil
	}
	return storage.NewMemorySnapshotStore(), storage.NewMemoryTextStore(), nil
}
