package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds every tunable of the perception pipeline. Values come from
// config.yaml, environment variables prefixed SCREEN_VISION_, and a local
// .env file, with the environment taking priority over the file.
type Config struct {
	ListenAddr string

	ModelPath     string
	ClassesPath   string
	ConfThreshold float32
	NMSThreshold  float32
	InputSize     int

	CaptureDisplay string
	CaptureDevice  string
	CaptureWidth   int
	CaptureHeight  int

	DetectInterval  time.Duration
	ExtractInterval time.Duration
	StreamInterval  time.Duration

	OCRMargin    float64
	OCRTimeout   time.Duration
	OCRLanguages []string

	StoreBackend string
	StoreDir     string

	StreamBuffer int
	JPEGQuality  int

	LogLevel string
}

// Load reads the configuration, applying defaults that mirror the classic
// cadences: detector 100ms, extractor 1s, stream 100ms, 5px OCR margin.
func Load() (*Config, error) {
	// .env is optional.
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.SetEnvPrefix("SCREEN_VISION")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("server.listen", ":5000")
	v.SetDefault("model.path", "")
	v.SetDefault("model.classes", "")
	v.SetDefault("model.confidence", 0.25)
	v.SetDefault("model.nms", 0.45)
	v.SetDefault("model.input_size", 640)
	v.SetDefault("capture.display", "")
	v.SetDefault("capture.device", "")
	v.SetDefault("capture.width", 1920)
	v.SetDefault("capture.height", 1080)
	v.SetDefault("detect.interval", 100*time.Millisecond)
	v.SetDefault("extract.interval", time.Second)
	v.SetDefault("stream.interval", 100*time.Millisecond)
	v.SetDefault("stream.buffer", 4)
	v.SetDefault("stream.jpeg_quality", 90)
	v.SetDefault("ocr.margin", 5.0)
	v.SetDefault("ocr.timeout", 2*time.Second)
	v.SetDefault("ocr.languages", []string{"eng"})
	v.SetDefault("store.backend", "memory")
	v.SetDefault("store.dir", "model_view_output")
	v.SetDefault("log.level", "info")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	cfg := &Config{
		ListenAddr:      v.GetString("server.listen"),
		ModelPath:       v.GetString("model.path"),
		ClassesPath:     v.GetString("model.classes"),
		ConfThreshold:   float32(v.GetFloat64("model.confidence")),
		NMSThreshold:    float32(v.GetFloat64("model.nms")),
		InputSize:       v.GetInt("model.input_size"),
		CaptureDisplay:  v.GetString("capture.display"),
		CaptureDevice:   v.GetString("capture.device"),
		CaptureWidth:    v.GetInt("capture.width"),
		CaptureHeight:   v.GetInt("capture.height"),
		DetectInterval:  v.GetDuration("detect.interval"),
		ExtractInterval: v.GetDuration("extract.interval"),
		StreamInterval:  v.GetDuration("stream.interval"),
		OCRMargin:       v.GetFloat64("ocr.margin"),
		OCRTimeout:      v.GetDuration("ocr.timeout"),
		OCRLanguages:    v.GetStringSlice("ocr.languages"),
		StoreBackend:    v.GetString("store.backend"),
		StoreDir:        v.GetString("store.dir"),
		StreamBuffer:    v.GetInt("stream.buffer"),
		JPEGQuality:     v.GetInt("stream.jpeg_quality"),
		LogLevel:        v.GetString("log.level"),
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.DetectInterval <= 0 || c.ExtractInterval <= 0 || c.StreamInterval <= 0 {
		return errors.New("intervals must be positive")
	}
	if c.OCRTimeout <= 0 {
		return errors.New("ocr timeout must be positive")
	}
	if c.OCRMargin < 0 {
		return errors.New("ocr margin must not be negative")
	}
	switch c.StoreBackend {
	case "memory", "file":
	default:
		return fmt.Errorf("unknown store backend %q", c.StoreBackend)
	}
	if c.CaptureDevice == "" && (c.CaptureWidth <= 0 || c.CaptureHeight <= 0) {
		return errors.New("capture dimensions must be positive for screen capture")
	}
	return nil
}
