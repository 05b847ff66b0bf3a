// Package ocr wraps the Tesseract engine as the text-recognition
// collaborator.
package ocr

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/otiai10/gosseract/v2"

	"screen-vision/internal/domain/port"
)

// TesseractRecognizer recognizes text in encoded images via gosseract.
// The underlying client is not safe for concurrent calls, so recognition is
// serialized with a mutex.
type TesseractRecognizer struct {
	mu     sync.Mutex
	client *gosseract.Client
}

// NewTesseractRecognizer creates a client for the given languages
// (defaults to English).
func NewTesseractRecognizer(languages ...string) (*TesseractRecognizer, error) {
	client := gosseract.NewClient()
	if len(languages) > 0 {
		if err := client.SetLanguage(languages...); err != nil {
			client.Close()
			return nil, fmt.Errorf("set OCR languages: %w", err)
		}
	}
	return &TesseractRecognizer{client: client}, nil
}

// Recognize extracts text from an encoded (PNG/JPEG) image. The context
// deadline bounds the wait: on expiry the call returns ctx.Err() while the
// engine finishes in the background, keeping the next caller queued behind
// it rather than corrupting the client.
func (r *TesseractRecognizer) Recognize(ctx context.Context, image []byte) (string, error) {
	if len(image) == 0 {
		return "", errors.New("empty image")
	}

	type result struct {
		text string
		err  error
	}
	ch := make(chan result, 1)
	go func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		if err := r.client.SetImageFromBytes(image); err != nil {
			ch <- result{err: fmt.Errorf("set image: %w", err)}
			return
		}
		text, err := r.client.Text()
		if err != nil {
			ch <- result{err: fmt.Errorf("recognize: %w", err)}
			return
		}
		ch <- result{text: text}
	}()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res := <-ch:
		return res.text, res.err
	}
}

// Close releases the Tesseract client.
func (r *TesseractRecognizer) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.client.Close()
}

var _ port.TextRecognizer = (*TesseractRecognizer)(nil)
