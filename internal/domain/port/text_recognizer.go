package port

import "context"

// TextRecognizer extracts text from an encoded image. Best effort: an empty
// string is a legitimate result for an image without readable text.
type TextRecognizer interface {
	Recognize(ctx context.Context, image []byte) (string, error)
}
