package vision

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"screen-vision/internal/domain/port"
)

// Config holds the detection model setup. ClassNames is the fixed label
// vocabulary matching the model's output layer order.
type Config struct {
	ModelPath     string
	ClassNames    []string
	ConfThreshold float32
	NMSThreshold  float32
	InputSize     int
}

// LoadClassNames reads a class list file, one label per line. Blank lines
// and lines starting with '#' are skipped.
func LoadClassNames(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open class list: %w", err)
	}
	defer f.Close()

	var names []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		names = append(names, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read class list: %w", err)
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("class list %s is empty", path)
	}
	return names, nil
}

// Both build variants satisfy the same ports.
var (
	_ port.ObjectDetector = (*YOLODetector)(nil)
	_ port.FrameAnnotator = (*BoxAnnotator)(nil)
)
