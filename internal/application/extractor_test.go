package app

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"screen-vision/internal/domain/entity"
	"screen-vision/internal/infrastructure/storage"
)

// extractorFixture publishes a snapshot with the given boxes under one
// label and returns a wired extractor. Each box gets a distinct crop size
// so the fake recognizer can answer per box.
func extractorFixture(t *testing.T, boxes []entity.Box) (*TextExtractorService, *storage.MemorySnapshotStore, *storage.MemoryTextStore, *fakeRecognizer) {
	t.Helper()
	snapshots := storage.NewMemorySnapshotStore()
	texts := storage.NewMemoryTextStore()

	snap := entity.NewSnapshot([]string{"button"})
	for _, b := range boxes {
		snap.Add("button", b)
	}
	require.NoError(t, snapshots.Publish(snap))

	recognizer := newFakeRecognizer()
	grabber := &fakeGrabber{frame: testFrame(t, 200, 200)}
	svc := NewTextExtractorService(grabber, recognizer, snapshots, texts,
		time.Millisecond, 5, 100*time.Millisecond, nil)
	return svc, snapshots, texts, recognizer
}

// cropSize is the crop dimension for an interior box expanded by the 5px
// test margin.
func cropSize(b entity.Box) string {
	return fmt.Sprintf("%dx%d", int(b.X2+5)-int(b.X1-5), int(b.Y2+5)-int(b.Y1-5))
}

func TestExtractorBuildsTextMapFromReadList(t *testing.T) {
	boxes := []entity.Box{
		{X1: 10, Y1: 10, X2: 20, Y2: 20},
		{X1: 30, Y1: 30, X2: 50, Y2: 50},
		{X1: 60, Y1: 60, X2: 90, Y2: 100},
	}
	svc, _, texts, recognizer := extractorFixture(t, boxes)
	recognizer.texts[cropSize(boxes[0])] = "Save\n"
	recognizer.texts[cropSize(boxes[1])] = "Cancel"
	recognizer.texts[cropSize(boxes[2])] = "Open fïle"

	require.NoError(t, svc.Cycle(context.Background()))

	cur := texts.Current()
	require.Equal(t, 3, cur.Len())
	require.Equal(t, boxes[0], cur.Entries["Save"])
	require.Equal(t, boxes[1], cur.Entries["Cancel"])
	require.Equal(t, boxes[2], cur.Entries["Open fle"])
}

func TestExtractorIsIdempotentOnUnchangedSnapshot(t *testing.T) {
	boxes := []entity.Box{
		{X1: 10, Y1: 10, X2: 20, Y2: 20},
		{X1: 30, Y1: 30, X2: 50, Y2: 50},
	}
	svc, _, texts, recognizer := extractorFixture(t, boxes)
	recognizer.texts[cropSize(boxes[0])] = "Save"
	recognizer.texts[cropSize(boxes[1])] = "Cancel"

	require.NoError(t, svc.Cycle(context.Background()))
	first := texts.Current().Entries

	require.NoError(t, svc.Cycle(context.Background()))
	second := texts.Current().Entries

	require.Equal(t, first, second)
	require.Equal(t, uint64(2), texts.Current().Generation)
}

func TestExtractorSkipsFailedBox(t *testing.T) {
	boxes := []entity.Box{
		{X1: 10, Y1: 10, X2: 20, Y2: 20},
		{X1: 30, Y1: 30, X2: 50, Y2: 50},
	}
	svc, _, texts, recognizer := extractorFixture(t, boxes)
	recognizer.texts[cropSize(boxes[0])] = "Save"
	recognizer.fail[cropSize(boxes[1])] = true

	require.NoError(t, svc.Cycle(context.Background()))

	cur := texts.Current()
	require.Equal(t, 1, cur.Len())
	require.Equal(t, boxes[0], cur.Entries["Save"])
}

func TestExtractorTimedOutCallSkipsBoxOnly(t *testing.T) {
	boxes := []entity.Box{{X1: 10, Y1: 10, X2: 20, Y2: 20}}
	svc, _, texts, recognizer := extractorFixture(t, boxes)
	recognizer.block = true
	svc.ocrTimeout = 10 * time.Millisecond

	require.NoError(t, svc.Cycle(context.Background()))
	require.Zero(t, texts.Current().Len())
	require.Equal(t, uint64(1), texts.Current().Generation)
}

func TestExtractorDuplicateTextKeepsLastBox(t *testing.T) {
	boxes := []entity.Box{
		{X1: 10, Y1: 10, X2: 20, Y2: 20},
		{X1: 30, Y1: 30, X2: 60, Y2: 60},
	}
	svc, _, texts, recognizer := extractorFixture(t, boxes)
	recognizer.texts[cropSize(boxes[0])] = "OK"
	recognizer.texts[cropSize(boxes[1])] = "OK"

	require.NoError(t, svc.Cycle(context.Background()))

	cur := texts.Current()
	require.Equal(t, 1, cur.Len())
	require.Equal(t, boxes[1], cur.Entries["OK"])
}

func TestExtractorDuplicateTextAcrossLabelsIsStable(t *testing.T) {
	snapshots := storage.NewMemorySnapshotStore()
	texts := storage.NewMemoryTextStore()

	first := entity.Box{X1: 10, Y1: 10, X2: 20, Y2: 20}
	last := entity.Box{X1: 30, Y1: 30, X2: 60, Y2: 60}
	snap := entity.NewSnapshot([]string{"button", "icon"})
	snap.Add("button", first)
	snap.Add("icon", last)
	require.NoError(t, snapshots.Publish(snap))

	recognizer := newFakeRecognizer()
	recognizer.texts[cropSize(first)] = "OK"
	recognizer.texts[cropSize(last)] = "OK"
	grabber := &fakeGrabber{frame: testFrame(t, 200, 200)}
	svc := NewTextExtractorService(grabber, recognizer, snapshots, texts,
		time.Millisecond, 5, 100*time.Millisecond, nil)

	for i := 0; i < 20; i++ {
		require.NoError(t, svc.Cycle(context.Background()))
		cur := texts.Current()
		require.Equal(t, 1, cur.Len())
		require.Equal(t, last, cur.Entries["OK"], "the later vocabulary label's box must win every cycle")
	}
}

func TestExtractorColdSnapshotPublishesEmptyMap(t *testing.T) {
	snapshots := storage.NewMemorySnapshotStore()
	texts := storage.NewMemoryTextStore()
	grabber := &fakeGrabber{frame: testFrame(t, 8, 8)}
	svc := NewTextExtractorService(grabber, newFakeRecognizer(), snapshots, texts,
		time.Millisecond, 5, time.Second, nil)

	require.NoError(t, svc.Cycle(context.Background()))
	require.Zero(t, texts.Current().Len())
	require.Equal(t, uint64(1), texts.Current().Generation)
	require.Zero(t, grabber.calls.Load(), "no frame should be captured for an empty read list")
}

func TestExtractorRunStopsOnCancel(t *testing.T) {
	svc, _, texts, _ := extractorFixture(t, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		svc.Run(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool {
		return texts.Current().Generation > 2
	}, time.Second, time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("extractor loop did not stop")
	}
}
