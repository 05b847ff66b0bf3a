package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"screen-vision/internal/domain/entity"
	"screen-vision/internal/infrastructure/storage"
)

func TestHubSubscribeBroadcastUnsubscribe(t *testing.T) {
	hub := NewHub(4)
	id, ch := hub.Subscribe()
	require.Equal(t, 1, hub.Count())

	hub.Broadcast([]byte("frame-1"))
	require.Equal(t, []byte("frame-1"), <-ch)

	hub.Unsubscribe(id)
	require.Zero(t, hub.Count())
	_, open := <-ch
	require.False(t, open)

	// Unsubscribing twice is harmless.
	hub.Unsubscribe(id)
}

func TestHubSlowSubscriberGetsNewestFrame(t *testing.T) {
	hub := NewHub(1)
	_, ch := hub.Subscribe()

	hub.Broadcast([]byte("old"))
	hub.Broadcast([]byte("new"))

	require.Equal(t, []byte("new"), <-ch)
}

func streamFixture(t *testing.T) (*StreamService, *storage.MemorySnapshotStore, *fakeGrabber, *fakeAnnotator) {
	t.Helper()
	snapshots := storage.NewMemorySnapshotStore()
	grabber := &fakeGrabber{frame: testFrame(t, 32, 32)}
	annotator := &fakeAnnotator{}
	svc := NewStreamService(grabber, annotator, snapshots, NewHub(4), time.Millisecond, nil)
	return svc, snapshots, grabber, annotator
}

func TestStreamTickColdStoreRendersUnannotated(t *testing.T) {
	svc, _, _, annotator := streamFixture(t)
	_, ch := svc.Hub().Subscribe()

	require.NoError(t, svc.Tick(context.Background()))
	require.Nil(t, annotator.lastSnap)
	require.Equal(t, []byte("jpeg-frame"), <-ch)
}

func TestStreamTickOverlaysCurrentSnapshot(t *testing.T) {
	svc, snapshots, _, annotator := streamFixture(t)
	svc.Hub().Subscribe()

	snap := entity.NewSnapshot([]string{"cup"})
	snap.Add("cup", entity.Box{X1: 1, Y1: 1, X2: 2, Y2: 2})
	require.NoError(t, snapshots.Publish(snap))

	require.NoError(t, svc.Tick(context.Background()))
	require.NotNil(t, annotator.lastSnap)
	require.Equal(t, 1, annotator.lastSnap.Counts["cup"])
}

func TestStreamTickReportsAnnotateError(t *testing.T) {
	svc, _, _, annotator := streamFixture(t)
	annotator.err = errors.New("encode failed")

	require.Error(t, svc.Tick(context.Background()))
}

func TestStreamRunSkipsWorkWithoutSubscribers(t *testing.T) {
	svc, _, grabber, _ := streamFixture(t)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		svc.Run(ctx)
		close(done)
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()
	<-done
	require.Zero(t, grabber.calls.Load())
}

func TestStreamRunBroadcastsToSubscriber(t *testing.T) {
	svc, _, _, _ := streamFixture(t)
	_, ch := svc.Hub().Subscribe()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go svc.Run(ctx)

	select {
	case frame := <-ch:
		require.Equal(t, []byte("jpeg-frame"), frame)
	case <-time.After(time.Second):
		t.Fatal("no frame broadcast")
	}
}
