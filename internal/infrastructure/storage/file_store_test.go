package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"screen-vision/internal/domain/entity"
)

func TestFileSnapshotStoreRoundTrip(t *testing.T) {
	dir := t.TempDir()
	s, err := NewFileSnapshotStore(dir)
	require.NoError(t, err)

	snap := entity.NewSnapshot([]string{"cup", "cell phone"})
	snap.Add("cup", entity.Box{X1: 10, Y1: 10, X2: 50, Y2: 50})
	require.NoError(t, s.Publish(snap))

	cur := s.Current()
	require.Equal(t, uint64(1), cur.Generation)
	require.Equal(t, []string{"cell phone", "cup"}, cur.Labels)
	require.Equal(t, 1, cur.Counts["cup"])
	require.Equal(t, []entity.Box{{X1: 10, Y1: 10, X2: 50, Y2: 50}}, cur.Boxes["cup"])
	require.Zero(t, cur.Counts["cell phone"])
	require.Empty(t, cur.Boxes["cell phone"])

	// Labels with spaces map to safe file names.
	_, err = os.Stat(filepath.Join(dir, "cell_phone.json"))
	require.NoError(t, err)
}

func TestFileSnapshotStoreColdStart(t *testing.T) {
	s, err := NewFileSnapshotStore(t.TempDir())
	require.NoError(t, err)

	cur := s.Current()
	require.Equal(t, uint64(0), cur.Generation)
	require.Empty(t, cur.Counts)
}

func TestFileSnapshotStoreCorruptSummaryReadsAsCold(t *testing.T) {
	dir := t.TempDir()
	s, err := NewFileSnapshotStore(dir)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "labels.json"), []byte("{not json"), 0o644))
	cur := s.Current()
	require.Empty(t, cur.Counts)
}

func TestFileSnapshotStoreCorruptLabelFileReadsAsEmptyList(t *testing.T) {
	dir := t.TempDir()
	s, err := NewFileSnapshotStore(dir)
	require.NoError(t, err)

	snap := entity.NewSnapshot([]string{"cup"})
	snap.Add("cup", entity.Box{X1: 1, Y1: 1, X2: 2, Y2: 2})
	require.NoError(t, s.Publish(snap))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "cup.json"), []byte("???"), 0o644))

	cur := s.Current()
	require.Equal(t, 1, cur.Counts["cup"])
	require.Empty(t, cur.Boxes["cup"])
}

func TestFileTextStoreRoundTrip(t *testing.T) {
	s, err := NewFileTextStore(t.TempDir())
	require.NoError(t, err)
	require.Zero(t, s.Current().Len())

	m := entity.NewTextMap()
	m.Put("Submit", entity.Box{X1: 5, Y1: 5, X2: 9, Y2: 9})
	require.NoError(t, s.Publish(m))

	cur := s.Current()
	require.Equal(t, uint64(1), cur.Generation)
	require.Equal(t, entity.Box{X1: 5, Y1: 5, X2: 9, Y2: 9}, cur.Entries["Submit"])
}

func TestFileTextStoreCorruptFileReadsAsEmpty(t *testing.T) {
	dir := t.TempDir()
	s, err := NewFileTextStore(dir)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "text.json"), []byte("["), 0o644))
	require.Zero(t, s.Current().Len())
}

func TestLabelFileName(t *testing.T) {
	require.Equal(t, "cup.json", labelFileName("cup"))
	require.Equal(t, "cell_phone.json", labelFileName("cell phone"))
	require.Equal(t, "___x.json", labelFileName("../x"))
}
