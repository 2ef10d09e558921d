package spool

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func newTestSpool(t *testing.T) *Spool {
	t.Helper()
	s, err := New(t.TempDir(), 10, zaptest.NewLogger(t))
	require.NoError(t, err)
	return s
}

func TestStoreDrain_RoundTrip(t *testing.T) {
	s := newTestSpool(t)

	require.NoError(t, s.Store(Entry{Channel: "slack", Subject: "TPS Report: A", Body: "first"}))
	require.NoError(t, s.Store(Entry{Channel: "email", Subject: "TPS Report: B", Body: "second"}))

	drained, err := s.Drain()
	require.NoError(t, err)
	require.Len(t, drained, 2)

	// Chronological order, and StoredAt was stamped on the way in.
	require.Equal(t, "first", drained[0].Body)
	require.Equal(t, "second", drained[1].Body)
	require.False(t, drained[0].StoredAt.IsZero())

	// Drain removes the files; a second drain finds nothing.
	again, err := s.Drain()
	require.NoError(t, err)
	require.Empty(t, again)
}

func TestDrain_RemovesCorruptedFiles(t *testing.T) {
	s := newTestSpool(t)

	require.NoError(t, s.Store(Entry{Channel: "slack", Body: "good"}))
	bad := filepath.Join(s.dir, "00000000T000000.000000000.json")
	require.NoError(t, os.WriteFile(bad, []byte("{not json"), 0640))

	drained, err := s.Drain()
	require.NoError(t, err)
	require.Len(t, drained, 1)
	require.Equal(t, "good", drained[0].Body)

	_, err = os.Stat(bad)
	require.True(t, os.IsNotExist(err), "corrupted file must be removed")
}

func TestDrain_IgnoresNonJSONFiles(t *testing.T) {
	s := newTestSpool(t)

	require.NoError(t, os.WriteFile(filepath.Join(s.dir, "README.txt"), []byte("keep"), 0640))

	drained, err := s.Drain()
	require.NoError(t, err)
	require.Empty(t, drained)

	_, err = os.Stat(filepath.Join(s.dir, "README.txt"))
	require.NoError(t, err, "non-spool files are left alone")
}

func TestStore_DropsOldestWhenFull(t *testing.T) {
	dir := t.TempDir()
	// A zero-MB cap makes any existing content count as "full".
	s, err := New(dir, 0, zaptest.NewLogger(t))
	require.NoError(t, err)

	require.NoError(t, s.Store(Entry{Channel: "slack", Body: "oldest"}))
	require.NoError(t, s.Store(Entry{Channel: "slack", Body: "newest"}))

	drained, err := s.Drain()
	require.NoError(t, err)
	require.Len(t, drained, 1)
	require.Equal(t, "newest", drained[0].Body)
}

func TestNew_CreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "spool")

	_, err := New(dir, 10, zaptest.NewLogger(t))
	require.NoError(t, err)

	info, err := os.Stat(dir)
	require.NoError(t, err)
	require.True(t, info.IsDir())
}
