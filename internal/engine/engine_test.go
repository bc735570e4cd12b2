package engine

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/ignitekv/ignite/internal/index"
	"github.com/ignitekv/ignite/internal/record"
	"github.com/ignitekv/ignite/pkg/kverrors"
	"github.com/ignitekv/ignite/pkg/logger"
	"github.com/ignitekv/ignite/pkg/options"
	"github.com/stretchr/testify/require"
)

func openTestEngine(t *testing.T, threshold int64) *Engine {
	t.Helper()
	opts := &options.Options{
		DataDir:             t.TempDir(),
		CompactionThreshold: threshold,
		Logger:              logger.New("test"),
	}
	eng, err := Open(opts)
	require.NoError(t, err)
	t.Cleanup(func() { eng.Close() })
	return eng
}

func defaultThreshold() int64 {
	return 1 << 20
}

func TestReadAfterWrite(t *testing.T) {
	eng := openTestEngine(t, defaultThreshold())
	require.NoError(t, eng.Set("a", "1"))

	v, found, err := eng.Get("a")
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, "1", v)

	_, found, err = eng.Get("b")
	require.NoError(t, err)
	require.False(t, found)
}

func TestOverwrite(t *testing.T) {
	eng := openTestEngine(t, defaultThreshold())
	require.NoError(t, eng.Set("a", "1"))
	require.NoError(t, eng.Set("a", "2"))
	require.NoError(t, eng.Set("a", "3"))

	v, found, err := eng.Get("a")
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, "3", v)
}

func TestRemove(t *testing.T) {
	eng := openTestEngine(t, defaultThreshold())
	require.NoError(t, eng.Set("k", "v"))
	require.NoError(t, eng.Remove("k"))

	_, found, err := eng.Get("k")
	require.NoError(t, err)
	require.False(t, found)

	err = eng.Remove("k")
	require.Error(t, err)
	require.True(t, errors.Is(err, kverrors.ErrKeyNotFound))
}

func TestRemoveAbsentKey(t *testing.T) {
	eng := openTestEngine(t, defaultThreshold())
	err := eng.Remove("never-set")
	require.Error(t, err)
	require.True(t, errors.Is(err, kverrors.ErrKeyNotFound))
}

func TestDurabilityAcrossReopen(t *testing.T) {
	dir := t.TempDir()
	opts := &options.Options{DataDir: dir, CompactionThreshold: defaultThreshold(), Logger: logger.New("test")}

	eng, err := Open(opts)
	require.NoError(t, err)
	require.NoError(t, eng.Set("a", "1"))
	require.NoError(t, eng.Set("b", "2"))
	require.NoError(t, eng.Close())

	reopened, err := Open(opts)
	require.NoError(t, err)
	defer reopened.Close()

	v, found, err := reopened.Get("a")
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, "1", v)

	v, found, err = reopened.Get("b")
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, "2", v)
}

func TestDurabilityWithRemoveAcrossReopen(t *testing.T) {
	dir := t.TempDir()
	opts := &options.Options{DataDir: dir, CompactionThreshold: defaultThreshold(), Logger: logger.New("test")}

	eng, err := Open(opts)
	require.NoError(t, err)
	require.NoError(t, eng.Set("a", "1"))
	require.NoError(t, eng.Set("b", "2"))
	require.NoError(t, eng.Remove("a"))
	require.NoError(t, eng.Close())

	reopened, err := Open(opts)
	require.NoError(t, err)
	defer reopened.Close()

	_, found, err := reopened.Get("a")
	require.NoError(t, err)
	require.False(t, found)

	v, found, err := reopened.Get("b")
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, "2", v)
}

func TestSegmentIdsMonotonicallyIncrease(t *testing.T) {
	dir := t.TempDir()
	opts := &options.Options{DataDir: dir, CompactionThreshold: 1024, Logger: logger.New("test")}

	eng, err := Open(opts)
	require.NoError(t, err)
	firstID := eng.currentID

	big := make([]byte, 512)
	for i := range big {
		big[i] = 'x'
	}
	for i := 0; i < 50; i++ {
		require.NoError(t, eng.Set(fmt.Sprintf("k%d", i%5), string(big)))
	}
	require.Greater(t, eng.currentID, firstID)
	require.NoError(t, eng.Close())
}

func TestCompactionPreservesSemantics(t *testing.T) {
	dir := t.TempDir()
	// A tiny threshold forces compaction on nearly every write.
	opts := &options.Options{DataDir: dir, CompactionThreshold: 64, Logger: logger.New("test")}
	eng, err := Open(opts)
	require.NoError(t, err)
	defer eng.Close()

	reference := map[string]string{}
	for i := 0; i < 200; i++ {
		key := fmt.Sprintf("key-%d", i%20)
		value := fmt.Sprintf("value-%d", i)
		require.NoError(t, eng.Set(key, value))
		reference[key] = value
		if i%7 == 0 {
			require.NoError(t, eng.Remove(key))
			delete(reference, key)
		}
	}

	for i := 0; i < 20; i++ {
		key := fmt.Sprintf("key-%d", i)
		want, ok := reference[key]
		v, found, err := eng.Get(key)
		require.NoError(t, err)
		require.Equal(t, ok, found)
		if ok {
			require.Equal(t, want, v)
		}
	}
}

func TestDiskShrinksUnderRepeatedOverwrite(t *testing.T) {
	dir := t.TempDir()
	opts := &options.Options{DataDir: dir, CompactionThreshold: 1 << 12, Logger: logger.New("test")}
	eng, err := Open(opts)
	require.NoError(t, err)
	defer eng.Close()

	value := make([]byte, 200)
	for i := range value {
		value[i] = 'v'
	}

	const keys = 10
	const overwrites = 50
	for round := 0; round < overwrites; round++ {
		for k := 0; k < keys; k++ {
			require.NoError(t, eng.Set(fmt.Sprintf("k%d", k), string(value)))
		}
	}

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	var total int64
	for _, e := range entries {
		info, err := e.Info()
		require.NoError(t, err)
		total += info.Size()
	}

	// keys*overwrites records would occupy far more than a post-compaction
	// store holding only the live keys plus at most one in-flight segment.
	liveRecordUpperBound := int64(keys) * int64(len(value)+64)
	require.Less(t, total, liveRecordUpperBound*3)
}

func TestReopenAfterTruncatedRecordFails(t *testing.T) {
	dir := t.TempDir()
	opts := &options.Options{DataDir: dir, CompactionThreshold: defaultThreshold(), Logger: logger.New("test")}

	eng, err := Open(opts)
	require.NoError(t, err)
	require.NoError(t, eng.Set("a", "1"))
	require.NoError(t, eng.Set("a", "2"))
	require.NoError(t, eng.Close())

	segPath := filepath.Join(dir, fmt.Sprintf("%d.log", eng.currentID))
	data, err := os.ReadFile(segPath)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(segPath, data[:len(data)-5], 0644))

	_, err = Open(opts)
	require.Error(t, err)
}

func TestGetOnCorruptedIndexEntryIsUnexpectedCommandType(t *testing.T) {
	eng := openTestEngine(t, defaultThreshold())

	encoded, err := record.Encode(record.Remove("ghost"))
	require.NoError(t, err)
	offset, length, err := eng.writer.Append(encoded)
	require.NoError(t, err)
	require.NoError(t, eng.writer.Flush())

	// Forge an index entry pointing at the Remove record just written — Get
	// must treat this as store corruption, since every live index entry is
	// supposed to reference a Set record.
	eng.index.Put("ghost", index.Position{SegmentID: eng.currentID, Offset: offset, Length: length})

	_, _, err = eng.Get("ghost")
	require.Error(t, err)
	require.True(t, errors.Is(err, kverrors.ErrUnexpectedCommandType))
}
