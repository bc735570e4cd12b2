package seginfo

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseIDAcceptsBareDecimal(t *testing.T) {
	id, ok := ParseID("42.log")
	require.True(t, ok)
	require.Equal(t, uint64(42), id)
}

func TestParseIDAcceptsZero(t *testing.T) {
	id, ok := ParseID("0.log")
	require.True(t, ok)
	require.Equal(t, uint64(0), id)
}

func TestParseIDRejectsLeadingZeros(t *testing.T) {
	_, ok := ParseID("007.log")
	require.False(t, ok)
}

func TestParseIDRejectsNonNumericStem(t *testing.T) {
	_, ok := ParseID("segment.log")
	require.False(t, ok)
}

func TestParseIDRejectsWrongExtension(t *testing.T) {
	_, ok := ParseID("42.txt")
	require.False(t, ok)
}

func TestFileNameAndPath(t *testing.T) {
	require.Equal(t, "7.log", FileName(7))
	require.Equal(t, filepath.Join("/data", "7.log"), Path("/data", 7))
}

func TestDiscoverIgnoresUnrelatedFilesAndSortsAscending(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"3.log", "1.log", "10.log", "notes.txt", "007.log"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), nil, 0644))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "2.log"), 0755))

	ids, err := Discover(dir)
	require.NoError(t, err)
	require.Equal(t, []uint64{1, 3, 10}, ids)
}

func TestDiscoverEmptyDirectory(t *testing.T) {
	ids, err := Discover(t.TempDir())
	require.NoError(t, err)
	require.Empty(t, ids)
}
