// Package seginfo names, parses, and discovers segment files on disk.
// Segment files are named "<id>.log" where <id> is a decimal, unsigned
// 64-bit integer with no leading zeros (other than the single digit "0").
// No timestamp or prefix is carried in the name — just the bare id the
// store's on-disk contract requires.
package seginfo

import (
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/ignitekv/ignite/pkg/kverrors"
)

const extension = ".log"

// FileName returns the on-disk file name for segment id.
func FileName(id uint64) string {
	return strconv.FormatUint(id, 10) + extension
}

// Path returns the full path of segment id within dir.
func Path(dir string, id uint64) string {
	return filepath.Join(dir, FileName(id))
}

// ParseID parses a segment file's base name into its id. It returns ok=false
// for names that aren't a bare "<digits>.log" with no leading zeros (other
// than the single digit "0"), so such files are silently ignored by
// discovery rather than treated as corrupt.
func ParseID(name string) (id uint64, ok bool) {
	stem, found := strings.CutSuffix(name, extension)
	if !found || stem == "" {
		return 0, false
	}
	if stem != "0" && strings.HasPrefix(stem, "0") {
		return 0, false
	}
	for _, r := range stem {
		if r < '0' || r > '9' {
			return 0, false
		}
	}
	parsed, err := strconv.ParseUint(stem, 10, 64)
	if err != nil {
		return 0, false
	}
	return parsed, true
}

// Discover enumerates dir, returning the ids of every valid segment file in
// ascending order. Entries that aren't regular files, or whose name doesn't
// parse as a segment id, are ignored — unrelated files are expected to share
// the directory.
func Discover(dir string) ([]uint64, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, kverrors.NewStorageError(err, kverrors.ErrorCodeIO, "failed to enumerate store directory").
			WithPath(dir)
	}

	var ids []uint64
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			return nil, kverrors.NewStorageError(err, kverrors.ErrorCodeIO, "failed to stat directory entry").
				WithPath(filepath.Join(dir, entry.Name()))
		}
		if !info.Mode().IsRegular() {
			continue
		}
		id, ok := ParseID(entry.Name())
		if !ok {
			continue
		}
		ids = append(ids, id)
	}

	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}
