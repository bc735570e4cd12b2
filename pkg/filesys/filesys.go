// Package filesys provides small file system utilities shared across the
// store's internal packages: directory creation, removal, and existence
// checks. Kept deliberately narrow: internal/engine calls CreateDir, while
// DeleteDir and Exists are currently exercised only by this package's tests.
package filesys

import (
	"errors"
	"fmt"
	"os"
)

var (
	ErrIsNotDir = errors.New("path isn't a directory")
)

// CreateDir creates a directory at the specified path with the given permissions.
//
// If the directory already exists:
//   - If 'force' is true, it proceeds without error.
//   - If 'force' is false, it returns an error.
//
// It also returns an error if the existing path is a file (not a directory).
func CreateDir(dirPath string, permission os.FileMode, force bool) error {
	stat, err := os.Stat(dirPath)
	if err == nil {
		if !stat.IsDir() {
			return ErrIsNotDir
		}
		if !force {
			return fmt.Errorf("directory already exists: %s", dirPath)
		}
	} else if !os.IsNotExist(err) {
		return err
	}

	if err := os.MkdirAll(dirPath, permission); err != nil {
		return err
	}

	return os.Chmod(dirPath, permission)
}

// DeleteDir deletes a directory and all its contents recursively.
func DeleteDir(path string) error {
	return os.RemoveAll(path)
}

// Exists checks if a file or directory at the given `file` path exists.
func Exists(file string) (bool, error) {
	_, err := os.Stat(file)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	return false, err
}
