// Package options provides the functional-options configuration surface for
// opening a store: which directory holds its segment files, at what
// accumulated dead-byte count compaction fires, and where the store's
// structured logger sends its output. Narrowed to the knobs this store's
// engine actually consults — segment rotation by size and a background
// compaction interval don't apply here, since compaction is triggered
// synchronously by the uncompacted-byte threshold instead.
package options

import (
	"strings"

	"github.com/ignitekv/ignite/pkg/kverrors"
	"go.uber.org/zap"
)

// Options holds the configuration for an opened store.
type Options struct {
	// DataDir is the directory holding the store's segment files. It is
	// created, along with any missing ancestors, if absent.
	DataDir string `json:"dataDir"`

	// CompactionThreshold is the uncompacted-byte count that triggers a
	// synchronous compaction at the end of the set operation that crosses
	// it.
	//
	// Default: 1 MiB (1,048,576 bytes).
	CompactionThreshold int64 `json:"compactionThreshold"`

	// Logger receives structured diagnostics for recovery, compaction, and
	// segment lifecycle events.
	Logger *zap.SugaredLogger `json:"-"`
}

// OptionFunc modifies an Options value under construction.
type OptionFunc func(*Options)

// WithDefaultOptions applies the full set of default values. Typically
// passed first, before any overriding OptionFuncs.
func WithDefaultOptions() OptionFunc {
	return func(o *Options) {
		defaults := NewDefaultOptions()
		o.DataDir = defaults.DataDir
		o.CompactionThreshold = defaults.CompactionThreshold
		o.Logger = defaults.Logger
	}
}

// WithDataDir sets the store's directory. Blank values (after trimming) are
// ignored, leaving the prior value in place.
func WithDataDir(directory string) OptionFunc {
	return func(o *Options) {
		directory = strings.TrimSpace(directory)
		if directory != "" {
			o.DataDir = directory
		}
	}
}

// WithCompactionThreshold sets the uncompacted-byte count that triggers
// compaction. Non-positive values are ignored.
func WithCompactionThreshold(bytes int64) OptionFunc {
	return func(o *Options) {
		if bytes > 0 {
			o.CompactionThreshold = bytes
		}
	}
}

// WithLogger sets the logger the store reports diagnostics through. A nil
// logger is ignored.
func WithLogger(logger *zap.SugaredLogger) OptionFunc {
	return func(o *Options) {
		if logger != nil {
			o.Logger = logger
		}
	}
}

// Validate checks that o is usable to open a store, returning a
// *kverrors.ValidationError describing the first problem found.
func (o *Options) Validate() error {
	if strings.TrimSpace(o.DataDir) == "" {
		return kverrors.NewRequiredFieldError("DataDir")
	}
	if o.CompactionThreshold <= 0 {
		return kverrors.NewFieldRangeError("CompactionThreshold", o.CompactionThreshold, 1, nil)
	}
	return nil
}
