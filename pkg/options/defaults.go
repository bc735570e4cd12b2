package options

import "github.com/ignitekv/ignite/pkg/logger"

const (
	// DefaultDataDir is used only by tests and examples that don't set an
	// explicit directory; the CLI always overrides this with the current
	// working directory.
	DefaultDataDir = "."

	// DefaultCompactionThreshold is 1 MiB of accumulated dead bytes.
	DefaultCompactionThreshold int64 = 1 << 20
)

// NewDefaultOptions returns the store's default configuration.
func NewDefaultOptions() Options {
	return Options{
		DataDir:             DefaultDataDir,
		CompactionThreshold: DefaultCompactionThreshold,
		Logger:              logger.New("ignitekv"),
	}
}
