// Package engine implements the storage engine: the log-structured write and
// read paths, recovery of the in-memory index on open, and the synchronous
// compaction trigger. It owns every open file handle and is not safe for
// concurrent use — the store's contract is single-threaded, exclusive
// access. Folds index, compaction, and segment I/O coordination into a
// single component rather than a separate rotating storage layer, since this
// store has no size-based segment rotation to keep apart from the write path.
package engine

import (
	"bufio"
	"fmt"

	"github.com/ignitekv/ignite/internal/compaction"
	"github.com/ignitekv/ignite/internal/index"
	"github.com/ignitekv/ignite/internal/posio"
	"github.com/ignitekv/ignite/internal/record"
	"github.com/ignitekv/ignite/internal/seginfo"
	"github.com/ignitekv/ignite/pkg/filesys"
	"github.com/ignitekv/ignite/pkg/kverrors"
	"github.com/ignitekv/ignite/pkg/options"
	"go.uber.org/zap"
)

// Engine owns the directory, the open reader handles, the single active
// writer, and the in-memory index for one store.
type Engine struct {
	dir                 string
	currentID           uint64
	readers             map[uint64]*posio.Reader
	writer              *posio.Writer
	index               *index.Index
	uncompacted         int64
	compactionThreshold int64
	log                 *zap.SugaredLogger
}

// Open creates dir if absent, recovers the index from every existing
// segment in ascending id order, and starts a fresh active segment.
func Open(opts *options.Options) (*Engine, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop().Sugar()
	}

	if err := filesys.CreateDir(opts.DataDir, 0755, true); err != nil {
		return nil, kverrors.ClassifyDirectoryCreationError(err, opts.DataDir)
	}

	ids, err := seginfo.Discover(opts.DataDir)
	if err != nil {
		return nil, err
	}

	eng := &Engine{
		dir:                 opts.DataDir,
		readers:             make(map[uint64]*posio.Reader),
		index:               index.New(),
		compactionThreshold: opts.CompactionThreshold,
		log:                 log,
	}

	var maxID uint64
	for _, id := range ids {
		path := seginfo.Path(opts.DataDir, id)
		reader, err := posio.NewReader(path)
		if err != nil {
			eng.closeReaders()
			return nil, err
		}
		eng.readers[id] = reader

		dead, err := recoverSegment(eng.index, id, reader)
		if err != nil {
			eng.closeReaders()
			return nil, fmt.Errorf("recover segment %d: %w", id, err)
		}
		eng.uncompacted += dead

		if id > maxID {
			maxID = id
		}
	}

	eng.currentID = maxID + 1
	writer, err := posio.NewWriter(seginfo.Path(opts.DataDir, eng.currentID))
	if err != nil {
		eng.closeReaders()
		return nil, err
	}
	eng.writer = writer

	reader, err := posio.NewReader(seginfo.Path(opts.DataDir, eng.currentID))
	if err != nil {
		eng.closeReaders()
		writer.Close()
		return nil, err
	}
	eng.readers[eng.currentID] = reader

	log.Infow("store opened",
		"dir", opts.DataDir,
		"segments", len(ids),
		"activeSegment", eng.currentID,
		"liveKeys", eng.index.Len(),
		"uncompacted", eng.uncompacted,
	)

	return eng, nil
}

// recoverSegment decodes every record in the segment backed by reader,
// rebuilding idx and returning the dead-byte count the segment contributes.
func recoverSegment(idx *index.Index, segmentID uint64, reader *posio.Reader) (int64, error) {
	file := reader.File()

	var dead int64
	err := record.Stream(bufio.NewReader(file), 0, func(dr record.DecodedRecord) error {
		length := dr.Length()
		switch dr.Command.Kind {
		case record.KindSet:
			prev, had := idx.Put(dr.Command.Key, index.Position{
				SegmentID: segmentID,
				Offset:    dr.Start,
				Length:    length,
			})
			if had {
				dead += prev.Length
			}
		case record.KindRemove:
			if prev, had := idx.Delete(dr.Command.Key); had {
				dead += prev.Length
			}
			dead += length
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	if err := reader.SyncPos(); err != nil {
		return dead, err
	}
	return dead, nil
}

// Get resolves key through the index and returns its value. found is false
// if key is absent from the index — this is not an error.
func (e *Engine) Get(key string) (value string, found bool, err error) {
	pos, ok := e.index.Get(key)
	if !ok {
		return "", false, nil
	}

	reader, ok := e.readers[pos.SegmentID]
	if !ok {
		return "", false, kverrors.NewStorageError(
			nil, kverrors.ErrorCodeIO, "no open reader for indexed segment",
		).WithSegmentID(pos.SegmentID)
	}

	buf, err := reader.ReadAt(pos.Offset, pos.Length)
	if err != nil {
		return "", false, err
	}

	cmd, err := record.Decode(buf)
	if err != nil {
		return "", false, err
	}
	if cmd.Kind != record.KindSet {
		return "", false, fmt.Errorf("%w: segment %d offset %d", kverrors.ErrUnexpectedCommandType, pos.SegmentID, pos.Offset)
	}
	return cmd.Value, true, nil
}

// Set appends a Set(key, value) record to the active segment, updates the
// index, and triggers compaction if the uncompacted byte count now exceeds
// the configured threshold.
func (e *Engine) Set(key, value string) error {
	encoded, err := record.Encode(record.Set(key, value))
	if err != nil {
		return err
	}

	offset, length, err := e.writer.Append(encoded)
	if err != nil {
		return err
	}
	if err := e.writer.Flush(); err != nil {
		return err
	}

	prev, had := e.index.Put(key, index.Position{SegmentID: e.currentID, Offset: offset, Length: length})
	if had {
		e.uncompacted += prev.Length
	}

	if e.uncompacted > e.compactionThreshold {
		if err := e.Compact(); err != nil {
			return err
		}
	}
	return nil
}

// Remove deletes key from the store. It fails with kverrors.ErrKeyNotFound
// if key is not currently live.
func (e *Engine) Remove(key string) error {
	prev, existed := e.index.Get(key)
	if !existed {
		return fmt.Errorf("%w: %q", kverrors.ErrKeyNotFound, key)
	}

	encoded, err := record.Encode(record.Remove(key))
	if err != nil {
		return err
	}
	if _, _, err := e.writer.Append(encoded); err != nil {
		return err
	}
	if err := e.writer.Flush(); err != nil {
		return err
	}

	e.index.Delete(key)
	e.uncompacted += prev.Length
	return nil
}

// Compact runs the synchronous compaction procedure: every live index entry
// is drained into a fresh segment and every segment older than it is
// deleted. It is invoked automatically by Set once uncompacted crosses the
// configured threshold, and is also exposed for callers that want to force
// compaction outside that trigger.
func (e *Engine) Compact() error {
	oldWriter := e.writer
	oldCurrentID := e.currentID

	result, err := compaction.Run(e.dir, e.index, e.readers, e.currentID, e.log)
	if err != nil {
		return err
	}

	if err := oldWriter.Close(); err != nil {
		e.log.Warnw("failed to close superseded active segment writer", "segmentId", oldCurrentID, "error", err)
	}

	e.writer = result.NewWriter
	e.currentID = result.NewCurrentID
	e.uncompacted = 0
	return nil
}

// Close flushes and closes every open file handle.
func (e *Engine) Close() error {
	var firstErr error
	if err := e.writer.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	e.closeReaders()
	return firstErr
}

func (e *Engine) closeReaders() {
	for id, r := range e.readers {
		if err := r.Close(); err != nil {
			e.log.Warnw("failed to close segment reader", "segmentId", id, "error", err)
		}
	}
}

