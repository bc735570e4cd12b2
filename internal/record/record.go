// Package record defines the on-disk command record — the self-delimiting
// unit of persistence written to every segment — and the encoder/decoder
// pair that turns a stream of bytes into a sequence of such records.
//
// The wire shape is pinned by the store's external contract and must be
// preserved bit-for-bit across implementations:
//
//	{"Set":{"key":"<key>","value":"<value>"}}
//	{"Remove":{"key":"<key>"}}
//
// Records are concatenated back-to-back with no separators or framing, so
// encoding and decoding both go through encoding/json rather than a
// hand-rolled format — json.Decoder already supports decoding consecutive
// objects from a stream and reports each object's end offset, which is
// exactly what recovery and compaction need.
package record

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/ignitekv/ignite/pkg/kverrors"
)

// Kind distinguishes the two command shapes.
type Kind int

const (
	// KindSet marks a record recording that a key now maps to a value.
	KindSet Kind = iota
	// KindRemove marks a record recording that a key was deleted.
	KindRemove
)

// Command is the decoded form of one record: either a Set(key, value) or a
// Remove(key). Value is meaningless when Kind is KindRemove.
type Command struct {
	Kind  Kind
	Key   string
	Value string
}

// Set constructs a Set(key, value) command.
func Set(key, value string) Command {
	return Command{Kind: KindSet, Key: key, Value: value}
}

// Remove constructs a Remove(key) command.
func Remove(key string) Command {
	return Command{Kind: KindRemove, Key: key}
}

// wireSet and wireRemove mirror the exact JSON shapes above. Keeping them as
// separate types (rather than a single struct with omitempty) guarantees the
// Remove encoding never emits a "value" field.
type wireSet struct {
	Set struct {
		Key   string `json:"key"`
		Value string `json:"value"`
	} `json:"Set"`
}

type wireRemove struct {
	Remove struct {
		Key string `json:"key"`
	} `json:"Remove"`
}

// Encode serializes a command to its exact wire form. The returned bytes
// contain no trailing newline or other separator — segments are a bare
// concatenation of these objects.
func Encode(cmd Command) ([]byte, error) {
	switch cmd.Kind {
	case KindSet:
		var w wireSet
		w.Set.Key = cmd.Key
		w.Set.Value = cmd.Value
		b, err := json.Marshal(w)
		if err != nil {
			return nil, kverrors.NewBaseError(err, kverrors.ErrorCodeSerde, "failed to encode Set record").
				WithDetail("key", cmd.Key)
		}
		return b, nil
	case KindRemove:
		var w wireRemove
		w.Remove.Key = cmd.Key
		b, err := json.Marshal(w)
		if err != nil {
			return nil, kverrors.NewBaseError(err, kverrors.ErrorCodeSerde, "failed to encode Remove record").
				WithDetail("key", cmd.Key)
		}
		return b, nil
	default:
		return nil, kverrors.NewBaseError(nil, kverrors.ErrorCodeSerde, "unknown command kind").
			WithDetail("kind", int(cmd.Kind))
	}
}

// wireEnvelope captures which of the two shapes a decoded object carries
// without committing to either concrete payload up front.
type wireEnvelope struct {
	Set    *struct {
		Key   string `json:"key"`
		Value string `json:"value"`
	} `json:"Set,omitempty"`
	Remove *struct {
		Key string `json:"key"`
	} `json:"Remove,omitempty"`
}

// Decode parses exactly one command record from b. b must contain exactly
// one encoded object; trailing bytes are an error. This is used by the read
// path, which already knows the record's exact length from the index.
func Decode(b []byte) (Command, error) {
	var env wireEnvelope
	dec := json.NewDecoder(bytes.NewReader(b))
	if err := dec.Decode(&env); err != nil {
		return Command{}, kverrors.NewBaseError(err, kverrors.ErrorCodeSerde, "failed to decode command record")
	}
	if dec.InputOffset() != int64(len(b)) {
		return Command{}, kverrors.NewBaseError(nil, kverrors.ErrorCodeSerde, "trailing bytes after command record")
	}
	return commandFromEnvelope(env)
}

func commandFromEnvelope(env wireEnvelope) (Command, error) {
	switch {
	case env.Set != nil && env.Remove == nil:
		return Command{Kind: KindSet, Key: env.Set.Key, Value: env.Set.Value}, nil
	case env.Remove != nil && env.Set == nil:
		return Command{Kind: KindRemove, Key: env.Remove.Key}, nil
	default:
		return Command{}, kverrors.NewBaseError(
			nil, kverrors.ErrorCodeSerde, "record is neither Set nor Remove",
		)
	}
}

// DecodedRecord pairs a decoded command with the byte range it occupied in
// the stream it was read from: [Start, End).
type DecodedRecord struct {
	Command Command
	Start   int64
	End     int64
}

// Length returns the encoded byte length of the record.
func (r DecodedRecord) Length() int64 {
	return r.End - r.Start
}

// Stream decodes every back-to-back command record in r, starting from
// whatever offset r is currently positioned at, until EOF. offsetBase is
// added to every reported Start/End so callers reading from a non-zero file
// position get absolute offsets. visit is called once per decoded record, in
// stream order; a non-nil return from visit stops iteration and is returned
// to the caller of Stream.
func Stream(r io.Reader, offsetBase int64, visit func(DecodedRecord) error) error {
	dec := json.NewDecoder(r)
	var prevOffset int64
	for {
		start := offsetBase + prevOffset
		var env wireEnvelope
		if err := dec.Decode(&env); err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return kverrors.NewBaseError(err, kverrors.ErrorCodeSerde, "failed to decode command record").
				WithDetail("offset", start)
		}
		end := offsetBase + dec.InputOffset()
		prevOffset = dec.InputOffset()

		cmd, err := commandFromEnvelope(env)
		if err != nil {
			return err
		}
		if err := visit(DecodedRecord{Command: cmd, Start: start, End: end}); err != nil {
			return err
		}
	}
}

// String implements fmt.Stringer for diagnostic logging.
func (c Command) String() string {
	switch c.Kind {
	case KindSet:
		return fmt.Sprintf("Set(%q, %q)", c.Key, c.Value)
	case KindRemove:
		return fmt.Sprintf("Remove(%q)", c.Key)
	default:
		return "Command(unknown)"
	}
}
