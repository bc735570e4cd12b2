package record

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEncodeSetExactWireShape(t *testing.T) {
	b, err := Encode(Set("a", "1"))
	require.NoError(t, err)
	require.Equal(t, `{"Set":{"key":"a","value":"1"}}`, string(b))
}

func TestEncodeRemoveExactWireShape(t *testing.T) {
	b, err := Encode(Remove("a"))
	require.NoError(t, err)
	require.Equal(t, `{"Remove":{"key":"a"}}`, string(b))
}

func TestDecodeRoundTrip(t *testing.T) {
	for _, cmd := range []Command{Set("key", "value"), Remove("key")} {
		b, err := Encode(cmd)
		require.NoError(t, err)

		decoded, err := Decode(b)
		require.NoError(t, err)
		require.Equal(t, cmd, decoded)
	}
}

func TestStreamDecodesBackToBackRecords(t *testing.T) {
	var buf bytes.Buffer
	cmds := []Command{Set("a", "1"), Set("a", "2"), Remove("a")}
	for _, cmd := range cmds {
		b, err := Encode(cmd)
		require.NoError(t, err)
		buf.Write(b)
	}

	var got []Command
	var offsets []int64
	err := Stream(bytes.NewReader(buf.Bytes()), 0, func(dr DecodedRecord) error {
		got = append(got, dr.Command)
		offsets = append(offsets, dr.Start, dr.End)
		return nil
	})
	require.NoError(t, err)
	require.Equal(t, cmds, got)

	// Records are contiguous: each record's end is the next record's start.
	require.Equal(t, offsets[1], offsets[2])
	require.Equal(t, offsets[3], offsets[4])

	// Re-slicing the original buffer at the reported offsets reproduces each
	// record's exact encoded bytes.
	full := buf.Bytes()
	for i, cmd := range cmds {
		start, end := offsets[2*i], offsets[2*i+1]
		decoded, err := Decode(full[start:end])
		require.NoError(t, err)
		require.Equal(t, cmd, decoded)
	}
}

func TestStreamOffsetBase(t *testing.T) {
	b, err := Encode(Set("k", "v"))
	require.NoError(t, err)

	var got DecodedRecord
	err = Stream(bytes.NewReader(b), 100, func(dr DecodedRecord) error {
		got = dr
		return nil
	})
	require.NoError(t, err)
	require.Equal(t, int64(100), got.Start)
	require.Equal(t, int64(100+len(b)), got.End)
}

func TestDecodeRejectsMalformedRecord(t *testing.T) {
	_, err := Decode([]byte(`{"Neither":{}}`))
	require.Error(t, err)
}

func TestStreamSurfacesTruncatedRecordAsError(t *testing.T) {
	b, err := Encode(Set("a", "1"))
	require.NoError(t, err)

	truncated := b[:len(b)-5]
	err = Stream(bytes.NewReader(truncated), 0, func(dr DecodedRecord) error {
		t.Fatalf("unexpected record decoded from truncated input: %+v", dr)
		return nil
	})
	require.Error(t, err)
}
