package index

import (
	"bytes"
	"encoding/gob"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zphrs/twizzler-object-store/pkg/types"
)

func encodeRawFile(t *testing.T, f metadataFile) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, gob.NewEncoder(&buf).Encode(f))
	return buf.Bytes()
}

func encodeRawEntries(t *testing.T, entries []Entry) []byte {
	t.Helper()
	return encodeRawFile(t, metadataFile{Version: metadataVersion, Entries: entries})
}

func TestMetadata_RoundTrip(t *testing.T) {
	t.Parallel()

	x := NewRangeIndex()
	mustInsert(t, x, entry(0, 10), entry(20, 35), entry(100, 101))

	data, err := EncodeMetadata(x)
	require.NoError(t, err)

	got, err := DecodeMetadata(data)
	require.NoError(t, err)
	assert.Equal(t, x.Entries(), got.Entries())
}

func TestMetadata_RoundTripEmpty(t *testing.T) {
	t.Parallel()

	data, err := EncodeMetadata(NewRangeIndex())
	require.NoError(t, err)

	got, err := DecodeMetadata(data)
	require.NoError(t, err)
	assert.Zero(t, got.Len())
}

func TestDecodeMetadata_Garbage(t *testing.T) {
	t.Parallel()

	for _, data := range [][]byte{nil, {}, []byte("not gob"), {0xff, 0x00, 0x13}} {
		_, err := DecodeMetadata(data)
		require.Error(t, err)
		assert.True(t, errors.Is(err, types.ErrCorrupted))
	}
}

func TestDecodeMetadata_InvariantViolation(t *testing.T) {
	t.Parallel()

	// Encode a file whose entries overlap; decoding must refuse it even
	// though the gob itself is valid.
	x := NewRangeIndex()
	mustInsert(t, x, entry(0, 10))
	data, err := EncodeMetadata(x)
	require.NoError(t, err)

	good, err := DecodeMetadata(data)
	require.NoError(t, err)
	require.Equal(t, 1, good.Len())

	bad := encodeRawEntries(t, []Entry{entry(0, 10), entry(5, 15)})
	_, err = DecodeMetadata(bad)
	require.Error(t, err)
	assert.True(t, errors.Is(err, types.ErrCorrupted))
}

func TestDecodeMetadata_UnknownVersion(t *testing.T) {
	t.Parallel()

	data := encodeRawFile(t, metadataFile{Version: 99})
	_, err := DecodeMetadata(data)
	require.Error(t, err)
	assert.True(t, errors.Is(err, types.ErrCorrupted))
}
