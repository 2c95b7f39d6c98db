package binaryport_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jacek-casper/casper-node/binaryport"
	"github.com/jacek-casper/casper-node/bytesrepr"
)

func TestRawBytesSpecConstructors(t *testing.T) {
	legacy := binaryport.NewLegacyRawBytes([]byte{1, 2, 3})
	assert.True(t, legacy.IsLegacy())
	assert.Equal(t, []byte{1, 2, 3}, legacy.RawBytes())

	current := binaryport.NewCurrentRawBytes([]byte{4, 5})
	assert.False(t, current.IsLegacy())
	assert.Equal(t, []byte{4, 5}, current.RawBytes())
}

// TestRawBytesSpecCopiesInput ensures the envelope does not alias caller
// buffers that may be reused.
func TestRawBytesSpecCopiesInput(t *testing.T) {
	buf := []byte{1, 2, 3}
	spec := binaryport.NewCurrentRawBytes(buf)
	buf[0] = 0xff
	assert.Equal(t, []byte{1, 2, 3}, spec.RawBytes())
}

func TestRawBytesSpecRoundTrip(t *testing.T) {
	for _, spec := range []binaryport.RawBytesSpec{
		binaryport.NewLegacyRawBytes([]byte{0xde, 0xad}),
		binaryport.NewCurrentRawBytes([]byte{0xbe, 0xef}),
		binaryport.NewCurrentRawBytes(nil),
	} {
		encoded := bytesrepr.ToBytes(spec)
		require.Len(t, encoded, spec.SerializedLength())

		decoded, rem, err := binaryport.ReadRawBytesSpec(encoded)
		require.NoError(t, err)
		require.Empty(t, rem)
		assert.Equal(t, spec.IsLegacy(), decoded.IsLegacy())
		assert.Equal(t, spec.RawBytes(), decoded.RawBytes())
	}
}

func TestReadRawBytesSpecRejectsTruncatedInput(t *testing.T) {
	// Length prefix promises four bytes but only two follow.
	_, _, err := binaryport.ReadRawBytesSpec([]byte{0x00, 0x04, 0x00, 0x00, 0x00, 0xaa, 0xbb})
	require.ErrorIs(t, err, bytesrepr.ErrEarlyEndOfStream)
}
