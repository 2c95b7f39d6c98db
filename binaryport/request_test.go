package binaryport_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jacek-casper/casper-node/binaryport"
	"github.com/jacek-casper/casper-node/bytesrepr"
	"github.com/jacek-casper/casper-node/types"
	"github.com/jacek-casper/casper-node/utils/unittest"
)

func TestGetRequestRoundTrip(t *testing.T) {
	hash := unittest.BlockHashFixture()
	req := binaryport.NewGetRequest(binaryport.DBBlockHeader, hash[:])

	encoded := bytesrepr.ToBytes(req)
	require.Len(t, encoded, req.SerializedLength())

	decoded, rem, err := binaryport.ReadRequest(encoded)
	require.NoError(t, err)
	require.Empty(t, rem)

	get, ok := decoded.AsGet()
	require.True(t, ok)
	assert.Equal(t, binaryport.DBBlockHeader, get.DB)
	assert.Equal(t, hash[:], get.Key)
}

// TestGetRequestGoldenBytes pins the exact layout: command tag, database
// tag, then the length-prefixed key, all little-endian.
func TestGetRequestGoldenBytes(t *testing.T) {
	req := binaryport.NewGetRequest(binaryport.DBTransaction, []byte{0xaa, 0xbb})
	expected := []byte{
		0x00,                   // Get command
		0x02,                   // transaction database
		0x02, 0x00, 0x00, 0x00, // key length
		0xaa, 0xbb,
	}
	assert.Equal(t, expected, bytesrepr.ToBytes(req))
}

func TestInfoRequestRoundTrip(t *testing.T) {
	req := binaryport.NewInfoRequest(binaryport.BlockHeight2HashRequest{Height: 99})

	encoded := bytesrepr.ToBytes(req)
	require.Len(t, encoded, req.SerializedLength())
	assert.Equal(t, uint8(1), encoded[0])

	decoded, rem, err := binaryport.ReadRequest(encoded)
	require.NoError(t, err)
	require.Empty(t, rem)

	info, ok := decoded.AsInfo()
	require.True(t, ok)
	require.Equal(t, binaryport.BlockHeight2HashRequest{Height: 99}, info)
}

func TestTrySpeculativeExecRoundTrip(t *testing.T) {
	txn := types.NewTransactionFromDeploy(unittest.DeployFixture())
	req := binaryport.NewTrySpeculativeExecRequest(txn)

	encoded := bytesrepr.ToBytes(req)
	require.Len(t, encoded, req.SerializedLength())
	assert.Equal(t, uint8(2), encoded[0])

	decoded, rem, err := binaryport.ReadRequest(encoded)
	require.NoError(t, err)
	require.Empty(t, rem)

	got, ok := decoded.AsTrySpeculativeExec()
	require.True(t, ok)
	require.Equal(t, txn, got)
}

func TestReadRequestRejectsUnknownCommand(t *testing.T) {
	_, _, err := binaryport.ReadRequest([]byte{0x07})
	require.ErrorIs(t, err, bytesrepr.ErrFormatting)
}

func TestReadRequestRejectsUnknownDatabase(t *testing.T) {
	_, _, err := binaryport.ReadRequest([]byte{0x00, 0x2a, 0x00, 0x00, 0x00, 0x00})
	require.ErrorIs(t, err, bytesrepr.ErrFormatting)
}

func TestResponseHeaderRoundTrip(t *testing.T) {
	header := binaryport.ResponseHeader{
		ProtocolVersion: types.ProtocolVersion{Major: 2, Minor: 0, Patch: 1},
		ErrorCode:       binaryport.ErrorCodeNotFound,
	}

	encoded := bytesrepr.ToBytes(header)
	require.Len(t, encoded, header.SerializedLength())

	decoded, rem, err := binaryport.ReadResponseHeader(encoded)
	require.NoError(t, err)
	require.Empty(t, rem)
	require.Equal(t, header, decoded)
}
