package binaryport_test

import (
	"testing"

	"github.com/fxamacker/cbor/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jacek-casper/casper-node/binaryport"
	"github.com/jacek-casper/casper-node/bytesrepr"
	"github.com/jacek-casper/casper-node/types"
	"github.com/jacek-casper/casper-node/utils/unittest"
)

func TestTransactionFromStoredBytesCurrent(t *testing.T) {
	txn := types.NewTransactionFromV1(unittest.TransactionV1Fixture())
	spec := binaryport.NewCurrentRawBytes(bytesrepr.ToBytes(txn))

	decoded, err := binaryport.TransactionFromStoredBytes(spec)
	require.NoError(t, err)
	require.Equal(t, txn, decoded)
}

// TestTransactionFromStoredBytesLegacy feeds a CBOR-encoded deploy through
// the legacy branch. Legacy storage only ever held deploys.
func TestTransactionFromStoredBytesLegacy(t *testing.T) {
	deploy := unittest.DeployFixture()
	raw, err := cbor.Marshal(deploy)
	require.NoError(t, err)

	decoded, err := binaryport.TransactionFromStoredBytes(binaryport.NewLegacyRawBytes(raw))
	require.NoError(t, err)

	assert.Equal(t, types.TransactionFamilyDeploy, decoded.Family())
	got, ok := decoded.AsDeploy()
	require.True(t, ok)
	assert.Equal(t, deploy.Hash, got.Hash)
	assert.Equal(t, deploy.ChainName, got.ChainName)
	assert.Equal(t, deploy.Timestamp, got.Timestamp)
}

// TestTransactionFromStoredBytesWrongDecoder shows why the envelope's legacy
// flag matters: the same bytes under the other decoder must not pass.
func TestTransactionFromStoredBytesWrongDecoder(t *testing.T) {
	deploy := unittest.DeployFixture()
	raw, err := cbor.Marshal(deploy)
	require.NoError(t, err)

	_, err = binaryport.TransactionFromStoredBytes(binaryport.NewCurrentRawBytes(raw))
	require.Error(t, err)
}

func TestFinalizedApprovalsFromStoredBytesCurrent(t *testing.T) {
	approvals := types.FinalizedApprovals{
		Family:    types.TransactionFamilyV1,
		Approvals: unittest.ApprovalsFixture(2),
	}
	spec := binaryport.NewCurrentRawBytes(bytesrepr.ToBytes(approvals))

	decoded, err := binaryport.FinalizedApprovalsFromStoredBytes(spec)
	require.NoError(t, err)
	require.Equal(t, approvals, decoded)
}

// Legacy finalized approvals are a bare CBOR approval list; the family is
// implied by the era the record was written in.
func TestFinalizedApprovalsFromStoredBytesLegacy(t *testing.T) {
	approvals := unittest.ApprovalsFixture(3)
	raw, err := cbor.Marshal(approvals)
	require.NoError(t, err)

	decoded, err := binaryport.FinalizedApprovalsFromStoredBytes(binaryport.NewLegacyRawBytes(raw))
	require.NoError(t, err)
	assert.Equal(t, types.TransactionFamilyDeploy, decoded.Family)
	assert.Equal(t, approvals, decoded.Approvals)
}

func TestBlockHeaderFromStoredBytes(t *testing.T) {
	header := unittest.BlockHeaderFixture(10)

	decoded, err := binaryport.BlockHeaderFromStoredBytes(
		binaryport.NewCurrentRawBytes(bytesrepr.ToBytes(header)))
	require.NoError(t, err)
	require.Equal(t, header, decoded)

	raw, err := cbor.Marshal(header)
	require.NoError(t, err)
	decoded, err = binaryport.BlockHeaderFromStoredBytes(binaryport.NewLegacyRawBytes(raw))
	require.NoError(t, err)
	require.Equal(t, header, decoded)
}

func TestExecutionResultFromStoredBytes(t *testing.T) {
	message := "out of gas"
	result := types.ExecutionResult{Cost: 12345, ErrorMessage: &message}

	decoded, err := binaryport.ExecutionResultFromStoredBytes(
		binaryport.NewCurrentRawBytes(bytesrepr.ToBytes(result)))
	require.NoError(t, err)
	require.Equal(t, result, decoded)
}

// Trailing bytes after a current-format blob are storage corruption, not
// padding.
func TestStoredDecodersRejectLeftoverBytes(t *testing.T) {
	header := unittest.BlockHeaderFixture(1)
	raw := append(bytesrepr.ToBytes(header), 0x00)

	_, err := binaryport.BlockHeaderFromStoredBytes(binaryport.NewCurrentRawBytes(raw))
	require.ErrorIs(t, err, bytesrepr.ErrLeftoverBytes)
}
