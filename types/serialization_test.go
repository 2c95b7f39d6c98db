package types_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jacek-casper/casper-node/bytesrepr"
	"github.com/jacek-casper/casper-node/types"
	"github.com/jacek-casper/casper-node/utils/unittest"
)

// roundTrip encodes v, checks the serialized length invariant, decodes with
// read and requires the whole buffer to be consumed.
func roundTrip[T bytesrepr.Encodable](t *testing.T, v T, read func([]byte) (T, []byte, error)) T {
	t.Helper()
	encoded := bytesrepr.ToBytes(v)
	require.Equal(t, v.SerializedLength(), len(encoded),
		"SerializedLength must equal the actual encoded byte count")
	decoded, rem, err := read(encoded)
	require.NoError(t, err)
	require.Empty(t, rem)
	return decoded
}

func TestDigestRoundTrip(t *testing.T) {
	d := unittest.DigestFixture()
	assert.Equal(t, d, roundTrip(t, d, types.ReadDigest))
}

func TestBlockHashRoundTrip(t *testing.T) {
	h := unittest.BlockHashFixture()
	assert.Equal(t, h, roundTrip(t, h, types.ReadBlockHash))
}

func TestTransactionHashRoundTrip(t *testing.T) {
	deployHash := types.NewTransactionHashFromDeploy(unittest.DeployHashFixture())
	assert.Equal(t, deployHash, roundTrip(t, deployHash, types.ReadTransactionHash))

	v1Hash := types.NewTransactionHashFromV1(unittest.TransactionV1HashFixture())
	assert.Equal(t, v1Hash, roundTrip(t, v1Hash, types.ReadTransactionHash))
}

func TestTransactionHashUnknownTag(t *testing.T) {
	input := append([]byte{255}, make([]byte, types.DigestLength)...)
	_, _, err := types.ReadTransactionHash(input)
	require.ErrorIs(t, err, bytesrepr.ErrFormatting)
}

func TestProtocolVersionRoundTrip(t *testing.T) {
	v := types.ProtocolVersionFromParts(2, 0, 1)
	assert.Equal(t, v, roundTrip(t, v, types.ReadProtocolVersion))
}

func TestProtocolVersionCompatibility(t *testing.T) {
	v2 := types.ProtocolVersionFromParts(2, 0, 0)
	assert.True(t, v2.IsCompatibleWith(types.ProtocolVersionFromParts(2, 5, 9)))
	assert.False(t, v2.IsCompatibleWith(types.ProtocolVersionFromParts(1, 9, 9)))
}

func TestPublicKeyRoundTrip(t *testing.T) {
	pk := unittest.PublicKeyFixture()
	assert.Equal(t, pk, roundTrip(t, pk, types.ReadPublicKey))
}

func TestPublicKeyUnknownAlgorithm(t *testing.T) {
	input := append([]byte{99}, make([]byte, types.Ed25519PublicKeyLength)...)
	_, _, err := types.ReadPublicKey(input)
	require.ErrorIs(t, err, bytesrepr.ErrFormatting)
}

func TestApprovalRoundTrip(t *testing.T) {
	approval := unittest.ApprovalFixture()
	assert.Equal(t, approval, roundTrip(t, approval, types.ReadApproval))
}

func TestDeployRoundTrip(t *testing.T) {
	deploy := unittest.DeployFixture()
	assert.Equal(t, deploy, roundTrip(t, deploy, types.ReadDeploy))
}

func TestTransactionV1RoundTrip(t *testing.T) {
	txn := unittest.TransactionV1Fixture()
	assert.Equal(t, txn, roundTrip(t, txn, types.ReadTransactionV1))
}

func TestTransactionUnionRoundTrip(t *testing.T) {
	asDeploy := types.NewTransactionFromDeploy(unittest.DeployFixture())
	assert.Equal(t, asDeploy, roundTrip(t, asDeploy, types.ReadTransaction))
	assert.Equal(t, types.TransactionFamilyDeploy, asDeploy.Family())

	asV1 := types.NewTransactionFromV1(unittest.TransactionV1Fixture())
	assert.Equal(t, asV1, roundTrip(t, asV1, types.ReadTransaction))
	assert.Equal(t, types.TransactionFamilyV1, asV1.Family())
}

func TestFinalizedApprovalsRoundTrip(t *testing.T) {
	approvals := types.FinalizedApprovals{
		Family:    types.TransactionFamilyV1,
		Approvals: unittest.ApprovalsFixture(2),
	}
	assert.Equal(t, approvals, roundTrip(t, approvals, types.ReadFinalizedApprovals))
}

func TestFinalizedApprovalsUnknownFamily(t *testing.T) {
	_, _, err := types.ReadFinalizedApprovals([]byte{7, 0, 0, 0, 0})
	require.ErrorIs(t, err, bytesrepr.ErrFormatting)
}

func TestExecutionResultRoundTrip(t *testing.T) {
	success := types.ExecutionResult{Cost: 123456}
	assert.Equal(t, success, roundTrip(t, success, types.ReadExecutionResult))

	msg := "out of gas"
	failure := types.ExecutionResult{Cost: 99, ErrorMessage: &msg}
	assert.Equal(t, failure, roundTrip(t, failure, types.ReadExecutionResult))
}

func TestBlockHeaderRoundTrip(t *testing.T) {
	header := unittest.BlockHeaderFixture(42)
	assert.Equal(t, header, roundTrip(t, header, types.ReadBlockHeader))
}

func TestBlockRoundTrip(t *testing.T) {
	block := unittest.BlockFixture(42)
	assert.Equal(t, block, roundTrip(t, block, types.ReadBlock))
}

func TestBlockHashAndHeightRoundTrip(t *testing.T) {
	v := types.BlockHashAndHeight{BlockHash: unittest.BlockHashFixture(), BlockHeight: 7}
	assert.Equal(t, v, roundTrip(t, v, types.ReadBlockHashAndHeight))
}

func TestAvailableBlockRangeRoundTrip(t *testing.T) {
	r, err := types.NewAvailableBlockRange(5, 10)
	require.NoError(t, err)
	assert.Equal(t, r, roundTrip(t, r, types.ReadAvailableBlockRange))
}

func TestAvailableBlockRangeInverted(t *testing.T) {
	_, err := types.NewAvailableBlockRange(10, 5)
	require.Error(t, err)

	var buf []byte
	bytesrepr.WriteU64(&buf, 10)
	bytesrepr.WriteU64(&buf, 5)
	_, _, err = types.ReadAvailableBlockRange(buf)
	require.ErrorIs(t, err, bytesrepr.ErrFormatting)
}

func TestNextUpgradeRoundTrip(t *testing.T) {
	upgrade := types.NextUpgrade{
		ActivationPoint: 42,
		ProtocolVersion: types.ProtocolVersionFromParts(2, 0, 1),
	}
	assert.Equal(t, upgrade, roundTrip(t, upgrade, types.ReadNextUpgrade))
}

func TestReactorStateRoundTrip(t *testing.T) {
	state := types.ReactorStateKeepUp
	assert.Equal(t, state, roundTrip(t, state, types.ReadReactorState))

	_, _, err := types.ReadReactorState([]byte{200})
	require.ErrorIs(t, err, bytesrepr.ErrFormatting)
}

func TestBlockSynchronizerStatusRoundTrip(t *testing.T) {
	status := unittest.BlockSynchronizerStatusFixture()
	assert.Equal(t, status, roundTrip(t, status, types.ReadBlockSynchronizerStatus))

	empty := types.BlockSynchronizerStatus{}
	assert.Equal(t, empty, roundTrip(t, empty, types.ReadBlockSynchronizerStatus))
}

func TestPeersMapRoundTrip(t *testing.T) {
	peers := unittest.PeersMapFixture()
	assert.Equal(t, peers, roundTrip(t, peers, types.ReadPeersMap))
}

func TestPeersMapSorted(t *testing.T) {
	peers := types.NewPeersMap(map[string]string{
		"tls:bb": "2.2.2.2:1",
		"tls:aa": "1.1.1.1:1",
		"tls:cc": "3.3.3.3:1",
	})
	require.Len(t, peers, 3)
	assert.Equal(t, "tls:aa", peers[0].NodeID)
	assert.Equal(t, "tls:bb", peers[1].NodeID)
	assert.Equal(t, "tls:cc", peers[2].NodeID)
}

func TestConsensusStatusRoundTrip(t *testing.T) {
	status := unittest.ConsensusStatusFixture()
	assert.Equal(t, status, roundTrip(t, status, types.ReadConsensusStatus))

	observer := types.ConsensusStatus{OurPublicSigningKey: unittest.PublicKeyFixture()}
	assert.Equal(t, observer, roundTrip(t, observer, types.ReadConsensusStatus))
}

func TestValidatorChangesRoundTrip(t *testing.T) {
	changes := unittest.ValidatorChangesFixture()
	assert.Equal(t, changes, roundTrip(t, changes, types.ReadValidatorChanges))
}

func TestChainspecRawBytesRoundTrip(t *testing.T) {
	bundle := unittest.ChainspecRawBytesFixture()
	assert.Equal(t, bundle, roundTrip(t, bundle, types.ReadChainspecRawBytes))

	minimal := types.ChainspecRawBytes{ChainspecBytes: []byte("spec")}
	assert.Equal(t, minimal, roundTrip(t, minimal, types.ReadChainspecRawBytes))
}
