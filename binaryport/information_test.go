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

// TestInformationTagRegistryStability pins every assigned tag value. These
// numbers are part of the wire contract and must never move.
func TestInformationTagRegistryStability(t *testing.T) {
	assert.EqualValues(t, 0, binaryport.BlockHeight2HashTag)
	assert.EqualValues(t, 1, binaryport.HighestCompleteBlockTag)
	assert.EqualValues(t, 2, binaryport.CompletedBlocksContainTag)
	assert.EqualValues(t, 3, binaryport.TransactionHash2BlockHashAndHeightTag)
	assert.EqualValues(t, 4, binaryport.PeersTag)
	assert.EqualValues(t, 5, binaryport.UptimeTag)
	assert.EqualValues(t, 6, binaryport.LastProgressTag)
	assert.EqualValues(t, 7, binaryport.ReactorStateTag)
	assert.EqualValues(t, 8, binaryport.NetworkNameTag)
	assert.EqualValues(t, 9, binaryport.ConsensusValidatorChangesTag)
	assert.EqualValues(t, 10, binaryport.BlockSynchronizerStatusTag)
	assert.EqualValues(t, 11, binaryport.AvailableBlockRangeTag)
	assert.EqualValues(t, 12, binaryport.NextUpgradeTag)
	assert.EqualValues(t, 13, binaryport.ConsensusStatusTag)
	assert.EqualValues(t, 14, binaryport.ChainspecRawBytesTag)
	assert.EqualValues(t, 15, binaryport.GenesisAccountsBytesTag)
	assert.EqualValues(t, 16, binaryport.GlobalStateBytesTag)
}

func TestInformationRequestRoundTrip(t *testing.T) {
	requests := []binaryport.InformationRequest{
		binaryport.BlockHeight2HashRequest{Height: 42},
		binaryport.NewHighestCompleteBlockRequest(),
		binaryport.CompletedBlocksContainRequest{BlockHash: unittest.BlockHashFixture()},
		binaryport.TransactionHash2BlockHashAndHeightRequest{
			TransactionHash: types.NewTransactionHashFromDeploy(unittest.DeployHashFixture()),
		},
		binaryport.NewPeersRequest(),
		binaryport.NewUptimeRequest(),
		binaryport.NewLastProgressRequest(),
		binaryport.NewReactorStateRequest(),
		binaryport.NewNetworkNameRequest(),
		binaryport.NewConsensusValidatorChangesRequest(),
		binaryport.NewBlockSynchronizerStatusRequest(),
		binaryport.NewAvailableBlockRangeRequest(),
		binaryport.NewNextUpgradeRequest(),
		binaryport.NewConsensusStatusRequest(),
		binaryport.NewChainspecRawBytesRequest(),
		binaryport.NewGenesisAccountsBytesRequest(),
		binaryport.NewGlobalStateBytesRequest(),
	}
	for _, req := range requests {
		req := req
		t.Run(req.InformationTag().String(), func(t *testing.T) {
			encoded := bytesrepr.ToBytes(req)
			require.Len(t, encoded, req.SerializedLength())
			require.Equal(t, uint8(req.InformationTag()), encoded[0])

			decoded, rem, err := binaryport.ReadInformationRequest(encoded)
			require.NoError(t, err)
			require.Empty(t, rem)
			require.Equal(t, req, decoded)
		})
	}
}

func TestReadInformationRequestRejectsUnassignedTag(t *testing.T) {
	_, _, err := binaryport.ReadInformationRequest([]byte{0xff})
	require.ErrorIs(t, err, bytesrepr.ErrFormatting)

	_, _, err = binaryport.ReadInformationRequest([]byte{17})
	require.ErrorIs(t, err, bytesrepr.ErrFormatting)
}

func TestInformationResponseRoundTrip(t *testing.T) {
	responses := []binaryport.InformationResponse{
		binaryport.BlockHeight2HashResponse{Hash: unittest.BlockHashFixture()},
		binaryport.HighestBlockResponse{Hash: unittest.BlockHashFixture(), Height: 7},
		binaryport.CompletedBlocksContainResponse{Contains: true},
		binaryport.TransactionHash2BlockHashAndHeightResponse{
			Hash:   unittest.BlockHashFixture(),
			Height: 12,
		},
	}
	for _, resp := range responses {
		resp := resp
		t.Run(resp.InformationTag().String(), func(t *testing.T) {
			encoded := bytesrepr.ToBytes(resp)
			require.Len(t, encoded, resp.SerializedLength())

			decoded, rem, err := binaryport.ReadInformationResponse(encoded)
			require.NoError(t, err)
			require.Empty(t, rem)
			require.Equal(t, resp, decoded)
		})
	}
}

func TestReadInformationResponseRejectsNonResponseTag(t *testing.T) {
	// Peers is a valid request tag but has no 1:1 response variant.
	_, _, err := binaryport.ReadInformationResponse([]byte{uint8(binaryport.PeersTag)})
	require.ErrorIs(t, err, bytesrepr.ErrFormatting)
}
