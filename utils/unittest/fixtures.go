// Package unittest provides fixture generators for tests.
package unittest

import (
	"math/rand"

	"github.com/jacek-casper/casper-node/types"
)

// DigestFixture returns a random digest.
func DigestFixture() types.Digest {
	var d types.Digest
	_, _ = rand.Read(d[:])
	return d
}

// BlockHashFixture returns a random block hash.
func BlockHashFixture() types.BlockHash {
	return types.BlockHash(DigestFixture())
}

// DeployHashFixture returns a random deploy hash.
func DeployHashFixture() types.DeployHash {
	return types.DeployHash(DigestFixture())
}

// TransactionV1HashFixture returns a random V1 transaction hash.
func TransactionV1HashFixture() types.TransactionV1Hash {
	return types.TransactionV1Hash(DigestFixture())
}

// PublicKeyFixture returns a random ed25519 public key.
func PublicKeyFixture() types.PublicKey {
	tagged := make([]byte, 1+types.Ed25519PublicKeyLength)
	tagged[0] = types.Ed25519Tag
	_, _ = rand.Read(tagged[1:])
	key, err := types.NewPublicKey(tagged)
	if err != nil {
		panic(err)
	}
	return key
}

// SignatureFixture returns a random ed25519 signature.
func SignatureFixture() types.Signature {
	tagged := make([]byte, 1+types.SignatureLength)
	tagged[0] = types.Ed25519Tag
	_, _ = rand.Read(tagged[1:])
	sig, err := types.NewSignature(tagged)
	if err != nil {
		panic(err)
	}
	return sig
}

// ApprovalFixture returns a random approval.
func ApprovalFixture() types.Approval {
	return types.Approval{
		Signer:    PublicKeyFixture(),
		Signature: SignatureFixture(),
	}
}

// ApprovalsFixture returns n random approvals.
func ApprovalsFixture(n int) []types.Approval {
	approvals := make([]types.Approval, 0, n)
	for i := 0; i < n; i++ {
		approvals = append(approvals, ApprovalFixture())
	}
	return approvals
}

// DeployFixture returns a random legacy deploy with one approval.
func DeployFixture() types.Deploy {
	return types.Deploy{
		Hash:      DeployHashFixture(),
		ChainName: "casper-example",
		Timestamp: types.Timestamp(1600010101000),
		TTL:       types.TimeDiff(1800000),
		Approvals: ApprovalsFixture(1),
	}
}

// TransactionV1Fixture returns a random V1 transaction with one approval.
func TransactionV1Fixture() types.TransactionV1 {
	body := make([]byte, 16)
	_, _ = rand.Read(body)
	return types.TransactionV1{
		Hash:      TransactionV1HashFixture(),
		ChainName: "casper-example",
		Timestamp: types.Timestamp(1600020202000),
		TTL:       types.TimeDiff(1800000),
		Body:      body,
		Approvals: ApprovalsFixture(1),
	}
}

// BlockHeaderFixture returns a random block header at the given height.
func BlockHeaderFixture(height uint64) types.BlockHeader {
	return types.BlockHeader{
		ParentHash:      BlockHashFixture(),
		StateRootHash:   DigestFixture(),
		EraID:           types.EraID(rand.Uint64() % 1000),
		Height:          height,
		ProtocolVersion: types.ProtocolVersionFromParts(2, 0, 0),
		Timestamp:       types.Timestamp(1600030303000),
		Proposer:        PublicKeyFixture(),
	}
}

// BlockFixture returns a random block at the given height.
func BlockFixture(height uint64) types.Block {
	return types.Block{
		Hash:   BlockHashFixture(),
		Header: BlockHeaderFixture(height),
	}
}

// PeersMapFixture returns a small deterministic peers map.
func PeersMapFixture() types.PeersMap {
	return types.NewPeersMap(map[string]string{
		"tls:0101..0101": "1.2.3.4:34553",
		"tls:0202..0202": "5.6.7.8:34553",
	})
}

// BlockSynchronizerStatusFixture returns a status with one historical
// builder in progress.
func BlockSynchronizerStatusFixture() types.BlockSynchronizerStatus {
	height := uint64(40)
	return types.BlockSynchronizerStatus{
		Historical: &types.BlockSyncStatus{
			BlockHash:        BlockHashFixture(),
			BlockHeight:      &height,
			AcquisitionState: "HaveBlock",
		},
	}
}

// ValidatorChangesFixture returns a change set for a single validator.
func ValidatorChangesFixture() types.ValidatorChanges {
	return types.ValidatorChanges{
		{
			PublicKey: PublicKeyFixture(),
			StatusChanges: []types.ValidatorStatusChange{
				{EraID: 1, ValidatorChange: types.ValidatorChangeAdded},
				{EraID: 5, ValidatorChange: types.ValidatorChangeSeenAsFaulty},
			},
		},
	}
}

// ChainspecRawBytesFixture returns a bundle with all three payloads set.
func ChainspecRawBytesFixture() types.ChainspecRawBytes {
	return types.ChainspecRawBytes{
		ChainspecBytes:            []byte("[protocol]\nversion = '2.0.0'\n"),
		MaybeGenesisAccountsBytes: []byte("accounts"),
		MaybeGlobalStateBytes:     []byte("global-state"),
	}
}

// ConsensusStatusFixture returns a status for an active validator.
func ConsensusStatusFixture() types.ConsensusStatus {
	roundLength := types.TimeDiff(1 << 16)
	return types.ConsensusStatus{
		OurPublicSigningKey: PublicKeyFixture(),
		RoundLength:         &roundLength,
	}
}
