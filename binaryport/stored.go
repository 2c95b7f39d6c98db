package binaryport

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"

	"github.com/jacek-casper/casper-node/bytesrepr"
	"github.com/jacek-casper/casper-node/types"
)

// Secondary decoders for stored blobs. Current-format blobs carry the wire
// encoding; legacy-format blobs were written by the old storage layer as
// CBOR. Applying the wrong decoder to a blob is a silent-corruption risk,
// which is why every decoder here branches on the envelope's legacy flag and
// why RawBytesSpec cannot be constructed without one.

func decodeCurrent[T any](raw []byte, read func([]byte) (T, []byte, error)) (T, error) {
	v, rem, err := read(raw)
	if err != nil {
		return v, err
	}
	if len(rem) != 0 {
		return v, bytesrepr.ErrLeftoverBytes
	}
	return v, nil
}

// TransactionFromStoredBytes decodes a stored transaction blob. A legacy
// blob always holds a deploy, since the legacy storage layer predates the V1
// family.
func TransactionFromStoredBytes(spec RawBytesSpec) (types.Transaction, error) {
	raw := spec.RawBytes()
	if spec.IsLegacy() {
		var deploy types.Deploy
		if err := cbor.Unmarshal(raw, &deploy); err != nil {
			return types.Transaction{}, fmt.Errorf("decoding legacy deploy: %w", err)
		}
		return types.NewTransactionFromDeploy(deploy), nil
	}
	txn, err := decodeCurrent(raw, types.ReadTransaction)
	if err != nil {
		return types.Transaction{}, fmt.Errorf("decoding transaction: %w", err)
	}
	return txn, nil
}

// FinalizedApprovalsFromStoredBytes decodes a stored finalized-approvals
// blob. A legacy blob belongs to the deploy family by construction.
func FinalizedApprovalsFromStoredBytes(spec RawBytesSpec) (types.FinalizedApprovals, error) {
	raw := spec.RawBytes()
	if spec.IsLegacy() {
		var approvals []types.Approval
		if err := cbor.Unmarshal(raw, &approvals); err != nil {
			return types.FinalizedApprovals{}, fmt.Errorf("decoding legacy approvals: %w", err)
		}
		return types.FinalizedApprovals{
			Family:    types.TransactionFamilyDeploy,
			Approvals: approvals,
		}, nil
	}
	approvals, err := decodeCurrent(raw, types.ReadFinalizedApprovals)
	if err != nil {
		return types.FinalizedApprovals{}, fmt.Errorf("decoding finalized approvals: %w", err)
	}
	return approvals, nil
}

// BlockHeaderFromStoredBytes decodes a stored block header blob.
func BlockHeaderFromStoredBytes(spec RawBytesSpec) (types.BlockHeader, error) {
	raw := spec.RawBytes()
	if spec.IsLegacy() {
		var header types.BlockHeader
		if err := cbor.Unmarshal(raw, &header); err != nil {
			return types.BlockHeader{}, fmt.Errorf("decoding legacy block header: %w", err)
		}
		return header, nil
	}
	header, err := decodeCurrent(raw, types.ReadBlockHeader)
	if err != nil {
		return types.BlockHeader{}, fmt.Errorf("decoding block header: %w", err)
	}
	return header, nil
}

// BlockFromStoredBytes decodes a stored block blob.
func BlockFromStoredBytes(spec RawBytesSpec) (types.Block, error) {
	raw := spec.RawBytes()
	if spec.IsLegacy() {
		var block types.Block
		if err := cbor.Unmarshal(raw, &block); err != nil {
			return types.Block{}, fmt.Errorf("decoding legacy block: %w", err)
		}
		return block, nil
	}
	block, err := decodeCurrent(raw, types.ReadBlock)
	if err != nil {
		return types.Block{}, fmt.Errorf("decoding block: %w", err)
	}
	return block, nil
}

// ExecutionResultFromStoredBytes decodes a stored execution result blob.
func ExecutionResultFromStoredBytes(spec RawBytesSpec) (types.ExecutionResult, error) {
	raw := spec.RawBytes()
	if spec.IsLegacy() {
		var result types.ExecutionResult
		if err := cbor.Unmarshal(raw, &result); err != nil {
			return types.ExecutionResult{}, fmt.Errorf("decoding legacy execution result: %w", err)
		}
		return result, nil
	}
	result, err := decodeCurrent(raw, types.ReadExecutionResult)
	if err != nil {
		return types.ExecutionResult{}, fmt.Errorf("decoding execution result: %w", err)
	}
	return result, nil
}

// BlockHashAndHeightFromStoredBytes decodes a stored hash-and-height blob.
func BlockHashAndHeightFromStoredBytes(spec RawBytesSpec) (types.BlockHashAndHeight, error) {
	raw := spec.RawBytes()
	if spec.IsLegacy() {
		var v types.BlockHashAndHeight
		if err := cbor.Unmarshal(raw, &v); err != nil {
			return types.BlockHashAndHeight{}, fmt.Errorf("decoding legacy hash and height: %w", err)
		}
		return v, nil
	}
	v, err := decodeCurrent(raw, types.ReadBlockHashAndHeight)
	if err != nil {
		return types.BlockHashAndHeight{}, fmt.Errorf("decoding hash and height: %w", err)
	}
	return v, nil
}
