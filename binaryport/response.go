package binaryport

import (
	"github.com/jacek-casper/casper-node/bytesrepr"
	"github.com/jacek-casper/casper-node/types"
)

// InformationResponse is the union of responses that mirror their request
// 1:1. Status-like requests return bespoke payloads decoded contextually by
// the caller, which knows which request it sent; those payloads are not part
// of this union.
type InformationResponse interface {
	bytesrepr.Encodable

	// InformationTag returns the wire discriminant, shared with the
	// request registry.
	InformationTag() InformationRequestTag
}

// BlockHeight2HashResponse carries the hash of the requested block.
type BlockHeight2HashResponse struct {
	Hash types.BlockHash
}

// InformationTag returns the wire discriminant of the variant.
func (BlockHeight2HashResponse) InformationTag() InformationRequestTag { return BlockHeight2HashTag }

// WriteBytes appends the tag and the hash.
func (r BlockHeight2HashResponse) WriteBytes(buf *[]byte) {
	bytesrepr.WriteU8(buf, uint8(BlockHeight2HashTag))
	r.Hash.WriteBytes(buf)
}

// SerializedLength returns the encoded size of the response.
func (r BlockHeight2HashResponse) SerializedLength() int {
	return bytesrepr.U8SerializedLength + r.Hash.SerializedLength()
}

// HighestBlockResponse carries the hash and height of the highest complete
// block.
type HighestBlockResponse struct {
	Hash   types.BlockHash
	Height uint64
}

// InformationTag returns the wire discriminant of the variant.
func (HighestBlockResponse) InformationTag() InformationRequestTag { return HighestCompleteBlockTag }

// WriteBytes appends the tag, the hash and the height.
func (r HighestBlockResponse) WriteBytes(buf *[]byte) {
	bytesrepr.WriteU8(buf, uint8(HighestCompleteBlockTag))
	r.Hash.WriteBytes(buf)
	bytesrepr.WriteU64(buf, r.Height)
}

// SerializedLength returns the encoded size of the response.
func (r HighestBlockResponse) SerializedLength() int {
	return bytesrepr.U8SerializedLength + r.Hash.SerializedLength() + bytesrepr.U64SerializedLength
}

// CompletedBlocksContainResponse answers a containment query.
type CompletedBlocksContainResponse struct {
	Contains bool
}

// InformationTag returns the wire discriminant of the variant.
func (CompletedBlocksContainResponse) InformationTag() InformationRequestTag {
	return CompletedBlocksContainTag
}

// WriteBytes appends the tag and the boolean.
func (r CompletedBlocksContainResponse) WriteBytes(buf *[]byte) {
	bytesrepr.WriteU8(buf, uint8(CompletedBlocksContainTag))
	bytesrepr.WriteBool(buf, r.Contains)
}

// SerializedLength returns the encoded size of the response.
func (r CompletedBlocksContainResponse) SerializedLength() int {
	return bytesrepr.U8SerializedLength + bytesrepr.BoolSerializedLength
}

// TransactionHash2BlockHashAndHeightResponse locates the block containing
// the requested transaction.
type TransactionHash2BlockHashAndHeightResponse struct {
	Hash   types.BlockHash
	Height uint64
}

// InformationTag returns the wire discriminant of the variant.
func (TransactionHash2BlockHashAndHeightResponse) InformationTag() InformationRequestTag {
	return TransactionHash2BlockHashAndHeightTag
}

// WriteBytes appends the tag, the hash and the height.
func (r TransactionHash2BlockHashAndHeightResponse) WriteBytes(buf *[]byte) {
	bytesrepr.WriteU8(buf, uint8(TransactionHash2BlockHashAndHeightTag))
	r.Hash.WriteBytes(buf)
	bytesrepr.WriteU64(buf, r.Height)
}

// SerializedLength returns the encoded size of the response.
func (r TransactionHash2BlockHashAndHeightResponse) SerializedLength() int {
	return bytesrepr.U8SerializedLength + r.Hash.SerializedLength() + bytesrepr.U64SerializedLength
}

// ReadInformationResponse consumes a tagged response from the front of the
// input. Unknown tags fail with the formatting error.
func ReadInformationResponse(input []byte) (InformationResponse, []byte, error) {
	tag, rem, err := bytesrepr.ReadU8(input)
	if err != nil {
		return nil, nil, err
	}
	switch InformationRequestTag(tag) {
	case BlockHeight2HashTag:
		hash, rem, err := types.ReadBlockHash(rem)
		if err != nil {
			return nil, nil, err
		}
		return BlockHeight2HashResponse{Hash: hash}, rem, nil
	case HighestCompleteBlockTag:
		hash, rem, err := types.ReadBlockHash(rem)
		if err != nil {
			return nil, nil, err
		}
		height, rem, err := bytesrepr.ReadU64(rem)
		if err != nil {
			return nil, nil, err
		}
		return HighestBlockResponse{Hash: hash, Height: height}, rem, nil
	case CompletedBlocksContainTag:
		contains, rem, err := bytesrepr.ReadBool(rem)
		if err != nil {
			return nil, nil, err
		}
		return CompletedBlocksContainResponse{Contains: contains}, rem, nil
	case TransactionHash2BlockHashAndHeightTag:
		hash, rem, err := types.ReadBlockHash(rem)
		if err != nil {
			return nil, nil, err
		}
		height, rem, err := bytesrepr.ReadU64(rem)
		if err != nil {
			return nil, nil, err
		}
		return TransactionHash2BlockHashAndHeightResponse{Hash: hash, Height: height}, rem, nil
	default:
		return nil, nil, bytesrepr.ErrFormatting
	}
}
