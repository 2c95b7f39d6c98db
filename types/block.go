package types

import (
	"github.com/jacek-casper/casper-node/bytesrepr"
)

// BlockHeader carries the chain-level metadata of a block.
type BlockHeader struct {
	ParentHash      BlockHash       `json:"parent_hash" cbor:"parent_hash"`
	StateRootHash   Digest          `json:"state_root_hash" cbor:"state_root_hash"`
	EraID           EraID           `json:"era_id" cbor:"era_id"`
	Height          uint64          `json:"height" cbor:"height"`
	ProtocolVersion ProtocolVersion `json:"protocol_version" cbor:"protocol_version"`
	Timestamp       Timestamp       `json:"timestamp" cbor:"timestamp"`
	Proposer        PublicKey       `json:"proposer" cbor:"proposer"`
}

// WriteBytes appends the header fields in declaration order.
func (h BlockHeader) WriteBytes(buf *[]byte) {
	h.ParentHash.WriteBytes(buf)
	h.StateRootHash.WriteBytes(buf)
	h.EraID.WriteBytes(buf)
	bytesrepr.WriteU64(buf, h.Height)
	h.ProtocolVersion.WriteBytes(buf)
	h.Timestamp.WriteBytes(buf)
	h.Proposer.WriteBytes(buf)
}

// SerializedLength returns the encoded size of the header.
func (h BlockHeader) SerializedLength() int {
	return h.ParentHash.SerializedLength() +
		h.StateRootHash.SerializedLength() +
		h.EraID.SerializedLength() +
		bytesrepr.U64SerializedLength +
		h.ProtocolVersion.SerializedLength() +
		h.Timestamp.SerializedLength() +
		h.Proposer.SerializedLength()
}

// ReadBlockHeader consumes a block header from the front of the input.
func ReadBlockHeader(input []byte) (BlockHeader, []byte, error) {
	parentHash, rem, err := ReadBlockHash(input)
	if err != nil {
		return BlockHeader{}, nil, err
	}
	stateRootHash, rem, err := ReadDigest(rem)
	if err != nil {
		return BlockHeader{}, nil, err
	}
	eraID, rem, err := ReadEraID(rem)
	if err != nil {
		return BlockHeader{}, nil, err
	}
	height, rem, err := bytesrepr.ReadU64(rem)
	if err != nil {
		return BlockHeader{}, nil, err
	}
	protocolVersion, rem, err := ReadProtocolVersion(rem)
	if err != nil {
		return BlockHeader{}, nil, err
	}
	timestamp, rem, err := ReadTimestamp(rem)
	if err != nil {
		return BlockHeader{}, nil, err
	}
	proposer, rem, err := ReadPublicKey(rem)
	if err != nil {
		return BlockHeader{}, nil, err
	}
	header := BlockHeader{
		ParentHash:      parentHash,
		StateRootHash:   stateRootHash,
		EraID:           eraID,
		Height:          height,
		ProtocolVersion: protocolVersion,
		Timestamp:       timestamp,
		Proposer:        proposer,
	}
	return header, rem, nil
}

// Block is a block hash paired with its header.
type Block struct {
	Hash   BlockHash   `json:"hash" cbor:"hash"`
	Header BlockHeader `json:"header" cbor:"header"`
}

// WriteBytes appends the hash followed by the header.
func (b Block) WriteBytes(buf *[]byte) {
	b.Hash.WriteBytes(buf)
	b.Header.WriteBytes(buf)
}

// SerializedLength returns the encoded size of the block.
func (b Block) SerializedLength() int {
	return b.Hash.SerializedLength() + b.Header.SerializedLength()
}

// ReadBlock consumes a block from the front of the input.
func ReadBlock(input []byte) (Block, []byte, error) {
	hash, rem, err := ReadBlockHash(input)
	if err != nil {
		return Block{}, nil, err
	}
	header, rem, err := ReadBlockHeader(rem)
	if err != nil {
		return Block{}, nil, err
	}
	return Block{Hash: hash, Header: header}, rem, nil
}

// BlockHashAndHeight locates a block by both of its identifiers.
type BlockHashAndHeight struct {
	BlockHash   BlockHash `json:"block_hash"`
	BlockHeight uint64    `json:"block_height"`
}

// WriteBytes appends the hash followed by the height.
func (b BlockHashAndHeight) WriteBytes(buf *[]byte) {
	b.BlockHash.WriteBytes(buf)
	bytesrepr.WriteU64(buf, b.BlockHeight)
}

// SerializedLength returns the encoded size of the pair.
func (b BlockHashAndHeight) SerializedLength() int {
	return b.BlockHash.SerializedLength() + bytesrepr.U64SerializedLength
}

// ReadBlockHashAndHeight consumes a hash and height pair from the front of
// the input.
func ReadBlockHashAndHeight(input []byte) (BlockHashAndHeight, []byte, error) {
	hash, rem, err := ReadBlockHash(input)
	if err != nil {
		return BlockHashAndHeight{}, nil, err
	}
	height, rem, err := bytesrepr.ReadU64(rem)
	if err != nil {
		return BlockHashAndHeight{}, nil, err
	}
	return BlockHashAndHeight{BlockHash: hash, BlockHeight: height}, rem, nil
}
