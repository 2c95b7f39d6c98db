// Package binaryport implements the binary wire protocol used to query node
// state: the request and response taxonomies with their append-only tag
// registries, the protocol error codes, the raw-bytes envelope for stored
// blobs, and a framed TCP client and server.
package binaryport

import (
	"fmt"

	"github.com/jacek-casper/casper-node/bytesrepr"
	"github.com/jacek-casper/casper-node/types"
)

// InformationRequestTag discriminates the information request variants on
// the wire. The registry is append-only: a tag is assigned once, never
// reused and never reordered, even if a variant is retired.
type InformationRequestTag uint8

const (
	BlockHeight2HashTag InformationRequestTag = iota
	HighestCompleteBlockTag
	CompletedBlocksContainTag
	TransactionHash2BlockHashAndHeightTag
	PeersTag
	UptimeTag
	LastProgressTag
	ReactorStateTag
	NetworkNameTag
	ConsensusValidatorChangesTag
	BlockSynchronizerStatusTag
	AvailableBlockRangeTag
	NextUpgradeTag
	ConsensusStatusTag
	ChainspecRawBytesTag
	GenesisAccountsBytesTag
	GlobalStateBytesTag

	// firstUnassignedInformationTag marks the end of the registry. New
	// variants are appended before it.
	firstUnassignedInformationTag
)

var informationTagNames = map[InformationRequestTag]string{
	BlockHeight2HashTag:                   "block-height-2-hash",
	HighestCompleteBlockTag:               "highest-complete-block",
	CompletedBlocksContainTag:             "completed-blocks-contain",
	TransactionHash2BlockHashAndHeightTag: "transaction-hash-2-block-hash-and-height",
	PeersTag:                              "peers",
	UptimeTag:                             "uptime",
	LastProgressTag:                       "last-progress",
	ReactorStateTag:                       "reactor-state",
	NetworkNameTag:                        "network-name",
	ConsensusValidatorChangesTag:          "consensus-validator-changes",
	BlockSynchronizerStatusTag:            "block-synchronizer-status",
	AvailableBlockRangeTag:                "available-block-range",
	NextUpgradeTag:                        "next-upgrade",
	ConsensusStatusTag:                    "consensus-status",
	ChainspecRawBytesTag:                  "chainspec-raw-bytes",
	GenesisAccountsBytesTag:               "genesis-accounts-bytes",
	GlobalStateBytesTag:                   "global-state-bytes",
}

func (t InformationRequestTag) String() string {
	if name, ok := informationTagNames[t]; ok {
		return name
	}
	return fmt.Sprintf("InformationRequestTag(%d)", uint8(t))
}

// InformationRequest is one of the closed set of queryable operations.
type InformationRequest interface {
	bytesrepr.Encodable

	// InformationTag returns the wire discriminant of the variant.
	InformationTag() InformationRequestTag
}

// BlockHeight2HashRequest asks for the hash of the block at a given height.
type BlockHeight2HashRequest struct {
	Height uint64
}

// InformationTag returns the wire discriminant of the variant.
func (BlockHeight2HashRequest) InformationTag() InformationRequestTag { return BlockHeight2HashTag }

// WriteBytes appends the tag and the height.
func (r BlockHeight2HashRequest) WriteBytes(buf *[]byte) {
	bytesrepr.WriteU8(buf, uint8(BlockHeight2HashTag))
	bytesrepr.WriteU64(buf, r.Height)
}

// SerializedLength returns the encoded size of the request.
func (r BlockHeight2HashRequest) SerializedLength() int {
	return bytesrepr.U8SerializedLength + bytesrepr.U64SerializedLength
}

// CompletedBlocksContainRequest asks whether the highest contiguous sequence
// of completed blocks contains the given hash.
type CompletedBlocksContainRequest struct {
	BlockHash types.BlockHash
}

// InformationTag returns the wire discriminant of the variant.
func (CompletedBlocksContainRequest) InformationTag() InformationRequestTag {
	return CompletedBlocksContainTag
}

// WriteBytes appends the tag and the block hash.
func (r CompletedBlocksContainRequest) WriteBytes(buf *[]byte) {
	bytesrepr.WriteU8(buf, uint8(CompletedBlocksContainTag))
	r.BlockHash.WriteBytes(buf)
}

// SerializedLength returns the encoded size of the request.
func (r CompletedBlocksContainRequest) SerializedLength() int {
	return bytesrepr.U8SerializedLength + r.BlockHash.SerializedLength()
}

// TransactionHash2BlockHashAndHeightRequest asks for the block a transaction
// was included in.
type TransactionHash2BlockHashAndHeightRequest struct {
	TransactionHash types.TransactionHash
}

// InformationTag returns the wire discriminant of the variant.
func (TransactionHash2BlockHashAndHeightRequest) InformationTag() InformationRequestTag {
	return TransactionHash2BlockHashAndHeightTag
}

// WriteBytes appends the tag and the transaction hash.
func (r TransactionHash2BlockHashAndHeightRequest) WriteBytes(buf *[]byte) {
	bytesrepr.WriteU8(buf, uint8(TransactionHash2BlockHashAndHeightTag))
	r.TransactionHash.WriteBytes(buf)
}

// SerializedLength returns the encoded size of the request.
func (r TransactionHash2BlockHashAndHeightRequest) SerializedLength() int {
	return bytesrepr.U8SerializedLength + r.TransactionHash.SerializedLength()
}

// parameterless is embedded by every request variant that carries no
// payload: the encoding is the bare tag byte.
type parameterless struct {
	tag InformationRequestTag
}

// InformationTag returns the wire discriminant of the variant.
func (p parameterless) InformationTag() InformationRequestTag { return p.tag }

// WriteBytes appends the bare tag.
func (p parameterless) WriteBytes(buf *[]byte) {
	bytesrepr.WriteU8(buf, uint8(p.tag))
}

// SerializedLength returns the encoded size of the request.
func (p parameterless) SerializedLength() int {
	return bytesrepr.U8SerializedLength
}

// HighestCompleteBlockRequest asks for the hash and height of the highest
// complete block.
type HighestCompleteBlockRequest struct{ parameterless }

// NewHighestCompleteBlockRequest builds the parameterless request.
func NewHighestCompleteBlockRequest() HighestCompleteBlockRequest {
	return HighestCompleteBlockRequest{parameterless{HighestCompleteBlockTag}}
}

// PeersRequest asks for the connected peers.
type PeersRequest struct{ parameterless }

// NewPeersRequest builds the parameterless request.
func NewPeersRequest() PeersRequest { return PeersRequest{parameterless{PeersTag}} }

// UptimeRequest asks how long the node process has been running.
type UptimeRequest struct{ parameterless }

// NewUptimeRequest builds the parameterless request.
func NewUptimeRequest() UptimeRequest { return UptimeRequest{parameterless{UptimeTag}} }

// LastProgressRequest asks for the timestamp of the reactor's last recorded
// progress.
type LastProgressRequest struct{ parameterless }

// NewLastProgressRequest builds the parameterless request.
func NewLastProgressRequest() LastProgressRequest {
	return LastProgressRequest{parameterless{LastProgressTag}}
}

// ReactorStateRequest asks for the current reactor state.
type ReactorStateRequest struct{ parameterless }

// NewReactorStateRequest builds the parameterless request.
func NewReactorStateRequest() ReactorStateRequest {
	return ReactorStateRequest{parameterless{ReactorStateTag}}
}

// NetworkNameRequest asks for the name of the network the node serves.
type NetworkNameRequest struct{ parameterless }

// NewNetworkNameRequest builds the parameterless request.
func NewNetworkNameRequest() NetworkNameRequest {
	return NetworkNameRequest{parameterless{NetworkNameTag}}
}

// ConsensusValidatorChangesRequest asks for the validator status changes
// seen by consensus.
type ConsensusValidatorChangesRequest struct{ parameterless }

// NewConsensusValidatorChangesRequest builds the parameterless request.
func NewConsensusValidatorChangesRequest() ConsensusValidatorChangesRequest {
	return ConsensusValidatorChangesRequest{parameterless{ConsensusValidatorChangesTag}}
}

// BlockSynchronizerStatusRequest asks for the block synchronizer status.
type BlockSynchronizerStatusRequest struct{ parameterless }

// NewBlockSynchronizerStatusRequest builds the parameterless request.
func NewBlockSynchronizerStatusRequest() BlockSynchronizerStatusRequest {
	return BlockSynchronizerStatusRequest{parameterless{BlockSynchronizerStatusTag}}
}

// AvailableBlockRangeRequest asks for the contiguous range of complete
// blocks in storage.
type AvailableBlockRangeRequest struct{ parameterless }

// NewAvailableBlockRangeRequest builds the parameterless request.
func NewAvailableBlockRangeRequest() AvailableBlockRangeRequest {
	return AvailableBlockRangeRequest{parameterless{AvailableBlockRangeTag}}
}

// NextUpgradeRequest asks for the next scheduled upgrade, if any.
type NextUpgradeRequest struct{ parameterless }

// NewNextUpgradeRequest builds the parameterless request.
func NewNextUpgradeRequest() NextUpgradeRequest {
	return NextUpgradeRequest{parameterless{NextUpgradeTag}}
}

// ConsensusStatusRequest asks for the node's consensus status.
type ConsensusStatusRequest struct{ parameterless }

// NewConsensusStatusRequest builds the parameterless request.
func NewConsensusStatusRequest() ConsensusStatusRequest {
	return ConsensusStatusRequest{parameterless{ConsensusStatusTag}}
}

// ChainspecRawBytesRequest asks for the raw chainspec file bytes.
type ChainspecRawBytesRequest struct{ parameterless }

// NewChainspecRawBytesRequest builds the parameterless request.
func NewChainspecRawBytesRequest() ChainspecRawBytesRequest {
	return ChainspecRawBytesRequest{parameterless{ChainspecRawBytesTag}}
}

// GenesisAccountsBytesRequest asks for the raw genesis accounts file bytes.
type GenesisAccountsBytesRequest struct{ parameterless }

// NewGenesisAccountsBytesRequest builds the parameterless request.
func NewGenesisAccountsBytesRequest() GenesisAccountsBytesRequest {
	return GenesisAccountsBytesRequest{parameterless{GenesisAccountsBytesTag}}
}

// GlobalStateBytesRequest asks for the raw global state file bytes.
type GlobalStateBytesRequest struct{ parameterless }

// NewGlobalStateBytesRequest builds the parameterless request.
func NewGlobalStateBytesRequest() GlobalStateBytesRequest {
	return GlobalStateBytesRequest{parameterless{GlobalStateBytesTag}}
}

// ReadInformationRequest consumes a tagged information request from the
// front of the input. Unknown tags fail with the formatting error; a
// conforming decoder never guesses.
func ReadInformationRequest(input []byte) (InformationRequest, []byte, error) {
	tag, rem, err := bytesrepr.ReadU8(input)
	if err != nil {
		return nil, nil, err
	}
	switch InformationRequestTag(tag) {
	case BlockHeight2HashTag:
		height, rem, err := bytesrepr.ReadU64(rem)
		if err != nil {
			return nil, nil, err
		}
		return BlockHeight2HashRequest{Height: height}, rem, nil
	case HighestCompleteBlockTag:
		return NewHighestCompleteBlockRequest(), rem, nil
	case CompletedBlocksContainTag:
		hash, rem, err := types.ReadBlockHash(rem)
		if err != nil {
			return nil, nil, err
		}
		return CompletedBlocksContainRequest{BlockHash: hash}, rem, nil
	case TransactionHash2BlockHashAndHeightTag:
		hash, rem, err := types.ReadTransactionHash(rem)
		if err != nil {
			return nil, nil, err
		}
		return TransactionHash2BlockHashAndHeightRequest{TransactionHash: hash}, rem, nil
	case PeersTag:
		return NewPeersRequest(), rem, nil
	case UptimeTag:
		return NewUptimeRequest(), rem, nil
	case LastProgressTag:
		return NewLastProgressRequest(), rem, nil
	case ReactorStateTag:
		return NewReactorStateRequest(), rem, nil
	case NetworkNameTag:
		return NewNetworkNameRequest(), rem, nil
	case ConsensusValidatorChangesTag:
		return NewConsensusValidatorChangesRequest(), rem, nil
	case BlockSynchronizerStatusTag:
		return NewBlockSynchronizerStatusRequest(), rem, nil
	case AvailableBlockRangeTag:
		return NewAvailableBlockRangeRequest(), rem, nil
	case NextUpgradeTag:
		return NewNextUpgradeRequest(), rem, nil
	case ConsensusStatusTag:
		return NewConsensusStatusRequest(), rem, nil
	case ChainspecRawBytesTag:
		return NewChainspecRawBytesRequest(), rem, nil
	case GenesisAccountsBytesTag:
		return NewGenesisAccountsBytesRequest(), rem, nil
	case GlobalStateBytesTag:
		return NewGlobalStateBytesRequest(), rem, nil
	default:
		return nil, nil, bytesrepr.ErrFormatting
	}
}
