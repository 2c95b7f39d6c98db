package types

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/jacek-casper/casper-node/bytesrepr"
)

// AvailableBlockRange is the contiguous range of complete blocks held in
// storage. Low is always resolvable to a stored block.
type AvailableBlockRange struct {
	Low  uint64 `json:"low"`
	High uint64 `json:"high"`
}

// NewAvailableBlockRange builds a range, rejecting an inverted one.
func NewAvailableBlockRange(low, high uint64) (AvailableBlockRange, error) {
	if low > high {
		return AvailableBlockRange{}, fmt.Errorf("invalid block range [%d, %d]", low, high)
	}
	return AvailableBlockRange{Low: low, High: high}, nil
}

// WriteBytes appends the two bounds as little-endian u64s.
func (r AvailableBlockRange) WriteBytes(buf *[]byte) {
	bytesrepr.WriteU64(buf, r.Low)
	bytesrepr.WriteU64(buf, r.High)
}

// SerializedLength returns the encoded size of the range.
func (r AvailableBlockRange) SerializedLength() int {
	return 2 * bytesrepr.U64SerializedLength
}

// ReadAvailableBlockRange consumes a block range from the front of the input.
func ReadAvailableBlockRange(input []byte) (AvailableBlockRange, []byte, error) {
	low, rem, err := bytesrepr.ReadU64(input)
	if err != nil {
		return AvailableBlockRange{}, nil, err
	}
	high, rem, err := bytesrepr.ReadU64(rem)
	if err != nil {
		return AvailableBlockRange{}, nil, err
	}
	if low > high {
		return AvailableBlockRange{}, nil, bytesrepr.ErrFormatting
	}
	return AvailableBlockRange{Low: low, High: high}, rem, nil
}

// NextUpgrade describes an upgrade scheduled for a future era.
type NextUpgrade struct {
	ActivationPoint EraID           `json:"activation_point"`
	ProtocolVersion ProtocolVersion `json:"protocol_version"`
}

// WriteBytes appends the activation point followed by the version.
func (u NextUpgrade) WriteBytes(buf *[]byte) {
	u.ActivationPoint.WriteBytes(buf)
	u.ProtocolVersion.WriteBytes(buf)
}

// SerializedLength returns the encoded size of the upgrade descriptor.
func (u NextUpgrade) SerializedLength() int {
	return u.ActivationPoint.SerializedLength() + u.ProtocolVersion.SerializedLength()
}

// ReadNextUpgrade consumes an upgrade descriptor from the front of the input.
func ReadNextUpgrade(input []byte) (NextUpgrade, []byte, error) {
	activationPoint, rem, err := ReadEraID(input)
	if err != nil {
		return NextUpgrade{}, nil, err
	}
	version, rem, err := ReadProtocolVersion(rem)
	if err != nil {
		return NextUpgrade{}, nil, err
	}
	return NextUpgrade{ActivationPoint: activationPoint, ProtocolVersion: version}, rem, nil
}

// ReactorState names the phase the node's reactor is currently in.
type ReactorState uint8

const (
	ReactorStateInitialize ReactorState = iota
	ReactorStateCatchUp
	ReactorStateUpgrading
	ReactorStateKeepUp
	ReactorStateValidate
	ReactorStateShutdownForUpgrade
)

var reactorStateNames = map[ReactorState]string{
	ReactorStateInitialize:         "Initialize",
	ReactorStateCatchUp:            "CatchUp",
	ReactorStateUpgrading:          "Upgrading",
	ReactorStateKeepUp:             "KeepUp",
	ReactorStateValidate:           "Validate",
	ReactorStateShutdownForUpgrade: "ShutdownForUpgrade",
}

func (s ReactorState) String() string {
	if name, ok := reactorStateNames[s]; ok {
		return name
	}
	return fmt.Sprintf("ReactorState(%d)", uint8(s))
}

// WriteBytes appends the state discriminant.
func (s ReactorState) WriteBytes(buf *[]byte) {
	bytesrepr.WriteU8(buf, uint8(s))
}

// SerializedLength returns the encoded size of the state.
func (s ReactorState) SerializedLength() int {
	return bytesrepr.U8SerializedLength
}

// ReadReactorState consumes a reactor state from the front of the input.
func ReadReactorState(input []byte) (ReactorState, []byte, error) {
	tag, rem, err := bytesrepr.ReadU8(input)
	if err != nil {
		return 0, nil, err
	}
	state := ReactorState(tag)
	if _, ok := reactorStateNames[state]; !ok {
		return 0, nil, bytesrepr.ErrFormatting
	}
	return state, rem, nil
}

// MarshalJSON encodes the state by name.
func (s ReactorState) MarshalJSON() ([]byte, error) {
	name, ok := reactorStateNames[s]
	if !ok {
		return nil, fmt.Errorf("unknown reactor state %d", uint8(s))
	}
	return json.Marshal(name)
}

// UnmarshalJSON decodes the state from its name.
func (s *ReactorState) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	for state, stateName := range reactorStateNames {
		if stateName == name {
			*s = state
			return nil
		}
	}
	return fmt.Errorf("unknown reactor state %q", name)
}

// BlockSyncStatus describes the progress of one block synchronizer builder.
type BlockSyncStatus struct {
	BlockHash        BlockHash `json:"block_hash"`
	BlockHeight      *uint64   `json:"block_height,omitempty"`
	AcquisitionState string    `json:"acquisition_state"`
}

// WriteBytes appends the hash, optional height and acquisition state.
func (s BlockSyncStatus) WriteBytes(buf *[]byte) {
	s.BlockHash.WriteBytes(buf)
	bytesrepr.WriteOptionTag(buf, s.BlockHeight != nil)
	if s.BlockHeight != nil {
		bytesrepr.WriteU64(buf, *s.BlockHeight)
	}
	bytesrepr.WriteString(buf, s.AcquisitionState)
}

// SerializedLength returns the encoded size of the status.
func (s BlockSyncStatus) SerializedLength() int {
	length := s.BlockHash.SerializedLength() + bytesrepr.U8SerializedLength
	if s.BlockHeight != nil {
		length += bytesrepr.U64SerializedLength
	}
	return length + bytesrepr.StringSerializedLength(s.AcquisitionState)
}

// ReadBlockSyncStatus consumes a builder status from the front of the input.
func ReadBlockSyncStatus(input []byte) (BlockSyncStatus, []byte, error) {
	hash, rem, err := ReadBlockHash(input)
	if err != nil {
		return BlockSyncStatus{}, nil, err
	}
	present, rem, err := bytesrepr.ReadOptionTag(rem)
	if err != nil {
		return BlockSyncStatus{}, nil, err
	}
	status := BlockSyncStatus{BlockHash: hash}
	if present {
		height, remAfter, err := bytesrepr.ReadU64(rem)
		if err != nil {
			return BlockSyncStatus{}, nil, err
		}
		status.BlockHeight = &height
		rem = remAfter
	}
	status.AcquisitionState, rem, err = bytesrepr.ReadString(rem)
	if err != nil {
		return BlockSyncStatus{}, nil, err
	}
	return status, rem, nil
}

// BlockSynchronizerStatus is the status of the historical and forward block
// synchronizer builders.
type BlockSynchronizerStatus struct {
	Historical *BlockSyncStatus `json:"historical,omitempty"`
	Forward    *BlockSyncStatus `json:"forward,omitempty"`
}

// WriteBytes appends the two optional builder statuses.
func (s BlockSynchronizerStatus) WriteBytes(buf *[]byte) {
	bytesrepr.WriteOptionTag(buf, s.Historical != nil)
	if s.Historical != nil {
		s.Historical.WriteBytes(buf)
	}
	bytesrepr.WriteOptionTag(buf, s.Forward != nil)
	if s.Forward != nil {
		s.Forward.WriteBytes(buf)
	}
}

// SerializedLength returns the encoded size of the status.
func (s BlockSynchronizerStatus) SerializedLength() int {
	length := 2 * bytesrepr.U8SerializedLength
	if s.Historical != nil {
		length += s.Historical.SerializedLength()
	}
	if s.Forward != nil {
		length += s.Forward.SerializedLength()
	}
	return length
}

// ReadBlockSynchronizerStatus consumes a synchronizer status from the front
// of the input.
func ReadBlockSynchronizerStatus(input []byte) (BlockSynchronizerStatus, []byte, error) {
	var status BlockSynchronizerStatus
	present, rem, err := bytesrepr.ReadOptionTag(input)
	if err != nil {
		return BlockSynchronizerStatus{}, nil, err
	}
	if present {
		historical, remAfter, err := ReadBlockSyncStatus(rem)
		if err != nil {
			return BlockSynchronizerStatus{}, nil, err
		}
		status.Historical = &historical
		rem = remAfter
	}
	present, rem, err = bytesrepr.ReadOptionTag(rem)
	if err != nil {
		return BlockSynchronizerStatus{}, nil, err
	}
	if present {
		forward, remAfter, err := ReadBlockSyncStatus(rem)
		if err != nil {
			return BlockSynchronizerStatus{}, nil, err
		}
		status.Forward = &forward
		rem = remAfter
	}
	return status, rem, nil
}

// PeerEntry is one connected peer: its node id and network address.
type PeerEntry struct {
	NodeID  string `json:"node_id"`
	Address string `json:"address"`
}

// PeersMap lists the connected peers, ordered by node id so repeated queries
// against an unchanged peer set serialize identically.
type PeersMap []PeerEntry

// NewPeersMap builds a sorted peers map from an id-to-address mapping.
func NewPeersMap(peers map[string]string) PeersMap {
	out := make(PeersMap, 0, len(peers))
	for nodeID, address := range peers {
		out = append(out, PeerEntry{NodeID: nodeID, Address: address})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].NodeID < out[j].NodeID })
	return out
}

// WriteBytes appends a u32 count followed by each entry.
func (p PeersMap) WriteBytes(buf *[]byte) {
	bytesrepr.WriteU32(buf, uint32(len(p)))
	for _, entry := range p {
		bytesrepr.WriteString(buf, entry.NodeID)
		bytesrepr.WriteString(buf, entry.Address)
	}
}

// SerializedLength returns the encoded size of the peers map.
func (p PeersMap) SerializedLength() int {
	length := bytesrepr.U32SerializedLength
	for _, entry := range p {
		length += bytesrepr.StringSerializedLength(entry.NodeID)
		length += bytesrepr.StringSerializedLength(entry.Address)
	}
	return length
}

// ReadPeersMap consumes a peers map from the front of the input.
func ReadPeersMap(input []byte) (PeersMap, []byte, error) {
	count, rem, err := bytesrepr.ReadU32(input)
	if err != nil {
		return nil, nil, err
	}
	out := make(PeersMap, 0, count)
	for i := uint32(0); i < count; i++ {
		var nodeID, address string
		nodeID, rem, err = bytesrepr.ReadString(rem)
		if err != nil {
			return nil, nil, err
		}
		address, rem, err = bytesrepr.ReadString(rem)
		if err != nil {
			return nil, nil, err
		}
		out = append(out, PeerEntry{NodeID: nodeID, Address: address})
	}
	return out, rem, nil
}

// ConsensusStatus is the consensus engine's view of this node: its signing
// key and, if it is currently a validator, the round length.
type ConsensusStatus struct {
	OurPublicSigningKey PublicKey `json:"our_public_signing_key"`
	RoundLength         *TimeDiff `json:"round_length,omitempty"`
}

// WriteBytes appends the key followed by the optional round length.
func (s ConsensusStatus) WriteBytes(buf *[]byte) {
	s.OurPublicSigningKey.WriteBytes(buf)
	bytesrepr.WriteOptionTag(buf, s.RoundLength != nil)
	if s.RoundLength != nil {
		s.RoundLength.WriteBytes(buf)
	}
}

// SerializedLength returns the encoded size of the status.
func (s ConsensusStatus) SerializedLength() int {
	length := s.OurPublicSigningKey.SerializedLength() + bytesrepr.U8SerializedLength
	if s.RoundLength != nil {
		length += s.RoundLength.SerializedLength()
	}
	return length
}

// ReadConsensusStatus consumes a consensus status from the front of the
// input.
func ReadConsensusStatus(input []byte) (ConsensusStatus, []byte, error) {
	key, rem, err := ReadPublicKey(input)
	if err != nil {
		return ConsensusStatus{}, nil, err
	}
	present, rem, err := bytesrepr.ReadOptionTag(rem)
	if err != nil {
		return ConsensusStatus{}, nil, err
	}
	status := ConsensusStatus{OurPublicSigningKey: key}
	if present {
		roundLength, remAfter, err := ReadTimeDiff(rem)
		if err != nil {
			return ConsensusStatus{}, nil, err
		}
		status.RoundLength = &roundLength
		rem = remAfter
	}
	return status, rem, nil
}

// ValidatorChange is a single kind of change to a validator's status.
type ValidatorChange uint8

const (
	ValidatorChangeAdded ValidatorChange = iota
	ValidatorChangeRemoved
	ValidatorChangeBanned
	ValidatorChangeCannotPropose
	ValidatorChangeSeenAsFaulty
)

var validatorChangeNames = map[ValidatorChange]string{
	ValidatorChangeAdded:         "Added",
	ValidatorChangeRemoved:       "Removed",
	ValidatorChangeBanned:        "Banned",
	ValidatorChangeCannotPropose: "CannotPropose",
	ValidatorChangeSeenAsFaulty:  "SeenAsFaulty",
}

func (c ValidatorChange) String() string {
	if name, ok := validatorChangeNames[c]; ok {
		return name
	}
	return fmt.Sprintf("ValidatorChange(%d)", uint8(c))
}

// MarshalJSON encodes the change by name.
func (c ValidatorChange) MarshalJSON() ([]byte, error) {
	name, ok := validatorChangeNames[c]
	if !ok {
		return nil, fmt.Errorf("unknown validator change %d", uint8(c))
	}
	return json.Marshal(name)
}

// UnmarshalJSON decodes the change from its name.
func (c *ValidatorChange) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	for change, changeName := range validatorChangeNames {
		if changeName == name {
			*c = change
			return nil
		}
	}
	return fmt.Errorf("unknown validator change %q", name)
}

// ValidatorStatusChange is a validator change pinned to the era it occurred
// in.
type ValidatorStatusChange struct {
	EraID           EraID           `json:"era_id"`
	ValidatorChange ValidatorChange `json:"validator_change"`
}

// ValidatorChangeEntry is the full change history of one validator.
type ValidatorChangeEntry struct {
	PublicKey     PublicKey               `json:"public_key"`
	StatusChanges []ValidatorStatusChange `json:"status_changes"`
}

// ValidatorChanges is the change history of every validator, ordered by
// public key.
type ValidatorChanges []ValidatorChangeEntry

// WriteBytes appends a u32 count followed by each entry.
func (v ValidatorChanges) WriteBytes(buf *[]byte) {
	bytesrepr.WriteU32(buf, uint32(len(v)))
	for _, entry := range v {
		entry.PublicKey.WriteBytes(buf)
		bytesrepr.WriteU32(buf, uint32(len(entry.StatusChanges)))
		for _, change := range entry.StatusChanges {
			change.EraID.WriteBytes(buf)
			bytesrepr.WriteU8(buf, uint8(change.ValidatorChange))
		}
	}
}

// SerializedLength returns the encoded size of the change set.
func (v ValidatorChanges) SerializedLength() int {
	length := bytesrepr.U32SerializedLength
	for _, entry := range v {
		length += entry.PublicKey.SerializedLength() + bytesrepr.U32SerializedLength
		length += len(entry.StatusChanges) * (bytesrepr.U64SerializedLength + bytesrepr.U8SerializedLength)
	}
	return length
}

// ReadValidatorChanges consumes a change set from the front of the input.
func ReadValidatorChanges(input []byte) (ValidatorChanges, []byte, error) {
	count, rem, err := bytesrepr.ReadU32(input)
	if err != nil {
		return nil, nil, err
	}
	out := make(ValidatorChanges, 0, count)
	for i := uint32(0); i < count; i++ {
		var entry ValidatorChangeEntry
		entry.PublicKey, rem, err = ReadPublicKey(rem)
		if err != nil {
			return nil, nil, err
		}
		var changeCount uint32
		changeCount, rem, err = bytesrepr.ReadU32(rem)
		if err != nil {
			return nil, nil, err
		}
		entry.StatusChanges = make([]ValidatorStatusChange, 0, changeCount)
		for j := uint32(0); j < changeCount; j++ {
			var change ValidatorStatusChange
			change.EraID, rem, err = ReadEraID(rem)
			if err != nil {
				return nil, nil, err
			}
			var tag uint8
			tag, rem, err = bytesrepr.ReadU8(rem)
			if err != nil {
				return nil, nil, err
			}
			change.ValidatorChange = ValidatorChange(tag)
			if _, ok := validatorChangeNames[change.ValidatorChange]; !ok {
				return nil, nil, bytesrepr.ErrFormatting
			}
			entry.StatusChanges = append(entry.StatusChanges, change)
		}
		out = append(out, entry)
	}
	return out, rem, nil
}

// HexBytes is a byte slice that serializes to hex in JSON. It is used for
// raw file payloads such as the chainspec.
type HexBytes []byte

// MarshalJSON encodes the bytes as a hex string.
func (b HexBytes) MarshalJSON() ([]byte, error) {
	return json.Marshal(hex.EncodeToString(b))
}

// UnmarshalJSON decodes the bytes from a hex string.
func (b *HexBytes) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	decoded, err := hex.DecodeString(s)
	if err != nil {
		return err
	}
	*b = decoded
	return nil
}

// ChainspecRawBytes carries the raw chainspec file bytes along with the
// optional genesis accounts and global state files.
type ChainspecRawBytes struct {
	ChainspecBytes            HexBytes `json:"chainspec_bytes"`
	MaybeGenesisAccountsBytes HexBytes `json:"maybe_genesis_accounts_bytes,omitempty"`
	MaybeGlobalStateBytes     HexBytes `json:"maybe_global_state_bytes,omitempty"`
}

// WriteBytes appends the chainspec bytes and the two optional payloads.
func (c ChainspecRawBytes) WriteBytes(buf *[]byte) {
	bytesrepr.WriteByteSlice(buf, c.ChainspecBytes)
	bytesrepr.WriteOptionTag(buf, c.MaybeGenesisAccountsBytes != nil)
	if c.MaybeGenesisAccountsBytes != nil {
		bytesrepr.WriteByteSlice(buf, c.MaybeGenesisAccountsBytes)
	}
	bytesrepr.WriteOptionTag(buf, c.MaybeGlobalStateBytes != nil)
	if c.MaybeGlobalStateBytes != nil {
		bytesrepr.WriteByteSlice(buf, c.MaybeGlobalStateBytes)
	}
}

// SerializedLength returns the encoded size of the raw bytes bundle.
func (c ChainspecRawBytes) SerializedLength() int {
	length := bytesrepr.ByteSliceSerializedLength(c.ChainspecBytes) + 2*bytesrepr.U8SerializedLength
	if c.MaybeGenesisAccountsBytes != nil {
		length += bytesrepr.ByteSliceSerializedLength(c.MaybeGenesisAccountsBytes)
	}
	if c.MaybeGlobalStateBytes != nil {
		length += bytesrepr.ByteSliceSerializedLength(c.MaybeGlobalStateBytes)
	}
	return length
}

// ReadChainspecRawBytes consumes a raw bytes bundle from the front of the
// input.
func ReadChainspecRawBytes(input []byte) (ChainspecRawBytes, []byte, error) {
	chainspec, rem, err := bytesrepr.ReadByteSlice(input)
	if err != nil {
		return ChainspecRawBytes{}, nil, err
	}
	out := ChainspecRawBytes{ChainspecBytes: chainspec}
	present, rem, err := bytesrepr.ReadOptionTag(rem)
	if err != nil {
		return ChainspecRawBytes{}, nil, err
	}
	if present {
		accounts, remAfter, err := bytesrepr.ReadByteSlice(rem)
		if err != nil {
			return ChainspecRawBytes{}, nil, err
		}
		out.MaybeGenesisAccountsBytes = accounts
		rem = remAfter
	}
	present, rem, err = bytesrepr.ReadOptionTag(rem)
	if err != nil {
		return ChainspecRawBytes{}, nil, err
	}
	if present {
		globalState, remAfter, err := bytesrepr.ReadByteSlice(rem)
		if err != nil {
			return ChainspecRawBytes{}, nil, err
		}
		out.MaybeGlobalStateBytes = globalState
		rem = remAfter
	}
	return out, rem, nil
}
