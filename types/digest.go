package types

import (
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/jacek-casper/casper-node/bytesrepr"
)

// DigestLength is the length of every digest used by the protocol.
const DigestLength = 32

// Digest is a blake2b hash of arbitrary data.
type Digest [DigestLength]byte

// DigestFromHex parses a digest from its hex representation.
func DigestFromHex(s string) (Digest, error) {
	var d Digest
	b, err := hex.DecodeString(s)
	if err != nil {
		return d, fmt.Errorf("invalid digest hex: %w", err)
	}
	if len(b) != DigestLength {
		return d, fmt.Errorf("invalid digest length: got %d, want %d", len(b), DigestLength)
	}
	copy(d[:], b)
	return d, nil
}

func (d Digest) String() string {
	return hex.EncodeToString(d[:])
}

// WriteBytes appends the digest bytes, with no length prefix since the size
// is statically known.
func (d Digest) WriteBytes(buf *[]byte) {
	*buf = append(*buf, d[:]...)
}

// SerializedLength returns the encoded size of the digest.
func (d Digest) SerializedLength() int {
	return DigestLength
}

// ReadDigest consumes a digest from the front of the input.
func ReadDigest(input []byte) (Digest, []byte, error) {
	var d Digest
	b, rem, err := bytesrepr.ReadFixedBytes(input, DigestLength)
	if err != nil {
		return d, nil, err
	}
	copy(d[:], b)
	return d, rem, nil
}

// MarshalJSON encodes the digest as a hex string.
func (d Digest) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// UnmarshalJSON decodes the digest from a hex string.
func (d *Digest) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := DigestFromHex(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// BlockHash is the digest identifying a block.
type BlockHash Digest

// BlockHashFromHex parses a block hash from its hex representation.
func BlockHashFromHex(s string) (BlockHash, error) {
	d, err := DigestFromHex(s)
	return BlockHash(d), err
}

func (h BlockHash) String() string { return Digest(h).String() }

// WriteBytes appends the hash bytes.
func (h BlockHash) WriteBytes(buf *[]byte) { Digest(h).WriteBytes(buf) }

// SerializedLength returns the encoded size of the hash.
func (h BlockHash) SerializedLength() int { return DigestLength }

// ReadBlockHash consumes a block hash from the front of the input.
func ReadBlockHash(input []byte) (BlockHash, []byte, error) {
	d, rem, err := ReadDigest(input)
	return BlockHash(d), rem, err
}

// MarshalJSON encodes the hash as a hex string.
func (h BlockHash) MarshalJSON() ([]byte, error) { return Digest(h).MarshalJSON() }

// UnmarshalJSON decodes the hash from a hex string.
func (h *BlockHash) UnmarshalJSON(data []byte) error {
	return (*Digest)(h).UnmarshalJSON(data)
}

// DeployHash is the digest identifying a legacy deploy.
type DeployHash Digest

// DeployHashFromHex parses a deploy hash from its hex representation.
func DeployHashFromHex(s string) (DeployHash, error) {
	d, err := DigestFromHex(s)
	return DeployHash(d), err
}

func (h DeployHash) String() string { return Digest(h).String() }

// WriteBytes appends the hash bytes.
func (h DeployHash) WriteBytes(buf *[]byte) { Digest(h).WriteBytes(buf) }

// SerializedLength returns the encoded size of the hash.
func (h DeployHash) SerializedLength() int { return DigestLength }

// ReadDeployHash consumes a deploy hash from the front of the input.
func ReadDeployHash(input []byte) (DeployHash, []byte, error) {
	d, rem, err := ReadDigest(input)
	return DeployHash(d), rem, err
}

// MarshalJSON encodes the hash as a hex string.
func (h DeployHash) MarshalJSON() ([]byte, error) { return Digest(h).MarshalJSON() }

// UnmarshalJSON decodes the hash from a hex string.
func (h *DeployHash) UnmarshalJSON(data []byte) error {
	return (*Digest)(h).UnmarshalJSON(data)
}

// TransactionV1Hash is the digest identifying a version 1 transaction.
type TransactionV1Hash Digest

// TransactionV1HashFromHex parses a V1 transaction hash from its hex
// representation.
func TransactionV1HashFromHex(s string) (TransactionV1Hash, error) {
	d, err := DigestFromHex(s)
	return TransactionV1Hash(d), err
}

func (h TransactionV1Hash) String() string { return Digest(h).String() }

// WriteBytes appends the hash bytes.
func (h TransactionV1Hash) WriteBytes(buf *[]byte) { Digest(h).WriteBytes(buf) }

// SerializedLength returns the encoded size of the hash.
func (h TransactionV1Hash) SerializedLength() int { return DigestLength }

// ReadTransactionV1Hash consumes a V1 transaction hash from the front of the
// input.
func ReadTransactionV1Hash(input []byte) (TransactionV1Hash, []byte, error) {
	d, rem, err := ReadDigest(input)
	return TransactionV1Hash(d), rem, err
}

// MarshalJSON encodes the hash as a hex string.
func (h TransactionV1Hash) MarshalJSON() ([]byte, error) { return Digest(h).MarshalJSON() }

// UnmarshalJSON decodes the hash from a hex string.
func (h *TransactionV1Hash) UnmarshalJSON(data []byte) error {
	return (*Digest)(h).UnmarshalJSON(data)
}
