package types

import (
	"encoding/json"
	"fmt"

	"github.com/jacek-casper/casper-node/bytesrepr"
)

// Wire discriminants of the transaction hash variants. Assigned once, never
// reused.
const (
	TransactionHashDeployTag uint8 = 0
	TransactionHashV1Tag     uint8 = 1
)

// TransactionHash identifies a transaction of either family: a legacy deploy
// or a version 1 transaction. Exactly one variant is set.
type TransactionHash struct {
	deploy *DeployHash
	v1     *TransactionV1Hash
}

// NewTransactionHashFromDeploy wraps a deploy hash.
func NewTransactionHashFromDeploy(hash DeployHash) TransactionHash {
	return TransactionHash{deploy: &hash}
}

// NewTransactionHashFromV1 wraps a V1 transaction hash.
func NewTransactionHashFromV1(hash TransactionV1Hash) TransactionHash {
	return TransactionHash{v1: &hash}
}

// AsDeploy returns the deploy hash variant, if set.
func (h TransactionHash) AsDeploy() (DeployHash, bool) {
	if h.deploy == nil {
		return DeployHash{}, false
	}
	return *h.deploy, true
}

// AsV1 returns the V1 hash variant, if set.
func (h TransactionHash) AsV1() (TransactionV1Hash, bool) {
	if h.v1 == nil {
		return TransactionV1Hash{}, false
	}
	return *h.v1, true
}

// Digest returns the underlying digest regardless of variant.
func (h TransactionHash) Digest() Digest {
	if h.deploy != nil {
		return Digest(*h.deploy)
	}
	if h.v1 != nil {
		return Digest(*h.v1)
	}
	return Digest{}
}

func (h TransactionHash) String() string {
	if h.deploy != nil {
		return fmt.Sprintf("deploy-hash(%s)", h.deploy)
	}
	if h.v1 != nil {
		return fmt.Sprintf("transaction-v1-hash(%s)", h.v1)
	}
	return "transaction-hash(unset)"
}

// WriteBytes appends the variant tag followed by the digest.
func (h TransactionHash) WriteBytes(buf *[]byte) {
	if h.v1 != nil {
		bytesrepr.WriteU8(buf, TransactionHashV1Tag)
		h.v1.WriteBytes(buf)
		return
	}
	bytesrepr.WriteU8(buf, TransactionHashDeployTag)
	d := h.Digest()
	DeployHash(d).WriteBytes(buf)
}

// SerializedLength returns the encoded size of the tagged hash.
func (h TransactionHash) SerializedLength() int {
	return bytesrepr.U8SerializedLength + DigestLength
}

// ReadTransactionHash consumes a tagged transaction hash from the front of
// the input.
func ReadTransactionHash(input []byte) (TransactionHash, []byte, error) {
	tag, rem, err := bytesrepr.ReadU8(input)
	if err != nil {
		return TransactionHash{}, nil, err
	}
	switch tag {
	case TransactionHashDeployTag:
		hash, rem, err := ReadDeployHash(rem)
		if err != nil {
			return TransactionHash{}, nil, err
		}
		return NewTransactionHashFromDeploy(hash), rem, nil
	case TransactionHashV1Tag:
		hash, rem, err := ReadTransactionV1Hash(rem)
		if err != nil {
			return TransactionHash{}, nil, err
		}
		return NewTransactionHashFromV1(hash), rem, nil
	default:
		return TransactionHash{}, nil, bytesrepr.ErrFormatting
	}
}

type transactionHashJSON struct {
	Deploy *DeployHash        `json:"Deploy,omitempty"`
	V1     *TransactionV1Hash `json:"Version1,omitempty"`
}

// MarshalJSON encodes the hash as a single-key object naming the variant.
func (h TransactionHash) MarshalJSON() ([]byte, error) {
	return json.Marshal(transactionHashJSON{Deploy: h.deploy, V1: h.v1})
}

// UnmarshalJSON decodes the hash from its single-key object form.
func (h *TransactionHash) UnmarshalJSON(data []byte) error {
	var wrapper transactionHashJSON
	if err := json.Unmarshal(data, &wrapper); err != nil {
		return err
	}
	switch {
	case wrapper.Deploy != nil && wrapper.V1 == nil:
		*h = NewTransactionHashFromDeploy(*wrapper.Deploy)
	case wrapper.V1 != nil && wrapper.Deploy == nil:
		*h = NewTransactionHashFromV1(*wrapper.V1)
	default:
		return fmt.Errorf("transaction hash must set exactly one of Deploy or Version1")
	}
	return nil
}
