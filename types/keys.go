package types

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/jacek-casper/casper-node/bytesrepr"
)

// Key algorithm discriminants. The discriminant byte leads the key material
// both on the wire and in the hex JSON form.
const (
	Ed25519Tag   uint8 = 1
	Secp256k1Tag uint8 = 2
)

// Key material lengths, excluding the algorithm byte.
const (
	Ed25519PublicKeyLength   = 32
	Secp256k1PublicKeyLength = 33
	SignatureLength          = 64
)

// PublicKey is an algorithm-tagged public key: the first byte identifies the
// algorithm and the rest is the raw key material.
type PublicKey []byte

// NewPublicKey validates and wraps tagged key bytes.
func NewPublicKey(tagged []byte) (PublicKey, error) {
	if err := validatePublicKey(tagged); err != nil {
		return nil, err
	}
	out := make(PublicKey, len(tagged))
	copy(out, tagged)
	return out, nil
}

// PublicKeyFromHex parses a public key from its tagged hex representation.
func PublicKeyFromHex(s string) (PublicKey, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("invalid public key hex: %w", err)
	}
	return NewPublicKey(b)
}

func validatePublicKey(tagged []byte) error {
	if len(tagged) == 0 {
		return fmt.Errorf("empty public key")
	}
	switch tagged[0] {
	case Ed25519Tag:
		if len(tagged) != 1+Ed25519PublicKeyLength {
			return fmt.Errorf("invalid ed25519 public key length %d", len(tagged)-1)
		}
	case Secp256k1Tag:
		if len(tagged) != 1+Secp256k1PublicKeyLength {
			return fmt.Errorf("invalid secp256k1 public key length %d", len(tagged)-1)
		}
	default:
		return fmt.Errorf("unknown public key algorithm tag %d", tagged[0])
	}
	return nil
}

func (pk PublicKey) String() string {
	return hex.EncodeToString(pk)
}

// Equal reports whether two keys carry identical tagged bytes.
func (pk PublicKey) Equal(other PublicKey) bool {
	return bytes.Equal(pk, other)
}

// WriteBytes appends the tagged key. No length prefix is needed since the
// algorithm tag determines the key length.
func (pk PublicKey) WriteBytes(buf *[]byte) {
	*buf = append(*buf, pk...)
}

// SerializedLength returns the encoded size of the tagged key.
func (pk PublicKey) SerializedLength() int {
	return len(pk)
}

// ReadPublicKey consumes a tagged public key from the front of the input.
func ReadPublicKey(input []byte) (PublicKey, []byte, error) {
	if len(input) == 0 {
		return nil, nil, bytesrepr.ErrEarlyEndOfStream
	}
	var keyLen int
	switch input[0] {
	case Ed25519Tag:
		keyLen = Ed25519PublicKeyLength
	case Secp256k1Tag:
		keyLen = Secp256k1PublicKeyLength
	default:
		return nil, nil, bytesrepr.ErrFormatting
	}
	tagged, rem, err := bytesrepr.ReadFixedBytes(input, 1+keyLen)
	if err != nil {
		return nil, nil, err
	}
	return PublicKey(tagged), rem, nil
}

// MarshalJSON encodes the key as tagged hex.
func (pk PublicKey) MarshalJSON() ([]byte, error) {
	return json.Marshal(pk.String())
}

// UnmarshalJSON decodes the key from tagged hex.
func (pk *PublicKey) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := PublicKeyFromHex(s)
	if err != nil {
		return err
	}
	*pk = parsed
	return nil
}

// Signature is an algorithm-tagged signature, laid out like PublicKey.
type Signature []byte

// NewSignature validates and wraps tagged signature bytes.
func NewSignature(tagged []byte) (Signature, error) {
	if len(tagged) != 1+SignatureLength {
		return nil, fmt.Errorf("invalid signature length %d", len(tagged))
	}
	if tagged[0] != Ed25519Tag && tagged[0] != Secp256k1Tag {
		return nil, fmt.Errorf("unknown signature algorithm tag %d", tagged[0])
	}
	out := make(Signature, len(tagged))
	copy(out, tagged)
	return out, nil
}

// SignatureFromHex parses a signature from its tagged hex representation.
func SignatureFromHex(s string) (Signature, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("invalid signature hex: %w", err)
	}
	return NewSignature(b)
}

func (sig Signature) String() string {
	return hex.EncodeToString(sig)
}

// WriteBytes appends the tagged signature.
func (sig Signature) WriteBytes(buf *[]byte) {
	*buf = append(*buf, sig...)
}

// SerializedLength returns the encoded size of the tagged signature.
func (sig Signature) SerializedLength() int {
	return len(sig)
}

// ReadSignature consumes a tagged signature from the front of the input.
func ReadSignature(input []byte) (Signature, []byte, error) {
	if len(input) == 0 {
		return nil, nil, bytesrepr.ErrEarlyEndOfStream
	}
	if input[0] != Ed25519Tag && input[0] != Secp256k1Tag {
		return nil, nil, bytesrepr.ErrFormatting
	}
	tagged, rem, err := bytesrepr.ReadFixedBytes(input, 1+SignatureLength)
	if err != nil {
		return nil, nil, err
	}
	return Signature(tagged), rem, nil
}

// MarshalJSON encodes the signature as tagged hex.
func (sig Signature) MarshalJSON() ([]byte, error) {
	return json.Marshal(sig.String())
}

// UnmarshalJSON decodes the signature from tagged hex.
func (sig *Signature) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := SignatureFromHex(s)
	if err != nil {
		return err
	}
	*sig = parsed
	return nil
}
