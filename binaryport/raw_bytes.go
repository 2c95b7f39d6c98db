package binaryport

import (
	"github.com/jacek-casper/casper-node/bytesrepr"
)

// RawBytesSpec wraps raw bytes read from the node's database together with a
// flag recording whether they were produced by the legacy on-disk format.
// The flag is load-bearing: legacy and current blobs require different
// secondary decoders, and every consumer must branch on IsLegacy before
// interpreting the payload. The two constructors are the only way to build a
// value, so an envelope can never be ambiguous.
type RawBytesSpec struct {
	isLegacy bool
	rawBytes []byte
}

// NewLegacyRawBytes wraps bytes produced by the legacy database format.
func NewLegacyRawBytes(rawBytes []byte) RawBytesSpec {
	return RawBytesSpec{isLegacy: true, rawBytes: copyBytes(rawBytes)}
}

// NewCurrentRawBytes wraps bytes produced by the current database format.
func NewCurrentRawBytes(rawBytes []byte) RawBytesSpec {
	return RawBytesSpec{isLegacy: false, rawBytes: copyBytes(rawBytes)}
}

func copyBytes(b []byte) []byte {
	out := make([]byte, len(b))
	copy(out, b)
	return out
}

// IsLegacy reports whether the bytes come from the legacy database format.
func (s RawBytesSpec) IsLegacy() bool {
	return s.isLegacy
}

// RawBytes returns a copy of the wrapped bytes.
func (s RawBytesSpec) RawBytes() []byte {
	return copyBytes(s.rawBytes)
}

// WriteBytes appends the legacy flag followed by the length-prefixed bytes.
func (s RawBytesSpec) WriteBytes(buf *[]byte) {
	bytesrepr.WriteBool(buf, s.isLegacy)
	bytesrepr.WriteByteSlice(buf, s.rawBytes)
}

// SerializedLength returns the encoded size of the envelope.
func (s RawBytesSpec) SerializedLength() int {
	return bytesrepr.BoolSerializedLength + bytesrepr.ByteSliceSerializedLength(s.rawBytes)
}

// ReadRawBytesSpec consumes an envelope from the front of the input.
func ReadRawBytesSpec(input []byte) (RawBytesSpec, []byte, error) {
	isLegacy, rem, err := bytesrepr.ReadBool(input)
	if err != nil {
		return RawBytesSpec{}, nil, err
	}
	rawBytes, rem, err := bytesrepr.ReadByteSlice(rem)
	if err != nil {
		return RawBytesSpec{}, nil, err
	}
	if isLegacy {
		return NewLegacyRawBytes(rawBytes), rem, nil
	}
	return NewCurrentRawBytes(rawBytes), rem, nil
}
