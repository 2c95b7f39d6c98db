// Package bytesrepr implements the byte-level serialization format shared by
// every value that crosses the binary port. Unsigned integers are encoded
// little-endian at their natural width, booleans as a single byte, and
// variable-length payloads with a u32 length prefix. Decoding functions
// consume from the front of the input and return the unread remainder.
package bytesrepr

import (
	"encoding/binary"
	"errors"
)

var (
	// ErrFormatting indicates bytes that do not match any known encoding,
	// such as an unknown tag or an invalid discriminant.
	ErrFormatting = errors.New("bytesrepr: invalid formatting")

	// ErrEarlyEndOfStream indicates a declared length running past the end
	// of the input buffer.
	ErrEarlyEndOfStream = errors.New("bytesrepr: early end of stream")

	// ErrLeftoverBytes indicates trailing bytes after a strict decode.
	ErrLeftoverBytes = errors.New("bytesrepr: leftover bytes")
)

// Serialized lengths of the fixed-width primitives.
const (
	U8SerializedLength   = 1
	U32SerializedLength  = 4
	U64SerializedLength  = 8
	BoolSerializedLength = 1
)

// Encodable is implemented by every value with a binary-port encoding.
// WriteBytes appends the encoding to buf without intermediate allocation, and
// SerializedLength must equal the number of bytes WriteBytes appends.
type Encodable interface {
	WriteBytes(buf *[]byte)
	SerializedLength() int
}

// ToBytes encodes v into a freshly allocated buffer.
func ToBytes(v Encodable) []byte {
	buf := make([]byte, 0, v.SerializedLength())
	v.WriteBytes(&buf)
	return buf
}

// WriteU8 appends a single byte.
func WriteU8(buf *[]byte, v uint8) {
	*buf = append(*buf, v)
}

// ReadU8 consumes a single byte.
func ReadU8(input []byte) (uint8, []byte, error) {
	if len(input) < U8SerializedLength {
		return 0, nil, ErrEarlyEndOfStream
	}
	return input[0], input[1:], nil
}

// WriteU32 appends a little-endian u32.
func WriteU32(buf *[]byte, v uint32) {
	*buf = binary.LittleEndian.AppendUint32(*buf, v)
}

// ReadU32 consumes a little-endian u32.
func ReadU32(input []byte) (uint32, []byte, error) {
	if len(input) < U32SerializedLength {
		return 0, nil, ErrEarlyEndOfStream
	}
	return binary.LittleEndian.Uint32(input), input[U32SerializedLength:], nil
}

// WriteU64 appends a little-endian u64.
func WriteU64(buf *[]byte, v uint64) {
	*buf = binary.LittleEndian.AppendUint64(*buf, v)
}

// ReadU64 consumes a little-endian u64.
func ReadU64(input []byte) (uint64, []byte, error) {
	if len(input) < U64SerializedLength {
		return 0, nil, ErrEarlyEndOfStream
	}
	return binary.LittleEndian.Uint64(input), input[U64SerializedLength:], nil
}

// WriteBool appends a boolean as a single byte, 1 for true and 0 for false.
func WriteBool(buf *[]byte, v bool) {
	if v {
		*buf = append(*buf, 1)
	} else {
		*buf = append(*buf, 0)
	}
}

// ReadBool consumes a single byte, treating any nonzero value as true.
func ReadBool(input []byte) (bool, []byte, error) {
	b, rem, err := ReadU8(input)
	if err != nil {
		return false, nil, err
	}
	return b != 0, rem, nil
}

// WriteByteSlice appends a u32 length prefix followed by the raw bytes.
func WriteByteSlice(buf *[]byte, b []byte) {
	WriteU32(buf, uint32(len(b)))
	*buf = append(*buf, b...)
}

// ReadByteSlice consumes a u32 length prefix and then that many bytes. The
// returned slice is a copy, detached from the input buffer.
func ReadByteSlice(input []byte) ([]byte, []byte, error) {
	length, rem, err := ReadU32(input)
	if err != nil {
		return nil, nil, err
	}
	if uint64(len(rem)) < uint64(length) {
		return nil, nil, ErrEarlyEndOfStream
	}
	out := make([]byte, length)
	copy(out, rem[:length])
	return out, rem[length:], nil
}

// ByteSliceSerializedLength returns the encoded size of a length-prefixed
// byte slice.
func ByteSliceSerializedLength(b []byte) int {
	return U32SerializedLength + len(b)
}

// WriteString appends a string as a length-prefixed byte slice.
func WriteString(buf *[]byte, s string) {
	WriteU32(buf, uint32(len(s)))
	*buf = append(*buf, s...)
}

// ReadString consumes a length-prefixed string.
func ReadString(input []byte) (string, []byte, error) {
	b, rem, err := ReadByteSlice(input)
	if err != nil {
		return "", nil, err
	}
	return string(b), rem, nil
}

// StringSerializedLength returns the encoded size of a length-prefixed string.
func StringSerializedLength(s string) int {
	return U32SerializedLength + len(s)
}

// ReadFixedBytes consumes exactly n bytes, returning a copy.
func ReadFixedBytes(input []byte, n int) ([]byte, []byte, error) {
	if len(input) < n {
		return nil, nil, ErrEarlyEndOfStream
	}
	out := make([]byte, n)
	copy(out, input[:n])
	return out, input[n:], nil
}

// Option presence discriminants.
const (
	OptionNoneTag uint8 = 0
	OptionSomeTag uint8 = 1
)

// WriteOptionTag appends the presence byte of an optional value.
func WriteOptionTag(buf *[]byte, present bool) {
	if present {
		WriteU8(buf, OptionSomeTag)
	} else {
		WriteU8(buf, OptionNoneTag)
	}
}

// ReadOptionTag consumes the presence byte of an optional value. A
// discriminant other than 0 or 1 is a formatting error.
func ReadOptionTag(input []byte) (bool, []byte, error) {
	tag, rem, err := ReadU8(input)
	if err != nil {
		return false, nil, err
	}
	switch tag {
	case OptionNoneTag:
		return false, rem, nil
	case OptionSomeTag:
		return true, rem, nil
	default:
		return false, nil, ErrFormatting
	}
}
