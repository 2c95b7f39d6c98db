package binaryport

import (
	"errors"
	"fmt"

	"github.com/jacek-casper/casper-node/bytesrepr"
)

// ErrorCode signals a protocol-level failure in a response header. The
// values are stable wire integers: never renumbered, extendable only by
// appending. It is distinct from transport failures and is never thrown as a
// language-level fault; callers inspect it explicitly.
type ErrorCode uint8

const (
	ErrorCodeNoError ErrorCode = iota
	ErrorCodeFunctionDisabled
	ErrorCodeNotFound
	ErrorCodeRootNotFound
	ErrorCodeInvalidRequest
	ErrorCodeInternalError
	ErrorCodeUnsupportedRequest

	firstUnassignedErrorCode
)

var errorCodeNames = map[ErrorCode]string{
	ErrorCodeNoError:            "no error",
	ErrorCodeFunctionDisabled:   "function disabled",
	ErrorCodeNotFound:           "not found",
	ErrorCodeRootNotFound:       "root not found",
	ErrorCodeInvalidRequest:     "invalid request",
	ErrorCodeInternalError:      "internal error",
	ErrorCodeUnsupportedRequest: "unsupported request",
}

func (c ErrorCode) String() string {
	if name, ok := errorCodeNames[c]; ok {
		return name
	}
	return fmt.Sprintf("ErrorCode(%d)", uint8(c))
}

// WriteBytes appends the code byte.
func (c ErrorCode) WriteBytes(buf *[]byte) {
	bytesrepr.WriteU8(buf, uint8(c))
}

// SerializedLength returns the encoded size of the code.
func (c ErrorCode) SerializedLength() int {
	return bytesrepr.U8SerializedLength
}

// ReadErrorCode consumes an error code from the front of the input. Codes
// beyond the known registry are rejected, so a newer server appending codes
// surfaces as a formatting error rather than a misread.
func ReadErrorCode(input []byte) (ErrorCode, []byte, error) {
	tag, rem, err := bytesrepr.ReadU8(input)
	if err != nil {
		return 0, nil, err
	}
	code := ErrorCode(tag)
	if code >= firstUnassignedErrorCode {
		return 0, nil, bytesrepr.ErrFormatting
	}
	return code, rem, nil
}

// ErrNotFound reports that the requested entity does not exist on the node.
// The client maps ErrorCodeNotFound onto it so callers can branch with
// errors.Is.
var ErrNotFound = errors.New("binaryport: not found")

// PortError is a non-zero error code relayed from the binary port.
type PortError struct {
	Code ErrorCode
}

func (e *PortError) Error() string {
	return fmt.Sprintf("binary port error: %s", e.Code)
}

// IsNotFound reports whether an error chain originates from a NotFound
// response.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// AsError converts the code to an error: nil for NoError, ErrNotFound for
// NotFound, and a PortError otherwise.
func (c ErrorCode) AsError() error {
	switch c {
	case ErrorCodeNoError:
		return nil
	case ErrorCodeNotFound:
		return ErrNotFound
	default:
		return &PortError{Code: c}
	}
}
