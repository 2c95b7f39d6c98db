package binaryport

import (
	"github.com/jacek-casper/casper-node/bytesrepr"
	"github.com/jacek-casper/casper-node/types"
)

// BinaryProtocolVersion is the fixed-width protocol-version byte leading
// every frame. It changes only when the envelope layout itself changes; the
// tag registries evolve underneath it by appending.
const BinaryProtocolVersion uint8 = 0

// CommandTag discriminates the top-level request commands. Like every tag
// space in this package it is append-only.
type CommandTag uint8

const (
	// GetTag is a record lookup against one of the node's databases,
	// answered with a raw-bytes envelope.
	GetTag CommandTag = iota
	// InfoTag carries an information request.
	InfoTag
	// TrySpeculativeExecTag asks the node to speculatively execute a
	// transaction without committing its effects.
	TrySpeculativeExecTag

	firstUnassignedCommandTag
)

// DB identifies one of the node's record databases for Get lookups.
type DB uint8

const (
	DBBlockHeader DB = iota
	DBBlockBody
	DBTransaction
	DBExecutionResult
	DBFinalizedApprovals
	DBBlockHash2Height

	firstUnassignedDB
)

var dbNames = map[DB]string{
	DBBlockHeader:        "block-header",
	DBBlockBody:          "block-body",
	DBTransaction:        "transaction",
	DBExecutionResult:    "execution-result",
	DBFinalizedApprovals: "finalized-approvals",
	DBBlockHash2Height:   "block-hash-2-height",
}

func (db DB) String() string {
	if name, ok := dbNames[db]; ok {
		return name
	}
	return "DB(unknown)"
}

// Request is the top-level tagged union sent to the binary port.
// Exactly one variant is set.
type Request struct {
	get         *GetRequest
	info        InformationRequest
	speculative *types.Transaction
}

// GetRequest is a record lookup: a database identifier and a key.
type GetRequest struct {
	DB  DB
	Key []byte
}

// NewGetRequest builds a record lookup request.
func NewGetRequest(db DB, key []byte) Request {
	return Request{get: &GetRequest{DB: db, Key: key}}
}

// NewInfoRequest wraps an information request.
func NewInfoRequest(info InformationRequest) Request {
	return Request{info: info}
}

// NewTrySpeculativeExecRequest wraps a transaction to execute speculatively.
func NewTrySpeculativeExecRequest(txn types.Transaction) Request {
	return Request{speculative: &txn}
}

// AsGet returns the record lookup variant, if set.
func (r Request) AsGet() (GetRequest, bool) {
	if r.get == nil {
		return GetRequest{}, false
	}
	return *r.get, true
}

// AsInfo returns the information request variant, if set.
func (r Request) AsInfo() (InformationRequest, bool) {
	return r.info, r.info != nil
}

// AsTrySpeculativeExec returns the speculative execution variant, if set.
func (r Request) AsTrySpeculativeExec() (types.Transaction, bool) {
	if r.speculative == nil {
		return types.Transaction{}, false
	}
	return *r.speculative, true
}

// WriteBytes appends the command tag followed by the variant payload.
func (r Request) WriteBytes(buf *[]byte) {
	switch {
	case r.get != nil:
		bytesrepr.WriteU8(buf, uint8(GetTag))
		bytesrepr.WriteU8(buf, uint8(r.get.DB))
		bytesrepr.WriteByteSlice(buf, r.get.Key)
	case r.info != nil:
		bytesrepr.WriteU8(buf, uint8(InfoTag))
		r.info.WriteBytes(buf)
	case r.speculative != nil:
		bytesrepr.WriteU8(buf, uint8(TrySpeculativeExecTag))
		r.speculative.WriteBytes(buf)
	}
}

// SerializedLength returns the encoded size of the tagged request.
func (r Request) SerializedLength() int {
	length := bytesrepr.U8SerializedLength
	switch {
	case r.get != nil:
		length += bytesrepr.U8SerializedLength + bytesrepr.ByteSliceSerializedLength(r.get.Key)
	case r.info != nil:
		length += r.info.SerializedLength()
	case r.speculative != nil:
		length += r.speculative.SerializedLength()
	}
	return length
}

// ReadRequest consumes a top-level request from the front of the input.
func ReadRequest(input []byte) (Request, []byte, error) {
	tag, rem, err := bytesrepr.ReadU8(input)
	if err != nil {
		return Request{}, nil, err
	}
	switch CommandTag(tag) {
	case GetTag:
		dbTag, rem, err := bytesrepr.ReadU8(rem)
		if err != nil {
			return Request{}, nil, err
		}
		db := DB(dbTag)
		if db >= firstUnassignedDB {
			return Request{}, nil, bytesrepr.ErrFormatting
		}
		key, rem, err := bytesrepr.ReadByteSlice(rem)
		if err != nil {
			return Request{}, nil, err
		}
		return NewGetRequest(db, key), rem, nil
	case InfoTag:
		info, rem, err := ReadInformationRequest(rem)
		if err != nil {
			return Request{}, nil, err
		}
		return NewInfoRequest(info), rem, nil
	case TrySpeculativeExecTag:
		txn, rem, err := types.ReadTransaction(rem)
		if err != nil {
			return Request{}, nil, err
		}
		return NewTrySpeculativeExecRequest(txn), rem, nil
	default:
		return Request{}, nil, bytesrepr.ErrFormatting
	}
}

// ResponseHeader leads every response: the node's semantic protocol version
// followed by the error code. A payload follows only when the code is
// NoError and the request kind produces one.
type ResponseHeader struct {
	ProtocolVersion types.ProtocolVersion
	ErrorCode       ErrorCode
}

// WriteBytes appends the version triple and the error code.
func (h ResponseHeader) WriteBytes(buf *[]byte) {
	h.ProtocolVersion.WriteBytes(buf)
	h.ErrorCode.WriteBytes(buf)
}

// SerializedLength returns the encoded size of the header.
func (h ResponseHeader) SerializedLength() int {
	return h.ProtocolVersion.SerializedLength() + h.ErrorCode.SerializedLength()
}

// ReadResponseHeader consumes a response header from the front of the input.
func ReadResponseHeader(input []byte) (ResponseHeader, []byte, error) {
	version, rem, err := types.ReadProtocolVersion(input)
	if err != nil {
		return ResponseHeader{}, nil, err
	}
	code, rem, err := ReadErrorCode(rem)
	if err != nil {
		return ResponseHeader{}, nil, err
	}
	return ResponseHeader{ProtocolVersion: version, ErrorCode: code}, rem, nil
}
