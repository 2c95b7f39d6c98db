package types

import (
	"encoding/json"
	"fmt"

	"github.com/jacek-casper/casper-node/bytesrepr"
)

// Approval is a signature over a transaction by one of its signers.
type Approval struct {
	Signer    PublicKey `json:"signer" cbor:"signer"`
	Signature Signature `json:"signature" cbor:"signature"`
}

// WriteBytes appends the signer followed by the signature.
func (a Approval) WriteBytes(buf *[]byte) {
	a.Signer.WriteBytes(buf)
	a.Signature.WriteBytes(buf)
}

// SerializedLength returns the encoded size of the approval.
func (a Approval) SerializedLength() int {
	return a.Signer.SerializedLength() + a.Signature.SerializedLength()
}

// ReadApproval consumes an approval from the front of the input.
func ReadApproval(input []byte) (Approval, []byte, error) {
	signer, rem, err := ReadPublicKey(input)
	if err != nil {
		return Approval{}, nil, err
	}
	sig, rem, err := ReadSignature(rem)
	if err != nil {
		return Approval{}, nil, err
	}
	return Approval{Signer: signer, Signature: sig}, rem, nil
}

// WriteApprovals appends a u32 count followed by each approval.
func WriteApprovals(buf *[]byte, approvals []Approval) {
	bytesrepr.WriteU32(buf, uint32(len(approvals)))
	for _, approval := range approvals {
		approval.WriteBytes(buf)
	}
}

// ApprovalsSerializedLength returns the encoded size of an approval list.
func ApprovalsSerializedLength(approvals []Approval) int {
	length := bytesrepr.U32SerializedLength
	for _, approval := range approvals {
		length += approval.SerializedLength()
	}
	return length
}

// ReadApprovals consumes a counted approval list from the front of the input.
func ReadApprovals(input []byte) ([]Approval, []byte, error) {
	count, rem, err := bytesrepr.ReadU32(input)
	if err != nil {
		return nil, nil, err
	}
	approvals := make([]Approval, 0, count)
	for i := uint32(0); i < count; i++ {
		var approval Approval
		approval, rem, err = ReadApproval(rem)
		if err != nil {
			return nil, nil, err
		}
		approvals = append(approvals, approval)
	}
	return approvals, rem, nil
}

// Deploy is a legacy-family transaction as originally received by the node.
type Deploy struct {
	Hash      DeployHash `json:"hash" cbor:"hash"`
	ChainName string     `json:"chain_name" cbor:"chain_name"`
	Timestamp Timestamp  `json:"timestamp" cbor:"timestamp"`
	TTL       TimeDiff   `json:"ttl" cbor:"ttl"`
	Approvals []Approval `json:"approvals" cbor:"approvals"`
}

// WithApprovals returns a copy of the deploy with its approval set replaced.
func (d Deploy) WithApprovals(approvals []Approval) Deploy {
	d.Approvals = approvals
	return d
}

// WriteBytes appends the deploy fields in declaration order.
func (d Deploy) WriteBytes(buf *[]byte) {
	d.Hash.WriteBytes(buf)
	bytesrepr.WriteString(buf, d.ChainName)
	d.Timestamp.WriteBytes(buf)
	d.TTL.WriteBytes(buf)
	WriteApprovals(buf, d.Approvals)
}

// SerializedLength returns the encoded size of the deploy.
func (d Deploy) SerializedLength() int {
	return d.Hash.SerializedLength() +
		bytesrepr.StringSerializedLength(d.ChainName) +
		d.Timestamp.SerializedLength() +
		d.TTL.SerializedLength() +
		ApprovalsSerializedLength(d.Approvals)
}

// ReadDeploy consumes a deploy from the front of the input.
func ReadDeploy(input []byte) (Deploy, []byte, error) {
	hash, rem, err := ReadDeployHash(input)
	if err != nil {
		return Deploy{}, nil, err
	}
	chainName, rem, err := bytesrepr.ReadString(rem)
	if err != nil {
		return Deploy{}, nil, err
	}
	timestamp, rem, err := ReadTimestamp(rem)
	if err != nil {
		return Deploy{}, nil, err
	}
	ttl, rem, err := ReadTimeDiff(rem)
	if err != nil {
		return Deploy{}, nil, err
	}
	approvals, rem, err := ReadApprovals(rem)
	if err != nil {
		return Deploy{}, nil, err
	}
	deploy := Deploy{
		Hash:      hash,
		ChainName: chainName,
		Timestamp: timestamp,
		TTL:       ttl,
		Approvals: approvals,
	}
	return deploy, rem, nil
}

// TransactionV1 is a current-family transaction.
type TransactionV1 struct {
	Hash      TransactionV1Hash `json:"hash" cbor:"hash"`
	ChainName string            `json:"chain_name" cbor:"chain_name"`
	Timestamp Timestamp         `json:"timestamp" cbor:"timestamp"`
	TTL       TimeDiff          `json:"ttl" cbor:"ttl"`
	Body      []byte            `json:"body" cbor:"body"`
	Approvals []Approval        `json:"approvals" cbor:"approvals"`
}

// WithApprovals returns a copy of the transaction with its approval set
// replaced.
func (t TransactionV1) WithApprovals(approvals []Approval) TransactionV1 {
	t.Approvals = approvals
	return t
}

// WriteBytes appends the transaction fields in declaration order.
func (t TransactionV1) WriteBytes(buf *[]byte) {
	t.Hash.WriteBytes(buf)
	bytesrepr.WriteString(buf, t.ChainName)
	t.Timestamp.WriteBytes(buf)
	t.TTL.WriteBytes(buf)
	bytesrepr.WriteByteSlice(buf, t.Body)
	WriteApprovals(buf, t.Approvals)
}

// SerializedLength returns the encoded size of the transaction.
func (t TransactionV1) SerializedLength() int {
	return t.Hash.SerializedLength() +
		bytesrepr.StringSerializedLength(t.ChainName) +
		t.Timestamp.SerializedLength() +
		t.TTL.SerializedLength() +
		bytesrepr.ByteSliceSerializedLength(t.Body) +
		ApprovalsSerializedLength(t.Approvals)
}

// ReadTransactionV1 consumes a V1 transaction from the front of the input.
func ReadTransactionV1(input []byte) (TransactionV1, []byte, error) {
	hash, rem, err := ReadTransactionV1Hash(input)
	if err != nil {
		return TransactionV1{}, nil, err
	}
	chainName, rem, err := bytesrepr.ReadString(rem)
	if err != nil {
		return TransactionV1{}, nil, err
	}
	timestamp, rem, err := ReadTimestamp(rem)
	if err != nil {
		return TransactionV1{}, nil, err
	}
	ttl, rem, err := ReadTimeDiff(rem)
	if err != nil {
		return TransactionV1{}, nil, err
	}
	body, rem, err := bytesrepr.ReadByteSlice(rem)
	if err != nil {
		return TransactionV1{}, nil, err
	}
	approvals, rem, err := ReadApprovals(rem)
	if err != nil {
		return TransactionV1{}, nil, err
	}
	txn := TransactionV1{
		Hash:      hash,
		ChainName: chainName,
		Timestamp: timestamp,
		TTL:       ttl,
		Body:      body,
		Approvals: approvals,
	}
	return txn, rem, nil
}

// TransactionFamily distinguishes the two transaction version families. The
// values double as wire tags for the Transaction and FinalizedApprovals
// unions.
type TransactionFamily uint8

const (
	// TransactionFamilyDeploy is the legacy deploy family.
	TransactionFamilyDeploy TransactionFamily = 0
	// TransactionFamilyV1 is the current version 1 family.
	TransactionFamilyV1 TransactionFamily = 1
)

func (f TransactionFamily) String() string {
	switch f {
	case TransactionFamilyDeploy:
		return "Deploy"
	case TransactionFamilyV1:
		return "Version1"
	default:
		return fmt.Sprintf("TransactionFamily(%d)", uint8(f))
	}
}

// Transaction is a transaction of either family. Exactly one variant is set.
type Transaction struct {
	deploy *Deploy
	v1     *TransactionV1
}

// NewTransactionFromDeploy wraps a legacy deploy.
func NewTransactionFromDeploy(deploy Deploy) Transaction {
	return Transaction{deploy: &deploy}
}

// NewTransactionFromV1 wraps a V1 transaction.
func NewTransactionFromV1(txn TransactionV1) Transaction {
	return Transaction{v1: &txn}
}

// Family returns the version family of the wrapped transaction.
func (t Transaction) Family() TransactionFamily {
	if t.v1 != nil {
		return TransactionFamilyV1
	}
	return TransactionFamilyDeploy
}

// AsDeploy returns the deploy variant, if set.
func (t Transaction) AsDeploy() (Deploy, bool) {
	if t.deploy == nil {
		return Deploy{}, false
	}
	return *t.deploy, true
}

// AsV1 returns the V1 variant, if set.
func (t Transaction) AsV1() (TransactionV1, bool) {
	if t.v1 == nil {
		return TransactionV1{}, false
	}
	return *t.v1, true
}

// Hash returns the tagged hash of the wrapped transaction.
func (t Transaction) Hash() TransactionHash {
	if t.v1 != nil {
		return NewTransactionHashFromV1(t.v1.Hash)
	}
	if t.deploy != nil {
		return NewTransactionHashFromDeploy(t.deploy.Hash)
	}
	return TransactionHash{}
}

// WriteBytes appends the family tag followed by the variant payload.
func (t Transaction) WriteBytes(buf *[]byte) {
	if t.v1 != nil {
		bytesrepr.WriteU8(buf, uint8(TransactionFamilyV1))
		t.v1.WriteBytes(buf)
		return
	}
	bytesrepr.WriteU8(buf, uint8(TransactionFamilyDeploy))
	if t.deploy != nil {
		t.deploy.WriteBytes(buf)
	}
}

// SerializedLength returns the encoded size of the tagged transaction.
func (t Transaction) SerializedLength() int {
	length := bytesrepr.U8SerializedLength
	if t.v1 != nil {
		return length + t.v1.SerializedLength()
	}
	if t.deploy != nil {
		return length + t.deploy.SerializedLength()
	}
	return length
}

// ReadTransaction consumes a tagged transaction from the front of the input.
func ReadTransaction(input []byte) (Transaction, []byte, error) {
	tag, rem, err := bytesrepr.ReadU8(input)
	if err != nil {
		return Transaction{}, nil, err
	}
	switch TransactionFamily(tag) {
	case TransactionFamilyDeploy:
		deploy, rem, err := ReadDeploy(rem)
		if err != nil {
			return Transaction{}, nil, err
		}
		return NewTransactionFromDeploy(deploy), rem, nil
	case TransactionFamilyV1:
		txn, rem, err := ReadTransactionV1(rem)
		if err != nil {
			return Transaction{}, nil, err
		}
		return NewTransactionFromV1(txn), rem, nil
	default:
		return Transaction{}, nil, bytesrepr.ErrFormatting
	}
}

type transactionJSON struct {
	Deploy *Deploy        `json:"Deploy,omitempty"`
	V1     *TransactionV1 `json:"Version1,omitempty"`
}

// MarshalJSON encodes the transaction as a single-key object naming the
// variant.
func (t Transaction) MarshalJSON() ([]byte, error) {
	return json.Marshal(transactionJSON{Deploy: t.deploy, V1: t.v1})
}

// UnmarshalJSON decodes the transaction from its single-key object form.
func (t *Transaction) UnmarshalJSON(data []byte) error {
	var wrapper transactionJSON
	if err := json.Unmarshal(data, &wrapper); err != nil {
		return err
	}
	switch {
	case wrapper.Deploy != nil && wrapper.V1 == nil:
		*t = NewTransactionFromDeploy(*wrapper.Deploy)
	case wrapper.V1 != nil && wrapper.Deploy == nil:
		*t = NewTransactionFromV1(*wrapper.V1)
	default:
		return fmt.Errorf("transaction must set exactly one of Deploy or Version1")
	}
	return nil
}

// FinalizedApprovals is the approval set a node recomputes after a
// transaction's inclusion in a block, tagged with the version family of the
// transaction it belongs to.
type FinalizedApprovals struct {
	Family    TransactionFamily `json:"family" cbor:"family"`
	Approvals []Approval        `json:"approvals" cbor:"approvals"`
}

// WriteBytes appends the family tag followed by the approval list.
func (f FinalizedApprovals) WriteBytes(buf *[]byte) {
	bytesrepr.WriteU8(buf, uint8(f.Family))
	WriteApprovals(buf, f.Approvals)
}

// SerializedLength returns the encoded size of the finalized approvals.
func (f FinalizedApprovals) SerializedLength() int {
	return bytesrepr.U8SerializedLength + ApprovalsSerializedLength(f.Approvals)
}

// ReadFinalizedApprovals consumes finalized approvals from the front of the
// input.
func ReadFinalizedApprovals(input []byte) (FinalizedApprovals, []byte, error) {
	tag, rem, err := bytesrepr.ReadU8(input)
	if err != nil {
		return FinalizedApprovals{}, nil, err
	}
	family := TransactionFamily(tag)
	if family != TransactionFamilyDeploy && family != TransactionFamilyV1 {
		return FinalizedApprovals{}, nil, bytesrepr.ErrFormatting
	}
	approvals, rem, err := ReadApprovals(rem)
	if err != nil {
		return FinalizedApprovals{}, nil, err
	}
	return FinalizedApprovals{Family: family, Approvals: approvals}, rem, nil
}

// ExecutionResult is the outcome of executing a transaction.
type ExecutionResult struct {
	Cost         uint64  `json:"cost" cbor:"cost"`
	ErrorMessage *string `json:"error_message,omitempty" cbor:"error_message,omitempty"`
}

// WriteBytes appends the cost followed by the optional error message.
func (r ExecutionResult) WriteBytes(buf *[]byte) {
	bytesrepr.WriteU64(buf, r.Cost)
	bytesrepr.WriteOptionTag(buf, r.ErrorMessage != nil)
	if r.ErrorMessage != nil {
		bytesrepr.WriteString(buf, *r.ErrorMessage)
	}
}

// SerializedLength returns the encoded size of the result.
func (r ExecutionResult) SerializedLength() int {
	length := bytesrepr.U64SerializedLength + bytesrepr.U8SerializedLength
	if r.ErrorMessage != nil {
		length += bytesrepr.StringSerializedLength(*r.ErrorMessage)
	}
	return length
}

// ReadExecutionResult consumes an execution result from the front of the
// input.
func ReadExecutionResult(input []byte) (ExecutionResult, []byte, error) {
	cost, rem, err := bytesrepr.ReadU64(input)
	if err != nil {
		return ExecutionResult{}, nil, err
	}
	present, rem, err := bytesrepr.ReadOptionTag(rem)
	if err != nil {
		return ExecutionResult{}, nil, err
	}
	result := ExecutionResult{Cost: cost}
	if present {
		msg, remAfter, err := bytesrepr.ReadString(rem)
		if err != nil {
			return ExecutionResult{}, nil, err
		}
		result.ErrorMessage = &msg
		rem = remAfter
	}
	return result, rem, nil
}

// ExecutionInfo locates a transaction's execution within the chain. It exists
// only once the transaction has been executed; absence is a valid state for a
// pending transaction.
type ExecutionInfo struct {
	BlockHash       BlockHash        `json:"block_hash"`
	BlockHeight     uint64           `json:"block_height"`
	ExecutionResult *ExecutionResult `json:"execution_result,omitempty"`
}
