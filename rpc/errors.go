package rpc

import (
	"fmt"

	"github.com/jacek-casper/casper-node/types"
)

// NodeRequestError wraps a failed node query with the label of the
// sub-query that failed, so a composite handler failure still identifies
// which read broke.
type NodeRequestError struct {
	Label string
	Err   error
}

func (e *NodeRequestError) Error() string {
	return fmt.Sprintf("could not get %s from node: %v", e.Label, e.Err)
}

func (e *NodeRequestError) Unwrap() error {
	return e.Err
}

// nodeRequest labels an error from the data-access facade.
func nodeRequest(label string, err error) error {
	return &NodeRequestError{Label: label, Err: err}
}

// InconsistentTransactionVersionsError reports a transaction whose stored
// finalized approvals belong to the other version family. The data is
// corrupt and must not be coerced into a response.
type InconsistentTransactionVersionsError struct {
	Hash types.TransactionHash
}

func (e *InconsistentTransactionVersionsError) Error() string {
	return fmt.Sprintf("the transaction %s has mismatched versions of transaction and finalized approvals", e.Hash)
}

// FoundTransactionInsteadOfDeployError reports that a deploy-only endpoint
// resolved a current-family transaction.
type FoundTransactionInsteadOfDeployError struct {
	Hash types.TransactionHash
}

func (e *FoundTransactionInsteadOfDeployError) Error() string {
	return fmt.Sprintf("found a transaction at %s when only deploys are supported", e.Hash)
}

// NoDeployError reports that no deploy exists for the requested hash.
type NoDeployError struct {
	Hash types.DeployHash
}

func (e *NoDeployError) Error() string {
	return fmt.Sprintf("no deploy with hash %s", e.Hash)
}

// NoTransactionError reports that no transaction exists for the requested
// hash.
type NoTransactionError struct {
	Hash types.TransactionHash
}

func (e *NoTransactionError) Error() string {
	return fmt.Sprintf("no transaction with hash %s", e.Hash)
}

// NoBlockAtHeightError reports a block height that should have been
// resolvable but was not. The lower bound of the available block range is
// the main source of this.
type NoBlockAtHeightError struct {
	Height uint64
}

func (e *NoBlockAtHeightError) Error() string {
	return fmt.Sprintf("no block at height %d", e.Height)
}

// NoBlockWithHashError reports a block hash the node advertised but could
// not serve.
type NoBlockWithHashError struct {
	Hash types.BlockHash
}

func (e *NoBlockWithHashError) Error() string {
	return fmt.Sprintf("no block with hash %s", e.Hash)
}
