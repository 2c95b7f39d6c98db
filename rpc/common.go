package rpc

import (
	"context"

	"github.com/jacek-casper/casper-node/types"
)

// fetchTransaction reads a transaction and its optional finalized approvals.
// A nil transaction result means the node holds nothing under the hash.
func fetchTransaction(
	ctx context.Context,
	node NodeClient,
	hash types.TransactionHash,
) (*types.Transaction, *types.FinalizedApprovals, error) {
	txn, finalized, err := node.ReadTransactionWithApprovals(ctx, hash)
	if err != nil {
		return nil, nil, nodeRequest("transaction", err)
	}
	return txn, finalized, nil
}

// reconcileApprovals applies the finalized approvals rule. The outcome
// space is closed:
//
//   - no finalized approvals stored: the transaction is returned as
//     received;
//   - finalized approvals of the matching family: substituted only when the
//     caller asked for them, otherwise the original approvals stand;
//   - finalized approvals of the other family: the stored data is
//     inconsistent and the call fails, regardless of the flag.
func reconcileApprovals(
	hash types.TransactionHash,
	txn types.Transaction,
	finalized *types.FinalizedApprovals,
	wantFinalizedApprovals bool,
) (types.Transaction, error) {
	if finalized == nil {
		return txn, nil
	}
	if finalized.Family != txn.Family() {
		return types.Transaction{}, &InconsistentTransactionVersionsError{Hash: hash}
	}
	if !wantFinalizedApprovals {
		return txn, nil
	}
	return withApprovals(txn, finalized.Approvals), nil
}

// withApprovals replaces a transaction's approval set within its family.
func withApprovals(txn types.Transaction, approvals []types.Approval) types.Transaction {
	if deploy, ok := txn.AsDeploy(); ok {
		return types.NewTransactionFromDeploy(deploy.WithApprovals(approvals))
	}
	if v1, ok := txn.AsV1(); ok {
		return types.NewTransactionFromV1(v1.WithApprovals(approvals))
	}
	return txn
}

// fetchExecutionInfo attaches where and how the transaction executed, if it
// has. A pending transaction yields nil, which is not an error.
func fetchExecutionInfo(
	ctx context.Context,
	node NodeClient,
	hash types.TransactionHash,
) (*types.ExecutionInfo, error) {
	info, err := node.ReadExecutionInfo(ctx, hash)
	if err != nil {
		return nil, nodeRequest("execution info", err)
	}
	return info, nil
}
