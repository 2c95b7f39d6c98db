// Package rpc is the JSON-RPC facade over the binary port: method handlers
// that issue one or more node queries, reconcile the results, and assemble
// the documented response shapes.
package rpc

import (
	"context"

	"github.com/jacek-casper/casper-node/types"
)

// NodeClient is the data-access capability the handlers run against. It is
// the sole path to node state; handlers never touch storage or the wire
// directly. Each call is an independent read with no ordering or snapshot
// guarantees across calls.
//
// Lookups that can legitimately miss return nil rather than an error, so
// callers can distinguish "absent" from "the query failed".
type NodeClient interface {
	ReadPeers(ctx context.Context) (types.PeersMap, error)
	ReadUptime(ctx context.Context) (types.TimeDiff, error)
	ReadLastProgress(ctx context.Context) (types.Timestamp, error)
	ReadReactorState(ctx context.Context) (types.ReactorState, error)
	ReadNetworkName(ctx context.Context) (string, error)
	ReadValidatorChanges(ctx context.Context) (types.ValidatorChanges, error)
	ReadBlockSyncStatus(ctx context.Context) (types.BlockSynchronizerStatus, error)
	ReadAvailableBlockRange(ctx context.Context) (types.AvailableBlockRange, error)
	ReadNextUpgrade(ctx context.Context) (*types.NextUpgrade, error)
	ReadConsensusStatus(ctx context.Context) (*types.ConsensusStatus, error)
	ReadHighestCompletedBlockInfo(ctx context.Context) (*types.BlockHashAndHeight, error)
	ReadBlockHashFromHeight(ctx context.Context, height uint64) (*types.BlockHash, error)
	ReadBlockHeader(ctx context.Context, hash types.BlockHash) (*types.BlockHeader, error)
	ReadBlock(ctx context.Context, hash types.BlockHash) (*types.Block, error)
	ReadChainspecBytes(ctx context.Context) (types.ChainspecRawBytes, error)
	ReadTransactionWithApprovals(ctx context.Context, hash types.TransactionHash) (*types.Transaction, *types.FinalizedApprovals, error)
	ReadExecutionInfo(ctx context.Context, hash types.TransactionHash) (*types.ExecutionInfo, error)
}
