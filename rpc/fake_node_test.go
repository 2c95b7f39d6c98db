package rpc_test

import (
	"context"

	"github.com/jacek-casper/casper-node/rpc"
	"github.com/jacek-casper/casper-node/types"
)

// fakeNode is an in-memory NodeClient. The errs map injects a failure into
// a single read, keyed by a short name, to drive the failure-labeling
// tests.
type fakeNode struct {
	peers            types.PeersMap
	uptime           types.TimeDiff
	lastProgress     types.Timestamp
	reactorState     types.ReactorState
	networkName      string
	validatorChanges types.ValidatorChanges
	syncStatus       types.BlockSynchronizerStatus
	blockRange       types.AvailableBlockRange
	nextUpgrade      *types.NextUpgrade
	consensusStatus  *types.ConsensusStatus
	highest          *types.BlockHashAndHeight
	chainspec        types.ChainspecRawBytes

	heightToHash map[uint64]types.BlockHash
	headers      map[types.BlockHash]*types.BlockHeader
	blocks       map[types.BlockHash]*types.Block
	transactions map[string]*types.Transaction
	finalized    map[string]*types.FinalizedApprovals
	execInfos    map[string]*types.ExecutionInfo

	errs map[string]error
}

func newFakeNode() *fakeNode {
	return &fakeNode{
		heightToHash: make(map[uint64]types.BlockHash),
		headers:      make(map[types.BlockHash]*types.BlockHeader),
		blocks:       make(map[types.BlockHash]*types.Block),
		transactions: make(map[string]*types.Transaction),
		finalized:    make(map[string]*types.FinalizedApprovals),
		execInfos:    make(map[string]*types.ExecutionInfo),
		errs:         make(map[string]error),
	}
}

var _ rpc.NodeClient = (*fakeNode)(nil)

func (f *fakeNode) putBlock(block types.Block) {
	b := block
	f.heightToHash[block.Header.Height] = block.Hash
	f.headers[block.Hash] = &b.Header
	f.blocks[block.Hash] = &b
}

func (f *fakeNode) ReadPeers(context.Context) (types.PeersMap, error) {
	if err := f.errs["peers"]; err != nil {
		return nil, err
	}
	return f.peers, nil
}

func (f *fakeNode) ReadUptime(context.Context) (types.TimeDiff, error) {
	return f.uptime, f.errs["uptime"]
}

func (f *fakeNode) ReadLastProgress(context.Context) (types.Timestamp, error) {
	return f.lastProgress, f.errs["last progress"]
}

func (f *fakeNode) ReadReactorState(context.Context) (types.ReactorState, error) {
	return f.reactorState, f.errs["reactor state"]
}

func (f *fakeNode) ReadNetworkName(context.Context) (string, error) {
	return f.networkName, f.errs["network name"]
}

func (f *fakeNode) ReadValidatorChanges(context.Context) (types.ValidatorChanges, error) {
	return f.validatorChanges, f.errs["validator changes"]
}

func (f *fakeNode) ReadBlockSyncStatus(context.Context) (types.BlockSynchronizerStatus, error) {
	return f.syncStatus, f.errs["block sync"]
}

func (f *fakeNode) ReadAvailableBlockRange(context.Context) (types.AvailableBlockRange, error) {
	return f.blockRange, f.errs["available block range"]
}

func (f *fakeNode) ReadNextUpgrade(context.Context) (*types.NextUpgrade, error) {
	return f.nextUpgrade, f.errs["next upgrade"]
}

func (f *fakeNode) ReadConsensusStatus(context.Context) (*types.ConsensusStatus, error) {
	return f.consensusStatus, f.errs["consensus status"]
}

func (f *fakeNode) ReadHighestCompletedBlockInfo(context.Context) (*types.BlockHashAndHeight, error) {
	return f.highest, f.errs["highest block"]
}

func (f *fakeNode) ReadBlockHashFromHeight(_ context.Context, height uint64) (*types.BlockHash, error) {
	if err := f.errs["block hash from height"]; err != nil {
		return nil, err
	}
	hash, ok := f.heightToHash[height]
	if !ok {
		return nil, nil
	}
	return &hash, nil
}

func (f *fakeNode) ReadBlockHeader(_ context.Context, hash types.BlockHash) (*types.BlockHeader, error) {
	if err := f.errs["block header"]; err != nil {
		return nil, err
	}
	return f.headers[hash], nil
}

func (f *fakeNode) ReadBlock(_ context.Context, hash types.BlockHash) (*types.Block, error) {
	if err := f.errs["block"]; err != nil {
		return nil, err
	}
	return f.blocks[hash], nil
}

func (f *fakeNode) ReadChainspecBytes(context.Context) (types.ChainspecRawBytes, error) {
	return f.chainspec, f.errs["chainspec"]
}

func (f *fakeNode) ReadTransactionWithApprovals(
	_ context.Context,
	hash types.TransactionHash,
) (*types.Transaction, *types.FinalizedApprovals, error) {
	if err := f.errs["transaction"]; err != nil {
		return nil, nil, err
	}
	return f.transactions[hash.String()], f.finalized[hash.String()], nil
}

func (f *fakeNode) ReadExecutionInfo(_ context.Context, hash types.TransactionHash) (*types.ExecutionInfo, error) {
	if err := f.errs["execution info"]; err != nil {
		return nil, err
	}
	return f.execInfos[hash.String()], nil
}
