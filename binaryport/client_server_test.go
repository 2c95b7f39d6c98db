package binaryport_test

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jacek-casper/casper-node/binaryport"
	"github.com/jacek-casper/casper-node/bytesrepr"
	"github.com/jacek-casper/casper-node/types"
	"github.com/jacek-casper/casper-node/utils/unittest"
)

// fakeState is an in-memory StateProvider with just enough populated for the
// scenario under test.
type fakeState struct {
	records map[binaryport.DB]map[string][]byte
	legacy  map[string]bool

	heights      map[uint64]types.BlockHash
	highest      *types.BlockHashAndHeight
	txnLocations map[string]types.BlockHashAndHeight
	completed    map[types.BlockHash]bool

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
	chainspec        types.ChainspecRawBytes
	genesisAccounts  []byte
	globalState      []byte

	execResult types.ExecutionResult
	execCode   binaryport.ErrorCode
}

func newFakeState() *fakeState {
	return &fakeState{
		records:      make(map[binaryport.DB]map[string][]byte),
		legacy:       make(map[string]bool),
		heights:      make(map[uint64]types.BlockHash),
		txnLocations: make(map[string]types.BlockHashAndHeight),
		completed:    make(map[types.BlockHash]bool),
	}
}

func (f *fakeState) putRecord(db binaryport.DB, key, value []byte, isLegacy bool) {
	if f.records[db] == nil {
		f.records[db] = make(map[string][]byte)
	}
	f.records[db][string(key)] = value
	f.legacy[string(key)] = isLegacy
}

func (f *fakeState) GetRecord(db binaryport.DB, key []byte) (binaryport.RawBytesSpec, bool) {
	value, ok := f.records[db][string(key)]
	if !ok {
		return binaryport.RawBytesSpec{}, false
	}
	if f.legacy[string(key)] {
		return binaryport.NewLegacyRawBytes(value), true
	}
	return binaryport.NewCurrentRawBytes(value), true
}

func (f *fakeState) BlockHashAtHeight(height uint64) (types.BlockHash, bool) {
	hash, ok := f.heights[height]
	return hash, ok
}

func (f *fakeState) CompletedBlocksContain(hash types.BlockHash) bool {
	return f.completed[hash]
}

func (f *fakeState) BlockLocationOfTransaction(hash types.TransactionHash) (types.BlockHashAndHeight, bool) {
	location, ok := f.txnLocations[hash.String()]
	return location, ok
}

func (f *fakeState) HighestCompleteBlock() (types.BlockHashAndHeight, bool) {
	if f.highest == nil {
		return types.BlockHashAndHeight{}, false
	}
	return *f.highest, true
}

func (f *fakeState) Peers() types.PeersMap                      { return f.peers }
func (f *fakeState) Uptime() types.TimeDiff                     { return f.uptime }
func (f *fakeState) LastProgress() types.Timestamp              { return f.lastProgress }
func (f *fakeState) ReactorState() types.ReactorState           { return f.reactorState }
func (f *fakeState) NetworkName() string                        { return f.networkName }
func (f *fakeState) ConsensusValidatorChanges() types.ValidatorChanges {
	return f.validatorChanges
}
func (f *fakeState) BlockSynchronizerStatus() types.BlockSynchronizerStatus {
	return f.syncStatus
}
func (f *fakeState) AvailableBlockRange() types.AvailableBlockRange {
	return f.blockRange
}
func (f *fakeState) NextUpgrade() *types.NextUpgrade           { return f.nextUpgrade }
func (f *fakeState) ConsensusStatus() *types.ConsensusStatus   { return f.consensusStatus }
func (f *fakeState) ChainspecRawBytes() types.ChainspecRawBytes { return f.chainspec }

func (f *fakeState) GenesisAccountsBytes() ([]byte, bool) {
	return f.genesisAccounts, f.genesisAccounts != nil
}

func (f *fakeState) GlobalStateBytes() ([]byte, bool) {
	return f.globalState, f.globalState != nil
}

func (f *fakeState) SpeculativeExec(types.Transaction) (types.ExecutionResult, binaryport.ErrorCode) {
	return f.execResult, f.execCode
}

func startPort(t *testing.T, state binaryport.StateProvider) *binaryport.Client {
	t.Helper()
	log := zerolog.Nop()
	version := types.ProtocolVersion{Major: 2, Minor: 0, Patch: 0}

	server := binaryport.NewServer(log, state, version)
	require.NoError(t, server.Start("127.0.0.1:0"))
	t.Cleanup(func() { _ = server.Close() })

	client := binaryport.NewClient(log, server.Address())
	require.NoError(t, client.Connect(context.Background()))
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestClientServerStatusQueries(t *testing.T) {
	state := newFakeState()
	state.peers = unittest.PeersMapFixture()
	state.uptime = types.TimeDiff(90_000)
	state.lastProgress = types.Timestamp(1_600_010_000_000)
	state.reactorState = types.ReactorStateValidate
	state.networkName = "casper-test"
	state.validatorChanges = unittest.ValidatorChangesFixture()
	state.syncStatus = unittest.BlockSynchronizerStatusFixture()
	state.blockRange = types.AvailableBlockRange{Low: 5, High: 10}
	state.nextUpgrade = &types.NextUpgrade{
		ActivationPoint: 300,
		ProtocolVersion: types.ProtocolVersion{Major: 3},
	}
	consensus := unittest.ConsensusStatusFixture()
	state.consensusStatus = &consensus
	state.chainspec = unittest.ChainspecRawBytesFixture()

	client := startPort(t, state)
	ctx := context.Background()

	peers, err := client.ReadPeers(ctx)
	require.NoError(t, err)
	assert.Equal(t, state.peers, peers)

	uptime, err := client.ReadUptime(ctx)
	require.NoError(t, err)
	assert.Equal(t, state.uptime, uptime)

	lastProgress, err := client.ReadLastProgress(ctx)
	require.NoError(t, err)
	assert.Equal(t, state.lastProgress, lastProgress)

	reactorState, err := client.ReadReactorState(ctx)
	require.NoError(t, err)
	assert.Equal(t, types.ReactorStateValidate, reactorState)

	name, err := client.ReadNetworkName(ctx)
	require.NoError(t, err)
	assert.Equal(t, "casper-test", name)

	changes, err := client.ReadValidatorChanges(ctx)
	require.NoError(t, err)
	assert.Equal(t, state.validatorChanges, changes)

	syncStatus, err := client.ReadBlockSyncStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, state.syncStatus, syncStatus)

	blockRange, err := client.ReadAvailableBlockRange(ctx)
	require.NoError(t, err)
	assert.Equal(t, state.blockRange, blockRange)

	nextUpgrade, err := client.ReadNextUpgrade(ctx)
	require.NoError(t, err)
	require.NotNil(t, nextUpgrade)
	assert.Equal(t, *state.nextUpgrade, *nextUpgrade)

	consensusStatus, err := client.ReadConsensusStatus(ctx)
	require.NoError(t, err)
	require.NotNil(t, consensusStatus)
	assert.Equal(t, consensus, *consensusStatus)

	chainspec, err := client.ReadChainspecBytes(ctx)
	require.NoError(t, err)
	assert.Equal(t, state.chainspec, chainspec)

	assert.Equal(t, types.ProtocolVersion{Major: 2}, client.NodeVersion())
}

func TestClientServerAbsentOptionals(t *testing.T) {
	client := startPort(t, newFakeState())
	ctx := context.Background()

	nextUpgrade, err := client.ReadNextUpgrade(ctx)
	require.NoError(t, err)
	assert.Nil(t, nextUpgrade)

	consensusStatus, err := client.ReadConsensusStatus(ctx)
	require.NoError(t, err)
	assert.Nil(t, consensusStatus)

	highest, err := client.ReadHighestCompletedBlockInfo(ctx)
	require.NoError(t, err)
	assert.Nil(t, highest)

	hash, err := client.ReadBlockHashFromHeight(ctx, 9)
	require.NoError(t, err)
	assert.Nil(t, hash)

	accounts, err := client.ReadGenesisAccountsBytes(ctx)
	require.NoError(t, err)
	assert.Nil(t, accounts)
}

func TestClientServerBlockLookups(t *testing.T) {
	state := newFakeState()
	block := unittest.BlockFixture(8)
	state.heights[8] = block.Hash
	state.highest = &types.BlockHashAndHeight{BlockHash: block.Hash, BlockHeight: 8}
	state.putRecord(binaryport.DBBlockHeader, block.Hash[:], bytesrepr.ToBytes(block.Header), false)
	state.putRecord(binaryport.DBBlockBody, block.Hash[:], bytesrepr.ToBytes(block), false)
	state.completed[block.Hash] = true

	client := startPort(t, state)
	ctx := context.Background()

	hash, err := client.ReadBlockHashFromHeight(ctx, 8)
	require.NoError(t, err)
	require.NotNil(t, hash)
	assert.Equal(t, block.Hash, *hash)

	highest, err := client.ReadHighestCompletedBlockInfo(ctx)
	require.NoError(t, err)
	require.NotNil(t, highest)
	assert.Equal(t, uint64(8), highest.BlockHeight)

	header, err := client.ReadBlockHeader(ctx, block.Hash)
	require.NoError(t, err)
	require.NotNil(t, header)
	assert.Equal(t, block.Header, *header)

	got, err := client.ReadBlock(ctx, block.Hash)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, block, *got)

	missing, err := client.ReadBlockHeader(ctx, unittest.BlockHashFixture())
	require.NoError(t, err)
	assert.Nil(t, missing)

	contains, err := client.CompletedBlocksContain(ctx, block.Hash)
	require.NoError(t, err)
	assert.True(t, contains)

	contains, err = client.CompletedBlocksContain(ctx, unittest.BlockHashFixture())
	require.NoError(t, err)
	assert.False(t, contains)
}

func TestClientServerTransactionLookups(t *testing.T) {
	state := newFakeState()
	deploy := unittest.DeployFixture()
	txn := types.NewTransactionFromDeploy(deploy)
	hash := txn.Hash()
	key := bytesrepr.ToBytes(hash)

	finalized := types.FinalizedApprovals{
		Family:    types.TransactionFamilyDeploy,
		Approvals: unittest.ApprovalsFixture(2),
	}
	location := types.BlockHashAndHeight{BlockHash: unittest.BlockHashFixture(), BlockHeight: 3}
	result := types.ExecutionResult{Cost: 777}

	state.putRecord(binaryport.DBTransaction, key, bytesrepr.ToBytes(txn), false)
	state.putRecord(binaryport.DBFinalizedApprovals, key, bytesrepr.ToBytes(finalized), false)
	state.putRecord(binaryport.DBExecutionResult, key, bytesrepr.ToBytes(result), false)
	state.txnLocations[hash.String()] = location

	client := startPort(t, state)
	ctx := context.Background()

	gotTxn, gotApprovals, err := client.ReadTransactionWithApprovals(ctx, hash)
	require.NoError(t, err)
	require.NotNil(t, gotTxn)
	assert.Equal(t, txn, *gotTxn)
	require.NotNil(t, gotApprovals)
	assert.Equal(t, finalized, *gotApprovals)

	info, err := client.ReadExecutionInfo(ctx, hash)
	require.NoError(t, err)
	require.NotNil(t, info)
	assert.Equal(t, location.BlockHash, info.BlockHash)
	assert.Equal(t, location.BlockHeight, info.BlockHeight)
	require.NotNil(t, info.ExecutionResult)
	assert.Equal(t, result, *info.ExecutionResult)

	// A transaction the node has never seen resolves to nils, not errors.
	unknown := types.NewTransactionHashFromV1(unittest.TransactionV1HashFixture())
	gotTxn, gotApprovals, err = client.ReadTransactionWithApprovals(ctx, unknown)
	require.NoError(t, err)
	assert.Nil(t, gotTxn)
	assert.Nil(t, gotApprovals)

	info, err = client.ReadExecutionInfo(ctx, unknown)
	require.NoError(t, err)
	assert.Nil(t, info)
}

func TestClientServerSpeculativeExec(t *testing.T) {
	state := newFakeState()
	message := "invalid nonce"
	state.execResult = types.ExecutionResult{Cost: 10, ErrorMessage: &message}

	client := startPort(t, state)

	txn := types.NewTransactionFromV1(unittest.TransactionV1Fixture())
	result, err := client.SpeculativeExec(context.Background(), txn)
	require.NoError(t, err)
	assert.Equal(t, state.execResult, result)

	disabled := newFakeState()
	disabled.execCode = binaryport.ErrorCodeFunctionDisabled
	client = startPort(t, disabled)
	_, err = client.SpeculativeExec(context.Background(), txn)
	var portErr *binaryport.PortError
	require.ErrorAs(t, err, &portErr)
	assert.Equal(t, binaryport.ErrorCodeFunctionDisabled, portErr.Code)
}
