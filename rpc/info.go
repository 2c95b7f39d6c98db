package rpc

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/jacek-casper/casper-node/types"
)

// InfoHandler implements the info_* JSON-RPC methods. The node client is an
// explicit capability; handlers hold no other state than the immutable
// version strings injected at startup.
type InfoHandler struct {
	log          zerolog.Logger
	node         NodeClient
	apiVersion   types.ProtocolVersion
	buildVersion string
}

// NewInfoHandler creates the handler set. buildVersion is the composed
// process version string reported in status responses.
func NewInfoHandler(
	log zerolog.Logger,
	node NodeClient,
	apiVersion types.ProtocolVersion,
	buildVersion string,
) *InfoHandler {
	return &InfoHandler{
		log:          log.With().Str("component", "rpc-info").Logger(),
		node:         node,
		apiVersion:   apiVersion,
		buildVersion: buildVersion,
	}
}

// GetDeploy serves info_get_deploy. The endpoint promises legacy-family
// results only; a current-family transaction under the hash is an error,
// never a coerced response.
func (h *InfoHandler) GetDeploy(ctx context.Context, params GetDeployParams) (*GetDeployResult, error) {
	hash := types.NewTransactionHashFromDeploy(params.DeployHash)
	txn, finalized, err := fetchTransaction(ctx, h.node, hash)
	if err != nil {
		return nil, err
	}
	if txn == nil {
		return nil, &NoDeployError{Hash: params.DeployHash}
	}
	// The family guard runs before the approvals rule: a current-family
	// transaction is rejected as such even when the stored approvals would
	// also be inconsistent with it.
	if _, ok := txn.AsDeploy(); !ok {
		return nil, &FoundTransactionInsteadOfDeployError{Hash: hash}
	}
	resolved, err := reconcileApprovals(hash, *txn, finalized, params.FinalizedApprovals)
	if err != nil {
		return nil, err
	}
	deploy, _ := resolved.AsDeploy()
	executionInfo, err := fetchExecutionInfo(ctx, h.node, hash)
	if err != nil {
		return nil, err
	}
	return &GetDeployResult{
		APIVersion:    h.apiVersion,
		Deploy:        deploy,
		ExecutionInfo: executionInfo,
	}, nil
}

// GetTransaction serves info_get_transaction for either transaction family.
func (h *InfoHandler) GetTransaction(ctx context.Context, params GetTransactionParams) (*GetTransactionResult, error) {
	txn, finalized, err := fetchTransaction(ctx, h.node, params.TransactionHash)
	if err != nil {
		return nil, err
	}
	if txn == nil {
		return nil, &NoTransactionError{Hash: params.TransactionHash}
	}
	resolved, err := reconcileApprovals(params.TransactionHash, *txn, finalized, params.FinalizedApprovals)
	if err != nil {
		return nil, err
	}
	executionInfo, err := fetchExecutionInfo(ctx, h.node, params.TransactionHash)
	if err != nil {
		return nil, err
	}
	return &GetTransactionResult{
		APIVersion:    h.apiVersion,
		Transaction:   resolved,
		ExecutionInfo: executionInfo,
	}, nil
}

// GetPeers serves info_get_peers.
func (h *InfoHandler) GetPeers(ctx context.Context) (*GetPeersResult, error) {
	peers, err := h.node.ReadPeers(ctx)
	if err != nil {
		return nil, nodeRequest("peers", err)
	}
	return &GetPeersResult{APIVersion: h.apiVersion, Peers: peers}, nil
}

// GetValidatorChanges serves info_get_validator_changes.
func (h *InfoHandler) GetValidatorChanges(ctx context.Context) (*GetValidatorChangesResult, error) {
	changes, err := h.node.ReadValidatorChanges(ctx)
	if err != nil {
		return nil, nodeRequest("validator changes", err)
	}
	return &GetValidatorChangesResult{APIVersion: h.apiVersion, Changes: changes}, nil
}

// GetChainspec serves info_get_chainspec.
func (h *InfoHandler) GetChainspec(ctx context.Context) (*GetChainspecResult, error) {
	chainspec, err := h.node.ReadChainspecBytes(ctx)
	if err != nil {
		return nil, nodeRequest("chainspec bytes", err)
	}
	return &GetChainspecResult{APIVersion: h.apiVersion, ChainspecBytes: chainspec}, nil
}

// GetStatus serves info_get_status: a fan-out of independent node reads,
// each failure labeled with the sub-query that produced it. Two lookups are
// chained: the last added block summary needs the highest block pointer
// resolved first, and the starting state root hash needs the available
// range's lower bound resolved to a hash and then to a header. The lower
// bound is expected to always resolve; a miss there is a hard failure, not
// a field to omit.
func (h *InfoHandler) GetStatus(ctx context.Context) (*GetStatusResult, error) {
	peers, err := h.node.ReadPeers(ctx)
	if err != nil {
		return nil, nodeRequest("peers", err)
	}

	highest, err := h.node.ReadHighestCompletedBlockInfo(ctx)
	if err != nil {
		return nil, nodeRequest("highest completed block", err)
	}
	var lastAdded *MinimalBlockInfo
	if highest != nil {
		block, err := h.node.ReadBlock(ctx, highest.BlockHash)
		if err != nil {
			return nil, nodeRequest("block", err)
		}
		if block == nil {
			return nil, &NoBlockWithHashError{Hash: highest.BlockHash}
		}
		info := minimalBlockInfoFromBlock(*block)
		lastAdded = &info
	}

	chainspecName, err := h.node.ReadNetworkName(ctx)
	if err != nil {
		return nil, nodeRequest("network_name", err)
	}

	consensus, err := h.node.ReadConsensusStatus(ctx)
	if err != nil {
		return nil, nodeRequest("consensus status", err)
	}
	var signingKey types.PublicKey
	var roundLength *types.TimeDiff
	if consensus != nil {
		signingKey = consensus.OurPublicSigningKey
		roundLength = consensus.RoundLength
	}

	nextUpgrade, err := h.node.ReadNextUpgrade(ctx)
	if err != nil {
		return nil, nodeRequest("next upgrade", err)
	}

	uptime, err := h.node.ReadUptime(ctx)
	if err != nil {
		return nil, nodeRequest("uptime", err)
	}

	reactorState, err := h.node.ReadReactorState(ctx)
	if err != nil {
		return nil, nodeRequest("reactor state", err)
	}

	lastProgress, err := h.node.ReadLastProgress(ctx)
	if err != nil {
		return nil, nodeRequest("last progress", err)
	}

	availableRange, err := h.node.ReadAvailableBlockRange(ctx)
	if err != nil {
		return nil, nodeRequest("available block range", err)
	}

	blockSync, err := h.node.ReadBlockSyncStatus(ctx)
	if err != nil {
		return nil, nodeRequest("block synchronizer status", err)
	}

	startingStateRootHash, err := h.startingStateRootHash(ctx, availableRange)
	if err != nil {
		return nil, err
	}

	return &GetStatusResult{
		APIVersion:            h.apiVersion,
		PeersMap:              peers,
		BuildVersion:          h.buildVersion,
		ChainspecName:         chainspecName,
		StartingStateRootHash: startingStateRootHash,
		LastAddedBlockInfo:    lastAdded,
		OurPublicSigningKey:   signingKey,
		RoundLength:           roundLength,
		NextUpgrade:           nextUpgrade,
		Uptime:                uptime,
		ReactorState:          reactorState,
		LastProgress:          lastProgress,
		AvailableBlockRange:   availableRange,
		BlockSync:             blockSync,
	}, nil
}

// startingStateRootHash resolves the state root at the low end of the
// available block range: height to hash, hash to header, header to root.
func (h *InfoHandler) startingStateRootHash(
	ctx context.Context,
	availableRange types.AvailableBlockRange,
) (types.Digest, error) {
	hash, err := h.node.ReadBlockHashFromHeight(ctx, availableRange.Low)
	if err != nil {
		return types.Digest{}, nodeRequest("block hash at height", err)
	}
	if hash == nil {
		return types.Digest{}, &NoBlockAtHeightError{Height: availableRange.Low}
	}
	header, err := h.node.ReadBlockHeader(ctx, *hash)
	if err != nil {
		return types.Digest{}, nodeRequest("block header", err)
	}
	if header == nil {
		return types.Digest{}, &NoBlockWithHashError{Hash: *hash}
	}
	return header.StateRootHash, nil
}
