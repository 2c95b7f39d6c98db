package rpc

import (
	"github.com/jacek-casper/casper-node/types"
)

// GetDeployParams identifies a legacy-family transaction to fetch.
type GetDeployParams struct {
	DeployHash types.DeployHash `json:"deploy_hash"`
	// FinalizedApprovals selects the approval set computed at finalization
	// instead of the one the deploy was received with.
	FinalizedApprovals bool `json:"finalized_approvals"`
}

// GetDeployResult is the response of info_get_deploy.
type GetDeployResult struct {
	APIVersion    types.ProtocolVersion `json:"api_version"`
	Deploy        types.Deploy          `json:"deploy"`
	ExecutionInfo *types.ExecutionInfo  `json:"execution_info,omitempty"`
}

// GetTransactionParams identifies a transaction of either family to fetch.
type GetTransactionParams struct {
	TransactionHash    types.TransactionHash `json:"transaction_hash"`
	FinalizedApprovals bool                  `json:"finalized_approvals"`
}

// GetTransactionResult is the response of info_get_transaction.
type GetTransactionResult struct {
	APIVersion    types.ProtocolVersion `json:"api_version"`
	Transaction   types.Transaction     `json:"transaction"`
	ExecutionInfo *types.ExecutionInfo  `json:"execution_info,omitempty"`
}

// GetPeersResult is the response of info_get_peers.
type GetPeersResult struct {
	APIVersion types.ProtocolVersion `json:"api_version"`
	Peers      types.PeersMap        `json:"peers"`
}

// GetValidatorChangesResult is the response of info_get_validator_changes.
type GetValidatorChangesResult struct {
	APIVersion types.ProtocolVersion  `json:"api_version"`
	Changes    types.ValidatorChanges `json:"changes"`
}

// GetChainspecResult is the response of info_get_chainspec.
type GetChainspecResult struct {
	APIVersion     types.ProtocolVersion   `json:"api_version"`
	ChainspecBytes types.ChainspecRawBytes `json:"chainspec_bytes"`
}

// MinimalBlockInfo is the compact block summary embedded in a status
// snapshot.
type MinimalBlockInfo struct {
	Hash          types.BlockHash `json:"hash"`
	Timestamp     types.Timestamp `json:"timestamp"`
	EraID         types.EraID     `json:"era_id"`
	Height        uint64          `json:"height"`
	StateRootHash types.Digest    `json:"state_root_hash"`
	Creator       types.PublicKey `json:"creator"`
}

// minimalBlockInfoFromBlock projects a stored block onto its summary.
func minimalBlockInfoFromBlock(block types.Block) MinimalBlockInfo {
	return MinimalBlockInfo{
		Hash:          block.Hash,
		Timestamp:     block.Header.Timestamp,
		EraID:         block.Header.EraID,
		Height:        block.Header.Height,
		StateRootHash: block.Header.StateRootHash,
		Creator:       block.Header.Proposer,
	}
}

// GetStatusResult is the full status snapshot served by info_get_status.
// It is assembled fresh on every request from independent node reads; no
// component owns it.
type GetStatusResult struct {
	APIVersion            types.ProtocolVersion         `json:"api_version"`
	PeersMap              types.PeersMap                `json:"peers"`
	BuildVersion          string                        `json:"build_version"`
	ChainspecName         string                        `json:"chainspec_name"`
	StartingStateRootHash types.Digest                  `json:"starting_state_root_hash"`
	LastAddedBlockInfo    *MinimalBlockInfo             `json:"last_added_block_info,omitempty"`
	OurPublicSigningKey   types.PublicKey               `json:"our_public_signing_key,omitempty"`
	RoundLength           *types.TimeDiff               `json:"round_length,omitempty"`
	NextUpgrade           *types.NextUpgrade            `json:"next_upgrade,omitempty"`
	Uptime                types.TimeDiff                `json:"uptime"`
	ReactorState          types.ReactorState            `json:"reactor_state"`
	LastProgress          types.Timestamp               `json:"last_progress"`
	AvailableBlockRange   types.AvailableBlockRange     `json:"available_block_range"`
	BlockSync             types.BlockSynchronizerStatus `json:"block_sync"`
}
