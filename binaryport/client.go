package binaryport

import (
	"context"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/sethvargo/go-retry"

	"github.com/jacek-casper/casper-node/bytesrepr"
	"github.com/jacek-casper/casper-node/types"
)

// DefaultRequestTimeout bounds a single request/response exchange when the
// caller's context carries no deadline of its own.
const DefaultRequestTimeout = 10 * time.Second

// Client speaks the binary port protocol to a single node. One request is
// in flight at a time; callers are serialized on the connection.
type Client struct {
	log     zerolog.Logger
	address string

	mu          sync.Mutex
	conn        net.Conn
	nodeVersion types.ProtocolVersion
}

// NewClient creates a client for the node at the given address. Connect must
// be called before issuing requests.
func NewClient(log zerolog.Logger, address string) *Client {
	return &Client{
		log:     log.With().Str("component", "binary-port-client").Logger(),
		address: address,
	}
}

// Connect dials the node, retrying with capped exponential backoff until the
// context is cancelled.
func (c *Client) Connect(ctx context.Context) error {
	backoff := retry.WithCappedDuration(5*time.Second, retry.NewExponential(100*time.Millisecond))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		dialer := net.Dialer{}
		conn, err := dialer.DialContext(ctx, "tcp", c.address)
		if err != nil {
			c.log.Warn().Err(err).Str("address", c.address).Msg("dialing node failed, retrying")
			return retry.RetryableError(err)
		}
		c.mu.Lock()
		c.conn = conn
		c.mu.Unlock()
		return nil
	})
	if err != nil {
		return fmt.Errorf("connecting to node at %s: %w", c.address, err)
	}
	c.log.Info().Str("address", c.address).Msg("connected to node binary port")
	return nil
}

// Close closes the underlying connection.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil {
		return nil
	}
	err := c.conn.Close()
	c.conn = nil
	return err
}

// NodeVersion returns the protocol version reported by the node in the most
// recent response header.
func (c *Client) NodeVersion() types.ProtocolVersion {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.nodeVersion
}

// roundTrip sends one request frame and reads one response frame. The
// returned payload has the response header already stripped; a non-zero
// error code is surfaced as the header's error.
func (c *Client) roundTrip(ctx context.Context, req Request) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil {
		return nil, fmt.Errorf("client is not connected")
	}

	deadline, ok := ctx.Deadline()
	if !ok {
		deadline = time.Now().Add(DefaultRequestTimeout)
	}
	if err := c.conn.SetDeadline(deadline); err != nil {
		return nil, fmt.Errorf("setting connection deadline: %w", err)
	}

	payload := make([]byte, 0, req.SerializedLength()+1)
	bytesrepr.WriteU8(&payload, BinaryProtocolVersion)
	req.WriteBytes(&payload)
	if err := WriteFrame(c.conn, payload); err != nil {
		c.dropConn()
		return nil, fmt.Errorf("sending request: %w", err)
	}

	frame, err := ReadFrame(c.conn)
	if err != nil {
		c.dropConn()
		return nil, fmt.Errorf("receiving response: %w", err)
	}
	version, rem, err := bytesrepr.ReadU8(frame)
	if err != nil {
		return nil, fmt.Errorf("reading response version: %w", err)
	}
	if version != BinaryProtocolVersion {
		return nil, fmt.Errorf("unsupported binary protocol version %d in response", version)
	}
	header, rem, err := ReadResponseHeader(rem)
	if err != nil {
		return nil, fmt.Errorf("reading response header: %w", err)
	}
	c.nodeVersion = header.ProtocolVersion
	if err := header.ErrorCode.AsError(); err != nil {
		return nil, err
	}
	return rem, nil
}

// dropConn discards a connection after an I/O failure so that a later
// Connect starts clean. Callers hold c.mu.
func (c *Client) dropConn() {
	if c.conn != nil {
		_ = c.conn.Close()
		c.conn = nil
	}
}

// info issues an information request and returns the raw response payload.
func (c *Client) info(ctx context.Context, req InformationRequest) ([]byte, error) {
	return c.roundTrip(ctx, NewInfoRequest(req))
}

// get issues a database read and decodes the raw bytes envelope.
func (c *Client) get(ctx context.Context, db DB, key []byte) (RawBytesSpec, error) {
	payload, err := c.roundTrip(ctx, NewGetRequest(db, key))
	if err != nil {
		return RawBytesSpec{}, err
	}
	spec, rem, err := ReadRawBytesSpec(payload)
	if err != nil {
		return RawBytesSpec{}, fmt.Errorf("decoding stored record envelope: %w", err)
	}
	if len(rem) != 0 {
		return RawBytesSpec{}, bytesrepr.ErrLeftoverBytes
	}
	return spec, nil
}

// decodePayload decodes a full response payload with a bytesrepr reader,
// rejecting trailing bytes.
func decodePayload[T any](payload []byte, read func([]byte) (T, []byte, error)) (T, error) {
	value, rem, err := read(payload)
	if err != nil {
		var zero T
		return zero, err
	}
	if len(rem) != 0 {
		var zero T
		return zero, bytesrepr.ErrLeftoverBytes
	}
	return value, nil
}

// ReadPeers returns the node's current peer table.
func (c *Client) ReadPeers(ctx context.Context) (types.PeersMap, error) {
	payload, err := c.info(ctx, NewPeersRequest())
	if err != nil {
		return nil, err
	}
	return decodePayload(payload, types.ReadPeersMap)
}

// ReadUptime returns how long the node process has been running.
func (c *Client) ReadUptime(ctx context.Context) (types.TimeDiff, error) {
	payload, err := c.info(ctx, NewUptimeRequest())
	if err != nil {
		return 0, err
	}
	return decodePayload(payload, types.ReadTimeDiff)
}

// ReadLastProgress returns the timestamp of the node's last sync progress.
func (c *Client) ReadLastProgress(ctx context.Context) (types.Timestamp, error) {
	payload, err := c.info(ctx, NewLastProgressRequest())
	if err != nil {
		return 0, err
	}
	return decodePayload(payload, types.ReadTimestamp)
}

// ReadReactorState returns the node's current reactor state.
func (c *Client) ReadReactorState(ctx context.Context) (types.ReactorState, error) {
	payload, err := c.info(ctx, NewReactorStateRequest())
	if err != nil {
		return 0, err
	}
	return decodePayload(payload, types.ReadReactorState)
}

// ReadNetworkName returns the chain name the node is configured for.
func (c *Client) ReadNetworkName(ctx context.Context) (string, error) {
	payload, err := c.info(ctx, NewNetworkNameRequest())
	if err != nil {
		return "", err
	}
	return decodePayload(payload, bytesrepr.ReadString)
}

// ReadValidatorChanges returns the status changes of active validators.
func (c *Client) ReadValidatorChanges(ctx context.Context) (types.ValidatorChanges, error) {
	payload, err := c.info(ctx, NewConsensusValidatorChangesRequest())
	if err != nil {
		return nil, err
	}
	return decodePayload(payload, types.ReadValidatorChanges)
}

// ReadBlockSyncStatus returns the block synchronizer's progress report.
func (c *Client) ReadBlockSyncStatus(ctx context.Context) (types.BlockSynchronizerStatus, error) {
	payload, err := c.info(ctx, NewBlockSynchronizerStatusRequest())
	if err != nil {
		return types.BlockSynchronizerStatus{}, err
	}
	return decodePayload(payload, types.ReadBlockSynchronizerStatus)
}

// ReadAvailableBlockRange returns the contiguous range of complete blocks.
func (c *Client) ReadAvailableBlockRange(ctx context.Context) (types.AvailableBlockRange, error) {
	payload, err := c.info(ctx, NewAvailableBlockRangeRequest())
	if err != nil {
		return types.AvailableBlockRange{}, err
	}
	return decodePayload(payload, types.ReadAvailableBlockRange)
}

// ReadNextUpgrade returns the next scheduled upgrade, or nil when none is
// staged.
func (c *Client) ReadNextUpgrade(ctx context.Context) (*types.NextUpgrade, error) {
	payload, err := c.info(ctx, NewNextUpgradeRequest())
	if err != nil {
		return nil, err
	}
	return decodePayload(payload, readOptional(types.ReadNextUpgrade))
}

// ReadConsensusStatus returns the consensus component's status, or nil when
// the node is not validating.
func (c *Client) ReadConsensusStatus(ctx context.Context) (*types.ConsensusStatus, error) {
	payload, err := c.info(ctx, NewConsensusStatusRequest())
	if err != nil {
		return nil, err
	}
	return decodePayload(payload, readOptional(types.ReadConsensusStatus))
}

// readOptional wraps a reader with the leading presence byte.
func readOptional[T any](read func([]byte) (T, []byte, error)) func([]byte) (*T, []byte, error) {
	return func(data []byte) (*T, []byte, error) {
		present, rem, err := bytesrepr.ReadOptionTag(data)
		if err != nil {
			return nil, nil, err
		}
		if !present {
			return nil, rem, nil
		}
		value, rem, err := read(rem)
		if err != nil {
			return nil, nil, err
		}
		return &value, rem, nil
	}
}

// ReadHighestCompletedBlockInfo returns the hash and height of the highest
// complete block, or nil when the node has none yet.
func (c *Client) ReadHighestCompletedBlockInfo(ctx context.Context) (*types.BlockHashAndHeight, error) {
	payload, err := c.info(ctx, NewHighestCompleteBlockRequest())
	if err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	resp, err := decodePayload(payload, ReadInformationResponse)
	if err != nil {
		return nil, err
	}
	highest, ok := resp.(HighestBlockResponse)
	if !ok {
		return nil, fmt.Errorf("unexpected response variant %T for highest block query", resp)
	}
	return &types.BlockHashAndHeight{BlockHash: highest.Hash, BlockHeight: highest.Height}, nil
}

// ReadBlockHashFromHeight resolves a block height to its hash, or nil when
// the node has no block at that height.
func (c *Client) ReadBlockHashFromHeight(ctx context.Context, height uint64) (*types.BlockHash, error) {
	payload, err := c.info(ctx, BlockHeight2HashRequest{Height: height})
	if err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	resp, err := decodePayload(payload, ReadInformationResponse)
	if err != nil {
		return nil, err
	}
	mapped, ok := resp.(BlockHeight2HashResponse)
	if !ok {
		return nil, fmt.Errorf("unexpected response variant %T for height lookup", resp)
	}
	hash := mapped.Hash
	return &hash, nil
}

// CompletedBlocksContain reports whether the node's contiguous run of
// completed blocks includes the given hash.
func (c *Client) CompletedBlocksContain(ctx context.Context, hash types.BlockHash) (bool, error) {
	payload, err := c.info(ctx, CompletedBlocksContainRequest{BlockHash: hash})
	if err != nil {
		return false, err
	}
	resp, err := decodePayload(payload, ReadInformationResponse)
	if err != nil {
		return false, err
	}
	contains, ok := resp.(CompletedBlocksContainResponse)
	if !ok {
		return false, fmt.Errorf("unexpected response variant %T for containment query", resp)
	}
	return contains.Contains, nil
}

// ReadBlockHeader returns the stored header for a block hash, or nil when
// the node does not have it.
func (c *Client) ReadBlockHeader(ctx context.Context, hash types.BlockHash) (*types.BlockHeader, error) {
	spec, err := c.get(ctx, DBBlockHeader, hash[:])
	if err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	header, err := BlockHeaderFromStoredBytes(spec)
	if err != nil {
		return nil, err
	}
	return &header, nil
}

// ReadBlock returns the full stored block for a hash, or nil when the node
// does not have it.
func (c *Client) ReadBlock(ctx context.Context, hash types.BlockHash) (*types.Block, error) {
	spec, err := c.get(ctx, DBBlockBody, hash[:])
	if err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	block, err := BlockFromStoredBytes(spec)
	if err != nil {
		return nil, err
	}
	return &block, nil
}

// ReadChainspecBytes returns the raw chainspec the node was started with.
func (c *Client) ReadChainspecBytes(ctx context.Context) (types.ChainspecRawBytes, error) {
	payload, err := c.info(ctx, NewChainspecRawBytesRequest())
	if err != nil {
		return types.ChainspecRawBytes{}, err
	}
	return decodePayload(payload, types.ReadChainspecRawBytes)
}

// ReadGenesisAccountsBytes returns the raw genesis accounts file, or nil
// when the network was not started from one.
func (c *Client) ReadGenesisAccountsBytes(ctx context.Context) ([]byte, error) {
	payload, err := c.info(ctx, NewGenesisAccountsBytesRequest())
	if err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return decodePayload(payload, bytesrepr.ReadByteSlice)
}

// ReadGlobalStateBytes returns the raw global state upgrade file, or nil
// when the network does not carry one.
func (c *Client) ReadGlobalStateBytes(ctx context.Context) ([]byte, error) {
	payload, err := c.info(ctx, NewGlobalStateBytesRequest())
	if err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return decodePayload(payload, bytesrepr.ReadByteSlice)
}

// ReadTransactionWithApprovals returns a stored transaction together with
// its finalized approvals, if any were stored.
func (c *Client) ReadTransactionWithApprovals(
	ctx context.Context,
	hash types.TransactionHash,
) (*types.Transaction, *types.FinalizedApprovals, error) {
	key := bytesrepr.ToBytes(hash)
	spec, err := c.get(ctx, DBTransaction, key)
	if err != nil {
		if IsNotFound(err) {
			return nil, nil, nil
		}
		return nil, nil, err
	}
	txn, err := TransactionFromStoredBytes(spec)
	if err != nil {
		return nil, nil, err
	}

	approvalsSpec, err := c.get(ctx, DBFinalizedApprovals, key)
	if err != nil {
		if IsNotFound(err) {
			return &txn, nil, nil
		}
		return nil, nil, err
	}
	approvals, err := FinalizedApprovalsFromStoredBytes(approvalsSpec)
	if err != nil {
		return nil, nil, err
	}
	return &txn, &approvals, nil
}

// ReadExecutionInfo returns where a transaction executed and its result, or
// nil when the transaction has not been included in a block.
func (c *Client) ReadExecutionInfo(ctx context.Context, hash types.TransactionHash) (*types.ExecutionInfo, error) {
	key := bytesrepr.ToBytes(hash)
	payload, err := c.info(ctx, TransactionHash2BlockHashAndHeightRequest{TransactionHash: hash})
	if err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	resp, err := decodePayload(payload, ReadInformationResponse)
	if err != nil {
		return nil, err
	}
	located, ok := resp.(TransactionHash2BlockHashAndHeightResponse)
	if !ok {
		return nil, fmt.Errorf("unexpected response variant %T for transaction block lookup", resp)
	}

	info := types.ExecutionInfo{BlockHash: located.Hash, BlockHeight: located.Height}
	spec, err := c.get(ctx, DBExecutionResult, key)
	if err != nil {
		if IsNotFound(err) {
			return &info, nil
		}
		return nil, err
	}
	result, err := ExecutionResultFromStoredBytes(spec)
	if err != nil {
		return nil, err
	}
	info.ExecutionResult = &result
	return &info, nil
}

// SpeculativeExec submits a transaction for speculative execution on top of
// the node's current tip and returns its would-be result.
func (c *Client) SpeculativeExec(ctx context.Context, txn types.Transaction) (types.ExecutionResult, error) {
	payload, err := c.roundTrip(ctx, NewTrySpeculativeExecRequest(txn))
	if err != nil {
		return types.ExecutionResult{}, err
	}
	return decodePayload(payload, types.ReadExecutionResult)
}
