package binaryport

import (
	"errors"
	"fmt"
	"net"
	"sync"

	"github.com/rs/zerolog"

	"github.com/jacek-casper/casper-node/bytesrepr"
	"github.com/jacek-casper/casper-node/types"
)

// StateProvider supplies the node-side state a Server answers queries from.
// Lookups that can miss return a second boolean result; a false there is
// relayed to the client as a NotFound error code.
type StateProvider interface {
	// GetRecord resolves a record lookup against one of the node databases.
	GetRecord(db DB, key []byte) (RawBytesSpec, bool)

	BlockHashAtHeight(height uint64) (types.BlockHash, bool)
	CompletedBlocksContain(hash types.BlockHash) bool
	BlockLocationOfTransaction(hash types.TransactionHash) (types.BlockHashAndHeight, bool)
	HighestCompleteBlock() (types.BlockHashAndHeight, bool)

	Peers() types.PeersMap
	Uptime() types.TimeDiff
	LastProgress() types.Timestamp
	ReactorState() types.ReactorState
	NetworkName() string
	ConsensusValidatorChanges() types.ValidatorChanges
	BlockSynchronizerStatus() types.BlockSynchronizerStatus
	AvailableBlockRange() types.AvailableBlockRange
	NextUpgrade() *types.NextUpgrade
	ConsensusStatus() *types.ConsensusStatus
	ChainspecRawBytes() types.ChainspecRawBytes
	GenesisAccountsBytes() ([]byte, bool)
	GlobalStateBytes() ([]byte, bool)

	// SpeculativeExec runs a transaction against the current tip without
	// committing any effects.
	SpeculativeExec(txn types.Transaction) (types.ExecutionResult, ErrorCode)
}

// Server answers binary port requests from a StateProvider. It is intended
// for tests and local tooling that need a node-shaped endpoint.
type Server struct {
	log      zerolog.Logger
	provider StateProvider
	version  types.ProtocolVersion

	mu       sync.Mutex
	listener net.Listener
	wg       sync.WaitGroup
}

// NewServer creates a server reporting the given protocol version in every
// response header.
func NewServer(log zerolog.Logger, provider StateProvider, version types.ProtocolVersion) *Server {
	return &Server{
		log:      log.With().Str("component", "binary-port-server").Logger(),
		provider: provider,
		version:  version,
	}
}

// Start begins listening on the given address. The accept loop runs until
// Close is called.
func (s *Server) Start(address string) error {
	listener, err := net.Listen("tcp", address)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", address, err)
	}
	s.mu.Lock()
	s.listener = listener
	s.mu.Unlock()

	s.wg.Add(1)
	go s.acceptLoop(listener)
	s.log.Info().Str("address", listener.Addr().String()).Msg("binary port listening")
	return nil
}

// Address returns the bound listen address. Useful when Start was given
// port zero.
func (s *Server) Address() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Close stops accepting connections and waits for in-flight handlers.
func (s *Server) Close() error {
	s.mu.Lock()
	listener := s.listener
	s.listener = nil
	s.mu.Unlock()

	var err error
	if listener != nil {
		err = listener.Close()
	}
	s.wg.Wait()
	return err
}

func (s *Server) acceptLoop(listener net.Listener) {
	defer s.wg.Done()
	for {
		conn, err := listener.Accept()
		if err != nil {
			if !errors.Is(err, net.ErrClosed) {
				s.log.Error().Err(err).Msg("accepting connection")
			}
			return
		}
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.handleConn(conn)
		}()
	}
}

func (s *Server) handleConn(conn net.Conn) {
	defer conn.Close()
	log := s.log.With().Str("remote", conn.RemoteAddr().String()).Logger()
	for {
		frame, err := ReadFrame(conn)
		if err != nil {
			return
		}
		code, payload := s.handleFrame(log, frame)

		header := ResponseHeader{ProtocolVersion: s.version, ErrorCode: code}
		out := make([]byte, 0, 1+header.SerializedLength()+len(payload))
		bytesrepr.WriteU8(&out, BinaryProtocolVersion)
		header.WriteBytes(&out)
		out = append(out, payload...)
		if err := WriteFrame(conn, out); err != nil {
			log.Warn().Err(err).Msg("writing response")
			return
		}
	}
}

// handleFrame decodes one request frame and produces the error code and
// response payload for it. Malformed input never tears down the connection;
// it is answered with InvalidRequest.
func (s *Server) handleFrame(log zerolog.Logger, frame []byte) (ErrorCode, []byte) {
	version, rem, err := bytesrepr.ReadU8(frame)
	if err != nil || version != BinaryProtocolVersion {
		return ErrorCodeUnsupportedRequest, nil
	}
	req, rem, err := ReadRequest(rem)
	if err != nil || len(rem) != 0 {
		log.Debug().Err(err).Msg("malformed request frame")
		return ErrorCodeInvalidRequest, nil
	}

	if get, ok := req.AsGet(); ok {
		return s.handleGet(get)
	}
	if info, ok := req.AsInfo(); ok {
		return s.handleInfo(info)
	}
	if txn, ok := req.AsTrySpeculativeExec(); ok {
		result, code := s.provider.SpeculativeExec(txn)
		if code != ErrorCodeNoError {
			return code, nil
		}
		return ErrorCodeNoError, bytesrepr.ToBytes(result)
	}
	return ErrorCodeInvalidRequest, nil
}

func (s *Server) handleGet(get GetRequest) (ErrorCode, []byte) {
	spec, ok := s.provider.GetRecord(get.DB, get.Key)
	if !ok {
		return ErrorCodeNotFound, nil
	}
	return ErrorCodeNoError, bytesrepr.ToBytes(spec)
}

func (s *Server) handleInfo(info InformationRequest) (ErrorCode, []byte) {
	switch req := info.(type) {
	case BlockHeight2HashRequest:
		hash, ok := s.provider.BlockHashAtHeight(req.Height)
		if !ok {
			return ErrorCodeNotFound, nil
		}
		return ErrorCodeNoError, bytesrepr.ToBytes(BlockHeight2HashResponse{Hash: hash})
	case HighestCompleteBlockRequest:
		highest, ok := s.provider.HighestCompleteBlock()
		if !ok {
			return ErrorCodeNotFound, nil
		}
		return ErrorCodeNoError, bytesrepr.ToBytes(HighestBlockResponse{
			Hash:   highest.BlockHash,
			Height: highest.BlockHeight,
		})
	case CompletedBlocksContainRequest:
		contains := s.provider.CompletedBlocksContain(req.BlockHash)
		return ErrorCodeNoError, bytesrepr.ToBytes(CompletedBlocksContainResponse{Contains: contains})
	case TransactionHash2BlockHashAndHeightRequest:
		location, ok := s.provider.BlockLocationOfTransaction(req.TransactionHash)
		if !ok {
			return ErrorCodeNotFound, nil
		}
		return ErrorCodeNoError, bytesrepr.ToBytes(TransactionHash2BlockHashAndHeightResponse{
			Hash:   location.BlockHash,
			Height: location.BlockHeight,
		})
	case PeersRequest:
		return ErrorCodeNoError, bytesrepr.ToBytes(s.provider.Peers())
	case UptimeRequest:
		return ErrorCodeNoError, bytesrepr.ToBytes(s.provider.Uptime())
	case LastProgressRequest:
		return ErrorCodeNoError, bytesrepr.ToBytes(s.provider.LastProgress())
	case ReactorStateRequest:
		return ErrorCodeNoError, bytesrepr.ToBytes(s.provider.ReactorState())
	case NetworkNameRequest:
		var payload []byte
		bytesrepr.WriteString(&payload, s.provider.NetworkName())
		return ErrorCodeNoError, payload
	case ConsensusValidatorChangesRequest:
		return ErrorCodeNoError, bytesrepr.ToBytes(s.provider.ConsensusValidatorChanges())
	case BlockSynchronizerStatusRequest:
		return ErrorCodeNoError, bytesrepr.ToBytes(s.provider.BlockSynchronizerStatus())
	case AvailableBlockRangeRequest:
		return ErrorCodeNoError, bytesrepr.ToBytes(s.provider.AvailableBlockRange())
	case NextUpgradeRequest:
		return ErrorCodeNoError, writeOptional(s.provider.NextUpgrade())
	case ConsensusStatusRequest:
		return ErrorCodeNoError, writeOptional(s.provider.ConsensusStatus())
	case ChainspecRawBytesRequest:
		return ErrorCodeNoError, bytesrepr.ToBytes(s.provider.ChainspecRawBytes())
	case GenesisAccountsBytesRequest:
		data, ok := s.provider.GenesisAccountsBytes()
		if !ok {
			return ErrorCodeNotFound, nil
		}
		var payload []byte
		bytesrepr.WriteByteSlice(&payload, data)
		return ErrorCodeNoError, payload
	case GlobalStateBytesRequest:
		data, ok := s.provider.GlobalStateBytes()
		if !ok {
			return ErrorCodeNotFound, nil
		}
		var payload []byte
		bytesrepr.WriteByteSlice(&payload, data)
		return ErrorCodeNoError, payload
	default:
		return ErrorCodeUnsupportedRequest, nil
	}
}

// writeOptional encodes a presence byte followed by the value, if any.
func writeOptional[T bytesrepr.Encodable](value *T) []byte {
	var payload []byte
	if value == nil {
		bytesrepr.WriteOptionTag(&payload, false)
		return payload
	}
	bytesrepr.WriteOptionTag(&payload, true)
	(*value).WriteBytes(&payload)
	return payload
}
