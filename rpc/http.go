package rpc

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
)

// JSON-RPC 2.0 error codes. The standard range is fixed by the protocol;
// the server-defined codes below are part of this API's contract and are as
// append-only as the wire tag registries.
const (
	CodeParseError     = -32700
	CodeInvalidRequest = -32600
	CodeMethodNotFound = -32601
	CodeInvalidParams  = -32602
	CodeInternalError  = -32603

	CodeNoSuchDeploy      = -32000
	CodeNoSuchTransaction = -32001
	CodeNoSuchBlock       = -32002
	CodeVariantMismatch   = -32003
	CodeNodeRequestFailed = -32004
)

type jsonRPCRequest struct {
	JSONRPC string          `json:"jsonrpc"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
	ID      json.RawMessage `json:"id"`
}

type jsonRPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

type jsonRPCResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	Result  any             `json:"result,omitempty"`
	Error   *jsonRPCError   `json:"error,omitempty"`
	ID      json.RawMessage `json:"id"`
}

// methodFunc adapts one handler method to the generic dispatch table.
type methodFunc func(ctx context.Context, params json.RawMessage) (any, error)

// invalidParamsError marks a params decoding failure so dispatch can map it
// to the right code.
type invalidParamsError struct {
	err error
}

func (e *invalidParamsError) Error() string {
	return fmt.Sprintf("invalid params: %v", e.err)
}

// decodeParams strictly decodes method params. Unknown fields are rejected;
// absent params decode as the zero value so optional flags take their
// documented defaults.
func decodeParams[T any](raw json.RawMessage) (T, error) {
	var params T
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return params, nil
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&params); err != nil {
		return params, &invalidParamsError{err: err}
	}
	return params, nil
}

// noParams rejects anything but absent or empty params.
func noParams(raw json.RawMessage) error {
	if len(raw) == 0 {
		return nil
	}
	switch string(bytes.TrimSpace(raw)) {
	case "null", "[]", "{}":
		return nil
	}
	return &invalidParamsError{err: errors.New("method takes no params")}
}

// serverMetrics counts requests and observes handling latency per method.
type serverMetrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

func newServerMetrics(registerer prometheus.Registerer) *serverMetrics {
	m := &serverMetrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "sidecar",
			Subsystem: "rpc",
			Name:      "requests_total",
			Help:      "Number of JSON-RPC requests handled, by method and outcome.",
		}, []string{"method", "outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "sidecar",
			Subsystem: "rpc",
			Name:      "request_duration_seconds",
			Help:      "JSON-RPC request handling latency, by method.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method"}),
	}
	registerer.MustRegister(m.requests, m.duration)
	return m
}

// Server exposes the handlers over HTTP as JSON-RPC 2.0.
type Server struct {
	log     zerolog.Logger
	router  *mux.Router
	methods map[string]methodFunc
	metrics *serverMetrics
}

// NewServer wires the method table for an InfoHandler and registers metrics
// with the given registerer.
func NewServer(log zerolog.Logger, handler *InfoHandler, registerer prometheus.Registerer) *Server {
	s := &Server{
		log:     log.With().Str("component", "rpc-server").Logger(),
		metrics: newServerMetrics(registerer),
	}
	s.methods = map[string]methodFunc{
		"info_get_deploy": func(ctx context.Context, raw json.RawMessage) (any, error) {
			params, err := decodeParams[GetDeployParams](raw)
			if err != nil {
				return nil, err
			}
			return handler.GetDeploy(ctx, params)
		},
		"info_get_transaction": func(ctx context.Context, raw json.RawMessage) (any, error) {
			params, err := decodeParams[GetTransactionParams](raw)
			if err != nil {
				return nil, err
			}
			return handler.GetTransaction(ctx, params)
		},
		"info_get_peers": func(ctx context.Context, raw json.RawMessage) (any, error) {
			if err := noParams(raw); err != nil {
				return nil, err
			}
			return handler.GetPeers(ctx)
		},
		"info_get_validator_changes": func(ctx context.Context, raw json.RawMessage) (any, error) {
			if err := noParams(raw); err != nil {
				return nil, err
			}
			return handler.GetValidatorChanges(ctx)
		},
		"info_get_chainspec": func(ctx context.Context, raw json.RawMessage) (any, error) {
			if err := noParams(raw); err != nil {
				return nil, err
			}
			return handler.GetChainspec(ctx)
		},
		"info_get_status": func(ctx context.Context, raw json.RawMessage) (any, error) {
			if err := noParams(raw); err != nil {
				return nil, err
			}
			return handler.GetStatus(ctx)
		},
	}

	s.router = mux.NewRouter()
	s.router.HandleFunc("/rpc", s.handleRPC).Methods(http.MethodPost)
	return s
}

// Handler returns the HTTP handler serving the RPC endpoint.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) handleRPC(w http.ResponseWriter, r *http.Request) {
	var req jsonRPCRequest
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(&req); err != nil {
		s.writeResponse(w, jsonRPCResponse{
			JSONRPC: "2.0",
			Error:   &jsonRPCError{Code: CodeParseError, Message: "parse error"},
			ID:      json.RawMessage("null"),
		})
		return
	}
	id := req.ID
	if len(id) == 0 {
		id = json.RawMessage("null")
	}
	if req.JSONRPC != "2.0" {
		s.writeResponse(w, jsonRPCResponse{
			JSONRPC: "2.0",
			Error:   &jsonRPCError{Code: CodeInvalidRequest, Message: "jsonrpc must be \"2.0\""},
			ID:      id,
		})
		return
	}

	method, ok := s.methods[req.Method]
	if !ok {
		s.metrics.requests.WithLabelValues(req.Method, "method_not_found").Inc()
		s.writeResponse(w, jsonRPCResponse{
			JSONRPC: "2.0",
			Error:   &jsonRPCError{Code: CodeMethodNotFound, Message: fmt.Sprintf("method %q not found", req.Method)},
			ID:      id,
		})
		return
	}

	started := time.Now()
	result, err := method(r.Context(), req.Params)
	s.metrics.duration.WithLabelValues(req.Method).Observe(time.Since(started).Seconds())

	if err != nil {
		rpcErr := s.mapError(err)
		s.metrics.requests.WithLabelValues(req.Method, "error").Inc()
		s.log.Debug().Str("method", req.Method).Int("code", rpcErr.Code).Err(err).Msg("request failed")
		s.writeResponse(w, jsonRPCResponse{JSONRPC: "2.0", Error: rpcErr, ID: id})
		return
	}

	s.metrics.requests.WithLabelValues(req.Method, "success").Inc()
	s.writeResponse(w, jsonRPCResponse{JSONRPC: "2.0", Result: result, ID: id})
}

// mapError translates handler failures into the documented error codes.
// Every failure keeps enough context (hash, height, sub-query label) in the
// message to diagnose without server logs.
func (s *Server) mapError(err error) *jsonRPCError {
	var (
		invalidParams  *invalidParamsError
		noDeploy       *NoDeployError
		noTransaction  *NoTransactionError
		noBlockHeight  *NoBlockAtHeightError
		noBlockHash    *NoBlockWithHashError
		inconsistent   *InconsistentTransactionVersionsError
		foundTxn       *FoundTransactionInsteadOfDeployError
		nodeRequestErr *NodeRequestError
	)
	switch {
	case errors.As(err, &invalidParams):
		return &jsonRPCError{Code: CodeInvalidParams, Message: err.Error()}
	case errors.As(err, &noDeploy):
		return &jsonRPCError{Code: CodeNoSuchDeploy, Message: err.Error()}
	case errors.As(err, &noTransaction):
		return &jsonRPCError{Code: CodeNoSuchTransaction, Message: err.Error()}
	case errors.As(err, &noBlockHeight), errors.As(err, &noBlockHash):
		return &jsonRPCError{Code: CodeNoSuchBlock, Message: err.Error()}
	case errors.As(err, &inconsistent), errors.As(err, &foundTxn):
		return &jsonRPCError{Code: CodeVariantMismatch, Message: err.Error()}
	case errors.As(err, &nodeRequestErr):
		return &jsonRPCError{Code: CodeNodeRequestFailed, Message: err.Error()}
	default:
		return &jsonRPCError{Code: CodeInternalError, Message: err.Error()}
	}
}

func (s *Server) writeResponse(w http.ResponseWriter, resp jsonRPCResponse) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		s.log.Warn().Err(err).Msg("writing response")
	}
}
