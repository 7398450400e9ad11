// Package server exposes the deck tooling as an MCP server speaking
// JSON-RPC 2.0 over newline-delimited messages on stdio.
package server

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"sync"

	"github.com/google/uuid"
)

const (
	protocolVersion = "2024-11-05"
	serverName      = "pptx-mcp-server"
	serverVersion   = "0.3.0"

	// Scanner limit. Embedded images in specs can make requests large.
	maxMessageSize = 32 * 1024 * 1024
)

// JSON-RPC error codes.
const (
	codeParseError     = -32700
	codeInvalidRequest = -32600
	codeMethodNotFound = -32601
	codeInvalidParams  = -32602
	codeInternalError  = -32603
)

type request struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id,omitempty"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

type response struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id,omitempty"`
	Result  any             `json:"result,omitempty"`
	Error   *rpcError       `json:"error,omitempty"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// Server handles one MCP session.
type Server struct {
	in      io.Reader
	out     io.Writer
	outMu   sync.Mutex
	logger  *log.Logger
	tools   *Registry
	session string
}

// New builds a server reading requests from in and writing responses
// to out.
func New(in io.Reader, out io.Writer, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Server{
		in:      in,
		out:     out,
		logger:  logger,
		tools:   DefaultRegistry(),
		session: uuid.NewString(),
	}
}

// Run processes requests until in is exhausted or ctx is canceled.
func (s *Server) Run(ctx context.Context) error {
	s.logger.Printf("session %s: serving %d tools", s.session, len(s.tools.List()))

	scanner := bufio.NewScanner(s.in)
	scanner.Buffer(make([]byte, 64*1024), maxMessageSize)

	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		s.handle(ctx, line)
	}
	if err := scanner.Err(); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("read request: %w", err)
	}
	s.logger.Printf("session %s: input closed", s.session)
	return nil
}

func (s *Server) handle(ctx context.Context, line []byte) {
	var req request
	if err := json.Unmarshal(line, &req); err != nil {
		s.reply(response{JSONRPC: "2.0", Error: &rpcError{codeParseError, "parse error: " + err.Error()}})
		return
	}
	notification := len(req.ID) == 0

	result, rerr := s.dispatch(ctx, &req)
	if notification {
		return
	}
	resp := response{JSONRPC: "2.0", ID: req.ID}
	if rerr != nil {
		resp.Error = rerr
	} else {
		resp.Result = result
	}
	s.reply(resp)
}

func (s *Server) dispatch(ctx context.Context, req *request) (any, *rpcError) {
	s.logger.Printf("session %s: %s", s.session, req.Method)
	switch req.Method {
	case "initialize":
		return map[string]any{
			"protocolVersion": protocolVersion,
			"capabilities":    map[string]any{"tools": map[string]any{}},
			"serverInfo": map[string]any{
				"name":    serverName,
				"version": serverVersion,
			},
		}, nil
	case "notifications/initialized", "notifications/cancelled":
		return nil, nil
	case "ping":
		return map[string]any{}, nil
	case "tools/list":
		return map[string]any{"tools": s.tools.List()}, nil
	case "tools/call":
		return s.callTool(ctx, req.Params)
	default:
		return nil, &rpcError{codeMethodNotFound, "unknown method " + req.Method}
	}
}

type callParams struct {
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments"`
}

// toolResult is the MCP tool invocation payload. Tool failures travel
// inside it with isError set, not as JSON-RPC errors.
type toolResult struct {
	Content []contentItem `json:"content"`
	IsError bool          `json:"isError,omitempty"`
}

type contentItem struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

func textResult(text string) *toolResult {
	return &toolResult{Content: []contentItem{{Type: "text", Text: text}}}
}

func errorResult(err error) *toolResult {
	return &toolResult{
		Content: []contentItem{{Type: "text", Text: err.Error()}},
		IsError: true,
	}
}

func (s *Server) callTool(ctx context.Context, params json.RawMessage) (any, *rpcError) {
	var cp callParams
	if err := json.Unmarshal(params, &cp); err != nil {
		return nil, &rpcError{codeInvalidParams, "invalid params: " + err.Error()}
	}
	tool := s.tools.Get(cp.Name)
	if tool == nil {
		return nil, &rpcError{codeInvalidParams, "unknown tool " + cp.Name}
	}
	if err := tool.checkArguments(cp.Arguments); err != nil {
		s.logger.Printf("session %s: %s rejected: %v", s.session, cp.Name, err)
		return errorResult(err), nil
	}
	res, err := tool.Handler(ctx, cp.Arguments)
	if err != nil {
		s.logger.Printf("session %s: %s failed: %v", s.session, cp.Name, err)
		return errorResult(err), nil
	}
	return res, nil
}

func (s *Server) reply(resp response) {
	data, err := json.Marshal(resp)
	if err != nil {
		s.logger.Printf("session %s: marshal response: %v", s.session, err)
		return
	}
	s.outMu.Lock()
	defer s.outMu.Unlock()
	s.out.Write(data)
	s.out.Write([]byte{'\n'})
}
