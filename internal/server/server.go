package server

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"io"
	"sync"
	"time"

	"go.uber.org/zap"

	"groovylsp/internal/engine"
	"groovylsp/internal/nav"
)

var (
	// ErrExit signals a graceful shutdown after receiving "exit".
	ErrExit = errors.New("lsp exit")
	// ErrExitWithoutShutdown signals an "exit" without a preceding "shutdown".
	ErrExitWithoutShutdown = errors.New("lsp exit without shutdown")
)

// Options configures the server.
type Options struct {
	Engine   *engine.Engine
	Resolver *nav.Resolver
	Debounce time.Duration
	Log      *zap.Logger
}

// Server handles stdio JSON-RPC for the Groovy language server. Position
// queries run asynchronously on their own goroutines; the send mutex
// serializes output frames.
type Server struct {
	in     *bufio.Reader
	out    *bufio.Writer
	sendMu sync.Mutex

	docs       *Documents
	dispatcher *Dispatcher
	pipeline   *Pipeline
	log        *zap.Logger

	mu                sync.Mutex
	shutdownRequested bool

	baseCtx context.Context
	cancel  context.CancelFunc
	queries sync.WaitGroup
}

// NewServer wires a server around the given engine and resolver.
func NewServer(in io.Reader, out io.Writer, opts Options) *Server {
	log := opts.Log
	if log == nil {
		log = zap.NewNop()
	}
	s := &Server{
		in:   bufio.NewReader(in),
		out:  bufio.NewWriter(out),
		docs: NewDocuments(),
		log:  log.Named("lsp"),
	}
	s.pipeline = NewPipeline(s.docs, opts.Engine, EditorChannelFunc(s.sendPublish), opts.Debounce, log)
	s.dispatcher = NewDispatcher(s.docs, opts.Engine, opts.Resolver, s.pipeline, log)
	return s
}

// Dispatcher exposes the query surface, mainly for tests.
func (s *Server) Dispatcher() *Dispatcher {
	return s.dispatcher
}

// Run serves requests until shutdown or EOF.
func (s *Server) Run(ctx context.Context) error {
	s.baseCtx, s.cancel = context.WithCancel(ctx)
	defer s.shutdownPipeline()
	for {
		payload, err := readMessage(s.in)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
		var msg rpcMessage
		if err := json.Unmarshal(payload, &msg); err != nil {
			s.log.Warn("failed to parse message", zap.Error(err))
			continue
		}
		if msg.Method == "" {
			continue
		}
		if err := s.handleMessage(&msg); err != nil {
			return err
		}
	}
}

func (s *Server) shutdownPipeline() {
	if s.cancel != nil {
		s.cancel()
	}
	s.pipeline.Shutdown()
	s.queries.Wait()
}

func (s *Server) handleMessage(msg *rpcMessage) error {
	switch msg.Method {
	case "initialize":
		return s.handleInitialize(msg)
	case "initialized":
		return nil
	case "shutdown":
		return s.handleShutdown(msg)
	case "exit":
		s.mu.Lock()
		requested := s.shutdownRequested
		s.mu.Unlock()
		if requested {
			return ErrExit
		}
		return ErrExitWithoutShutdown
	case "textDocument/didOpen":
		return s.handleDidOpen(msg)
	case "textDocument/didChange":
		return s.handleDidChange(msg)
	case "textDocument/didSave":
		return s.handleDidSave(msg)
	case "textDocument/didClose":
		return s.handleDidClose(msg)
	case "textDocument/definition":
		return s.handleDefinition(msg)
	case "textDocument/references":
		return s.handleReferences(msg)
	case "textDocument/hover":
		return s.handleHover(msg)
	default:
		if len(msg.ID) > 0 {
			return s.sendError(msg.ID, -32601, "method not found")
		}
		return nil
	}
}

func (s *Server) handleInitialize(msg *rpcMessage) error {
	var params initializeParams
	if len(msg.Params) > 0 {
		if err := json.Unmarshal(msg.Params, &params); err != nil {
			return s.sendError(msg.ID, -32602, "invalid params")
		}
	}
	result := initializeResult{
		Capabilities: serverCapabilities{
			TextDocumentSync: textDocumentSyncOptions{
				OpenClose: true,
				Change:    2,
				Save:      saveOptions{IncludeText: true},
			},
			HoverProvider:      true,
			DefinitionProvider: true,
			ReferencesProvider: true,
		},
	}
	return s.sendResponse(msg.ID, result)
}

func (s *Server) handleShutdown(msg *rpcMessage) error {
	s.mu.Lock()
	s.shutdownRequested = true
	s.mu.Unlock()
	s.pipeline.Shutdown()
	return s.sendResponse(msg.ID, nil)
}

func (s *Server) handleDidOpen(msg *rpcMessage) error {
	var params didOpenTextDocumentParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		return err
	}
	uri := params.TextDocument.URI
	if uri == "" {
		return nil
	}
	s.docs.Open(uri, params.TextDocument.Text, params.TextDocument.Version)
	s.dispatcher.DiagnosticsImmediate(uri)
	return nil
}

func (s *Server) handleDidChange(msg *rpcMessage) error {
	var params didChangeTextDocumentParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		return err
	}
	uri := params.TextDocument.URI
	if uri == "" {
		return nil
	}
	s.docs.Apply(uri, params.ContentChanges, params.TextDocument.Version)
	s.dispatcher.DiagnosticsDebounced(uri)
	return nil
}

func (s *Server) handleDidSave(msg *rpcMessage) error {
	var params didSaveTextDocumentParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		return err
	}
	uri := params.TextDocument.URI
	if uri == "" {
		return nil
	}
	if params.Text != nil {
		s.docs.Replace(uri, *params.Text)
	}
	s.dispatcher.DiagnosticsImmediate(uri)
	return nil
}

func (s *Server) handleDidClose(msg *rpcMessage) error {
	var params didCloseTextDocumentParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		return err
	}
	uri := params.TextDocument.URI
	if uri == "" {
		return nil
	}
	s.docs.Close(uri)
	s.dispatcher.ClearDiagnostics(uri)
	return nil
}

func (s *Server) handleDefinition(msg *rpcMessage) error {
	var params positionParams
	if len(msg.Params) > 0 {
		if err := json.Unmarshal(msg.Params, &params); err != nil {
			return s.sendError(msg.ID, -32602, "invalid params")
		}
	}
	s.async(msg.ID, func(ctx context.Context) any {
		return s.dispatcher.Definition(ctx, params.TextDocument.URI, params.Position)
	})
	return nil
}

func (s *Server) handleReferences(msg *rpcMessage) error {
	var params referenceParams
	if len(msg.Params) > 0 {
		if err := json.Unmarshal(msg.Params, &params); err != nil {
			return s.sendError(msg.ID, -32602, "invalid params")
		}
	}
	s.async(msg.ID, func(ctx context.Context) any {
		return s.dispatcher.References(ctx, params.TextDocument.URI, params.Position, params.Context.IncludeDeclaration)
	})
	return nil
}

func (s *Server) handleHover(msg *rpcMessage) error {
	var params positionParams
	if len(msg.Params) > 0 {
		if err := json.Unmarshal(msg.Params, &params); err != nil {
			return s.sendError(msg.ID, -32602, "invalid params")
		}
	}
	s.async(msg.ID, func(ctx context.Context) any {
		return s.dispatcher.Hover(ctx, params.TextDocument.URI, params.Position)
	})
	return nil
}

// async runs a query on its own goroutine and responds when it completes.
// After a shutdown request the query is not run and the result is empty
// (null); the query context is canceled when Run returns.
func (s *Server) async(id json.RawMessage, run func(ctx context.Context) any) {
	s.mu.Lock()
	stopped := s.shutdownRequested
	s.mu.Unlock()
	if stopped {
		if err := s.sendResponse(id, nil); err != nil {
			s.log.Warn("failed to send response", zap.Error(err))
		}
		return
	}
	ctx := s.baseCtx
	if ctx == nil {
		ctx = context.Background()
	}
	s.queries.Add(1)
	go func() {
		defer s.queries.Done()
		result := run(ctx)
		if err := s.sendResponse(id, result); err != nil {
			s.log.Warn("failed to send response", zap.Error(err))
		}
	}()
}

func (s *Server) sendResponse(id json.RawMessage, result any) error {
	msg := map[string]any{
		"jsonrpc": "2.0",
		"id":      json.RawMessage(id),
		"result":  result,
	}
	return s.send(msg)
}

func (s *Server) sendError(id json.RawMessage, code int, message string) error {
	msg := map[string]any{
		"jsonrpc": "2.0",
		"id":      json.RawMessage(id),
		"error":   rpcError{Code: code, Message: message},
	}
	return s.send(msg)
}

func (s *Server) sendPublish(params PublishDiagnosticsParams) {
	if params.Diagnostics == nil {
		params.Diagnostics = []WireDiagnostic{}
	}
	msg := map[string]any{
		"jsonrpc": "2.0",
		"method":  "textDocument/publishDiagnostics",
		"params":  params,
	}
	if err := s.send(msg); err != nil {
		s.log.Warn("failed to publish diagnostics", zap.Error(err))
	}
}

func (s *Server) send(msg any) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	s.sendMu.Lock()
	defer s.sendMu.Unlock()
	if err := writeMessage(s.out, payload); err != nil {
		return err
	}
	return s.out.Flush()
}
