package server

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"testing"
	"time"

	"groovylsp/internal/compiler"
	"groovylsp/internal/engine"
	"groovylsp/internal/frontend"
	"groovylsp/internal/nav"
	"groovylsp/internal/source"
)

func newTestServer(out *bytes.Buffer) *Server {
	facade := compiler.NewFacade(compiler.DefaultConfig(), frontend.New, nil)
	eng := engine.New(facade, engine.Options{}, nil)
	return NewServer(bytes.NewReader(nil), out, Options{
		Engine:   eng,
		Resolver: nav.NewResolver(nil, nil),
		Debounce: time.Hour,
	})
}

func readFrame(t *testing.T, r *bufio.Reader) rpcMessage {
	t.Helper()
	payload, err := readMessage(r)
	if err != nil {
		t.Fatalf("read frame: %v", err)
	}
	var msg rpcMessage
	if err := json.Unmarshal(payload, &msg); err != nil {
		t.Fatalf("decode frame: %v", err)
	}
	return msg
}

func TestDidOpenPublishesDiagnostics(t *testing.T) {
	var out bytes.Buffer
	s := newTestServer(&out)
	s.baseCtx = context.Background()

	openParams := didOpenTextDocumentParams{
		TextDocument: textDocumentItem{
			URI:     "file:///broken.groovy",
			Version: 1,
			Text:    "def hello( { return 'Hello' }",
		},
	}
	payload, _ := json.Marshal(openParams)
	if err := s.handleDidOpen(&rpcMessage{Method: "textDocument/didOpen", Params: payload}); err != nil {
		t.Fatalf("didOpen: %v", err)
	}

	msg := readFrame(t, bufio.NewReader(bytes.NewReader(out.Bytes())))
	if msg.Method != "textDocument/publishDiagnostics" {
		t.Fatalf("expected publishDiagnostics, got %q", msg.Method)
	}
	var params PublishDiagnosticsParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		t.Fatalf("decode params: %v", err)
	}
	if params.URI != "file:///broken.groovy" {
		t.Fatalf("uri %q", params.URI)
	}
	if len(params.Diagnostics) != 1 {
		t.Fatalf("expected one diagnostic, got %d", len(params.Diagnostics))
	}
	d := params.Diagnostics[0]
	if d.Severity != 1 || d.Source != "groovy" {
		t.Fatalf("diagnostic %+v", d)
	}
	if d.Range.Start.Character != 11 || d.Range.End.Character != 12 {
		t.Fatalf("range %+v", d.Range)
	}
}

func TestDidCloseClearsDiagnostics(t *testing.T) {
	var out bytes.Buffer
	s := newTestServer(&out)
	s.baseCtx = context.Background()

	openParams := didOpenTextDocumentParams{
		TextDocument: textDocumentItem{URI: "file:///broken.groovy", Version: 1, Text: "def hello( {"},
	}
	openPayload, _ := json.Marshal(openParams)
	if err := s.handleDidOpen(&rpcMessage{Method: "textDocument/didOpen", Params: openPayload}); err != nil {
		t.Fatalf("didOpen: %v", err)
	}
	closeParams := didCloseTextDocumentParams{
		TextDocument: textDocumentIdentifier{URI: "file:///broken.groovy"},
	}
	closePayload, _ := json.Marshal(closeParams)
	if err := s.handleDidClose(&rpcMessage{Method: "textDocument/didClose", Params: closePayload}); err != nil {
		t.Fatalf("didClose: %v", err)
	}

	reader := bufio.NewReader(bytes.NewReader(out.Bytes()))
	readFrame(t, reader) // initial publication
	last := readFrame(t, reader)
	var params PublishDiagnosticsParams
	if err := json.Unmarshal(last.Params, &params); err != nil {
		t.Fatalf("decode params: %v", err)
	}
	if len(params.Diagnostics) != 0 {
		t.Fatalf("close must clear diagnostics, got %v", params.Diagnostics)
	}
}

func TestDefinitionRequestRoundTrip(t *testing.T) {
	var out bytes.Buffer
	s := newTestServer(&out)
	s.baseCtx = context.Background()

	openParams := didOpenTextDocumentParams{
		TextDocument: textDocumentItem{URI: "file:///script.groovy", Version: 1, Text: "def x = 10\nprintln x"},
	}
	openPayload, _ := json.Marshal(openParams)
	if err := s.handleDidOpen(&rpcMessage{Method: "textDocument/didOpen", Params: openPayload}); err != nil {
		t.Fatalf("didOpen: %v", err)
	}
	out.Reset()

	defParams := positionParams{
		TextDocument: textDocumentIdentifier{URI: "file:///script.groovy"},
	}
	defParams.Position.Line = 1
	defParams.Position.Character = 8
	defPayload, _ := json.Marshal(defParams)
	if err := s.handleDefinition(&rpcMessage{Method: "textDocument/definition", ID: json.RawMessage(`1`), Params: defPayload}); err != nil {
		t.Fatalf("definition: %v", err)
	}
	s.queries.Wait()

	msg := readFrame(t, bufio.NewReader(bytes.NewReader(out.Bytes())))
	var locations []Location
	if err := json.Unmarshal(msg.Result, &locations); err != nil {
		t.Fatalf("decode result: %v", err)
	}
	if len(locations) != 1 {
		t.Fatalf("expected one location, got %v", locations)
	}
	if locations[0].Range.Start.Line != 0 || locations[0].Range.Start.Character != 4 {
		t.Fatalf("location %+v", locations[0].Range.Start)
	}
}

func TestExitWithoutShutdown(t *testing.T) {
	var out bytes.Buffer
	s := newTestServer(&out)
	s.baseCtx = context.Background()

	if err := s.handleMessage(&rpcMessage{Method: "exit"}); err != ErrExitWithoutShutdown {
		t.Fatalf("expected ErrExitWithoutShutdown, got %v", err)
	}
	if err := s.handleMessage(&rpcMessage{Method: "shutdown", ID: json.RawMessage(`2`)}); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
	if err := s.handleMessage(&rpcMessage{Method: "exit"}); err != ErrExit {
		t.Fatalf("expected ErrExit, got %v", err)
	}
}

func TestApplyChanges(t *testing.T) {
	text := "one\ntwo\n"
	zero := source.ProtocolRange{}
	changed := applyChanges(text, []textDocumentContentChangeEvent{
		{Range: &zero, Text: "// "},
	})
	if changed != "// one\ntwo\n" {
		t.Fatalf("applyChanges = %q", changed)
	}
	full := applyChanges(text, []textDocumentContentChangeEvent{{Text: "replaced"}})
	if full != "replaced" {
		t.Fatalf("full replace = %q", full)
	}
}
