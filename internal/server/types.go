// Package server exposes the language-server request surface: the query
// dispatcher composing the engine, resolver, and inference, the debounced
// diagnostics pipeline, and the stdio JSON-RPC loop.
package server

import (
	"encoding/json"

	"groovylsp/internal/source"
)

type rpcMessage struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id,omitempty"`
	Method  string          `json:"method,omitempty"`
	Params  json.RawMessage `json:"params,omitempty"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *rpcError       `json:"error,omitempty"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type initializeParams struct {
	RootURI          string            `json:"rootUri,omitempty"`
	RootPath         string            `json:"rootPath,omitempty"`
	WorkspaceFolders []workspaceFolder `json:"workspaceFolders,omitempty"`
}

type workspaceFolder struct {
	URI  string `json:"uri"`
	Name string `json:"name"`
}

type textDocumentItem struct {
	URI        string `json:"uri"`
	LanguageID string `json:"languageId"`
	Version    int    `json:"version"`
	Text       string `json:"text"`
}

type textDocumentIdentifier struct {
	URI string `json:"uri"`
}

type versionedTextDocumentIdentifier struct {
	URI     string `json:"uri"`
	Version int    `json:"version"`
}

type textDocumentContentChangeEvent struct {
	Range *source.ProtocolRange `json:"range,omitempty"`
	Text  string                `json:"text"`
}

type didOpenTextDocumentParams struct {
	TextDocument textDocumentItem `json:"textDocument"`
}

type didChangeTextDocumentParams struct {
	TextDocument   versionedTextDocumentIdentifier  `json:"textDocument"`
	ContentChanges []textDocumentContentChangeEvent `json:"contentChanges"`
}

type didSaveTextDocumentParams struct {
	TextDocument textDocumentIdentifier `json:"textDocument"`
	Text         *string                `json:"text,omitempty"`
}

type didCloseTextDocumentParams struct {
	TextDocument textDocumentIdentifier `json:"textDocument"`
}

type positionParams struct {
	TextDocument textDocumentIdentifier  `json:"textDocument"`
	Position     source.ProtocolPosition `json:"position"`
}

type referenceParams struct {
	TextDocument textDocumentIdentifier  `json:"textDocument"`
	Position     source.ProtocolPosition `json:"position"`
	Context      referenceContext        `json:"context"`
}

type referenceContext struct {
	IncludeDeclaration bool `json:"includeDeclaration"`
}

// Location is the wire form of a navigation target.
type Location struct {
	URI   string               `json:"uri"`
	Range source.ProtocolRange `json:"range"`
}

// Hover is the wire form of hover content.
type Hover struct {
	Contents markupContent         `json:"contents"`
	Range    *source.ProtocolRange `json:"range,omitempty"`
}

type markupContent struct {
	Kind  string `json:"kind"`
	Value string `json:"value"`
}

// WireDiagnostic is the protocol form of a published diagnostic.
type WireDiagnostic struct {
	Range    source.ProtocolRange `json:"range"`
	Severity int                  `json:"severity,omitempty"`
	Code     string               `json:"code,omitempty"`
	Source   string               `json:"source,omitempty"`
	Message  string               `json:"message"`
}

// PublishDiagnosticsParams carries the full current diagnostic set for one
// document; an empty list clears prior diagnostics.
type PublishDiagnosticsParams struct {
	URI         string           `json:"uri"`
	Diagnostics []WireDiagnostic `json:"diagnostics"`
}

type textDocumentSyncOptions struct {
	OpenClose bool        `json:"openClose"`
	Change    int         `json:"change"`
	Save      saveOptions `json:"save,omitempty"`
}

type saveOptions struct {
	IncludeText bool `json:"includeText,omitempty"`
}

type serverCapabilities struct {
	TextDocumentSync   textDocumentSyncOptions `json:"textDocumentSync"`
	HoverProvider      bool                    `json:"hoverProvider"`
	DefinitionProvider bool                    `json:"definitionProvider"`
	ReferencesProvider bool                    `json:"referencesProvider"`
}

type initializeResult struct {
	Capabilities serverCapabilities `json:"capabilities"`
}
