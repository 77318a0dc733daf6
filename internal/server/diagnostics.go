package server

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"groovylsp/internal/compiler"
	"groovylsp/internal/diag"
	"groovylsp/internal/engine"
	"groovylsp/internal/source"
)

// EditorChannel receives published diagnostics.
type EditorChannel interface {
	PublishDiagnostics(params PublishDiagnosticsParams)
}

// EditorChannelFunc adapts a function to EditorChannel.
type EditorChannelFunc func(params PublishDiagnosticsParams)

// PublishDiagnostics implements EditorChannel.
func (f EditorChannelFunc) PublishDiagnostics(params PublishDiagnosticsParams) {
	f(params)
}

// debounceToken is the pending-work handle for one source. A newer schedule
// supersedes the token; a superseded or canceled token never publishes.
type debounceToken struct {
	timer       *time.Timer
	scheduledAt time.Time
	superseded  bool
}

// Pipeline debounces per-source diagnostics computation and publishes the
// full current set for each source. Per source the state machine is
// Idle -> Scheduled -> Running, with supersession edges back to Scheduled.
type Pipeline struct {
	docs    DocumentStore
	engine  *engine.Engine
	channel EditorChannel
	delay   time.Duration
	log     *zap.Logger

	mu      sync.Mutex
	pending map[string]*debounceToken
	closed  bool
	wg      sync.WaitGroup
}

// NewPipeline builds a pipeline publishing through channel after delay.
func NewPipeline(docs DocumentStore, eng *engine.Engine, channel EditorChannel, delay time.Duration, log *zap.Logger) *Pipeline {
	if delay <= 0 {
		delay = 300 * time.Millisecond
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Pipeline{
		docs:    docs,
		engine:  eng,
		channel: channel,
		delay:   delay,
		log:     log.Named("diagnostics"),
		pending: make(map[string]*debounceToken),
	}
}

// Immediate compiles and publishes now, bypassing the debounce.
func (p *Pipeline) Immediate(uri string) {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.cancelLocked(uri)
	p.mu.Unlock()
	p.run(uri)
}

// Debounced schedules a compile after the configured delay. A subsequent
// call for the same source supersedes the prior pending one.
func (p *Pipeline) Debounced(uri string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	p.cancelLocked(uri)

	token := &debounceToken{scheduledAt: time.Now()}
	token.timer = time.AfterFunc(p.delay, func() {
		p.fire(uri, token)
	})
	p.pending[uri] = token
}

func (p *Pipeline) fire(uri string, token *debounceToken) {
	p.mu.Lock()
	if p.closed || token.superseded || p.pending[uri] != token {
		p.mu.Unlock()
		return
	}
	delete(p.pending, uri)
	p.wg.Add(1)
	p.mu.Unlock()
	defer p.wg.Done()
	p.run(uri)
}

// Clear cancels pending work and publishes an empty set for uri.
func (p *Pipeline) Clear(uri string) {
	p.mu.Lock()
	p.cancelLocked(uri)
	closed := p.closed
	p.mu.Unlock()
	if closed {
		return
	}
	p.channel.PublishDiagnostics(PublishDiagnosticsParams{
		URI:         uri,
		Diagnostics: []WireDiagnostic{},
	})
}

// Shutdown cancels every pending token and waits for in-flight runs.
func (p *Pipeline) Shutdown() {
	p.mu.Lock()
	p.closed = true
	for uri := range p.pending {
		p.cancelLocked(uri)
	}
	p.mu.Unlock()
	p.wg.Wait()
}

func (p *Pipeline) cancelLocked(uri string) {
	if token, ok := p.pending[uri]; ok {
		token.superseded = true
		token.timer.Stop()
		delete(p.pending, uri)
	}
}

// run compiles the source at the semantic phase and publishes the result.
// An absent document publishes nothing.
func (p *Pipeline) run(uri string) {
	text, ok := p.docs.GetContent(uri)
	if !ok {
		return
	}
	result := p.engine.Compile(source.ID(uri), text, compiler.PhaseSemantic)
	wire := make([]WireDiagnostic, 0, len(result.Issues))
	for _, d := range result.Issues {
		wire = append(wire, toWire(d))
	}
	p.log.Debug("publishing diagnostics",
		zap.String("uri", uri),
		zap.String("status", result.Status.String()),
		zap.Int("count", len(wire)))
	p.channel.PublishDiagnostics(PublishDiagnosticsParams{
		URI:         uri,
		Diagnostics: wire,
	})
}

func toWire(d diag.Diagnostic) WireDiagnostic {
	severity := 1
	if d.Kind.Severity() == diag.SevWarning {
		severity = 2
	}
	return WireDiagnostic{
		Range:    d.Range,
		Severity: severity,
		Code:     d.Code,
		Source:   "groovy",
		Message:  d.Message,
	}
}

// PendingCount reports scheduled-but-unfired tokens, for tests.
func (p *Pipeline) PendingCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.pending)
}
