// Package diag defines the diagnostic model of the analysis core: kinds,
// severities, the closed code table, and the message-to-range refinement
// used when publishing to the editor.
package diag

import (
	"fmt"
	"sort"

	"groovylsp/internal/source"
)

// Kind classifies a diagnostic by the phase that produced it.
type Kind uint8

const (
	KindSyntax Kind = iota
	KindSemantic
	KindType
	KindWarning
)

func (k Kind) String() string {
	switch k {
	case KindSyntax:
		return "SYNTAX"
	case KindSemantic:
		return "SEMANTIC"
	case KindType:
		return "TYPE"
	case KindWarning:
		return "WARNING"
	}
	return "UNKNOWN"
}

// Severity defines the importance of a diagnostic on the wire.
type Severity uint8

const (
	SevWarning Severity = iota
	SevError
)

func (s Severity) String() string {
	switch s {
	case SevWarning:
		return "WARNING"
	case SevError:
		return "ERROR"
	}
	return "UNKNOWN"
}

// Severity returns the wire severity implied by the kind.
func (k Kind) Severity() Severity {
	if k == KindWarning {
		return SevWarning
	}
	return SevError
}

// Diagnostic captures a single compiler message with its stable code and the
// refined protocol range computed from the message text.
type Diagnostic struct {
	Message string
	Line    uint32 // 1-based, as reported by the compiler
	Col     uint32 // 1-based
	Source  source.ID
	Kind    Kind
	Code    string
	Range   source.ProtocolRange
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s:%d:%d: %s %s: %s", d.Source, d.Line, d.Col, d.Kind, d.Code, d.Message)
}

// Bag holds an ordered collection of diagnostics with a capacity limit.
type Bag struct {
	items   []Diagnostic
	maximum int
}

// NewBag creates a Bag that accepts at most maximum diagnostics.
func NewBag(maximum int) *Bag {
	if maximum <= 0 {
		maximum = 100
	}
	return &Bag{items: make([]Diagnostic, 0, maximum), maximum: maximum}
}

// Add appends a diagnostic, honoring the capacity limit. Returns false when
// the diagnostic was dropped.
func (b *Bag) Add(d Diagnostic) bool {
	if len(b.items) >= b.maximum {
		return false
	}
	b.items = append(b.items, d)
	return true
}

// Len returns the number of diagnostics in the bag.
func (b *Bag) Len() int {
	return len(b.items)
}

// Items returns a read-only view of the collected diagnostics.
func (b *Bag) Items() []Diagnostic {
	return b.items
}

// HasErrors reports whether any diagnostic carries error severity.
func (b *Bag) HasErrors() bool {
	for i := range b.items {
		if b.items[i].Kind.Severity() == SevError {
			return true
		}
	}
	return false
}

// Errors returns the error-severity diagnostics in order.
func (b *Bag) Errors() []Diagnostic {
	out := make([]Diagnostic, 0, len(b.items))
	for _, d := range b.items {
		if d.Kind.Severity() == SevError {
			out = append(out, d)
		}
	}
	return out
}

// Warnings returns the warning-severity diagnostics in order.
func (b *Bag) Warnings() []Diagnostic {
	out := make([]Diagnostic, 0, len(b.items))
	for _, d := range b.items {
		if d.Kind.Severity() == SevWarning {
			out = append(out, d)
		}
	}
	return out
}

// Sort orders diagnostics by source, position, severity (errors first), and
// code for deterministic output.
func (b *Bag) Sort() {
	sort.SliceStable(b.items, func(i, j int) bool {
		di, dj := b.items[i], b.items[j]
		if di.Source != dj.Source {
			return di.Source < dj.Source
		}
		if di.Line != dj.Line {
			return di.Line < dj.Line
		}
		if di.Col != dj.Col {
			return di.Col < dj.Col
		}
		if di.Kind.Severity() != dj.Kind.Severity() {
			return di.Kind.Severity() > dj.Kind.Severity()
		}
		return di.Code < dj.Code
	})
}

// Dedup removes diagnostics that repeat the same code, position, and message.
func (b *Bag) Dedup() {
	seen := make(map[string]bool, len(b.items))
	kept := b.items[:0]
	for _, d := range b.items {
		key := fmt.Sprintf("%s|%d:%d|%s|%s", d.Code, d.Line, d.Col, d.Source, d.Message)
		if seen[key] {
			continue
		}
		seen[key] = true
		kept = append(kept, d)
	}
	b.items = kept
}
