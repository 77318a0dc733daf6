package server

import "sync"

// DocumentStore provides the current text of editor-managed documents.
type DocumentStore interface {
	GetContent(uri string) (string, bool)
}

// Documents tracks open documents and their versions. It implements
// DocumentStore for the dispatcher and pipeline.
type Documents struct {
	mu       sync.RWMutex
	contents map[string]string
	versions map[string]int
}

// NewDocuments builds an empty store.
func NewDocuments() *Documents {
	return &Documents{
		contents: make(map[string]string),
		versions: make(map[string]int),
	}
}

// GetContent implements DocumentStore.
func (d *Documents) GetContent(uri string) (string, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	text, ok := d.contents[uri]
	return text, ok
}

// Open records a newly opened document.
func (d *Documents) Open(uri, text string, version int) {
	d.mu.Lock()
	d.contents[uri] = text
	d.versions[uri] = version
	d.mu.Unlock()
}

// Apply folds content changes into the stored text.
func (d *Documents) Apply(uri string, changes []textDocumentContentChangeEvent, version int) {
	d.mu.Lock()
	d.contents[uri] = applyChanges(d.contents[uri], changes)
	d.versions[uri] = version
	d.mu.Unlock()
}

// Replace swaps in full text, e.g. from didSave with included text.
func (d *Documents) Replace(uri, text string) {
	d.mu.Lock()
	d.contents[uri] = text
	d.mu.Unlock()
}

// Close forgets a document.
func (d *Documents) Close(uri string) {
	d.mu.Lock()
	delete(d.contents, uri)
	delete(d.versions, uri)
	d.mu.Unlock()
}

// Version returns the last seen version for uri.
func (d *Documents) Version(uri string) int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.versions[uri]
}

// URIs lists the open documents.
func (d *Documents) URIs() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]string, 0, len(d.contents))
	for uri := range d.contents {
		out = append(out, uri)
	}
	return out
}
