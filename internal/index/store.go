package index

import (
	"errors"
	"os"
	"path/filepath"
	"sort"

	"github.com/vmihailenco/msgpack/v5"
)

// Current schema version - increment when storePayload format changes.
const storeSchemaVersion uint16 = 1

type storePayload struct {
	Schema  uint16
	Symbols []storedSymbol
}

type storedSymbol struct {
	Name   string
	Kind   uint8
	Path   string
	Line   uint32
	Column uint32
}

// Save writes the index to path atomically: encode to a temp file, then
// rename into place.
func (w *Workspace) Save(path string) error {
	w.mu.RLock()
	payload := storePayload{Schema: storeSchemaVersion}
	for _, symbols := range w.byName {
		for _, sym := range symbols {
			payload.Symbols = append(payload.Symbols, storedSymbol{
				Name:   sym.Name,
				Kind:   uint8(sym.Kind),
				Path:   sym.Path,
				Line:   sym.Line,
				Column: sym.Column,
			})
		}
	}
	w.mu.RUnlock()
	sort.Slice(payload.Symbols, func(i, j int) bool {
		si, sj := payload.Symbols[i], payload.Symbols[j]
		if si.Path != sj.Path {
			return si.Path < sj.Path
		}
		if si.Line != sj.Line {
			return si.Line < sj.Line
		}
		return si.Name < sj.Name
	})

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(filepath.Dir(path), "tmp-*")
	if err != nil {
		return err
	}
	tmp := f.Name()
	enc := msgpack.NewEncoder(f)
	if err := enc.Encode(&payload); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, path)
}

// Load replaces the index contents with a previously saved payload. A
// missing file is not an error; a schema mismatch drops the stale payload.
func (w *Workspace) Load(path string) (bool, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	defer f.Close()

	var payload storePayload
	dec := msgpack.NewDecoder(f)
	if err := dec.Decode(&payload); err != nil {
		return false, err
	}
	if payload.Schema != storeSchemaVersion {
		return false, nil
	}

	byPath := make(map[string][]SymbolInfo)
	for _, sym := range payload.Symbols {
		byPath[sym.Path] = append(byPath[sym.Path], SymbolInfo{
			Name:   sym.Name,
			Kind:   SymbolKind(sym.Kind),
			Path:   sym.Path,
			Line:   sym.Line,
			Column: sym.Column,
		})
	}

	w.mu.Lock()
	w.byName = make(map[string][]SymbolInfo)
	w.byPath = make(map[string][]string)
	w.mu.Unlock()
	for path, symbols := range byPath {
		w.replace(path, symbols)
	}
	return true, nil
}
