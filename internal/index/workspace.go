package index

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"groovylsp/internal/ast"
	"groovylsp/internal/compiler"
	"groovylsp/internal/source"
)

// Workspace is an in-memory symbol index over a directory tree of Groovy
// sources. It implements SymbolIndex; Build populates it, Refresh updates a
// single file, and the watcher keeps it current.
type Workspace struct {
	facade *compiler.Facade
	log    *zap.Logger

	mu     sync.RWMutex
	byName map[string][]SymbolInfo
	byPath map[string][]string // path -> names contributed, for refresh
}

// NewWorkspace builds an empty workspace index compiling through facade.
func NewWorkspace(facade *compiler.Facade, log *zap.Logger) *Workspace {
	if log == nil {
		log = zap.NewNop()
	}
	return &Workspace{
		facade: facade,
		log:    log.Named("index"),
		byName: make(map[string][]SymbolInfo),
		byPath: make(map[string][]string),
	}
}

// SearchSymbols implements SymbolIndex.
func (w *Workspace) SearchSymbols(ctx context.Context, name string) ([]SymbolInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	key := source.NormalizeName(name)
	w.mu.RLock()
	defer w.mu.RUnlock()
	found := w.byName[key]
	out := make([]SymbolInfo, len(found))
	copy(out, found)
	return out, nil
}

// Len returns the number of distinct symbol names.
func (w *Workspace) Len() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return len(w.byName)
}

// Build scans root for Groovy sources and indexes their declarations.
// Files are compiled in parallel, bounded by the CPU count.
func (w *Workspace) Build(ctx context.Context, root string) error {
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if name := d.Name(); name == ".git" || name == "build" || name == ".gradle" {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.HasSuffix(path, ".groovy") {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return err
	}
	sort.Strings(files)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for _, path := range files {
		path := path
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			if err := w.Refresh(path); err != nil {
				w.log.Warn("index scan failed", zap.String("path", path), zap.Error(err))
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	w.log.Info("workspace indexed",
		zap.String("root", root),
		zap.Int("files", len(files)),
		zap.Int("symbols", w.Len()))
	return nil
}

// Refresh re-indexes one file from disk, replacing its prior contributions.
func (w *Workspace) Refresh(path string) error {
	content, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			w.Forget(path)
			return nil
		}
		return err
	}
	id := source.ID(source.PathToURI(path))
	tree, errs, _ := w.facade.CompileTo(string(content), id, compiler.PhaseConvert)
	if tree == nil {
		// Unparseable files keep their previous symbols.
		w.log.Debug("index refresh kept stale symbols",
			zap.String("path", path),
			zap.Int("errors", len(errs)))
		return nil
	}
	symbols := Collect(tree, path)
	w.replace(path, symbols)
	return nil
}

// Forget removes a deleted file's contributions.
func (w *Workspace) Forget(path string) {
	w.replace(path, nil)
}

func (w *Workspace) replace(path string, symbols []SymbolInfo) {
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, name := range w.byPath[path] {
		kept := w.byName[name][:0]
		for _, sym := range w.byName[name] {
			if sym.Path != path {
				kept = append(kept, sym)
			}
		}
		if len(kept) == 0 {
			delete(w.byName, name)
		} else {
			w.byName[name] = kept
		}
	}
	delete(w.byPath, path)

	if len(symbols) == 0 {
		return
	}
	names := make([]string, 0, len(symbols))
	for _, sym := range symbols {
		key := source.NormalizeName(sym.Name)
		w.byName[key] = append(w.byName[key], sym)
		names = append(names, key)
	}
	w.byPath[path] = names
}

// Collect extracts the indexable declarations of a module.
func Collect(m *ast.Module, path string) []SymbolInfo {
	if m == nil {
		return nil
	}
	var out []SymbolInfo
	add := func(name string, kind SymbolKind, rng source.Range) {
		if name == "" {
			return
		}
		out = append(out, SymbolInfo{
			Name:   name,
			Kind:   kind,
			Path:   path,
			Line:   rng.Start.Line,
			Column: rng.Start.Col,
		})
	}
	for _, cls := range m.Classes {
		kind := SymbolClass
		switch cls.Kind {
		case ast.ClassInterface:
			kind = SymbolInterface
		case ast.ClassEnum:
			kind = SymbolEnum
		}
		add(cls.Name, kind, cls.NameRng)
		for _, method := range cls.Methods {
			add(method.Name, SymbolMethod, method.NameRng)
		}
		for _, f := range cls.Fields {
			add(f.Name, SymbolField, f.NameRng)
		}
		for _, prop := range cls.Properties {
			add(prop.Name, SymbolProperty, prop.NameRng)
		}
	}
	for _, fn := range m.Methods {
		add(fn.Name, SymbolMethod, fn.NameRng)
	}
	return out
}
