package index

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Watch keeps the index current while ctx lives: create/write events
// re-index the file, remove/rename events forget it. Directories created
// under root are added to the watch set.
func (w *Workspace) Watch(ctx context.Context, root string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}

	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if name := d.Name(); name == ".git" || name == "build" || name == ".gradle" {
				return filepath.SkipDir
			}
			return watcher.Add(path)
		}
		return nil
	})
	if err != nil {
		watcher.Close()
		return err
	}

	go func() {
		defer watcher.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				w.handleEvent(watcher, event)
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				w.log.Warn("watch error", zap.Error(err))
			}
		}
	}()
	return nil
}

func (w *Workspace) handleEvent(watcher *fsnotify.Watcher, event fsnotify.Event) {
	switch {
	case event.Op.Has(fsnotify.Create):
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := watcher.Add(event.Name); err != nil {
				w.log.Warn("watch add failed", zap.String("path", event.Name), zap.Error(err))
			}
			return
		}
		fallthrough
	case event.Op.Has(fsnotify.Write):
		if !strings.HasSuffix(event.Name, ".groovy") {
			return
		}
		if err := w.Refresh(event.Name); err != nil {
			w.log.Warn("refresh failed", zap.String("path", event.Name), zap.Error(err))
		}
	case event.Op.Has(fsnotify.Remove), event.Op.Has(fsnotify.Rename):
		if strings.HasSuffix(event.Name, ".groovy") {
			w.Forget(event.Name)
		}
	}
}
