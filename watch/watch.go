// Package watch rebuilds address maps when their source files change.
package watch

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
)

// MapExtensions are the file extensions that trigger a rebuild.
var MapExtensions = []string{".soc", ".txt", ".yaml", ".yml", ".json"}

// Options configures Watch.
type Options struct {
	// Paths are directories or files to watch. A file is watched through its
	// parent directory so editors that replace files on save keep working.
	Paths []string
	// Out receives progress messages; nil discards them.
	Out io.Writer
}

// Watch calls build whenever a map file under opts.Paths is written or
// created, until ctx is cancelled.
func Watch(ctx context.Context, opts Options, build func() error) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	out := opts.Out
	if out == nil {
		out = io.Discard
	}

	w := &watchSet{dirs: map[string]bool{}, files: map[string]bool{}}
	for _, p := range opts.Paths {
		info, err := os.Stat(p)
		if err != nil {
			return fmt.Errorf("failed to watch %s: %w", p, err)
		}
		dir := filepath.Clean(p)
		if !info.IsDir() {
			w.files[dir] = true
			dir = filepath.Dir(dir)
		} else {
			w.dirs[dir] = true
		}
		if err := watcher.Add(dir); err != nil {
			return fmt.Errorf("failed to watch %s: %w", dir, err)
		}
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !w.relevant(event) {
				continue
			}
			fmt.Fprintf(out, "File changed: %s\n", event.Name)
			if err := build(); err != nil {
				fmt.Fprintf(out, "Build failed: %v\n", err)
			} else {
				fmt.Fprintln(out, "Rebuild complete")
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			fmt.Fprintf(out, "Watcher error: %v\n", err)
		}
	}
}

type watchSet struct {
	dirs  map[string]bool
	files map[string]bool
}

func (w *watchSet) relevant(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
		return false
	}
	name := filepath.Clean(event.Name)
	if w.files[name] {
		return true
	}
	if !w.dirs[filepath.Dir(name)] {
		return false
	}
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range MapExtensions {
		if ext == e {
			return true
		}
	}
	return false
}
