// Package watch triggers catalog rebuilds when the input trees change.
// Rebuilds are whole-pipeline runs, so bursts of filesystem events (an
// asset extraction dropping hundreds of files) are coalesced into one
// trigger per quiet period.
package watch

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is the quiet period required before a burst of events
// becomes a rebuild trigger.
const DefaultDebounce = 500 * time.Millisecond

// Batch describes one coalesced burst of input changes.
type Batch struct {
	// Files lists the distinct changed paths, sorted.
	Files []string
}

// Watcher monitors the input trees and emits one Batch per quiet burst of
// changes. Directories under the roots are watched recursively, including
// directories created while watching.
type Watcher struct {
	// Roots are the directories to watch. Roots that do not exist are
	// skipped, so optional trees (overrides) can be listed unconditionally.
	Roots []string

	// Debounce overrides DefaultDebounce when positive.
	Debounce time.Duration

	// Rebuilds receives one Batch per burst.
	Rebuilds <-chan Batch

	rebuilds chan Batch
	done     chan struct{}
	watcher  *fsnotify.Watcher
}

// NewWatcher creates a watcher over the given roots. Call Start to begin
// receiving batches.
func NewWatcher(roots ...string) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	ch := make(chan Batch, 4)
	return &Watcher{
		Roots:    roots,
		Rebuilds: ch,
		rebuilds: ch,
		done:     make(chan struct{}),
		watcher:  fw,
	}, nil
}

// Start registers the root trees and begins emitting batches.
func (w *Watcher) Start() error {
	for _, root := range w.Roots {
		if _, err := os.Stat(root); err != nil {
			continue
		}
		if err := w.addTree(root); err != nil {
			return err
		}
	}

	go w.loop()
	return nil
}

// Stop closes the watcher and the Rebuilds channel.
func (w *Watcher) Stop() {
	w.watcher.Close()
	<-w.done
	close(w.rebuilds)
}

// addTree watches dir and every directory below it.
func (w *Watcher) addTree(dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || !d.IsDir() {
			return err
		}
		return w.watcher.Add(path)
	})
}

func (w *Watcher) loop() {
	defer close(w.done)

	debounce := w.Debounce
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	pending := make(map[string]bool)
	var last time.Time
	ticker := time.NewTicker(debounce)
	defer ticker.Stop()

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) &&
				!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
				continue
			}

			// New directories join the watch so files appearing under
			// them keep triggering rebuilds.
			if event.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					w.addTree(event.Name)
					pending[event.Name] = true
					last = time.Now()
					continue
				}
			}

			if !isAssetFile(event.Name) {
				continue
			}
			pending[event.Name] = true
			last = time.Now()

		case <-ticker.C:
			if len(pending) == 0 || time.Since(last) < debounce {
				continue
			}
			files := make([]string, 0, len(pending))
			for f := range pending {
				files = append(files, f)
			}
			sort.Strings(files)
			w.rebuilds <- Batch{Files: files}
			pending = make(map[string]bool)

		case _, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			// Watch errors are non-fatal; the next event still arrives.
		}
	}
}

// isAssetFile reports whether a path names an input the pipeline reads:
// model and tag definitions, texture images, or override tables.
func isAssetFile(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".json", ".png", ".txt", ".toml":
		return true
	}
	return false
}
