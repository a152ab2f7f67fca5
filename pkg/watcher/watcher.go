package watcher

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/ritzau/award-network/pkg/logging"
)

// ChangeType represents the type of file change detected
type ChangeType int

const (
	ChangeTypeEvents ChangeType = iota
	ChangeTypeLocations
)

func (t ChangeType) String() string {
	switch t {
	case ChangeTypeEvents:
		return "events"
	case ChangeTypeLocations:
		return "locations"
	}
	return fmt.Sprintf("ChangeType(%d)", int(t))
}

// ChangeEvent represents a batch of file system changes
type ChangeEvent struct {
	Type      ChangeType
	Paths     []string
	Timestamp time.Time
}

// batchWindow groups the burst of events a single save produces
const batchWindow = 100 * time.Millisecond

// FileWatcher watches the input files of the analyzer. It watches their
// parent directories so that editors that save by rename are noticed.
type FileWatcher struct {
	watcher *fsnotify.Watcher
	files   map[string]ChangeType // absolute path -> change type
	events  chan ChangeEvent
	stop    sync.Once
}

// NewFileWatcher creates a watcher for the given files. Empty paths are ignored.
func NewFileWatcher(files map[ChangeType]string) (*FileWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	fw := &FileWatcher{
		watcher: watcher,
		files:   make(map[string]ChangeType),
		events:  make(chan ChangeEvent, 100),
	}
	for typ, path := range files {
		if path == "" {
			continue
		}
		abs, err := filepath.Abs(path)
		if err != nil {
			watcher.Close()
			return nil, fmt.Errorf("failed to resolve %s: %w", path, err)
		}
		fw.files[abs] = typ
	}
	return fw, nil
}

// Start begins watching for file changes
func (fw *FileWatcher) Start(ctx context.Context) error {
	dirs := make(map[string]bool)
	for path := range fw.files {
		dirs[filepath.Dir(path)] = true
	}
	for dir := range dirs {
		if err := fw.watcher.Add(dir); err != nil {
			return fmt.Errorf("failed to watch %s: %w", dir, err)
		}
	}

	logging.Info("started watching input files", "files", fw.watched(), "directories", len(dirs))

	// Process events
	go fw.processEvents(ctx)

	return nil
}

func (fw *FileWatcher) watched() []string {
	paths := make([]string, 0, len(fw.files))
	for p := range fw.files {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// classify maps an fsnotify event to the watched file it concerns
func (fw *FileWatcher) classify(event fsnotify.Event) (ChangeType, bool) {
	if event.Op == fsnotify.Chmod {
		return 0, false
	}
	abs, err := filepath.Abs(event.Name)
	if err != nil {
		return 0, false
	}
	typ, ok := fw.files[abs]
	return typ, ok
}

// processEvents processes file system events and batches them by type
func (fw *FileWatcher) processEvents(ctx context.Context) {
	defer close(fw.events)
	defer fw.Stop()

	// Batch events to avoid sending one event per write
	pending := make(map[ChangeType][]string)

	flushTimer := time.NewTimer(batchWindow)
	flushTimer.Stop()

	flush := func() {
		for _, typ := range []ChangeType{ChangeTypeEvents, ChangeTypeLocations} {
			paths := pending[typ]
			if len(paths) == 0 {
				continue
			}
			select {
			case fw.events <- ChangeEvent{Type: typ, Paths: paths, Timestamp: time.Now()}:
			case <-ctx.Done():
				return
			}
		}
		pending = make(map[ChangeType][]string)
	}

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-fw.watcher.Events:
			if !ok {
				flush()
				return
			}

			typ, relevant := fw.classify(event)
			if !relevant {
				continue
			}
			logging.Trace("file event", "path", event.Name, "op", event.Op.String())
			pending[typ] = appendUnique(pending[typ], event.Name)
			flushTimer.Reset(batchWindow)

		case <-flushTimer.C:
			flush()

		case err, ok := <-fw.watcher.Errors:
			if !ok {
				return
			}
			logging.Error("watcher error", "error", err)
		}
	}
}

func appendUnique(list []string, s string) []string {
	for _, existing := range list {
		if existing == s {
			return list
		}
	}
	return append(list, s)
}

// Events returns the channel of change events. It is closed when the
// watcher's context ends.
func (fw *FileWatcher) Events() <-chan ChangeEvent {
	return fw.events
}

// Stop stops the file watcher
func (fw *FileWatcher) Stop() error {
	var err error
	fw.stop.Do(func() {
		err = fw.watcher.Close()
	})
	return err
}
