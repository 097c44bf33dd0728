package watcher

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"

	"dataprep/src/normalizer"
)

// DebounceDelay is how long a file must stay quiet before it is processed
const DebounceDelay = 500 * time.Millisecond

// Processor normalizes a single image into the dataset
type Processor interface {
	ProcessOne(index int, path string) (normalizer.Entry, error)
}

// ManifestWriter persists the dataset manifest after every new image
type ManifestWriter interface {
	WriteManifest(result *normalizer.Result) error
}

// Event reports the outcome for one followed file
type Event struct {
	Type     EventType
	FilePath string
	Entry    normalizer.Entry
	Err      error
}

// EventType represents the type of follow event
type EventType int

const (
	EventProcessed EventType = iota
	EventFailed
)

// Watcher keeps normalizing images that appear in the source folder after
// the batch run. New images get the next free index in arrival order.
type Watcher struct {
	folder    string
	processor Processor
	manifest  ManifestWriter
	log       logrus.FieldLogger
	watcher   *fsnotify.Watcher
	events    chan Event

	mu       sync.Mutex
	result   *normalizer.Result
	seen     map[string]bool
	debounce map[string]*time.Timer
	stopped  bool
}

// NewWatcher creates a watcher that continues numbering after result.
// manifest may be nil.
func NewWatcher(folder string, p Processor, manifest ManifestWriter, result *normalizer.Result, log logrus.FieldLogger) (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	seen := make(map[string]bool, len(result.Entries))
	for _, e := range result.Entries {
		seen[filepath.Clean(e.Source)] = true
	}

	return &Watcher{
		folder:    folder,
		processor: p,
		manifest:  manifest,
		log:       log,
		watcher:   fsWatcher,
		events:    make(chan Event, 100),
		result:    result,
		seen:      seen,
		debounce:  make(map[string]*time.Timer),
	}, nil
}

// Start begins monitoring the source folder
func (w *Watcher) Start() error {
	if err := w.watcher.Add(w.folder); err != nil {
		return fmt.Errorf("failed to watch folder %s: %w", w.folder, err)
	}
	w.log.WithField("folder", w.folder).Info("Watching for new images")

	go w.processEvents()

	return nil
}

// Run starts the watcher and blocks until ctx is done
func (w *Watcher) Run(ctx context.Context) error {
	if err := w.Start(); err != nil {
		return err
	}
	<-ctx.Done()
	return w.Stop()
}

func (w *Watcher) processEvents() {
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}

			if !event.Op.Has(fsnotify.Create) && !event.Op.Has(fsnotify.Write) {
				continue
			}

			name := filepath.Base(event.Name)
			if !normalizer.IsImageFile(name) {
				continue
			}

			w.schedule(filepath.Clean(event.Name))

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.log.WithError(err).Warn("Watcher error")
		}
	}
}

// schedule (re)arms the debounce timer for path
func (w *Watcher) schedule(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.stopped || w.seen[path] {
		return
	}

	if timer, exists := w.debounce[path]; exists {
		timer.Stop()
	}

	w.debounce[path] = time.AfterFunc(DebounceDelay, func() {
		w.handle(path)
	})
}

// handle processes one settled file. Processing is serialized so indices
// stay unique and contiguous.
func (w *Watcher) handle(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	delete(w.debounce, path)
	if w.stopped || w.seen[path] {
		return
	}

	index := len(w.result.Entries)
	entry, err := w.processor.ProcessOne(index, path)
	if err != nil {
		w.log.WithError(err).WithField("source", path).Error("Failed to normalize new image")
		w.emit(Event{Type: EventFailed, FilePath: path, Err: err})
		return
	}

	w.seen[path] = true
	w.result.Entries = append(w.result.Entries, entry)
	w.log.WithFields(logrus.Fields{
		"index":  index,
		"source": path,
	}).Info("Normalized new image")

	if w.manifest != nil {
		if err := w.manifest.WriteManifest(w.result); err != nil {
			w.log.WithError(err).Error("Failed to update manifest")
		}
	}

	w.emit(Event{Type: EventProcessed, FilePath: path, Entry: entry})
}

// emit must be called with mu held
func (w *Watcher) emit(e Event) {
	select {
	case w.events <- e:
	default:
		w.log.WithField("source", e.FilePath).Warn("Event channel full, dropping event")
	}
}

// Events returns the event channel
func (w *Watcher) Events() <-chan Event {
	return w.events
}

// Result returns the dataset entries including followed images
func (w *Watcher) Result() *normalizer.Result {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.result
}

// Stop stops the watcher. Pending debounced files are dropped.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	if w.stopped {
		w.mu.Unlock()
		return nil
	}
	w.stopped = true
	for path, timer := range w.debounce {
		timer.Stop()
		delete(w.debounce, path)
	}
	close(w.events)
	w.mu.Unlock()

	return w.watcher.Close()
}
