// Package watcher reloads snapshots when they change on disk.
//
// A Watcher observes one snapshot file plus optional companion files in the
// same directory (the reference whitelist). It prefers fsnotify on the
// directory, which survives editors and capture tools that replace files
// atomically, and falls back to polling on remote filesystems or when
// SV_FORCE_POLL is set.
package watcher

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/vanderheijden86/snapview/pkg/debug"
)

// DefaultPollInterval is the polling interval in fallback mode.
const DefaultPollInterval = 2 * time.Second

// Sentinel errors.
var (
	ErrFileRemoved    = errors.New("watched file was removed")
	ErrPermission     = errors.New("permission denied")
	ErrAlreadyStarted = errors.New("watcher already started")
)

// Change reports that a watched file was written or replaced.
type Change struct {
	Path string
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounceDuration sets the quiet period before a change is reported.
func WithDebounceDuration(d time.Duration) Option {
	return func(w *Watcher) { w.debounce = d }
}

// WithPollInterval sets the polling interval for fallback mode.
func WithPollInterval(d time.Duration) Option {
	return func(w *Watcher) { w.pollInterval = d }
}

// WithCompanions adds files next to the snapshot that also trigger a change,
// given by base name.
func WithCompanions(names ...string) Option {
	return func(w *Watcher) { w.companions = append(w.companions, names...) }
}

// WithOnChange sets a callback run for every reported change.
func WithOnChange(fn func(Change)) Option {
	return func(w *Watcher) { w.onChange = fn }
}

// WithOnError sets a callback run for watch errors.
func WithOnError(fn func(error)) Option {
	return func(w *Watcher) { w.onError = fn }
}

// WithForcePoll forces polling even where fsnotify works.
func WithForcePoll(force bool) Option {
	return func(w *Watcher) { w.forcePoll = force }
}

type fileState struct {
	mtime time.Time
	size  int64
	seen  bool
}

// Watcher monitors a snapshot and its companions.
type Watcher struct {
	path         string
	dir          string
	companions   []string
	debounce     time.Duration
	pollInterval time.Duration
	forcePoll    bool
	onChange     func(Change)
	onError      func(error)

	mu        sync.RWMutex
	started   bool
	polling   bool
	fsType    FilesystemType
	cancel    context.CancelFunc
	fsWatcher *fsnotify.Watcher
	states    map[string]fileState
	pending   map[string]bool

	debouncer *Debouncer
	changes   chan Change
}

// New creates a watcher for the snapshot at path.
func New(path string, opts ...Option) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	w := &Watcher{
		path:         abs,
		dir:          filepath.Dir(abs),
		debounce:     DefaultDebounceDuration,
		pollInterval: DefaultPollInterval,
		onChange:     func(Change) {},
		onError:      func(error) {},
		changes:      make(chan Change, 4),
	}
	for _, opt := range opts {
		opt(w)
	}
	w.debouncer = NewDebouncer(w.debounce)
	return w, nil
}

// Path returns the watched snapshot path.
func (w *Watcher) Path() string { return w.path }

// Changes delivers debounced changes. Sends never block; a slow reader
// misses intermediate changes but always sees that something changed.
func (w *Watcher) Changes() <-chan Change { return w.changes }

// IsPolling reports whether the watcher fell back to polling.
func (w *Watcher) IsPolling() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.polling
}

// IsStarted reports whether the watcher is running.
func (w *Watcher) IsStarted() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.started
}

// FilesystemType returns the classification made at Start.
func (w *Watcher) FilesystemType() FilesystemType {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.fsType
}

// PollInterval returns the fallback polling interval.
func (w *Watcher) PollInterval() time.Duration { return w.pollInterval }

func (w *Watcher) targets() []string {
	out := []string{w.path}
	for _, name := range w.companions {
		out = append(out, filepath.Join(w.dir, name))
	}
	return out
}

func (w *Watcher) isTarget(name string) bool {
	for _, t := range w.targets() {
		if filepath.Clean(name) == t {
			return true
		}
	}
	return false
}

// Start begins watching until ctx is cancelled or Stop is called.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.started {
		return ErrAlreadyStarted
	}
	if _, err := os.Stat(w.path); err != nil && os.IsPermission(err) {
		return ErrPermission
	}

	ctx, w.cancel = context.WithCancel(ctx)
	w.states = make(map[string]fileState)
	w.pending = make(map[string]bool)
	for _, t := range w.targets() {
		w.states[t] = statFile(t)
	}

	w.fsType = DetectFilesystemType(w.path)
	w.polling = w.forcePoll || envBool("SV_FORCE_POLL") || isRemoteFilesystem(w.fsType)

	if !w.polling {
		fsw, err := fsnotify.NewWatcher()
		if err == nil {
			err = fsw.Add(w.dir)
			if err != nil {
				fsw.Close()
			}
		}
		if err != nil {
			debug.Log("watcher: fsnotify unavailable for %s, polling: %v", w.dir, err)
			w.polling = true
		} else {
			w.fsWatcher = fsw
			go w.watchEvents(ctx, fsw)
		}
	}
	if w.polling {
		go w.watchPolling(ctx)
	}

	debug.Log("watcher: watching %s (fs=%s, polling=%v)", w.path, w.fsType, w.polling)
	w.started = true
	return nil
}

// Stop ends watching. The Changes channel stays open so readers blocked on
// it are not woken with a zero value.
func (w *Watcher) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.started {
		return
	}
	w.cancel()
	if w.fsWatcher != nil {
		w.fsWatcher.Close()
		w.fsWatcher = nil
	}
	w.debouncer.Cancel()
	w.started = false
}

func (w *Watcher) watchEvents(ctx context.Context, fsw *fsnotify.Watcher) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-fsw.Events:
			if !ok {
				return
			}
			if !w.isTarget(ev.Name) {
				continue
			}
			switch {
			case ev.Op&fsnotify.Remove != 0 && filepath.Clean(ev.Name) == w.path:
				w.onError(ErrFileRemoved)
			case ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0:
				w.schedule(filepath.Clean(ev.Name))
			}
		case err, ok := <-fsw.Errors:
			if !ok {
				return
			}
			w.onError(err)
		}
	}
}

func (w *Watcher) watchPolling(ctx context.Context) {
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			for _, t := range w.targets() {
				w.pollOnce(t)
			}
		}
	}
}

func (w *Watcher) pollOnce(path string) {
	cur := statFile(path)

	w.mu.Lock()
	prev := w.states[path]
	w.states[path] = cur
	w.mu.Unlock()

	switch {
	case prev.seen && !cur.seen:
		if path == w.path {
			w.onError(ErrFileRemoved)
		}
	case cur.seen && (!prev.seen || cur.mtime.After(prev.mtime) || cur.size != prev.size):
		w.schedule(path)
	}
}

// schedule records path as changed and (re)starts the debounce window.
func (w *Watcher) schedule(path string) {
	w.mu.Lock()
	w.pending[path] = true
	w.mu.Unlock()
	w.debouncer.Trigger(w.flush)
}

func (w *Watcher) flush() {
	w.mu.Lock()
	if !w.started {
		w.mu.Unlock()
		return
	}
	var paths []string
	for _, t := range w.targets() {
		if w.pending[t] {
			paths = append(paths, t)
		}
	}
	clear(w.pending)
	w.mu.Unlock()

	for _, p := range paths {
		c := Change{Path: p}
		w.onChange(c)
		select {
		case w.changes <- c:
		default:
		}
	}
}

func statFile(path string) fileState {
	info, err := os.Stat(path)
	if err != nil {
		return fileState{}
	}
	return fileState{mtime: info.ModTime(), size: info.Size(), seen: true}
}

func envBool(name string) bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(name))) {
	case "1", "true", "yes", "y", "on":
		return true
	}
	return false
}
