// Package workspace finds the snapshots in a directory and summarizes them
// for the snapshot picker.
package workspace

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/vanderheijden86/snapview/pkg/metrics"
	"github.com/vanderheijden86/snapview/pkg/snapshot"
)

// ErrNoSnapshots is returned when a directory holds no *.xml files.
var ErrNoSnapshots = errors.New("no snapshot files found")

// Entry summarizes one snapshot file.
type Entry struct {
	Name          string
	Path          string
	ModTime       time.Time
	Nodes         int
	HasScreenshot bool
	Width, Height int

	// Err is set when the file could not be parsed; the entry is still listed.
	Err error
}

// Describe returns the one-line summary shown in the picker.
func (e Entry) Describe() string {
	if e.Err != nil {
		return fmt.Sprintf("%s (unreadable: %v)", e.Name, e.Err)
	}
	shot := "no screenshot"
	if e.HasScreenshot {
		shot = fmt.Sprintf("%dx%d screenshot", e.Width, e.Height)
	}
	return fmt.Sprintf("%s (%d elements, %s)", e.Name, e.Nodes, shot)
}

// Scanner summarizes snapshot directories.
type Scanner struct {
	limit  int
	logger *log.Logger
}

// NewScanner returns a scanner parsing up to 8 files at a time.
func NewScanner() *Scanner {
	return &Scanner{
		limit: 8,
		// Silent by default so robot output on stdout/stderr stays clean.
		logger: log.New(io.Discard, "", 0),
	}
}

// SetLogger sets the logger used for unreadable files.
func (s *Scanner) SetLogger(logger *log.Logger) { s.logger = logger }

// SetLimit sets how many files are parsed concurrently.
func (s *Scanner) SetLimit(n int) {
	if n > 0 {
		s.limit = n
	}
}

// List returns the *.xml files directly inside dir, sorted by name.
func List(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("listing snapshots: %w", err)
	}
	var paths []string
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".xml") {
			continue
		}
		paths = append(paths, filepath.Join(dir, e.Name()))
	}
	sort.Strings(paths)
	return paths, nil
}

// Scan parses every snapshot in dir concurrently. Files that fail to parse
// are reported through Entry.Err, not as a scan error.
func (s *Scanner) Scan(ctx context.Context, dir string) ([]Entry, error) {
	defer metrics.Timer(metrics.WorkspaceScan)()

	paths, err := List(dir)
	if err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("%s: %w", dir, ErrNoSnapshots)
	}

	entries := make([]Entry, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.limit)

	for i, path := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				entries[i] = Entry{Name: filepath.Base(path), Path: path, Err: err}
				return nil
			}
			entries[i] = summarize(path)
			if entries[i].Err != nil {
				s.logger.Printf("skipping %s: %v", entries[i].Name, entries[i].Err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return entries, err
	}
	s.logger.Printf("scanned %d snapshots in %s", len(entries), dir)
	return entries, ctx.Err()
}

func summarize(path string) Entry {
	e := Entry{Name: filepath.Base(path), Path: path}
	snap, err := snapshot.Load(path)
	if err != nil {
		e.Err = err
		return e
	}
	e.ModTime = snap.ModTime
	e.Nodes = snap.Tree.Len()
	e.HasScreenshot = snap.HasScreenshot()
	e.Width, e.Height = snap.Natural.Width, snap.Natural.Height
	return e
}
