package workspace

import (
	"bytes"
	"context"
	"errors"
	"log"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func write(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestList(t *testing.T) {
	dir := t.TempDir()
	write(t, dir, "b.xml", "<ui/>")
	write(t, dir, "a.XML", "<ui/>")
	write(t, dir, "notes.txt", "x")
	if err := os.Mkdir(filepath.Join(dir, "sub.xml"), 0o755); err != nil {
		t.Fatal(err)
	}

	paths, err := List(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(paths) != 2 || filepath.Base(paths[0]) != "a.XML" || filepath.Base(paths[1]) != "b.xml" {
		t.Errorf("unexpected listing %v", paths)
	}
}

func TestScan(t *testing.T) {
	dir := t.TempDir()
	write(t, dir, "main.xml", `<ui><element simplifiedType="Window"><children><element/><element/></children></element></ui>`)
	write(t, dir, "broken.xml", "<ui><element>")

	var logs bytes.Buffer
	s := NewScanner()
	s.SetLogger(log.New(&logs, "", 0))
	s.SetLimit(2)

	entries, err := s.Scan(context.Background(), dir)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}

	broken, main := entries[0], entries[1]
	if broken.Err == nil || !strings.Contains(broken.Describe(), "unreadable") {
		t.Errorf("expected broken.xml to be unreadable, got %+v", broken)
	}
	if main.Err != nil || main.Nodes != 3 || main.HasScreenshot {
		t.Errorf("unexpected main.xml summary %+v", main)
	}
	if got := main.Describe(); got != "main.xml (3 elements, no screenshot)" {
		t.Errorf("unexpected description %q", got)
	}
	if !strings.Contains(logs.String(), "skipping broken.xml") {
		t.Errorf("expected skip to be logged, got %q", logs.String())
	}
}

func TestScanEmpty(t *testing.T) {
	_, err := NewScanner().Scan(context.Background(), t.TempDir())
	if !errors.Is(err, ErrNoSnapshots) {
		t.Errorf("expected ErrNoSnapshots, got %v", err)
	}
	if _, err := NewScanner().Scan(context.Background(), filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Error("expected an error for a missing directory")
	}
}

func TestScanCancelled(t *testing.T) {
	dir := t.TempDir()
	write(t, dir, "main.xml", "<ui/>")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	entries, err := NewScanner().Scan(ctx, dir)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if len(entries) != 1 || entries[0].Err == nil {
		t.Errorf("cancelled entries should carry the context error, got %+v", entries)
	}
}
