// Package export writes snapshot data to files: an annotated screenshot
// (PNG or SVG), a SQLite dump of the element tree and a JSON document.
package export

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/vanderheijden86/snapview/pkg/props"
)

// Sentinel errors.
var (
	ErrNoScreenshot      = errors.New("snapshot has no screenshot to annotate")
	ErrNoSnapshot        = errors.New("no snapshot loaded")
	ErrUnsupportedFormat = errors.New("unsupported format")
)

// Format is an image export format.
type Format string

// Supported image formats.
const (
	FormatPNG Format = "png"
	FormatSVG Format = "svg"
)

// ResolveFormat picks the output format from an explicit format string or,
// when that is empty, from the path's extension. A path without extension
// gets ".svg" appended.
func ResolveFormat(path, format string) (Format, string, error) {
	if path == "" {
		return "", "", fmt.Errorf("output path is required")
	}
	f := strings.ToLower(strings.TrimPrefix(format, "."))
	if f == "" {
		switch strings.ToLower(filepath.Ext(path)) {
		case ".svg":
			f = string(FormatSVG)
		case ".png":
			f = string(FormatPNG)
		default:
			f = string(FormatSVG)
			if filepath.Ext(path) == "" {
				path += ".svg"
			}
		}
	}
	switch Format(f) {
	case FormatPNG, FormatSVG:
		return Format(f), path, nil
	default:
		return "", "", fmt.Errorf("%w %q (want svg or png)", ErrUnsupportedFormat, f)
	}
}

func ensureParent(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create parent dir: %w", err)
	}
	return nil
}

func kindName(k props.Kind) string {
	switch k {
	case props.String:
		return "string"
	case props.Null:
		return "null"
	default:
		return "other"
	}
}
