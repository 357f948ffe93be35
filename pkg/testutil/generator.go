// Package testutil provides synthetic UI element trees for tests and
// benchmarks. All generators produce deterministic output for reproducible
// tests.
package testutil

import (
	"fmt"
	"math/rand"
	"strconv"

	"github.com/vanderheijden86/snapview/pkg/model"
	"github.com/vanderheijden86/snapview/pkg/props"
)

// GeneratorConfig controls tree generation.
type GeneratorConfig struct {
	Seed      int64 // Random seed for determinism (0 = 42)
	Width     int   // Root width in pixels (default: 1024)
	Height    int   // Root height in pixels (default: 768)
	Inset     int   // Gap between a parent's edge and its children (default: 2)
	WithText  bool  // Give every element a random "text" property
	SkipEvery int   // Leave geometry off every n-th element (0 = never)
}

// DefaultConfig returns a config suitable for most tests.
func DefaultConfig() GeneratorConfig {
	return GeneratorConfig{
		Seed:     42, // Deterministic
		Width:    1024,
		Height:   768,
		Inset:    2,
		WithText: true,
	}
}

var (
	classes = []string{"QWidget", "QPushButton", "QLabel", "QLineEdit", "QFrame", "QCheckBox"}
	words   = []string{"Save", "Open", "Cancel", "OK", "Name", "Settings", "Apply", "Help"}
)

// Generator creates element trees with nested geometry.
type Generator struct {
	cfg   GeneratorConfig
	rng   *rand.Rand
	count int
}

// New creates a Generator with the given config.
func New(cfg GeneratorConfig) *Generator {
	if cfg.Seed == 0 {
		cfg.Seed = 42
	}
	if cfg.Width <= 0 {
		cfg.Width = 1024
	}
	if cfg.Height <= 0 {
		cfg.Height = 768
	}
	if cfg.Inset < 0 {
		cfg.Inset = 0
	}
	return &Generator{cfg: cfg, rng: rand.New(rand.NewSource(cfg.Seed))}
}

// NewDefault creates a Generator with default config.
func NewDefault() *Generator {
	return New(DefaultConfig())
}

type rect struct{ x, y, w, h int }

// Tree builds a complete tree of the given depth where every inner element
// has breadth children. Children split their parent's area into columns at
// even depths and rows at odd depths, so each child lies inside its parent.
func (g *Generator) Tree(depth, breadth int) *model.Tree {
	g.count = 0
	root := g.node(rect{0, 0, g.cfg.Width, g.cfg.Height})
	g.grow(root.node, root.r, 1, depth, breadth)
	return model.Build(root.node)
}

// Chain builds a single nested line of elements, each inset in its parent.
func (g *Generator) Chain(length int) *model.Tree {
	return g.Tree(length, 1)
}

// Wide builds a root with n direct children laid out as columns.
func (g *Generator) Wide(n int) *model.Tree {
	return g.Tree(2, n)
}

type placed struct {
	node *model.Node
	r    rect
}

func (g *Generator) grow(parent *model.Node, r rect, level, depth, breadth int) {
	if level >= depth || breadth <= 0 {
		return
	}
	inner := rect{r.x + g.cfg.Inset, r.y + g.cfg.Inset, r.w - 2*g.cfg.Inset, r.h - 2*g.cfg.Inset}
	if inner.w < breadth || inner.h < breadth {
		return
	}
	for i := 0; i < breadth; i++ {
		cr := inner
		if level%2 == 1 {
			cr.w = inner.w / breadth
			cr.x = inner.x + i*cr.w
		} else {
			cr.h = inner.h / breadth
			cr.y = inner.y + i*cr.h
		}
		child := g.node(cr)
		parent.Children = append(parent.Children, child.node)
		g.grow(child.node, cr, level+1, depth, breadth)
	}
}

func (g *Generator) node(r rect) placed {
	g.count++
	class := classes[g.rng.Intn(len(classes))]
	name := fmt.Sprintf("%s_%d", class[1:], g.count)

	var b props.Builder
	b.Set("class", class)
	b.Set("objectName", name)
	if g.cfg.WithText {
		b.Set("text", words[g.rng.Intn(len(words))])
	}
	if g.cfg.SkipEvery <= 0 || g.count%g.cfg.SkipEvery != 0 {
		b.Set("geometry_x", strconv.Itoa(r.x))
		b.Set("geometry_y", strconv.Itoa(r.y))
		b.Set("geometry_width", strconv.Itoa(r.w))
		b.Set("geometry_height", strconv.Itoa(r.h))
	}
	n := &model.Node{
		Label:     fmt.Sprintf("%s (%s)", class, name),
		Props:     b.Encode(),
		RawSource: fmt.Sprintf("<element class=%q objectName=%q/>", class, name),
	}
	return placed{node: n, r: r}
}

// QuickTree builds a default tree of the given depth and breadth.
func QuickTree(depth, breadth int) *model.Tree {
	return NewDefault().Tree(depth, breadth)
}

// Single returns a tree with one element.
func Single() *model.Tree {
	return NewDefault().Tree(1, 0)
}
