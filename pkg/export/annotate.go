package export

import (
	"encoding/base64"
	"fmt"
	"image"
	"image/color"
	"io"
	"math"
	"os"

	"github.com/vanderheijden86/snapview/pkg/geometry"
	"github.com/vanderheijden86/snapview/pkg/metrics"
	"github.com/vanderheijden86/snapview/pkg/model"
	"github.com/vanderheijden86/snapview/pkg/overlay"
	"github.com/vanderheijden86/snapview/pkg/props"
	"github.com/vanderheijden86/snapview/pkg/snapshot"

	"git.sr.ht/~sbinet/gg"
	"github.com/ajstarks/svgo"
	"github.com/mattn/go-runewidth"
	"golang.org/x/image/font/basicfont"
)

// captionHeight is the strip below the screenshot that names the selection.
const captionHeight = 24

// maxCaption is the caption width in cells.
const maxCaption = 60

var (
	colorBackdrop  = color.RGBA{R: 0x1e, G: 0x1e, B: 0x2e, A: 0xff}
	colorHighlight = color.RGBA{R: 0xff, G: 0x45, B: 0x45, A: 0xff}
	colorText      = color.RGBA{R: 0xe6, G: 0xe6, B: 0xe6, A: 0xff}
	colorSubtle    = color.RGBA{R: 0x9a, G: 0x9a, B: 0xa8, A: 0xff}
)

// AnnotateOptions controls annotated screenshot export.
type AnnotateOptions struct {
	Path     string             // Output path; format inferred from extension when Format empty
	Format   string             // "svg" or "png" (case-insensitive)
	Snapshot *snapshot.Snapshot // Source of the screenshot and the tree
	Selected *model.Node        // Node to outline; nil exports the bare screenshot
	Store    *props.Store       // Decoded bags; a fresh store is used when nil
}

// annotation is the resolved drawing: the screenshot at natural size plus at
// most one box in the same coordinates.
type annotation struct {
	Image   image.Image
	PNG     []byte
	Width   int
	Height  int
	Box     overlay.Box
	HasBox  bool
	Caption string
}

// SaveAnnotated draws the screenshot with the selected node outlined.
func SaveAnnotated(opts AnnotateOptions) error {
	defer metrics.Timer(metrics.Export)()

	format, path, err := ResolveFormat(opts.Path, opts.Format)
	if err != nil {
		return err
	}
	a, err := buildAnnotation(opts)
	if err != nil {
		return err
	}
	if err := ensureParent(path); err != nil {
		return err
	}

	switch format {
	case FormatPNG:
		return renderPNG(path, a)
	case FormatSVG:
		return renderSVG(path, a)
	default:
		return fmt.Errorf("%w %q", ErrUnsupportedFormat, format)
	}
}

func buildAnnotation(opts AnnotateOptions) (annotation, error) {
	snap := opts.Snapshot
	if snap == nil {
		return annotation{}, ErrNoSnapshot
	}
	if !snap.HasScreenshot() {
		return annotation{}, ErrNoScreenshot
	}
	img, err := snap.Image()
	if err != nil {
		return annotation{}, err
	}
	store := opts.Store
	if store == nil {
		store = props.NewStore()
	}

	a := annotation{
		Image:   img,
		PNG:     snap.Screenshot,
		Width:   snap.Natural.Width,
		Height:  snap.Natural.Height,
		Caption: snap.Name,
	}
	if opts.Selected == nil {
		return a, nil
	}

	var nodes []*model.Node
	if snap.Tree != nil {
		nodes = snap.Tree.Nodes()
	}
	origin := geometry.NewResolver(store).Origin(nodes)
	// Drawing happens at natural size, so the display is the image itself.
	d := overlay.Display{Width: float64(a.Width), Height: float64(a.Height)}
	o, ok := overlay.NewRenderer(store).Render(opts.Selected, origin, d, snap.Natural)
	a.Caption = opts.Selected.Label
	if ok {
		a.Box, a.HasBox = o.Box, true
		r := o.Rect
		a.Caption = fmt.Sprintf("%s  [%d,%d %dx%d]", opts.Selected.Label, r.X, r.Y, r.Width, r.Height)
	}
	return a, nil
}

func caption(a annotation) string {
	return runewidth.Truncate(a.Caption, maxCaption, "...")
}

func renderPNG(path string, a annotation) error {
	dc := gg.NewContext(a.Width, a.Height+captionHeight)
	dc.SetColor(colorBackdrop)
	dc.Clear()
	dc.DrawImage(a.Image, 0, 0)

	if a.HasBox {
		r, g, b := float64(colorHighlight.R)/255, float64(colorHighlight.G)/255, float64(colorHighlight.B)/255
		dc.SetRGBA(r, g, b, 0.25)
		dc.DrawRectangle(a.Box.X, a.Box.Y, a.Box.Width, a.Box.Height)
		dc.Fill()
		dc.SetColor(colorHighlight)
		dc.SetLineWidth(2)
		dc.DrawRectangle(a.Box.X, a.Box.Y, a.Box.Width, a.Box.Height)
		dc.Stroke()
	}

	dc.SetFontFace(basicfont.Face7x13)
	dc.SetColor(colorText)
	dc.DrawStringAnchored(caption(a), 8, float64(a.Height)+captionHeight/2, 0, 0.5)

	return dc.SavePNG(path)
}

func renderSVG(path string, a annotation) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	return renderSVGToWriter(file, a)
}

func renderSVGToWriter(w io.Writer, a annotation) error {
	height := a.Height + captionHeight
	canvas := svg.New(w)
	canvas.Start(a.Width, height)
	canvas.Rect(0, 0, a.Width, height, fmt.Sprintf("fill:%s", css(colorBackdrop)))
	canvas.Image(0, 0, a.Width, a.Height, "data:image/png;base64,"+base64.StdEncoding.EncodeToString(a.PNG))

	if a.HasBox {
		x, y := int(math.Round(a.Box.X)), int(math.Round(a.Box.Y))
		bw, bh := int(math.Round(a.Box.Width)), int(math.Round(a.Box.Height))
		canvas.Rect(x, y, bw, bh,
			fmt.Sprintf("fill:%s;fill-opacity:0.25;stroke:%s;stroke-width:2", css(colorHighlight), css(colorHighlight)))
	}

	canvas.Text(8, a.Height+captionHeight/2+4, caption(a),
		fmt.Sprintf("fill:%s;font-size:12px;font-family:monospace", css(colorText)))
	canvas.Text(a.Width-8, a.Height+captionHeight/2+4, fmt.Sprintf("%dx%d", a.Width, a.Height),
		fmt.Sprintf("fill:%s;font-size:11px;font-family:monospace;text-anchor:end", css(colorSubtle)))

	canvas.End()
	return nil
}

func css(c color.RGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}
