package ui

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"strings"

	"github.com/vanderheijden86/snapview/pkg/overlay"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/image/draw"
)

// halfBlock draws two vertically stacked pixels in one cell: the glyph's
// foreground is the top pixel, the cell background the bottom one.
const halfBlock = "▀"

var (
	overlayEdge = color.RGBA{R: 0xff, G: 0x55, B: 0x55, A: 0xff}
	emptyPixel  = color.RGBA{R: 0x28, G: 0x2a, B: 0x36, A: 0xff}
)

// screenshotPane renders the screenshot at one cell per 1x2 display pixels.
// Display space is therefore width cells by 2*height pixels.
type screenshotPane struct {
	src   image.Image
	color bool

	width, height int

	// cache is shared by model copies so View can fill it.
	cache *scaleCache
}

type scaleCache struct {
	img  *image.RGBA
	w, h int
}

func newScreenshotPane() screenshotPane {
	return screenshotPane{color: HalfBlocks(), cache: &scaleCache{}}
}

func (p *screenshotPane) setImage(img image.Image) {
	p.src = img
	p.cache = &scaleCache{}
}

func (p *screenshotPane) setSize(w, h int) {
	p.width, p.height = w, h
}

// viewport is the area offered to the session for fitting the screenshot.
func (p *screenshotPane) viewport() overlay.Display {
	return overlay.Display{Width: float64(p.width), Height: float64(p.height * 2)}
}

// clickPoint converts a cell inside the pane into display coordinates,
// aiming at the cell's center.
func clickPoint(col, row int) (x, y float64) {
	return float64(col) + 0.5, float64(row)*2 + 1
}

// scaled returns the screenshot resampled to the displayed size.
func (p *screenshotPane) scaled(d overlay.Display) *image.RGBA {
	if p.src == nil {
		return nil
	}
	w, h := int(math.Round(d.Width)), int(math.Round(d.Height))
	if w < 1 || h < 1 {
		return nil
	}
	if p.cache == nil {
		p.cache = &scaleCache{}
	}
	if c := p.cache; c.img != nil && c.w == w && c.h == h {
		return c.img
	}
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), p.src, p.src.Bounds(), draw.Src, nil)
	*p.cache = scaleCache{img: dst, w: w, h: h}
	return dst
}

// pixel returns the display pixel at (x, y) with the overlay applied.
func pixel(img *image.RGBA, x, y int, box *overlay.Box) color.RGBA {
	c := emptyPixel
	if image.Pt(x, y).In(img.Bounds()) {
		c = img.RGBAAt(x, y)
	}
	if box == nil {
		return c
	}
	cx, cy := float64(x)+0.5, float64(y)+0.5
	if cx < box.X || cx > box.X+box.Width || cy < box.Y || cy > box.Y+box.Height {
		return c
	}
	if cx-box.X < 1 || box.X+box.Width-cx < 1 || cy-box.Y < 1 || box.Y+box.Height-cy < 1 {
		return overlayEdge
	}
	return blend(c, overlayEdge, 0.3)
}

func blend(a, b color.RGBA, t float64) color.RGBA {
	mix := func(x, y uint8) uint8 {
		return uint8(math.Round(float64(x)*(1-t) + float64(y)*t))
	}
	return color.RGBA{R: mix(a.R, b.R), G: mix(a.G, b.G), B: mix(a.B, b.B), A: 0xff}
}

func hex(c color.RGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// view draws the screenshot cropped to the pane, with box outlined.
func (p screenshotPane) view(theme Theme, d overlay.Display, natural overlay.Size, box *overlay.Box) string {
	if p.src == nil {
		return theme.MutedText.Render("No screenshot in this snapshot")
	}
	if !p.color {
		return theme.MutedText.Render(fmt.Sprintf("Screenshot %dx%d (needs a 256-color terminal)", natural.Width, natural.Height))
	}
	img := p.scaled(d)
	if img == nil {
		return ""
	}

	cols := img.Bounds().Dx()
	if cols > p.width {
		cols = p.width
	}
	rows := (img.Bounds().Dy() + 1) / 2
	if rows > p.height {
		rows = p.height
	}

	var b strings.Builder
	for r := 0; r < rows; r++ {
		var run strings.Builder
		var runTop, runBottom color.RGBA
		flush := func() {
			if run.Len() == 0 {
				return
			}
			style := theme.Renderer.NewStyle().
				Foreground(lipgloss.Color(hex(runTop))).
				Background(lipgloss.Color(hex(runBottom)))
			b.WriteString(style.Render(run.String()))
			run.Reset()
		}
		for c := 0; c < cols; c++ {
			top := pixel(img, c, 2*r, box)
			bottom := pixel(img, c, 2*r+1, box)
			if run.Len() > 0 && (top != runTop || bottom != runBottom) {
				flush()
			}
			runTop, runBottom = top, bottom
			run.WriteString(halfBlock)
		}
		flush()
		if r < rows-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}
