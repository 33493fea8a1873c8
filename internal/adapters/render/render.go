// Package render composites the chosen seat onto the stadium diagram and
// encodes the result as PNG.
package render

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/dingerzone/seatfinder/internal/domain/model"
)

// Renderer defaults.
const (
	defaultMarkerRadius = 10
	defaultMinWidth     = 1000
	titleBand           = 28
	legendPad           = 6
)

// ErrNoImage is returned when there is nothing to draw on.
var ErrNoImage = errors.New("render: nil stadium image")

var (
	markerBlue = color.NRGBA{R: 31, G: 119, B: 180, A: 255}
	ink        = color.NRGBA{A: 255}
	paper      = color.NRGBA{R: 255, G: 255, B: 255, A: 255}
	legendBg   = color.NRGBA{R: 255, G: 255, B: 255, A: 220}
)

// Renderer draws best-seat artifacts.
type Renderer struct {
	markerRadius int
	minWidth     int
	marker       color.NRGBA
	face         font.Face
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithMarkerRadius sets the marker radius in output pixels.
func WithMarkerRadius(r int) Option {
	return func(rd *Renderer) {
		if r > 0 {
			rd.markerRadius = r
		}
	}
}

// WithMinWidth sets the width below which the diagram is upscaled.
func WithMinWidth(w int) Option {
	return func(rd *Renderer) {
		if w > 0 {
			rd.minWidth = w
		}
	}
}

// WithMarkerColor sets the marker fill.
func WithMarkerColor(c color.NRGBA) Option {
	return func(rd *Renderer) { rd.marker = c }
}

// New returns a Renderer with defaults.
func New(opts ...Option) *Renderer {
	r := &Renderer{
		markerRadius: defaultMarkerRadius,
		minWidth:     defaultMinWidth,
		marker:       markerBlue,
		face:         basicfont.Face7x13,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Title formats the heading for a stadium.
func Title(stadium string) string {
	return "Best Seat Zone at " + stadium
}

// Legend returns the marker label for a result.
func Legend(res model.BestSeatResult) string {
	if res.Validated {
		return "Best Seat Zone"
	}
	return "Best Seat Zone (best effort)"
}

// Render draws res onto img under title and returns PNG bytes.
func (r *Renderer) Render(img *model.StadiumImage, res model.BestSeatResult, title string) ([]byte, error) {
	if img == nil || img.Width() == 0 || img.Height() == 0 {
		return nil, ErrNoImage
	}
	canvas := r.Compose(img, res, title)

	var buf bytes.Buffer
	if err := png.Encode(&buf, canvas); err != nil {
		return nil, fmt.Errorf("render: encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// Compose builds the output raster without encoding it.
func (r *Renderer) Compose(img *model.StadiumImage, res model.BestSeatResult, title string) *image.NRGBA {
	scale := 1.0
	if img.Width() < r.minWidth {
		scale = float64(r.minWidth) / float64(img.Width())
	}
	w := int(math.Round(float64(img.Width()) * scale))
	h := int(math.Round(float64(img.Height()) * scale))

	canvas := image.NewNRGBA(image.Rect(0, 0, w, h+titleBand))
	draw.Draw(canvas, canvas.Bounds(), image.NewUniform(paper), image.Point{}, draw.Src)

	field := image.Rect(0, titleBand, w, titleBand+h)
	draw.CatmullRom.Scale(canvas, field, img.Image(), img.Image().Bounds(), draw.Over, nil)

	r.text(canvas, title, (w-r.measure(title))/2, titleBand-9)

	cx, cy := fieldToCanvas(res.X, res.Y, field)
	fillCircle(canvas, cx, cy, r.markerRadius, ink)
	fillCircle(canvas, cx, cy, r.markerRadius-1, r.marker)

	r.legend(canvas, field, Legend(res))
	return canvas
}

// fieldToCanvas maps field feet into the drawn diagram rectangle.
func fieldToCanvas(x, y float64, field image.Rectangle) (int, int) {
	fx := (x - model.ExtentMinX) / (model.ExtentMaxX - model.ExtentMinX)
	fy := 1 - (y-model.ExtentMinY)/(model.ExtentMaxY-model.ExtentMinY)
	return field.Min.X + int(fx*float64(field.Dx())), field.Min.Y + int(fy*float64(field.Dy()))
}

func (r *Renderer) legend(dst *image.NRGBA, field image.Rectangle, label string) {
	lineH := r.face.Metrics().Height.Ceil()
	sw := 2 * r.markerRadius
	if sw < lineH {
		sw = lineH
	}
	boxW := legendPad*3 + sw + r.measure(label)
	boxH := legendPad*2 + sw
	box := image.Rect(field.Max.X-boxW-legendPad, field.Min.Y+legendPad, field.Max.X-legendPad, field.Min.Y+legendPad+boxH)
	draw.Draw(dst, box, image.NewUniform(legendBg), image.Point{}, draw.Over)

	cx := box.Min.X + legendPad + sw/2
	cy := box.Min.Y + legendPad + sw/2
	radius := sw / 2
	fillCircle(dst, cx, cy, radius, ink)
	fillCircle(dst, cx, cy, radius-1, r.marker)
	r.text(dst, label, box.Min.X+legendPad*2+sw, cy+r.face.Metrics().Ascent.Ceil()/2)
}

func (r *Renderer) text(dst draw.Image, s string, x, baseline int) {
	d := font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(ink),
		Face: r.face,
		Dot:  fixed.P(x, baseline),
	}
	d.DrawString(s)
}

func (r *Renderer) measure(s string) int {
	return font.MeasureString(r.face, s).Ceil()
}

func fillCircle(dst *image.NRGBA, cx, cy, radius int, c color.NRGBA) {
	if radius <= 0 {
		return
	}
	r2 := radius * radius
	b := dst.Bounds()
	for y := cy - radius; y <= cy+radius; y++ {
		for x := cx - radius; x <= cx+radius; x++ {
			dx, dy := x-cx, y-cy
			if dx*dx+dy*dy > r2 || !(image.Point{X: x, Y: y}).In(b) {
				continue
			}
			dst.SetNRGBA(x, y, c)
		}
	}
}
