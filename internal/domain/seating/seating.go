// Package seating decides whether a field point lands on a seating deck of a
// stadium diagram.
package seating

import (
	"image"
	"image/color"

	"github.com/dingerzone/seatfinder/internal/domain/model"
)

// Zone is an axis-aligned rectangle in field feet, bounds inclusive.
type Zone struct {
	MinX, MaxX, MinY, MaxY float64
}

// Contains reports whether p lies in the zone.
func (z Zone) Contains(p model.FieldPoint) bool {
	return p.X >= z.MinX && p.X <= z.MaxX && p.Y >= z.MinY && p.Y <= z.MaxY
}

// BattersEye is the center-field region that never holds seats.
var BattersEye = Zone{MinX: -30, MaxX: 30, MinY: 390, MaxY: 440}

// Verdict explains a classification.
type Verdict struct {
	Seat    bool
	Reason  string
	Pixel   image.Point
	Color   color.NRGBA
	Sampled bool // false when the point was rejected before a pixel was read
}

// Classifier applies the exclusion zone and then a colour band table.
type Classifier struct {
	zone  Zone
	bands []Band
}

// Option configures a Classifier.
type Option func(*Classifier)

// WithExclusionZone replaces the batter's-eye rectangle.
func WithExclusionZone(z Zone) Option {
	return func(c *Classifier) { c.zone = z }
}

// WithBands replaces the colour table. The first matching band wins.
func WithBands(bands []Band) Option {
	return func(c *Classifier) {
		if len(bands) > 0 {
			c.bands = bands
		}
	}
}

// NewClassifier returns a Classifier using the default zone and bands.
func NewClassifier(opts ...Option) *Classifier {
	c := &Classifier{zone: BattersEye, bands: DefaultBands()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Excluded reports whether p falls in the classifier's exclusion zone.
func (c *Classifier) Excluded(p model.FieldPoint) bool {
	return c.zone.Contains(p)
}

// Classify runs exclusion, pixel mapping and colour matching in that order.
func (c *Classifier) Classify(p model.FieldPoint, img *model.StadiumImage) Verdict {
	if c.Excluded(p) {
		return Verdict{Reason: ReasonExcluded}
	}
	px, ok := ToPixel(p, img.Width(), img.Height())
	if !ok {
		return Verdict{Reason: ReasonOutOfBounds, Pixel: px}
	}
	col := img.At(px.X, px.Y)
	seat, reason := c.classifyColor(col)
	return Verdict{Seat: seat, Reason: reason, Pixel: px, Color: col, Sampled: true}
}

func (c *Classifier) classifyColor(col color.NRGBA) (bool, string) {
	for _, b := range c.bands {
		if b.Match(col) {
			return b.Seat, b.Name
		}
	}
	return false, ReasonUnmatched
}

// InExclusionZone reports whether p is inside the batter's-eye rectangle.
func InExclusionZone(p model.FieldPoint) bool {
	return BattersEye.Contains(p)
}

// ToPixel maps a field point onto a w×h image. Rows grow downward while depth
// grows upward, so y is flipped. Coordinates truncate toward zero.
func ToPixel(p model.FieldPoint, w, h int) (image.Point, bool) {
	fx := (p.X - model.ExtentMinX) / (model.ExtentMaxX - model.ExtentMinX) * float64(w)
	fy := (1 - (p.Y-model.ExtentMinY)/(model.ExtentMaxY-model.ExtentMinY)) * float64(h)
	pt := image.Pt(int(fx), int(fy))
	if pt.X < 0 || pt.X >= w || pt.Y < 0 || pt.Y >= h {
		return pt, false
	}
	return pt, true
}

// ClassifyColor applies the default colour table.
func ClassifyColor(col color.NRGBA) (bool, string) {
	return defaultClassifier.classifyColor(col)
}

var defaultClassifier = NewClassifier()
