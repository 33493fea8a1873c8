package seating

import "image/color"

// Reasons reported in a Verdict.
const (
	ReasonExcluded    = "excluded"
	ReasonOutOfBounds = "out_of_bounds"
	ReasonTurf        = "turf"
	ReasonWalkway     = "walkway"
	ReasonYellow      = "yellow"
	ReasonOrange      = "orange"
	ReasonPink        = "pink"
	ReasonUnmatched   = "unmatched"
)

// Range is an inclusive 8-bit channel interval.
type Range struct{ Lo, Hi uint8 }

func (r Range) has(v uint8) bool { return v >= r.Lo && v <= r.Hi }

// Band is a box in RGB space with an optional near-gray constraint.
type Band struct {
	Name    string
	Seat    bool
	R, G, B Range
	// MaxSpread, when non-zero, additionally requires |R-G| and |G-B| to be
	// strictly below it.
	MaxSpread int
}

// Match reports whether c falls inside the band. Alpha is ignored.
func (b Band) Match(c color.NRGBA) bool {
	if !b.R.has(c.R) || !b.G.has(c.G) || !b.B.has(c.B) {
		return false
	}
	if b.MaxSpread > 0 {
		if absDiff(c.R, c.G) >= b.MaxSpread || absDiff(c.G, c.B) >= b.MaxSpread {
			return false
		}
	}
	return true
}

// DefaultBands is the priority-ordered colour table. Negative bands come first.
func DefaultBands() []Band {
	return []Band{
		{Name: ReasonTurf, R: Range{60, 140}, G: Range{140, 200}, B: Range{60, 140}},
		{Name: ReasonWalkway, R: Range{100, 180}, G: Range{0, 255}, B: Range{0, 255}, MaxSpread: 10},
		{Name: ReasonYellow, Seat: true, R: Range{210, 255}, G: Range{180, 230}, B: Range{50, 120}},
		{Name: ReasonOrange, Seat: true, R: Range{200, 255}, G: Range{120, 180}, B: Range{0, 80}},
		{Name: ReasonPink, Seat: true, R: Range{220, 255}, G: Range{130, 180}, B: Range{130, 200}},
	}
}

func absDiff(a, b uint8) int {
	d := int(a) - int(b)
	if d < 0 {
		return -d
	}
	return d
}
