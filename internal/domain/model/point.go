package model

// Fixed field extent in feet. X is lateral, centered on home plate; Y is depth.
const (
	ExtentMinX = -200.0
	ExtentMaxX = 200.0
	ExtentMinY = 0.0
	ExtentMaxY = 450.0
)

// FieldPoint is a projected landing spot derived from one event.
type FieldPoint struct {
	EventID    string  `json:"event_id,omitempty"`
	SprayAngle float64 `json:"spray_angle"` // degrees, 0 is dead center, negative toward left field
	Distance   float64 `json:"distance"`    // feet, clamped
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
}

// InExtent reports whether the point lies inside the fixed field extent.
func (p FieldPoint) InExtent() bool {
	return p.X >= ExtentMinX && p.X <= ExtentMaxX && p.Y >= ExtentMinY && p.Y <= ExtentMaxY
}

// BestSeatResult is the outcome of one selection run.
type BestSeatResult struct {
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	Validated bool    `json:"validated"` // false when the densest point was used as a fallback
	Rank      int     `json:"rank"`      // position of the chosen point in the density ranking
	Scanned   int     `json:"scanned"`   // candidates examined
	Skipped   int     `json:"skipped"`   // candidates rejected by the exclusion zone
}

// Source names where the result came from: "seat" or "fallback".
func (r BestSeatResult) Source() string {
	if r.Validated {
		return "seat"
	}
	return "fallback"
}
