// Package trajectory turns raw batted-ball measurements into landing points
// on a fixed field coordinate system.
package trajectory

import (
	"fmt"
	"math"

	"github.com/dingerzone/seatfinder/internal/domain/model"
)

// Projection constants.
const (
	// Home plate in hit-coordinate image space.
	plateX = 125.0
	plateY = 198.0

	mphToMetersPerSecond = 0.44704
	gravity              = 9.81
	metersToFeet         = 3.28084

	// MinDistance and MaxDistance bound every landing distance in feet.
	MinDistance = 290.0
	MaxDistance = 470.0
)

// SprayAngle returns the horizontal angle in degrees measured from the line
// through home plate and dead center. Positive angles point toward right field.
func SprayAngle(hcX, hcY float64) float64 {
	return math.Atan2(hcX-plateX, plateY-hcY) * 180 / math.Pi
}

// LandingDistance returns the carry in feet. An observed distance is used when
// present, otherwise a drag-free projectile range is computed from launch
// speed (mph) and launch angle (degrees). The result is always clamped to
// [MinDistance, MaxDistance].
func LandingDistance(speed, angle float64, observed *float64) float64 {
	var d float64
	if observed != nil && !math.IsNaN(*observed) {
		d = *observed
	} else {
		v := speed * mphToMetersPerSecond
		theta := angle * math.Pi / 180
		d = v * v * math.Sin(2*theta) / gravity * metersToFeet
	}
	return clamp(d, MinDistance, MaxDistance)
}

// Project converts a spray angle (degrees) and distance (feet) to field x/y.
func Project(angleDeg, distance float64) (x, y float64) {
	rad := angleDeg * math.Pi / 180
	return distance * math.Sin(rad), distance * math.Cos(rad)
}

// ProjectEvent runs the spray angle, distance and projection steps for one event.
func ProjectEvent(e model.BattedBallEvent) (model.FieldPoint, error) {
	if err := validate(e); err != nil {
		return model.FieldPoint{}, err
	}
	spray := SprayAngle(e.HcX, e.HcY)
	dist := LandingDistance(e.LaunchSpeed, e.LaunchAngle, e.Distance)
	x, y := Project(spray, dist)
	return model.FieldPoint{
		EventID:    e.ID,
		SprayAngle: spray,
		Distance:   dist,
		X:          x,
		Y:          y,
	}, nil
}

// ProjectEvents projects every usable event in input order and reports how
// many were dropped as malformed.
func ProjectEvents(events []model.BattedBallEvent) (points []model.FieldPoint, dropped int) {
	points = make([]model.FieldPoint, 0, len(events))
	for _, e := range events {
		p, err := ProjectEvent(e)
		if err != nil {
			dropped++
			continue
		}
		points = append(points, p)
	}
	return points, dropped
}

// FilterRegion keeps points inside the analysis region, preserving order.
func FilterRegion(points []model.FieldPoint) []model.FieldPoint {
	out := make([]model.FieldPoint, 0, len(points))
	for _, p := range points {
		if p.Y > model.ExtentMaxY {
			continue
		}
		if !p.InExtent() {
			continue
		}
		out = append(out, p)
	}
	return out
}

func validate(e model.BattedBallEvent) error {
	fields := [...]struct {
		name string
		v    float64
	}{
		{"launch_speed", e.LaunchSpeed},
		{"launch_angle", e.LaunchAngle},
		{"hc_x", e.HcX},
		{"hc_y", e.HcY},
	}
	for _, f := range fields {
		if math.IsNaN(f.v) || math.IsInf(f.v, 0) {
			return fmt.Errorf("%w: %s is not finite (event %q)", ErrMalformedEvent, f.name, e.ID)
		}
	}
	if e.LaunchSpeed < 0 {
		return fmt.Errorf("%w: negative launch_speed (event %q)", ErrMalformedEvent, e.ID)
	}
	return nil
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
