// Package model contains domain models passed between layers.
package model

import "time"

// BattedBallEvent is one recorded home run as reported by the roster/event
// source. HcX and HcY are image-space hit coordinates, not field feet.
type BattedBallEvent struct {
	ID          string    `json:"id"`          // game_pk-at_bat_number, used for dedupe
	PlayerID    int       `json:"player_id"`   // MLBAM player id
	PlayerName  string    `json:"player_name"` // display name, may be empty
	LaunchSpeed float64   `json:"launch_speed"`
	LaunchAngle float64   `json:"launch_angle"`
	HcX         float64   `json:"hc_x"`
	HcY         float64   `json:"hc_y"`
	Distance    *float64  `json:"hit_distance,omitempty"` // observed carry in feet, nil when unreported
	GameDate    time.Time `json:"game_date"`
}

// HasObservedDistance reports whether the source supplied a carry distance.
func (e BattedBallEvent) HasObservedDistance() bool {
	return e.Distance != nil
}

// Player is an active roster entry.
type Player struct {
	ID       int    `json:"id"`
	FullName string `json:"full_name"`
	Team     string `json:"team"` // club abbreviation
}

// DateWindow bounds a home-run lookup, both ends inclusive.
type DateWindow struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// LastDays returns the window ending at now and starting days earlier.
func LastDays(now time.Time, days int) DateWindow {
	return DateWindow{Start: now.AddDate(0, 0, -days), End: now}
}
