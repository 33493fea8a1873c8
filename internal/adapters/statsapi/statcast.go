package statsapi

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/dingerzone/seatfinder/internal/domain/model"
)

const homeRunEvent = "home_run"

// Statcast CSV columns read by ParseStatcastCSV.
var requiredColumns = []string{"events", "launch_speed", "launch_angle", "hc_x", "hc_y"}

// ParseStatcastCSV reads a Statcast search export and keeps home runs with
// launch speed, launch angle and both hit coordinates present. Rows with an
// empty or unparsable value in one of those columns are skipped.
func ParseStatcastCSV(r io.Reader) ([]model.BattedBallEvent, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.ReuseRecord = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: read header: %v", ErrBadPayload, err)
	}
	col := make(map[string]int, len(header))
	for i, h := range header {
		col[strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))] = i
	}
	for _, name := range requiredColumns {
		if _, ok := col[name]; !ok {
			return nil, fmt.Errorf("%w: missing column %q", ErrBadPayload, name)
		}
	}

	field := func(rec []string, name string) string {
		i, ok := col[name]
		if !ok || i >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[i])
	}

	var out []model.BattedBallEvent
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrBadPayload, err)
		}
		if field(rec, "events") != homeRunEvent {
			continue
		}

		var e model.BattedBallEvent
		var ok bool
		if e.LaunchSpeed, ok = number(field(rec, "launch_speed")); !ok {
			continue
		}
		if e.LaunchAngle, ok = number(field(rec, "launch_angle")); !ok {
			continue
		}
		if e.HcX, ok = number(field(rec, "hc_x")); !ok {
			continue
		}
		if e.HcY, ok = number(field(rec, "hc_y")); !ok {
			continue
		}
		if d, ok := number(field(rec, "hit_distance_sc")); ok {
			e.Distance = &d
		}
		if gp, ab := field(rec, "game_pk"), field(rec, "at_bat_number"); gp != "" && ab != "" {
			e.ID = gp + "-" + ab
		}
		if id, err := strconv.Atoi(field(rec, "batter")); err == nil {
			e.PlayerID = id
		}
		e.PlayerName = field(rec, "player_name")
		if t, err := time.Parse(dateLayout, field(rec, "game_date")); err == nil {
			e.GameDate = t
		}
		out = append(out, e)
	}
	return out, nil
}

// number parses a CSV cell, treating blanks and null markers as missing.
func number(s string) (float64, bool) {
	switch strings.ToLower(s) {
	case "", "null", "na", "nan":
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
