package statsapi

import "errors"

// Sentinel errors for the roster and Statcast source.
var (
	ErrUpstream    = errors.New("upstream request failed")
	ErrUnknownTeam = errors.New("invalid team abbreviation")
	ErrBadPayload  = errors.New("unexpected upstream payload")
)
