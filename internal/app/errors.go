package service

import "errors"

// Sentinel errors returned by Predict.
var (
	ErrSameTeams    = errors.New("teams must be different")
	ErrNotStarted   = errors.New("service not started")
	ErrMissingTeam  = errors.New("team name is required")
	ErrMissingVenue = errors.New("venue is required")
)
