package stadium

import "errors"

// Sentinel errors for the stadium catalog.
var (
	ErrUnknownStadium = errors.New("unknown stadium")
	ErrBadCSV         = errors.New("invalid stadium csv")
)
