package trajectory

import "errors"

// ErrMalformedEvent marks an event missing a usable launch speed, launch
// angle or hit coordinate.
var ErrMalformedEvent = errors.New("malformed batted-ball event")
