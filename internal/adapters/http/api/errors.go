package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/dingerzone/seatfinder/internal/adapters/imagefetch"
	"github.com/dingerzone/seatfinder/internal/adapters/stadium"
	"github.com/dingerzone/seatfinder/internal/adapters/statsapi"
	"github.com/dingerzone/seatfinder/internal/adapters/storage"
	service "github.com/dingerzone/seatfinder/internal/app"
	"github.com/dingerzone/seatfinder/internal/domain/density"
	"github.com/dingerzone/seatfinder/internal/domain/selector"
	"github.com/dingerzone/seatfinder/internal/domain/teams"
)

// Sentinel kinds for API errors.
var (
	ErrBadRequest       = errors.New("bad request")
	ErrUnsupportedMedia = errors.New("unsupported media type")
)

// sameTeamsMessage is the client-facing text for identical teams.
const sameTeamsMessage = "Teams must be different"

// Error ties a failure to the handler operation and an API error kind.
type Error struct {
	Op   string
	Kind error
	Err  error
}

func (e *Error) Error() string {
	switch {
	case e.Err == nil:
		return e.Op + ": " + e.Kind.Error()
	case e.Kind == nil:
		return e.Op + ": " + e.Err.Error()
	default:
		return e.Op + ": " + e.Kind.Error() + ": " + e.Err.Error()
	}
}

// Unwrap exposes both the kind and the cause to errors.Is.
func (e *Error) Unwrap() []error {
	var out []error
	if e.Kind != nil {
		out = append(out, e.Kind)
	}
	if e.Err != nil {
		out = append(out, e.Err)
	}
	return out
}

// NewKind returns an error of kind raised by op.
func NewKind(op string, kind error) error {
	return &Error{Op: op, Kind: kind}
}

// WrapKind wraps err as kind for op.
func WrapKind(op string, kind, err error) error {
	return &Error{Op: op, Kind: kind, Err: err}
}

// Wrap attaches op to err without assigning a kind.
func Wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Op: op, Err: err}
}

// classify maps an error to its HTTP status, error code and client message.
func classify(err error) (int, string, string) {
	var tooLarge *http.MaxBytesError
	switch {
	case errors.Is(err, service.ErrSameTeams):
		return http.StatusBadRequest, "same_teams", sameTeamsMessage
	case errors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge, "too_large", err.Error()
	case errors.Is(err, ErrUnsupportedMedia):
		return http.StatusUnsupportedMediaType, "unsupported_media_type", err.Error()
	case errors.Is(err, ErrBadRequest),
		errors.Is(err, service.ErrMissingTeam),
		errors.Is(err, service.ErrMissingVenue),
		errors.Is(err, teams.ErrUnknownTeam),
		errors.Is(err, storage.ErrInvalidName):
		return http.StatusBadRequest, "bad_request", err.Error()
	case errors.Is(err, stadium.ErrUnknownStadium):
		return http.StatusNotFound, "unknown_stadium", err.Error()
	case errors.Is(err, storage.ErrNotFound):
		return http.StatusNotFound, "not_found", err.Error()
	case errors.Is(err, density.ErrTooFewPoints),
		errors.Is(err, density.ErrDegenerate),
		errors.Is(err, selector.ErrEmptyRanking):
		return http.StatusUnprocessableEntity, "insufficient_data", err.Error()
	case errors.Is(err, imagefetch.ErrFetch),
		errors.Is(err, imagefetch.ErrDecode),
		errors.Is(err, statsapi.ErrUpstream),
		errors.Is(err, statsapi.ErrBadPayload):
		return http.StatusBadGateway, "upstream", err.Error()
	case errors.Is(err, service.ErrNotStarted):
		return http.StatusServiceUnavailable, "unavailable", err.Error()
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "timeout", err.Error()
	default:
		return http.StatusInternalServerError, "internal", http.StatusText(http.StatusInternalServerError)
	}
}
