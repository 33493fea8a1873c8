package api

import (
	"encoding/json"
	"io"
	"mime"
	"net/http"
	"strconv"

	service "github.com/dingerzone/seatfinder/internal/app"
	"github.com/dingerzone/seatfinder/pkg/logger"
)

var predictFields = []string{"team1", "team2", "venue"}

// PredictHandler handles POST /predict.
type PredictHandler struct {
	deps      Dependencies
	validator *Validator
	maxBody   int64
	log       logger.Logger
}

// NewPredictHandler creates a predict handler. log may be nil.
func NewPredictHandler(deps Dependencies, maxBody int64, log logger.Logger) *PredictHandler {
	return &PredictHandler{
		deps:      deps,
		validator: mustPredictValidator(),
		maxBody:   maxBody,
		log:       log,
	}
}

// HandlePredict accepts the form fields team1, team2 and venue, or the same
// keys as a JSON object, and responds with the rendered diagram.
func (h *PredictHandler) HandlePredict(w http.ResponseWriter, r *http.Request) {
	const op = "api.predict"
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBody)

	req, err := h.decode(r)
	if err != nil {
		writeFailure(r.Context(), w, h.log, WrapKind(op, ErrBadRequest, err))
		return
	}

	p, err := h.deps.Predict(r.Context(), req)
	if err != nil {
		writeFailure(r.Context(), w, h.log, Wrap(op, err))
		return
	}

	hdr := w.Header()
	hdr.Set("Content-Type", "image/png")
	hdr.Set("Content-Length", strconv.Itoa(len(p.PNG)))
	hdr.Set("Content-Disposition", `inline; filename="`+p.Name+`"`)
	hdr.Set(HeaderBestSeatX, strconv.FormatFloat(p.Result.X, 'f', 2, 64))
	hdr.Set(HeaderBestSeatY, strconv.FormatFloat(p.Result.Y, 'f', 2, 64))
	hdr.Set(HeaderSource, p.Result.Source())
	hdr.Set(HeaderLocation, p.Location)
	hdr.Set(HeaderPrediction, p.ID)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(p.PNG)
}

func (h *PredictHandler) decode(r *http.Request) (service.Request, error) {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil {
		return service.Request{}, ErrUnsupportedMedia
	}

	switch mediaType {
	case "application/json":
		body, err := io.ReadAll(r.Body)
		if err != nil {
			return service.Request{}, err
		}
		if err := h.validator.ValidateBytes(body); err != nil {
			return service.Request{}, err
		}
		var req service.Request
		if err := json.Unmarshal(body, &req); err != nil {
			return service.Request{}, err
		}
		return req, nil

	case "application/x-www-form-urlencoded", "multipart/form-data":
		if mediaType == "multipart/form-data" {
			err = r.ParseMultipartForm(h.maxBody)
		} else {
			err = r.ParseForm()
		}
		if err != nil {
			return service.Request{}, err
		}
		doc := make(map[string]interface{}, len(predictFields))
		for _, k := range predictFields {
			if _, ok := r.PostForm[k]; ok {
				doc[k] = r.PostForm.Get(k)
			}
		}
		if err := h.validator.Validate(doc); err != nil {
			return service.Request{}, err
		}
		return service.Request{
			Team1: r.PostForm.Get("team1"),
			Team2: r.PostForm.Get("team2"),
			Venue: r.PostForm.Get("venue"),
		}, nil
	}
	return service.Request{}, ErrUnsupportedMedia
}
