// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/gorilla/mux"

	service "github.com/dingerzone/seatfinder/internal/app"
	"github.com/dingerzone/seatfinder/pkg/logger"
)

// Response headers carrying the prediction alongside the PNG body.
const (
	HeaderBestSeatX  = "X-Best-Seat-X"
	HeaderBestSeatY  = "X-Best-Seat-Y"
	HeaderSource     = "X-Best-Seat-Source"
	HeaderLocation   = "X-Artifact-Location"
	HeaderPrediction = "X-Prediction-Id"

	exposedHeaders = HeaderBestSeatX + ", " + HeaderBestSeatY + ", " + HeaderSource + ", " + HeaderLocation + ", " + HeaderPrediction
)

const defaultMaxBodyBytes = 1 << 20

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	Predict(ctx context.Context, req service.Request) (*service.Prediction, error)
	Artifact(ctx context.Context, name string) (io.ReadCloser, error)
	Stadiums(ctx context.Context) ([]string, error)
	Teams() []string
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler   *HealthHandler
	statsHandler    *StatsHandler
	predictHandler  *PredictHandler
	catalogHandler  *CatalogHandler
	artifactHandler *ArtifactHandler
}

// Option configures a Server.
type Option func(*serverConfig)

type serverConfig struct {
	maxBodyBytes int64
	log          logger.Logger
}

// WithMaxBodyBytes caps POST /predict request bodies.
func WithMaxBodyBytes(n int64) Option {
	return func(c *serverConfig) {
		if n > 0 {
			c.maxBodyBytes = n
		}
	}
}

// WithLogger sets the logger used for server-side failures.
func WithLogger(l logger.Logger) Option {
	return func(c *serverConfig) {
		if l != nil {
			c.log = l
		}
	}
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, opts ...Option) *Server {
	cfg := serverConfig{maxBodyBytes: defaultMaxBodyBytes}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Server{
		healthHandler:   NewHealthHandler(),
		statsHandler:    NewStatsHandler(statsProvider),
		predictHandler:  NewPredictHandler(deps, cfg.maxBodyBytes, cfg.log),
		catalogHandler:  NewCatalogHandler(deps),
		artifactHandler: NewArtifactHandler(deps),
	}
}

// Register attaches all HTTP routes to r.
func (s *Server) Register(_ context.Context, r *mux.Router) {
	r.Use(corsMiddleware)

	r.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz")).Methods(http.MethodGet)
	r.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats")).Methods(http.MethodGet)
	r.HandleFunc("/predict", MetricsMiddleware(s.predictHandler.HandlePredict, "predict")).Methods(http.MethodPost, http.MethodOptions)
	r.HandleFunc("/images/{name}", MetricsMiddleware(s.artifactHandler.HandleGetArtifact, "images")).Methods(http.MethodGet)
	r.HandleFunc("/stadiums", MetricsMiddleware(s.catalogHandler.HandleStadiums, "stadiums")).Methods(http.MethodGet)
	r.HandleFunc("/teams", MetricsMiddleware(s.catalogHandler.HandleTeams, "teams")).Methods(http.MethodGet)
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// writeFailure classifies err and writes the matching error body.
func writeFailure(ctx context.Context, w http.ResponseWriter, log logger.Logger, err error) {
	status, code, msg := classify(err)
	if status >= statusInternalError && log != nil {
		log.Error(ctx, "request failed", logger.Int("status", status), logger.Error(err))
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}
