// Package service wires the prediction pipeline to its data sources and
// output sinks. It implements the dependencies required by the HTTP API and
// the command-line tools.
package service

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/dingerzone/seatfinder/internal/adapters/httpx"
	"github.com/dingerzone/seatfinder/internal/adapters/imagefetch"
	"github.com/dingerzone/seatfinder/internal/adapters/mq/publisher"
	eventqueue "github.com/dingerzone/seatfinder/internal/adapters/mq/queue"
	workerpool "github.com/dingerzone/seatfinder/internal/adapters/mq/worker"
	"github.com/dingerzone/seatfinder/internal/adapters/render"
	"github.com/dingerzone/seatfinder/internal/adapters/stadium"
	"github.com/dingerzone/seatfinder/internal/adapters/statsapi"
	"github.com/dingerzone/seatfinder/internal/adapters/storage"
	"github.com/dingerzone/seatfinder/internal/config"
	"github.com/dingerzone/seatfinder/internal/domain/dedupe"
	"github.com/dingerzone/seatfinder/internal/domain/density"
	"github.com/dingerzone/seatfinder/internal/domain/model"
	"github.com/dingerzone/seatfinder/internal/domain/pipeline"
	"github.com/dingerzone/seatfinder/internal/domain/teams"
	"github.com/dingerzone/seatfinder/pkg/logger"
	"github.com/dingerzone/seatfinder/pkg/metrics"
)

// fetchQueueCapacity comfortably exceeds two active rosters per concurrent request.
const fetchQueueCapacity = 1024

// RosterSource lists a club's active players.
type RosterSource interface {
	Roster(ctx context.Context, abbr string) ([]model.Player, error)
}

// StadiumCatalog maps stadium names to diagram URLs.
type StadiumCatalog interface {
	Resolve(ctx context.Context, name string) (string, error)
	List(ctx context.Context) ([]stadium.Stadium, error)
}

// ImageSource loads stadium diagrams.
type ImageSource interface {
	Fetch(ctx context.Context, name, url string) (*model.StadiumImage, error)
}

// Request names the two clubs and the venue of a prediction.
type Request struct {
	Team1 string `json:"team1"`
	Team2 string `json:"team2"`
	Venue string `json:"venue"`

	// ArtifactName overrides the generated "<uuid>.png" artifact name.
	ArtifactName string `json:"-"`
}

// Prediction is the result of one Predict call.
type Prediction struct {
	ID        string
	Teams     [2]string // abbreviations
	Venue     string
	Result    model.BestSeatResult
	Events    int // unique home runs fed to the pipeline
	Points    int // points inside the analysis region
	Failed    int // players whose fetch failed
	PNG       []byte
	Name      string
	Location  string
	CreatedAt time.Time
}

// Service implements the API dependencies for the seat finder.
type Service struct {
	mu sync.RWMutex

	cfg *config.Config

	// Collaborators; nil ones are built from cfg in Start.
	rosters   RosterSource
	events    workerpool.Fetcher
	catalog   StadiumCatalog
	images    ImageSource
	sink      storage.Sink
	publisher publisher.Publisher

	queue     *eventqueue.InMemoryQueue
	pool      *workerpool.Pool
	estimator *density.Estimator
	renderer  *render.Renderer

	// Resources opened by Start and released by Stop.
	closers []io.Closer
	cancel  context.CancelFunc

	predictions atomic.Int64
	fallbacks   atomic.Int64
	failures    atomic.Int64

	started bool
	now     func() time.Time

	logger logger.Logger
}

// New constructs a Service. Collaborators not supplied through options are
// created by Start from the configuration.
func New(opts ...Option) *Service {
	s := &Service{now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start initializes and starts the service components.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}
	if s.cfg == nil {
		s.cfg = config.New(ctx)
	}
	cfg := s.cfg

	s.logger.Info(ctx, "starting seat finder service...")

	rule, err := density.ParseRule(cfg.BandwidthRule)
	if err != nil {
		return err
	}
	s.estimator = density.NewEstimator(density.WithRule(rule))
	s.renderer = render.New(
		render.WithMarkerRadius(cfg.MarkerRadius),
		render.WithMinWidth(cfg.MinOutputWidth),
	)

	if err := s.buildCollaborators(ctx); err != nil {
		s.closeAll(ctx)
		return err
	}

	s.queue = eventqueue.NewInMemoryQueue(eventqueue.WithCapacity(fetchQueueCapacity))
	s.pool = workerpool.NewPool(cfg.FetchWorkers, s.queue, s.events,
		workerpool.WithDelay(cfg.FetchDelay()),
	)
	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	s.cancel = cancel
	s.pool.Start(runCtx)

	s.started = true
	s.logger.Info(ctx, "seat finder service started",
		logger.Int("workers", s.pool.Size()),
		logger.String("bandwidth_rule", string(rule)),
		logger.String("storage", s.sink.Backend()),
		logger.Int("candidate_limit", cfg.CandidateLimit),
	)
	return nil
}

func (s *Service) buildCollaborators(ctx context.Context) error {
	cfg := s.cfg
	hc := httpx.New(s.logger,
		httpx.WithTimeout(cfg.HTTPTimeout()),
		httpx.WithRetryMax(cfg.HTTPRetryMax),
	)

	if s.rosters == nil || s.events == nil {
		client := statsapi.NewClient(hc,
			statsapi.WithStatsURL(cfg.StatsAPIURL),
			statsapi.WithSavantURL(cfg.SavantURL),
		)
		if s.rosters == nil {
			s.rosters = client
		}
		if s.events == nil {
			s.events = client
		}
	}

	if s.catalog == nil {
		cat, err := stadium.Open(ctx, cfg.CatalogDB)
		if err != nil {
			return err
		}
		s.closers = append(s.closers, cat)
		s.catalog = cat
		if cfg.CatalogCSV != "" {
			if err := importCatalog(ctx, cat, cfg.CatalogCSV); err != nil {
				return err
			}
		}
	}

	if s.images == nil {
		f, err := imagefetch.New(hc, imagefetch.WithCacheSize(cfg.ImageCacheSize))
		if err != nil {
			return err
		}
		s.images = f
	}

	if s.sink == nil {
		sink, err := NewSink(cfg)
		if err != nil {
			return err
		}
		s.sink = sink
	}

	if s.publisher == nil {
		s.publisher = publisher.New(cfg.Brokers(), cfg.KafkaTopic)
		s.closers = append(s.closers, s.publisher)
	}
	return nil
}

// NewSink builds the artifact sink selected by cfg.StorageBackend.
func NewSink(cfg *config.Config) (storage.Sink, error) {
	switch cfg.StorageBackend {
	case config.StorageMinio:
		sink, err := storage.NewMinioSink(storage.MinioConfig{
			Endpoint:  cfg.MinioEndpoint,
			AccessKey: cfg.MinioAccessKey,
			SecretKey: cfg.MinioSecretKey,
			Bucket:    cfg.MinioBucket,
			UseSSL:    cfg.MinioUseSSL,
		})
		if err != nil {
			return nil, err
		}
		return sink, nil
	case config.StorageFile, "":
		return storage.NewFileSink(cfg.OutputDir), nil
	default:
		return nil, fmt.Errorf("%w: unknown storage backend %q", config.ErrInvalidConfig, cfg.StorageBackend)
	}
}

func importCatalog(ctx context.Context, cat *stadium.Catalog, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open stadium csv: %w", err)
	}
	defer f.Close()
	_, err = cat.ImportCSV(ctx, f)
	return err
}

// Stop gracefully shuts down the service.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	ctx := context.Background()
	s.logger.Info(ctx, "stopping seat finder service...")

	if s.pool != nil {
		if err := s.pool.Shutdown(ctx); err != nil {
			s.logger.Warn(ctx, "worker pool shutdown", logger.Error(err))
		}
	}
	if s.cancel != nil {
		s.cancel()
	}
	s.closeAll(ctx)

	s.started = false
	s.logger.Info(ctx, "seat finder service stopped")
}

func (s *Service) closeAll(ctx context.Context) {
	for _, c := range s.closers {
		if err := c.Close(); err != nil {
			s.logger.Warn(ctx, "close resource", logger.Error(err))
		}
	}
	s.closers = nil
}

// Predict runs one best-seat prediction and stores the rendered diagram.
func (s *Service) Predict(ctx context.Context, req Request) (*Prediction, error) {
	start := time.Now()
	p, err := s.predict(ctx, req)
	metrics.RecordPredictionLatency(float64(time.Since(start).Milliseconds()))

	switch {
	case err != nil:
		s.failures.Add(1)
		metrics.RecordPrediction(metrics.OutcomeError)
		if s.logger != nil {
			s.logger.Warn(ctx, "prediction failed",
				logger.String("team1", req.Team1), logger.String("team2", req.Team2),
				logger.String("venue", req.Venue), logger.Error(err))
		}
	case p.Result.Validated:
		s.predictions.Add(1)
		metrics.RecordPrediction(metrics.OutcomeValidated)
	default:
		s.predictions.Add(1)
		s.fallbacks.Add(1)
		metrics.RecordPrediction(metrics.OutcomeFallback)
	}
	return p, err
}

func (s *Service) predict(ctx context.Context, req Request) (*Prediction, error) {
	s.mu.RLock()
	started := s.started
	s.mu.RUnlock()
	if !started {
		return nil, ErrNotStarted
	}

	team1, team2 := strings.TrimSpace(req.Team1), strings.TrimSpace(req.Team2)
	venue := strings.TrimSpace(req.Venue)
	if team1 == "" || team2 == "" {
		return nil, ErrMissingTeam
	}
	if venue == "" {
		return nil, ErrMissingVenue
	}
	if strings.EqualFold(team1, team2) {
		return nil, ErrSameTeams
	}

	abbr1, err := teams.Abbreviation(team1)
	if err != nil {
		return nil, err
	}
	abbr2, err := teams.Abbreviation(team2)
	if err != nil {
		return nil, err
	}

	var players []model.Player
	for _, abbr := range []string{abbr1, abbr2} {
		roster, err := s.rosters.Roster(ctx, abbr)
		if err != nil {
			return nil, fmt.Errorf("roster %s: %w", abbr, err)
		}
		players = append(players, roster...)
	}

	window := model.LastDays(s.now(), s.cfg.LookbackDays)
	events, stats, err := s.pool.FetchAll(ctx, players, window)
	if err != nil {
		return nil, fmt.Errorf("fetch home runs: %w", err)
	}
	if stats.Failed > 0 {
		s.logger.Warn(ctx, "some player fetches failed",
			logger.Int("failed", stats.Failed), logger.Int("players", stats.Players))
	}

	// Each request dedupes on its own; events legitimately repeat across requests.
	seen := dedupe.NewInMemoryDeduper()
	unique, dups := dedupe.Unique(ctx, seen, events)
	metrics.RecordEventsDropped("duplicate", dups)

	imgURL, err := s.catalog.Resolve(ctx, venue)
	if err != nil {
		return nil, err
	}
	img, err := s.images.Fetch(ctx, venue, imgURL)
	if err != nil {
		return nil, err
	}

	out, err := pipeline.Run(ctx, unique, img,
		pipeline.WithEstimator(s.estimator),
		pipeline.WithCandidateLimit(s.cfg.CandidateLimit),
		pipeline.WithLogger(s.logger),
	)
	if err != nil {
		return nil, err
	}

	png, err := s.renderer.Render(img, out.Result, render.Title(venue))
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}

	id := uuid.NewString()
	name := req.ArtifactName
	if name == "" {
		name = id + ".png"
	}
	location, err := s.sink.Store(ctx, name, png)
	if err != nil {
		return nil, fmt.Errorf("store artifact: %w", err)
	}
	metrics.RecordArtifactStored(s.sink.Backend())

	p := &Prediction{
		ID:        id,
		Teams:     [2]string{abbr1, abbr2},
		Venue:     venue,
		Result:    out.Result,
		Events:    len(unique),
		Points:    len(out.Points),
		Failed:    stats.Failed,
		PNG:       png,
		Name:      name,
		Location:  location,
		CreatedAt: s.now().UTC(),
	}
	s.publish(ctx, p)
	return p, nil
}

// publish announces p. Failures are logged and counted but never fail the
// prediction.
func (s *Service) publish(ctx context.Context, p *Prediction) {
	err := s.publisher.PublishPrediction(ctx, publisher.PredictionEvent{
		ID:        p.ID,
		Team1:     p.Teams[0],
		Team2:     p.Teams[1],
		Stadium:   p.Venue,
		X:         p.Result.X,
		Y:         p.Result.Y,
		Source:    p.Result.Source(),
		Points:    p.Points,
		Location:  p.Location,
		CreatedAt: p.CreatedAt,
	})
	if err != nil {
		metrics.RecordPublishError()
		s.logger.Warn(ctx, "prediction notification failed",
			logger.String("id", p.ID), logger.Error(err))
	}
}

// Artifact opens a stored diagram by name.
func (s *Service) Artifact(ctx context.Context, name string) (io.ReadCloser, error) {
	clean, err := storage.CleanName(name)
	if err != nil {
		return nil, err
	}
	s.mu.RLock()
	sink := s.sink
	s.mu.RUnlock()
	if sink == nil {
		return nil, ErrNotStarted
	}
	return sink.Open(ctx, clean)
}

// Stadiums returns the names of catalogued stadiums that have a diagram.
func (s *Service) Stadiums(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	cat := s.catalog
	s.mu.RUnlock()
	if cat == nil {
		return nil, ErrNotStarted
	}
	list, err := cat.List(ctx)
	if err != nil {
		return nil, err
	}
	names := make([]string, len(list))
	for i, st := range list {
		names[i] = st.Name
	}
	return names, nil
}

// Teams returns the full names of all clubs, sorted.
func (s *Service) Teams() []string {
	return teams.Names()
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]interface{}{
		"started":     s.started,
		"predictions": s.predictions.Load(),
		"fallbacks":   s.fallbacks.Load(),
		"failures":    s.failures.Load(),
	}
	if s.cfg != nil {
		stats["lookbackDays"] = s.cfg.LookbackDays
		stats["candidateLimit"] = s.cfg.CandidateLimit
	}
	if s.started {
		stats["workerCount"] = s.pool.Size()
		stats["queueLength"] = s.queue.Len()
		stats["storage"] = s.sink.Backend()
		if f, ok := s.images.(*imagefetch.Fetcher); ok {
			stats["cachedImages"] = f.Len()
		}
		metrics.UpdateFetchQueueDepth(s.queue.Len())
	}
	return stats
}
