package service

import (
	"time"

	"github.com/dingerzone/seatfinder/internal/adapters/mq/publisher"
	"github.com/dingerzone/seatfinder/internal/adapters/mq/worker"
	"github.com/dingerzone/seatfinder/internal/adapters/storage"
	"github.com/dingerzone/seatfinder/internal/config"
	"github.com/dingerzone/seatfinder/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithConfig sets the configuration used by Start to build collaborators.
func WithConfig(cfg *config.Config) Option {
	return func(s *Service) {
		if cfg != nil {
			s.cfg = cfg
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithRosterSource replaces the Stats API roster client.
func WithRosterSource(r RosterSource) Option {
	return func(s *Service) {
		s.rosters = r
	}
}

// WithEventSource replaces the Statcast client used by the fetch pool.
func WithEventSource(f worker.Fetcher) Option {
	return func(s *Service) {
		s.events = f
	}
}

// WithCatalog replaces the SQLite stadium catalog.
func WithCatalog(c StadiumCatalog) Option {
	return func(s *Service) {
		s.catalog = c
	}
}

// WithImageSource replaces the HTTP diagram fetcher.
func WithImageSource(i ImageSource) Option {
	return func(s *Service) {
		s.images = i
	}
}

// WithSink replaces the artifact sink chosen from config.
func WithSink(sink storage.Sink) Option {
	return func(s *Service) {
		s.sink = sink
	}
}

// WithPublisher replaces the notification publisher chosen from config.
func WithPublisher(p publisher.Publisher) Option {
	return func(s *Service) {
		s.publisher = p
	}
}

// WithClock overrides time.Now, which anchors the look-back window.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}
