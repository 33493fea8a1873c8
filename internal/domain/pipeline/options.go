package pipeline

import (
	"github.com/dingerzone/seatfinder/internal/domain/density"
	"github.com/dingerzone/seatfinder/internal/domain/seating"
	"github.com/dingerzone/seatfinder/pkg/logger"
)

// Option configures a pipeline run.
type Option func(*options)

type options struct {
	estimator  *density.Estimator
	classifier *seating.Classifier
	limit      int
	workers    int
	log        logger.Logger
}

// WithEstimator overrides the density estimator.
func WithEstimator(e *density.Estimator) Option {
	return func(o *options) {
		if e != nil {
			o.estimator = e
		}
	}
}

// WithClassifier overrides the seating classifier.
func WithClassifier(c *seating.Classifier) Option {
	return func(o *options) {
		if c != nil {
			o.classifier = c
		}
	}
}

// WithCandidateLimit sets how many top-ranked points are checked for a seat.
func WithCandidateLimit(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.limit = n
		}
	}
}

// WithWorkers sets the number of goroutines used for projection.
func WithWorkers(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.workers = n
		}
	}
}

// WithLogger sets the run logger.
func WithLogger(l logger.Logger) Option {
	return func(o *options) { o.log = l }
}
