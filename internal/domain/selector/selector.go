// Package selector picks the best seat from a density ranking.
package selector

import (
	"context"
	"errors"
	"fmt"

	"github.com/dingerzone/seatfinder/internal/domain/density"
	"github.com/dingerzone/seatfinder/internal/domain/model"
	"github.com/dingerzone/seatfinder/internal/domain/seating"
	"github.com/dingerzone/seatfinder/pkg/logger"
)

// DefaultLimit is how many top-ranked candidates are checked against the image.
const DefaultLimit = 100

// ErrEmptyRanking is returned when there is nothing to select from.
var ErrEmptyRanking = errors.New("density ranking is empty")

type config struct {
	limit      int
	classifier *seating.Classifier
	log        logger.Logger
}

// Option configures Select.
type Option func(*config)

// WithLimit overrides the candidate cutoff. Non-positive values are ignored.
func WithLimit(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.limit = n
		}
	}
}

// WithClassifier overrides the seating classifier.
func WithClassifier(cl *seating.Classifier) Option {
	return func(c *config) {
		if cl != nil {
			c.classifier = cl
		}
	}
}

// WithLogger sets the logger used for per-candidate diagnostics.
func WithLogger(l logger.Logger) Option {
	return func(c *config) { c.log = l }
}

// Select scans the top candidates in rank order and returns the first one
// that lands on a seat. Candidates in the exclusion zone are skipped. When no
// candidate qualifies the densest point is returned with Validated unset.
func Select(ctx context.Context, ranking density.Ranking, img *model.StadiumImage, opts ...Option) (model.BestSeatResult, error) {
	densest, ok := ranking.Densest()
	if !ok {
		return model.BestSeatResult{}, ErrEmptyRanking
	}
	if img == nil {
		return model.BestSeatResult{}, fmt.Errorf("select: nil stadium image")
	}

	cfg := config{limit: DefaultLimit, classifier: seating.NewClassifier()}
	for _, opt := range opts {
		opt(&cfg)
	}

	res := model.BestSeatResult{}
	for _, cand := range ranking.Top(cfg.limit) {
		if err := ctx.Err(); err != nil {
			return model.BestSeatResult{}, err
		}
		res.Scanned++
		if cfg.classifier.Excluded(cand.Point) {
			res.Skipped++
			continue
		}
		v := cfg.classifier.Classify(cand.Point, img)
		if v.Seat {
			if cfg.log != nil {
				cfg.log.Debug(ctx, "seat pixel found",
					logger.Int("rank", cand.Rank),
					logger.Int("px", v.Pixel.X), logger.Int("py", v.Pixel.Y),
					logger.String("band", v.Reason))
			}
			res.X, res.Y = cand.Point.X, cand.Point.Y
			res.Rank = cand.Rank
			res.Validated = true
			return res, nil
		}
		if cfg.log != nil {
			cfg.log.Debug(ctx, "skipped non-seat candidate",
				logger.Int("rank", cand.Rank),
				logger.String("reason", v.Reason),
				logger.Int("px", v.Pixel.X), logger.Int("py", v.Pixel.Y),
				logger.Int("r", int(v.Color.R)), logger.Int("g", int(v.Color.G)), logger.Int("b", int(v.Color.B)))
		}
	}

	if cfg.log != nil {
		cfg.log.Warn(ctx, "no seat-coloured pixel among top candidates, using densest point",
			logger.Int("scanned", res.Scanned),
			logger.Int("skipped", res.Skipped),
			logger.String("stadium", img.Name))
	}
	res.X, res.Y = densest.Point.X, densest.Point.Y
	res.Rank = densest.Rank
	return res, nil
}
