// Package pipeline runs projection, density ranking and seat selection for
// one set of batted-ball events against one stadium diagram.
package pipeline

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/dingerzone/seatfinder/internal/domain/density"
	"github.com/dingerzone/seatfinder/internal/domain/model"
	"github.com/dingerzone/seatfinder/internal/domain/seating"
	"github.com/dingerzone/seatfinder/internal/domain/selector"
	"github.com/dingerzone/seatfinder/internal/domain/trajectory"
	"github.com/dingerzone/seatfinder/pkg/logger"
	"github.com/dingerzone/seatfinder/pkg/metrics"
)

// minParallelEvents is the input size below which projection stays on the
// calling goroutine.
const minParallelEvents = 256

// Outcome is everything a run produced.
type Outcome struct {
	Result      model.BestSeatResult
	Points      []model.FieldPoint // projected points inside the analysis region
	Ranking     density.Ranking
	Malformed   int // events rejected by projection
	OutOfRegion int // projected points outside the field extent
}

// Run executes the stages in order: per-event projection, region filter,
// density fit, ranking and selection. Every stage completes before the next
// one starts.
func Run(ctx context.Context, events []model.BattedBallEvent, img *model.StadiumImage, opts ...Option) (Outcome, error) {
	o := options{
		estimator:  density.NewEstimator(),
		classifier: seating.NewClassifier(),
		limit:      selector.DefaultLimit,
		workers:    runtime.GOMAXPROCS(0),
	}
	for _, opt := range opts {
		opt(&o)
	}

	var out Outcome
	if img == nil {
		return out, fmt.Errorf("pipeline: nil stadium image")
	}

	projected, malformed := project(events, o.workers)
	out.Malformed = malformed
	metrics.RecordEventsProjected(len(projected))
	metrics.RecordEventsDropped("malformed", malformed)
	if malformed > 0 && o.log != nil {
		o.log.Warn(ctx, "dropped malformed events", logger.Int("count", malformed))
	}
	if err := ctx.Err(); err != nil {
		return out, err
	}

	out.Points = trajectory.FilterRegion(projected)
	out.OutOfRegion = len(projected) - len(out.Points)
	metrics.RecordEventsDropped("out_of_region", out.OutOfRegion)

	start := time.Now()
	dens, err := o.estimator.Evaluate(out.Points)
	metrics.RecordDensityFitLatency(float64(time.Since(start).Milliseconds()))
	if err != nil {
		return out, fmt.Errorf("density fit over %d points: %w", len(out.Points), err)
	}
	if err := ctx.Err(); err != nil {
		return out, err
	}

	out.Ranking = density.Rank(out.Points, dens)

	res, err := selector.Select(ctx, out.Ranking, img,
		selector.WithLimit(o.limit),
		selector.WithClassifier(o.classifier),
		selector.WithLogger(o.log),
	)
	if err != nil {
		return out, fmt.Errorf("select best seat: %w", err)
	}
	metrics.RecordCandidatesScanned(res.Scanned)
	metrics.RecordCandidatesExcluded(res.Skipped)
	out.Result = res

	if o.log != nil {
		o.log.Info(ctx, "best seat selected",
			logger.String("stadium", img.Name),
			logger.Float64("x", res.X), logger.Float64("y", res.Y),
			logger.String("source", res.Source()),
			logger.Int("points", len(out.Points)))
	}
	return out, nil
}

// project runs trajectory.ProjectEvent over events, in parallel for large
// inputs. The result keeps input order.
func project(events []model.BattedBallEvent, workers int) ([]model.FieldPoint, int) {
	if workers <= 1 || len(events) < minParallelEvents {
		return trajectory.ProjectEvents(events)
	}

	type slot struct {
		p  model.FieldPoint
		ok bool
	}
	slots := make([]slot, len(events))
	chunk := (len(events) + workers - 1) / workers

	var wg sync.WaitGroup
	for lo := 0; lo < len(events); lo += chunk {
		hi := min(lo+chunk, len(events))
		wg.Add(1)
		go func(lo, hi int) {
			defer wg.Done()
			for i := lo; i < hi; i++ {
				p, err := trajectory.ProjectEvent(events[i])
				slots[i] = slot{p: p, ok: err == nil}
			}
		}(lo, hi)
	}
	wg.Wait()

	points := make([]model.FieldPoint, 0, len(events))
	dropped := 0
	for _, s := range slots {
		if !s.ok {
			dropped++
			continue
		}
		points = append(points, s.p)
	}
	return points, dropped
}
