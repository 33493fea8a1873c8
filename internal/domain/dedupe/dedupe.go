// Package dedupe drops batted-ball events that were already seen, keyed by event ID.
package dedupe

import (
	"context"
	"sync"

	"github.com/dingerzone/seatfinder/internal/domain/model"
)

const defaultMaxSize = 50000

// Deduper records seen event IDs.
type Deduper interface {
	// SeenAndRecord reports whether id was seen before and records it if not.
	SeenAndRecord(ctx context.Context, id string) bool

	Size() int
}

// inMemoryDeduper keeps IDs in a map with a ring of insertion order for eviction.
type inMemoryDeduper struct {
	mu      sync.Mutex
	seen    map[string]struct{}
	ring    []string
	next    int
	maxSize int
}

// NewInMemoryDeduper creates a new in-memory deduper with configuration options.
func NewInMemoryDeduper(opts ...Option) Deduper {
	d := &inMemoryDeduper{maxSize: defaultMaxSize}
	for _, opt := range opts {
		opt(d)
	}
	d.seen = make(map[string]struct{})
	if d.maxSize > 0 {
		d.ring = make([]string, 0, d.maxSize)
	}
	return d
}

func (d *inMemoryDeduper) SeenAndRecord(_ context.Context, id string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.seen[id]; ok {
		return true
	}
	d.seen[id] = struct{}{}

	if d.maxSize <= 0 {
		return false
	}
	if len(d.ring) < d.maxSize {
		d.ring = append(d.ring, id)
		return false
	}
	// Full: overwrite the oldest slot.
	delete(d.seen, d.ring[d.next])
	d.ring[d.next] = id
	d.next = (d.next + 1) % d.maxSize
	return false
}

func (d *inMemoryDeduper) Size() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.seen)
}

// Unique returns events whose IDs d has not seen, in input order, and the
// number of duplicates removed. Events without an ID are always kept.
func Unique(ctx context.Context, d Deduper, events []model.BattedBallEvent) ([]model.BattedBallEvent, int) {
	out := make([]model.BattedBallEvent, 0, len(events))
	dups := 0
	for _, e := range events {
		if e.ID != "" && d.SeenAndRecord(ctx, e.ID) {
			dups++
			continue
		}
		out = append(out, e)
	}
	return out, dups
}
