// Package storage writes rendered artifacts to a local directory or a MinIO bucket.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
)

// Sentinel errors.
var (
	ErrNotFound    = errors.New("artifact not found")
	ErrInvalidName = errors.New("invalid artifact name")
)

// Sink stores finished artifacts under a name and can read them back.
type Sink interface {
	// Store writes data and returns where it ended up.
	Store(ctx context.Context, name string, data []byte) (string, error)
	// Open returns a reader for a stored artifact or ErrNotFound.
	Open(ctx context.Context, name string) (io.ReadCloser, error)
	// Backend names the implementation for metrics.
	Backend() string
}

// CleanName rejects names that would escape the sink root.
func CleanName(name string) (string, error) {
	n := strings.TrimSpace(name)
	if n == "" || strings.ContainsAny(n, `/\`) || n == "." || n == ".." || path.Base(n) != n {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return n, nil
}

// HeatmapName is the artifact name for a stadium, spaces replaced by underscores.
func HeatmapName(stadium string) string {
	return strings.ReplaceAll(strings.TrimSpace(stadium), " ", "_") + "_heatmap.png"
}
