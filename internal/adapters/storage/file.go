package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// FileSink writes artifacts into a directory, created on first use.
type FileSink struct {
	dir string
}

// NewFileSink returns a sink rooted at dir.
func NewFileSink(dir string) *FileSink {
	return &FileSink{dir: dir}
}

// Backend implements Sink.
func (s *FileSink) Backend() string { return "file" }

// Store writes data to dir/name via a temporary file and rename.
func (s *FileSink) Store(_ context.Context, name string, data []byte) (string, error) {
	n, err := CleanName(name)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir %s: %w", s.dir, err)
	}

	tmp, err := os.CreateTemp(s.dir, "."+n+".*")
	if err != nil {
		return "", fmt.Errorf("create temp artifact: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return "", fmt.Errorf("write artifact %s: %w", n, err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("close artifact %s: %w", n, err)
	}

	dst := filepath.Join(s.dir, n)
	if err := os.Rename(tmp.Name(), dst); err != nil {
		return "", fmt.Errorf("move artifact into place: %w", err)
	}
	return dst, nil
}

// Open returns the stored file.
func (s *FileSink) Open(_ context.Context, name string) (io.ReadCloser, error) {
	n, err := CleanName(name)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(filepath.Join(s.dir, n))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, n)
	}
	if err != nil {
		return nil, fmt.Errorf("open artifact %s: %w", n, err)
	}
	return f, nil
}
