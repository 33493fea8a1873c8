// Package imagefetch downloads and decodes stadium diagrams, keeping recently
// used images in an LRU cache.
package imagefetch

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"  // diagram formats
	_ "image/jpeg" // diagram formats
	_ "image/png"  // diagram formats
	"io"
	"net/http"

	"github.com/hashicorp/go-retryablehttp"
	lru "github.com/hashicorp/golang-lru/v2"
	_ "golang.org/x/image/bmp"  // diagram formats
	_ "golang.org/x/image/tiff" // diagram formats
	_ "golang.org/x/image/webp" // diagram formats

	"github.com/dingerzone/seatfinder/internal/domain/model"
	"github.com/dingerzone/seatfinder/pkg/logger"
	"github.com/dingerzone/seatfinder/pkg/metrics"
)

const (
	defaultCacheSize = 32
	maxImageBytes    = 32 << 20
)

// Sentinel errors.
var (
	ErrFetch  = errors.New("could not retrieve image")
	ErrDecode = errors.New("could not decode image")
)

// Fetcher loads stadium diagrams.
type Fetcher struct {
	http  *retryablehttp.Client
	cache *lru.Cache[string, *model.StadiumImage]
	log   logger.Logger
}

// Option configures a Fetcher.
type Option func(*fetcherConfig)

type fetcherConfig struct {
	cacheSize int
	log       logger.Logger
}

// WithCacheSize sets how many decoded images are kept. Zero disables caching.
func WithCacheSize(n int) Option {
	return func(c *fetcherConfig) {
		if n >= 0 {
			c.cacheSize = n
		}
	}
}

// WithLogger sets the fetcher logger.
func WithLogger(l logger.Logger) Option {
	return func(c *fetcherConfig) {
		if l != nil {
			c.log = l
		}
	}
}

// New builds a Fetcher over hc.
func New(hc *retryablehttp.Client, opts ...Option) (*Fetcher, error) {
	cfg := fetcherConfig{cacheSize: defaultCacheSize}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.log == nil {
		cfg.log = logger.Get().Named("imagefetch")
	}
	f := &Fetcher{http: hc, log: cfg.log}
	if cfg.cacheSize > 0 {
		c, err := lru.New[string, *model.StadiumImage](cfg.cacheSize)
		if err != nil {
			return nil, fmt.Errorf("image cache: %w", err)
		}
		f.cache = c
	}
	return f, nil
}

// Fetch returns the decoded diagram at url, named name.
func (f *Fetcher) Fetch(ctx context.Context, name, url string) (*model.StadiumImage, error) {
	if f.cache != nil {
		if img, ok := f.cache.Get(url); ok {
			metrics.RecordImageCache("hit")
			return named(img, name), nil
		}
		metrics.RecordImageCache("miss")
	}

	f.log.Debug(ctx, "downloading stadium image", logger.String("url", url))
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrFetch, url, err)
	}
	resp, err := f.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrFetch, url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		f.log.Error(ctx, "image fetch failed", logger.String("url", url), logger.Int("status", resp.StatusCode))
		return nil, fmt.Errorf("%w: %s: status %d", ErrFetch, url, resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxImageBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: read body: %v", ErrFetch, url, err)
	}

	img, err := Decode(name, url, data)
	if err != nil {
		return nil, err
	}
	if f.cache != nil {
		f.cache.Add(url, img)
	}
	return named(img, name), nil
}

// named copies img under name. Pixels are shared and never written after decode.
func named(img *model.StadiumImage, name string) *model.StadiumImage {
	cp := *img
	cp.Name = name
	return &cp
}

// Decode turns raw bytes into a StadiumImage.
func Decode(name, url string, data []byte) (*model.StadiumImage, error) {
	src, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrDecode, url, err)
	}
	b := src.Bounds()
	if b.Dx() == 0 || b.Dy() == 0 {
		return nil, fmt.Errorf("%w: %s: empty %s image", ErrDecode, url, format)
	}
	return model.NewStadiumImage(name, url, src), nil
}

// Len reports the number of cached images.
func (f *Fetcher) Len() int {
	if f.cache == nil {
		return 0
	}
	return f.cache.Len()
}
