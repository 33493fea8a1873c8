package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"

	minio "github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

const artifactContentType = "image/png"

// MinioConfig holds connection settings for MinioSink.
type MinioConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
	Region    string
}

// MinioSink writes artifacts into a bucket, creating it on first write.
// A failed bucket check is retried by the next Store.
type MinioSink struct {
	client *minio.Client
	cfg    MinioConfig

	bucketMu    sync.Mutex
	bucketReady bool
}

// NewMinioSink connects a sink. No request is made until the first Store.
func NewMinioSink(cfg MinioConfig) (*MinioSink, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}
	return &MinioSink{client: client, cfg: cfg}, nil
}

// Backend implements Sink.
func (s *MinioSink) Backend() string { return "minio" }

func (s *MinioSink) ensureBucket(ctx context.Context) error {
	s.bucketMu.Lock()
	defer s.bucketMu.Unlock()
	if s.bucketReady {
		return nil
	}

	exists, err := s.client.BucketExists(ctx, s.cfg.Bucket)
	if err != nil {
		return fmt.Errorf("check bucket %s: %w", s.cfg.Bucket, err)
	}
	if !exists {
		if err := s.client.MakeBucket(ctx, s.cfg.Bucket, minio.MakeBucketOptions{Region: s.cfg.Region}); err != nil {
			return fmt.Errorf("create bucket %s: %w", s.cfg.Bucket, err)
		}
	}
	s.bucketReady = true
	return nil
}

// Store uploads data and returns "bucket/name".
func (s *MinioSink) Store(ctx context.Context, name string, data []byte) (string, error) {
	n, err := CleanName(name)
	if err != nil {
		return "", err
	}
	if err := s.ensureBucket(ctx); err != nil {
		return "", err
	}
	_, err = s.client.PutObject(ctx, s.cfg.Bucket, n, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: artifactContentType,
	})
	if err != nil {
		return "", fmt.Errorf("put object %s: %w", n, err)
	}
	return s.cfg.Bucket + "/" + n, nil
}

// Open streams an object back.
func (s *MinioSink) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	n, err := CleanName(name)
	if err != nil {
		return nil, err
	}
	if _, err := s.client.StatObject(ctx, s.cfg.Bucket, n, minio.StatObjectOptions{}); err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, n)
		}
		return nil, fmt.Errorf("stat object %s: %w", n, err)
	}
	obj, err := s.client.GetObject(ctx, s.cfg.Bucket, n, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("get object %s: %w", n, err)
	}
	return obj, nil
}
