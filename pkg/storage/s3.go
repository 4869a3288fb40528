package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/gofiber/storage/s3/v2"

	"remarket/pkg/config"
)

// objectBucket is the slice of the s3 driver S3Store relies on.
type objectBucket interface {
	Get(key string) ([]byte, error)
	Set(key string, val []byte, exp time.Duration) error
	Delete(key string) error
}

// S3Store keeps image files in an S3-compatible bucket. Selected with
// IMAGE_STORE=s3; DiskStore is the default backend.
type S3Store struct {
	bucket   objectBucket
	endpoint string
	name     string
}

func NewS3Store(cfg *config.AppConfig) *S3Store {
	bucket := s3.New(s3.Config{
		Endpoint: cfg.AWSEndpoint,
		Bucket:   cfg.AWSBucket,
		Region:   cfg.AWSDefaultRegion,
		Credentials: s3.Credentials{
			AccessKey:       cfg.AWSAccessKey,
			SecretAccessKey: cfg.AWSSecretKey,
		},
		MaxAttempts:    3,
		RequestTimeout: time.Second * 10,
		Reset:          false,
	})

	return &S3Store{
		bucket:   bucket,
		endpoint: cfg.AWSEndpoint,
		name:     cfg.AWSBucket,
	}
}

func (s *S3Store) Save(_ context.Context, filename string, data []byte) (string, error) {
	key := imageSubdir + "/" + filename
	if err := s.bucket.Set(key, data, 0); err != nil {
		return "", fmt.Errorf("uploading image to bucket: %w", err)
	}
	return fmt.Sprintf("%s/%s/%s", s.endpoint, s.name, key), nil
}

func (s *S3Store) Delete(_ context.Context, filename string) (bool, error) {
	key := imageSubdir + "/" + filename

	// The driver reports a missing key as a nil value, not an error, so a
	// lookup is needed to tell "already gone" apart from a real failure.
	data, err := s.bucket.Get(key)
	if err != nil {
		return false, fmt.Errorf("checking image in bucket: %w", err)
	}
	if data == nil {
		return false, nil
	}

	if err := s.bucket.Delete(key); err != nil {
		return false, fmt.Errorf("deleting image from bucket: %w", err)
	}
	return true, nil
}
