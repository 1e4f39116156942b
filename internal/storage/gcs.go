package storage

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"

	gcs "cloud.google.com/go/storage"
)

// GCSProvider uploads to Google Cloud Storage. Logical buckets map to
// "<prefix><bucket>" GCS buckets.
type GCSProvider struct {
	client *gcs.Client
	prefix string
}

func NewGCSProvider(ctx context.Context, prefix string) (*GCSProvider, error) {
	client, err := gcs.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("create gcs client: %w", err)
	}
	return &GCSProvider{client: client, prefix: strings.TrimSpace(prefix)}, nil
}

func (p *GCSProvider) bucketName(bucket string) string {
	return p.prefix + bucket
}

func (p *GCSProvider) Upload(ctx context.Context, bucket, name, contentType string, body io.Reader) (string, error) {
	if !validBucket(bucket) {
		return "", ErrInvalidBucket
	}

	w := p.client.Bucket(p.bucketName(bucket)).Object(name).NewWriter(ctx)
	if contentType != "" {
		w.ContentType = contentType
	}
	written, err := io.Copy(w, body)
	if err != nil {
		_ = w.Close()
		return "", fmt.Errorf("write gcs object: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("finalize gcs object: %w", err)
	}
	if written == 0 {
		return "", ErrEmptyObject
	}

	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", p.bucketName(bucket), url.PathEscape(name)), nil
}

func (p *GCSProvider) Close() error {
	return p.client.Close()
}
