package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// LocalProvider writes objects under <root>/<bucket>/<name>, served at <baseURL>/<bucket>/<name>.
type LocalProvider struct {
	root    string
	baseURL string
}

func NewLocalProvider(root, baseURL string) *LocalProvider {
	return &LocalProvider{
		root:    root,
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

func (p *LocalProvider) Root() string { return p.root }

func (p *LocalProvider) Upload(ctx context.Context, bucket, name, _ string, body io.Reader) (string, error) {
	if !validBucket(bucket) {
		return "", ErrInvalidBucket
	}
	if name == "" || strings.ContainsAny(name, `/\`) {
		return "", fmt.Errorf("invalid object name %q", name)
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	dir := filepath.Join(p.root, bucket)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create bucket dir: %w", err)
	}

	dst, err := os.Create(filepath.Join(dir, name))
	if err != nil {
		return "", fmt.Errorf("create object: %w", err)
	}
	written, copyErr := io.Copy(dst, body)
	closeErr := dst.Close()
	if copyErr != nil {
		return "", fmt.Errorf("write object: %w", copyErr)
	}
	if closeErr != nil {
		return "", fmt.Errorf("close object: %w", closeErr)
	}
	if written == 0 {
		_ = os.Remove(filepath.Join(dir, name))
		return "", ErrEmptyObject
	}

	return p.baseURL + "/" + bucket + "/" + name, nil
}
