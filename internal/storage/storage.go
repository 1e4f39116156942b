package storage

import (
	"context"
	"errors"
	"io"
	"path"
	"strings"
	"time"

	"github.com/gosimple/slug"
	"github.com/oklog/ulid/v2"
)

const (
	BucketCustomerDocs = "customer-docs"
	BucketCarPhotos    = "car-photos"
	BucketDriverPhotos = "driver-photos"
)

var (
	ErrEmptyObject   = errors.New("empty_object")
	ErrInvalidBucket = errors.New("invalid_bucket")
)

// Provider stores uploaded objects and returns their public URL.
type Provider interface {
	Upload(ctx context.Context, bucket, name, contentType string, body io.Reader) (string, error)
}

// ObjectName builds "<prefix>-<ulid>-<slug>.<ext>" from an uploaded file name.
func ObjectName(prefix, original string, now time.Time) string {
	ext := strings.ToLower(path.Ext(original))
	base := strings.TrimSuffix(path.Base(strings.ReplaceAll(original, "\\", "/")), path.Ext(original))
	cleaned := slug.Make(base)
	if cleaned == "" {
		cleaned = "file"
	}
	if len(cleaned) > 60 {
		cleaned = cleaned[:60]
	}
	if ext != "" && !validExtension(ext) {
		ext = ""
	}

	id := ulid.MustNew(ulid.Timestamp(now), ulid.DefaultEntropy()).String()
	name := strings.ToLower(id) + "-" + cleaned + ext
	if prefix = strings.TrimSpace(prefix); prefix != "" {
		name = prefix + "-" + name
	}
	return name
}

func validExtension(ext string) bool {
	if len(ext) < 2 || len(ext) > 8 {
		return false
	}
	for _, r := range ext[1:] {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') {
			return false
		}
	}
	return true
}

func validBucket(bucket string) bool {
	switch bucket {
	case BucketCustomerDocs, BucketCarPhotos, BucketDriverPhotos:
		return true
	default:
		return false
	}
}
