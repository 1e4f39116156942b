package storage

import (
	"context"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObjectName(t *testing.T) {
	now := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)

	name := ObjectName("doc", "عقد الزبون Final.PDF", now)
	assert.Regexp(t, regexp.MustCompile(`^doc-[0-9a-z]{26}-[a-z0-9-]+\.pdf$`), name)

	name = ObjectName("", "../../etc/passwd", now)
	assert.False(t, strings.Contains(name, "/"))
	assert.True(t, strings.HasSuffix(name, "-passwd"))

	name = ObjectName("car", "photo.j$pg", now)
	assert.False(t, strings.Contains(name, "$"))
}

func TestObjectNameIsUnique(t *testing.T) {
	now := time.Now()
	assert.NotEqual(t, ObjectName("doc", "a.png", now), ObjectName("doc", "a.png", now))
}

func TestLocalProviderUpload(t *testing.T) {
	root := t.TempDir()
	p := NewLocalProvider(root, "/uploads/")

	url, err := p.Upload(context.Background(), BucketCarPhotos, "car-1.jpg", "image/jpeg", strings.NewReader("jpeg-bytes"))
	require.NoError(t, err)
	assert.Equal(t, "/uploads/car-photos/car-1.jpg", url)

	data, err := os.ReadFile(filepath.Join(root, BucketCarPhotos, "car-1.jpg"))
	require.NoError(t, err)
	assert.Equal(t, "jpeg-bytes", string(data))
}

func TestLocalProviderRejectsBadInput(t *testing.T) {
	p := NewLocalProvider(t.TempDir(), "/uploads")

	_, err := p.Upload(context.Background(), "secrets", "x.txt", "", strings.NewReader("x"))
	assert.ErrorIs(t, err, ErrInvalidBucket)

	_, err = p.Upload(context.Background(), BucketCustomerDocs, "../x.txt", "", strings.NewReader("x"))
	assert.Error(t, err)

	_, err = p.Upload(context.Background(), BucketCustomerDocs, "empty.txt", "", strings.NewReader(""))
	assert.ErrorIs(t, err, ErrEmptyObject)
}
