package minio

import (
	"errors"
	"testing"

	"vidshare/internal/config"
	"vidshare/internal/infra/storage"
)

func newTestStore() *Store {
	return NewStore(nil,
		&config.MinIOConfig{Endpoint: "minio:9000", PublicEndpoint: "cdn.example.com"},
		&config.StorageConfig{VideoBucket: "videos", ThumbnailBucket: "thumbnails"},
	)
}

func TestStoreURLUsesPublicEndpoint(t *testing.T) {
	s := newTestStore()
	if got := s.URL("videos/vid_1.mp4"); got != "http://cdn.example.com/videos/vid_1.mp4" {
		t.Errorf("URL = %q", got)
	}
	if got := s.URL("other/vid_1.mp4"); got != "" {
		t.Errorf("URL for foreign bucket = %q, want empty", got)
	}
}

func TestStoreSplitRejectsForeignPaths(t *testing.T) {
	s := newTestStore()
	for _, p := range []string{"", "videos", "videos/", "private/x.mp4"} {
		if _, _, err := s.split(p); !errors.Is(err, storage.ErrInvalidPath) {
			t.Errorf("split(%q) err = %v, want ErrInvalidPath", p, err)
		}
	}
	bucket, object, err := s.split("thumbnails/thumb_1.jpg")
	if err != nil || bucket != "thumbnails" || object != "thumb_1.jpg" {
		t.Errorf("split = %q, %q, %v", bucket, object, err)
	}
}

func TestPublicReadPolicyScopesBucket(t *testing.T) {
	const want = `{"Version":"2012-10-17","Statement":[{"Effect":"Allow","Principal":{"AWS":["*"]},"Action":["s3:GetObject"],"Resource":["arn:aws:s3:::videos/*"]}]}`
	if got := publicReadPolicy("videos"); got != want {
		t.Errorf("policy = %s", got)
	}
}
