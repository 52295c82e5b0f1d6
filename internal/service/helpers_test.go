package service

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	infraKafka "vidshare/internal/infra/kafka"
	"vidshare/internal/infra/storage"
	"vidshare/internal/repository"
	"vidshare/internal/session"
	"vidshare/internal/testutil"

	"gorm.io/gorm"
)

type testEnv struct {
	db       *gorm.DB
	root     string
	store    *flakyStore
	events   *recordingPublisher
	users    *repository.UserRepository
	videos   *repository.VideoRepository
	comments *repository.CommentRepository
	likes    *repository.LikeRepository
	subs     *repository.SubscriptionRepository
	sessions *session.Manager
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := testutil.NewDB(t)
	root := filepath.Join(t.TempDir(), "Uploads")
	return &testEnv{
		db:       db,
		root:     root,
		store:    &flakyStore{LocalStore: storage.NewLocalStore(root, "Videos", "Thumbnails")},
		events:   &recordingPublisher{},
		users:    repository.NewUserRepository(db),
		videos:   repository.NewVideoRepository(db),
		comments: repository.NewCommentRepository(db),
		likes:    repository.NewLikeRepository(db),
		subs:     repository.NewSubscriptionRepository(db),
		sessions: session.NewManager(session.Options{
			Secret:  "test-secret",
			Issuer:  "vidshare",
			TTL:     time.Hour,
			Revoker: session.NewMemoryRevoker(),
		}),
	}
}

func (e *testEnv) videoService() *VideoService {
	return NewVideoService(e.videos, e.comments, e.likes, e.subs, e.store, e.events, UploadLimits{
		MaxVideoBytes:     100 << 20,
		MaxThumbnailBytes: 5 << 20,
	})
}

// flakyStore 本地存储，可让指定类别的写入失败
type flakyStore struct {
	*storage.LocalStore
	failKind *storage.Kind
}

func (s *flakyStore) Save(ctx context.Context, kind storage.Kind, name string, r io.Reader, size int64, contentType string) (string, error) {
	if s.failKind != nil && *s.failKind == kind {
		return "", errors.New("disk full")
	}
	return s.LocalStore.Save(ctx, kind, name, r, size, contentType)
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []infraKafka.VideoEvent
}

func (p *recordingPublisher) PublishVideoEvent(_ context.Context, event infraKafka.VideoEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

// 最小的文件头，足以让 mimetype 识别类型
var (
	mp4Header  = "\x00\x00\x00\x20ftypisom\x00\x00\x02\x00isomiso2avc1mp41"
	jpegHeader = "\xff\xd8\xff\xe0\x00\x10JFIF\x00\x01\x01\x00\x00\x01\x00\x01\x00\x00"
	pngHeader  = "\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00"
)

func uploadFile(name, contentType, content string, size int64) *UploadFile {
	if size == 0 {
		size = int64(len(content))
	}
	return &UploadFile{
		Filename:    name,
		ContentType: contentType,
		Size:        size,
		Open: func() (io.ReadCloser, error) {
			return io.NopCloser(strings.NewReader(content)), nil
		},
	}
}
