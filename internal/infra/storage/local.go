package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"vidshare/pkg/logger"

	"go.uber.org/zap"
)

// LocalStore 本地磁盘存储。
// 保存到数据库的路径形如 Uploads/Videos/vid_xxx.mp4，首段为 root 的目录名，同时也是静态路由前缀。
type LocalStore struct {
	root         string
	prefix       string
	videoDir     string
	thumbnailDir string
}

func NewLocalStore(root, videoDir, thumbnailDir string) *LocalStore {
	root = filepath.Clean(root)
	return &LocalStore{
		root:         root,
		prefix:       filepath.Base(root),
		videoDir:     videoDir,
		thumbnailDir: thumbnailDir,
	}
}

// Root 磁盘上的根目录
func (s *LocalStore) Root() string {
	return s.root
}

// Prefix 静态路由前缀（不含斜杠）
func (s *LocalStore) Prefix() string {
	return s.prefix
}

func (s *LocalStore) subdir(kind Kind) (string, error) {
	switch kind {
	case KindVideo:
		return s.videoDir, nil
	case KindThumbnail:
		return s.thumbnailDir, nil
	default:
		return "", fmt.Errorf("unknown storage kind %d", kind)
	}
}

// Save 写入文件，目录不存在时自动创建
func (s *LocalStore) Save(ctx context.Context, kind Kind, name string, r io.Reader, size int64, contentType string) (string, error) {
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return "", ErrInvalidPath
	}
	sub, err := s.subdir(kind)
	if err != nil {
		return "", err
	}

	dir := filepath.Join(s.root, sub)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create %s directory: %w", kind, err)
	}

	file := filepath.Join(dir, name)
	f, err := os.OpenFile(file, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return "", fmt.Errorf("failed to create %s file: %w", kind, err)
	}

	if _, err := io.Copy(f, ctxReader{ctx: ctx, r: r}); err != nil {
		f.Close()
		os.Remove(file)
		return "", fmt.Errorf("failed to write %s file: %w", kind, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(file)
		return "", fmt.Errorf("failed to close %s file: %w", kind, err)
	}

	p := path.Join(s.prefix, sub, name)
	logger.Debug("File stored",
		zap.String("kind", kind.String()),
		zap.String("path", p),
		zap.Int64("size", size),
	)
	return p, nil
}

// Remove 删除文件；文件已不存在视为成功
func (s *LocalStore) Remove(ctx context.Context, p string) error {
	file, err := s.FilePath(p)
	if err != nil {
		return err
	}
	if err := os.Remove(file); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove %s: %w", p, err)
	}
	return nil
}

// FilePath 把存储路径映射为磁盘路径，拒绝 root 以外的路径
func (s *LocalStore) FilePath(p string) (string, error) {
	clean := path.Clean(p)
	if clean != p || !strings.HasPrefix(clean, s.prefix+"/") || strings.Contains(clean, "..") {
		return "", ErrInvalidPath
	}
	return filepath.Join(s.root, filepath.FromSlash(strings.TrimPrefix(clean, s.prefix+"/"))), nil
}

// URL 本地文件通过站点根路径访问
func (s *LocalStore) URL(p string) string {
	if p == "" {
		return ""
	}
	return "/" + strings.TrimPrefix(p, "/")
}

// ctxReader 在请求被取消后中断拷贝
type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (c ctxReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}
