// Package storage 媒体文件存储抽象，支持本地目录与 MinIO 两种实现
package storage

import (
	"context"
	"errors"
	"io"
)

// Kind 文件类别，决定落到哪个目录 / Bucket
type Kind int

const (
	KindVideo Kind = iota
	KindThumbnail
)

func (k Kind) String() string {
	switch k {
	case KindVideo:
		return "video"
	case KindThumbnail:
		return "thumbnail"
	default:
		return "unknown"
	}
}

var ErrInvalidPath = errors.New("storage: invalid path")

// Store 媒体文件存储
type Store interface {
	// Save 写入文件，返回保存到数据库中的路径
	Save(ctx context.Context, kind Kind, name string, r io.Reader, size int64, contentType string) (string, error)
	// Remove 删除 Save 返回的路径对应的文件
	Remove(ctx context.Context, path string) error
	// URL 返回浏览器可访问的地址
	URL(path string) string
}
