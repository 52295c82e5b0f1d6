package minio

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"vidshare/internal/config"
	"vidshare/internal/infra/storage"
	"vidshare/pkg/logger"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"
)

var client *minio.Client

// Init 初始化 MinIO 客户端并确保媒体 Bucket 存在且公开可读
func Init(cfg *config.MinIOConfig, buckets ...string) error {
	var err error
	client, err = minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return fmt.Errorf("failed to create minio client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	for _, bucket := range buckets {
		exists, err := client.BucketExists(ctx, bucket)
		if err != nil {
			return fmt.Errorf("failed to check bucket %s: %w", bucket, err)
		}
		if !exists {
			if err := client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}); err != nil {
				return fmt.Errorf("failed to create bucket %s: %w", bucket, err)
			}
			logger.Info("MinIO bucket created", zap.String("bucket", bucket))
		}

		// 浏览器直接通过 <video>/<img> 访问对象
		if err := client.SetBucketPolicy(ctx, bucket, publicReadPolicy(bucket)); err != nil {
			return fmt.Errorf("failed to set public policy for %s: %w", bucket, err)
		}
	}

	logger.Info("MinIO connected",
		zap.String("endpoint", cfg.Endpoint),
		zap.Strings("buckets", buckets),
	)

	return nil
}

// Get 获取 MinIO 客户端实例
func Get() *minio.Client {
	return client
}

func publicReadPolicy(bucket string) string {
	return fmt.Sprintf(`{"Version":"2012-10-17","Statement":[{"Effect":"Allow","Principal":{"AWS":["*"]},"Action":["s3:GetObject"],"Resource":["arn:aws:s3:::%s/*"]}]}`, bucket)
}

// GetPublicURL 生成公开访问 URL（需要 Bucket 设置为 public-read）
func GetPublicURL(endpoint string, useSSL bool, bucket, objectName string) string {
	scheme := "http"
	if useSSL {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s/%s/%s", scheme, endpoint, bucket, objectName)
}

// Store 基于 MinIO 的媒体存储，路径形如 videos/vid_xxx.mp4（bucket/object）
type Store struct {
	client          *minio.Client
	videoBucket     string
	thumbnailBucket string
	publicEndpoint  string
	useSSL          bool
}

// NewStore 使用已初始化的客户端创建存储
func NewStore(c *minio.Client, cfg *config.MinIOConfig, storageCfg *config.StorageConfig) *Store {
	endpoint := cfg.PublicEndpoint
	if endpoint == "" {
		endpoint = cfg.Endpoint
	}
	return &Store{
		client:          c,
		videoBucket:     storageCfg.VideoBucket,
		thumbnailBucket: storageCfg.ThumbnailBucket,
		publicEndpoint:  endpoint,
		useSSL:          cfg.UseSSL,
	}
}

func (s *Store) bucket(kind storage.Kind) (string, error) {
	switch kind {
	case storage.KindVideo:
		return s.videoBucket, nil
	case storage.KindThumbnail:
		return s.thumbnailBucket, nil
	default:
		return "", fmt.Errorf("unknown storage kind %d", kind)
	}
}

// Save 上传对象
func (s *Store) Save(ctx context.Context, kind storage.Kind, name string, r io.Reader, size int64, contentType string) (string, error) {
	if name == "" || strings.Contains(name, "/") {
		return "", storage.ErrInvalidPath
	}
	bucket, err := s.bucket(kind)
	if err != nil {
		return "", err
	}

	_, err = s.client.PutObject(ctx, bucket, name, r, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload to minio: %w", err)
	}
	return bucket + "/" + name, nil
}

// Remove 删除对象
func (s *Store) Remove(ctx context.Context, path string) error {
	bucket, object, err := s.split(path)
	if err != nil {
		return err
	}
	if err := s.client.RemoveObject(ctx, bucket, object, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("failed to remove %s from minio: %w", path, err)
	}
	return nil
}

// URL 返回公开访问地址
func (s *Store) URL(path string) string {
	bucket, object, err := s.split(path)
	if err != nil {
		return ""
	}
	return GetPublicURL(s.publicEndpoint, s.useSSL, bucket, object)
}

func (s *Store) split(path string) (string, string, error) {
	bucket, object, ok := strings.Cut(path, "/")
	if !ok || object == "" || (bucket != s.videoBucket && bucket != s.thumbnailBucket) {
		return "", "", storage.ErrInvalidPath
	}
	return bucket, object, nil
}
