package elasticsearch

import (
	"bytes"
	"context"
	"fmt"

	"vidshare/pkg/logger"

	"github.com/elastic/go-elasticsearch/v8"
	"go.uber.org/zap"
)

// videosIndexMapping videos 索引的 mapping。
// title/description 的 wildcard 子字段用于子串匹配，wildcard 类型没有长度上限。
// 旧版索引（keyword 子字段）需要删除后用 worker -reindex 重建。
const videosIndexMapping = `{
	"settings": {
		"number_of_shards": 1,
		"number_of_replicas": 0
	},
	"mappings": {
		"properties": {
			"id": {"type": "long"},
			"user_id": {"type": "long"},
			"username": {"type": "keyword"},
			"title": {
				"type": "text",
				"fields": {"wildcard": {"type": "wildcard"}}
			},
			"description": {
				"type": "text",
				"fields": {"wildcard": {"type": "wildcard"}}
			},
			"thumbnail": {"type": "keyword", "index": false},
			"views": {"type": "long"},
			"upload_date": {"type": "date", "format": "strict_date_optional_time||epoch_millis"}
		}
	}
}`

// VideoIndex videos 索引的读写
type VideoIndex struct {
	client *elasticsearch.Client
	name   string
}

func NewVideoIndex(client *elasticsearch.Client, name string) *VideoIndex {
	return &VideoIndex{client: client, name: name}
}

// Name 索引名
func (x *VideoIndex) Name() string {
	return x.name
}

// Ensure 确保索引存在，不存在则创建
func (x *VideoIndex) Ensure(ctx context.Context) error {
	resp, err := x.client.Indices.Exists(
		[]string{x.name},
		x.client.Indices.Exists.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("check index exists: %w", err)
	}
	resp.Body.Close()
	if resp.StatusCode == 200 {
		logger.Info("Elasticsearch videos index already exists", zap.String("index", x.name))
		return nil
	}

	resp, err = x.client.Indices.Create(
		x.name,
		x.client.Indices.Create.WithContext(ctx),
		x.client.Indices.Create.WithBody(bytes.NewReader([]byte(videosIndexMapping))),
	)
	if err != nil {
		return fmt.Errorf("create index: %w", err)
	}
	defer resp.Body.Close()

	if resp.IsError() {
		return fmt.Errorf("create index failed: %s", resp.String())
	}

	logger.Info("Elasticsearch videos index created", zap.String("index", x.name))
	return nil
}
