package elasticsearch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"vidshare/internal/model"
	"vidshare/pkg/logger"

	"go.uber.org/zap"
)

// VideoDoc ES 视频文档结构
type VideoDoc struct {
	ID          int64  `json:"id"`
	UserID      int64  `json:"user_id"`
	Username    string `json:"username"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Thumbnail   string `json:"thumbnail"`
	Views       int64  `json:"views"`
	UploadDate  string `json:"upload_date"`
}

func videoToDoc(v *model.Video) *VideoDoc {
	return &VideoDoc{
		ID:          v.ID,
		UserID:      v.UserID,
		Username:    v.User.Username,
		Title:       v.Title,
		Description: v.Description,
		Thumbnail:   v.Thumbnail,
		Views:       v.Views,
		UploadDate:  v.UploadDate.Format(time.RFC3339),
	}
}

// SyncVideo 同步单个视频到 ES（v.User 需已加载）
func (x *VideoIndex) SyncVideo(ctx context.Context, v *model.Video) error {
	body, err := json.Marshal(videoToDoc(v))
	if err != nil {
		return err
	}

	resp, err := x.client.Index(
		x.name,
		bytes.NewReader(body),
		x.client.Index.WithContext(ctx),
		x.client.Index.WithDocumentID(strconv.FormatInt(v.ID, 10)),
	)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.IsError() {
		return fmt.Errorf("index document failed: %s", resp.String())
	}

	logger.Debug("Video synced to ES", zap.Int64("video_id", v.ID))
	return nil
}

// DeleteVideo 从 ES 删除视频，文档不存在不视为错误
func (x *VideoIndex) DeleteVideo(ctx context.Context, videoID int64) error {
	resp, err := x.client.Delete(
		x.name,
		strconv.FormatInt(videoID, 10),
		x.client.Delete.WithContext(ctx),
	)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.IsError() && resp.StatusCode != 404 {
		return fmt.Errorf("delete document failed: %s", resp.String())
	}
	return nil
}

// BulkSyncVideos 批量同步视频到 ES
func (x *VideoIndex) BulkSyncVideos(ctx context.Context, videos []model.Video) (success, failed int, err error) {
	var buf bytes.Buffer
	for i := range videos {
		docBody, err := json.Marshal(videoToDoc(&videos[i]))
		if err != nil {
			return 0, len(videos), err
		}
		fmt.Fprintf(&buf, `{"index":{"_index":%q,"_id":"%d"}}`, x.name, videos[i].ID)
		buf.WriteByte('\n')
		buf.Write(docBody)
		buf.WriteByte('\n')
	}

	if buf.Len() == 0 {
		return 0, 0, nil
	}

	resp, err := x.client.Bulk(&buf, x.client.Bulk.WithContext(ctx))
	if err != nil {
		return 0, len(videos), err
	}
	defer resp.Body.Close()

	if resp.IsError() {
		return 0, len(videos), fmt.Errorf("bulk failed: %s", resp.String())
	}

	var bulkResp struct {
		Errors bool `json:"errors"`
		Items  []struct {
			Index struct {
				Status int `json:"status"`
			} `json:"index"`
		} `json:"items"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&bulkResp); err != nil {
		return len(videos), 0, nil
	}

	for _, item := range bulkResp.Items {
		if item.Index.Status >= 200 && item.Index.Status < 300 {
			success++
		} else {
			failed++
		}
	}

	logger.Info("Bulk sync to ES completed", zap.Int("success", success), zap.Int("failed", failed))
	return success, failed, nil
}

var wildcardEscaper = strings.NewReplacer(`\`, `\\`, `*`, `\*`, `?`, `\?`)

// SearchHits 搜索结果。
// MaxIndexedID 为索引中最大的视频 ID（与查询无关），比它新的视频尚未入索引，调用方需另行补齐。
type SearchHits struct {
	IDs          []int64
	MaxIndexedID int64
}

// searchQuery 标题或描述包含 keyword（不区分大小写），按播放量倒序
func searchQuery(keyword string, limit int) map[string]interface{} {
	wildcard := func(field string) map[string]interface{} {
		return map[string]interface{}{"wildcard": map[string]interface{}{field: map[string]interface{}{
			"value":            "*" + wildcardEscaper.Replace(keyword) + "*",
			"case_insensitive": true,
		}}}
	}
	return map[string]interface{}{
		"size":    limit,
		"_source": []string{"id"},
		"query": map[string]interface{}{
			"bool": map[string]interface{}{
				"should": []interface{}{
					wildcard("title.wildcard"),
					wildcard("description.wildcard"),
				},
				"minimum_should_match": 1,
			},
		},
		"sort": []interface{}{
			map[string]interface{}{"views": map[string]interface{}{"order": "desc"}},
			map[string]interface{}{"id": map[string]interface{}{"order": "desc"}},
		},
		"aggs": map[string]interface{}{
			"indexed": map[string]interface{}{
				"global": map[string]interface{}{},
				"aggs": map[string]interface{}{
					"max_id": map[string]interface{}{"max": map[string]interface{}{"field": "id"}},
				},
			},
		},
	}
}

// SearchVideoIDs 返回匹配的视频 ID（顺序与 ES 排序一致）以及索引中最大的视频 ID
func (x *VideoIndex) SearchVideoIDs(ctx context.Context, keyword string, limit int) (*SearchHits, error) {
	body, err := json.Marshal(searchQuery(keyword, limit))
	if err != nil {
		return nil, err
	}

	resp, err := x.client.Search(
		x.client.Search.WithContext(ctx),
		x.client.Search.WithIndex(x.name),
		x.client.Search.WithBody(bytes.NewReader(body)),
	)
	if err != nil {
		return nil, fmt.Errorf("es search: %w", err)
	}
	defer resp.Body.Close()

	if resp.IsError() {
		return nil, fmt.Errorf("es search failed: %s", resp.String())
	}

	var result struct {
		Hits struct {
			Hits []struct {
				Source struct {
					ID int64 `json:"id"`
				} `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
		Aggregations struct {
			Indexed struct {
				MaxID struct {
					Value *float64 `json:"value"`
				} `json:"max_id"`
			} `json:"indexed"`
		} `json:"aggregations"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode es response: %w", err)
	}

	hits := &SearchHits{IDs: make([]int64, 0, len(result.Hits.Hits))}
	for _, h := range result.Hits.Hits {
		hits.IDs = append(hits.IDs, h.Source.ID)
	}
	if v := result.Aggregations.Indexed.MaxID.Value; v != nil {
		hits.MaxIndexedID = int64(*v)
	}
	return hits, nil
}
