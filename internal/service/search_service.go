package service

import (
	"context"
	"sort"
	"strings"
	"time"

	"vidshare/internal/api/dto"
	infraES "vidshare/internal/infra/elasticsearch"
	"vidshare/internal/infra/storage"
	"vidshare/internal/model"
	"vidshare/internal/repository"
	"vidshare/pkg/logger"

	"go.uber.org/zap"
)

// VideoSearcher 外部搜索索引
type VideoSearcher interface {
	SearchVideoIDs(ctx context.Context, keyword string, limit int) (*infraES.SearchHits, error)
}

type SearchService struct {
	videoRepo  *repository.VideoRepository
	store      storage.Store
	index      VideoSearcher
	maxResults int
}

// NewSearchService index 为 nil 时直接查询数据库
func NewSearchService(videoRepo *repository.VideoRepository, store storage.Store, index VideoSearcher, maxResults int) *SearchService {
	return &SearchService{videoRepo: videoRepo, store: store, index: index, maxResults: maxResults}
}

// Search 标题或描述包含关键字的视频（ES 优先，失败则降级到 DB），按播放量倒序
func (s *SearchService) Search(ctx context.Context, q string) ([]dto.SearchResult, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return []dto.SearchResult{}, nil
	}

	if s.index != nil {
		videos, err := s.searchFromIndex(ctx, q)
		if err == nil {
			return s.toResults(videos), nil
		}
		logger.Warn("ES search failed, fallback to DB", zap.String("q", q), zap.Error(err))
	}

	videos, err := s.videoRepo.Search(ctx, q, s.maxResults)
	if err != nil {
		return nil, err
	}
	return s.toResults(videos), nil
}

// searchFromIndex 以 ES 命中的 ID 回表，只保留仍存在且有上传者的视频；
// 索引水位之后上传的视频直接查数据库补齐，合并后按播放量倒序截断
func (s *SearchService) searchFromIndex(ctx context.Context, q string) ([]model.Video, error) {
	esCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	hits, err := s.index.SearchVideoIDs(esCtx, q, s.maxResults)
	if err != nil {
		return nil, err
	}

	found, err := s.videoRepo.GetByIDsWithUser(ctx, hits.IDs)
	if err != nil {
		return nil, err
	}
	fresh, err := s.videoRepo.SearchAfterID(ctx, q, hits.MaxIndexedID, s.maxResults)
	if err != nil {
		return nil, err
	}

	seen := make(map[int64]bool, len(found)+len(fresh))
	videos := make([]model.Video, 0, len(found)+len(fresh))
	for _, v := range append(found, fresh...) {
		if v.User.ID == 0 || seen[v.ID] {
			continue
		}
		seen[v.ID] = true
		videos = append(videos, v)
	}
	sort.SliceStable(videos, func(i, j int) bool {
		if videos[i].Views != videos[j].Views {
			return videos[i].Views > videos[j].Views
		}
		return videos[i].ID > videos[j].ID
	})
	if len(videos) > s.maxResults {
		videos = videos[:s.maxResults]
	}
	return videos, nil
}

func (s *SearchService) toResults(videos []model.Video) []dto.SearchResult {
	results := make([]dto.SearchResult, 0, len(videos))
	for _, v := range videos {
		results = append(results, dto.SearchResult{
			ID:        v.ID,
			Title:     v.Title,
			Thumbnail: s.store.URL(v.Thumbnail),
			Username:  v.User.Username,
			Views:     v.Views,
		})
	}
	return results
}
