package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"path/filepath"
	"strings"

	"vidshare/internal/api/dto"
	infraKafka "vidshare/internal/infra/kafka"
	"vidshare/internal/infra/storage"
	"vidshare/internal/model"
	"vidshare/pkg/logger"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrInvalidVideoFormat     = errors.New("Invalid video format. Only MP4, WebM, or OGG allowed.")
	ErrInvalidThumbnailFormat = errors.New("Invalid thumbnail format. Only JPEG, PNG, or GIF allowed.")
	ErrVideoTooLarge          = errors.New("Video file is too large. Maximum size is 100MB.")
	ErrThumbnailTooLarge      = errors.New("Thumbnail file is too large. Maximum size is 5MB.")
	ErrFileUpload             = errors.New("File upload error")
	ErrUploadFailed           = errors.New("Failed to upload video. Please try again later.")
)

// 允许的类型 -> 默认扩展名
var (
	videoTypes = map[string]string{
		"video/mp4":  ".mp4",
		"video/webm": ".webm",
		"video/ogg":  ".ogv",
	}
	thumbnailTypes = map[string]string{
		"image/jpeg": ".jpg",
		"image/png":  ".png",
		"image/gif":  ".gif",
	}
	// 客户端扩展名在此列表中时保留
	knownExtensions = map[string]string{
		".mp4": "video/mp4", ".m4v": "video/mp4",
		".webm": "video/webm",
		".ogv": "video/ogg", ".ogg": "video/ogg",
		".jpg": "image/jpeg", ".jpeg": "image/jpeg",
		".png": "image/png",
		".gif": "image/gif",
	}
)

// sniffLen mimetype 默认读取的头部长度
const sniffLen = 3072

// UploadLimits 上传大小上限（字节）
type UploadLimits struct {
	MaxVideoBytes     int64
	MaxThumbnailBytes int64
}

// UploadFile 待上传的文件
type UploadFile struct {
	Filename    string
	ContentType string
	Size        int64
	Open        func() (io.ReadCloser, error)
}

// openedFile 已打开并确定类型的上传文件
type openedFile struct {
	reader      io.Reader
	closer      io.Closer
	contentType string
	ext         string
	size        int64
}

// Upload 校验并保存视频：先存视频、再存封面、最后写库，任一步失败都回滚之前已保存的文件
func (s *VideoService) Upload(ctx context.Context, userID int64, form *dto.UploadForm, video, thumbnail *UploadFile) (*model.Video, error) {
	title := strings.TrimSpace(form.Title)
	description := strings.TrimSpace(form.Description)
	if title == "" || description == "" || !present(video) || !present(thumbnail) {
		return nil, ErrFieldsRequired
	}

	vf, err := openUpload(video, videoTypes)
	if err != nil {
		return nil, err
	}
	defer vf.closer.Close()

	tf, err := openUpload(thumbnail, thumbnailTypes)
	if err != nil {
		return nil, err
	}
	defer tf.closer.Close()

	if vf.contentType == "" {
		return nil, ErrInvalidVideoFormat
	}
	if tf.contentType == "" {
		return nil, ErrInvalidThumbnailFormat
	}
	if vf.size > s.limits.MaxVideoBytes {
		return nil, ErrVideoTooLarge
	}
	if tf.size > s.limits.MaxThumbnailBytes {
		return nil, ErrThumbnailTooLarge
	}

	cleanupCtx := context.WithoutCancel(ctx)

	videoPath, err := s.store.Save(ctx, storage.KindVideo, "vid_"+uuid.NewString()+vf.ext, vf.reader, vf.size, vf.contentType)
	if err != nil {
		logger.Error("Store video file failed", zap.Int64("user_id", userID), zap.Error(err))
		return nil, ErrUploadFailed
	}

	thumbPath, err := s.store.Save(ctx, storage.KindThumbnail, "thumb_"+uuid.NewString()+tf.ext, tf.reader, tf.size, tf.contentType)
	if err != nil {
		logger.Error("Store thumbnail failed, removing stored video",
			zap.Int64("user_id", userID), zap.String("video_path", videoPath), zap.Error(err))
		s.removeFiles(cleanupCtx, videoPath)
		return nil, ErrUploadFailed
	}

	record := &model.Video{
		UserID:      userID,
		Title:       title,
		Description: description,
		VideoURL:    videoPath,
		Thumbnail:   thumbPath,
	}
	if err := s.videoRepo.Create(ctx, record); err != nil {
		logger.Error("Insert video record failed, removing stored files",
			zap.Int64("user_id", userID), zap.Error(err))
		s.removeFiles(cleanupCtx, videoPath, thumbPath)
		return nil, ErrUploadFailed
	}

	logger.Info("Video uploaded",
		zap.Int64("video_id", record.ID),
		zap.Int64("user_id", userID),
		zap.String("video_path", videoPath),
	)
	s.publish(cleanupCtx, infraKafka.EventVideoCreated, record)
	return record, nil
}

func present(f *UploadFile) bool {
	return f != nil && f.Open != nil && f.Size > 0
}

// openUpload 打开文件并确定类型；类型不在 allowed 中时 contentType 为空。
// 优先使用声明的 Content-Type，缺失或为 application/octet-stream 时根据内容识别。
func openUpload(f *UploadFile, allowed map[string]string) (*openedFile, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFileUpload, err)
	}

	opened := &openedFile{reader: rc, closer: rc, size: f.Size}

	declared := ""
	if f.ContentType != "" {
		if mt, _, err := mime.ParseMediaType(f.ContentType); err == nil {
			declared = strings.ToLower(mt)
		}
	}

	if declared == "" || declared == "application/octet-stream" {
		head := make([]byte, sniffLen)
		n, err := io.ReadFull(rc, head)
		if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
			rc.Close()
			return nil, fmt.Errorf("%w: %v", ErrFileUpload, err)
		}
		head = head[:n]
		declared = matchAllowed(mimetype.Detect(head), allowed)
		opened.reader = io.MultiReader(bytes.NewReader(head), rc)
	}

	defaultExt, ok := allowed[declared]
	if !ok {
		return opened, nil
	}
	opened.contentType = declared
	opened.ext = defaultExt
	if ext := strings.ToLower(filepath.Ext(f.Filename)); knownExtensions[ext] == declared {
		opened.ext = ext
	}
	return opened, nil
}

// matchAllowed 识别结果（含父类型）命中 allowed 时返回对应的类型
func matchAllowed(m *mimetype.MIME, allowed map[string]string) string {
	for t := range allowed {
		if m.Is(t) {
			return t
		}
	}
	for p := m.Parent(); p != nil; p = p.Parent() {
		if _, ok := allowed[p.String()]; ok {
			return p.String()
		}
	}
	return m.String()
}
