package service

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"vidshare/internal/api/dto"
	"vidshare/internal/infra/storage"
	"vidshare/internal/model"
	"vidshare/internal/testutil"
)

func validForm() *dto.UploadForm {
	return &dto.UploadForm{Title: "My clip", Description: "A short clip"}
}

func countVideos(t *testing.T, env *testEnv) int64 {
	t.Helper()
	var n int64
	if err := env.db.Model(&model.Video{}).Count(&n).Error; err != nil {
		t.Fatalf("count videos: %v", err)
	}
	return n
}

func storedFiles(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil && !os.IsNotExist(err) {
		t.Fatalf("read dir: %v", err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

func TestUploadValidation(t *testing.T) {
	cases := []struct {
		name      string
		form      *dto.UploadForm
		video     *UploadFile
		thumbnail *UploadFile
		want      error
	}{
		{
			name:      "missing description",
			form:      &dto.UploadForm{Title: "t"},
			video:     uploadFile("a.mp4", "video/mp4", mp4Header, 0),
			thumbnail: uploadFile("a.jpg", "image/jpeg", jpegHeader, 0),
			want:      ErrFieldsRequired,
		},
		{
			name:      "missing video",
			form:      validForm(),
			thumbnail: uploadFile("a.jpg", "image/jpeg", jpegHeader, 0),
			want:      ErrFieldsRequired,
		},
		{
			name:      "png as video",
			form:      validForm(),
			video:     uploadFile("a.png", "image/png", pngHeader, 0),
			thumbnail: uploadFile("a.jpg", "image/jpeg", jpegHeader, 0),
			want:      ErrInvalidVideoFormat,
		},
		{
			name:      "video as thumbnail",
			form:      validForm(),
			video:     uploadFile("a.mp4", "video/mp4", mp4Header, 0),
			thumbnail: uploadFile("b.mp4", "video/mp4", mp4Header, 0),
			want:      ErrInvalidThumbnailFormat,
		},
		{
			name:      "video over 100MB",
			form:      validForm(),
			video:     uploadFile("a.mp4", "video/mp4", mp4Header, 101<<20),
			thumbnail: uploadFile("a.jpg", "image/jpeg", jpegHeader, 0),
			want:      ErrVideoTooLarge,
		},
		{
			name:      "thumbnail over 5MB",
			form:      validForm(),
			video:     uploadFile("a.mp4", "video/mp4", mp4Header, 0),
			thumbnail: uploadFile("a.jpg", "image/jpeg", jpegHeader, 5<<20+1),
			want:      ErrThumbnailTooLarge,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			env := newTestEnv(t)
			owner := testutil.CreateUser(t, env.db, "owner")

			_, err := env.videoService().Upload(context.Background(), owner.ID, tc.form, tc.video, tc.thumbnail)
			if !errors.Is(err, tc.want) {
				t.Fatalf("err = %v, want %v", err, tc.want)
			}
			if n := countVideos(t, env); n != 0 {
				t.Errorf("videos = %d, want 0", n)
			}
			if files := storedFiles(t, filepath.Join(env.root, "Videos")); len(files) != 0 {
				t.Errorf("files left behind: %v", files)
			}
		})
	}
}

func TestUploadStoresFilesAndRow(t *testing.T) {
	env := newTestEnv(t)
	owner := testutil.CreateUser(t, env.db, "owner")
	ctx := context.Background()

	video, err := env.videoService().Upload(ctx, owner.ID, validForm(),
		uploadFile("holiday.MP4", "video/mp4", mp4Header, 0),
		uploadFile("cover.jpeg", "image/jpeg", jpegHeader, 0),
	)
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}

	var rows []model.Video
	env.db.Find(&rows)
	if len(rows) != 1 {
		t.Fatalf("rows = %d, want 1", len(rows))
	}
	row := rows[0]
	if row.VideoURL != video.VideoURL || row.Thumbnail != video.Thumbnail || row.UserID != owner.ID {
		t.Errorf("row = %+v, returned = %+v", row, video)
	}
	if filepath.Ext(row.VideoURL) != ".mp4" || filepath.Ext(row.Thumbnail) != ".jpeg" {
		t.Errorf("unexpected extensions: %s %s", row.VideoURL, row.Thumbnail)
	}

	for _, p := range []string{row.VideoURL, row.Thumbnail} {
		file, err := env.store.FilePath(p)
		if err != nil {
			t.Fatalf("FilePath(%s): %v", p, err)
		}
		if _, err := os.Stat(file); err != nil {
			t.Errorf("stored file %s missing: %v", p, err)
		}
	}

	if got := env.events.types(); len(got) != 1 || got[0] != "video.created" {
		t.Errorf("events = %v", got)
	}
}

func TestUploadSniffsUndeclaredContentType(t *testing.T) {
	env := newTestEnv(t)
	owner := testutil.CreateUser(t, env.db, "owner")

	video, err := env.videoService().Upload(context.Background(), owner.ID, validForm(),
		uploadFile("clip", "application/octet-stream", mp4Header, 0),
		uploadFile("cover", "", pngHeader, 0),
	)
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if filepath.Ext(video.VideoURL) != ".mp4" || filepath.Ext(video.Thumbnail) != ".png" {
		t.Errorf("paths = %s %s", video.VideoURL, video.Thumbnail)
	}

	// 内容不是视频时仍被拒绝
	_, err = env.videoService().Upload(context.Background(), owner.ID, validForm(),
		uploadFile("clip.mp4", "application/octet-stream", pngHeader, 0),
		uploadFile("cover.png", "image/png", pngHeader, 0),
	)
	if !errors.Is(err, ErrInvalidVideoFormat) {
		t.Errorf("err = %v, want ErrInvalidVideoFormat", err)
	}
}

func TestUploadRemovesVideoWhenThumbnailFails(t *testing.T) {
	env := newTestEnv(t)
	owner := testutil.CreateUser(t, env.db, "owner")
	kind := storage.KindThumbnail
	env.store.failKind = &kind

	_, err := env.videoService().Upload(context.Background(), owner.ID, validForm(),
		uploadFile("a.mp4", "video/mp4", mp4Header, 0),
		uploadFile("a.jpg", "image/jpeg", jpegHeader, 0),
	)
	if !errors.Is(err, ErrUploadFailed) {
		t.Fatalf("err = %v, want ErrUploadFailed", err)
	}
	if files := storedFiles(t, filepath.Join(env.root, "Videos")); len(files) != 0 {
		t.Errorf("orphan video files: %v", files)
	}
	if n := countVideos(t, env); n != 0 {
		t.Errorf("videos = %d, want 0", n)
	}
}

func TestUploadRemovesFilesWhenInsertFails(t *testing.T) {
	env := newTestEnv(t)
	owner := testutil.CreateUser(t, env.db, "owner")
	if err := env.db.Migrator().DropTable(&model.Video{}); err != nil {
		t.Fatalf("drop table: %v", err)
	}

	_, err := env.videoService().Upload(context.Background(), owner.ID, validForm(),
		uploadFile("a.mp4", "video/mp4", mp4Header, 0),
		uploadFile("a.jpg", "image/jpeg", jpegHeader, 0),
	)
	if !errors.Is(err, ErrUploadFailed) {
		t.Fatalf("err = %v, want ErrUploadFailed", err)
	}
	for _, dir := range []string{"Videos", "Thumbnails"} {
		if files := storedFiles(t, filepath.Join(env.root, dir)); len(files) != 0 {
			t.Errorf("orphan files in %s: %v", dir, files)
		}
	}
	if got := env.events.types(); len(got) != 0 {
		t.Errorf("no event expected, got %v", got)
	}
}

func TestDelete(t *testing.T) {
	env := newTestEnv(t)
	owner := testutil.CreateUser(t, env.db, "owner")
	other := testutil.CreateUser(t, env.db, "other")
	svc := env.videoService()
	ctx := context.Background()

	video, err := svc.Upload(ctx, owner.ID, validForm(),
		uploadFile("a.mp4", "video/mp4", mp4Header, 0),
		uploadFile("a.jpg", "image/jpeg", jpegHeader, 0),
	)
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	env.db.Create(&model.Comment{UserID: other.ID, VideoID: video.ID, Body: "nice"})
	env.db.Create(&model.Like{UserID: other.ID, VideoID: video.ID})
	env.db.Create(&model.Subscription{SubscriberID: other.ID, ChannelID: owner.ID})

	if err := svc.Delete(ctx, other.ID, video.ID); !errors.Is(err, ErrVideoNoPermission) {
		t.Fatalf("non-owner delete err = %v", err)
	}
	if err := svc.Delete(ctx, owner.ID, video.ID+100); !errors.Is(err, ErrVideoNoPermission) {
		t.Fatalf("unknown video delete err = %v", err)
	}
	if n := countVideos(t, env); n != 1 {
		t.Fatalf("video removed by a refused delete")
	}

	if err := svc.Delete(ctx, owner.ID, video.ID); err != nil {
		t.Fatalf("owner delete: %v", err)
	}

	var comments, likes, subs int64
	env.db.Model(&model.Comment{}).Count(&comments)
	env.db.Model(&model.Like{}).Count(&likes)
	env.db.Model(&model.Subscription{}).Count(&subs)
	if countVideos(t, env) != 0 || comments != 0 || likes != 0 {
		t.Errorf("rows left: videos=%d comments=%d likes=%d", countVideos(t, env), comments, likes)
	}
	if subs != 1 {
		t.Errorf("subscriptions must be untouched, got %d", subs)
	}
	for _, p := range []string{video.VideoURL, video.Thumbnail} {
		file, _ := env.store.FilePath(p)
		if _, err := os.Stat(file); !os.IsNotExist(err) {
			t.Errorf("file %s not removed", p)
		}
	}
	if got := env.events.types(); len(got) != 2 || got[1] != "video.deleted" {
		t.Errorf("events = %v", got)
	}
}

func TestWatchCountsEveryView(t *testing.T) {
	env := newTestEnv(t)
	owner := testutil.CreateUser(t, env.db, "owner")
	viewer := testutil.CreateUser(t, env.db, "viewer")
	video := testutil.CreateVideo(t, env.db, owner, "clip", "desc", 7)
	svc := env.videoService()
	ctx := context.Background()

	page, err := svc.Watch(ctx, video.ID, 0, true)
	if err != nil {
		t.Fatalf("Watch: %v", err)
	}
	if page.Video.Views != 8 {
		t.Errorf("displayed views = %d, want 8", page.Video.Views)
	}
	if page.Liked || page.Subscribed || page.IsOwner {
		t.Errorf("anonymous viewer flags = %+v", page)
	}

	if _, err := svc.Watch(ctx, video.ID, viewer.ID, true); err != nil {
		t.Fatalf("Watch: %v", err)
	}
	if _, err := svc.Watch(ctx, video.ID, viewer.ID, false); err != nil {
		t.Fatalf("Watch without counting: %v", err)
	}

	stored, _ := env.videos.GetByID(ctx, video.ID)
	if stored.Views != 9 {
		t.Errorf("stored views = %d, want 9", stored.Views)
	}

	if _, err := svc.Watch(ctx, video.ID+100, 0, true); !errors.Is(err, ErrVideoNotFound) {
		t.Errorf("unknown video err = %v", err)
	}
}

func TestWatchViewerState(t *testing.T) {
	env := newTestEnv(t)
	owner := testutil.CreateUser(t, env.db, "owner")
	viewer := testutil.CreateUser(t, env.db, "viewer")
	video := testutil.CreateVideo(t, env.db, owner, "clip", "desc", 0)
	for _, title := range []string{"r1", "r2", "r3", "r4"} {
		testutil.CreateVideo(t, env.db, owner, title, "", 0)
	}
	env.db.Create(&model.Like{UserID: viewer.ID, VideoID: video.ID})
	env.db.Create(&model.Subscription{SubscriberID: viewer.ID, ChannelID: owner.ID})
	env.db.Create(&model.Comment{UserID: viewer.ID, VideoID: video.ID, Body: "first"})
	env.db.Create(&model.Comment{UserID: owner.ID, VideoID: video.ID, Body: "second"})

	page, err := env.videoService().Watch(context.Background(), video.ID, viewer.ID, true)
	if err != nil {
		t.Fatalf("Watch: %v", err)
	}
	if !page.Liked || !page.Subscribed || page.IsOwner {
		t.Errorf("viewer flags = liked:%v subscribed:%v owner:%v", page.Liked, page.Subscribed, page.IsOwner)
	}
	if page.Likes != 1 || page.Subscribers != 1 {
		t.Errorf("counts = %d likes, %d subscribers", page.Likes, page.Subscribers)
	}
	if page.CommentCount != 2 {
		t.Errorf("comment count = %d, want 2", page.CommentCount)
	}
	if len(page.Comments) != 2 || page.Comments[0].Comment != "second" || page.Comments[0].Username != "owner" {
		t.Errorf("comments = %+v", page.Comments)
	}
	if len(page.Related) != RelatedLimit {
		t.Errorf("related = %d, want %d", len(page.Related), RelatedLimit)
	}
	if page.Video.Username != "owner" || page.Video.VideoURL != "/Uploads/Videos/clip.mp4" {
		t.Errorf("video card = %+v", page.Video)
	}
}

func TestListTop(t *testing.T) {
	env := newTestEnv(t)
	owner := testutil.CreateUser(t, env.db, "owner")
	for i, title := range []string{"a", "b", "c", "d", "e", "f", "g"} {
		testutil.CreateVideo(t, env.db, owner, title, "", int64(i))
	}

	cards, err := env.videoService().ListTop(context.Background())
	if err != nil {
		t.Fatalf("ListTop: %v", err)
	}
	if len(cards) != HomeLimit {
		t.Fatalf("len = %d, want %d", len(cards), HomeLimit)
	}
	if cards[0].Title != "g" || cards[HomeLimit-1].Title != "b" {
		t.Errorf("order = %s..%s", cards[0].Title, cards[HomeLimit-1].Title)
	}
}
