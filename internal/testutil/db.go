// Package testutil 提供测试用的内存数据库与数据构造工具
package testutil

import (
	"testing"

	"vidshare/internal/model"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// NewDB 打开一个已迁移的内存 sqlite 数据库。
// 只保留一个连接，否则每个连接会看到各自独立的 :memory: 库。
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("get sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := db.AutoMigrate(model.All()...); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	return db
}

// CreateUser 插入一个用户（密码字段为占位哈希）
func CreateUser(t *testing.T, db *gorm.DB, username string) *model.User {
	t.Helper()
	user := &model.User{
		Username: username,
		Email:    username + "@example.com",
		Password: "not-a-real-hash",
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("create user %s: %v", username, err)
	}
	return user
}

// CreateVideo 插入一个视频
func CreateVideo(t *testing.T, db *gorm.DB, owner *model.User, title, description string, views int64) *model.Video {
	t.Helper()
	video := &model.Video{
		UserID:      owner.ID,
		Title:       title,
		Description: description,
		VideoURL:    "Uploads/Videos/" + title + ".mp4",
		Thumbnail:   "Uploads/Thumbnails/" + title + ".jpg",
		Views:       views,
	}
	if err := db.Create(video).Error; err != nil {
		t.Fatalf("create video %s: %v", title, err)
	}
	return video
}
