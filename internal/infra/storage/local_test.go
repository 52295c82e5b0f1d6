package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLocalStoreSaveCreatesDirectories(t *testing.T) {
	root := filepath.Join(t.TempDir(), "Uploads")
	store := NewLocalStore(root, "Videos", "Thumbnails")
	ctx := context.Background()

	p, err := store.Save(ctx, KindVideo, "vid_1.mp4", strings.NewReader("video-bytes"), 11, "video/mp4")
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if p != "Uploads/Videos/vid_1.mp4" {
		t.Errorf("path = %q", p)
	}
	if got := store.URL(p); got != "/Uploads/Videos/vid_1.mp4" {
		t.Errorf("URL = %q", got)
	}

	data, err := os.ReadFile(filepath.Join(root, "Videos", "vid_1.mp4"))
	if err != nil {
		t.Fatalf("read stored file: %v", err)
	}
	if string(data) != "video-bytes" {
		t.Errorf("content = %q", data)
	}

	thumb, err := store.Save(ctx, KindThumbnail, "thumb_1.jpg", strings.NewReader("jpg"), 3, "image/jpeg")
	if err != nil {
		t.Fatalf("Save thumbnail: %v", err)
	}
	if thumb != "Uploads/Thumbnails/thumb_1.jpg" {
		t.Errorf("thumbnail path = %q", thumb)
	}
}

func TestLocalStoreRefusesOverwriteAndBadNames(t *testing.T) {
	store := NewLocalStore(filepath.Join(t.TempDir(), "Uploads"), "Videos", "Thumbnails")
	ctx := context.Background()

	if _, err := store.Save(ctx, KindVideo, "a.mp4", strings.NewReader("1"), 1, ""); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if _, err := store.Save(ctx, KindVideo, "a.mp4", strings.NewReader("2"), 1, ""); err == nil {
		t.Error("expected second save with the same name to fail")
	}
	for _, name := range []string{"", "..", "../x.mp4", `a\b.mp4`} {
		if _, err := store.Save(ctx, KindVideo, name, strings.NewReader("x"), 1, ""); !errors.Is(err, ErrInvalidPath) {
			t.Errorf("Save(%q) err = %v, want ErrInvalidPath", name, err)
		}
	}
}

func TestLocalStoreRemove(t *testing.T) {
	root := filepath.Join(t.TempDir(), "Uploads")
	store := NewLocalStore(root, "Videos", "Thumbnails")
	ctx := context.Background()

	p, err := store.Save(ctx, KindVideo, "v.mp4", strings.NewReader("x"), 1, "")
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := store.Remove(ctx, p); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if _, err := os.Stat(filepath.Join(root, "Videos", "v.mp4")); !os.IsNotExist(err) {
		t.Errorf("file still exists: %v", err)
	}
	if err := store.Remove(ctx, p); err != nil {
		t.Errorf("removing a missing file should succeed, got %v", err)
	}

	for _, bad := range []string{"/etc/passwd", "Uploads/../secret", "Other/Videos/v.mp4"} {
		if err := store.Remove(ctx, bad); !errors.Is(err, ErrInvalidPath) {
			t.Errorf("Remove(%q) err = %v, want ErrInvalidPath", bad, err)
		}
	}
}

func TestLocalStoreSaveHonoursCancelledContext(t *testing.T) {
	root := filepath.Join(t.TempDir(), "Uploads")
	store := NewLocalStore(root, "Videos", "Thumbnails")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := store.Save(ctx, KindVideo, "c.mp4", strings.NewReader("data"), 4, ""); !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if _, err := os.Stat(filepath.Join(root, "Videos", "c.mp4")); !os.IsNotExist(err) {
		t.Error("partial file must be removed")
	}
}
