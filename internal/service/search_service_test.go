package service

import (
	"context"
	"errors"
	"testing"

	infraES "vidshare/internal/infra/elasticsearch"
	"vidshare/internal/testutil"
)

type fakeIndex struct {
	ids   []int64
	maxID int64
	err   error
	calls int
}

func (f *fakeIndex) SearchVideoIDs(_ context.Context, _ string, _ int) (*infraES.SearchHits, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return &infraES.SearchHits{IDs: f.ids, MaxIndexedID: f.maxID}, nil
}

func TestSearchCaseInsensitiveByViews(t *testing.T) {
	env := newTestEnv(t)
	owner := testutil.CreateUser(t, env.db, "owner")
	testutil.CreateVideo(t, env.db, owner, "Funny Cat", "", 10)
	testutil.CreateVideo(t, env.db, owner, "CAT tricks", "", 50)
	testutil.CreateVideo(t, env.db, owner, "dog day", "my cat friend", 5)
	testutil.CreateVideo(t, env.db, owner, "dog only", "", 100)

	svc := NewSearchService(env.videos, env.store, nil, 100)
	results, err := svc.Search(context.Background(), "cat")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}

	want := []string{"CAT tricks", "Funny Cat", "dog day"}
	if len(results) != len(want) {
		t.Fatalf("results = %+v", results)
	}
	for i, title := range want {
		if results[i].Title != title {
			t.Errorf("results[%d] = %q, want %q", i, results[i].Title, title)
		}
	}
	if results[0].Username != "owner" || results[0].Thumbnail != "/Uploads/Thumbnails/CAT tricks.jpg" {
		t.Errorf("result = %+v", results[0])
	}
}

func TestSearchBlankQuery(t *testing.T) {
	env := newTestEnv(t)
	index := &fakeIndex{}
	svc := NewSearchService(env.videos, env.store, index, 100)

	results, err := svc.Search(context.Background(), "   ")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if results == nil || len(results) != 0 {
		t.Errorf("results = %#v, want empty non-nil slice", results)
	}
	if index.calls != 0 {
		t.Error("blank query must not hit the index")
	}
}

func TestSearchUsesIndexThenFallsBack(t *testing.T) {
	env := newTestEnv(t)
	owner := testutil.CreateUser(t, env.db, "owner")
	low := testutil.CreateVideo(t, env.db, owner, "cat low", "", 1)
	high := testutil.CreateVideo(t, env.db, owner, "cat high", "", 9)
	testutil.CreateVideo(t, env.db, owner, "dog", "", 7)

	// 索引结果中含已删除的视频 999，回表后被过滤，并按数据库播放量排序
	index := &fakeIndex{ids: []int64{low.ID, 999, high.ID}, maxID: 999}
	svc := NewSearchService(env.videos, env.store, index, 100)

	results, err := svc.Search(context.Background(), "cat")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 2 || results[0].ID != high.ID || results[1].ID != low.ID {
		t.Errorf("indexed results = %+v", results)
	}

	index.err = errors.New("connection refused")
	results, err = svc.Search(context.Background(), "cat")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 2 || index.calls != 2 {
		t.Errorf("fallback results = %d, want 2", len(results))
	}
}

func TestSearchIncludesVideosNewerThanIndex(t *testing.T) {
	env := newTestEnv(t)
	owner := testutil.CreateUser(t, env.db, "owner")
	indexed := testutil.CreateVideo(t, env.db, owner, "cat indexed", "", 1)
	fresh := testutil.CreateVideo(t, env.db, owner, "Cat just uploaded", "", 5)
	testutil.CreateVideo(t, env.db, owner, "dog just uploaded", "", 8)

	// 索引只同步到 indexed，之后上传的视频尚未被 worker 处理
	index := &fakeIndex{ids: []int64{indexed.ID}, maxID: indexed.ID}
	withIndex, err := NewSearchService(env.videos, env.store, index, 100).Search(context.Background(), "cat")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	fromDB, err := NewSearchService(env.videos, env.store, nil, 100).Search(context.Background(), "cat")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}

	if len(withIndex) != len(fromDB) {
		t.Fatalf("index-backed results = %d, db results = %d", len(withIndex), len(fromDB))
	}
	for i := range fromDB {
		if withIndex[i].ID != fromDB[i].ID {
			t.Errorf("results[%d] = %d, want %d", i, withIndex[i].ID, fromDB[i].ID)
		}
	}
	if withIndex[0].ID != fresh.ID {
		t.Errorf("first result = %+v, want the fresh upload", withIndex[0])
	}
}

func TestSearchMergedResultsAreCapped(t *testing.T) {
	env := newTestEnv(t)
	owner := testutil.CreateUser(t, env.db, "owner")
	a := testutil.CreateVideo(t, env.db, owner, "clip a", "", 3)
	b := testutil.CreateVideo(t, env.db, owner, "clip b", "", 1)
	c := testutil.CreateVideo(t, env.db, owner, "clip c", "", 2)

	index := &fakeIndex{ids: []int64{a.ID, b.ID}, maxID: b.ID}
	results, err := NewSearchService(env.videos, env.store, index, 2).Search(context.Background(), "clip")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 2 || results[0].ID != a.ID || results[1].ID != c.ID {
		t.Errorf("results = %+v, want [clip a, clip c]", results)
	}
}

func TestSearchCapsResults(t *testing.T) {
	env := newTestEnv(t)
	owner := testutil.CreateUser(t, env.db, "owner")
	for i := 0; i < 5; i++ {
		testutil.CreateVideo(t, env.db, owner, "clip"+string(rune('a'+i)), "", int64(i))
	}

	results, err := NewSearchService(env.videos, env.store, nil, 2).Search(context.Background(), "clip")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 2 {
		t.Errorf("len = %d, want 2", len(results))
	}
}
