package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/kerbaras/novelshelf/pkg/api"
	"github.com/kerbaras/novelshelf/pkg/data"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errOffline = &api.NetworkError{Method: "GET", Path: "/api/novels", Err: errors.New("connection refused")}

func TestLibraryHomeFetchesSectionsConcurrently(t *testing.T) {
	var mu sync.Mutex
	var seen []api.ListOptions
	var inFlight, peak atomic.Int32

	novels := &mockNovelAPI{
		listNovelsFunc: func(ctx context.Context, opts api.ListOptions) ([]data.Novel, error) {
			n := inFlight.Add(1)
			for {
				p := peak.Load()
				if n <= p || peak.CompareAndSwap(p, n) {
					break
				}
			}
			time.Sleep(20 * time.Millisecond)
			inFlight.Add(-1)

			mu.Lock()
			seen = append(seen, opts)
			mu.Unlock()
			return []data.Novel{{ID: opts.Sort + opts.Status}}, nil
		},
	}

	home, err := NewLibrary(novels, nil, 10, nil).Home(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "latest", home.Latest[0].ID)
	assert.Equal(t, "popular", home.Popular[0].ID)
	assert.Equal(t, "completed", home.Completed[0].ID)
	assert.Len(t, seen, 3)
	assert.Greater(t, peak.Load(), int32(1), "sections should be fetched in parallel")
}

func TestLibraryHomeFailsAsAWhole(t *testing.T) {
	novels := &mockNovelAPI{
		listNovelsFunc: func(ctx context.Context, opts api.ListOptions) ([]data.Novel, error) {
			if opts.Sort == "popular" {
				return nil, &api.Error{StatusCode: 500, Method: "GET", Path: "/api/novels"}
			}
			return []data.Novel{{ID: "n"}}, nil
		},
	}

	home, err := NewLibrary(novels, nil, 10, nil).Home(context.Background())
	assert.Error(t, err)
	assert.Nil(t, home)
	assert.Contains(t, err.Error(), "popular")
}

func TestLibraryBrowseMapsQuery(t *testing.T) {
	var got api.ListOptions
	novels := &mockNovelAPI{
		listNovelsFunc: func(ctx context.Context, opts api.ListOptions) ([]data.Novel, error) {
			got = opts
			return []data.Novel{{ID: "a"}, {ID: "b"}}, nil
		},
	}

	pager := NewLibrary(novels, nil, 2, nil).Browse()
	require.NoError(t, pager.SetSearch(context.Background(), "sword"))

	assert.Equal(t, api.ListOptions{Page: 1, Limit: 2, Search: "sword"}, got)
	assert.Len(t, pager.Items(), 2)
	assert.True(t, pager.HasMore())
}

func TestLibraryChapterIsCached(t *testing.T) {
	cache := newMockCache()
	novels := &mockNovelAPI{
		getChapterFunc: func(ctx context.Context, novelID string, number int) (*data.Chapter, error) {
			return &data.Chapter{ID: "c1", NovelID: novelID, Number: number, Content: "<p>hi</p>"}, nil
		},
	}

	chapter, cached, err := NewLibrary(novels, cache, 10, nil).Chapter(context.Background(), "n1", 1)
	require.NoError(t, err)
	assert.False(t, cached)
	assert.Equal(t, "c1", chapter.ID)

	stored, _ := cache.GetChapter("n1", 1)
	require.NotNil(t, stored)
	assert.Equal(t, "<p>hi</p>", stored.Content)
}

func TestLibraryChapterOfflineFallback(t *testing.T) {
	cache := newMockCache()
	cache.SaveChapter(&data.Chapter{ID: "c2", NovelID: "n1", Number: 2, Content: "cached"})

	novels := &mockNovelAPI{
		getChapterFunc: func(ctx context.Context, novelID string, number int) (*data.Chapter, error) {
			return nil, errOffline
		},
	}
	lib := NewLibrary(novels, cache, 10, nil)

	chapter, cached, err := lib.Chapter(context.Background(), "n1", 2)
	require.NoError(t, err)
	assert.True(t, cached)
	assert.Equal(t, "cached", chapter.Content)

	_, _, err = lib.Chapter(context.Background(), "n1", 3)
	assert.True(t, api.IsNetwork(err), "uncached chapter should surface the network error")
}

func TestLibraryChapterServerErrorDoesNotUseCache(t *testing.T) {
	cache := newMockCache()
	cache.SaveChapter(&data.Chapter{ID: "c1", NovelID: "n1", Number: 1, Content: "cached"})

	novels := &mockNovelAPI{
		getChapterFunc: func(ctx context.Context, novelID string, number int) (*data.Chapter, error) {
			return nil, &api.Error{StatusCode: 404}
		},
	}

	_, _, err := NewLibrary(novels, cache, 10, nil).Chapter(context.Background(), "n1", 1)
	assert.True(t, api.IsNotFound(err))
}

func TestLibraryChaptersOfflineFallback(t *testing.T) {
	cache := newMockCache()
	cache.SaveChapter(&data.Chapter{ID: "c2", NovelID: "n1", Number: 2})
	cache.SaveChapter(&data.Chapter{ID: "c1", NovelID: "n1", Number: 1})

	novels := &mockNovelAPI{
		listChaptersFunc: func(ctx context.Context, novelID string, page, limit int) ([]data.Chapter, error) {
			return nil, errOffline
		},
	}

	chapters, cached, err := NewLibrary(novels, cache, 10, nil).Chapters(context.Background(), "n1", 1)
	require.NoError(t, err)
	assert.True(t, cached)
	require.Len(t, chapters, 2)
	assert.Equal(t, 1, chapters[0].Number)
}

func TestLibraryChaptersOfflinePaging(t *testing.T) {
	cache := newMockCache()
	for n := 1; n <= 3; n++ {
		cache.SaveChapter(&data.Chapter{ID: fmt.Sprintf("c%d", n), NovelID: "n1", Number: n})
	}
	novels := &mockNovelAPI{
		listChaptersFunc: func(ctx context.Context, novelID string, page, limit int) ([]data.Chapter, error) {
			return nil, errOffline
		},
	}
	lib := NewLibrary(novels, cache, 2, nil)

	tests := []struct {
		page int
		want []int
	}{
		{1, []int{1, 2}},
		{2, []int{3}},
		{3, []int{}},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("page %d", tt.page), func(t *testing.T) {
			chapters, cached, err := lib.Chapters(context.Background(), "n1", tt.page)
			require.NoError(t, err)
			assert.True(t, cached)
			got := []int{}
			for _, c := range chapters {
				got = append(got, c.Number)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLibraryAllChaptersOffline(t *testing.T) {
	cache := newMockCache()
	for n := 1; n <= 4; n++ {
		cache.SaveChapter(&data.Chapter{ID: fmt.Sprintf("c%d", n), NovelID: "n1", Number: n, Content: fmt.Sprintf("<p>%d</p>", n)})
	}
	novels := &mockNovelAPI{
		listChaptersFunc: func(ctx context.Context, novelID string, page, limit int) ([]data.Chapter, error) {
			return nil, errOffline
		},
		getChapterFunc: func(ctx context.Context, novelID string, number int) (*data.Chapter, error) {
			return nil, errOffline
		},
	}

	done := make(chan struct{})
	var chapters []*data.Chapter
	var err error
	go func() {
		defer close(done)
		chapters, err = NewLibrary(novels, cache, 2, nil).AllChapters(context.Background(), "n1")
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("AllChapters did not finish with the backend offline")
	}

	require.NoError(t, err)
	require.Len(t, chapters, 4)
	for i, c := range chapters {
		assert.Equal(t, i+1, c.Number)
		assert.Equal(t, fmt.Sprintf("<p>%d</p>", i+1), c.Content)
	}
}

func TestLibraryAllChapters(t *testing.T) {
	novels := &mockNovelAPI{
		listChaptersFunc: func(ctx context.Context, novelID string, page, limit int) ([]data.Chapter, error) {
			var out []data.Chapter
			start := (page-1)*limit + 1
			for n := start; n < start+limit && n <= 5; n++ {
				out = append(out, data.Chapter{ID: fmt.Sprintf("c%d", n), NovelID: novelID, Number: n})
			}
			return out, nil
		},
		getChapterFunc: func(ctx context.Context, novelID string, number int) (*data.Chapter, error) {
			return &data.Chapter{ID: fmt.Sprintf("c%d", number), NovelID: novelID, Number: number, Content: fmt.Sprintf("<p>%d</p>", number)}, nil
		},
	}

	chapters, err := NewLibrary(novels, newMockCache(), 2, nil).AllChapters(context.Background(), "n1")
	require.NoError(t, err)
	require.Len(t, chapters, 5)
	for i, c := range chapters {
		assert.Equal(t, i+1, c.Number)
		assert.NotEmpty(t, c.Content)
	}
}

func TestLibraryAllChaptersPropagatesErrors(t *testing.T) {
	novels := &mockNovelAPI{
		listChaptersFunc: func(ctx context.Context, novelID string, page, limit int) ([]data.Chapter, error) {
			return []data.Chapter{{Number: 1}}, nil
		},
		getChapterFunc: func(ctx context.Context, novelID string, number int) (*data.Chapter, error) {
			return nil, &api.Error{StatusCode: 500}
		},
	}

	_, err := NewLibrary(novels, nil, 10, nil).AllChapters(context.Background(), "n1")
	assert.Error(t, err)
}

func TestLibraryEditNovelIsOptimistic(t *testing.T) {
	release := make(chan struct{})
	var sent api.NovelPatch
	novels := &mockNovelAPI{
		updateNovelFunc: func(ctx context.Context, id string, patch api.NovelPatch) (*data.Novel, error) {
			<-release
			sent = patch
			return nil, &api.Error{StatusCode: 500}
		},
	}
	var reported []error
	lib := NewLibrary(novels, nil, 10, nil)
	lib.OnError(func(err error) bool {
		reported = append(reported, err)
		return false
	})

	title := "New Title"
	status := data.NovelCompleted
	original := &data.Novel{ID: "n1", Title: "Old", Status: data.NovelOngoing}

	updated := lib.EditNovel(context.Background(), original, api.NovelPatch{Title: &title, Status: &status})

	assert.Equal(t, "New Title", updated.Title)
	assert.Equal(t, data.NovelCompleted, updated.Status)
	assert.Equal(t, "Old", original.Title, "caller's novel must not be mutated")

	close(release)
	lib.Wait()
	assert.Equal(t, &title, sent.Title)
	assert.Len(t, reported, 1, "failure is reported, not rolled back")
	assert.Equal(t, "New Title", updated.Title)
}
