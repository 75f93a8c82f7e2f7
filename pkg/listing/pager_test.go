package listing

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBackend struct {
	mu      sync.Mutex
	total   int
	queries []Query
	fail    bool
}

func (f *fakeBackend) fetch(ctx context.Context, q Query) ([]int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries = append(f.queries, q)
	if f.fail {
		return nil, errors.New("server unavailable")
	}
	var out []int
	start := (q.Page - 1) * q.Limit
	for i := start; i < start+q.Limit && i < f.total; i++ {
		out = append(out, i)
	}
	return out, nil
}

func TestPagerHasMore(t *testing.T) {
	backend := &fakeBackend{total: 25}
	p := NewPager(backend.fetch, 10, nil)
	ctx := context.Background()

	require.NoError(t, p.Reload(ctx))
	assert.Len(t, p.Items(), 10)
	assert.True(t, p.HasMore())

	require.NoError(t, p.NextPage(ctx))
	assert.Len(t, p.Items(), 20)
	assert.True(t, p.HasMore())

	require.NoError(t, p.NextPage(ctx))
	assert.Len(t, p.Items(), 25)
	assert.False(t, p.HasMore(), "short page ends pagination")
	assert.Equal(t, 3, p.Query().Page)

	require.NoError(t, p.NextPage(ctx))
	assert.Len(t, backend.queries, 3, "no fetch once exhausted")
}

func TestPagerExactMultipleNeedsOneMoreFetch(t *testing.T) {
	backend := &fakeBackend{total: 10}
	p := NewPager(backend.fetch, 10, nil)
	ctx := context.Background()

	require.NoError(t, p.Reload(ctx))
	assert.True(t, p.HasMore())

	require.NoError(t, p.NextPage(ctx))
	assert.False(t, p.HasMore())
	assert.Len(t, p.Items(), 10)
}

func TestPagerFilterResetsPage(t *testing.T) {
	backend := &fakeBackend{total: 100}
	p := NewPager(backend.fetch, 10, nil)
	ctx := context.Background()

	p.Reload(ctx)
	p.NextPage(ctx)
	p.NextPage(ctx)
	assert.Equal(t, 3, p.Query().Page)

	require.NoError(t, p.SetStatus(ctx, "completed"))
	q := p.Query()
	assert.Equal(t, 1, q.Page)
	assert.Equal(t, "completed", q.Status)
	assert.Len(t, p.Items(), 10)

	require.NoError(t, p.SetSort(ctx, "popular"))
	require.NoError(t, p.SetCategory(ctx, "fantasy"))
	require.NoError(t, p.SetSearch(ctx, "dragon"))

	last := backend.queries[len(backend.queries)-1]
	assert.Equal(t, Query{Page: 1, Limit: 10, Search: "dragon", Status: "completed", Category: "fantasy", Sort: "popular"}, last)
}

func TestPagerSetQueryKeepsLimit(t *testing.T) {
	backend := &fakeBackend{total: 100}
	p := NewPager(backend.fetch, 10, nil)
	ctx := context.Background()

	p.Reload(ctx)
	p.NextPage(ctx)

	require.NoError(t, p.SetQuery(ctx, Query{Page: 7, Limit: 99, Search: "sword", Sort: "title"}))
	assert.Equal(t, Query{Page: 1, Limit: 10, Search: "sword", Sort: "title"}, p.Query())
	assert.Len(t, backend.queries, 3, "one fetch for the whole change")
}

func TestPagerErrorShowsEmptyState(t *testing.T) {
	backend := &fakeBackend{total: 30}
	p := NewPager(backend.fetch, 10, nil)
	ctx := context.Background()

	require.NoError(t, p.Reload(ctx))
	assert.Len(t, p.Items(), 10)

	backend.fail = true
	err := p.Reload(ctx)
	assert.Error(t, err)
	assert.Empty(t, p.Items())
	assert.False(t, p.HasMore())
	assert.Error(t, p.Err())
	assert.True(t, p.Loaded())
	assert.Len(t, backend.queries, 2, "no retry")
}

func TestPagerNextPageErrorKeepsItems(t *testing.T) {
	backend := &fakeBackend{total: 30}
	p := NewPager(backend.fetch, 10, nil)
	ctx := context.Background()

	p.Reload(ctx)
	backend.fail = true
	assert.Error(t, p.NextPage(ctx))
	assert.Len(t, p.Items(), 10)
	assert.Equal(t, 1, p.Query().Page)
}

func TestPagerDropsStaleResponse(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	fetch := func(ctx context.Context, q Query) ([]string, error) {
		if q.Search == "slow" {
			close(started)
			<-release
			return []string{"stale"}, nil
		}
		return []string{"fresh"}, nil
	}
	p := NewPager(fetch, 10, nil)
	ctx := context.Background()

	done := make(chan struct{})
	go func() {
		p.SetSearch(ctx, "slow")
		close(done)
	}()
	<-started

	require.NoError(t, p.SetSearch(ctx, "fast"))
	close(release)
	<-done

	assert.Equal(t, []string{"fresh"}, p.Items())
	assert.Equal(t, "fast", p.Query().Search)
	assert.False(t, p.Loading())
}

func TestPagerDefaultLimit(t *testing.T) {
	p := NewPager((&fakeBackend{}).fetch, 0, nil)
	assert.Equal(t, DefaultLimit, p.Query().Limit)
}

func TestPagerItemsIsCopy(t *testing.T) {
	backend := &fakeBackend{total: 3}
	p := NewPager(backend.fetch, 10, nil)
	p.Reload(context.Background())

	items := p.Items()
	items[0] = 99
	assert.Equal(t, 0, p.Items()[0])
}
