package services

import (
	"context"
	"testing"
	"time"

	"github.com/kerbaras/novelshelf/pkg/data"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatchlistAddValidatesURL(t *testing.T) {
	scheduler := &mockScheduler{}
	w := NewWatchlist(scheduler, nil)

	_, err := w.Add(context.Background(), "n1", "not a url", "")
	assert.Error(t, err)
	assert.Empty(t, scheduler.added)

	entry, err := w.Add(context.Background(), "n1", " https://example.com/novel/1 ", "12h")
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/novel/1", entry.SourceURL)
	assert.Equal(t, "12h", scheduler.added[0].Interval)
}

func TestWatchlistListAndRemove(t *testing.T) {
	scheduler := &mockScheduler{entries: []data.WatchlistEntry{{ID: "w1"}, {ID: "w2"}}}
	w := NewWatchlist(scheduler, nil)

	entries, err := w.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, entries, 2)

	require.NoError(t, w.Remove(context.Background(), "w1"))
	assert.Equal(t, []string{"w1"}, scheduler.removed)
}

func TestWatchlistCheckNowAndWatch(t *testing.T) {
	scheduler := &mockScheduler{}
	schedulerJobs := &mockJobBackend{}
	jobs := NewJobs(&mockJobBackend{}, &mockJobBackend{}, schedulerJobs, 10*time.Millisecond, nil)
	w := NewWatchlist(scheduler, jobs)

	job, err := w.CheckNow(context.Background())
	require.NoError(t, err)
	assert.Equal(t, data.JobWatchlist, job.Kind)

	updates, err := w.Watch(context.Background(), job.ID)
	require.NoError(t, err)

	var last data.Job
	for u := range updates {
		last = u
	}
	assert.Equal(t, "check-1", last.ID)
	assert.Equal(t, data.JobWatchlist, last.Kind)
	assert.True(t, last.Status.Terminal())
}
