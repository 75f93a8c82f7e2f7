package services

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/kerbaras/novelshelf/pkg/api"
	"github.com/kerbaras/novelshelf/pkg/data"
)

// SchedulerAPI is the watchlist side of the scheduler service.
type SchedulerAPI interface {
	ListWatchlist(ctx context.Context) ([]data.WatchlistEntry, error)
	AddToWatchlist(ctx context.Context, req api.WatchRequest) (*data.WatchlistEntry, error)
	RemoveFromWatchlist(ctx context.Context, id string) error
	CheckWatchlist(ctx context.Context) (*data.Job, error)
}

type Watchlist struct {
	api  SchedulerAPI
	jobs *Jobs
}

func NewWatchlist(api SchedulerAPI, jobs *Jobs) *Watchlist {
	return &Watchlist{api: api, jobs: jobs}
}

func (w *Watchlist) List(ctx context.Context) ([]data.WatchlistEntry, error) {
	entries, err := w.api.ListWatchlist(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list watchlist: %w", err)
	}
	return entries, nil
}

// Add watches a source for new chapters. interval is a server-side schedule
// such as "6h"; empty uses the scheduler default.
func (w *Watchlist) Add(ctx context.Context, novelID, sourceURL, interval string) (*data.WatchlistEntry, error) {
	sourceURL = strings.TrimSpace(sourceURL)
	u, err := url.Parse(sourceURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid source URL %q", sourceURL)
	}
	entry, err := w.api.AddToWatchlist(ctx, api.WatchRequest{NovelID: novelID, SourceURL: sourceURL, Interval: interval})
	if err != nil {
		return nil, fmt.Errorf("failed to add to watchlist: %w", err)
	}
	return entry, nil
}

func (w *Watchlist) Remove(ctx context.Context, id string) error {
	if err := w.api.RemoveFromWatchlist(ctx, id); err != nil {
		return fmt.Errorf("failed to remove from watchlist: %w", err)
	}
	return nil
}

// CheckNow asks the scheduler to check every entry and returns the job doing it.
func (w *Watchlist) CheckNow(ctx context.Context) (*data.Job, error) {
	job, err := w.api.CheckWatchlist(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to start watchlist check: %w", err)
	}
	return job, nil
}

// Watch follows a check job.
func (w *Watchlist) Watch(ctx context.Context, jobID string) (<-chan data.Job, error) {
	return w.jobs.Watch(ctx, data.JobWatchlist, jobID)
}
