package api

import (
	"context"
	"net/url"

	"github.com/kerbaras/novelshelf/pkg/data"
)

// Watchlist endpoints are served by the scheduler service.

func (c *Client) ListWatchlist(ctx context.Context) ([]data.WatchlistEntry, error) {
	var resp Page[data.WatchlistEntry]
	if err := c.get(ctx, "/watchlist", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Data, nil
}

type WatchRequest struct {
	NovelID   string `json:"novelId,omitempty"`
	SourceURL string `json:"sourceUrl"`
	Interval  string `json:"interval,omitempty"`
}

func (c *Client) AddToWatchlist(ctx context.Context, req WatchRequest) (*data.WatchlistEntry, error) {
	var entry data.WatchlistEntry
	if err := c.post(ctx, "/watchlist", req, &entry); err != nil {
		return nil, err
	}
	return &entry, nil
}

func (c *Client) RemoveFromWatchlist(ctx context.Context, id string) error {
	return c.delete(ctx, "/watchlist/"+url.PathEscape(id))
}

// CheckWatchlist asks the scheduler to re-scrape every enabled entry now.
func (c *Client) CheckWatchlist(ctx context.Context) (*data.Job, error) {
	return c.startJob(ctx, "/watchlist/check", data.JobWatchlist, struct{}{})
}
