package api

import (
	"context"
	"fmt"
	"net/url"

	"github.com/kerbaras/novelshelf/pkg/data"
)

type ListOptions struct {
	Page     int
	Limit    int
	Search   string
	Status   string
	Category string
	Sort     string
}

func (o ListOptions) params() url.Values {
	params := pageParams(o.Page, o.Limit)
	if o.Search != "" {
		params.Set("q", o.Search)
	}
	if o.Status != "" {
		params.Set("status", o.Status)
	}
	if o.Category != "" {
		params.Set("category", o.Category)
	}
	if o.Sort != "" {
		params.Set("sort", o.Sort)
	}
	return params
}

func (c *Client) ListNovels(ctx context.Context, opts ListOptions) ([]data.Novel, error) {
	var page Page[data.Novel]
	if err := c.get(ctx, "/api/novels", opts.params(), &page); err != nil {
		return nil, err
	}
	return page.Data, nil
}

func (c *Client) GetNovel(ctx context.Context, id string) (*data.Novel, error) {
	var novel data.Novel
	if err := c.get(ctx, "/api/novels/"+url.PathEscape(id), nil, &novel); err != nil {
		return nil, err
	}
	return &novel, nil
}

func (c *Client) ListChapters(ctx context.Context, novelID string, page, limit int) ([]data.Chapter, error) {
	var resp Page[data.Chapter]
	path := fmt.Sprintf("/api/novels/%s/chapters", url.PathEscape(novelID))
	if err := c.get(ctx, path, pageParams(page, limit), &resp); err != nil {
		return nil, err
	}
	return resp.Data, nil
}

func (c *Client) GetChapter(ctx context.Context, novelID string, number int) (*data.Chapter, error) {
	var chapter data.Chapter
	path := fmt.Sprintf("/api/novels/%s/chapters/%d", url.PathEscape(novelID), number)
	if err := c.get(ctx, path, nil, &chapter); err != nil {
		return nil, err
	}
	if chapter.NovelID == "" {
		chapter.NovelID = novelID
	}
	return &chapter, nil
}

// NovelPatch carries the admin-editable fields. Nil fields are left alone.
type NovelPatch struct {
	Title       *string           `json:"title,omitempty"`
	Description *string           `json:"description,omitempty"`
	Status      *data.NovelStatus `json:"status,omitempty"`
	Category    *string           `json:"category,omitempty"`
	Tags        []string          `json:"tags,omitempty"`
}

func (c *Client) UpdateNovel(ctx context.Context, id string, patch NovelPatch) (*data.Novel, error) {
	var novel data.Novel
	if err := c.patch(ctx, "/api/admin/novels/"+url.PathEscape(id), patch, &novel); err != nil {
		return nil, err
	}
	return &novel, nil
}
