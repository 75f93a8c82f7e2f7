package api

import (
	"context"
	"fmt"
	"net/url"

	"github.com/kerbaras/novelshelf/pkg/data"
)

type NewComment struct {
	Content   string `json:"content"`
	ParentID  string `json:"parentId,omitempty"`
	ChapterID string `json:"chapterId,omitempty"`
}

func (c *Client) ListComments(ctx context.Context, novelID string, page, limit int) ([]data.Comment, error) {
	var resp Page[data.Comment]
	path := fmt.Sprintf("/api/novels/%s/comments", url.PathEscape(novelID))
	if err := c.get(ctx, path, pageParams(page, limit), &resp); err != nil {
		return nil, err
	}
	return resp.Data, nil
}

func (c *Client) CreateComment(ctx context.Context, novelID string, comment NewComment) (*data.Comment, error) {
	var created data.Comment
	path := fmt.Sprintf("/api/novels/%s/comments", url.PathEscape(novelID))
	if err := c.post(ctx, path, comment, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// LikeComment toggles the caller's like on the server.
func (c *Client) LikeComment(ctx context.Context, id string) error {
	return c.post(ctx, "/api/comments/"+url.PathEscape(id)+"/like", nil, nil)
}

func (c *Client) DislikeComment(ctx context.Context, id string) error {
	return c.post(ctx, "/api/comments/"+url.PathEscape(id)+"/dislike", nil, nil)
}

func (c *Client) DeleteComment(ctx context.Context, id string) error {
	return c.delete(ctx, "/api/comments/"+url.PathEscape(id))
}
