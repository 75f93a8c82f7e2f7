package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/kerbaras/novelshelf/pkg/api"
	"github.com/kerbaras/novelshelf/pkg/data"
	"github.com/kerbaras/novelshelf/pkg/reactions"
)

// CommentAPI is the comment half of the backend.
type CommentAPI interface {
	ListComments(ctx context.Context, novelID string, page, limit int) ([]data.Comment, error)
	CreateComment(ctx context.Context, novelID string, comment api.NewComment) (*data.Comment, error)
	LikeComment(ctx context.Context, id string) error
	DislikeComment(ctx context.Context, id string) error
	DeleteComment(ctx context.Context, id string) error
}

// Discussion is the comment thread of one novel.
type Discussion struct {
	NovelID string
	Thread  *reactions.Thread

	api      CommentAPI
	pageSize int
}

func NewDiscussion(api CommentAPI, novelID, userID string, pageSize int, logger *slog.Logger) *Discussion {
	if pageSize <= 0 {
		pageSize = 50
	}
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With(slog.String("novel_id", novelID))
	return &Discussion{
		NovelID:  novelID,
		Thread:   reactions.NewThread(api, userID, logger),
		api:      api,
		pageSize: pageSize,
	}
}

// Load replaces the thread with the first page from the server.
func (d *Discussion) Load(ctx context.Context) error {
	comments, err := d.api.ListComments(ctx, d.NovelID, 1, d.pageSize)
	if err != nil {
		return fmt.Errorf("failed to load comments: %w", err)
	}
	d.Thread.Replace(comments)
	return nil
}

// Post creates a comment and appends the server's copy to the thread.
func (d *Discussion) Post(ctx context.Context, text, parentID string) (*data.Comment, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("comment cannot be empty")
	}
	created, err := d.api.CreateComment(ctx, d.NovelID, api.NewComment{Content: text, ParentID: parentID})
	if err != nil {
		return nil, fmt.Errorf("failed to post comment: %w", err)
	}
	d.Thread.Add(*created)
	return created, nil
}
