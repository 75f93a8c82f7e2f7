// Package reactions applies comment likes and dislikes locally before the
// server confirms them.
package reactions

import (
	"context"
	"log/slog"
	"slices"
	"sync"

	"github.com/kerbaras/novelshelf/pkg/data"
)

// ToggleLike flips userID's like on c. A like clears any dislike by the same
// user. Applying it twice restores the original sets.
func ToggleLike(c *data.Comment, userID string) {
	if contains(c.LikedBy, userID) {
		c.LikedBy = without(c.LikedBy, userID)
		return
	}
	c.DislikedBy = without(c.DislikedBy, userID)
	c.LikedBy = append(c.LikedBy, userID)
}

func ToggleDislike(c *data.Comment, userID string) {
	if contains(c.DislikedBy, userID) {
		c.DislikedBy = without(c.DislikedBy, userID)
		return
	}
	c.LikedBy = without(c.LikedBy, userID)
	c.DislikedBy = append(c.DislikedBy, userID)
}

func contains(ids []string, id string) bool {
	return slices.Contains(ids, id)
}

func without(ids []string, id string) []string {
	out := ids[:0:0]
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}

// Server is the remote side of a thread.
type Server interface {
	LikeComment(ctx context.Context, id string) error
	DislikeComment(ctx context.Context, id string) error
	DeleteComment(ctx context.Context, id string) error
}

// Thread is the local copy of a comment list. Mutations land locally first
// and the server call runs in the background; a failed call is only logged,
// so the local state stays as-is until the next Replace.
type Thread struct {
	server Server
	userID string
	logger *slog.Logger

	mu       sync.Mutex
	comments []data.Comment
	pending  sync.WaitGroup
}

func NewThread(server Server, userID string, logger *slog.Logger) *Thread {
	if logger == nil {
		logger = slog.Default()
	}
	return &Thread{server: server, userID: userID, logger: logger}
}

// Replace installs a fresh server copy.
func (t *Thread) Replace(comments []data.Comment) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.comments = append([]data.Comment(nil), comments...)
}

func (t *Thread) Comments() []data.Comment {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]data.Comment(nil), t.comments...)
}

// Add appends a comment the server has just accepted.
func (t *Thread) Add(c data.Comment) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.comments = append(t.comments, c)
}

func (t *Thread) Like(id string) bool {
	return t.react(id, ToggleLike, t.server.LikeComment, "like")
}

func (t *Thread) Dislike(id string) bool {
	return t.react(id, ToggleDislike, t.server.DislikeComment, "dislike")
}

func (t *Thread) react(id string, toggle func(*data.Comment, string), call func(context.Context, string) error, action string) bool {
	if t.userID == "" {
		return false
	}
	t.mu.Lock()
	idx := t.index(id)
	if idx < 0 {
		t.mu.Unlock()
		return false
	}
	toggle(&t.comments[idx], t.userID)
	t.mu.Unlock()

	t.fire(action, id, call)
	return true
}

// Remove dismisses a comment locally and deletes it on the server.
func (t *Thread) Remove(id string) bool {
	t.mu.Lock()
	idx := t.index(id)
	if idx < 0 {
		t.mu.Unlock()
		return false
	}
	t.comments = append(t.comments[:idx], t.comments[idx+1:]...)
	t.mu.Unlock()

	t.fire("delete", id, t.server.DeleteComment)
	return true
}

func (t *Thread) fire(action, id string, call func(context.Context, string) error) {
	t.pending.Add(1)
	go func() {
		defer t.pending.Done()
		if err := call(context.Background(), id); err != nil {
			t.logger.Warn("comment mutation failed",
				slog.String("action", action),
				slog.String("comment_id", id),
				slog.String("error", err.Error()),
			)
		}
	}()
}

// Wait blocks until every background call has returned.
func (t *Thread) Wait() {
	t.pending.Wait()
}

func (t *Thread) index(id string) int {
	for i := range t.comments {
		if t.comments[i].ID == id {
			return i
		}
	}
	return -1
}

// Replies returns the direct replies to parentID in list order.
func Replies(comments []data.Comment, parentID string) []data.Comment {
	var out []data.Comment
	for _, c := range comments {
		if c.ParentID == parentID {
			out = append(out, c)
		}
	}
	return out
}
