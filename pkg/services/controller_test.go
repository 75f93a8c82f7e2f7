package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/kerbaras/novelshelf/pkg/config"
	"github.com/kerbaras/novelshelf/pkg/data"
	"github.com/kerbaras/novelshelf/pkg/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeBackend serves the main API, the scraper and the scheduler from one
// server, recording the bearer token of every request.
type fakeBackend struct {
	mu     sync.Mutex
	tokens map[string]string
}

func (f *fakeBackend) handler(t *testing.T) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.tokens[r.URL.Path] = strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
		f.mu.Unlock()

		write := func(v any) {
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(v)
		}

		switch {
		case r.URL.Path == "/auth/me":
			if r.Header.Get("Authorization") != "Bearer good" {
				w.WriteHeader(http.StatusUnauthorized)
				write(map[string]string{"error": "invalid token"})
				return
			}
			write(data.User{ID: "u1", Name: "Lin", Role: data.RoleAdmin})
		case r.URL.Path == "/api/novels/n1":
			write(data.Novel{ID: "n1", Title: "Test Novel", Author: "Lin"})
		case r.URL.Path == "/api/novels/n1/chapters":
			write(map[string]any{"data": []data.Chapter{{ID: "c1", Number: 1}, {ID: "c2", Number: 2}}, "total": 2})
		case strings.HasPrefix(r.URL.Path, "/api/novels/n1/chapters/"):
			n := strings.TrimPrefix(r.URL.Path, "/api/novels/n1/chapters/")
			write(data.Chapter{ID: "c" + n, Title: "Part " + n, Content: fmt.Sprintf("<p>Chapter %s text.</p>", n)})
		case r.URL.Path == "/jobs/s1":
			write(data.Job{ID: "s1", Kind: data.JobScrape, Status: data.JobCompleted})
		default:
			http.NotFound(w, r)
		}
	}
}

func (f *fakeBackend) token(path string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.tokens[path]
}

func setupController(t *testing.T) (*Controller, *fakeBackend, *config.Config) {
	t.Helper()

	fake := &fakeBackend{tokens: map[string]string{}}
	server := httptest.NewServer(fake.handler(t))
	t.Cleanup(server.Close)

	home := t.TempDir()
	cfg := &config.Config{
		APIURL:       server.URL,
		ScraperURL:   server.URL,
		SchedulerURL: server.URL,
		Home:         home,
		DBPath:       filepath.Join(home, "test.db"),
		PollInterval: 10 * time.Millisecond,
		PageSize:     20,
		HTTPTimeout:  5 * time.Second,
	}

	c, err := NewController(cfg, nil)
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return c, fake, cfg
}

func TestControllerSessionRoundTrip(t *testing.T) {
	c, fake, _ := setupController(t)
	ctx := context.Background()

	_, err := c.Session.Login(ctx, "good")
	require.NoError(t, err)
	assert.True(t, c.Session.IsAdmin())

	// The token reaches the scraper client too.
	_, err = c.Jobs.Status(ctx, data.JobScrape, "s1")
	require.NoError(t, err)
	assert.Equal(t, "good", fake.token("/jobs/s1"))
}

func TestControllerRestoreDropsRevokedToken(t *testing.T) {
	c, _, _ := setupController(t)

	require.NoError(t, c.repo.Set(session.TokenKey, "revoked"))
	err := c.Session.Restore(context.Background())

	assert.Error(t, err)
	assert.False(t, c.Session.LoggedIn())
	_, ok, _ := c.repo.Get(session.TokenKey)
	assert.False(t, ok)
}

func TestControllerExport(t *testing.T) {
	c, _, cfg := setupController(t)

	path, err := c.Export(context.Background(), "n1")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(cfg.ExportDir(), "Test Novel.epub"), path)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))

	// Chapters read during export are available offline.
	cached, err := c.repo.ListCachedChapters("n1")
	require.NoError(t, err)
	assert.Len(t, cached, 2)

	require.NoError(t, c.ClearCache("n1"))
	cached, _ = c.repo.ListCachedChapters("n1")
	assert.Empty(t, cached)
}

func TestControllerDiscussionUsesCurrentUser(t *testing.T) {
	c, _, _ := setupController(t)
	_, err := c.Session.Login(context.Background(), "good")
	require.NoError(t, err)

	d := c.Discussion("n1")
	d.Thread.Replace([]data.Comment{{ID: "cm1"}})

	assert.True(t, d.Thread.Like("cm1"))
	d.Thread.Wait()
	assert.Equal(t, []string{"u1"}, d.Thread.Comments()[0].LikedBy)
}
