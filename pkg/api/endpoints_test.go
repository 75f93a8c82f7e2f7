package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"testing"

	"github.com/kerbaras/novelshelf/pkg/data"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListNovelsQuery(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/novels", r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, "2", q.Get("page"))
		assert.Equal(t, "20", q.Get("limit"))
		assert.Equal(t, "dragon", q.Get("q"))
		assert.Equal(t, "completed", q.Get("status"))
		assert.Equal(t, "fantasy", q.Get("category"))
		assert.Equal(t, "latest", q.Get("sort"))
		w.Write([]byte(`{"data":[{"id":"n1","title":"Dragon Tales","status":"completed"}],"total":1}`))
	})

	novels, err := c.ListNovels(context.Background(), ListOptions{
		Page: 2, Limit: 20, Search: "dragon", Status: "completed", Category: "fantasy", Sort: "latest",
	})
	require.NoError(t, err)
	require.Len(t, novels, 1)
	assert.Equal(t, data.NovelCompleted, novels[0].Status)
}

func TestGetChapterFillsNovelID(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/novels/n1/chapters/7", r.URL.Path)
		w.Write([]byte(`{"id":"c7","number":7,"title":"Seven","content":"<p>hi</p>"}`))
	})

	ch, err := c.GetChapter(context.Background(), "n1", 7)
	require.NoError(t, err)
	assert.Equal(t, "n1", ch.NovelID)
	assert.Equal(t, 7, ch.Number)
}

func TestLoginNotFound(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error":"no account for that email"}`))
	})

	_, err := c.Login(context.Background(), Credentials{Email: "a@b.co", Password: "secret123"})
	require.Error(t, err)
	assert.True(t, IsNotFound(err))
}

func TestLoginRequiresToken(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	})

	_, err := c.Login(context.Background(), Credentials{Email: "a@b.co", Password: "secret123"})
	assert.Error(t, err)
}

func TestSignupSendsBody(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/auth/signup", r.URL.Path)
		var req SignupRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "Ana", req.Name)
		w.Write([]byte(`{"token":"t1"}`))
	})

	token, err := c.Signup(context.Background(), SignupRequest{Name: "Ana", Email: "ana@example.com", Password: "secret123"})
	require.NoError(t, err)
	assert.Equal(t, "t1", token)
}

func TestJobPaths(t *testing.T) {
	tests := []struct {
		kind data.JobKind
		want string
	}{
		{data.JobTranslate, "/api/translator/jobs/j1"},
		{data.JobTitles, "/api/title-gen/jobs/j1"},
		{data.JobScrape, "/jobs/j1"},
		{data.JobImport, "/jobs/j1"},
		{data.JobWatchlist, "/jobs/j1"},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			path, err := jobPath(tt.kind, "j1")
			require.NoError(t, err)
			assert.Equal(t, tt.want, path)
		})
	}

	_, err := jobPath("bogus", "j1")
	assert.Error(t, err)
}

func TestJobControls(t *testing.T) {
	var calls []string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls = append(calls, r.Method+" "+r.URL.Path)
		w.WriteHeader(http.StatusNoContent)
	})

	ctx := context.Background()
	require.NoError(t, c.PauseJob(ctx, data.JobTranslate, "j1"))
	require.NoError(t, c.ResumeJob(ctx, data.JobTranslate, "j1"))
	require.NoError(t, c.DeleteJob(ctx, data.JobTitles, "j2"))

	assert.Equal(t, []string{
		"POST /api/translator/jobs/j1/pause",
		"POST /api/translator/jobs/j1/resume",
		"DELETE /api/title-gen/jobs/j2",
	}, calls)
}

func TestGetJobDefaultsKind(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"id":"j1","status":"active","processed":3,"total":10,"logs":[{"message":"started"}]}`))
	})

	job, err := c.GetJob(context.Background(), data.JobTranslate, "j1")
	require.NoError(t, err)
	assert.Equal(t, data.JobTranslate, job.Kind)
	assert.Equal(t, data.JobActive, job.Status)
	assert.Len(t, job.Logs, 1)
}

func TestStartScrapeBulkIsImport(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		assert.Contains(t, string(body), `"mode":"bulk"`)
		w.Write([]byte(`{"id":"j9","status":"active"}`))
	})

	job, err := c.StartScrape(context.Background(), ScrapeRequest{Mode: "bulk", SourceURLs: []string{"https://a", "https://b"}})
	require.NoError(t, err)
	assert.Equal(t, data.JobImport, job.Kind)
}

func TestSetUserRoleRejectsUnknownRole(t *testing.T) {
	c := NewClient("http://example.invalid")
	_, err := c.SetUserRole(context.Background(), "u1", "owner")
	assert.Error(t, err)
}

func TestGlossaryEndpoints(t *testing.T) {
	var calls []string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls = append(calls, r.Method+" "+r.URL.Path)
		switch r.Method {
		case http.MethodGet:
			w.Write([]byte(`{"data":[{"id":"g1","term":"剑","translation":"sword"}]}`))
		case http.MethodPost:
			w.Write([]byte(`{"id":"g2","term":"道","translation":"Dao"}`))
		default:
			w.WriteHeader(http.StatusNoContent)
		}
	})

	ctx := context.Background()
	terms, err := c.ListGlossary(ctx, "n1")
	require.NoError(t, err)
	assert.Len(t, terms, 1)

	saved, err := c.UpsertGlossaryTerm(ctx, data.GlossaryTerm{NovelID: "n1", Term: "道", Translation: "Dao"})
	require.NoError(t, err)
	assert.Equal(t, "g2", saved.ID)

	require.NoError(t, c.DeleteGlossaryTerm(ctx, "n1", "g1"))
	assert.Equal(t, []string{
		"GET /api/admin/novels/n1/glossary",
		"POST /api/admin/novels/n1/glossary",
		"DELETE /api/admin/novels/n1/glossary/g1",
	}, calls)
}

func TestWatchlistEndpoints(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/watchlist":
			if r.Method == http.MethodGet {
				w.Write([]byte(`{"data":[{"id":"w1","title":"A","enabled":true}]}`))
				return
			}
			w.Write([]byte(`{"id":"w2","sourceUrl":"https://src"}`))
		case "/watchlist/check":
			w.Write([]byte(`{"id":"j1","status":"active"}`))
		default:
			w.WriteHeader(http.StatusNoContent)
		}
	})

	ctx := context.Background()
	entries, err := c.ListWatchlist(ctx)
	require.NoError(t, err)
	assert.Len(t, entries, 1)

	entry, err := c.AddToWatchlist(ctx, WatchRequest{SourceURL: "https://src"})
	require.NoError(t, err)
	assert.Equal(t, "w2", entry.ID)

	job, err := c.CheckWatchlist(ctx)
	require.NoError(t, err)
	assert.Equal(t, data.JobWatchlist, job.Kind)

	assert.NoError(t, c.RemoveFromWatchlist(ctx, "w1"))
}
