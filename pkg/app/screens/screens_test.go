package screens

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/kerbaras/novelshelf/pkg/api"
	"github.com/kerbaras/novelshelf/pkg/config"
	"github.com/kerbaras/novelshelf/pkg/data"
	"github.com/kerbaras/novelshelf/pkg/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeServer struct {
	jobPolls   atomic.Int32
	novelLists atomic.Int32
	lastSearch atomic.Value
	lastCat    atomic.Value
	failing    atomic.Bool
}

func (f *fakeServer) handler(w http.ResponseWriter, r *http.Request) {
	write := func(v any) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(v)
	}

	if f.failing.Load() && r.URL.Path != "/auth/me" {
		w.WriteHeader(http.StatusInternalServerError)
		write(map[string]string{"error": "database unavailable"})
		return
	}

	switch {
	case r.URL.Path == "/auth/me":
		if r.Header.Get("Authorization") != "Bearer good" {
			w.WriteHeader(http.StatusUnauthorized)
			write(map[string]string{"error": "invalid token"})
			return
		}
		write(data.User{ID: "u1", Name: "Lin", Role: data.RoleAdmin})
	case r.URL.Path == "/api/novels":
		f.novelLists.Add(1)
		f.lastSearch.Store(r.URL.Query().Get("q"))
		f.lastCat.Store(r.URL.Query().Get("category"))
		write(map[string]any{"data": []data.Novel{
			{ID: "n1", Title: "Test Novel", Category: "xianxia"},
			{ID: "n2", Title: "Second Novel", Category: "fantasy"},
		}, "total": 2})
	case r.URL.Path == "/api/novels/n1/comments":
		write(map[string]any{"data": []data.Comment{
			{ID: "a", Content: "first"},
			{ID: "b", Content: "second"},
			{ID: "a1", ParentID: "a", Content: "reply to first"},
			{ID: "o1", ParentID: "gone", Content: "orphan"},
		}})
	case r.URL.Path == "/jobs/s1":
		status := data.JobActive
		if f.jobPolls.Add(1) >= 2 {
			status = data.JobCompleted
		}
		write(data.Job{ID: "s1", Kind: data.JobScrape, Status: status, Processed: 1, Total: 2})
	case r.URL.Path == "/jobs/expired":
		w.WriteHeader(http.StatusUnauthorized)
		write(map[string]string{"error": "token expired"})
	default:
		http.NotFound(w, r)
	}
}

func setupController(t *testing.T) (*services.Controller, *fakeServer) {
	t.Helper()

	fake := &fakeServer{}
	server := httptest.NewServer(http.HandlerFunc(fake.handler))
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
		Debounce:     20 * time.Millisecond,
		HTTPTimeout:  5 * time.Second,
	}

	c, err := services.NewController(cfg, nil)
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return c, fake
}

func keys(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestRootForcedLogoutOpensLogin(t *testing.T) {
	c, _ := setupController(t)
	_, err := c.Session.Login(context.Background(), "good")
	require.NoError(t, err)

	root := NewRootScreen(c)
	root.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	root.loggedIn = true

	root.Update(ErrorMsg{Err: &api.Error{StatusCode: http.StatusUnauthorized, Method: "GET", Path: "/jobs"}})

	assert.False(t, c.Session.LoggedIn())
	assert.Equal(t, loginView, root.currentView)
	assert.Contains(t, root.toaster.Message(), "Session expired")
}

func TestRootOpensLoginAfterBackgroundLogout(t *testing.T) {
	c, _ := setupController(t)
	_, err := c.Session.Login(context.Background(), "good")
	require.NoError(t, err)

	root := NewRootScreen(c)
	root.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	root.navigate(jobsView, nil)

	// A poll outside the screen tree hits a 401.
	require.True(t, c.Session.HandleError(&api.Error{StatusCode: http.StatusUnauthorized, Method: "GET", Path: "/jobs/s1"}))
	root.Update(root.listenForSession())

	assert.False(t, root.loggedIn)
	assert.Equal(t, loginView, root.currentView)
}

func TestRootNotFoundOnlyToasts(t *testing.T) {
	c, _ := setupController(t)
	root := NewRootScreen(c)
	root.Update(tea.WindowSizeMsg{Width: 100, Height: 40})

	root.Update(ErrorMsg{Err: &api.Error{StatusCode: http.StatusNotFound}})

	assert.Equal(t, libraryView, root.currentView)
	assert.Equal(t, "Not found", root.toaster.Message())
}

func TestRootTabsCycle(t *testing.T) {
	c, _ := setupController(t)
	root := NewRootScreen(c)
	root.Update(tea.WindowSizeMsg{Width: 100, Height: 40})

	root.Update(tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, jobsView, root.currentView)

	root.Update(tea.KeyMsg{Type: tea.KeyShiftTab})
	root.Update(tea.KeyMsg{Type: tea.KeyShiftTab})
	assert.Equal(t, settingsView, root.currentView)

	root.Update(keys("2"))
	assert.Equal(t, jobsView, root.currentView)
}

func TestRootCapturingScreenGetsQ(t *testing.T) {
	c, _ := setupController(t)
	root := NewRootScreen(c)
	root.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	root.navigate(loginView, nil)

	root.Update(keys("q"))

	login := root.screens[loginView].(*LoginScreen)
	assert.Equal(t, loginView, root.currentView)
	assert.Equal(t, "q", login.fields[fieldEmail].Value())
}

func TestRootDropsTransientScreens(t *testing.T) {
	c, _ := setupController(t)
	root := NewRootScreen(c)
	root.Update(tea.WindowSizeMsg{Width: 100, Height: 40})

	root.navigate(jobDetailView, jobTarget{Kind: data.JobScrape, ID: "s1"})
	detail := root.screens[jobDetailView].(*JobDetailScreen)
	require.NotNil(t, detail.cancel)

	root.navigate(jobsView, nil)

	_, open := root.screens[jobDetailView]
	assert.False(t, open)
	// The poll loop sees the cancellation and closes its channel.
	closed := make(chan struct{})
	go func() {
		for range detail.updates {
		}
		close(closed)
	}()
	select {
	case <-closed:
	case <-time.After(time.Second):
		t.Fatal("watch not stopped")
	}
}

func TestLibrarySearchWaitsForPause(t *testing.T) {
	c, fake := setupController(t)
	s := NewLibraryScreen(c)
	s.Update(tea.WindowSizeMsg{Width: 100, Height: 40})

	s.Update(keys("/"))
	require.True(t, s.Capturing())

	for _, r := range "dra" {
		s.Update(keys(string(r)))
	}

	// Each keystroke marks a new quiet period; only the last one searches.
	_, cmd := s.Update(searchSettledMsg{tag: 1})
	assert.Nil(t, cmd)
	_, cmd = s.Update(searchSettledMsg{tag: 2})
	assert.Nil(t, cmd)
	assert.Zero(t, fake.novelLists.Load())

	_, cmd = s.Update(searchSettledMsg{tag: 3})
	require.NotNil(t, cmd)
	msg := cmd()
	s.Update(msg)

	assert.Equal(t, int32(1), fake.novelLists.Load())
	assert.Equal(t, "dra", fake.lastSearch.Load())
	assert.Equal(t, "dra", s.pager.Query().Search)
	require.NotNil(t, s.novelList.Selected())
	assert.Equal(t, "n1", s.novelList.Selected().ID)
}

func TestLibraryEnterSearchesImmediately(t *testing.T) {
	c, fake := setupController(t)
	s := NewLibraryScreen(c)
	s.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	s.Update(keys("/"))
	s.Update(keys("x"))

	_, cmd := s.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	cmd()

	assert.False(t, s.Capturing())
	assert.Equal(t, int32(1), fake.novelLists.Load())
	assert.Equal(t, "x", fake.lastSearch.Load())
}

func TestLibraryCyclesCategories(t *testing.T) {
	c, fake := setupController(t)
	s := NewLibraryScreen(c)
	s.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	s.Update(s.fetch(func(ctx context.Context) error { return s.pager.Reload(ctx) })())
	assert.Equal(t, []string{"", "fantasy", "xianxia"}, s.categories)

	for _, want := range []string{"fantasy", "xianxia", ""} {
		_, cmd := s.Update(keys("c"))
		require.NotNil(t, cmd)
		s.Update(cmd())

		assert.Equal(t, want, s.pager.Query().Category)
		assert.Equal(t, want, fake.lastCat.Load())
		assert.Equal(t, 1, s.pager.Query().Page)
	}
	assert.Contains(t, s.View(), "category: all")
}

func TestLibraryFailedFetchShowsEmptyList(t *testing.T) {
	c, fake := setupController(t)
	fake.failing.Store(true)
	s := NewLibraryScreen(c)
	s.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	s.Update(keys("/"))
	s.Update(keys("x"))

	_, cmd := s.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	_, cmd = s.Update(cmd())

	view := s.View()
	assert.Contains(t, view, "No novels found")
	assert.NotContains(t, view, "Error:")
	require.NotNil(t, cmd)
	msg, ok := cmd().(ErrorMsg)
	require.True(t, ok)
	assert.Equal(t, "database unavailable", api.Message(msg.Err))
}

func TestWatchlistFailedFetchShowsEmptyList(t *testing.T) {
	c, fake := setupController(t)
	_, err := c.Session.Login(context.Background(), "good")
	require.NoError(t, err)
	fake.failing.Store(true)

	s := NewWatchlistScreen(c)
	s.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	_, cmd := s.Update(s.refresh()())

	assert.Contains(t, s.View(), "Nothing is being watched")
	assert.NotContains(t, s.View(), "Error:")
	require.NotNil(t, cmd)
	_, ok := cmd().(ErrorMsg)
	assert.True(t, ok)
}

func TestJobDetailFollowsUntilTerminal(t *testing.T) {
	c, _ := setupController(t)
	s := NewJobDetailScreen(c, data.JobScrape, "s1")
	s.Update(tea.WindowSizeMsg{Width: 100, Height: 40})

	cmd := s.Init()
	var statuses []data.JobStatus
	for i := 0; i < 10 && cmd != nil; i++ {
		msg := cmd()
		if u, ok := msg.(jobUpdateMsg); ok {
			statuses = append(statuses, u.job.Status)
		}
		_, cmd = s.Update(msg)
		if s.done {
			break
		}
	}

	assert.True(t, s.done)
	assert.Equal(t, []data.JobStatus{data.JobActive, data.JobCompleted}, statuses)
	assert.Equal(t, data.JobCompleted, s.progress.Job().Status)
	assert.Contains(t, s.View(), "finished")
}

func TestJobDetailStopsWhenSessionExpires(t *testing.T) {
	c, _ := setupController(t)
	_, err := c.Session.Login(context.Background(), "good")
	require.NoError(t, err)

	s := NewJobDetailScreen(c, data.JobScrape, "expired")
	s.Update(tea.WindowSizeMsg{Width: 100, Height: 40})

	cmd := s.Init()
	for i := 0; i < 10 && cmd != nil && !s.done; i++ {
		_, cmd = s.Update(cmd())
	}

	assert.True(t, s.done)
	assert.False(t, c.Session.LoggedIn())
	assert.Contains(t, s.View(), "stopped following")
}

func TestJobDetailIgnoresOtherJobs(t *testing.T) {
	c, _ := setupController(t)
	s := NewJobDetailScreen(c, data.JobScrape, "s1")

	_, cmd := s.Update(jobUpdateMsg{id: "other", job: data.Job{ID: "other"}})
	assert.Nil(t, cmd)
	assert.Nil(t, s.progress.Job())
}

func TestCommentsThreadOrder(t *testing.T) {
	c, _ := setupController(t)
	s := NewCommentsScreen(c, &data.Novel{ID: "n1", Title: "Test Novel"})
	s.Update(tea.WindowSizeMsg{Width: 100, Height: 40})

	s.Update(s.Init()())

	var order []string
	var depths []int
	for _, r := range s.rows {
		order = append(order, r.comment.ID)
		depths = append(depths, r.depth)
	}
	assert.Equal(t, []string{"a", "a1", "b", "o1"}, order)
	assert.Equal(t, []int{0, 1, 0, 0}, depths)
}

func TestCommentsReactRequiresLogin(t *testing.T) {
	c, _ := setupController(t)
	s := NewCommentsScreen(c, &data.Novel{ID: "n1", Title: "Test Novel"})
	s.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	s.Update(s.Init()())

	_, cmd := s.Update(keys("l"))
	require.NotNil(t, cmd)
	msg, ok := cmd().(ToastMsg)
	require.True(t, ok)
	assert.False(t, msg.Success)
	assert.Empty(t, s.rows[0].comment.LikedBy)

	_, cmd = s.Update(keys("c"))
	require.NotNil(t, cmd)
	assert.False(t, s.Capturing(), "anonymous users cannot compose")
}

func TestLoginValidationStaysOnForm(t *testing.T) {
	c, _ := setupController(t)
	s := NewLoginScreen(c)
	s.Update(tea.WindowSizeMsg{Width: 100, Height: 40})

	for _, r := range "not-an-email" {
		s.Update(keys(string(r)))
	}
	s.Update(tea.KeyMsg{Type: tea.KeyTab})
	_, cmd := s.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)

	s.Update(cmd())

	assert.Contains(t, s.errs, "email")
	assert.Contains(t, s.errs, "password")
	assert.Contains(t, s.View(), "Sign in")
}

func TestLoginTogglesSignup(t *testing.T) {
	c, _ := setupController(t)
	s := NewLoginScreen(c)

	s.Update(tea.KeyMsg{Type: tea.KeyCtrlN})
	assert.True(t, s.signup)
	assert.Equal(t, fieldName, s.focus)
	assert.True(t, strings.Contains(s.View(), "Create an account"))

	s.Update(tea.KeyMsg{Type: tea.KeyCtrlN})
	assert.False(t, s.signup)
	assert.Equal(t, fieldEmail, s.focus)
}
