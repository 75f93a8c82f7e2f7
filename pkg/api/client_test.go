package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/kerbaras/novelshelf/pkg/data"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL)
}

func TestClientAttachesToken(t *testing.T) {
	var gotAuth, gotRequestID string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotRequestID = r.Header.Get("X-Request-ID")
		json.NewEncoder(w).Encode(data.User{ID: "u1", Name: "Reader"})
	})

	c.SetToken("secret")
	user, err := c.Me(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Bearer secret", gotAuth)
	assert.NotEmpty(t, gotRequestID)
	assert.Equal(t, "u1", user.ID)
}

func TestClientOmitsEmptyToken(t *testing.T) {
	var gotAuth string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`{"data":[]}`))
	})

	_, err := c.ListNovels(context.Background(), ListOptions{})
	require.NoError(t, err)
	assert.Empty(t, gotAuth)
}

func TestClientErrorMessage(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":"title is required"}`))
	})

	_, err := c.GetNovel(context.Background(), "n1")
	require.Error(t, err)

	var apiErr *Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Equal(t, "title is required", apiErr.Message)
	assert.Equal(t, "/api/novels/n1", apiErr.Path)
}

func TestClientPlainTextError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})

	_, err := c.GetNovel(context.Background(), "n1")
	assert.Equal(t, "boom", Message(err))
	assert.Equal(t, OutcomeToast, Classify(err))
}

func TestClientNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	c := NewClient(url)
	_, err := c.Me(context.Background())
	require.Error(t, err)
	assert.True(t, IsNetwork(err))
	assert.Equal(t, OutcomeOffline, Classify(err))
}

func TestClientNoContent(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		w.WriteHeader(http.StatusNoContent)
	})

	assert.NoError(t, c.DeleteComment(context.Background(), "c1"))
}

func TestClientRateLimitOption(t *testing.T) {
	c := NewClient("http://example.invalid", WithRateLimit(5, 0))
	require.NotNil(t, c.limiter)
	assert.Equal(t, 1, c.limiter.Burst())

	c = NewClient("http://example.invalid", WithRateLimit(0, 0))
	assert.Nil(t, c.limiter)
}

func TestClientTrimsBaseURL(t *testing.T) {
	c := NewClient("https://novels.example.com/")
	assert.Equal(t, "https://novels.example.com", c.BaseURL())
}
