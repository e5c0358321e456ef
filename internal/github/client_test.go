package github

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRepos_OK(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/users/octocat/repos", r.URL.Path)
		assert.Equal(t, "5", r.URL.Query().Get("per_page"))
		assert.Equal(t, "created:asc", r.URL.Query().Get("sort"))
		assert.NotEmpty(t, r.Header.Get("User-Agent"))
		user, pass, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "id", user)
		assert.Equal(t, "secret", pass)
		_, _ = w.Write([]byte(`[{"name":"hello-world"}]`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL+"/", "id", "secret")
	body, err := c.Repos(context.Background(), "octocat")
	require.NoError(t, err)
	assert.JSONEq(t, `[{"name":"hello-world"}]`, string(body))
}

func TestRepos_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, ok := r.Header["Authorization"]
		assert.False(t, ok, "no credentials configured")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"message":"Not Found"}`))
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, "", "").Repos(context.Background(), "ghost")
	assert.ErrorIs(t, err, ErrNoProfile)
}

func TestRepos_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()

	_, err := NewClient(srv.URL, "", "").Repos(context.Background(), "octocat")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNoProfile)
}
