package github

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/prsentry/prsentry/internal/domain/fixtures"
)

func TestCheckReachablePR(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/repos/prebid/Prebid.js/pulls/11000", r.URL.Path)
		assert.Equal(t, "application/vnd.github+json", r.Header.Get("Accept"))
		assert.Equal(t, "Bearer token123", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"title":"Fix auth bug","state":"closed","number":11000}`))
	}))
	defer srv.Close()

	c := NewClient("token123", 10*time.Second)
	c.APIBase = srv.URL

	info, err := c.Check(context.Background(), "https://github.com/prebid/Prebid.js/pull/11000")
	require.NoError(t, err)
	assert.Equal(t, "Fix auth bug", info.Title)
	assert.Equal(t, "closed", info.State)
}

func TestCheckNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"Not Found"}`, http.StatusNotFound)
	}))
	defer srv.Close()

	c := NewClient("", 10*time.Second)
	c.APIBase = srv.URL

	_, err := c.Check(context.Background(), "https://github.com/o/r/pull/999999")
	require.Error(t, err)

	se, ok := err.(*domain.StatusError)
	require.True(t, ok)
	assert.Equal(t, 404, se.Code)
	assert.Equal(t, "HTTP 404", se.Error())
}

func TestCheckNoTokenOmitsAuthHeader(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
		w.Write([]byte(`{"title":"t","state":"open"}`))
	}))
	defer srv.Close()

	c := NewClient("", 0)
	c.APIBase = srv.URL

	_, err := c.Check(context.Background(), "https://github.com/o/r/pull/1")
	require.NoError(t, err)
}

func TestPRInfo(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"title":"Refactor API","state":"open"}`))
	}))
	defer srv.Close()

	c := NewClient("", time.Second)
	c.APIBase = srv.URL

	title, state, err := c.PRInfo(context.Background(), "https://github.com/o/r/pull/2")
	require.NoError(t, err)
	assert.Equal(t, "Refactor API", title)
	assert.Equal(t, "open", state)
}
