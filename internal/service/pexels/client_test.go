package pexels

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	apperrors "github.com/azhar1598/xplore-be/pkg/errors"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c := NewClient("pexels-key", srv.URL, srv.Client(), zap.NewNop())
	c.baseDelay = time.Millisecond
	c.jitter = 0
	return c
}

func TestSearchImageReturnsMediumURL(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search", r.URL.Path)
		assert.Equal(t, "mobile repair shop", r.URL.Query().Get("query"))
		assert.Equal(t, "1", r.URL.Query().Get("per_page"))
		assert.Equal(t, "pexels-key", r.Header.Get("Authorization"))

		_, _ = w.Write([]byte(`{"photos":[{"id":1,"src":{"original":"https://images.example/original/xyz.jpg","medium":"https://images.example/medium/xyz.jpg"}}]}`))
	})

	url, err := c.SearchImage(context.Background(), "mobile repair shop")
	require.NoError(t, err)
	assert.Equal(t, "https://images.example/medium/xyz.jpg", url)
}

func TestSearchImageNoPhotos(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"photos":[]}`))
	})

	url, err := c.SearchImage(context.Background(), "nothing")
	require.NoError(t, err)
	assert.Equal(t, "", url)
}

func TestSearchImageRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(`{"photos":[{"src":{"medium":"https://images.example/medium/ok.jpg"}}]}`))
	})

	url, err := c.SearchImage(context.Background(), "bakery")
	require.NoError(t, err)
	assert.Equal(t, "https://images.example/medium/ok.jpg", url)
	assert.Equal(t, int32(3), calls.Load())
}

func TestSearchImageDoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
	})

	_, err := c.SearchImage(context.Background(), "bakery")
	require.Error(t, err)
	assert.True(t, apperrors.IsProviderUnavailable(err))
	assert.Equal(t, int32(1), calls.Load())
}

func TestSearchImageGivesUpAfterMaxAttempts(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusTooManyRequests)
	})

	_, err := c.SearchImage(context.Background(), "bakery")
	require.Error(t, err)
	assert.Equal(t, int32(3), calls.Load())
}

func TestSearchImageBadJSON(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html>`))
	})

	_, err := c.SearchImage(context.Background(), "bakery")
	assert.True(t, apperrors.IsProviderUnavailable(err))
}
