package humanizer

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	applogger "github.com/scribelab/paperforge/internal/logger"
)

func fastClient(t *testing.T, url string) *Client {
	t.Helper()
	c := NewClient("test-key", url, applogger.New())
	// Drop the one-per-second pacing so retry tests finish quickly.
	c.limiter = rate.NewLimiter(rate.Inf, 1)
	return c
}

func TestRewrite(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		w.Write([]byte(`{"result":"rewritten text here"}`))
	}))
	defer server.Close()

	got, err := fastClient(t, server.URL).Rewrite(context.Background(), "original")
	require.NoError(t, err)
	assert.Equal(t, "rewritten text here", got.Text)
	assert.Equal(t, 3, got.WordCount)
}

func TestRewriteAlternateResponseKeys(t *testing.T) {
	for _, key := range []string{"result", "output", "content"} {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"` + key + `":"text"}`))
		}))

		got, err := fastClient(t, server.URL).Rewrite(context.Background(), "x")
		server.Close()

		require.NoError(t, err, "key %q", key)
		assert.Equal(t, "text", got.Text)
	}
}

func TestRewriteRetriesThenSucceeds(t *testing.T) {
	old := RetryBaseDelay
	RetryBaseDelay = time.Millisecond
	defer func() { RetryBaseDelay = old }()

	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte(`{"result":"ok"}`))
	}))
	defer server.Close()

	got, err := fastClient(t, server.URL).Rewrite(context.Background(), "x")
	require.NoError(t, err)
	assert.Equal(t, "ok", got.Text)
	assert.Equal(t, int32(3), calls.Load())
}

func TestRewriteFailsAfterThreeAttempts(t *testing.T) {
	old := RetryBaseDelay
	RetryBaseDelay = time.Millisecond
	defer func() { RetryBaseDelay = old }()

	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	_, err := fastClient(t, server.URL).Rewrite(context.Background(), "x")
	require.Error(t, err)
	assert.Equal(t, int32(3), calls.Load())
	assert.Contains(t, err.Error(), "after 3 attempts")
}

func TestRewriteMissingTextField(t *testing.T) {
	old := RetryBaseDelay
	RetryBaseDelay = time.Millisecond
	defer func() { RetryBaseDelay = old }()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"something_else":true}`))
	}))
	defer server.Close()

	_, err := fastClient(t, server.URL).Rewrite(context.Background(), "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no rewritten text")
}

func TestBackoffClamped(t *testing.T) {
	old := RetryBaseDelay
	RetryBaseDelay = time.Second
	defer func() { RetryBaseDelay = old }()

	// Doubling starts below the floor, so early waits clamp to 4 units;
	// the ceiling caps it at 10.
	assert.Equal(t, 4*time.Second, backoff(1))
	assert.Equal(t, 4*time.Second, backoff(2))
	assert.Equal(t, 4*time.Second, backoff(3))
	assert.Equal(t, 8*time.Second, backoff(4))
	assert.Equal(t, 10*time.Second, backoff(5))
}
