package probe

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPChecker_StatusOK(t *testing.T) {
	s := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		w.WriteHeader(200)
		w.Write([]byte(`{"status":"ok"}`))
	}))
	defer s.Close()

	out := NewHTTPChecker().Check(context.Background(), s.URL)
	assert.True(t, out.Success)
	assert.Equal(t, 200, out.StatusCode)
	require.NotNil(t, out.LatencyMS)
	assert.GreaterOrEqual(t, *out.LatencyMS, int64(0))
}

func TestHTTPChecker_Status500KeepsLatency(t *testing.T) {
	s := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(30 * time.Millisecond)
		http.Error(w, "boom", 500)
	}))
	defer s.Close()

	out := NewHTTPChecker().Check(context.Background(), s.URL)
	assert.False(t, out.Success)
	assert.Equal(t, 500, out.StatusCode)
	assert.True(t, out.Responded())
	require.NotNil(t, out.LatencyMS, "a non-2xx response still carries latency")
	assert.GreaterOrEqual(t, *out.LatencyMS, int64(30))
}

func TestHTTPChecker_RedirectStatusIsNotSuccess(t *testing.T) {
	s := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotModified)
	}))
	defer s.Close()

	out := NewHTTPChecker().Check(context.Background(), s.URL)
	assert.False(t, out.Success)
	assert.Equal(t, http.StatusNotModified, out.StatusCode)
}

func TestHTTPChecker_TimeoutDropsLatency(t *testing.T) {
	release := make(chan struct{})
	s := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer s.Close()
	defer close(release)

	chk := NewHTTPChecker()
	chk.Timeout = 50 * time.Millisecond
	start := time.Now()
	out := chk.Check(context.Background(), s.URL)

	assert.False(t, out.Success)
	assert.Equal(t, 0, out.StatusCode)
	assert.Nil(t, out.LatencyMS)
	assert.NotEmpty(t, out.Message)
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestHTTPChecker_ConnectionRefused(t *testing.T) {
	s := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := s.URL
	s.Close()

	out := NewHTTPChecker().Check(context.Background(), url)
	assert.False(t, out.Success)
	assert.False(t, out.Responded())
	assert.Nil(t, out.LatencyMS)
}

func TestHTTPChecker_BadURL(t *testing.T) {
	out := NewHTTPChecker().Check(context.Background(), "://nope")
	assert.False(t, out.Success)
	assert.Nil(t, out.LatencyMS)
}

func TestHTTPChecker_DefaultTimeout(t *testing.T) {
	assert.Equal(t, 5000*time.Millisecond, NewHTTPChecker().Timeout)
}
