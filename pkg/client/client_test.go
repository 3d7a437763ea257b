package client

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/ToxPredict/pkg/errors"
)

// ─────────────────────────────────────────────────────────────────────────────
// Helpers
// ─────────────────────────────────────────────────────────────────────────────

func newTestClient(t *testing.T, handler http.HandlerFunc, opts ...Option) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	opts = append([]Option{WithRetryWait(time.Millisecond, 5*time.Millisecond)}, opts...)
	client, err := NewClient(server.URL, opts...)
	require.NoError(t, err)
	return client
}

type testLogger struct {
	mu      sync.Mutex
	lastMsg string
	count   int32
}

func (l *testLogger) Debugf(format string, args ...interface{}) { l.log(format, args...) }
func (l *testLogger) Infof(format string, args ...interface{})  { l.log(format, args...) }
func (l *testLogger) Errorf(format string, args ...interface{}) { l.log(format, args...) }

func (l *testLogger) log(format string, args ...interface{}) {
	atomic.AddInt32(&l.count, 1)
	l.mu.Lock()
	l.lastMsg = fmt.Sprintf(format, args...)
	l.mu.Unlock()
}

func writeBody(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, body)
}

// ─────────────────────────────────────────────────────────────────────────────
// Constructor
// ─────────────────────────────────────────────────────────────────────────────

func TestNewClient(t *testing.T) {
	c, err := NewClient("http://api.example.com/")
	require.NoError(t, err)
	assert.Equal(t, "http://api.example.com", c.baseURL)
	assert.Equal(t, "toxpredict-go-sdk/"+Version, c.userAgent)
	assert.Equal(t, 3, c.retryMax)
	assert.Equal(t, 30*time.Second, c.httpClient.Timeout)
	assert.Same(t, c.Predictions(), c.Predictions())
	assert.Same(t, c.Molecules(), c.Molecules())
}

func TestNewClient_InvalidBaseURL(t *testing.T) {
	for _, u := range []string{"", "ftp://host", "://bad"} {
		_, err := NewClient(u)
		require.Error(t, err, u)
		assert.True(t, errors.IsCode(err, errors.ErrCodeConfigInvalid), u)
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Request handling
// ─────────────────────────────────────────────────────────────────────────────

func TestDo_SetsHeaders(t *testing.T) {
	var got http.Header
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
		writeBody(w, http.StatusOK, `{}`)
	}, WithUserAgent("probe/1"), WithHeader("X-Api-Key", "secret"), WithHeader("User-Agent", "spoof"))

	require.NoError(t, c.post(context.Background(), "x", map[string]string{"a": "b"}, nil))
	assert.Equal(t, "probe/1", got.Get("User-Agent"))
	assert.Equal(t, "secret", got.Get("X-Api-Key"))
	assert.Equal(t, "application/json", got.Get("Content-Type"))
	assert.Len(t, got.Get("X-Request-ID"), 36)
}

func TestDo_APIError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Request-ID", "srv-1")
		writeBody(w, http.StatusBadRequest, `{"error":"Invalid SMILES","code":"MOL_001","detail":"C1CC"}`)
	})

	err := c.get(context.Background(), "/x", nil)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Equal(t, "MOL_001", apiErr.Code)
	assert.Equal(t, "Invalid SMILES", apiErr.Message)
	assert.Equal(t, "srv-1", apiErr.RequestID)
	assert.True(t, apiErr.IsInvalidInput())
	assert.False(t, apiErr.IsServerError())
	assert.Equal(t, "toxpredict: MOL_001 (HTTP 400): Invalid SMILES: C1CC [request_id=srv-1]", apiErr.Error())
}

func TestDo_NonJSONErrorBody(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream exploded", http.StatusInternalServerError)
	})

	err := c.get(context.Background(), "/x", nil)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "upstream exploded", apiErr.Message)
	assert.True(t, apiErr.IsServerError())
}

func TestDo_RetriesGatewayErrors(t *testing.T) {
	var calls int32
	logger := &testLogger{}
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			writeBody(w, http.StatusBadGateway, `{"error":"bad gateway"}`)
			return
		}
		writeBody(w, http.StatusOK, `{"status":"alive"}`)
	}, WithLogger(logger))

	h, err := c.Health(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "alive", h.Status)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
	assert.NotZero(t, atomic.LoadInt32(&logger.count))
}

func TestDo_RetryExhausted(t *testing.T) {
	var calls int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		writeBody(w, http.StatusGatewayTimeout, `{"error":"timeout"}`)
	}, WithRetryMax(2))

	err := c.get(context.Background(), "/x", nil)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusGatewayTimeout, apiErr.StatusCode)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestDo_FinalErrorsAreNotRetried(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"bad request", http.StatusBadRequest, `{"error":"Numerical fields error","code":"PRD_001"}`},
		{"inference failure", http.StatusInternalServerError, `{"error":"inference failed","code":"AI_002"}`},
		{"model not loaded", http.StatusServiceUnavailable, `{"error":"Model not loaded","code":"PRD_002"}`},
		{"broken bundle", http.StatusServiceUnavailable, `{"error":"artifact bundle is inconsistent","code":"CFG_001"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls int32
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				atomic.AddInt32(&calls, 1)
				writeBody(w, tt.status, tt.body)
			})
			err := c.get(context.Background(), "/x", nil)
			require.Error(t, err)
			assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
		})
	}
}

func TestDo_TransientUnavailableIsRetried(t *testing.T) {
	var calls int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			writeBody(w, http.StatusServiceUnavailable, `{"error":"service unavailable","code":"COMMON_008"}`)
			return
		}
		writeBody(w, http.StatusOK, `{}`)
	})
	require.NoError(t, c.get(context.Background(), "/x", nil))
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestDo_RateLimitedHonorsRetryAfter(t *testing.T) {
	var calls int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.Header().Set("Retry-After", "0")
			writeBody(w, http.StatusTooManyRequests, `{"error":"rate limit exceeded"}`)
			return
		}
		writeBody(w, http.StatusOK, `{}`)
	})
	require.NoError(t, c.get(context.Background(), "/x", nil))
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestDo_ContextCancelled(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeBody(w, http.StatusBadGateway, `{}`)
	}, WithRetryWait(time.Second, time.Second))

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	err := c.get(ctx, "/x", nil)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestDo_BadResponseJSON(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeBody(w, http.StatusOK, `{not json`)
	})
	_, err := c.Health(context.Background())
	assert.True(t, errors.IsCode(err, errors.ErrCodeSerialization))
}

func TestCalculateBackoff(t *testing.T) {
	c := &Client{retryWaitMin: 100 * time.Millisecond, retryWaitMax: 300 * time.Millisecond}
	for attempt, base := range map[int]time.Duration{1: 100 * time.Millisecond, 2: 200 * time.Millisecond, 5: 300 * time.Millisecond} {
		got := c.calculateBackoff(attempt)
		assert.GreaterOrEqual(t, got, base)
		assert.Less(t, got, base+base/4+time.Millisecond)
	}
}

//Personal.AI order the ending
