package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type echoPayload struct {
	Name string `json:"name"`
}

func TestInvokeSerializesJSONPayload(t *testing.T) {
	ctx := context.Background()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		assert.NotEmpty(t, r.Header.Get(HeaderRequestID), "a correlation id is attached automatically")

		var in echoPayload
		require.NoError(t, json.NewDecoder(r.Body).Decode(&in))

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(in)
	}))
	defer srv.Close()

	mgr := NewManager(ctx)

	resp, err := mgr.Invoke(ctx, http.MethodPost, srv.URL, echoPayload{Name: "permit"}, nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var out echoPayload
	require.NoError(t, resp.Decode(ctx, &out))
	assert.Equal(t, "permit", out.Name)
}

func TestInvokeKeepsCallerRequestID(t *testing.T) {
	ctx := context.Background()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "caller-id", r.Header.Get(HeaderRequestID))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	mgr := NewManager(ctx)

	headers := http.Header{}
	headers.Set(HeaderRequestID, "caller-id")

	resp, err := mgr.Invoke(ctx, http.MethodGet, srv.URL, nil, headers)
	require.NoError(t, err)
	require.NoError(t, resp.Close())
}

func TestInvokeDoesNotRetryByDefault(t *testing.T) {
	ctx := context.Background()

	var attempts atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	mgr := NewManager(ctx)

	resp, err := mgr.Invoke(ctx, http.MethodGet, srv.URL, nil, nil)
	require.NoError(t, err, "a non-2xx status is a response, not a transport failure")
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	require.NoError(t, resp.Close())

	assert.Equal(t, int64(1), attempts.Load(), "absent an opt-in policy a request is attempted exactly once")
}

func TestInvokeRetriesWhenOptedIn(t *testing.T) {
	ctx := context.Background()

	var attempts atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var in echoPayload
		require.NoError(t, json.NewDecoder(r.Body).Decode(&in), "the body must be rewound between attempts")

		if attempts.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(in)
	}))
	defer srv.Close()

	mgr := NewManager(ctx, WithHTTPRetryPolicy(&RetryPolicy{
		MaxAttempts: 3,
		Backoff:     func(int) time.Duration { return time.Millisecond },
	}))

	resp, err := mgr.Invoke(ctx, http.MethodPost, srv.URL, echoPayload{Name: "retry"}, nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, resp.Close())

	assert.Equal(t, int64(3), attempts.Load())
}

func TestToContentHonorsBodyCap(t *testing.T) {
	ctx := context.Background()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(make([]byte, 64))
	}))
	defer srv.Close()

	mgr := NewManager(ctx, WithHTTPMaxResponseBody(16))

	resp, err := mgr.Invoke(ctx, http.MethodGet, srv.URL, nil, nil)
	require.NoError(t, err)

	data, err := resp.ToContent(ctx)
	assert.ErrorIs(t, err, ErrResponseTooLarge)
	assert.Len(t, data, 16)
}

func TestInvokeTransportFailure(t *testing.T) {
	ctx := context.Background()

	mgr := NewManager(ctx)

	_, err := mgr.Invoke(ctx, http.MethodGet, "http://127.0.0.1:1", nil, nil)
	require.Error(t, err)
}
