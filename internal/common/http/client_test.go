package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_DoJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "POST", r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "secret", r.Header.Get("X-Api-Key"))

		var in map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		json.NewEncoder(w).Encode(map[string]string{"echo": in["prompt"]})
	}))
	defer server.Close()

	var out struct {
		Echo string `json:"echo"`
	}
	err := NewClient(time.Second).DoJSON(context.Background(), "POST", server.URL,
		map[string]string{"X-Api-Key": "secret"}, map[string]string{"prompt": "hi"}, &out)
	require.NoError(t, err)
	assert.Equal(t, "hi", out.Echo)
}

func TestClient_DoJSON_StatusError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}))
	defer server.Close()

	err := NewClient(time.Second).DoJSON(context.Background(), "GET", server.URL, nil, nil, nil)
	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusTooManyRequests, statusErr.StatusCode)
	assert.Equal(t, "quota exceeded", statusErr.Body)
}

func TestClient_DoJSON_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := NewClient(time.Second).DoJSON(ctx, "GET", server.URL, nil, nil, nil)
	require.Error(t, err)
	assert.True(t, IsTimeout(ctx, err))
}

func TestIsTimeout(t *testing.T) {
	assert.False(t, IsTimeout(context.Background(), nil))
	assert.False(t, IsTimeout(context.Background(), errors.New("connection refused")))
	assert.True(t, IsTimeout(context.Background(), context.DeadlineExceeded))
}
