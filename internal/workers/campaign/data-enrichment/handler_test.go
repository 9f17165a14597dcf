// internal/workers/campaign/data-enrichment/handler_test.go
package dataenrichment

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	apperrors "campaign-orchestrator/internal/common/errors"
	"campaign-orchestrator/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Logger Implementation
// ==========================

type TestLogger struct {
	t      *testing.T
	fields map[string]interface{}
}

func NewTestLogger(t *testing.T) *TestLogger {
	return &TestLogger{t: t, fields: make(map[string]interface{})}
}

func (l *TestLogger) Info(msg string, fields map[string]interface{}) {
	l.t.Logf("INFO: %s %v", msg, l.mergeFields(fields))
}

func (l *TestLogger) Warn(msg string, fields map[string]interface{}) {
	l.t.Logf("WARN: %s %v", msg, l.mergeFields(fields))
}

func (l *TestLogger) Error(msg string, fields map[string]interface{}) {
	l.t.Logf("ERROR: %s %v", msg, l.mergeFields(fields))
}

func (l *TestLogger) With(fields map[string]interface{}) Logger {
	return &TestLogger{t: l.t, fields: l.mergeFields(fields)}
}

func (l *TestLogger) mergeFields(fields map[string]interface{}) map[string]interface{} {
	all := make(map[string]interface{}, len(l.fields)+len(fields))
	for k, v := range l.fields {
		all[k] = v
	}
	for k, v := range fields {
		all[k] = v
	}
	return all
}

// ==========================
// Test Helper Functions
// ==========================

func createTestConfig(baseURL string) *Config {
	cfg := LoadConfig()
	cfg.YouTubeBaseURL = baseURL
	cfg.YouTubeAPIKey = "test-key"
	cfg.Timeout = time.Second
	return cfg
}

const youtubeResponse = `{
  "pageInfo": {"totalResults": 1200},
  "items": [
    {"id": {"kind": "youtube#video", "videoId": "aaaaaaaaaaa"},
     "snippet": {"title": "Daily routine vlog", "description": "Morning hydration routine", "channelTitle": "Life"}},
    {"id": {"kind": "youtube#video", "videoId": "bbbbbbbbbbb"},
     "snippet": {"title": "EcoSmart Bottle review", "description": "Smart bottle hydration test and review", "channelTitle": "TechTalk", "publishedAt": "2026-01-10T00:00:00Z"}},
    {"id": {"kind": "youtube#video", "videoId": "short"},
     "snippet": {"title": "EcoSmart Bottle bad id", "description": "", "channelTitle": "X"}},
    {"id": {"kind": "youtube#channel", "channelId": "UC123"},
     "snippet": {"title": "EcoSmart channel"}}
  ]
}`

// ==========================
// Core Functionality Tests
// ==========================

func TestHandler_Execute_Success(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		assert.Equal(t, "/search", r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, "EcoSmart Bottle Lifestyle Shaker", q.Get("q"))
		assert.Equal(t, "snippet", q.Get("part"))
		assert.Equal(t, "video", q.Get("type"))
		assert.Equal(t, "moderate", q.Get("safeSearch"))
		assert.Equal(t, "relevance", q.Get("order"))
		assert.Equal(t, "test-key", q.Get("key"))
		w.Write([]byte(youtubeResponse))
	}))
	defer server.Close()

	handler := NewHandler(createTestConfig(server.URL), NewTestLogger(t))
	out, err := handler.Execute(context.Background(), &Input{
		ProductName: "EcoSmart Bottle",
		Category:    "Lifestyle",
		ImageLabels: []string{"Bottle", "Shaker"},
	})
	require.NoError(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))

	result := out.Enrichment
	assert.Equal(t, 1200, result.TotalResults)
	require.Len(t, result.Videos, 2)
	assert.Equal(t, "bbbbbbbbbbb", result.Videos[0].VideoID, "ranked by relevance")
	assert.Equal(t, "https://www.youtube.com/watch?v=bbbbbbbbbbb", result.Videos[0].URL)
	assert.Greater(t, result.Videos[0].RelevanceScore, result.Videos[1].RelevanceScore)
	assert.Equal(t, 2, result.TrendingKeywords[0].Frequency)
	assert.Contains(t, result.TrendingKeywords, models.KeywordCount{Keyword: "hydration", Frequency: 2})
	assert.Contains(t, result.ContentThemes, "review")
	assert.Contains(t, result.ContentThemes, "lifestyle")
}

func TestBuildQuery(t *testing.T) {
	handler := NewHandler(createTestConfig("http://unused"), NewTestLogger(t))

	tests := []struct {
		name  string
		input *Input
		want  string
	}{
		{"name and category", &Input{ProductName: "Desk Lamp", Category: "Home"}, "Desk Lamp Home"},
		{"labels capped at three", &Input{ProductName: "Lamp", ImageLabels: []string{"Light", "Table", "Wood", "Room"}}, "Lamp Light Table Wood"},
		{"duplicate labels skipped", &Input{ProductName: "Water Bottle", ImageLabels: []string{"bottle", "Steel"}}, "Water Bottle Steel"},
		{"empty", &Input{}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, handler.buildQuery(tt.input))
		})
	}
}

func TestRelevanceScore(t *testing.T) {
	terms := []string{"smart", "bottle"}
	assert.Equal(t, 6, relevanceScore("Smart Bottle", "a smart bottle", terms))
	assert.Equal(t, 1, relevanceScore("Unrelated", "bottle", terms))
	assert.Equal(t, 0, relevanceScore("", "", terms))
}

// ==========================
// Error Handling Tests
// ==========================

func TestHandler_Execute_Errors(t *testing.T) {
	tests := []struct {
		name     string
		handler  http.HandlerFunc
		timeout  time.Duration
		wantErr  error
		wantCode apperrors.ErrorCode
	}{
		{
			name: "quota exceeded",
			handler: func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, `{"error":"quotaExceeded"}`, http.StatusForbidden)
			},
			wantErr:  ErrEnrichmentFailed,
			wantCode: apperrors.ErrCodeCollaboratorUnavailable,
		},
		{
			name: "timeout",
			handler: func(w http.ResponseWriter, r *http.Request) {
				time.Sleep(300 * time.Millisecond)
			},
			timeout:  30 * time.Millisecond,
			wantErr:  ErrEnrichmentTimeout,
			wantCode: apperrors.ErrCodeCollaboratorTimeout,
		},
		{
			name: "malformed body",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{"items": [`))
			},
			wantErr:  ErrEnrichmentMalformed,
			wantCode: apperrors.ErrCodeMalformedOutput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls int32
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				atomic.AddInt32(&calls, 1)
				tt.handler(w, r)
			}))
			defer server.Close()

			cfg := createTestConfig(server.URL)
			if tt.timeout > 0 {
				cfg.Timeout = tt.timeout
			}
			out, err := NewHandler(cfg, NewTestLogger(t)).Execute(context.Background(), &Input{ProductName: "Lamp"})
			assert.Nil(t, out)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, tt.wantCode, apperrors.Classify(err))
			assert.Equal(t, int32(1), atomic.LoadInt32(&calls), "no retries")
		})
	}
}

func TestHandler_Execute_EmptyQuery(t *testing.T) {
	_, err := NewHandler(createTestConfig("http://unused"), NewTestLogger(t)).Execute(context.Background(), &Input{})
	assert.ErrorIs(t, err, ErrEmptyQuery)
}
