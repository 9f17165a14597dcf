package aws

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/aws-sdk-go-v2/service/rekognition"
	"github.com/aws/aws-sdk-go-v2/service/rekognition/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test helpers
// ==========================

// failingEndpoint answers every request with 503 and counts the hits.
func failingEndpoint(t *testing.T) (*httptest.Server, *int32) {
	var hits int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte(`{"__type":"ServiceUnavailableException","message":"try later"}`))
	}))
	t.Cleanup(server.Close)
	return server, &hits
}

func testConfig(t *testing.T) aws.Config {
	t.Setenv("AWS_ACCESS_KEY_ID", "test")
	t.Setenv("AWS_SECRET_ACCESS_KEY", "test")
	t.Setenv("AWS_SESSION_TOKEN", "")
	t.Setenv("AWS_PROFILE", "")

	cfg, err := LoadConfig(context.Background(), "us-east-1")
	require.NoError(t, err)
	return cfg
}

// ==========================
// LoadConfig
// ==========================

func TestLoadConfig_SingleAttempt(t *testing.T) {
	cfg := testConfig(t)

	assert.Equal(t, "us-east-1", cfg.Region)
	require.NotNil(t, cfg.Retryer)
	assert.Equal(t, 1, cfg.Retryer().MaxAttempts())
}

func TestLoadConfig_RekognitionNotRetried(t *testing.T) {
	server, hits := failingEndpoint(t)
	client := rekognition.NewFromConfig(testConfig(t), func(o *rekognition.Options) {
		o.EndpointResolver = rekognition.EndpointResolverFromURL(server.URL)
	})

	_, err := client.DetectLabels(context.Background(), &rekognition.DetectLabelsInput{
		Image: &types.Image{S3Object: &types.S3Object{
			Bucket: aws.String("product-images-bucket-v2"),
			Name:   aws.String("uploads/u-1/bottle.jpg"),
		}},
	})

	require.Error(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(hits))
}

func TestLoadConfig_BedrockNotRetried(t *testing.T) {
	server, hits := failingEndpoint(t)
	client := bedrockruntime.NewFromConfig(testConfig(t), func(o *bedrockruntime.Options) {
		o.EndpointResolver = bedrockruntime.EndpointResolverFromURL(server.URL)
	})

	_, err := client.InvokeModel(context.Background(), &bedrockruntime.InvokeModelInput{
		ModelId:     aws.String("anthropic.claude-v2"),
		ContentType: aws.String("application/json"),
		Body:        []byte(`{"prompt":"hi"}`),
	})

	require.Error(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(hits))
}
