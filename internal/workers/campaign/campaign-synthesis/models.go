// internal/workers/campaign/campaign-synthesis/models.go
package campaignsynthesis

import "campaign-orchestrator/internal/models"

type Input struct {
	Record *models.WorkingRecord `json:"record"`
}

// Output carries the raw model text. Extraction and validation happen in
// the orchestrator.
type Output struct {
	Text string `json:"text"`
}

type novaRequest struct {
	Messages        []novaMessage       `json:"messages"`
	InferenceConfig novaInferenceConfig `json:"inferenceConfig"`
}

type novaMessage struct {
	Role    string        `json:"role"`
	Content []novaContent `json:"content"`
}

type novaContent struct {
	Text string `json:"text"`
}

type novaInferenceConfig struct {
	MaxTokens   int     `json:"maxTokens"`
	Temperature float64 `json:"temperature,omitempty"`
}

type novaResponse struct {
	Output struct {
		Message novaMessage `json:"message"`
	} `json:"output"`
}
