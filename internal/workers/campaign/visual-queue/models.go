// internal/workers/campaign/visual-queue/models.go
package visualqueue

import "time"

type Input struct {
	ProductID     string   `json:"product_id"`
	CorrelationID string   `json:"correlation_id"`
	Prompts       []string `json:"prompts"`
}

type Output struct {
	MessageID string `json:"message_id"`
	Prompts   int    `json:"prompts"`
}

// VisualJob is the message body consumed by the image generation workers.
type VisualJob struct {
	ProductID     string    `json:"product_id"`
	CorrelationID string    `json:"correlation_id"`
	Prompts       []string  `json:"prompts"`
	RequestedAt   time.Time `json:"requested_at"`
}
