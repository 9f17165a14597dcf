// internal/workers/campaign/image-analysis/models.go
package imageanalysis

import "campaign-orchestrator/internal/models"

type Input struct {
	ProductName string        `json:"product_name"`
	S3Info      models.S3Info `json:"s3_info"`
}

type Output struct {
	ImageAnalysis *models.ImageAnalysisResult `json:"image_analysis"`
}
