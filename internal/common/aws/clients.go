// internal/common/aws/clients.go
package aws

import (
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockagentruntime"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/aws-sdk-go-v2/service/rekognition"
)

func NewRekognitionClient(cfg aws.Config) *rekognition.Client {
	return rekognition.NewFromConfig(cfg)
}

func NewBedrockAgentClient(cfg aws.Config) *bedrockagentruntime.Client {
	return bedrockagentruntime.NewFromConfig(cfg)
}

func NewBedrockRuntimeClient(cfg aws.Config) *bedrockruntime.Client {
	return bedrockruntime.NewFromConfig(cfg)
}
