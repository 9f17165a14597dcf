// internal/common/aws/sqs.go
package aws

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
)

type SQSClient struct {
	client   *sqs.Client
	queueURL string
}

func NewSQSClient(cfg aws.Config, queueURL string) *SQSClient {
	return &SQSClient{client: sqs.NewFromConfig(cfg), queueURL: queueURL}
}

// SendJSON enqueues body and returns the SQS message id.
func (s *SQSClient) SendJSON(ctx context.Context, body string) (string, error) {
	out, err := s.client.SendMessage(ctx, &sqs.SendMessageInput{
		QueueUrl:    aws.String(s.queueURL),
		MessageBody: aws.String(body),
	})
	if err != nil {
		return "", err
	}
	return aws.ToString(out.MessageId), nil
}
