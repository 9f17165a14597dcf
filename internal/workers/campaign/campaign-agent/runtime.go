// internal/workers/campaign/campaign-agent/runtime.go
package campaignagent

import (
	"context"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockagentruntime"
	"github.com/aws/aws-sdk-go-v2/service/bedrockagentruntime/types"
)

// AgentRuntime runs one agent session and returns the full completion text.
type AgentRuntime interface {
	Invoke(ctx context.Context, agentID, aliasID, sessionID, inputText string) (string, error)
}

type bedrockAgentRuntime struct {
	client *bedrockagentruntime.Client
}

func NewBedrockAgentRuntime(client *bedrockagentruntime.Client) AgentRuntime {
	return &bedrockAgentRuntime{client: client}
}

func (b *bedrockAgentRuntime) Invoke(ctx context.Context, agentID, aliasID, sessionID, inputText string) (string, error) {
	out, err := b.client.InvokeAgent(ctx, &bedrockagentruntime.InvokeAgentInput{
		AgentId:      aws.String(agentID),
		AgentAliasId: aws.String(aliasID),
		SessionId:    aws.String(sessionID),
		InputText:    aws.String(inputText),
	})
	if err != nil {
		return "", err
	}

	stream := out.GetStream()
	defer stream.Close()

	var sb strings.Builder
	for event := range stream.Events() {
		if chunk, ok := event.(*types.ResponseStreamMemberChunk); ok {
			sb.Write(chunk.Value.Bytes)
		}
	}
	if err := stream.Err(); err != nil {
		return "", err
	}
	return sb.String(), nil
}
