package llm

import (
	"context"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

// AzureOpenAI implements Generator via the Azure OpenAI Chat Completions API.
type AzureOpenAI struct {
	client     *openai.Client
	deployment string
}

// NewAzureOpenAI builds a client for one Azure OpenAI deployment.
func NewAzureOpenAI(endpoint, deployment, apiKey, apiVersion string) *AzureOpenAI {
	cfg := openai.DefaultAzureConfig(apiKey, endpoint)
	if apiVersion != "" {
		cfg.APIVersion = apiVersion
	}
	cfg.AzureModelMapperFunc = func(string) string { return deployment }
	return &AzureOpenAI{
		client:     openai.NewClientWithConfig(cfg),
		deployment: deployment,
	}
}

// Generate runs one chat completion. Low temperature keeps the output close
// to deterministic, which the query translation path relies on.
func (a *AzureOpenAI) Generate(ctx context.Context, system, user string) (string, error) {
	resp, err := a.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: a.deployment,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
		Temperature: 0.2,
	})
	if err != nil {
		return "", fmt.Errorf("azure openai completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("azure openai returned no choices")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
