package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	bedrockruntime "github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
)

// Bedrock implements Generator on top of the AWS Bedrock runtime, targeting
// llama-family models.
type Bedrock struct {
	inner   *bedrockruntime.Client
	modelID string
}

// NewBedrock wraps the provided bedrockruntime client.
func NewBedrock(inner *bedrockruntime.Client, modelID string) *Bedrock {
	return &Bedrock{inner: inner, modelID: modelID}
}

// Generate invokes the model with the llama chat template and returns the
// generation text.
func (b *Bedrock) Generate(ctx context.Context, system, user string) (string, error) {
	body, err := json.Marshal(map[string]any{
		"prompt":      formatLlamaPrompt(system, user),
		"max_gen_len": 400,
		"temperature": 0.2,
	})
	if err != nil {
		return "", err
	}

	resp, err := b.inner.InvokeModel(ctx, &bedrockruntime.InvokeModelInput{
		ModelId:     &b.modelID,
		ContentType: awsString("application/json"),
		Accept:      awsString("application/json"),
		Body:        body,
	})
	if err != nil {
		return "", fmt.Errorf("bedrock invoke: %w", err)
	}

	var out struct {
		Generation string `json:"generation"`
	}
	if err := json.Unmarshal(resp.Body, &out); err != nil || out.Generation == "" {
		// Best-effort: some models answer with a different shape.
		return strings.TrimSpace(string(resp.Body)), nil
	}
	return strings.TrimSpace(out.Generation), nil
}

func awsString(s string) *string { return &s }

func formatLlamaPrompt(system, user string) string {
	return fmt.Sprintf("<|begin_of_text|><|start_header_id|>system<|end_header_id|>\n%s\n<|eot_id|><|start_header_id|>user<|end_header_id|>\n%s\n<|eot_id|>\n<|start_header_id|>assistant<|end_header_id|>\n", system, user)
}
