package service

import (
	"context"
	"fmt"
	"os"

	"cloud.google.com/go/vertexai/genai"
	"google.golang.org/api/option"
)

// compile-time check that *VertexLLM implements LLM
var _ LLM = (*VertexLLM)(nil)

// VertexLLM is the production generative backend, a Gemini model on
// Vertex AI.
type VertexLLM struct {
	client *genai.Client
	model  *genai.GenerativeModel
}

// NewVertexLLM creates the Vertex AI client for the given project, location
// and model name. Credentials come from GOOGLE_APPLICATION_CREDENTIALS or
// ambient application-default credentials.
func NewVertexLLM(ctx context.Context, projectID, location, modelName string) (*VertexLLM, error) {
	var opts []option.ClientOption
	if creds := os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"); creds != "" {
		opts = append(opts, option.WithCredentialsFile(creds))
	}

	client, err := genai.NewClient(ctx, projectID, location, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating Vertex AI client: %w", err)
	}

	model := client.GenerativeModel(modelName)
	model.SetTemperature(0.7)
	model.SetTopP(0.8)
	model.SetTopK(40)

	return &VertexLLM{client: client, model: model}, nil
}

// Generate sends one prompt and returns the single completion. Errors are
// returned as-is — the Generator decides what failure means (fallback),
// not this adapter.
func (l *VertexLLM) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := l.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("generating content: %w", err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("model returned no candidates")
	}

	text, ok := resp.Candidates[0].Content.Parts[0].(genai.Text)
	if !ok {
		return "", fmt.Errorf("model returned a non-text part")
	}
	return string(text), nil
}

// Close releases the underlying gRPC connection.
func (l *VertexLLM) Close() error {
	return l.client.Close()
}
