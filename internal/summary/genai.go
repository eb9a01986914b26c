package summary

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

// GenAISummarizer implements research.Summarizer over the Gemini API.
type GenAISummarizer struct {
	client *genai.Client
	model  string
}

// NewGenAISummarizer builds a Gemini-backed summarizer. An empty API
// key is an error here; callers wanting "capability absent" pass a nil
// research.Summarizer instead.
func NewGenAISummarizer(ctx context.Context, apiKey, model string) (*GenAISummarizer, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("genai api key is required")
	}
	if model == "" {
		model = "gemini-2.0-flash"
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apiKey})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	return &GenAISummarizer{client: client, model: model}, nil
}

// Summarize sends the prompt and returns the first candidate text.
func (s *GenAISummarizer) Summarize(ctx context.Context, prompt string) (string, error) {
	contents := []*genai.Content{
		genai.NewContentFromText(prompt, genai.RoleUser),
	}
	result, err := s.client.Models.GenerateContent(ctx, s.model, contents, nil)
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}
	return result.Text(), nil
}
