package keywords

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// GenAI extracts keywords by asking a Gemini model for the top
// keyphrases of a summary. It is the online counterpart of Frequency
// and is selected through configuration.
type GenAI struct {
	client *genai.Client
	model  string
}

// NewGenAI creates a Gemini-backed extractor.
func NewGenAI(ctx context.Context, apiKey, model string) (*GenAI, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("GenAI API key is required")
	}
	if model == "" {
		model = "gemini-2.0-flash"
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: apiKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}

	return &GenAI{client: client, model: model}, nil
}

// Extract implements Extractor.
func (g *GenAI) Extract(ctx context.Context, text string, max int) (string, error) {
	if max <= 0 {
		max = DefaultMax
	}
	if len(strings.TrimSpace(text)) < minTextLen {
		return "", nil
	}

	prompt := fmt.Sprintf(
		"Extract at most %d short keyphrases (1-2 words each) that describe this book summary. "+
			"Reply with only the keyphrases, comma-separated, no numbering:\n\n%s",
		max, text)

	contents := []*genai.Content{
		genai.NewContentFromText(prompt, genai.RoleUser),
	}
	result, err := g.client.Models.GenerateContent(ctx, g.model, contents, nil)
	if err != nil {
		return "", fmt.Errorf("GenAI keyword extraction failed: %w", err)
	}

	parts := strings.Split(result.Text(), ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, strings.ToLower(p))
		}
	}
	if len(out) > max {
		out = out[:max]
	}
	return strings.Join(out, ", "), nil
}
