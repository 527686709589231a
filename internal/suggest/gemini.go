package suggest

import (
	"context"
	"fmt"
	"net/http"

	"github.com/rcliao/studylog/internal/model"
	"google.golang.org/genai"
)

const defaultGeminiModel = "gemini-3-flash-preview"

// GeminiProvider uses the Gemini API with a JSON response schema.
type GeminiProvider struct {
	client *genai.Client
	model  string
}

// NewGeminiProvider creates a Gemini provider. baseURL and httpClient are optional.
func NewGeminiProvider(ctx context.Context, apiKey, model, baseURL string, httpClient *http.Client) (*GeminiProvider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini API key required")
	}
	if model == "" {
		model = defaultGeminiModel
	}

	cc := &genai.ClientConfig{
		APIKey:     apiKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: httpClient,
	}
	if baseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: baseURL}
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return &GeminiProvider{client: client, model: model}, nil
}

func (p *GeminiProvider) Name() string { return "gemini" }

func (p *GeminiProvider) Suggest(ctx context.Context, text string, typ model.EntryType) (*model.Suggestion, error) {
	resp, err := p.client.Models.GenerateContent(ctx, p.model, genai.Text(Prompt(text, typ)), &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   suggestionSchema(),
	})
	if err != nil {
		return nil, fmt.Errorf("gemini request failed: %w", err)
	}
	return ParseSuggestion(resp.Text())
}

func suggestionSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"translation": {Type: genai.TypeString},
			"example":     {Type: genai.TypeString},
			"notes":       {Type: genai.TypeString},
		},
		Required: []string{"translation", "example"},
	}
}
