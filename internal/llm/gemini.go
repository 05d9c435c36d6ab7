package llm

import (
	"context"
	"fmt"

	"google.golang.org/genai"

	"isthatstilltrue/internal/config"
)

const (
	// DefaultGeminiModel is the default Gemini model for fact generation.
	DefaultGeminiModel = "gemini-2.5-flash"
)

// GeminiProvider generates text through the Gemini API.
type GeminiProvider struct {
	modelName string
	gClient   *genai.Client
}

// NewGeminiProvider creates a Gemini-backed provider.
func NewGeminiProvider(cfg config.GeminiConfig) (*GeminiProvider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini API key is required. Set GEMINI_API_KEY environment variable or ai.gemini.api_key in config file")
	}

	modelName := cfg.Model
	if modelName == "" {
		modelName = DefaultGeminiModel
	}

	gClient, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeminiProvider{
		modelName: modelName,
		gClient:   gClient,
	}, nil
}

// Name returns the provider name.
func (p *GeminiProvider) Name() string { return "gemini" }

// GenerateText sends the prompt to Gemini and returns the raw response text.
func (p *GeminiProvider) GenerateText(ctx context.Context, prompt string, opts Options) (string, error) {
	contents := []*genai.Content{{
		Parts: []*genai.Part{{Text: prompt}},
		Role:  "user",
	}}

	genConfig := &genai.GenerateContentConfig{}
	if opts.Temperature > 0 {
		genConfig.Temperature = genai.Ptr(opts.Temperature)
	}
	if opts.MaxTokens > 0 {
		genConfig.MaxOutputTokens = opts.MaxTokens
	}

	model := opts.Model
	if model == "" {
		model = p.modelName
	}

	resp, err := p.gClient.Models.GenerateContent(ctx, model, contents, genConfig)
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}

	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("empty response from model")
	}

	return text, nil
}
