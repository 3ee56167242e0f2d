package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"google.golang.org/genai"
)

// GenAIConfig selects the Gemini API backend when APIKey is set and the
// Vertex AI backend (Application Default Credentials) otherwise.
type GenAIConfig struct {
	APIKey     string
	Project    string
	Location   string
	Model      string
	BaseURL    string
	HTTPClient *http.Client
}

// GenAIClient completes prompts through the official genai SDK.
type GenAIClient struct {
	client *genai.Client
	model  string
}

func NewGenAIClient(ctx context.Context, cfg GenAIConfig) (*GenAIClient, error) {
	if cfg.Model == "" {
		return nil, fmt.Errorf("empty model name")
	}
	cc := &genai.ClientConfig{HTTPClient: cfg.HTTPClient}
	if cfg.APIKey != "" {
		cc.Backend = genai.BackendGeminiAPI
		cc.APIKey = cfg.APIKey
	} else {
		if cfg.Project == "" || cfg.Location == "" {
			return nil, fmt.Errorf("vertex backend requires project and location")
		}
		cc.Backend = genai.BackendVertexAI
		cc.Project = cfg.Project
		cc.Location = cfg.Location
	}
	if cfg.BaseURL != "" {
		cc.HTTPOptions.BaseURL = cfg.BaseURL
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}
	return &GenAIClient{client: client, model: cfg.Model}, nil
}

func (c *GenAIClient) Complete(ctx context.Context, prompt string, opts Options) (string, error) {
	resp, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(prompt), generateConfig(opts))
	if err != nil {
		return "", upstreamFromGenAI(err)
	}
	if text := resp.Text(); text != "" {
		return text, nil
	}
	// blocked or empty candidates: hand back the envelope like the REST adapter does
	raw, err := json.Marshal(resp)
	if err != nil {
		return "", fmt.Errorf("failed to marshal genai response: %w", err)
	}
	return CompletionText(raw), nil
}

func generateConfig(opts Options) *genai.GenerateContentConfig {
	return &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(opts.Temperature),
		TopK:            opts.TopK,
		TopP:            opts.TopP,
		MaxOutputTokens: opts.MaxOutputTokens,
	}
}

func upstreamFromGenAI(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return &UpstreamError{Status: apiErr.Code, Body: apiErr.Message}
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) && apiErrPtr != nil {
		return &UpstreamError{Status: apiErrPtr.Code, Body: apiErrPtr.Message}
	}
	return &UpstreamError{Body: err.Error()}
}
