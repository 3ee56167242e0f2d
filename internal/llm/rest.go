package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

const DefaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"

type generateRequest struct {
	Contents         []requestContent `json:"contents"`
	GenerationConfig generationConfig `json:"generationConfig"`
}

type requestContent struct {
	Role  string        `json:"role,omitempty"`
	Parts []requestPart `json:"parts"`
}

type requestPart struct {
	Text string `json:"text"`
}

type generationConfig struct {
	Temperature     float32  `json:"temperature"`
	TopK            *float32 `json:"topK,omitempty"`
	TopP            *float32 `json:"topP,omitempty"`
	MaxOutputTokens int32    `json:"maxOutputTokens,omitempty"`
}

// RESTClient calls the generateContent endpoint directly over HTTP.
type RESTClient struct {
	baseURL    string
	model      string
	auth       Authenticator
	httpClient *http.Client
}

func NewRESTClient(baseURL, model string, auth Authenticator, httpClient *http.Client) (*RESTClient, error) {
	if model == "" {
		return nil, fmt.Errorf("empty model name")
	}
	if auth == nil {
		return nil, fmt.Errorf("no authenticator configured")
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &RESTClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		model:      model,
		auth:       auth,
		httpClient: httpClient,
	}, nil
}

func (c *RESTClient) endpoint() string {
	return fmt.Sprintf("%s/models/%s:generateContent", c.baseURL, url.PathEscape(c.model))
}

func (c *RESTClient) Complete(ctx context.Context, prompt string, opts Options) (string, error) {
	payload := generateRequest{
		Contents: []requestContent{{
			Role:  "user",
			Parts: []requestPart{{Text: prompt}},
		}},
		GenerationConfig: generationConfig{
			Temperature:     opts.Temperature,
			TopK:            opts.TopK,
			TopP:            opts.TopP,
			MaxOutputTokens: opts.MaxOutputTokens,
		},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal generate request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(), bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to build generate request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if err := c.auth.Authorize(ctx, req); err != nil {
		return "", &UpstreamError{Body: err.Error()}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", &UpstreamError{Body: err.Error()}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &UpstreamError{Status: resp.StatusCode, Body: fmt.Sprintf("failed to read response body: %v", err)}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &UpstreamError{Status: resp.StatusCode, Body: string(respBody)}
	}
	return CompletionText(respBody), nil
}
