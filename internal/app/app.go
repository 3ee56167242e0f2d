// Package app wires configuration into the concrete clients shared by the
// HTTP server, the queue worker and the CLI.
package app

import (
	"context"
	"net/http"

	"github.com/muhammadolammi/musecareer/internal/analysis"
	"github.com/muhammadolammi/musecareer/internal/config"
	"github.com/muhammadolammi/musecareer/internal/events"
	"github.com/muhammadolammi/musecareer/internal/llm"
	"github.com/muhammadolammi/musecareer/internal/logger"
	"github.com/muhammadolammi/musecareer/internal/objectstore"
	"github.com/muhammadolammi/musecareer/internal/prompt"
)

const agentName = "cv_analyzer"

// NewProvider builds the completion client selected by configuration.
func NewProvider(ctx context.Context, cfg config.LLMConfig) (llm.TextCompletionProvider, error) {
	httpClient := &http.Client{Timeout: cfg.Timeout}

	switch cfg.Provider {
	case config.ProviderGenAI:
		gc := llm.GenAIConfig{
			Project:  cfg.Project,
			Location: cfg.Location,
			Model:    cfg.Model,
			BaseURL:  cfg.BaseURL,
		}
		if cfg.Auth != config.AuthBearer && cfg.APIKey != "" {
			gc.APIKey = cfg.APIKey
			gc.HTTPClient = httpClient
			return llm.NewGenAIClient(ctx, gc)
		}
		// Vertex: hand the SDK an OAuth2 client so LLM_TIMEOUT applies here too
		bearer, err := llm.NewServiceAccountAuth(ctx, cfg.CredentialsFile)
		if err != nil {
			return nil, err
		}
		gc.HTTPClient = bearer.HTTPClient(ctx, cfg.Timeout)
		return llm.NewGenAIClient(ctx, gc)
	case config.ProviderAgent:
		return llm.NewAgentClient(ctx, cfg.APIKey, cfg.Model, agentName, prompt.SystemInstruction)
	default:
		var auth llm.Authenticator
		if cfg.Auth == config.AuthBearer {
			bearer, err := llm.NewServiceAccountAuth(ctx, cfg.CredentialsFile)
			if err != nil {
				return nil, err
			}
			auth = bearer
		} else {
			auth = llm.APIKeyAuth{Key: cfg.APIKey}
		}
		return llm.NewRESTClient(cfg.BaseURL, cfg.Model, auth, httpClient)
	}
}

// NewPublisher connects to RabbitMQ when RABBITMQ_URL is set. A broker that
// cannot be reached disables updates instead of failing startup.
func NewPublisher(cfg config.RabbitConfig, log *logger.Logger) events.Publisher {
	if cfg.URL == "" {
		return events.Noop{}
	}
	pub, err := events.NewAMQPPublisher(cfg.URL, cfg.Exchange)
	if err != nil {
		log.Warn("rabbitmq unavailable, analysis updates disabled", "error", err)
		return events.Noop{}
	}
	return pub
}

// NewFileStore returns nil when R2 is not configured.
func NewFileStore(ctx context.Context, cfg config.Config) (*objectstore.Store, error) {
	if !cfg.R2Enabled() {
		return nil, nil
	}
	return objectstore.New(ctx, cfg.R2)
}

// NewAnalyzer builds the full pipeline from configuration.
func NewAnalyzer(ctx context.Context, cfg config.Config, publisher events.Publisher, log *logger.Logger) (*analysis.Analyzer, error) {
	provider, err := NewProvider(ctx, cfg.LLM)
	if err != nil {
		return nil, err
	}
	return analysis.NewAnalyzer(provider, cfg.LLM.Options, publisher, log), nil
}
