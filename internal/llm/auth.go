package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const cloudPlatformScope = "https://www.googleapis.com/auth/cloud-platform"

// Authenticator decorates an outbound model request with credentials.
type Authenticator interface {
	Authorize(ctx context.Context, req *http.Request) error
}

// APIKeyAuth sends a Gemini API key header.
type APIKeyAuth struct {
	Key string
}

func (a APIKeyAuth) Authorize(_ context.Context, req *http.Request) error {
	if a.Key == "" {
		return errors.New("empty api key")
	}
	req.Header.Set("x-goog-api-key", a.Key)
	return nil
}

// BearerAuth sends an OAuth2 access token from Source.
type BearerAuth struct {
	Source oauth2.TokenSource
}

func (a BearerAuth) Authorize(_ context.Context, req *http.Request) error {
	if a.Source == nil {
		return errors.New("no token source")
	}
	tok, err := a.Source.Token()
	if err != nil {
		return fmt.Errorf("failed to get access token: %w", err)
	}
	tok.SetAuthHeader(req)
	return nil
}

// HTTPClient returns a client whose transport attaches tokens from Source, for
// SDKs that take an authenticated *http.Client instead of an Authenticator.
func (a BearerAuth) HTTPClient(ctx context.Context, timeout time.Duration) *http.Client {
	c := oauth2.NewClient(ctx, a.Source)
	c.Timeout = timeout
	return c
}

// NewServiceAccountAuth builds a BearerAuth from a service account key file,
// or from Application Default Credentials when credentialsFile is empty.
func NewServiceAccountAuth(ctx context.Context, credentialsFile string) (BearerAuth, error) {
	if credentialsFile == "" {
		ts, err := google.DefaultTokenSource(ctx, cloudPlatformScope)
		if err != nil {
			return BearerAuth{}, fmt.Errorf("failed to find default credentials: %w", err)
		}
		return BearerAuth{Source: ts}, nil
	}
	data, err := os.ReadFile(credentialsFile)
	if err != nil {
		return BearerAuth{}, fmt.Errorf("failed to read credentials file: %w", err)
	}
	creds, err := google.CredentialsFromJSON(ctx, data, cloudPlatformScope)
	if err != nil {
		return BearerAuth{}, fmt.Errorf("failed to parse credentials file: %w", err)
	}
	return BearerAuth{Source: creds.TokenSource}, nil
}
