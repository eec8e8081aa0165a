// Package deepseek implements the DeepSeek provider.
package deepseek

import (
	"net/http"
	"os"
	"strings"

	"github.com/plugforge/deepseek/core"
)

const providerName = "deepseek"

// Provider implements core.Provider for the DeepSeek API.
type Provider struct {
	config Config
}

// New creates a DeepSeek provider with the given API key.
func New(apiKey string, opts ...Option) *Provider {
	config := Config{
		APIKey:  core.NewSecret(apiKey),
		BaseURL: DefaultBaseURL,
		HTTPClient: &http.Client{
			Timeout: defaultTimeout,
		},
	}

	for _, opt := range opts {
		opt(&config)
	}

	if config.HTTPClient == nil {
		config.HTTPClient = &http.Client{Timeout: defaultTimeout}
	}

	return &Provider{config: config}
}

// NewFromEnv creates a provider using the DEEPSEEK_API_KEY environment variable.
func NewFromEnv(opts ...Option) *Provider {
	return New(os.Getenv("DEEPSEEK_API_KEY"), opts...)
}

// ID returns the provider identifier.
func (p *Provider) ID() string {
	return providerName
}

// Models returns the models this provider supports.
func (p *Provider) Models() []core.ModelInfo {
	models := make([]core.ModelInfo, len(supportedModels))
	copy(models, supportedModels)
	return models
}

// Supports reports whether any model of this provider supports the feature.
func (p *Provider) Supports(f core.Feature) bool {
	for _, m := range supportedModels {
		if m.HasCapability(f) {
			return true
		}
	}
	return false
}

// endpoint returns the chat completions URL.
func (p *Provider) endpoint() string {
	if p.config.Endpoint != "" {
		return p.config.Endpoint
	}
	return strings.TrimSuffix(p.config.BaseURL, "/") + "/chat/completions"
}

func (p *Provider) buildHeaders(req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.config.APIKey.Expose())
	for k, v := range p.config.Headers {
		req.Header.Set(k, v)
	}
}
