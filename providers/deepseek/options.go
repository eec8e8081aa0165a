package deepseek

import (
	"net/http"
	"time"

	"github.com/plugforge/deepseek/core"
)

// DefaultBaseURL is the DeepSeek API base. The chat completions path is
// appended to it unless an explicit endpoint override is set.
const DefaultBaseURL = "https://api.deepseek.com/v1"

const defaultTimeout = 120 * time.Second

// Config holds provider configuration.
type Config struct {
	// APIKey is the DeepSeek API key.
	APIKey core.Secret

	// BaseURL is the API base URL. The chat completions path is appended.
	BaseURL string

	// Endpoint, when set, is used verbatim as the chat completions URL and
	// BaseURL is ignored. This supports configs that store a full URL.
	Endpoint string

	// HTTPClient is the HTTP client used for requests.
	HTTPClient *http.Client

	// Headers are additional headers sent with every request.
	Headers map[string]string
}

// Option configures the provider.
type Option func(*Config)

// WithBaseURL overrides the API base URL.
func WithBaseURL(url string) Option {
	return func(c *Config) {
		c.BaseURL = url
	}
}

// WithEndpoint sets a full chat completions URL, used verbatim.
func WithEndpoint(url string) Option {
	return func(c *Config) {
		c.Endpoint = url
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Config) {
		c.HTTPClient = client
	}
}

// WithTimeout sets the HTTP client timeout.
// Ignored if WithHTTPClient is also used with a client that has its own timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Config) {
		if c.HTTPClient == nil {
			c.HTTPClient = &http.Client{}
		}
		c.HTTPClient.Timeout = d
	}
}

// WithHeader adds a custom header to every request.
func WithHeader(key, value string) Option {
	return func(c *Config) {
		if c.Headers == nil {
			c.Headers = make(map[string]string)
		}
		c.Headers[key] = value
	}
}
