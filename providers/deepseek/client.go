package deepseek

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/plugforge/deepseek/core"
	"github.com/plugforge/deepseek/providers/internal/normalize"
)

// Chat performs a non-streaming chat completion.
func (p *Provider) Chat(ctx context.Context, req *core.ChatRequest) (*core.ChatResponse, error) {
	httpResp, err := p.doRequest(ctx, buildRequest(req, false))
	if err != nil {
		return nil, err
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode != http.StatusOK {
		return nil, p.apiError(httpResp)
	}

	var resp dsResponse
	if err := json.NewDecoder(httpResp.Body).Decode(&resp); err != nil {
		return nil, normalize.DecodeError(providerName, err)
	}

	return mapResponse(&resp), nil
}

func (p *Provider) doRequest(ctx context.Context, body *dsRequest) (*http.Response, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, normalize.DecodeError(providerName, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint(), bytes.NewReader(payload))
	if err != nil {
		return nil, normalize.NetworkError(providerName, err)
	}
	p.buildHeaders(httpReq)

	httpResp, err := p.config.HTTPClient.Do(httpReq)
	if err != nil {
		return nil, normalize.NetworkError(providerName, err)
	}
	return httpResp, nil
}

func (p *Provider) apiError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	requestID := resp.Header.Get("X-Request-Id")
	return normalize.OpenAIStyleProviderError(providerName, resp.StatusCode, body, requestID)
}
