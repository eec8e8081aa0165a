package deepseek

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/plugforge/deepseek/core"
	"github.com/plugforge/deepseek/providers/internal/normalize"
	"github.com/plugforge/deepseek/providers/internal/toolcalls"
)

// StreamChat performs a streaming chat completion over SSE.
func (p *Provider) StreamChat(ctx context.Context, req *core.ChatRequest) (*core.ChatStream, error) {
	httpResp, err := p.doRequest(ctx, buildRequest(req, true))
	if err != nil {
		return nil, err
	}

	if httpResp.StatusCode != http.StatusOK {
		defer httpResp.Body.Close()
		return nil, p.apiError(httpResp)
	}

	chunks := make(chan core.ChatChunk, 100)
	errs := make(chan error, 1)
	final := make(chan *core.ChatResponse, 1)

	go p.processSSEStream(ctx, httpResp.Body, chunks, errs, final)

	return &core.ChatStream{
		Ch:    chunks,
		Err:   errs,
		Final: final,
	}, nil
}

// processSSEStream reads server-sent events and forwards deltas.
// Malformed data lines are skipped rather than failing the stream.
func (p *Provider) processSSEStream(
	ctx context.Context,
	body io.ReadCloser,
	chunks chan<- core.ChatChunk,
	errs chan<- error,
	final chan<- *core.ChatResponse,
) {
	defer close(chunks)
	defer close(errs)
	defer close(final)
	defer body.Close()

	assembler := toolcalls.NewAssembler()
	resp := &core.ChatResponse{Model: core.ModelID(DefaultModel)}

	reader := bufio.NewReader(body)
	for {
		select {
		case <-ctx.Done():
			errs <- ctx.Err()
			return
		default:
		}

		line, err := reader.ReadString('\n')
		if err != nil {
			if err == io.EOF {
				break
			}
			errs <- normalize.NetworkError(providerName, err)
			return
		}

		line = strings.TrimSpace(line)
		if line == "" || !strings.HasPrefix(line, "data:") {
			continue
		}

		data := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		if data == "[DONE]" {
			break
		}

		var chunk dsStreamChunk
		if err := json.Unmarshal([]byte(data), &chunk); err != nil {
			continue
		}

		if chunk.ID != "" {
			resp.ID = chunk.ID
		}
		if chunk.Model != "" {
			resp.Model = core.ModelID(chunk.Model)
		}
		if chunk.Usage != nil {
			resp.Usage = core.TokenUsage{
				PromptTokens:     chunk.Usage.PromptTokens,
				CompletionTokens: chunk.Usage.CompletionTokens,
				TotalTokens:      chunk.Usage.TotalTokens,
			}
		}

		if len(chunk.Choices) == 0 {
			continue
		}
		delta := chunk.Choices[0].Delta

		for _, tc := range delta.ToolCalls {
			assembler.AddFragment(toolcalls.Fragment{
				Index:     tc.Index,
				ID:        tc.ID,
				Name:      tc.Function.Name,
				Arguments: tc.Function.Arguments,
			})
		}

		if delta.Content == "" && delta.ReasoningContent == "" {
			continue
		}

		select {
		case chunks <- core.ChatChunk{Delta: delta.Content, Reasoning: delta.ReasoningContent}:
		case <-ctx.Done():
			errs <- ctx.Err()
			return
		}
	}

	calls, err := assembler.Finalize()
	if err != nil {
		errs <- normalize.DecodeError(providerName, err)
		return
	}
	resp.ToolCalls = calls

	final <- resp
}
