package deepseek

import (
	"encoding/json"

	"github.com/plugforge/deepseek/core"
)

// buildRequest converts a core.ChatRequest into the DeepSeek wire format.
func buildRequest(req *core.ChatRequest, stream bool) *dsRequest {
	model := req.Model
	if model == "" {
		model = DefaultModel
	}

	out := &dsRequest{
		Model:       string(model),
		Messages:    mapMessages(req.Messages),
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
		Stream:      stream,
	}

	if stream {
		out.StreamOpts = &dsStreamOpt{IncludeUsage: true}
	}

	for _, tool := range req.Tools {
		var params interface{}
		if len(tool.Parameters) > 0 {
			params = json.RawMessage(tool.Parameters)
		}
		out.Tools = append(out.Tools, dsTool{
			Type: "function",
			Function: dsFunction{
				Name:        tool.Name,
				Description: tool.Description,
				Parameters:  params,
			},
		})
	}

	return out
}

func mapMessages(messages []core.Message) []dsMessage {
	out := make([]dsMessage, 0, len(messages))
	for _, msg := range messages {
		switch msg.Role {
		case core.RoleTool:
			// Each tool result becomes its own message keyed by call ID.
			for _, result := range msg.ToolResults {
				out = append(out, dsMessage{
					Role:       "tool",
					Content:    result.Content,
					ToolCallID: result.CallID,
				})
			}
		case core.RoleAssistant:
			m := dsMessage{
				Role:    "assistant",
				Content: msg.Content,
			}
			for _, call := range msg.ToolCalls {
				m.ToolCalls = append(m.ToolCalls, dsToolCall{
					ID:   call.ID,
					Type: "function",
					Function: dsFunctionCall{
						Name:      call.Name,
						Arguments: string(call.Arguments),
					},
				})
			}
			out = append(out, m)
		default:
			out = append(out, dsMessage{
				Role:    string(msg.Role),
				Content: msg.Content,
			})
		}
	}
	return out
}

// mapResponse converts a DeepSeek response into a core.ChatResponse.
// Only the first choice is used.
func mapResponse(resp *dsResponse) *core.ChatResponse {
	out := &core.ChatResponse{
		ID:    resp.ID,
		Model: core.ModelID(resp.Model),
		Usage: core.TokenUsage{
			PromptTokens:     resp.Usage.PromptTokens,
			CompletionTokens: resp.Usage.CompletionTokens,
			TotalTokens:      resp.Usage.TotalTokens,
		},
	}

	if len(resp.Choices) == 0 {
		return out
	}

	msg := resp.Choices[0].Message
	out.Output = msg.Content
	out.Reasoning = msg.ReasoningContent

	for _, call := range msg.ToolCalls {
		args := call.Function.Arguments
		if args == "" {
			args = "{}"
		}
		out.ToolCalls = append(out.ToolCalls, core.ToolCall{
			ID:        call.ID,
			Name:      call.Function.Name,
			Arguments: json.RawMessage(args),
		})
	}

	return out
}
