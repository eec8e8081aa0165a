package deepseek

// Wire types for the DeepSeek chat completions API.
// The API is OpenAI-compatible; the reasoner model additionally emits
// reasoning_content on messages and stream deltas.

type dsRequest struct {
	Model       string       `json:"model"`
	Messages    []dsMessage  `json:"messages"`
	Temperature *float32     `json:"temperature,omitempty"`
	MaxTokens   *int         `json:"max_tokens,omitempty"`
	Stream      bool         `json:"stream,omitempty"`
	Tools       []dsTool     `json:"tools,omitempty"`
	StreamOpts  *dsStreamOpt `json:"stream_options,omitempty"`
}

type dsStreamOpt struct {
	IncludeUsage bool `json:"include_usage"`
}

type dsMessage struct {
	Role       string       `json:"role"`
	Content    string       `json:"content"`
	ToolCalls  []dsToolCall `json:"tool_calls,omitempty"`
	ToolCallID string       `json:"tool_call_id,omitempty"`
}

type dsTool struct {
	Type     string     `json:"type"`
	Function dsFunction `json:"function"`
}

type dsFunction struct {
	Name        string      `json:"name"`
	Description string      `json:"description,omitempty"`
	Parameters  interface{} `json:"parameters,omitempty"`
}

type dsToolCall struct {
	ID       string         `json:"id"`
	Type     string         `json:"type"`
	Function dsFunctionCall `json:"function"`
}

type dsFunctionCall struct {
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

type dsResponse struct {
	ID      string     `json:"id"`
	Model   string     `json:"model"`
	Choices []dsChoice `json:"choices"`
	Usage   dsUsage    `json:"usage"`
}

type dsChoice struct {
	Index        int               `json:"index"`
	Message      dsResponseMessage `json:"message"`
	FinishReason string            `json:"finish_reason"`
}

type dsResponseMessage struct {
	Role             string       `json:"role"`
	Content          string       `json:"content"`
	ReasoningContent string       `json:"reasoning_content,omitempty"`
	ToolCalls        []dsToolCall `json:"tool_calls,omitempty"`
}

type dsUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Streaming chunk types.

type dsStreamChunk struct {
	ID      string           `json:"id"`
	Model   string           `json:"model"`
	Choices []dsStreamChoice `json:"choices"`
	Usage   *dsUsage         `json:"usage,omitempty"`
}

type dsStreamChoice struct {
	Index        int           `json:"index"`
	Delta        dsStreamDelta `json:"delta"`
	FinishReason *string       `json:"finish_reason"`
}

type dsStreamDelta struct {
	Role             string             `json:"role,omitempty"`
	Content          string             `json:"content,omitempty"`
	ReasoningContent string             `json:"reasoning_content,omitempty"`
	ToolCalls        []dsStreamToolCall `json:"tool_calls,omitempty"`
}

type dsStreamToolCall struct {
	Index    int            `json:"index"`
	ID       string         `json:"id,omitempty"`
	Type     string         `json:"type,omitempty"`
	Function dsFunctionCall `json:"function"`
}
