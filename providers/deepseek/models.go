package deepseek

import "github.com/plugforge/deepseek/core"

// Model identifiers for the DeepSeek API.
const (
	// ModelDeepSeekChat is the general-purpose chat model.
	ModelDeepSeekChat core.ModelID = "deepseek-chat"

	// ModelDeepSeekReasoner is the reasoning model. It emits chain-of-thought
	// text in a separate reasoning_content field.
	ModelDeepSeekReasoner core.ModelID = "deepseek-reasoner"
)

// DefaultModel is used when a request does not name a model.
const DefaultModel = ModelDeepSeekChat

var supportedModels = []core.ModelInfo{
	{
		ID:          ModelDeepSeekChat,
		DisplayName: "DeepSeek Chat",
		Capabilities: []core.Feature{
			core.FeatureChat,
			core.FeatureChatStreaming,
			core.FeatureToolCalling,
		},
	},
	{
		ID:          ModelDeepSeekReasoner,
		DisplayName: "DeepSeek Reasoner",
		Capabilities: []core.Feature{
			core.FeatureChat,
			core.FeatureChatStreaming,
			core.FeatureReasoning,
		},
	},
}

// GetModelInfo returns metadata for a model ID, or false if unknown.
func GetModelInfo(id core.ModelID) (core.ModelInfo, bool) {
	for _, m := range supportedModels {
		if m.ID == id {
			return m, true
		}
	}
	return core.ModelInfo{}, false
}
