package deepseek

import (
	"github.com/plugforge/deepseek/core"
	"github.com/plugforge/deepseek/providers"
)

func init() {
	providers.Register(providerName, func(apiKey string) core.Provider {
		return New(apiKey)
	})
}
