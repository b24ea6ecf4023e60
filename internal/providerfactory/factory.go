// internal/providerfactory/factory.go
package providerfactory

import (
	"fmt"
	"sort"

	"github.com/koshalabs/kosha/internal/appconfig"
	"github.com/koshalabs/kosha/internal/providers"
	"github.com/koshalabs/kosha/internal/providers/anthropic"
	"github.com/koshalabs/kosha/internal/providers/gemini"
	"github.com/koshalabs/kosha/internal/providers/ollama"
	"github.com/koshalabs/kosha/internal/providers/openai"
)

// Factory constructs a ChatProvider from the application configuration.
// Construction fails fast on configuration errors such as a missing API key.
type Factory func(cfg *appconfig.Config) (providers.ChatProvider, error)

// registry maps provider identifiers to constructors. Dispatch happens by
// identifier string; there is no subclassing.
var registry = map[string]Factory{
	openai.Name:    func(cfg *appconfig.Config) (providers.ChatProvider, error) { return openai.New(cfg) },
	anthropic.Name: func(cfg *appconfig.Config) (providers.ChatProvider, error) { return anthropic.New(cfg) },
	gemini.Name:    func(cfg *appconfig.Config) (providers.ChatProvider, error) { return gemini.New(cfg) },
	ollama.Name:    func(cfg *appconfig.Config) (providers.ChatProvider, error) { return ollama.New(cfg) },
}

// NewChatProvider builds the provider selected by name, or by the configured
// default when name is empty.
func NewChatProvider(cfg *appconfig.Config, name string) (providers.ChatProvider, error) {
	if cfg == nil {
		return nil, fmt.Errorf("nil config provided to provider factory")
	}
	if name == "" {
		name = cfg.LLM.Provider
	}
	if name == "" {
		return nil, fmt.Errorf("no provider selected (set llm.provider)")
	}
	factory, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("unknown provider %q (available: %v)", name, Available())
	}
	return factory(cfg)
}

// Available returns the registered provider identifiers in sorted order.
func Available() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
