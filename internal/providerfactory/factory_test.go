// internal/providerfactory/factory_test.go
package providerfactory

import (
	"testing"

	"github.com/koshalabs/kosha/internal/appconfig"
	"github.com/koshalabs/kosha/internal/providers/ollama"
)

func TestNewChatProviderErrorsOnNilConfig(t *testing.T) {
	if _, err := NewChatProvider(nil, "ollama"); err == nil {
		t.Fatal("expected error for nil config")
	}
}

func TestNewChatProviderRejectsUnknownProvider(t *testing.T) {
	cfg := &appconfig.Config{}
	if _, err := NewChatProvider(cfg, "unsupported"); err == nil {
		t.Fatal("expected error for unknown provider")
	}
}

func TestNewChatProviderUsesConfiguredDefault(t *testing.T) {
	cfg := &appconfig.Config{}
	cfg.LLM.Provider = "ollama"

	provider, err := NewChatProvider(cfg, "")
	if err != nil {
		t.Fatalf("NewChatProvider returned error: %v", err)
	}
	if _, ok := provider.(*ollama.Provider); !ok {
		t.Fatalf("expected ollama.Provider, got %T", provider)
	}
	if provider.ProviderName() != "ollama" {
		t.Fatalf("unexpected provider name: %s", provider.ProviderName())
	}
}

func TestNewChatProviderFailsFastOnMissingKey(t *testing.T) {
	cfg := &appconfig.Config{}
	if _, err := NewChatProvider(cfg, "openai"); err == nil {
		t.Fatal("expected configuration error for missing openai key")
	}
	if _, err := NewChatProvider(cfg, "anthropic"); err == nil {
		t.Fatal("expected configuration error for missing anthropic key")
	}
	if _, err := NewChatProvider(cfg, "gemini"); err == nil {
		t.Fatal("expected configuration error for missing gemini key")
	}
}

func TestAvailableIsSorted(t *testing.T) {
	names := Available()
	if len(names) != 4 {
		t.Fatalf("expected 4 registered providers, got %v", names)
	}
	for i := 1; i < len(names); i++ {
		if names[i-1] >= names[i] {
			t.Fatalf("names not sorted: %v", names)
		}
	}
}
