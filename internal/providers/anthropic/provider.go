// internal/providers/anthropic/provider.go
// Package anthropic provides a ChatProvider backed by the Anthropic Messages API.
package anthropic

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/koshalabs/kosha/internal/appconfig"
	"github.com/koshalabs/kosha/internal/logging"
	"github.com/koshalabs/kosha/internal/providers"
)

const (
	// Name is the provider identifier used in configuration and reporting.
	Name = "anthropic"

	defaultBaseURL = "https://api.anthropic.com"
	defaultModel   = "claude-3-5-haiku-latest"
	apiVersion     = "2023-06-01"
)

// Provider implements providers.ChatProvider against the Anthropic API.
type Provider struct {
	client      *http.Client
	baseURL     string
	apiKey      string
	model       string
	temperature float64
	maxTokens   int
	debug       bool
}

// New constructs a Provider from the application configuration. A missing API
// key is a configuration error and fails here, before any request is made.
func New(cfg *appconfig.Config) (*Provider, error) {
	pc := cfg.Provider(Name)
	if pc.APIKey == "" {
		return nil, fmt.Errorf("anthropic: missing API key (set ANTHROPIC_API_KEY)")
	}
	baseURL := pc.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	model := pc.DefaultModel
	if model == "" {
		model = defaultModel
	}
	return &Provider{
		client:      &http.Client{Timeout: cfg.RequestTimeout()},
		baseURL:     baseURL,
		apiKey:      pc.APIKey,
		model:       model,
		temperature: cfg.Temperature(),
		maxTokens:   cfg.MaxTokens(),
		debug:       cfg.Debug,
	}, nil
}

// ProviderName returns the stable provider identifier.
func (p *Provider) ProviderName() string { return Name }

type messagesRequest struct {
	Model       string                  `json:"model"`
	System      string                  `json:"system,omitempty"`
	Messages    []providers.ChatMessage `json:"messages"`
	Temperature float64                 `json:"temperature"`
	MaxTokens   int                     `json:"max_tokens"`
}

type messagesResponse struct {
	Model   string `json:"model"`
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Usage struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
	Error *apiError `json:"error,omitempty"`
}

type apiError struct {
	Type    string `json:"type,omitempty"`
	Message string `json:"message"`
}

// splitSystem separates system-role messages from the conversation. Anthropic
// has no system role in the message list; system text travels in a top-level
// field instead, so it is extracted rather than dropped.
func splitSystem(messages []providers.ChatMessage) (string, []providers.ChatMessage) {
	var systemParts []string
	rest := make([]providers.ChatMessage, 0, len(messages))
	for _, m := range messages {
		if m.Role == providers.RoleSystem {
			if strings.TrimSpace(m.Content) != "" {
				systemParts = append(systemParts, m.Content)
			}
			continue
		}
		rest = append(rest, m)
	}
	return strings.Join(systemParts, "\n\n"), rest
}

// GenerateResponse sends one messages-API request.
func (p *Provider) GenerateResponse(ctx context.Context, messages []providers.ChatMessage, opts providers.GenerateOptions) (*providers.Completion, error) {
	model := opts.ResolveModel(p.model)
	system, rest := splitSystem(messages)
	payload := messagesRequest{
		Model:       model,
		System:      system,
		Messages:    rest,
		Temperature: opts.ResolveTemperature(p.temperature),
		MaxTokens:   opts.ResolveMaxTokens(p.maxTokens),
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, providers.NewProviderError(Name, "encode request", err)
	}
	if p.debug {
		logging.LogRequest("KOSHA->LLM", Name, model, body)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/v1/messages", bytes.NewReader(body))
	if err != nil {
		return nil, providers.NewProviderError(Name, "build request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", p.apiKey)
	req.Header.Set("anthropic-version", apiVersion)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, providers.NewProviderError(Name, "request failed", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, providers.NewProviderError(Name, "read response", err)
	}
	if p.debug {
		logging.LogRequest("LLM->KOSHA", Name, model, respBody)
	}

	var parsed messagesResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, providers.NewProviderError(Name, fmt.Sprintf("decode response (%s)", resp.Status), err)
	}
	if resp.StatusCode != http.StatusOK {
		msg := fmt.Sprintf("API returned %s", resp.Status)
		if parsed.Error != nil && parsed.Error.Message != "" {
			msg = parsed.Error.Message
		}
		return nil, providers.NewProviderError(Name, msg, nil)
	}

	var text strings.Builder
	for _, block := range parsed.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}
	if text.Len() == 0 {
		return nil, providers.NewProviderError(Name, "response contained no text blocks", nil)
	}

	resolvedModel := parsed.Model
	if resolvedModel == "" {
		resolvedModel = model
	}
	return &providers.Completion{
		Text:     text.String(),
		Provider: Name,
		Model:    resolvedModel,
		Usage: providers.Usage{
			PromptTokens:     parsed.Usage.InputTokens,
			CompletionTokens: parsed.Usage.OutputTokens,
			TotalTokens:      parsed.Usage.InputTokens + parsed.Usage.OutputTokens,
		},
	}, nil
}

// ValidateConnection confirms the API key by listing models, which costs no tokens.
func (p *Provider) ValidateConnection(ctx context.Context) error {
	_, err := p.ListModels(ctx)
	return err
}

type modelsResponse struct {
	Data []struct {
		ID string `json:"id"`
	} `json:"data"`
	Error *apiError `json:"error,omitempty"`
}

// ListModels returns the model identifiers available to the configured key.
func (p *Provider) ListModels(ctx context.Context) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"/v1/models", nil)
	if err != nil {
		return nil, providers.NewProviderError(Name, "build request", err)
	}
	req.Header.Set("x-api-key", p.apiKey)
	req.Header.Set("anthropic-version", apiVersion)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, providers.NewProviderError(Name, "request failed", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, providers.NewProviderError(Name, "read response", err)
	}

	var parsed modelsResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, providers.NewProviderError(Name, fmt.Sprintf("decode response (%s)", resp.Status), err)
	}
	if resp.StatusCode != http.StatusOK {
		msg := fmt.Sprintf("API returned %s", resp.Status)
		if parsed.Error != nil && parsed.Error.Message != "" {
			msg = parsed.Error.Message
		}
		return nil, providers.NewProviderError(Name, msg, nil)
	}

	names := make([]string, len(parsed.Data))
	for i, m := range parsed.Data {
		names[i] = m.ID
	}
	return names, nil
}
