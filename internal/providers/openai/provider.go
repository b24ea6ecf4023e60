// internal/providers/openai/provider.go
// Package openai provides a ChatProvider backed by the OpenAI chat-completions API.
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/koshalabs/kosha/internal/appconfig"
	"github.com/koshalabs/kosha/internal/logging"
	"github.com/koshalabs/kosha/internal/providers"
)

const (
	// Name is the provider identifier used in configuration and reporting.
	Name = "openai"

	defaultBaseURL = "https://api.openai.com/v1"
	defaultModel   = "gpt-4o-mini"
)

// Provider implements providers.ChatProvider against OpenAI-compatible endpoints.
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
		return nil, fmt.Errorf("openai: missing API key (set OPENAI_API_KEY)")
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

type chatRequest struct {
	Model       string                  `json:"model"`
	Messages    []providers.ChatMessage `json:"messages"`
	Temperature float64                 `json:"temperature"`
	MaxTokens   int                     `json:"max_tokens"`
}

type chatResponse struct {
	Model   string `json:"model"`
	Choices []struct {
		Message struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
	Error *apiError `json:"error,omitempty"`
}

type apiError struct {
	Message string `json:"message"`
	Type    string `json:"type,omitempty"`
}

// GenerateResponse sends one chat-completion request. OpenAI understands all
// three roles natively, so messages pass through unchanged.
func (p *Provider) GenerateResponse(ctx context.Context, messages []providers.ChatMessage, opts providers.GenerateOptions) (*providers.Completion, error) {
	model := opts.ResolveModel(p.model)
	payload := chatRequest{
		Model:       model,
		Messages:    messages,
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

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, providers.NewProviderError(Name, "build request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.apiKey)

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

	var parsed chatResponse
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
	if len(parsed.Choices) == 0 {
		return nil, providers.NewProviderError(Name, "response contained no choices", nil)
	}

	resolvedModel := parsed.Model
	if resolvedModel == "" {
		resolvedModel = model
	}
	return &providers.Completion{
		Text:     parsed.Choices[0].Message.Content,
		Provider: Name,
		Model:    resolvedModel,
		Usage: providers.Usage{
			PromptTokens:     parsed.Usage.PromptTokens,
			CompletionTokens: parsed.Usage.CompletionTokens,
			TotalTokens:      parsed.Usage.TotalTokens,
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

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"/models", nil)
	if err != nil {
		return nil, providers.NewProviderError(Name, "build request", err)
	}
	req.Header.Set("Authorization", "Bearer "+p.apiKey)

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
