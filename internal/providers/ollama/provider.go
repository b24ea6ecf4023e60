// internal/providers/ollama/provider.go
// Package ollama provides a ChatProvider backed by a local Ollama HTTP endpoint.
package ollama

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
	Name = "ollama"

	defaultBaseURL = "http://localhost:11434"
	defaultModel   = "llama3.2"
)

// Provider implements providers.ChatProvider against Ollama HTTP APIs.
// Ollama runs locally and needs no credential.
type Provider struct {
	client      *http.Client
	baseURL     string
	model       string
	temperature float64
	maxTokens   int
	debug       bool
}

// New constructs a Provider configured with the application's request timeout.
func New(cfg *appconfig.Config) (*Provider, error) {
	pc := cfg.Provider(Name)
	baseURL := pc.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	model := pc.DefaultModel
	if model == "" {
		model = defaultModel
	}
	return &Provider{
		client: &http.Client{
			Timeout:   cfg.RequestTimeout(),
			Transport: &http.Transport{ForceAttemptHTTP2: false},
		},
		baseURL:     baseURL,
		model:       model,
		temperature: cfg.Temperature(),
		maxTokens:   cfg.MaxTokens(),
		debug:       cfg.Debug,
	}, nil
}

// ProviderName returns the stable provider identifier.
func (p *Provider) ProviderName() string { return Name }

type chatRequest struct {
	Model    string                  `json:"model"`
	Messages []providers.ChatMessage `json:"messages"`
	Stream   bool                    `json:"stream"`
	Options  map[string]any          `json:"options"`
}

type chatResponse struct {
	Model   string `json:"model"`
	Message struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"message"`
	Done            bool   `json:"done"`
	PromptEvalCount int    `json:"prompt_eval_count"`
	EvalCount       int    `json:"eval_count"`
	Error           string `json:"error,omitempty"`
}

// GenerateResponse issues a single non-streaming chat request.
func (p *Provider) GenerateResponse(ctx context.Context, messages []providers.ChatMessage, opts providers.GenerateOptions) (*providers.Completion, error) {
	model := opts.ResolveModel(p.model)
	payload := chatRequest{
		Model:    model,
		Messages: messages,
		Stream:   false,
		Options: map[string]any{
			"temperature": opts.ResolveTemperature(p.temperature),
			"num_predict": opts.ResolveMaxTokens(p.maxTokens),
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, providers.NewProviderError(Name, "encode request", err)
	}
	if p.debug {
		logging.LogRequest("KOSHA->LLM", Name, model, body)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/api/chat", bytes.NewReader(body))
	if err != nil {
		return nil, providers.NewProviderError(Name, "build request", err)
	}
	req.Header.Set("Content-Type", "application/json")

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
		if parsed.Error != "" {
			msg = parsed.Error
		}
		return nil, providers.NewProviderError(Name, msg, nil)
	}

	resolvedModel := parsed.Model
	if resolvedModel == "" {
		resolvedModel = model
	}
	return &providers.Completion{
		Text:     parsed.Message.Content,
		Provider: Name,
		Model:    resolvedModel,
		Usage: providers.Usage{
			PromptTokens:     parsed.PromptEvalCount,
			CompletionTokens: parsed.EvalCount,
			TotalTokens:      parsed.PromptEvalCount + parsed.EvalCount,
		},
	}, nil
}

// ValidateConnection confirms the endpoint is reachable via /api/tags.
func (p *Provider) ValidateConnection(ctx context.Context) error {
	_, err := p.ListModels(ctx)
	return err
}

type tagsResponse struct {
	Models []struct {
		Name string `json:"name"`
	} `json:"models"`
}

// ListModels returns the locally available model tags.
func (p *Provider) ListModels(ctx context.Context) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"/api/tags", nil)
	if err != nil {
		return nil, providers.NewProviderError(Name, "build request", err)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, providers.NewProviderError(Name, "request failed", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, providers.NewProviderError(Name, "read response", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, providers.NewProviderError(Name, fmt.Sprintf("/api/tags returned %s: %s", resp.Status, strings.TrimSpace(string(respBody))), nil)
	}

	var parsed tagsResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, providers.NewProviderError(Name, "decode response", err)
	}

	names := make([]string, len(parsed.Models))
	for i, m := range parsed.Models {
		names[i] = m.Name
	}
	return names, nil
}
