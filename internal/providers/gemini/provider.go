// internal/providers/gemini/provider.go
// Package gemini provides a ChatProvider backed by the Google Gemini API.
package gemini

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
	Name = "gemini"

	defaultBaseURL = "https://generativelanguage.googleapis.com"
	defaultModel   = "gemini-1.5-flash"

	// roleModel is Gemini's wire spelling of the assistant role.
	roleModel = "model"
)

// Provider implements providers.ChatProvider against the Gemini API.
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
		return nil, fmt.Errorf("gemini: missing API key (set GEMINI_API_KEY)")
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

type content struct {
	Role  string `json:"role"`
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generateRequest struct {
	Contents         []content        `json:"contents"`
	GenerationConfig generationConfig `json:"generationConfig"`
}

type generationConfig struct {
	Temperature     float64 `json:"temperature"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
	UsageMetadata struct {
		PromptTokenCount     int `json:"promptTokenCount"`
		CandidatesTokenCount int `json:"candidatesTokenCount"`
		TotalTokenCount      int `json:"totalTokenCount"`
	} `json:"usageMetadata"`
	ModelVersion string    `json:"modelVersion,omitempty"`
	Error        *apiError `json:"error,omitempty"`
}

type apiError struct {
	Code    int    `json:"code,omitempty"`
	Message string `json:"message"`
	Status  string `json:"status,omitempty"`
}

// buildContents maps the normalized conversation onto Gemini's wire shape.
// Gemini has no system role and spells assistant as "model", so system
// messages are folded into the first user turn and roles are translated.
func buildContents(messages []providers.ChatMessage) []content {
	var systemParts []string
	var contents []content
	for _, m := range messages {
		switch m.Role {
		case providers.RoleSystem:
			if strings.TrimSpace(m.Content) != "" {
				systemParts = append(systemParts, m.Content)
			}
		case providers.RoleAssistant:
			contents = append(contents, content{Role: roleModel, Parts: []part{{Text: m.Content}}})
		default:
			contents = append(contents, content{Role: providers.RoleUser, Parts: []part{{Text: m.Content}}})
		}
	}
	if len(systemParts) == 0 {
		return contents
	}
	prefix := strings.Join(systemParts, "\n\n")
	for i := range contents {
		if contents[i].Role == providers.RoleUser {
			contents[i].Parts[0].Text = prefix + "\n\n" + contents[i].Parts[0].Text
			return contents
		}
	}
	// Conversation held only assistant turns; carry the system text as its own user turn.
	return append([]content{{Role: providers.RoleUser, Parts: []part{{Text: prefix}}}}, contents...)
}

// GenerateResponse sends one generateContent request.
func (p *Provider) GenerateResponse(ctx context.Context, messages []providers.ChatMessage, opts providers.GenerateOptions) (*providers.Completion, error) {
	model := opts.ResolveModel(p.model)
	payload := generateRequest{
		Contents: buildContents(messages),
		GenerationConfig: generationConfig{
			Temperature:     opts.ResolveTemperature(p.temperature),
			MaxOutputTokens: opts.ResolveMaxTokens(p.maxTokens),
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, providers.NewProviderError(Name, "encode request", err)
	}
	if p.debug {
		logging.LogRequest("KOSHA->LLM", Name, model, body)
	}

	endpoint := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s", p.baseURL, model, p.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
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

	var parsed generateResponse
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
	if len(parsed.Candidates) == 0 {
		return nil, providers.NewProviderError(Name, "response contained no candidates", nil)
	}

	var text strings.Builder
	for _, pt := range parsed.Candidates[0].Content.Parts {
		text.WriteString(pt.Text)
	}

	resolvedModel := parsed.ModelVersion
	if resolvedModel == "" {
		resolvedModel = model
	}
	return &providers.Completion{
		Text:     text.String(),
		Provider: Name,
		Model:    resolvedModel,
		Usage: providers.Usage{
			PromptTokens:     parsed.UsageMetadata.PromptTokenCount,
			CompletionTokens: parsed.UsageMetadata.CandidatesTokenCount,
			TotalTokens:      parsed.UsageMetadata.TotalTokenCount,
		},
	}, nil
}

// ValidateConnection confirms the API key by listing models, which costs no tokens.
func (p *Provider) ValidateConnection(ctx context.Context) error {
	_, err := p.ListModels(ctx)
	return err
}

type modelsResponse struct {
	Models []struct {
		Name string `json:"name"`
	} `json:"models"`
	Error *apiError `json:"error,omitempty"`
}

// ListModels returns the model identifiers available to the configured key.
func (p *Provider) ListModels(ctx context.Context) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	endpoint := fmt.Sprintf("%s/v1beta/models?key=%s", p.baseURL, p.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
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

	names := make([]string, len(parsed.Models))
	for i, m := range parsed.Models {
		names[i] = strings.TrimPrefix(m.Name, "models/")
	}
	return names, nil
}
