// internal/server/handlers.go
package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/koshalabs/kosha/internal/logging"
	"github.com/koshalabs/kosha/internal/providers"
	"github.com/koshalabs/kosha/internal/store"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":      "ok",
		"llm_enabled": s.cfg.LLM.Enabled,
	})
}

// chatRequest is the POST /chat body.
type chatRequest struct {
	Message      string                  `json:"message"`
	Conversation []providers.ChatMessage `json:"conversation,omitempty"`
	Options      *chatOptions            `json:"options,omitempty"`
}

type chatOptions struct {
	Model        string  `json:"model,omitempty"`
	Temperature  float64 `json:"temperature,omitempty"`
	MaxTokens    int     `json:"maxTokens,omitempty"`
	SystemPrompt string  `json:"systemPrompt,omitempty"`
}

type chatResponse struct {
	Message  string          `json:"message"`
	Provider string          `json:"provider"`
	Model    string          `json:"model"`
	Usage    providers.Usage `json:"usage"`
}

// handleChat forwards one prompt to the configured provider. A disabled LLM
// feature is an expected condition reported as 503 with enableLLM=false, so
// clients can distinguish "off" from "broken".
func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	if !s.cfg.LLM.Enabled || s.provider == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{
			"error":     "LLM features are disabled",
			"enableLLM": false,
		})
		return
	}

	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid JSON body"})
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "message is required"})
		return
	}

	var opts providers.GenerateOptions
	systemPrompt := ""
	if req.Options != nil {
		opts = providers.GenerateOptions{
			Model:       req.Options.Model,
			Temperature: req.Options.Temperature,
			MaxTokens:   req.Options.MaxTokens,
		}
		systemPrompt = req.Options.SystemPrompt
	}

	messages := make([]providers.ChatMessage, 0, len(req.Conversation)+2)
	if systemPrompt != "" {
		messages = append(messages, providers.ChatMessage{Role: providers.RoleSystem, Content: systemPrompt})
	}
	messages = append(messages, req.Conversation...)
	messages = append(messages, providers.ChatMessage{Role: providers.RoleUser, Content: req.Message})

	completion, err := s.provider.GenerateResponse(r.Context(), messages, opts)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]any{
			"error":    "provider request failed",
			"details":  err.Error(),
			"provider": s.provider.ProviderName(),
		})
		return
	}

	writeJSON(w, http.StatusOK, chatResponse{
		Message:  completion.Text,
		Provider: completion.Provider,
		Model:    completion.Model,
		Usage:    completion.Usage,
	})
}

type dictionaryResponse struct {
	Entries     []store.Entry `json:"entries"`
	Total       int           `json:"total"`
	Limit       int           `json:"limit"`
	Offset      int           `json:"offset"`
	Enhancement string        `json:"enhancement,omitempty"`
}

// handleDictionary serves paginated search results. With use_llm=true it also
// asks the provider for a short note on the query; any provider failure is
// logged and dropped so database rows are always returned.
func (s *Server) handleDictionary(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("query")
	limit := parseIntParam(r, "limit", defaultPageSize)
	if limit > maxPageSize {
		limit = maxPageSize
	}
	offset := parseIntParam(r, "offset", 0)

	entries, total, err := s.dict.Search(query, limit, offset)
	if err != nil {
		logging.LogEvent("dictionary search failed: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]any{"error": "search failed"})
		return
	}
	if entries == nil {
		entries = []store.Entry{}
	}

	resp := dictionaryResponse{Entries: entries, Total: total, Limit: limit, Offset: offset}
	if s.useLLM(r) && strings.TrimSpace(query) != "" {
		resp.Enhancement = s.enhance(r, query, entries)
	}
	writeJSON(w, http.StatusOK, resp)
}

// enhance asks the provider for a one-paragraph note about the query in the
// context of the found entries. Failures degrade to no enhancement.
func (s *Server) enhance(r *http.Request, query string, entries []store.Entry) string {
	var b strings.Builder
	fmt.Fprintf(&b, "A user searched a dictionary for %q.", query)
	if len(entries) > 0 {
		b.WriteString(" Matching entries:")
		for i, e := range entries {
			if i == 3 {
				break
			}
			fmt.Fprintf(&b, " %s (%s);", e.Headword, e.Meaning)
		}
	}
	b.WriteString(" Give one short paragraph of helpful context about this word or phrase.")

	completion, err := s.provider.GenerateResponse(r.Context(), []providers.ChatMessage{
		{Role: providers.RoleUser, Content: b.String()},
	}, providers.GenerateOptions{})
	if err != nil {
		logging.LogEvent("dictionary enhancement failed: %v", err)
		return ""
	}
	return completion.Text
}

func (s *Server) useLLM(r *http.Request) bool {
	if !s.cfg.LLM.Enabled || s.provider == nil {
		return false
	}
	v := r.URL.Query().Get("use_llm")
	return strings.EqualFold(v, "true") || v == "1"
}

// handleEntry serves a single entry by headword.
func (s *Server) handleEntry(w http.ResponseWriter, r *http.Request) {
	headword := r.PathValue("headword")
	entry, err := s.dict.GetByHeadword(headword)
	if errors.Is(err, store.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, map[string]any{"error": "entry not found"})
		return
	}
	if err != nil {
		logging.LogEvent("entry lookup failed: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]any{"error": "lookup failed"})
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

func parseIntParam(r *http.Request, name string, fallback int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < 0 {
		return fallback
	}
	return value
}
