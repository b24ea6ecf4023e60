// internal/server/handlers_test.go
package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/koshalabs/kosha/internal/appconfig"
	"github.com/koshalabs/kosha/internal/providers"
	"github.com/koshalabs/kosha/internal/store"
)

type fakeDict struct {
	entries   []store.Entry
	searchErr error
}

func (f *fakeDict) Search(query string, limit, offset int) ([]store.Entry, int, error) {
	if f.searchErr != nil {
		return nil, 0, f.searchErr
	}
	if query == "" {
		return f.entries, len(f.entries), nil
	}
	var matched []store.Entry
	for _, e := range f.entries {
		if strings.Contains(e.Headword, query) || strings.Contains(e.Meaning, query) {
			matched = append(matched, e)
		}
	}
	return matched, len(matched), nil
}

func (f *fakeDict) GetByHeadword(headword string) (*store.Entry, error) {
	for _, e := range f.entries {
		if strings.EqualFold(e.Headword, headword) {
			entry := e
			return &entry, nil
		}
	}
	return nil, store.ErrNotFound
}

type fakeProvider struct {
	completion *providers.Completion
	err        error
	calls      int
	captured   []providers.ChatMessage
}

func (f *fakeProvider) GenerateResponse(_ context.Context, messages []providers.ChatMessage, _ providers.GenerateOptions) (*providers.Completion, error) {
	f.calls++
	f.captured = messages
	if f.err != nil {
		return nil, f.err
	}
	return f.completion, nil
}

func (f *fakeProvider) ValidateConnection(context.Context) error     { return nil }
func (f *fakeProvider) ListModels(context.Context) ([]string, error) { return nil, nil }
func (f *fakeProvider) ProviderName() string                         { return "fake" }

func testServer(provider providers.ChatProvider, enabled bool) *Server {
	cfg := &appconfig.Config{}
	cfg.LLM.Enabled = enabled
	dict := &fakeDict{entries: []store.Entry{
		{ID: 1, Headword: "ghar", NativeScript: "घर", Meaning: "house, home"},
		{ID: 2, Headword: "pani", Meaning: "water"},
	}}
	return New(cfg, dict, provider)
}

// TestChatDisabled verifies the feature-off path is a 503 with the distinct
// enableLLM flag, not a generic failure.
func TestChatDisabled(t *testing.T) {
	t.Parallel()

	srv := testServer(nil, false)
	req := httptest.NewRequest(http.MethodPost, "/chat", strings.NewReader(`{"message":"hi"}`))
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if enabled, ok := body["enableLLM"].(bool); !ok || enabled {
		t.Fatalf("expected enableLLM=false, got %v", body)
	}
}

// TestChatSuccess verifies the happy path, including system prompt and
// conversation ordering.
func TestChatSuccess(t *testing.T) {
	t.Parallel()

	provider := &fakeProvider{completion: &providers.Completion{
		Text:     "ghar means house",
		Provider: "fake",
		Model:    "fake-model",
		Usage:    providers.Usage{PromptTokens: 5, CompletionTokens: 3, TotalTokens: 8},
	}}
	srv := testServer(provider, true)

	body := `{
        "message": "And in English?",
        "conversation": [
            {"role": "user", "content": "What does ghar mean?"},
            {"role": "assistant", "content": "It is a Hindi word."}
        ],
        "options": {"systemPrompt": "You are a dictionary."}
    }`
	req := httptest.NewRequest(http.MethodPost, "/chat", strings.NewReader(body))
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp chatResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Message != "ghar means house" || resp.Provider != "fake" || resp.Usage.TotalTokens != 8 {
		t.Fatalf("unexpected response: %+v", resp)
	}

	if len(provider.captured) != 4 {
		t.Fatalf("expected system+2 turns+message, got %d messages", len(provider.captured))
	}
	if provider.captured[0].Role != providers.RoleSystem {
		t.Fatalf("system prompt should lead the conversation: %+v", provider.captured[0])
	}
	if provider.captured[3].Content != "And in English?" {
		t.Fatalf("current message should come last: %+v", provider.captured[3])
	}
}

// TestChatProviderFailure verifies adapter failures become a 500 naming the
// provider, not an unhandled fault.
func TestChatProviderFailure(t *testing.T) {
	t.Parallel()

	provider := &fakeProvider{err: providers.NewProviderError("fake", "quota exceeded", nil)}
	srv := testServer(provider, true)

	req := httptest.NewRequest(http.MethodPost, "/chat", strings.NewReader(`{"message":"hi"}`))
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body["provider"] != "fake" || !strings.Contains(body["details"].(string), "quota exceeded") {
		t.Fatalf("unexpected error body: %v", body)
	}
}

func TestChatRejectsBadBody(t *testing.T) {
	t.Parallel()

	srv := testServer(&fakeProvider{}, true)

	for _, body := range []string{`{`, `{"message":"  "}`} {
		req := httptest.NewRequest(http.MethodPost, "/chat", strings.NewReader(body))
		rec := httptest.NewRecorder()
		srv.Handler().ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("body %q: expected 400, got %d", body, rec.Code)
		}
	}
}

// TestDictionarySearch verifies pagination metadata and that no enhancement
// is attempted without use_llm.
func TestDictionarySearch(t *testing.T) {
	t.Parallel()

	provider := &fakeProvider{completion: &providers.Completion{Text: "note"}}
	srv := testServer(provider, true)

	req := httptest.NewRequest(http.MethodGet, "/dictionary?query=ghar", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var resp dictionaryResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Total != 1 || len(resp.Entries) != 1 || resp.Entries[0].Headword != "ghar" {
		t.Fatalf("unexpected response: %+v", resp)
	}
	if resp.Limit != defaultPageSize || resp.Offset != 0 {
		t.Fatalf("unexpected pagination defaults: %+v", resp)
	}
	if resp.Enhancement != "" || provider.calls != 0 {
		t.Fatal("enhancement must not run without use_llm=true")
	}
}

// TestDictionaryEnhancement verifies the provider note is attached on
// use_llm=true and silently dropped when the provider fails.
func TestDictionaryEnhancement(t *testing.T) {
	t.Parallel()

	provider := &fakeProvider{completion: &providers.Completion{Text: "Ghar is a common Hindi noun."}}
	srv := testServer(provider, true)

	req := httptest.NewRequest(http.MethodGet, "/dictionary?query=ghar&use_llm=true", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	var resp dictionaryResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Enhancement != "Ghar is a common Hindi noun." {
		t.Fatalf("expected enhancement, got %+v", resp)
	}

	// Provider failure: rows still returned, enhancement empty, status 200.
	failing := &fakeProvider{err: providers.NewProviderError("fake", "down", nil)}
	srv = testServer(failing, true)
	rec = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/dictionary?query=ghar&use_llm=true", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("fallback should still be 200, got %d", rec.Code)
	}
	resp = dictionaryResponse{}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Enhancement != "" || resp.Total != 1 {
		t.Fatalf("expected silent fallback with rows, got %+v", resp)
	}
}

// TestDictionaryLimitCap verifies the page size ceiling.
func TestDictionaryLimitCap(t *testing.T) {
	t.Parallel()

	srv := testServer(nil, false)
	req := httptest.NewRequest(http.MethodGet, "/dictionary?limit=500", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	var resp dictionaryResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Limit != maxPageSize {
		t.Fatalf("expected limit capped at %d, got %d", maxPageSize, resp.Limit)
	}
}

func TestEntryLookup(t *testing.T) {
	t.Parallel()

	srv := testServer(nil, false)

	req := httptest.NewRequest(http.MethodGet, "/dictionary/ghar", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var entry store.Entry
	if err := json.Unmarshal(rec.Body.Bytes(), &entry); err != nil {
		t.Fatal(err)
	}
	if entry.Headword != "ghar" {
		t.Fatalf("unexpected entry: %+v", entry)
	}

	rec = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/dictionary/missing", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestHealth(t *testing.T) {
	t.Parallel()

	srv := testServer(nil, false)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body["status"] != "ok" {
		t.Fatalf("unexpected health body: %v", body)
	}
	if enabled, ok := body["llm_enabled"].(bool); !ok || enabled {
		t.Fatalf("expected llm_enabled=false, got %v", body)
	}
}
