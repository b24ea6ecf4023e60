// internal/logging/logging_test.go
package logging

import (
	"strings"
	"testing"
)

func TestBuildRequestMessage(t *testing.T) {
	msg := buildRequestMessage("kosha->llm", "openai", "gpt-4o-mini", []byte(`{"x":1}`))
	if !strings.HasPrefix(msg, "[KOSHA->LLM]") {
		t.Fatalf("direction not uppercased: %q", msg)
	}
	if !strings.Contains(msg, "provider=openai") || !strings.Contains(msg, "model=gpt-4o-mini") {
		t.Fatalf("missing provider/model fields: %q", msg)
	}
	if !strings.Contains(msg, `payload={"x":1}`) {
		t.Fatalf("missing payload: %q", msg)
	}

	msg = buildRequestMessage("LLM->KOSHA", "", "", nil)
	if !strings.Contains(msg, "provider=unknown") || !strings.Contains(msg, "model=unknown") {
		t.Fatalf("empty fields should default to unknown: %q", msg)
	}
	if !strings.Contains(msg, "payload=null") {
		t.Fatalf("nil payload should log as null: %q", msg)
	}
}

func TestFormatPayload(t *testing.T) {
	if got := formatPayload("  "); got != `""` {
		t.Fatalf("blank string payload: got %q", got)
	}
	if got := formatPayload([]byte{}); got != "[]" {
		t.Fatalf("empty bytes payload: got %q", got)
	}
	if got := formatPayload(map[string]int{"tokens": 3}); got != `{"tokens":3}` {
		t.Fatalf("map payload: got %q", got)
	}
}
