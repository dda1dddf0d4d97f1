package summarizer

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/johnquangdev/meeting-taskflow/pkg/config"
)

func TestSummarize_Success(t *testing.T) {
	// Mock LLM server
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Fatalf("expected POST got %s", r.Method)
		}
		if r.URL.Path != "/chat/completions" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		var payload map[string]interface{}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Fatalf("invalid payload: %v", err)
		}
		content := `[{"description":"Prepare the deck","suggested_owner":"Alice","priority":"high"}]`
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"choices": []map[string]interface{}{
				{"message": map[string]string{"content": content}},
			},
		})
	}))
	defer ts.Close()

	client := NewHTTPClient(&config.SummarizerConfig{APIKey: "test-key", BaseURL: ts.URL})

	items, err := client.Summarize(context.Background(), "Alice: I'll prepare the deck.")
	if err != nil {
		t.Fatalf("summarize failed: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected 1 item got %d", len(items))
	}
	if items[0].SuggestedOwner != "Alice" {
		t.Fatalf("unexpected owner %s", items[0].SuggestedOwner)
	}
	if items[0].Priority != "high" {
		t.Fatalf("unexpected priority %s", items[0].Priority)
	}
}

func TestParseItems_FencedContent(t *testing.T) {
	content := "Here are the items:\n```json\n[{\"description\":\"x\",\"suggested_owner\":\"Bob\",\"priority\":\"low\"}]\n```"
	items, err := parseItems(content)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if len(items) != 1 || items[0].SuggestedOwner != "Bob" {
		t.Fatalf("unexpected items %+v", items)
	}
}

func TestParseItems_NoArray(t *testing.T) {
	if _, err := parseItems("sorry, no items"); err == nil {
		t.Fatal("expected error for content without JSON array")
	}
}
