package agent

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dfquinn23/tech-stack-audit-tool/internal/changelog"
	"github.com/dfquinn23/tech-stack-audit-tool/internal/config"
)

func TestClientRunSendsPersonaAndReturnsCompletion(t *testing.T) {
	var captured chatRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer test-key" {
			t.Errorf("unexpected auth header %q", auth)
		}
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Errorf("decode request: %v", err)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]string{"role": "assistant", "content": "- Zoom now syncs calendars automatically\n"}},
			},
		})
	}))
	defer server.Close()

	client, err := NewClient(config.LLMConfig{
		BaseURL:     server.URL + "/v1",
		Model:       "gpt-4o-mini",
		Temperature: 0.3,
		APIKeyEnv:   "OPENAI_API_KEY",
	}, "test-key", WithHTTPClient(server.Client()))
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	task := SummarizerTask("Zoom", []changelog.Entry{
		{Date: "2025-03-01", Title: "Outlook Calendar Sync", Description: "Improved syncing"},
	})
	out, err := client.Run(context.Background(), Summarizer(), task)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if out != "- Zoom now syncs calendars automatically" {
		t.Fatalf("unexpected output %q", out)
	}

	if captured.Model != "gpt-4o-mini" || captured.Temperature != 0.3 {
		t.Fatalf("unexpected request settings: %+v", captured)
	}
	if len(captured.Messages) != 2 || captured.Messages[0].Role != "system" {
		t.Fatalf("unexpected messages: %+v", captured.Messages)
	}
	if !strings.Contains(captured.Messages[0].Content, "Changelog Summarizer") {
		t.Fatalf("system prompt missing persona: %q", captured.Messages[0].Content)
	}
	if !strings.Contains(captured.Messages[1].Content, "[2025-03-01] Outlook Calendar Sync") {
		t.Fatalf("user prompt missing entry: %q", captured.Messages[1].Content)
	}
}

func TestClientRunSurfacesAPIErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"message":"rate limited"}}`, http.StatusTooManyRequests)
	}))
	defer server.Close()

	client, err := NewClient(config.LLMConfig{BaseURL: server.URL, APIKeyEnv: "OPENAI_API_KEY"}, "k",
		WithHTTPClient(server.Client()))
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	_, err = client.Run(context.Background(), AuditAnalyst(), Task{Description: "x"})
	if err == nil || !strings.Contains(err.Error(), "429") {
		t.Fatalf("expected status error, got %v", err)
	}
}

func TestNewClientRequiresAPIKey(t *testing.T) {
	_, err := NewClient(config.LLMConfig{APIKeyEnv: "OPENAI_API_KEY"}, "")
	if err == nil || !strings.Contains(err.Error(), "OPENAI_API_KEY") {
		t.Fatalf("expected missing key error, got %v", err)
	}
}

func TestParseBulletList(t *testing.T) {
	text := "- first item\n* second item\n• third item\nplain line\n- first item\n\n"
	items := ParseBulletList(text)
	want := []string{"first item", "second item", "third item", "plain line"}
	if len(items) != len(want) {
		t.Fatalf("expected %d items, got %d: %v", len(want), len(items), items)
	}
	for i := range want {
		if items[i] != want[i] {
			t.Fatalf("item %d = %q, want %q", i, items[i], want[i])
		}
	}
}

func TestParseResearchLines(t *testing.T) {
	text := `Here are the entries:
- [2025-03-01] Outlook Calendar Sync: Improved bidirectional syncing
- [2025-01-22] Copilot Integration: AI assistance across Office apps
- malformed line without brackets
- [2024-12-25] NoColonHere`

	entries := ParseResearchLines(text)
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d: %v", len(entries), entries)
	}
	if entries[0].Date != "2025-03-01" || entries[0].Title != "Outlook Calendar Sync" {
		t.Fatalf("unexpected first entry: %+v", entries[0])
	}
	if entries[1].Description != "AI assistance across Office apps" {
		t.Fatalf("unexpected second entry: %+v", entries[1])
	}
}

func TestIntegrationTaskDedupesAndSortsTools(t *testing.T) {
	task := IntegrationTask([]string{"Zoom", "Wealthbox", "Zoom", " ", "Advent Axys"}, "Zoom", nil, "analysis")
	if !strings.Contains(task.Description, "Advent Axys, Wealthbox, Zoom") {
		t.Fatalf("tool list not normalized: %q", task.Description)
	}
	if !strings.Contains(task.Description, "- (no summaries)") {
		t.Fatalf("missing empty summaries placeholder: %q", task.Description)
	}
}
