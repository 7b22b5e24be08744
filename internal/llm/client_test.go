package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestChatWithMessages(t *testing.T) {
	var gotModel string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		var req struct {
			Model    string    `json:"model"`
			Messages []Message `json:"messages"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		gotModel = req.Model
		if len(req.Messages) != 2 {
			t.Errorf("expected 2 messages, got %d", len(req.Messages))
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]string{"role": "assistant", "content": "The listing includes parking."}},
			},
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "key", "default-model")
	answer, err := c.ChatWithMessages(context.Background(), []Message{
		{Role: "system", Content: "You answer property questions."},
		{Role: "user", Content: "Is parking included?"},
	}, ChatParams{})
	if err != nil {
		t.Fatalf("ChatWithMessages() error: %v", err)
	}
	if answer != "The listing includes parking." {
		t.Errorf("unexpected answer: %q", answer)
	}
	if gotModel != "default-model" {
		t.Errorf("expected default model, got %q", gotModel)
	}
}

func TestChatWithMessagesModelOverride(t *testing.T) {
	var gotModel string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Model string `json:"model"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		gotModel = req.Model
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]string{"role": "assistant", "content": "ok"}},
			},
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "key", "default-model")
	if _, err := c.ChatWithMessages(context.Background(), []Message{{Role: "user", Content: "hi"}}, ChatParams{Model: "other-model"}); err != nil {
		t.Fatalf("ChatWithMessages() error: %v", err)
	}
	if gotModel != "other-model" {
		t.Errorf("expected model override, got %q", gotModel)
	}
}

func TestChatWithMessagesNoChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"choices": []any{}})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "key", "m")
	if _, err := c.ChatWithMessages(context.Background(), []Message{{Role: "user", Content: "hi"}}, ChatParams{}); err == nil {
		t.Fatal("expected error when response has no choices")
	}
}
