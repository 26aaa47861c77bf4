package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"chefmate/internal/config"
)

func TestCleanJSON(t *testing.T) {
	tests := map[string]string{
		`{"a":1}`:                 `{"a":1}`,
		"```json\n{\"a\":1}\n```": `{"a":1}`,
		"```\n[1, 2]\n```":        `[1, 2]`,
		"  \n{\"a\":1}\n  ":       `{"a":1}`,
	}
	for in, want := range tests {
		if got := CleanJSON(in); got != want {
			t.Errorf("CleanJSON(%q): expected %q, got %q", in, want, got)
		}
	}
}

func TestNewFromConfigWithoutKeys(t *testing.T) {
	gen, err := NewFromConfig(context.Background(), &config.Config{})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if gen != nil {
		t.Errorf("Expected no generator, got %T", gen)
	}
}

func TestGroqGenerateContent(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("Authorization") != "Bearer groq_key" {
				t.Errorf("Expected bearer token, got '%s'", r.Header.Get("Authorization"))
			}
			var body map[string]interface{}
			json.NewDecoder(r.Body).Decode(&body)
			if body["model"] != groqModel {
				t.Errorf("Expected model '%s', got '%v'", groqModel, body["model"])
			}
			fmt.Fprintln(w, `{"model": "llama", "choices": [{"message": {"content": "{\"ok\":true}"}}], "usage": {"prompt_tokens": 12, "completion_tokens": 3}}`)
		}))
		defer server.Close()

		client := NewGroqClient(&config.Config{GroqAPIKey: "groq_key"}).(*groqClient)
		client.endpoint = server.URL

		resp, err := client.GenerateContent(context.Background(), "hello")
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if resp.Content != `{"ok":true}` {
			t.Errorf("Unexpected content: %s", resp.Content)
		}
		if resp.Usage.PromptTokens != 12 || resp.Usage.CompletionTokens != 3 || resp.Usage.Model != "llama" {
			t.Errorf("Unexpected usage: %+v", resp.Usage)
		}
	})

	t.Run("ServerError", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTooManyRequests)
		}))
		defer server.Close()

		client := NewGroqClient(&config.Config{GroqAPIKey: "groq_key"}).(*groqClient)
		client.endpoint = server.URL

		if _, err := client.GenerateContent(context.Background(), "hello"); err == nil {
			t.Fatal("Expected an error for non-200 status code, got nil")
		}
	})
}
