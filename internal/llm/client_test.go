package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ukm-labs/advisor/internal/domain"
)

func TestGenerateSendsInstructionsAndTranscript(t *testing.T) {
	t.Parallel()

	var gotReq chatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer ollama" {
			t.Errorf("unexpected auth header %q", auth)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Errorf("decode request: %v", err)
		}
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"choices": []map[string]interface{}{
				{"message": map[string]string{"role": "assistant", "content": "  Olahraga, Musik  "}},
			},
		})
	}))
	defer srv.Close()

	client := NewClient(ClientConfig{BaseURL: srv.URL + "/v1", Model: "qwen2.5:3b", APIKey: "ollama"})
	transcript := []domain.Turn{
		{Speaker: "User_Student", Content: "Saya suka olahraga dan musik"},
	}

	got, err := client.Generate(context.Background(), "instructions here", transcript)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if got != "Olahraga, Musik" {
		t.Fatalf("expected trimmed content, got %q", got)
	}

	if gotReq.Model != "qwen2.5:3b" {
		t.Fatalf("model not sent: %+v", gotReq)
	}
	if len(gotReq.Messages) != 2 {
		t.Fatalf("expected system + 1 turn, got %d messages", len(gotReq.Messages))
	}
	if gotReq.Messages[0].Role != "system" || gotReq.Messages[0].Content != "instructions here" {
		t.Fatalf("system message wrong: %+v", gotReq.Messages[0])
	}
	if !strings.Contains(gotReq.Messages[1].Content, "User_Student:") {
		t.Fatalf("turn not speaker-prefixed: %+v", gotReq.Messages[1])
	}
}

func TestGenerateSurfacesBackendErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		handler http.HandlerFunc
		wantSub string
	}{
		{
			name: "http error status",
			handler: func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "model not found", http.StatusNotFound)
			},
			wantSub: "status 404",
		},
		{
			name: "malformed body",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte("not json"))
			},
			wantSub: "parse response",
		},
		{
			name: "embedded error object",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(`{"error":{"message":"overloaded"}}`))
			},
			wantSub: "overloaded",
		},
		{
			name: "no choices",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(`{"choices":[]}`))
			},
			wantSub: "no choices",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			client := NewClient(ClientConfig{BaseURL: srv.URL + "/v1"})
			_, err := client.Generate(context.Background(), "x", nil)
			if err == nil {
				t.Fatal("expected an error")
			}
			if !strings.Contains(err.Error(), tt.wantSub) {
				t.Fatalf("error %q missing %q", err, tt.wantSub)
			}
		})
	}
}

func TestNewClientDefaults(t *testing.T) {
	t.Parallel()

	c := NewClient(ClientConfig{})
	def := DefaultClientConfig()

	if c.cfg.BaseURL != def.BaseURL {
		t.Errorf("BaseURL = %q, want %q", c.cfg.BaseURL, def.BaseURL)
	}
	if c.cfg.Model != def.Model {
		t.Errorf("Model = %q, want %q", c.cfg.Model, def.Model)
	}
	if c.cfg.MaxTokens != def.MaxTokens {
		t.Errorf("MaxTokens = %d, want %d", c.cfg.MaxTokens, def.MaxTokens)
	}
	if c.cfg.Timeout != def.Timeout {
		t.Errorf("Timeout = %v, want %v", c.cfg.Timeout, def.Timeout)
	}
	// APIKey and Temperature pass through untouched: an empty key means a
	// keyless backend, a zero temperature is a valid setting.
	if c.cfg.APIKey != "" {
		t.Errorf("APIKey = %q, want empty", c.cfg.APIKey)
	}
	if c.cfg.Temperature != 0 {
		t.Errorf("Temperature = %v, want 0", c.cfg.Temperature)
	}
}

func TestGenerateRequestOmitsAuthWithoutKey(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if auth := r.Header.Get("Authorization"); auth != "" {
			t.Errorf("unexpected auth header %q", auth)
		}
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"ok"}}]}`))
	}))
	defer srv.Close()

	client := NewClient(ClientConfig{BaseURL: srv.URL + "/v1"})
	if _, err := client.Generate(context.Background(), "x", nil); err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
}

func TestGenerateUnreachableBackend(t *testing.T) {
	t.Parallel()

	client := NewClient(ClientConfig{BaseURL: "http://127.0.0.1:1/v1"})
	if _, err := client.Generate(context.Background(), "x", nil); err == nil {
		t.Fatal("expected an error for an unreachable backend")
	}
}
