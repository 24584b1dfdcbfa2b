// Package llm provides the client for the text-generation backend, an
// OpenAI-compatible chat-completions endpoint (Ollama's /v1 API by default).
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/ukm-labs/advisor/internal/domain"
)

const maxResponseBody = 2 << 20 // 2MB

// ClientConfig holds configuration for the generation client.
type ClientConfig struct {
	BaseURL     string
	Model       string
	APIKey      string
	Temperature float64
	MaxTokens   int
	Timeout     time.Duration
}

// DefaultClientConfig returns default configuration targeting a local Ollama.
func DefaultClientConfig() ClientConfig {
	return ClientConfig{
		BaseURL:     "http://localhost:11434/v1",
		Model:       "qwen2.5:3b",
		APIKey:      "ollama",
		Temperature: 0.1,
		MaxTokens:   8000,
		Timeout:     120 * time.Second,
	}
}

// Client calls the chat-completions endpoint. Latency and content are opaque;
// any transport or decoding failure surfaces as an error to the caller.
type Client struct {
	cfg        ClientConfig
	httpClient *http.Client
}

// NewClient creates a generation client. Unset BaseURL, Model, MaxTokens, and
// Timeout fall back to defaults; APIKey and Temperature are taken as given (an
// empty key skips the Authorization header for keyless backends).
func NewClient(cfg ClientConfig) *Client {
	def := DefaultClientConfig()
	if cfg.BaseURL == "" {
		cfg.BaseURL = def.BaseURL
	}
	if cfg.Model == "" {
		cfg.Model = def.Model
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = def.MaxTokens
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = def.Timeout
	}
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Stream      bool          `json:"stream"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// Generate produces the next utterance for a role. instructions is the role's
// system prompt; the transcript is flattened into user messages prefixed with
// each speaker's name so the model sees who said what.
func (c *Client) Generate(ctx context.Context, instructions string, transcript []domain.Turn) (string, error) {
	messages := make([]chatMessage, 0, len(transcript)+1)
	messages = append(messages, chatMessage{Role: "system", Content: instructions})
	for _, turn := range transcript {
		messages = append(messages, chatMessage{
			Role:    "user",
			Content: fmt.Sprintf("%s: %s", turn.Speaker, turn.Content),
		})
	}

	body, err := json.Marshal(chatRequest{
		Model:       c.cfg.Model,
		Messages:    messages,
		Temperature: c.cfg.Temperature,
		MaxTokens:   c.cfg.MaxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("llm: marshal request: %w", err)
	}

	url := strings.TrimRight(c.cfg.BaseURL, "/") + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("llm: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("llm: request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return "", fmt.Errorf("llm: read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("llm: status %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}

	var parsed chatResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", fmt.Errorf("llm: parse response: %w", err)
	}
	if parsed.Error != nil {
		return "", fmt.Errorf("llm: backend error: %s", parsed.Error.Message)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("llm: response has no choices")
	}

	content := strings.TrimSpace(parsed.Choices[0].Message.Content)
	slog.Debug("Generation complete",
		"model", c.cfg.Model,
		"duration", time.Since(start),
		"content_length", len(content),
	)
	return content, nil
}
