// Package llmhook provides a concrete, HTTP-backed implementation of the
// isa.Hooks interface, talking to a local Ollama server.
package llmhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/tinymachines/sovereign/isa"
)

// Config holds the connection settings for an Ollama-backed Hooks
// implementation.
type Config struct {
	Host              string        `toml:"ollama_host"`
	Model             string        `toml:"ollama_model"`
	Timeout           time.Duration `toml:"ollama_timeout"`
	MaxRetries        int           `toml:"ollama_max_retries"`
	RetryDelay        time.Duration `toml:"ollama_retry_delay"`
	ConnectionPoolSize int          `toml:"ollama_connection_pool_size"`
	Temperature       float64       `toml:"ollama_temperature"`
	MaxTokens         int           `toml:"ollama_max_tokens"`
}

// DefaultConfig returns sensible defaults for a local Ollama install.
func DefaultConfig() Config {
	return Config{
		Host:               "http://localhost:11434",
		Model:              "llama3",
		Timeout:            30 * time.Second,
		MaxRetries:         3,
		RetryDelay:         time.Second,
		ConnectionPoolSize: 10,
		Temperature:        0.7,
		MaxTokens:          2048,
	}
}

// OllamaHooks implements isa.Hooks against a running Ollama server's
// /api/generate endpoint.
type OllamaHooks struct {
	cfg    Config
	client *http.Client
}

// NewOllamaHooks builds an OllamaHooks from cfg, sizing the underlying
// HTTP client's connection pool from cfg.ConnectionPoolSize.
func NewOllamaHooks(cfg Config) *OllamaHooks {
	transport := &http.Transport{
		MaxIdleConns:        cfg.ConnectionPoolSize,
		MaxIdleConnsPerHost: cfg.ConnectionPoolSize,
	}
	return &OllamaHooks{
		cfg: cfg,
		client: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: transport,
		},
	}
}

type generateRequest struct {
	Model   string          `json:"model"`
	Prompt  string          `json:"prompt"`
	Stream  bool            `json:"stream"`
	Options generateOptions `json:"options"`
}

type generateOptions struct {
	Temperature float64 `json:"temperature"`
	NumPredict  int     `json:"num_predict"`
}

type generateResponse struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
	Error    string `json:"error"`
}

// Generate implements isa.Hooks by posting prompt to Ollama's /api/generate
// endpoint and returning the model's response text. Any failure is retried,
// for at most cfg.MaxRetries attempts in total.
func (h *OllamaHooks) Generate(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(generateRequest{
		Model:  h.cfg.Model,
		Prompt: prompt,
		Stream: false,
		Options: generateOptions{
			Temperature: h.cfg.Temperature,
			NumPredict:  h.cfg.MaxTokens,
		},
	})
	if err != nil {
		return "", fmt.Errorf("encoding ollama request: %w", err)
	}

	var lastErr error
	for attempt := 0; attempt < h.cfg.MaxRetries; attempt++ {
		resp, err := h.post(ctx, body)
		if err == nil {
			return resp, nil
		}
		lastErr = err
		if attempt < h.cfg.MaxRetries-1 {
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(h.cfg.RetryDelay * time.Duration(attempt+1)):
			}
		}
	}
	return "", fmt.Errorf("ollama generate failed after %d attempts: %w", h.cfg.MaxRetries, lastErr)
}

func (h *OllamaHooks) post(ctx context.Context, body []byte) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.cfg.Host+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := h.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("ollama returned status %d", resp.StatusCode)
	}

	var out generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decoding ollama response: %w", err)
	}
	if out.Error != "" {
		return "", fmt.Errorf("ollama error: %s", out.Error)
	}
	return out.Response, nil
}

// Evolve implements isa.Hooks by asking the model for a corrected version
// of code given errMsg, treating the generated text as the fixed source.
func (h *OllamaHooks) Evolve(ctx context.Context, code, errMsg string) (isa.EvolutionResult, error) {
	prompt := fmt.Sprintf(
		"The following program failed with error %q:\n\n%s\n\nRewrite it to fix the error. Respond with only the corrected program.",
		errMsg, code,
	)
	fixed, err := h.Generate(ctx, prompt)
	if err != nil {
		return isa.EvolutionResult{}, err
	}
	return isa.EvolutionResult{
		Success:    true,
		FixedCode:  fixed,
		Confidence: 0.5,
	}, nil
}
