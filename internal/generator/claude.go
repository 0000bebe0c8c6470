package generator

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
)

const (
	defaultClaudeURL   = "https://api.anthropic.com/v1/messages"
	defaultClaudeModel = "claude-3-5-sonnet-20241022"
	anthropicVersion   = "2023-06-01"
)

// ClaudeConfig configures the Claude generator
type ClaudeConfig struct {
	APIKey    string
	BaseURL   string
	Model     string
	MaxTokens int
	Timeout   time.Duration
}

// Claude generates puzzles through the Anthropic messages API. Without a
// plausible API key it runs in mock mode and returns canned puzzles, so
// local development never needs network access.
type Claude struct {
	cfg        ClaudeConfig
	mockMode   bool
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClaude creates a Claude generator from config, applying defaults
func NewClaude(cfg ClaudeConfig, logger *slog.Logger) *Claude {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultClaudeURL
	}
	if cfg.Model == "" {
		cfg.Model = defaultClaudeModel
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 1000
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}

	mockMode := cfg.APIKey == "" || !strings.HasPrefix(cfg.APIKey, "sk-ant-")
	if mockMode {
		logger.Warn("claude generator running in mock mode", "reason", mockReason(cfg.APIKey))
	} else {
		logger.Info("claude generator initialized", "model", cfg.Model)
	}

	return &Claude{
		cfg:        cfg,
		mockMode:   mockMode,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logger:     logger,
	}
}

// NewClaudeWithHTTPClient is intended for tests; it avoids network access by
// using a custom http.Client.
func NewClaudeWithHTTPClient(cfg ClaudeConfig, logger *slog.Logger, httpClient *http.Client) *Claude {
	c := NewClaude(cfg, logger)
	if httpClient != nil {
		c.httpClient = httpClient
	}
	return c
}

func mockReason(apiKey string) string {
	if apiKey == "" {
		return "api key not configured"
	}
	return "invalid api key format"
}

// Name implements Generator
func (c *Claude) Name() string {
	return "claude4"
}

// MockMode reports whether the generator returns canned puzzles
func (c *Claude) MockMode() bool {
	return c.mockMode
}

type claudeRequest struct {
	Model     string          `json:"model"`
	MaxTokens int             `json:"max_tokens"`
	Messages  []claudeMessage `json:"messages"`
}

type claudeMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type claudeResponse struct {
	Content []struct {
		Text string `json:"text"`
	} `json:"content"`
}

// Generate implements Generator
func (c *Claude) Generate(ctx context.Context, prompt string) (string, error) {
	if c.mockMode {
		return mockCompletion(prompt), nil
	}

	body, err := json.Marshal(claudeRequest{
		Model:     c.cfg.Model,
		MaxTokens: c.cfg.MaxTokens,
		Messages:  []claudeMessage{{Role: "user", Content: prompt}},
	})
	if err != nil {
		return "", fmt.Errorf("%w: marshal request: %v", ErrGeneration, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("%w: build request: %v", ErrGeneration, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-API-Key", c.cfg.APIKey)
	req.Header.Set("anthropic-version", anthropicVersion)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrGeneration, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("%w: read response: %v", ErrGeneration, err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: api status %d: %s", ErrGeneration, resp.StatusCode, truncate(string(raw), 200))
	}

	var parsed claudeResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", fmt.Errorf("%w: decode response: %v", ErrGeneration, err)
	}
	if len(parsed.Content) == 0 {
		return "", fmt.Errorf("%w: empty completion", ErrGeneration)
	}

	return parsed.Content[0].Text, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

// mockCompletion returns a canned puzzle matching the prompt's category
func mockCompletion(prompt string) string {
	lower := strings.ToLower(prompt)
	switch {
	case strings.Contains(lower, "art puzzle"):
		return `{
    "question": "Which famous painting technique creates the illusion of depth by making distant objects appear bluer and less distinct?",
    "solution": "atmospheric perspective",
    "explanation": "Atmospheric perspective mimics how the atmosphere affects our perception of distant objects, a technique documented since the Renaissance period.",
    "hints": ["Think step by step", "Consider the key concepts"],
    "media_url": null,
    "estimated_solve_time": 240,
    "difficulty_justification": "Mock puzzle for development"
}`
	case strings.Contains(lower, "word puzzle"):
		return `{
    "question": "What 7-letter word becomes longer when the third letter is removed?",
    "solution": "lounger",
    "explanation": "Remove the \"u\" from \"lounger\" to get \"longer\".",
    "hints": ["Think step by step", "Consider the key concepts"],
    "media_url": null,
    "estimated_solve_time": 240,
    "difficulty_justification": "Mock puzzle for development"
}`
	default:
		return `{
    "question": "If a train travels 60 miles in 45 minutes, what is its speed in miles per hour?",
    "solution": "80 mph",
    "explanation": "Speed = Distance / Time. Convert 45 minutes to 0.75 hours: 60 miles / 0.75 hours = 80 mph.",
    "hints": ["Think step by step", "Consider the key concepts"],
    "media_url": null,
    "estimated_solve_time": 240,
    "difficulty_justification": "Mock puzzle for development"
}`
	}
}
