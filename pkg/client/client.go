// Package client is a Go SDK for the puzzle-engine HTTP API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Client is a Go SDK for the puzzle-engine API
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// Option configures the client
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.httpClient = client
	}
}

// WithTimeout sets the client timeout
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// NewClient creates a new puzzle-engine client
func NewClient(baseURL, apiKey string, opts ...Option) *Client {
	c := &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// PuzzleContent is the playable content of a puzzle
type PuzzleContent struct {
	Question           string   `json:"question"`
	Solution           string   `json:"solution"`
	Explanation        string   `json:"explanation"`
	Hints              []string `json:"hints,omitempty"`
	EstimatedSolveTime int      `json:"estimated_solve_time,omitempty"`
}

// Puzzle represents a daily puzzle response
type Puzzle struct {
	ID               string        `json:"id"`
	Category         string        `json:"category"`
	Difficulty       float64       `json:"difficulty"`
	GeneratorModel   string        `json:"generator_model"`
	Content          PuzzleContent `json:"content"`
	TotalAttempts    int           `json:"total_attempts"`
	SuccessfulSolves int           `json:"successful_solves"`
	CreatedAt        time.Time     `json:"created_at"`
	IsActive         bool          `json:"is_active"`
}

// AttemptResult is the updated counters after recording an attempt
type AttemptResult struct {
	TotalAttempts    int     `json:"total_attempts"`
	SuccessfulSolves int     `json:"successful_solves"`
	SolveRate        float64 `json:"solve_rate"`
}

// StumpTally reports how often a generator model stumped the community
type StumpTally struct {
	Model            string `json:"model"`
	Category         string `json:"category"`
	TotalGenerated   int    `json:"total_generated"`
	SuccessfulStumps int    `json:"successful_stumps"`
}

// DifficultyEntry is one recorded difficulty adjustment
type DifficultyEntry struct {
	Category           string  `json:"category"`
	Date               string  `json:"date"`
	Difficulty         float64 `json:"difficulty"`
	PreviousDifficulty float64 `json:"previous_difficulty"`
	AdjustmentReason   string  `json:"adjustment_reason"`
}

// Outcome describes how an admin-triggered generation run ended
type Outcome struct {
	RunID  string  `json:"run_id"`
	Status string  `json:"status"`
	Puzzle *Puzzle `json:"puzzle,omitempty"`
	Score  float64 `json:"score"`
}

// GenerateRequest triggers generation for a date and category
type GenerateRequest struct {
	Date     string `json:"date,omitempty"`
	Category string `json:"category,omitempty"`
}

// EvaluateRequest triggers evaluation of a past puzzle
type EvaluateRequest struct {
	Date string `json:"date,omitempty"`
}

// GetToday retrieves the current day's puzzle
func (c *Client) GetToday(ctx context.Context) (*Puzzle, error) {
	var p Puzzle
	if err := c.get(ctx, "/api/v1/puzzles/today", &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// GetPuzzle retrieves the puzzle for a date in YYYY-MM-DD form
func (c *Client) GetPuzzle(ctx context.Context, date string) (*Puzzle, error) {
	var p Puzzle
	if err := c.get(ctx, fmt.Sprintf("/api/v1/puzzles/%s", date), &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// SubmitAttempt records a player attempt against a puzzle
func (c *Client) SubmitAttempt(ctx context.Context, date string, solved bool) (*AttemptResult, error) {
	var result AttemptResult
	req := map[string]bool{"solved": solved}
	if err := c.post(ctx, fmt.Sprintf("/api/v1/puzzles/%s/attempts", date), req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// StumpStats retrieves the per-model stump leaderboard
func (c *Client) StumpStats(ctx context.Context) ([]*StumpTally, error) {
	var data struct {
		Models []*StumpTally `json:"models"`
		Total  int           `json:"total"`
	}
	if err := c.get(ctx, "/api/v1/stats/stumps", &data); err != nil {
		return nil, err
	}
	return data.Models, nil
}

// DifficultyHistory retrieves recent difficulty adjustments for a category
func (c *Client) DifficultyHistory(ctx context.Context, category string, limit int) ([]*DifficultyEntry, error) {
	path := fmt.Sprintf("/api/v1/stats/difficulty/%s", category)
	if limit > 0 {
		path += fmt.Sprintf("?limit=%d", limit)
	}

	var data struct {
		Category string             `json:"category"`
		History  []*DifficultyEntry `json:"history"`
		Total    int                `json:"total"`
	}
	if err := c.get(ctx, path, &data); err != nil {
		return nil, err
	}
	return data.History, nil
}

// TriggerGenerate runs the generation pipeline (admin permission required)
func (c *Client) TriggerGenerate(ctx context.Context, req GenerateRequest) (*Outcome, error) {
	var outcome Outcome
	if err := c.post(ctx, "/api/v1/admin/generate", req, &outcome); err != nil {
		return nil, err
	}
	return &outcome, nil
}

// TriggerEvaluate runs the difficulty feedback loop (admin permission required)
func (c *Client) TriggerEvaluate(ctx context.Context, req EvaluateRequest) (*DifficultyEntry, error) {
	var entry DifficultyEntry
	if err := c.post(ctx, "/api/v1/admin/evaluate", req, &entry); err != nil {
		return nil, err
	}
	return &entry, nil
}

// Health checks if the service is healthy
func (c *Client) Health(ctx context.Context) error {
	_, err := c.doRequest(ctx, "GET", "/health", nil)
	return err
}

// envelope is the standard API response wrapper
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func (c *Client) get(ctx context.Context, path string, out interface{}) error {
	resp, err := c.doRequest(ctx, "GET", path, nil)
	if err != nil {
		return err
	}
	return decodeEnvelope(resp, out)
}

func (c *Client) post(ctx context.Context, path string, in, out interface{}) error {
	body, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	resp, err := c.doRequest(ctx, "POST", path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	return decodeEnvelope(resp, out)
}

func decodeEnvelope(resp []byte, out interface{}) error {
	var result envelope
	if err := json.Unmarshal(resp, &result); err != nil {
		return fmt.Errorf("failed to unmarshal response: %w", err)
	}

	if !result.Success {
		if result.Error != nil {
			return fmt.Errorf("API error: %s - %s", result.Error.Code, result.Error.Message)
		}
		return fmt.Errorf("API error: request failed")
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(result.Data, out); err != nil {
		return fmt.Errorf("failed to unmarshal response data: %w", err)
	}
	return nil
}

// doRequest performs an HTTP request
func (c *Client) doRequest(ctx context.Context, method, path string, body io.Reader) ([]byte, error) {
	url := c.baseURL + path

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(respBody))
	}

	return respBody, nil
}
