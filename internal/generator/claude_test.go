package generator

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClaudeMockMode(t *testing.T) {
	tests := []struct {
		name   string
		apiKey string
		mock   bool
	}{
		{"no key", "", true},
		{"wrong prefix", "sk-openai-xyz", true},
		{"valid prefix", "sk-ant-xyz", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewClaude(ClaudeConfig{APIKey: tt.apiKey}, nil)
			assert.Equal(t, tt.mock, c.MockMode())
		})
	}
}

func TestClaudeMockCompletionsParse(t *testing.T) {
	c := NewClaude(ClaudeConfig{}, nil)
	ctx := context.Background()

	for _, prompt := range []string{
		"You are an expert art puzzle creator for the game.",
		"Generate a word puzzle with moderate challenge.",
		"Generate a math puzzle with beginner difficulty.",
	} {
		raw, err := c.Generate(ctx, prompt)
		require.NoError(t, err)

		content, err := ParseCompletion(raw)
		require.NoError(t, err)
		assert.NotEmpty(t, content.Question)
		assert.NotEmpty(t, content.Solution)
		assert.NotEmpty(t, content.Explanation)
	}
}

func TestClaudeGenerate(t *testing.T) {
	var gotPath string
	var gotVersion string
	var gotKey string
	var gotReq claudeRequest

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotVersion = r.Header.Get("anthropic-version")
		gotKey = r.Header.Get("X-API-Key")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"content":[{"type":"text","text":"Here you go: {\"question\":\"q\"}"}]}`))
	}))
	defer srv.Close()

	c := NewClaudeWithHTTPClient(ClaudeConfig{
		APIKey:  "sk-ant-test",
		BaseURL: srv.URL + "/v1/messages",
	}, nil, srv.Client())

	raw, err := c.Generate(context.Background(), "prompt text")
	require.NoError(t, err)
	assert.True(t, strings.Contains(raw, `"question"`))

	assert.Equal(t, "/v1/messages", gotPath)
	assert.Equal(t, "2023-06-01", gotVersion)
	assert.Equal(t, "sk-ant-test", gotKey)
	assert.Equal(t, defaultClaudeModel, gotReq.Model)
	assert.Equal(t, 1000, gotReq.MaxTokens)
	require.Len(t, gotReq.Messages, 1)
	assert.Equal(t, "user", gotReq.Messages[0].Role)
	assert.Equal(t, "prompt text", gotReq.Messages[0].Content)
}

func TestClaudeGenerateAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"type":"overloaded_error"}}`, http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := NewClaudeWithHTTPClient(ClaudeConfig{
		APIKey:  "sk-ant-test",
		BaseURL: srv.URL,
	}, nil, srv.Client())

	_, err := c.Generate(context.Background(), "prompt")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrGeneration)
	assert.Contains(t, err.Error(), "429")
}

func TestClaudeGenerateEmptyContent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"content":[]}`))
	}))
	defer srv.Close()

	c := NewClaudeWithHTTPClient(ClaudeConfig{
		APIKey:  "sk-ant-test",
		BaseURL: srv.URL,
	}, nil, srv.Client())

	_, err := c.Generate(context.Background(), "prompt")
	assert.ErrorIs(t, err, ErrGeneration)
}
