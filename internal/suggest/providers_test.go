package suggest

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rcliao/studylog/internal/config"
	"github.com/rcliao/studylog/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOllamaProvider(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/generate", r.URL.Path)

		var req ollamaRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "llama3", req.Model)
		assert.Equal(t, "json", req.Format)
		assert.False(t, req.Stream)
		assert.Contains(t, req.Prompt, `idiom: "Break a leg"`)

		json.NewEncoder(w).Encode(ollamaResponse{
			Response: `{"translation":"Bol şans","example":"Break a leg tonight!"}`,
		})
	}))
	defer srv.Close()

	p := NewOllamaProvider(srv.URL, "llama3", srv.Client())
	got, err := p.Suggest(context.Background(), "Break a leg", model.TypeIdiom)

	require.NoError(t, err)
	assert.Equal(t, "Bol şans", got.Translation)
	assert.Equal(t, "Break a leg tonight!", got.Example)
}

func TestOllamaProviderMalformed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(ollamaResponse{Response: `{"translation":"only"}`})
	}))
	defer srv.Close()

	_, err := NewOllamaProvider(srv.URL, "", srv.Client()).Suggest(context.Background(), "x", model.TypeWord)
	assert.ErrorIs(t, err, ErrIncomplete)
}

func TestOpenAIProvider(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))

		var req openaiChatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "json_object", req.ResponseFormat.Type)
		require.Len(t, req.Messages, 1)
		assert.Equal(t, "user", req.Messages[0].Role)

		w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"{\"translation\":\"Masa\",\"example\":\"Set the table.\",\"notes\":\"furniture\"}"}}]}`))
	}))
	defer srv.Close()

	p := NewOpenAIProvider(srv.URL, "sk-test", "", srv.Client())
	got, err := p.Suggest(context.Background(), "Table", model.TypeWord)

	require.NoError(t, err)
	assert.Equal(t, &model.Suggestion{Translation: "Masa", Example: "Set the table.", Notes: "furniture"}, got)
}

func TestOpenAIProviderErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"server error", http.StatusInternalServerError, `{"error":"boom"}`},
		{"rate limited", http.StatusTooManyRequests, `{}`},
		{"non-json body", http.StatusOK, `<html>oops</html>`},
		{"no choices", http.StatusOK, `{"choices":[]}`},
		{"non-json content", http.StatusOK, `{"choices":[{"message":{"content":"Masa"}}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			got, err := NewOpenAIProvider(srv.URL, "", "", srv.Client()).Suggest(context.Background(), "Table", model.TypeWord)
			assert.Error(t, err)
			assert.Nil(t, got)
		})
	}
}

func TestClientOverUnreachableProvider(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := NewClient(NewOllamaProvider(url, "", nil))
	assert.Nil(t, c.Suggest(context.Background(), "Abundance", model.TypeWord))
}

func TestNewFromConfig(t *testing.T) {
	ctx := context.Background()

	c, err := NewFromConfig(ctx, config.SuggestConfig{}, nil)
	require.NoError(t, err)
	assert.False(t, c.Enabled())

	c, err = NewFromConfig(ctx, config.SuggestConfig{Provider: "ollama", RateLimit: 1, Burst: 1}, nil)
	require.NoError(t, err)
	assert.True(t, c.Enabled())
	assert.NotNil(t, c.limiter)

	c, err = NewFromConfig(ctx, config.SuggestConfig{Provider: "ollama", RateLimit: -1}, nil)
	require.NoError(t, err)
	assert.Nil(t, c.limiter, "negative rate disables the limiter")

	c, err = NewFromConfig(ctx, config.SuggestConfig{Provider: "gemini", APIKey: "key"}, nil)
	require.NoError(t, err)
	assert.True(t, c.Enabled())

	_, err = NewFromConfig(ctx, config.SuggestConfig{Provider: "gemini"}, nil)
	assert.Error(t, err, "gemini needs a key")

	_, err = NewFromConfig(ctx, config.SuggestConfig{Provider: "bard"}, nil)
	assert.Error(t, err)
}
