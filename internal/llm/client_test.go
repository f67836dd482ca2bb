package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(url string) *Config {
	return &Config{
		APIKey:      "test-key",
		APIURL:      url,
		Model:       "test-model",
		MaxTokens:   256,
		Temperature: 0.3,
		Timeout:     5,
	}
}

func TestNewClientValidatesConfig(t *testing.T) {
	_, err := NewClient(&Config{})
	assert.Error(t, err)

	_, err = NewClient(testConfig("http://localhost"))
	assert.NoError(t, err)
}

func TestChatCompletion(t *testing.T) {
	var captured ChatRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/chat/completions", r.URL.Path)
		require.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))

		resp := ChatResponse{
			Choices: []Choice{
				{Message: Message{Role: "assistant", Content: "hi there"}},
			},
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	client, err := NewClient(testConfig(server.URL))
	require.NoError(t, err)

	content, err := client.SimpleChat(context.Background(), "hello", "be brief")
	require.NoError(t, err)
	assert.Equal(t, "hi there", content)

	require.Len(t, captured.Messages, 2)
	assert.Equal(t, "system", captured.Messages[0].Role)
	assert.Equal(t, "be brief", captured.Messages[0].Content)
	assert.Equal(t, "test-model", captured.Model)
	assert.Nil(t, captured.ResponseFormat)
}

func TestJSONChatSetsResponseFormat(t *testing.T) {
	var captured ChatRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		resp := ChatResponse{
			Choices: []Choice{
				{Message: Message{Role: "assistant", Content: `{"lines":[]}`}},
			},
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	client, err := NewClient(testConfig(server.URL))
	require.NoError(t, err)

	content, err := client.JSONChat(context.Background(), "translate", "")
	require.NoError(t, err)
	assert.Equal(t, `{"lines":[]}`, content)

	require.NotNil(t, captured.ResponseFormat)
	assert.Equal(t, "json_object", captured.ResponseFormat.Type)
}

func TestChatCompletionAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		resp := ChatResponse{Error: &Error{Message: "rate limited", Type: "rate_limit"}}
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	client, err := NewClient(testConfig(server.URL))
	require.NoError(t, err)

	_, err = client.SimpleChat(context.Background(), "hello", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rate limited")
}

func TestChatCompletionHTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	client, err := NewClient(testConfig(server.URL))
	require.NoError(t, err)

	_, err = client.SimpleChat(context.Background(), "hello", "")
	assert.Error(t, err)
}

// TestSimpleChatLive exercises the real provider; it only runs when a .env
// with LLM_API_KEY is present.
func TestSimpleChatLive(t *testing.T) {
	_ = godotenv.Load("./.env")
	apiKey := os.Getenv("LLM_API_KEY")
	if apiKey == "" {
		t.Skip("LLM_API_KEY not set, skipping live test")
	}

	client, err := NewClient(&Config{
		APIKey:      apiKey,
		APIURL:      getenvDefault("LLM_API_URL", "https://openrouter.ai/api/v1"),
		Model:       getenvDefault("LLM_MODEL", "openai/gpt-3.5-turbo"),
		MaxTokens:   100,
		Temperature: 0.7,
		Timeout:     30,
	})
	require.NoError(t, err)

	content, err := client.SimpleChat(context.Background(), "Say hello.", "")
	require.NoError(t, err)
	assert.NotEmpty(t, content)
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
