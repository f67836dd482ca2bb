package translator

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/MimeLyc/resumable-sub-translator/internal/llm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTranslator(t *testing.T, handler http.HandlerFunc) (Translator, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := llm.NewClient(&llm.Config{
		APIKey:      "test-key",
		APIURL:      server.URL,
		Model:       "test-model",
		MaxTokens:   1024,
		Temperature: 0.3,
		Timeout:     5,
	})
	require.NoError(t, err)

	return NewLLMTranslator(client), server
}

func chatResponseWith(content string) llm.ChatResponse {
	return llm.ChatResponse{
		Choices: []llm.Choice{
			{Message: llm.Message{Role: "assistant", Content: content}},
		},
	}
}

func TestTranslateBatchParsesIndexedLines(t *testing.T) {
	var captured llm.ChatRequest
	trans, _ := newTestTranslator(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		_ = json.NewEncoder(w).Encode(chatResponseWith(
			`{"lines":[{"index":2,"text":"mundo"},{"index":1,"text":"olá"}]}`))
	})

	lines := []IndexedLine{
		{Index: 1, Text: "hello"},
		{Index: 2, Text: "world"},
	}
	out, err := trans.TranslateBatch(context.Background(), "a greeting scene", []string{"previous line"}, lines, "pt-BR")
	require.NoError(t, err)

	require.Len(t, out, 2)
	assert.ElementsMatch(t, []IndexedLine{
		{Index: 1, Text: "olá"},
		{Index: 2, Text: "mundo"},
	}, out)

	// JSON mode must be requested and the batch embedded in the prompt
	require.NotNil(t, captured.ResponseFormat)
	assert.Equal(t, "json_object", captured.ResponseFormat.Type)
	require.Len(t, captured.Messages, 2)
	assert.Contains(t, captured.Messages[1].Content, "a greeting scene")
	assert.Contains(t, captured.Messages[1].Content, "previous line")
	assert.Contains(t, captured.Messages[1].Content, `"hello"`)
	assert.Contains(t, captured.Messages[1].Content, "pt-BR")
}

func TestTranslateBatchDiscardsUnknownIndices(t *testing.T) {
	trans, _ := newTestTranslator(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(chatResponseWith(
			`{"lines":[{"index":1,"text":"olá"},{"index":99,"text":"spurious"}]}`))
	})

	out, err := trans.TranslateBatch(context.Background(), "", nil, []IndexedLine{{Index: 1, Text: "hello"}}, "pt-BR")
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, IndexedLine{Index: 1, Text: "olá"}, out[0])
}

func TestTranslateBatchRejectsMalformedJSON(t *testing.T) {
	trans, _ := newTestTranslator(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(chatResponseWith(`not json at all`))
	})

	_, err := trans.TranslateBatch(context.Background(), "", nil, []IndexedLine{{Index: 1, Text: "hello"}}, "pt-BR")
	assert.Error(t, err)
}

func TestBuildGlossary(t *testing.T) {
	var captured llm.ChatRequest
	trans, _ := newTestTranslator(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		_ = json.NewEncoder(w).Encode(chatResponseWith("A space opera. Glossary: warp drive."))
	})

	summary, err := trans.BuildGlossary(context.Background(), []string{"Engage the warp drive.", "Captain on the bridge."})
	require.NoError(t, err)
	assert.Equal(t, "A space opera. Glossary: warp drive.", summary)

	// glossary call is plain text, not JSON mode
	assert.Nil(t, captured.ResponseFormat)
	require.Len(t, captured.Messages, 2)
	assert.Contains(t, captured.Messages[1].Content, "warp drive")
}
