package translator

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/MimeLyc/resumable-sub-translator/internal/llm"
	"github.com/MimeLyc/resumable-sub-translator/pkg/log"
)

// llmTranslator translates subtitle batches through an OpenAI-compatible
// chat endpoint, using JSON mode so line boundaries survive the round trip.
type llmTranslator struct {
	client *llm.Client
}

// NewLLMTranslator creates a Translator backed by the given LLM client
func NewLLMTranslator(client *llm.Client) Translator {
	return &llmTranslator{
		client: client,
	}
}

// batchPayload is the JSON object exchanged with the model. Requests and
// responses share the shape so the prompt can show the exact schema.
type batchPayload struct {
	Lines []IndexedLine `json:"lines"`
}

func (t *llmTranslator) TranslateBatch(
	ctx context.Context,
	summary string,
	contextLines []string,
	lines []IndexedLine,
	targetLang string,
) ([]IndexedLine, error) {
	payload, err := json.Marshal(batchPayload{Lines: lines})
	if err != nil {
		return nil, fmt.Errorf("failed to encode batch: %w", err)
	}

	systemPrompt := t.buildTranslatePrompt(targetLang)
	userMessage := t.buildUserMessage(summary, contextLines, string(payload), targetLang)

	content, err := t.client.JSONChat(ctx, userMessage, systemPrompt)
	if err != nil {
		return nil, fmt.Errorf("translation request failed: %w", err)
	}

	var result batchPayload
	if err := json.Unmarshal([]byte(content), &result); err != nil {
		return nil, fmt.Errorf("failed to decode translated lines: %w", err)
	}

	// Keep only results matching a requested index
	requested := make(map[int]bool, len(lines))
	for _, line := range lines {
		requested[line.Index] = true
	}

	accepted := make([]IndexedLine, 0, len(lines))
	for _, line := range result.Lines {
		if !requested[line.Index] {
			log.Warn("Discarding translated line with unknown index %d", line.Index)
			continue
		}
		accepted = append(accepted, line)
	}

	return accepted, nil
}

func (t *llmTranslator) BuildGlossary(
	ctx context.Context,
	sample []string,
) (string, error) {
	systemPrompt := "You are a professional subtitle localization assistant. " +
		"Summarize the media from the sample lines and provide a short glossary of names, " +
		"places and recurring terms to keep translations consistent and avoid mistranslations. " +
		"Return plain text."

	content, err := t.client.SimpleChat(ctx, strings.Join(sample, "\n"), systemPrompt)
	if err != nil {
		return "", fmt.Errorf("glossary request failed: %w", err)
	}

	return content, nil
}

// buildTranslatePrompt builds the system prompt for a batch translation
func (t *llmTranslator) buildTranslatePrompt(targetLang string) string {
	var prompt strings.Builder

	prompt.WriteString("You are a professional subtitle translation expert. Translate subtitle lines to " + targetLang + ".\n\n")

	prompt.WriteString("=== TRANSLATION GUIDELINES ===\n")
	prompt.WriteString("1. Use the provided summary and glossary for consistent terminology\n")
	prompt.WriteString("2. Use the previous lines only as context, do not translate them\n")
	prompt.WriteString("3. Maintain character voice and keep subtitle length appropriate for screen reading\n")
	prompt.WriteString("4. Preserve embedded line breaks inside each line's text\n")

	prompt.WriteString("\n=== OUTPUT FORMAT ===\n")
	prompt.WriteString("Return ONLY a JSON object of the form {\"lines\": [{\"index\": <number>, \"text\": <string>}, ...]}.\n")
	prompt.WriteString("Every input index must appear exactly once in the output with its translated text.\n")
	prompt.WriteString("Do not include any explanations, notes, or additional keys.\n")

	return prompt.String()
}

// buildUserMessage assembles summary, sliding-window context and the batch
func (t *llmTranslator) buildUserMessage(summary string, contextLines []string, payload string, targetLang string) string {
	var sb strings.Builder

	if summary != "" {
		sb.WriteString("Summary and glossary:\n")
		sb.WriteString(summary)
		sb.WriteString("\n\n")
	}

	if len(contextLines) > 0 {
		sb.WriteString("Previous lines (context only):\n")
		sb.WriteString(strings.Join(contextLines, "\n"))
		sb.WriteString("\n\n")
	}

	sb.WriteString("Translate the following lines to " + targetLang + ", keeping order and line breaks:\n")
	sb.WriteString(payload)

	return sb.String()
}
