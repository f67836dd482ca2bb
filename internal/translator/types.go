package translator

import (
	"context"
)

// IndexedLine pairs a subtitle block index with a single text payload.
// The index lets a batch result be matched back to its block even when the
// provider reorders lines; Text may contain embedded line breaks.
type IndexedLine struct {
	Index int    `json:"index"`
	Text  string `json:"text"`
}

// Translator is the translation backend capability consumed by the pipeline.
//
// TranslateBatch must return one output line per requested index; lines whose
// index does not match a request are discarded by the caller.
// BuildGlossary derives a short summary and glossary from sample lines that
// is passed to every subsequent TranslateBatch call.
type Translator interface {
	TranslateBatch(
		ctx context.Context,
		summary string,
		contextLines []string,
		lines []IndexedLine,
		targetLang string,
	) ([]IndexedLine, error)

	BuildGlossary(
		ctx context.Context,
		sample []string,
	) (string, error)
}
