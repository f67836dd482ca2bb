package subtitle

import (
	"fmt"
	"os"
	"strings"

	"github.com/abadojack/whatlanggo"
	"golang.org/x/text/language"
)

// SrtReader reads SRT subtitle files from disk
type SrtReader struct {
	path string
}

// NewReader creates a new subtitle file reader
func NewReader(path string) Reader {
	return &SrtReader{
		path: path,
	}
}

// Read parses the subtitle file and detects its language
func (r *SrtReader) Read() (*File, error) {
	if !strings.HasSuffix(strings.ToLower(r.path), ".srt") {
		return nil, fmt.Errorf("only SRT format subtitle files are supported: %s", r.path)
	}

	content, err := os.ReadFile(r.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read subtitle file: %w", err)
	}

	blocks, err := Parse(string(content))
	if err != nil {
		return nil, fmt.Errorf("failed to parse subtitle file %s: %w", r.path, err)
	}

	return &File{
		Blocks:   blocks,
		Language: DetectLanguage(blocks),
		Format:   "SRT",
	}, nil
}

// DetectLanguage guesses the dominant language of the blocks by majority vote
func DetectLanguage(blocks []Block) language.Tag {
	if len(blocks) == 0 {
		return language.Und
	}

	langMap := make(map[string]int)

	for _, block := range blocks {
		lang := whatlanggo.DetectLang(block.JoinedText()).Iso6391()
		langMap[lang]++
	}

	var topLang string
	var topCount int
	for lang, count := range langMap {
		if count > topCount {
			topLang = lang
			topCount = count
		}
	}

	return language.All.Make(topLang)
}
