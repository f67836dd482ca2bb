package subtitle

import (
	"slices"
	"strings"
	"time"

	"golang.org/x/text/language"
)

// Reader is the interface for reading subtitle files
type Reader interface {
	Read() (*File, error)
}

// Writer is the interface for writing subtitle files
type Writer interface {
	Write(path string, file *File) error
}

// Block represents a single timed subtitle entry. Index, Start and End are
// immutable after parsing; Text is the only field replaced by translation.
type Block struct {
	Index int           `json:"index"`
	Start time.Duration `json:"start"`
	End   time.Duration `json:"end"`
	Text  []string      `json:"text"`
}

// SameText reports whether the block text equals other's, line for line.
func (b Block) SameText(other Block) bool {
	return slices.Equal(b.Text, other.Text)
}

// JoinedText returns the block text as a single string with embedded
// line breaks.
func (b Block) JoinedText() string {
	return strings.Join(b.Text, "\n")
}

// File represents a parsed subtitle file
type File struct {
	Blocks   []Block
	Language language.Tag
	Format   string // e.g. SRT
}

// CloneBlocks deep-copies a block sequence so translations never mutate
// the original parse.
func CloneBlocks(blocks []Block) []Block {
	out := make([]Block, len(blocks))
	for i, b := range blocks {
		b.Text = slices.Clone(b.Text)
		out[i] = b
	}
	return out
}
