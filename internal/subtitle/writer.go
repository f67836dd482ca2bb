package subtitle

import (
	"fmt"
	"os"
)

// SrtWriter writes SRT subtitle files to disk
type SrtWriter struct{}

// NewWriter creates a new subtitle file writer
func NewWriter() Writer {
	return &SrtWriter{}
}

// Write renders the file's blocks as SRT text at the given path
func (w *SrtWriter) Write(path string, file *File) error {
	if file == nil {
		return fmt.Errorf("subtitle data is empty")
	}

	if err := os.WriteFile(path, []byte(Format(file.Blocks)), 0644); err != nil {
		return fmt.Errorf("failed to write subtitle file: %w", err)
	}

	return nil
}
