package checkpoint

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/MimeLyc/resumable-sub-translator/internal/subtitle"
	"github.com/MimeLyc/resumable-sub-translator/pkg/file"
)

// ContextWindow is the number of source lines kept as sliding-window
// context for the next translation batch.
const ContextWindow = 4

// suffix appended to the input stem to derive the checkpoint path
const suffix = ".ctxtrans.partial.json"

// Store persists in-progress translated block sequences as a JSON snapshot
// next to the input file. The snapshot mirrors the in-memory representation
// so resume detection can rely on text equality alone.
type Store struct {
	path string
}

// KeyFor derives the deterministic checkpoint path for an input file, so
// the same input always resumes from the same checkpoint.
func KeyFor(inputPath string) string {
	return filepath.Join(filepath.Dir(inputPath), file.Stem(inputPath)+suffix)
}

// NewStore creates a store bound to the given checkpoint path
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Path returns the checkpoint file location
func (s *Store) Path() string {
	return s.path
}

// Exists reports whether a resumable checkpoint is present
func (s *Store) Exists() bool {
	_, err := os.Stat(s.path)
	return err == nil
}

// Load returns the working block sequence, the resume index and up to
// ContextWindow original source lines preceding it.
//
// Without a checkpoint the working set is a copy of the originals and the
// resume index is 0. Otherwise the stored blocks are scanned from the start:
// the first block whose text still equals the original marks the resume
// point, since blocks are never persisted out of order.
func (s *Store) Load(original []subtitle.Block) ([]subtitle.Block, int, []string, error) {
	if !s.Exists() {
		return subtitle.CloneBlocks(original), 0, nil, nil
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, 0, nil, fmt.Errorf("failed to read checkpoint %s: %w", s.path, err)
	}

	var blocks []subtitle.Block
	if err := json.Unmarshal(data, &blocks); err != nil {
		return nil, 0, nil, fmt.Errorf("failed to decode checkpoint %s: %w", s.path, err)
	}

	if len(blocks) != len(original) {
		return nil, 0, nil, fmt.Errorf(
			"checkpoint %s does not match input: %d blocks stored, %d parsed",
			s.path, len(blocks), len(original))
	}

	idx := 0
	for idx < len(blocks) && !blocks[idx].SameText(original[idx]) {
		idx++
	}

	start := idx - ContextWindow
	if start < 0 {
		start = 0
	}
	history := make([]string, 0, idx-start)
	for _, b := range original[start:idx] {
		history = append(history, b.JoinedText())
	}

	return blocks, idx, history, nil
}

// Save atomically overwrites the checkpoint with the full block sequence.
// The snapshot is written to a temp file and renamed so a reader never
// observes a partial write.
func (s *Store) Save(blocks []subtitle.Block) error {
	data, err := json.Marshal(blocks)
	if err != nil {
		return fmt.Errorf("failed to encode checkpoint: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to write checkpoint %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("failed to replace checkpoint %s: %w", s.path, err)
	}

	return nil
}

// Delete removes the checkpoint; missing files are not an error
func (s *Store) Delete() error {
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete checkpoint %s: %w", s.path, err)
	}
	return nil
}
