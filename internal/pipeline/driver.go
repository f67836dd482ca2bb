package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/MimeLyc/resumable-sub-translator/internal/checkpoint"
	"github.com/MimeLyc/resumable-sub-translator/internal/media"
	"github.com/MimeLyc/resumable-sub-translator/internal/subtitle"
	"github.com/MimeLyc/resumable-sub-translator/internal/translator"
	"github.com/MimeLyc/resumable-sub-translator/pkg/file"
	"github.com/MimeLyc/resumable-sub-translator/pkg/log"
)

// glossarySampleSize is the number of leading source lines summarized into
// the glossary passed to every translation batch
const glossarySampleSize = 15

// Driver wires parsing, glossary building, checkpointing, scheduling and
// output writing into one run over a single input file.
type Driver struct {
	translator translator.Translator
	cfg        Config
}

// NewDriver creates a pipeline driver using the given translation provider
func NewDriver(t translator.Translator, cfg Config) *Driver {
	return &Driver{
		translator: t,
		cfg:        cfg,
	}
}

// ProcessFile translates the subtitle content of input and returns the
// output path. Media containers get their best subtitle track extracted
// first. An interrupted run leaves the checkpoint in place; the final file
// is only written once every block has been translated.
func (d *Driver) ProcessFile(ctx context.Context, input string) (string, error) {
	srtPath := input
	tempExtracted := ""
	isSubtitleInput := strings.EqualFold(filepath.Ext(input), ".srt")

	if !isSubtitleInput {
		log.Info("Extracting subtitles from %s", input)
		extracted, err := media.NewOperator(input).ExtractBestSubtitle()
		if err != nil {
			return "", WrapError(err, ErrExtract, "failed to extract subtitles").
				WithContext("input", input)
		}
		tempExtracted = extracted
		srtPath = extracted
	}

	content, err := os.ReadFile(srtPath)
	if err != nil {
		return "", WrapError(err, ErrParse, "failed to read subtitle file").
			WithContext("path", srtPath)
	}

	original, err := subtitle.Parse(string(content))
	if err != nil {
		return "", WrapError(err, ErrParse, "failed to parse subtitle file").
			WithContext("path", srtPath)
	}

	log.Info("Building glossary from sample")
	summary, err := d.translator.BuildGlossary(ctx, glossarySample(original))
	if err != nil {
		return "", WrapError(err, ErrProvider, "failed to build glossary")
	}

	store := checkpoint.NewStore(checkpoint.KeyFor(input))
	working, resume, _, err := store.Load(original)
	if err != nil {
		return "", WrapError(err, ErrCheckpoint, "failed to load checkpoint").
			WithContext("path", store.Path())
	}
	if resume > 0 {
		log.Info("Resuming at %d%%", percentComplete(resume, len(working)))
	}

	runner := NewRunner(d.translator, store, d.cfg)
	translated, err := runner.Run(ctx, original, working, resume, summary)
	if err != nil {
		return "", err
	}

	outPath := OutputPath(input, d.cfg.TargetLanguage.String(), isSubtitleInput)
	log.Info("Writing output to %s", outPath)
	writer := subtitle.NewWriter()
	if err := writer.Write(outPath, &subtitle.File{
		Blocks:   translated,
		Language: d.cfg.TargetLanguage,
		Format:   "SRT",
	}); err != nil {
		return "", WrapError(err, ErrFileWrite, "failed to write translated subtitles").
			WithContext("path", outPath)
	}

	if tempExtracted != "" {
		if err := os.Remove(tempExtracted); err != nil {
			log.Warn("Failed to remove temporary extraction %s: %v", tempExtracted, err)
		}
	}
	if err := store.Delete(); err != nil {
		return "", WrapError(err, ErrCheckpoint, "failed to remove checkpoint").
			WithContext("path", store.Path())
	}

	log.Info("Wrote %s", outPath)
	return outPath, nil
}

// glossarySample collects the first lines across blocks in original order,
// depth-first within each block, stopping once the sample is full.
func glossarySample(blocks []subtitle.Block) []string {
	sample := make([]string, 0, glossarySampleSize)
	for _, block := range blocks {
		for _, line := range block.Text {
			if len(sample) >= glossarySampleSize {
				return sample
			}
			sample = append(sample, line)
		}
	}
	return sample
}

// OutputPath derives the final subtitle location. Subtitle inputs keep a
// marker so the source file is never clobbered; media inputs get a sibling
// SRT tagged with the target language.
func OutputPath(input, lang string, isSubtitleInput bool) string {
	dir := filepath.Dir(input)
	stem := file.Stem(input)
	if isSubtitleInput {
		return filepath.Join(dir, stem+".ctxtrans."+lang+".srt")
	}
	return filepath.Join(dir, stem+"."+lang+".srt")
}
