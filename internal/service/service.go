package service

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"golang.org/x/sync/singleflight"

	"github.com/MimeLyc/resumable-sub-translator/internal/config"
	"github.com/MimeLyc/resumable-sub-translator/internal/media"
	"github.com/MimeLyc/resumable-sub-translator/internal/pipeline"
	"github.com/MimeLyc/resumable-sub-translator/internal/subtitle"
	"github.com/MimeLyc/resumable-sub-translator/pkg/file"
	"github.com/MimeLyc/resumable-sub-translator/pkg/icron"
	"github.com/MimeLyc/resumable-sub-translator/pkg/log"
)

// transService periodically scans the configured media directories and
// feeds untranslated subtitle or media files into the pipeline.
type transService struct {
	cfg             config.Config
	processor       fileProcessor
	lastTriggerTime time.Time
	cronExpr        string
	cron            *cron.Cron
}

func NewRunnableTransService(
	cfg config.Config,
	processor fileProcessor,
	cron *cron.Cron,
) transService {
	return transService{
		cfg:       cfg,
		processor: processor,
		cronExpr:  cfg.Translate.CronExpr,
		cron:      cron,
	}
}

var singleflightGroup singleflight.Group

// Schedule registers the scan job on the cron instance. Overlapping
// triggers collapse into a single running scan.
func (s transService) Schedule(
	ctx context.Context,
) error {
	log.Info("Run TransService")

	runFunc := func() {
		_, _, _ = singleflightGroup.Do("run", func() (any, error) {
			for _, dir := range s.cfg.Media.MediaPaths() {
				log.Info("Run in dir %s", dir)
				if err := s.run(ctx, dir); err != nil {
					log.Error("Failed to run in dir %s: %v", dir, err)
				}
			}
			return nil, nil
		})
	}
	_, err := s.cron.AddFunc(s.cronExpr, runFunc)
	return err
}

func (s transService) run(
	ctx context.Context,
	dir string,
) error {
	candidates, err := s.findCandidatesInDir(ctx, dir)
	if err != nil {
		log.Error("Failed to find translation candidates in dir %s: %v", dir, err)
		return err
	}
	log.Info("Found %d translation candidates in dir %s", len(candidates), dir)

	for _, cand := range candidates {
		log.Info("Translating %s to %s", cand.Path, s.cfg.Translate.TargetLanguage)
		output, err := s.processor.ProcessFile(ctx, cand.Path)
		if err != nil {
			log.Error("Failed to translate %s: %v", cand.Path, err)
			continue
		}
		log.Info("Translated %s into %s", cand.Path, output)
	}
	return nil
}

// findCandidatesInDir lists files changed since the previous trigger that
// still lack a translated subtitle. When both a media file and a sibling
// .srt share a base name, the .srt wins so no extraction is needed.
func (s transService) findCandidatesInDir(
	_ context.Context,
	dir string,
) ([]candidate, error) {
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return nil, fmt.Errorf("directory %s does not exist", dir)
	}

	startTime, err := s.startTime()
	if err != nil {
		return nil, fmt.Errorf("failed to get start time: %w", err)
	}
	log.Info("Start searching target media files after time: %v", startTime)

	recentFiles, err := file.FindRecentAfter(dir, startTime)
	if err != nil {
		return nil, fmt.Errorf("failed to find recent files: %w", err)
	}

	var targetFiles []string
	for _, filePath := range recentFiles {
		ext := strings.ToLower(filepath.Ext(filePath))
		if !isSubtitleFile(ext) && !isMediaFile(ext) {
			continue
		}
		if isPipelineArtifact(filePath) {
			continue
		}
		targetFiles = append(targetFiles, filePath)
	}

	var candidates []candidate
	processedBases := make(map[string]bool)

	for _, targetFile := range targetFiles {
		baseName := getBaseName(targetFile)
		baseDir := filepath.Dir(targetFile)

		if processedBases[filepath.Join(baseDir, baseName)] {
			continue
		}
		processedBases[filepath.Join(baseDir, baseName)] = true

		input := findMatchingSrtFile(baseDir, baseName)
		isSubtitle := input != ""
		if !isSubtitle {
			input = findMatchingMediaFile(baseDir, baseName)
		}
		if input == "" {
			continue
		}

		skip, err := s.alreadyTranslated(input, isSubtitle)
		if err != nil {
			log.Error("Failed to inspect %s: %v", input, err)
			continue
		}
		if skip {
			continue
		}

		candidates = append(candidates, candidate{Path: input, IsSubtitle: isSubtitle})
	}

	return candidates, nil
}

// alreadyTranslated reports whether input needs no work: the pipeline
// output exists, the subtitle is already in the target language, or the
// media container carries a target language track.
func (s transService) alreadyTranslated(input string, isSubtitle bool) (bool, error) {
	target := s.cfg.Translate.TargetLanguage

	outPath := pipeline.OutputPath(input, target.String(), isSubtitle)
	if _, err := os.Stat(outPath); err == nil {
		log.Info("Translated subtitle %s already exists", outPath)
		return true, nil
	}

	if isSubtitle {
		sub, err := subtitle.NewReader(input).Read()
		if err != nil {
			return false, err
		}
		subBase, _ := sub.Language.Base()
		targetBase, _ := target.Base()
		if subBase == targetBase {
			log.Info("Subtitle %s is already in %s", input, target)
			return true, nil
		}
		return false, nil
	}

	streams, err := media.NewOperator(input).ProbeSubtitleStreams()
	if err != nil {
		return false, err
	}
	if streams.HasLanguage(target) {
		log.Info("Target subtitle already exists in media file %s", input)
		return true, nil
	}
	return false, nil
}

// getBaseName extracts the base name of a file
// e.g. "movie.mkv" -> "movie"
// e.g. "movie.eng.srt" -> "movie"
func getBaseName(filePath string) string {
	fileName := filepath.Base(filePath)
	if !strings.Contains(fileName, ".") {
		return fileName
	}
	return strings.Split(fileName, ".")[0]
}

// isPipelineArtifact recognizes files the pipeline itself writes, so a
// scan never feeds its own outputs back in.
func isPipelineArtifact(filePath string) bool {
	fileName := filepath.Base(filePath)
	return strings.Contains(fileName, ".ctxtrans.") ||
		strings.HasPrefix(fileName, "ctxtrans_")
}

// findMatchingSrtFile finds a plain .srt file sharing the base name
func findMatchingSrtFile(dir, baseName string) string {
	files, err := os.ReadDir(dir)
	if err != nil {
		return ""
	}

	for _, entry := range files {
		if entry.IsDir() {
			continue
		}
		fileName := entry.Name()
		if !strings.HasPrefix(fileName, baseName) ||
			!strings.HasSuffix(strings.ToLower(fileName), ".srt") {
			continue
		}
		if isPipelineArtifact(fileName) {
			continue
		}
		return filepath.Join(dir, fileName)
	}

	return ""
}

// findMatchingMediaFile finds a media file with the same base name
func findMatchingMediaFile(dir, baseName string) string {
	for _, ext := range mediaExts {
		targetPath := filepath.Join(dir, baseName+ext)
		if _, err := os.Stat(targetPath); err == nil {
			return targetPath
		}
	}

	return ""
}

// isSubtitleFile checks if the file extension is a subtitle format
func isSubtitleFile(ext string) bool {
	return slices.Contains(subtitleExts, ext)
}

// isMediaFile checks if the file extension is a media format that supports embedded subtitles
func isMediaFile(ext string) bool {
	return slices.Contains(mediaExts, ext)
}

func (s transService) startTime() (time.Time, error) {
	if s.lastTriggerTime.IsZero() {
		cronSchedule, err := icron.GetTriggerInfo(s.cronExpr, time.Now())
		if err != nil {
			return time.Time{}, fmt.Errorf("failed to get cron schedule: %w", err)
		}

		if time.Now().Add(-24 * 1 * time.Hour).Before(cronSchedule.Last) {
			return time.Now().Add(-24 * 7 * time.Hour), nil
		}
		return cronSchedule.Last, nil
	}

	return s.lastTriggerTime, nil
}
