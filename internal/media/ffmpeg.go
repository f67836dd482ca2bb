package media

import (
	"encoding/json"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"

	"golang.org/x/text/language"

	"github.com/MimeLyc/resumable-sub-translator/pkg/file"
	"github.com/MimeLyc/resumable-sub-translator/pkg/log"
)

// sourceLanguage is the subtitle track language extracted for translation
const sourceLanguage = "eng"

// Operator drives ffmpeg/ffprobe against one media file
type Operator struct {
	ffmpegCmd  string
	ffprobeCmd string
	filePath   string
	fileDir    string
	fileName   string
}

// NewOperator creates an ffmpeg operator for the given media path
func NewOperator(mediaPath string) Operator {
	mediaPath = filepath.Clean(mediaPath)

	return Operator{
		ffmpegCmd:  "ffmpeg",
		ffprobeCmd: "ffprobe",
		filePath:   mediaPath,
		fileDir:    filepath.Dir(mediaPath),
		fileName:   filepath.Base(mediaPath),
	}
}

// ProbeSubtitleStreams lists the subtitle streams of the media file
func (op Operator) ProbeSubtitleStreams() (StreamInfos, error) {
	cmdPath, err := exec.LookPath(op.ffprobeCmd)
	if err != nil {
		return nil, err
	}

	output, err := exec.Command(cmdPath, op.probeArgs()...).Output()
	if err != nil {
		log.Error("Failed to run ffprobe on %s: %v", op.filePath, err)
		return nil, err
	}

	var probeResult struct {
		Streams []struct {
			Tags struct {
				Language string `json:"language"`
				Title    string `json:"title"`
			} `json:"tags"`
		} `json:"streams"`
	}

	if err := json.Unmarshal(output, &probeResult); err != nil {
		log.Error("Failed to parse ffprobe output: %v", err)
		return nil, err
	}

	infos := make(StreamInfos, 0, len(probeResult.Streams))
	for _, stream := range probeResult.Streams {
		info := StreamInfo{
			Language: stream.Tags.Language,
			Title:    stream.Tags.Title,
			LangTag:  language.All.Make(stream.Tags.Language),
		}
		if info.Language == "" {
			info.Language = "und"
			info.LangTag = language.Und
		}
		infos = append(infos, info)
	}

	return infos, nil
}

// ExtractBestSubtitle probes the container, picks the most suitable
// source-language stream and extracts it to a temporary SRT next to the
// media file. Returns the extracted file path.
func (op Operator) ExtractBestSubtitle() (string, error) {
	streams, err := op.ProbeSubtitleStreams()
	if err != nil {
		return "", err
	}

	index, ok := bestStream(streams, sourceLanguage)
	if !ok {
		return "", fmt.Errorf("no %s subtitles found in %s", sourceLanguage, op.filePath)
	}

	output := filepath.Join(op.fileDir,
		"ctxtrans_"+file.ReplaceExt(op.fileName, ".srt"))
	return output, op.ExtractSubtitle(index, output)
}

// ExtractSubtitle copies the subtitle stream at index to targetPath as SRT
func (op Operator) ExtractSubtitle(index int, targetPath string) error {
	cmdPath, err := exec.LookPath(op.ffmpegCmd)
	if err != nil {
		return err
	}

	cmd := exec.Command(cmdPath, op.extractArgs(index, targetPath)...)
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("ffmpeg extraction failed: %w", err)
	}
	return nil
}

// bestStream scores source-language streams by how much their title looks
// like a closed caption track: cc/sdh/caption beat sub, which beats untitled.
func bestStream(streams StreamInfos, lang string) (int, bool) {
	best := -1
	bestScore := -1

	for i, stream := range streams {
		if !strings.EqualFold(stream.Language, lang) {
			continue
		}

		title := strings.ToLower(stream.Title)
		score := 0
		switch {
		case strings.Contains(title, "cc"),
			strings.Contains(title, "sdh"),
			strings.Contains(title, "caption"):
			score = 2
		case strings.Contains(title, "sub"):
			score = 1
		}

		if score > bestScore {
			best = i
			bestScore = score
		}
	}

	if best < 0 {
		return 0, false
	}
	return best, true
}

func (op Operator) probeArgs() []string {
	return []string{
		"-v", "error",
		"-select_streams", "s",
		"-show_entries", "stream_tags=language,title",
		"-of", "json",
		op.filePath,
	}
}

func (op Operator) extractArgs(index int, targetPath string) []string {
	return []string{
		"-i", op.filePath,
		"-map", fmt.Sprintf("0:s:%d", index),
		"-c:s", "srt",
		"-f", "srt",
		targetPath,
	}
}
