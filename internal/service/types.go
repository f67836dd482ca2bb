package service

import (
	"context"
)

// fileProcessor runs the translation pipeline over one input file and
// returns the output path. Satisfied by pipeline.Driver.
type fileProcessor interface {
	ProcessFile(ctx context.Context, input string) (string, error)
}

// candidate is a file the scanner decided still needs translation.
type candidate struct {
	Path       string
	IsSubtitle bool
}

var subtitleExts = []string{
	".srt",  // SubRip
	".ass",  // Advanced SubStation Alpha
	".ssa",  // SubStation Alpha
	".vtt",  // WebVTT
	".sub",  // MicroDVD/SubViewer
	".smi",  // SAMI
	".stl",  // Spruce subtitle format
}

var mediaExts = []string{
	// Container formats that support embedded subtitles
	".mkv",  // Matroska Video
	".mp4",  // MPEG-4 Part 14
	".m4v",  // iTunes Video
	".mov",  // QuickTime Movie
	".avi",  // Audio Video Interleave
	".wmv",  // Windows Media Video
	".webm", // WebM
	".ts",   // MPEG Transport Stream
	".m2ts", // Blu-ray BDAV Transport Stream
	".vob",  // DVD Video Object
	".mpg",  // MPEG Video
	".mpeg", // MPEG Video
}
