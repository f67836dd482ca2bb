package media

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"
)

func TestExtractArgs(t *testing.T) {
	op := NewOperator("/media/foo.mkv")
	args := op.extractArgs(3, "/media/foo_en.srt")

	expected := []string{
		"-i", "/media/foo.mkv",
		"-map", "0:s:3",
		"-c:s", "srt",
		"-f", "srt",
		"/media/foo_en.srt",
	}
	assert.Equal(t, expected, args)
}

func TestBestStreamPrefersClosedCaptions(t *testing.T) {
	streams := StreamInfos{
		{Language: "eng", Title: "English"},
		{Language: "eng", Title: "English CC"},
	}

	index, ok := bestStream(streams, "eng")
	require.True(t, ok)
	assert.Equal(t, 1, index)
}

func TestBestStreamScoring(t *testing.T) {
	streams := StreamInfos{
		{Language: "fra", Title: "French CC"},
		{Language: "eng", Title: "English Subs"},
		{Language: "eng", Title: "English SDH"},
		{Language: "eng", Title: ""},
	}

	index, ok := bestStream(streams, "eng")
	require.True(t, ok)
	assert.Equal(t, 2, index)
}

func TestBestStreamNoMatch(t *testing.T) {
	streams := StreamInfos{
		{Language: "jpn", Title: "Japanese"},
	}

	_, ok := bestStream(streams, "eng")
	assert.False(t, ok)
}

func TestHasLanguage(t *testing.T) {
	streams := StreamInfos{
		{Language: "eng", LangTag: language.English},
	}
	assert.True(t, streams.HasLanguage(language.English))
	assert.False(t, streams.HasLanguage(language.Japanese))

	regional := StreamInfos{
		{Language: "por", LangTag: language.Portuguese},
	}
	assert.True(t, regional.HasLanguage(language.BrazilianPortuguese))
}
