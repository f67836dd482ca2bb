package file

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReplaceExt(t *testing.T) {
	tests := []struct {
		name string
		path string
		ext  string
		want string
	}{
		{name: "simple swap", path: "movie.mkv", ext: ".srt", want: "movie.srt"},
		{name: "ext without dot", path: "movie.mkv", ext: "srt", want: "movie.srt"},
		{name: "multi dot keeps earlier parts", path: "show.s01e02.mkv", ext: ".srt", want: "show.s01e02.srt"},
		{name: "no extension appends", path: "movie", ext: ".srt", want: "movie.srt"},
		{name: "with directory", path: "/media/shows/movie.mkv", ext: ".srt", want: "/media/shows/movie.srt"},
		{name: "empty path", path: "", ext: ".srt", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ReplaceExt(tt.path, tt.ext))
		})
	}
}

func TestStem(t *testing.T) {
	assert.Equal(t, "movie", Stem("/media/movie.mkv"))
	assert.Equal(t, "show.s01e02", Stem("show.s01e02.srt"))
	assert.Equal(t, "plain", Stem("plain"))
}
