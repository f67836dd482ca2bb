package media

import "golang.org/x/text/language"

// StreamInfo describes one subtitle stream inside a media container
type StreamInfo struct {
	Language string
	Title    string
	LangTag  language.Tag
}

// StreamInfos is a list of probed subtitle streams
type StreamInfos []StreamInfo

// HasLanguage reports whether any stream carries the given language.
// Regional variants match their base language, so a "pt" track satisfies
// a pt-BR target.
func (s StreamInfos) HasLanguage(tag language.Tag) bool {
	want, _ := tag.Base()
	for _, info := range s {
		got, _ := info.LangTag.Base()
		if got == want {
			return true
		}
	}
	return false
}
