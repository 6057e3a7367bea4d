// Package i18n holds the supported interface languages and the static
// first aid guide.
package i18n

import (
	"golang.org/x/text/language"
)

// DefaultLanguage is used when nothing else matches.
const DefaultLanguage = "en"

type Language struct {
	Code         string `json:"code"`
	Name         string `json:"name"`
	NativeName   string `json:"native_name"`
	SpeechLocale string `json:"speech_locale"`
}

var languages = []Language{
	{Code: "ta", Name: "Tamil", NativeName: "தமிழ்", SpeechLocale: "ta-IN"},
	{Code: "ml", Name: "Malayalam", NativeName: "മലയാളം", SpeechLocale: "ml-IN"},
	{Code: "te", Name: "Telugu", NativeName: "తెలుగు", SpeechLocale: "te-IN"},
	{Code: "hi", Name: "Hindi", NativeName: "हिन्दी", SpeechLocale: "hi-IN"},
	{Code: "en", Name: "English", NativeName: "English", SpeechLocale: "en-US"},
}

// English is first so the matcher falls back to it.
var (
	matchTags = []language.Tag{
		language.English,
		language.Tamil,
		language.Malayalam,
		language.Telugu,
		language.Hindi,
	}
	matcher = language.NewMatcher(matchTags)
)

// Languages returns the supported languages in display order.
func Languages() []Language {
	out := make([]Language, len(languages))
	copy(out, languages)
	return out
}

func Lookup(code string) (Language, bool) {
	for _, l := range languages {
		if l.Code == code {
			return l, true
		}
	}
	return Language{}, false
}

func IsSupported(code string) bool {
	_, ok := Lookup(code)
	return ok
}

// SpeechLocale returns the BCP 47 locale used to speak text in code,
// falling back to en-US.
func SpeechLocale(code string) string {
	if l, ok := Lookup(code); ok {
		return l.SpeechLocale
	}
	return "en-US"
}

// Suggest picks the supported language closest to an Accept-Language header.
func Suggest(acceptLanguage string) string {
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return DefaultLanguage
	}
	_, idx, conf := matcher.Match(tags...)
	if conf == language.No {
		return DefaultLanguage
	}
	base, _ := matchTags[idx].Base()
	return base.String()
}
