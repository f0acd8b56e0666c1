package services

import (
	"strings"
	"unicode/utf8"

	"github.com/abadojack/whatlanggo"
)

// minDetectChars is the shortest text worth classifying; anything shorter
// is too noisy to call. Counted in runes, since Devanagari text packs
// several bytes into each character.
const minDetectChars = 30

// detectLanguage classifies extracted text as "en" or "hi". Other languages
// and text too short to classify come back as "unknown".
func detectLanguage(text string) string {
	trimmed := strings.TrimSpace(text)
	if utf8.RuneCountInString(trimmed) <= minDetectChars {
		return "unknown"
	}
	info := whatlanggo.Detect(trimmed)
	switch info.Lang {
	case whatlanggo.Eng:
		return "en"
	case whatlanggo.Hin:
		return "hi"
	default:
		return "unknown"
	}
}
