// Package langcheck verifies that a post's prose is written in the
// language of the locale it is published under.
package langcheck

import (
	"strings"

	"github.com/pemistahl/lingua-go"
)

// MinConfidence is the lowest confidence at which Detect reports a language.
const MinConfidence = 0.5

// Detector guesses the language of a text among the site languages.
type Detector struct {
	detector lingua.LanguageDetector
}

// New builds a detector restricted to English, Spanish and Portuguese.
func New() *Detector {
	return &Detector{
		detector: lingua.NewLanguageDetectorBuilder().
			FromLanguages(lingua.English, lingua.Spanish, lingua.Portuguese).
			Build(),
	}
}

// Detect returns the ISO 639-1 code (lowercase) of the most likely language
// of text and its confidence. ok is false for empty text or when no language
// reaches MinConfidence.
func (d *Detector) Detect(text string) (code string, confidence float64, ok bool) {
	if strings.TrimSpace(text) == "" {
		return "", 0, false
	}

	values := d.detector.ComputeLanguageConfidenceValues(text)
	if len(values) == 0 {
		return "", 0, false
	}

	best := values[0]
	code = strings.ToLower(best.Language().IsoCode639_1().String())
	confidence = best.Value()
	return code, confidence, confidence >= MinConfidence
}

// Matches reports whether a detected language code fits a locale.
// Only the primary subtag is compared, so pt-BR matches pt.
func Matches(locale, code string) bool {
	primary, _, _ := strings.Cut(locale, "-")
	primary, _, _ = strings.Cut(primary, "_")
	return primary != "" && strings.EqualFold(primary, code)
}
