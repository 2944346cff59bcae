// Package langdetect validates that translated text is actually written in
// the expected target language.
package langdetect

import (
	"fmt"
	"strings"

	lingua "github.com/pemistahl/lingua-go"
)

// minValidationLength is the minimum rune count required to attempt language
// detection. Shorter texts produce unreliable results and are accepted
// without validation.
const minValidationLength = 20

// Validator checks translated text against an expected language. The
// underlying detector is expensive to build; reuse the instance.
type Validator struct {
	detector lingua.LanguageDetector
}

// NewValidator builds a Validator over all languages lingua supports.
func NewValidator() *Validator {
	detector := lingua.NewLanguageDetectorBuilder().
		FromAllLanguages().
		Build()
	return &Validator{detector: detector}
}

// DetectISO returns the ISO 639-1 code of the detected language, or false
// when the language cannot be determined.
func (v *Validator) DetectISO(text string) (string, bool) {
	if text == "" {
		return "", false
	}
	lang, ok := v.detector.DetectLanguageOf(text)
	if !ok {
		return "", false
	}
	return strings.ToLower(lang.IsoCode639_1().String()), true
}

// Check returns nil when text appears to be written in targetLang.
//
// Short texts and texts whose language cannot be determined pass without
// error. When the detected language differs the returned error names both
// codes.
func (v *Validator) Check(text, targetLang string) error {
	if targetLang == "" {
		return nil
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return fmt.Errorf("translation is empty")
	}

	// Detector is unreliable for very short texts; skip validation.
	if len([]rune(text)) < minValidationLength {
		return nil
	}

	detected, ok := v.DetectISO(text)
	if !ok {
		return nil
	}

	// Compare base languages only; the reference table may carry regioned
	// codes like pt-BR.
	base := strings.SplitN(strings.ToLower(targetLang), "-", 2)[0]
	if detected != base {
		return fmt.Errorf("expected %s but detected %s", targetLang, detected)
	}

	return nil
}
