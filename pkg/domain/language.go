package domain

import (
	"strings"

	"golang.org/x/text/language"
)

// Language is reference data describing one supported language. Loaded from
// the languages table and immutable from this workflow's perspective.
type Language struct {
	Code       string `json:"code"`
	Name       string `json:"name"`
	NativeName string `json:"native_name"`
	FlagEmoji  string `json:"flag_emoji"`
	IsDefault  bool   `json:"is_default"`
}

// NormalizeLanguageCode lowercases and canonicalizes an ISO language code
// ("EN-us" -> "en-US", "FR" -> "fr"). Codes that do not parse as BCP 47 tags
// are lowercased and returned as-is so unknown reference data still round
// trips.
func NormalizeLanguageCode(code string) string {
	code = strings.TrimSpace(code)
	if code == "" {
		return ""
	}
	tag, err := language.Parse(code)
	if err != nil {
		return strings.ToLower(code)
	}
	return tag.String()
}

// SameLanguage reports whether two codes denote the same base language,
// ignoring region subtags ("en" matches "en-US").
func SameLanguage(a, b string) bool {
	ta, errA := language.Parse(a)
	tb, errB := language.Parse(b)
	if errA != nil || errB != nil {
		return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
	}
	baseA, _ := ta.Base()
	baseB, _ := tb.Base()
	return baseA == baseB
}

// ExcludeSource filters the source language out of a list of target codes,
// preserving order and dropping duplicates.
func ExcludeSource(targets []string, source string) []string {
	out := make([]string, 0, len(targets))
	seen := make(map[string]bool, len(targets))
	for _, t := range targets {
		norm := NormalizeLanguageCode(t)
		if norm == "" || seen[norm] {
			continue
		}
		if source != "" && SameLanguage(norm, source) {
			continue
		}
		seen[norm] = true
		out = append(out, norm)
	}
	return out
}
