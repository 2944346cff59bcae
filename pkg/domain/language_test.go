package domain

import (
	"reflect"
	"testing"
)

func TestNormalizeLanguageCode(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"EN", "en"},
		{"fr", "fr"},
		{"  de ", "de"},
		{"pt-br", "pt-BR"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := NormalizeLanguageCode(tt.in); got != tt.want {
			t.Errorf("NormalizeLanguageCode(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSameLanguage(t *testing.T) {
	tests := []struct {
		a, b string
		want bool
	}{
		{"en", "en", true},
		{"en", "en-US", true},
		{"en", "fr", false},
		{"pt-BR", "pt", true},
	}

	for _, tt := range tests {
		if got := SameLanguage(tt.a, tt.b); got != tt.want {
			t.Errorf("SameLanguage(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestExcludeSource(t *testing.T) {
	tests := []struct {
		name    string
		targets []string
		source  string
		want    []string
	}{
		{
			name:    "source excluded from targets",
			targets: []string{"en", "fr", "de"},
			source:  "en",
			want:    []string{"fr", "de"},
		},
		{
			name:    "no source keeps all",
			targets: []string{"fr", "de"},
			source:  "",
			want:    []string{"fr", "de"},
		},
		{
			name:    "duplicates dropped",
			targets: []string{"fr", "fr", "de"},
			source:  "en",
			want:    []string{"fr", "de"},
		},
		{
			name:    "regioned source matches base",
			targets: []string{"en-US", "fr"},
			source:  "en",
			want:    []string{"fr"},
		},
		{
			name:    "all targets are the source",
			targets: []string{"en"},
			source:  "en",
			want:    []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExcludeSource(tt.targets, tt.source)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ExcludeSource(%v, %q) = %v, want %v", tt.targets, tt.source, got, tt.want)
			}
		})
	}
}
