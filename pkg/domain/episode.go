package domain

import "time"

// Episode is the canonical published content record that an approved
// extraction is applied to.
type Episode struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Summary     string    `json:"summary"`
	Description string    `json:"description"`
	Content     string    `json:"content"`
	AudioURL    string    `json:"audio_url,omitempty"`
	PublishedAt time.Time `json:"published_at,omitempty"`
	UpdatedAt   time.Time `json:"updated_at,omitempty"`
}

// Template is reference data describing a reusable extraction template.
type Template struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}
