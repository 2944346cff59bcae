package domain

import "time"

// TranslationStatus is the lifecycle state of one language's translation.
type TranslationStatus string

const (
	TranslationPending    TranslationStatus = "pending"
	TranslationProcessing TranslationStatus = "processing"
	TranslationCompleted  TranslationStatus = "completed"
	TranslationFailed     TranslationStatus = "failed"
	TranslationReview     TranslationStatus = "review_needed"
)

// Valid reports whether s is a recognized translation status.
func (s TranslationStatus) Valid() bool {
	switch s {
	case TranslationPending, TranslationProcessing, TranslationCompleted,
		TranslationFailed, TranslationReview:
		return true
	}
	return false
}

// TranslationResult is one target language's translation of an extraction.
// It is only meaningful in the context of exactly one ExtractionResult; its
// fields are a subset of the originating extraction's fields.
type TranslationResult struct {
	LanguageCode       string             `json:"language_code"`
	TranslatedFields   Fields             `json:"translated_fields"`
	ConfidenceScores   map[string]float64 `json:"confidence_scores"`
	TranslationStatus  TranslationStatus  `json:"translation_status"`
	QualityScore       float64            `json:"quality_score"`
	ProcessingTimeMs   int64              `json:"processing_time_ms"`
	TranslationCostUSD float64            `json:"translation_cost_usd"`
	ValidationErrors   []string           `json:"validation_errors"`
	CreatedAt          time.Time          `json:"created_at"`
}

// Clone returns a deep copy so in-memory edits never alias persisted state.
func (r *TranslationResult) Clone() *TranslationResult {
	if r == nil {
		return nil
	}
	out := *r
	out.TranslatedFields = r.TranslatedFields.Clone()
	if r.ConfidenceScores != nil {
		out.ConfidenceScores = make(map[string]float64, len(r.ConfidenceScores))
		for k, v := range r.ConfidenceScores {
			out.ConfidenceScores[k] = v
		}
	}
	if r.ValidationErrors != nil {
		out.ValidationErrors = append([]string(nil), r.ValidationErrors...)
	}
	return &out
}
