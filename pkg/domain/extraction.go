package domain

import "time"

// ReviewStatus tracks the human-review lifecycle of a persisted extraction.
type ReviewStatus string

const (
	ReviewPending  ReviewStatus = "pending_review"
	ReviewApproved ReviewStatus = "approved"
	ReviewRejected ReviewStatus = "rejected"
)

// SourceType identifies where the raw content of an extraction came from.
type SourceType string

const (
	SourceText SourceType = "text"
	SourceFile SourceType = "file"
	SourceURL  SourceType = "url"
)

// Provider identifies the AI provider the serverless endpoint should route
// the request to.
type Provider string

const (
	ProviderClaude Provider = "claude"
	ProviderOpenAI Provider = "openai"
	ProviderGrok   Provider = "grok"
)

// Valid reports whether p is one of the supported providers.
func (p Provider) Valid() bool {
	switch p {
	case ProviderClaude, ProviderOpenAI, ProviderGrok:
		return true
	}
	return false
}

// ProcessingOptions are the extraction/translation tuning flags forwarded to
// the serverless endpoints.
type ProcessingOptions struct {
	ParallelProcessing bool `json:"parallel_processing"`
	QualityValidation  bool `json:"quality_validation"`
	AutoApprove        bool `json:"auto_approve"`
}

// ExtractionResult is the structured output of one successful extraction
// call, held in the review session until it is applied or discarded.
type ExtractionResult struct {
	ExtractionID     string             `json:"extraction_id"`
	ExtractedFields  Fields             `json:"extracted_fields"`
	ConfidenceScores map[string]float64 `json:"confidence_scores"`
	QualityScore     float64            `json:"quality_score"`
	ProcessingTime   int64              `json:"processing_time"`
	CostUSD          float64            `json:"cost_usd"`
	ValidationErrors []string           `json:"validation_errors"`
	SourceLanguage   string             `json:"source_language,omitempty"`
	ReviewStatus     ReviewStatus       `json:"review_status,omitempty"`
	CreatedAt        time.Time          `json:"created_at,omitempty"`
}

// CanApply reports whether the extraction may be applied to an episode.
// Any validation error blocks the apply action.
func (r *ExtractionResult) CanApply() bool {
	return r != nil && r.ExtractionID != "" && len(r.ValidationErrors) == 0
}

// Field returns the value of the named extracted field and whether it is
// present and non-empty.
func (r *ExtractionResult) Field(name string) (FieldValue, bool) {
	if r == nil || r.ExtractedFields == nil {
		return FieldValue{}, false
	}
	v, ok := r.ExtractedFields[name]
	if !ok || v.IsEmpty() {
		return FieldValue{}, false
	}
	return v, true
}
