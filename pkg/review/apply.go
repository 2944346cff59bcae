package review

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"podcast-studio/pkg/domain"
)

// ErrNotApplicable means the apply preconditions do not hold: no episode is
// selected or the extraction carries validation errors.
var ErrNotApplicable = errors.New("extraction cannot be applied")

// ApplyStore persists the three apply steps.
type ApplyStore interface {
	UpdateEpisodeContent(ctx context.Context, episodeID, title, summary, description, content string) error
	UpsertEpisodeTranslation(ctx context.Context, episodeID string, tr *domain.TranslationResult) error
	SetExtractionStatus(ctx context.Context, extractionID string, status domain.ReviewStatus) error
}

// StepStatus is the outcome of one apply step.
type StepStatus string

const (
	StepDone    StepStatus = "done"
	StepFailed  StepStatus = "failed"
	StepSkipped StepStatus = "skipped"
)

// StepOutcome records one step's status and, when failed, its error text.
type StepOutcome struct {
	Status StepStatus `json:"status"`
	Error  string     `json:"error,omitempty"`
}

// ApplyReport names the outcome of every apply step individually. The three
// steps have no transactional guarantee, so a partial failure is surfaced
// explicitly instead of being collapsed into one generic message.
type ApplyReport struct {
	EpisodeID     string                 `json:"episode_id"`
	EpisodeUpdate StepOutcome            `json:"episode_update"`
	Translations  map[string]StepOutcome `json:"translations"`
	Approval      StepOutcome            `json:"approval"`
}

// Succeeded reports whether every attempted step completed.
func (r *ApplyReport) Succeeded() bool {
	if r.EpisodeUpdate.Status != StepDone || r.Approval.Status != StepDone {
		return false
	}
	for _, outcome := range r.Translations {
		if outcome.Status == StepFailed {
			return false
		}
	}
	return true
}

// ApplyToEpisode copies the extraction's fields onto the selected episode,
// publishes every completed translation, and marks the extraction approved.
//
// The steps run in sequence without a surrounding transaction; the returned
// report records each step's outcome. An error is returned alongside the
// report when any step failed. A failed episode update skips the remaining
// steps so translations are never published against a stale record.
func (s *Session) ApplyToEpisode(ctx context.Context, store ApplyStore) (*ApplyReport, error) {
	s.mu.Lock()
	extraction := s.extraction
	episodeID := s.episodeID

	if extraction == nil {
		s.mu.Unlock()
		return nil, ErrNoExtraction
	}
	// Applied and discarded are terminal; reject before any store write so a
	// repeated apply never re-runs the side effects.
	if !s.state.CanTransition(domain.StateApplied) {
		state := s.state
		s.mu.Unlock()
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, state, domain.StateApplied)
	}
	if episodeID == "" {
		s.mu.Unlock()
		return nil, fmt.Errorf("%w: no episode selected", ErrNotApplicable)
	}
	if !extraction.CanApply() {
		s.mu.Unlock()
		return nil, fmt.Errorf("%w: %d validation errors", ErrNotApplicable, len(extraction.ValidationErrors))
	}

	// Snapshot completed translations so the store writes see a stable view.
	completed := make(map[string]*domain.TranslationResult)
	for lang, tr := range s.translations {
		if tr.TranslationStatus == domain.TranslationCompleted {
			completed[lang] = tr.Clone()
		}
	}
	s.mu.Unlock()

	report := &ApplyReport{
		EpisodeID:    episodeID,
		Translations: make(map[string]StepOutcome, len(completed)),
	}

	// Step (a): canonical record update.
	err := store.UpdateEpisodeContent(ctx, episodeID,
		fieldText(extraction, domain.FieldTitle),
		fieldText(extraction, domain.FieldSummary),
		fieldText(extraction, domain.FieldDescription),
		fieldText(extraction, domain.FieldContent))
	if err != nil {
		report.EpisodeUpdate = StepOutcome{Status: StepFailed, Error: err.Error()}
		for lang := range completed {
			report.Translations[lang] = StepOutcome{Status: StepSkipped}
		}
		report.Approval = StepOutcome{Status: StepSkipped}
		return report, fmt.Errorf("update episode %s: %w", episodeID, err)
	}
	report.EpisodeUpdate = StepOutcome{Status: StepDone}

	// Step (b): publish completed languages. One language failing does not
	// stop the others.
	var stepErrs []error
	for _, lang := range sortedLangs(completed) {
		if err := store.UpsertEpisodeTranslation(ctx, episodeID, completed[lang]); err != nil {
			report.Translations[lang] = StepOutcome{Status: StepFailed, Error: err.Error()}
			stepErrs = append(stepErrs, fmt.Errorf("publish %s translation: %w", lang, err))
			continue
		}
		report.Translations[lang] = StepOutcome{Status: StepDone}
	}

	// Step (c): approval flag.
	if err := store.SetExtractionStatus(ctx, extraction.ExtractionID, domain.ReviewApproved); err != nil {
		report.Approval = StepOutcome{Status: StepFailed, Error: err.Error()}
		stepErrs = append(stepErrs, fmt.Errorf("approve extraction: %w", err))
	} else {
		report.Approval = StepOutcome{Status: StepDone}
	}

	if len(stepErrs) > 0 {
		return report, errors.Join(stepErrs...)
	}

	s.mu.Lock()
	applyErr := s.transition(domain.StateApplied)
	if applyErr == nil {
		s.extraction.ReviewStatus = domain.ReviewApproved
	}
	s.mu.Unlock()
	if applyErr != nil {
		return report, applyErr
	}

	return report, nil
}

func fieldText(res *domain.ExtractionResult, name string) string {
	v, ok := res.Field(name)
	if !ok || v.IsList() {
		return ""
	}
	return v.Text
}

func sortedLangs(m map[string]*domain.TranslationResult) []string {
	langs := make([]string, 0, len(m))
	for lang := range m {
		langs = append(langs, lang)
	}
	sort.Strings(langs)
	return langs
}
