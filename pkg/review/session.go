// Package review holds extraction and translation results in memory while a
// human reviews, edits, and finally applies or discards them.
package review

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"podcast-studio/pkg/domain"
	"podcast-studio/pkg/translation"
)

var (
	// ErrInvalidTransition means the requested operation is not legal in the
	// session's current state.
	ErrInvalidTransition = errors.New("invalid session state transition")

	// ErrNoExtraction means the session has no extraction result yet.
	ErrNoExtraction = errors.New("session has no extraction result")

	// ErrUnknownLanguage means the session has no translation for the
	// requested language.
	ErrUnknownLanguage = errors.New("no translation for language")

	// ErrUnknownField means the field name is not one of the canonical
	// extraction fields.
	ErrUnknownField = errors.New("unknown field")
)

// TranslationStore persists translation edits keyed on
// (extraction_id, language_code).
type TranslationStore interface {
	UpsertTranslation(ctx context.Context, extractionID string, tr *domain.TranslationResult) error
}

// Session owns the in-memory workflow state for one reviewer. All results
// live here until explicitly persisted; the store is the system of record
// only after an explicit save or apply.
type Session struct {
	ID        string
	CreatedAt time.Time

	mu           sync.Mutex
	state        domain.SessionState
	extraction   *domain.ExtractionResult
	translations map[string]*domain.TranslationResult
	episodeID    string
}

// NewSession creates an empty session.
func NewSession(id string) *Session {
	return &Session{
		ID:           id,
		CreatedAt:    time.Now(),
		state:        domain.StateNone,
		translations: make(map[string]*domain.TranslationResult),
	}
}

// State returns the current lifecycle state.
func (s *Session) State() domain.SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Extraction returns the current extraction result, or nil.
func (s *Session) Extraction() *domain.ExtractionResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.extraction
}

// Translations returns the current translation map. The returned map is the
// session's own; callers must not mutate it outside session methods.
func (s *Session) Translations() map[string]*domain.TranslationResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]*domain.TranslationResult, len(s.translations))
	for k, v := range s.translations {
		out[k] = v
	}
	return out
}

// SelectEpisode records the apply target. Empty means "create new", which
// disables the apply action.
func (s *Session) SelectEpisode(episodeID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.episodeID = episodeID
}

// EpisodeID returns the selected apply target.
func (s *Session) EpisodeID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.episodeID
}

// transition moves the session to next, enforcing the state machine.
// Callers must hold s.mu.
func (s *Session) transition(next domain.SessionState) error {
	if !s.state.CanTransition(next) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, s.state, next)
	}
	s.state = next
	return nil
}

// BeginExtraction marks the session extracting. Re-extracting over an
// existing result is allowed; applying or discarding is not re-entrant.
func (s *Session) BeginExtraction() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.transition(domain.StateExtracting)
}

// CompleteExtraction installs a fresh extraction result and clears any prior
// translations; results from the automatic fan-out replace the map whole.
func (s *Session) CompleteExtraction(res *domain.ExtractionResult, translations *translation.Result) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.transition(domain.StateExtracted); err != nil {
		return err
	}
	s.extraction = res
	s.translations = make(map[string]*domain.TranslationResult)
	if translations != nil {
		for lang, tr := range translations.Translations {
			s.translations[lang] = tr
		}
		s.state = domain.StateTranslated
	}
	return nil
}

// FailExtraction returns the session to its pre-extracting state.
func (s *Session) FailExtraction() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == domain.StateExtracting {
		if s.extraction != nil {
			s.state = domain.StateExtracted
		} else {
			s.state = domain.StateNone
		}
	}
}

// BeginTranslation marks the session translating.
func (s *Session) BeginTranslation() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.extraction == nil {
		return ErrNoExtraction
	}
	return s.transition(domain.StateTranslating)
}

// CompleteTranslation replaces the entire translation map with the fan-out's
// results. Prior partial results are not merged.
func (s *Session) CompleteTranslation(result *translation.Result) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.transition(domain.StateTranslated); err != nil {
		return err
	}
	s.translations = make(map[string]*domain.TranslationResult)
	if result != nil {
		for lang, tr := range result.Translations {
			s.translations[lang] = tr
		}
	}
	return nil
}

// FailTranslation returns the session to extracted.
func (s *Session) FailTranslation() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == domain.StateTranslating {
		s.state = domain.StateExtracted
	}
}

// EditField merge-updates one field of one language's translated fields,
// in memory only. All other languages and fields are untouched.
func (s *Session) EditField(lang, field string, value domain.FieldValue) error {
	if !domain.IsKnownField(field) {
		return fmt.Errorf("%w: %s", ErrUnknownField, field)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tr, ok := s.translations[lang]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownLanguage, lang)
	}

	if tr.TranslatedFields == nil {
		tr.TranslatedFields = make(domain.Fields)
	}
	tr.TranslatedFields[field] = value
	return nil
}

// SaveTranslation persists the language's current translated fields and
// locally marks it review_needed. A persistence failure is returned but does
// not roll back the in-memory edit or the local status change.
func (s *Session) SaveTranslation(ctx context.Context, store TranslationStore, lang string) error {
	s.mu.Lock()
	if s.extraction == nil {
		s.mu.Unlock()
		return ErrNoExtraction
	}
	tr, ok := s.translations[lang]
	if !ok {
		s.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrUnknownLanguage, lang)
	}

	tr.TranslationStatus = domain.TranslationReview
	extractionID := s.extraction.ExtractionID
	snapshot := tr.Clone()
	s.mu.Unlock()

	if err := store.UpsertTranslation(ctx, extractionID, snapshot); err != nil {
		return fmt.Errorf("save translation %s: %w", lang, err)
	}
	return nil
}

// Discard clears all results and terminates the session.
func (s *Session) Discard() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.transition(domain.StateDiscarded); err != nil {
		return err
	}
	s.extraction = nil
	s.translations = make(map[string]*domain.TranslationResult)
	return nil
}
