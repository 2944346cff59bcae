package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"podcast-studio/pkg/domain"
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("not found")

// Store persists the extraction/translation workflow state. The schema is
// owned by the hosted service; this layer only reads and writes the agreed
// tables.
type Store struct {
	provider DBProvider
}

// NewStore creates a Store on top of a connected database client.
func NewStore(provider DBProvider) *Store {
	return &Store{provider: provider}
}

func (s *Store) db() (*sql.DB, error) {
	handle := s.provider.DB()
	if handle == nil {
		return nil, fmt.Errorf("no direct database connection available")
	}
	return handle, nil
}

// SaveExtraction inserts the audit row for one successful extraction,
// pending human review.
func (s *Store) SaveExtraction(ctx context.Context, res *domain.ExtractionResult, sourceType domain.SourceType, episodeID string) error {
	handle, err := s.db()
	if err != nil {
		return err
	}

	fields, err := json.Marshal(res.ExtractedFields)
	if err != nil {
		return fmt.Errorf("encode extracted fields: %w", err)
	}
	scores, err := json.Marshal(res.ConfidenceScores)
	if err != nil {
		return fmt.Errorf("encode confidence scores: %w", err)
	}
	valErrs, err := json.Marshal(res.ValidationErrors)
	if err != nil {
		return fmt.Errorf("encode validation errors: %w", err)
	}

	_, err = handle.ExecContext(ctx, `
		INSERT INTO content_extractions
			(id, episode_id, source_type, extracted_fields, confidence_scores,
			 quality_score, processing_time_ms, cost_usd, validation_errors,
			 source_language, review_status, created_at)
		VALUES ($1, NULLIF($2,''), $3, $4, $5, $6, $7, $8, $9, NULLIF($10,''), $11, now())
		ON CONFLICT (id) DO UPDATE SET
			extracted_fields = EXCLUDED.extracted_fields,
			confidence_scores = EXCLUDED.confidence_scores,
			quality_score = EXCLUDED.quality_score,
			validation_errors = EXCLUDED.validation_errors,
			review_status = EXCLUDED.review_status`,
		res.ExtractionID, episodeID, string(sourceType), fields, scores,
		res.QualityScore, res.ProcessingTime, res.CostUSD, valErrs,
		res.SourceLanguage, string(domain.ReviewPending))
	if err != nil {
		return fmt.Errorf("save extraction %s: %w", res.ExtractionID, err)
	}
	return nil
}

// GetExtraction loads one extraction audit row.
func (s *Store) GetExtraction(ctx context.Context, extractionID string) (*domain.ExtractionResult, error) {
	handle, err := s.db()
	if err != nil {
		return nil, err
	}

	var (
		res        domain.ExtractionResult
		fields     []byte
		scores     []byte
		valErrs    []byte
		sourceLang sql.NullString
		status     string
	)
	err = handle.QueryRowContext(ctx, `
		SELECT id, extracted_fields, confidence_scores, quality_score,
		       processing_time_ms, cost_usd, validation_errors,
		       source_language, review_status, created_at
		FROM content_extractions WHERE id = $1`, extractionID).
		Scan(&res.ExtractionID, &fields, &scores, &res.QualityScore,
			&res.ProcessingTime, &res.CostUSD, &valErrs,
			&sourceLang, &status, &res.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("extraction %s: %w", extractionID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get extraction %s: %w", extractionID, err)
	}

	if err := json.Unmarshal(fields, &res.ExtractedFields); err != nil {
		return nil, fmt.Errorf("decode extracted fields: %w", err)
	}
	if err := json.Unmarshal(scores, &res.ConfidenceScores); err != nil {
		return nil, fmt.Errorf("decode confidence scores: %w", err)
	}
	if err := json.Unmarshal(valErrs, &res.ValidationErrors); err != nil {
		return nil, fmt.Errorf("decode validation errors: %w", err)
	}
	res.SourceLanguage = sourceLang.String
	res.ReviewStatus = domain.ReviewStatus(status)

	return &res, nil
}

// SetExtractionStatus updates the review status and stamps reviewed_at.
func (s *Store) SetExtractionStatus(ctx context.Context, extractionID string, status domain.ReviewStatus) error {
	handle, err := s.db()
	if err != nil {
		return err
	}

	result, err := handle.ExecContext(ctx, `
		UPDATE content_extractions
		SET review_status = $2, reviewed_at = now()
		WHERE id = $1`, extractionID, string(status))
	if err != nil {
		return fmt.Errorf("set extraction %s status: %w", extractionID, err)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("extraction %s: %w", extractionID, ErrNotFound)
	}
	return nil
}

// UpsertTranslation writes one language's translation keyed on
// (extraction_id, language_code).
func (s *Store) UpsertTranslation(ctx context.Context, extractionID string, tr *domain.TranslationResult) error {
	handle, err := s.db()
	if err != nil {
		return err
	}

	fields, err := json.Marshal(tr.TranslatedFields)
	if err != nil {
		return fmt.Errorf("encode translated fields: %w", err)
	}
	scores, err := json.Marshal(tr.ConfidenceScores)
	if err != nil {
		return fmt.Errorf("encode confidence scores: %w", err)
	}
	valErrs, err := json.Marshal(tr.ValidationErrors)
	if err != nil {
		return fmt.Errorf("encode validation errors: %w", err)
	}

	_, err = handle.ExecContext(ctx, `
		INSERT INTO extraction_translations
			(extraction_id, language_code, translated_fields, confidence_scores,
			 translation_status, quality_score, processing_time_ms,
			 translation_cost_usd, validation_errors, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, now())
		ON CONFLICT (extraction_id, language_code) DO UPDATE SET
			translated_fields = EXCLUDED.translated_fields,
			confidence_scores = EXCLUDED.confidence_scores,
			translation_status = EXCLUDED.translation_status,
			quality_score = EXCLUDED.quality_score,
			processing_time_ms = EXCLUDED.processing_time_ms,
			translation_cost_usd = EXCLUDED.translation_cost_usd,
			validation_errors = EXCLUDED.validation_errors`,
		extractionID, tr.LanguageCode, fields, scores,
		string(tr.TranslationStatus), tr.QualityScore, tr.ProcessingTimeMs,
		tr.TranslationCostUSD, valErrs)
	if err != nil {
		return fmt.Errorf("upsert translation %s/%s: %w", extractionID, tr.LanguageCode, err)
	}
	return nil
}

// UpsertEpisodeTranslation publishes one completed language into the
// per-episode translation table, keyed on (episode_id, language_code).
func (s *Store) UpsertEpisodeTranslation(ctx context.Context, episodeID string, tr *domain.TranslationResult) error {
	handle, err := s.db()
	if err != nil {
		return err
	}

	title := tr.TranslatedFields[domain.FieldTitle].Text
	summary := tr.TranslatedFields[domain.FieldSummary].Text
	description := tr.TranslatedFields[domain.FieldDescription].Text
	contentText := tr.TranslatedFields[domain.FieldContent].Text

	_, err = handle.ExecContext(ctx, `
		INSERT INTO episode_translations
			(episode_id, language_code, title, summary, description, content, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, now())
		ON CONFLICT (episode_id, language_code) DO UPDATE SET
			title = EXCLUDED.title,
			summary = EXCLUDED.summary,
			description = EXCLUDED.description,
			content = EXCLUDED.content,
			updated_at = now()`,
		episodeID, tr.LanguageCode, title, summary, description, contentText)
	if err != nil {
		return fmt.Errorf("upsert episode translation %s/%s: %w", episodeID, tr.LanguageCode, err)
	}
	return nil
}

// UpdateEpisodeContent copies approved extraction fields onto the canonical
// episode record.
func (s *Store) UpdateEpisodeContent(ctx context.Context, episodeID, title, summary, description, contentText string) error {
	handle, err := s.db()
	if err != nil {
		return err
	}

	result, err := handle.ExecContext(ctx, `
		UPDATE episodes
		SET title = COALESCE(NULLIF($2,''), title),
		    summary = COALESCE(NULLIF($3,''), summary),
		    description = COALESCE(NULLIF($4,''), description),
		    content = COALESCE(NULLIF($5,''), content),
		    updated_at = now()
		WHERE id = $1`,
		episodeID, title, summary, description, contentText)
	if err != nil {
		return fmt.Errorf("update episode %s: %w", episodeID, err)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("episode %s: %w", episodeID, ErrNotFound)
	}
	return nil
}

// SaveEpisode upserts an episode imported from a podcast feed, keyed on its
// audio URL so re-imports do not duplicate rows.
func (s *Store) SaveEpisode(ctx context.Context, ep *domain.Episode) error {
	handle, err := s.db()
	if err != nil {
		return err
	}

	var publishedAt any
	if !ep.PublishedAt.IsZero() {
		publishedAt = ep.PublishedAt
	}

	_, err = handle.ExecContext(ctx, `
		INSERT INTO episodes (id, title, summary, description, content, audio_url, published_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, now())
		ON CONFLICT (audio_url) DO UPDATE SET
			title = EXCLUDED.title,
			summary = EXCLUDED.summary,
			description = EXCLUDED.description,
			published_at = EXCLUDED.published_at,
			updated_at = now()`,
		ep.ID, ep.Title, ep.Summary, ep.Description, ep.Content, ep.AudioURL, publishedAt)
	if err != nil {
		return fmt.Errorf("save episode %q: %w", ep.Title, err)
	}
	return nil
}

// ListLanguages loads the language reference table, default language first.
func (s *Store) ListLanguages(ctx context.Context) ([]domain.Language, error) {
	handle, err := s.db()
	if err != nil {
		return nil, err
	}

	rows, err := handle.QueryContext(ctx, `
		SELECT code, name, native_name, flag_emoji, is_default
		FROM languages
		ORDER BY is_default DESC, name`)
	if err != nil {
		return nil, fmt.Errorf("list languages: %w", err)
	}
	defer rows.Close()

	var langs []domain.Language
	for rows.Next() {
		var l domain.Language
		if err := rows.Scan(&l.Code, &l.Name, &l.NativeName, &l.FlagEmoji, &l.IsDefault); err != nil {
			return nil, fmt.Errorf("scan language: %w", err)
		}
		langs = append(langs, l)
	}
	return langs, rows.Err()
}

// ListEpisodes loads recent episodes for the apply-target picker.
func (s *Store) ListEpisodes(ctx context.Context, limit int) ([]domain.Episode, error) {
	handle, err := s.db()
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 50
	}

	rows, err := handle.QueryContext(ctx, `
		SELECT id, title, COALESCE(summary,''), COALESCE(description,''),
		       COALESCE(audio_url,''), COALESCE(published_at, to_timestamp(0)), updated_at
		FROM episodes
		ORDER BY published_at DESC NULLS LAST
		LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("list episodes: %w", err)
	}
	defer rows.Close()

	var episodes []domain.Episode
	for rows.Next() {
		var ep domain.Episode
		var publishedAt, updatedAt time.Time
		if err := rows.Scan(&ep.ID, &ep.Title, &ep.Summary, &ep.Description,
			&ep.AudioURL, &publishedAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("scan episode: %w", err)
		}
		ep.PublishedAt = publishedAt
		ep.UpdatedAt = updatedAt
		episodes = append(episodes, ep)
	}
	return episodes, rows.Err()
}

// ListTemplates loads the extraction template reference table.
func (s *Store) ListTemplates(ctx context.Context) ([]domain.Template, error) {
	handle, err := s.db()
	if err != nil {
		return nil, err
	}

	rows, err := handle.QueryContext(ctx, `
		SELECT id, name, COALESCE(description,'')
		FROM extraction_templates
		ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}
	defer rows.Close()

	var templates []domain.Template
	for rows.Next() {
		var t domain.Template
		if err := rows.Scan(&t.ID, &t.Name, &t.Description); err != nil {
			return nil, fmt.Errorf("scan template: %w", err)
		}
		templates = append(templates, t)
	}
	return templates, rows.Err()
}
