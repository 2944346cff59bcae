// Package extraction turns raw content (pasted text, uploaded file, or URL)
// into structured fields via the serverless extraction endpoint.
package extraction

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"podcast-studio/pkg/aiclient"
	"podcast-studio/pkg/content"
	"podcast-studio/pkg/domain"
	"podcast-studio/pkg/translation"
)

// ErrNoContentProvided is the local precondition failure for empty or
// whitespace-only source content. It never reaches the network.
var ErrNoContentProvided = errors.New("no content provided")

// Stage is one step of the staged progress indicator. The percentages are
// fixed checkpoints advanced around the awaited endpoint call, not true
// incremental progress from the server.
type Stage struct {
	Percent int    `json:"percent"`
	Label   string `json:"label"`
}

var (
	StagePreparing  = Stage{0, "preparing"}
	StageReading    = Stage{20, "reading"}
	StageAnalyzing  = Stage{40, "analyzing"}
	StageProcessing = Stage{80, "processing results"}
	StageComplete   = Stage{100, "complete"}
)

// ProgressFunc observes stage transitions. May be nil.
type ProgressFunc func(stage Stage)

// Endpoint is the slice of the AI client the orchestrator needs.
type Endpoint interface {
	Extract(ctx context.Context, req aiclient.ExtractRequest) (*aiclient.ExtractResponse, error)
}

// Saver records the extraction audit row. The write is an upsert so it is
// idempotent against the endpoint's own bookkeeping.
type Saver interface {
	SaveExtraction(ctx context.Context, res *domain.ExtractionResult, sourceType domain.SourceType, episodeID string) error
}

// Request describes one extraction.
type Request struct {
	SourceType    domain.SourceType
	SourceName    string
	SourceContent string // pasted text or source URL
	FileData      []byte // uploaded file bytes, for SourceFile
	TemplateID    string
	EpisodeID     string
	Provider      domain.Provider
	Options       domain.ProcessingOptions

	// Multilingual triggers the automatic translation fan-out after a
	// successful extraction, into every selected language that differs from
	// the source language.
	Multilingual      bool
	SelectedLanguages []string

	Progress ProgressFunc
}

// Outcome bundles the extraction result with the optional automatic fan-out
// result.
type Outcome struct {
	Extraction   *domain.ExtractionResult
	Translations *translation.Result
}

// Orchestrator runs the extraction workflow: resolve the source to text,
// call the endpoint, persist the audit row, and optionally fan out
// translations.
type Orchestrator struct {
	endpoint   Endpoint
	saver      Saver
	preparer   *content.Preparer
	translator *translation.Orchestrator
	logger     *slog.Logger
}

// New creates an extraction orchestrator. saver and translator may be nil to
// skip persistence and the automatic fan-out respectively.
func New(endpoint Endpoint, saver Saver, preparer *content.Preparer, translator *translation.Orchestrator, logger *slog.Logger) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{
		endpoint:   endpoint,
		saver:      saver,
		preparer:   preparer,
		translator: translator,
		logger:     logger,
	}
}

// Extract runs one extraction. Empty source content fails with
// ErrNoContentProvided before any network call is made.
func (o *Orchestrator) Extract(ctx context.Context, req Request) (*Outcome, error) {
	progress := req.Progress
	if progress == nil {
		progress = func(Stage) {}
	}
	progress(StagePreparing)

	if !req.Provider.Valid() {
		return nil, fmt.Errorf("unsupported ai provider: %q", req.Provider)
	}

	progress(StageReading)
	text, err := o.resolveSource(ctx, req)
	if err != nil {
		return nil, err
	}

	progress(StageAnalyzing)
	start := time.Now()
	resp, err := o.endpoint.Extract(ctx, aiclient.ExtractRequest{
		SourceType:        req.SourceType,
		SourceName:        req.SourceName,
		SourceContent:     text,
		TemplateID:        req.TemplateID,
		EpisodeID:         req.EpisodeID,
		AIProvider:        req.Provider,
		ProcessingOptions: req.Options,
	})
	if err != nil {
		return nil, err
	}

	progress(StageProcessing)
	result := &domain.ExtractionResult{
		ExtractionID:     resp.ExtractionID,
		ExtractedFields:  resp.ExtractedFields,
		ConfidenceScores: resp.ConfidenceScores,
		QualityScore:     resp.QualityScore,
		ProcessingTime:   resp.ProcessingTime,
		CostUSD:          resp.CostUSD,
		ValidationErrors: resp.ValidationErrors,
		SourceLanguage:   domain.NormalizeLanguageCode(resp.SourceLanguage),
		ReviewStatus:     domain.ReviewPending,
		CreatedAt:        time.Now(),
	}
	if result.ExtractionID == "" {
		result.ExtractionID = uuid.NewString()
	}
	if result.ProcessingTime == 0 {
		result.ProcessingTime = time.Since(start).Milliseconds()
	}

	if o.saver != nil {
		if err := o.saver.SaveExtraction(ctx, result, req.SourceType, req.EpisodeID); err != nil {
			o.logger.Warn("persist extraction failed",
				"extraction_id", result.ExtractionID, "error", err)
		}
	}

	outcome := &Outcome{Extraction: result}

	if fanout := o.autoFanout(req, result); fanout != nil {
		translations, err := o.translator.Translate(ctx, *fanout)
		if err != nil {
			// Extraction already succeeded; report the follow-on failure
			// without discarding the extraction.
			o.logger.Warn("automatic translation fan-out failed",
				"extraction_id", result.ExtractionID, "error", err)
		} else {
			outcome.Translations = translations
		}
	}

	progress(StageComplete)

	o.logger.Info("extraction complete",
		"extraction_id", result.ExtractionID,
		"source_type", req.SourceType,
		"provider", req.Provider,
		"quality", domain.FormatQualityPercent(result.QualityScore),
		"cost", domain.FormatCostUSD(result.CostUSD))

	return outcome, nil
}

// autoFanout builds the follow-on translation request, or nil when the
// multilingual mode is off or no target differs from the source language.
func (o *Orchestrator) autoFanout(req Request, result *domain.ExtractionResult) *translation.Request {
	if o.translator == nil || !req.Multilingual {
		return nil
	}

	targets := domain.ExcludeSource(req.SelectedLanguages, result.SourceLanguage)
	if len(targets) == 0 {
		return nil
	}

	return &translation.Request{
		ExtractionID:    result.ExtractionID,
		TargetLanguages: targets,
		SourceLanguage:  result.SourceLanguage,
		Provider:        req.Provider,
		Options:         req.Options,
	}
}

// resolveSource turns the request's source into plain text.
func (o *Orchestrator) resolveSource(ctx context.Context, req Request) (string, error) {
	var text string
	var err error

	switch req.SourceType {
	case domain.SourceText:
		text, err = content.PrepareText(req.SourceContent)
	case domain.SourceFile:
		if len(req.FileData) == 0 {
			return "", ErrNoContentProvided
		}
		text, err = content.PrepareFile(req.SourceName, req.FileData)
	case domain.SourceURL:
		if o.preparer == nil {
			return "", fmt.Errorf("url sources are not configured")
		}
		text, err = o.preparer.PrepareURL(ctx, req.SourceContent)
	default:
		return "", fmt.Errorf("unsupported source type: %q", req.SourceType)
	}

	if errors.Is(err, content.ErrNoContent) {
		return "", ErrNoContentProvided
	}
	return text, err
}
