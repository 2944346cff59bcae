// Package translation fans one extraction out into per-language translation
// tasks and joins the results.
package translation

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"podcast-studio/pkg/aiclient"
	"podcast-studio/pkg/domain"
)

// Endpoint is the slice of the AI client the fan-out needs.
type Endpoint interface {
	Translate(ctx context.Context, req aiclient.TranslateRequest) (*aiclient.TranslateResponse, error)
}

// Saver persists per-language results as they complete.
type Saver interface {
	UpsertTranslation(ctx context.Context, extractionID string, tr *domain.TranslationResult) error
}

// Validator checks that translated text is written in the expected language.
type Validator interface {
	Check(text, targetLang string) error
}

// Config tunes the fan-out pool.
type Config struct {
	// WorkerCount bounds how many language tasks run at once.
	WorkerCount int

	// RetryCount is how many additional attempts a failed language gets.
	RetryCount int

	// Timeout bounds one language's attempt. Zero means no per-task timeout.
	Timeout time.Duration
}

// Request describes one fan-out: translate extraction ExtractionID into
// every listed target language.
type Request struct {
	ExtractionID    string
	TargetLanguages []string
	SourceLanguage  string
	Provider        domain.Provider
	Options         domain.ProcessingOptions
}

// Result is the joined outcome of a fan-out. Every requested language gets
// an entry; a language whose every attempt failed carries a failed
// TranslationResult rather than being dropped.
type Result struct {
	Translations map[string]*domain.TranslationResult
	TotalCost    float64
	Completed    int
	Failed       int
}

// Orchestrator dispatches per-language translation tasks through a bounded
// worker pool. Each language is an independent task with its own retries;
// one language failing never discards the others.
type Orchestrator struct {
	endpoint  Endpoint
	saver     Saver
	validator Validator
	logger    *slog.Logger
	cfg       Config
}

// New creates a fan-out orchestrator. saver and validator may be nil to skip
// persistence and language validation respectively.
func New(endpoint Endpoint, saver Saver, validator Validator, logger *slog.Logger, cfg Config) *Orchestrator {
	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = 4
	}
	if cfg.RetryCount < 0 {
		cfg.RetryCount = 0
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{
		endpoint:  endpoint,
		saver:     saver,
		validator: validator,
		logger:    logger,
		cfg:       cfg,
	}
}

// Translate runs the fan-out. An empty target list or extraction id is a
// no-op: it returns (nil, nil) without issuing any network call.
func (o *Orchestrator) Translate(ctx context.Context, req Request) (*Result, error) {
	if req.ExtractionID == "" || len(req.TargetLanguages) == 0 {
		return nil, nil
	}
	if !req.Provider.Valid() {
		return nil, errors.New("unsupported ai provider: " + string(req.Provider))
	}

	targets := dedupe(req.TargetLanguages)

	jobChan := make(chan string, len(targets))
	for _, lang := range targets {
		jobChan <- lang
	}
	close(jobChan)

	type taskResult struct {
		lang string
		res  *domain.TranslationResult
	}
	resultsChan := make(chan taskResult, len(targets))

	workers := o.cfg.WorkerCount
	if workers > len(targets) {
		workers = len(targets)
	}

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for lang := range jobChan {
				resultsChan <- taskResult{lang: lang, res: o.translateOne(ctx, req, lang)}
			}
		}()
	}

	go func() {
		wg.Wait()
		close(resultsChan)
	}()

	out := &Result{Translations: make(map[string]*domain.TranslationResult, len(targets))}
	for tr := range resultsChan {
		out.Translations[tr.lang] = tr.res
		out.TotalCost += tr.res.TranslationCostUSD
		if tr.res.TranslationStatus == domain.TranslationFailed {
			out.Failed++
		} else {
			out.Completed++
		}
	}

	o.logger.Info("translation fan-out finished",
		"extraction_id", req.ExtractionID,
		"languages", len(targets),
		"completed", out.Completed,
		"failed", out.Failed,
		"total_cost_usd", out.TotalCost)

	return out, nil
}

// translateOne runs one language task with retries. It always returns a
// result; failures are encoded in the result's status and validation errors.
func (o *Orchestrator) translateOne(ctx context.Context, req Request, lang string) *domain.TranslationResult {
	var lastErr error

	for attempt := 0; attempt <= o.cfg.RetryCount; attempt++ {
		if ctx.Err() != nil {
			lastErr = ctx.Err()
			break
		}

		res, err := o.attempt(ctx, req, lang)
		if err == nil {
			return res
		}
		lastErr = err

		// Credentials will not appear between attempts.
		if errors.Is(err, aiclient.ErrAuthenticationRequired) {
			break
		}

		o.logger.Warn("translation attempt failed",
			"extraction_id", req.ExtractionID,
			"language", lang,
			"attempt", attempt+1,
			"error", err)
	}

	return &domain.TranslationResult{
		LanguageCode:      lang,
		TranslationStatus: domain.TranslationFailed,
		ValidationErrors:  []string{lastErr.Error()},
		CreatedAt:         time.Now(),
	}
}

func (o *Orchestrator) attempt(ctx context.Context, req Request, lang string) (*domain.TranslationResult, error) {
	if o.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.cfg.Timeout)
		defer cancel()
	}

	start := time.Now()
	resp, err := o.endpoint.Translate(ctx, aiclient.TranslateRequest{
		ExtractionID:      req.ExtractionID,
		TargetLanguages:   []string{lang},
		SourceLanguage:    req.SourceLanguage,
		AIProvider:        req.Provider,
		ProcessingOptions: req.Options,
	})
	if err != nil {
		return nil, err
	}

	res := resp.Translations[lang]
	if res == nil {
		return nil, errors.New("endpoint returned no translation for " + lang)
	}

	res.LanguageCode = lang
	if res.TranslationStatus == "" {
		res.TranslationStatus = domain.TranslationCompleted
	}
	if res.ProcessingTimeMs == 0 {
		res.ProcessingTimeMs = time.Since(start).Milliseconds()
	}
	if res.TranslationCostUSD == 0 && resp.TotalCost > 0 {
		res.TranslationCostUSD = resp.TotalCost
	}
	if res.CreatedAt.IsZero() {
		res.CreatedAt = time.Now()
	}

	o.validate(res, lang)

	if o.saver != nil {
		if err := o.saver.UpsertTranslation(ctx, req.ExtractionID, res); err != nil {
			// The in-memory result is still good; report and keep it.
			o.logger.Warn("persist translation failed",
				"extraction_id", req.ExtractionID,
				"language", lang,
				"error", err)
		}
	}

	return res, nil
}

// validate runs the detected-language check on the translated title and
// content. A mismatch appends a validation error and downgrades the status
// to review_needed.
func (o *Orchestrator) validate(res *domain.TranslationResult, lang string) {
	if o.validator == nil {
		return
	}

	for _, field := range []string{domain.FieldTitle, domain.FieldContent} {
		v, ok := res.TranslatedFields[field]
		if !ok || v.IsList() || v.Text == "" {
			continue
		}
		if err := o.validator.Check(v.Text, lang); err != nil {
			res.ValidationErrors = append(res.ValidationErrors, field+": "+err.Error())
			if res.TranslationStatus == domain.TranslationCompleted {
				res.TranslationStatus = domain.TranslationReview
			}
		}
	}
}

func dedupe(langs []string) []string {
	seen := make(map[string]bool, len(langs))
	out := make([]string, 0, len(langs))
	for _, l := range langs {
		norm := domain.NormalizeLanguageCode(l)
		if norm == "" || seen[norm] {
			continue
		}
		seen[norm] = true
		out = append(out, norm)
	}
	return out
}
