package extraction

import (
	"context"
	"errors"
	"log/slog"
	"reflect"
	"sync/atomic"
	"testing"

	"podcast-studio/pkg/aiclient"
	"podcast-studio/pkg/domain"
	"podcast-studio/pkg/translation"
)

type mockEndpoint struct {
	extractFunc   func(ctx context.Context, req aiclient.ExtractRequest) (*aiclient.ExtractResponse, error)
	translateFunc func(ctx context.Context, req aiclient.TranslateRequest) (*aiclient.TranslateResponse, error)
	extractCalls  atomic.Int32
	translateReqs []aiclient.TranslateRequest
}

func (m *mockEndpoint) Extract(ctx context.Context, req aiclient.ExtractRequest) (*aiclient.ExtractResponse, error) {
	m.extractCalls.Add(1)
	if m.extractFunc != nil {
		return m.extractFunc(ctx, req)
	}
	return &aiclient.ExtractResponse{
		Success:      true,
		ExtractionID: "ext-1",
		ExtractedFields: domain.Fields{
			domain.FieldTitle: domain.StringValue("A Title"),
		},
		QualityScore:   0.9,
		SourceLanguage: "en",
	}, nil
}

func (m *mockEndpoint) Translate(ctx context.Context, req aiclient.TranslateRequest) (*aiclient.TranslateResponse, error) {
	m.translateReqs = append(m.translateReqs, req)
	if m.translateFunc != nil {
		return m.translateFunc(ctx, req)
	}
	resp := &aiclient.TranslateResponse{Success: true, Translations: map[string]*domain.TranslationResult{}}
	for _, lang := range req.TargetLanguages {
		resp.Translations[lang] = &domain.TranslationResult{
			LanguageCode:      lang,
			TranslationStatus: domain.TranslationCompleted,
		}
	}
	return resp, nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func TestExtract_EmptyContentFailsWithoutNetworkCall(t *testing.T) {
	endpoint := &mockEndpoint{}
	o := New(endpoint, nil, nil, nil, discardLogger())

	for _, source := range []string{"", "   ", "\n\t "} {
		_, err := o.Extract(context.Background(), Request{
			SourceType:    domain.SourceText,
			SourceContent: source,
			Provider:      domain.ProviderClaude,
		})
		if !errors.Is(err, ErrNoContentProvided) {
			t.Errorf("source %q: expected ErrNoContentProvided, got %v", source, err)
		}
	}

	if endpoint.extractCalls.Load() != 0 {
		t.Errorf("expected no network calls, got %d", endpoint.extractCalls.Load())
	}
}

func TestExtract_EmptyFileFailsWithoutNetworkCall(t *testing.T) {
	endpoint := &mockEndpoint{}
	o := New(endpoint, nil, nil, nil, discardLogger())

	_, err := o.Extract(context.Background(), Request{
		SourceType: domain.SourceFile,
		SourceName: "notes.txt",
		Provider:   domain.ProviderClaude,
	})
	if !errors.Is(err, ErrNoContentProvided) {
		t.Errorf("expected ErrNoContentProvided, got %v", err)
	}
	if endpoint.extractCalls.Load() != 0 {
		t.Errorf("expected no network calls, got %d", endpoint.extractCalls.Load())
	}
}

func TestExtract_UnsupportedProvider(t *testing.T) {
	endpoint := &mockEndpoint{}
	o := New(endpoint, nil, nil, nil, discardLogger())

	_, err := o.Extract(context.Background(), Request{
		SourceType:    domain.SourceText,
		SourceContent: "content",
		Provider:      "gemini",
	})
	if err == nil {
		t.Fatal("expected error for unsupported provider")
	}
	if endpoint.extractCalls.Load() != 0 {
		t.Error("expected no network call for unsupported provider")
	}
}

func TestExtract_StagedProgressOrder(t *testing.T) {
	endpoint := &mockEndpoint{}
	o := New(endpoint, nil, nil, nil, discardLogger())

	var stages []int
	_, err := o.Extract(context.Background(), Request{
		SourceType:    domain.SourceText,
		SourceContent: "content",
		Provider:      domain.ProviderClaude,
		Progress:      func(stage Stage) { stages = append(stages, stage.Percent) },
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []int{0, 20, 40, 80, 100}
	if !reflect.DeepEqual(stages, want) {
		t.Errorf("expected stages %v, got %v", want, stages)
	}
}

func TestExtract_ServerErrorMessageSurfacedVerbatim(t *testing.T) {
	endpoint := &mockEndpoint{
		extractFunc: func(ctx context.Context, req aiclient.ExtractRequest) (*aiclient.ExtractResponse, error) {
			return nil, &aiclient.APIError{Op: aiclient.OpExtraction, Message: "rate limited"}
		},
	}
	o := New(endpoint, nil, nil, nil, discardLogger())

	_, err := o.Extract(context.Background(), Request{
		SourceType:    domain.SourceText,
		SourceContent: "content",
		Provider:      domain.ProviderOpenAI,
	})

	apiErr, ok := aiclient.IsAPIError(err)
	if !ok {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.Error() != "rate limited" {
		t.Errorf("expected exact message 'rate limited', got %q", apiErr.Error())
	}
}

func TestExtract_AutoFanoutExcludesSourceLanguage(t *testing.T) {
	endpoint := &mockEndpoint{}
	translator := translation.New(endpoint, nil, nil, discardLogger(), translation.Config{WorkerCount: 1})
	o := New(endpoint, nil, nil, translator, discardLogger())

	outcome, err := o.Extract(context.Background(), Request{
		SourceType:        domain.SourceText,
		SourceContent:     "content",
		Provider:          domain.ProviderClaude,
		Multilingual:      true,
		SelectedLanguages: []string{"en", "fr", "de"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if outcome.Translations == nil {
		t.Fatal("expected automatic fan-out results")
	}

	var requested []string
	for _, req := range endpoint.translateReqs {
		requested = append(requested, req.TargetLanguages...)
	}
	sortStrings(requested)
	want := []string{"de", "fr"}
	if !reflect.DeepEqual(requested, want) {
		t.Errorf("expected fan-out to %v (source excluded), got %v", want, requested)
	}

	if _, ok := outcome.Translations.Translations["en"]; ok {
		t.Error("source language must not appear in fan-out results")
	}
}

func TestExtract_NoFanoutWhenMultilingualOff(t *testing.T) {
	endpoint := &mockEndpoint{}
	translator := translation.New(endpoint, nil, nil, discardLogger(), translation.Config{WorkerCount: 1})
	o := New(endpoint, nil, nil, translator, discardLogger())

	outcome, err := o.Extract(context.Background(), Request{
		SourceType:        domain.SourceText,
		SourceContent:     "content",
		Provider:          domain.ProviderClaude,
		SelectedLanguages: []string{"fr", "de"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if outcome.Translations != nil {
		t.Error("expected no fan-out when multilingual is off")
	}
	if len(endpoint.translateReqs) != 0 {
		t.Errorf("expected no translate calls, got %d", len(endpoint.translateReqs))
	}
}

func TestExtract_GeneratesExtractionIDWhenMissing(t *testing.T) {
	endpoint := &mockEndpoint{
		extractFunc: func(ctx context.Context, req aiclient.ExtractRequest) (*aiclient.ExtractResponse, error) {
			return &aiclient.ExtractResponse{Success: true}, nil
		},
	}
	o := New(endpoint, nil, nil, nil, discardLogger())

	outcome, err := o.Extract(context.Background(), Request{
		SourceType:    domain.SourceText,
		SourceContent: "content",
		Provider:      domain.ProviderClaude,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if outcome.Extraction.ExtractionID == "" {
		t.Error("expected generated extraction id")
	}
	if outcome.Extraction.ReviewStatus != domain.ReviewPending {
		t.Errorf("expected pending_review status, got %q", outcome.Extraction.ReviewStatus)
	}
}

func sortStrings(s []string) {
	for i := 1; i < len(s); i++ {
		for j := i; j > 0 && s[j] < s[j-1]; j-- {
			s[j], s[j-1] = s[j-1], s[j]
		}
	}
}
