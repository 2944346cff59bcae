// Package aiclient talks to the serverless extraction and translation
// endpoints over bearer-authenticated HTTP.
package aiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"podcast-studio/pkg/domain"
	"podcast-studio/pkg/httpclient"
)

const defaultTimeout = 120 * time.Second

// Config holds the endpoint location and credentials. The bearer token and
// base URL come from service configuration, not ambient globals.
type Config struct {
	BaseURL string
	Token   string
	Timeout time.Duration
}

// Client issues extraction and translation calls against the serverless
// endpoints.
type Client struct {
	baseURL string
	token   string
	httpc   *httpclient.HTTPClient
}

// New creates a client for the given endpoint configuration.
func New(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL: cfg.BaseURL,
		token:   cfg.Token,
		httpc:   httpclient.NewBearerClient(cfg.Token, timeout),
	}
}

// ExtractRequest is the extraction endpoint request body.
type ExtractRequest struct {
	SourceType        domain.SourceType        `json:"source_type"`
	SourceName        string                   `json:"source_name,omitempty"`
	SourceContent     string                   `json:"source_content"`
	TemplateID        string                   `json:"template_id,omitempty"`
	EpisodeID         string                   `json:"episode_id,omitempty"`
	AIProvider        domain.Provider          `json:"ai_provider"`
	ProcessingOptions domain.ProcessingOptions `json:"processing_options"`
}

// ExtractResponse is the extraction endpoint response body.
type ExtractResponse struct {
	Success          bool                 `json:"success"`
	ExtractionID     string               `json:"extraction_id"`
	ExtractedFields  domain.Fields        `json:"extracted_fields"`
	ConfidenceScores map[string]float64   `json:"confidence_scores"`
	QualityScore     float64              `json:"quality_score"`
	ProcessingTime   int64                `json:"processing_time"`
	CostUSD          float64              `json:"cost_usd"`
	ValidationErrors []string             `json:"validation_errors"`
	SourceLanguage   string               `json:"source_language,omitempty"`
	Error            string               `json:"error,omitempty"`
}

// TranslateRequest is the translation endpoint request body. The fan-out
// orchestrator issues one request per target language, so TargetLanguages
// usually holds a single code.
type TranslateRequest struct {
	ExtractionID      string                   `json:"extraction_id"`
	TargetLanguages   []string                 `json:"target_languages"`
	SourceLanguage    string                   `json:"source_language,omitempty"`
	AIProvider        domain.Provider          `json:"ai_provider"`
	ProcessingOptions domain.ProcessingOptions `json:"processing_options"`
}

// TranslateResponse is the translation endpoint response body.
type TranslateResponse struct {
	Success      bool                                 `json:"success"`
	Translations map[string]*domain.TranslationResult `json:"translations"`
	TotalCost    float64                              `json:"total_cost"`
	Error        string                               `json:"error,omitempty"`
}

// Extract runs one extraction call. The server-provided error message is
// passed through verbatim on failure.
func (c *Client) Extract(ctx context.Context, req ExtractRequest) (*ExtractResponse, error) {
	if c.token == "" {
		return nil, ErrAuthenticationRequired
	}

	var resp ExtractResponse
	if err := c.post(ctx, "/functions/v1/extract-content", req, &resp); err != nil {
		return nil, err
	}
	if !resp.Success {
		return nil, &APIError{Op: OpExtraction, Message: serverMessage(resp.Error)}
	}
	return &resp, nil
}

// Translate runs one translation call for the listed target languages.
func (c *Client) Translate(ctx context.Context, req TranslateRequest) (*TranslateResponse, error) {
	if c.token == "" {
		return nil, ErrAuthenticationRequired
	}

	var resp TranslateResponse
	if err := c.post(ctx, "/functions/v1/translate-content", req, &resp); err != nil {
		return nil, err
	}
	if !resp.Success {
		return nil, &APIError{Op: OpTranslation, Message: serverMessage(resp.Error)}
	}
	return &resp, nil
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	op := OpExtraction
	if _, ok := body.(TranslateRequest); ok {
		op = OpTranslation
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal %s request: %w", op, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create %s request: %w", op, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	httpResp, err := c.httpc.Do(httpReq)
	if err != nil {
		return fmt.Errorf("%s call: %w", op, err)
	}
	defer httpResp.Body.Close()

	raw, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return fmt.Errorf("read %s response: %w", op, err)
	}

	if httpResp.StatusCode == http.StatusUnauthorized || httpResp.StatusCode == http.StatusForbidden {
		return ErrAuthenticationRequired
	}
	if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
		return &APIError{Op: op, StatusCode: httpResp.StatusCode, Message: errorMessageFrom(raw, httpResp.StatusCode)}
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode %s response: %w", op, err)
	}
	return nil
}

// errorMessageFrom pulls the server-provided message out of an error body,
// falling back to the HTTP status.
func errorMessageFrom(raw []byte, statusCode int) string {
	var body struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(raw, &body); err == nil && body.Error != "" {
		return body.Error
	}
	return fmt.Sprintf("HTTP %d", statusCode)
}

func serverMessage(msg string) string {
	if msg == "" {
		return "request failed"
	}
	return msg
}
