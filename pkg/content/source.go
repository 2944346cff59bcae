// Package content resolves extraction sources (pasted text, uploaded files,
// URLs) to plain text suitable for the extraction endpoint.
package content

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"podcast-studio/pkg/httpclient"
)

// MaxTextLength caps pasted/prepared text at 50,000 characters.
const MaxTextLength = 50000

var (
	// ErrNoContent means the source resolved to empty or whitespace-only text.
	ErrNoContent = errors.New("no content provided")

	// ErrContentTooLong means the prepared text exceeds MaxTextLength.
	ErrContentTooLong = fmt.Errorf("source content exceeds %d characters", MaxTextLength)

	// ErrUnsupportedFileType means the uploaded file extension is not in the
	// accepted set. This is an input filter, not a security boundary.
	ErrUnsupportedFileType = errors.New("unsupported file type")
)

// acceptedExtensions are the upload types the workflow accepts.
var acceptedExtensions = map[string]bool{
	".txt":  true,
	".md":   true,
	".pdf":  true,
	".docx": true,
}

// AcceptsFile reports whether the named file has an accepted extension.
func AcceptsFile(name string) bool {
	return acceptedExtensions[strings.ToLower(filepath.Ext(name))]
}

// Preparer resolves raw sources to plain text.
type Preparer struct {
	fetcher *httpclient.HTTPClient
}

// NewPreparer creates a Preparer that fetches URL sources with the given
// client profile.
func NewPreparer(clientType httpclient.ClientType) *Preparer {
	return &Preparer{fetcher: httpclient.NewClient(clientType)}
}

// PrepareText validates and returns pasted text. The length limit counts
// characters, not bytes.
func PrepareText(text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", ErrNoContent
	}
	if utf8.RuneCountInString(text) > MaxTextLength {
		return "", ErrContentTooLong
	}
	return text, nil
}

// PrepareFile extracts plain text from an uploaded file based on its
// extension, then applies the same emptiness and length checks as text.
func PrepareFile(name string, data []byte) (string, error) {
	ext := strings.ToLower(filepath.Ext(name))
	if !acceptedExtensions[ext] {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFileType, ext)
	}

	var text string
	var err error
	switch ext {
	case ".pdf":
		text, err = ExtractTextFromPDF(data)
	case ".docx":
		text, err = ExtractTextFromDocx(data)
	default: // .txt, .md
		text = string(data)
	}
	if err != nil {
		return "", fmt.Errorf("extract text from %s: %w", name, err)
	}

	return PrepareText(text)
}

// PrepareURL fetches a page and extracts its readable text, prefixed with the
// extracted title when one is found.
func (p *Preparer) PrepareURL(ctx context.Context, pageURL string) (string, error) {
	if strings.TrimSpace(pageURL) == "" {
		return "", ErrNoContent
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", fmt.Errorf("create request for %s: %w", pageURL, err)
	}

	resp, err := p.fetcher.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch %s: %w", pageURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetch %s: unexpected status code: %d", pageURL, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", pageURL, err)
	}

	text, err := ExtractText(string(body))
	if err != nil {
		return "", err
	}

	if title, err := ExtractTitle(string(body)); err == nil && title != "" {
		text = title + "\n\n" + text
	}

	// Fetched pages can run long; truncate on a rune boundary instead of
	// rejecting.
	if runes := []rune(text); len(runes) > MaxTextLength {
		text = string(runes[:MaxTextLength])
	}

	return PrepareText(text)
}
