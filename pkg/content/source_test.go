package content

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"unicode/utf8"

	"podcast-studio/pkg/httpclient"
)

func TestPrepareText(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		wantErr error
	}{
		{"plain text", "hello world", nil},
		{"empty", "", ErrNoContent},
		{"whitespace only", "   \n\t  ", ErrNoContent},
		{"too long", strings.Repeat("a", MaxTextLength+1), ErrContentTooLong},
		{"exactly at limit", strings.Repeat("a", MaxTextLength), nil},
		{"limit counts characters not bytes", strings.Repeat("é", MaxTextLength), nil},
		{"one character over", strings.Repeat("é", MaxTextLength+1), ErrContentTooLong},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := PrepareText(tt.in)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != strings.TrimSpace(tt.in) {
				t.Errorf("unexpected text: %q", got)
			}
		})
	}
}

func TestAcceptsFile(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"notes.txt", true},
		{"README.md", true},
		{"transcript.PDF", true},
		{"episode.docx", true},
		{"script.exe", false},
		{"data.csv", false},
		{"noextension", false},
	}

	for _, tt := range tests {
		if got := AcceptsFile(tt.name); got != tt.want {
			t.Errorf("AcceptsFile(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestPrepareFile_TextAndMarkdown(t *testing.T) {
	got, err := PrepareFile("notes.md", []byte("# Episode notes\n\nsome content"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(got, "some content") {
		t.Errorf("unexpected text: %q", got)
	}
}

func TestPrepareFile_RejectsUnsupportedExtension(t *testing.T) {
	_, err := PrepareFile("payload.exe", []byte("x"))
	if !errors.Is(err, ErrUnsupportedFileType) {
		t.Errorf("expected ErrUnsupportedFileType, got %v", err)
	}
}

func TestPrepareFile_EmptyTextFile(t *testing.T) {
	_, err := PrepareFile("empty.txt", []byte("  \n "))
	if !errors.Is(err, ErrNoContent) {
		t.Errorf("expected ErrNoContent, got %v", err)
	}
}

func TestPrepareFile_Docx(t *testing.T) {
	data := buildDocx(t, `<?xml version="1.0"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
  <w:body>
    <w:p><w:r><w:t>First paragraph.</w:t></w:r></w:p>
    <w:p><w:r><w:t>Second </w:t></w:r><w:r><w:t>paragraph.</w:t></w:r></w:p>
  </w:body>
</w:document>`)

	got, err := PrepareFile("episode.docx", data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(got, "First paragraph.") {
		t.Errorf("missing first paragraph: %q", got)
	}
	if !strings.Contains(got, "Second paragraph.") {
		t.Errorf("expected runs joined within a paragraph: %q", got)
	}
}

func TestExtractTextFromDocx_MissingDocumentXML(t *testing.T) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	f, err := zw.Create("word/other.xml")
	if err != nil {
		t.Fatal(err)
	}
	_, _ = f.Write([]byte("<x/>"))
	_ = zw.Close()

	if _, err := ExtractTextFromDocx(buf.Bytes()); err == nil {
		t.Error("expected error for archive without word/document.xml")
	}
}

func TestPreparer_PrepareURL(t *testing.T) {
	page := `<!DOCTYPE html>
<html>
<head><title>Great Episode</title></head>
<body>
  <article>
    <h1>Great Episode</h1>
    <p>` + strings.Repeat("This is the body of the episode page. ", 30) + `</p>
  </article>
</body>
</html>`

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(page))
	}))
	defer server.Close()

	preparer := NewPreparer(httpclient.CloudflareClient)
	got, err := preparer.PrepareURL(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(got, "body of the episode page") {
		t.Errorf("expected page text, got: %q", firstN(got, 200))
	}
}

func TestPreparer_PrepareURL_TruncatesLongPagesOnRuneBoundary(t *testing.T) {
	page := `<!DOCTYPE html>
<html>
<head><title>Épisode géant</title></head>
<body>
  <article>
    <h1>Épisode géant</h1>
    <p>` + strings.Repeat("Cet épisode présente des systèmes réels déployés en production. ", 900) + `</p>
  </article>
</body>
</html>`

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(page))
	}))
	defer server.Close()

	preparer := NewPreparer(httpclient.CloudflareClient)
	got, err := preparer.PrepareURL(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n := utf8.RuneCountInString(got); n > MaxTextLength {
		t.Errorf("expected truncation to %d characters, got %d", MaxTextLength, n)
	}
	if !utf8.ValidString(got) {
		t.Error("truncation must not split a multi-byte character")
	}
}

func TestPreparer_PrepareURL_HTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	preparer := NewPreparer(httpclient.CloudflareClient)
	if _, err := preparer.PrepareURL(context.Background(), server.URL); err == nil {
		t.Error("expected error for 404 response")
	}
}

func TestPreparer_PrepareURL_Empty(t *testing.T) {
	preparer := NewPreparer(httpclient.CloudflareClient)
	if _, err := preparer.PrepareURL(context.Background(), "  "); !errors.Is(err, ErrNoContent) {
		t.Errorf("expected ErrNoContent, got %v", err)
	}
}

// buildDocx assembles a minimal docx archive around the given document XML.
func buildDocx(t *testing.T, documentXML string) []byte {
	t.Helper()

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	f, err := zw.Create("word/document.xml")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := f.Write([]byte(documentXML)); err != nil {
		t.Fatal(err)
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func firstN(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
