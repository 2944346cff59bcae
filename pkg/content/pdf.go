package content

import (
	"bytes"
	"errors"
	"io"

	"github.com/ledongthuc/pdf"
)

var (
	errEmptyPDFContent = errors.New("pdf content is empty")
	errNilPDFDocument  = errors.New("pdf document is nil")
)

// ExtractTextFromPDF extracts plain text from PDF bytes, as produced by an
// uploaded file.
func ExtractTextFromPDF(data []byte) (string, error) {
	if len(data) == 0 {
		return "", errEmptyPDFContent
	}

	doc, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}

	return extractTextFromPDFDocument(doc)
}

// extractTextFromPDFDocument turns a pdf.Reader into a plain-text string.
func extractTextFromPDFDocument(doc *pdf.Reader) (string, error) {
	if doc == nil {
		return "", errNilPDFDocument
	}

	textReader, err := doc.GetPlainText()
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, textReader); err != nil {
		return "", err
	}

	return buf.String(), nil
}
