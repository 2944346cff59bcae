package content

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"io"
	"strings"
)

var (
	errEmptyDocxContent = errors.New("docx content is empty")
	errNoDocumentXML    = errors.New("docx archive has no word/document.xml")
)

// ExtractTextFromDocx extracts plain text from .docx bytes. A docx file is a
// zip archive whose main body lives in word/document.xml; paragraphs become
// newline-separated lines.
func ExtractTextFromDocx(data []byte) (string, error) {
	if len(data) == 0 {
		return "", errEmptyDocxContent
	}

	archive, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}

	for _, file := range archive.File {
		if file.Name != "word/document.xml" {
			continue
		}
		rc, err := file.Open()
		if err != nil {
			return "", err
		}
		defer rc.Close()
		return extractDocxText(rc)
	}

	return "", errNoDocumentXML
}

// extractDocxText walks the WordprocessingML token stream collecting text
// runs (<w:t>) and paragraph boundaries (</w:p>).
func extractDocxText(r io.Reader) (string, error) {
	decoder := xml.NewDecoder(r)

	var sb strings.Builder
	var inText bool

	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local == "t" {
				inText = true
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				sb.WriteByte('\n')
			}
		case xml.CharData:
			if inText {
				sb.Write(t)
			}
		}
	}

	return strings.TrimSpace(sb.String()), nil
}
