// Package extractor turns uploaded or fetched documents into plain text for seeding.
package extractor

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"mime"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/gabriel-vasile/mimetype"
	"github.com/ledongthuc/pdf"
)

// ErrUnsupportedType is returned for content the extractor cannot read.
var ErrUnsupportedType = errors.New("unsupported document type")

// Extract returns the plain text of data. mimeType may be empty, in which case it is
// sniffed from the content. Parameters such as "; charset=utf-8" are ignored.
func Extract(data []byte, mimeType string) (string, error) {
	mt := normalize(mimeType)
	if mt == "" || mt == "application/octet-stream" {
		mt = normalize(mimetype.Detect(data).String())
	}

	switch {
	case mt == "text/html" || mt == "application/xhtml+xml":
		return FromHTML(string(data))
	case mt == "application/pdf":
		return FromPDF(data)
	case strings.HasPrefix(mt, "text/"):
		return string(data), nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedType, mt)
	}
}

// TypeByName guesses a MIME type from a file or object name, for stores that do not keep one.
func TypeByName(name string) string {
	i := strings.LastIndex(name, ".")
	if i < 0 {
		return ""
	}
	switch ext := strings.ToLower(name[i:]); ext {
	case ".md", ".markdown":
		return "text/markdown"
	case ".txt":
		return "text/plain"
	default:
		return mime.TypeByExtension(ext)
	}
}

// FromHTML converts HTML to markdown, which keeps headings and lists readable as text.
func FromHTML(html string) (string, error) {
	md, err := htmltomarkdown.ConvertString(html)
	if err != nil {
		return "", fmt.Errorf("converting html: %w", err)
	}
	return md, nil
}

// FromPDF extracts the text layer of a PDF.
func FromPDF(data []byte) (string, error) {
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("opening pdf: %w", err)
	}
	plain, err := r.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("reading pdf text: %w", err)
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, plain); err != nil {
		return "", fmt.Errorf("reading pdf text: %w", err)
	}
	return buf.String(), nil
}

func normalize(mimeType string) string {
	if mimeType == "" {
		return ""
	}
	mt, _, err := mime.ParseMediaType(mimeType)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(mimeType))
	}
	return mt
}
