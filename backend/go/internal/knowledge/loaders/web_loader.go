package loaders

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"Concierge/backend/go/internal/knowledge/extractor"
	"Concierge/backend/go/internal/models"
)

// maxPageBytes caps how much of a response body is read.
const maxPageBytes = 10 << 20

// Doer is satisfied by *http.Client and the breaker-wrapped pkg/http.Client.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// WebLoader fetches a URL and extracts its text based on the response Content-Type.
type WebLoader struct {
	client Doer
}

// NewWebLoader uses http.DefaultClient when client is nil.
func NewWebLoader(client Doer) *WebLoader {
	if client == nil {
		client = http.DefaultClient
	}
	return &WebLoader{client: client}
}

func (l *WebLoader) Load(ctx context.Context, url string) ([]models.SourceDocument, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := l.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetching %s: unexpected status %d", url, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPageBytes))
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", url, err)
	}
	text, err := extractor.Extract(body, resp.Header.Get("Content-Type"))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", url, err)
	}
	return []models.SourceDocument{{Source: url, Text: text}}, nil
}
