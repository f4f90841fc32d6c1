// Package loaders fetch reference documents from local files, web pages and object storage.
package loaders

import (
	"context"

	"Concierge/backend/go/internal/models"
)

// Loader produces source documents from a location such as a path, URL or object prefix.
type Loader interface {
	Load(ctx context.Context, location string) ([]models.SourceDocument, error)
}
