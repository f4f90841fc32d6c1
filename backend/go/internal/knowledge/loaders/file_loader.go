package loaders

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"Concierge/backend/go/internal/knowledge/extractor"
	"Concierge/backend/go/internal/models"
)

var seedExtensions = map[string]bool{
	".md": true, ".markdown": true, ".txt": true, ".html": true, ".htm": true, ".pdf": true,
}

// FileLoader reads a single file or every supported file under a directory.
// The source tag is the path relative to the loaded root, or the base name for a single file.
type FileLoader struct{}

func NewFileLoader() *FileLoader {
	return &FileLoader{}
}

func (l *FileLoader) Load(ctx context.Context, path string) ([]models.SourceDocument, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		doc, err := readFile(path, filepath.Base(path))
		if err != nil {
			return nil, err
		}
		return []models.SourceDocument{doc}, nil
	}

	var docs []models.SourceDocument
	err = filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() || !seedExtensions[strings.ToLower(filepath.Ext(p))] {
			return nil
		}
		rel, err := filepath.Rel(path, p)
		if err != nil {
			rel = d.Name()
		}
		doc, err := readFile(p, filepath.ToSlash(rel))
		if err != nil {
			return err
		}
		docs = append(docs, doc)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", path, err)
	}
	return docs, nil
}

func readFile(path, source string) (models.SourceDocument, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return models.SourceDocument{}, err
	}
	text, err := extractor.Extract(data, extractor.TypeByName(path))
	if err != nil {
		return models.SourceDocument{}, fmt.Errorf("%s: %w", path, err)
	}
	return models.SourceDocument{Source: source, Text: text}, nil
}
