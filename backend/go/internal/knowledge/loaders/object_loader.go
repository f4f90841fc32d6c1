package loaders

import (
	"context"
	"fmt"
	"io"

	"Concierge/backend/go/internal/knowledge/extractor"
	"Concierge/backend/go/internal/models"

	"github.com/minio/minio-go/v7"
)

// objectSource is the slice of object storage the loader needs.
type objectSource interface {
	list(ctx context.Context, prefix string) ([]minio.ObjectInfo, error)
	read(ctx context.Context, key string) ([]byte, error)
}

// ObjectLoader reads every object under a prefix in a MinIO bucket.
// The object key is used as the source tag.
type ObjectLoader struct {
	src objectSource
}

// NewObjectLoader reads from bucket through client.
func NewObjectLoader(client *minio.Client, bucket string) *ObjectLoader {
	return &ObjectLoader{src: &minioSource{client: client, bucket: bucket}}
}

func (l *ObjectLoader) Load(ctx context.Context, prefix string) ([]models.SourceDocument, error) {
	objects, err := l.src.list(ctx, prefix)
	if err != nil {
		return nil, err
	}
	docs := make([]models.SourceDocument, 0, len(objects))
	for _, obj := range objects {
		mt := obj.ContentType
		if mt == "" {
			mt = extractor.TypeByName(obj.Key)
		}
		data, err := l.src.read(ctx, obj.Key)
		if err != nil {
			return nil, err
		}
		text, err := extractor.Extract(data, mt)
		if err != nil {
			return nil, fmt.Errorf("object %s: %w", obj.Key, err)
		}
		docs = append(docs, models.SourceDocument{Source: obj.Key, Text: text})
	}
	return docs, nil
}

type minioSource struct {
	client *minio.Client
	bucket string
}

func (s *minioSource) list(ctx context.Context, prefix string) ([]minio.ObjectInfo, error) {
	var out []minio.ObjectInfo
	for obj := range s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{Prefix: prefix, Recursive: true}) {
		if obj.Err != nil {
			return nil, fmt.Errorf("listing %s/%s: %w", s.bucket, prefix, obj.Err)
		}
		if obj.Size == 0 {
			continue
		}
		out = append(out, obj)
	}
	return out, nil
}

func (s *minioSource) read(ctx context.Context, key string) ([]byte, error) {
	obj, err := s.client.GetObject(ctx, s.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("getting %s/%s: %w", s.bucket, key, err)
	}
	defer obj.Close()
	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, fmt.Errorf("reading %s/%s: %w", s.bucket, key, err)
	}
	return data, nil
}
