package pipeline

import (
	"context"
	"fmt"
	"strings"

	"Concierge/backend/go/internal/embedding"
	"Concierge/backend/go/internal/intent"
	"Concierge/backend/go/internal/models"
	"Concierge/backend/go/internal/vectorstore"
	"Concierge/backend/go/pkg/logger"
)

// RetrievalPipeline turns a user query into a block of matching knowledge text.
type RetrievalPipeline struct {
	embedder    embedding.Embedding
	vectorStore vectorstore.Store
	log         *logger.Logger
	topK        int
	minScore    float32
}

// NewRetrievalPipeline creates a new RetrievalPipeline. A nil store is allowed and
// makes every retrieval return "".
func NewRetrievalPipeline(embedder embedding.Embedding, vectorStore vectorstore.Store, log *logger.Logger, topK int, minScore float32) *RetrievalPipeline {
	return &RetrievalPipeline{
		embedder:    embedder,
		vectorStore: vectorStore,
		log:         log,
		topK:        topK,
		minScore:    minScore,
	}
}

// Filter builds the metadata filter for a knowledge query narrowed by intent.
func Filter(in intent.Intent) vectorstore.Filter {
	f := vectorstore.Filter{vectorstore.FieldType: string(models.RecordKnowledge)}
	if flag := in.Capability(); flag != "" {
		f[flag] = true
	}
	return f
}

// Retrieve returns matching chunks formatted as "[source] content" and separated by a
// blank line, in descending score order. Only matches scoring above the minimum are
// kept. It never fails: any error yields "".
func (p *RetrievalPipeline) Retrieve(ctx context.Context, query string, in intent.Intent) string {
	if p.vectorStore == nil || p.embedder == nil {
		return ""
	}
	vector, err := p.embedder.Embed(ctx, query)
	if err != nil {
		p.log.Warn(fmt.Sprintf("Knowledge retrieval skipped, embedding failed: %v", err))
		return ""
	}
	matches, err := p.vectorStore.Query(ctx, vector, p.topK, Filter(in))
	if err != nil {
		p.log.Warn(fmt.Sprintf("Knowledge retrieval skipped, query failed: %v", err))
		return ""
	}

	parts := make([]string, 0, len(matches))
	for _, m := range matches {
		if m.Score <= p.minScore {
			continue
		}
		parts = append(parts, fmt.Sprintf("[%s] %s", m.Metadata.Source, m.Metadata.Content))
	}
	return strings.Join(parts, "\n\n")
}
