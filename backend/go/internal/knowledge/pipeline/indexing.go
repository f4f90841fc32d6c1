package pipeline

import (
	"context"
	"fmt"
	"time"

	"Concierge/backend/go/internal/embedding"
	"Concierge/backend/go/internal/knowledge/splitter"
	"Concierge/backend/go/internal/models"
	"Concierge/backend/go/internal/vectorstore"
	"Concierge/backend/go/pkg/logger"

	"golang.org/x/sync/errgroup"
)

// IndexingPipeline splits, tags, embeds and stores knowledge documents.
type IndexingPipeline struct {
	splitter    *splitter.SentenceSplitter
	embedder    embedding.Embedding
	vectorStore vectorstore.Store
	log         *logger.Logger

	batchSize   int
	concurrency int
	now         func() time.Time
}

// NewIndexingPipeline creates a new IndexingPipeline. Non-positive batchSize or
// concurrency fall back to 16 and 4.
func NewIndexingPipeline(
	s *splitter.SentenceSplitter,
	embedder embedding.Embedding,
	vectorStore vectorstore.Store,
	log *logger.Logger,
	batchSize, concurrency int,
) *IndexingPipeline {
	if batchSize <= 0 {
		batchSize = 16
	}
	if concurrency <= 0 {
		concurrency = 4
	}
	return &IndexingPipeline{
		splitter:    s,
		embedder:    embedder,
		vectorStore: vectorStore,
		log:         log,
		batchSize:   batchSize,
		concurrency: concurrency,
		now:         time.Now,
	}
}

// Run stores every chunk of docs and returns how many chunks were written.
// Re-running with the same sources overwrites the same chunk ids.
func (p *IndexingPipeline) Run(ctx context.Context, docs []models.SourceDocument) (int, error) {
	if p.vectorStore == nil {
		return 0, vectorstore.ErrNotConfigured
	}
	p.log.Info(fmt.Sprintf("Starting indexing for %d documents", len(docs)))

	chunks, err := p.splitter.Split(ctx, docs)
	if err != nil {
		p.log.Error(fmt.Sprintf("Failed to split documents: %v", err))
		return 0, err
	}
	if len(chunks) == 0 {
		p.log.Warn("No chunks produced, nothing to index")
		return 0, nil
	}

	created := p.now()
	for i := range chunks {
		chunks[i].Capabilities = TagCapabilities(chunks[i].Text)
		chunks[i].CreatedAt = created
	}

	eg, gCtx := errgroup.WithContext(ctx)
	eg.SetLimit(p.concurrency)
	for start := 0; start < len(chunks); start += p.batchSize {
		batch := chunks[start:min(start+p.batchSize, len(chunks))]
		eg.Go(func() error {
			return p.storeBatch(gCtx, batch)
		})
	}
	if err := eg.Wait(); err != nil {
		return 0, err
	}

	p.log.Info(fmt.Sprintf("Successfully indexed %d chunks", len(chunks)))
	return len(chunks), nil
}

func (p *IndexingPipeline) storeBatch(ctx context.Context, batch []models.KnowledgeChunk) error {
	texts := make([]string, len(batch))
	for i, c := range batch {
		texts[i] = c.Text
	}
	vectors, err := p.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		p.log.Error(fmt.Sprintf("Failed to embed chunks: %v", err))
		return fmt.Errorf("embedding chunks: %w", err)
	}
	if len(vectors) != len(batch) {
		return fmt.Errorf("embedding chunks: got %d vectors for %d texts", len(vectors), len(batch))
	}

	records := make([]vectorstore.Record, len(batch))
	for i, c := range batch {
		batch[i].Embedding = vectors[i]
		records[i] = vectorstore.Record{
			ID:     c.ID,
			Vector: vectors[i],
			Metadata: vectorstore.Metadata{
				Content:      c.Text,
				Type:         string(models.RecordKnowledge),
				Source:       c.SourceTag,
				HasPortfolio: c.Capabilities.HasPortfolio,
				HasProcess:   c.Capabilities.HasProcess,
				HasPricing:   c.Capabilities.HasPricing,
				HasServices:  c.Capabilities.HasServices,
				Timestamp:    c.CreatedAt.UnixMilli(),
			},
		}
	}
	if err := p.vectorStore.Upsert(ctx, records); err != nil {
		p.log.Error(fmt.Sprintf("Failed to add chunks to vector store: %v", err))
		return err
	}
	return nil
}
