// Package splitter cuts reference text into bounded, overlapping chunks on sentence boundaries.
package splitter

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"Concierge/backend/go/internal/models"
)

// MinChunkLength is the shortest chunk kept in the output, in bytes.
const MinChunkLength = 50

// ErrInvalidArgument is returned for a non-positive chunk size or a negative overlap.
var ErrInvalidArgument = errors.New("invalid chunking argument")

// Chunk splits text on '.', '!' and '?' and packs sentences into chunks of at most
// maxChunkSize characters. A sentence that alone exceeds the budget still becomes its
// own chunk. Each new chunk starts with the last overlap/10 words of the previous one.
func Chunk(text string, maxChunkSize, overlap int) ([]string, error) {
	if maxChunkSize <= 0 || overlap < 0 {
		return nil, fmt.Errorf("%w: maxChunkSize=%d overlap=%d", ErrInvalidArgument, maxChunkSize, overlap)
	}
	overlapWords := overlap / 10

	var (
		chunks  []string
		current string
	)
	for _, sentence := range sentences(text) {
		// current ends with ". ", so the trimmed chunk grows by len(sentence)+1.
		if len(current)+len(sentence)+1 > maxChunkSize && len(current) > 0 {
			chunks = append(chunks, strings.TrimSpace(current))
			current = tail(current, overlapWords) + sentence + ". "
			continue
		}
		current += sentence + ". "
	}
	if c := strings.TrimSpace(current); c != "" {
		chunks = append(chunks, c)
	}

	out := chunks[:0]
	for _, c := range chunks {
		if len(c) >= MinChunkLength {
			out = append(out, c)
		}
	}
	return out, nil
}

func sentences(text string) []string {
	parts := strings.FieldsFunc(text, func(r rune) bool {
		return r == '.' || r == '!' || r == '?'
	})
	out := parts[:0]
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// tail returns the last n words of s followed by a space, or "" when n is 0.
func tail(s string, n int) string {
	if n <= 0 {
		return ""
	}
	words := strings.Fields(s)
	if len(words) > n {
		words = words[len(words)-n:]
	}
	if len(words) == 0 {
		return ""
	}
	return strings.Join(words, " ") + " "
}

// SentenceSplitter applies Chunk to whole documents.
type SentenceSplitter struct {
	ChunkSize    int
	ChunkOverlap int
}

// NewSentenceSplitter validates the budgets up front.
func NewSentenceSplitter(chunkSize, chunkOverlap int) (*SentenceSplitter, error) {
	if chunkSize <= 0 || chunkOverlap < 0 {
		return nil, fmt.Errorf("%w: chunkSize=%d overlap=%d", ErrInvalidArgument, chunkSize, chunkOverlap)
	}
	return &SentenceSplitter{ChunkSize: chunkSize, ChunkOverlap: chunkOverlap}, nil
}

// Split chunks every document. Chunk ids are "{source}_chunk_{n}", numbered per document from 0.
func (s *SentenceSplitter) Split(ctx context.Context, docs []models.SourceDocument) ([]models.KnowledgeChunk, error) {
	var out []models.KnowledgeChunk
	for _, doc := range docs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		texts, err := Chunk(doc.Text, s.ChunkSize, s.ChunkOverlap)
		if err != nil {
			return nil, err
		}
		for i, t := range texts {
			out = append(out, models.KnowledgeChunk{
				ID:        fmt.Sprintf("%s_chunk_%d", doc.Source, i),
				Text:      t,
				SourceTag: doc.Source,
			})
		}
	}
	return out, nil
}
