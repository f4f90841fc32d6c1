package models

import "time"

// RecordType 区分向量库中三类记录。
type RecordType string

const (
	RecordKnowledge    RecordType = "knowledge"
	RecordConversation RecordType = "conversation"
	RecordProfile      RecordType = "profile"
)

// Capabilities flags what kind of question a knowledge chunk can answer.
// They are derived from the chunk text at seed time and used as retrieval filters.
type Capabilities struct {
	HasPortfolio bool `json:"hasPortfolio"`
	HasProcess   bool `json:"hasProcess"`
	HasPricing   bool `json:"hasPricing"`
	HasServices  bool `json:"hasServices"`
}

// KnowledgeChunk is one bounded slice of reference text stored in the vector index.
// Chunks are immutable once seeded.
type KnowledgeChunk struct {
	ID           string       `json:"id"`
	Text         string       `json:"text"`
	SourceTag    string       `json:"sourceTag"`
	Capabilities Capabilities `json:"capabilities"`
	Embedding    []float32    `json:"-"`
	CreatedAt    time.Time    `json:"createdAt"`
}

// SourceDocument is raw reference text produced by a loader, before chunking.
type SourceDocument struct {
	Source string
	Text   string
}
