// Package leads records sessions that showed commercial intent.
package leads

import (
	"context"
	"fmt"
	"time"

	"Concierge/backend/go/internal/models"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MaxMessageExcerpt is the number of characters of the triggering message kept on a lead.
const MaxMessageExcerpt = 280

// Recorder persists leads.
type Recorder interface {
	Record(ctx context.Context, lead models.Lead) error
}

// New builds a lead for a session, filling the id, excerpt and timestamp.
func New(sessionID, intent, message string, profile models.Profile, now time.Time) models.Lead {
	excerpt := []rune(message)
	if len(excerpt) > MaxMessageExcerpt {
		excerpt = excerpt[:MaxMessageExcerpt]
	}
	return models.Lead{
		ID:        uuid.NewString(),
		SessionID: sessionID,
		Intent:    intent,
		Message:   string(excerpt),
		Profile:   profile,
		CreatedAt: now,
	}
}

// inserter is the part of *mongo.Collection the recorder uses.
type inserter interface {
	InsertOne(ctx context.Context, document interface{}, opts ...*options.InsertOneOptions) (*mongo.InsertOneResult, error)
}

// MongoRecorder writes one document per lead.
type MongoRecorder struct {
	coll inserter
}

// NewMongoRecorder creates a new MongoRecorder.
func NewMongoRecorder(coll *mongo.Collection) *MongoRecorder {
	return &MongoRecorder{coll: coll}
}

func (r *MongoRecorder) Record(ctx context.Context, lead models.Lead) error {
	if _, err := r.coll.InsertOne(ctx, lead); err != nil {
		return fmt.Errorf("insert lead for %s: %w", lead.SessionID, err)
	}
	return nil
}

// Noop discards leads. It is used when lead capture is disabled.
type Noop struct{}

func (Noop) Record(context.Context, models.Lead) error { return nil }
