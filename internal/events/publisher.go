//go:generate mockgen -source=publisher.go -destination=../mocks/publisher.go -package=mocks

// Package events publishes domain events to RabbitMQ for downstream consumers.
package events

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// Event types
const (
	ArticlePublished     = "article.published"
	ArticleStatusChanged = "article.status_changed"
	CommentCreated       = "comment.created"
	CommentModerated     = "comment.moderated"
	LikeToggled          = "like.toggled"
)

// Event is one domain fact emitted after its transaction commits
type Event struct {
	Type      string                 `json:"type"`
	ArticleID string                 `json:"article_id,omitempty"`
	ActorID   string                 `json:"actor_id,omitempty"`
	Data      map[string]interface{} `json:"data,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

// New builds an event stamped with the current time
func New(eventType, articleID, actorID string, data map[string]interface{}) Event {
	return Event{
		Type:      eventType,
		ArticleID: articleID,
		ActorID:   actorID,
		Data:      data,
		Timestamp: time.Now().UTC(),
	}
}

// Publisher delivers events
type Publisher interface {
	Publish(ctx context.Context, event Event) error
	Close() error
}

// Noop discards events; used when publishing is disabled
type Noop struct {
	log zerolog.Logger
}

// NewNoop creates a publisher that only logs at debug level
func NewNoop(log zerolog.Logger) *Noop {
	return &Noop{log: log.With().Str("component", "events").Logger()}
}

func (n *Noop) Publish(ctx context.Context, event Event) error {
	n.log.Debug().Str("type", event.Type).Str("article_id", event.ArticleID).Msg("Event discarded")
	return nil
}

func (n *Noop) Close() error {
	return nil
}
