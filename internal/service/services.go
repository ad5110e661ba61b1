package service

import (
	"context"
	"encoding/json"
	"iter"
	"time"

	"github.com/devnovate-blog-api/internal/config"
	"github.com/devnovate-blog-api/internal/events"
	"github.com/devnovate-blog-api/internal/metrics"
	"github.com/devnovate-blog-api/internal/models"
	"github.com/devnovate-blog-api/internal/repository"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx/types"
	"github.com/rs/zerolog"
)

// ArticleInput is the author-supplied content of a new article
type ArticleInput struct {
	Title         string
	Content       string
	CoverImageURL *string
	Tags          []string
	Visibility    models.Visibility
	// Publish applies Publish right after creation
	Publish bool
}

// ArticleService defines the article lifecycle operations
type ArticleService interface {
	CreateDraft(ctx context.Context, user *models.Identity, input ArticleInput) (*models.Article, error)
	Publish(ctx context.Context, user *models.Identity, id string) (*models.Article, error)
	Submit(ctx context.Context, user *models.Identity, id string) (*models.Article, error)
	SaveDraft(ctx context.Context, user *models.Identity, id string, patch models.ArticlePatch) (*models.Article, error)
	Approve(ctx context.Context, actor *models.Identity, id string) (*models.Article, error)
	Reject(ctx context.Context, actor *models.Identity, id, reason string) (*models.Article, error)
	Hide(ctx context.Context, actor *models.Identity, id string) (*models.Article, error)
	Unhide(ctx context.Context, actor *models.Identity, id string) (*models.Article, error)
	SetVisibility(ctx context.Context, user *models.Identity, id string, visibility models.Visibility) (*models.Article, error)
	Delete(ctx context.Context, user *models.Identity, id string) error
	ListOwn(ctx context.Context, user *models.Identity, view models.OwnView) ([]*models.Article, error)
	// Get returns (nil, nil) when the article does not exist or the viewer
	// may not read it
	Get(ctx context.Context, viewer *models.Identity, ref string) (*models.Article, error)
	ListPublic(ctx context.Context) ([]*models.Article, error)
	ListReviewQueue(ctx context.Context, actor *models.Identity) ([]*models.Article, error)
	RecordView(ctx context.Context, id string) error
}

// LikeResult reports the outcome of a like toggle
type LikeResult struct {
	Liked bool `json:"liked"`
	// Delta is +1, -1, or 0 when a concurrent toggle already produced the state
	Delta int `json:"delta"`
	// LikesCount is the stored counter read after the write
	LikesCount int `json:"likes_count"`
}

// EngagementService defines like and comment operations
type EngagementService interface {
	ToggleLike(ctx context.Context, user *models.Identity, articleID string) (*LikeResult, error)
	IsLiked(ctx context.Context, user *models.Identity, articleID string) (bool, error)
	PostComment(ctx context.Context, user *models.Identity, articleID, content string) (*models.Comment, error)
	// ListComments re-queries storage on every range
	ListComments(ctx context.Context, articleID string) iter.Seq2[*models.Comment, error]
	ModerateComment(ctx context.Context, actor *models.Identity, commentID string, status models.CommentStatus) (*models.Comment, error)
}

// SessionService resolves identities at sign-in and clears them at sign-out
type SessionService interface {
	Init(ctx context.Context, userID, email string) (*models.Identity, error)
	Clear(ctx context.Context, user *models.Identity) error
	ResolveRole(ctx context.Context, userID string) (models.Role, error)
	AssignRole(ctx context.Context, actor *models.Identity, userID string, role models.Role) (*models.RoleAssignment, error)
}

// ProfileInput holds editable profile fields
type ProfileInput struct {
	Name      string
	AvatarURL *string
	Bio       *string
}

// ProfileService defines profile operations
type ProfileService interface {
	Get(ctx context.Context, userID string) (*models.Profile, error)
	Update(ctx context.Context, user *models.Identity, input ProfileInput) (*models.Profile, error)
}

// NotificationList is one page of a user's notifications
type NotificationList struct {
	Items  []*models.Notification `json:"items"`
	Unread int                    `json:"unread"`
}

// NotificationService defines notification inbox operations
type NotificationService interface {
	List(ctx context.Context, user *models.Identity, limit int) (*NotificationList, error)
	MarkRead(ctx context.Context, user *models.Identity, id string) error
}

// Stats holds row counts
type Stats struct {
	Articles int `json:"articles"`
	Comments int `json:"comments"`
	Likes    int `json:"likes"`
}

// AdminService defines operator maintenance operations
type AdminService interface {
	Stats(ctx context.Context) (*Stats, error)
	ReconcileCounters(ctx context.Context) (int64, error)
	AuditTrail(ctx context.Context, actor *models.Identity, targetType, targetID string) ([]*models.AuditEntry, error)
}

// Services holds all service interfaces
type Services struct {
	Article      ArticleService
	Engagement   EngagementService
	Session      SessionService
	Profile      ProfileService
	Notification NotificationService
	Admin        AdminService
}

// Option customises NewServices
type Option func(*base)

// WithClock replaces the time source
func WithClock(now func() time.Time) Option {
	return func(b *base) { b.now = now }
}

// NewServices creates all services. A nil publisher discards events.
func NewServices(repos *repository.Repositories, publisher events.Publisher, cfg *config.Config, log zerolog.Logger, opts ...Option) *Services {
	if publisher == nil {
		publisher = events.NewNoop(log)
	}

	b := &base{
		repos:     repos,
		publisher: publisher,
		policy:    cfg.Policy,
		now:       func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(b)
	}

	return &Services{
		Article:      newArticleService(b, log),
		Engagement:   newEngagementService(b, log),
		Session:      newSessionService(b, log),
		Profile:      newProfileService(b, log),
		Notification: newNotificationService(b, log),
		Admin:        newAdminService(b, log),
	}
}

// base carries the dependencies shared by every service
type base struct {
	repos     *repository.Repositories
	publisher events.Publisher
	policy    config.PolicyConfig
	now       func() time.Time
}

// publish emits an event after the write has committed. Delivery failures
// are logged and counted; the operation itself has already succeeded.
func (b *base) publish(ctx context.Context, log zerolog.Logger, ev events.Event) {
	if err := b.publisher.Publish(ctx, ev); err != nil {
		metrics.EventPublishFailures.WithLabelValues(ev.Type).Inc()
		log.Warn().Err(err).Str("type", ev.Type).Str("article_id", ev.ArticleID).Msg("Failed to publish event")
	}
}

func (b *base) notify(ctx context.Context, userID string, typ models.NotificationType, data map[string]interface{}) error {
	n := &models.Notification{
		ID:        uuid.New().String(),
		UserID:    userID,
		Type:      typ,
		Data:      toJSON(data),
		CreatedAt: b.now(),
	}
	return b.repos.Notification.Create(ctx, n)
}

func (b *base) audit(ctx context.Context, actor *models.Identity, action, targetType, targetID string, meta map[string]interface{}) error {
	entry := &models.AuditEntry{
		ID:         uuid.New().String(),
		Action:     action,
		TargetType: targetType,
		Meta:       toJSON(meta),
		CreatedAt:  b.now(),
	}
	if actor != nil {
		entry.ActorID = &actor.ID
	}
	if targetID != "" {
		entry.TargetID = &targetID
	}
	return b.repos.Audit.Append(ctx, entry)
}

func toJSON(data map[string]interface{}) types.JSONText {
	if len(data) == 0 {
		return types.JSONText("{}")
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return types.JSONText("{}")
	}
	return types.JSONText(raw)
}
