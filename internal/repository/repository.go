package repository

import (
	"context"
	"errors"

	"github.com/devnovate-blog-api/internal/database"
	"github.com/devnovate-blog-api/internal/models"
	"github.com/lib/pq"
)

// Lookups return (nil, nil) when the row does not exist.

// ArticleRepository defines the interface for article data operations
type ArticleRepository interface {
	Create(ctx context.Context, article *models.Article) error
	Update(ctx context.Context, article *models.Article) error
	GetByID(ctx context.Context, id string) (*models.Article, error)
	GetBySlug(ctx context.Context, slug string) (*models.Article, error)
	SlugExists(ctx context.Context, slug, excludeID string) (bool, error)
	ListByAuthor(ctx context.Context, authorID string) ([]*models.Article, error)
	ListPublic(ctx context.Context) ([]*models.Article, error)
	ListByStatus(ctx context.Context, status models.BlogStatus) ([]*models.Article, error)
	IncrementViews(ctx context.Context, id string) error
	ReconcileCounters(ctx context.Context) (int64, error)
	Count(ctx context.Context) (int, error)
}

// CommentRepository defines the interface for comment data operations
type CommentRepository interface {
	Create(ctx context.Context, comment *models.Comment) error
	GetByID(ctx context.Context, id string) (*models.Comment, error)
	UpdateStatus(ctx context.Context, id string, status models.CommentStatus) error
	// StreamVisible yields VISIBLE comments of an article newest-first,
	// with the author's profile summary attached when one exists.
	StreamVisible(ctx context.Context, articleID string, callback func(*models.Comment) error) error
	CountVisible(ctx context.Context, articleID string) (int, error)
	Count(ctx context.Context) (int, error)
}

// LikeRepository defines the interface for like data operations
type LikeRepository interface {
	Create(ctx context.Context, like *models.Like) error
	Delete(ctx context.Context, articleID, userID string) (bool, error)
	Exists(ctx context.Context, articleID, userID string) (bool, error)
	CountByArticle(ctx context.Context, articleID string) (int, error)
	Count(ctx context.Context) (int, error)
}

// ProfileRepository defines the interface for profile data operations
type ProfileRepository interface {
	Upsert(ctx context.Context, profile *models.Profile) error
	GetByUserID(ctx context.Context, userID string) (*models.Profile, error)
}

// RoleRepository defines the interface for role assignments
type RoleRepository interface {
	GetByUserID(ctx context.Context, userID string) (*models.RoleAssignment, error)
	Upsert(ctx context.Context, assignment *models.RoleAssignment) error
}

// NotificationRepository defines the interface for notification data operations
type NotificationRepository interface {
	Create(ctx context.Context, n *models.Notification) error
	ListByUser(ctx context.Context, userID string, limit int) ([]*models.Notification, error)
	MarkRead(ctx context.Context, id, userID string) (bool, error)
	CountUnread(ctx context.Context, userID string) (int, error)
}

// AuditRepository defines the interface for the append-only audit log
type AuditRepository interface {
	Append(ctx context.Context, entry *models.AuditEntry) error
	ListByTarget(ctx context.Context, targetType, targetID string) ([]*models.AuditEntry, error)
}

// TxManager runs a function inside one transaction. Repositories called
// with the derived context take part in it.
type TxManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// Repositories holds all repository interfaces
type Repositories struct {
	Article      ArticleRepository
	Comment      CommentRepository
	Like         LikeRepository
	Profile      ProfileRepository
	Role         RoleRepository
	Notification NotificationRepository
	Audit        AuditRepository
	Tx           TxManager
}

// New creates all repositories with the given database connection
func New(db *database.DB) *Repositories {
	return &Repositories{
		Article:      NewArticleRepo(db),
		Comment:      NewCommentRepo(db),
		Like:         NewLikeRepo(db),
		Profile:      NewProfileRepo(db),
		Role:         NewRoleRepo(db),
		Notification: NewNotificationRepo(db),
		Audit:        NewAuditRepo(db),
		Tx:           db,
	}
}

const (
	uniqueViolation           = "23505"
	invalidTextRepresentation = "22P02"
)

// IsUniqueViolation reports whether err is a PostgreSQL unique constraint
// violation
func IsUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}

// IsInvalidInput reports whether PostgreSQL rejected a parameter it could not
// cast, such as a malformed uuid
func IsInvalidInput(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == invalidTextRepresentation
}

// UniqueViolation builds the error a unique index would raise. In-memory
// gateways return it so callers handle both backends alike.
func UniqueViolation(constraint string) error {
	return &pq.Error{Code: uniqueViolation, Constraint: constraint, Message: "duplicate key value violates unique constraint"}
}
