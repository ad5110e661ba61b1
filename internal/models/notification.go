package models

import (
	"time"

	"github.com/jmoiron/sqlx/types"
)

// NotificationType classifies a notification
type NotificationType string

const (
	NotificationSubmissionStatus NotificationType = "SUBMISSION_STATUS"
	NotificationNewComment       NotificationType = "NEW_COMMENT"
	NotificationBlogPublished    NotificationType = "BLOG_PUBLISHED"
)

// Notification is an advisory record addressed to one user
type Notification struct {
	ID        string           `json:"id" db:"id"`
	UserID    string           `json:"user_id" db:"user_id"`
	Type      NotificationType `json:"type" db:"type"`
	Data      types.JSONText   `json:"data,omitempty" db:"data"`
	Read      bool             `json:"read" db:"read"`
	CreatedAt time.Time        `json:"created_at" db:"created_at"`
}

// AuditEntry is an append-only record of a privileged action
type AuditEntry struct {
	ID         string         `json:"id" db:"id"`
	ActorID    *string        `json:"actor_id,omitempty" db:"actor_id"`
	Action     string         `json:"action" db:"action"`
	TargetType string         `json:"target_type" db:"target_type"`
	TargetID   *string        `json:"target_id,omitempty" db:"target_id"`
	Meta       types.JSONText `json:"meta,omitempty" db:"meta"`
	CreatedAt  time.Time      `json:"created_at" db:"created_at"`
}

// Audit actions written by this service
const (
	AuditArticleApproved = "article.approved"
	AuditArticleRejected = "article.rejected"
	AuditArticleHidden   = "article.hidden"
	AuditArticleUnhidden = "article.unhidden"
	AuditArticleDeleted  = "article.deleted"
	AuditCommentStatus   = "comment.status_changed"
	AuditRoleAssigned    = "role.assigned"
)
