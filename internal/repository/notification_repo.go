package repository

import (
	"context"

	"github.com/devnovate-blog-api/internal/database"
	"github.com/devnovate-blog-api/internal/models"
	"github.com/jmoiron/sqlx"
	"github.com/jmoiron/sqlx/types"
)

var emptyObject = types.JSONText("{}")

type notificationRepo struct {
	db *database.DB
}

// NewNotificationRepo creates a new notification repository
func NewNotificationRepo(db *database.DB) NotificationRepository {
	return &notificationRepo{db: db}
}

// Create inserts a notification
func (r *notificationRepo) Create(ctx context.Context, n *models.Notification) error {
	if len(n.Data) == 0 {
		n.Data = emptyObject
	}
	_, err := sqlx.NamedExecContext(ctx, r.db.Executor(ctx), `
		INSERT INTO notifications (id, user_id, type, data, read, created_at)
		VALUES (:id, :user_id, :type, :data, :read, :created_at)
	`, n)
	return err
}

// ListByUser returns the user's most recent notifications
func (r *notificationRepo) ListByUser(ctx context.Context, userID string, limit int) ([]*models.Notification, error) {
	notifications := []*models.Notification{}
	err := sqlx.SelectContext(ctx, r.db.Executor(ctx), &notifications, `
		SELECT id, user_id, type, data, read, created_at FROM notifications
		WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2
	`, userID, limit)
	if err != nil {
		return nil, err
	}
	return notifications, nil
}

// MarkRead flags one of the user's notifications as read
func (r *notificationRepo) MarkRead(ctx context.Context, id, userID string) (bool, error) {
	res, err := r.db.Executor(ctx).ExecContext(ctx,
		"UPDATE notifications SET read = TRUE WHERE id = $1 AND user_id = $2", id, userID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// CountUnread returns the number of unread notifications for a user
func (r *notificationRepo) CountUnread(ctx context.Context, userID string) (int, error) {
	var count int
	err := sqlx.GetContext(ctx, r.db.Executor(ctx), &count,
		"SELECT COUNT(*) FROM notifications WHERE user_id = $1 AND NOT read", userID)
	return count, err
}

type auditRepo struct {
	db *database.DB
}

// NewAuditRepo creates a new audit repository
func NewAuditRepo(db *database.DB) AuditRepository {
	return &auditRepo{db: db}
}

// Append writes an audit entry
func (r *auditRepo) Append(ctx context.Context, entry *models.AuditEntry) error {
	if len(entry.Meta) == 0 {
		entry.Meta = emptyObject
	}
	_, err := sqlx.NamedExecContext(ctx, r.db.Executor(ctx), `
		INSERT INTO audit_log (id, actor_id, action, target_type, target_id, meta, created_at)
		VALUES (:id, :actor_id, :action, :target_type, :target_id, :meta, :created_at)
	`, entry)
	return err
}

// ListByTarget returns the audit trail of one record, oldest first
func (r *auditRepo) ListByTarget(ctx context.Context, targetType, targetID string) ([]*models.AuditEntry, error) {
	entries := []*models.AuditEntry{}
	err := sqlx.SelectContext(ctx, r.db.Executor(ctx), &entries, `
		SELECT id, actor_id, action, target_type, target_id, meta, created_at FROM audit_log
		WHERE target_type = $1 AND target_id = $2 ORDER BY created_at
	`, targetType, targetID)
	if err != nil {
		return nil, err
	}
	return entries, nil
}
