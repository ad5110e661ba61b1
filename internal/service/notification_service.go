package service

import (
	"context"

	"github.com/devnovate-blog-api/internal/apperr"
	"github.com/devnovate-blog-api/internal/models"
	"github.com/devnovate-blog-api/internal/policy"
	"github.com/devnovate-blog-api/internal/validation"
	"github.com/rs/zerolog"
)

const (
	defaultNotificationLimit = 20
	maxNotificationLimit     = 100
)

type notificationService struct {
	*base
	log zerolog.Logger
}

func newNotificationService(b *base, log zerolog.Logger) *notificationService {
	return &notificationService{
		base: b,
		log:  log.With().Str("service", "notification").Logger(),
	}
}

// List returns the user's latest notifications and the unread total
func (s *notificationService) List(ctx context.Context, user *models.Identity, limit int) (*NotificationList, error) {
	const op = "notification.list"

	if user == nil {
		return nil, apperr.Unauthenticated(op)
	}
	if limit <= 0 {
		limit = defaultNotificationLimit
	}
	if limit > maxNotificationLimit {
		limit = maxNotificationLimit
	}

	items, err := s.repos.Notification.ListByUser(ctx, user.ID, limit)
	if err != nil {
		s.log.Error().Err(err).Str("user_id", user.ID).Msg("Failed to list notifications")
		return nil, apperr.Wrap(op, err)
	}
	unread, err := s.repos.Notification.CountUnread(ctx, user.ID)
	if err != nil {
		s.log.Error().Err(err).Str("user_id", user.ID).Msg("Failed to count notifications")
		return nil, apperr.Wrap(op, err)
	}
	return &NotificationList{Items: items, Unread: unread}, nil
}

// MarkRead flags one of the user's notifications as read
func (s *notificationService) MarkRead(ctx context.Context, user *models.Identity, id string) error {
	const op = "notification.mark_read"

	if user == nil {
		return apperr.Unauthenticated(op)
	}
	if !validation.IsValidUUID(id) {
		return apperr.NotFound(op, "notification not found")
	}
	found, err := s.repos.Notification.MarkRead(ctx, id, user.ID)
	if err != nil {
		s.log.Error().Err(err).Str("notification_id", id).Msg("Failed to mark notification read")
		return apperr.Wrap(op, err)
	}
	if !found {
		return apperr.NotFound(op, "notification not found")
	}
	return nil
}

type adminService struct {
	*base
	log zerolog.Logger
}

func newAdminService(b *base, log zerolog.Logger) *adminService {
	return &adminService{
		base: b,
		log:  log.With().Str("service", "admin").Logger(),
	}
}

// Stats returns row counts for the main collections
func (s *adminService) Stats(ctx context.Context) (*Stats, error) {
	const op = "admin.stats"

	var (
		stats Stats
		err   error
	)
	if stats.Articles, err = s.repos.Article.Count(ctx); err != nil {
		return nil, apperr.Wrap(op, err)
	}
	if stats.Comments, err = s.repos.Comment.Count(ctx); err != nil {
		return nil, apperr.Wrap(op, err)
	}
	if stats.Likes, err = s.repos.Like.Count(ctx); err != nil {
		return nil, apperr.Wrap(op, err)
	}
	return &stats, nil
}

// ReconcileCounters recomputes denormalized counters from child rows
func (s *adminService) ReconcileCounters(ctx context.Context) (int64, error) {
	fixed, err := s.repos.Article.ReconcileCounters(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("Counter reconciliation failed")
		return 0, apperr.Wrap("admin.reconcile", err)
	}
	s.log.Info().Int64("articles_fixed", fixed).Msg("Counters reconciled")
	return fixed, nil
}

// AuditTrail returns the audit entries of one record
func (s *adminService) AuditTrail(ctx context.Context, actor *models.Identity, targetType, targetID string) ([]*models.AuditEntry, error) {
	const op = "admin.audit_trail"

	if actor == nil {
		return nil, apperr.Unauthenticated(op)
	}
	if !policy.Can(actor, policy.ReadAnyArticle) {
		return nil, apperr.Forbidden(op, "not allowed to read the audit log")
	}
	entries, err := s.repos.Audit.ListByTarget(ctx, targetType, targetID)
	if err != nil {
		return nil, apperr.Wrap(op, err)
	}
	return entries, nil
}
