package service

import (
	"context"
	"errors"
	"iter"
	"strings"

	"github.com/devnovate-blog-api/internal/apperr"
	"github.com/devnovate-blog-api/internal/events"
	"github.com/devnovate-blog-api/internal/metrics"
	"github.com/devnovate-blog-api/internal/models"
	"github.com/devnovate-blog-api/internal/policy"
	"github.com/devnovate-blog-api/internal/repository"
	"github.com/devnovate-blog-api/internal/validation"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// errStopIteration ends a comment stream when the consumer stops ranging
var errStopIteration = errors.New("iteration stopped")

// engagementService is the concrete implementation of EngagementService
type engagementService struct {
	*base
	log zerolog.Logger
}

func newEngagementService(b *base, log zerolog.Logger) *engagementService {
	return &engagementService{
		base: b,
		log:  log.With().Str("service", "engagement").Logger(),
	}
}

// ToggleLike flips the user's like on a publicly visible article.
// The existence check and the write are not atomic; a concurrent toggle
// that wins the race leaves the relation as it found it and reports Delta 0.
func (s *engagementService) ToggleLike(ctx context.Context, user *models.Identity, articleID string) (*LikeResult, error) {
	const op = "engagement.toggle_like"

	if user == nil {
		return nil, apperr.Unauthenticated(op)
	}
	if !policy.Can(user, policy.Like) {
		return nil, apperr.Forbidden(op, "not allowed to like articles")
	}
	if _, err := s.visibleArticle(ctx, op, articleID); err != nil {
		return nil, err
	}

	liked, err := s.repos.Like.Exists(ctx, articleID, user.ID)
	if err != nil {
		return nil, s.fail(op, err, articleID)
	}

	result := &LikeResult{}
	if liked {
		removed, err := s.repos.Like.Delete(ctx, articleID, user.ID)
		if err != nil {
			return nil, s.fail(op, err, articleID)
		}
		if removed {
			result.Delta = -1
		}
	} else {
		err := s.repos.Like.Create(ctx, &models.Like{
			ID:        uuid.New().String(),
			ArticleID: articleID,
			UserID:    user.ID,
			CreatedAt: s.now(),
		})
		switch {
		case err == nil:
			result.Delta = 1
		case repository.IsUniqueViolation(err):
			s.log.Debug().Str("article_id", articleID).Str("user_id", user.ID).Msg("Concurrent like already recorded")
		default:
			return nil, s.fail(op, err, articleID)
		}
		result.Liked = true
	}

	// read back the trigger-maintained counter for reconciliation
	article, err := s.repos.Article.GetByID(ctx, articleID)
	if err != nil {
		return nil, s.fail(op, err, articleID)
	}
	if article != nil {
		result.LikesCount = article.LikesCount
	}

	state := "unliked"
	if result.Liked {
		state = "liked"
	}
	metrics.LikesToggled.WithLabelValues(state).Inc()

	if result.Delta != 0 {
		s.publish(ctx, s.log, events.New(events.LikeToggled, articleID, user.ID, map[string]interface{}{
			"liked":       result.Liked,
			"likes_count": result.LikesCount,
		}))
	}
	return result, nil
}

// IsLiked reports whether the user likes the article; anonymous users never do
func (s *engagementService) IsLiked(ctx context.Context, user *models.Identity, articleID string) (bool, error) {
	if user == nil {
		return false, nil
	}
	liked, err := s.repos.Like.Exists(ctx, articleID, user.ID)
	if err != nil {
		return false, s.fail("engagement.is_liked", err, articleID)
	}
	return liked, nil
}

// PostComment stores a VISIBLE comment on a publicly visible article and
// notifies the article's author
func (s *engagementService) PostComment(ctx context.Context, user *models.Identity, articleID, content string) (*models.Comment, error) {
	const op = "engagement.post_comment"

	content = strings.TrimSpace(content)
	if errs := validation.ValidateComment(content); len(errs) > 0 {
		return nil, apperr.Validation(op, errs[0].Field, errs[0].Message)
	}
	if user == nil {
		return nil, apperr.Unauthenticated(op)
	}
	if !policy.Can(user, policy.Comment) {
		return nil, apperr.Forbidden(op, "not allowed to comment")
	}

	article, err := s.visibleArticle(ctx, op, articleID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	comment := &models.Comment{
		ID:        uuid.New().String(),
		ArticleID: articleID,
		AuthorID:  user.ID,
		Content:   content,
		Status:    models.CommentVisible,
		CreatedAt: now,
		UpdatedAt: now,
	}

	err = s.repos.Tx.WithTransaction(ctx, func(ctx context.Context) error {
		if err := s.repos.Comment.Create(ctx, comment); err != nil {
			return err
		}
		if article.AuthorID == user.ID {
			return nil
		}
		return s.notify(ctx, article.AuthorID, models.NotificationNewComment, map[string]interface{}{
			"blog_id":      article.ID,
			"blog_title":   article.Title,
			"comment_id":   comment.ID,
			"commenter_id": user.ID,
		})
	})
	if err != nil {
		return nil, s.fail(op, err, articleID)
	}

	if profile, err := s.repos.Profile.GetByUserID(ctx, user.ID); err == nil && profile != nil {
		comment.Author = profile.Summary()
	}

	metrics.CommentsPosted.Inc()
	s.publish(ctx, s.log, events.New(events.CommentCreated, articleID, user.ID, map[string]interface{}{
		"comment_id": comment.ID,
	}))
	return comment, nil
}

// ListComments streams the article's VISIBLE comments newest-first. Each
// range over the returned sequence issues a fresh query. A storage failure
// is yielded once as the final element.
func (s *engagementService) ListComments(ctx context.Context, articleID string) iter.Seq2[*models.Comment, error] {
	return func(yield func(*models.Comment, error) bool) {
		err := s.repos.Comment.StreamVisible(ctx, articleID, func(c *models.Comment) error {
			if !yield(c, nil) {
				return errStopIteration
			}
			return nil
		})
		if err != nil && !errors.Is(err, errStopIteration) {
			yield(nil, s.fail("engagement.list_comments", err, articleID))
		}
	}
}

// ModerateComment changes a comment's status. DELETED is terminal.
func (s *engagementService) ModerateComment(ctx context.Context, actor *models.Identity, commentID string, status models.CommentStatus) (*models.Comment, error) {
	const op = "engagement.moderate_comment"

	if actor == nil {
		return nil, apperr.Unauthenticated(op)
	}
	if !policy.Can(actor, policy.ModerateComments) {
		return nil, apperr.Forbidden(op, "not allowed to moderate comments")
	}
	if !models.ValidCommentStatuses[status] {
		return nil, apperr.Validation(op, "status", "status must be one of: VISIBLE, HIDDEN, DELETED")
	}
	if !validation.IsValidUUID(commentID) {
		return nil, apperr.NotFound(op, "comment not found")
	}

	comment, err := s.repos.Comment.GetByID(ctx, commentID)
	if err != nil {
		return nil, s.fail(op, err, commentID)
	}
	if comment == nil {
		return nil, apperr.NotFound(op, "comment not found")
	}
	if comment.Status == status {
		return comment, nil
	}
	if comment.Status == models.CommentDeleted {
		return nil, apperr.Conflict(op, "comment is deleted")
	}

	previous := comment.Status
	err = s.repos.Tx.WithTransaction(ctx, func(ctx context.Context) error {
		if err := s.repos.Comment.UpdateStatus(ctx, commentID, status); err != nil {
			return err
		}
		return s.audit(ctx, actor, models.AuditCommentStatus, "comment", commentID, map[string]interface{}{
			"from": previous,
			"to":   status,
		})
	})
	if err != nil {
		return nil, s.fail(op, err, commentID)
	}

	comment.Status = status
	comment.UpdatedAt = s.now()
	s.publish(ctx, s.log, events.New(events.CommentModerated, comment.ArticleID, actor.ID, map[string]interface{}{
		"comment_id": commentID,
		"status":     status,
	}))
	return comment, nil
}

// visibleArticle loads an article that accepts engagement
func (s *engagementService) visibleArticle(ctx context.Context, op, articleID string) (*models.Article, error) {
	if !validation.IsValidUUID(articleID) {
		return nil, apperr.NotFound(op, "article not found")
	}
	article, err := s.repos.Article.GetByID(ctx, articleID)
	if err != nil {
		return nil, s.fail(op, err, articleID)
	}
	if article == nil || !article.IsPubliclyVisible() {
		return nil, apperr.NotFound(op, "article not found")
	}
	return article, nil
}

func (s *engagementService) fail(op string, err error, id string) error {
	if apperr.KindOf(err) == "" {
		s.log.Error().Err(err).Str("op", op).Str("target_id", id).Msg("Storage operation failed")
	}
	return apperr.Wrap(op, err)
}
