package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/devnovate-blog-api/internal/apperr"
	"github.com/devnovate-blog-api/internal/config"
	"github.com/devnovate-blog-api/internal/events"
	"github.com/devnovate-blog-api/internal/metrics"
	"github.com/devnovate-blog-api/internal/models"
	"github.com/devnovate-blog-api/internal/policy"
	"github.com/devnovate-blog-api/internal/repository"
	"github.com/devnovate-blog-api/internal/slug"
	"github.com/devnovate-blog-api/internal/validation"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/rs/zerolog"
)

// articleService is the concrete implementation of ArticleService
type articleService struct {
	*base
	log zerolog.Logger
}

func newArticleService(b *base, log zerolog.Logger) *articleService {
	return &articleService{
		base: b,
		log:  log.With().Str("service", "article").Logger(),
	}
}

// CreateDraft validates and stores a new DRAFT, optionally publishing it
func (s *articleService) CreateDraft(ctx context.Context, user *models.Identity, input ArticleInput) (*models.Article, error) {
	const op = "article.create"

	if user == nil {
		return nil, apperr.Unauthenticated(op)
	}
	if !policy.Can(user, policy.WriteArticles) {
		return nil, apperr.Forbidden(op, "not allowed to write articles")
	}

	title := strings.TrimSpace(input.Title)
	content := strings.TrimSpace(input.Content)
	tags := validation.NormalizeTags(input.Tags)
	if err := firstValidationError(op, validation.ValidateArticle(title, content, tags)); err != nil {
		return nil, err
	}

	visibility := input.Visibility
	if visibility == "" {
		visibility = models.VisibilityPublic
	}
	if !models.ValidVisibilities[visibility] {
		return nil, apperr.Validation(op, "visibility", "visibility must be one of: PUBLIC, HIDDEN")
	}

	id := uuid.New().String()
	articleSlug, err := s.resolveSlug(ctx, op, title, id)
	if err != nil {
		return nil, err
	}

	now := s.now()
	article := &models.Article{
		ID:            id,
		Slug:          articleSlug,
		Title:         title,
		Content:       content,
		CoverImageURL: trimmedOrNil(input.CoverImageURL),
		Tags:          pq.StringArray(tags),
		Status:        models.StatusDraft,
		Visibility:    visibility,
		AuthorID:      user.ID,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	var published bool
	err = s.repos.Tx.WithTransaction(ctx, func(ctx context.Context) error {
		if err := s.repos.Article.Create(ctx, article); err != nil {
			if repository.IsUniqueViolation(err) {
				return apperr.Conflict(op, fmt.Sprintf("slug %q is already taken", article.Slug))
			}
			return err
		}
		if !input.Publish {
			return nil
		}
		var err error
		published, err = s.publishLocked(ctx, op, user, article)
		return err
	})
	if err != nil {
		return nil, s.fail(op, err, id)
	}

	s.log.Info().
		Str("article_id", article.ID).
		Str("slug", article.Slug).
		Str("status", string(article.Status)).
		Msg("Article created")

	if published {
		s.announce(ctx, article)
	}
	return article, nil
}

// Publish moves the author's draft to PUBLISHED in direct review mode, or
// to PENDING_REVIEW in moderated mode unless the author may skip review
func (s *articleService) Publish(ctx context.Context, user *models.Identity, id string) (*models.Article, error) {
	const op = "article.publish"

	article, err := s.loadOwned(ctx, op, user, id)
	if err != nil {
		return nil, err
	}

	var published bool
	err = s.repos.Tx.WithTransaction(ctx, func(ctx context.Context) error {
		var err error
		published, err = s.publishLocked(ctx, op, user, article)
		return err
	})
	if err != nil {
		return nil, s.fail(op, err, id)
	}

	if published {
		s.announce(ctx, article)
	}
	return article, nil
}

// publishLocked applies publish semantics to a loaded article inside a
// transaction and reports whether it went live
func (s *articleService) publishLocked(ctx context.Context, op string, user *models.Identity, article *models.Article) (bool, error) {
	from := article.Status
	if from == models.StatusRejected {
		// a rejected article is re-saved as a draft first
		from = models.StatusDraft
	}

	event := models.EventPublish
	if s.policy.ReviewMode == config.ReviewModerated && !policy.Can(user, policy.PublishWithoutReview) {
		event = models.EventSubmit
	}

	next, ok := from.Next(event)
	if !ok {
		return false, apperr.Conflict(op, fmt.Sprintf("cannot %s an article in status %s", event, article.Status))
	}

	now := s.now()
	article.Status = next
	article.RejectionReason = nil
	article.UpdatedAt = now
	if next == models.StatusPublished && article.PublishedAt == nil {
		article.PublishedAt = &now
	}

	if err := s.repos.Article.Update(ctx, article); err != nil {
		return false, err
	}
	recordTransition(event, next)

	if next != models.StatusPublished {
		return false, nil
	}
	err := s.notify(ctx, article.AuthorID, models.NotificationBlogPublished, map[string]interface{}{
		"blog_id": article.ID,
		"title":   article.Title,
		"slug":    article.Slug,
	})
	return true, err
}

// Submit sends the author's draft to the review queue
func (s *articleService) Submit(ctx context.Context, user *models.Identity, id string) (*models.Article, error) {
	const op = "article.submit"

	article, err := s.loadOwned(ctx, op, user, id)
	if err != nil {
		return nil, err
	}

	from := article.Status
	if from == models.StatusRejected {
		from = models.StatusDraft
	}
	if err := s.apply(op, article, from, models.EventSubmit); err != nil {
		return nil, err
	}
	article.RejectionReason = nil

	if err := s.repos.Article.Update(ctx, article); err != nil {
		return nil, s.fail(op, err, id)
	}
	recordTransition(models.EventSubmit, article.Status)
	return article, nil
}

// SaveDraft applies the author's edits; the result is always a DRAFT
func (s *articleService) SaveDraft(ctx context.Context, user *models.Identity, id string, patch models.ArticlePatch) (*models.Article, error) {
	const op = "article.save"

	article, err := s.loadOwned(ctx, op, user, id)
	if err != nil {
		return nil, err
	}
	if err := s.apply(op, article, article.Status, models.EventSave); err != nil {
		return nil, err
	}

	titleChanged := false
	if patch.Title != nil {
		title := strings.TrimSpace(*patch.Title)
		titleChanged = title != article.Title
		article.Title = title
	}
	if patch.Content != nil {
		article.Content = strings.TrimSpace(*patch.Content)
	}
	if patch.CoverImageURL != nil {
		article.CoverImageURL = trimmedOrNil(patch.CoverImageURL)
	}
	if patch.Tags != nil {
		article.Tags = pq.StringArray(validation.NormalizeTags(patch.Tags))
	}
	if patch.Visibility != nil {
		if !models.ValidVisibilities[*patch.Visibility] {
			return nil, apperr.Validation(op, "visibility", "visibility must be one of: PUBLIC, HIDDEN")
		}
		article.Visibility = *patch.Visibility
	}

	if err := firstValidationError(op, validation.ValidateArticle(article.Title, article.Content, article.Tags)); err != nil {
		return nil, err
	}

	if titleChanged {
		article.Slug, err = s.resolveSlug(ctx, op, article.Title, article.ID)
		if err != nil {
			return nil, err
		}
	}

	article.RejectionReason = nil
	article.UpdatedAt = s.now()

	if err := s.repos.Article.Update(ctx, article); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, apperr.Conflict(op, fmt.Sprintf("slug %q is already taken", article.Slug))
		}
		return nil, s.fail(op, err, id)
	}
	recordTransition(models.EventSave, article.Status)
	return article, nil
}

// Approve publishes a PENDING_REVIEW article on behalf of a reviewer
func (s *articleService) Approve(ctx context.Context, actor *models.Identity, id string) (*models.Article, error) {
	const op = "article.approve"

	article, err := s.loadForModeration(ctx, op, actor, policy.ReviewArticles, id)
	if err != nil {
		return nil, err
	}
	if err := s.apply(op, article, article.Status, models.EventApprove); err != nil {
		return nil, err
	}

	now := s.now()
	if article.PublishedAt == nil {
		article.PublishedAt = &now
	}
	article.ApprovedBy = &actor.ID
	article.RejectionReason = nil

	err = s.repos.Tx.WithTransaction(ctx, func(ctx context.Context) error {
		if err := s.repos.Article.Update(ctx, article); err != nil {
			return err
		}
		if err := s.notify(ctx, article.AuthorID, models.NotificationSubmissionStatus, map[string]interface{}{
			"blog_id": article.ID,
			"title":   article.Title,
			"status":  article.Status,
		}); err != nil {
			return err
		}
		return s.audit(ctx, actor, models.AuditArticleApproved, "blog", article.ID, nil)
	})
	if err != nil {
		return nil, s.fail(op, err, id)
	}
	recordTransition(models.EventApprove, article.Status)

	s.announce(ctx, article)
	return article, nil
}

// Reject returns a PENDING_REVIEW article to its author with a reason
func (s *articleService) Reject(ctx context.Context, actor *models.Identity, id, reason string) (*models.Article, error) {
	const op = "article.reject"

	reason = strings.TrimSpace(reason)
	if actor != nil && policy.Can(actor, policy.ReviewArticles) && reason == "" {
		return nil, apperr.Validation(op, "reason", "reason is required")
	}
	article, err := s.loadForModeration(ctx, op, actor, policy.ReviewArticles, id)
	if err != nil {
		return nil, err
	}
	if err := s.apply(op, article, article.Status, models.EventReject); err != nil {
		return nil, err
	}
	article.RejectionReason = &reason

	err = s.repos.Tx.WithTransaction(ctx, func(ctx context.Context) error {
		if err := s.repos.Article.Update(ctx, article); err != nil {
			return err
		}
		if err := s.notify(ctx, article.AuthorID, models.NotificationSubmissionStatus, map[string]interface{}{
			"blog_id": article.ID,
			"title":   article.Title,
			"status":  article.Status,
			"reason":  reason,
		}); err != nil {
			return err
		}
		return s.audit(ctx, actor, models.AuditArticleRejected, "blog", article.ID, map[string]interface{}{"reason": reason})
	})
	if err != nil {
		return nil, s.fail(op, err, id)
	}
	recordTransition(models.EventReject, article.Status)

	s.statusChanged(ctx, article, actor)
	return article, nil
}

// Hide takes a PUBLISHED article out of circulation
func (s *articleService) Hide(ctx context.Context, actor *models.Identity, id string) (*models.Article, error) {
	return s.moderate(ctx, "article.hide", actor, id, models.EventHide, models.AuditArticleHidden)
}

// Unhide restores a HIDDEN article
func (s *articleService) Unhide(ctx context.Context, actor *models.Identity, id string) (*models.Article, error) {
	return s.moderate(ctx, "article.unhide", actor, id, models.EventUnhide, models.AuditArticleUnhidden)
}

func (s *articleService) moderate(ctx context.Context, op string, actor *models.Identity, id string, event models.LifecycleEvent, action string) (*models.Article, error) {
	article, err := s.loadForModeration(ctx, op, actor, policy.HideArticles, id)
	if err != nil {
		return nil, err
	}
	if err := s.apply(op, article, article.Status, event); err != nil {
		return nil, err
	}

	err = s.repos.Tx.WithTransaction(ctx, func(ctx context.Context) error {
		if err := s.repos.Article.Update(ctx, article); err != nil {
			return err
		}
		return s.audit(ctx, actor, action, "blog", article.ID, nil)
	})
	if err != nil {
		return nil, s.fail(op, err, id)
	}
	recordTransition(event, article.Status)

	s.statusChanged(ctx, article, actor)
	return article, nil
}

// SetVisibility lets the author toggle discoverability independently of status
func (s *articleService) SetVisibility(ctx context.Context, user *models.Identity, id string, visibility models.Visibility) (*models.Article, error) {
	const op = "article.visibility"

	if !models.ValidVisibilities[visibility] {
		return nil, apperr.Validation(op, "visibility", "visibility must be one of: PUBLIC, HIDDEN")
	}
	article, err := s.loadOwned(ctx, op, user, id)
	if err != nil {
		return nil, err
	}
	if article.Visibility == visibility {
		return article, nil
	}

	article.Visibility = visibility
	article.UpdatedAt = s.now()
	if err := s.repos.Article.Update(ctx, article); err != nil {
		return nil, s.fail(op, err, id)
	}
	return article, nil
}

// Delete soft-deletes an article. Only the author, or an actor allowed to
// delete any article, may do so.
func (s *articleService) Delete(ctx context.Context, user *models.Identity, id string) error {
	const op = "article.delete"

	if user == nil {
		return apperr.Unauthenticated(op)
	}
	article, err := s.load(ctx, op, id)
	if err != nil {
		return err
	}
	if article.AuthorID != user.ID && !policy.Can(user, policy.DeleteAnyArticle) {
		return apperr.Forbidden(op, "only the author may delete this article")
	}
	if err := s.apply(op, article, article.Status, models.EventDelete); err != nil {
		return err
	}

	err = s.repos.Tx.WithTransaction(ctx, func(ctx context.Context) error {
		if err := s.repos.Article.Update(ctx, article); err != nil {
			return err
		}
		return s.audit(ctx, user, models.AuditArticleDeleted, "blog", article.ID, map[string]interface{}{
			"by_author": article.AuthorID == user.ID,
		})
	})
	if err != nil {
		return s.fail(op, err, id)
	}
	recordTransition(models.EventDelete, article.Status)

	s.log.Info().Str("article_id", id).Str("actor_id", user.ID).Msg("Article deleted")
	return nil
}

// ListOwn returns the user's non-deleted articles, most recently updated first
func (s *articleService) ListOwn(ctx context.Context, user *models.Identity, view models.OwnView) ([]*models.Article, error) {
	const op = "article.list_own"

	if user == nil {
		return nil, apperr.Unauthenticated(op)
	}
	all, err := s.repos.Article.ListByAuthor(ctx, user.ID)
	if err != nil {
		return nil, s.fail(op, err, "")
	}

	out := make([]*models.Article, 0, len(all))
	for _, a := range all {
		if view.Matches(a.Status) {
			out = append(out, a)
		}
	}
	return out, nil
}

// Get resolves an article by id or slug and applies the read rule
func (s *articleService) Get(ctx context.Context, viewer *models.Identity, ref string) (*models.Article, error) {
	const op = "article.get"

	var (
		article *models.Article
		err     error
	)
	if validation.IsValidUUID(ref) {
		article, err = s.repos.Article.GetByID(ctx, ref)
	} else {
		article, err = s.repos.Article.GetBySlug(ctx, ref)
	}
	if err != nil {
		return nil, s.fail(op, err, ref)
	}
	if !policy.CanRead(viewer, article) {
		return nil, nil
	}
	return article, nil
}

// ListPublic returns every PUBLISHED and PUBLIC article
func (s *articleService) ListPublic(ctx context.Context) ([]*models.Article, error) {
	articles, err := s.repos.Article.ListPublic(ctx)
	if err != nil {
		return nil, s.fail("article.list_public", err, "")
	}
	return articles, nil
}

// ListReviewQueue returns articles awaiting review, oldest first
func (s *articleService) ListReviewQueue(ctx context.Context, actor *models.Identity) ([]*models.Article, error) {
	const op = "article.review_queue"

	if actor == nil {
		return nil, apperr.Unauthenticated(op)
	}
	if !policy.Can(actor, policy.ReviewArticles) {
		return nil, apperr.Forbidden(op, "not allowed to review articles")
	}
	articles, err := s.repos.Article.ListByStatus(ctx, models.StatusPendingReview)
	if err != nil {
		return nil, s.fail(op, err, "")
	}
	return articles, nil
}

// RecordView counts one read of a publicly visible article
func (s *articleService) RecordView(ctx context.Context, id string) error {
	const op = "article.view"

	article, err := s.repos.Article.GetByID(ctx, id)
	if err != nil {
		return s.fail(op, err, id)
	}
	if article == nil || !article.IsPubliclyVisible() {
		return apperr.NotFound(op, "article not found")
	}
	if err := s.repos.Article.IncrementViews(ctx, id); err != nil {
		return s.fail(op, err, id)
	}
	return nil
}

// resolveSlug derives a slug from title that no other article uses,
// following the configured collision policy
func (s *articleService) resolveSlug(ctx context.Context, op, title, articleID string) (string, error) {
	base := slug.Generate(title)
	if base == "" {
		// titles without ASCII alphanumerics still need an addressable slug
		base = "article-" + strings.SplitN(articleID, "-", 2)[0]
	}

	attempts := 1
	if s.policy.SlugPolicy == config.SlugSuffix {
		attempts = s.policy.MaxSlugAttempts
	}

	for n := 1; n <= attempts; n++ {
		candidate := slug.WithSuffix(base, n)
		taken, err := s.repos.Article.SlugExists(ctx, candidate, articleID)
		if err != nil {
			return "", s.fail(op, err, articleID)
		}
		if !taken {
			return candidate, nil
		}
	}
	return "", apperr.Conflict(op, fmt.Sprintf("slug %q is already taken", base))
}

func (s *articleService) load(ctx context.Context, op, id string) (*models.Article, error) {
	if !validation.IsValidUUID(id) {
		return nil, apperr.NotFound(op, "article not found")
	}
	article, err := s.repos.Article.GetByID(ctx, id)
	if err != nil {
		return nil, s.fail(op, err, id)
	}
	if article == nil || article.Status == models.StatusDeleted {
		return nil, apperr.NotFound(op, "article not found")
	}
	return article, nil
}

// loadOwned loads an article the user authored. Articles of other authors
// are reported as Forbidden.
func (s *articleService) loadOwned(ctx context.Context, op string, user *models.Identity, id string) (*models.Article, error) {
	if user == nil {
		return nil, apperr.Unauthenticated(op)
	}
	article, err := s.load(ctx, op, id)
	if err != nil {
		return nil, err
	}
	if article.AuthorID != user.ID {
		return nil, apperr.Forbidden(op, "only the author may change this article")
	}
	return article, nil
}

func (s *articleService) loadForModeration(ctx context.Context, op string, actor *models.Identity, capability policy.Capability, id string) (*models.Article, error) {
	if actor == nil {
		return nil, apperr.Unauthenticated(op)
	}
	if !policy.Can(actor, capability) {
		return nil, apperr.Forbidden(op, "not allowed to moderate articles")
	}
	return s.load(ctx, op, id)
}

// apply moves article along the lifecycle from the given status
func (s *articleService) apply(op string, article *models.Article, from models.BlogStatus, event models.LifecycleEvent) error {
	next, ok := from.Next(event)
	if !ok {
		return apperr.Conflict(op, fmt.Sprintf("cannot %s an article in status %s", event, article.Status))
	}
	article.Status = next
	article.UpdatedAt = s.now()
	return nil
}

// recordTransition counts a lifecycle move once it is stored
func recordTransition(event models.LifecycleEvent, status models.BlogStatus) {
	metrics.Transitions.WithLabelValues(string(event), string(status)).Inc()
}

func (s *articleService) announce(ctx context.Context, article *models.Article) {
	s.publish(ctx, s.log, events.New(events.ArticlePublished, article.ID, article.AuthorID, map[string]interface{}{
		"slug":  article.Slug,
		"title": article.Title,
	}))
}

func (s *articleService) statusChanged(ctx context.Context, article *models.Article, actor *models.Identity) {
	s.publish(ctx, s.log, events.New(events.ArticleStatusChanged, article.ID, actor.ID, map[string]interface{}{
		"status": article.Status,
	}))
}

// fail logs storage failures and classifies err
func (s *articleService) fail(op string, err error, id string) error {
	if apperr.KindOf(err) == "" {
		s.log.Error().Err(err).Str("op", op).Str("article_id", id).Msg("Storage operation failed")
	}
	return apperr.Wrap(op, err)
}

func firstValidationError(op string, errs []validation.ValidationError) error {
	if len(errs) == 0 {
		return nil
	}
	return apperr.Validation(op, errs[0].Field, errs[0].Message)
}

func trimmedOrNil(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
