package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/devnovate-blog-api/internal/database"
	"github.com/devnovate-blog-api/internal/models"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

const articleColumns = `id, slug, title, content, cover_image_url, tags, status, visibility, author_id,
	likes_count, comments_count, views_count, rejection_reason, approved_by,
	published_at, created_at, updated_at`

// articleRepo is the concrete implementation of ArticleRepository
type articleRepo struct {
	db *database.DB
}

// NewArticleRepo creates a new article repository
func NewArticleRepo(db *database.DB) ArticleRepository {
	return &articleRepo{db: db}
}

// Create inserts a new article. Counters start at zero and are owned by
// triggers afterwards.
func (r *articleRepo) Create(ctx context.Context, article *models.Article) error {
	if article.Tags == nil {
		article.Tags = pq.StringArray{}
	}

	query := `
		INSERT INTO blogs (id, slug, title, content, cover_image_url, tags, status, visibility, author_id,
			rejection_reason, approved_by, published_at, created_at, updated_at)
		VALUES (:id, :slug, :title, :content, :cover_image_url, :tags, :status, :visibility, :author_id,
			:rejection_reason, :approved_by, :published_at, :created_at, :updated_at)
	`
	_, err := sqlx.NamedExecContext(ctx, r.db.Executor(ctx), query, article)
	return err
}

// Update writes the author/moderator-editable columns of an article
func (r *articleRepo) Update(ctx context.Context, article *models.Article) error {
	if article.Tags == nil {
		article.Tags = pq.StringArray{}
	}

	query := `
		UPDATE blogs SET
			slug = :slug,
			title = :title,
			content = :content,
			cover_image_url = :cover_image_url,
			tags = :tags,
			status = :status,
			visibility = :visibility,
			rejection_reason = :rejection_reason,
			approved_by = :approved_by,
			published_at = :published_at,
			updated_at = :updated_at
		WHERE id = :id
	`
	_, err := sqlx.NamedExecContext(ctx, r.db.Executor(ctx), query, article)
	return err
}

// GetByID retrieves an article by ID
func (r *articleRepo) GetByID(ctx context.Context, id string) (*models.Article, error) {
	return r.getOne(ctx, `SELECT `+articleColumns+` FROM blogs WHERE id = $1`, id)
}

// GetBySlug retrieves an article by slug
func (r *articleRepo) GetBySlug(ctx context.Context, slug string) (*models.Article, error) {
	return r.getOne(ctx, `SELECT `+articleColumns+` FROM blogs WHERE slug = $1`, slug)
}

func (r *articleRepo) getOne(ctx context.Context, query string, arg interface{}) (*models.Article, error) {
	var article models.Article
	err := sqlx.GetContext(ctx, r.db.Executor(ctx), &article, query, arg)
	if errors.Is(err, sql.ErrNoRows) || IsInvalidInput(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &article, nil
}

// SlugExists checks if another article already uses the slug
func (r *articleRepo) SlugExists(ctx context.Context, slug, excludeID string) (bool, error) {
	var exists bool
	err := sqlx.GetContext(ctx, r.db.Executor(ctx), &exists,
		"SELECT EXISTS(SELECT 1 FROM blogs WHERE slug = $1 AND id::text <> $2)", slug, excludeID)
	return exists, err
}

// ListByAuthor returns the author's non-deleted articles, most recently
// updated first
func (r *articleRepo) ListByAuthor(ctx context.Context, authorID string) ([]*models.Article, error) {
	query := `SELECT ` + articleColumns + ` FROM blogs
		WHERE author_id = $1 AND status <> 'DELETED'
		ORDER BY updated_at DESC`
	return r.list(ctx, query, authorID)
}

// ListPublic returns every PUBLISHED and PUBLIC article, newest first
func (r *articleRepo) ListPublic(ctx context.Context) ([]*models.Article, error) {
	query := `SELECT ` + articleColumns + ` FROM blogs
		WHERE status = 'PUBLISHED' AND visibility = 'PUBLIC'
		ORDER BY published_at DESC`
	return r.list(ctx, query)
}

// ListByStatus returns articles in a status, oldest first
func (r *articleRepo) ListByStatus(ctx context.Context, status models.BlogStatus) ([]*models.Article, error) {
	query := `SELECT ` + articleColumns + ` FROM blogs WHERE status = $1 ORDER BY created_at`
	return r.list(ctx, query, status)
}

func (r *articleRepo) list(ctx context.Context, query string, args ...interface{}) ([]*models.Article, error) {
	articles := []*models.Article{}
	if err := sqlx.SelectContext(ctx, r.db.Executor(ctx), &articles, query, args...); err != nil {
		return nil, err
	}
	return articles, nil
}

// IncrementViews bumps the view counter
func (r *articleRepo) IncrementViews(ctx context.Context, id string) error {
	_, err := r.db.Executor(ctx).ExecContext(ctx, "UPDATE blogs SET views_count = views_count + 1 WHERE id = $1", id)
	return err
}

// ReconcileCounters recomputes likes_count and comments_count from the
// child tables and returns how many articles were corrected
func (r *articleRepo) ReconcileCounters(ctx context.Context) (int64, error) {
	query := `
		UPDATE blogs b SET
			likes_count = c.likes,
			comments_count = c.comments
		FROM (
			SELECT b2.id,
				(SELECT COUNT(*) FROM likes l WHERE l.blog_id = b2.id) AS likes,
				(SELECT COUNT(*) FROM comments cm WHERE cm.blog_id = b2.id AND cm.status = 'VISIBLE') AS comments
			FROM blogs b2
		) c
		WHERE b.id = c.id AND (b.likes_count <> c.likes OR b.comments_count <> c.comments)
	`
	res, err := r.db.Executor(ctx).ExecContext(ctx, query)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// Count returns the total number of articles
func (r *articleRepo) Count(ctx context.Context) (int, error) {
	var count int
	err := sqlx.GetContext(ctx, r.db.Executor(ctx), &count, "SELECT COUNT(*) FROM blogs")
	return count, err
}
