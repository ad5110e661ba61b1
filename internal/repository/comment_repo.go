package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/devnovate-blog-api/internal/database"
	"github.com/devnovate-blog-api/internal/models"
	"github.com/jmoiron/sqlx"
)

// commentRepo is the concrete implementation of CommentRepository
type commentRepo struct {
	db *database.DB
}

// NewCommentRepo creates a new comment repository
func NewCommentRepo(db *database.DB) CommentRepository {
	return &commentRepo{db: db}
}

// commentRow carries the joined profile columns
type commentRow struct {
	models.Comment
	AuthorName      sql.NullString `db:"author_name"`
	AuthorAvatarURL sql.NullString `db:"author_avatar_url"`
}

func (row *commentRow) toModel() *models.Comment {
	c := row.Comment
	if row.AuthorName.Valid {
		c.Author = &models.ProfileSummary{UserID: c.AuthorID, Name: row.AuthorName.String}
		if row.AuthorAvatarURL.Valid {
			avatar := row.AuthorAvatarURL.String
			c.Author.AvatarURL = &avatar
		}
	}
	return &c
}

// Create inserts a new comment
func (r *commentRepo) Create(ctx context.Context, comment *models.Comment) error {
	query := `
		INSERT INTO comments (id, blog_id, author_id, content, status, created_at, updated_at)
		VALUES (:id, :blog_id, :author_id, :content, :status, :created_at, :updated_at)
	`
	_, err := sqlx.NamedExecContext(ctx, r.db.Executor(ctx), query, comment)
	return err
}

// GetByID retrieves a comment by ID
func (r *commentRepo) GetByID(ctx context.Context, id string) (*models.Comment, error) {
	var comment models.Comment
	err := sqlx.GetContext(ctx, r.db.Executor(ctx), &comment,
		`SELECT id, blog_id, author_id, content, status, created_at, updated_at FROM comments WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) || IsInvalidInput(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &comment, nil
}

// UpdateStatus changes the moderation status. comments_count follows via trigger.
func (r *commentRepo) UpdateStatus(ctx context.Context, id string, status models.CommentStatus) error {
	_, err := r.db.Executor(ctx).ExecContext(ctx,
		"UPDATE comments SET status = $1, updated_at = $2 WHERE id = $3", status, time.Now().UTC(), id)
	return err
}

// StreamVisible streams an article's VISIBLE comments newest-first
func (r *commentRepo) StreamVisible(ctx context.Context, articleID string, callback func(*models.Comment) error) error {
	query := `
		SELECT c.id, c.blog_id, c.author_id, c.content, c.status, c.created_at, c.updated_at,
			p.name AS author_name, p.avatar_url AS author_avatar_url
		FROM comments c
		LEFT JOIN profiles p ON p.user_id = c.author_id
		WHERE c.blog_id = $1 AND c.status = 'VISIBLE'
		ORDER BY c.created_at DESC, c.id DESC
	`
	rows, err := r.db.Executor(ctx).QueryxContext(ctx, query, articleID)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var row commentRow
		if err := rows.StructScan(&row); err != nil {
			return err
		}
		if err := callback(row.toModel()); err != nil {
			return err
		}
	}

	return rows.Err()
}

// CountVisible returns the number of VISIBLE comments on an article
func (r *commentRepo) CountVisible(ctx context.Context, articleID string) (int, error) {
	var count int
	err := sqlx.GetContext(ctx, r.db.Executor(ctx), &count,
		"SELECT COUNT(*) FROM comments WHERE blog_id = $1 AND status = 'VISIBLE'", articleID)
	return count, err
}

// Count returns the total number of comments
func (r *commentRepo) Count(ctx context.Context) (int, error) {
	var count int
	err := sqlx.GetContext(ctx, r.db.Executor(ctx), &count, "SELECT COUNT(*) FROM comments")
	return count, err
}
