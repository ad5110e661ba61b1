package repository

import (
	"context"

	"github.com/devnovate-blog-api/internal/database"
	"github.com/devnovate-blog-api/internal/models"
	"github.com/jmoiron/sqlx"
)

type likeRepo struct {
	db *database.DB
}

// NewLikeRepo creates a new like repository
func NewLikeRepo(db *database.DB) LikeRepository {
	return &likeRepo{db: db}
}

// Create inserts a like. A second like by the same user fails with a
// unique violation on likes_blog_user_key.
func (r *likeRepo) Create(ctx context.Context, like *models.Like) error {
	_, err := sqlx.NamedExecContext(ctx, r.db.Executor(ctx),
		`INSERT INTO likes (id, blog_id, user_id, created_at) VALUES (:id, :blog_id, :user_id, :created_at)`, like)
	return err
}

// Delete removes the user's like and reports whether one existed
func (r *likeRepo) Delete(ctx context.Context, articleID, userID string) (bool, error) {
	res, err := r.db.Executor(ctx).ExecContext(ctx,
		"DELETE FROM likes WHERE blog_id = $1 AND user_id = $2", articleID, userID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// Exists checks whether the user likes the article
func (r *likeRepo) Exists(ctx context.Context, articleID, userID string) (bool, error) {
	var exists bool
	err := sqlx.GetContext(ctx, r.db.Executor(ctx), &exists,
		"SELECT EXISTS(SELECT 1 FROM likes WHERE blog_id = $1 AND user_id = $2)", articleID, userID)
	return exists, err
}

// CountByArticle returns the number of likes rows for an article
func (r *likeRepo) CountByArticle(ctx context.Context, articleID string) (int, error) {
	var count int
	err := sqlx.GetContext(ctx, r.db.Executor(ctx), &count, "SELECT COUNT(*) FROM likes WHERE blog_id = $1", articleID)
	return count, err
}

// Count returns the total number of likes
func (r *likeRepo) Count(ctx context.Context) (int, error) {
	var count int
	err := sqlx.GetContext(ctx, r.db.Executor(ctx), &count, "SELECT COUNT(*) FROM likes")
	return count, err
}
