package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/devnovate-blog-api/internal/database"
	"github.com/devnovate-blog-api/internal/models"
	"github.com/jmoiron/sqlx"
)

type profileRepo struct {
	db *database.DB
}

// NewProfileRepo creates a new profile repository
func NewProfileRepo(db *database.DB) ProfileRepository {
	return &profileRepo{db: db}
}

// Upsert inserts or updates a profile keyed by user_id
func (r *profileRepo) Upsert(ctx context.Context, profile *models.Profile) error {
	query := `
		INSERT INTO profiles (id, user_id, name, avatar_url, bio, created_at, updated_at)
		VALUES (:id, :user_id, :name, :avatar_url, :bio, :created_at, :updated_at)
		ON CONFLICT (user_id) DO UPDATE SET
			name = EXCLUDED.name,
			avatar_url = EXCLUDED.avatar_url,
			bio = EXCLUDED.bio,
			updated_at = EXCLUDED.updated_at
	`
	_, err := sqlx.NamedExecContext(ctx, r.db.Executor(ctx), query, profile)
	return err
}

// GetByUserID retrieves a profile by user ID
func (r *profileRepo) GetByUserID(ctx context.Context, userID string) (*models.Profile, error) {
	var profile models.Profile
	err := sqlx.GetContext(ctx, r.db.Executor(ctx), &profile,
		`SELECT id, user_id, name, avatar_url, bio, created_at, updated_at FROM profiles WHERE user_id = $1`, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

type roleRepo struct {
	db *database.DB
}

// NewRoleRepo creates a new role repository
func NewRoleRepo(db *database.DB) RoleRepository {
	return &roleRepo{db: db}
}

// GetByUserID returns the user's role assignment
func (r *roleRepo) GetByUserID(ctx context.Context, userID string) (*models.RoleAssignment, error) {
	var ra models.RoleAssignment
	err := sqlx.GetContext(ctx, r.db.Executor(ctx), &ra,
		`SELECT id, user_id, role, created_at FROM user_roles WHERE user_id = $1`, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &ra, nil
}

// Upsert sets the user's single role
func (r *roleRepo) Upsert(ctx context.Context, assignment *models.RoleAssignment) error {
	query := `
		INSERT INTO user_roles (id, user_id, role, created_at)
		VALUES (:id, :user_id, :role, :created_at)
		ON CONFLICT (user_id) DO UPDATE SET role = EXCLUDED.role
	`
	_, err := sqlx.NamedExecContext(ctx, r.db.Executor(ctx), query, assignment)
	return err
}
