package service

import (
	"context"
	"strings"

	"github.com/devnovate-blog-api/internal/apperr"
	"github.com/devnovate-blog-api/internal/models"
	"github.com/devnovate-blog-api/internal/policy"
	"github.com/devnovate-blog-api/internal/validation"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// SystemActor is the identity used by operator tooling
var SystemActor = &models.Identity{ID: "system", Role: models.RoleAdmin}

type sessionService struct {
	*base
	log zerolog.Logger
}

func newSessionService(b *base, log zerolog.Logger) *sessionService {
	return &sessionService{
		base: b,
		log:  log.With().Str("service", "session").Logger(),
	}
}

// Init runs on sign-in: it resolves the user's role and makes sure a
// display profile exists
func (s *sessionService) Init(ctx context.Context, userID, email string) (*models.Identity, error) {
	const op = "session.init"

	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, apperr.Unauthenticated(op)
	}

	role, err := s.ResolveRole(ctx, userID)
	if err != nil {
		return nil, err
	}

	profile, err := s.repos.Profile.GetByUserID(ctx, userID)
	if err != nil {
		return nil, s.fail(op, err, userID)
	}
	if profile == nil {
		now := s.now()
		profile = &models.Profile{
			ID:        uuid.New().String(),
			UserID:    userID,
			Name:      displayName(email, userID),
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := s.repos.Profile.Upsert(ctx, profile); err != nil {
			return nil, s.fail(op, err, userID)
		}
	}

	s.log.Info().Str("user_id", userID).Str("role", string(role)).Msg("Session initialised")
	return &models.Identity{ID: userID, Email: email, Role: role}, nil
}

// Clear runs on sign-out
func (s *sessionService) Clear(ctx context.Context, user *models.Identity) error {
	if user != nil {
		s.log.Info().Str("user_id", user.ID).Msg("Session cleared")
	}
	return nil
}

// ResolveRole returns the user's role, USER when none is assigned
func (s *sessionService) ResolveRole(ctx context.Context, userID string) (models.Role, error) {
	ra, err := s.repos.Role.GetByUserID(ctx, userID)
	if err != nil {
		return "", s.fail("session.resolve_role", err, userID)
	}
	if ra == nil || !models.ValidRoles[ra.Role] {
		return models.RoleUser, nil
	}
	return ra.Role, nil
}

// AssignRole sets a user's role
func (s *sessionService) AssignRole(ctx context.Context, actor *models.Identity, userID string, role models.Role) (*models.RoleAssignment, error) {
	const op = "session.assign_role"

	if actor == nil {
		return nil, apperr.Unauthenticated(op)
	}
	if !policy.Can(actor, policy.AssignRoles) {
		return nil, apperr.Forbidden(op, "not allowed to assign roles")
	}
	if strings.TrimSpace(userID) == "" {
		return nil, apperr.Validation(op, "user_id", "user_id is required")
	}
	if !models.ValidRoles[role] {
		return nil, apperr.Validation(op, "role", "role must be one of: USER, ADMIN")
	}

	ra := &models.RoleAssignment{
		ID:        uuid.New().String(),
		UserID:    userID,
		Role:      role,
		CreatedAt: s.now(),
	}
	err := s.repos.Tx.WithTransaction(ctx, func(ctx context.Context) error {
		if err := s.repos.Role.Upsert(ctx, ra); err != nil {
			return err
		}
		return s.audit(ctx, actor, models.AuditRoleAssigned, "user", userID, map[string]interface{}{"role": role})
	})
	if err != nil {
		return nil, s.fail(op, err, userID)
	}

	s.log.Info().Str("user_id", userID).Str("role", string(role)).Str("actor_id", actor.ID).Msg("Role assigned")
	return ra, nil
}

func (s *sessionService) fail(op string, err error, userID string) error {
	if apperr.KindOf(err) == "" {
		s.log.Error().Err(err).Str("op", op).Str("user_id", userID).Msg("Storage operation failed")
	}
	return apperr.Wrap(op, err)
}

// displayName derives an initial profile name from the email local part
func displayName(email, fallback string) string {
	if at := strings.IndexByte(email, '@'); at > 0 {
		return email[:at]
	}
	return fallback
}

type profileService struct {
	*base
	log zerolog.Logger
}

func newProfileService(b *base, log zerolog.Logger) *profileService {
	return &profileService{
		base: b,
		log:  log.With().Str("service", "profile").Logger(),
	}
}

// Get returns a user's public profile
func (s *profileService) Get(ctx context.Context, userID string) (*models.Profile, error) {
	const op = "profile.get"

	profile, err := s.repos.Profile.GetByUserID(ctx, userID)
	if err != nil {
		s.log.Error().Err(err).Str("user_id", userID).Msg("Failed to load profile")
		return nil, apperr.Wrap(op, err)
	}
	if profile == nil {
		return nil, apperr.NotFound(op, "profile not found")
	}
	return profile, nil
}

// Update replaces the user's editable profile fields
func (s *profileService) Update(ctx context.Context, user *models.Identity, input ProfileInput) (*models.Profile, error) {
	const op = "profile.update"

	if user == nil {
		return nil, apperr.Unauthenticated(op)
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, apperr.Validation(op, "name", "name is required")
	}
	if len(name) > validation.MaxNameLength {
		return nil, apperr.Validation(op, "name", "name is too long")
	}
	bio := trimmedOrNil(input.Bio)
	if bio != nil && len(*bio) > validation.MaxBioLength {
		return nil, apperr.Validation(op, "bio", "bio is too long")
	}

	now := s.now()
	profile := &models.Profile{
		ID:        uuid.New().String(),
		UserID:    user.ID,
		Name:      name,
		AvatarURL: trimmedOrNil(input.AvatarURL),
		Bio:       bio,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repos.Profile.Upsert(ctx, profile); err != nil {
		s.log.Error().Err(err).Str("user_id", user.ID).Msg("Failed to update profile")
		return nil, apperr.Wrap(op, err)
	}

	// return the stored row so id and created_at reflect an existing profile
	stored, err := s.repos.Profile.GetByUserID(ctx, user.ID)
	if err != nil || stored == nil {
		return profile, nil
	}
	return stored, nil
}
