package models

import (
	"time"
)

// Role is the single role assigned to a user
type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

// ValidRoles defines allowed user roles
var ValidRoles = map[Role]bool{
	RoleUser:  true,
	RoleAdmin: true,
}

// Identity is the authenticated user as supplied by the identity provider
type Identity struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Role  Role   `json:"role"`
}

// RoleAssignment maps a user to a role (the "user_roles" collection)
type RoleAssignment struct {
	ID        string    `json:"id" db:"id"`
	UserID    string    `json:"user_id" db:"user_id"`
	Role      Role      `json:"role" db:"role"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Profile is the 1:1 display extension of a user identity
type Profile struct {
	ID        string    `json:"id" db:"id"`
	UserID    string    `json:"user_id" db:"user_id"`
	Name      string    `json:"name" db:"name"`
	AvatarURL *string   `json:"avatar_url,omitempty" db:"avatar_url"`
	Bio       *string   `json:"bio,omitempty" db:"bio"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// ProfileSummary is the subset of a profile shown next to content
type ProfileSummary struct {
	UserID    string  `json:"user_id" db:"user_id"`
	Name      string  `json:"name" db:"name"`
	AvatarURL *string `json:"avatar_url,omitempty" db:"avatar_url"`
}

// Summary returns the display subset of the profile
func (p *Profile) Summary() *ProfileSummary {
	return &ProfileSummary{UserID: p.UserID, Name: p.Name, AvatarURL: p.AvatarURL}
}
