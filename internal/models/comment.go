package models

import (
	"time"
)

// CommentStatus is the moderation status of a comment
type CommentStatus string

const (
	CommentVisible CommentStatus = "VISIBLE"
	CommentHidden  CommentStatus = "HIDDEN"
	CommentDeleted CommentStatus = "DELETED"
)

// ValidCommentStatuses defines allowed comment statuses
var ValidCommentStatuses = map[CommentStatus]bool{
	CommentVisible: true,
	CommentHidden:  true,
	CommentDeleted: true,
}

// Comment represents a comment on an article
type Comment struct {
	ID        string        `json:"id" db:"id"`
	ArticleID string        `json:"blog_id" db:"blog_id"`
	AuthorID  string        `json:"author_id" db:"author_id"`
	Content   string        `json:"content" db:"content"`
	Status    CommentStatus `json:"status" db:"status"`
	CreatedAt time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt time.Time     `json:"updated_at" db:"updated_at"`

	// Author is the commenter's profile, joined for display
	Author *ProfileSummary `json:"author,omitempty" db:"-"`
}

// MaxCommentWords is the maximum allowed words in a comment body
const MaxCommentWords = 500

// Like is one user's endorsement of one article
type Like struct {
	ID        string    `json:"id" db:"id"`
	ArticleID string    `json:"blog_id" db:"blog_id"`
	UserID    string    `json:"user_id" db:"user_id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
