package models

import (
	"time"

	"github.com/lib/pq"
)

// BlogStatus is the review/lifecycle status of an article
type BlogStatus string

const (
	StatusDraft         BlogStatus = "DRAFT"
	StatusPendingReview BlogStatus = "PENDING_REVIEW"
	StatusPublished     BlogStatus = "PUBLISHED"
	StatusRejected      BlogStatus = "REJECTED"
	StatusHidden        BlogStatus = "HIDDEN"
	StatusDeleted       BlogStatus = "DELETED"
)

// Visibility governs discoverability of a published article
type Visibility string

const (
	VisibilityPublic Visibility = "PUBLIC"
	VisibilityHidden Visibility = "HIDDEN"
)

// ValidVisibilities defines allowed visibility values
var ValidVisibilities = map[Visibility]bool{
	VisibilityPublic: true,
	VisibilityHidden: true,
}

// Article represents a blog article (the "blogs" collection)
type Article struct {
	ID              string         `json:"id" db:"id"`
	Slug            string         `json:"slug" db:"slug"`
	Title           string         `json:"title" db:"title"`
	Content         string         `json:"content" db:"content"`
	CoverImageURL   *string        `json:"cover_image_url,omitempty" db:"cover_image_url"`
	Tags            pq.StringArray `json:"tags" db:"tags"`
	Status          BlogStatus     `json:"status" db:"status"`
	Visibility      Visibility     `json:"visibility" db:"visibility"`
	AuthorID        string         `json:"author_id" db:"author_id"`
	LikesCount      int            `json:"likes_count" db:"likes_count"`
	CommentsCount   int            `json:"comments_count" db:"comments_count"`
	ViewsCount      int            `json:"views_count" db:"views_count"`
	RejectionReason *string        `json:"rejection_reason,omitempty" db:"rejection_reason"`
	ApprovedBy      *string        `json:"approved_by,omitempty" db:"approved_by"`
	PublishedAt     *time.Time     `json:"published_at,omitempty" db:"published_at"`
	CreatedAt       time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at" db:"updated_at"`
}

// IsPubliclyVisible reports whether anonymous readers may see the article
func (a *Article) IsPubliclyVisible() bool {
	return a.Status == StatusPublished && a.Visibility == VisibilityPublic
}

// HasTag reports whether the article carries the given tag
func (a *Article) HasTag(tag string) bool {
	for _, t := range a.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// ArticlePatch holds the author-editable fields of an article.
// Nil fields are left unchanged.
type ArticlePatch struct {
	Title         *string
	Content       *string
	CoverImageURL *string
	Tags          []string
	Visibility    *Visibility
}

// OwnView partitions an author's article list
type OwnView string

const (
	OwnViewAll       OwnView = "all"
	OwnViewPublished OwnView = "published"
	OwnViewDrafts    OwnView = "drafts"
	OwnViewRejected  OwnView = "rejected"
)

// Matches reports whether an article status belongs to the view
func (v OwnView) Matches(status BlogStatus) bool {
	switch v {
	case OwnViewPublished:
		return status == StatusPublished
	case OwnViewDrafts:
		return status == StatusDraft
	case OwnViewRejected:
		return status == StatusRejected
	default:
		return true
	}
}

// ParseOwnView maps a query value to a view, defaulting to all
func ParseOwnView(s string) OwnView {
	switch OwnView(s) {
	case OwnViewPublished, OwnViewDrafts, OwnViewRejected:
		return OwnView(s)
	default:
		return OwnViewAll
	}
}
