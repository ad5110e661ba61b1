package client

import "time"

// Article is an article as the API returns it
type Article struct {
	ID              string     `json:"id"`
	Slug            string     `json:"slug"`
	Title           string     `json:"title"`
	Content         string     `json:"content"`
	CoverImageURL   *string    `json:"cover_image_url,omitempty"`
	Tags            []string   `json:"tags"`
	Status          string     `json:"status"`
	Visibility      string     `json:"visibility"`
	AuthorID        string     `json:"author_id"`
	LikesCount      int        `json:"likes_count"`
	CommentsCount   int        `json:"comments_count"`
	ViewsCount      int        `json:"views_count"`
	RejectionReason *string    `json:"rejection_reason,omitempty"`
	ApprovedBy      *string    `json:"approved_by,omitempty"`
	PublishedAt     *time.Time `json:"published_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// Author is the public profile shown next to a comment
type Author struct {
	UserID    string  `json:"user_id"`
	Name      string  `json:"name"`
	AvatarURL *string `json:"avatar_url,omitempty"`
}

// Comment is a comment as the API returns it
type Comment struct {
	ID        string    `json:"id"`
	ArticleID string    `json:"blog_id"`
	AuthorID  string    `json:"author_id"`
	Content   string    `json:"content"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Author    *Author   `json:"author,omitempty"`
}
