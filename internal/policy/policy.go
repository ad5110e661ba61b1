// Package policy centralises role-based authorization decisions.
package policy

import "github.com/devnovate-blog-api/internal/models"

// Capability is an action a role may be permitted to perform
type Capability string

const (
	WriteArticles        Capability = "write_articles"
	Comment              Capability = "comment"
	Like                 Capability = "like"
	ReviewArticles       Capability = "review_articles"
	HideArticles         Capability = "hide_articles"
	DeleteAnyArticle     Capability = "delete_any_article"
	ModerateComments     Capability = "moderate_comments"
	PublishWithoutReview Capability = "publish_without_review"
	ReadAnyArticle       Capability = "read_any_article"
	AssignRoles          Capability = "assign_roles"
	MaintainCounters     Capability = "maintain_counters"
)

var userCapabilities = map[Capability]bool{
	WriteArticles: true,
	Comment:       true,
	Like:          true,
}

var adminCapabilities = map[Capability]bool{
	WriteArticles:        true,
	Comment:              true,
	Like:                 true,
	ReviewArticles:       true,
	HideArticles:         true,
	DeleteAnyArticle:     true,
	ModerateComments:     true,
	PublishWithoutReview: true,
	ReadAnyArticle:       true,
	AssignRoles:          true,
	MaintainCounters:     true,
}

// HasCapability reports whether role may perform action.
// Unknown roles have no capabilities.
func HasCapability(role models.Role, action Capability) bool {
	switch role {
	case models.RoleAdmin:
		return adminCapabilities[action]
	case models.RoleUser:
		return userCapabilities[action]
	default:
		return false
	}
}

// Can is HasCapability for a possibly anonymous identity
func Can(user *models.Identity, action Capability) bool {
	if user == nil {
		return false
	}
	return HasCapability(user.Role, action)
}

// CanRead reports whether user may see the article in its current state.
// Owners see their own non-deleted articles, readers with ReadAnyArticle
// see everything, everyone else only PUBLISHED + PUBLIC.
func CanRead(user *models.Identity, article *models.Article) bool {
	if article == nil {
		return false
	}
	if Can(user, ReadAnyArticle) {
		return true
	}
	if user != nil && user.ID == article.AuthorID && article.Status != models.StatusDeleted {
		return true
	}
	return article.IsPubliclyVisible()
}
