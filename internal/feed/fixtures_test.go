package feed_test

import (
	"time"

	"github.com/devnovate-blog-api/internal/models"
)

const (
	authorSarah  = "64f123a456b789c012d345e8"
	authorMarcus = "64f123a456b789c012d345e9"
	authorEmily  = "64f123a456b789c012d345ea"
)

// fixtureNow is the reference clock for recency boosts in these tests
var fixtureNow = time.Date(2024, 8, 26, 0, 0, 0, 0, time.UTC)

func ts(s string) *time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return &t
}

// mockBlogs returns the six published fixture articles
func mockBlogs() []*models.Article {
	return []*models.Article{
		{
			ID:            "64f123a456b789c012d345f1",
			Title:         "Building Scalable React Applications with TypeScript",
			Slug:          "building-scalable-react-typescript",
			Content:       "In this comprehensive guide, we'll explore best practices for building large-scale React applications using TypeScript.",
			Tags:          []string{"react", "typescript", "architecture", "scalability"},
			Status:        models.StatusPublished,
			Visibility:    models.VisibilityPublic,
			AuthorID:      authorSarah,
			LikesCount:    42,
			CommentsCount: 8,
			ViewsCount:    1250,
			PublishedAt:   ts("2024-08-25T14:30:00Z"),
		},
		{
			ID:            "64f123a456b789c012d345f2",
			Title:         "Modern CSS Techniques for Better User Interfaces",
			Slug:          "modern-css-techniques-better-ui",
			Content:       "Discover the latest CSS features and techniques that can dramatically improve your user interface design.",
			Tags:          []string{"css", "ui", "design", "frontend"},
			Status:        models.StatusPublished,
			Visibility:    models.VisibilityPublic,
			AuthorID:      authorMarcus,
			LikesCount:    38,
			CommentsCount: 12,
			ViewsCount:    980,
			PublishedAt:   ts("2024-08-24T09:15:00Z"),
		},
		{
			ID:            "64f123a456b789c012d345f3",
			Title:         "API Design Best Practices for Node.js Applications",
			Slug:          "api-design-nodejs-best-practices",
			Content:       "Learn how to design robust, secure, and scalable APIs using Node.js and Express.",
			Tags:          []string{"nodejs", "api", "express", "backend"},
			Status:        models.StatusPublished,
			Visibility:    models.VisibilityPublic,
			AuthorID:      authorEmily,
			LikesCount:    56,
			CommentsCount: 15,
			ViewsCount:    1680,
			PublishedAt:   ts("2024-08-23T16:45:00Z"),
		},
		{
			ID:            "64f123a456b789c012d345f4",
			Title:         "Getting Started with Docker for Web Developers",
			Slug:          "docker-web-developers-guide",
			Content:       "Docker has revolutionized how we develop and deploy applications.",
			Tags:          []string{"docker", "devops", "containers", "deployment"},
			Status:        models.StatusPublished,
			Visibility:    models.VisibilityPublic,
			AuthorID:      authorSarah,
			LikesCount:    34,
			CommentsCount: 7,
			ViewsCount:    750,
			PublishedAt:   ts("2024-08-22T11:20:00Z"),
		},
		{
			ID:            "64f123a456b789c012d345f5",
			Title:         "Understanding JavaScript Async/Await Patterns",
			Slug:          "javascript-async-await-patterns",
			Content:       "Asynchronous programming is crucial in modern JavaScript development.",
			Tags:          []string{"javascript", "async", "patterns", "programming"},
			Status:        models.StatusPublished,
			Visibility:    models.VisibilityPublic,
			AuthorID:      authorMarcus,
			LikesCount:    48,
			CommentsCount: 11,
			ViewsCount:    1120,
			PublishedAt:   ts("2024-08-21T08:30:00Z"),
		},
		{
			ID:            "64f123a456b789c012d345f6",
			Title:         "Building Progressive Web Apps with Service Workers",
			Slug:          "progressive-web-apps-service-workers",
			Content:       "Progressive Web Apps offer native-like experiences on the web.",
			Tags:          []string{"pwa", "service-workers", "web-app", "offline"},
			Status:        models.StatusPublished,
			Visibility:    models.VisibilityPublic,
			AuthorID:      authorEmily,
			LikesCount:    29,
			CommentsCount: 5,
			ViewsCount:    650,
			PublishedAt:   ts("2024-08-20T13:15:00Z"),
		},
	}
}

func ids(articles []*models.Article) []string {
	out := make([]string, len(articles))
	for i, a := range articles {
		out[i] = a.ID[len(a.ID)-2:]
	}
	return out
}
