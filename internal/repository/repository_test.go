package repository_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/devnovate-blog-api/internal/mocks"
	"github.com/devnovate-blog-api/internal/models"
	"github.com/devnovate-blog-api/internal/repository"
	"github.com/lib/pq"
)

func newArticle(id, slug string) *models.Article {
	now := time.Now()
	return &models.Article{
		ID:         id,
		Slug:       slug,
		Title:      "Title " + id,
		Content:    "Body",
		Tags:       pq.StringArray{"go"},
		Status:     models.StatusPublished,
		Visibility: models.VisibilityPublic,
		AuthorID:   "author-1",
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

func TestIsUniqueViolation(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"constructed", repository.UniqueViolation("idx_blogs_slug"), true},
		{"wrapped", fmt.Errorf("insert: %w", repository.UniqueViolation("likes_blog_user_key")), true},
		{"other pq code", &pq.Error{Code: "23503"}, false},
		{"plain", errors.New("boom"), false},
		{"nil", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := repository.IsUniqueViolation(tt.err); got != tt.want {
				t.Errorf("IsUniqueViolation() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIsInvalidInput(t *testing.T) {
	if !repository.IsInvalidInput(fmt.Errorf("get: %w", &pq.Error{Code: "22P02"})) {
		t.Error("Expected a uuid cast failure to be invalid input")
	}
	if repository.IsInvalidInput(repository.UniqueViolation("idx_blogs_slug")) {
		t.Error("Expected a unique violation not to be invalid input")
	}
	if repository.IsInvalidInput(nil) {
		t.Error("Expected nil not to be invalid input")
	}
}

func TestMockArticleRepository_SlugUniqueness(t *testing.T) {
	repos, _ := mocks.NewRepositories()
	ctx := context.Background()

	if err := repos.Article.Create(ctx, newArticle("a1", "hello")); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	err := repos.Article.Create(ctx, newArticle("a2", "hello"))
	if !repository.IsUniqueViolation(err) {
		t.Fatalf("expected unique violation, got %v", err)
	}

	taken, err := repos.Article.SlugExists(ctx, "hello", "")
	if err != nil || !taken {
		t.Errorf("SlugExists = %v, %v; want true", taken, err)
	}
	taken, _ = repos.Article.SlugExists(ctx, "hello", "a1")
	if taken {
		t.Error("SlugExists should ignore the excluded article")
	}
}

func TestMockArticleRepository_CreateZeroesCounters(t *testing.T) {
	repos, store := mocks.NewRepositories()
	a := newArticle("a1", "s1")
	a.LikesCount, a.CommentsCount = 9, 9

	if err := repos.Article.Create(context.Background(), a); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	got := store.Article("a1")
	if got.LikesCount != 0 || got.CommentsCount != 0 {
		t.Errorf("counters = %d/%d, want 0/0", got.LikesCount, got.CommentsCount)
	}
}

func TestMockLikeRepository_MaintainsCounter(t *testing.T) {
	repos, store := mocks.NewRepositories()
	ctx := context.Background()
	store.PutArticle(newArticle("a1", "s1"))

	for _, user := range []string{"u1", "u2"} {
		if err := repos.Like.Create(ctx, &models.Like{ID: "l-" + user, ArticleID: "a1", UserID: user}); err != nil {
			t.Fatalf("Create failed: %v", err)
		}
	}
	if err := repos.Like.Create(ctx, &models.Like{ID: "l-dup", ArticleID: "a1", UserID: "u1"}); !repository.IsUniqueViolation(err) {
		t.Errorf("duplicate like: got %v, want unique violation", err)
	}
	if got := store.Article("a1").LikesCount; got != 2 {
		t.Errorf("LikesCount = %d, want 2", got)
	}

	removed, err := repos.Like.Delete(ctx, "a1", "u1")
	if err != nil || !removed {
		t.Fatalf("Delete = %v, %v", removed, err)
	}
	removed, _ = repos.Like.Delete(ctx, "a1", "u1")
	if removed {
		t.Error("second Delete should report nothing removed")
	}
	if got := store.Article("a1").LikesCount; got != 1 {
		t.Errorf("LikesCount = %d, want 1", got)
	}
}

func TestMockCommentRepository_StreamVisible(t *testing.T) {
	repos, store := mocks.NewRepositories()
	ctx := context.Background()
	store.PutArticle(newArticle("a1", "s1"))
	store.PutProfile(&models.Profile{ID: "p1", UserID: "u1", Name: "Una"})

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, status := range []models.CommentStatus{models.CommentVisible, models.CommentHidden, models.CommentVisible} {
		c := &models.Comment{
			ID:        fmt.Sprintf("c%d", i),
			ArticleID: "a1",
			AuthorID:  "u1",
			Content:   "x",
			Status:    status,
			CreatedAt: base.Add(time.Duration(i) * time.Hour),
		}
		if err := repos.Comment.Create(ctx, c); err != nil {
			t.Fatalf("Create failed: %v", err)
		}
	}

	var ids []string
	err := repos.Comment.StreamVisible(ctx, "a1", func(c *models.Comment) error {
		if c.Author == nil || c.Author.Name != "Una" {
			t.Errorf("comment %s missing author summary", c.ID)
		}
		ids = append(ids, c.ID)
		return nil
	})
	if err != nil {
		t.Fatalf("StreamVisible failed: %v", err)
	}
	if len(ids) != 2 || ids[0] != "c2" || ids[1] != "c0" {
		t.Errorf("ids = %v, want [c2 c0]", ids)
	}
	if got := store.Article("a1").CommentsCount; got != 2 {
		t.Errorf("CommentsCount = %d, want 2", got)
	}

	stop := errors.New("stop")
	calls := 0
	err = repos.Comment.StreamVisible(ctx, "a1", func(*models.Comment) error {
		calls++
		return stop
	})
	if !errors.Is(err, stop) || calls != 1 {
		t.Errorf("callback error should end the stream: err=%v calls=%d", err, calls)
	}
}

func TestMockCommentRepository_UpdateStatusAdjustsCounter(t *testing.T) {
	repos, store := mocks.NewRepositories()
	ctx := context.Background()
	store.PutArticle(newArticle("a1", "s1"))
	_ = repos.Comment.Create(ctx, &models.Comment{ID: "c1", ArticleID: "a1", Status: models.CommentVisible})

	steps := []struct {
		status models.CommentStatus
		want   int
	}{
		{models.CommentHidden, 0},
		{models.CommentDeleted, 0},
		{models.CommentVisible, 1},
	}
	for _, step := range steps {
		if err := repos.Comment.UpdateStatus(ctx, "c1", step.status); err != nil {
			t.Fatalf("UpdateStatus failed: %v", err)
		}
		if got := store.Article("a1").CommentsCount; got != step.want {
			t.Errorf("after %s CommentsCount = %d, want %d", step.status, got, step.want)
		}
	}
}

func TestMockNotificationRepository_NewestFirst(t *testing.T) {
	repos, _ := mocks.NewRepositories()
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_ = repos.Notification.Create(ctx, &models.Notification{ID: fmt.Sprintf("n%d", i), UserID: "u1", Type: models.NotificationNewComment})
	}
	_ = repos.Notification.Create(ctx, &models.Notification{ID: "other", UserID: "u2", Type: models.NotificationNewComment})

	list, err := repos.Notification.ListByUser(ctx, "u1", 2)
	if err != nil {
		t.Fatalf("ListByUser failed: %v", err)
	}
	if len(list) != 2 || list[0].ID != "n2" || list[1].ID != "n1" {
		t.Errorf("ListByUser = %v", list)
	}

	ok, _ := repos.Notification.MarkRead(ctx, "other", "u1")
	if ok {
		t.Error("MarkRead must not touch another user's notification")
	}
	unread, _ := repos.Notification.CountUnread(ctx, "u2")
	if unread != 1 {
		t.Errorf("CountUnread(u2) = %d, want 1", unread)
	}
}

func TestMockStore_Err(t *testing.T) {
	repos, store := mocks.NewRepositories()
	store.SetErr(errors.New("unavailable"))

	if _, err := repos.Article.GetByID(context.Background(), "x"); err == nil {
		t.Error("expected injected error from GetByID")
	}
	if err := repos.Audit.Append(context.Background(), &models.AuditEntry{ID: "a"}); err == nil {
		t.Error("expected injected error from Append")
	}
}
