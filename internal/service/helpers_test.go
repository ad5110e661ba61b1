package service_test

import (
	"sync"
	"time"

	"github.com/devnovate-blog-api/internal/config"
	"github.com/devnovate-blog-api/internal/events"
	"github.com/devnovate-blog-api/internal/mocks"
	"github.com/devnovate-blog-api/internal/models"
	"github.com/devnovate-blog-api/internal/repository"
	"github.com/devnovate-blog-api/internal/service"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/rs/zerolog"
)

var (
	alice = &models.Identity{ID: "user-alice", Email: "alice@example.com", Role: models.RoleUser}
	bob   = &models.Identity{ID: "user-bob", Email: "bob@example.com", Role: models.RoleUser}
	admin = &models.Identity{ID: "user-admin", Email: "admin@example.com", Role: models.RoleAdmin}
)

// tickingClock advances one second per reading so orderings are deterministic
type tickingClock struct {
	mu sync.Mutex
	t  time.Time
}

func newClock() *tickingClock {
	return &tickingClock{t: time.Date(2024, 8, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *tickingClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(time.Second)
	return c.t
}

func testConfig() *config.Config {
	return &config.Config{
		Policy: config.PolicyConfig{
			ReviewMode:      config.ReviewDirect,
			SlugPolicy:      config.SlugReject,
			MaxSlugAttempts: 5,
		},
	}
}

type fixture struct {
	repos    *repository.Repositories
	store    *mocks.Store
	services *service.Services
	clock    *tickingClock
}

// newFixture wires services over an in-memory store; a nil publisher
// discards events
func newFixture(cfg *config.Config, publisher events.Publisher) *fixture {
	repos, store := mocks.NewRepositories()
	clock := newClock()
	return &fixture{
		repos:    repos,
		store:    store,
		clock:    clock,
		services: service.NewServices(repos, publisher, cfg, zerolog.Nop(), service.WithClock(clock.Now)),
	}
}

// seedArticle stores an article authored by author in the given state
func (f *fixture) seedArticle(author *models.Identity, title string, status models.BlogStatus, visibility models.Visibility) *models.Article {
	now := f.clock.Now()
	a := &models.Article{
		ID:         uuid.New().String(),
		Slug:       uuid.New().String()[:8] + "-seed",
		Title:      title,
		Content:    "Content of " + title,
		Tags:       pq.StringArray{"go"},
		Status:     status,
		Visibility: visibility,
		AuthorID:   author.ID,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if status == models.StatusPublished || status == models.StatusHidden {
		a.PublishedAt = &now
	}
	f.store.PutArticle(a)
	return a
}

func strPtr(s string) *string { return &s }
