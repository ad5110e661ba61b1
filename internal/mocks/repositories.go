package mocks

import (
	"context"
	"sort"
	"sync"

	"github.com/devnovate-blog-api/internal/models"
	"github.com/devnovate-blog-api/internal/repository"
	"github.com/lib/pq"
)

// Store is the shared in-memory state behind the mock repositories. Like and
// comment writes maintain the article counters the way the database triggers do.
type Store struct {
	mu sync.RWMutex

	Articles      map[string]*models.Article
	Comments      map[string]*models.Comment
	Likes         map[string]*models.Like // keyed by articleID + "/" + userID
	Profiles      map[string]*models.Profile
	Roles         map[string]*models.RoleAssignment
	Notifications []*models.Notification
	Audit         []*models.AuditEntry

	// Err, when set, is returned by every operation
	Err error
}

// NewStore creates an empty store
func NewStore() *Store {
	return &Store{
		Articles: make(map[string]*models.Article),
		Comments: make(map[string]*models.Comment),
		Likes:    make(map[string]*models.Like),
		Profiles: make(map[string]*models.Profile),
		Roles:    make(map[string]*models.RoleAssignment),
	}
}

// NewRepositories wires a full set of in-memory repositories over one store
func NewRepositories() (*repository.Repositories, *Store) {
	s := NewStore()
	return &repository.Repositories{
		Article:      &MockArticleRepository{s: s},
		Comment:      &MockCommentRepository{s: s},
		Like:         &MockLikeRepository{s: s},
		Profile:      &MockProfileRepository{s: s},
		Role:         &MockRoleRepository{s: s},
		Notification: &MockNotificationRepository{s: s},
		Audit:        &MockAuditRepository{s: s},
		Tx:           &MockTxManager{},
	}, s
}

// PutArticle stores a copy of a as-is, counters included
func (s *Store) PutArticle(a *models.Article) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Articles[a.ID] = copyArticle(a)
}

// Article returns a copy of the stored article, or nil
func (s *Store) Article(id string) *models.Article {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if a, ok := s.Articles[id]; ok {
		return copyArticle(a)
	}
	return nil
}

// PutLike stores a like row without touching counters
func (s *Store) PutLike(l *models.Like) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *l
	s.Likes[likeKey(l.ArticleID, l.UserID)] = &cp
}

// PutComment stores a comment row without touching counters
func (s *Store) PutComment(c *models.Comment) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *c
	s.Comments[c.ID] = &cp
}

// PutProfile stores a profile
func (s *Store) PutProfile(p *models.Profile) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *p
	s.Profiles[p.UserID] = &cp
}

// PutRole stores a role assignment
func (s *Store) PutRole(userID string, role models.Role) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Roles[userID] = &models.RoleAssignment{ID: "role-" + userID, UserID: userID, Role: role}
}

// SetErr makes every subsequent operation fail with err (nil clears it)
func (s *Store) SetErr(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Err = err
}

// NotificationsFor returns the notifications addressed to a user
func (s *Store) NotificationsFor(userID string) []*models.Notification {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.Notification
	for _, n := range s.Notifications {
		if n.UserID == userID {
			out = append(out, n)
		}
	}
	return out
}

// AuditActions lists the recorded audit actions in order
func (s *Store) AuditActions() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0, len(s.Audit))
	for _, e := range s.Audit {
		out = append(out, e.Action)
	}
	return out
}

func copyArticle(a *models.Article) *models.Article {
	c := *a
	if a.Tags != nil {
		c.Tags = append(pq.StringArray{}, a.Tags...)
	}
	return &c
}

func likeKey(articleID, userID string) string {
	return articleID + "/" + userID
}

// MockArticleRepository is a mock implementation of ArticleRepository
type MockArticleRepository struct {
	s *Store

	UpdateError error
	UpdateCalls int
}

func (m *MockArticleRepository) Create(ctx context.Context, article *models.Article) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if m.s.Err != nil {
		return m.s.Err
	}
	for _, a := range m.s.Articles {
		if a.Slug == article.Slug {
			return repository.UniqueViolation("idx_blogs_slug")
		}
	}
	stored := copyArticle(article)
	stored.LikesCount, stored.CommentsCount, stored.ViewsCount = 0, 0, 0
	m.s.Articles[article.ID] = stored
	return nil
}

func (m *MockArticleRepository) Update(ctx context.Context, article *models.Article) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	m.UpdateCalls++
	if m.s.Err != nil {
		return m.s.Err
	}
	if m.UpdateError != nil {
		return m.UpdateError
	}
	existing, ok := m.s.Articles[article.ID]
	if !ok {
		return nil
	}
	for id, a := range m.s.Articles {
		if id != article.ID && a.Slug == article.Slug {
			return repository.UniqueViolation("idx_blogs_slug")
		}
	}
	stored := copyArticle(article)
	stored.LikesCount = existing.LikesCount
	stored.CommentsCount = existing.CommentsCount
	stored.ViewsCount = existing.ViewsCount
	stored.CreatedAt = existing.CreatedAt
	stored.AuthorID = existing.AuthorID
	m.s.Articles[article.ID] = stored
	return nil
}

func (m *MockArticleRepository) GetByID(ctx context.Context, id string) (*models.Article, error) {
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()
	if m.s.Err != nil {
		return nil, m.s.Err
	}
	if a, ok := m.s.Articles[id]; ok {
		return copyArticle(a), nil
	}
	return nil, nil
}

func (m *MockArticleRepository) GetBySlug(ctx context.Context, slug string) (*models.Article, error) {
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()
	if m.s.Err != nil {
		return nil, m.s.Err
	}
	for _, a := range m.s.Articles {
		if a.Slug == slug {
			return copyArticle(a), nil
		}
	}
	return nil, nil
}

func (m *MockArticleRepository) SlugExists(ctx context.Context, slug, excludeID string) (bool, error) {
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()
	if m.s.Err != nil {
		return false, m.s.Err
	}
	for id, a := range m.s.Articles {
		if a.Slug == slug && id != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (m *MockArticleRepository) ListByAuthor(ctx context.Context, authorID string) ([]*models.Article, error) {
	out, err := m.filter(func(a *models.Article) bool {
		return a.AuthorID == authorID && a.Status != models.StatusDeleted
	})
	sort.SliceStable(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	return out, err
}

func (m *MockArticleRepository) ListPublic(ctx context.Context) ([]*models.Article, error) {
	out, err := m.filter(func(a *models.Article) bool { return a.IsPubliclyVisible() })
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].PublishedAt == nil || out[j].PublishedAt == nil {
			return out[j].PublishedAt == nil && out[i].PublishedAt != nil
		}
		return out[i].PublishedAt.After(*out[j].PublishedAt)
	})
	return out, err
}

func (m *MockArticleRepository) ListByStatus(ctx context.Context, status models.BlogStatus) ([]*models.Article, error) {
	out, err := m.filter(func(a *models.Article) bool { return a.Status == status })
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, err
}

func (m *MockArticleRepository) filter(keep func(*models.Article) bool) ([]*models.Article, error) {
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()
	if m.s.Err != nil {
		return nil, m.s.Err
	}
	out := []*models.Article{}
	for _, a := range m.s.Articles {
		if keep(a) {
			out = append(out, copyArticle(a))
		}
	}
	// map order is random; fix a base order before the caller's stable sort
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *MockArticleRepository) IncrementViews(ctx context.Context, id string) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if m.s.Err != nil {
		return m.s.Err
	}
	if a, ok := m.s.Articles[id]; ok {
		a.ViewsCount++
	}
	return nil
}

func (m *MockArticleRepository) ReconcileCounters(ctx context.Context) (int64, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if m.s.Err != nil {
		return 0, m.s.Err
	}
	likes := make(map[string]int)
	for _, l := range m.s.Likes {
		likes[l.ArticleID]++
	}
	comments := make(map[string]int)
	for _, c := range m.s.Comments {
		if c.Status == models.CommentVisible {
			comments[c.ArticleID]++
		}
	}
	var fixed int64
	for id, a := range m.s.Articles {
		if a.LikesCount != likes[id] || a.CommentsCount != comments[id] {
			a.LikesCount = likes[id]
			a.CommentsCount = comments[id]
			fixed++
		}
	}
	return fixed, nil
}

func (m *MockArticleRepository) Count(ctx context.Context) (int, error) {
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()
	return len(m.s.Articles), m.s.Err
}

// MockCommentRepository is a mock implementation of CommentRepository
type MockCommentRepository struct {
	s *Store

	// StreamCalls counts StreamVisible invocations
	StreamCalls int
}

func (m *MockCommentRepository) Create(ctx context.Context, comment *models.Comment) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if m.s.Err != nil {
		return m.s.Err
	}
	c := *comment
	c.Author = nil
	m.s.Comments[comment.ID] = &c
	if c.Status == models.CommentVisible {
		if a, ok := m.s.Articles[c.ArticleID]; ok {
			a.CommentsCount++
		}
	}
	return nil
}

func (m *MockCommentRepository) GetByID(ctx context.Context, id string) (*models.Comment, error) {
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()
	if m.s.Err != nil {
		return nil, m.s.Err
	}
	if c, ok := m.s.Comments[id]; ok {
		cp := *c
		return &cp, nil
	}
	return nil, nil
}

func (m *MockCommentRepository) UpdateStatus(ctx context.Context, id string, status models.CommentStatus) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if m.s.Err != nil {
		return m.s.Err
	}
	c, ok := m.s.Comments[id]
	if !ok {
		return nil
	}
	a := m.s.Articles[c.ArticleID]
	if a != nil {
		if c.Status == models.CommentVisible && status != models.CommentVisible && a.CommentsCount > 0 {
			a.CommentsCount--
		} else if c.Status != models.CommentVisible && status == models.CommentVisible {
			a.CommentsCount++
		}
	}
	c.Status = status
	return nil
}

func (m *MockCommentRepository) StreamVisible(ctx context.Context, articleID string, callback func(*models.Comment) error) error {
	m.s.mu.Lock()
	m.StreamCalls++
	if m.s.Err != nil {
		m.s.mu.Unlock()
		return m.s.Err
	}
	var visible []*models.Comment
	for _, c := range m.s.Comments {
		if c.ArticleID == articleID && c.Status == models.CommentVisible {
			cp := *c
			if p, ok := m.s.Profiles[c.AuthorID]; ok {
				cp.Author = p.Summary()
			}
			visible = append(visible, &cp)
		}
	}
	m.s.mu.Unlock()

	sort.Slice(visible, func(i, j int) bool {
		if visible[i].CreatedAt.Equal(visible[j].CreatedAt) {
			return visible[i].ID > visible[j].ID
		}
		return visible[i].CreatedAt.After(visible[j].CreatedAt)
	})

	for _, c := range visible {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := callback(c); err != nil {
			return err
		}
	}
	return nil
}

func (m *MockCommentRepository) CountVisible(ctx context.Context, articleID string) (int, error) {
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()
	n := 0
	for _, c := range m.s.Comments {
		if c.ArticleID == articleID && c.Status == models.CommentVisible {
			n++
		}
	}
	return n, m.s.Err
}

func (m *MockCommentRepository) Count(ctx context.Context) (int, error) {
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()
	return len(m.s.Comments), m.s.Err
}

// MockLikeRepository is a mock implementation of LikeRepository
type MockLikeRepository struct {
	s *Store

	// BeforeCreate runs before an insert, outside the lock; tests use it to
	// interleave a concurrent toggle
	BeforeCreate func()
}

func (m *MockLikeRepository) Create(ctx context.Context, like *models.Like) error {
	if m.BeforeCreate != nil {
		m.BeforeCreate()
	}
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if m.s.Err != nil {
		return m.s.Err
	}
	key := likeKey(like.ArticleID, like.UserID)
	if _, exists := m.s.Likes[key]; exists {
		return repository.UniqueViolation("likes_blog_user_key")
	}
	l := *like
	m.s.Likes[key] = &l
	if a, ok := m.s.Articles[like.ArticleID]; ok {
		a.LikesCount++
	}
	return nil
}

func (m *MockLikeRepository) Delete(ctx context.Context, articleID, userID string) (bool, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if m.s.Err != nil {
		return false, m.s.Err
	}
	key := likeKey(articleID, userID)
	if _, exists := m.s.Likes[key]; !exists {
		return false, nil
	}
	delete(m.s.Likes, key)
	if a, ok := m.s.Articles[articleID]; ok && a.LikesCount > 0 {
		a.LikesCount--
	}
	return true, nil
}

func (m *MockLikeRepository) Exists(ctx context.Context, articleID, userID string) (bool, error) {
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()
	if m.s.Err != nil {
		return false, m.s.Err
	}
	_, exists := m.s.Likes[likeKey(articleID, userID)]
	return exists, nil
}

func (m *MockLikeRepository) CountByArticle(ctx context.Context, articleID string) (int, error) {
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()
	n := 0
	for _, l := range m.s.Likes {
		if l.ArticleID == articleID {
			n++
		}
	}
	return n, m.s.Err
}

func (m *MockLikeRepository) Count(ctx context.Context) (int, error) {
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()
	return len(m.s.Likes), m.s.Err
}

// MockProfileRepository is a mock implementation of ProfileRepository
type MockProfileRepository struct {
	s *Store
}

func (m *MockProfileRepository) Upsert(ctx context.Context, profile *models.Profile) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if m.s.Err != nil {
		return m.s.Err
	}
	p := *profile
	if existing, ok := m.s.Profiles[p.UserID]; ok {
		p.ID = existing.ID
		p.CreatedAt = existing.CreatedAt
	}
	m.s.Profiles[p.UserID] = &p
	return nil
}

func (m *MockProfileRepository) GetByUserID(ctx context.Context, userID string) (*models.Profile, error) {
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()
	if m.s.Err != nil {
		return nil, m.s.Err
	}
	if p, ok := m.s.Profiles[userID]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, nil
}

// MockRoleRepository is a mock implementation of RoleRepository
type MockRoleRepository struct {
	s *Store
}

func (m *MockRoleRepository) GetByUserID(ctx context.Context, userID string) (*models.RoleAssignment, error) {
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()
	if m.s.Err != nil {
		return nil, m.s.Err
	}
	if ra, ok := m.s.Roles[userID]; ok {
		cp := *ra
		return &cp, nil
	}
	return nil, nil
}

func (m *MockRoleRepository) Upsert(ctx context.Context, assignment *models.RoleAssignment) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if m.s.Err != nil {
		return m.s.Err
	}
	ra := *assignment
	if existing, ok := m.s.Roles[ra.UserID]; ok {
		ra.ID = existing.ID
		ra.CreatedAt = existing.CreatedAt
	}
	m.s.Roles[ra.UserID] = &ra
	return nil
}

// MockNotificationRepository is a mock implementation of NotificationRepository
type MockNotificationRepository struct {
	s *Store
}

func (m *MockNotificationRepository) Create(ctx context.Context, n *models.Notification) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if m.s.Err != nil {
		return m.s.Err
	}
	cp := *n
	m.s.Notifications = append(m.s.Notifications, &cp)
	return nil
}

func (m *MockNotificationRepository) ListByUser(ctx context.Context, userID string, limit int) ([]*models.Notification, error) {
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()
	if m.s.Err != nil {
		return nil, m.s.Err
	}
	out := []*models.Notification{}
	for i := len(m.s.Notifications) - 1; i >= 0 && len(out) < limit; i-- {
		if n := m.s.Notifications[i]; n.UserID == userID {
			cp := *n
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *MockNotificationRepository) MarkRead(ctx context.Context, id, userID string) (bool, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if m.s.Err != nil {
		return false, m.s.Err
	}
	for _, n := range m.s.Notifications {
		if n.ID == id && n.UserID == userID {
			n.Read = true
			return true, nil
		}
	}
	return false, nil
}

func (m *MockNotificationRepository) CountUnread(ctx context.Context, userID string) (int, error) {
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()
	n := 0
	for _, x := range m.s.Notifications {
		if x.UserID == userID && !x.Read {
			n++
		}
	}
	return n, m.s.Err
}

// MockAuditRepository is a mock implementation of AuditRepository
type MockAuditRepository struct {
	s *Store
}

func (m *MockAuditRepository) Append(ctx context.Context, entry *models.AuditEntry) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if m.s.Err != nil {
		return m.s.Err
	}
	cp := *entry
	m.s.Audit = append(m.s.Audit, &cp)
	return nil
}

func (m *MockAuditRepository) ListByTarget(ctx context.Context, targetType, targetID string) ([]*models.AuditEntry, error) {
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()
	if m.s.Err != nil {
		return nil, m.s.Err
	}
	out := []*models.AuditEntry{}
	for _, e := range m.s.Audit {
		if e.TargetType == targetType && e.TargetID != nil && *e.TargetID == targetID {
			cp := *e
			out = append(out, &cp)
		}
	}
	return out, nil
}

// MockTxManager runs the function directly; the in-memory store has no rollback
type MockTxManager struct {
	Calls int
}

func (m *MockTxManager) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	m.Calls++
	return fn(ctx)
}
