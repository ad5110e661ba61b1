package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/devnovate-blog-api/internal/apperr"
	"github.com/devnovate-blog-api/internal/config"
	"github.com/devnovate-blog-api/internal/events"
	"github.com/devnovate-blog-api/internal/metrics"
	"github.com/devnovate-blog-api/internal/mocks"
	"github.com/devnovate-blog-api/internal/models"
	"github.com/devnovate-blog-api/internal/service"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
)

type ArticleServiceTestSuite struct {
	suite.Suite
	ctrl      *gomock.Controller
	publisher *mocks.MockPublisher
	cfg       *config.Config
	f         *fixture
	svc       service.ArticleService
	ctx       context.Context
}

func (s *ArticleServiceTestSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.publisher = mocks.NewMockPublisher(s.ctrl)
	s.cfg = testConfig()
	s.ctx = context.Background()
	s.rebuild()
}

// rebuild re-wires services after a config change
func (s *ArticleServiceTestSuite) rebuild() {
	s.f = newFixture(s.cfg, s.publisher)
	s.svc = s.f.services.Article
}

func (s *ArticleServiceTestSuite) allowEvents() {
	s.publisher.EXPECT().Publish(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
}

func TestArticleServiceTestSuite(t *testing.T) {
	suite.Run(t, new(ArticleServiceTestSuite))
}

func (s *ArticleServiceTestSuite) TestCreateDraft_Success() {
	article, err := s.svc.CreateDraft(s.ctx, alice, service.ArticleInput{
		Title:   "  Hello, World!! 2024 ",
		Content: "Body",
		Tags:    []string{"Go", " go ", "Testing", ""},
	})
	s.Require().NoError(err)

	s.Equal("Hello, World!! 2024", article.Title)
	s.Equal("hello-world-2024", article.Slug)
	s.Equal(models.StatusDraft, article.Status)
	s.Equal(models.VisibilityPublic, article.Visibility)
	s.Equal([]string{"go", "testing"}, []string(article.Tags))
	s.Equal(alice.ID, article.AuthorID)
	s.Nil(article.PublishedAt)

	stored := s.f.store.Article(article.ID)
	s.Require().NotNil(stored)
	s.Equal(models.StatusDraft, stored.Status)
}

func (s *ArticleServiceTestSuite) TestCreateDraft_EmptyFieldsPerformNoWrite() {
	tests := []struct {
		name    string
		title   string
		content string
		field   string
	}{
		{"empty title", "", "body", "title"},
		{"whitespace title", "   \t", "body", "title"},
		{"empty content", "Title", "", "content"},
		{"whitespace content", "Title", "\n  \n", "content"},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			_, err := s.svc.CreateDraft(s.ctx, alice, service.ArticleInput{Title: tt.title, Content: tt.content})
			s.Require().Error(err)
			s.True(apperr.Is(err, apperr.KindValidation))

			var ae *apperr.Error
			s.Require().True(errors.As(err, &ae))
			s.Equal(tt.field, ae.Field)
			s.Empty(s.f.store.Articles)
		})
	}
}

func (s *ArticleServiceTestSuite) TestCreateDraft_Unauthenticated() {
	_, err := s.svc.CreateDraft(s.ctx, nil, service.ArticleInput{Title: "T", Content: "C"})
	s.True(apperr.Is(err, apperr.KindUnauthenticated))
	s.Empty(s.f.store.Articles)
}

func (s *ArticleServiceTestSuite) TestCreateDraft_SlugConflictRejected() {
	_, err := s.svc.CreateDraft(s.ctx, alice, service.ArticleInput{Title: "Same Title", Content: "one"})
	s.Require().NoError(err)

	_, err = s.svc.CreateDraft(s.ctx, bob, service.ArticleInput{Title: "same title!", Content: "two"})
	s.True(apperr.Is(err, apperr.KindConflict))
	s.Len(s.f.store.Articles, 1)
}

func (s *ArticleServiceTestSuite) TestCreateDraft_SlugSuffixPolicy() {
	s.cfg.Policy.SlugPolicy = config.SlugSuffix
	s.rebuild()

	var slugs []string
	for i := 0; i < 3; i++ {
		a, err := s.svc.CreateDraft(s.ctx, alice, service.ArticleInput{Title: "Same Title", Content: "c"})
		s.Require().NoError(err)
		slugs = append(slugs, a.Slug)
	}
	s.Equal([]string{"same-title", "same-title-2", "same-title-3"}, slugs)
}

func (s *ArticleServiceTestSuite) TestCreateDraft_SlugSuffixExhausted() {
	s.cfg.Policy.SlugPolicy = config.SlugSuffix
	s.cfg.Policy.MaxSlugAttempts = 2
	s.rebuild()

	for i := 0; i < 2; i++ {
		_, err := s.svc.CreateDraft(s.ctx, alice, service.ArticleInput{Title: "Dup", Content: "c"})
		s.Require().NoError(err)
	}
	_, err := s.svc.CreateDraft(s.ctx, alice, service.ArticleInput{Title: "Dup", Content: "c"})
	s.True(apperr.Is(err, apperr.KindConflict))
}

func (s *ArticleServiceTestSuite) TestCreateDraft_TitleWithoutAlphanumerics() {
	a, err := s.svc.CreateDraft(s.ctx, alice, service.ArticleInput{Title: "¡¿!?", Content: "c"})
	s.Require().NoError(err)
	s.Regexp(`^article-[0-9a-f]{8}$`, a.Slug)
}

func (s *ArticleServiceTestSuite) TestCreateDraft_PublishImmediately() {
	s.publisher.EXPECT().Publish(gomock.Any(), gomock.Any()).DoAndReturn(
		func(ctx context.Context, ev events.Event) error {
			s.Equal(events.ArticlePublished, ev.Type)
			s.Equal("hello", ev.Data["slug"])
			return nil
		},
	).Times(1)

	a, err := s.svc.CreateDraft(s.ctx, alice, service.ArticleInput{Title: "Hello", Content: "c", Publish: true})
	s.Require().NoError(err)

	s.Equal(models.StatusPublished, a.Status)
	s.Require().NotNil(a.PublishedAt)

	notes := s.f.store.NotificationsFor(alice.ID)
	s.Require().Len(notes, 1)
	s.Equal(models.NotificationBlogPublished, notes[0].Type)
}

func (s *ArticleServiceTestSuite) TestPublish_DirectMode() {
	s.allowEvents()
	draft := s.f.seedArticle(alice, "Draft", models.StatusDraft, models.VisibilityPublic)

	a, err := s.svc.Publish(s.ctx, alice, draft.ID)
	s.Require().NoError(err)
	s.Equal(models.StatusPublished, a.Status)
	s.NotNil(a.PublishedAt)
	s.Equal(models.StatusPublished, s.f.store.Article(draft.ID).Status)
}

func (s *ArticleServiceTestSuite) TestPublish_ModeratedModeQueuesForReview() {
	s.cfg.Policy.ReviewMode = config.ReviewModerated
	s.rebuild()
	draft := s.f.seedArticle(alice, "Draft", models.StatusDraft, models.VisibilityPublic)

	a, err := s.svc.Publish(s.ctx, alice, draft.ID)
	s.Require().NoError(err)
	s.Equal(models.StatusPendingReview, a.Status)
	s.Nil(a.PublishedAt)
	s.Empty(s.f.store.NotificationsFor(alice.ID))
}

func (s *ArticleServiceTestSuite) TestPublish_ModeratedModeAdminSkipsReview() {
	s.cfg.Policy.ReviewMode = config.ReviewModerated
	s.rebuild()
	s.allowEvents()
	draft := s.f.seedArticle(admin, "Admin Draft", models.StatusDraft, models.VisibilityPublic)

	a, err := s.svc.Publish(s.ctx, admin, draft.ID)
	s.Require().NoError(err)
	s.Equal(models.StatusPublished, a.Status)
}

func (s *ArticleServiceTestSuite) TestPublish_NonAuthorForbidden() {
	draft := s.f.seedArticle(alice, "Draft", models.StatusDraft, models.VisibilityPublic)

	_, err := s.svc.Publish(s.ctx, bob, draft.ID)
	s.True(apperr.Is(err, apperr.KindForbidden))
	s.Equal(models.StatusDraft, s.f.store.Article(draft.ID).Status)
}

func (s *ArticleServiceTestSuite) TestPublish_AlreadyPublishedConflict() {
	pub := s.f.seedArticle(alice, "Live", models.StatusPublished, models.VisibilityPublic)

	_, err := s.svc.Publish(s.ctx, alice, pub.ID)
	s.True(apperr.Is(err, apperr.KindConflict))
}

func (s *ArticleServiceTestSuite) TestPublish_EventFailureDoesNotFailOperation() {
	s.publisher.EXPECT().Publish(gomock.Any(), gomock.Any()).Return(errors.New("broker down"))
	draft := s.f.seedArticle(alice, "Draft", models.StatusDraft, models.VisibilityPublic)

	a, err := s.svc.Publish(s.ctx, alice, draft.ID)
	s.Require().NoError(err)
	s.Equal(models.StatusPublished, a.Status)
}

func (s *ArticleServiceTestSuite) TestReviewFlow_SubmitApprove() {
	s.allowEvents()
	draft := s.f.seedArticle(alice, "For Review", models.StatusDraft, models.VisibilityPublic)

	a, err := s.svc.Submit(s.ctx, alice, draft.ID)
	s.Require().NoError(err)
	s.Equal(models.StatusPendingReview, a.Status)

	queue, err := s.svc.ListReviewQueue(s.ctx, admin)
	s.Require().NoError(err)
	s.Require().Len(queue, 1)
	s.Equal(draft.ID, queue[0].ID)

	a, err = s.svc.Approve(s.ctx, admin, draft.ID)
	s.Require().NoError(err)
	s.Equal(models.StatusPublished, a.Status)
	s.Require().NotNil(a.ApprovedBy)
	s.Equal(admin.ID, *a.ApprovedBy)
	s.NotNil(a.PublishedAt)

	notes := s.f.store.NotificationsFor(alice.ID)
	s.Require().Len(notes, 1)
	s.Equal(models.NotificationSubmissionStatus, notes[0].Type)
	s.Contains(string(notes[0].Data), `"status":"PUBLISHED"`)
	s.Equal([]string{models.AuditArticleApproved}, s.f.store.AuditActions())
}

func (s *ArticleServiceTestSuite) TestReviewFlow_RejectThenResave() {
	s.allowEvents()
	pending := s.f.seedArticle(alice, "Needs Work", models.StatusPendingReview, models.VisibilityPublic)

	a, err := s.svc.Reject(s.ctx, admin, pending.ID, "  add sources  ")
	s.Require().NoError(err)
	s.Equal(models.StatusRejected, a.Status)
	s.Require().NotNil(a.RejectionReason)
	s.Equal("add sources", *a.RejectionReason)

	newTitle := "Needs Work Revised"
	a, err = s.svc.SaveDraft(s.ctx, alice, pending.ID, models.ArticlePatch{Title: &newTitle})
	s.Require().NoError(err)
	s.Equal(models.StatusDraft, a.Status)
	s.Nil(a.RejectionReason)
	s.Equal("needs-work-revised", a.Slug)
}

func (s *ArticleServiceTestSuite) TestReject_RequiresReason() {
	pending := s.f.seedArticle(alice, "Pending", models.StatusPendingReview, models.VisibilityPublic)

	_, err := s.svc.Reject(s.ctx, admin, pending.ID, "  ")
	s.True(apperr.Is(err, apperr.KindValidation))
	s.Equal(models.StatusPendingReview, s.f.store.Article(pending.ID).Status)
}

func (s *ArticleServiceTestSuite) TestModeration_RequiresCapability() {
	pending := s.f.seedArticle(alice, "Pending", models.StatusPendingReview, models.VisibilityPublic)
	live := s.f.seedArticle(alice, "Live", models.StatusPublished, models.VisibilityPublic)

	_, err := s.svc.Approve(s.ctx, bob, pending.ID)
	s.True(apperr.Is(err, apperr.KindForbidden))

	_, err = s.svc.Hide(s.ctx, alice, live.ID)
	s.True(apperr.Is(err, apperr.KindForbidden))

	_, err = s.svc.ListReviewQueue(s.ctx, bob)
	s.True(apperr.Is(err, apperr.KindForbidden))

	_, err = s.svc.Approve(s.ctx, nil, pending.ID)
	s.True(apperr.Is(err, apperr.KindUnauthenticated))
}

func (s *ArticleServiceTestSuite) TestHideUnhide() {
	s.allowEvents()
	live := s.f.seedArticle(alice, "Live", models.StatusPublished, models.VisibilityPublic)

	a, err := s.svc.Hide(s.ctx, admin, live.ID)
	s.Require().NoError(err)
	s.Equal(models.StatusHidden, a.Status)

	_, err = s.svc.Hide(s.ctx, admin, live.ID)
	s.True(apperr.Is(err, apperr.KindConflict))

	a, err = s.svc.Unhide(s.ctx, admin, live.ID)
	s.Require().NoError(err)
	s.Equal(models.StatusPublished, a.Status)
	s.Equal(*live.PublishedAt, *a.PublishedAt)

	s.Equal([]string{models.AuditArticleHidden, models.AuditArticleUnhidden}, s.f.store.AuditActions())
}

func (s *ArticleServiceTestSuite) TestSaveDraft_PublishedArticleConflict() {
	live := s.f.seedArticle(alice, "Live", models.StatusPublished, models.VisibilityPublic)
	content := "new"

	_, err := s.svc.SaveDraft(s.ctx, alice, live.ID, models.ArticlePatch{Content: &content})
	s.True(apperr.Is(err, apperr.KindConflict))
}

func (s *ArticleServiceTestSuite) TestSaveDraft_BlankContentRejected() {
	draft := s.f.seedArticle(alice, "Draft", models.StatusDraft, models.VisibilityPublic)
	blank := "   "

	_, err := s.svc.SaveDraft(s.ctx, alice, draft.ID, models.ArticlePatch{Content: &blank})
	s.True(apperr.Is(err, apperr.KindValidation))
	s.Equal("Content of Draft", s.f.store.Article(draft.ID).Content)
}

func (s *ArticleServiceTestSuite) TestSetVisibility() {
	live := s.f.seedArticle(alice, "Live", models.StatusPublished, models.VisibilityPublic)

	a, err := s.svc.SetVisibility(s.ctx, alice, live.ID, models.VisibilityHidden)
	s.Require().NoError(err)
	s.Equal(models.VisibilityHidden, a.Visibility)

	_, err = s.svc.SetVisibility(s.ctx, bob, live.ID, models.VisibilityPublic)
	s.True(apperr.Is(err, apperr.KindForbidden))

	_, err = s.svc.SetVisibility(s.ctx, alice, live.ID, "SECRET")
	s.True(apperr.Is(err, apperr.KindValidation))
}

func (s *ArticleServiceTestSuite) TestDelete_NonAuthorForbiddenStatusUnchanged() {
	for _, status := range []models.BlogStatus{models.StatusDraft, models.StatusPublished, models.StatusRejected} {
		a := s.f.seedArticle(alice, "Mine "+string(status), status, models.VisibilityPublic)

		err := s.svc.Delete(s.ctx, bob, a.ID)
		s.True(apperr.Is(err, apperr.KindForbidden), "status %s", status)
		s.Equal(status, s.f.store.Article(a.ID).Status)
	}
	s.Empty(s.f.store.AuditActions())
}

func (s *ArticleServiceTestSuite) TestDelete_AuthorSoftDeletes() {
	a := s.f.seedArticle(alice, "Mine", models.StatusPublished, models.VisibilityPublic)

	s.Require().NoError(s.svc.Delete(s.ctx, alice, a.ID))

	stored := s.f.store.Article(a.ID)
	s.Require().NotNil(stored)
	s.Equal(models.StatusDeleted, stored.Status)

	err := s.svc.Delete(s.ctx, alice, a.ID)
	s.True(apperr.Is(err, apperr.KindNotFound))
}

func (s *ArticleServiceTestSuite) TestDelete_AdminMayDeleteAny() {
	a := s.f.seedArticle(alice, "Spam", models.StatusPublished, models.VisibilityPublic)

	s.Require().NoError(s.svc.Delete(s.ctx, admin, a.ID))
	s.Equal(models.StatusDeleted, s.f.store.Article(a.ID).Status)
	s.Equal([]string{models.AuditArticleDeleted}, s.f.store.AuditActions())
}

func (s *ArticleServiceTestSuite) TestDelete_Unauthenticated() {
	a := s.f.seedArticle(alice, "Mine", models.StatusDraft, models.VisibilityPublic)
	s.True(apperr.Is(s.svc.Delete(s.ctx, nil, a.ID), apperr.KindUnauthenticated))
}

func (s *ArticleServiceTestSuite) TestGet_ReadRule() {
	draft := s.f.seedArticle(alice, "Draft", models.StatusDraft, models.VisibilityPublic)
	hiddenVis := s.f.seedArticle(alice, "Unlisted", models.StatusPublished, models.VisibilityHidden)
	live := s.f.seedArticle(alice, "Live", models.StatusPublished, models.VisibilityPublic)
	deleted := s.f.seedArticle(alice, "Gone", models.StatusDeleted, models.VisibilityPublic)

	tests := []struct {
		name    string
		viewer  *models.Identity
		ref     string
		visible bool
	}{
		{"anonymous reads live", nil, live.ID, true},
		{"anonymous by slug", nil, live.Slug, true},
		{"anonymous draft", nil, draft.ID, false},
		{"other user draft", bob, draft.ID, false},
		{"other user hidden visibility", bob, hiddenVis.ID, false},
		{"owner draft", alice, draft.ID, true},
		{"owner hidden visibility", alice, hiddenVis.ID, true},
		{"owner deleted", alice, deleted.ID, false},
		{"admin draft", admin, draft.ID, true},
		{"admin deleted", admin, deleted.ID, true},
		{"missing", alice, "00000000-0000-0000-0000-000000000000", false},
		{"missing slug", nil, "no-such-slug", false},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			a, err := s.svc.Get(s.ctx, tt.viewer, tt.ref)
			s.Require().NoError(err)
			if tt.visible {
				s.NotNil(a)
			} else {
				s.Nil(a)
			}
		})
	}
}

func (s *ArticleServiceTestSuite) TestListOwn_Views() {
	s.f.seedArticle(alice, "D1", models.StatusDraft, models.VisibilityPublic)
	s.f.seedArticle(alice, "P1", models.StatusPublished, models.VisibilityPublic)
	s.f.seedArticle(alice, "R1", models.StatusRejected, models.VisibilityPublic)
	s.f.seedArticle(alice, "X1", models.StatusDeleted, models.VisibilityPublic)
	s.f.seedArticle(alice, "Q1", models.StatusPendingReview, models.VisibilityPublic)
	s.f.seedArticle(bob, "B1", models.StatusDraft, models.VisibilityPublic)

	titles := func(view models.OwnView) []string {
		list, err := s.svc.ListOwn(s.ctx, alice, view)
		s.Require().NoError(err)
		var out []string
		for _, a := range list {
			out = append(out, a.Title)
		}
		return out
	}

	// most recently updated first
	s.Equal([]string{"Q1", "R1", "P1", "D1"}, titles(models.OwnViewAll))
	s.Equal([]string{"P1"}, titles(models.OwnViewPublished))
	s.Equal([]string{"D1"}, titles(models.OwnViewDrafts))
	s.Equal([]string{"R1"}, titles(models.OwnViewRejected))

	_, err := s.svc.ListOwn(s.ctx, nil, models.OwnViewAll)
	s.True(apperr.Is(err, apperr.KindUnauthenticated))
}

func (s *ArticleServiceTestSuite) TestListPublic() {
	s.f.seedArticle(alice, "Live", models.StatusPublished, models.VisibilityPublic)
	s.f.seedArticle(alice, "Unlisted", models.StatusPublished, models.VisibilityHidden)
	s.f.seedArticle(alice, "Draft", models.StatusDraft, models.VisibilityPublic)
	s.f.seedArticle(bob, "Live 2", models.StatusPublished, models.VisibilityPublic)

	list, err := s.svc.ListPublic(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(list, 2)
	s.Equal("Live 2", list[0].Title)
}

func (s *ArticleServiceTestSuite) TestRecordView() {
	live := s.f.seedArticle(alice, "Live", models.StatusPublished, models.VisibilityPublic)
	draft := s.f.seedArticle(alice, "Draft", models.StatusDraft, models.VisibilityPublic)

	s.Require().NoError(s.svc.RecordView(s.ctx, live.ID))
	s.Require().NoError(s.svc.RecordView(s.ctx, live.ID))
	s.Equal(2, s.f.store.Article(live.ID).ViewsCount)

	s.True(apperr.Is(s.svc.RecordView(s.ctx, draft.ID), apperr.KindNotFound))
}

func (s *ArticleServiceTestSuite) TestStorageFailure() {
	draft := s.f.seedArticle(alice, "Draft", models.StatusDraft, models.VisibilityPublic)
	s.f.store.SetErr(errors.New("connection reset"))

	_, err := s.svc.Publish(s.ctx, alice, draft.ID)
	s.True(apperr.Is(err, apperr.KindStorage))
	s.Contains(err.Error(), "article.publish")

	_, err = s.svc.Get(s.ctx, alice, draft.ID)
	s.True(apperr.Is(err, apperr.KindStorage))

	s.f.store.SetErr(nil)
	s.Equal(models.StatusDraft, s.f.store.Article(draft.ID).Status)
}

func (s *ArticleServiceTestSuite) TestUpdateFailureLeavesStateUnchanged() {
	draft := s.f.seedArticle(alice, "Draft", models.StatusDraft, models.VisibilityPublic)
	s.f.repos.Article.(*mocks.MockArticleRepository).UpdateError = errors.New("write failed")

	_, err := s.svc.Publish(s.ctx, alice, draft.ID)
	s.True(apperr.Is(err, apperr.KindStorage))
	s.Equal(models.StatusDraft, s.f.store.Article(draft.ID).Status)
	s.Nil(s.f.store.Article(draft.ID).PublishedAt)
}

func (s *ArticleServiceTestSuite) TestSaveDraft_TransitionCountedOnlyWhenStored() {
	draft := s.f.seedArticle(alice, "Draft", models.StatusDraft, models.VisibilityPublic)
	saves := metrics.Transitions.WithLabelValues(string(models.EventSave), string(models.StatusDraft))
	before := testutil.ToFloat64(saves)

	blank := "   "
	_, err := s.svc.SaveDraft(s.ctx, alice, draft.ID, models.ArticlePatch{Content: &blank})
	s.True(apperr.Is(err, apperr.KindValidation))
	s.Equal(before, testutil.ToFloat64(saves))

	s.f.repos.Article.(*mocks.MockArticleRepository).UpdateError = errors.New("write failed")
	content := "Edited"
	_, err = s.svc.SaveDraft(s.ctx, alice, draft.ID, models.ArticlePatch{Content: &content})
	s.True(apperr.Is(err, apperr.KindStorage))
	s.Equal(before, testutil.ToFloat64(saves))

	s.f.repos.Article.(*mocks.MockArticleRepository).UpdateError = nil
	_, err = s.svc.SaveDraft(s.ctx, alice, draft.ID, models.ArticlePatch{Content: &content})
	s.Require().NoError(err)
	s.Equal(before+1, testutil.ToFloat64(saves))
}

func (s *ArticleServiceTestSuite) TestMalformedIDIsNotFound() {
	s.f.seedArticle(alice, "Draft", models.StatusDraft, models.VisibilityPublic)
	s.f.store.SetErr(errors.New("invalid input syntax for type uuid"))
	defer s.f.store.SetErr(nil)
	content := "x"

	_, err := s.svc.Publish(s.ctx, alice, "react-hooks")
	s.True(apperr.Is(err, apperr.KindNotFound))

	_, err = s.svc.SaveDraft(s.ctx, alice, "react-hooks", models.ArticlePatch{Content: &content})
	s.True(apperr.Is(err, apperr.KindNotFound))

	_, err = s.svc.Hide(s.ctx, admin, "urn:uuid:550e8400-e29b-41d4-a716-446655440000")
	s.True(apperr.Is(err, apperr.KindNotFound))

	_, err = s.svc.SetVisibility(s.ctx, alice, "42", models.VisibilityHidden)
	s.True(apperr.Is(err, apperr.KindNotFound))

	s.True(apperr.Is(s.svc.Delete(s.ctx, alice, "react-hooks"), apperr.KindNotFound))
}
