package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/devnovate-blog-api/internal/apperr"
	"github.com/devnovate-blog-api/internal/feed"
	"github.com/devnovate-blog-api/internal/models"
	"github.com/devnovate-blog-api/internal/render"
	"github.com/devnovate-blog-api/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

const (
	defaultTrendingLimit = 3
	maxTrendingLimit     = 50
)

// ArticleHandler handles article and feed endpoints
type ArticleHandler struct {
	services *service.Services
	renderer *render.Renderer
	log      zerolog.Logger
	now      func() time.Time
}

// NewArticleHandler creates a new ArticleHandler
func NewArticleHandler(services *service.Services, renderer *render.Renderer, log zerolog.Logger) *ArticleHandler {
	return &ArticleHandler{
		services: services,
		renderer: renderer,
		log:      log.With().Str("handler", "article").Logger(),
		now:      time.Now,
	}
}

type createArticleRequest struct {
	Title         string            `json:"title" binding:"max=200"`
	Content       string            `json:"content"`
	CoverImageURL *string           `json:"cover_image_url" binding:"omitempty,url"`
	Tags          []string          `json:"tags" binding:"max=10,dive,max=32"`
	Visibility    models.Visibility `json:"visibility" binding:"omitempty,oneof=PUBLIC HIDDEN"`
	Publish       bool              `json:"publish"`
}

type saveArticleRequest struct {
	Title         *string            `json:"title" binding:"omitempty,max=200"`
	Content       *string            `json:"content"`
	CoverImageURL *string            `json:"cover_image_url"`
	Tags          []string           `json:"tags" binding:"omitempty,max=10,dive,max=32"`
	Visibility    *models.Visibility `json:"visibility" binding:"omitempty,oneof=PUBLIC HIDDEN"`
}

type rejectRequest struct {
	Reason string `json:"reason"`
}

type visibilityRequest struct {
	Visibility models.Visibility `json:"visibility" binding:"required,oneof=PUBLIC HIDDEN"`
}

// articleDetail is the response of GET /v1/articles/:id
type articleDetail struct {
	*models.Article
	HTML     string            `json:"html"`
	Liked    bool              `json:"liked"`
	Comments []*models.Comment `json:"comments"`
}

// Feed handles GET /v1/articles?q=&tags=&author=&sort=
func (h *ArticleHandler) Feed(c *gin.Context) {
	articles, err := h.services.Article.ListPublic(c.Request.Context())
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	filter := feed.ParseQuery(c.Request.URL.Query())
	items := feed.Apply(articles, filter, h.now())

	c.JSON(http.StatusOK, gin.H{
		"items":          items,
		"total":          len(items),
		"query":          filter.Values().Encode(),
		"active_filters": filter.ActiveCount(),
	})
}

// Trending handles GET /v1/articles/trending?limit=
func (h *ArticleHandler) Trending(c *gin.Context) {
	limit := defaultTrendingLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > maxTrendingLimit {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be between 1 and 50"})
			return
		}
		limit = n
	}

	articles, err := h.services.Article.ListPublic(c.Request.Context())
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": feed.Trending(articles, limit, h.now())})
}

// Tags handles GET /v1/tags
func (h *ArticleHandler) Tags(c *gin.Context) {
	articles, err := h.services.Article.ListPublic(c.Request.Context())
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	tags := feed.Tags(articles)
	if tags == nil {
		tags = []string{}
	}
	c.JSON(http.StatusOK, gin.H{"tags": tags})
}

// Create handles POST /v1/articles
func (h *ArticleHandler) Create(c *gin.Context) {
	var req createArticleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	article, err := h.services.Article.CreateDraft(c.Request.Context(), identity(c), service.ArticleInput{
		Title:         req.Title,
		Content:       req.Content,
		CoverImageURL: req.CoverImageURL,
		Tags:          req.Tags,
		Visibility:    req.Visibility,
		Publish:       req.Publish,
	})
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, article)
}

// Get handles GET /v1/articles/:id, where :id is an id or a slug.
// Comments, the caller's like and the rendered body load concurrently.
func (h *ArticleHandler) Get(c *gin.Context) {
	ctx := c.Request.Context()
	viewer := identity(c)

	article, err := h.services.Article.Get(ctx, viewer, c.Param("id"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	if article == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "article not found"})
		return
	}

	etag := render.ETag(article)
	if c.GetHeader("If-None-Match") == etag {
		c.Status(http.StatusNotModified)
		return
	}

	detail := articleDetail{Article: article, Comments: []*models.Comment{}}

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		for comment, err := range h.services.Engagement.ListComments(gCtx, article.ID) {
			if err != nil {
				return err
			}
			detail.Comments = append(detail.Comments, comment)
		}
		return nil
	})
	g.Go(func() error {
		liked, err := h.services.Engagement.IsLiked(gCtx, viewer, article.ID)
		detail.Liked = liked
		return err
	})
	g.Go(func() error {
		html, err := h.renderer.HTML(article.Content)
		detail.HTML = html
		return err
	})
	if err := g.Wait(); err != nil {
		respondError(c, h.log, apperr.Wrap("article.detail", err))
		return
	}

	if article.IsPubliclyVisible() {
		if err := h.services.Article.RecordView(ctx, article.ID); err != nil {
			h.log.Warn().Err(err).Str("article_id", article.ID).Msg("Failed to record view")
		}
	}

	c.Header("ETag", etag)
	c.JSON(http.StatusOK, detail)
}

// Save handles PUT /v1/articles/:id
func (h *ArticleHandler) Save(c *gin.Context) {
	var req saveArticleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	article, err := h.services.Article.SaveDraft(c.Request.Context(), identity(c), c.Param("id"), models.ArticlePatch{
		Title:         req.Title,
		Content:       req.Content,
		CoverImageURL: req.CoverImageURL,
		Tags:          req.Tags,
		Visibility:    req.Visibility,
	})
	h.respond(c, article, err)
}

// Publish handles POST /v1/articles/:id/publish
func (h *ArticleHandler) Publish(c *gin.Context) {
	article, err := h.services.Article.Publish(c.Request.Context(), identity(c), c.Param("id"))
	h.respond(c, article, err)
}

// Submit handles POST /v1/articles/:id/submit
func (h *ArticleHandler) Submit(c *gin.Context) {
	article, err := h.services.Article.Submit(c.Request.Context(), identity(c), c.Param("id"))
	h.respond(c, article, err)
}

// Approve handles POST /v1/articles/:id/approve
func (h *ArticleHandler) Approve(c *gin.Context) {
	article, err := h.services.Article.Approve(c.Request.Context(), identity(c), c.Param("id"))
	h.respond(c, article, err)
}

// Reject handles POST /v1/articles/:id/reject
func (h *ArticleHandler) Reject(c *gin.Context) {
	var req rejectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	article, err := h.services.Article.Reject(c.Request.Context(), identity(c), c.Param("id"), req.Reason)
	h.respond(c, article, err)
}

// Hide handles POST /v1/articles/:id/hide
func (h *ArticleHandler) Hide(c *gin.Context) {
	article, err := h.services.Article.Hide(c.Request.Context(), identity(c), c.Param("id"))
	h.respond(c, article, err)
}

// Unhide handles POST /v1/articles/:id/unhide
func (h *ArticleHandler) Unhide(c *gin.Context) {
	article, err := h.services.Article.Unhide(c.Request.Context(), identity(c), c.Param("id"))
	h.respond(c, article, err)
}

// SetVisibility handles PUT /v1/articles/:id/visibility
func (h *ArticleHandler) SetVisibility(c *gin.Context) {
	var req visibilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	article, err := h.services.Article.SetVisibility(c.Request.Context(), identity(c), c.Param("id"), req.Visibility)
	h.respond(c, article, err)
}

// Delete handles DELETE /v1/articles/:id
func (h *ArticleHandler) Delete(c *gin.Context) {
	if err := h.services.Article.Delete(c.Request.Context(), identity(c), c.Param("id")); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ListOwn handles GET /v1/me/articles?view=all|published|drafts|rejected
func (h *ArticleHandler) ListOwn(c *gin.Context) {
	view := models.ParseOwnView(c.Query("view"))
	articles, err := h.services.Article.ListOwn(c.Request.Context(), identity(c), view)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"view": view, "items": articles})
}

// ReviewQueue handles GET /v1/admin/review-queue
func (h *ArticleHandler) ReviewQueue(c *gin.Context) {
	articles, err := h.services.Article.ListReviewQueue(c.Request.Context(), identity(c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": articles})
}

func (h *ArticleHandler) respond(c *gin.Context, article *models.Article, err error) {
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, article)
}
