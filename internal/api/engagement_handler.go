package api

import (
	"encoding/json"
	"net/http"

	"github.com/devnovate-blog-api/internal/models"
	"github.com/devnovate-blog-api/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// EngagementHandler handles like and comment endpoints
type EngagementHandler struct {
	services *service.Services
	log      zerolog.Logger
}

// NewEngagementHandler creates a new EngagementHandler
func NewEngagementHandler(services *service.Services, log zerolog.Logger) *EngagementHandler {
	return &EngagementHandler{
		services: services,
		log:      log.With().Str("handler", "engagement").Logger(),
	}
}

type commentRequest struct {
	Content string `json:"content" binding:"required,notblank,maxwords"`
}

type commentStatusRequest struct {
	Status models.CommentStatus `json:"status" binding:"required,oneof=VISIBLE HIDDEN DELETED"`
}

// ToggleLike handles POST /v1/articles/:id/like
func (h *EngagementHandler) ToggleLike(c *gin.Context) {
	result, err := h.services.Engagement.ToggleLike(c.Request.Context(), identity(c), c.Param("id"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// ListComments handles GET /v1/articles/:id/comments
// With ?stream=ndjson the comments are written one per line as they are read.
func (h *EngagementHandler) ListComments(c *gin.Context) {
	ctx := c.Request.Context()
	articleID := c.Param("id")

	article, err := h.services.Article.Get(ctx, identity(c), articleID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	if article == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "article not found"})
		return
	}

	if c.Query("stream") == "ndjson" {
		h.streamComments(c, article.ID)
		return
	}

	comments := []*models.Comment{}
	for comment, err := range h.services.Engagement.ListComments(ctx, article.ID) {
		if err != nil {
			respondError(c, h.log, err)
			return
		}
		comments = append(comments, comment)
	}
	c.JSON(http.StatusOK, gin.H{"items": comments, "total": len(comments)})
}

func (h *EngagementHandler) streamComments(c *gin.Context, articleID string) {
	c.Header("Content-Type", "application/x-ndjson")
	c.Status(http.StatusOK)

	enc := json.NewEncoder(c.Writer)
	for comment, err := range h.services.Engagement.ListComments(c.Request.Context(), articleID) {
		if err != nil {
			// Can't return error JSON after streaming has started
			h.log.Error().Err(err).Str("article_id", articleID).Msg("Comment stream failed")
			return
		}
		if err := enc.Encode(comment); err != nil {
			h.log.Warn().Err(err).Str("article_id", articleID).Msg("Client went away during comment stream")
			return
		}
		c.Writer.Flush()
	}
}

// PostComment handles POST /v1/articles/:id/comments
func (h *EngagementHandler) PostComment(c *gin.Context) {
	var req commentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	comment, err := h.services.Engagement.PostComment(c.Request.Context(), identity(c), c.Param("id"), req.Content)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, comment)
}

// ModerateComment handles PUT /v1/comments/:id/status
func (h *EngagementHandler) ModerateComment(c *gin.Context) {
	var req commentStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	comment, err := h.services.Engagement.ModerateComment(c.Request.Context(), identity(c), c.Param("id"), req.Status)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, comment)
}
