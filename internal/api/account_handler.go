package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/devnovate-blog-api/internal/models"
	"github.com/devnovate-blog-api/internal/policy"
	"github.com/devnovate-blog-api/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// AccountHandler handles profile, notification and admin endpoints
type AccountHandler struct {
	services *service.Services
	log      zerolog.Logger
}

// NewAccountHandler creates a new AccountHandler
func NewAccountHandler(services *service.Services, log zerolog.Logger) *AccountHandler {
	return &AccountHandler{
		services: services,
		log:      log.With().Str("handler", "account").Logger(),
	}
}

type profileRequest struct {
	Name      string  `json:"name" binding:"required,notblank,max=100"`
	AvatarURL *string `json:"avatar_url" binding:"omitempty,url"`
	Bio       *string `json:"bio" binding:"omitempty,max=500"`
}

type roleRequest struct {
	Role models.Role `json:"role" binding:"required,oneof=USER ADMIN"`
}

// Stats handles GET /v1/stats
func (h *AccountHandler) Stats(c *gin.Context) {
	stats, err := h.services.Admin.Stats(c.Request.Context())
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"database":  stats,
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

// GetProfile handles GET /v1/profiles/:user_id
func (h *AccountHandler) GetProfile(c *gin.Context) {
	profile, err := h.services.Profile.Get(c.Request.Context(), c.Param("user_id"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

// UpdateProfile handles PUT /v1/me/profile
func (h *AccountHandler) UpdateProfile(c *gin.Context) {
	var req profileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	profile, err := h.services.Profile.Update(c.Request.Context(), identity(c), service.ProfileInput{
		Name:      req.Name,
		AvatarURL: req.AvatarURL,
		Bio:       req.Bio,
	})
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

// ListNotifications handles GET /v1/me/notifications?limit=
func (h *AccountHandler) ListNotifications(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}
		limit = n
	}

	list, err := h.services.Notification.List(c.Request.Context(), identity(c), limit)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// MarkNotificationRead handles POST /v1/me/notifications/:id/read
func (h *AccountHandler) MarkNotificationRead(c *gin.Context) {
	if err := h.services.Notification.MarkRead(c.Request.Context(), identity(c), c.Param("id")); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// AssignRole handles PUT /v1/admin/roles/:user_id
func (h *AccountHandler) AssignRole(c *gin.Context) {
	var req roleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	assignment, err := h.services.Session.AssignRole(c.Request.Context(), identity(c), c.Param("user_id"), req.Role)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, assignment)
}

// AuditTrail handles GET /v1/admin/audit/:type/:id
func (h *AccountHandler) AuditTrail(c *gin.Context) {
	entries, err := h.services.Admin.AuditTrail(c.Request.Context(), identity(c), c.Param("type"), c.Param("id"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": entries})
}

// ReconcileCounters handles POST /v1/admin/counters/reconcile
func (h *AccountHandler) ReconcileCounters(c *gin.Context) {
	if !policy.Can(identity(c), policy.MaintainCounters) {
		c.JSON(http.StatusForbidden, gin.H{"error": "not allowed to reconcile counters"})
		return
	}

	fixed, err := h.services.Admin.ReconcileCounters(c.Request.Context())
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"articles_fixed": fixed})
}
