package api

import (
	"net/http"
	"strings"

	"github.com/devnovate-blog-api/internal/service"
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// SessionHandler handles sign-in and sign-out events from the identity provider
type SessionHandler struct {
	services     *service.Services
	trustHeaders bool
	log          zerolog.Logger
}

// NewSessionHandler creates a new SessionHandler
func NewSessionHandler(services *service.Services, trustHeaders bool, log zerolog.Logger) *SessionHandler {
	return &SessionHandler{
		services:     services,
		trustHeaders: trustHeaders,
		log:          log.With().Str("handler", "session").Logger(),
	}
}

// SignIn handles POST /v1/session
// The auth proxy supplies the user in the X-User-ID / X-User-Email headers;
// without a trusted proxy there is no sign-in source.
func (h *SessionHandler) SignIn(c *gin.Context) {
	if !h.trustHeaders {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "sign in through the identity provider"})
		return
	}
	userID := strings.TrimSpace(c.GetHeader(headerUserID))
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "sign in required"})
		return
	}

	id, err := h.services.Session.Init(c.Request.Context(), userID, c.GetHeader(headerUserEmail))
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	session := sessions.Default(c)
	session.Set(sessionUserID, id.ID)
	session.Set(sessionEmail, id.Email)
	if err := session.Save(); err != nil {
		h.log.Error().Err(err).Str("user_id", id.ID).Msg("Failed to save session")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save session"})
		return
	}

	c.JSON(http.StatusOK, id)
}

// Current handles GET /v1/session
func (h *SessionHandler) Current(c *gin.Context) {
	id := identity(c)
	if id == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "sign in required"})
		return
	}
	c.JSON(http.StatusOK, id)
}

// SignOut handles DELETE /v1/session
func (h *SessionHandler) SignOut(c *gin.Context) {
	if err := h.services.Session.Clear(c.Request.Context(), identity(c)); err != nil {
		respondError(c, h.log, err)
		return
	}

	session := sessions.Default(c)
	session.Clear()
	session.Options(sessions.Options{Path: "/", MaxAge: -1})
	if err := session.Save(); err != nil {
		h.log.Error().Err(err).Msg("Failed to clear session")
	}

	c.Status(http.StatusNoContent)
}
