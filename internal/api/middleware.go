package api

import (
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/devnovate-blog-api/internal/metrics"
	"github.com/devnovate-blog-api/internal/models"
	"github.com/devnovate-blog-api/internal/service"
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

const (
	identityKey = "identity"

	// Headers set by the upstream auth proxy
	headerUserID    = "X-User-ID"
	headerUserEmail = "X-User-Email"

	sessionUserID = "user_id"
	sessionEmail  = "email"
)

// recoveryMiddleware handles panics
func recoveryMiddleware(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				log.Error().Interface("error", err).Str("path", c.Request.URL.Path).Msg("Panic recovered")
				c.JSON(http.StatusInternalServerError, gin.H{
					"error": "Internal server error",
				})
				c.Abort()
			}
		}()
		c.Next()
	}
}

// loggingMiddleware logs requests and records request metrics
func loggingMiddleware(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		duration := time.Since(start)
		statusCode := c.Writer.Status()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		metrics.HTTPRequests.WithLabelValues(route, c.Request.Method, strconv.Itoa(statusCode)).Inc()
		metrics.HTTPDuration.WithLabelValues(route, c.Request.Method).Observe(duration.Seconds())

		event := log.Info()
		if statusCode >= 400 {
			event = log.Warn()
		}
		if statusCode >= 500 {
			event = log.Error()
		}

		event.
			Str("method", c.Request.Method).
			Str("path", path).
			Int("status", statusCode).
			Dur("duration", duration).
			Str("client_ip", c.ClientIP()).
			Msg("Request completed")
	}
}

// corsMiddleware handles CORS
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, If-None-Match, X-User-ID, X-User-Email")
		c.Writer.Header().Set("Access-Control-Expose-Headers", "ETag")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}

// identityMiddleware attaches the caller's identity, if any. When
// trustHeaders is set the auth proxy headers take precedence over the cookie
// session. The role is read from user_roles on every request, so a role
// change applies to live sessions immediately.
func identityMiddleware(sessionService service.SessionService, trustHeaders bool, log zerolog.Logger) gin.HandlerFunc {
	log = log.With().Str("component", "identity").Logger()

	return func(c *gin.Context) {
		userID, email := "", ""
		if trustHeaders {
			userID = strings.TrimSpace(c.GetHeader(headerUserID))
			email = c.GetHeader(headerUserEmail)
		}
		if userID == "" {
			session := sessions.Default(c)
			userID, _ = session.Get(sessionUserID).(string)
			email, _ = session.Get(sessionEmail).(string)
		}
		if userID == "" {
			c.Next()
			return
		}

		role, err := sessionService.ResolveRole(c.Request.Context(), userID)
		if err != nil {
			log.Error().Err(err).Str("user_id", userID).Msg("Failed to resolve role")
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "failed to resolve identity"})
			return
		}
		c.Set(identityKey, &models.Identity{ID: userID, Email: email, Role: role})
		c.Next()
	}
}

// identity returns the caller, or nil for anonymous requests
func identity(c *gin.Context) *models.Identity {
	if v, ok := c.Get(identityKey); ok {
		if id, ok := v.(*models.Identity); ok {
			return id
		}
	}
	return nil
}

// requireUser rejects anonymous requests
func requireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		if identity(c) == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "sign in required"})
			return
		}
		c.Next()
	}
}

// maxTrackedClients bounds the limiter table; it is reset when full
const maxTrackedClients = 10000

// rateLimiter throttles mutating requests per client IP
type rateLimiter struct {
	mu      sync.Mutex
	limit   rate.Limit
	burst   int
	clients map[string]*rate.Limiter
}

// newRateLimiter allows perSecond mutations per client with the given
// burst. A non-positive rate disables limiting.
func newRateLimiter(perSecond float64, burst int) *rateLimiter {
	if burst < 1 {
		burst = 1
	}
	return &rateLimiter{
		limit:   rate.Limit(perSecond),
		burst:   burst,
		clients: make(map[string]*rate.Limiter),
	}
}

func (rl *rateLimiter) limiter(key string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	l, ok := rl.clients[key]
	if !ok {
		if len(rl.clients) >= maxTrackedClients {
			rl.clients = make(map[string]*rate.Limiter)
		}
		l = rate.NewLimiter(rl.limit, rl.burst)
		rl.clients[key] = l
	}
	return l
}

func (rl *rateLimiter) middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if rl.limit <= 0 || !isMutation(c.Request.Method) {
			c.Next()
			return
		}
		if !rl.limiter(c.ClientIP()).Allow() {
			metrics.RateLimited.Inc()
			c.Header("Retry-After", "1")
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
			return
		}
		c.Next()
	}
}

func isMutation(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	}
	return false
}
