package api

import (
	"net/http"
	"time"

	"github.com/devnovate-blog-api/internal/config"
	"github.com/devnovate-blog-api/internal/render"
	"github.com/devnovate-blog-api/internal/service"
	"github.com/devnovate-blog-api/internal/validation"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

const (
	sessionName = "devnovate-session"

	// renderCacheSize bounds the number of memoised Markdown renders
	renderCacheSize = 1024
)

// NewRouter creates and configures the Gin router
func NewRouter(services *service.Services, cfg *config.Config, log zerolog.Logger) *gin.Engine {
	// Set Gin mode
	gin.SetMode(gin.ReleaseMode)

	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		if err := validation.Register(v); err != nil {
			log.Error().Err(err).Msg("Failed to register request validators")
		}
	}

	router := gin.New()

	store := cookie.NewStore([]byte(cfg.Server.SessionSecret))
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   int(cfg.Server.SessionMaxAge.Seconds()),
		HttpOnly: true,
		Secure:   cfg.Server.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})

	// Middleware
	router.Use(recoveryMiddleware(log))
	router.Use(loggingMiddleware(log))
	router.Use(corsMiddleware())
	router.Use(sessions.Sessions(sessionName, store))
	router.Use(identityMiddleware(services.Session, cfg.Server.TrustProxyHeaders, log))
	router.Use(newRateLimiter(cfg.Server.RateLimit, cfg.Server.RateBurst).middleware())

	// Handlers
	sessionHandler := NewSessionHandler(services, cfg.Server.TrustProxyHeaders, log)
	articleHandler := NewArticleHandler(services, render.NewRenderer(renderCacheSize), log)
	engagementHandler := NewEngagementHandler(services, log)
	accountHandler := NewAccountHandler(services, log)

	// Health check
	router.GET("/health", healthCheck)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// API v1
	v1 := router.Group("/v1")
	{
		v1.GET("/stats", accountHandler.Stats)

		session := v1.Group("/session")
		{
			session.POST("", sessionHandler.SignIn)
			session.GET("", sessionHandler.Current)
			session.DELETE("", sessionHandler.SignOut)
		}

		articles := v1.Group("/articles")
		{
			articles.GET("", articleHandler.Feed)
			articles.GET("/trending", articleHandler.Trending)
			articles.POST("", articleHandler.Create)
			// :id also accepts a slug on GET
			articles.GET("/:id", articleHandler.Get)
			articles.PUT("/:id", articleHandler.Save)
			articles.DELETE("/:id", articleHandler.Delete)
			articles.POST("/:id/publish", articleHandler.Publish)
			articles.POST("/:id/submit", articleHandler.Submit)
			articles.POST("/:id/approve", articleHandler.Approve)
			articles.POST("/:id/reject", articleHandler.Reject)
			articles.POST("/:id/hide", articleHandler.Hide)
			articles.POST("/:id/unhide", articleHandler.Unhide)
			articles.PUT("/:id/visibility", articleHandler.SetVisibility)

			articles.POST("/:id/like", engagementHandler.ToggleLike)
			articles.GET("/:id/comments", engagementHandler.ListComments)
			articles.POST("/:id/comments", engagementHandler.PostComment)
		}

		v1.GET("/tags", articleHandler.Tags)
		v1.PUT("/comments/:id/status", engagementHandler.ModerateComment)
		v1.GET("/profiles/:user_id", accountHandler.GetProfile)

		me := v1.Group("/me", requireUser())
		{
			me.GET("/articles", articleHandler.ListOwn)
			me.GET("/notifications", accountHandler.ListNotifications)
			me.POST("/notifications/:id/read", accountHandler.MarkNotificationRead)
			me.PUT("/profile", accountHandler.UpdateProfile)
		}

		admin := v1.Group("/admin", requireUser())
		{
			admin.GET("/review-queue", articleHandler.ReviewQueue)
			admin.PUT("/roles/:user_id", accountHandler.AssignRole)
			admin.GET("/audit/:type/:id", accountHandler.AuditTrail)
			admin.POST("/counters/reconcile", accountHandler.ReconcileCounters)
		}
	}

	return router
}

// healthCheck returns the health status
func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"timestamp": time.Now().Format(time.RFC3339),
		"service":   "devnovate-blog-api",
	})
}
