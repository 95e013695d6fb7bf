package router

import (
	"path/filepath"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gradedesk/gradedesk/internal/config"
	"github.com/gradedesk/gradedesk/internal/handler"
	"github.com/gradedesk/gradedesk/internal/middleware"
	"github.com/gradedesk/gradedesk/internal/response"
	"github.com/gradedesk/gradedesk/internal/service"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Grade     *handler.GradeHandler
	Status    *handler.StatusHandler
	Workspace *handler.WorkspaceHandler
	Attempt   *handler.AttemptHandler
	WS        *handler.WSHandler
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
// A nil rdb disables rate limiting.
func SetupRouter(
	workspaceService *service.WorkspaceService,
	handlers *Handlers,
	cfg *config.Config,
	rdb *redis.Client,
	log zerolog.Logger,
) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(log))

	// ─── CORS ──────────────────────────────────────────────────────────
	// If AllowedOrigins is set in config, restrict to that list;
	// otherwise allow all (*) so dev works without extra config.
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID", "X-RateLimit-Limit", "X-RateLimit-Remaining"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	router.Use(response.RequestIDMiddleware())
	router.Use(middleware.Brotli())

	limit := func(route string) gin.HandlerFunc {
		if rdb == nil {
			return func(c *gin.Context) { c.Next() }
		}
		return middleware.NewRateLimiter(rdb, route, cfg.RateLimitPerMinute, log).Middleware()
	}

	// ─── 1. Backend-compatible API ─────────────────────────────────────
	api := router.Group("/api")
	api.Use(middleware.NoStore())
	{
		api.GET("/health", handlers.Status.Health)
		api.POST("/grade",
			limit("grade"),
			middleware.OptionalWorkspace(workspaceService),
			handlers.Grade.Grade,
		)
		api.POST("/generate-question", limit("generate"), handlers.Grade.GenerateQuestion)
	}

	// ─── 2. Gateway API ────────────────────────────────────────────────
	{
		api.GET("/status", handlers.Status.GetStatus)
		api.GET("/status/stream", handlers.Status.StreamStatus)
		api.POST("/workspaces", limit("workspaces"), handlers.Workspace.CreateWorkspace)
	}

	attempts := api.Group("/attempts")
	attempts.Use(middleware.RequireWorkspace(workspaceService))
	{
		attempts.GET("", handlers.Attempt.ListAttempts)
		attempts.GET("/:id", handlers.Attempt.GetAttempt)
	}

	// ─── 3. WebSocket ──────────────────────────────────────────────────
	router.GET("/ws/grade", middleware.OptionalWorkspace(workspaceService), handlers.WS.GradeStream)

	// ─── 4. View assets ────────────────────────────────────────────────
	if cfg.StaticDir != "" {
		assets := router.Group("/assets")
		assets.Use(middleware.CacheControl(365 * 24 * time.Hour))
		{
			assets.Static("/", filepath.Join(cfg.StaticDir, "assets"))
		}
		router.NoRoute(handler.SPA(cfg.StaticDir))
	}

	return router
}

// requestLogger logs one structured line per request.
func requestLogger(log zerolog.Logger) gin.HandlerFunc {
	httpLog := log.With().Str("component", "http").Logger()
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		evt := httpLog.Info()
		if c.Writer.Status() >= 500 {
			evt = httpLog.Error()
		}
		evt.
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("latency", time.Since(start)).
			Str("client_ip", c.ClientIP()).
			Str("request_id", c.GetString(response.ContextKeyRequestID)).
			Msg("Request handled")
	}
}
