package api

import (
	"context"
	"net/http"
	"time"

	"github.com/Marga-Ghale/ora-committee-backend/internal/api/handlers"
	"github.com/Marga-Ghale/ora-committee-backend/internal/api/middleware"
	"github.com/Marga-Ghale/ora-committee-backend/internal/config"
	"github.com/Marga-Ghale/ora-committee-backend/internal/metrics"
	"github.com/Marga-Ghale/ora-committee-backend/internal/service"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// HealthCheck pings one backing store.
type HealthCheck func(ctx context.Context) error

type RouterDeps struct {
	Config   *config.Config
	Services *service.Services
	Metrics  *metrics.Metrics
	Logger   *zap.Logger
	// Checks are reported by /health under their key, e.g. "database".
	Checks map[string]HealthCheck
}

// NewRouter wires middleware and every route onto a gin engine.
func NewRouter(deps RouterDeps) *gin.Engine {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	if deps.Config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(logger.Named("http")))
	r.Use(middleware.Metrics(deps.Metrics))

	// Configure CORS
	r.Use(cors.New(cors.Config{
		AllowOrigins:     deps.Config.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/health", healthHandler(deps.Checks))
	r.GET("/metrics", gin.WrapH(deps.Metrics.Handler()))

	h := handlers.NewHandlers(deps.Services, logger.Named("handlers"))

	api := r.Group("/api")
	{
		// ============================================
		// Public routes (no auth required)
		// ============================================
		auth := api.Group("/auth")
		{
			auth.POST("/register", h.Auth.Register)
			auth.POST("/login", h.Auth.Login)
			auth.POST("/refresh", h.Auth.RefreshToken)
			auth.POST("/logout", h.Auth.Logout)
		}

		// ============================================
		// Protected routes (require auth middleware)
		// ============================================
		protected := api.Group("")
		protected.Use(middleware.AuthMiddleware(deps.Services.Auth, logger.Named("auth")))
		{
			users := protected.Group("/users")
			{
				users.GET("/me", h.User.GetCurrentUser)
				users.GET("/by-username/:username", h.User.GetByUsername)
			}

			committees := protected.Group("/committees")
			{
				committees.GET("", h.Committee.List)
				committees.POST("", h.Committee.Create)
				committees.GET("/:id", h.Committee.Get)
				committees.PATCH("/:id", h.Committee.Update)

				committees.GET("/:id/members", h.Committee.ListMembers)
				committees.POST("/:id/members", h.Committee.AddMember)
				committees.PATCH("/:id/members/:userId", h.Committee.UpdateMemberRole)
				committees.DELETE("/:id/members/:userId", h.Committee.RemoveMember)

				committees.GET("/:id/motions", h.Committee.ListMotions)
				committees.POST("/:id/motions", h.Committee.ProposeMotion)
			}

			motions := protected.Group("/motions")
			{
				motions.GET("/:id", h.Motion.Get)
				motions.GET("/:id/history", h.Motion.History)
				motions.POST("/:id/second", h.Motion.Second)
				motions.POST("/:id/chair/approve", h.Motion.ChairDecision)
				motions.POST("/:id/chair/open-vote", h.Motion.OpenVote)
				motions.POST("/:id/challenge-veto", h.Motion.ChallengeVeto)

				motions.POST("/:id/vote", h.Vote.Cast)
				motions.GET("/:id/vote", h.Vote.Tally)

				motions.POST("/:id/debate", h.Debate.Create)
				motions.GET("/:id/debate", h.Debate.List)
			}
		}
	}

	return r
}

func healthHandler(checks map[string]HealthCheck) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		status := http.StatusOK
		body := gin.H{
			"status":    "healthy",
			"timestamp": time.Now(),
		}
		for name, check := range checks {
			if err := check(ctx); err != nil {
				body[name] = "unavailable"
				body["status"] = "degraded"
				status = http.StatusServiceUnavailable
				continue
			}
			body[name] = "connected"
		}
		c.JSON(status, body)
	}
}
