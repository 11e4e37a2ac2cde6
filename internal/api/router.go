package api

import (
	"net/http"
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"rfid-access-backend/config"
	"rfid-access-backend/internal/access"
	"rfid-access-backend/internal/mw"
	"rfid-access-backend/internal/store"
)

// NewRouter creates and configures a new Gin router.
func NewRouter(s store.Store, engine *access.Engine, cfg *config.Config, webpushOptions *webpush.Options) *gin.Engine {
	r := gin.Default()

	handler := NewHandler(s, engine, cfg.Auth, webpushOptions)

	rateLimiter := mw.RateLimiter(rate.Limit(cfg.Server.RateLimitPerSec), cfg.Server.RateLimitBurst)

	// Dashboard and sync reads are cheap to serve slightly stale.
	cacheTTL := time.Duration(cfg.Server.CacheTTLSeconds) * time.Second
	cacheStore := cache.New(cacheTTL, 2*cacheTTL)
	caching := mw.Cache(cacheStore, cacheTTL)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})

	api := r.Group("/api")
	api.Use(rateLimiter)
	{
		// Checkpoint hardware and kiosks scan without an admin session.
		api.POST("/scan", handler.PostScan)

		api.POST("/auth/register", handler.RegisterAdmin)
		api.POST("/auth/login", handler.LoginAdmin)

		api.GET("/vapid_public_key", handler.GetVAPIDPublicKey)

		admin := api.Group("")
		admin.Use(mw.AuthRequired(cfg.Auth.JWTSecret))
		{
			admin.POST("/users", handler.CreateUser)
			admin.POST("/users/import", handler.ImportUsers)
			admin.GET("/users/:user_id", handler.GetUser)
			admin.GET("/users", handler.ListUsers)

			admin.GET("/dashboard/summary", caching, handler.GetDashboardSummary)
			admin.GET("/dashboard/logs", caching, handler.GetDashboardLogs)

			admin.GET("/sync/status", caching, handler.GetSyncStatus)
			admin.POST("/sync/trigger", handler.TriggerSync)

			admin.GET("/subscriptions", handler.GetSubscription)
			admin.PUT("/subscriptions", handler.PutSubscription)
			admin.DELETE("/subscriptions", handler.DeleteSubscription)
		}
	}

	return r
}
