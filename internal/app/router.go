package app

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"carelink-compliance-core/internal/app/config"
	"carelink-compliance-core/internal/infrastructure/database/postgres"
	"carelink-compliance-core/internal/infrastructure/database/redis"
	"carelink-compliance-core/internal/infrastructure/logger"
	securitymw "carelink-compliance-core/internal/shared/middleware/security"
)

func NewRouter(
	cfg *config.Config,
	loggerMw *logger.LoggerMiddleware,
	pg *postgres.Client,
	rdb *redis.Client,
) *gin.Engine {
	configureGinMode(cfg.Environment)

	// No default middleware; the stack below is explicit
	r := gin.New()

	r.Use(loggerMw.GinLogger())
	r.Use(loggerMw.GinRecovery())
	r.Use(gin.HandlerFunc(securitymw.CORSMiddleware(cfg)))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"data": gin.H{
				"status": "healthy",
			},
		})
	})

	// Readiness covers the stores the sweep depends on
	r.GET("/ready", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		checks := gin.H{"postgres": "ok", "redis": "ok"}
		ready := true

		if err := pg.Ping(ctx); err != nil {
			checks["postgres"] = err.Error()
			ready = false
		}
		if err := rdb.Ping(ctx); err != nil {
			checks["redis"] = err.Error()
			ready = false
		}

		status := http.StatusOK
		if !ready {
			status = http.StatusServiceUnavailable
		}

		c.JSON(status, gin.H{
			"success": ready,
			"data": gin.H{
				"status": checks,
			},
		})
	})

	return r
}

// configureGinMode sets the Gin mode per environment
func configureGinMode(environment string) {
	switch environment {
	case "docker":
		gin.SetMode(gin.ReleaseMode)
	case "development":
		gin.SetMode(gin.DebugMode)
	default:
		gin.SetMode(gin.DebugMode)
	}
}
