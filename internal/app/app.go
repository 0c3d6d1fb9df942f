package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"carelink-compliance-core/internal/app/config"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"
)

// Application owns the HTTP server and its lifecycle
type Application struct {
	config *config.Config
	router *gin.Engine
	server *http.Server
}

func NewApplication(cfg *config.Config, router *gin.Engine) *Application {
	return &Application{
		config: cfg,
		router: router,
	}
}

// Start registers the HTTP server in the Fx lifecycle
func (a *Application) Start(lc fx.Lifecycle) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			serverConfig := a.config.GetServer()

			a.server = &http.Server{
				Addr:         fmt.Sprintf("%s:%d", serverConfig.Host, serverConfig.Port),
				Handler:      a.router,
				ReadTimeout:  serverConfig.ReadTimeout,
				WriteTimeout: serverConfig.WriteTimeout,
			}

			go func() {
				fmt.Printf("[SERVER] 🚀 Starting HTTP server on %s:%d\n", serverConfig.Host, serverConfig.Port)
				if err := a.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					fmt.Printf("[SERVER] ❌ Server startup failed: %v\n", err)
				}
			}()

			fmt.Printf("[SERVER] ✅ HTTP server initialized (env: %s)\n", a.config.Environment)
			return nil
		},
		OnStop: func(ctx context.Context) error {
			fmt.Printf("[SERVER] 🛑 Stopping HTTP server\n")

			shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
			defer cancel()

			if err := a.server.Shutdown(shutdownCtx); err != nil {
				fmt.Printf("[SERVER] ⚠️ Forced shutdown: %v\n", err)
				return err
			}

			fmt.Printf("[SERVER] ✅ Server stopped cleanly\n")
			return nil
		},
	})
}

// GetConfig exposes the configuration to external callers
func (a *Application) GetConfig() *config.Config {
	return a.config
}

// IsDocker reports whether the application runs in docker mode (production/staging)
func (a *Application) IsDocker() bool {
	return a.config.Environment == "docker"
}

// IsDevelopment reports whether the application runs in development mode
func (a *Application) IsDevelopment() bool {
	return a.config.Environment == "development"
}
