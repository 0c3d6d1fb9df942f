package security

import (
	"regexp"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"carelink-compliance-core/internal/app/config"
)

// CORSHandler is a named type so Fx can provide it distinctly
type CORSHandler gin.HandlerFunc

// CORSMiddleware configures CORS for the operator dashboards that consume the
// compliance endpoints
func CORSMiddleware(appConfig *config.Config) CORSHandler {
	corsConfig := appConfig.GetCORS()

	// Admin console subdomains plus local development ports
	allowedPattern := regexp.MustCompile(
		`^https?://([a-zA-Z0-9-]+\.)?(admin\.carelink\.africa|localhost:(3000|3001|8080))$`,
	)

	return CORSHandler(cors.New(cors.Config{
		AllowOriginFunc: func(origin string) bool {
			if allowedPattern.MatchString(origin) {
				return true
			}

			for _, allowedOrigin := range corsConfig.AllowedOrigins {
				if origin == allowedOrigin {
					return true
				}
			}

			return false
		},

		AllowMethods: corsConfig.AllowedMethods,

		AllowHeaders: append(corsConfig.AllowedHeaders,
			"X-Request-Id"),

		ExposeHeaders: []string{
			"Content-Length",
			"X-Request-Id",
		},

		AllowCredentials: corsConfig.AllowCredentials,

		MaxAge: time.Duration(corsConfig.MaxAge) * time.Second,
	}))
}
