package middleware

import (
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"unimeal-backend-go/internal/config"
)

// CORSMiddleware allows the web client origins listed in CLIENT_URL
// (comma separated).
func CORSMiddleware(appConfig *config.Config) gin.HandlerFunc {
	if appConfig == nil || strings.TrimSpace(appConfig.ClientURL) == "" {
		panic("ClientURL for CORS is not configured")
	}

	var origins []string
	for _, o := range strings.Split(appConfig.ClientURL, ",") {
		if o = strings.TrimRight(strings.TrimSpace(o), "/"); o != "" {
			origins = append(origins, o)
		}
	}

	return cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "Cache-Control"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	})
}
