package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"conquest-backend/pkg/env"
)

// defaultOrigins are the development origins accepted when
// CORS_ALLOWED_ORIGINS is unset.
var defaultOrigins = []string{
	"http://localhost:3000",
	"http://localhost:8080",
	"http://127.0.0.1:3000",
	"http://127.0.0.1:8080",
}

// CORSMiddleware admits browser clients from the configured origins to the
// token and health endpoints. The websocket route runs its own origin check
// at upgrade time and is not covered here.
func CORSMiddleware() gin.HandlerFunc {
	allowed := make(map[string]bool, len(defaultOrigins))
	for _, origin := range defaultOrigins {
		allowed[origin] = true
	}
	for _, origin := range strings.Split(env.GetString("CORS_ALLOWED_ORIGINS", ""), ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			allowed[origin] = true
		}
	}

	return func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")

		switch {
		case origin == "":
			// Non-browser caller, nothing to negotiate
		case allowed[origin]:
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
			c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		default:
			c.AbortWithStatus(http.StatusForbidden)
			return
		}

		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, X-Request-ID")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Max-Age", "86400")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
