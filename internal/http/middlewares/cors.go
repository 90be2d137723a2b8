package middlewares

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	corsMethods = "GET,POST,PUT,PATCH,DELETE,OPTIONS"
	corsHeaders = "Authorization,Content-Type,If-None-Match,X-Request-Id"
	corsExpose  = "ETag,Retry-After,X-Request-Id"
)

// CORSMiddleware echoes allowed origins back. A single "*" entry allows any
// origin without credentials.
func CORSMiddleware(allowedOrigins []string) gin.HandlerFunc {
	allowed := make(map[string]struct{}, len(allowedOrigins))
	anyOrigin := false

	for _, origin := range allowedOrigins {
		origin = strings.TrimRight(strings.TrimSpace(origin), "/")
		if origin == "*" {
			anyOrigin = true
			continue
		}
		if origin != "" {
			allowed[origin] = struct{}{}
		}
	}

	return func(ctx *gin.Context) {
		origin := ctx.GetHeader("Origin")
		if origin != "" {
			ctx.Header("Vary", "Origin")

			_, ok := allowed[origin]
			switch {
			case ok:
				ctx.Header("Access-Control-Allow-Origin", origin)
				ctx.Header("Access-Control-Allow-Credentials", "true")
			case anyOrigin:
				ctx.Header("Access-Control-Allow-Origin", "*")
			}
			ctx.Header("Access-Control-Expose-Headers", corsExpose)
		}

		if ctx.Request.Method == http.MethodOptions && ctx.GetHeader("Access-Control-Request-Method") != "" {
			ctx.Header("Access-Control-Allow-Methods", corsMethods)
			ctx.Header("Access-Control-Allow-Headers", corsHeaders)
			ctx.Header("Access-Control-Max-Age", "600")
			ctx.AbortWithStatus(http.StatusNoContent)
			return
		}

		ctx.Next()
	}
}
