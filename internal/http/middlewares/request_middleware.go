package middlewares

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const requestIDHeader = "X-Request-Id"

func RequestID() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		id := ctx.GetHeader(requestIDHeader)

		if id == "" {
			id = uuid.NewString()
		}

		ctx.Writer.Header().Set(requestIDHeader, id)
		ctx.Set(CtxRequestID, id)

		ctx.Next()
	}
}

func RequestLogger(log *slog.Logger) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		start := time.Now()
		method := ctx.Request.Method

		ctx.Next()

		route := ctx.FullPath()
		if route == "" {
			route = ctx.Request.URL.Path // fallback (e.g. 404)
		}

		status := ctx.Writer.Status()

		attrs := []any{
			"method", method,
			"route", route,
			"status", status,
			"latency_ms", time.Since(start).Milliseconds(),
			"request_id", RequestIDFromContext(ctx),
		}

		if userID, ok := UserIDFromContext(ctx); ok {
			attrs = append(attrs, "actor_id", userID)
			if name, ok := UsernameFromContext(ctx); ok {
				attrs = append(attrs, "actor", name)
			}
		}

		level := slog.LevelInfo
		if status >= 500 {
			level = slog.LevelError
		}
		log.Log(ctx.Request.Context(), level, "http_request", attrs...)
	}
}
