package middlewares

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/geocoder89/eventmanager/internal/apperr"
)

// MaxBodyBytes rejects declared oversize bodies up front and caps the rest,
// which BindJSON then reports as payload_too_large.
func MaxBodyBytes(limit int64) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		if ctx.Request.ContentLength > limit {
			abortWith(ctx, apperr.New(apperr.KindPayloadTooLarge))
			return
		}

		ctx.Request.Body = http.MaxBytesReader(ctx.Writer, ctx.Request.Body, limit)

		ctx.Next()
	}
}
