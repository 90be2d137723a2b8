package middlewares

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/geocoder89/eventmanager/internal/apperr"
)

// RequireJSON rejects bodies that are not JSON. Bodyless writes such as
// POST /events/:id/register pass through.
func RequireJSON() gin.HandlerFunc {
	return func(c *gin.Context) {
		switch c.Request.Method {
		case http.MethodPost, http.MethodPut, http.MethodPatch:
			if c.Request.ContentLength == 0 {
				break
			}
			ct := c.GetHeader("Content-Type")
			// allow "application/json; charset=utf-8"
			if !strings.HasPrefix(strings.ToLower(ct), "application/json") {
				abortWith(c, apperr.WithDetail(apperr.KindUnsupportedMediaType,
					`Unsupported media type "`+ct+`" in request.`))
				return
			}
		}
		c.Next()
	}
}
