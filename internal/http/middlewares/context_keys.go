package middlewares

import "github.com/gin-gonic/gin"

const (
	CtxRequestID = "request_id"
	ctxUserIDKey = "auth.user_id"
	ctxUserKey   = "auth.username"
)

// SetActor stores the authenticated caller on the request context.
func SetActor(c *gin.Context, userID, username string) {
	c.Set(ctxUserIDKey, userID)
	c.Set(ctxUserKey, username)
}

// UserIDFromContext returns the authenticated user id, if any.
func UserIDFromContext(c *gin.Context) (string, bool) {
	v, ok := c.Get(ctxUserIDKey)
	if !ok {
		return "", false
	}
	id, ok := v.(string)
	return id, ok && id != ""
}

func UsernameFromContext(c *gin.Context) (string, bool) {
	v, ok := c.Get(ctxUserKey)
	if !ok {
		return "", false
	}
	name, ok := v.(string)
	return name, ok
}

func RequestIDFromContext(c *gin.Context) string {
	if v, ok := c.Get(CtxRequestID); ok {
		if s, ok := v.(string); ok && s != "" {
			return s
		}
	}
	// fallback header
	return c.GetHeader(requestIDHeader)
}
