package middlewares

import (
	"github.com/gin-gonic/gin"

	"github.com/geocoder89/eventmanager/internal/apperr"
)

func abortWith(c *gin.Context, err *apperr.Error) {
	c.AbortWithStatusJSON(err.Status(), err.Body(RequestIDFromContext(c)))
}
