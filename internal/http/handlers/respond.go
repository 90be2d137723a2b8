package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/geocoder89/eventmanager/internal/apperr"
	"github.com/geocoder89/eventmanager/internal/http/middlewares"
)

type FieldError = apperr.FieldError

// RespondAppError is the one place errors become HTTP responses. Errors
// without an apperr kind are logged and reported as a bare 500.
func RespondAppError(ctx *gin.Context, err error) {
	var appErr *apperr.Error
	if !errors.As(err, &appErr) {
		slog.Default().ErrorContext(ctx.Request.Context(), "unhandled error",
			"route", ctx.FullPath(),
			"request_id", middlewares.RequestIDFromContext(ctx),
			"err", err,
		)
		appErr = apperr.New(apperr.KindUnknown)
	}

	ctx.AbortWithStatusJSON(appErr.Status(), appErr.Body(middlewares.RequestIDFromContext(ctx)))
}

// RespondValidation reports field level input errors as 400 invalid.
func RespondValidation(ctx *gin.Context, fields []FieldError) {
	body := apperr.New(apperr.KindInvalid).Body(middlewares.RequestIDFromContext(ctx))
	body.Errors = fields
	ctx.AbortWithStatusJSON(http.StatusBadRequest, body)
}

// RespondFieldError is RespondValidation for a single field.
func RespondFieldError(ctx *gin.Context, field, rule, message string) {
	RespondValidation(ctx, []FieldError{{Field: field, Rule: rule, Message: message}})
}
