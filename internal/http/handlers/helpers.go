package handlers

import (
	"context"
	"errors"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/geocoder89/eventmanager/internal/apperr"
	"github.com/geocoder89/eventmanager/internal/domain/event"
	"github.com/geocoder89/eventmanager/internal/domain/user"
	"github.com/geocoder89/eventmanager/internal/http/middlewares"
	"github.com/geocoder89/eventmanager/internal/utils"
)

const defaultTimeout = 3 * time.Second

// requestContext bounds store work by the request lifetime and a timeout.
func requestContext(ctx *gin.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx.Request.Context(), defaultTimeout)
}

type EventReader interface {
	GetByID(ctx context.Context, id string) (event.Event, error)
}

type UserReader interface {
	GetByID(ctx context.Context, id string) (user.User, error)
}

// loadEvent resolves the :id path parameter. Malformed and unknown ids are
// both event_not_found.
func loadEvent(ctx *gin.Context, cctx context.Context, events EventReader) (event.Event, bool) {
	id := ctx.Param("id")

	if !utils.IsUUID(id) {
		RespondAppError(ctx, apperr.ErrEventNotFound)
		return event.Event{}, false
	}

	e, err := events.GetByID(cctx, id)
	if err != nil {
		if errors.Is(err, event.ErrNotFound) {
			RespondAppError(ctx, apperr.ErrEventNotFound)
			return event.Event{}, false
		}
		RespondAppError(ctx, err)
		return event.Event{}, false
	}
	return e, true
}

// loadActor fetches the authenticated user. A token whose user no longer
// exists is token_not_valid.
func loadActor(ctx *gin.Context, cctx context.Context, users UserReader) (user.User, bool) {
	id, ok := middlewares.UserIDFromContext(ctx)
	if !ok {
		RespondAppError(ctx, apperr.ErrNotAuthenticated)
		return user.User{}, false
	}

	u, err := users.GetByID(cctx, id)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			RespondAppError(ctx, apperr.WithDetail(apperr.KindInvalidToken, "User not found."))
			return user.User{}, false
		}
		RespondAppError(ctx, err)
		return user.User{}, false
	}
	return u, true
}
