package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/geocoder89/eventmanager/internal/domain/event"
	"github.com/geocoder89/eventmanager/internal/domain/registration"
	"github.com/geocoder89/eventmanager/internal/domain/user"
)

type RegistrationWorkflow interface {
	Register(ctx context.Context, actor user.User, e event.Event) (registration.Registration, error)
	Unregister(ctx context.Context, actor user.User, e event.Event) error
	ListParticipants(ctx context.Context, e event.Event) ([]registration.Participant, error)
}

type RegistrationHandler struct {
	workflow RegistrationWorkflow
	events   EventReader
	users    UserReader
}

func NewRegistrationHandler(workflow RegistrationWorkflow, events EventReader, users UserReader) *RegistrationHandler {
	return &RegistrationHandler{workflow: workflow, events: events, users: users}
}

type registerResponse struct {
	Detail string  `json:"detail"`
	Code   *string `json:"code"`
}

func (h *RegistrationHandler) Register(ctx *gin.Context) {
	cctx, cancel := requestContext(ctx)
	defer cancel()

	actor, ok := loadActor(ctx, cctx, h.users)
	if !ok {
		return
	}

	e, ok := loadEvent(ctx, cctx, h.events)
	if !ok {
		return
	}

	if _, err := h.workflow.Register(cctx, actor, e); err != nil {
		RespondAppError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, registerResponse{Detail: "Successfully registered for the event."})
}

func (h *RegistrationHandler) Unregister(ctx *gin.Context) {
	cctx, cancel := requestContext(ctx)
	defer cancel()

	actor, ok := loadActor(ctx, cctx, h.users)
	if !ok {
		return
	}

	e, ok := loadEvent(ctx, cctx, h.events)
	if !ok {
		return
	}

	if err := h.workflow.Unregister(cctx, actor, e); err != nil {
		RespondAppError(ctx, err)
		return
	}

	ctx.Status(http.StatusNoContent)
}

func (h *RegistrationHandler) ListParticipants(ctx *gin.Context) {
	cctx, cancel := requestContext(ctx)
	defer cancel()

	e, ok := loadEvent(ctx, cctx, h.events)
	if !ok {
		return
	}

	participants, err := h.workflow.ListParticipants(cctx, e)
	if err != nil {
		RespondAppError(ctx, err)
		return
	}
	if participants == nil {
		participants = []registration.Participant{}
	}

	RespondJSONWithETag(ctx, http.StatusOK, participants)
}
