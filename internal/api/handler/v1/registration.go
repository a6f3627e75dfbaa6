package v1

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/felicity-events/eventops-api/internal/api/handler/v1/request"
	"github.com/felicity-events/eventops-api/internal/api/handler/v1/response"
	"github.com/felicity-events/eventops-api/internal/domain"
	"github.com/felicity-events/eventops-api/internal/service"
)

type RegistrationService interface {
	Register(ctx context.Context, eventID, participantID uint, responses map[string]string) (domain.Registration, error)
	CancelByEvent(ctx context.Context, eventID, participantID uint) (domain.Registration, error)
	ListByParticipant(ctx context.Context, participantID uint) ([]domain.Registration, error)
	ListByEvent(ctx context.Context, eventID, actorID uint) ([]domain.Registration, error)
	GetTicket(ctx context.Context, ticketID string) (domain.Registration, error)
}

type RegistrationHandler struct {
	svc  RegistrationService
	uSvc UserService
}

func NewRegistrationHandler(svc RegistrationService, uSvc UserService) *RegistrationHandler {
	return &RegistrationHandler{
		svc:  svc,
		uSvc: uSvc,
	}
}

// HandleRegister godoc
// @Summary      Register for a NORMAL event
// @Tags         registrations
// @Produce      json
// @Param        eventID   path      int  true "event ID"
// @Param        request   body      request.RegisterRequest true "request body"
// @Success      201      {object}   domain.Registration
// @Failure      400      {object}   response.Err
// @Failure      404      {object}   response.Err
// @Failure      409      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /events/{eventID}/register [post]
// @Security     BearerToken
func (h *RegistrationHandler) HandleRegister(ctx *gin.Context) {
	user, respErr := getUserFromContext(ctx, h.uSvc)
	if respErr != nil {
		response.RenderErr(ctx, respErr)

		return
	}

	eventID, err := parseIDParam(ctx, "eventID")
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	var req request.RegisterRequest
	if err = ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	reg, err := h.svc.Register(ctx.Request.Context(), eventID, user.ID, req.Responses)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEventNotFound):
			response.RenderErr(ctx, response.ErrNotFound("event", "ID", eventID))
		case errors.Is(err, service.ErrWrongEventType),
			errors.Is(err, service.ErrMissingRequiredField):
			response.RenderErr(ctx, response.ErrBadRequest(err))
		case errors.Is(err, service.ErrEventNotOpen),
			errors.Is(err, service.ErrAlreadyRegistered),
			errors.Is(err, service.ErrCapacityExceeded):
			response.RenderErr(ctx, response.ErrConflict(err))
		default:
			err = fmt.Errorf("v1.HandleRegister -> h.svc.Register -> %w", err)
			response.RenderErr(ctx, response.ErrInternalServerError(err))
		}

		return
	}

	ctx.JSON(http.StatusCreated, reg)
}

// HandleCancelRegistration godoc
// @Summary      Cancel the authenticated participant's registration
// @Tags         registrations
// @Produce      json
// @Param        eventID   path      int  true "event ID"
// @Success      200      {object}   domain.Registration
// @Failure      400      {object}   response.Err
// @Failure      404      {object}   response.Err
// @Failure      409      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /events/{eventID}/register [delete]
// @Security     BearerToken
func (h *RegistrationHandler) HandleCancelRegistration(ctx *gin.Context) {
	user, respErr := getUserFromContext(ctx, h.uSvc)
	if respErr != nil {
		response.RenderErr(ctx, respErr)

		return
	}

	eventID, err := parseIDParam(ctx, "eventID")
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	reg, err := h.svc.CancelByEvent(ctx.Request.Context(), eventID, user.ID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrRegistrationNotFound):
			response.RenderErr(ctx, response.ErrNotFound("registration", "event ID", eventID))
		case errors.Is(err, service.ErrNotRegistrationOwner):
			response.RenderErr(ctx, response.ErrPermissionDenied(err))
		case errors.Is(err, service.ErrNotCancellable):
			response.RenderErr(ctx, response.ErrConflict(err))
		default:
			err = fmt.Errorf("v1.HandleCancelRegistration -> h.svc.CancelByEvent -> %w", err)
			response.RenderErr(ctx, response.ErrInternalServerError(err))
		}

		return
	}

	ctx.JSON(http.StatusOK, reg)
}

// HandleListMyRegistrations godoc
// @Summary      List the authenticated participant's registrations
// @Tags         registrations
// @Produce      json
// @Success      200      {object}   []domain.Registration
// @Failure      500      {object}   response.Err
// @Router       /events/my-registrations [get]
// @Security     BearerToken
func (h *RegistrationHandler) HandleListMyRegistrations(ctx *gin.Context) {
	user, respErr := getUserFromContext(ctx, h.uSvc)
	if respErr != nil {
		response.RenderErr(ctx, respErr)

		return
	}

	regs, err := h.svc.ListByParticipant(ctx.Request.Context(), user.ID)
	if err != nil {
		err = fmt.Errorf("v1.HandleListMyRegistrations -> h.svc.ListByParticipant -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))

		return
	}

	ctx.JSON(http.StatusOK, regs)
}

// HandleListEventRegistrations godoc
// @Summary      List an event's registrations (organizer only)
// @Tags         registrations
// @Produce      json
// @Param        eventID   path      int  true "event ID"
// @Success      200      {object}   []domain.Registration
// @Failure      400      {object}   response.Err
// @Failure      403      {object}   response.Err
// @Failure      404      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /events/{eventID}/registrations [get]
// @Security     BearerToken
func (h *RegistrationHandler) HandleListEventRegistrations(ctx *gin.Context) {
	user, respErr := getUserFromContext(ctx, h.uSvc)
	if respErr != nil {
		response.RenderErr(ctx, respErr)

		return
	}

	eventID, err := parseIDParam(ctx, "eventID")
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	regs, err := h.svc.ListByEvent(ctx.Request.Context(), eventID, user.ID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEventNotFound):
			response.RenderErr(ctx, response.ErrNotFound("event", "ID", eventID))
		case errors.Is(err, service.ErrNotEventOrganizer):
			response.RenderErr(ctx, response.ErrPermissionDenied(err))
		default:
			err = fmt.Errorf("v1.HandleListEventRegistrations -> h.svc.ListByEvent -> %w", err)
			response.RenderErr(ctx, response.ErrInternalServerError(err))
		}

		return
	}

	ctx.JSON(http.StatusOK, regs)
}

// HandleGetTicket godoc
// @Summary      Fetch a registration by ticket ID
// @Tags         registrations
// @Produce      json
// @Param        ticketID   path      string  true "ticket ID"
// @Success      200      {object}   domain.Registration
// @Failure      404      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /events/tickets/{ticketID} [get]
// @Security     BearerToken
func (h *RegistrationHandler) HandleGetTicket(ctx *gin.Context) {
	ticketID := ctx.Param("ticketID")

	reg, err := h.svc.GetTicket(ctx.Request.Context(), ticketID)
	if err != nil {
		if errors.Is(err, service.ErrTicketNotFound) {
			response.RenderErr(ctx, response.ErrNotFound("ticket", "ID", ticketID))

			return
		}

		err = fmt.Errorf("v1.HandleGetTicket -> h.svc.GetTicket -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))

		return
	}

	ctx.JSON(http.StatusOK, reg)
}
