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

type AttendanceService interface {
	Scan(ctx context.Context, eventID uint, rawPayload string) (domain.ScanOutcome, error)
	MarkAttendance(ctx context.Context, ticketID string, scopeEventID uint) (domain.ScanOutcome, error)
	ManualOverride(ctx context.Context, registrationID uint, action domain.AttendanceAction, reason string, actorID uint) (domain.AttendanceAuditEntry, error)
	AuditTrail(ctx context.Context, registrationID uint) ([]domain.AttendanceAuditEntry, error)
}

type AttendanceHandler struct {
	svc  AttendanceService
	uSvc UserService
}

func NewAttendanceHandler(svc AttendanceService, uSvc UserService) *AttendanceHandler {
	return &AttendanceHandler{
		svc:  svc,
		uSvc: uSvc,
	}
}

// HandleScan godoc
// @Summary      Scan a ticket QR payload at an event
// @Tags         attendance
// @Produce      json
// @Param        eventID   path      int  true "event ID"
// @Param        request   body      request.ScanRequest true "request body"
// @Success      200      {object}   domain.ScanOutcome
// @Failure      400      {object}   response.Err
// @Failure      403      {object}   response.Err
// @Failure      404      {object}   response.Err
// @Failure      409      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /events/{eventID}/attendance/scan [post]
// @Security     BearerToken
func (h *AttendanceHandler) HandleScan(ctx *gin.Context) {
	_, respErr := h.requireStaff(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)

		return
	}

	eventID, err := parseIDParam(ctx, "eventID")
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	var req request.ScanRequest
	if err = ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	if err = req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	outcome, err := h.svc.Scan(ctx.Request.Context(), eventID, req.Payload)
	if err != nil {
		h.renderScanErr(ctx, err)

		return
	}

	ctx.JSON(http.StatusOK, outcome)
}

// HandleMark godoc
// @Summary      Mark attendance by manually entered ticket ID
// @Tags         attendance
// @Produce      json
// @Param        request   body      request.MarkAttendanceRequest true "request body"
// @Success      200      {object}   domain.ScanOutcome
// @Failure      400      {object}   response.Err
// @Failure      403      {object}   response.Err
// @Failure      404      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /events/attendance/mark [post]
// @Security     BearerToken
func (h *AttendanceHandler) HandleMark(ctx *gin.Context) {
	_, respErr := h.requireStaff(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)

		return
	}

	var req request.MarkAttendanceRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	outcome, err := h.svc.MarkAttendance(ctx.Request.Context(), req.TicketID, 0)
	if err != nil {
		h.renderScanErr(ctx, err)

		return
	}

	ctx.JSON(http.StatusOK, outcome)
}

// HandleManualOverride godoc
// @Summary      Manually set or clear a registration's attendance
// @Tags         attendance
// @Produce      json
// @Param        eventID   path      int  true "event ID"
// @Param        request   body      request.ManualOverrideRequest true "request body"
// @Success      200      {object}   domain.AttendanceAuditEntry
// @Failure      400      {object}   response.Err
// @Failure      403      {object}   response.Err
// @Failure      404      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /events/{eventID}/attendance/manual [post]
// @Security     BearerToken
func (h *AttendanceHandler) HandleManualOverride(ctx *gin.Context) {
	user, respErr := h.requireStaff(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)

		return
	}

	var req request.ManualOverrideRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	entry, err := h.svc.ManualOverride(ctx.Request.Context(),
		req.RegistrationID, domain.AttendanceAction(req.Action), req.Reason, user.ID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrRegistrationNotFound):
			response.RenderErr(ctx, response.ErrNotFound("registration", "ID", req.RegistrationID))
		case errors.Is(err, service.ErrReasonRequired),
			errors.Is(err, service.ErrUnknownAction):
			response.RenderErr(ctx, response.ErrBadRequest(err))
		default:
			err = fmt.Errorf("v1.HandleManualOverride -> h.svc.ManualOverride -> %w", err)
			response.RenderErr(ctx, response.ErrInternalServerError(err))
		}

		return
	}

	ctx.JSON(http.StatusOK, entry)
}

// HandleAuditTrail godoc
// @Summary      List a registration's attendance override audit entries
// @Tags         attendance
// @Produce      json
// @Param        registrationID   path   int  true "registration ID"
// @Success      200      {object}   []domain.AttendanceAuditEntry
// @Failure      400      {object}   response.Err
// @Failure      403      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /events/registrations/{registrationID}/audit [get]
// @Security     BearerToken
func (h *AttendanceHandler) HandleAuditTrail(ctx *gin.Context) {
	_, respErr := h.requireStaff(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)

		return
	}

	registrationID, err := parseIDParam(ctx, "registrationID")
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	entries, err := h.svc.AuditTrail(ctx.Request.Context(), registrationID)
	if err != nil {
		err = fmt.Errorf("v1.HandleAuditTrail -> h.svc.AuditTrail -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))

		return
	}

	ctx.JSON(http.StatusOK, entries)
}

func (h *AttendanceHandler) requireStaff(ctx *gin.Context) (domain.User, *response.Err) {
	user, respErr := getUserFromContext(ctx, h.uSvc)
	if respErr != nil {
		return domain.User{}, respErr
	}

	if user.Role != domain.RoleOrganizer && user.Role != domain.RoleAdmin {
		return domain.User{}, response.ErrPermissionDenied(errors.New("attendance operations require an organizer"))
	}

	return user, nil
}

func (h *AttendanceHandler) renderScanErr(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrMalformedQR):
		response.RenderErr(ctx, response.ErrBadRequest(err))
	case errors.Is(err, service.ErrTicketNotFound):
		response.RenderErr(ctx, response.ErrNotFound("ticket", "payload", "scanned"))
	case errors.Is(err, service.ErrEventMismatch):
		response.RenderErr(ctx, response.ErrConflict(err))
	default:
		err = fmt.Errorf("v1.renderScanErr -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
	}
}
