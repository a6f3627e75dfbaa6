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

type EventService interface {
	CreateEvent(ctx context.Context, event domain.Event) (domain.Event, error)
	GetEvent(ctx context.Context, id uint) (domain.Event, error)
	ListPublished(ctx context.Context) ([]domain.Event, error)
	ListByOrganizer(ctx context.Context, organizerID uint) ([]domain.Event, error)
	Transition(ctx context.Context, eventID, actorID uint, target domain.EventStatus) (domain.Event, error)
	EditEvent(ctx context.Context, eventID, actorID uint, patch service.EventPatch) (domain.Event, error)
}

type FormService interface {
	AddField(ctx context.Context, eventID, actorID uint, field domain.FormField) ([]domain.FormField, error)
	RemoveField(ctx context.Context, eventID, actorID uint, fieldID string) ([]domain.FormField, error)
	ReorderField(ctx context.Context, eventID, actorID uint, fieldID string, position int) ([]domain.FormField, error)
	SetOptions(ctx context.Context, eventID, actorID uint, fieldID string, options []string) ([]domain.FormField, error)
}

type EventHandler struct {
	svc     EventService
	formSvc FormService
	uSvc    UserService
}

func NewEventHandler(svc EventService, formSvc FormService, uSvc UserService) *EventHandler {
	return &EventHandler{
		svc:     svc,
		formSvc: formSvc,
		uSvc:    uSvc,
	}
}

// HandleCreateEvent godoc
// @Summary      Create an event in DRAFT status
// @Tags         events
// @Produce      json
// @Param        request   body      request.CreateEventRequest true "request body"
// @Success      201      {object}   domain.Event
// @Failure      400      {object}   response.Err
// @Failure      403      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /events [post]
// @Security     BearerToken
func (h *EventHandler) HandleCreateEvent(ctx *gin.Context) {
	user, respErr := getUserFromContext(ctx, h.uSvc)
	if respErr != nil {
		response.RenderErr(ctx, respErr)

		return
	}

	if user.Role != domain.RoleOrganizer && user.Role != domain.RoleAdmin {
		response.RenderErr(ctx, response.ErrPermissionDenied(errors.New("only organizers can create events")))

		return
	}

	var req request.CreateEventRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	event, err := h.svc.CreateEvent(ctx.Request.Context(), eventFromRequest(&req, user.ID))
	if err != nil {
		if errors.Is(err, service.ErrInvalidEventDates) {
			response.RenderErr(ctx, response.ErrBadRequest(err))

			return
		}

		err = fmt.Errorf("v1.HandleCreateEvent -> h.svc.CreateEvent -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))

		return
	}

	ctx.JSON(http.StatusCreated, event)
}

// HandleListEvents godoc
// @Summary      List published events
// @Tags         events
// @Produce      json
// @Success      200      {object}   []domain.Event
// @Failure      500      {object}   response.Err
// @Router       /events [get]
func (h *EventHandler) HandleListEvents(ctx *gin.Context) {
	events, err := h.svc.ListPublished(ctx.Request.Context())
	if err != nil {
		err = fmt.Errorf("v1.HandleListEvents -> h.svc.ListPublished -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))

		return
	}

	ctx.JSON(http.StatusOK, events)
}

// HandleListMyEvents godoc
// @Summary      List the authenticated organizer's events
// @Tags         events
// @Produce      json
// @Success      200      {object}   []domain.Event
// @Failure      500      {object}   response.Err
// @Router       /events/mine [get]
// @Security     BearerToken
func (h *EventHandler) HandleListMyEvents(ctx *gin.Context) {
	user, respErr := getUserFromContext(ctx, h.uSvc)
	if respErr != nil {
		response.RenderErr(ctx, respErr)

		return
	}

	events, err := h.svc.ListByOrganizer(ctx.Request.Context(), user.ID)
	if err != nil {
		err = fmt.Errorf("v1.HandleListMyEvents -> h.svc.ListByOrganizer -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))

		return
	}

	ctx.JSON(http.StatusOK, events)
}

// HandleGetEvent godoc
// @Summary      Get an event by ID
// @Tags         events
// @Produce      json
// @Param        eventID   path      int  true "event ID"
// @Success      200      {object}   domain.Event
// @Failure      400      {object}   response.Err
// @Failure      404      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /events/{eventID} [get]
func (h *EventHandler) HandleGetEvent(ctx *gin.Context) {
	eventID, err := parseIDParam(ctx, "eventID")
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	event, err := h.svc.GetEvent(ctx.Request.Context(), eventID)
	if err != nil {
		if errors.Is(err, service.ErrEventNotFound) {
			response.RenderErr(ctx, response.ErrNotFound("event", "ID", eventID))

			return
		}

		err = fmt.Errorf("v1.HandleGetEvent -> h.svc.GetEvent -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))

		return
	}

	ctx.JSON(http.StatusOK, event)
}

// HandleTransitionEvent godoc
// @Summary      Move an event along its lifecycle
// @Tags         events
// @Produce      json
// @Param        eventID   path      int  true "event ID"
// @Param        request   body      request.TransitionEventRequest true "request body"
// @Success      200      {object}   domain.Event
// @Failure      400      {object}   response.Err
// @Failure      403      {object}   response.Err
// @Failure      404      {object}   response.Err
// @Failure      409      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /events/{eventID}/status [patch]
// @Security     BearerToken
func (h *EventHandler) HandleTransitionEvent(ctx *gin.Context) {
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

	var req request.TransitionEventRequest
	if err = ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	if err = req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	event, err := h.svc.Transition(ctx.Request.Context(), eventID, user.ID, domain.EventStatus(req.Target))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEventNotFound):
			response.RenderErr(ctx, response.ErrNotFound("event", "ID", eventID))
		case errors.Is(err, service.ErrNotEventOrganizer):
			response.RenderErr(ctx, response.ErrPermissionDenied(err))
		case errors.Is(err, service.ErrInvalidTransition):
			response.RenderErr(ctx, response.ErrConflict(err))
		default:
			err = fmt.Errorf("v1.HandleTransitionEvent -> h.svc.Transition -> %w", err)
			response.RenderErr(ctx, response.ErrInternalServerError(err))
		}

		return
	}

	ctx.JSON(http.StatusOK, event)
}

// HandleEditEvent godoc
// @Summary      Edit an event within its status's mutability rules
// @Tags         events
// @Produce      json
// @Param        eventID   path      int  true "event ID"
// @Param        request   body      request.EditEventRequest true "request body"
// @Success      200      {object}   domain.Event
// @Failure      400      {object}   response.Err
// @Failure      403      {object}   response.Err
// @Failure      404      {object}   response.Err
// @Failure      409      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /events/{eventID} [put]
// @Security     BearerToken
func (h *EventHandler) HandleEditEvent(ctx *gin.Context) {
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

	var req request.EditEventRequest
	if err = ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	if err = req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	event, err := h.svc.EditEvent(ctx.Request.Context(), eventID, user.ID, patchFromRequest(&req))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEventNotFound):
			response.RenderErr(ctx, response.ErrNotFound("event", "ID", eventID))
		case errors.Is(err, service.ErrNotEventOrganizer):
			response.RenderErr(ctx, response.ErrPermissionDenied(err))
		case errors.Is(err, service.ErrFieldLocked),
			errors.Is(err, service.ErrLimitDecreaseRejected):
			response.RenderErr(ctx, response.ErrConflict(err))
		case errors.Is(err, service.ErrInvalidEventDates):
			response.RenderErr(ctx, response.ErrBadRequest(err))
		default:
			err = fmt.Errorf("v1.HandleEditEvent -> h.svc.EditEvent -> %w", err)
			response.RenderErr(ctx, response.ErrInternalServerError(err))
		}

		return
	}

	ctx.JSON(http.StatusOK, event)
}

// HandleAddFormField godoc
// @Summary      Add a custom form field
// @Tags         events
// @Produce      json
// @Param        eventID   path      int  true "event ID"
// @Param        request   body      request.AddFormFieldRequest true "request body"
// @Success      200      {object}   []domain.FormField
// @Failure      400      {object}   response.Err
// @Failure      403      {object}   response.Err
// @Failure      404      {object}   response.Err
// @Failure      409      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /events/{eventID}/form/fields [post]
// @Security     BearerToken
func (h *EventHandler) HandleAddFormField(ctx *gin.Context) {
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

	var req request.AddFormFieldRequest
	if err = ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	if err = req.FormFieldPayload.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	fields, err := h.formSvc.AddField(ctx.Request.Context(), eventID, user.ID, domain.FormField{
		ID:       req.ID,
		Type:     domain.FormFieldType(req.Type),
		Label:    req.Label,
		Required: req.Required,
		Options:  req.Options,
	})
	if err != nil {
		h.renderFormErr(ctx, eventID, err)

		return
	}

	ctx.JSON(http.StatusOK, fields)
}

// HandleRemoveFormField godoc
// @Summary      Remove a custom form field
// @Tags         events
// @Produce      json
// @Param        eventID   path      int     true "event ID"
// @Param        fieldID   path      string  true "field ID"
// @Success      200      {object}   []domain.FormField
// @Failure      400      {object}   response.Err
// @Failure      403      {object}   response.Err
// @Failure      404      {object}   response.Err
// @Failure      409      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /events/{eventID}/form/fields/{fieldID} [delete]
// @Security     BearerToken
func (h *EventHandler) HandleRemoveFormField(ctx *gin.Context) {
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

	fields, err := h.formSvc.RemoveField(ctx.Request.Context(), eventID, user.ID, ctx.Param("fieldID"))
	if err != nil {
		h.renderFormErr(ctx, eventID, err)

		return
	}

	ctx.JSON(http.StatusOK, fields)
}

// HandleUpdateFormField godoc
// @Summary      Reorder a custom form field or replace its options
// @Tags         events
// @Produce      json
// @Param        eventID   path      int     true "event ID"
// @Param        fieldID   path      string  true "field ID"
// @Param        request   body      request.UpdateFormFieldRequest true "request body"
// @Success      200      {object}   []domain.FormField
// @Failure      400      {object}   response.Err
// @Failure      403      {object}   response.Err
// @Failure      404      {object}   response.Err
// @Failure      409      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /events/{eventID}/form/fields/{fieldID} [patch]
// @Security     BearerToken
func (h *EventHandler) HandleUpdateFormField(ctx *gin.Context) {
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

	var req request.UpdateFormFieldRequest
	if err = ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	if err = req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	fieldID := ctx.Param("fieldID")

	var fields []domain.FormField
	if req.Position != nil {
		fields, err = h.formSvc.ReorderField(ctx.Request.Context(), eventID, user.ID, fieldID, *req.Position)
	} else {
		fields, err = h.formSvc.SetOptions(ctx.Request.Context(), eventID, user.ID, fieldID, *req.Options)
	}
	if err != nil {
		h.renderFormErr(ctx, eventID, err)

		return
	}

	ctx.JSON(http.StatusOK, fields)
}

func (h *EventHandler) renderFormErr(ctx *gin.Context, eventID uint, err error) {
	switch {
	case errors.Is(err, service.ErrEventNotFound):
		response.RenderErr(ctx, response.ErrNotFound("event", "ID", eventID))
	case errors.Is(err, service.ErrFieldNotFound):
		response.RenderErr(ctx, response.ErrNotFound("form field", "event ID", eventID))
	case errors.Is(err, service.ErrNotEventOrganizer):
		response.RenderErr(ctx, response.ErrPermissionDenied(err))
	case errors.Is(err, service.ErrFormLocked):
		response.RenderErr(ctx, response.ErrConflict(err))
	case errors.Is(err, service.ErrFieldIDExists):
		response.RenderErr(ctx, response.ErrBadRequest(err))
	default:
		err = fmt.Errorf("v1.renderFormErr -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
	}
}

func eventFromRequest(req *request.CreateEventRequest, organizerID uint) domain.Event {
	event := domain.Event{
		Name:                 req.Name,
		Description:          req.Description,
		Tags:                 req.Tags,
		Type:                 domain.EventType(req.Type),
		Eligibility:          domain.Eligibility(req.Eligibility),
		EventStartDate:       req.EventStartDate,
		EventEndDate:         req.EventEndDate,
		RegistrationDeadline: req.RegistrationDeadline,
		RegistrationLimit:    req.RegistrationLimit,
		RegistrationFee:      req.RegistrationFee,
		OrganizerID:          organizerID,
	}

	if event.Eligibility == "" {
		event.Eligibility = domain.EligibilityAll
	}

	for _, f := range req.CustomForm {
		event.CustomForm = append(event.CustomForm, domain.FormField{
			ID:       f.ID,
			Type:     domain.FormFieldType(f.Type),
			Label:    f.Label,
			Required: f.Required,
			Options:  f.Options,
		})
	}

	if req.Merchandise != nil {
		details := &domain.MerchandiseDetails{
			ItemName:                    req.Merchandise.ItemName,
			Price:                       req.Merchandise.Price,
			PurchaseLimitPerParticipant: req.Merchandise.PurchaseLimitPerParticipant,
		}
		for _, v := range req.Merchandise.Variants {
			details.Variants = append(details.Variants, domain.Variant{
				Size:  v.Size,
				Color: v.Color,
				Stock: v.Stock,
			})
		}
		event.Merchandise = details
	}

	return event
}

func patchFromRequest(req *request.EditEventRequest) service.EventPatch {
	patch := service.EventPatch{
		Name:                 req.Name,
		Description:          req.Description,
		Tags:                 req.Tags,
		EventStartDate:       req.EventStartDate,
		EventEndDate:         req.EventEndDate,
		RegistrationDeadline: req.RegistrationDeadline,
		RegistrationLimit:    req.RegistrationLimit,
		RegistrationFee:      req.RegistrationFee,
	}

	if req.Eligibility != nil {
		eligibility := domain.Eligibility(*req.Eligibility)
		patch.Eligibility = &eligibility
	}

	if req.CustomForm != nil {
		fields := make([]domain.FormField, len(*req.CustomForm))
		for i, f := range *req.CustomForm {
			fields[i] = domain.FormField{
				ID:       f.ID,
				Type:     domain.FormFieldType(f.Type),
				Label:    f.Label,
				Required: f.Required,
				Options:  f.Options,
			}
		}
		patch.CustomForm = &fields
	}

	return patch
}
