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

type MerchOrderService interface {
	SubmitOrder(ctx context.Context, eventID, participantID uint, size, color string, qty int, proofRef string) (domain.Registration, error)
	Approve(ctx context.Context, orderID, actorID uint) (domain.Registration, error)
	Reject(ctx context.Context, orderID, actorID uint) (domain.Registration, error)
	ListOrders(ctx context.Context, eventID, actorID uint, status domain.PaymentStatus) ([]domain.Registration, error)
}

type OrderHandler struct {
	svc  MerchOrderService
	uSvc UserService
}

func NewOrderHandler(svc MerchOrderService, uSvc UserService) *OrderHandler {
	return &OrderHandler{
		svc:  svc,
		uSvc: uSvc,
	}
}

// HandlePurchase godoc
// @Summary      Submit a merchandise order
// @Tags         orders
// @Produce      json
// @Param        eventID   path      int  true "event ID"
// @Param        request   body      request.PurchaseRequest true "request body"
// @Success      201      {object}   domain.Registration
// @Failure      400      {object}   response.Err
// @Failure      404      {object}   response.Err
// @Failure      409      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /events/{eventID}/purchase [post]
// @Security     BearerToken
func (h *OrderHandler) HandlePurchase(ctx *gin.Context) {
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

	var req request.PurchaseRequest
	if err = ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	if err = req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	order, err := h.svc.SubmitOrder(ctx.Request.Context(), eventID, user.ID,
		req.Size, req.Color, req.Quantity, req.PaymentProofRef)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEventNotFound):
			response.RenderErr(ctx, response.ErrNotFound("event", "ID", eventID))
		case errors.Is(err, service.ErrWrongEventType),
			errors.Is(err, service.ErrMissingPaymentProof),
			errors.Is(err, service.ErrVariantNotFound):
			response.RenderErr(ctx, response.ErrBadRequest(err))
		case errors.Is(err, service.ErrEventNotOpen),
			errors.Is(err, service.ErrPurchaseLimitExceeded):
			response.RenderErr(ctx, response.ErrConflict(err))
		default:
			err = fmt.Errorf("v1.HandlePurchase -> h.svc.SubmitOrder -> %w", err)
			response.RenderErr(ctx, response.ErrInternalServerError(err))
		}

		return
	}

	ctx.JSON(http.StatusCreated, order)
}

// HandleListOrders godoc
// @Summary      List an event's orders (organizer only)
// @Tags         orders
// @Produce      json
// @Param        eventID   path      int     true  "event ID"
// @Param        status    query     string  false "payment status filter"
// @Success      200      {object}   []domain.Registration
// @Failure      400      {object}   response.Err
// @Failure      403      {object}   response.Err
// @Failure      404      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /events/{eventID}/orders [get]
// @Security     BearerToken
func (h *OrderHandler) HandleListOrders(ctx *gin.Context) {
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

	status := domain.PaymentStatus(ctx.Query("status"))

	orders, err := h.svc.ListOrders(ctx.Request.Context(), eventID, user.ID, status)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEventNotFound):
			response.RenderErr(ctx, response.ErrNotFound("event", "ID", eventID))
		case errors.Is(err, service.ErrNotEventOrganizer):
			response.RenderErr(ctx, response.ErrPermissionDenied(err))
		default:
			err = fmt.Errorf("v1.HandleListOrders -> h.svc.ListOrders -> %w", err)
			response.RenderErr(ctx, response.ErrInternalServerError(err))
		}

		return
	}

	ctx.JSON(http.StatusOK, orders)
}

// HandleApproveOrder godoc
// @Summary      Approve a pending order
// @Tags         orders
// @Produce      json
// @Param        eventID   path      int  true "event ID"
// @Param        orderID   path      int  true "order ID"
// @Success      200      {object}   domain.Registration
// @Failure      400      {object}   response.Err
// @Failure      403      {object}   response.Err
// @Failure      404      {object}   response.Err
// @Failure      409      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /events/{eventID}/orders/{orderID}/approve [patch]
// @Security     BearerToken
func (h *OrderHandler) HandleApproveOrder(ctx *gin.Context) {
	h.decideOrder(ctx, h.svc.Approve, "Approve")
}

// HandleRejectOrder godoc
// @Summary      Reject a pending order
// @Tags         orders
// @Produce      json
// @Param        eventID   path      int  true "event ID"
// @Param        orderID   path      int  true "order ID"
// @Success      200      {object}   domain.Registration
// @Failure      400      {object}   response.Err
// @Failure      403      {object}   response.Err
// @Failure      404      {object}   response.Err
// @Failure      409      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /events/{eventID}/orders/{orderID}/reject [patch]
// @Security     BearerToken
func (h *OrderHandler) HandleRejectOrder(ctx *gin.Context) {
	h.decideOrder(ctx, h.svc.Reject, "Reject")
}

func (h *OrderHandler) decideOrder(ctx *gin.Context, decide func(context.Context, uint, uint) (domain.Registration, error), name string) {
	user, respErr := getUserFromContext(ctx, h.uSvc)
	if respErr != nil {
		response.RenderErr(ctx, respErr)

		return
	}

	orderID, err := parseIDParam(ctx, "orderID")
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	order, err := decide(ctx.Request.Context(), orderID, user.ID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrRegistrationNotFound):
			response.RenderErr(ctx, response.ErrNotFound("order", "ID", orderID))
		case errors.Is(err, service.ErrNotEventOrganizer):
			response.RenderErr(ctx, response.ErrPermissionDenied(err))
		case errors.Is(err, service.ErrOrderNotPending),
			errors.Is(err, service.ErrInsufficientStock),
			errors.Is(err, service.ErrVariantNotFound):
			response.RenderErr(ctx, response.ErrConflict(err))
		default:
			err = fmt.Errorf("v1.Handle%vOrder -> h.svc.%v -> %w", name, name, err)
			response.RenderErr(ctx, response.ErrInternalServerError(err))
		}

		return
	}

	ctx.JSON(http.StatusOK, order)
}
