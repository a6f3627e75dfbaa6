package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felicity-events/eventops-api/internal/domain"
)

func merchEvent(repo *memEventRepo, stock, purchaseLimit int) domain.Event {
	return repo.seed(domain.Event{
		Name:   "Felicity Merch",
		Type:   domain.EventTypeMerchandise,
		Status: domain.EventStatusPublished,
		Merchandise: &domain.MerchandiseDetails{
			ItemName:                    "T-Shirt",
			Price:                       399,
			PurchaseLimitPerParticipant: purchaseLimit,
			Variants: []domain.Variant{
				{Size: "M", Color: "black", Stock: stock},
				{Size: "L", Color: "white", Stock: 10},
			},
		},
		OrganizerID: organizerID,
	})
}

func newOrderFixture(stock, purchaseLimit int) (*memEventRepo, *memRegRepo, *MerchOrderService, domain.Event) {
	eventRepo := newMemEventRepo()
	regRepo := newMemRegRepo()
	svc := NewMerchOrderService(eventRepo, regRepo, NewCapacityLedger(eventRepo))
	event := merchEvent(eventRepo, stock, purchaseLimit)

	return eventRepo, regRepo, svc, event
}

func TestMerchOrderService_SubmitOrder(t *testing.T) {
	_, _, svc, event := newOrderFixture(5, 0)

	order, err := svc.SubmitOrder(context.Background(), event.ID, 7, "M", "black", 2, "upi-ref-001")
	require.NoError(t, err)
	require.NotNil(t, order.Purchase)
	assert.Equal(t, domain.PaymentStatusPending, order.Purchase.PaymentStatus)
	assert.Equal(t, domain.RegistrationStatusRegistered, order.Status)
	assert.Equal(t, 798.0, order.Purchase.TotalAmount)
	assert.Empty(t, order.TicketID)
}

func TestMerchOrderService_SubmitOrder_Validation(t *testing.T) {
	eventRepo, _, svc, event := newOrderFixture(5, 0)

	_, err := svc.SubmitOrder(context.Background(), event.ID, 7, "M", "black", 1, "")
	assert.ErrorIs(t, err, ErrMissingPaymentProof)

	_, err = svc.SubmitOrder(context.Background(), event.ID, 7, "XXL", "black", 1, "upi-ref-002")
	assert.ErrorIs(t, err, ErrVariantNotFound)

	normal := eventRepo.seed(domain.Event{
		Name:        "Talk",
		Type:        domain.EventTypeNormal,
		Status:      domain.EventStatusPublished,
		OrganizerID: organizerID,
	})
	_, err = svc.SubmitOrder(context.Background(), normal.ID, 7, "M", "black", 1, "upi-ref-003")
	assert.ErrorIs(t, err, ErrWrongEventType)

	closed := eventRepo.seed(domain.Event{
		Name:        "Sold out drop",
		Type:        domain.EventTypeMerchandise,
		Status:      domain.EventStatusClosed,
		Merchandise: &domain.MerchandiseDetails{ItemName: "Cap"},
		OrganizerID: organizerID,
	})
	_, err = svc.SubmitOrder(context.Background(), closed.ID, 7, "M", "black", 1, "upi-ref-004")
	assert.ErrorIs(t, err, ErrEventNotOpen)
}

func TestMerchOrderService_SubmitOrder_PurchaseLimit(t *testing.T) {
	_, _, svc, event := newOrderFixture(20, 3)

	_, err := svc.SubmitOrder(context.Background(), event.ID, 7, "M", "black", 2, "upi-ref-005")
	require.NoError(t, err)

	// Pending quantity counts against the limit.
	_, err = svc.SubmitOrder(context.Background(), event.ID, 7, "L", "white", 2, "upi-ref-006")
	assert.ErrorIs(t, err, ErrPurchaseLimitExceeded)

	_, err = svc.SubmitOrder(context.Background(), event.ID, 7, "L", "white", 1, "upi-ref-007")
	assert.NoError(t, err)

	// Other participants have their own allowance.
	_, err = svc.SubmitOrder(context.Background(), event.ID, 8, "M", "black", 3, "upi-ref-008")
	assert.NoError(t, err)
}

func TestMerchOrderService_Approve(t *testing.T) {
	eventRepo, _, svc, event := newOrderFixture(5, 0)

	order, err := svc.SubmitOrder(context.Background(), event.ID, 7, "M", "black", 2, "upi-ref-009")
	require.NoError(t, err)

	_, err = svc.Approve(context.Background(), order.ID, organizerID+1)
	assert.ErrorIs(t, err, ErrNotEventOrganizer)

	approved, err := svc.Approve(context.Background(), order.ID, organizerID)
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentStatusApproved, approved.Purchase.PaymentStatus)
	assert.Equal(t, domain.RegistrationStatusPurchased, approved.Status)
	assert.NotEmpty(t, approved.TicketID)

	stored, err := eventRepo.FindByID(context.Background(), event.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, stored.Merchandise.Variants[0].Stock)

	// Decisions are final.
	_, err = svc.Approve(context.Background(), order.ID, organizerID)
	assert.ErrorIs(t, err, ErrOrderNotPending)
}

func TestMerchOrderService_Approve_LastUnit(t *testing.T) {
	_, regRepo, svc, event := newOrderFixture(1, 0)

	first, err := svc.SubmitOrder(context.Background(), event.ID, 7, "M", "black", 1, "upi-ref-010")
	require.NoError(t, err)
	second, err := svc.SubmitOrder(context.Background(), event.ID, 8, "M", "black", 1, "upi-ref-011")
	require.NoError(t, err)

	_, err = svc.Approve(context.Background(), first.ID, organizerID)
	require.NoError(t, err)

	// The second order loses the last unit but stays PENDING for a retry or
	// rejection.
	_, err = svc.Approve(context.Background(), second.ID, organizerID)
	assert.ErrorIs(t, err, ErrInsufficientStock)

	current, err := regRepo.FindByID(context.Background(), second.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentStatusPending, current.Purchase.PaymentStatus)
}

func TestMerchOrderService_Reject(t *testing.T) {
	eventRepo, _, svc, event := newOrderFixture(5, 0)

	order, err := svc.SubmitOrder(context.Background(), event.ID, 7, "M", "black", 2, "upi-ref-012")
	require.NoError(t, err)

	rejected, err := svc.Reject(context.Background(), order.ID, organizerID)
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentStatusRejected, rejected.Purchase.PaymentStatus)
	assert.Empty(t, rejected.TicketID)

	// Rejection never touched stock.
	stored, err := eventRepo.FindByID(context.Background(), event.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, stored.Merchandise.Variants[0].Stock)

	_, err = svc.Approve(context.Background(), order.ID, organizerID)
	assert.ErrorIs(t, err, ErrOrderNotPending)
}

func TestMerchOrderService_ListOrders(t *testing.T) {
	_, _, svc, event := newOrderFixture(5, 0)

	first, err := svc.SubmitOrder(context.Background(), event.ID, 7, "M", "black", 1, "upi-ref-013")
	require.NoError(t, err)
	_, err = svc.SubmitOrder(context.Background(), event.ID, 8, "L", "white", 1, "upi-ref-014")
	require.NoError(t, err)
	_, err = svc.Approve(context.Background(), first.ID, organizerID)
	require.NoError(t, err)

	all, err := svc.ListOrders(context.Background(), event.ID, organizerID, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	pending, err := svc.ListOrders(context.Background(), event.ID, organizerID, domain.PaymentStatusPending)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, uint(8), pending[0].ParticipantID)

	_, err = svc.ListOrders(context.Background(), event.ID, organizerID+1, "")
	assert.ErrorIs(t, err, ErrNotEventOrganizer)
}
