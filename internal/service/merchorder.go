package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/felicity-events/eventops-api/internal/domain"
	"github.com/felicity-events/eventops-api/internal/pkg/ticket"
)

var (
	ErrPurchaseLimitExceeded = errors.New("purchase limit exceeded for participant")
	ErrMissingPaymentProof   = errors.New("payment proof is required")
	ErrOrderNotPending       = errors.New("order has already been decided")
)

type MerchOrderRepository interface {
	Create(ctx context.Context, reg domain.Registration) (domain.Registration, error)
	FindByID(ctx context.Context, id uint) (domain.Registration, error)
	FindOrdersByEvent(ctx context.Context, eventID uint, paymentStatus domain.PaymentStatus) ([]domain.Registration, error)
	SumOrderQuantity(ctx context.Context, eventID, participantID uint) (int, error)
	DecidePayment(ctx context.Context, id uint, paymentStatus domain.PaymentStatus, regStatus domain.RegistrationStatus, ticketID string) (bool, error)
}

// MerchOrderService runs the purchase pipeline for MERCHANDISE events.
// Submission creates a PENDING order without touching stock; only approval
// consumes stock, so pending orders may collectively exceed what is left and
// late approvals fail cleanly.
type MerchOrderService struct {
	events RegistrationEventRepository
	orders MerchOrderRepository
	ledger *CapacityLedger
}

func NewMerchOrderService(events RegistrationEventRepository, orders MerchOrderRepository, ledger *CapacityLedger) *MerchOrderService {
	return &MerchOrderService{
		events: events,
		orders: orders,
		ledger: ledger,
	}
}

func (s *MerchOrderService) SubmitOrder(ctx context.Context, eventID, participantID uint, size, color string, qty int, proofRef string) (domain.Registration, error) {
	event, err := s.events.FindByID(ctx, eventID)
	if err != nil {
		return domain.Registration{}, fmt.Errorf("s.events.FindByID -> %w", err)
	}

	if event.Type != domain.EventTypeMerchandise || event.Merchandise == nil {
		return domain.Registration{}, ErrWrongEventType
	}
	if !event.OpenForRegistration(time.Now()) {
		return domain.Registration{}, ErrEventNotOpen
	}
	if proofRef == "" {
		return domain.Registration{}, ErrMissingPaymentProof
	}

	if _, ok := event.FindVariant(size, color); !ok {
		return domain.Registration{}, ErrVariantNotFound
	}

	if limit := event.Merchandise.PurchaseLimitPerParticipant; limit > 0 {
		ordered, err := s.orders.SumOrderQuantity(ctx, eventID, participantID)
		if err != nil {
			return domain.Registration{}, fmt.Errorf("s.orders.SumOrderQuantity -> %w", err)
		}
		if ordered+qty > limit {
			return domain.Registration{}, ErrPurchaseLimitExceeded
		}
	}

	created, err := s.orders.Create(ctx, domain.Registration{
		EventID:       eventID,
		ParticipantID: participantID,
		Status:        domain.RegistrationStatusRegistered,
		Purchase: &domain.MerchandisePurchase{
			Size:            size,
			Color:           color,
			Quantity:        qty,
			TotalAmount:     event.Merchandise.Price * float64(qty),
			PaymentStatus:   domain.PaymentStatusPending,
			PaymentProofRef: proofRef,
		},
	})
	if err != nil {
		return domain.Registration{}, fmt.Errorf("s.orders.Create -> %w", err)
	}

	return created, nil
}

// Approve finalizes a pending order. Stock is re-validated and consumed under
// the event's lock, so two approvals racing for the last unit cannot both
// win; the loser's order stays PENDING.
func (s *MerchOrderService) Approve(ctx context.Context, orderID, actorID uint) (domain.Registration, error) {
	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return domain.Registration{}, fmt.Errorf("s.orders.FindByID -> %w", err)
	}

	event, err := s.events.FindByID(ctx, order.EventID)
	if err != nil {
		return domain.Registration{}, fmt.Errorf("s.events.FindByID -> %w", err)
	}
	if event.OrganizerID != actorID {
		return domain.Registration{}, ErrNotEventOrganizer
	}

	err = s.ledger.WithEventLock(order.EventID, func() error {
		current, err := s.orders.FindByID(ctx, orderID)
		if err != nil {
			return fmt.Errorf("s.orders.FindByID -> %w", err)
		}
		if current.Purchase == nil || current.Purchase.PaymentStatus != domain.PaymentStatusPending {
			return ErrOrderNotPending
		}

		purchase := current.Purchase
		if err = s.ledger.store.ReserveVariantStock(ctx, current.EventID, purchase.Size, purchase.Color, purchase.Quantity); err != nil {
			return err
		}

		decided, err := s.orders.DecidePayment(ctx, orderID,
			domain.PaymentStatusApproved, domain.RegistrationStatusPurchased, ticket.NewID())
		if err != nil {
			return fmt.Errorf("s.orders.DecidePayment -> %w", err)
		}
		if !decided {
			return ErrOrderNotPending
		}

		return nil
	})
	if err != nil {
		return domain.Registration{}, err
	}

	approved, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return domain.Registration{}, fmt.Errorf("s.orders.FindByID -> %w", err)
	}

	return approved, nil
}

// Reject marks a pending order REJECTED. No stock was reserved, so there is
// nothing to give back.
func (s *MerchOrderService) Reject(ctx context.Context, orderID, actorID uint) (domain.Registration, error) {
	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return domain.Registration{}, fmt.Errorf("s.orders.FindByID -> %w", err)
	}

	event, err := s.events.FindByID(ctx, order.EventID)
	if err != nil {
		return domain.Registration{}, fmt.Errorf("s.events.FindByID -> %w", err)
	}
	if event.OrganizerID != actorID {
		return domain.Registration{}, ErrNotEventOrganizer
	}

	decided, err := s.orders.DecidePayment(ctx, orderID,
		domain.PaymentStatusRejected, domain.RegistrationStatusRegistered, "")
	if err != nil {
		return domain.Registration{}, fmt.Errorf("s.orders.DecidePayment -> %w", err)
	}
	if !decided {
		return domain.Registration{}, ErrOrderNotPending
	}

	rejected, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return domain.Registration{}, fmt.Errorf("s.orders.FindByID -> %w", err)
	}

	return rejected, nil
}

// ListOrders returns the event's orders, optionally filtered by payment
// status.
func (s *MerchOrderService) ListOrders(ctx context.Context, eventID, actorID uint, status domain.PaymentStatus) ([]domain.Registration, error) {
	event, err := s.events.FindByID(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("s.events.FindByID -> %w", err)
	}
	if event.OrganizerID != actorID {
		return nil, ErrNotEventOrganizer
	}

	orders, err := s.orders.FindOrdersByEvent(ctx, eventID, status)
	if err != nil {
		return nil, fmt.Errorf("s.orders.FindOrdersByEvent -> %w", err)
	}

	return orders, nil
}
