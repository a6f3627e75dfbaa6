package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/felicity-events/eventops-api/internal/domain"
	"github.com/felicity-events/eventops-api/internal/pkg/ticket"
	"github.com/felicity-events/eventops-api/internal/repository"
)

var (
	ErrRegistrationNotFound = repository.ErrRegistrationNotFound
	ErrTicketNotFound       = repository.ErrTicketNotFound
	ErrEventNotOpen         = errors.New("event is not open for registration")
	ErrAlreadyRegistered    = errors.New("participant already has a live registration")
	ErrNotCancellable       = errors.New("registration cannot be cancelled")
	ErrNotRegistrationOwner = errors.New("registration belongs to another participant")
	ErrWrongEventType       = errors.New("operation not supported for this event type")
)

type RegistrationRepository interface {
	Create(ctx context.Context, reg domain.Registration) (domain.Registration, error)
	FindByID(ctx context.Context, id uint) (domain.Registration, error)
	FindByTicketID(ctx context.Context, ticketID string) (domain.Registration, error)
	FindLive(ctx context.Context, eventID, participantID uint) (domain.Registration, error)
	FindByEvent(ctx context.Context, eventID uint) ([]domain.Registration, error)
	FindByParticipant(ctx context.Context, participantID uint) ([]domain.Registration, error)
	UpdateStatus(ctx context.Context, id uint, status domain.RegistrationStatus) error
}

type RegistrationEventRepository interface {
	FindByID(ctx context.Context, id uint) (domain.Event, error)
}

type RegistrationService struct {
	events RegistrationEventRepository
	regs   RegistrationRepository
	ledger *CapacityLedger
}

func NewRegistrationService(events RegistrationEventRepository, regs RegistrationRepository, ledger *CapacityLedger) *RegistrationService {
	return &RegistrationService{
		events: events,
		regs:   regs,
		ledger: ledger,
	}
}

// Register signs a participant up for a NORMAL event: the event must be open,
// required form responses present, and a seat available. The seat is taken
// through the ledger before the registration row is written and handed back
// if that write fails.
func (s *RegistrationService) Register(ctx context.Context, eventID, participantID uint, responses map[string]string) (domain.Registration, error) {
	event, err := s.events.FindByID(ctx, eventID)
	if err != nil {
		return domain.Registration{}, fmt.Errorf("s.events.FindByID -> %w", err)
	}

	if event.Type != domain.EventTypeNormal {
		return domain.Registration{}, ErrWrongEventType
	}
	if !event.OpenForRegistration(time.Now()) {
		return domain.Registration{}, ErrEventNotOpen
	}

	if err = ValidateResponses(event.CustomForm, responses); err != nil {
		return domain.Registration{}, err
	}

	_, err = s.regs.FindLive(ctx, eventID, participantID)
	if err == nil {
		return domain.Registration{}, ErrAlreadyRegistered
	}
	if !errors.Is(err, ErrRegistrationNotFound) {
		return domain.Registration{}, fmt.Errorf("s.regs.FindLive -> %w", err)
	}

	if err = s.ledger.Reserve(ctx, eventID); err != nil {
		return domain.Registration{}, err
	}

	created, err := s.regs.Create(ctx, domain.Registration{
		EventID:         eventID,
		ParticipantID:   participantID,
		Status:          domain.RegistrationStatusRegistered,
		CustomResponses: responses,
		TicketID:        ticket.NewID(),
	})
	if err != nil {
		if releaseErr := s.ledger.Release(ctx, eventID); releaseErr != nil {
			zap.L().Error("failed to release seat after registration create failure",
				zap.Uint("eventID", eventID), zap.Error(releaseErr))
		}

		return domain.Registration{}, fmt.Errorf("s.regs.Create -> %w", err)
	}

	return created, nil
}

// Cancel sets the participant's registration to CANCELLED and releases its
// seat.
func (s *RegistrationService) Cancel(ctx context.Context, registrationID, participantID uint) (domain.Registration, error) {
	reg, err := s.regs.FindByID(ctx, registrationID)
	if err != nil {
		return domain.Registration{}, fmt.Errorf("s.regs.FindByID -> %w", err)
	}

	if reg.ParticipantID != participantID {
		return domain.Registration{}, ErrNotRegistrationOwner
	}
	if !reg.IsCancellable() {
		return domain.Registration{}, ErrNotCancellable
	}

	if err = s.regs.UpdateStatus(ctx, registrationID, domain.RegistrationStatusCancelled); err != nil {
		return domain.Registration{}, fmt.Errorf("s.regs.UpdateStatus -> %w", err)
	}

	if err = s.ledger.Release(ctx, reg.EventID); err != nil {
		return domain.Registration{}, fmt.Errorf("s.ledger.Release -> %w", err)
	}

	reg.Status = domain.RegistrationStatusCancelled

	return reg, nil
}

// CancelByEvent cancels the participant's live registration for an event.
func (s *RegistrationService) CancelByEvent(ctx context.Context, eventID, participantID uint) (domain.Registration, error) {
	reg, err := s.regs.FindLive(ctx, eventID, participantID)
	if err != nil {
		return domain.Registration{}, fmt.Errorf("s.regs.FindLive -> %w", err)
	}

	return s.Cancel(ctx, reg.ID, participantID)
}

func (s *RegistrationService) ListByParticipant(ctx context.Context, participantID uint) ([]domain.Registration, error) {
	regs, err := s.regs.FindByParticipant(ctx, participantID)
	if err != nil {
		return nil, fmt.Errorf("s.regs.FindByParticipant -> %w", err)
	}

	return regs, nil
}

// ListByEvent is organizer-facing and checks event ownership.
func (s *RegistrationService) ListByEvent(ctx context.Context, eventID, actorID uint) ([]domain.Registration, error) {
	event, err := s.events.FindByID(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("s.events.FindByID -> %w", err)
	}
	if event.OrganizerID != actorID {
		return nil, ErrNotEventOrganizer
	}

	regs, err := s.regs.FindByEvent(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("s.regs.FindByEvent -> %w", err)
	}

	return regs, nil
}

func (s *RegistrationService) GetTicket(ctx context.Context, ticketID string) (domain.Registration, error) {
	reg, err := s.regs.FindByTicketID(ctx, ticketID)
	if err != nil {
		return domain.Registration{}, fmt.Errorf("s.regs.FindByTicketID -> %w", err)
	}

	return reg, nil
}
