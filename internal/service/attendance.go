package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/felicity-events/eventops-api/internal/domain"
	"github.com/felicity-events/eventops-api/internal/pkg/ticket"
)

var (
	ErrMalformedQR    = ticket.ErrMalformedPayload
	ErrEventMismatch  = errors.New("ticket belongs to a different event")
	ErrReasonRequired = errors.New("a reason is required for manual overrides")
	ErrUnknownAction  = errors.New("unknown attendance action")
)

type AttendanceRepository interface {
	FindByID(ctx context.Context, id uint) (domain.Registration, error)
	FindByTicketID(ctx context.Context, ticketID string) (domain.Registration, error)
	MarkAttended(ctx context.Context, id uint, at time.Time) (bool, error)
	ClearAttendance(ctx context.Context, id uint, status domain.RegistrationStatus) error
	AppendAudit(ctx context.Context, entry domain.AttendanceAuditEntry) (domain.AttendanceAuditEntry, error)
	FindAuditByRegistration(ctx context.Context, registrationID uint) ([]domain.AttendanceAuditEntry, error)
}

type AttendanceUserRepository interface {
	FindByID(ctx context.Context, id uint) (domain.User, error)
}

// AttendanceService verifies tickets at the door. Marking is idempotent: of
// any number of concurrent scans of one ticket, exactly one gets a success
// outcome and the rest get duplicates.
type AttendanceService struct {
	regs  AttendanceRepository
	users AttendanceUserRepository
}

func NewAttendanceService(regs AttendanceRepository, users AttendanceUserRepository) *AttendanceService {
	return &AttendanceService{
		regs:  regs,
		users: users,
	}
}

// Scan decodes a raw QR payload and marks the ticket within the scanning
// event's scope.
func (s *AttendanceService) Scan(ctx context.Context, eventID uint, rawPayload string) (domain.ScanOutcome, error) {
	ticketID, err := ticket.DecodePayload(rawPayload)
	if err != nil {
		return domain.ScanOutcome{}, ErrMalformedQR
	}

	return s.MarkAttendance(ctx, ticketID, eventID)
}

// MarkAttendance marks a ticket attended. A scopeEventID of zero means the
// caller is unscoped (manual entry at a central desk) and the event check is
// skipped.
func (s *AttendanceService) MarkAttendance(ctx context.Context, ticketID string, scopeEventID uint) (domain.ScanOutcome, error) {
	reg, err := s.regs.FindByTicketID(ctx, ticketID)
	if err != nil {
		return domain.ScanOutcome{}, fmt.Errorf("s.regs.FindByTicketID -> %w", err)
	}

	if scopeEventID != 0 && reg.EventID != scopeEventID {
		return domain.ScanOutcome{}, ErrEventMismatch
	}

	participant, err := s.users.FindByID(ctx, reg.ParticipantID)
	if err != nil {
		return domain.ScanOutcome{}, fmt.Errorf("s.users.FindByID -> %w", err)
	}

	now := time.Now()
	marked, err := s.regs.MarkAttended(ctx, reg.ID, now)
	if err != nil {
		return domain.ScanOutcome{}, fmt.Errorf("s.regs.MarkAttended -> %w", err)
	}

	if !marked {
		attended, err := s.regs.FindByID(ctx, reg.ID)
		if err != nil {
			return domain.ScanOutcome{}, fmt.Errorf("s.regs.FindByID -> %w", err)
		}

		return domain.ScanOutcome{
			Duplicate:   true,
			TicketID:    ticketID,
			AttendedAt:  attended.AttendedAt,
			Participant: participant,
		}, nil
	}

	return domain.ScanOutcome{
		TicketID:    ticketID,
		AttendedAt:  &now,
		Participant: participant,
	}, nil
}

// ManualOverride lets an organizer set or clear attendance on a known
// registration. MARK is an idempotent set-true; UNMARK restores the status
// the registration had before it was marked. Every override is audited.
func (s *AttendanceService) ManualOverride(ctx context.Context, registrationID uint, action domain.AttendanceAction, reason string, actorID uint) (domain.AttendanceAuditEntry, error) {
	if strings.TrimSpace(reason) == "" {
		return domain.AttendanceAuditEntry{}, ErrReasonRequired
	}

	reg, err := s.regs.FindByID(ctx, registrationID)
	if err != nil {
		return domain.AttendanceAuditEntry{}, fmt.Errorf("s.regs.FindByID -> %w", err)
	}

	switch action {
	case domain.AttendanceActionMark:
		if _, err = s.regs.MarkAttended(ctx, registrationID, time.Now()); err != nil {
			return domain.AttendanceAuditEntry{}, fmt.Errorf("s.regs.MarkAttended -> %w", err)
		}

	case domain.AttendanceActionUnmark:
		status := domain.RegistrationStatusRegistered
		if reg.Purchase != nil && reg.Purchase.PaymentStatus == domain.PaymentStatusApproved {
			status = domain.RegistrationStatusPurchased
		}
		if err = s.regs.ClearAttendance(ctx, registrationID, status); err != nil {
			return domain.AttendanceAuditEntry{}, fmt.Errorf("s.regs.ClearAttendance -> %w", err)
		}

	default:
		return domain.AttendanceAuditEntry{}, ErrUnknownAction
	}

	entry, err := s.regs.AppendAudit(ctx, domain.AttendanceAuditEntry{
		RegistrationID: registrationID,
		Action:         action,
		Reason:         reason,
		ActorID:        actorID,
	})
	if err != nil {
		return domain.AttendanceAuditEntry{}, fmt.Errorf("s.regs.AppendAudit -> %w", err)
	}

	return entry, nil
}

func (s *AttendanceService) AuditTrail(ctx context.Context, registrationID uint) ([]domain.AttendanceAuditEntry, error) {
	entries, err := s.regs.FindAuditByRegistration(ctx, registrationID)
	if err != nil {
		return nil, fmt.Errorf("s.regs.FindAuditByRegistration -> %w", err)
	}

	return entries, nil
}
