package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/felicity-events/eventops-api/internal/domain"
	"github.com/felicity-events/eventops-api/internal/repository/dao"
)

var (
	ErrRegistrationNotFound = dao.ErrRegistrationNotFound
	ErrTicketNotFound       = dao.ErrTicketNotFound
)

type RegistrationDAO interface {
	Insert(ctx context.Context, reg dao.Registration) (dao.Registration, error)
	FindByID(ctx context.Context, id uint) (dao.Registration, error)
	FindByTicketID(ctx context.Context, ticketID string) (dao.Registration, error)
	FindLive(ctx context.Context, eventID, participantID uint) (dao.Registration, error)
	FindByEvent(ctx context.Context, eventID uint) ([]dao.Registration, error)
	FindOrdersByEvent(ctx context.Context, eventID uint, paymentStatus string) ([]dao.Registration, error)
	FindByParticipant(ctx context.Context, participantID uint) ([]dao.Registration, error)
	UpdateStatus(ctx context.Context, id uint, status string) error
	SumOrderQuantity(ctx context.Context, eventID, participantID uint) (int, error)
	DecidePayment(ctx context.Context, id uint, paymentStatus, regStatus, ticketID string) (bool, error)
	MarkAttended(ctx context.Context, id uint, at time.Time) (bool, error)
	ClearAttendance(ctx context.Context, id uint, status string) error
	InsertAudit(ctx context.Context, entry dao.AttendanceAudit) (dao.AttendanceAudit, error)
	FindAuditByRegistration(ctx context.Context, registrationID uint) ([]dao.AttendanceAudit, error)
}

type RegistrationRepository struct {
	dao RegistrationDAO
}

func NewRegistrationRepository(dao RegistrationDAO) *RegistrationRepository {
	return &RegistrationRepository{
		dao: dao,
	}
}

func (r *RegistrationRepository) Create(ctx context.Context, reg domain.Registration) (domain.Registration, error) {
	created, err := r.dao.Insert(ctx, r.domainToDAO(reg))
	if err != nil {
		return domain.Registration{}, fmt.Errorf("r.dao.Insert -> %w", err)
	}

	return r.daoToDomain(created), nil
}

func (r *RegistrationRepository) FindByID(ctx context.Context, id uint) (domain.Registration, error) {
	found, err := r.dao.FindByID(ctx, id)
	if err != nil {
		return domain.Registration{}, fmt.Errorf("r.dao.FindByID -> %w", err)
	}

	return r.daoToDomain(found), nil
}

func (r *RegistrationRepository) FindByTicketID(ctx context.Context, ticketID string) (domain.Registration, error) {
	found, err := r.dao.FindByTicketID(ctx, ticketID)
	if err != nil {
		return domain.Registration{}, fmt.Errorf("r.dao.FindByTicketID -> %w", err)
	}

	return r.daoToDomain(found), nil
}

func (r *RegistrationRepository) FindLive(ctx context.Context, eventID, participantID uint) (domain.Registration, error) {
	found, err := r.dao.FindLive(ctx, eventID, participantID)
	if err != nil {
		return domain.Registration{}, fmt.Errorf("r.dao.FindLive -> %w", err)
	}

	return r.daoToDomain(found), nil
}

func (r *RegistrationRepository) FindByEvent(ctx context.Context, eventID uint) ([]domain.Registration, error) {
	found, err := r.dao.FindByEvent(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindByEvent -> %w", err)
	}

	return r.daosToDomain(found), nil
}

func (r *RegistrationRepository) FindOrdersByEvent(ctx context.Context, eventID uint, paymentStatus domain.PaymentStatus) ([]domain.Registration, error) {
	found, err := r.dao.FindOrdersByEvent(ctx, eventID, string(paymentStatus))
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindOrdersByEvent -> %w", err)
	}

	return r.daosToDomain(found), nil
}

func (r *RegistrationRepository) FindByParticipant(ctx context.Context, participantID uint) ([]domain.Registration, error) {
	found, err := r.dao.FindByParticipant(ctx, participantID)
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindByParticipant -> %w", err)
	}

	return r.daosToDomain(found), nil
}

func (r *RegistrationRepository) UpdateStatus(ctx context.Context, id uint, status domain.RegistrationStatus) error {
	if err := r.dao.UpdateStatus(ctx, id, string(status)); err != nil {
		return fmt.Errorf("r.dao.UpdateStatus -> %w", err)
	}

	return nil
}

func (r *RegistrationRepository) SumOrderQuantity(ctx context.Context, eventID, participantID uint) (int, error) {
	total, err := r.dao.SumOrderQuantity(ctx, eventID, participantID)
	if err != nil {
		return 0, fmt.Errorf("r.dao.SumOrderQuantity -> %w", err)
	}

	return total, nil
}

func (r *RegistrationRepository) DecidePayment(ctx context.Context, id uint, paymentStatus domain.PaymentStatus, regStatus domain.RegistrationStatus, ticketID string) (bool, error) {
	decided, err := r.dao.DecidePayment(ctx, id, string(paymentStatus), string(regStatus), ticketID)
	if err != nil {
		return false, fmt.Errorf("r.dao.DecidePayment -> %w", err)
	}

	return decided, nil
}

func (r *RegistrationRepository) MarkAttended(ctx context.Context, id uint, at time.Time) (bool, error) {
	marked, err := r.dao.MarkAttended(ctx, id, at)
	if err != nil {
		return false, fmt.Errorf("r.dao.MarkAttended -> %w", err)
	}

	return marked, nil
}

func (r *RegistrationRepository) ClearAttendance(ctx context.Context, id uint, status domain.RegistrationStatus) error {
	if err := r.dao.ClearAttendance(ctx, id, string(status)); err != nil {
		return fmt.Errorf("r.dao.ClearAttendance -> %w", err)
	}

	return nil
}

func (r *RegistrationRepository) AppendAudit(ctx context.Context, entry domain.AttendanceAuditEntry) (domain.AttendanceAuditEntry, error) {
	created, err := r.dao.InsertAudit(ctx, dao.AttendanceAudit{
		RegistrationID: entry.RegistrationID,
		Action:         string(entry.Action),
		Reason:         entry.Reason,
		ActorID:        entry.ActorID,
	})
	if err != nil {
		return domain.AttendanceAuditEntry{}, fmt.Errorf("r.dao.InsertAudit -> %w", err)
	}

	return domain.AttendanceAuditEntry{
		ID:             created.ID,
		RegistrationID: created.RegistrationID,
		Action:         domain.AttendanceAction(created.Action),
		Reason:         created.Reason,
		ActorID:        created.ActorID,
		CreatedAt:      created.CreatedAt,
	}, nil
}

func (r *RegistrationRepository) FindAuditByRegistration(ctx context.Context, registrationID uint) ([]domain.AttendanceAuditEntry, error) {
	found, err := r.dao.FindAuditByRegistration(ctx, registrationID)
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindAuditByRegistration -> %w", err)
	}

	entries := make([]domain.AttendanceAuditEntry, len(found))
	for i, e := range found {
		entries[i] = domain.AttendanceAuditEntry{
			ID:             e.ID,
			RegistrationID: e.RegistrationID,
			Action:         domain.AttendanceAction(e.Action),
			Reason:         e.Reason,
			ActorID:        e.ActorID,
			CreatedAt:      e.CreatedAt,
		}
	}

	return entries, nil
}

func (r *RegistrationRepository) daosToDomain(regs []dao.Registration) []domain.Registration {
	out := make([]domain.Registration, len(regs))
	for i, reg := range regs {
		out[i] = r.daoToDomain(reg)
	}

	return out
}

func (r *RegistrationRepository) daoToDomain(reg dao.Registration) domain.Registration {
	out := domain.Registration{
		ID:              reg.ID,
		EventID:         reg.EventID,
		ParticipantID:   reg.ParticipantID,
		Status:          domain.RegistrationStatus(reg.Status),
		CustomResponses: reg.CustomResponses,
		TicketID:        reg.TicketID,
		Attended:        reg.Attended,
		AttendedAt:      reg.AttendedAt,
		CreatedAt:       reg.CreatedAt,
		UpdatedAt:       reg.UpdatedAt,
	}

	if reg.PaymentStatus != "" {
		out.Purchase = &domain.MerchandisePurchase{
			Size:            reg.Size,
			Color:           reg.Color,
			Quantity:        reg.Quantity,
			TotalAmount:     reg.TotalAmount,
			PaymentStatus:   domain.PaymentStatus(reg.PaymentStatus),
			PaymentProofRef: reg.PaymentProofRef,
		}
	}

	return out
}

func (r *RegistrationRepository) domainToDAO(reg domain.Registration) dao.Registration {
	out := dao.Registration{
		ID:              reg.ID,
		EventID:         reg.EventID,
		ParticipantID:   reg.ParticipantID,
		Status:          string(reg.Status),
		CustomResponses: reg.CustomResponses,
		TicketID:        reg.TicketID,
		Attended:        reg.Attended,
		AttendedAt:      reg.AttendedAt,
	}

	if reg.Purchase != nil {
		out.Size = reg.Purchase.Size
		out.Color = reg.Purchase.Color
		out.Quantity = reg.Purchase.Quantity
		out.TotalAmount = reg.Purchase.TotalAmount
		out.PaymentStatus = string(reg.Purchase.PaymentStatus)
		out.PaymentProofRef = reg.Purchase.PaymentProofRef
	}

	return out
}
