package dao

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

var (
	ErrRegistrationNotFound = errors.New("registration not found")
	ErrTicketNotFound       = errors.New("ticket not found")
)

type Registration struct {
	ID uint `gorm:"primaryKey"`

	EventID       uint   `gorm:"not null;index"`
	ParticipantID uint   `gorm:"not null;index"`
	Status        string `gorm:"not null"`

	CustomResponses map[string]string `gorm:"serializer:json"`

	// Tickets are issued lazily (registration for NORMAL, approval for
	// MERCHANDISE), so the unique index must skip unissued rows or any two
	// pending orders would collide on ''.
	TicketID   string `gorm:"index:idx_registrations_ticket_id,unique,where:ticket_id <> ''"`
	Attended   bool   `gorm:"not null;default:false"`
	AttendedAt *time.Time

	// Merchandise order columns; empty for NORMAL registrations.
	Size            string
	Color           string
	Quantity        int
	TotalAmount     float64
	PaymentStatus   string
	PaymentProofRef string

	CreatedAt time.Time
	UpdatedAt time.Time
}

type AttendanceAudit struct {
	ID             uint   `gorm:"primaryKey"`
	RegistrationID uint   `gorm:"not null;index"`
	Action         string `gorm:"not null"` // "MARK" or "UNMARK"
	Reason         string `gorm:"not null"`
	ActorID        uint   `gorm:"not null"`
	CreatedAt      time.Time
}

type RegistrationDAO struct {
	db *gorm.DB
}

func NewRegistrationDAO(db *gorm.DB) *RegistrationDAO {
	return &RegistrationDAO{
		db: db,
	}
}

func (d *RegistrationDAO) Insert(ctx context.Context, reg Registration) (Registration, error) {
	result := d.db.WithContext(ctx).Create(&reg)
	if result.Error != nil {
		return Registration{}, result.Error
	}

	return reg, nil
}

func (d *RegistrationDAO) FindByID(ctx context.Context, id uint) (Registration, error) {
	var reg Registration

	result := d.db.WithContext(ctx).First(&reg, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Registration{}, ErrRegistrationNotFound
		}

		return Registration{}, result.Error
	}

	return reg, nil
}

func (d *RegistrationDAO) FindByTicketID(ctx context.Context, ticketID string) (Registration, error) {
	var reg Registration

	result := d.db.WithContext(ctx).First(&reg, "ticket_id = ?", ticketID)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Registration{}, ErrTicketNotFound
		}

		return Registration{}, result.Error
	}

	return reg, nil
}

// FindLive returns the participant's non-cancelled registration for an event,
// if one exists.
func (d *RegistrationDAO) FindLive(ctx context.Context, eventID, participantID uint) (Registration, error) {
	var reg Registration

	result := d.db.WithContext(ctx).
		Where("event_id = ? AND participant_id = ? AND status <> ?", eventID, participantID, "CANCELLED").
		First(&reg)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Registration{}, ErrRegistrationNotFound
		}

		return Registration{}, result.Error
	}

	return reg, nil
}

func (d *RegistrationDAO) FindByEvent(ctx context.Context, eventID uint) ([]Registration, error) {
	var regs []Registration

	result := d.db.WithContext(ctx).
		Where("event_id = ?", eventID).
		Order("created_at ASC").
		Find(&regs)
	if result.Error != nil {
		return nil, result.Error
	}

	return regs, nil
}

func (d *RegistrationDAO) FindOrdersByEvent(ctx context.Context, eventID uint, paymentStatus string) ([]Registration, error) {
	query := d.db.WithContext(ctx).
		Where("event_id = ? AND payment_status <> ''", eventID)
	if paymentStatus != "" {
		query = query.Where("payment_status = ?", paymentStatus)
	}

	var regs []Registration
	result := query.Order("created_at ASC").Find(&regs)
	if result.Error != nil {
		return nil, result.Error
	}

	return regs, nil
}

func (d *RegistrationDAO) FindByParticipant(ctx context.Context, participantID uint) ([]Registration, error) {
	var regs []Registration

	result := d.db.WithContext(ctx).
		Where("participant_id = ?", participantID).
		Order("created_at DESC").
		Find(&regs)
	if result.Error != nil {
		return nil, result.Error
	}

	return regs, nil
}

func (d *RegistrationDAO) UpdateStatus(ctx context.Context, id uint, status string) error {
	result := d.db.WithContext(ctx).Model(&Registration{}).
		Where("id = ?", id).
		Update("status", status)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrRegistrationNotFound
	}

	return nil
}

// SumOrderQuantity totals the participant's pending and approved order
// quantities for one event, for purchase-limit checks.
func (d *RegistrationDAO) SumOrderQuantity(ctx context.Context, eventID, participantID uint) (int, error) {
	var total int64

	result := d.db.WithContext(ctx).Model(&Registration{}).
		Select("COALESCE(SUM(quantity), 0)").
		Where("event_id = ? AND participant_id = ? AND payment_status IN ?",
			eventID, participantID, []string{"PENDING", "APPROVED"}).
		Scan(&total)
	if result.Error != nil {
		return 0, result.Error
	}

	return int(total), nil
}

// DecidePayment finalizes a pending order. The WHERE clause on payment_status
// keeps orders terminal: a second decision affects zero rows.
func (d *RegistrationDAO) DecidePayment(ctx context.Context, id uint, paymentStatus, regStatus, ticketID string) (bool, error) {
	values := map[string]any{
		"payment_status": paymentStatus,
		"status":         regStatus,
	}
	if ticketID != "" {
		values["ticket_id"] = ticketID
	}

	result := d.db.WithContext(ctx).Model(&Registration{}).
		Where("id = ? AND payment_status = ?", id, "PENDING").
		Updates(values)
	if result.Error != nil {
		return false, result.Error
	}

	return result.RowsAffected > 0, nil
}

// MarkAttended flips attended false→true. Exactly one concurrent caller
// observes updated=true; everyone else sees a duplicate.
func (d *RegistrationDAO) MarkAttended(ctx context.Context, id uint, at time.Time) (bool, error) {
	result := d.db.WithContext(ctx).Model(&Registration{}).
		Where("id = ? AND attended = ?", id, false).
		Updates(map[string]any{
			"attended":    true,
			"attended_at": at,
			"status":      "ATTENDED",
		})
	if result.Error != nil {
		return false, result.Error
	}

	return result.RowsAffected > 0, nil
}

// ClearAttendance reverts a manual UNMARK: attendance flags are cleared and
// the status falls back to what the registration was before it was marked.
func (d *RegistrationDAO) ClearAttendance(ctx context.Context, id uint, status string) error {
	result := d.db.WithContext(ctx).Model(&Registration{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"attended":    false,
			"attended_at": nil,
			"status":      status,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrRegistrationNotFound
	}

	return nil
}

func (d *RegistrationDAO) InsertAudit(ctx context.Context, entry AttendanceAudit) (AttendanceAudit, error) {
	result := d.db.WithContext(ctx).Create(&entry)
	if result.Error != nil {
		return AttendanceAudit{}, result.Error
	}

	return entry, nil
}

func (d *RegistrationDAO) FindAuditByRegistration(ctx context.Context, registrationID uint) ([]AttendanceAudit, error) {
	var entries []AttendanceAudit

	result := d.db.WithContext(ctx).
		Where("registration_id = ?", registrationID).
		Order("created_at ASC").
		Find(&entries)
	if result.Error != nil {
		return nil, result.Error
	}

	return entries, nil
}
