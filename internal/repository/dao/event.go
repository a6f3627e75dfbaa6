package dao

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

var (
	ErrEventNotFound     = errors.New("event not found")
	ErrCapacityExceeded  = errors.New("registration limit reached")
	ErrVariantNotFound   = errors.New("merchandise variant not found")
	ErrInsufficientStock = errors.New("insufficient stock")
)

type Event struct {
	ID uint `gorm:"primaryKey"`

	Name        string `gorm:"not null"`
	Description string
	Tags        string // comma-separated
	Type        string `gorm:"not null"` // "NORMAL" or "MERCHANDISE"
	Status      string `gorm:"not null;default:DRAFT"`
	Eligibility string `gorm:"not null;default:ALL"`

	EventStartDate       *time.Time
	EventEndDate         *time.Time
	RegistrationDeadline *time.Time

	RegistrationLimit  int `gorm:"not null;default:0"` // 0 = unlimited
	RegistrationFee    float64
	RegistrationsCount int `gorm:"not null;default:0"`

	FormFields []FormField `gorm:"foreignKey:EventID"`

	MerchItemName string
	MerchPrice    float64
	PurchaseLimit int       `gorm:"not null;default:0"`
	Variants      []Variant `gorm:"foreignKey:EventID"`

	OrganizerID uint `gorm:"not null;index"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type FormField struct {
	ID       uint   `gorm:"primaryKey"`
	EventID  uint   `gorm:"not null;index"`
	FieldID  string `gorm:"not null"`
	Type     string `gorm:"not null"`
	Label    string `gorm:"not null"`
	Required bool   `gorm:"not null"`
	Options  string // comma-separated, dropdown only
	Position int    `gorm:"not null"`
}

type Variant struct {
	ID      uint   `gorm:"primaryKey"`
	EventID uint   `gorm:"not null;index:idx_variants_event_size_color,unique"`
	Size    string `gorm:"not null;index:idx_variants_event_size_color,unique"`
	Color   string `gorm:"not null;index:idx_variants_event_size_color,unique"`
	Stock   int    `gorm:"not null"`
}

type EventDAO struct {
	db *gorm.DB
}

func NewEventDAO(db *gorm.DB) *EventDAO {
	return &EventDAO{
		db: db,
	}
}

func (d *EventDAO) Insert(ctx context.Context, event Event) (Event, error) {
	result := d.db.WithContext(ctx).Create(&event)
	if result.Error != nil {
		return Event{}, result.Error
	}

	return event, nil
}

func (d *EventDAO) FindByID(ctx context.Context, id uint) (Event, error) {
	var event Event

	result := d.db.WithContext(ctx).
		Preload("FormFields", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Preload("Variants").
		First(&event, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Event{}, ErrEventNotFound
		}

		return Event{}, result.Error
	}

	return event, nil
}

func (d *EventDAO) FindByStatus(ctx context.Context, status string) ([]Event, error) {
	var events []Event

	result := d.db.WithContext(ctx).
		Preload("FormFields", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Preload("Variants").
		Where("status = ?", status).
		Order("event_start_date ASC").
		Find(&events)
	if result.Error != nil {
		return nil, result.Error
	}

	return events, nil
}

func (d *EventDAO) FindByOrganizer(ctx context.Context, organizerID uint) ([]Event, error) {
	var events []Event

	result := d.db.WithContext(ctx).
		Preload("FormFields", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Preload("Variants").
		Where("organizer_id = ?", organizerID).
		Order("created_at DESC").
		Find(&events)
	if result.Error != nil {
		return nil, result.Error
	}

	return events, nil
}

// Update applies the given column values to one event.
func (d *EventDAO) Update(ctx context.Context, id uint, values map[string]any) error {
	result := d.db.WithContext(ctx).Model(&Event{}).Where("id = ?", id).Updates(values)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrEventNotFound
	}

	return nil
}

// UpdateStatus moves an event from one status to another. The WHERE clause on
// the current status makes concurrent transitions lose cleanly instead of
// double-applying.
func (d *EventDAO) UpdateStatus(ctx context.Context, id uint, from, to string) (bool, error) {
	result := d.db.WithContext(ctx).Model(&Event{}).
		Where("id = ? AND status = ?", id, from).
		Update("status", to)
	if result.Error != nil {
		return false, result.Error
	}

	return result.RowsAffected > 0, nil
}

// ReserveSeat increments registrations_count iff the event still has room.
// The conditional UPDATE is the atomic primitive the capacity ledger relies on.
func (d *EventDAO) ReserveSeat(ctx context.Context, id uint) error {
	result := d.db.WithContext(ctx).Model(&Event{}).
		Where("id = ? AND (registration_limit = 0 OR registrations_count < registration_limit)", id).
		Update("registrations_count", gorm.Expr("registrations_count + 1"))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		if _, err := d.FindByID(ctx, id); err != nil {
			return err
		}

		return ErrCapacityExceeded
	}

	return nil
}

// ReleaseSeat decrements registrations_count, floored at zero.
func (d *EventDAO) ReleaseSeat(ctx context.Context, id uint) error {
	result := d.db.WithContext(ctx).Model(&Event{}).
		Where("id = ? AND registrations_count > 0", id).
		Update("registrations_count", gorm.Expr("registrations_count - 1"))

	return result.Error
}

// ReserveVariantStock decrements a variant's stock iff enough remains.
func (d *EventDAO) ReserveVariantStock(ctx context.Context, eventID uint, size, color string, qty int) error {
	result := d.db.WithContext(ctx).Model(&Variant{}).
		Where("event_id = ? AND size = ? AND color = ? AND stock >= ?", eventID, size, color, qty).
		Update("stock", gorm.Expr("stock - ?", qty))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		var variant Variant
		find := d.db.WithContext(ctx).
			Where("event_id = ? AND size = ? AND color = ?", eventID, size, color).
			First(&variant)
		if find.Error != nil {
			if errors.Is(find.Error, gorm.ErrRecordNotFound) {
				return ErrVariantNotFound
			}

			return find.Error
		}

		return ErrInsufficientStock
	}

	return nil
}

// ReplaceFormFields swaps out the whole custom form of one event.
func (d *EventDAO) ReplaceFormFields(ctx context.Context, eventID uint, fields []FormField) error {
	return d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("event_id = ?", eventID).Delete(&FormField{}).Error; err != nil {
			return err
		}

		for i := range fields {
			fields[i].ID = 0
			fields[i].EventID = eventID
			fields[i].Position = i
		}

		if len(fields) == 0 {
			return nil
		}

		return tx.Create(&fields).Error
	})
}
