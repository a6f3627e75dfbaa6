package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/felicity-events/eventops-api/internal/domain"
	"github.com/felicity-events/eventops-api/internal/repository/dao"
)

var (
	ErrEventNotFound     = dao.ErrEventNotFound
	ErrCapacityExceeded  = dao.ErrCapacityExceeded
	ErrVariantNotFound   = dao.ErrVariantNotFound
	ErrInsufficientStock = dao.ErrInsufficientStock
)

type EventDAO interface {
	Insert(ctx context.Context, event dao.Event) (dao.Event, error)
	FindByID(ctx context.Context, id uint) (dao.Event, error)
	FindByStatus(ctx context.Context, status string) ([]dao.Event, error)
	FindByOrganizer(ctx context.Context, organizerID uint) ([]dao.Event, error)
	Update(ctx context.Context, id uint, values map[string]any) error
	UpdateStatus(ctx context.Context, id uint, from, to string) (bool, error)
	ReserveSeat(ctx context.Context, id uint) error
	ReleaseSeat(ctx context.Context, id uint) error
	ReserveVariantStock(ctx context.Context, eventID uint, size, color string, qty int) error
	ReplaceFormFields(ctx context.Context, eventID uint, fields []dao.FormField) error
}

type EventRepository struct {
	dao EventDAO
}

func NewEventRepository(dao EventDAO) *EventRepository {
	return &EventRepository{
		dao: dao,
	}
}

func (r *EventRepository) Create(ctx context.Context, event domain.Event) (domain.Event, error) {
	created, err := r.dao.Insert(ctx, r.domainToDAO(event))
	if err != nil {
		return domain.Event{}, fmt.Errorf("r.dao.Insert -> %w", err)
	}

	return r.daoToDomain(created), nil
}

func (r *EventRepository) FindByID(ctx context.Context, id uint) (domain.Event, error) {
	found, err := r.dao.FindByID(ctx, id)
	if err != nil {
		return domain.Event{}, fmt.Errorf("r.dao.FindByID -> %w", err)
	}

	return r.daoToDomain(found), nil
}

func (r *EventRepository) FindPublished(ctx context.Context) ([]domain.Event, error) {
	found, err := r.dao.FindByStatus(ctx, string(domain.EventStatusPublished))
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindByStatus -> %w", err)
	}

	events := make([]domain.Event, len(found))
	for i, e := range found {
		events[i] = r.daoToDomain(e)
	}

	return events, nil
}

func (r *EventRepository) FindByOrganizer(ctx context.Context, organizerID uint) ([]domain.Event, error) {
	found, err := r.dao.FindByOrganizer(ctx, organizerID)
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindByOrganizer -> %w", err)
	}

	events := make([]domain.Event, len(found))
	for i, e := range found {
		events[i] = r.daoToDomain(e)
	}

	return events, nil
}

func (r *EventRepository) UpdateFields(ctx context.Context, id uint, values map[string]any) error {
	if err := r.dao.Update(ctx, id, values); err != nil {
		return fmt.Errorf("r.dao.Update -> %w", err)
	}

	return nil
}

func (r *EventRepository) UpdateStatus(ctx context.Context, id uint, from, to domain.EventStatus) (bool, error) {
	moved, err := r.dao.UpdateStatus(ctx, id, string(from), string(to))
	if err != nil {
		return false, fmt.Errorf("r.dao.UpdateStatus -> %w", err)
	}

	return moved, nil
}

func (r *EventRepository) ReserveSeat(ctx context.Context, id uint) error {
	return r.dao.ReserveSeat(ctx, id)
}

func (r *EventRepository) ReleaseSeat(ctx context.Context, id uint) error {
	return r.dao.ReleaseSeat(ctx, id)
}

func (r *EventRepository) ReserveVariantStock(ctx context.Context, eventID uint, size, color string, qty int) error {
	return r.dao.ReserveVariantStock(ctx, eventID, size, color, qty)
}

func (r *EventRepository) ReplaceFormFields(ctx context.Context, eventID uint, fields []domain.FormField) error {
	daoFields := make([]dao.FormField, len(fields))
	for i, f := range fields {
		daoFields[i] = dao.FormField{
			EventID:  eventID,
			FieldID:  f.ID,
			Type:     string(f.Type),
			Label:    f.Label,
			Required: f.Required,
			Options:  strings.Join(f.Options, ","),
			Position: i,
		}
	}

	if err := r.dao.ReplaceFormFields(ctx, eventID, daoFields); err != nil {
		return fmt.Errorf("r.dao.ReplaceFormFields -> %w", err)
	}

	return nil
}

func (r *EventRepository) daoToDomain(e dao.Event) domain.Event {
	event := domain.Event{
		ID:                   e.ID,
		Name:                 e.Name,
		Description:          e.Description,
		Tags:                 splitList(e.Tags),
		Type:                 domain.EventType(e.Type),
		Status:               domain.EventStatus(e.Status),
		Eligibility:          domain.Eligibility(e.Eligibility),
		EventStartDate:       e.EventStartDate,
		EventEndDate:         e.EventEndDate,
		RegistrationDeadline: e.RegistrationDeadline,
		RegistrationLimit:    e.RegistrationLimit,
		RegistrationFee:      e.RegistrationFee,
		RegistrationsCount:   e.RegistrationsCount,
		OrganizerID:          e.OrganizerID,
		CreatedAt:            e.CreatedAt,
		UpdatedAt:            e.UpdatedAt,
	}

	for _, f := range e.FormFields {
		event.CustomForm = append(event.CustomForm, domain.FormField{
			ID:       f.FieldID,
			Type:     domain.FormFieldType(f.Type),
			Label:    f.Label,
			Required: f.Required,
			Options:  splitList(f.Options),
		})
	}

	if event.Type == domain.EventTypeMerchandise {
		details := &domain.MerchandiseDetails{
			ItemName:                    e.MerchItemName,
			Price:                       e.MerchPrice,
			PurchaseLimitPerParticipant: e.PurchaseLimit,
		}
		for _, v := range e.Variants {
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

func (r *EventRepository) domainToDAO(e domain.Event) dao.Event {
	event := dao.Event{
		ID:                   e.ID,
		Name:                 e.Name,
		Description:          e.Description,
		Tags:                 strings.Join(e.Tags, ","),
		Type:                 string(e.Type),
		Status:               string(e.Status),
		Eligibility:          string(e.Eligibility),
		EventStartDate:       e.EventStartDate,
		EventEndDate:         e.EventEndDate,
		RegistrationDeadline: e.RegistrationDeadline,
		RegistrationLimit:    e.RegistrationLimit,
		RegistrationFee:      e.RegistrationFee,
		RegistrationsCount:   e.RegistrationsCount,
		OrganizerID:          e.OrganizerID,
	}

	for i, f := range e.CustomForm {
		event.FormFields = append(event.FormFields, dao.FormField{
			FieldID:  f.ID,
			Type:     string(f.Type),
			Label:    f.Label,
			Required: f.Required,
			Options:  strings.Join(f.Options, ","),
			Position: i,
		})
	}

	if e.Merchandise != nil {
		event.MerchItemName = e.Merchandise.ItemName
		event.MerchPrice = e.Merchandise.Price
		event.PurchaseLimit = e.Merchandise.PurchaseLimitPerParticipant
		for _, v := range e.Merchandise.Variants {
			event.Variants = append(event.Variants, dao.Variant{
				Size:  v.Size,
				Color: v.Color,
				Stock: v.Stock,
			})
		}
	}

	return event
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}

	return strings.Split(s, ",")
}
