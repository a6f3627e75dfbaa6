package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/felicity-events/eventops-api/internal/domain"
	"github.com/felicity-events/eventops-api/internal/repository"
)

var (
	ErrEventNotFound         = repository.ErrEventNotFound
	ErrInvalidTransition     = errors.New("invalid status transition")
	ErrFieldLocked           = errors.New("field not editable in current status")
	ErrLimitDecreaseRejected = errors.New("registration limit cannot be decreased after publishing")
	ErrNotEventOrganizer     = errors.New("user is not the event's organizer")
	ErrInvalidEventDates     = errors.New("event dates are inconsistent")
)

// eventTransitions is the full lifecycle graph. Transitions are
// organizer-triggered only and irreversible.
var eventTransitions = map[domain.EventStatus][]domain.EventStatus{
	domain.EventStatusDraft:     {domain.EventStatusPublished},
	domain.EventStatusPublished: {domain.EventStatusOngoing, domain.EventStatusClosed},
	domain.EventStatusOngoing:   {domain.EventStatusCompleted},
}

type EventRepository interface {
	Create(ctx context.Context, event domain.Event) (domain.Event, error)
	FindByID(ctx context.Context, id uint) (domain.Event, error)
	FindPublished(ctx context.Context) ([]domain.Event, error)
	FindByOrganizer(ctx context.Context, organizerID uint) ([]domain.Event, error)
	UpdateFields(ctx context.Context, id uint, values map[string]any) error
	UpdateStatus(ctx context.Context, id uint, from, to domain.EventStatus) (bool, error)
	ReplaceFormFields(ctx context.Context, eventID uint, fields []domain.FormField) error
}

// EventPatch carries an edit request. Nil fields are left untouched.
type EventPatch struct {
	Name                 *string
	Description          *string
	Tags                 *[]string
	Eligibility          *domain.Eligibility
	EventStartDate       *time.Time
	EventEndDate         *time.Time
	RegistrationDeadline *time.Time
	RegistrationLimit    *int
	RegistrationFee      *float64
	CustomForm           *[]domain.FormField
}

type EventService struct {
	repo EventRepository
}

func NewEventService(repo EventRepository) *EventService {
	return &EventService{
		repo: repo,
	}
}

func (s *EventService) CreateEvent(ctx context.Context, event domain.Event) (domain.Event, error) {
	event.Status = domain.EventStatusDraft
	event.RegistrationsCount = 0

	if err := validateEventDates(event.EventStartDate, event.EventEndDate, event.RegistrationDeadline); err != nil {
		return domain.Event{}, err
	}

	created, err := s.repo.Create(ctx, event)
	if err != nil {
		return domain.Event{}, fmt.Errorf("s.repo.Create -> %w", err)
	}

	return created, nil
}

func (s *EventService) GetEvent(ctx context.Context, id uint) (domain.Event, error) {
	event, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return domain.Event{}, fmt.Errorf("s.repo.FindByID -> %w", err)
	}

	return event, nil
}

func (s *EventService) ListPublished(ctx context.Context) ([]domain.Event, error) {
	events, err := s.repo.FindPublished(ctx)
	if err != nil {
		return nil, fmt.Errorf("s.repo.FindPublished -> %w", err)
	}

	return events, nil
}

func (s *EventService) ListByOrganizer(ctx context.Context, organizerID uint) ([]domain.Event, error) {
	events, err := s.repo.FindByOrganizer(ctx, organizerID)
	if err != nil {
		return nil, fmt.Errorf("s.repo.FindByOrganizer -> %w", err)
	}

	return events, nil
}

// Transition moves an event to target if target is directly reachable from
// the current status. A concurrent transition that gets there first makes
// this one fail with ErrInvalidTransition.
func (s *EventService) Transition(ctx context.Context, eventID, actorID uint, target domain.EventStatus) (domain.Event, error) {
	event, err := s.repo.FindByID(ctx, eventID)
	if err != nil {
		return domain.Event{}, fmt.Errorf("s.repo.FindByID -> %w", err)
	}

	if event.OrganizerID != actorID {
		return domain.Event{}, ErrNotEventOrganizer
	}

	if !transitionAllowed(event.Status, target) {
		return domain.Event{}, ErrInvalidTransition
	}

	moved, err := s.repo.UpdateStatus(ctx, eventID, event.Status, target)
	if err != nil {
		return domain.Event{}, fmt.Errorf("s.repo.UpdateStatus -> %w", err)
	}
	if !moved {
		return domain.Event{}, ErrInvalidTransition
	}

	event.Status = target

	return event, nil
}

// EditEvent applies a patch after consulting the field-mutability matrix for
// the event's current status.
func (s *EventService) EditEvent(ctx context.Context, eventID, actorID uint, patch EventPatch) (domain.Event, error) {
	event, err := s.repo.FindByID(ctx, eventID)
	if err != nil {
		return domain.Event{}, fmt.Errorf("s.repo.FindByID -> %w", err)
	}

	if event.OrganizerID != actorID {
		return domain.Event{}, ErrNotEventOrganizer
	}

	if err = checkPatchAllowed(event, patch); err != nil {
		return domain.Event{}, err
	}

	start, end, deadline := event.EventStartDate, event.EventEndDate, event.RegistrationDeadline
	if patch.EventStartDate != nil {
		start = patch.EventStartDate
	}
	if patch.EventEndDate != nil {
		end = patch.EventEndDate
	}
	if patch.RegistrationDeadline != nil {
		deadline = patch.RegistrationDeadline
	}
	if err = validateEventDates(start, end, deadline); err != nil {
		return domain.Event{}, err
	}

	values := patchValues(patch)
	if len(values) > 0 {
		if err = s.repo.UpdateFields(ctx, eventID, values); err != nil {
			return domain.Event{}, fmt.Errorf("s.repo.UpdateFields -> %w", err)
		}
	}

	if patch.CustomForm != nil {
		if err = s.repo.ReplaceFormFields(ctx, eventID, *patch.CustomForm); err != nil {
			return domain.Event{}, fmt.Errorf("s.repo.ReplaceFormFields -> %w", err)
		}
	}

	updated, err := s.repo.FindByID(ctx, eventID)
	if err != nil {
		return domain.Event{}, fmt.Errorf("s.repo.FindByID -> %w", err)
	}

	return updated, nil
}

func transitionAllowed(from, to domain.EventStatus) bool {
	for _, next := range eventTransitions[from] {
		if next == to {
			return true
		}
	}

	return false
}

// checkPatchAllowed enforces the mutability matrix:
// DRAFT allows everything; PUBLISHED allows description, deadline and a
// non-decreasing limit; later statuses allow nothing.
func checkPatchAllowed(event domain.Event, patch EventPatch) error {
	switch event.Status {
	case domain.EventStatusDraft:
		return nil

	case domain.EventStatusPublished:
		if patch.Name != nil || patch.Tags != nil || patch.Eligibility != nil ||
			patch.EventStartDate != nil || patch.EventEndDate != nil ||
			patch.RegistrationFee != nil || patch.CustomForm != nil {
			return ErrFieldLocked
		}
		if patch.RegistrationLimit != nil && *patch.RegistrationLimit < event.RegistrationLimit {
			return ErrLimitDecreaseRejected
		}

		return nil

	default:
		if patch != (EventPatch{}) {
			return ErrFieldLocked
		}

		return nil
	}
}

func patchValues(patch EventPatch) map[string]any {
	values := map[string]any{}
	if patch.Name != nil {
		values["name"] = *patch.Name
	}
	if patch.Description != nil {
		values["description"] = *patch.Description
	}
	if patch.Tags != nil {
		values["tags"] = strings.Join(*patch.Tags, ",")
	}
	if patch.Eligibility != nil {
		values["eligibility"] = string(*patch.Eligibility)
	}
	if patch.EventStartDate != nil {
		values["event_start_date"] = *patch.EventStartDate
	}
	if patch.EventEndDate != nil {
		values["event_end_date"] = *patch.EventEndDate
	}
	if patch.RegistrationDeadline != nil {
		values["registration_deadline"] = *patch.RegistrationDeadline
	}
	if patch.RegistrationLimit != nil {
		values["registration_limit"] = *patch.RegistrationLimit
	}
	if patch.RegistrationFee != nil {
		values["registration_fee"] = *patch.RegistrationFee
	}

	return values
}

func validateEventDates(start, end, deadline *time.Time) error {
	if start != nil && end != nil && !start.Before(*end) {
		return ErrInvalidEventDates
	}
	if deadline != nil && start != nil && !deadline.Before(*start) {
		return ErrInvalidEventDates
	}

	return nil
}
