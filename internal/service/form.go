package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/felicity-events/eventops-api/internal/domain"
)

var (
	ErrFormLocked           = errors.New("custom form is locked after the first registration")
	ErrFieldNotFound        = errors.New("form field not found")
	ErrFieldIDExists        = errors.New("form field id already exists")
	ErrMissingRequiredField = errors.New("missing required field")
)

type FormEventRepository interface {
	FindByID(ctx context.Context, id uint) (domain.Event, error)
	ReplaceFormFields(ctx context.Context, eventID uint, fields []domain.FormField) error
}

// FormService mutates an event's custom registration form. All mutations are
// rejected once the event has registrations, so submitted responses always
// line up with the form they were written against.
type FormService struct {
	repo FormEventRepository
}

func NewFormService(repo FormEventRepository) *FormService {
	return &FormService{
		repo: repo,
	}
}

func (s *FormService) AddField(ctx context.Context, eventID, actorID uint, field domain.FormField) ([]domain.FormField, error) {
	event, err := s.editableForm(ctx, eventID, actorID)
	if err != nil {
		return nil, err
	}

	for _, f := range event.CustomForm {
		if f.ID == field.ID {
			return nil, ErrFieldIDExists
		}
	}

	fields := append(event.CustomForm, field)
	if err = s.repo.ReplaceFormFields(ctx, eventID, fields); err != nil {
		return nil, fmt.Errorf("s.repo.ReplaceFormFields -> %w", err)
	}

	return fields, nil
}

func (s *FormService) RemoveField(ctx context.Context, eventID, actorID uint, fieldID string) ([]domain.FormField, error) {
	event, err := s.editableForm(ctx, eventID, actorID)
	if err != nil {
		return nil, err
	}

	fields := make([]domain.FormField, 0, len(event.CustomForm))
	found := false
	for _, f := range event.CustomForm {
		if f.ID == fieldID {
			found = true
			continue
		}
		fields = append(fields, f)
	}
	if !found {
		return nil, ErrFieldNotFound
	}

	if err = s.repo.ReplaceFormFields(ctx, eventID, fields); err != nil {
		return nil, fmt.Errorf("s.repo.ReplaceFormFields -> %w", err)
	}

	return fields, nil
}

// ReorderField moves a field to the given position, clamped to the form's
// bounds.
func (s *FormService) ReorderField(ctx context.Context, eventID, actorID uint, fieldID string, position int) ([]domain.FormField, error) {
	event, err := s.editableForm(ctx, eventID, actorID)
	if err != nil {
		return nil, err
	}

	index := -1
	for i, f := range event.CustomForm {
		if f.ID == fieldID {
			index = i
			break
		}
	}
	if index < 0 {
		return nil, ErrFieldNotFound
	}

	field := event.CustomForm[index]
	fields := append(event.CustomForm[:index:index], event.CustomForm[index+1:]...)

	if position < 0 {
		position = 0
	}
	if position > len(fields) {
		position = len(fields)
	}

	fields = append(fields[:position:position], append([]domain.FormField{field}, fields[position:]...)...)

	if err = s.repo.ReplaceFormFields(ctx, eventID, fields); err != nil {
		return nil, fmt.Errorf("s.repo.ReplaceFormFields -> %w", err)
	}

	return fields, nil
}

func (s *FormService) SetOptions(ctx context.Context, eventID, actorID uint, fieldID string, options []string) ([]domain.FormField, error) {
	event, err := s.editableForm(ctx, eventID, actorID)
	if err != nil {
		return nil, err
	}

	fields := event.CustomForm
	found := false
	for i, f := range fields {
		if f.ID == fieldID {
			fields[i].Options = options
			found = true
			break
		}
	}
	if !found {
		return nil, ErrFieldNotFound
	}

	if err = s.repo.ReplaceFormFields(ctx, eventID, fields); err != nil {
		return nil, fmt.Errorf("s.repo.ReplaceFormFields -> %w", err)
	}

	return fields, nil
}

func (s *FormService) editableForm(ctx context.Context, eventID, actorID uint) (domain.Event, error) {
	event, err := s.repo.FindByID(ctx, eventID)
	if err != nil {
		return domain.Event{}, fmt.Errorf("s.repo.FindByID -> %w", err)
	}

	if event.OrganizerID != actorID {
		return domain.Event{}, ErrNotEventOrganizer
	}

	if event.RegistrationsCount > 0 {
		return domain.Event{}, ErrFormLocked
	}

	return event, nil
}

// ValidateResponses checks submitted responses against a form. Responses are
// keyed by field label, which is what scanner and registration clients send.
// Required fields must be present and non-blank; values are not otherwise
// coerced or range-checked.
func ValidateResponses(form []domain.FormField, responses map[string]string) error {
	for _, f := range form {
		if !f.Required {
			continue
		}
		if strings.TrimSpace(responses[f.Label]) == "" {
			return fmt.Errorf("%w: %s", ErrMissingRequiredField, f.Label)
		}
	}

	return nil
}
