package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felicity-events/eventops-api/internal/domain"
)

func formEvent(repo *memEventRepo, registrations int) domain.Event {
	return repo.seed(domain.Event{
		Name:               "CTF",
		Type:               domain.EventTypeNormal,
		Status:             domain.EventStatusDraft,
		RegistrationsCount: registrations,
		CustomForm: []domain.FormField{
			{ID: "team", Type: domain.FieldTypeText, Label: "Team name", Required: true},
			{ID: "size", Type: domain.FieldTypeDropdown, Label: "Team size", Options: []string{"2", "3"}},
		},
		OrganizerID: organizerID,
	})
}

func TestFormService_AddField(t *testing.T) {
	repo := newMemEventRepo()
	svc := NewFormService(repo)
	event := formEvent(repo, 0)

	fields, err := svc.AddField(context.Background(), event.ID, organizerID, domain.FormField{
		ID:    "github",
		Type:  domain.FieldTypeText,
		Label: "GitHub handle",
	})
	require.NoError(t, err)
	require.Len(t, fields, 3)
	assert.Equal(t, "github", fields[2].ID)

	_, err = svc.AddField(context.Background(), event.ID, organizerID, domain.FormField{
		ID:    "team",
		Type:  domain.FieldTypeText,
		Label: "Duplicate",
	})
	assert.ErrorIs(t, err, ErrFieldIDExists)
}

func TestFormService_RemoveField(t *testing.T) {
	repo := newMemEventRepo()
	svc := NewFormService(repo)
	event := formEvent(repo, 0)

	fields, err := svc.RemoveField(context.Background(), event.ID, organizerID, "size")
	require.NoError(t, err)
	require.Len(t, fields, 1)
	assert.Equal(t, "team", fields[0].ID)

	_, err = svc.RemoveField(context.Background(), event.ID, organizerID, "missing")
	assert.ErrorIs(t, err, ErrFieldNotFound)
}

func TestFormService_ReorderField(t *testing.T) {
	repo := newMemEventRepo()
	svc := NewFormService(repo)
	event := formEvent(repo, 0)

	fields, err := svc.ReorderField(context.Background(), event.ID, organizerID, "size", 0)
	require.NoError(t, err)
	require.Len(t, fields, 2)
	assert.Equal(t, "size", fields[0].ID)
	assert.Equal(t, "team", fields[1].ID)

	// Out-of-range positions clamp instead of failing.
	fields, err = svc.ReorderField(context.Background(), event.ID, organizerID, "size", 99)
	require.NoError(t, err)
	assert.Equal(t, "size", fields[1].ID)
}

func TestFormService_SetOptions(t *testing.T) {
	repo := newMemEventRepo()
	svc := NewFormService(repo)
	event := formEvent(repo, 0)

	fields, err := svc.SetOptions(context.Background(), event.ID, organizerID, "size", []string{"2", "3", "4"})
	require.NoError(t, err)
	assert.Equal(t, []string{"2", "3", "4"}, fields[1].Options)
}

func TestFormService_LockedAfterFirstRegistration(t *testing.T) {
	repo := newMemEventRepo()
	svc := NewFormService(repo)
	event := formEvent(repo, 1)

	_, err := svc.AddField(context.Background(), event.ID, organizerID, domain.FormField{
		ID: "x", Type: domain.FieldTypeText, Label: "X",
	})
	assert.ErrorIs(t, err, ErrFormLocked)

	_, err = svc.RemoveField(context.Background(), event.ID, organizerID, "team")
	assert.ErrorIs(t, err, ErrFormLocked)

	_, err = svc.ReorderField(context.Background(), event.ID, organizerID, "team", 1)
	assert.ErrorIs(t, err, ErrFormLocked)

	_, err = svc.SetOptions(context.Background(), event.ID, organizerID, "size", nil)
	assert.ErrorIs(t, err, ErrFormLocked)
}

func TestValidateResponses(t *testing.T) {
	form := []domain.FormField{
		{ID: "team", Label: "Team name", Required: true},
		{ID: "notes", Label: "Notes"},
	}

	// Responses arrive keyed by label, not field ID.
	assert.NoError(t, ValidateResponses(form, map[string]string{"Team name": "gophers"}))

	err := ValidateResponses(form, map[string]string{"team": "gophers"})
	require.ErrorIs(t, err, ErrMissingRequiredField)

	err = ValidateResponses(form, map[string]string{"Notes": "hi"})
	require.ErrorIs(t, err, ErrMissingRequiredField)
	assert.Contains(t, err.Error(), "Team name")

	// Blank counts as absent.
	err = ValidateResponses(form, map[string]string{"Team name": "   "})
	assert.ErrorIs(t, err, ErrMissingRequiredField)
}
