package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felicity-events/eventops-api/internal/domain"
)

const organizerID = uint(42)

func draftEvent(repo *memEventRepo) domain.Event {
	return repo.seed(domain.Event{
		Name:        "Hackathon",
		Type:        domain.EventTypeNormal,
		Status:      domain.EventStatusDraft,
		Eligibility: domain.EligibilityAll,
		OrganizerID: organizerID,
	})
}

func TestEventService_CreateEvent(t *testing.T) {
	repo := newMemEventRepo()
	svc := NewEventService(repo)

	created, err := svc.CreateEvent(context.Background(), domain.Event{
		Name:        "Robotics Expo",
		Type:        domain.EventTypeNormal,
		Status:      domain.EventStatusPublished, // must be forced back to DRAFT
		OrganizerID: organizerID,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.EventStatusDraft, created.Status)
	assert.NotZero(t, created.ID)
}

func TestEventService_CreateEvent_InvalidDates(t *testing.T) {
	repo := newMemEventRepo()
	svc := NewEventService(repo)

	start := time.Now().Add(48 * time.Hour)
	end := start.Add(-time.Hour)

	_, err := svc.CreateEvent(context.Background(), domain.Event{
		Name:           "Backwards",
		Type:           domain.EventTypeNormal,
		EventStartDate: &start,
		EventEndDate:   &end,
		OrganizerID:    organizerID,
	})
	assert.ErrorIs(t, err, ErrInvalidEventDates)

	deadline := start.Add(time.Hour)
	_, err = svc.CreateEvent(context.Background(), domain.Event{
		Name:                 "Late deadline",
		Type:                 domain.EventTypeNormal,
		EventStartDate:       &start,
		RegistrationDeadline: &deadline,
		OrganizerID:          organizerID,
	})
	assert.ErrorIs(t, err, ErrInvalidEventDates)
}

func TestEventService_Transition(t *testing.T) {
	repo := newMemEventRepo()
	svc := NewEventService(repo)
	event := draftEvent(repo)

	// DRAFT -> ONGOING skips PUBLISHED.
	_, err := svc.Transition(context.Background(), event.ID, organizerID, domain.EventStatusOngoing)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	updated, err := svc.Transition(context.Background(), event.ID, organizerID, domain.EventStatusPublished)
	require.NoError(t, err)
	assert.Equal(t, domain.EventStatusPublished, updated.Status)

	updated, err = svc.Transition(context.Background(), event.ID, organizerID, domain.EventStatusOngoing)
	require.NoError(t, err)
	assert.Equal(t, domain.EventStatusOngoing, updated.Status)

	// No back-transitions.
	_, err = svc.Transition(context.Background(), event.ID, organizerID, domain.EventStatusPublished)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	updated, err = svc.Transition(context.Background(), event.ID, organizerID, domain.EventStatusCompleted)
	require.NoError(t, err)
	assert.Equal(t, domain.EventStatusCompleted, updated.Status)

	// COMPLETED is terminal.
	_, err = svc.Transition(context.Background(), event.ID, organizerID, domain.EventStatusClosed)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestEventService_Transition_PublishedToClosed(t *testing.T) {
	repo := newMemEventRepo()
	svc := NewEventService(repo)
	event := draftEvent(repo)

	_, err := svc.Transition(context.Background(), event.ID, organizerID, domain.EventStatusPublished)
	require.NoError(t, err)

	updated, err := svc.Transition(context.Background(), event.ID, organizerID, domain.EventStatusClosed)
	require.NoError(t, err)
	assert.Equal(t, domain.EventStatusClosed, updated.Status)
}

func TestEventService_Transition_NotOrganizer(t *testing.T) {
	repo := newMemEventRepo()
	svc := NewEventService(repo)
	event := draftEvent(repo)

	_, err := svc.Transition(context.Background(), event.ID, organizerID+1, domain.EventStatusPublished)
	assert.ErrorIs(t, err, ErrNotEventOrganizer)
}

func TestEventService_EditEvent_Draft(t *testing.T) {
	repo := newMemEventRepo()
	svc := NewEventService(repo)
	event := draftEvent(repo)

	name := "Renamed Hackathon"
	fee := 250.0
	updated, err := svc.EditEvent(context.Background(), event.ID, organizerID, EventPatch{
		Name:            &name,
		RegistrationFee: &fee,
	})
	require.NoError(t, err)
	assert.Equal(t, name, updated.Name)
	assert.Equal(t, fee, updated.RegistrationFee)
}

func TestEventService_EditEvent_PublishedMatrix(t *testing.T) {
	repo := newMemEventRepo()
	svc := NewEventService(repo)
	event := repo.seed(domain.Event{
		Name:              "Concert",
		Type:              domain.EventTypeNormal,
		Status:            domain.EventStatusPublished,
		RegistrationLimit: 100,
		OrganizerID:       organizerID,
	})

	name := "Renamed"
	_, err := svc.EditEvent(context.Background(), event.ID, organizerID, EventPatch{Name: &name})
	assert.ErrorIs(t, err, ErrFieldLocked)

	lower := 99
	_, err = svc.EditEvent(context.Background(), event.ID, organizerID, EventPatch{RegistrationLimit: &lower})
	assert.ErrorIs(t, err, ErrLimitDecreaseRejected)

	higher := 105
	desc := "now with more seats"
	updated, err := svc.EditEvent(context.Background(), event.ID, organizerID, EventPatch{
		RegistrationLimit: &higher,
		Description:       &desc,
	})
	require.NoError(t, err)
	assert.Equal(t, 105, updated.RegistrationLimit)
	assert.Equal(t, desc, updated.Description)
}

func TestEventService_EditEvent_Locked(t *testing.T) {
	repo := newMemEventRepo()
	svc := NewEventService(repo)

	for _, status := range []domain.EventStatus{
		domain.EventStatusOngoing,
		domain.EventStatusCompleted,
		domain.EventStatusClosed,
	} {
		event := repo.seed(domain.Event{
			Name:        "Frozen",
			Type:        domain.EventTypeNormal,
			Status:      status,
			OrganizerID: organizerID,
		})

		desc := "too late"
		_, err := svc.EditEvent(context.Background(), event.ID, organizerID, EventPatch{Description: &desc})
		assert.ErrorIs(t, err, ErrFieldLocked, "status %v", status)
	}
}
