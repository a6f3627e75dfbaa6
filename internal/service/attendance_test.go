package service

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felicity-events/eventops-api/internal/domain"
	"github.com/felicity-events/eventops-api/internal/pkg/ticket"
)

func newAttendanceFixture(t *testing.T) (*memRegRepo, *AttendanceService, domain.Registration) {
	t.Helper()

	regRepo := newMemRegRepo()
	users := newMemUserRepo(domain.User{ID: 7, Name: "Asha", Email: "asha@students.iiit.ac.in"})
	svc := NewAttendanceService(regRepo, users)

	reg, err := regRepo.Create(context.Background(), domain.Registration{
		EventID:       1,
		ParticipantID: 7,
		Status:        domain.RegistrationStatusRegistered,
		TicketID:      ticket.NewID(),
	})
	require.NoError(t, err)

	return regRepo, svc, reg
}

func TestAttendanceService_Scan(t *testing.T) {
	_, svc, reg := newAttendanceFixture(t)

	payload := ticket.EncodePayload(reg.TicketID)

	outcome, err := svc.Scan(context.Background(), reg.EventID, payload)
	require.NoError(t, err)
	assert.False(t, outcome.Duplicate)
	assert.Equal(t, reg.TicketID, outcome.TicketID)
	assert.Equal(t, "Asha", outcome.Participant.Name)
	require.NotNil(t, outcome.AttendedAt)

	// A second scan reports the original attendance time.
	dup, err := svc.Scan(context.Background(), reg.EventID, payload)
	require.NoError(t, err)
	assert.True(t, dup.Duplicate)
	require.NotNil(t, dup.AttendedAt)
	assert.Equal(t, outcome.AttendedAt.Unix(), dup.AttendedAt.Unix())
}

func TestAttendanceService_Scan_Malformed(t *testing.T) {
	_, svc, reg := newAttendanceFixture(t)

	_, err := svc.Scan(context.Background(), reg.EventID, `{"ticketId":`)
	assert.ErrorIs(t, err, ErrMalformedQR)

	_, err = svc.Scan(context.Background(), reg.EventID, "not-a-ticket")
	assert.ErrorIs(t, err, ErrMalformedQR)
}

func TestAttendanceService_Scan_UnknownTicket(t *testing.T) {
	_, svc, reg := newAttendanceFixture(t)

	payload := ticket.EncodePayload(ticket.NewID())

	_, err := svc.Scan(context.Background(), reg.EventID, payload)
	assert.ErrorIs(t, err, ErrTicketNotFound)
}

func TestAttendanceService_Scan_EventMismatch(t *testing.T) {
	_, svc, reg := newAttendanceFixture(t)

	payload := ticket.EncodePayload(reg.TicketID)

	_, err := svc.Scan(context.Background(), reg.EventID+1, payload)
	assert.ErrorIs(t, err, ErrEventMismatch)

	// Unscoped marking skips the event check.
	outcome, err := svc.MarkAttendance(context.Background(), reg.TicketID, 0)
	require.NoError(t, err)
	assert.False(t, outcome.Duplicate)
}

func TestAttendanceService_ConcurrentScans(t *testing.T) {
	_, svc, reg := newAttendanceFixture(t)

	payload := ticket.EncodePayload(reg.TicketID)

	const scanners = 8
	var wg sync.WaitGroup
	outcomes := make(chan domain.ScanOutcome, scanners)
	for i := 0; i < scanners; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			outcome, err := svc.Scan(context.Background(), reg.EventID, payload)
			assert.NoError(t, err)
			outcomes <- outcome
		}()
	}
	wg.Wait()
	close(outcomes)

	fresh := 0
	for outcome := range outcomes {
		if !outcome.Duplicate {
			fresh++
		}
	}
	assert.Equal(t, 1, fresh)
}

func TestAttendanceService_ManualOverride(t *testing.T) {
	regRepo, svc, reg := newAttendanceFixture(t)

	_, err := svc.ManualOverride(context.Background(), reg.ID, domain.AttendanceActionMark, "", organizerID)
	assert.ErrorIs(t, err, ErrReasonRequired)

	_, err = svc.ManualOverride(context.Background(), reg.ID, domain.AttendanceActionMark, "   ", organizerID)
	assert.ErrorIs(t, err, ErrReasonRequired)

	_, err = svc.ManualOverride(context.Background(), reg.ID, "TOGGLE", "typo", organizerID)
	assert.ErrorIs(t, err, ErrUnknownAction)

	entry, err := svc.ManualOverride(context.Background(), reg.ID, domain.AttendanceActionMark, "lost phone, verified by ID card", organizerID)
	require.NoError(t, err)
	assert.Equal(t, domain.AttendanceActionMark, entry.Action)
	assert.Equal(t, organizerID, entry.ActorID)

	marked, err := regRepo.FindByID(context.Background(), reg.ID)
	require.NoError(t, err)
	assert.True(t, marked.Attended)
	assert.Equal(t, domain.RegistrationStatusAttended, marked.Status)

	// MARK again is a no-op, not an error.
	_, err = svc.ManualOverride(context.Background(), reg.ID, domain.AttendanceActionMark, "double entry", organizerID)
	require.NoError(t, err)

	_, err = svc.ManualOverride(context.Background(), reg.ID, domain.AttendanceActionUnmark, "scanned wrong person", organizerID)
	require.NoError(t, err)

	cleared, err := regRepo.FindByID(context.Background(), reg.ID)
	require.NoError(t, err)
	assert.False(t, cleared.Attended)
	assert.Nil(t, cleared.AttendedAt)
	assert.Equal(t, domain.RegistrationStatusRegistered, cleared.Status)

	entries, err := svc.AuditTrail(context.Background(), reg.ID)
	require.NoError(t, err)
	assert.Len(t, entries, 3)
}

func TestAttendanceService_ManualOverride_UnmarkRestoresPurchased(t *testing.T) {
	regRepo := newMemRegRepo()
	users := newMemUserRepo(domain.User{ID: 9, Name: "Ravi"})
	svc := NewAttendanceService(regRepo, users)

	order, err := regRepo.Create(context.Background(), domain.Registration{
		EventID:       2,
		ParticipantID: 9,
		Status:        domain.RegistrationStatusPurchased,
		TicketID:      ticket.NewID(),
		Purchase: &domain.MerchandisePurchase{
			Size:          "M",
			Color:         "black",
			Quantity:      1,
			PaymentStatus: domain.PaymentStatusApproved,
		},
	})
	require.NoError(t, err)

	_, err = svc.ManualOverride(context.Background(), order.ID, domain.AttendanceActionMark, "collected at stall", organizerID)
	require.NoError(t, err)
	_, err = svc.ManualOverride(context.Background(), order.ID, domain.AttendanceActionUnmark, "wrong order", organizerID)
	require.NoError(t, err)

	cleared, err := regRepo.FindByID(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.RegistrationStatusPurchased, cleared.Status)
}
