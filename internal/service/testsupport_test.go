package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/felicity-events/eventops-api/internal/domain"
	"github.com/felicity-events/eventops-api/internal/repository"
)

// In-memory fakes backing the service tests. They mirror the repository
// layer's contracts, including the conditional-update semantics the ledger
// depends on.

type memEventRepo struct {
	mu     sync.Mutex
	nextID uint
	events map[uint]*domain.Event
}

func newMemEventRepo() *memEventRepo {
	return &memEventRepo{
		events: make(map[uint]*domain.Event),
	}
}

func (r *memEventRepo) seed(event domain.Event) domain.Event {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	event.ID = r.nextID
	r.events[event.ID] = &event

	return event
}

func (r *memEventRepo) Create(_ context.Context, event domain.Event) (domain.Event, error) {
	return r.seed(event), nil
}

func (r *memEventRepo) FindByID(_ context.Context, id uint) (domain.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	event, ok := r.events[id]
	if !ok {
		return domain.Event{}, repository.ErrEventNotFound
	}

	return *event, nil
}

func (r *memEventRepo) FindPublished(_ context.Context) ([]domain.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []domain.Event
	for _, e := range r.events {
		if e.Status == domain.EventStatusPublished {
			out = append(out, *e)
		}
	}

	return out, nil
}

func (r *memEventRepo) FindByOrganizer(_ context.Context, organizerID uint) ([]domain.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []domain.Event
	for _, e := range r.events {
		if e.OrganizerID == organizerID {
			out = append(out, *e)
		}
	}

	return out, nil
}

func (r *memEventRepo) UpdateFields(_ context.Context, id uint, values map[string]any) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	event, ok := r.events[id]
	if !ok {
		return repository.ErrEventNotFound
	}

	for key, value := range values {
		switch key {
		case "name":
			event.Name = value.(string)
		case "description":
			event.Description = value.(string)
		case "tags":
			event.Tags = strings.Split(value.(string), ",")
		case "eligibility":
			event.Eligibility = domain.Eligibility(value.(string))
		case "event_start_date":
			t := value.(time.Time)
			event.EventStartDate = &t
		case "event_end_date":
			t := value.(time.Time)
			event.EventEndDate = &t
		case "registration_deadline":
			t := value.(time.Time)
			event.RegistrationDeadline = &t
		case "registration_limit":
			event.RegistrationLimit = value.(int)
		case "registration_fee":
			event.RegistrationFee = value.(float64)
		}
	}

	return nil
}

func (r *memEventRepo) UpdateStatus(_ context.Context, id uint, from, to domain.EventStatus) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	event, ok := r.events[id]
	if !ok || event.Status != from {
		return false, nil
	}
	event.Status = to

	return true, nil
}

func (r *memEventRepo) ReplaceFormFields(_ context.Context, eventID uint, fields []domain.FormField) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	event, ok := r.events[eventID]
	if !ok {
		return repository.ErrEventNotFound
	}
	event.CustomForm = append([]domain.FormField(nil), fields...)

	return nil
}

func (r *memEventRepo) ReserveSeat(_ context.Context, id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	event, ok := r.events[id]
	if !ok {
		return repository.ErrEventNotFound
	}
	if event.RegistrationLimit != 0 && event.RegistrationsCount >= event.RegistrationLimit {
		return repository.ErrCapacityExceeded
	}
	event.RegistrationsCount++

	return nil
}

func (r *memEventRepo) ReleaseSeat(_ context.Context, id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	event, ok := r.events[id]
	if !ok {
		return repository.ErrEventNotFound
	}
	if event.RegistrationsCount > 0 {
		event.RegistrationsCount--
	}

	return nil
}

func (r *memEventRepo) ReserveVariantStock(_ context.Context, eventID uint, size, color string, qty int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	event, ok := r.events[eventID]
	if !ok {
		return repository.ErrEventNotFound
	}
	if event.Merchandise == nil {
		return repository.ErrVariantNotFound
	}

	for i, v := range event.Merchandise.Variants {
		if v.Size == size && v.Color == color {
			if v.Stock < qty {
				return repository.ErrInsufficientStock
			}
			event.Merchandise.Variants[i].Stock -= qty

			return nil
		}
	}

	return repository.ErrVariantNotFound
}

type memRegRepo struct {
	mu     sync.Mutex
	nextID uint
	regs   map[uint]*domain.Registration
	audits []domain.AttendanceAuditEntry
}

func newMemRegRepo() *memRegRepo {
	return &memRegRepo{
		regs: make(map[uint]*domain.Registration),
	}
}

func (r *memRegRepo) Create(_ context.Context, reg domain.Registration) (domain.Registration, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	reg.ID = r.nextID
	reg.CreatedAt = time.Now()
	stored := reg
	r.regs[reg.ID] = &stored

	return reg, nil
}

func (r *memRegRepo) FindByID(_ context.Context, id uint) (domain.Registration, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	reg, ok := r.regs[id]
	if !ok {
		return domain.Registration{}, repository.ErrRegistrationNotFound
	}

	return cloneReg(*reg), nil
}

func (r *memRegRepo) FindByTicketID(_ context.Context, ticketID string) (domain.Registration, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, reg := range r.regs {
		if reg.TicketID == ticketID && ticketID != "" {
			return cloneReg(*reg), nil
		}
	}

	return domain.Registration{}, repository.ErrTicketNotFound
}

func (r *memRegRepo) FindLive(_ context.Context, eventID, participantID uint) (domain.Registration, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, reg := range r.regs {
		if reg.EventID == eventID && reg.ParticipantID == participantID &&
			reg.Status != domain.RegistrationStatusCancelled {
			return cloneReg(*reg), nil
		}
	}

	return domain.Registration{}, repository.ErrRegistrationNotFound
}

func (r *memRegRepo) FindByEvent(_ context.Context, eventID uint) ([]domain.Registration, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []domain.Registration
	for _, reg := range r.regs {
		if reg.EventID == eventID {
			out = append(out, cloneReg(*reg))
		}
	}

	return out, nil
}

func (r *memRegRepo) FindOrdersByEvent(_ context.Context, eventID uint, paymentStatus domain.PaymentStatus) ([]domain.Registration, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []domain.Registration
	for _, reg := range r.regs {
		if reg.EventID != eventID || reg.Purchase == nil {
			continue
		}
		if paymentStatus != "" && reg.Purchase.PaymentStatus != paymentStatus {
			continue
		}
		out = append(out, cloneReg(*reg))
	}

	return out, nil
}

func (r *memRegRepo) FindByParticipant(_ context.Context, participantID uint) ([]domain.Registration, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []domain.Registration
	for _, reg := range r.regs {
		if reg.ParticipantID == participantID {
			out = append(out, cloneReg(*reg))
		}
	}

	return out, nil
}

func (r *memRegRepo) UpdateStatus(_ context.Context, id uint, status domain.RegistrationStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	reg, ok := r.regs[id]
	if !ok {
		return repository.ErrRegistrationNotFound
	}
	reg.Status = status

	return nil
}

func (r *memRegRepo) SumOrderQuantity(_ context.Context, eventID, participantID uint) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	total := 0
	for _, reg := range r.regs {
		if reg.EventID != eventID || reg.ParticipantID != participantID || reg.Purchase == nil {
			continue
		}
		if reg.Purchase.PaymentStatus == domain.PaymentStatusPending ||
			reg.Purchase.PaymentStatus == domain.PaymentStatusApproved {
			total += reg.Purchase.Quantity
		}
	}

	return total, nil
}

func (r *memRegRepo) DecidePayment(_ context.Context, id uint, paymentStatus domain.PaymentStatus, regStatus domain.RegistrationStatus, ticketID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	reg, ok := r.regs[id]
	if !ok || reg.Purchase == nil || reg.Purchase.PaymentStatus != domain.PaymentStatusPending {
		return false, nil
	}

	reg.Purchase.PaymentStatus = paymentStatus
	reg.Status = regStatus
	if ticketID != "" {
		reg.TicketID = ticketID
	}

	return true, nil
}

func (r *memRegRepo) MarkAttended(_ context.Context, id uint, at time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	reg, ok := r.regs[id]
	if !ok || reg.Attended {
		return false, nil
	}

	reg.Attended = true
	reg.AttendedAt = &at
	reg.Status = domain.RegistrationStatusAttended

	return true, nil
}

func (r *memRegRepo) ClearAttendance(_ context.Context, id uint, status domain.RegistrationStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	reg, ok := r.regs[id]
	if !ok {
		return repository.ErrRegistrationNotFound
	}

	reg.Attended = false
	reg.AttendedAt = nil
	reg.Status = status

	return nil
}

func (r *memRegRepo) AppendAudit(_ context.Context, entry domain.AttendanceAuditEntry) (domain.AttendanceAuditEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry.ID = uint(len(r.audits) + 1)
	entry.CreatedAt = time.Now()
	r.audits = append(r.audits, entry)

	return entry, nil
}

func (r *memRegRepo) FindAuditByRegistration(_ context.Context, registrationID uint) ([]domain.AttendanceAuditEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []domain.AttendanceAuditEntry
	for _, e := range r.audits {
		if e.RegistrationID == registrationID {
			out = append(out, e)
		}
	}

	return out, nil
}

type memUserRepo struct {
	mu    sync.Mutex
	users map[uint]domain.User
}

func newMemUserRepo(users ...domain.User) *memUserRepo {
	r := &memUserRepo{
		users: make(map[uint]domain.User),
	}
	for _, u := range users {
		r.users[u.ID] = u
	}

	return r
}

func (r *memUserRepo) FindByID(_ context.Context, id uint) (domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[id]
	if !ok {
		return domain.User{}, repository.ErrUserNotFound
	}

	return user, nil
}

func cloneReg(reg domain.Registration) domain.Registration {
	if reg.Purchase != nil {
		purchase := *reg.Purchase
		reg.Purchase = &purchase
	}
	if reg.AttendedAt != nil {
		at := *reg.AttendedAt
		reg.AttendedAt = &at
	}

	return reg
}

func futureTime(d time.Duration) *time.Time {
	t := time.Now().Add(d)

	return &t
}
