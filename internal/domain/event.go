package domain

import "time"

type EventType string

const (
	EventTypeNormal      EventType = "NORMAL"
	EventTypeMerchandise EventType = "MERCHANDISE"
)

type EventStatus string

const (
	EventStatusDraft     EventStatus = "DRAFT"
	EventStatusPublished EventStatus = "PUBLISHED"
	EventStatusOngoing   EventStatus = "ONGOING"
	EventStatusCompleted EventStatus = "COMPLETED"
	EventStatusClosed    EventStatus = "CLOSED"
)

type Eligibility string

const (
	EligibilityAll     Eligibility = "ALL"
	EligibilityIIIT    Eligibility = "IIIT"
	EligibilityNonIIIT Eligibility = "NON-IIIT"
)

type FormFieldType string

const (
	FieldTypeText     FormFieldType = "text"
	FieldTypeNumber   FormFieldType = "number"
	FieldTypeDropdown FormFieldType = "dropdown"
	FieldTypeCheckbox FormFieldType = "checkbox"
	FieldTypeFile     FormFieldType = "file"
)

// FormField is one question of an event's custom registration form.
// Options is only meaningful for dropdown fields.
type FormField struct {
	ID       string        `json:"id"`
	Type     FormFieldType `json:"type"`
	Label    string        `json:"label"`
	Required bool          `json:"required"`
	Options  []string      `json:"options,omitempty"`
}

// Variant is a (size, color) combination of a merchandise item with its own stock.
type Variant struct {
	Size  string `json:"size"`
	Color string `json:"color"`
	Stock int    `json:"stock"`
}

type MerchandiseDetails struct {
	ItemName                    string    `json:"item_name"`
	Price                       float64   `json:"price"`
	Variants                    []Variant `json:"variants"`
	PurchaseLimitPerParticipant int       `json:"purchase_limit_per_participant"`
}

type Event struct {
	ID          uint        `json:"id"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Tags        []string    `json:"tags"`
	Type        EventType   `json:"type"`
	Status      EventStatus `json:"status"`
	Eligibility Eligibility `json:"eligibility"`

	EventStartDate       *time.Time `json:"event_start_date"`
	EventEndDate         *time.Time `json:"event_end_date"`
	RegistrationDeadline *time.Time `json:"registration_deadline"`

	// NORMAL events only. A limit of 0 means unlimited.
	RegistrationLimit  int         `json:"registration_limit"`
	RegistrationFee    float64     `json:"registration_fee"`
	RegistrationsCount int         `json:"registrations_count"`
	CustomForm         []FormField `json:"custom_form,omitempty"`

	// MERCHANDISE events only.
	Merchandise *MerchandiseDetails `json:"merchandise_details,omitempty"`

	OrganizerID uint      `json:"organizer_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// OpenForRegistration reports whether participant-facing submissions are
// accepted: the event is PUBLISHED and the deadline, if set, has not passed.
func (e *Event) OpenForRegistration(now time.Time) bool {
	if e.Status != EventStatusPublished {
		return false
	}
	if e.RegistrationDeadline != nil && now.After(*e.RegistrationDeadline) {
		return false
	}

	return true
}

// FindVariant returns the merchandise variant matching size and color.
func (e *Event) FindVariant(size, color string) (Variant, bool) {
	if e.Merchandise == nil {
		return Variant{}, false
	}

	for _, v := range e.Merchandise.Variants {
		if v.Size == size && v.Color == color {
			return v, true
		}
	}

	return Variant{}, false
}
