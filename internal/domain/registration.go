package domain

import "time"

type RegistrationStatus string

const (
	RegistrationStatusRegistered RegistrationStatus = "REGISTERED"
	RegistrationStatusPurchased  RegistrationStatus = "PURCHASED"
	RegistrationStatusAttended   RegistrationStatus = "ATTENDED"
	RegistrationStatusCancelled  RegistrationStatus = "CANCELLED"
	RegistrationStatusCompleted  RegistrationStatus = "COMPLETED"
)

type PaymentStatus string

const (
	PaymentStatusPending  PaymentStatus = "PENDING"
	PaymentStatusApproved PaymentStatus = "APPROVED"
	PaymentStatusRejected PaymentStatus = "REJECTED"
)

// MerchandisePurchase holds the order details of a merchandise registration.
type MerchandisePurchase struct {
	Size            string        `json:"size"`
	Color           string        `json:"color"`
	Quantity        int           `json:"quantity"`
	TotalAmount     float64       `json:"total_amount"`
	PaymentStatus   PaymentStatus `json:"payment_status"`
	PaymentProofRef string        `json:"payment_proof_ref"`
}

type Registration struct {
	ID            uint               `json:"id"`
	EventID       uint               `json:"event_id"`
	ParticipantID uint               `json:"participant_id"`
	Status        RegistrationStatus `json:"status"`

	CustomResponses map[string]string `json:"custom_responses,omitempty"`

	// TicketID is write-once: set on successful registration (NORMAL) or
	// order approval (MERCHANDISE), never changed afterwards.
	TicketID   string     `json:"ticket_id,omitempty"`
	Attended   bool       `json:"attended"`
	AttendedAt *time.Time `json:"attended_at,omitempty"`

	Purchase *MerchandisePurchase `json:"merchandise_purchase,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsCancellable reports whether a participant may still cancel.
// Merchandise orders are never cancellable by the participant.
func (r *Registration) IsCancellable() bool {
	if r.Purchase != nil {
		return false
	}

	switch r.Status {
	case RegistrationStatusCancelled, RegistrationStatusCompleted, RegistrationStatusAttended:
		return false
	}

	return true
}
