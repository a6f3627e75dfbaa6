package domain

import "time"

type AttendanceAction string

const (
	AttendanceActionMark   AttendanceAction = "MARK"
	AttendanceActionUnmark AttendanceAction = "UNMARK"
)

// AttendanceAuditEntry records one organizer manual override. Append-only.
type AttendanceAuditEntry struct {
	ID             uint             `json:"id"`
	RegistrationID uint             `json:"registration_id"`
	Action         AttendanceAction `json:"action"`
	Reason         string           `json:"reason"`
	ActorID        uint             `json:"actor_id"`
	CreatedAt      time.Time        `json:"created_at"`
}

// ScanOutcome is the result of an attendance scan. A repeat scan of an
// already-attended ticket is a Duplicate outcome, not an error, so that
// operators can tell the two apart.
type ScanOutcome struct {
	Duplicate   bool       `json:"duplicate"`
	TicketID    string     `json:"ticket_id"`
	AttendedAt  *time.Time `json:"attended_at,omitempty"`
	Participant User       `json:"participant"`
}
