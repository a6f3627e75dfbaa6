package request

import (
	validation "github.com/go-ozzo/ozzo-validation"
)

type ScanRequest struct {
	Payload string `json:"payload"`
}

func (req *ScanRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Payload, validation.Required),
	)
}

type MarkAttendanceRequest struct {
	TicketID string `json:"ticket_id"`
}

func (req *MarkAttendanceRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.TicketID, validation.Required),
	)
}

type ManualOverrideRequest struct {
	RegistrationID uint   `json:"registration_id"`
	Action         string `json:"action"`
	Reason         string `json:"reason"`
}

func (req *ManualOverrideRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.RegistrationID, validation.Required),
		validation.Field(&req.Action, validation.Required, validation.In("MARK", "UNMARK")),
		validation.Field(&req.Reason, validation.Required),
	)
}
