package request

import (
	"errors"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
)

var (
	errMissingMerchandise = errors.New("merchandise details are required for MERCHANDISE events")
	errEmptyFieldUpdate   = errors.New("position or options must be provided")
)

type FormFieldPayload struct {
	ID       string   `json:"id"`
	Type     string   `json:"type"`
	Label    string   `json:"label"`
	Required bool     `json:"required"`
	Options  []string `json:"options,omitempty"`
}

func (f FormFieldPayload) Validate() error {
	return validation.ValidateStruct(
		&f,
		validation.Field(&f.ID, validation.Required, validation.Length(1, 50)),
		validation.Field(&f.Type, validation.Required,
			validation.In("text", "number", "dropdown", "checkbox", "file")),
		validation.Field(&f.Label, validation.Required, validation.Length(1, 100)),
	)
}

type VariantPayload struct {
	Size  string `json:"size"`
	Color string `json:"color"`
	Stock int    `json:"stock"`
}

type MerchandisePayload struct {
	ItemName                    string           `json:"item_name"`
	Price                       float64          `json:"price"`
	Variants                    []VariantPayload `json:"variants"`
	PurchaseLimitPerParticipant int              `json:"purchase_limit_per_participant"`
}

func (m MerchandisePayload) Validate() error {
	return validation.ValidateStruct(
		&m,
		validation.Field(&m.ItemName, validation.Required, validation.Length(1, 100)),
		validation.Field(&m.Price, validation.Min(0.0)),
		validation.Field(&m.Variants, validation.Required),
		validation.Field(&m.PurchaseLimitPerParticipant, validation.Min(0)),
	)
}

type CreateEventRequest struct {
	Name                 string              `json:"name"`
	Description          string              `json:"description"`
	Tags                 []string            `json:"tags"`
	Type                 string              `json:"type"`
	Eligibility          string              `json:"eligibility"`
	EventStartDate       *time.Time          `json:"event_start_date"`
	EventEndDate         *time.Time          `json:"event_end_date"`
	RegistrationDeadline *time.Time          `json:"registration_deadline"`
	RegistrationLimit    int                 `json:"registration_limit"`
	RegistrationFee      float64             `json:"registration_fee"`
	CustomForm           []FormFieldPayload  `json:"custom_form"`
	Merchandise          *MerchandisePayload `json:"merchandise_details"`
}

func (req *CreateEventRequest) Validate() error {
	err := validation.ValidateStruct(
		req,
		validation.Field(&req.Name, validation.Required, validation.Length(2, 100)),
		validation.Field(&req.Description, validation.Length(0, 2000)),
		validation.Field(&req.Type, validation.Required, validation.In("NORMAL", "MERCHANDISE")),
		validation.Field(&req.Eligibility, validation.In("ALL", "IIIT", "NON-IIIT")),
		validation.Field(&req.RegistrationLimit, validation.Min(0)),
		validation.Field(&req.RegistrationFee, validation.Min(0.0)),
	)
	if err != nil {
		return err
	}

	for _, f := range req.CustomForm {
		if err = f.Validate(); err != nil {
			return err
		}
	}

	if req.Type == "MERCHANDISE" {
		if req.Merchandise == nil {
			return errMissingMerchandise
		}

		return req.Merchandise.Validate()
	}

	return nil
}

type TransitionEventRequest struct {
	Target string `json:"target"`
}

func (req *TransitionEventRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Target, validation.Required,
			validation.In("PUBLISHED", "ONGOING", "COMPLETED", "CLOSED")),
	)
}

// EditEventRequest carries a partial update; absent fields stay untouched.
type EditEventRequest struct {
	Name                 *string             `json:"name"`
	Description          *string             `json:"description"`
	Tags                 *[]string           `json:"tags"`
	Eligibility          *string             `json:"eligibility"`
	EventStartDate       *time.Time          `json:"event_start_date"`
	EventEndDate         *time.Time          `json:"event_end_date"`
	RegistrationDeadline *time.Time          `json:"registration_deadline"`
	RegistrationLimit    *int                `json:"registration_limit"`
	RegistrationFee      *float64            `json:"registration_fee"`
	CustomForm           *[]FormFieldPayload `json:"custom_form"`
}

func (req *EditEventRequest) Validate() error {
	if req.Eligibility != nil {
		if err := validation.Validate(*req.Eligibility, validation.In("ALL", "IIIT", "NON-IIIT")); err != nil {
			return err
		}
	}
	if req.RegistrationLimit != nil {
		if err := validation.Validate(*req.RegistrationLimit, validation.Min(0)); err != nil {
			return err
		}
	}
	if req.CustomForm != nil {
		for _, f := range *req.CustomForm {
			if err := f.Validate(); err != nil {
				return err
			}
		}
	}

	return nil
}

type AddFormFieldRequest struct {
	FormFieldPayload
}

type UpdateFormFieldRequest struct {
	Position *int      `json:"position"`
	Options  *[]string `json:"options"`
}

func (req *UpdateFormFieldRequest) Validate() error {
	if req.Position == nil && req.Options == nil {
		return errEmptyFieldUpdate
	}
	if req.Position != nil {
		return validation.Validate(*req.Position, validation.Min(0))
	}

	return nil
}
