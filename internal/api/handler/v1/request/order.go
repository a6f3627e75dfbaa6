package request

import (
	validation "github.com/go-ozzo/ozzo-validation"
)

type PurchaseRequest struct {
	Size            string `json:"size"`
	Color           string `json:"color"`
	Quantity        int    `json:"quantity"`
	PaymentProofRef string `json:"payment_proof_ref"`
}

func (req *PurchaseRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Size, validation.Required),
		validation.Field(&req.Color, validation.Required),
		validation.Field(&req.Quantity, validation.Required, validation.Min(1)),
	)
}
