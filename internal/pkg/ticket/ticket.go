// Package ticket issues ticket identifiers and handles the payload format
// embedded in ticket QR codes.
package ticket

import (
	"encoding/json"
	"errors"
	"strings"

	"github.com/google/uuid"
)

var ErrMalformedPayload = errors.New("malformed ticket payload")

const idPrefix = "FEL-"

// NewID returns a fresh opaque ticket identifier.
func NewID() string {
	return idPrefix + strings.ToUpper(uuid.NewString())
}

type payload struct {
	TicketID string `json:"ticketId"`
}

// EncodePayload wraps a ticket ID in the JSON payload that scanner clients
// embed in QR codes.
func EncodePayload(ticketID string) string {
	raw, _ := json.Marshal(payload{TicketID: ticketID})

	return string(raw)
}

// DecodePayload extracts the ticket ID from a scanned payload. Both the JSON
// form and a bare ticket ID are accepted, since older tickets encoded the ID
// directly.
func DecodePayload(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", ErrMalformedPayload
	}

	if strings.HasPrefix(raw, "{") {
		var p payload
		if err := json.Unmarshal([]byte(raw), &p); err != nil || p.TicketID == "" {
			return "", ErrMalformedPayload
		}

		return p.TicketID, nil
	}

	if !strings.HasPrefix(raw, idPrefix) {
		return "", ErrMalformedPayload
	}

	return raw, nil
}
