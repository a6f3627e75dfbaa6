package ticket

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewID(t *testing.T) {
	first := NewID()
	second := NewID()

	assert.True(t, len(first) > len(idPrefix))
	assert.Contains(t, first, idPrefix)
	assert.NotEqual(t, first, second)
}

func TestPayloadRoundTrip(t *testing.T) {
	id := NewID()

	decoded, err := DecodePayload(EncodePayload(id))
	require.NoError(t, err)
	assert.Equal(t, id, decoded)
}

func TestDecodePayload_BareID(t *testing.T) {
	id := NewID()

	decoded, err := DecodePayload("  " + id + "\n")
	require.NoError(t, err)
	assert.Equal(t, id, decoded)
}

func TestDecodePayload_Malformed(t *testing.T) {
	cases := []string{
		"",
		"   ",
		"not-a-ticket",
		`{"ticketId":`,
		`{"ticketId":""}`,
		`{"other":"FEL-X"}`,
	}

	for _, raw := range cases {
		_, err := DecodePayload(raw)
		assert.ErrorIs(t, err, ErrMalformedPayload, "payload %q", raw)
	}
}
