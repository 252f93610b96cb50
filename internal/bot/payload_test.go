package bot

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPayloadRoundTrip(t *testing.T) {
	tests := []struct {
		name    string
		payload payload
	}{
		{
			name:    "Category",
			payload: payload{Action: actionCategory, Category: "NETFLIX"},
		},
		{
			name:    "Page navigation",
			payload: payload{Action: actionPage, Category: "SPOTIFY", Index: 3},
		},
		{
			name:    "Buy",
			payload: payload{Action: actionBuy, AccountID: 9223372036854775807},
		},
		{
			name:    "Images",
			payload: payload{Action: actionImage, AccountID: 42},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			encoded := encodePayload(tt.payload)
			require.NotEmpty(t, encoded)

			// Telegram ограничивает callback data 64 байтами
			assert.LessOrEqual(t, len(encoded), 64)

			decoded, err := decodePayload(encoded)
			require.NoError(t, err)
			assert.Equal(t, tt.payload, decoded)
		})
	}
}

func TestDecodePayload_Errors(t *testing.T) {
	t.Run("Malformed JSON", func(t *testing.T) {
		_, err := decodePayload("not json")
		assert.Error(t, err)
	})

	t.Run("Missing action", func(t *testing.T) {
		_, err := decodePayload(`{"c": "NETFLIX"}`)
		assert.Error(t, err)
	})

	t.Run("Empty string", func(t *testing.T) {
		_, err := decodePayload("")
		assert.Error(t, err)
	})
}
