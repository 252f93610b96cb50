package service

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPCardClient_Charge(t *testing.T) {
	ctx := context.Background()

	req := CardChargeRequest{
		Telco:     "VIETTEL",
		Code:      "123456789012345",
		Serial:    "10000123456789",
		Amount:    100000,
		RequestID: "req-1",
	}

	t.Run("Success with signed payload", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var payload cardChargePayload
			require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))

			assert.Equal(t, "charging", payload.Command)
			assert.Equal(t, "partner-1", payload.PartnerID)
			assert.Equal(t, req.Code, payload.Code)
			assert.Equal(t, req.Serial, payload.Serial)
			assert.Equal(t, req.Amount, payload.Amount)

			// Подпись md5(partnerKey + code + serial)
			sum := md5.Sum([]byte("partner-key" + req.Code + req.Serial))
			assert.Equal(t, hex.EncodeToString(sum[:]), payload.Sign)

			w.WriteHeader(http.StatusOK)
			w.Write([]byte(`{"status": 1, "message": "success"}`))
		}))
		defer server.Close()

		client := NewCardClient(server.URL, "partner-1", "partner-key")
		result, err := client.Charge(ctx, req)
		require.NoError(t, err)
		assert.True(t, result.Success())
	})

	t.Run("Declined card", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte(`{"status": 3, "message": "the cao sai"}`))
		}))
		defer server.Close()

		client := NewCardClient(server.URL, "partner-1", "partner-key")
		result, err := client.Charge(ctx, req)
		require.NoError(t, err)
		assert.False(t, result.Success())
		assert.Equal(t, 3, result.Status)
		assert.Equal(t, "the cao sai", result.Message)
	})

	t.Run("Unconfigured gateway", func(t *testing.T) {
		client := NewCardClient("", "", "")
		result, err := client.Charge(ctx, req)
		assert.ErrorIs(t, err, ErrGatewayUnconfigured)
		assert.Nil(t, result)
	})

	t.Run("Gateway HTTP error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}))
		defer server.Close()

		client := NewCardClient(server.URL, "partner-1", "partner-key")
		result, err := client.Charge(ctx, req)
		assert.Error(t, err)
		assert.Nil(t, result)
	})
}
