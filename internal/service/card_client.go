package service

import (
	"bytes"
	"context"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Успешный статус гашения карты у шлюза. Любой другой статус — отказ.
const cardStatusSuccess = 1

// CardChargeRequest описывает запрос на гашение карты пополнения
type CardChargeRequest struct {
	Telco     string
	Code      string
	Serial    string
	Amount    int64
	RequestID string
}

// CardChargeResult представляет ответ платежного шлюза
type CardChargeResult struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
}

// Success сообщает, принял ли шлюз карту
func (r *CardChargeResult) Success() bool {
	return r.Status == cardStatusSuccess
}

// CardClient определяет методы синхронного гашения карт пополнения
type CardClient interface {
	Charge(ctx context.Context, req CardChargeRequest) (*CardChargeResult, error)
}

// HTTPCardClient реализует CardClient поверх API шлюза карт
type HTTPCardClient struct {
	gatewayURL string
	partnerID  string
	partnerKey string
	httpClient *http.Client
}

// NewCardClient создает новый CardClient
func NewCardClient(gatewayURL, partnerID, partnerKey string) *HTTPCardClient {
	return &HTTPCardClient{
		gatewayURL: gatewayURL,
		partnerID:  partnerID,
		partnerKey: partnerKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Формат запроса шлюза
type cardChargePayload struct {
	RequestID string `json:"request_id"`
	Code      string `json:"code"`
	PartnerID string `json:"partner_id"`
	Serial    string `json:"serial"`
	Telco     string `json:"telco"`
	Amount    int64  `json:"amount"`
	Command   string `json:"command"`
	Sign      string `json:"sign"`
}

// Charge отправляет карту на гашение.
// Возвращает ErrGatewayUnconfigured, если партнерские реквизиты не заданы.
func (c *HTTPCardClient) Charge(ctx context.Context, req CardChargeRequest) (*CardChargeResult, error) {
	if c.gatewayURL == "" || c.partnerID == "" || c.partnerKey == "" {
		return nil, ErrGatewayUnconfigured
	}

	// Подпись запроса по протоколу шлюза
	sum := md5.Sum([]byte(c.partnerKey + req.Code + req.Serial))
	payload := cardChargePayload{
		RequestID: req.RequestID,
		Code:      req.Code,
		PartnerID: c.partnerID,
		Serial:    req.Serial,
		Telco:     req.Telco,
		Amount:    req.Amount,
		Command:   "charging",
		Sign:      hex.EncodeToString(sum[:]),
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("card client: failed to marshal payload: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.gatewayURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("card client: failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("card client: failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("card client: unexpected status code: %d", resp.StatusCode)
	}

	var result CardChargeResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("card client: failed to decode response: %w", err)
	}

	return &result, nil
}
