package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/avc/accshop/internal/domain"
	"github.com/hashicorp/go-retryablehttp"
)

// FeedClient определяет методы получения транзакций из банковского агрегатора
type FeedClient interface {
	RecentTransactions(ctx context.Context) ([]domain.BankTransaction, error)
}

// HTTPFeedClient реализует FeedClient поверх HTTP API агрегатора.
// Сбои одного запроса не фатальны: координатор трактует ошибку
// как пустую ленту на этом тике.
type HTTPFeedClient struct {
	apiURL     string
	apiKey     string
	httpClient *retryablehttp.Client
}

// NewFeedClient создает новый FeedClient
func NewFeedClient(apiURL, apiKey string) *HTTPFeedClient {
	client := retryablehttp.NewClient()
	client.RetryMax = 2
	client.RetryWaitMin = 500 * time.Millisecond
	client.RetryWaitMax = 2 * time.Second
	client.HTTPClient.Timeout = 10 * time.Second
	client.Logger = nil

	return &HTTPFeedClient{
		apiURL:     apiURL,
		apiKey:     apiKey,
		httpClient: client,
	}
}

// Формат ответа агрегатора
type feedResponse struct {
	Error   int    `json:"error"`
	Message string `json:"message"`
	Data    struct {
		Records []feedRecord `json:"records"`
	} `json:"data"`
}

type feedRecord struct {
	Amount      int64  `json:"amount"`
	Description string `json:"description"`
}

// RecentTransactions получает последние транзакции по счету магазина
func (c *HTTPFeedClient) RecentTransactions(ctx context.Context) ([]domain.BankTransaction, error) {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, c.apiURL, nil)
	if err != nil {
		return nil, fmt.Errorf("feed client: failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Apikey "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("feed client: failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("feed client: unexpected status code: %d", resp.StatusCode)
	}

	var feedResp feedResponse
	if err := json.NewDecoder(resp.Body).Decode(&feedResp); err != nil {
		return nil, fmt.Errorf("feed client: failed to decode response: %w", err)
	}

	if feedResp.Error != 0 {
		return nil, fmt.Errorf("feed client: aggregator error %d: %s", feedResp.Error, feedResp.Message)
	}

	transactions := make([]domain.BankTransaction, 0, len(feedResp.Data.Records))
	for _, record := range feedResp.Data.Records {
		transactions = append(transactions, domain.BankTransaction{
			Amount: record.Amount,
			Memo:   record.Description,
		})
	}

	return transactions, nil
}
