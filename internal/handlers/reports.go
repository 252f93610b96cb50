package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/avc/accshop/internal/domain"
	"go.uber.org/zap"
)

// ReportsService определяет методы отчетов по продажам.
type ReportsService interface {
	SalesHistory(ctx context.Context) ([]*domain.PaidOrder, error)
	TotalRevenue(ctx context.Context) (int64, error)
}

type ReportsHandler struct {
	reports ReportsService
	logger  *zap.Logger
}

func NewReportsHandler(reports ReportsService, logger *zap.Logger) *ReportsHandler {
	return &ReportsHandler{
		reports: reports,
		logger:  logger,
	}
}

func (h *ReportsHandler) Sales(w http.ResponseWriter, r *http.Request) {
	orders, err := h.reports.SalesHistory(r.Context())
	if err != nil {
		h.logger.Error("failed to get sales history", zap.Error(err))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	if orders == nil {
		orders = []*domain.PaidOrder{}
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(orders); err != nil {
		h.logger.Error("failed to encode sales history", zap.Error(err))
	}
}

type revenueResponse struct {
	Total int64 `json:"total"`
}

func (h *ReportsHandler) Revenue(w http.ResponseWriter, r *http.Request) {
	total, err := h.reports.TotalRevenue(r.Context())
	if err != nil {
		h.logger.Error("failed to calculate revenue", zap.Error(err))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(revenueResponse{Total: total}); err != nil {
		h.logger.Error("failed to encode revenue", zap.Error(err))
	}
}
