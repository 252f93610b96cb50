package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/avc/accshop/internal/domain"
	"github.com/avc/accshop/internal/service"
	"go.uber.org/zap"
)

// CouponService определяет административные методы работы с купонами.
type CouponService interface {
	CreateCoupon(ctx context.Context, input domain.CouponInput) (*domain.Coupon, error)
	ListCoupons(ctx context.Context) ([]*domain.Coupon, error)
}

type CouponsHandler struct {
	coupons CouponService
	logger  *zap.Logger
}

func NewCouponsHandler(coupons CouponService, logger *zap.Logger) *CouponsHandler {
	return &CouponsHandler{
		coupons: coupons,
		logger:  logger,
	}
}

func (h *CouponsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input domain.CouponInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	coupon, err := h.coupons.CreateCoupon(r.Context(), input)
	if err != nil {
		if errors.Is(err, service.ErrInvalidInput) {
			http.Error(w, "Bad Request", http.StatusBadRequest)
			return
		}
		if errors.Is(err, domain.ErrCouponExists) {
			http.Error(w, "Conflict", http.StatusConflict)
			return
		}
		h.logger.Error("failed to create coupon", zap.Error(err))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(coupon); err != nil {
		h.logger.Error("failed to encode coupon", zap.Error(err))
	}
}

func (h *CouponsHandler) List(w http.ResponseWriter, r *http.Request) {
	coupons, err := h.coupons.ListCoupons(r.Context())
	if err != nil {
		h.logger.Error("failed to list coupons", zap.Error(err))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	if coupons == nil {
		coupons = []*domain.Coupon{}
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(coupons); err != nil {
		h.logger.Error("failed to encode coupons", zap.Error(err))
	}
}
