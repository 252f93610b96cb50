package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/avc/accshop/internal/domain"
)

// CouponAdmin реализует административные операции над купонами
type CouponAdmin struct {
	coupons domain.CouponRepository
}

// NewCouponAdmin создает новый CouponAdmin
func NewCouponAdmin(coupons domain.CouponRepository) *CouponAdmin {
	return &CouponAdmin{coupons: coupons}
}

// CreateCoupon создает купон. Код нормализуется к верхнему регистру.
func (s *CouponAdmin) CreateCoupon(ctx context.Context, input domain.CouponInput) (*domain.Coupon, error) {
	code := strings.ToUpper(strings.TrimSpace(input.Code))
	if code == "" || input.DiscountPct < 0 || input.DiscountPct > 100 {
		return nil, ErrInvalidInput
	}
	if input.UsesLeft != nil && *input.UsesLeft < 0 {
		return nil, ErrInvalidInput
	}

	coupon := &domain.Coupon{
		Code:        code,
		DiscountPct: input.DiscountPct,
		UsesLeft:    input.UsesLeft,
		ExpiresAt:   input.ExpiresAt,
	}

	if err := s.coupons.CreateCoupon(ctx, coupon); err != nil {
		// Не оборачиваем sentinel error
		if errors.Is(err, domain.ErrCouponExists) {
			return nil, err
		}
		return nil, fmt.Errorf("coupon admin: failed to create coupon %q: %w", code, err)
	}

	return coupon, nil
}

// ListCoupons возвращает все купоны
func (s *CouponAdmin) ListCoupons(ctx context.Context) ([]*domain.Coupon, error) {
	coupons, err := s.coupons.ListCoupons(ctx)
	if err != nil {
		return nil, fmt.Errorf("coupon admin: failed to list coupons: %w", err)
	}
	return coupons, nil
}
