package service

import (
	"context"
	"testing"
	"time"

	"github.com/avc/accshop/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCouponAdmin_CreateCoupon(t *testing.T) {
	ctx := context.Background()

	t.Run("Success with normalized code", func(t *testing.T) {
		admin := NewCouponAdmin(newFakeCouponRepo())
		uses := int32(5)
		expires := time.Now().Add(24 * time.Hour)

		coupon, err := admin.CreateCoupon(ctx, domain.CouponInput{
			Code:        "  sale10 ",
			DiscountPct: 10,
			UsesLeft:    &uses,
			ExpiresAt:   &expires,
		})
		require.NoError(t, err)
		assert.Equal(t, "SALE10", coupon.Code)
		assert.Equal(t, 10, coupon.DiscountPct)
		require.NotNil(t, coupon.UsesLeft)
		assert.Equal(t, int32(5), *coupon.UsesLeft)
	})

	t.Run("Unlimited coupon", func(t *testing.T) {
		admin := NewCouponAdmin(newFakeCouponRepo())

		coupon, err := admin.CreateCoupon(ctx, domain.CouponInput{Code: "FOREVER", DiscountPct: 50})
		require.NoError(t, err)
		assert.Nil(t, coupon.UsesLeft)
		assert.Nil(t, coupon.ExpiresAt)
	})

	t.Run("Invalid input", func(t *testing.T) {
		admin := NewCouponAdmin(newFakeCouponRepo())
		negative := int32(-1)

		tests := []domain.CouponInput{
			{Code: "", DiscountPct: 10},
			{Code: "X", DiscountPct: -1},
			{Code: "X", DiscountPct: 101},
			{Code: "X", DiscountPct: 10, UsesLeft: &negative},
		}
		for _, input := range tests {
			_, err := admin.CreateCoupon(ctx, input)
			assert.ErrorIs(t, err, ErrInvalidInput)
		}
	})

	t.Run("Duplicate code", func(t *testing.T) {
		admin := NewCouponAdmin(newFakeCouponRepo())

		_, err := admin.CreateCoupon(ctx, domain.CouponInput{Code: "SALE10", DiscountPct: 10})
		require.NoError(t, err)

		_, err = admin.CreateCoupon(ctx, domain.CouponInput{Code: "sale10", DiscountPct: 20})
		assert.ErrorIs(t, err, domain.ErrCouponExists)
	})
}
