package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/avc/accshop/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// CouponRepository реализует domain.CouponRepository
type CouponRepository struct {
	db DBTX
}

// NewCouponRepository создает новый CouponRepository
func NewCouponRepository(db DBTX) *CouponRepository {
	return &CouponRepository{db: db}
}

// CreateCoupon создает новый купон
func (r *CouponRepository) CreateCoupon(ctx context.Context, coupon *domain.Coupon) error {
	err := r.db.QueryRow(ctx,
		`INSERT INTO coupons (code, discount_pct, uses_left, expires_at)
		 VALUES ($1, $2, $3, $4)
		 RETURNING created_at`,
		coupon.Code, coupon.DiscountPct, coupon.UsesLeft, coupon.ExpiresAt,
	).Scan(&coupon.CreatedAt)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return domain.ErrCouponExists
		}
		return fmt.Errorf("repository: failed to create coupon %q: %w", coupon.Code, err)
	}

	return nil
}

// GetCouponByCode получает купон по коду
func (r *CouponRepository) GetCouponByCode(ctx context.Context, code string) (*domain.Coupon, error) {
	coupon := &domain.Coupon{}

	err := r.db.QueryRow(ctx,
		`SELECT code, discount_pct, uses_left, expires_at, created_at
		 FROM coupons
		 WHERE code = $1`,
		code,
	).Scan(&coupon.Code, &coupon.DiscountPct, &coupon.UsesLeft, &coupon.ExpiresAt, &coupon.CreatedAt)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrCouponNotFound
		}
		return nil, fmt.Errorf("repository: failed to get coupon %q: %w", code, err)
	}

	return coupon, nil
}

// DecrementUses списывает одно применение купона.
// Купоны с uses_left IS NULL (безлимитные) не изменяются, но условие
// в WHERE для них выполняется, поэтому вызов завершается успешно.
func (r *CouponRepository) DecrementUses(ctx context.Context, code string) error {
	result, err := r.db.Exec(ctx,
		`UPDATE coupons
		 SET uses_left = CASE WHEN uses_left IS NULL THEN NULL ELSE uses_left - 1 END
		 WHERE code = $1 AND (uses_left IS NULL OR uses_left > 0)`,
		code,
	)

	if err != nil {
		return fmt.Errorf("repository: failed to decrement uses of coupon %q: %w", code, err)
	}

	if result.RowsAffected() == 0 {
		return domain.ErrCouponExhausted
	}

	return nil
}

// ListCoupons получает все купоны
func (r *CouponRepository) ListCoupons(ctx context.Context) ([]*domain.Coupon, error) {
	rows, err := r.db.Query(ctx,
		`SELECT code, discount_pct, uses_left, expires_at, created_at
		 FROM coupons
		 ORDER BY created_at DESC`,
	)

	if err != nil {
		return nil, fmt.Errorf("repository: failed to list coupons: %w", err)
	}
	defer rows.Close()

	var coupons []*domain.Coupon
	for rows.Next() {
		coupon := &domain.Coupon{}
		err := rows.Scan(&coupon.Code, &coupon.DiscountPct, &coupon.UsesLeft, &coupon.ExpiresAt, &coupon.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("repository: failed to scan coupon: %w", err)
		}
		coupons = append(coupons, coupon)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repository: error iterating coupons: %w", err)
	}

	return coupons, nil
}
