package domain

import (
	"context"
	"time"
)

// AccountRepository определяет методы для работы со складом аккаунтов
type AccountRepository interface {
	CreateAccount(ctx context.Context, account *Account) error
	GetAccountByID(ctx context.Context, id int64) (*Account, error)
	// ListAvailable возвращает доступные к продаже аккаунты.
	// Пустая категория означает все категории.
	ListAvailable(ctx context.Context, category string) ([]*Account, error)
	// MarkSold атомарно переводит аккаунт из available в sold.
	// Возвращает ErrAccountUnavailable, если аккаунт уже продан или удален.
	MarkSold(ctx context.Context, id int64) error
	DeleteAccount(ctx context.Context, id int64) error
}

// OrderRepository определяет методы для работы с журналом заказов
type OrderRepository interface {
	CreateOrder(ctx context.Context, order *Order) error
	// SetOrderStatus переводит pending-заказ в новый статус.
	// Терминальные заказы не изменяются: для них вернется ErrOrderNotFound.
	SetOrderStatus(ctx context.Context, orderID string, status OrderStatus) error
	ListPaidOrders(ctx context.Context) ([]*PaidOrder, error)
	TotalRevenue(ctx context.Context) (int64, error)
	GetPurchaseHistory(ctx context.Context, buyerID int64) ([]*Purchase, error)
}

// CouponRepository определяет методы для работы с купонами
type CouponRepository interface {
	CreateCoupon(ctx context.Context, coupon *Coupon) error
	GetCouponByCode(ctx context.Context, code string) (*Coupon, error)
	// DecrementUses списывает одно применение купона. Для купонов без
	// лимита выполняется как no-op. Возвращает ErrCouponExhausted,
	// если применений не осталось.
	DecrementUses(ctx context.Context, code string) error
	ListCoupons(ctx context.Context) ([]*Coupon, error)
}

// AdminRepository определяет методы для работы с администраторами
type AdminRepository interface {
	CreateAdmin(ctx context.Context, login, passwordHash string) (*Admin, error)
	GetAdminByLogin(ctx context.Context, login string) (*Admin, error)
}

// CouponInput описывает параметры создания купона
type CouponInput struct {
	Code        string     `json:"code"`
	DiscountPct int        `json:"discount_pct"`
	UsesLeft    *int32     `json:"uses_left,omitempty"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
}
