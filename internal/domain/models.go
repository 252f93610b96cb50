package domain

import "time"

// AccountStatus представляет статус товара (аккаунта) на витрине
type AccountStatus string

const (
	AccountStatusAvailable AccountStatus = "available"
	AccountStatusSold      AccountStatus = "sold"
)

// OrderStatus представляет статус заказа
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusPaid      OrderStatus = "paid"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// PaymentMethod представляет способ оплаты заказа
type PaymentMethod string

const (
	PaymentMethodBank   PaymentMethod = "bank"
	PaymentMethodCard   PaymentMethod = "card"
	PaymentMethodCoupon PaymentMethod = "coupon"
)

// Account представляет продаваемый аккаунт.
// Учетные данные хранятся только в зашифрованном виде.
type Account struct {
	ID          int64         `json:"id"`
	Name        string        `json:"name"`
	Price       int64         `json:"price"` // в VND, целое число
	Description string        `json:"description"`
	ImageURLs   []string      `json:"image_urls"`
	Category    string        `json:"category"`
	UsernameEnc string        `json:"-"`
	PasswordEnc string        `json:"-"`
	Status      AccountStatus `json:"status"`
	AddedAt     time.Time     `json:"added_at"`
}

// Order представляет заказ покупателя.
// ID генерируется при создании и содержит метку времени.
// После перехода в терминальный статус (paid/cancelled) заказ не изменяется.
type Order struct {
	ID         string        `json:"id"`
	BuyerID    int64         `json:"buyer_id"`
	AccountID  int64         `json:"account_id"`
	Amount     int64         `json:"amount"` // сумма к оплате с учетом скидки
	Status     OrderStatus   `json:"status"`
	Method     PaymentMethod `json:"payment_method"`
	CouponCode *string       `json:"coupon_code,omitempty"`
	CreatedAt  time.Time     `json:"created_at"`
}

// PaidOrder представляет оплаченный заказ для истории продаж.
// AccountName пустой, если аккаунт к этому моменту удален.
type PaidOrder struct {
	Order
	AccountName string `json:"account_name"`
}

// Purchase представляет купленный аккаунт в истории покупок пользователя
type Purchase struct {
	AccountName string
	UsernameEnc string
	PasswordEnc string
	CreatedAt   time.Time
}

// Coupon представляет скидочный купон.
// UsesLeft == nil означает неограниченное число применений.
type Coupon struct {
	Code        string     `json:"code"`
	DiscountPct int        `json:"discount_pct"` // 0..100, 100 — бесплатно
	UsesLeft    *int32     `json:"uses_left,omitempty"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// Expired сообщает, истек ли срок действия купона
func (c *Coupon) Expired(now time.Time) bool {
	return c.ExpiresAt != nil && now.After(*c.ExpiresAt)
}

// Exhausted сообщает, исчерпан ли лимит применений купона
func (c *Coupon) Exhausted() bool {
	return c.UsesLeft != nil && *c.UsesLeft <= 0
}

// BankTransaction представляет транзакцию из банковского агрегатора
type BankTransaction struct {
	Amount int64
	Memo   string
}

// Credentials представляет расшифрованные учетные данные аккаунта
type Credentials struct {
	Username string
	Password string
}

// Admin представляет администратора магазина
type Admin struct {
	ID           int64     `json:"id"`
	Login        string    `json:"login"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}
