package domain

import "errors"

// Ошибки аккаунтов (товаров)
var (
	ErrAccountNotFound    = errors.New("account not found")
	ErrAccountUnavailable = errors.New("account is not available for sale")
)

// Ошибки заказов
var (
	ErrOrderNotFound = errors.New("order not found or already finalized")
)

// Ошибки купонов
var (
	ErrCouponNotFound  = errors.New("coupon not found")
	ErrCouponExists    = errors.New("coupon already exists")
	ErrCouponExhausted = errors.New("coupon has no uses left")
)

// Ошибки администраторов
var (
	ErrAdminExists        = errors.New("admin already exists")
	ErrAdminNotFound      = errors.New("admin not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
)
