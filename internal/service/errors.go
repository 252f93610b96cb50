package service

import (
	"errors"
	"fmt"
)

// Ошибки оформления заказа
var (
	ErrItemUnavailable     = errors.New("item is not available")
	ErrSessionActive       = errors.New("buyer already has a pending payment session")
	ErrDMUnreachable       = errors.New("unable to deliver direct message to buyer")
	ErrGatewayUnconfigured = errors.New("payment gateway is not configured")
)

// Ошибки купонов
var (
	ErrCouponInvalid   = errors.New("coupon does not exist")
	ErrCouponExpired   = errors.New("coupon is expired")
	ErrCouponExhausted = errors.New("coupon has no uses left")
)

// Ошибки валидации и аутентификации
var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// CardDeclinedError представляет отказ платежного шлюза в гашении карты
type CardDeclinedError struct {
	Status  int
	Message string
}

func (e *CardDeclinedError) Error() string {
	return fmt.Sprintf("card charge declined: status %d: %s", e.Status, e.Message)
}
