package app

import (
	"github.com/avc/accshop/internal/handlers"
	"github.com/avc/accshop/internal/utils/jwt"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// setupRouter создает и настраивает роутер
func setupRouter(deps *dependencies, jwtManager *jwt.Manager, logger *zap.Logger) *chi.Mux {
	r := chi.NewRouter()

	// Глобальные middleware
	setupMiddleware(r, logger)

	// Маршруты
	setupRoutes(r, deps, jwtManager)

	return r
}

// setupMiddleware настраивает middleware для роутера
func setupMiddleware(r *chi.Mux, logger *zap.Logger) {
	r.Use(handlers.RequestIDMiddleware())
	r.Use(handlers.LoggingMiddleware(logger))
	r.Use(handlers.RecoveryMiddleware(logger))
	r.Use(middleware.Compress(5))
}

// setupRoutes настраивает маршруты приложения
func setupRoutes(r *chi.Mux, deps *dependencies, jwtManager *jwt.Manager) {
	// Health check эндпоинты
	r.Get("/health", deps.handlers.health.Health)
	r.Get("/ready", deps.handlers.health.Ready)

	// Публичные эндпоинты
	r.Post("/api/admin/login", deps.handlers.auth.Login)

	// Защищенные эндпоинты
	r.Group(func(r chi.Router) {
		r.Use(handlers.AuthMiddleware(jwtManager))
		r.Post("/api/accounts", deps.handlers.accounts.Create)
		r.Get("/api/accounts", deps.handlers.accounts.List)
		r.Delete("/api/accounts/{id}", deps.handlers.accounts.Delete)
		r.Post("/api/coupons", deps.handlers.coupons.Create)
		r.Get("/api/coupons", deps.handlers.coupons.List)
		r.Get("/api/reports/sales", deps.handlers.reports.Sales)
		r.Get("/api/reports/revenue", deps.handlers.reports.Revenue)
	})
}
