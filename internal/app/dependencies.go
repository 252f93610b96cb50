package app

import (
	"fmt"

	"github.com/avc/accshop/internal/bot"
	"github.com/avc/accshop/internal/config"
	"github.com/avc/accshop/internal/domain"
	"github.com/avc/accshop/internal/handlers"
	"github.com/avc/accshop/internal/repository/postgres"
	"github.com/avc/accshop/internal/service"
	"github.com/avc/accshop/internal/utils/jwt"
	"github.com/avc/accshop/internal/utils/password"
	"github.com/avc/accshop/internal/utils/vault"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// repositories содержит все репозитории приложения
type repositories struct {
	accounts domain.AccountRepository
	orders   domain.OrderRepository
	coupons  domain.CouponRepository
	admins   domain.AdminRepository
}

// services содержит все сервисы приложения
type services struct {
	auth     *service.AuthService
	catalog  *service.Catalog
	coupons  *service.CouponAdmin
	reports  *service.Reports
	checkout *service.Checkout
}

// handlerSet содержит все хендлеры приложения
type handlerSet struct {
	auth     *handlers.AuthHandler
	accounts *handlers.AccountsHandler
	coupons  *handlers.CouponsHandler
	reports  *handlers.ReportsHandler
	health   *handlers.HealthHandler
}

// dependencies содержит все зависимости приложения
type dependencies struct {
	repos      *repositories
	services   *services
	handlers   *handlerSet
	jwtManager *jwt.Manager
	bot        *bot.Bot
}

// initDependencies создает все зависимости приложения
func initDependencies(cfg *config.Config, dbPool *pgxpool.Pool, api *tgbotapi.BotAPI, logger *zap.Logger) (*dependencies, error) {
	// Создание репозиториев
	repos := &repositories{
		accounts: postgres.NewAccountRepository(dbPool),
		orders:   postgres.NewOrderRepository(dbPool),
		coupons:  postgres.NewCouponRepository(dbPool),
		admins:   postgres.NewAdminRepository(dbPool),
	}

	// Создание утилит
	credVault, err := vault.New(cfg.EncryptionKey)
	if err != nil {
		return nil, fmt.Errorf("failed to init vault: %w", err)
	}
	passwordHasher := password.NewBCryptHasher(password.DefaultCost)
	jwtManager := jwt.NewManager(cfg.JWTSecret, cfg.JWTTokenTTL)

	// Создание платежных клиентов
	feedClient := service.NewFeedClient(cfg.FeedAPIURL, cfg.FeedAPIKey)
	cardClient := service.NewCardClient(cfg.CardGatewayURL, cfg.CardPartnerID, cfg.CardPartnerKey)

	// Создание сервисов
	checkoutConfig := service.CheckoutConfig{
		PollInterval:    cfg.PollInterval,
		PaymentTimeout:  cfg.PaymentTimeout,
		OrderPrefix:     cfg.OrderPrefix,
		BankID:          cfg.BankID,
		BankAccountNo:   cfg.BankAccountNo,
		BankAccountName: cfg.BankAccountName,
	}
	messenger := bot.NewMessenger(api)
	svcs := &services{
		auth:    service.NewAuthService(repos.admins, passwordHasher, jwtManager, logger),
		catalog: service.NewCatalog(repos.accounts, credVault),
		coupons: service.NewCouponAdmin(repos.coupons),
		reports: service.NewReports(repos.orders, credVault, logger),
		checkout: service.NewCheckout(
			checkoutConfig,
			repos.accounts, repos.orders, repos.coupons,
			credVault, feedClient, cardClient, messenger, logger,
		),
	}

	// Создание handlers
	hdlrs := &handlerSet{
		auth:     handlers.NewAuthHandler(svcs.auth, logger),
		accounts: handlers.NewAccountsHandler(svcs.catalog, logger),
		coupons:  handlers.NewCouponsHandler(svcs.coupons, logger),
		reports:  handlers.NewReportsHandler(svcs.reports, logger),
		health:   handlers.NewHealthHandler(dbPool, logger),
	}

	// Создание бота
	tgBot := bot.New(api, svcs.checkout, svcs.catalog, svcs.reports, logger)

	return &dependencies{
		repos:      repos,
		services:   svcs,
		handlers:   hdlrs,
		jwtManager: jwtManager,
		bot:        tgBot,
	}, nil
}
