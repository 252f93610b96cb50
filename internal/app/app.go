package app

import (
	"context"
	"fmt"
	"net/http"

	"github.com/avc/accshop/internal/bot"
	"github.com/avc/accshop/internal/config"
	"github.com/avc/accshop/internal/service"
	"github.com/go-chi/chi/v5"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// App представляет приложение
type App struct {
	config   *config.Config
	logger   *zap.Logger
	db       *pgxpool.Pool
	router   *chi.Mux
	server   *http.Server
	bot      *bot.Bot
	checkout *service.Checkout
}

// NewApp создает новое приложение
func NewApp() (*App, error) {
	ctx := context.Background()

	// Загрузка конфигурации
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	// Инициализация логгера
	logger, err := initLogger(cfg.LogLevel)
	if err != nil {
		return nil, err
	}

	// Инициализация базы данных
	dbPool, err := initDatabase(ctx, cfg.DatabaseURI, logger)
	if err != nil {
		return nil, err
	}
	logger.Info("connected to database")

	// Подключение к Telegram
	api, err := tgbotapi.NewBotAPI(cfg.TelegramToken)
	if err != nil {
		dbPool.Close()
		return nil, fmt.Errorf("failed to init telegram bot: %w", err)
	}
	logger.Info("connected to telegram", zap.String("username", api.Self.UserName))

	// Инициализация зависимостей
	deps, err := initDependencies(cfg, dbPool, api, logger)
	if err != nil {
		dbPool.Close()
		return nil, err
	}

	// Стартовая учетная запись администратора
	if cfg.AdminLogin != "" && cfg.AdminPassword != "" {
		if err := deps.services.auth.EnsureAdmin(ctx, cfg.AdminLogin, cfg.AdminPassword); err != nil {
			dbPool.Close()
			return nil, fmt.Errorf("failed to ensure admin account: %w", err)
		}
	}

	// Настройка роутера
	router := setupRouter(deps, deps.jwtManager, logger)

	// Создание HTTP сервера
	server := createServer(cfg.RunAddress, router)

	return &App{
		config:   cfg,
		logger:   logger,
		db:       dbPool,
		router:   router,
		server:   server,
		bot:      deps.bot,
		checkout: deps.services.checkout,
	}, nil
}

// Run запускает приложение
func (a *App) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Запуск бота
	go a.bot.Run(ctx)

	// Запуск HTTP сервера и ожидание сигнала завершения
	if err := a.runServer(ctx); err != nil {
		return err
	}

	// Graceful shutdown
	a.shutdown(cancel)

	return nil
}
