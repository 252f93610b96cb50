package config

import (
	"flag"
	"fmt"
	"os"
	"time"
)

// Config содержит конфигурацию приложения
type Config struct {
	RunAddress    string // Адрес и порт админского HTTP API
	DatabaseURI   string // URI подключения к БД
	TelegramToken string // Токен Telegram-бота
	EncryptionKey string // Ключ шифрования учетных данных (ровно 32 байта)
	LogLevel      string // Уровень логирования

	JWTSecret   string        // Секретный ключ для JWT
	JWTTokenTTL time.Duration // Время жизни JWT токена

	// Стартовая учетная запись администратора (опционально)
	AdminLogin    string
	AdminPassword string

	// Банковские реквизиты для QR. Без них банковский путь оплаты
	// отвечает ошибкой конфигурации, но приложение стартует.
	BankID          string
	BankAccountNo   string
	BankAccountName string

	// Лента транзакций банковского агрегатора
	FeedAPIURL string
	FeedAPIKey string

	// Шлюз карт пополнения
	CardGatewayURL string
	CardPartnerID  string
	CardPartnerKey string

	// Параметры сессии оплаты
	PollInterval   time.Duration // Интервал опроса ленты транзакций
	PaymentTimeout time.Duration // Время на оплату банковским переводом
	OrderPrefix    string        // Префикс идентификаторов заказов
}

// Load загружает конфигурацию из переменных окружения и флагов.
// Приоритет: env переменные > флаги > дефолтные значения.
func Load() (*Config, error) {
	cfg := &Config{
		LogLevel:       "info",
		JWTTokenTTL:    24 * time.Hour,
		FeedAPIURL:     "https://oauth.casso.vn/v2/transactions",
		CardGatewayURL: "https://thesieure.com/chargingws/v2",
		PollInterval:   15 * time.Second,
		PaymentTimeout: 10 * time.Minute,
		OrderPrefix:    "SHOP",
	}

	flag.StringVar(&cfg.RunAddress, "a", ":8080", "address and port of admin API")
	flag.StringVar(&cfg.DatabaseURI, "d", "", "database URI")
	flag.Parse()

	// Переменные окружения имеют приоритет над флагами
	for env, target := range map[string]*string{
		"RUN_ADDRESS":       &cfg.RunAddress,
		"DATABASE_URI":      &cfg.DatabaseURI,
		"TELEGRAM_TOKEN":    &cfg.TelegramToken,
		"ENCRYPTION_KEY":    &cfg.EncryptionKey,
		"LOG_LEVEL":         &cfg.LogLevel,
		"ADMIN_LOGIN":       &cfg.AdminLogin,
		"ADMIN_PASSWORD":    &cfg.AdminPassword,
		"BANK_ID":           &cfg.BankID,
		"BANK_ACCOUNT_NO":   &cfg.BankAccountNo,
		"BANK_ACCOUNT_NAME": &cfg.BankAccountName,
		"FEED_API_URL":      &cfg.FeedAPIURL,
		"FEED_API_KEY":      &cfg.FeedAPIKey,
		"CARD_GATEWAY_URL":  &cfg.CardGatewayURL,
		"CARD_PARTNER_ID":   &cfg.CardPartnerID,
		"CARD_PARTNER_KEY":  &cfg.CardPartnerKey,
		"ORDER_PREFIX":      &cfg.OrderPrefix,
	} {
		if value, ok := os.LookupEnv(env); ok {
			*target = value
		}
	}

	// JWT секрет только из env, не из флагов
	if secret, ok := os.LookupEnv("JWT_SECRET"); ok {
		cfg.JWTSecret = secret
	} else {
		cfg.JWTSecret = "default-secret-key-change-in-production"
	}

	if interval, ok := os.LookupEnv("POLL_INTERVAL"); ok {
		if parsed, err := time.ParseDuration(interval); err == nil && parsed > 0 {
			cfg.PollInterval = parsed
		}
	}
	if timeout, ok := os.LookupEnv("PAYMENT_TIMEOUT"); ok {
		if parsed, err := time.ParseDuration(timeout); err == nil && parsed > 0 {
			cfg.PaymentTimeout = parsed
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// validate проверяет обязательные параметры
func (c *Config) validate() error {
	if c.DatabaseURI == "" {
		return fmt.Errorf("database URI is required (use -d flag or DATABASE_URI env)")
	}
	if c.TelegramToken == "" {
		return fmt.Errorf("telegram token is required (use TELEGRAM_TOKEN env)")
	}
	if len(c.EncryptionKey) != 32 {
		return fmt.Errorf("encryption key must be exactly 32 bytes (use ENCRYPTION_KEY env), got %d", len(c.EncryptionKey))
	}
	return nil
}
