// Package config загружает конфигурацию приложения из переменных окружения.
// Используется envconfig для маппинга переменных окружения на поля структуры.
package config

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

// Config содержит ВСЕ настройки приложения.
type Config struct {
	// --- Telegram ---
	TelegramBotToken string `envconfig:"TELEGRAM_BOT_TOKEN" required:"true"`
	// URL мини-приложения (кнопка «Открыть приложение» в боте)
	MiniAppURL string `envconfig:"MINI_APP_URL" default:"https://monetkalife.poehali.dev/"`
	// Публичный URL, на который Telegram шлёт апдейты (?path=telegram_webhook)
	WebhookURL string `envconfig:"WEBHOOK_URL" default:""`

	// --- HTTP ---
	HTTPPort int `envconfig:"HTTP_PORT" default:"8080"`

	// --- Database ---
	// В Docker внутри контейнера "localhost" почти всегда неправильно.
	// Дефолт ставим "postgres" (имя сервиса в docker-compose), а для локалки переопределяй DB_HOST=localhost.
	DBHost     string `envconfig:"DB_HOST" default:"postgres"`
	DBPort     int    `envconfig:"DB_PORT" default:"5432"`
	DBUser     string `envconfig:"DB_USER" default:"investbot"`
	DBPassword string `envconfig:"DB_PASSWORD" required:"true"`
	DBName     string `envconfig:"DB_NAME" default:"invest_miniapp"`
	DBSSLMode  string `envconfig:"DB_SSLMODE" default:"disable"`
	DBMaxConns int32  `envconfig:"DB_MAX_CONNS" default:"25"`
	DBMinConns int32  `envconfig:"DB_MIN_CONNS" default:"5"`

	// --- Application ---
	AppEnv      string `envconfig:"APP_ENV" default:"development"`
	AppLogLevel string `envconfig:"APP_LOG_LEVEL" default:"debug"`
	AppTimezone string `envconfig:"APP_TIMEZONE" default:"Europe/Moscow"`

	// --- Invest ---
	// Дневная ставка доходности. 0.01 = 1% в день (основной вариант),
	// 0.03 — вариант «3% в день». Ставка общая для всех инвестиций.
	InvestDailyRate float64 `envconfig:"INVEST_DAILY_RATE" default:"0.01"`
	// Минимальная сумма инвестиции в рублях
	InvestMinAmount float64 `envconfig:"INVEST_MIN_AMOUNT" default:"100"`
	// Стартовый баланс нового пользователя
	StartingBalance float64 `envconfig:"STARTING_BALANCE" default:"0"`

	// --- Feature Flags ---
	FeatureRocketEnabled bool `envconfig:"FEATURE_ROCKET_ENABLED" default:"true"`
	FeatureBoostEnabled  bool `envconfig:"FEATURE_BOOST_ENABLED" default:"true"`
}

// DatabaseDSN возвращает строку подключения к PostgreSQL в формате DSN.
func (c *Config) DatabaseDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName, c.DBSSLMode,
	)
}

// Validate проверяет согласованность настроек.
func (c *Config) Validate() error {
	if c.HTTPPort <= 0 || c.HTTPPort > 65535 {
		return fmt.Errorf("некорректный HTTP_PORT: %d", c.HTTPPort)
	}
	if c.InvestDailyRate <= 0 {
		return fmt.Errorf("INVEST_DAILY_RATE должен быть > 0")
	}
	if c.InvestMinAmount < 0 {
		return fmt.Errorf("INVEST_MIN_AMOUNT не может быть отрицательным")
	}
	if c.StartingBalance < 0 {
		return fmt.Errorf("STARTING_BALANCE не может быть отрицательным")
	}
	if c.DBMaxConns <= 0 || c.DBMinConns < 0 || c.DBMinConns > c.DBMaxConns {
		return fmt.Errorf("некорректные DB_MIN_CONNS/DB_MAX_CONNS")
	}
	return nil
}

// Load читает переменные окружения и заполняет структуру Config.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("не удалось загрузить конфигурацию: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
