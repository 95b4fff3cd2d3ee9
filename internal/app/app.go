// Package app инициализирует все компоненты приложения.
// app.go — точка сборки: создаёт БД-пул, репозитории, сервисы, HTTP-обработчик,
// бота и планировщик, и собирает всё в один объект App.
package app

import (
	"context"
	"fmt"
	"net/http"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"

	"mlwizard.ru/investment-bot/internal/api"
	"mlwizard.ru/investment-bot/internal/bot"
	"mlwizard.ru/investment-bot/internal/config"
	"mlwizard.ru/investment-bot/internal/db/postgres"
	"mlwizard.ru/investment-bot/internal/features/boost"
	"mlwizard.ru/investment-bot/internal/features/invest"
	"mlwizard.ru/investment-bot/internal/features/rocket"
	"mlwizard.ru/investment-bot/internal/features/users"
	"mlwizard.ru/investment-bot/internal/jobs"
)

// App содержит все компоненты приложения.
type App struct {
	Server    *http.Server
	Bot       *bot.Bot
	Scheduler *jobs.Scheduler
	DB        *pgxpool.Pool
	BotAPI    *tgbotapi.BotAPI
}

// New создаёт и инициализирует приложение.
// Порядок инициализации важен — компоненты зависят друг от друга.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	// === 1. База данных ===
	pool, err := postgres.NewPool(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("ошибка подключения к БД: %w", err)
	}

	// Запускаем миграции
	if err := runMigrations(ctx, pool); err != nil {
		return nil, fmt.Errorf("ошибка миграций: %w", err)
	}

	// === 2. Telegram Bot API ===
	botAPI, err := tgbotapi.NewBotAPI(cfg.TelegramBotToken)
	if err != nil {
		return nil, fmt.Errorf("ошибка создания Telegram API: %w", err)
	}
	botAPI.Debug = cfg.AppEnv == "development"
	log.Infof("Авторизован как @%s", botAPI.Self.UserName)

	// === 3. Репозитории ===
	userRepo := users.NewRepository(pool)
	investRepo := invest.NewRepository(pool)
	rocketRepo := rocket.NewRepository(pool)
	boostRepo := boost.NewRepository(pool)

	// === 4. Сервисы ===
	userService := users.NewService(userRepo, cfg)
	investService := invest.NewService(investRepo, cfg)
	rocketService := rocket.NewService(rocketRepo, cfg)
	boostService := boost.NewService(boostRepo, cfg)

	// === 5. Бот ===
	b := bot.New(botAPI, cfg, userService)

	// === 6. HTTP API ===
	handler := api.NewHandler(userService, investService, rocketService, boostService, b)
	server := api.NewServer(cfg.HTTPPort, api.NewRouter(handler))

	// === 7. Планировщик задач ===
	scheduler := jobs.NewScheduler(investService, b.SendMessage)

	return &App{
		Server:    server,
		Bot:       b,
		Scheduler: scheduler,
		DB:        pool,
		BotAPI:    botAPI,
	}, nil
}

// runMigrations выполняет все SQL-миграции.
func runMigrations(ctx context.Context, pool *pgxpool.Pool) error {
	// Инициализируем систему миграций
	if err := postgres.InitMigrations(ctx, pool); err != nil {
		return err
	}

	// Выполняем миграции по порядку
	migrations := []struct {
		version int
		sql     string
	}{
		{1, migration001Users},
		{2, migration002Investments},
		{3, migration003Transactions},
		{4, migration004RocketGames},
		{5, migration005BoostOrders},
	}

	for _, m := range migrations {
		if err := postgres.ExecMigrationSQL(ctx, pool, m.version, m.sql); err != nil {
			return fmt.Errorf("миграция %d: %w", m.version, err)
		}
		log.Infof("Миграция %d применена", m.version)
	}

	return nil
}

// SQL-миграции встроены в код для упрощения деплоя.

var migration001Users = `
CREATE TABLE IF NOT EXISTS telegram_users (
    id BIGSERIAL PRIMARY KEY,
    user_id BIGINT UNIQUE NOT NULL,
    username VARCHAR(255),
    balance NUMERIC(15,2) DEFAULT 0,
    withdraw_balance NUMERIC(15,2) DEFAULT 0,
    partners_count INTEGER DEFAULT 0,
    referral_code VARCHAR(32) UNIQUE,
    created_at TIMESTAMP DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_telegram_users_user_id ON telegram_users(user_id);
CREATE INDEX IF NOT EXISTS idx_telegram_users_referral_code ON telegram_users(referral_code);
`

var migration002Investments = `
CREATE TABLE IF NOT EXISTS investments (
    id BIGSERIAL PRIMARY KEY,
    user_id BIGINT NOT NULL REFERENCES telegram_users(user_id),
    amount NUMERIC(15,2) NOT NULL,
    accumulated NUMERIC(15,2) DEFAULT 0,
    is_active BOOLEAN DEFAULT TRUE,
    last_collect TIMESTAMP DEFAULT NOW(),
    start_date TIMESTAMP DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_investments_user_id ON investments(user_id);
CREATE INDEX IF NOT EXISTS idx_investments_active ON investments(user_id, is_active);
`

var migration003Transactions = `
CREATE TABLE IF NOT EXISTS transactions (
    id BIGSERIAL PRIMARY KEY,
    user_id BIGINT NOT NULL REFERENCES telegram_users(user_id),
    type VARCHAR(50) NOT NULL,
    amount NUMERIC(15,2) NOT NULL,
    status VARCHAR(32) DEFAULT 'completed',
    created_at TIMESTAMP DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_transactions_user_id ON transactions(user_id);
CREATE INDEX IF NOT EXISTS idx_transactions_created_at ON transactions(created_at DESC);
`

var migration004RocketGames = `
CREATE TABLE IF NOT EXISTS rocket_games (
    id BIGSERIAL PRIMARY KEY,
    user_id BIGINT NOT NULL REFERENCES telegram_users(user_id),
    bet_amount NUMERIC(15,2) NOT NULL,
    multiplier NUMERIC(8,2) NOT NULL,
    crash_point NUMERIC(8,2) NOT NULL,
    profit NUMERIC(15,2) NOT NULL,
    won BOOLEAN NOT NULL,
    created_at TIMESTAMP DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_rocket_games_user_id ON rocket_games(user_id);
CREATE INDEX IF NOT EXISTS idx_rocket_games_created_at ON rocket_games(created_at DESC);
`

var migration005BoostOrders = `
CREATE TABLE IF NOT EXISTS boost_orders (
    id BIGSERIAL PRIMARY KEY,
    user_id BIGINT NOT NULL REFERENCES telegram_users(user_id),
    boost_type VARCHAR(50) NOT NULL,
    amount NUMERIC(15,2) NOT NULL,
    status VARCHAR(32) DEFAULT 'pending',
    created_at TIMESTAMP DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_boost_orders_user_id ON boost_orders(user_id);
`
