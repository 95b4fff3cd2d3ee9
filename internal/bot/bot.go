// Package bot — ретрансляция сообщений Telegram Bot API.
// Апдейты приходят не long polling'ом, а вебхуком через HTTP-обработчик
// (?path=telegram_webhook); здесь — разбор апдейта, приветствие со ссылкой
// на мини-приложение и отправка уведомлений пользователям.
package bot

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	log "github.com/sirupsen/logrus"

	"mlwizard.ru/investment-bot/internal/config"
	"mlwizard.ru/investment-bot/internal/features/users"
)

// Bot обрабатывает апдейты Telegram и шлёт сообщения пользователям.
type Bot struct {
	api         *tgbotapi.BotAPI
	cfg         *config.Config
	userService *users.Service
}

// New создаёт бота поверх уже авторизованного API-клиента.
func New(api *tgbotapi.BotAPI, cfg *config.Config, userService *users.Service) *Bot {
	return &Bot{api: api, cfg: cfg, userService: userService}
}

// HandleUpdate обрабатывает один апдейт, пришедший вебхуком.
// Ошибки отправки логируются, но не прерывают обработку запроса:
// Telegram повторит апдейт сам, если ответить не-200.
func (b *Bot) HandleUpdate(ctx context.Context, update *tgbotapi.Update) {
	switch {
	case update.Message != nil:
		b.handleMessage(ctx, update.Message)
	case update.CallbackQuery != nil:
		b.handleCallback(ctx, update.CallbackQuery)
	}
}

// handleMessage регистрирует пользователя при первом контакте
// и отвечает на /start приветствием с кнопкой мини-приложения.
func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	if msg.From == nil {
		return
	}

	if _, err := b.userService.FetchOrCreate(ctx, msg.From.ID, msg.From.UserName); err != nil {
		log.WithError(err).Error("Ошибка регистрации пользователя из бота")
	}

	if msg.Text != "/start" {
		return
	}

	firstName := msg.From.FirstName
	if firstName == "" {
		firstName = "друг"
	}

	welcome := fmt.Sprintf(`👋 <b>Привет, %s!</b>

💰 <b>MLWizard Investment</b> - Ваш путь к пассивному доходу!

📈 Получайте <b>%.0f%% в день</b> от суммы инвестиций
🔄 Ежедневное начисление прибыли
💎 Вывод средств в любое время
👥 Партнёрская программа

🎯 Нажми кнопку ниже, чтобы начать зарабатывать!`, firstName, b.cfg.InvestDailyRate*100)

	keyboard := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonURL("💰 Открыть приложение", b.cfg.MiniAppURL),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📊 Как это работает?", "how_it_works"),
		),
	)

	reply := tgbotapi.NewMessage(msg.Chat.ID, welcome)
	reply.ParseMode = tgbotapi.ModeHTML
	reply.ReplyMarkup = keyboard
	if _, err := b.api.Send(reply); err != nil {
		log.WithError(err).Error("Ошибка отправки приветствия")
	}
}

// handleCallback отвечает на инлайн-кнопки.
func (b *Bot) handleCallback(_ context.Context, cb *tgbotapi.CallbackQuery) {
	// Убираем «часики» на кнопке
	if _, err := b.api.Request(tgbotapi.NewCallback(cb.ID, "")); err != nil {
		log.WithError(err).Warn("Ошибка ответа на callback")
	}

	if cb.Data != "how_it_works" || cb.Message == nil {
		return
	}

	info := fmt.Sprintf(`📖 <b>Как работает MLWizard Investment?</b>

💰 <b>Инвестиции:</b>
• Минимальная сумма - от %.0f₽
• Доходность - %.0f%% в день
• Начисления каждые 24 часа

💎 <b>Вывод средств:</b>
• Без комиссий
• Моментальная обработка
• На любой кошелёк

👥 <b>Партнёрская программа:</b>
• 10%% от инвестиций рефералов
• Бонусы за активных партнёров
• Многоуровневая система

🎯 Начни зарабатывать прямо сейчас!`, b.cfg.InvestMinAmount, b.cfg.InvestDailyRate*100)

	b.SendMessage(cb.Message.Chat.ID, info)
}

// SendMessage отправляет HTML-сообщение в чат. Используется обработчиками
// и планировщиком напоминаний.
func (b *Bot) SendMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	if _, err := b.api.Send(msg); err != nil {
		log.WithFields(log.Fields{"chat_id": chatID}).WithError(err).Error("Ошибка отправки сообщения")
	}
}

// SetupWebhook регистрирует URL вебхука в Telegram.
func (b *Bot) SetupWebhook(webhookURL string) error {
	if webhookURL == "" {
		webhookURL = b.cfg.WebhookURL
	}
	if webhookURL == "" {
		return fmt.Errorf("webhook URL не задан")
	}

	wh, err := tgbotapi.NewWebhook(webhookURL)
	if err != nil {
		return fmt.Errorf("некорректный webhook URL: %w", err)
	}
	if _, err := b.api.Request(wh); err != nil {
		return fmt.Errorf("ошибка установки вебхука: %w", err)
	}

	log.WithField("url", webhookURL).Info("Вебхук установлен")
	return nil
}
