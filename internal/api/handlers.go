// Package api — handlers.go: разбор запросов, вызов сервисов
// и формирование JSON-ответов.
//
// Коды ответов: ошибки валидации и нехватка средств — 400, неизвестный
// пользователь — 404, всё остальное — 500 с текстом ошибки как есть.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	log "github.com/sirupsen/logrus"

	"mlwizard.ru/investment-bot/internal/common"
	"mlwizard.ru/investment-bot/internal/features/boost"
	"mlwizard.ru/investment-bot/internal/features/invest"
	"mlwizard.ru/investment-bot/internal/features/rocket"
	"mlwizard.ru/investment-bot/internal/features/users"
)

// TelegramRelay — часть бота, нужная API: обработка апдейтов вебхука
// и регистрация вебхука. В тестах не используется (nil).
type TelegramRelay interface {
	HandleUpdate(ctx context.Context, update *tgbotapi.Update)
	SetupWebhook(webhookURL string) error
}

// Handler держит все сервисы и диспетчеризует операции по ?path=.
type Handler struct {
	userService   *users.Service
	investService *invest.Service
	rocketService *rocket.Service
	boostService  *boost.Service
	relay         TelegramRelay
}

// NewHandler создаёт обработчик API.
func NewHandler(
	userService *users.Service,
	investService *invest.Service,
	rocketService *rocket.Service,
	boostService *boost.Service,
	relay TelegramRelay,
) *Handler {
	return &Handler{
		userService:   userService,
		investService: investService,
		rocketService: rocketService,
		boostService:  boostService,
		relay:         relay,
	}
}

// Dispatch выбирает операцию по query-параметру path.
func (h *Handler) Dispatch(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Query().Get("path")

	switch {
	case r.Method == http.MethodGet && path == "user":
		h.handleUser(w, r)
	case r.Method == http.MethodPost && path == "invest":
		h.handleInvest(w, r)
	case r.Method == http.MethodPost && path == "collect":
		h.handleCollect(w, r)
	case r.Method == http.MethodGet && path == "investments":
		h.handleInvestments(w, r)
	case r.Method == http.MethodPost && path == "withdraw":
		h.handleWithdraw(w, r)
	case r.Method == http.MethodGet && path == "transactions":
		h.handleTransactions(w, r)
	case r.Method == http.MethodPost && path == "boost":
		h.handleBoost(w, r)
	case r.Method == http.MethodPost && path == "rocket_start":
		h.handleRocketStart(w, r)
	case r.Method == http.MethodPost && path == "rocket_cashout":
		h.handleRocketCashout(w, r)
	case r.Method == http.MethodPost && path == "rocket_lost":
		h.handleRocketLost(w, r)
	case r.Method == http.MethodGet && path == "rocket_balance":
		h.handleRocketBalance(w, r)
	case r.Method == http.MethodGet && path == "rocket_history":
		h.handleRocketHistory(w, r)
	case r.Method == http.MethodPost && path == "telegram_webhook":
		h.handleTelegramWebhook(w, r)
	case r.Method == http.MethodPost && path == "setup_webhook":
		h.handleSetupWebhook(w, r)
	default:
		writeError(w, http.StatusNotFound, "Not found")
	}
}

// --- DTO ---

type userDTO struct {
	UserID          int64   `json:"user_id"`
	Username        string  `json:"username"`
	Balance         float64 `json:"balance"`
	WithdrawBalance float64 `json:"withdraw_balance"`
	PartnersCount   int     `json:"partners_count"`
	ReferralCode    string  `json:"referral_code"`
}

type investmentDTO struct {
	ID          int64     `json:"id"`
	UserID      int64     `json:"user_id"`
	Amount      float64   `json:"amount"`
	Accumulated float64   `json:"accumulated"`
	LastCollect time.Time `json:"last_collect"`
	IsActive    bool      `json:"is_active"`
	StartDate   time.Time `json:"start_date"`
}

type transactionDTO struct {
	ID        int64     `json:"id"`
	Type      string    `json:"type"`
	Amount    float64   `json:"amount"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

type gameDTO struct {
	ID         int64     `json:"id"`
	BetAmount  float64   `json:"bet_amount"`
	Multiplier float64   `json:"multiplier"`
	CrashPoint float64   `json:"crash_point"`
	Profit     float64   `json:"profit"`
	Won        bool      `json:"won"`
	CreatedAt  time.Time `json:"created_at"`
}

func toUserDTO(u *users.User) userDTO {
	return userDTO{
		UserID:          u.UserID,
		Username:        u.Username,
		Balance:         common.Round2(u.Balance),
		WithdrawBalance: common.Round2(u.WithdrawBalance),
		PartnersCount:   u.PartnersCount,
		ReferralCode:    u.ReferralCode,
	}
}

func toInvestmentDTO(inv *invest.Investment) investmentDTO {
	return investmentDTO{
		ID:          inv.ID,
		UserID:      inv.UserID,
		Amount:      inv.Amount,
		Accumulated: common.Round2(inv.Accumulated),
		LastCollect: inv.LastCollect,
		IsActive:    inv.IsActive,
		StartDate:   inv.StartDate,
	}
}

// --- Обработчики ---

// handleUser — профиль: пользователь создаётся при первом обращении,
// проценты начисляются до чтения сумм.
func (h *Handler) handleUser(w http.ResponseWriter, r *http.Request) {
	userID, ok := telegramIDFromQuery(w, r)
	if !ok {
		return
	}

	user, err := h.userService.FetchOrCreate(r.Context(), userID, "")
	if err != nil {
		writeServiceError(w, err)
		return
	}

	invested, accumulated, err := h.investService.Summary(r.Context(), userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"user":              toUserDTO(user),
		"total_invested":    invested,
		"total_accumulated": accumulated,
	})
}

func (h *Handler) handleInvest(w http.ResponseWriter, r *http.Request) {
	var req struct {
		TelegramID int64   `json:"telegram_id"`
		Amount     float64 `json:"amount"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	inv, err := h.investService.Invest(r.Context(), req.TelegramID, req.Amount)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":    true,
		"investment": toInvestmentDTO(inv),
	})
}

func (h *Handler) handleCollect(w http.ResponseWriter, r *http.Request) {
	var req struct {
		TelegramID int64 `json:"telegram_id"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	collected, err := h.investService.Collect(r.Context(), req.TelegramID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":   true,
		"collected": collected,
	})
}

func (h *Handler) handleInvestments(w http.ResponseWriter, r *http.Request) {
	userID, ok := telegramIDFromQuery(w, r)
	if !ok {
		return
	}

	invs, err := h.investService.List(r.Context(), userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	dtos := make([]investmentDTO, 0, len(invs))
	for _, inv := range invs {
		dtos = append(dtos, toInvestmentDTO(inv))
	}
	writeJSON(w, http.StatusOK, map[string]any{"investments": dtos})
}

func (h *Handler) handleWithdraw(w http.ResponseWriter, r *http.Request) {
	var req struct {
		TelegramID int64   `json:"telegram_id"`
		Amount     float64 `json:"amount"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	if err := h.investService.Withdraw(r.Context(), req.TelegramID, req.Amount); err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

func (h *Handler) handleTransactions(w http.ResponseWriter, r *http.Request) {
	userID, ok := telegramIDFromQuery(w, r)
	if !ok {
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	txs, err := h.userService.History(r.Context(), userID, limit)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	dtos := make([]transactionDTO, 0, len(txs))
	for _, t := range txs {
		dtos = append(dtos, transactionDTO{
			ID: t.ID, Type: t.Type, Amount: t.Amount, Status: t.Status, CreatedAt: t.CreatedAt,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"transactions": dtos})
}

func (h *Handler) handleBoost(w http.ResponseWriter, r *http.Request) {
	var req struct {
		TelegramID int64   `json:"telegram_id"`
		BoostType  string  `json:"boost_type"`
		Amount     float64 `json:"amount"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	order, err := h.boostService.Order(r.Context(), req.TelegramID, req.BoostType, req.Amount)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"order": map[string]any{
			"id":         order.ID,
			"boost_type": order.BoostType,
			"amount":     order.Amount,
			"status":     order.Status,
		},
	})
}

func (h *Handler) handleRocketStart(w http.ResponseWriter, r *http.Request) {
	var req struct {
		TelegramID int64   `json:"telegram_id"`
		BetAmount  float64 `json:"bet_amount"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	crashPoint, err := h.rocketService.Start(r.Context(), req.TelegramID, req.BetAmount)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":     true,
		"crash_point": crashPoint,
	})
}

func (h *Handler) handleRocketCashout(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID     int64   `json:"user_id"`
		BetAmount  float64 `json:"bet_amount"`
		Multiplier float64 `json:"multiplier"`
		CrashPoint float64 `json:"crash_point"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	game, err := h.rocketService.CashOut(r.Context(), req.UserID, req.BetAmount, req.Multiplier, req.CrashPoint)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"payout":  common.Round2(game.BetAmount + game.Profit),
		"profit":  game.Profit,
	})
}

func (h *Handler) handleRocketLost(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID     int64   `json:"user_id"`
		BetAmount  float64 `json:"bet_amount"`
		CrashPoint float64 `json:"crash_point"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	if _, err := h.rocketService.Lost(r.Context(), req.UserID, req.BetAmount, req.CrashPoint); err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

// handleRocketBalance — баланс для экрана игры, с регистрацией при первом
// обращении, как и handleUser.
func (h *Handler) handleRocketBalance(w http.ResponseWriter, r *http.Request) {
	userID, ok := telegramIDFromQuery(w, r)
	if !ok {
		return
	}

	user, err := h.userService.FetchOrCreate(r.Context(), userID, "")
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"balance": common.Round2(user.Balance)})
}

func (h *Handler) handleRocketHistory(w http.ResponseWriter, r *http.Request) {
	userID, ok := telegramIDFromQuery(w, r)
	if !ok {
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	games, err := h.rocketService.History(r.Context(), userID, limit)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	dtos := make([]gameDTO, 0, len(games))
	for _, g := range games {
		dtos = append(dtos, gameDTO{
			ID: g.ID, BetAmount: g.BetAmount, Multiplier: g.Multiplier,
			CrashPoint: g.CrashPoint, Profit: g.Profit, Won: g.Won, CreatedAt: g.CreatedAt,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"games": dtos})
}

// handleTelegramWebhook принимает апдейт от Telegram и отдаёт его боту.
// Отвечаем 200 в любом случае, иначе Telegram будет бесконечно ретраить.
func (h *Handler) handleTelegramWebhook(w http.ResponseWriter, r *http.Request) {
	if h.relay == nil {
		writeError(w, http.StatusInternalServerError, "бот не настроен")
		return
	}

	var update tgbotapi.Update
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		log.WithError(err).Warn("Некорректный апдейт вебхука")
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
		return
	}

	h.relay.HandleUpdate(r.Context(), &update)
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (h *Handler) handleSetupWebhook(w http.ResponseWriter, r *http.Request) {
	if h.relay == nil {
		writeError(w, http.StatusInternalServerError, "бот не настроен")
		return
	}

	var req struct {
		WebhookURL string `json:"webhook_url"`
	}
	// Тело опционально: без него берётся WEBHOOK_URL из конфигурации
	_ = json.NewDecoder(r.Body).Decode(&req)

	if err := h.relay.SetupWebhook(req.WebhookURL); err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

// --- Вспомогательные ---

func telegramIDFromQuery(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := r.URL.Query().Get("telegram_id")
	if raw == "" {
		writeError(w, http.StatusBadRequest, "telegram_id is required")
		return 0, false
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "некорректный telegram_id")
		return 0, false
	}
	return id, true
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "некорректное тело запроса")
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.WithError(err).Error("Ошибка кодирования JSON-ответа")
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeServiceError превращает ошибку сервиса в HTTP-статус.
// Текст ошибки отдаётся клиенту как есть — фронтенд показывает его игроку.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, common.ErrInvalidAmount),
		errors.Is(err, common.ErrInvalidMultiplier),
		errors.Is(err, common.ErrInsufficientFunds),
		errors.Is(err, common.ErrInsufficientWithdraw),
		errors.Is(err, common.ErrRocketDisabled),
		errors.Is(err, common.ErrBoostDisabled):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, common.ErrUserNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	default:
		log.WithError(err).Error("Внутренняя ошибка операции")
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}
