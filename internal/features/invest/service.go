// Package invest — service.go содержит бизнес-логику инвестиций:
// открытие позиции, сбор прибыли, заявка на вывод, списки и сводки.
package invest

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"mlwizard.ru/investment-bot/internal/common"
	"mlwizard.ru/investment-bot/internal/config"
)

// Store — операции хранилища, нужные сервису инвестиций.
// Реализуется Repository; в тестах подменяется in-memory фейком.
type Store interface {
	RunAccrual(ctx context.Context, userID int64, rate float64, now time.Time) error
	CreateInvestment(ctx context.Context, userID int64, amount float64, now time.Time) (*Investment, error)
	Collect(ctx context.Context, userID int64, rate float64, now time.Time) (float64, error)
	Withdraw(ctx context.Context, userID int64, amount float64) error
	ActiveByUser(ctx context.Context, userID int64) ([]*Investment, error)
	Totals(ctx context.Context, userID int64) (invested, accumulated float64, err error)
	AccumulatedTotals(ctx context.Context) ([]*UserAccumulated, error)
}

// Service управляет инвестициями.
type Service struct {
	store Store
	cfg   *config.Config
	// now подменяется в тестах
	now func() time.Time
}

// NewService создаёт сервис инвестиций.
func NewService(store Store, cfg *config.Config) *Service {
	return &Service{store: store, cfg: cfg, now: time.Now}
}

// Invest открывает инвестицию на сумму amount с основного баланса.
// Сумма не может быть меньше минимальной (по умолчанию 100₽).
func (s *Service) Invest(ctx context.Context, userID int64, amount float64) (*Investment, error) {
	if amount < s.cfg.InvestMinAmount {
		return nil, fmt.Errorf("%w: минимальная сумма инвестиции — %.0f₽",
			common.ErrInvalidAmount, s.cfg.InvestMinAmount)
	}

	inv, err := s.store.CreateInvestment(ctx, userID, common.Round2(amount), s.now())
	if err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"user_id":       userID,
		"investment_id": inv.ID,
		"amount":        inv.Amount,
	}).Info("Открыта инвестиция")

	return inv, nil
}

// Collect собирает накопленную прибыль со всех активных позиций
// в баланс вывода. Нулевой сбор — не ошибка, просто collected=0.
func (s *Service) Collect(ctx context.Context, userID int64) (float64, error) {
	total, err := s.store.Collect(ctx, userID, s.cfg.InvestDailyRate, s.now())
	if err != nil {
		return 0, err
	}

	if total > 0 {
		log.WithFields(log.Fields{"user_id": userID, "collected": total}).Info("Прибыль собрана")
	}
	return common.Round2(total), nil
}

// Withdraw создаёт заявку на вывод: списывает сумму с баланса вывода
// и пишет pending-запись в журнал. Выплата — внешний процесс.
func (s *Service) Withdraw(ctx context.Context, userID int64, amount float64) error {
	if amount <= 0 {
		return fmt.Errorf("%w: сумма должна быть положительной", common.ErrInvalidAmount)
	}

	if err := s.store.Withdraw(ctx, userID, common.Round2(amount)); err != nil {
		return err
	}

	log.WithFields(log.Fields{"user_id": userID, "amount": amount}).Info("Создана заявка на вывод")
	return nil
}

// List начисляет проценты и возвращает активные позиции пользователя.
func (s *Service) List(ctx context.Context, userID int64) ([]*Investment, error) {
	if err := s.store.RunAccrual(ctx, userID, s.cfg.InvestDailyRate, s.now()); err != nil {
		return nil, err
	}
	return s.store.ActiveByUser(ctx, userID)
}

// Summary начисляет проценты и возвращает суммарный принципал
// и несобранную прибыль. Используется в профиле пользователя.
func (s *Service) Summary(ctx context.Context, userID int64) (invested, accumulated float64, err error) {
	if err := s.store.RunAccrual(ctx, userID, s.cfg.InvestDailyRate, s.now()); err != nil {
		return 0, 0, err
	}
	invested, accumulated, err = s.store.Totals(ctx, userID)
	if err != nil {
		return 0, 0, err
	}
	return common.Round2(invested), common.Round2(accumulated), nil
}

// AccruedTotals возвращает пользователей с несобранной прибылью
// для ежедневного напоминания.
func (s *Service) AccruedTotals(ctx context.Context) ([]*UserAccumulated, error) {
	return s.store.AccumulatedTotals(ctx)
}
