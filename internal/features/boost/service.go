// Package boost — service.go: валидация и создание буст-заказов.
package boost

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	"mlwizard.ru/investment-bot/internal/common"
	"mlwizard.ru/investment-bot/internal/config"
)

// Store — операции хранилища, нужные сервису бустов.
type Store interface {
	CreateOrder(ctx context.Context, userID int64, boostType string, amount float64) (*Order, error)
}

// Service управляет буст-заказами.
type Service struct {
	store Store
	cfg   *config.Config
}

// NewService создаёт сервис бустов.
func NewService(store Store, cfg *config.Config) *Service {
	return &Service{store: store, cfg: cfg}
}

// Order создаёт буст-заказ и списывает оплату с основного баланса.
func (s *Service) Order(ctx context.Context, userID int64, boostType string, amount float64) (*Order, error) {
	if !s.cfg.FeatureBoostEnabled {
		return nil, common.ErrBoostDisabled
	}
	if amount <= 0 {
		return nil, fmt.Errorf("%w: сумма должна быть положительной", common.ErrInvalidAmount)
	}
	if boostType == "" {
		return nil, fmt.Errorf("%w: не указан тип буста", common.ErrInvalidAmount)
	}

	order, err := s.store.CreateOrder(ctx, userID, boostType, common.Round2(amount))
	if err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"user_id":  userID,
		"order_id": order.ID,
		"type":     boostType,
		"amount":   amount,
	}).Info("Создан буст-заказ")

	return order, nil
}
