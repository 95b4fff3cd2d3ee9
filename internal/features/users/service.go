// Package users — service.go содержит бизнес-логику работы с пользователями:
// регистрация при первом контакте, чтение профиля, история операций.
package users

import (
	"context"
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"

	"mlwizard.ru/investment-bot/internal/common"
	"mlwizard.ru/investment-bot/internal/config"
)

// Store — операции хранилища, нужные сервису пользователей.
// Реализуется Repository; в тестах подменяется in-memory фейком.
type Store interface {
	GetByUserID(ctx context.Context, userID int64) (*User, error)
	CreateIfAbsent(ctx context.Context, userID int64, username string, seedBalance float64, referralCode string) (*User, error)
	CreditBalance(ctx context.Context, userID int64, amount float64, txType string) error
	Transactions(ctx context.Context, userID int64, limit int) ([]*Transaction, error)
}

// Service управляет пользователями.
type Service struct {
	store Store
	cfg   *config.Config
}

// NewService создаёт сервис пользователей.
func NewService(store Store, cfg *config.Config) *Service {
	return &Service{store: store, cfg: cfg}
}

// FetchOrCreate возвращает пользователя, создавая запись при первом контакте.
// Новому пользователю выдаётся уникальный реферальный код и стартовый баланс.
func (s *Service) FetchOrCreate(ctx context.Context, userID int64, username string) (*User, error) {
	user, err := s.store.GetByUserID(ctx, userID)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, common.ErrUserNotFound) {
		return nil, err
	}

	code, err := common.GenerateReferralCode()
	if err != nil {
		return nil, err
	}

	user, err = s.store.CreateIfAbsent(ctx, userID, username, s.cfg.StartingBalance, code)
	if err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"user_id":       userID,
		"referral_code": user.ReferralCode,
	}).Info("Зарегистрирован новый пользователь")

	return user, nil
}

// Get возвращает существующего пользователя (без создания).
func (s *Service) Get(ctx context.Context, userID int64) (*User, error) {
	return s.store.GetByUserID(ctx, userID)
}

// Deposit пополняет основной баланс пользователя.
func (s *Service) Deposit(ctx context.Context, userID int64, amount float64, txType string) error {
	if amount <= 0 {
		return fmt.Errorf("%w: сумма должна быть положительной", common.ErrInvalidAmount)
	}
	if err := s.store.CreditBalance(ctx, userID, common.Round2(amount), txType); err != nil {
		return err
	}
	log.WithFields(log.Fields{"user_id": userID, "amount": amount, "type": txType}).Info("Баланс пополнен")
	return nil
}

// History возвращает последние записи журнала операций пользователя.
func (s *Service) History(ctx context.Context, userID int64, limit int) ([]*Transaction, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.store.Transactions(ctx, userID, limit)
}
