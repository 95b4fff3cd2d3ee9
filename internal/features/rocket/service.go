// Package rocket — service.go координирует раунд от ставки до записи результата.
//
// Точка взрыва разыгрывается и возвращается клиенту сразу на старте —
// это сознательное свойство: анимацию полёта и момент кэшаута ведёт клиент,
// а точка, будучи разыгранной, зафиксирована для раунда.
package rocket

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"mlwizard.ru/investment-bot/internal/common"
	"mlwizard.ru/investment-bot/internal/config"
)

// Store — операции хранилища, нужные сервису ракетки.
type Store interface {
	PlaceBet(ctx context.Context, userID int64, bet float64) error
	SaveWin(ctx context.Context, game *Game, payout float64) error
	SaveLoss(ctx context.Context, game *Game) error
	History(ctx context.Context, userID int64, limit int) ([]*Game, error)
}

// Service управляет игрой.
type Service struct {
	store Store
	cfg   *config.Config

	// rand.Rand не потокобезопасен, розыгрыш под мьютексом
	rngMu sync.Mutex
	rng   *rand.Rand
}

// NewService создаёт сервис ракетки.
func NewService(store Store, cfg *config.Config) *Service {
	return &Service{
		store: store,
		cfg:   cfg,
		rng:   rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Start начинает раунд: списывает ставку и разыгрывает точку взрыва.
// Ставка «в игре» с этого момента; при проигрыше ничего дополнительно
// не списывается.
func (s *Service) Start(ctx context.Context, userID int64, bet float64) (float64, error) {
	if !s.cfg.FeatureRocketEnabled {
		return 0, common.ErrRocketDisabled
	}
	if bet <= 0 {
		return 0, fmt.Errorf("%w: ставка должна быть положительной", common.ErrInvalidAmount)
	}

	if err := s.store.PlaceBet(ctx, userID, common.Round2(bet)); err != nil {
		return 0, err
	}

	s.rngMu.Lock()
	crashPoint := DrawCrashPoint(s.rng)
	s.rngMu.Unlock()

	log.WithFields(log.Fields{
		"user_id":     userID,
		"bet":         bet,
		"crash_point": crashPoint,
	}).Info("Раунд начат")

	return crashPoint, nil
}

// CashOut фиксирует выигрыш: выплата = ставка × множитель, чистая прибыль —
// выплата минус ставка. Множитель не может превышать точку взрыва раунда.
func (s *Service) CashOut(ctx context.Context, userID int64, bet, multiplier, crashPoint float64) (*Game, error) {
	if !s.cfg.FeatureRocketEnabled {
		return nil, common.ErrRocketDisabled
	}
	if bet <= 0 {
		return nil, fmt.Errorf("%w: ставка должна быть положительной", common.ErrInvalidAmount)
	}
	if multiplier <= 0 {
		return nil, common.ErrInvalidMultiplier
	}
	if crashPoint > 0 && multiplier > crashPoint {
		return nil, fmt.Errorf("%w: множитель выше точки взрыва", common.ErrInvalidMultiplier)
	}

	payout := common.Round2(bet * multiplier)
	game := &Game{
		UserID:     userID,
		BetAmount:  bet,
		Multiplier: multiplier,
		CrashPoint: crashPoint,
		Profit:     common.Round2(payout - bet),
		Won:        true,
	}

	if err := s.store.SaveWin(ctx, game, payout); err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"user_id":    userID,
		"multiplier": multiplier,
		"payout":     payout,
	}).Info("Кэшаут")

	return game, nil
}

// Lost фиксирует проигрыш раунда. Ставка была списана на старте —
// баланс не меняется, пишется только история.
func (s *Service) Lost(ctx context.Context, userID int64, bet, crashPoint float64) (*Game, error) {
	if !s.cfg.FeatureRocketEnabled {
		return nil, common.ErrRocketDisabled
	}
	if bet <= 0 {
		return nil, fmt.Errorf("%w: ставка должна быть положительной", common.ErrInvalidAmount)
	}

	game := &Game{
		UserID:     userID,
		BetAmount:  bet,
		Multiplier: crashPoint,
		CrashPoint: crashPoint,
		Profit:     common.Round2(-bet),
		Won:        false,
	}

	if err := s.store.SaveLoss(ctx, game); err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"user_id":     userID,
		"bet":         bet,
		"crash_point": crashPoint,
	}).Info("Ракетка улетела")

	return game, nil
}

// History возвращает последние раунды пользователя.
func (s *Service) History(ctx context.Context, userID int64, limit int) ([]*Game, error) {
	if limit <= 0 || limit > 50 {
		limit = 10
	}
	return s.store.History(ctx, userID, limit)
}
