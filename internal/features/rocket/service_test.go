package rocket

import (
	"context"
	"errors"
	"testing"

	"mlwizard.ru/investment-bot/internal/common"
	"mlwizard.ru/investment-bot/internal/config"
)

// fakeStore — in-memory реализация Store с семантикой Repository.
type fakeStore struct {
	balance map[int64]float64
	games   []*Game
}

func newFakeStore() *fakeStore {
	return &fakeStore{balance: make(map[int64]float64)}
}

func (f *fakeStore) PlaceBet(_ context.Context, userID int64, bet float64) error {
	if f.balance[userID] < bet {
		return common.ErrInsufficientFunds
	}
	f.balance[userID] -= bet
	return nil
}

func (f *fakeStore) SaveWin(_ context.Context, game *Game, payout float64) error {
	f.balance[game.UserID] += payout
	f.games = append(f.games, game)
	return nil
}

func (f *fakeStore) SaveLoss(_ context.Context, game *Game) error {
	f.games = append(f.games, game)
	return nil
}

func (f *fakeStore) History(_ context.Context, userID int64, limit int) ([]*Game, error) {
	var out []*Game
	for i := len(f.games) - 1; i >= 0 && len(out) < limit; i-- {
		if f.games[i].UserID == userID {
			out = append(out, f.games[i])
		}
	}
	return out, nil
}

func testConfig() *config.Config {
	return &config.Config{FeatureRocketEnabled: true}
}

func TestStart_DebitsBetAndReturnsCrashPoint(t *testing.T) {
	store := newFakeStore()
	store.balance[1] = 500
	svc := NewService(store, testConfig())

	crashPoint, err := svc.Start(context.Background(), 1, 100)
	if err != nil {
		t.Fatalf("неожиданная ошибка: %v", err)
	}
	if crashPoint < 1.00 || crashPoint > 15.00 {
		t.Errorf("точка взрыва %v вне диапазона", crashPoint)
	}
	if store.balance[1] != 400 {
		t.Errorf("баланс = %v, ожидалось 400", store.balance[1])
	}
}

func TestStart_InsufficientFunds(t *testing.T) {
	store := newFakeStore()
	store.balance[1] = 50
	svc := NewService(store, testConfig())

	_, err := svc.Start(context.Background(), 1, 100)
	if !errors.Is(err, common.ErrInsufficientFunds) {
		t.Fatalf("ожидалась ErrInsufficientFunds, получено %v", err)
	}
	if store.balance[1] != 50 {
		t.Errorf("баланс изменился при отказе: %v", store.balance[1])
	}
}

func TestStart_InvalidBet(t *testing.T) {
	svc := NewService(newFakeStore(), testConfig())

	for _, bet := range []float64{0, -5} {
		if _, err := svc.Start(context.Background(), 1, bet); !errors.Is(err, common.ErrInvalidAmount) {
			t.Errorf("Start(bet=%v): ожидалась ErrInvalidAmount, получено %v", bet, err)
		}
	}
}

func TestDisabledGameRejectsAllOperations(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store, &config.Config{FeatureRocketEnabled: false})

	if _, err := svc.Start(context.Background(), 1, 100); !errors.Is(err, common.ErrRocketDisabled) {
		t.Errorf("Start: ожидалась ErrRocketDisabled, получено %v", err)
	}
	if _, err := svc.CashOut(context.Background(), 1, 100, 2.0, 3.0); !errors.Is(err, common.ErrRocketDisabled) {
		t.Errorf("CashOut: ожидалась ErrRocketDisabled, получено %v", err)
	}
	if _, err := svc.Lost(context.Background(), 1, 100, 1.5); !errors.Is(err, common.ErrRocketDisabled) {
		t.Errorf("Lost: ожидалась ErrRocketDisabled, получено %v", err)
	}
	if len(store.games) != 0 {
		t.Errorf("записано раундов при выключенной игре: %d", len(store.games))
	}
}

func TestCashOut_PayoutMath(t *testing.T) {
	store := newFakeStore()
	store.balance[1] = 0 // ставка уже списана на старте
	svc := NewService(store, testConfig())

	game, err := svc.CashOut(context.Background(), 1, 100, 2.5, 3.10)
	if err != nil {
		t.Fatalf("неожиданная ошибка: %v", err)
	}

	// payout = 100 × 2.5 = 250, чистая прибыль 150
	if store.balance[1] != 250 {
		t.Errorf("баланс = %v, ожидалось 250", store.balance[1])
	}
	if game.Profit != 150 {
		t.Errorf("profit = %v, ожидалось 150", game.Profit)
	}
	if !game.Won {
		t.Error("раунд должен быть выигранным")
	}
	if len(store.games) != 1 {
		t.Fatalf("записано раундов: %d, ожидался 1", len(store.games))
	}
}

func TestCashOut_MultiplierAboveCrashPointRejected(t *testing.T) {
	svc := NewService(newFakeStore(), testConfig())

	_, err := svc.CashOut(context.Background(), 1, 100, 3.0, 2.5)
	if !errors.Is(err, common.ErrInvalidMultiplier) {
		t.Fatalf("ожидалась ErrInvalidMultiplier, получено %v", err)
	}
}

func TestCashOut_NonPositiveMultiplier(t *testing.T) {
	svc := NewService(newFakeStore(), testConfig())

	for _, m := range []float64{0, -1} {
		if _, err := svc.CashOut(context.Background(), 1, 100, m, 2.0); !errors.Is(err, common.ErrInvalidMultiplier) {
			t.Errorf("CashOut(multiplier=%v): ожидалась ErrInvalidMultiplier, получено %v", m, err)
		}
	}
}

func TestLost_RecordsHistoryWithoutBalanceChange(t *testing.T) {
	store := newFakeStore()
	store.balance[1] = 400 // после списания ставки на старте
	svc := NewService(store, testConfig())

	game, err := svc.Lost(context.Background(), 1, 100, 1.37)
	if err != nil {
		t.Fatalf("неожиданная ошибка: %v", err)
	}

	if store.balance[1] != 400 {
		t.Errorf("баланс изменился: %v", store.balance[1])
	}
	if game.Profit != -100 {
		t.Errorf("profit = %v, ожидалось -100", game.Profit)
	}
	if game.Won {
		t.Error("раунд должен быть проигранным")
	}
	if game.Multiplier != 1.37 || game.CrashPoint != 1.37 {
		t.Errorf("множитель/точка взрыва: %+v", game)
	}
}
