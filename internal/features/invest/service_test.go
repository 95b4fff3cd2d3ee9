package invest

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"mlwizard.ru/investment-bot/internal/common"
	"mlwizard.ru/investment-bot/internal/config"
	"mlwizard.ru/investment-bot/internal/features/users"
)

// fakeStore — in-memory реализация Store с той же семантикой,
// что у Repository: условные списания, ленивое начисление, журнал.
type fakeStore struct {
	balance         map[int64]float64
	withdrawBalance map[int64]float64
	invs            []*Investment
	txs             []*users.Transaction
	nextID          int64
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		balance:         make(map[int64]float64),
		withdrawBalance: make(map[int64]float64),
	}
}

func (f *fakeStore) RunAccrual(_ context.Context, userID int64, rate float64, now time.Time) error {
	for _, inv := range f.invs {
		if inv.UserID != userID || !inv.IsActive {
			continue
		}
		_, inv.Accumulated = ComputeAccrual(inv.Amount, inv.Accumulated, rate, inv.LastCollect, now)
		inv.LastCollect = now
	}
	return nil
}

func (f *fakeStore) CreateInvestment(_ context.Context, userID int64, amount float64, now time.Time) (*Investment, error) {
	if f.balance[userID] < amount {
		return nil, common.ErrInsufficientFunds
	}
	f.balance[userID] -= amount
	f.nextID++
	inv := &Investment{
		ID: f.nextID, UserID: userID, Amount: amount,
		IsActive: true, LastCollect: now, StartDate: now,
	}
	f.invs = append(f.invs, inv)
	f.txs = append(f.txs, &users.Transaction{
		UserID: userID, Type: users.TxTypeInvestment, Amount: amount, Status: users.TxStatusCompleted,
	})
	return inv, nil
}

func (f *fakeStore) Collect(ctx context.Context, userID int64, rate float64, now time.Time) (float64, error) {
	if err := f.RunAccrual(ctx, userID, rate, now); err != nil {
		return 0, err
	}
	var total float64
	for _, inv := range f.invs {
		if inv.UserID == userID && inv.IsActive {
			total += inv.Accumulated
		}
	}
	if total <= 0 {
		return 0, nil
	}
	f.withdrawBalance[userID] += total
	for _, inv := range f.invs {
		if inv.UserID == userID && inv.IsActive {
			inv.Accumulated = 0
		}
	}
	f.txs = append(f.txs, &users.Transaction{
		UserID: userID, Type: users.TxTypeCollect, Amount: total, Status: users.TxStatusCompleted,
	})
	return total, nil
}

func (f *fakeStore) Withdraw(_ context.Context, userID int64, amount float64) error {
	if f.withdrawBalance[userID] < amount {
		return common.ErrInsufficientWithdraw
	}
	f.withdrawBalance[userID] -= amount
	f.txs = append(f.txs, &users.Transaction{
		UserID: userID, Type: users.TxTypeWithdrawal, Amount: amount, Status: users.TxStatusPending,
	})
	return nil
}

func (f *fakeStore) ActiveByUser(_ context.Context, userID int64) ([]*Investment, error) {
	var out []*Investment
	for _, inv := range f.invs {
		if inv.UserID == userID && inv.IsActive {
			out = append(out, inv)
		}
	}
	return out, nil
}

func (f *fakeStore) Totals(_ context.Context, userID int64) (float64, float64, error) {
	var invested, accumulated float64
	for _, inv := range f.invs {
		if inv.UserID == userID && inv.IsActive {
			invested += inv.Amount
			accumulated += inv.Accumulated
		}
	}
	return invested, accumulated, nil
}

func (f *fakeStore) AccumulatedTotals(_ context.Context) ([]*UserAccumulated, error) {
	byUser := make(map[int64]float64)
	for _, inv := range f.invs {
		if inv.IsActive {
			byUser[inv.UserID] += inv.Accumulated
		}
	}
	var out []*UserAccumulated
	for id, total := range byUser {
		if total > 0 {
			out = append(out, &UserAccumulated{UserID: id, Total: total})
		}
	}
	return out, nil
}

func (f *fakeStore) lastTx() *users.Transaction {
	if len(f.txs) == 0 {
		return nil
	}
	return f.txs[len(f.txs)-1]
}

func testConfig() *config.Config {
	return &config.Config{InvestDailyRate: 0.01, InvestMinAmount: 100}
}

func newTestService(store *fakeStore, at time.Time) *Service {
	s := NewService(store, testConfig())
	s.now = func() time.Time { return at }
	return s
}

func TestInvest_BelowMinimumFails(t *testing.T) {
	store := newFakeStore()
	store.balance[1] = 1000
	svc := newTestService(store, time.Now())

	_, err := svc.Invest(context.Background(), 1, 99.99)
	if !errors.Is(err, common.ErrInvalidAmount) {
		t.Fatalf("ожидалась ErrInvalidAmount, получено %v", err)
	}
	if store.balance[1] != 1000 {
		t.Errorf("баланс изменился: %v", store.balance[1])
	}
}

func TestInvest_ExactMinimumSucceeds(t *testing.T) {
	store := newFakeStore()
	store.balance[1] = 300
	svc := newTestService(store, time.Now())

	inv, err := svc.Invest(context.Background(), 1, 100)
	if err != nil {
		t.Fatalf("неожиданная ошибка: %v", err)
	}
	if inv.Amount != 100 || !inv.IsActive {
		t.Errorf("некорректная инвестиция: %+v", inv)
	}
	if store.balance[1] != 200 {
		t.Errorf("баланс = %v, ожидалось 200", store.balance[1])
	}
	tx := store.lastTx()
	if tx == nil || tx.Type != users.TxTypeInvestment || tx.Status != users.TxStatusCompleted {
		t.Errorf("некорректная запись журнала: %+v", tx)
	}
}

func TestInvest_InsufficientFunds(t *testing.T) {
	store := newFakeStore()
	store.balance[1] = 300
	svc := newTestService(store, time.Now())

	_, err := svc.Invest(context.Background(), 1, 500)
	if !errors.Is(err, common.ErrInsufficientFunds) {
		t.Fatalf("ожидалась ErrInsufficientFunds, получено %v", err)
	}
	if store.balance[1] != 300 {
		t.Errorf("баланс изменился при отказе: %v", store.balance[1])
	}
}

func TestCollect_ImmediatelyAfterInvestYieldsZero(t *testing.T) {
	store := newFakeStore()
	store.balance[1] = 1000
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	svc := newTestService(store, now)

	if _, err := svc.Invest(context.Background(), 1, 500); err != nil {
		t.Fatal(err)
	}

	collected, err := svc.Collect(context.Background(), 1)
	if err != nil {
		t.Fatalf("неожиданная ошибка: %v", err)
	}
	if collected != 0 {
		t.Errorf("collected = %v, ожидалось 0", collected)
	}
	if store.withdrawBalance[1] != 0 {
		t.Errorf("withdraw_balance изменился: %v", store.withdrawBalance[1])
	}
}

func TestCollect_AfterOneDayMovesProfitToWithdraw(t *testing.T) {
	store := newFakeStore()
	store.balance[1] = 1000
	start := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	svc := newTestService(store, start)

	if _, err := svc.Invest(context.Background(), 1, 1000); err != nil {
		t.Fatal(err)
	}

	// Через сутки: 1000 * 1% = 10
	svc.now = func() time.Time { return start.Add(24 * time.Hour) }
	collected, err := svc.Collect(context.Background(), 1)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(collected-10) > 1e-9 {
		t.Errorf("collected = %v, ожидалось 10", collected)
	}
	if math.Abs(store.withdrawBalance[1]-10) > 1e-9 {
		t.Errorf("withdraw_balance = %v, ожидалось 10", store.withdrawBalance[1])
	}

	// Позиции обнулены, повторный сбор даёт ноль
	collected, err = svc.Collect(context.Background(), 1)
	if err != nil {
		t.Fatal(err)
	}
	if collected != 0 {
		t.Errorf("повторный сбор = %v, ожидалось 0", collected)
	}
}

func TestWithdraw_InsufficientLeavesBalanceUnchanged(t *testing.T) {
	store := newFakeStore()
	store.withdrawBalance[1] = 50
	svc := newTestService(store, time.Now())

	err := svc.Withdraw(context.Background(), 1, 100)
	if !errors.Is(err, common.ErrInsufficientWithdraw) {
		t.Fatalf("ожидалась ErrInsufficientWithdraw, получено %v", err)
	}
	if store.withdrawBalance[1] != 50 {
		t.Errorf("withdraw_balance изменился: %v", store.withdrawBalance[1])
	}
}

func TestWithdraw_SuccessRecordsPendingTransaction(t *testing.T) {
	store := newFakeStore()
	store.withdrawBalance[1] = 500
	svc := newTestService(store, time.Now())

	if err := svc.Withdraw(context.Background(), 1, 200); err != nil {
		t.Fatalf("неожиданная ошибка: %v", err)
	}
	if store.withdrawBalance[1] != 300 {
		t.Errorf("withdraw_balance = %v, ожидалось 300", store.withdrawBalance[1])
	}
	tx := store.lastTx()
	if tx == nil || tx.Type != users.TxTypeWithdrawal || tx.Status != users.TxStatusPending {
		t.Errorf("некорректная запись журнала: %+v", tx)
	}
	if tx != nil && tx.Amount != 200 {
		t.Errorf("сумма заявки = %v, ожидалось 200", tx.Amount)
	}
}

func TestWithdraw_NonPositiveAmount(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store, time.Now())

	for _, amount := range []float64{0, -10} {
		if err := svc.Withdraw(context.Background(), 1, amount); !errors.Is(err, common.ErrInvalidAmount) {
			t.Errorf("Withdraw(%v): ожидалась ErrInvalidAmount, получено %v", amount, err)
		}
	}
}
