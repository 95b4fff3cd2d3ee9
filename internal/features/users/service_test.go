package users

import (
	"context"
	"errors"
	"testing"
	"time"

	"mlwizard.ru/investment-bot/internal/common"
	"mlwizard.ru/investment-bot/internal/config"
)

type fakeStore struct {
	users       map[int64]*User
	txs         []*Transaction
	createCalls int
}

func newFakeStore() *fakeStore {
	return &fakeStore{users: make(map[int64]*User)}
}

func (f *fakeStore) GetByUserID(_ context.Context, userID int64) (*User, error) {
	u, ok := f.users[userID]
	if !ok {
		return nil, common.ErrUserNotFound
	}
	return u, nil
}

func (f *fakeStore) CreateIfAbsent(_ context.Context, userID int64, username string, seedBalance float64, referralCode string) (*User, error) {
	f.createCalls++
	if u, ok := f.users[userID]; ok {
		return u, nil
	}
	u := &User{
		UserID:       userID,
		Username:     username,
		Balance:      seedBalance,
		ReferralCode: referralCode,
		CreatedAt:    time.Now(),
	}
	f.users[userID] = u
	return u, nil
}

func (f *fakeStore) CreditBalance(_ context.Context, userID int64, amount float64, txType string) error {
	u, ok := f.users[userID]
	if !ok {
		return common.ErrUserNotFound
	}
	u.Balance += amount
	f.txs = append(f.txs, &Transaction{UserID: userID, Type: txType, Amount: amount, Status: TxStatusCompleted})
	return nil
}

func (f *fakeStore) Transactions(_ context.Context, userID int64, limit int) ([]*Transaction, error) {
	var out []*Transaction
	for _, tx := range f.txs {
		if tx.UserID == userID {
			out = append(out, tx)
		}
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func testConfig() *config.Config {
	return &config.Config{StartingBalance: 50}
}

func TestFetchOrCreate_NewUser(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store, testConfig())

	user, err := svc.FetchOrCreate(context.Background(), 100, "alice")
	if err != nil {
		t.Fatalf("FetchOrCreate: %v", err)
	}
	if user.UserID != 100 || user.Username != "alice" {
		t.Errorf("неожиданный пользователь: %+v", user)
	}
	if user.Balance != 50 {
		t.Errorf("стартовый баланс = %v, ожидалось 50", user.Balance)
	}
	if len(user.ReferralCode) != common.ReferralCodeLength {
		t.Errorf("реферальный код %q некорректной длины", user.ReferralCode)
	}
}

func TestFetchOrCreate_ExistingUserNotRecreated(t *testing.T) {
	store := newFakeStore()
	store.users[100] = &User{UserID: 100, Username: "alice", Balance: 777, ReferralCode: "AAAA111122"}
	svc := NewService(store, testConfig())

	user, err := svc.FetchOrCreate(context.Background(), 100, "alice_renamed")
	if err != nil {
		t.Fatalf("FetchOrCreate: %v", err)
	}
	if user.Balance != 777 || user.ReferralCode != "AAAA111122" {
		t.Errorf("существующий пользователь изменён: %+v", user)
	}
	if store.createCalls != 0 {
		t.Errorf("CreateIfAbsent вызван %d раз для существующего пользователя", store.createCalls)
	}
}

func TestDeposit(t *testing.T) {
	store := newFakeStore()
	store.users[1] = &User{UserID: 1, Balance: 100}
	svc := NewService(store, testConfig())

	if err := svc.Deposit(context.Background(), 1, 49.999, TxTypeDeposit); err != nil {
		t.Fatalf("Deposit: %v", err)
	}
	if store.users[1].Balance != 150 {
		t.Errorf("баланс = %v, ожидалось 150 (сумма округляется до копеек)", store.users[1].Balance)
	}

	err := svc.Deposit(context.Background(), 1, 0, TxTypeDeposit)
	if !errors.Is(err, common.ErrInvalidAmount) {
		t.Errorf("нулевая сумма: err = %v, ожидался ErrInvalidAmount", err)
	}
	if store.users[1].Balance != 150 {
		t.Errorf("баланс изменился при отказе: %v", store.users[1].Balance)
	}
}

func TestHistory_LimitClamped(t *testing.T) {
	store := newFakeStore()
	store.users[1] = &User{UserID: 1}
	for i := 0; i < 30; i++ {
		store.txs = append(store.txs, &Transaction{UserID: 1, Type: TxTypeDeposit, Amount: 1})
	}
	svc := NewService(store, testConfig())

	txs, err := svc.History(context.Background(), 1, 0)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(txs) != 20 {
		t.Errorf("записей = %d, ожидалось 20 (дефолтный лимит)", len(txs))
	}

	txs, _ = svc.History(context.Background(), 1, 500)
	if len(txs) != 20 {
		t.Errorf("записей = %d, лимит выше 100 должен сбрасываться на 20", len(txs))
	}
}
