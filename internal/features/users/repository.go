// Package users — repository.go выполняет все операции с таблицами
// telegram_users и transactions в БД.
package users

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"mlwizard.ru/investment-bot/internal/common"
)

// Repository предоставляет методы для работы с пользователями и журналом операций.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository создаёт репозиторий пользователей.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// GetByUserID возвращает пользователя по Telegram ID.
// Если не найден — common.ErrUserNotFound (errors.Is == true).
func (r *Repository) GetByUserID(ctx context.Context, userID int64) (*User, error) {
	query := `
		SELECT user_id, username, balance, withdraw_balance, partners_count, referral_code, created_at
		FROM telegram_users
		WHERE user_id = $1
	`
	var u User
	err := r.db.QueryRow(ctx, query, userID).Scan(
		&u.UserID, &u.Username, &u.Balance, &u.WithdrawBalance,
		&u.PartnersCount, &u.ReferralCode, &u.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("user_id=%d: %w", userID, common.ErrUserNotFound)
		}
		return nil, fmt.Errorf("ошибка чтения пользователя (user_id=%d): %w", userID, err)
	}
	return &u, nil
}

// CreateIfAbsent создаёт запись пользователя, если её ещё нет.
// На конфликте по user_id ничего не делает — повторный вызов безопасен.
// Возвращает актуальную запись в любом случае.
func (r *Repository) CreateIfAbsent(ctx context.Context, userID int64, username string, seedBalance float64, referralCode string) (*User, error) {
	query := `
		INSERT INTO telegram_users (user_id, username, balance, withdraw_balance, partners_count, referral_code)
		VALUES ($1, $2, $3, 0, 0, $4)
		ON CONFLICT (user_id) DO NOTHING
	`
	_, err := r.db.Exec(ctx, query, userID, username, seedBalance, referralCode)
	if err != nil {
		return nil, fmt.Errorf("ошибка создания пользователя: %w", err)
	}
	return r.GetByUserID(ctx, userID)
}

// CreditBalance начисляет средства на основной баланс и пишет запись в журнал.
// Используется для пополнений и бонусов. Атомарно: либо обе записи, либо ни одной.
func (r *Repository) CreditBalance(ctx context.Context, userID int64, amount float64, txType string) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("ошибка начала транзакции: %w", err)
	}
	defer tx.Rollback(ctx)

	ct, err := tx.Exec(ctx, `
		UPDATE telegram_users SET balance = balance + $2 WHERE user_id = $1
	`, userID, amount)
	if err != nil {
		return fmt.Errorf("ошибка начисления: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return fmt.Errorf("user_id=%d: %w", userID, common.ErrUserNotFound)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO transactions (user_id, type, amount, status)
		VALUES ($1, $2, $3, 'completed')
	`, userID, txType, amount)
	if err != nil {
		return fmt.Errorf("ошибка записи транзакции: %w", err)
	}

	return tx.Commit(ctx)
}

// Transactions возвращает последние N записей журнала пользователя.
func (r *Repository) Transactions(ctx context.Context, userID int64, limit int) ([]*Transaction, error) {
	query := `
		SELECT id, user_id, type, amount, status, created_at
		FROM transactions
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`
	rows, err := r.db.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения транзакций: %w", err)
	}
	defer rows.Close()

	var txs []*Transaction
	for rows.Next() {
		var t Transaction
		if err := rows.Scan(&t.ID, &t.UserID, &t.Type, &t.Amount, &t.Status, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("ошибка сканирования транзакции: %w", err)
		}
		txs = append(txs, &t)
	}
	return txs, rows.Err()
}
