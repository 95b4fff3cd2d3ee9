// Package boost — repository.go выполняет операции с таблицей boost_orders.
package boost

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"mlwizard.ru/investment-bot/internal/common"
	"mlwizard.ru/investment-bot/internal/features/users"
)

// Repository работает с буст-заказами в БД.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository создаёт репозиторий буст-заказов.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// CreateOrder создаёт заказ: условно списывает оплату с основного баланса,
// создаёт запись заказа и пишет оплату в журнал. Всё в одной транзакции.
func (r *Repository) CreateOrder(ctx context.Context, userID int64, boostType string, amount float64) (*Order, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("ошибка начала транзакции: %w", err)
	}
	defer tx.Rollback(ctx)

	ct, err := tx.Exec(ctx, `
		UPDATE telegram_users
		SET balance = balance - $2
		WHERE user_id = $1 AND balance >= $2
	`, userID, amount)
	if err != nil {
		return nil, fmt.Errorf("ошибка списания оплаты: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return nil, common.ErrInsufficientFunds
	}

	var order Order
	err = tx.QueryRow(ctx, `
		INSERT INTO boost_orders (user_id, boost_type, amount, status)
		VALUES ($1, $2, $3, $4)
		RETURNING id, user_id, boost_type, amount, status, created_at
	`, userID, boostType, amount, OrderStatusPending).Scan(
		&order.ID, &order.UserID, &order.BoostType, &order.Amount, &order.Status, &order.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("ошибка создания заказа: %w", err)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO transactions (user_id, type, amount, status)
		VALUES ($1, $2, $3, $4)
	`, userID, users.TxTypeBoostPayment, amount, users.TxStatusCompleted)
	if err != nil {
		return nil, fmt.Errorf("ошибка записи транзакции: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("ошибка фиксации транзакции: %w", err)
	}
	return &order, nil
}
