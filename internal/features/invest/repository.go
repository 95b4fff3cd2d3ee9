// Package invest — repository.go выполняет операции с таблицей investments.
// Каждая денежная операция (инвестиция, сбор, вывод) выполняется целиком
// в одной транзакции БД с условными UPDATE — баланс не может уйти в минус
// даже при одновременных запросах одного пользователя.
package invest

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"mlwizard.ru/investment-bot/internal/common"
	"mlwizard.ru/investment-bot/internal/features/users"
)

// Repository работает с инвестициями и связанными балансами в БД.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository создаёт репозиторий инвестиций.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// accrueLocked начисляет проценты по всем активным позициям пользователя
// внутри уже открытой транзакции. Строки блокируются FOR UPDATE, чтобы
// параллельный сбор не посчитал один интервал дважды.
// Возвращает сумму начисленного за этот проход.
func accrueLocked(ctx context.Context, tx pgx.Tx, userID int64, rate float64, now time.Time) (float64, error) {
	rows, err := tx.Query(ctx, `
		SELECT id, amount, accumulated, last_collect
		FROM investments
		WHERE user_id = $1 AND is_active = true
		FOR UPDATE
	`, userID)
	if err != nil {
		return 0, fmt.Errorf("ошибка чтения инвестиций: %w", err)
	}

	type accrualRow struct {
		id             int64
		newAccumulated float64
	}

	var (
		total   float64
		updates []accrualRow
	)
	for rows.Next() {
		var (
			id                  int64
			amount, accumulated float64
			lastCollect         time.Time
		)
		if err := rows.Scan(&id, &amount, &accumulated, &lastCollect); err != nil {
			rows.Close()
			return 0, fmt.Errorf("ошибка сканирования инвестиции: %w", err)
		}
		accrued, newAccumulated := ComputeAccrual(amount, accumulated, rate, lastCollect, now)
		total += accrued
		updates = append(updates, accrualRow{id: id, newAccumulated: newAccumulated})
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return 0, fmt.Errorf("ошибка перебора инвестиций: %w", err)
	}

	// last_collect сдвигается даже при нулевом начислении
	for _, u := range updates {
		if _, err := tx.Exec(ctx, `
			UPDATE investments SET accumulated = $2, last_collect = $3 WHERE id = $1
		`, u.id, u.newAccumulated, now); err != nil {
			return 0, fmt.Errorf("ошибка записи начисления: %w", err)
		}
	}

	return total, nil
}

// RunAccrual начисляет проценты по всем активным позициям пользователя
// в отдельной транзакции. Вызывается перед операциями чтения баланса.
func (r *Repository) RunAccrual(ctx context.Context, userID int64, rate float64, now time.Time) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("ошибка начала транзакции: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := accrueLocked(ctx, tx, userID, rate, now); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// CreateInvestment открывает инвестицию: условно списывает принципал
// с основного баланса, создаёт позицию и пишет запись в журнал.
// Если средств не хватает (или пользователя нет) — common.ErrInsufficientFunds,
// баланс не меняется.
func (r *Repository) CreateInvestment(ctx context.Context, userID int64, amount float64, now time.Time) (*Investment, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("ошибка начала транзакции: %w", err)
	}
	defer tx.Rollback(ctx)

	// Условное списание: декремент и проверка остатка одним UPDATE
	ct, err := tx.Exec(ctx, `
		UPDATE telegram_users
		SET balance = balance - $2
		WHERE user_id = $1 AND balance >= $2
	`, userID, amount)
	if err != nil {
		return nil, fmt.Errorf("ошибка списания с баланса: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return nil, common.ErrInsufficientFunds
	}

	var inv Investment
	err = tx.QueryRow(ctx, `
		INSERT INTO investments (user_id, amount, accumulated, is_active, last_collect, start_date)
		VALUES ($1, $2, 0, true, $3, $3)
		RETURNING id, user_id, amount, accumulated, last_collect, is_active, start_date
	`, userID, amount, now).Scan(
		&inv.ID, &inv.UserID, &inv.Amount, &inv.Accumulated,
		&inv.LastCollect, &inv.IsActive, &inv.StartDate,
	)
	if err != nil {
		return nil, fmt.Errorf("ошибка создания инвестиции: %w", err)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO transactions (user_id, type, amount, status)
		VALUES ($1, $2, $3, $4)
	`, userID, users.TxTypeInvestment, amount, users.TxStatusCompleted)
	if err != nil {
		return nil, fmt.Errorf("ошибка записи транзакции: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("ошибка фиксации транзакции: %w", err)
	}
	return &inv, nil
}

// Collect начисляет проценты, переносит всю несобранную прибыль
// в баланс вывода и обнуляет accumulated у затронутых позиций.
// Если собирать нечего — возвращает 0 без каких-либо изменений.
func (r *Repository) Collect(ctx context.Context, userID int64, rate float64, now time.Time) (float64, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("ошибка начала транзакции: %w", err)
	}
	defer tx.Rollback(ctx)

	// Начисление строго до чтения accumulated: сбор сразу после
	// открытия инвестиции даёт ноль, а не мусорные значения
	if _, err := accrueLocked(ctx, tx, userID, rate, now); err != nil {
		return 0, err
	}

	var total float64
	err = tx.QueryRow(ctx, `
		SELECT COALESCE(SUM(accumulated), 0)
		FROM investments
		WHERE user_id = $1 AND is_active = true
	`, userID).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("ошибка суммирования прибыли: %w", err)
	}

	if total <= 0 {
		// Нечего собирать — это не ошибка
		return 0, tx.Commit(ctx)
	}

	ct, err := tx.Exec(ctx, `
		UPDATE telegram_users
		SET withdraw_balance = withdraw_balance + $2
		WHERE user_id = $1
	`, userID, total)
	if err != nil {
		return 0, fmt.Errorf("ошибка зачисления прибыли: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return 0, fmt.Errorf("user_id=%d: %w", userID, common.ErrUserNotFound)
	}

	_, err = tx.Exec(ctx, `
		UPDATE investments SET accumulated = 0 WHERE user_id = $1 AND is_active = true
	`, userID)
	if err != nil {
		return 0, fmt.Errorf("ошибка обнуления прибыли: %w", err)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO transactions (user_id, type, amount, status)
		VALUES ($1, $2, $3, $4)
	`, userID, users.TxTypeCollect, total, users.TxStatusCompleted)
	if err != nil {
		return 0, fmt.Errorf("ошибка записи транзакции: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("ошибка фиксации транзакции: %w", err)
	}
	return total, nil
}

// Withdraw условно списывает сумму с баланса вывода и пишет pending-заявку
// в журнал. Фактическая выплата — внешний процесс, ядро её не выполняет.
func (r *Repository) Withdraw(ctx context.Context, userID int64, amount float64) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("ошибка начала транзакции: %w", err)
	}
	defer tx.Rollback(ctx)

	ct, err := tx.Exec(ctx, `
		UPDATE telegram_users
		SET withdraw_balance = withdraw_balance - $2
		WHERE user_id = $1 AND withdraw_balance >= $2
	`, userID, amount)
	if err != nil {
		return fmt.Errorf("ошибка списания с баланса вывода: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return common.ErrInsufficientWithdraw
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO transactions (user_id, type, amount, status)
		VALUES ($1, $2, $3, $4)
	`, userID, users.TxTypeWithdrawal, amount, users.TxStatusPending)
	if err != nil {
		return fmt.Errorf("ошибка записи транзакции: %w", err)
	}

	return tx.Commit(ctx)
}

// ActiveByUser возвращает активные позиции пользователя, новые первыми.
func (r *Repository) ActiveByUser(ctx context.Context, userID int64) ([]*Investment, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, user_id, amount, accumulated, last_collect, is_active, start_date
		FROM investments
		WHERE user_id = $1 AND is_active = true
		ORDER BY start_date DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения инвестиций: %w", err)
	}
	defer rows.Close()

	var invs []*Investment
	for rows.Next() {
		var inv Investment
		if err := rows.Scan(
			&inv.ID, &inv.UserID, &inv.Amount, &inv.Accumulated,
			&inv.LastCollect, &inv.IsActive, &inv.StartDate,
		); err != nil {
			return nil, fmt.Errorf("ошибка сканирования инвестиции: %w", err)
		}
		invs = append(invs, &inv)
	}
	return invs, rows.Err()
}

// Totals возвращает суммарный принципал и несобранную прибыль
// по активным позициям пользователя.
func (r *Repository) Totals(ctx context.Context, userID int64) (invested, accumulated float64, err error) {
	err = r.db.QueryRow(ctx, `
		SELECT COALESCE(SUM(amount), 0), COALESCE(SUM(accumulated), 0)
		FROM investments
		WHERE user_id = $1 AND is_active = true
	`, userID).Scan(&invested, &accumulated)
	if err != nil {
		return 0, 0, fmt.Errorf("ошибка получения сумм: %w", err)
	}
	return invested, accumulated, nil
}

// AccumulatedTotals возвращает пользователей с положительной несобранной
// прибылью. Используется ежедневным напоминанием.
func (r *Repository) AccumulatedTotals(ctx context.Context) ([]*UserAccumulated, error) {
	rows, err := r.db.Query(ctx, `
		SELECT user_id, SUM(accumulated)
		FROM investments
		WHERE is_active = true
		GROUP BY user_id
		HAVING SUM(accumulated) > 0
	`)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения накоплений: %w", err)
	}
	defer rows.Close()

	var totals []*UserAccumulated
	for rows.Next() {
		var ua UserAccumulated
		if err := rows.Scan(&ua.UserID, &ua.Total); err != nil {
			return nil, fmt.Errorf("ошибка сканирования накоплений: %w", err)
		}
		totals = append(totals, &ua)
	}
	return totals, rows.Err()
}
