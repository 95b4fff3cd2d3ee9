// Package rocket — repository.go выполняет операции с таблицей rocket_games
// и балансом игрока. Списание ставки и зачисление выигрыша — условные
// UPDATE, чтобы параллельные раунды не увели баланс в минус.
package rocket

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"mlwizard.ru/investment-bot/internal/common"
)

// Repository работает с раундами ракетки в БД.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository создаёт репозиторий ракетки.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// PlaceBet условно списывает ставку с основного баланса.
// Одна атомарная команда: декремент и проверка остатка вместе.
func (r *Repository) PlaceBet(ctx context.Context, userID int64, bet float64) error {
	ct, err := r.db.Exec(ctx, `
		UPDATE telegram_users
		SET balance = balance - $2
		WHERE user_id = $1 AND balance >= $2
	`, userID, bet)
	if err != nil {
		return fmt.Errorf("ошибка списания ставки: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return common.ErrInsufficientFunds
	}
	return nil
}

// SaveWin зачисляет выплату на баланс и пишет выигранный раунд.
// Атомарно: либо и выплата, и запись раунда, либо ничего.
func (r *Repository) SaveWin(ctx context.Context, game *Game, payout float64) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("ошибка начала транзакции: %w", err)
	}
	defer tx.Rollback(ctx)

	ct, err := tx.Exec(ctx, `
		UPDATE telegram_users SET balance = balance + $2 WHERE user_id = $1
	`, game.UserID, payout)
	if err != nil {
		return fmt.Errorf("ошибка зачисления выигрыша: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return fmt.Errorf("user_id=%d: %w", game.UserID, common.ErrUserNotFound)
	}

	if err := insertGame(ctx, tx, game); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// SaveLoss пишет проигранный раунд. Ставка уже списана на старте,
// баланс больше не трогаем.
func (r *Repository) SaveLoss(ctx context.Context, game *Game) error {
	if err := insertGame(ctx, r.db, game); err != nil {
		return err
	}
	return nil
}

// execer покрывает и пул, и открытую транзакцию.
type execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

func insertGame(ctx context.Context, db execer, game *Game) error {
	_, err := db.Exec(ctx, `
		INSERT INTO rocket_games (user_id, bet_amount, multiplier, crash_point, profit, won)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, game.UserID, game.BetAmount, game.Multiplier, game.CrashPoint, game.Profit, game.Won)
	if err != nil {
		return fmt.Errorf("ошибка записи раунда: %w", err)
	}
	return nil
}

// History возвращает последние раунды пользователя, новые первыми.
func (r *Repository) History(ctx context.Context, userID int64, limit int) ([]*Game, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, user_id, bet_amount, multiplier, crash_point, profit, won, created_at
		FROM rocket_games
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения истории: %w", err)
	}
	defer rows.Close()

	var games []*Game
	for rows.Next() {
		var g Game
		if err := rows.Scan(
			&g.ID, &g.UserID, &g.BetAmount, &g.Multiplier,
			&g.CrashPoint, &g.Profit, &g.Won, &g.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("ошибка сканирования раунда: %w", err)
		}
		games = append(games, &g)
	}
	return games, rows.Err()
}
