// Package boost реализует платные буст-заказы: услуга оплачивается
// с основного баланса в момент создания заказа.
package boost

import "time"

// Order — буст-заказ пользователя.
type Order struct {
	ID        int64     `db:"id"`
	UserID    int64     `db:"user_id"`
	BoostType string    `db:"boost_type"`
	Amount    float64   `db:"amount"`
	Status    string    `db:"status"` // pending, пока заказ не обработан вручную
	CreatedAt time.Time `db:"created_at"`
}

// Статусы заказов
const (
	OrderStatusPending   = "pending"
	OrderStatusCompleted = "completed"
)
