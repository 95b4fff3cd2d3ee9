// Package users управляет пользователями мини-приложения и их кошельками.
// models.go описывает структуры для таблиц telegram_users и transactions.
package users

import "time"

// User представляет пользователя мини-приложения.
// Создаётся при первом контакте (через бота или через API) с нулевым
// или стартовым балансом и уникальным реферальным кодом.
type User struct {
	UserID          int64     `db:"user_id"`          // Telegram user ID
	Username        string    `db:"username"`         // Username в Telegram (может быть пустым)
	Balance         float64   `db:"balance"`          // Основной баланс (кошелёк), всегда >= 0
	WithdrawBalance float64   `db:"withdraw_balance"` // Собранная прибыль, доступная к выводу, всегда >= 0
	PartnersCount   int       `db:"partners_count"`   // Количество приглашённых партнёров
	ReferralCode    string    `db:"referral_code"`    // Уникальный реферальный код
	CreatedAt       time.Time `db:"created_at"`
}

// Transaction представляет одну запись журнала операций.
// Журнал append-only: записи никогда не изменяются после вставки.
type Transaction struct {
	ID        int64     `db:"id"`
	UserID    int64     `db:"user_id"`
	Type      string    `db:"type"`   // investment, collect, withdrawal, ...
	Amount    float64   `db:"amount"` // Сумма операции (всегда положительная)
	Status    string    `db:"status"` // completed или pending
	CreatedAt time.Time `db:"created_at"`
}

// Допустимые типы транзакций
const (
	TxTypeInvestment    = "investment"     // Открытие инвестиции
	TxTypeCollect       = "collect"        // Сбор накопленной прибыли
	TxTypeWithdrawal    = "withdrawal"     // Заявка на вывод средств
	TxTypeDeposit       = "deposit"        // Пополнение баланса
	TxTypeCardBonus     = "card_bonus"     // Бонус за привязку карты
	TxTypeReferralBonus = "referral_bonus" // Бонус за приглашённого партнёра
	TxTypeBoostPayment  = "boost_payment"  // Оплата буст-заказа
)

// Статусы транзакций
const (
	TxStatusCompleted = "completed"
	TxStatusPending   = "pending"
)
