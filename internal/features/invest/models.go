// Package invest реализует инвестиционные позиции с ленивым начислением
// процентов: доходность пересчитывается при каждом обращении к балансу,
// фонового тикера нет.
// models.go описывает структуру инвестиции.
package invest

import "time"

// Investment представляет одну инвестиционную позицию пользователя.
// Принципал (amount) неизменен после создания; accumulated копит
// неснятую прибыль и обнуляется при сборе.
type Investment struct {
	ID          int64     `db:"id"`
	UserID      int64     `db:"user_id"`
	Amount      float64   `db:"amount"`       // Принципал, неизменен
	Accumulated float64   `db:"accumulated"`  // Несобранная прибыль
	LastCollect time.Time `db:"last_collect"` // Якорь начисления: от него считается прошедшее время
	IsActive    bool      `db:"is_active"`    // Позиции никогда не удаляются, только деактивируются
	StartDate   time.Time `db:"start_date"`
}

// UserAccumulated — суммарная несобранная прибыль одного пользователя.
// Используется ежедневным напоминанием в планировщике.
type UserAccumulated struct {
	UserID int64
	Total  float64
}
