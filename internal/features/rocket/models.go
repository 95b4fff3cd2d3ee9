// Package rocket реализует игру «ракетка»: ставка списывается на старте,
// точка взрыва разыгрывается заранее, кэшаут до взрыва приносит выигрыш.
// models.go описывает структуру записи раунда.
package rocket

import "time"

// Game — запись одного раунда в БД. Append-only: раунд пишется один раз,
// при кэшауте или проигрыше, и никогда не изменяется.
type Game struct {
	ID         int64     `db:"id"`
	UserID     int64     `db:"user_id"`
	BetAmount  float64   `db:"bet_amount"`
	Multiplier float64   `db:"multiplier"`  // Множитель кэшаута; при проигрыше — точка взрыва
	CrashPoint float64   `db:"crash_point"` // Точка взрыва раунда
	Profit     float64   `db:"profit"`      // Знаковый: чистый выигрыш или -ставка
	Won        bool      `db:"won"`
	CreatedAt  time.Time `db:"created_at"`
}
