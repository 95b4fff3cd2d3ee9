// Package rocket — crash.go: розыгрыш точки взрыва.
//
// Распределение кусочное, подобрано под заявленные игроку шансы:
// в 70% случаев ракетка взрывается ниже x1.50.
//
//	r ∈ [0,70)   → 1.00 + U·0.50
//	r ∈ [70,90)  → 1.50 + U·1.00
//	r ∈ [90,97)  → 2.50 + U·2.50
//	r ∈ [97,100) → 5.00 + U·10.00
//
// где r равномерно на [0,100), U — независимый равномерный [0,1).
// Результат округляется до двух знаков; диапазон [1.00, 15.00].
package rocket

import (
	"math/rand"

	"mlwizard.ru/investment-bot/internal/common"
)

// DrawCrashPoint разыгрывает точку взрыва из переданного источника
// случайности. Чистая функция от rng: никакого общего состояния.
func DrawCrashPoint(rng *rand.Rand) float64 {
	r := rng.Float64() * 100
	u := rng.Float64()

	var point float64
	switch {
	case r < 70:
		point = 1.00 + u*0.50
	case r < 90:
		point = 1.50 + u*1.00
	case r < 97:
		point = 2.50 + u*2.50
	default:
		point = 5.00 + u*10.00
	}

	return common.Round2(point)
}
