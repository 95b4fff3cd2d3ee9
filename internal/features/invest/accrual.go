// Package invest — accrual.go: чистая арифметика начисления процентов.
//
// Начисление ленивое: вызывается в начале каждой операции, читающей баланс.
// last_collect сбрасывается на текущее время при КАЖДОМ применении, даже если
// начислено ноль — повторный вызов без прошедшего времени даёт ноль и ничего
// не удваивает. Сумма начислений по подынтервалам равна начислению за весь
// интервал, сколько бы раз функцию ни вызвали между двумя моментами времени.
package invest

import "time"

// secondsPerDay — знаменатель перевода прошедшего времени в дни.
const secondsPerDay = 86400

// ComputeAccrual вычисляет проценты по одной позиции на момент now.
//
// Параметры:
//   - amount: принципал
//   - accumulated: уже накопленная несобранная прибыль
//   - rate: дневная ставка (0.01 = 1% в день)
//   - lastCollect: якорь последнего начисления
//   - now: текущее время
//
// Возвращает начисленную за интервал сумму и новое значение accumulated.
// Новый якорь last_collect — всегда now; его запись — забота вызывающего.
func ComputeAccrual(amount, accumulated, rate float64, lastCollect, now time.Time) (accrued, newAccumulated float64) {
	elapsedDays := now.Sub(lastCollect).Seconds() / secondsPerDay
	if elapsedDays < 0 {
		// Часы уехали назад — не начисляем и не списываем
		elapsedDays = 0
	}
	accrued = amount * rate * elapsedDays
	return accrued, accumulated + accrued
}
