// Package common содержит общие утилиты, используемые во всём проекте.
// Сюда входят: округление денежных сумм, генерация реферальных кодов,
// русская плюрализация и форматирование.
package common

import (
	"crypto/rand"
	"fmt"
	"math"
	"time"
)

// referralAlphabet — символы реферального кода (заглавные латинские буквы и цифры).
const referralAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// ReferralCodeLength — длина реферального кода.
const ReferralCodeLength = 10

// Round2 округляет денежную сумму до двух знаков после запятой.
// Все суммы в ответах API и в записях журнала проходят через неё.
func Round2(x float64) float64 {
	return math.Round(x*100) / 100
}

// GenerateReferralCode генерирует случайный реферальный код.
// Используется crypto/rand, чтобы коды нельзя было предсказать.
func GenerateReferralCode() (string, error) {
	buf := make([]byte, ReferralCodeLength)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("ошибка генерации кода: %w", err)
	}
	for i, b := range buf {
		buf[i] = referralAlphabet[int(b)%len(referralAlphabet)]
	}
	return string(buf), nil
}

// FormatAmount форматирует денежную сумму для сообщений пользователю.
// Пример: FormatAmount(1500.5) → "1500.50₽"
func FormatAmount(amount float64) string {
	return fmt.Sprintf("%.2f₽", amount)
}

// PluralizeRubles возвращает правильную форму слова «рубль» для числа n.
//
// Правила русского языка:
//   - n%10==1 И n%100!=11 → "рубль" (1, 21, 31, 101, ...)
//   - n%10 в [2,4] И n%100 НЕ в [12,14] → "рубля" (2, 3, 4, 22, ...)
//   - Остальные случаи → "рублей" (0, 5-20, 25-30, 100, ...)
func PluralizeRubles(n int64) string {
	absN := int64(math.Abs(float64(n)))
	lastDigit := absN % 10
	lastTwoDigits := absN % 100

	if lastDigit == 1 && lastTwoDigits != 11 {
		return "рубль"
	}
	if lastDigit >= 2 && lastDigit <= 4 && (lastTwoDigits < 12 || lastTwoDigits > 14) {
		return "рубля"
	}
	return "рублей"
}

// FormatDateTime форматирует время для истории транзакций.
func FormatDateTime(t time.Time) string {
	return t.Format("02.01.2006 15:04")
}
