// Package common — errors.go определяет пользовательские ошибки,
// которые используются во всех модулях приложения.
// Обработчики API различают их через errors.Is и превращают
// в подходящий HTTP-статус с понятным сообщением.
package common

import "errors"

// Ошибки кошелька и инвестиций
var (
	// ErrInsufficientFunds — на балансе недостаточно средств для списания
	ErrInsufficientFunds = errors.New("недостаточно средств")
	// ErrInsufficientWithdraw — на балансе вывода недостаточно средств
	ErrInsufficientWithdraw = errors.New("недостаточно средств для вывода")
	// ErrInvalidAmount — некорректная сумма (ноль, отрицательная или ниже минимума)
	ErrInvalidAmount = errors.New("некорректная сумма")
	// ErrUserNotFound — пользователь не найден в базе
	ErrUserNotFound = errors.New("пользователь не найден")
)

// Ошибки ракетки
var (
	// ErrInvalidMultiplier — множитель не положительный или выше точки взрыва
	ErrInvalidMultiplier = errors.New("некорректный множитель")
	// ErrRocketDisabled — игра отключена в настройках
	ErrRocketDisabled = errors.New("игра временно отключена")
)

// Ошибки бустов
var (
	// ErrBoostDisabled — буст-заказы отключены в настройках
	ErrBoostDisabled = errors.New("буст-заказы временно отключены")
)
