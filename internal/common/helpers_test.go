package common

import (
	"strings"
	"testing"
)

func TestRound2(t *testing.T) {
	tests := []struct {
		name string
		in   float64
		want float64
	}{
		{"целое", 100, 100},
		{"два_знака", 249.99, 249.99},
		{"округление_вверх", 1.006, 1.01},
		{"округление_вниз", 2.4949, 2.49},
		// 1.005 не представим в float64 точно: ближайшее значение чуть
		// меньше половины копейки, поэтому округляется вниз
		{"половина_копейки_ниже", 1.005, 1.00},
		{"отрицательное", -100.006, -100.01},
		{"ноль", 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Round2(tt.in); got != tt.want {
				t.Errorf("Round2(%v) = %v, ожидалось %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestGenerateReferralCode(t *testing.T) {
	seen := make(map[string]bool)

	for i := 0; i < 100; i++ {
		code, err := GenerateReferralCode()
		if err != nil {
			t.Fatalf("неожиданная ошибка: %v", err)
		}
		if len(code) != ReferralCodeLength {
			t.Fatalf("длина кода %d, ожидалось %d", len(code), ReferralCodeLength)
		}
		for _, c := range code {
			if !strings.ContainsRune(referralAlphabet, c) {
				t.Fatalf("недопустимый символ %q в коде %s", c, code)
			}
		}
		seen[code] = true
	}

	// 100 кодов из 36^10 вариантов не должны совпадать
	if len(seen) != 100 {
		t.Errorf("найдены дубликаты: %d уникальных из 100", len(seen))
	}
}

func TestPluralizeRubles(t *testing.T) {
	tests := []struct {
		n    int64
		want string
	}{
		{1, "рубль"},
		{2, "рубля"},
		{5, "рублей"},
		{11, "рублей"},
		{14, "рублей"},
		{21, "рубль"},
		{22, "рубля"},
		{100, "рублей"},
		{101, "рубль"},
		{-3, "рубля"},
	}

	for _, tt := range tests {
		if got := PluralizeRubles(tt.n); got != tt.want {
			t.Errorf("PluralizeRubles(%d) = %q, ожидалось %q", tt.n, got, tt.want)
		}
	}
}
