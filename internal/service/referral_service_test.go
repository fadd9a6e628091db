package service

import (
	"strings"
	"testing"
	"time"
)

func newTestReferralService() *ReferralService {
	// репозитории не трогаются: тестируются только чистые расчёты
	return NewReferralService(nil, ReferralConfig{
		BonusPercent:    3,
		DiscountPercent: 5,
		MaxBonus:        300,
		MinOrder:        100,
	})
}

func TestComputeBonus(t *testing.T) {
	s := newTestReferralService()

	cases := []struct {
		name          string
		orderAmount   int64
		purchaseCount int
		want          int64
	}{
		{"новичок без множителя", 1000, 0, 30},
		{"серебро удваивает", 1000, 25, 60},
		{"золото утраивает", 1000, 50, 90},
		{"потолок за заказ", 100000, 50, 300},
		{"мелкий заказ даёт ноль", 10, 0, 0},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := s.ComputeBonus(c.orderAmount, c.purchaseCount); got != c.want {
				t.Errorf("ComputeBonus(%d, %d) = %d, ожидалось %d",
					c.orderAmount, c.purchaseCount, got, c.want)
			}
		})
	}
}

func TestComputeBonusMonotonic(t *testing.T) {
	s := newTestReferralService()

	// больше покупок у пригласившего — не меньше бонус
	prev := int64(-1)
	for count := 0; count <= 60; count++ {
		bonus := s.ComputeBonus(1000, count)
		if bonus < prev {
			t.Fatalf("бонус убывает на %d покупках: %d < %d", count, bonus, prev)
		}
		prev = bonus
	}
}

func TestComputeReferredDiscount(t *testing.T) {
	s := newTestReferralService()

	if got := s.ComputeReferredDiscount(1000); got != 50 {
		t.Errorf("скидка приглашённому от 1000 = %d, ожидалось 50", got)
	}
	if got := s.ComputeReferredDiscount(10); got != 0 {
		t.Errorf("скидка от 10 = %d, ожидалось 0", got)
	}
}

func TestGenerateReferralCode(t *testing.T) {
	now := time.Now()
	code := GenerateReferralCode(123456789, now)

	if !strings.HasPrefix(code, "REF") {
		t.Errorf("код %q не начинается с REF", code)
	}
	for _, r := range code {
		if !strings.ContainsRune(base36, r) {
			t.Errorf("код %q содержит недопустимый символ %q", code, r)
		}
	}

	// один пользователь в один момент — один и тот же код
	if again := GenerateReferralCode(123456789, now); again != code {
		t.Errorf("коды для одного момента различаются: %q != %q", code, again)
	}

	// разные пользователи — разные коды
	if other := GenerateReferralCode(987654321, now); other == code {
		t.Errorf("коды разных пользователей совпали: %q", code)
	}
}

func TestEncodeBase36(t *testing.T) {
	cases := map[int64]string{
		0:   "0",
		1:   "1",
		35:  "Z",
		36:  "10",
		100: "2S",
	}
	for n, want := range cases {
		if got := encodeBase36(n); got != want {
			t.Errorf("encodeBase36(%d) = %q, ожидалось %q", n, got, want)
		}
	}
}
