package service

import (
	"errors"
	"testing"
	"time"

	"diamond_store/internal/domain"
)

func welcomePromoFor(userID int64, now time.Time) *domain.PromoCode {
	return &domain.PromoCode{
		ID:          1,
		Code:        "WELCOME-100",
		Kind:        domain.DiscountFirstOrder,
		Value:       10,
		MaxUses:     1,
		ValidUntil:  now.Add(7 * 24 * time.Hour),
		PersonalFor: &userID,
		Active:      true,
	}
}

func TestCheckRedeemable(t *testing.T) {
	now := time.Now()
	userID := int64(42)

	valid := &domain.PromoCode{
		ID:         2,
		Code:       "SUMMER25",
		Kind:       domain.DiscountPercent,
		Value:      25,
		MaxUses:    100,
		MinOrder:   500,
		ValidUntil: now.Add(24 * time.Hour),
		Active:     true,
	}

	cases := []struct {
		name          string
		mutate        func(p *domain.PromoCode)
		orderAmount   int64
		used          bool
		purchaseCount int
		wantErr       error
	}{
		{name: "валидный код", orderAmount: 1000},
		{name: "выключенный код", mutate: func(p *domain.PromoCode) { p.Active = false }, orderAmount: 1000, wantErr: ErrPromoNotFound},
		{name: "чужой личный код", mutate: func(p *domain.PromoCode) { other := int64(7); p.PersonalFor = &other }, orderAmount: 1000, wantErr: ErrPromoNotFound},
		{name: "истёкший срок", mutate: func(p *domain.PromoCode) { p.ValidUntil = now.Add(-time.Hour) }, orderAmount: 1000, wantErr: ErrPromoExpired},
		{name: "исчерпанный лимит", mutate: func(p *domain.PromoCode) { p.CurrentUses = p.MaxUses }, orderAmount: 1000, wantErr: ErrPromoExhausted},
		{name: "заказ меньше минимума", orderAmount: 499, wantErr: ErrPromoBelowMinimum},
		{name: "повторное использование", orderAmount: 1000, used: true, wantErr: ErrPromoAlreadyUsed},
		{name: "first_order после покупок", mutate: func(p *domain.PromoCode) { p.Kind = domain.DiscountFirstOrder }, orderAmount: 1000, purchaseCount: 3, wantErr: ErrPromoNotFirstOrder},
		{name: "first_order без покупок", mutate: func(p *domain.PromoCode) { p.Kind = domain.DiscountFirstOrder }, orderAmount: 1000},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			p := *valid
			if c.mutate != nil {
				c.mutate(&p)
			}
			err := CheckRedeemable(&p, userID, c.orderAmount, c.used, c.purchaseCount, now)
			if !errors.Is(err, c.wantErr) {
				t.Errorf("CheckRedeemable: получено %v, ожидалось %v", err, c.wantErr)
			}
		})
	}

	if err := CheckRedeemable(nil, userID, 1000, false, 0, now); !errors.Is(err, ErrPromoNotFound) {
		t.Errorf("nil промокод: получено %v, ожидалась ErrPromoNotFound", err)
	}

	// свой личный приветственный код должен проходить
	welcome := welcomePromoFor(userID, now)
	if err := CheckRedeemable(welcome, userID, 1000, false, 0, now); err != nil {
		t.Errorf("личный приветственный код: неожиданная ошибка %v", err)
	}
}

func TestComputeDiscountPercent(t *testing.T) {
	p := &domain.PromoCode{Kind: domain.DiscountPercent, Value: 10}

	if got := ComputeDiscount(p, 1000, 15, 50); got != 100 {
		t.Errorf("10%% от 1000 = %d, ожидалось 100", got)
	}

	// 25% упирается в глобальный потолок 15%
	p.Value = 25
	if got := ComputeDiscount(p, 1000, 15, 50); got != 150 {
		t.Errorf("25%% от 1000 с потолком 15%% = %d, ожидалось 150", got)
	}
}

func TestComputeDiscountFixed(t *testing.T) {
	// фиксированная скидка не опускает сумму к оплате ниже 50
	p := &domain.PromoCode{Kind: domain.DiscountFixed, Value: 80}
	if got := ComputeDiscount(p, 100, 100, 50); got != 50 {
		t.Errorf("фиксированные 80 от 100 с полом 50 = %d, ожидалось 50", got)
	}

	// и дополнительно ограничена потолком в % от заказа
	if got := ComputeDiscount(p, 100, 15, 50); got != 15 {
		t.Errorf("фиксированные 80 от 100 с потолком 15%% = %d, ожидалось 15", got)
	}

	// заказ ниже пола: скидка не может быть отрицательной
	p.Value = 10
	if got := ComputeDiscount(p, 40, 15, 50); got != 0 {
		t.Errorf("заказ 40 при поле 50 = %d, ожидалось 0", got)
	}
}

func TestComputeDiscountFirstOrder(t *testing.T) {
	p := &domain.PromoCode{Kind: domain.DiscountFirstOrder, Value: 10}
	if got := ComputeDiscount(p, 1000, 15, 50); got != 100 {
		t.Errorf("приветственные 10%% от 1000 = %d, ожидалось 100", got)
	}
}

func TestNormalizeCode(t *testing.T) {
	cases := map[string]string{
		"  summer25  ": "SUMMER25",
		"Welcome-100":  "WELCOME-100",
		"ABC":          "ABC",
	}
	for in, want := range cases {
		if got := NormalizeCode(in); got != want {
			t.Errorf("NormalizeCode(%q) = %q, ожидалось %q", in, got, want)
		}
	}
}
