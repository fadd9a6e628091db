package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"diamond_store/internal/domain"
)

func TestOrderFlow(t *testing.T) {
	s := New(100, "ru", 2, "500 алмазов", 900, domain.CurrencyRUB)

	if s.Step != StepPlayerID {
		t.Fatalf("новая сессия на шаге %s, ожидался %s", s.Step, StepPlayerID)
	}
	if s.FinalPrice != 900 {
		t.Fatalf("начальная сумма к оплате %d, ожидалось 900", s.FinalPrice)
	}

	if err := s.EnterPlayerID("1234567"); err != nil {
		t.Fatalf("ввод игрового ID: %v", err)
	}
	if s.Step != StepPromo {
		t.Fatalf("после ввода ID шаг %s, ожидался %s", s.Step, StepPromo)
	}

	if err := s.ApplyPromo("SUMMER25", 135); err != nil {
		t.Fatalf("применение промокода: %v", err)
	}
	if s.FinalPrice != 765 {
		t.Fatalf("сумма после скидки %d, ожидалось 765", s.FinalPrice)
	}
	if s.Step != StepPayment {
		t.Fatalf("после промокода шаг %s, ожидался %s", s.Step, StepPayment)
	}

	if err := s.ChooseMethod(domain.PayBank, "order-1", ""); err != nil {
		t.Fatalf("выбор оплаты: %v", err)
	}
	if !s.AwaitingProof() {
		t.Fatal("после выбора оплаты сессия должна ждать чек")
	}
}

func TestSkipPromoKeepsPrice(t *testing.T) {
	s := New(100, "kz", 0, "100 алмазов", 1200, domain.CurrencyKZT)

	if err := s.EnterPlayerID("55555"); err != nil {
		t.Fatalf("ввод игрового ID: %v", err)
	}
	if err := s.SkipPromo(); err != nil {
		t.Fatalf("пропуск промокода: %v", err)
	}
	if s.FinalPrice != 1200 {
		t.Errorf("сумма после пропуска %d, ожидалось 1200", s.FinalPrice)
	}
	if s.Step != StepPayment {
		t.Errorf("после пропуска шаг %s, ожидался %s", s.Step, StepPayment)
	}
}

func TestWrongStepRejected(t *testing.T) {
	s := New(100, "ru", 0, "100 алмазов", 100, domain.CurrencyRUB)

	// до ввода игрового ID ни промокод, ни оплата недоступны
	if err := s.ApplyPromo("ABC", 10); !errors.Is(err, ErrWrongStep) {
		t.Errorf("ApplyPromo на первом шаге: %v, ожидалась ErrWrongStep", err)
	}
	if err := s.SkipPromo(); !errors.Is(err, ErrWrongStep) {
		t.Errorf("SkipPromo на первом шаге: %v, ожидалась ErrWrongStep", err)
	}
	if err := s.ChooseMethod(domain.PayCrypto, "order-1", "url"); !errors.Is(err, ErrWrongStep) {
		t.Errorf("ChooseMethod на первом шаге: %v, ожидалась ErrWrongStep", err)
	}
}

func TestEnterPlayerIDInvalid(t *testing.T) {
	cases := []struct {
		input   string
		wantErr error
	}{
		{"abc123", ErrPlayerIDNotDigit},
		{"12 34 56", ErrPlayerIDNotDigit},
		{"1234", ErrPlayerIDLength},
		{"1234567890123", ErrPlayerIDLength},
		{"", ErrPlayerIDLength},
	}

	for _, c := range cases {
		s := New(100, "ru", 0, "100 алмазов", 100, domain.CurrencyRUB)
		err := s.EnterPlayerID(c.input)
		if !errors.Is(err, c.wantErr) {
			t.Errorf("EnterPlayerID(%q): %v, ожидалась %v", c.input, err, c.wantErr)
		}
		// невалидный ввод оставляет сессию на том же шаге
		if s.Step != StepPlayerID {
			t.Errorf("EnterPlayerID(%q): шаг %s, ожидался %s", c.input, s.Step, StepPlayerID)
		}
	}
}

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(time.Hour)

	if got, err := store.Get(ctx, 1); err != nil || got != nil {
		t.Fatalf("пустое хранилище: (%v, %v), ожидалось (nil, nil)", got, err)
	}

	s := New(1, "ru", 0, "100 алмазов", 100, domain.CurrencyRUB)
	if err := store.Put(ctx, 1, s); err != nil {
		t.Fatalf("сохранение: %v", err)
	}

	got, err := store.Get(ctx, 1)
	if err != nil || got == nil {
		t.Fatalf("чтение: (%v, %v)", got, err)
	}
	if got.ItemTitle != "100 алмазов" {
		t.Errorf("прочитана чужая сессия: %q", got.ItemTitle)
	}

	if err := store.Delete(ctx, 1); err != nil {
		t.Fatalf("удаление: %v", err)
	}
	if got, _ := store.Get(ctx, 1); got != nil {
		t.Error("сессия осталась после удаления")
	}
}

func TestMemoryStoreTTL(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(time.Millisecond)

	s := New(1, "ru", 0, "100 алмазов", 100, domain.CurrencyRUB)
	if err := store.Put(ctx, 1, s); err != nil {
		t.Fatalf("сохранение: %v", err)
	}

	time.Sleep(5 * time.Millisecond)

	if got, err := store.Get(ctx, 1); err != nil || got != nil {
		t.Errorf("истёкшая сессия: (%v, %v), ожидалось (nil, nil)", got, err)
	}
}
