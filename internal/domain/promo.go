package domain

import (
	"regexp"
	"time"
)

// Виды скидок промокодов
type DiscountKind string

const (
	DiscountPercent    DiscountKind = "percent"     // процент от суммы заказа
	DiscountFixed      DiscountKind = "fixed"       // фиксированная сумма
	DiscountFirstOrder DiscountKind = "first_order" // процент, только для первого заказа
)

type PromoCode struct {
	ID          int64        `db:"id" json:"id"`
	Code        string       `db:"code" json:"code"` // хранится в верхнем регистре
	Kind        DiscountKind `db:"kind" json:"kind"`
	Value       int64        `db:"value" json:"value"` // процент или фиксированная сумма, по Kind
	MaxUses     int          `db:"max_uses" json:"max_uses"`
	CurrentUses int          `db:"current_uses" json:"current_uses"` // никогда не превышает MaxUses
	MinOrder    int64        `db:"min_order" json:"min_order"`
	ValidUntil  time.Time    `db:"valid_until" json:"valid_until"`
	Active      bool         `db:"active" json:"active"`
	PersonalFor *int64       `db:"personal_for" json:"personal_for,omitempty"` // личный код: доступен только этому пользователю
	IsWelcome   bool         `db:"is_welcome" json:"is_welcome"`               // приветственный код, выдаётся лениво
	CreatedBy   int64        `db:"created_by" json:"created_by"`
	CreatedAt   time.Time    `db:"created_at" json:"created_at"`
}

// Неизменяемый факт применения промокода: не более одной записи на пару (user, code)
type PromoUsage struct {
	ID          int64     `db:"id" json:"id"`
	UserID      int64     `db:"user_id" json:"user_id"`
	PromoID     int64     `db:"promo_id" json:"promo_id"`
	Code        string    `db:"code" json:"code"`
	Discount    int64     `db:"discount" json:"discount"`
	OrderAmount int64     `db:"order_amount" json:"order_amount"`
	UsedAt      time.Time `db:"used_at" json:"used_at"`
}

var promoCodeRe = regexp.MustCompile(`^[A-Z0-9-]{3,20}$`)

// ValidPromoCode проверяет формат кода: верхний регистр, цифры и дефис, 3-20 символов
func ValidPromoCode(code string) bool {
	return promoCodeRe.MatchString(code)
}
