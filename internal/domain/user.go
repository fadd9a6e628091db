package domain

import "time"

type User struct {
	ID               int64      `db:"id" json:"id"`
	TgID             int64      `db:"tg_id" json:"tg_id"`
	Username         string     `db:"username" json:"username"`
	FirstName        string     `db:"first_name" json:"first_name"`
	CreatedAt        time.Time  `db:"created_at" json:"created_at"`
	PurchaseCount    int        `db:"purchase_count" json:"purchase_count"`         // кол-во подтверждённых покупок
	TotalSpent       int64      `db:"total_spent" json:"total_spent"`               // всего потрачено (в валюте региона)
	BonusBalance     int64      `db:"bonus_balance" json:"bonus_balance"`           // накопленный реферальный бонус
	ReferralEarnings int64      `db:"referral_earnings" json:"referral_earnings"`   // заработано с рефералов за всё время
	ReferralCode     string     `db:"referral_code" json:"referral_code,omitempty"` // собственный код, выдаётся лениво
	ReferredBy       *int64     `db:"referred_by" json:"referred_by,omitempty"`     // кто пригласил; ставится один раз
	LastPurchaseAt   *time.Time `db:"last_purchase_at" json:"last_purchase_at,omitempty"`
}

// Валюты регионов магазина
type Currency string

const (
	CurrencyRUB Currency = "RUB"
	CurrencyKZT Currency = "KZT"
)

// Покупка считается юбилейной каждые N подтверждённых заказов
const MilestoneEvery = 5
