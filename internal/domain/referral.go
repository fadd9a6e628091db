package domain

import "time"

// Неизменяемый факт начисления реферального бонуса за подтверждённую покупку
type ReferralTransaction struct {
	ID          int64     `db:"id" json:"id"`
	ReferrerID  int64     `db:"referrer_id" json:"referrer_id"`
	ReferredID  int64     `db:"referred_id" json:"referred_id"`
	OrderID     string    `db:"order_id" json:"order_id"`
	OrderAmount int64     `db:"order_amount" json:"order_amount"`
	Currency    Currency  `db:"currency" json:"currency"`
	Bonus       int64     `db:"bonus" json:"bonus"`
	Discount    int64     `db:"discount" json:"discount"` // скидка, данная приглашённому
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

type ReferralStats struct {
	Code          string                `json:"code"`
	ReferredCount int                   `json:"referred_count"`
	TotalEarned   int64                 `json:"total_earned"`
	BonusBalance  int64                 `json:"bonus_balance"`
	Recent        []ReferralTransaction `json:"recent"`
}
