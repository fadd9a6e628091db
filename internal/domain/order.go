package domain

import "time"

// Способы оплаты
type PaymentMethod string

const (
	PayBank    PaymentMethod = "bank"    // перевод на карту
	PayEWallet PaymentMethod = "ewallet" // электронный кошелёк региона
	PayCrypto  PaymentMethod = "crypto"  // крипто-инвойс через Crypto Pay
)

// Статусы заказа
const (
	OrderPending   = "pending"   // создан, ждёт оплаты/подтверждения
	OrderConfirmed = "confirmed" // оплата подтверждена, счётчики обновлены
	OrderDeclined  = "declined"  // отклонён админом
)

// Order — подтверждённый или ожидающий заказ. OrderID уникален и служит
// ключом идемпотентности при подтверждении оплаты.
type Order struct {
	ID          int64         `db:"id" json:"id"`
	OrderID     string        `db:"order_id" json:"order_id"`
	UserID      int64         `db:"user_id" json:"user_id"`
	Region      string        `db:"region" json:"region"`
	ItemTitle   string        `db:"item_title" json:"item_title"`
	PlayerID    string        `db:"player_id" json:"player_id"`
	Amount      int64         `db:"amount" json:"amount"` // сумма к оплате после скидки
	Currency    Currency      `db:"currency" json:"currency"`
	PromoCode   string        `db:"promo_code" json:"promo_code,omitempty"`
	Discount    int64         `db:"discount" json:"discount"`
	Method      PaymentMethod `db:"method" json:"method"`
	Status      string        `db:"status" json:"status"`
	ConfirmedBy string        `db:"confirmed_by" json:"confirmed_by,omitempty"` // "auto" или tg id админа
	CreatedAt   time.Time     `db:"created_at" json:"created_at"`
	ConfirmedAt *time.Time    `db:"confirmed_at" json:"confirmed_at,omitempty"`
}
