package session

import (
	"context"
	"errors"
	"time"

	"diamond_store/internal/domain"
)

// Шаги оформления заказа. Выбор позиции каталога сразу переводит сессию
// к вводу игрового ID.
type Step string

const (
	StepPlayerID Step = "player_id" // ждём игровой ID
	StepPromo    Step = "promo"     // ждём промокод или пропуск
	StepPayment  Step = "payment"   // ждём выбор способа оплаты
	StepProof    Step = "proof"     // ждём скриншот чека
)

var (
	ErrWrongStep        = errors.New("действие не соответствует текущему шагу заказа")
	ErrPlayerIDNotDigit = errors.New("игровой ID должен состоять только из цифр")
	ErrPlayerIDLength   = errors.New("игровой ID должен содержать от 5 до 12 цифр")
)

// Session — состояние одного оформляемого заказа. Живёт только на время
// оформления: создаётся при выборе позиции, удаляется при закрытии или
// по TTL хранилища.
type Session struct {
	TgID      int64           `json:"tg_id"`
	Step      Step            `json:"step"`
	Region    string          `json:"region"`
	ItemIndex int             `json:"item_index"`
	ItemTitle string          `json:"item_title"`
	Price     int64           `json:"price"`
	Currency  domain.Currency `json:"currency"`

	PlayerID   string `json:"player_id,omitempty"`
	PromoCode  string `json:"promo_code,omitempty"`
	Discount   int64  `json:"discount,omitempty"`
	FinalPrice int64  `json:"final_price"`

	OrderID    string               `json:"order_id,omitempty"`
	Method     domain.PaymentMethod `json:"method,omitempty"`
	InvoiceURL string               `json:"invoice_url,omitempty"`

	StartedAt time.Time `json:"started_at"`
}

// New создаёт сессию для выбранной позиции каталога
func New(tgID int64, region string, itemIndex int, title string, price int64, currency domain.Currency) *Session {
	return &Session{
		TgID:       tgID,
		Step:       StepPlayerID,
		Region:     region,
		ItemIndex:  itemIndex,
		ItemTitle:  title,
		Price:      price,
		Currency:   currency,
		FinalPrice: price,
		StartedAt:  time.Now(),
	}
}

// EnterPlayerID принимает игровой ID. Невалидный ввод оставляет сессию на
// текущем шаге, ошибка описывает конкретную причину.
func (s *Session) EnterPlayerID(text string) error {
	if s.Step != StepPlayerID {
		return ErrWrongStep
	}
	if err := ValidatePlayerID(text); err != nil {
		return err
	}
	s.PlayerID = text
	s.Step = StepPromo
	return nil
}

// ApplyPromo фиксирует проверенную скидку в сессии. Слот промокода при этом
// не потребляется — это произойдёт только при подтверждении оплаты.
func (s *Session) ApplyPromo(code string, discount int64) error {
	if s.Step != StepPromo {
		return ErrWrongStep
	}
	s.PromoCode = code
	s.Discount = discount
	s.FinalPrice = s.Price - discount
	s.Step = StepPayment
	return nil
}

// SkipPromo пропускает ввод промокода
func (s *Session) SkipPromo() error {
	if s.Step != StepPromo {
		return ErrWrongStep
	}
	s.Step = StepPayment
	return nil
}

// ChooseMethod фиксирует способ оплаты и созданный заказ. Для крипто-оплаты
// вызывается только после успешного создания инвойса: при ошибке провайдера
// сессия остаётся на шаге выбора оплаты.
func (s *Session) ChooseMethod(method domain.PaymentMethod, orderID, invoiceURL string) error {
	if s.Step != StepPayment {
		return ErrWrongStep
	}
	s.Method = method
	s.OrderID = orderID
	s.InvoiceURL = invoiceURL
	s.Step = StepProof
	return nil
}

// AwaitingProof сообщает, ждёт ли сессия скриншот чека
func (s *Session) AwaitingProof() bool {
	return s.Step == StepProof
}

// ValidatePlayerID проверяет формат игрового ID: только цифры, 5-12 знаков
func ValidatePlayerID(text string) error {
	for _, r := range text {
		if r < '0' || r > '9' {
			return ErrPlayerIDNotDigit
		}
	}
	if len(text) < 5 || len(text) > 12 {
		return ErrPlayerIDLength
	}
	return nil
}

// Store — хранилище сессий по tg id. Get возвращает nil для отсутствующей
// или истёкшей сессии.
type Store interface {
	Get(ctx context.Context, tgID int64) (*Session, error)
	Put(ctx context.Context, tgID int64, s *Session) error
	Delete(ctx context.Context, tgID int64) error
}
