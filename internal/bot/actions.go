package bot

import (
	"errors"
	"strconv"
	"strings"

	"diamond_store/internal/domain"
)

// ActionKind — закрытое множество действий, закодированных в callback-токенах
// инлайн-клавиатур. Токен разбирается один раз на границе, дальше диспетчеризация
// идёт по типу, а не по префиксам строк.
type ActionKind int

const (
	ActionShowRegion ActionKind = iota // region_<code>
	ActionSelectItem                   // item_<region>_<index>
	ActionSkipPromo                    // promo_skip
	ActionPayMethod                    // pay_<method>
	ActionConfirmOrder                 // confirm_<orderID> (только админ)
	ActionDeclineOrder                 // decline_<orderID> (только админ)
	ActionBackToShop                   // shop
)

type Action struct {
	Kind    ActionKind
	Region  string
	Index   int
	Method  domain.PaymentMethod
	OrderID string
}

var ErrUnknownAction = errors.New("неизвестный callback-токен")

// ParseAction разбирает callback-токен в Action
func ParseAction(data string) (Action, error) {
	switch {
	case data == "shop":
		return Action{Kind: ActionBackToShop}, nil

	case data == "promo_skip":
		return Action{Kind: ActionSkipPromo}, nil

	case strings.HasPrefix(data, "region_"):
		return Action{Kind: ActionShowRegion, Region: strings.TrimPrefix(data, "region_")}, nil

	case strings.HasPrefix(data, "item_"):
		parts := strings.Split(data, "_")
		if len(parts) != 3 {
			return Action{}, ErrUnknownAction
		}
		index, err := strconv.Atoi(parts[2])
		if err != nil || index < 0 {
			return Action{}, ErrUnknownAction
		}
		return Action{Kind: ActionSelectItem, Region: parts[1], Index: index}, nil

	case strings.HasPrefix(data, "pay_"):
		method := domain.PaymentMethod(strings.TrimPrefix(data, "pay_"))
		switch method {
		case domain.PayBank, domain.PayEWallet, domain.PayCrypto:
			return Action{Kind: ActionPayMethod, Method: method}, nil
		}
		return Action{}, ErrUnknownAction

	case strings.HasPrefix(data, "confirm_"):
		orderID := strings.TrimPrefix(data, "confirm_")
		if orderID == "" {
			return Action{}, ErrUnknownAction
		}
		return Action{Kind: ActionConfirmOrder, OrderID: orderID}, nil

	case strings.HasPrefix(data, "decline_"):
		orderID := strings.TrimPrefix(data, "decline_")
		if orderID == "" {
			return Action{}, ErrUnknownAction
		}
		return Action{Kind: ActionDeclineOrder, OrderID: orderID}, nil
	}

	return Action{}, ErrUnknownAction
}
