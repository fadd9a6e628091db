package bot

import (
	"errors"
	"testing"

	"diamond_store/internal/domain"
)

func TestParseAction(t *testing.T) {
	cases := []struct {
		data   string
		action Action
	}{
		{"shop", Action{Kind: ActionBackToShop}},
		{"promo_skip", Action{Kind: ActionSkipPromo}},
		{"region_ru", Action{Kind: ActionShowRegion, Region: "ru"}},
		{"item_ru_3", Action{Kind: ActionSelectItem, Region: "ru", Index: 3}},
		{"pay_bank", Action{Kind: ActionPayMethod, Method: domain.PayBank}},
		{"pay_crypto", Action{Kind: ActionPayMethod, Method: domain.PayCrypto}},
		{"confirm_abc-123", Action{Kind: ActionConfirmOrder, OrderID: "abc-123"}},
		{"decline_abc-123", Action{Kind: ActionDeclineOrder, OrderID: "abc-123"}},
	}

	for _, c := range cases {
		got, err := ParseAction(c.data)
		if err != nil {
			t.Errorf("ParseAction(%q): неожиданная ошибка %v", c.data, err)
			continue
		}
		if got != c.action {
			t.Errorf("ParseAction(%q) = %+v, ожидалось %+v", c.data, got, c.action)
		}
	}
}

func TestParseActionInvalid(t *testing.T) {
	for _, data := range []string{
		"",
		"nonsense",
		"item_ru",
		"item_ru_x",
		"item_ru_-1",
		"pay_paypal",
		"confirm_",
		"decline_",
	} {
		if _, err := ParseAction(data); !errors.Is(err, ErrUnknownAction) {
			t.Errorf("ParseAction(%q): ожидалась ErrUnknownAction, получено %v", data, err)
		}
	}
}
