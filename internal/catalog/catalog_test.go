package catalog

import "testing"

func TestGetItem(t *testing.T) {
	item, ok := GetItem("ru", 0)
	if !ok {
		t.Fatalf("ожидалась позиция ru[0]")
	}
	if item.Diamonds != 86 || item.Price <= 0 {
		t.Fatalf("неожиданная позиция: %+v", item)
	}
}

func TestGetItemOutOfRange(t *testing.T) {
	if _, ok := GetItem("ru", -1); ok {
		t.Errorf("отрицательный индекс не должен находить позицию")
	}
	if _, ok := GetItem("ru", 999); ok {
		t.Errorf("индекс за пределами каталога не должен находить позицию")
	}
	if _, ok := GetItem("us", 0); ok {
		t.Errorf("неизвестный регион не должен находить позицию")
	}
}

func TestRegionCurrencyConsistent(t *testing.T) {
	for _, r := range Regions() {
		for i, item := range r.Items {
			if item.Currency != r.Currency {
				t.Errorf("регион %s: позиция %d в валюте %s", r.Code, i, item.Currency)
			}
		}
	}
}
