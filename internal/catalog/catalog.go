package catalog

import "diamond_store/internal/domain"

// Item — позиция каталога: пакет алмазов или пропуск с ценой региона
type Item struct {
	Title    string          `json:"title"`
	Diamonds int             `json:"diamonds"` // 0 для пропусков
	Price    int64           `json:"price"`
	Currency domain.Currency `json:"currency"`
}

// Region — витрина одного региона. Каталог статичен и безопасен
// для конкурентного чтения.
type Region struct {
	Code     string          `json:"code"`
	Name     string          `json:"name"`
	Currency domain.Currency `json:"currency"`
	Items    []Item          `json:"items"`
}

var regions = []Region{
	{
		Code:     "ru",
		Name:     "Россия",
		Currency: domain.CurrencyRUB,
		Items: []Item{
			{Title: "86 алмазов", Diamonds: 86, Price: 115, Currency: domain.CurrencyRUB},
			{Title: "172 алмаза", Diamonds: 172, Price: 225, Currency: domain.CurrencyRUB},
			{Title: "257 алмазов", Diamonds: 257, Price: 330, Currency: domain.CurrencyRUB},
			{Title: "706 алмазов", Diamonds: 706, Price: 880, Currency: domain.CurrencyRUB},
			{Title: "2195 алмазов", Diamonds: 2195, Price: 2650, Currency: domain.CurrencyRUB},
			{Title: "5532 алмаза", Diamonds: 5532, Price: 6500, Currency: domain.CurrencyRUB},
			{Title: "Недельный пропуск", Price: 200, Currency: domain.CurrencyRUB},
			{Title: "Сумеречный пропуск", Price: 1050, Currency: domain.CurrencyRUB},
		},
	},
	{
		Code:     "kz",
		Name:     "Казахстан",
		Currency: domain.CurrencyKZT,
		Items: []Item{
			{Title: "86 алмазов", Diamonds: 86, Price: 650, Currency: domain.CurrencyKZT},
			{Title: "172 алмаза", Diamonds: 172, Price: 1280, Currency: domain.CurrencyKZT},
			{Title: "257 алмазов", Diamonds: 257, Price: 1900, Currency: domain.CurrencyKZT},
			{Title: "706 алмазов", Diamonds: 706, Price: 5100, Currency: domain.CurrencyKZT},
			{Title: "2195 алмазов", Diamonds: 2195, Price: 15300, Currency: domain.CurrencyKZT},
			{Title: "Недельный пропуск", Price: 1150, Currency: domain.CurrencyKZT},
		},
	},
}

// Regions возвращает список регионов витрины
func Regions() []Region {
	return regions
}

// GetRegion находит регион по коду
func GetRegion(code string) (Region, bool) {
	for _, r := range regions {
		if r.Code == code {
			return r, true
		}
	}
	return Region{}, false
}

// GetItem возвращает позицию каталога по региону и индексу
func GetItem(regionCode string, index int) (Item, bool) {
	r, ok := GetRegion(regionCode)
	if !ok {
		return Item{}, false
	}
	if index < 0 || index >= len(r.Items) {
		return Item{}, false
	}
	return r.Items[index], true
}
