package domain

// LoyaltyTier — ступень лояльности по числу подтверждённых покупок.
// Множитель применяется к реферальному бонусу пригласившего.
type LoyaltyTier struct {
	Threshold  int     // минимальное число покупок для ступени
	Name       string
	Multiplier float64
}

// Ступени отсортированы по возрастанию порога; Classify полагается на порядок.
var loyaltyTiers = []LoyaltyTier{
	{Threshold: 0, Name: "Новичок", Multiplier: 1.0},
	{Threshold: 5, Name: "Постоянный", Multiplier: 1.25},
	{Threshold: 10, Name: "Бронза", Multiplier: 1.5},
	{Threshold: 20, Name: "Серебро", Multiplier: 2.0},
	{Threshold: 50, Name: "Золото", Multiplier: 3.0},
}

// Classify возвращает высшую ступень, порог которой не превышает purchaseCount.
// Для отрицательных значений возвращается нулевая ступень.
func Classify(purchaseCount int) LoyaltyTier {
	tier := loyaltyTiers[0]
	for _, t := range loyaltyTiers[1:] {
		if purchaseCount >= t.Threshold {
			tier = t
		}
	}
	return tier
}

// Tiers возвращает копию таблицы ступеней (для вывода в профиле)
func Tiers() []LoyaltyTier {
	out := make([]LoyaltyTier, len(loyaltyTiers))
	copy(out, loyaltyTiers)
	return out
}
