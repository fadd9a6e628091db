package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Счётчики финансовых событий магазина; отдаются на /metrics
var (
	OrdersConfirmed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "store_orders_confirmed_total",
		Help: "Подтверждённые заказы по способу оплаты",
	}, []string{"method"})

	PromoRedemptions = promauto.NewCounter(prometheus.CounterOpts{
		Name: "store_promo_redemptions_total",
		Help: "Потреблённые слоты промокодов",
	})

	ReferralBonuses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "store_referral_bonuses_total",
		Help: "Начисленные реферальные бонусы",
	})

	PaymentCallbacks = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "store_payment_callbacks_total",
		Help: "Входящие callback'и платёжного провайдера по результату",
	}, []string{"result"})
)
