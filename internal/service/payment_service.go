package service

import (
	"context"
	"errors"
	"fmt"

	"diamond_store/internal/domain"
	"diamond_store/internal/logger"
	"diamond_store/internal/metrics"
	"diamond_store/internal/repository"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrOrderNotFound  = errors.New("заказ не найден")
	ErrOrderFinalized = errors.New("заказ уже обработан")
)

// Notifier доставляет уведомления после подтверждения оплаты. Реализуется
// ботом; все вызовы best-effort и не влияют на учёт.
type Notifier interface {
	NotifyPurchaseConfirmed(tgID int64, order *domain.Order)
	NotifyMilestone(tgID int64, purchaseCount int, tier domain.LoyaltyTier)
	NotifyReferralBonus(tgID int64, bonus int64, currency domain.Currency)
	NotifyAdminOrderConfirmed(order *domain.Order, buyer *domain.User)
}

// ConfirmResult — итог подтверждения для вызывающей стороны
type ConfirmResult struct {
	Order         *domain.Order
	PurchaseCount int
	Settlement    *Settlement
}

// Узкие контракты хранилищ, которые нужны подтверждению оплаты.
// Их реализуют репозитории; тесты подставляют свои.
type txBeginner interface {
	BeginTx(ctx context.Context, opts pgx.TxOptions) (pgx.Tx, error)
}

type orderStore interface {
	Create(ctx context.Context, o *domain.Order) error
	GetByOrderID(ctx context.Context, orderID string) (*domain.Order, error)
	ConfirmTx(ctx context.Context, tx pgx.Tx, orderID, confirmedBy string) (bool, error)
	Decline(ctx context.Context, orderID, declinedBy string) (bool, error)
	GetRecentByUser(ctx context.Context, userID int64, limit int) ([]domain.Order, error)
}

type buyerStore interface {
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	RecordPurchaseTx(ctx context.Context, tx pgx.Tx, userID, amount int64) (int, error)
}

type promoStore interface {
	GetByCode(ctx context.Context, code string) (*domain.PromoCode, error)
	ConfirmUsageTx(ctx context.Context, tx pgx.Tx, u *domain.PromoUsage) (bool, error)
}

type referralSettler interface {
	SettleTx(ctx context.Context, tx pgx.Tx, buyer *domain.User, orderID string, orderAmount, buyerDiscount int64, currency domain.Currency) (*Settlement, error)
}

// PaymentService — единственная точка подтверждения оплаты. Срабатывает либо
// от callback'а платёжного провайдера, либо от ручного действия админа, и
// применяет все эффекты одной транзакцией: статус заказа (ключ
// идемпотентности), счётчики покупателя, реферальное начисление и слот
// промокода. Дубликат callback'а по тому же заказу — no-op.
type PaymentService struct {
	db        txBeginner
	orderRepo orderStore
	userRepo  buyerStore
	promoRepo promoStore
	referrals referralSettler
	notifier  Notifier
}

func NewPaymentService(db *pgxpool.Pool, referrals *ReferralService) *PaymentService {
	return &PaymentService{
		db:        db,
		orderRepo: repository.NewOrderRepository(db),
		userRepo:  repository.NewUserRepository(db),
		promoRepo: repository.NewPromoRepository(db),
		referrals: referrals,
	}
}

// SetNotifier подключает доставку уведомлений (бот запускается позже сервиса)
func (s *PaymentService) SetNotifier(n Notifier) {
	s.notifier = n
}

// CreateOrder сохраняет заказ перед оплатой
func (s *PaymentService) CreateOrder(ctx context.Context, o *domain.Order) error {
	if err := s.orderRepo.Create(ctx, o); err != nil {
		return fmt.Errorf("создание заказа: %w", err)
	}
	logger.Info("заказ создан",
		"order_id", o.OrderID, "user_id", o.UserID, "amount", o.Amount,
		"currency", o.Currency, "method", o.Method, "promo", o.PromoCode)
	return nil
}

// GetOrder возвращает заказ по внешнему идентификатору
func (s *PaymentService) GetOrder(ctx context.Context, orderID string) (*domain.Order, error) {
	o, err := s.orderRepo.GetByOrderID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o == nil {
		return nil, ErrOrderNotFound
	}
	return o, nil
}

// Confirm применяет эффекты оплаченного заказа. confirmedBy — "auto" для
// callback'а провайдера или tg id админа при ручном подтверждении.
func (s *PaymentService) Confirm(ctx context.Context, orderID, confirmedBy string) (*ConfirmResult, error) {
	order, err := s.orderRepo.GetByOrderID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("поиск заказа: %w", err)
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}

	buyer, err := s.userRepo.GetByID(ctx, order.UserID)
	if err != nil {
		return nil, fmt.Errorf("поиск покупателя: %w", err)
	}
	if buyer == nil {
		return nil, fmt.Errorf("покупатель заказа %s не найден", orderID)
	}

	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, fmt.Errorf("открытие транзакции: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	// перевод pending -> confirmed; второй вызов по тому же заказу отсекается здесь
	confirmed, err := s.orderRepo.ConfirmTx(ctx, tx, orderID, confirmedBy)
	if err != nil {
		return nil, fmt.Errorf("подтверждение заказа: %w", err)
	}
	if !confirmed {
		logger.Warn("повторное подтверждение заказа проигнорировано",
			"order_id", orderID, "confirmed_by", confirmedBy)
		return nil, ErrOrderFinalized
	}

	newCount, err := s.userRepo.RecordPurchaseTx(ctx, tx, buyer.ID, order.Amount)
	if err != nil {
		return nil, fmt.Errorf("обновление счётчиков покупателя: %w", err)
	}

	settlement, err := s.referrals.SettleTx(ctx, tx, buyer, orderID, order.Amount, order.Discount, order.Currency)
	if err != nil {
		return nil, fmt.Errorf("реферальное начисление: %w", err)
	}

	promoConsumed := false
	if order.PromoCode != "" {
		promo, err := s.promoRepo.GetByCode(ctx, NormalizeCode(order.PromoCode))
		if err != nil {
			return nil, fmt.Errorf("поиск промокода заказа: %w", err)
		}
		if promo != nil {
			promoConsumed, err = s.promoRepo.ConfirmUsageTx(ctx, tx, &domain.PromoUsage{
				UserID:      buyer.ID,
				PromoID:     promo.ID,
				Code:        promo.Code,
				Discount:    order.Discount,
				OrderAmount: order.Amount + order.Discount,
			})
			if err != nil {
				return nil, fmt.Errorf("потребление промокода: %w", err)
			}
		} else {
			logger.Warn("промокод заказа не найден при подтверждении",
				"order_id", orderID, "code", order.PromoCode)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("фиксация транзакции: %w", err)
	}

	logger.Info("оплата подтверждена",
		"order_id", orderID, "user_id", buyer.ID, "amount", order.Amount,
		"currency", order.Currency, "purchase_count", newCount,
		"promo", order.PromoCode, "referral_bonus", settlement.Bonus,
		"confirmed_by", confirmedBy)

	metrics.OrdersConfirmed.WithLabelValues(string(order.Method)).Inc()
	if promoConsumed {
		metrics.PromoRedemptions.Inc()
	}
	if settlement.Applied {
		metrics.ReferralBonuses.Inc()
	}

	s.sendNotifications(order, buyer, newCount, settlement)

	return &ConfirmResult{
		Order:         order,
		PurchaseCount: newCount,
		Settlement:    settlement,
	}, nil
}

// Decline отклоняет заказ после ручной проверки чека
func (s *PaymentService) Decline(ctx context.Context, orderID, declinedBy string) (*domain.Order, error) {
	order, err := s.orderRepo.GetByOrderID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("поиск заказа: %w", err)
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}

	ok, err := s.orderRepo.Decline(ctx, orderID, declinedBy)
	if err != nil {
		return nil, fmt.Errorf("отклонение заказа: %w", err)
	}
	if !ok {
		return nil, ErrOrderFinalized
	}

	logger.Info("заказ отклонён", "order_id", orderID, "declined_by", declinedBy)
	return order, nil
}

// GetRecentOrders возвращает последние заказы пользователя
func (s *PaymentService) GetRecentOrders(ctx context.Context, userID int64, limit int) ([]domain.Order, error) {
	return s.orderRepo.GetRecentByUser(ctx, userID, limit)
}

// sendNotifications рассылает уведомления после успешного коммита
func (s *PaymentService) sendNotifications(order *domain.Order, buyer *domain.User, newCount int, settlement *Settlement) {
	if s.notifier == nil {
		return
	}

	go s.notifier.NotifyPurchaseConfirmed(buyer.TgID, order)

	if newCount > 0 && newCount%domain.MilestoneEvery == 0 {
		go s.notifier.NotifyMilestone(buyer.TgID, newCount, domain.Classify(newCount))
	}

	if settlement.Applied {
		go s.notifier.NotifyReferralBonus(settlement.ReferrerTgID, settlement.Bonus, order.Currency)
	}

	go s.notifier.NotifyAdminOrderConfirmed(order, buyer)
}
