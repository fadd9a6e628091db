package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"diamond_store/internal/domain"
	"diamond_store/internal/logger"
	"diamond_store/internal/repository"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrReferralInvalidCode     = errors.New("реферальный код не найден")
	ErrReferralSelf            = errors.New("нельзя активировать собственный код")
	ErrReferralAlreadyReferred = errors.New("у вас уже есть пригласивший")
)

// ReferralConfig — параметры реферальной программы
type ReferralConfig struct {
	BonusPercent    int   // базовый % бонуса пригласившему
	DiscountPercent int   // % скидки приглашённому
	MaxBonus        int64 // потолок бонуса за один заказ
	MinOrder        int64 // минимальная сумма заказа для начисления
}

// Settlement — результат начисления реферального бонуса
type Settlement struct {
	Applied      bool
	ReferrerID   int64
	ReferrerTgID int64
	Bonus        int64
}

// ReferralService ведёт реферальную программу: коды, связи, начисления
type ReferralService struct {
	db       *pgxpool.Pool
	userRepo *repository.UserRepository
	refRepo  *repository.ReferralRepository
	cfg      ReferralConfig
}

func NewReferralService(db *pgxpool.Pool, cfg ReferralConfig) *ReferralService {
	return &ReferralService{
		db:       db,
		userRepo: repository.NewUserRepository(db),
		refRepo:  repository.NewReferralRepository(db),
		cfg:      cfg,
	}
}

// IssueCode возвращает реферальный код пользователя, создавая его при первом
// обращении. Код детерминированно привязан к id плюс временной суффикс;
// при коллизии генерация повторяется.
func (s *ReferralService) IssueCode(ctx context.Context, user *domain.User) (string, error) {
	if user.ReferralCode != "" {
		return user.ReferralCode, nil
	}

	for attempt := 0; attempt < 5; attempt++ {
		code := GenerateReferralCode(user.TgID, time.Now())
		ok, err := s.userRepo.SetReferralCode(ctx, user.ID, code)
		if err != nil {
			return "", fmt.Errorf("сохранение реферального кода: %w", err)
		}
		if ok {
			// код мог быть записан параллельным событием — перечитываем
			fresh, err := s.userRepo.GetByID(ctx, user.ID)
			if err != nil {
				return "", err
			}
			if fresh != nil && fresh.ReferralCode != "" {
				return fresh.ReferralCode, nil
			}
		}
		time.Sleep(time.Millisecond) // сдвигаем временной суффикс перед повтором
	}

	return "", errors.New("не удалось сгенерировать уникальный реферальный код")
}

// Activate связывает нового пользователя с владельцем кода. Связь постоянна:
// повторная активация любым кодом отклоняется.
func (s *ReferralService) Activate(ctx context.Context, code string, newUser *domain.User) (*domain.User, error) {
	referrer, err := s.refRepo.GetUserByCode(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("поиск по коду: %w", err)
	}
	if referrer == nil {
		return nil, ErrReferralInvalidCode
	}
	if referrer.ID == newUser.ID {
		return nil, ErrReferralSelf
	}
	if newUser.ReferredBy != nil {
		return nil, ErrReferralAlreadyReferred
	}

	linked, err := s.userRepo.SetReferredBy(ctx, newUser.ID, referrer.ID)
	if err != nil {
		return nil, fmt.Errorf("создание реферальной связи: %w", err)
	}
	if !linked {
		// связь успела появиться между чтением и записью
		return nil, ErrReferralAlreadyReferred
	}

	logger.Info("реферальная связь создана",
		"referrer_id", referrer.ID, "referred_id", newUser.ID, "code", code)
	return referrer, nil
}

// SettleTx начисляет бонус пригласившему в рамках транзакции подтверждения
// оплаты. Мягко пропускает неподходящие случаи: маленький заказ, отсутствие
// пригласившего. Повторное начисление по тому же заказу блокируется
// уникальностью order_id.
func (s *ReferralService) SettleTx(ctx context.Context, tx pgx.Tx, buyer *domain.User, orderID string, orderAmount, buyerDiscount int64, currency domain.Currency) (*Settlement, error) {
	none := &Settlement{Applied: false}

	if orderAmount < s.cfg.MinOrder {
		return none, nil
	}
	if buyer.ReferredBy == nil {
		return none, nil
	}

	referrer, err := s.userRepo.GetByID(ctx, *buyer.ReferredBy)
	if err != nil {
		return nil, fmt.Errorf("поиск пригласившего: %w", err)
	}
	if referrer == nil {
		logger.Warn("пригласивший не найден, начисление пропущено",
			"buyer_id", buyer.ID, "referrer_id", *buyer.ReferredBy)
		return none, nil
	}

	bonus := s.ComputeBonus(orderAmount, referrer.PurchaseCount)
	if bonus <= 0 {
		return none, nil
	}

	inserted, err := s.refRepo.CreateTransactionTx(ctx, tx, &domain.ReferralTransaction{
		ReferrerID:  referrer.ID,
		ReferredID:  buyer.ID,
		OrderID:     orderID,
		OrderAmount: orderAmount,
		Currency:    currency,
		Bonus:       bonus,
		Discount:    buyerDiscount,
	})
	if err != nil {
		return nil, fmt.Errorf("запись реферальной транзакции: %w", err)
	}
	if !inserted {
		return none, nil // по этому заказу уже начислено
	}

	if err := s.userRepo.CreditBonusTx(ctx, tx, referrer.ID, bonus); err != nil {
		return nil, fmt.Errorf("начисление бонуса: %w", err)
	}

	logger.Info("реферальный бонус начислен",
		"referrer_id", referrer.ID, "buyer_id", buyer.ID,
		"order_id", orderID, "bonus", bonus, "currency", currency)

	return &Settlement{
		Applied:      true,
		ReferrerID:   referrer.ID,
		ReferrerTgID: referrer.TgID,
		Bonus:        bonus,
	}, nil
}

// GetStats собирает реферальную сводку пользователя
func (s *ReferralService) GetStats(ctx context.Context, user *domain.User) (*domain.ReferralStats, error) {
	count, err := s.userRepo.CountReferred(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("подсчёт рефералов: %w", err)
	}

	recent, err := s.refRepo.GetRecentByReferrer(ctx, user.ID, 10)
	if err != nil {
		return nil, fmt.Errorf("история начислений: %w", err)
	}

	// суммируем по журналу начислений, а не по денормализованному полю
	earned, err := s.refRepo.GetEarnings(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("сумма начислений: %w", err)
	}

	return &domain.ReferralStats{
		Code:          user.ReferralCode,
		ReferredCount: count,
		TotalEarned:   earned,
		BonusBalance:  user.BonusBalance,
		Recent:        recent,
	}, nil
}

// ComputeBonus считает бонус пригласившему: базовый процент от суммы заказа,
// умноженный на множитель ступени лояльности, не выше потолка за заказ.
func (s *ReferralService) ComputeBonus(orderAmount int64, referrerPurchaseCount int) int64 {
	base := orderAmount * int64(s.cfg.BonusPercent) / 100
	tier := domain.Classify(referrerPurchaseCount)
	bonus := int64(float64(base) * tier.Multiplier)
	if bonus > s.cfg.MaxBonus {
		bonus = s.cfg.MaxBonus
	}
	return bonus
}

// ComputeReferredDiscount считает скидку приглашённому, не более 15% заказа
func (s *ReferralService) ComputeReferredDiscount(orderAmount int64) int64 {
	discount := orderAmount * int64(s.cfg.DiscountPercent) / 100
	if ceiling := orderAmount * 15 / 100; discount > ceiling {
		discount = ceiling
	}
	return discount
}

// GenerateReferralCode строит код вида REF<id36><время36>
func GenerateReferralCode(tgID int64, now time.Time) string {
	return fmt.Sprintf("REF%s%s",
		encodeBase36(tgID),
		encodeBase36(now.UnixMilli()%46656), // 3 знака временного суффикса
	)
}

const base36 = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

func encodeBase36(n int64) string {
	if n <= 0 {
		return "0"
	}
	var buf [16]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = base36[n%36]
		n /= 36
	}
	return string(buf[i:])
}
