package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"diamond_store/internal/domain"
	"diamond_store/internal/logger"
	"diamond_store/internal/repository"

	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrPromoBadFormat     = errors.New("неверный формат кода: A-Z, 0-9 и дефис, 3-20 символов")
	ErrPromoDuplicate     = errors.New("промокод уже существует")
	ErrPromoNotFound      = errors.New("промокод не найден")
	ErrPromoExpired       = errors.New("срок действия промокода истёк")
	ErrPromoExhausted     = errors.New("лимит использований промокода исчерпан")
	ErrPromoBelowMinimum  = errors.New("сумма заказа меньше минимальной для этого промокода")
	ErrPromoAlreadyUsed   = errors.New("вы уже использовали этот промокод")
	ErrPromoNotFirstOrder = errors.New("промокод действует только на первый заказ")
)

// PromoConfig — параметры промо-программы
type PromoConfig struct {
	MaxDiscountPercent  int           // глобальный потолок скидки, % от суммы заказа
	MinPayableAmount    int64         // к оплате всегда остаётся не меньше этой суммы
	WelcomePercent      int           // скидка приветственного кода
	WelcomeTTL          time.Duration // срок жизни приветственного кода
}

// PromoSpec — запрос на создание промокода
type PromoSpec struct {
	Code        string
	Kind        domain.DiscountKind
	Value       int64
	MaxUses     int
	MinOrder    int64
	ValidUntil  time.Time
	PersonalFor *int64
}

// PriceQuote — результат проверки промокода: скидка и сумма к оплате
type PriceQuote struct {
	Promo       *domain.PromoCode
	Discount    int64
	FinalAmount int64
}

// PromoService ведёт учёт промокодов: создание, проверка, потребление слотов
type PromoService struct {
	db        *pgxpool.Pool
	promoRepo *repository.PromoRepository
	userRepo  *repository.UserRepository
	cfg       PromoConfig
}

func NewPromoService(db *pgxpool.Pool, cfg PromoConfig) *PromoService {
	return &PromoService{
		db:        db,
		promoRepo: repository.NewPromoRepository(db),
		userRepo:  repository.NewUserRepository(db),
		cfg:       cfg,
	}
}

// CreatePromo валидирует и сохраняет новый промокод. Процент скидки
// ограничивается глобальным потолком ещё на создании.
func (s *PromoService) CreatePromo(ctx context.Context, creatorID int64, spec PromoSpec) (*domain.PromoCode, error) {
	code := NormalizeCode(spec.Code)
	if !domain.ValidPromoCode(code) {
		return nil, ErrPromoBadFormat
	}

	value := spec.Value
	if spec.Kind == domain.DiscountPercent || spec.Kind == domain.DiscountFirstOrder {
		if value > int64(s.cfg.MaxDiscountPercent) {
			value = int64(s.cfg.MaxDiscountPercent)
		}
	}

	p := &domain.PromoCode{
		Code:        code,
		Kind:        spec.Kind,
		Value:       value,
		MaxUses:     spec.MaxUses,
		MinOrder:    spec.MinOrder,
		ValidUntil:  spec.ValidUntil,
		PersonalFor: spec.PersonalFor,
		CreatedBy:   creatorID,
	}

	if err := s.promoRepo.Create(ctx, p); err != nil {
		if errors.Is(err, repository.ErrDuplicatePromo) {
			return nil, ErrPromoDuplicate
		}
		return nil, fmt.Errorf("создание промокода: %w", err)
	}

	logger.Info("промокод создан",
		"code", p.Code, "kind", p.Kind, "value", p.Value,
		"max_uses", p.MaxUses, "created_by", creatorID)
	return p, nil
}

// ValidateAndPrice проверяет применимость кода к заказу и считает скидку.
// Чистая проверка: состояние промокода не меняется, слот не потребляется.
func (s *PromoService) ValidateAndPrice(ctx context.Context, userID int64, code string, orderAmount int64) (*PriceQuote, error) {
	p, err := s.promoRepo.GetByCode(ctx, NormalizeCode(code))
	if err != nil {
		return nil, fmt.Errorf("поиск промокода: %w", err)
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("поиск пользователя: %w", err)
	}
	purchases := 0
	if user != nil {
		purchases = user.PurchaseCount
	}

	used := false
	if p != nil {
		used, err = s.promoRepo.HasUsage(ctx, userID, p.ID)
		if err != nil {
			return nil, fmt.Errorf("проверка использования: %w", err)
		}
	}

	if err := CheckRedeemable(p, userID, orderAmount, used, purchases, time.Now()); err != nil {
		return nil, err
	}

	discount := ComputeDiscount(p, orderAmount, s.cfg.MaxDiscountPercent, s.cfg.MinPayableAmount)
	return &PriceQuote{
		Promo:       p,
		Discount:    discount,
		FinalAmount: orderAmount - discount,
	}, nil
}

// Deactivate выключает промокод
func (s *PromoService) Deactivate(ctx context.Context, code string) error {
	ok, err := s.promoRepo.Deactivate(ctx, NormalizeCode(code))
	if err != nil {
		return fmt.Errorf("деактивация промокода: %w", err)
	}
	if !ok {
		return ErrPromoNotFound
	}
	return nil
}

// ListActive возвращает действующие промокоды
func (s *PromoService) ListActive(ctx context.Context, limit int) ([]domain.PromoCode, error) {
	return s.promoRepo.ListActive(ctx, limit)
}

// EnsureWelcomePromo лениво выдаёт личный приветственный код пользователю без
// покупок. Повторный вызов возвращает уже выданный код, а не новый.
func (s *PromoService) EnsureWelcomePromo(ctx context.Context, user *domain.User) (*domain.PromoCode, error) {
	if user.PurchaseCount > 0 {
		return nil, nil
	}

	existing, err := s.promoRepo.GetWelcomeFor(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("поиск приветственного кода: %w", err)
	}
	if existing != nil {
		return existing, nil
	}

	p := &domain.PromoCode{
		Code:        fmt.Sprintf("WELCOME-%d", user.TgID),
		Kind:        domain.DiscountFirstOrder,
		Value:       int64(s.cfg.WelcomePercent),
		MaxUses:     1,
		ValidUntil:  time.Now().Add(s.cfg.WelcomeTTL),
		PersonalFor: &user.ID,
		IsWelcome:   true,
		CreatedBy:   user.ID,
	}
	if err := s.promoRepo.Create(ctx, p); err != nil {
		// гонка двух событий одного пользователя: код уже выдан параллельно
		if errors.Is(err, repository.ErrDuplicatePromo) {
			return s.promoRepo.GetWelcomeFor(ctx, user.ID)
		}
		return nil, fmt.Errorf("выдача приветственного кода: %w", err)
	}

	logger.Info("выдан приветственный промокод", "user_id", user.ID, "code", p.Code)
	return p, nil
}

// NormalizeCode приводит код к каноническому виду: без пробелов, верхний регистр
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// CheckRedeemable решает, применим ли промокод к заказу. Порядок проверок
// фиксирован: неизвестный/выключенный/чужой личный код неотличимы для
// пользователя (NotFound), дальше срок, лимит, минимальная сумма, повторное
// использование и ограничение первого заказа.
func CheckRedeemable(p *domain.PromoCode, userID, orderAmount int64, used bool, purchaseCount int, now time.Time) error {
	if p == nil || !p.Active {
		return ErrPromoNotFound
	}
	if p.PersonalFor != nil && *p.PersonalFor != userID {
		return ErrPromoNotFound
	}
	if now.After(p.ValidUntil) {
		return ErrPromoExpired
	}
	if p.CurrentUses >= p.MaxUses {
		return ErrPromoExhausted
	}
	if orderAmount < p.MinOrder {
		return ErrPromoBelowMinimum
	}
	if used {
		return ErrPromoAlreadyUsed
	}
	if p.Kind == domain.DiscountFirstOrder && purchaseCount > 0 {
		return ErrPromoNotFirstOrder
	}
	return nil
}

// ComputeDiscount считает скидку по виду кода. Процентные скидки ограничены
// глобальным потолком; фиксированная дополнительно не опускает сумму к оплате
// ниже minPayable.
func ComputeDiscount(p *domain.PromoCode, orderAmount int64, maxPercent int, minPayable int64) int64 {
	ceiling := orderAmount * int64(maxPercent) / 100

	var discount int64
	switch p.Kind {
	case domain.DiscountPercent, domain.DiscountFirstOrder:
		discount = orderAmount * p.Value / 100
	case domain.DiscountFixed:
		discount = p.Value
		if payableFloor := orderAmount - minPayable; discount > payableFloor {
			discount = payableFloor
		}
	}

	if discount > ceiling {
		discount = ceiling
	}
	if discount < 0 {
		discount = 0
	}
	return discount
}
