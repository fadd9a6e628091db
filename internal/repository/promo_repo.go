package repository

import (
	"context"
	"errors"

	"diamond_store/internal/domain"
	"diamond_store/internal/logger"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrDuplicatePromo возвращается при попытке создать код с занятым именем
var ErrDuplicatePromo = errors.New("промокод с таким кодом уже существует")

type PromoRepository struct {
	db *pgxpool.Pool
}

func NewPromoRepository(db *pgxpool.Pool) *PromoRepository {
	return &PromoRepository{db: db}
}

const promoColumns = `id, code, kind, value, max_uses, current_uses, min_order,
	valid_until, active, personal_for, is_welcome, created_by, created_at`

func scanPromo(row pgx.Row) (*domain.PromoCode, error) {
	var p domain.PromoCode
	err := row.Scan(
		&p.ID, &p.Code, &p.Kind, &p.Value, &p.MaxUses, &p.CurrentUses, &p.MinOrder,
		&p.ValidUntil, &p.Active, &p.PersonalFor, &p.IsWelcome, &p.CreatedBy, &p.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

// Create сохраняет новый промокод
func (r *PromoRepository) Create(ctx context.Context, p *domain.PromoCode) error {
	err := r.db.QueryRow(ctx, `
		INSERT INTO promo_codes (code, kind, value, max_uses, min_order, valid_until, active, personal_for, is_welcome, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, TRUE, $7, $8, $9)
		RETURNING id, current_uses, created_at
	`, p.Code, p.Kind, p.Value, p.MaxUses, p.MinOrder, p.ValidUntil, p.PersonalFor, p.IsWelcome, p.CreatedBy,
	).Scan(&p.ID, &p.CurrentUses, &p.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicatePromo
		}
		return err
	}
	p.Active = true
	return nil
}

// GetByCode находит промокод (код уже нормализован в верхний регистр)
func (r *PromoRepository) GetByCode(ctx context.Context, code string) (*domain.PromoCode, error) {
	row := r.db.QueryRow(ctx, `SELECT `+promoColumns+` FROM promo_codes WHERE code = $1`, code)
	return scanPromo(row)
}

// GetWelcomeFor находит действующий приветственный код пользователя
func (r *PromoRepository) GetWelcomeFor(ctx context.Context, userID int64) (*domain.PromoCode, error) {
	row := r.db.QueryRow(ctx, `
		SELECT `+promoColumns+` FROM promo_codes
		WHERE personal_for = $1 AND is_welcome AND active AND valid_until > NOW()
		ORDER BY created_at DESC LIMIT 1
	`, userID)
	return scanPromo(row)
}

// HasUsage проверяет, применял ли пользователь этот код
func (r *PromoRepository) HasUsage(ctx context.Context, userID, promoID int64) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM promo_usages WHERE user_id = $1 AND promo_id = $2)`,
		userID, promoID,
	).Scan(&exists)
	return exists, err
}

// ConfirmUsageTx потребляет слот кода в рамках транзакции подтверждения оплаты:
// инкремент счётчика строго под потолком и одна запись использования на пару
// (user, promo). Повторный вызов для той же пары — no-op. Исчерпание потолка
// между проверкой кода и оплатой — тоже no-op, а не ошибка: деньги уже
// получены, подтверждение заказа не должно падать из-за промокода.
func (r *PromoRepository) ConfirmUsageTx(ctx context.Context, tx pgx.Tx, u *domain.PromoUsage) (bool, error) {
	tag, err := tx.Exec(ctx, `
		INSERT INTO promo_usages (user_id, promo_id, code, discount, order_amount)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_id, promo_id) DO NOTHING
	`, u.UserID, u.PromoID, u.Code, u.Discount, u.OrderAmount)
	if err != nil {
		return false, err
	}
	if tag.RowsAffected() == 0 {
		return false, nil // уже учтено
	}

	tag, err = tx.Exec(ctx,
		`UPDATE promo_codes SET current_uses = current_uses + 1 WHERE id = $1 AND current_uses < max_uses`,
		u.PromoID,
	)
	if err != nil {
		return false, err
	}
	if tag.RowsAffected() == 0 {
		logger.Warn("потолок промокода исчерпан после проверки, слот не потреблён",
			"promo_id", u.PromoID, "user_id", u.UserID, "code", u.Code)
		return false, nil
	}
	return true, nil
}

// Deactivate выключает промокод; дальнейшие проверки вернут NotFound
func (r *PromoRepository) Deactivate(ctx context.Context, code string) (bool, error) {
	tag, err := r.db.Exec(ctx,
		`UPDATE promo_codes SET active = FALSE WHERE code = $1 AND active`,
		code,
	)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// ListActive возвращает действующие коды (для админа)
func (r *PromoRepository) ListActive(ctx context.Context, limit int) ([]domain.PromoCode, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+promoColumns+` FROM promo_codes
		WHERE active AND valid_until > NOW()
		ORDER BY created_at DESC LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var promos []domain.PromoCode
	for rows.Next() {
		var p domain.PromoCode
		if err := rows.Scan(
			&p.ID, &p.Code, &p.Kind, &p.Value, &p.MaxUses, &p.CurrentUses, &p.MinOrder,
			&p.ValidUntil, &p.Active, &p.PersonalFor, &p.IsWelcome, &p.CreatedBy, &p.CreatedAt,
		); err != nil {
			continue
		}
		promos = append(promos, p)
	}
	return promos, nil
}
