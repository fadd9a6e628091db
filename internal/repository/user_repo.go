package repository

import (
	"context"
	"errors"

	"diamond_store/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type UserRepository struct {
	db *pgxpool.Pool
}

func NewUserRepository(db *pgxpool.Pool) *UserRepository {
	return &UserRepository{db: db}
}

const userColumns = `id, tg_id, username, first_name, purchase_count, total_spent,
	bonus_balance, referral_earnings, COALESCE(referral_code, ''), referred_by,
	last_purchase_at, created_at`

func scanUser(row pgx.Row) (*domain.User, error) {
	var u domain.User
	err := row.Scan(
		&u.ID, &u.TgID, &u.Username, &u.FirstName, &u.PurchaseCount, &u.TotalSpent,
		&u.BonusBalance, &u.ReferralEarnings, &u.ReferralCode, &u.ReferredBy,
		&u.LastPurchaseAt, &u.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

// получает пользователя по внутреннему id
func (r *UserRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	row := r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	return scanUser(row)
}

// получает пользователя по telegram id
func (r *UserRepository) GetByTgID(ctx context.Context, tgID int64) (*domain.User, error) {
	row := r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE tg_id = $1`, tgID)
	return scanUser(row)
}

// GetOrCreate возвращает пользователя, создавая запись при первом обращении
func (r *UserRepository) GetOrCreate(ctx context.Context, tgID int64, username, firstName string) (*domain.User, error) {
	row := r.db.QueryRow(ctx, `
		INSERT INTO users (tg_id, username, first_name)
		VALUES ($1, $2, $3)
		ON CONFLICT (tg_id) DO UPDATE SET username = $2, first_name = $3
		RETURNING `+userColumns,
		tgID, username, firstName,
	)
	return scanUser(row)
}

// SetReferralCode записывает собственный реферальный код пользователя.
// Возвращает false, если код уже занят (коллизия по уникальному индексу).
func (r *UserRepository) SetReferralCode(ctx context.Context, userID int64, code string) (bool, error) {
	_, err := r.db.Exec(ctx,
		`UPDATE users SET referral_code = $1 WHERE id = $2 AND referral_code IS NULL`,
		code, userID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// SetReferredBy устанавливает пригласившего, только если он ещё не установлен.
// Возвращает true, если связь была записана этим вызовом.
func (r *UserRepository) SetReferredBy(ctx context.Context, userID, referrerID int64) (bool, error) {
	tag, err := r.db.Exec(ctx,
		`UPDATE users SET referred_by = $1 WHERE id = $2 AND referred_by IS NULL`,
		referrerID, userID,
	)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// RecordPurchaseTx увеличивает счётчики покупок в рамках транзакции подтверждения
// оплаты и возвращает новое значение счётчика
func (r *UserRepository) RecordPurchaseTx(ctx context.Context, tx pgx.Tx, userID, amount int64) (int, error) {
	var count int
	err := tx.QueryRow(ctx, `
		UPDATE users
		SET purchase_count = purchase_count + 1,
		    total_spent = total_spent + $1,
		    last_purchase_at = NOW()
		WHERE id = $2
		RETURNING purchase_count
	`, amount, userID).Scan(&count)
	return count, err
}

// CreditBonusTx начисляет реферальный бонус пригласившему в рамках транзакции
func (r *UserRepository) CreditBonusTx(ctx context.Context, tx pgx.Tx, userID, bonus int64) error {
	_, err := tx.Exec(ctx, `
		UPDATE users
		SET bonus_balance = bonus_balance + $1,
		    referral_earnings = referral_earnings + $1
		WHERE id = $2
	`, bonus, userID)
	return err
}

// CountReferred считает сколько пользователей привёл данный пользователь
func (r *UserRepository) CountReferred(ctx context.Context, userID int64) (int, error) {
	var count int
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM users WHERE referred_by = $1`, userID,
	).Scan(&count)
	return count, err
}

// StoreTotals — агрегаты для админской статистики
type StoreTotals struct {
	TotalUsers      int
	TotalOrders     int
	RevenueRUB      int64
	RevenueKZT      int64
	PromoRedeems    int
	ReferralPayouts int64
}

// GetTotals собирает общую статистику магазина
func (r *UserRepository) GetTotals(ctx context.Context) (*StoreTotals, error) {
	t := &StoreTotals{}

	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&t.TotalUsers); err != nil {
		return nil, err
	}
	if err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM orders WHERE status = 'confirmed'`,
	).Scan(&t.TotalOrders); err != nil {
		return nil, err
	}
	if err := r.db.QueryRow(ctx, `
		SELECT COALESCE(SUM(amount) FILTER (WHERE currency = 'RUB'), 0),
		       COALESCE(SUM(amount) FILTER (WHERE currency = 'KZT'), 0)
		FROM orders WHERE status = 'confirmed'
	`).Scan(&t.RevenueRUB, &t.RevenueKZT); err != nil {
		return nil, err
	}
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM promo_usages`).Scan(&t.PromoRedeems); err != nil {
		return nil, err
	}
	if err := r.db.QueryRow(ctx,
		`SELECT COALESCE(SUM(bonus), 0) FROM referral_transactions`,
	).Scan(&t.ReferralPayouts); err != nil {
		return nil, err
	}

	return t, nil
}
