package repository

import (
	"context"
	"errors"

	"diamond_store/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ReferralRepository struct {
	db *pgxpool.Pool
}

func NewReferralRepository(db *pgxpool.Pool) *ReferralRepository {
	return &ReferralRepository{db: db}
}

// GetUserByCode находит владельца реферального кода
func (r *ReferralRepository) GetUserByCode(ctx context.Context, code string) (*domain.User, error) {
	row := r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE referral_code = $1`, code)
	return scanUser(row)
}

// CreateTransactionTx записывает факт начисления бонуса в рамках транзакции
// подтверждения оплаты. Уникальность по order_id страхует от повторного
// начисления при дубликате callback'а.
func (r *ReferralRepository) CreateTransactionTx(ctx context.Context, tx pgx.Tx, rt *domain.ReferralTransaction) (bool, error) {
	tag, err := tx.Exec(ctx, `
		INSERT INTO referral_transactions (referrer_id, referred_id, order_id, order_amount, currency, bonus, discount)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (order_id) DO NOTHING
	`, rt.ReferrerID, rt.ReferredID, rt.OrderID, rt.OrderAmount, rt.Currency, rt.Bonus, rt.Discount)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// GetRecentByReferrer возвращает последние начисления пригласившему
func (r *ReferralRepository) GetRecentByReferrer(ctx context.Context, referrerID int64, limit int) ([]domain.ReferralTransaction, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, referrer_id, referred_id, order_id, order_amount, currency, bonus, discount, created_at
		FROM referral_transactions
		WHERE referrer_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, referrerID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var txs []domain.ReferralTransaction
	for rows.Next() {
		var t domain.ReferralTransaction
		if err := rows.Scan(
			&t.ID, &t.ReferrerID, &t.ReferredID, &t.OrderID, &t.OrderAmount,
			&t.Currency, &t.Bonus, &t.Discount, &t.CreatedAt,
		); err != nil {
			continue
		}
		txs = append(txs, t)
	}
	return txs, nil
}

// GetEarnings возвращает суммарный заработок пригласившего
func (r *ReferralRepository) GetEarnings(ctx context.Context, referrerID int64) (int64, error) {
	var total int64
	err := r.db.QueryRow(ctx,
		`SELECT COALESCE(SUM(bonus), 0) FROM referral_transactions WHERE referrer_id = $1`,
		referrerID,
	).Scan(&total)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return 0, err
	}
	return total, nil
}
