package repository

import (
	"context"
	"errors"

	"diamond_store/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type OrderRepository struct {
	db *pgxpool.Pool
}

func NewOrderRepository(db *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{db: db}
}

const orderColumns = `id, order_id, user_id, region, item_title, player_id, amount,
	currency, promo_code, discount, method, status, confirmed_by, created_at, confirmed_at`

func scanOrder(row pgx.Row) (*domain.Order, error) {
	var o domain.Order
	err := row.Scan(
		&o.ID, &o.OrderID, &o.UserID, &o.Region, &o.ItemTitle, &o.PlayerID, &o.Amount,
		&o.Currency, &o.PromoCode, &o.Discount, &o.Method, &o.Status, &o.ConfirmedBy,
		&o.CreatedAt, &o.ConfirmedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &o, nil
}

// Create сохраняет заказ в статусе pending
func (r *OrderRepository) Create(ctx context.Context, o *domain.Order) error {
	return r.db.QueryRow(ctx, `
		INSERT INTO orders (order_id, user_id, region, item_title, player_id, amount, currency, promo_code, discount, method)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, status, created_at
	`, o.OrderID, o.UserID, o.Region, o.ItemTitle, o.PlayerID, o.Amount, o.Currency,
		o.PromoCode, o.Discount, o.Method,
	).Scan(&o.ID, &o.Status, &o.CreatedAt)
}

// GetByOrderID находит заказ по внешнему идентификатору
func (r *OrderRepository) GetByOrderID(ctx context.Context, orderID string) (*domain.Order, error) {
	row := r.db.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE order_id = $1`, orderID)
	return scanOrder(row)
}

// ConfirmTx переводит заказ в confirmed в рамках транзакции подтверждения.
// Возвращает false, если заказ уже был подтверждён — это ключ идемпотентности
// всей последовательности подтверждения оплаты.
func (r *OrderRepository) ConfirmTx(ctx context.Context, tx pgx.Tx, orderID, confirmedBy string) (bool, error) {
	tag, err := tx.Exec(ctx, `
		UPDATE orders
		SET status = 'confirmed', confirmed_by = $2, confirmed_at = NOW()
		WHERE order_id = $1 AND status = 'pending'
	`, orderID, confirmedBy)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// Decline отклоняет заказ (после ручной проверки чека админом)
func (r *OrderRepository) Decline(ctx context.Context, orderID, declinedBy string) (bool, error) {
	tag, err := r.db.Exec(ctx, `
		UPDATE orders
		SET status = 'declined', confirmed_by = $2, confirmed_at = NOW()
		WHERE order_id = $1 AND status = 'pending'
	`, orderID, declinedBy)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// GetRecentByUser возвращает последние заказы пользователя
func (r *OrderRepository) GetRecentByUser(ctx context.Context, userID int64, limit int) ([]domain.Order, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+orderColumns+` FROM orders
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []domain.Order
	for rows.Next() {
		var o domain.Order
		if err := rows.Scan(
			&o.ID, &o.OrderID, &o.UserID, &o.Region, &o.ItemTitle, &o.PlayerID, &o.Amount,
			&o.Currency, &o.PromoCode, &o.Discount, &o.Method, &o.Status, &o.ConfirmedBy,
			&o.CreatedAt, &o.ConfirmedAt,
		); err != nil {
			continue
		}
		orders = append(orders, o)
	}
	return orders, nil
}
