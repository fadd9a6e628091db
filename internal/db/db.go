package db

import (
	"context"
	"time"

	"diamond_store/internal/logger"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Connect открывает пул соединений и проверяет доступность базы
func Connect(databaseURL string) *pgxpool.Pool {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		logger.Fatal("не удалось создать пул соединений", "error", err)
	}

	if err := pool.Ping(ctx); err != nil {
		logger.Fatal("база данных недоступна", "error", err)
	}

	logger.Info("подключение к базе установлено")
	return pool
}

// Migrate создаёт таблицы при первом запуске
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, schema)
	if err != nil {
		return err
	}
	logger.Info("схема базы актуальна")
	return nil
}

const schema = `
CREATE TABLE IF NOT EXISTS users (
	id BIGSERIAL PRIMARY KEY,
	tg_id BIGINT UNIQUE NOT NULL,
	username TEXT NOT NULL DEFAULT '',
	first_name TEXT NOT NULL DEFAULT '',
	purchase_count INT NOT NULL DEFAULT 0,
	total_spent BIGINT NOT NULL DEFAULT 0,
	bonus_balance BIGINT NOT NULL DEFAULT 0,
	referral_earnings BIGINT NOT NULL DEFAULT 0,
	referral_code TEXT UNIQUE,
	referred_by BIGINT REFERENCES users(id),
	last_purchase_at TIMESTAMPTZ,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS promo_codes (
	id BIGSERIAL PRIMARY KEY,
	code TEXT UNIQUE NOT NULL,
	kind TEXT NOT NULL,
	value BIGINT NOT NULL,
	max_uses INT NOT NULL,
	current_uses INT NOT NULL DEFAULT 0,
	min_order BIGINT NOT NULL DEFAULT 0,
	valid_until TIMESTAMPTZ NOT NULL,
	active BOOLEAN NOT NULL DEFAULT TRUE,
	personal_for BIGINT REFERENCES users(id),
	is_welcome BOOLEAN NOT NULL DEFAULT FALSE,
	created_by BIGINT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	CONSTRAINT uses_within_cap CHECK (current_uses <= max_uses)
);

CREATE TABLE IF NOT EXISTS promo_usages (
	id BIGSERIAL PRIMARY KEY,
	user_id BIGINT NOT NULL REFERENCES users(id),
	promo_id BIGINT NOT NULL REFERENCES promo_codes(id),
	code TEXT NOT NULL,
	discount BIGINT NOT NULL,
	order_amount BIGINT NOT NULL,
	used_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	UNIQUE (user_id, promo_id)
);

CREATE TABLE IF NOT EXISTS referral_transactions (
	id BIGSERIAL PRIMARY KEY,
	referrer_id BIGINT NOT NULL REFERENCES users(id),
	referred_id BIGINT NOT NULL REFERENCES users(id),
	order_id TEXT UNIQUE NOT NULL,
	order_amount BIGINT NOT NULL,
	currency TEXT NOT NULL,
	bonus BIGINT NOT NULL,
	discount BIGINT NOT NULL DEFAULT 0,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS orders (
	id BIGSERIAL PRIMARY KEY,
	order_id TEXT UNIQUE NOT NULL,
	user_id BIGINT NOT NULL REFERENCES users(id),
	region TEXT NOT NULL,
	item_title TEXT NOT NULL,
	player_id TEXT NOT NULL,
	amount BIGINT NOT NULL,
	currency TEXT NOT NULL,
	promo_code TEXT NOT NULL DEFAULT '',
	discount BIGINT NOT NULL DEFAULT 0,
	method TEXT NOT NULL,
	status TEXT NOT NULL DEFAULT 'pending',
	confirmed_by TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	confirmed_at TIMESTAMPTZ
);

CREATE INDEX IF NOT EXISTS idx_orders_user ON orders(user_id, created_at DESC);
CREATE INDEX IF NOT EXISTS idx_reftx_referrer ON referral_transactions(referrer_id, created_at DESC);
`
