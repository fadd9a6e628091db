package service

import (
	"context"
	"errors"
	"testing"

	"diamond_store/internal/domain"

	"github.com/jackc/pgx/v5"
)

// --- подменные хранилища для тестов подтверждения оплаты ---

type fakeTx struct {
	pgx.Tx
	committed  bool
	rolledBack bool
}

func (t *fakeTx) Commit(ctx context.Context) error { t.committed = true; return nil }
func (t *fakeTx) Rollback(ctx context.Context) error {
	if !t.committed {
		t.rolledBack = true
	}
	return nil
}

type fakeDB struct {
	lastTx *fakeTx
}

func (d *fakeDB) BeginTx(ctx context.Context, _ pgx.TxOptions) (pgx.Tx, error) {
	d.lastTx = &fakeTx{}
	return d.lastTx, nil
}

type fakeOrderStore struct {
	orders map[string]*domain.Order
}

func (f *fakeOrderStore) Create(ctx context.Context, o *domain.Order) error {
	o.Status = domain.OrderPending
	f.orders[o.OrderID] = o
	return nil
}

func (f *fakeOrderStore) GetByOrderID(ctx context.Context, orderID string) (*domain.Order, error) {
	o, ok := f.orders[orderID]
	if !ok {
		return nil, nil
	}
	cp := *o
	return &cp, nil
}

// перевод pending -> confirmed с той же семантикой, что и у SQL-версии:
// второй вызов по тому же заказу не проходит
func (f *fakeOrderStore) ConfirmTx(ctx context.Context, tx pgx.Tx, orderID, confirmedBy string) (bool, error) {
	o, ok := f.orders[orderID]
	if !ok || o.Status != domain.OrderPending {
		return false, nil
	}
	o.Status = domain.OrderConfirmed
	o.ConfirmedBy = confirmedBy
	return true, nil
}

func (f *fakeOrderStore) Decline(ctx context.Context, orderID, declinedBy string) (bool, error) {
	o, ok := f.orders[orderID]
	if !ok || o.Status != domain.OrderPending {
		return false, nil
	}
	o.Status = domain.OrderDeclined
	o.ConfirmedBy = declinedBy
	return true, nil
}

func (f *fakeOrderStore) GetRecentByUser(ctx context.Context, userID int64, limit int) ([]domain.Order, error) {
	return nil, nil
}

type fakeBuyerStore struct {
	users map[int64]*domain.User
}

func (f *fakeBuyerStore) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (f *fakeBuyerStore) RecordPurchaseTx(ctx context.Context, tx pgx.Tx, userID, amount int64) (int, error) {
	u, ok := f.users[userID]
	if !ok {
		return 0, errors.New("пользователь не найден")
	}
	u.PurchaseCount++
	u.TotalSpent += amount
	return u.PurchaseCount, nil
}

type fakePromoStore struct {
	promo     *domain.PromoCode
	exhausted bool // потолок исчерпан между проверкой и подтверждением
	consumed  int
}

func (f *fakePromoStore) GetByCode(ctx context.Context, code string) (*domain.PromoCode, error) {
	if f.promo != nil && f.promo.Code == code {
		return f.promo, nil
	}
	return nil, nil
}

func (f *fakePromoStore) ConfirmUsageTx(ctx context.Context, tx pgx.Tx, u *domain.PromoUsage) (bool, error) {
	if f.exhausted {
		return false, nil
	}
	f.consumed++
	return true, nil
}

type fakeSettler struct {
	calls int
}

func (f *fakeSettler) SettleTx(ctx context.Context, tx pgx.Tx, buyer *domain.User, orderID string, orderAmount, buyerDiscount int64, currency domain.Currency) (*Settlement, error) {
	f.calls++
	return &Settlement{}, nil
}

type paymentFixture struct {
	svc     *PaymentService
	db      *fakeDB
	orders  *fakeOrderStore
	buyers  *fakeBuyerStore
	promos  *fakePromoStore
	settler *fakeSettler
}

func newPaymentFixture(order *domain.Order) *paymentFixture {
	f := &paymentFixture{
		db:      &fakeDB{},
		orders:  &fakeOrderStore{orders: map[string]*domain.Order{}},
		buyers:  &fakeBuyerStore{users: map[int64]*domain.User{1: {ID: 1, TgID: 100}}},
		promos:  &fakePromoStore{},
		settler: &fakeSettler{},
	}
	if order != nil {
		f.orders.orders[order.OrderID] = order
	}
	f.svc = &PaymentService{
		db:        f.db,
		orderRepo: f.orders,
		userRepo:  f.buyers,
		promoRepo: f.promos,
		referrals: f.settler,
	}
	return f
}

func pendingOrder() *domain.Order {
	return &domain.Order{
		OrderID:  "ord-1",
		UserID:   1,
		Amount:   900,
		Currency: domain.CurrencyRUB,
		Method:   domain.PayCrypto,
		Status:   domain.OrderPending,
	}
}

// --- тесты ---

func TestConfirmAppliesEffectsOnce(t *testing.T) {
	f := newPaymentFixture(pendingOrder())
	ctx := context.Background()

	res, err := f.svc.Confirm(ctx, "ord-1", "auto")
	if err != nil {
		t.Fatalf("первое подтверждение: %v", err)
	}
	if res.PurchaseCount != 1 {
		t.Errorf("счётчик покупок после подтверждения = %d, ожидалось 1", res.PurchaseCount)
	}
	if f.settler.calls != 1 {
		t.Errorf("реферальное начисление вызвано %d раз, ожидался 1", f.settler.calls)
	}
	if !f.db.lastTx.committed {
		t.Error("транзакция подтверждения не зафиксирована")
	}
	if got := f.orders.orders["ord-1"].Status; got != domain.OrderConfirmed {
		t.Errorf("статус заказа %q, ожидался %q", got, domain.OrderConfirmed)
	}
}

func TestConfirmDuplicateIsNoOp(t *testing.T) {
	f := newPaymentFixture(pendingOrder())
	ctx := context.Background()

	if _, err := f.svc.Confirm(ctx, "ord-1", "auto"); err != nil {
		t.Fatalf("первое подтверждение: %v", err)
	}

	// повторная доставка callback'а по тому же заказу
	if _, err := f.svc.Confirm(ctx, "ord-1", "auto"); !errors.Is(err, ErrOrderFinalized) {
		t.Fatalf("повторное подтверждение: %v, ожидалась ErrOrderFinalized", err)
	}

	if got := f.buyers.users[1].PurchaseCount; got != 1 {
		t.Errorf("счётчик покупок после дубликата = %d, ожидался ровно 1", got)
	}
	if f.settler.calls != 1 {
		t.Errorf("реферальное начисление после дубликата вызвано %d раз, ожидался 1", f.settler.calls)
	}
	if f.promos.consumed != 0 {
		t.Errorf("потреблено %d слотов промокода без кода в заказе", f.promos.consumed)
	}
}

func TestConfirmCrossPathDuplicate(t *testing.T) {
	// callback провайдера и кнопка админа сходятся на одном заказе
	f := newPaymentFixture(pendingOrder())
	ctx := context.Background()

	if _, err := f.svc.Confirm(ctx, "ord-1", "auto"); err != nil {
		t.Fatalf("подтверждение провайдером: %v", err)
	}
	if _, err := f.svc.Confirm(ctx, "ord-1", "12345"); !errors.Is(err, ErrOrderFinalized) {
		t.Fatalf("ручное подтверждение после провайдера: %v, ожидалась ErrOrderFinalized", err)
	}
	if got := f.orders.orders["ord-1"].ConfirmedBy; got != "auto" {
		t.Errorf("заказ закреплён за %q, ожидался первый победитель auto", got)
	}
}

func TestConfirmConsumesPromoSlot(t *testing.T) {
	order := pendingOrder()
	order.PromoCode = "SUMMER25"
	order.Discount = 100

	f := newPaymentFixture(order)
	f.promos.promo = &domain.PromoCode{ID: 5, Code: "SUMMER25", Active: true, MaxUses: 10}

	if _, err := f.svc.Confirm(context.Background(), "ord-1", "auto"); err != nil {
		t.Fatalf("подтверждение с промокодом: %v", err)
	}
	if f.promos.consumed != 1 {
		t.Errorf("потреблено %d слотов промокода, ожидался 1", f.promos.consumed)
	}
}

func TestConfirmSucceedsWhenPromoExhausted(t *testing.T) {
	// потолок кода исчерпали между проверкой и оплатой: деньги уже получены,
	// заказ обязан подтвердиться, слот просто не потребляется
	order := pendingOrder()
	order.PromoCode = "LAST-ONE"
	order.Discount = 100

	f := newPaymentFixture(order)
	f.promos.promo = &domain.PromoCode{ID: 7, Code: "LAST-ONE", Active: true, MaxUses: 1, CurrentUses: 1}
	f.promos.exhausted = true

	res, err := f.svc.Confirm(context.Background(), "ord-1", "auto")
	if err != nil {
		t.Fatalf("подтверждение при исчерпанном промокоде: %v", err)
	}
	if res.PurchaseCount != 1 {
		t.Errorf("счётчик покупок = %d, ожидался 1", res.PurchaseCount)
	}
	if got := f.orders.orders["ord-1"].Status; got != domain.OrderConfirmed {
		t.Errorf("статус заказа %q, ожидался %q", got, domain.OrderConfirmed)
	}
	if f.promos.consumed != 0 {
		t.Errorf("потреблено %d слотов исчерпанного кода, ожидалось 0", f.promos.consumed)
	}
	if !f.db.lastTx.committed {
		t.Error("транзакция не зафиксирована при исчерпанном промокоде")
	}
}

func TestConfirmUnknownOrder(t *testing.T) {
	f := newPaymentFixture(nil)

	if _, err := f.svc.Confirm(context.Background(), "no-such", "auto"); !errors.Is(err, ErrOrderNotFound) {
		t.Errorf("неизвестный заказ: %v, ожидалась ErrOrderNotFound", err)
	}
}

func TestDeclineFinalizedOrder(t *testing.T) {
	f := newPaymentFixture(pendingOrder())
	ctx := context.Background()

	if _, err := f.svc.Confirm(ctx, "ord-1", "auto"); err != nil {
		t.Fatalf("подтверждение: %v", err)
	}
	if _, err := f.svc.Decline(ctx, "ord-1", "12345"); !errors.Is(err, ErrOrderFinalized) {
		t.Errorf("отклонение подтверждённого заказа: %v, ожидалась ErrOrderFinalized", err)
	}
}
