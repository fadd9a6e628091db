package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"diamond_store/internal/domain"
	"diamond_store/internal/service"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// --- админские команды ---

func (b *StoreBot) handleStats(ctx context.Context) string {
	totals, err := b.userRepo.GetTotals(ctx)
	if err != nil {
		b.log.Error("не удалось собрать статистику", "error", err)
		return "Не удалось собрать статистику."
	}

	return fmt.Sprintf(`<b>📊 Статистика магазина</b>

Пользователей: %d
Подтверждённых заказов: %d
Выручка: %d RUB / %d KZT
Применено промокодов: %d
Выплачено реферальных бонусов: %d`,
		totals.TotalUsers, totals.TotalOrders,
		totals.RevenueRUB, totals.RevenueKZT,
		totals.PromoRedeems, totals.ReferralPayouts)
}

const newPromoUsage = `Формат: /newpromo КОД вид значение [лимит] [мин.сумма] [дней]

вид: percent | fixed | first_order
Пример: /newpromo SUMMER25 percent 25 100 500 30`

// handleNewPromo разбирает аргументы и создаёт промокод
func (b *StoreBot) handleNewPromo(ctx context.Context, adminTgID int64, args string) string {
	fields := strings.Fields(args)
	if len(fields) < 3 {
		return newPromoUsage
	}

	kind := domain.DiscountKind(fields[1])
	switch kind {
	case domain.DiscountPercent, domain.DiscountFixed, domain.DiscountFirstOrder:
	default:
		return newPromoUsage
	}

	value, err := strconv.ParseInt(fields[2], 10, 64)
	if err != nil || value <= 0 {
		return newPromoUsage
	}

	maxUses := 100
	minOrder := int64(0)
	days := 30
	if len(fields) > 3 {
		if n, err := strconv.Atoi(fields[3]); err == nil && n > 0 {
			maxUses = n
		}
	}
	if len(fields) > 4 {
		if n, err := strconv.ParseInt(fields[4], 10, 64); err == nil && n >= 0 {
			minOrder = n
		}
	}
	if len(fields) > 5 {
		if n, err := strconv.Atoi(fields[5]); err == nil && n > 0 {
			days = n
		}
	}

	promo, err := b.promos.CreatePromo(ctx, adminTgID, service.PromoSpec{
		Code:       fields[0],
		Kind:       kind,
		Value:      value,
		MaxUses:    maxUses,
		MinOrder:   minOrder,
		ValidUntil: time.Now().AddDate(0, 0, days),
	})
	switch {
	case errors.Is(err, service.ErrPromoBadFormat):
		return "❌ " + err.Error()
	case errors.Is(err, service.ErrPromoDuplicate):
		return "❌ Такой код уже существует."
	case err != nil:
		b.log.Error("не удалось создать промокод", "error", err)
		return "Не удалось создать промокод."
	}

	return fmt.Sprintf(`✅ Промокод создан.

<code>%s</code> — %s %d, лимит %d, мин. заказ %d, до %s`,
		promo.Code, promo.Kind, promo.Value, promo.MaxUses, promo.MinOrder,
		promo.ValidUntil.Format("02.01.2006"))
}

func (b *StoreBot) handleDelPromo(ctx context.Context, args string) string {
	code := strings.TrimSpace(args)
	if code == "" {
		return "Формат: /delpromo КОД"
	}

	err := b.promos.Deactivate(ctx, code)
	switch {
	case errors.Is(err, service.ErrPromoNotFound):
		return "❌ Промокод не найден."
	case err != nil:
		b.log.Error("не удалось деактивировать промокод", "code", code, "error", err)
		return "Не удалось деактивировать промокод."
	}
	return fmt.Sprintf("✅ Промокод <code>%s</code> деактивирован.", service.NormalizeCode(code))
}

func (b *StoreBot) handleListPromos(ctx context.Context) string {
	promos, err := b.promos.ListActive(ctx, 30)
	if err != nil {
		b.log.Error("не удалось загрузить промокоды", "error", err)
		return "Не удалось загрузить промокоды."
	}
	if len(promos) == 0 {
		return "Действующих промокодов нет."
	}

	text := "<b>🏷 Действующие промокоды</b>\n\n"
	for _, p := range promos {
		scope := ""
		if p.PersonalFor != nil {
			scope = " (личный)"
		}
		text += fmt.Sprintf("<code>%s</code>%s — %s %d, %d/%d, до %s\n",
			p.Code, scope, p.Kind, p.Value, p.CurrentUses, p.MaxUses,
			p.ValidUntil.Format("02.01.2006"))
	}
	return text
}

// --- ручная проверка чеков ---

func (b *StoreBot) handleAdminConfirm(ctx context.Context, cb *tgbotapi.CallbackQuery, orderID string) {
	if !b.isAdmin(cb.From.ID) {
		b.log.Warn("подтверждение заказа не-админом", "tg_id", cb.From.ID, "order_id", orderID)
		return
	}

	_, err := b.payments.Confirm(ctx, orderID, strconv.FormatInt(cb.From.ID, 10))
	switch {
	case errors.Is(err, service.ErrOrderFinalized):
		b.sendHTML(cb.Message.Chat.ID, fmt.Sprintf("Заказ <code>%s</code> уже обработан.", orderID))
		return
	case errors.Is(err, service.ErrOrderNotFound):
		b.sendHTML(cb.Message.Chat.ID, fmt.Sprintf("Заказ <code>%s</code> не найден.", orderID))
		return
	case err != nil:
		b.log.Error("не удалось подтвердить заказ", "order_id", orderID, "error", err)
		b.sendHTML(cb.Message.Chat.ID, fmt.Sprintf("Ошибка подтверждения заказа <code>%s</code>, попробуйте ещё раз.", orderID))
		return
	}

	// убираем кнопки, чтобы чек нельзя было обработать повторно из интерфейса
	b.clearReviewButtons(cb)
	// ответ покупателю уходит через Notifier из транзакции подтверждения
}

func (b *StoreBot) handleAdminDecline(ctx context.Context, cb *tgbotapi.CallbackQuery, orderID string) {
	if !b.isAdmin(cb.From.ID) {
		b.log.Warn("отклонение заказа не-админом", "tg_id", cb.From.ID, "order_id", orderID)
		return
	}

	order, err := b.payments.Decline(ctx, orderID, strconv.FormatInt(cb.From.ID, 10))
	switch {
	case errors.Is(err, service.ErrOrderFinalized):
		b.sendHTML(cb.Message.Chat.ID, fmt.Sprintf("Заказ <code>%s</code> уже обработан.", orderID))
		return
	case errors.Is(err, service.ErrOrderNotFound):
		b.sendHTML(cb.Message.Chat.ID, fmt.Sprintf("Заказ <code>%s</code> не найден.", orderID))
		return
	case err != nil:
		b.log.Error("не удалось отклонить заказ", "order_id", orderID, "error", err)
		return
	}

	b.clearReviewButtons(cb)
	b.sendHTML(cb.Message.Chat.ID, fmt.Sprintf("❌ Заказ <code>%s</code> отклонён.", orderID))

	if buyer, err := b.userRepo.GetByID(ctx, order.UserID); err == nil && buyer != nil {
		b.sendHTML(buyer.TgID, fmt.Sprintf(`❌ Оплата по заказу <b>%s</b> не подтверждена.

Если вы уверены, что оплатили, напишите в поддержку и приложите чек ещё раз.`, order.ItemTitle))
	}
}

func (b *StoreBot) clearReviewButtons(cb *tgbotapi.CallbackQuery) {
	edit := tgbotapi.NewEditMessageReplyMarkup(
		cb.Message.Chat.ID, cb.Message.MessageID,
		tgbotapi.InlineKeyboardMarkup{InlineKeyboard: [][]tgbotapi.InlineKeyboardButton{}},
	)
	if _, err := b.bot.Request(edit); err != nil {
		b.log.Debug("не удалось убрать кнопки проверки", "error", err)
	}
}

// --- уведомления после подтверждения оплаты (service.Notifier) ---

// NotifyPurchaseConfirmed сообщает покупателю о подтверждении и закрывает
// его сессию, если она ещё висела
func (b *StoreBot) NotifyPurchaseConfirmed(tgID int64, order *domain.Order) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = b.sessions.Delete(ctx, tgID)

	b.sendHTML(tgID, fmt.Sprintf(`✅ <b>Оплата подтверждена!</b>

%s уже в пути на аккаунт <code>%s</code>. Спасибо за покупку!`,
		order.ItemTitle, order.PlayerID))
}

func (b *StoreBot) NotifyMilestone(tgID int64, purchaseCount int, tier domain.LoyaltyTier) {
	b.sendHTML(tgID, fmt.Sprintf(`🎉 <b>Это ваша %d-я покупка!</b>

Уровень лояльности: %s (реферальный множитель x%.2f). Спасибо, что остаётесь с нами!`,
		purchaseCount, tier.Name, tier.Multiplier))
}

func (b *StoreBot) NotifyReferralBonus(tgID int64, bonus int64, currency domain.Currency) {
	b.sendHTML(tgID, fmt.Sprintf(`💰 Ваш реферал совершил покупку — вам начислено <b>%d %s</b> бонусов!

/ref — статистика программы.`, bonus, currency))
}

func (b *StoreBot) NotifyAdminOrderConfirmed(order *domain.Order, buyer *domain.User) {
	if b.cfg.AdminChatID == 0 {
		return
	}
	b.sendHTML(b.cfg.AdminChatID, fmt.Sprintf(`✅ Заказ <code>%s</code> подтверждён (%s).

@%s | %s | %d %s | ID %s`,
		order.OrderID, order.Method,
		buyer.Username, order.ItemTitle, order.Amount, order.Currency, order.PlayerID))
}
