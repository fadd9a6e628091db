package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"diamond_store/internal/catalog"
	"diamond_store/internal/config"
	"diamond_store/internal/cryptopay"
	"diamond_store/internal/domain"
	"diamond_store/internal/logger"
	"diamond_store/internal/repository"
	"diamond_store/internal/service"
	"diamond_store/internal/session"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// StoreBot — витрина магазина в Telegram: каталог, оформление заказа,
// промокоды, реферальная программа и ручная проверка чеков админами
type StoreBot struct {
	bot       *tgbotapi.BotAPI
	cfg       *config.Config
	userRepo  *repository.UserRepository
	promos    *service.PromoService
	referrals *service.ReferralService
	payments  *service.PaymentService
	sessions  session.Store
	crypto    *cryptopay.Client

	stopCh chan struct{}
	wg     sync.WaitGroup
	log    *slog.Logger
}

// NewStoreBot собирает бота поверх сервисов
func NewStoreBot(
	cfg *config.Config,
	db *pgxpool.Pool,
	promos *service.PromoService,
	referrals *service.ReferralService,
	payments *service.PaymentService,
	sessions session.Store,
	crypto *cryptopay.Client,
) (*StoreBot, error) {
	api, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		return nil, err
	}

	log := logger.With("component", "store_bot")
	log.Info("бот авторизован", "username", api.Self.UserName)

	return &StoreBot{
		bot:       api,
		cfg:       cfg,
		userRepo:  repository.NewUserRepository(db),
		promos:    promos,
		referrals: referrals,
		payments:  payments,
		sessions:  sessions,
		crypto:    crypto,
		stopCh:    make(chan struct{}),
		log:       log,
	}, nil
}

// Start запускает цикл обработки обновлений
func (b *StoreBot) Start() {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.bot.GetUpdatesChan(u)
	b.log.Info("цикл обновлений запущен")

	for {
		select {
		case <-b.stopCh:
			b.log.Info("цикл обновлений остановлен")
			return
		case update, ok := <-updates:
			if !ok {
				return
			}

			b.wg.Add(1)
			go func(update tgbotapi.Update) {
				defer b.wg.Done()
				b.handleUpdate(update)
			}(update)
		}
	}
}

// Stop плавно останавливает бота, дожидаясь обработчиков
func (b *StoreBot) Stop() {
	b.log.Info("остановка бота...")
	close(b.stopCh)
	b.bot.StopReceivingUpdates()

	done := make(chan struct{})
	go func() {
		b.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		b.log.Info("бот остановлен")
	case <-time.After(10 * time.Second):
		b.log.Warn("таймаут остановки, часть обработчиков могла не завершиться")
	}
}

func (b *StoreBot) isAdmin(tgID int64) bool {
	for _, id := range b.cfg.AdminTgIDs {
		if id == tgID {
			return true
		}
	}
	return false
}

func (b *StoreBot) handleUpdate(update tgbotapi.Update) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	switch {
	case update.CallbackQuery != nil:
		b.handleCallback(ctx, update.CallbackQuery)
	case update.Message != nil && update.Message.IsCommand():
		b.handleCommand(ctx, update.Message)
	case update.Message != nil:
		b.handleMessage(ctx, update.Message)
	}
}

// --- команды ---

func (b *StoreBot) handleCommand(ctx context.Context, msg *tgbotapi.Message) {
	user, err := b.userRepo.GetOrCreate(ctx, msg.From.ID, msg.From.UserName, msg.From.FirstName)
	if err != nil {
		b.log.Error("не удалось загрузить пользователя", "tg_id", msg.From.ID, "error", err)
		b.sendHTML(msg.Chat.ID, "Что-то пошло не так, попробуйте позже.")
		return
	}

	switch msg.Command() {
	case "start":
		b.handleStart(ctx, msg, user)
	case "shop":
		b.sendKeyboard(msg.Chat.ID, "<b>Выберите регион:</b>", regionsKeyboard())
	case "promo":
		b.handlePromoCommand(ctx, msg.Chat.ID, user)
	case "ref":
		b.handleRefCommand(ctx, msg.Chat.ID, user)
	case "profile":
		b.handleProfileCommand(msg.Chat.ID, user)
	case "orders":
		b.handleOrdersCommand(ctx, msg.Chat.ID, user)
	case "cancel":
		_ = b.sessions.Delete(ctx, msg.From.ID)
		b.sendHTML(msg.Chat.ID, "Оформление заказа отменено. /shop — начать заново.")
	case "help":
		b.sendHTML(msg.Chat.ID, helpMessage)

	// админские команды
	case "stats":
		if b.isAdmin(msg.From.ID) {
			b.sendHTML(msg.Chat.ID, b.handleStats(ctx))
		}
	case "newpromo":
		if b.isAdmin(msg.From.ID) {
			b.sendHTML(msg.Chat.ID, b.handleNewPromo(ctx, msg.From.ID, msg.CommandArguments()))
		}
	case "delpromo":
		if b.isAdmin(msg.From.ID) {
			b.sendHTML(msg.Chat.ID, b.handleDelPromo(ctx, msg.CommandArguments()))
		}
	case "promos":
		if b.isAdmin(msg.From.ID) {
			b.sendHTML(msg.Chat.ID, b.handleListPromos(ctx))
		}

	default:
		b.sendHTML(msg.Chat.ID, "Неизвестная команда. /help — список команд.")
	}
}

const helpMessage = `<b>💎 Магазин алмазов</b>

/shop — каталог
/promo — ваш промокод
/ref — реферальная программа
/profile — профиль и уровень лояльности
/orders — история заказов
/cancel — отменить оформление заказа`

func (b *StoreBot) handleStart(ctx context.Context, msg *tgbotapi.Message, user *domain.User) {
	// deep-link /start <реферальный код>
	if code := msg.CommandArguments(); code != "" {
		referrer, err := b.referrals.Activate(ctx, code, user)
		switch {
		case err == nil:
			b.sendHTML(msg.Chat.ID, fmt.Sprintf(
				"Вы пришли по приглашению <b>%s</b> — на первый заказ действует скидка %d%%!",
				referrer.FirstName, b.cfg.ReferredDiscountPercent))
		case errors.Is(err, service.ErrReferralSelf),
			errors.Is(err, service.ErrReferralAlreadyReferred),
			errors.Is(err, service.ErrReferralInvalidCode):
			// тихо пропускаем: приветствие ниже всё равно отправится
			b.log.Debug("активация реферального кода отклонена", "tg_id", user.TgID, "reason", err)
		default:
			b.log.Error("ошибка активации реферального кода", "tg_id", user.TgID, "error", err)
		}
	}

	b.sendKeyboard(msg.Chat.ID, fmt.Sprintf(`<b>💎 Добро пожаловать, %s!</b>

Здесь можно купить алмазы и пропуска с моментальной доставкой на игровой аккаунт.

Выберите регион:`, user.FirstName), regionsKeyboard())
}

func (b *StoreBot) handlePromoCommand(ctx context.Context, chatID int64, user *domain.User) {
	promo, err := b.promos.EnsureWelcomePromo(ctx, user)
	if err != nil {
		b.log.Error("не удалось выдать приветственный код", "user_id", user.ID, "error", err)
		b.sendHTML(chatID, "Что-то пошло не так, попробуйте позже.")
		return
	}
	if promo == nil {
		b.sendHTML(chatID, "Приветственный промокод доступен только до первой покупки. Следите за акциями!")
		return
	}

	b.sendHTML(chatID, fmt.Sprintf(`<b>🎁 Ваш приветственный промокод</b>

<code>%s</code>

Скидка %d%% на первый заказ, действует до %s.
Введите его при оформлении заказа.`,
		promo.Code, promo.Value, promo.ValidUntil.Format("02.01.2006")))
}

func (b *StoreBot) handleRefCommand(ctx context.Context, chatID int64, user *domain.User) {
	code, err := b.referrals.IssueCode(ctx, user)
	if err != nil {
		b.log.Error("не удалось выдать реферальный код", "user_id", user.ID, "error", err)
		b.sendHTML(chatID, "Что-то пошло не так, попробуйте позже.")
		return
	}
	user.ReferralCode = code

	stats, err := b.referrals.GetStats(ctx, user)
	if err != nil {
		b.log.Error("не удалось собрать реферальную статистику", "user_id", user.ID, "error", err)
		b.sendHTML(chatID, "Что-то пошло не так, попробуйте позже.")
		return
	}

	b.sendHTML(chatID, fmt.Sprintf(`<b>👥 Реферальная программа</b>

Ваша ссылка:
https://t.me/%s?start=%s

Приглашено: %d
Заработано за всё время: %d
Текущий бонусный баланс: %d

Вы получаете %d%% с каждого заказа приглашённых (множитель растёт с уровнем лояльности), а они — скидку %d%% на первый заказ.`,
		b.bot.Self.UserName, stats.Code,
		stats.ReferredCount, stats.TotalEarned, stats.BonusBalance,
		b.cfg.ReferrerBonusPercent, b.cfg.ReferredDiscountPercent))
}

func (b *StoreBot) handleProfileCommand(chatID int64, user *domain.User) {
	tier := domain.Classify(user.PurchaseCount)
	b.sendHTML(chatID, fmt.Sprintf(`<b>👤 Профиль</b>

Покупок: %d
Потрачено: %d
Уровень: %s (бонусный множитель x%.2f)
Бонусный баланс: %d`,
		user.PurchaseCount, user.TotalSpent, tier.Name, tier.Multiplier, user.BonusBalance))
}

func (b *StoreBot) handleOrdersCommand(ctx context.Context, chatID int64, user *domain.User) {
	orders, err := b.payments.GetRecentOrders(ctx, user.ID, 10)
	if err != nil {
		b.log.Error("не удалось загрузить заказы", "user_id", user.ID, "error", err)
		b.sendHTML(chatID, "Что-то пошло не так, попробуйте позже.")
		return
	}
	if len(orders) == 0 {
		b.sendHTML(chatID, "У вас пока нет заказов. /shop — каталог.")
		return
	}

	text := "<b>📦 Последние заказы</b>\n\n"
	for _, o := range orders {
		status := "⏳"
		switch o.Status {
		case domain.OrderConfirmed:
			status = "✅"
		case domain.OrderDeclined:
			status = "❌"
		}
		text += fmt.Sprintf("%s %s | %d %s | %s\n",
			status, o.ItemTitle, o.Amount, o.Currency, o.CreatedAt.Format("02.01.2006 15:04"))
	}
	b.sendHTML(chatID, text)
}

// --- сообщения по шагам сессии ---

func (b *StoreBot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	sess, err := b.sessions.Get(ctx, msg.From.ID)
	if err != nil {
		b.log.Error("не удалось загрузить сессию", "tg_id", msg.From.ID, "error", err)
		return
	}
	if sess == nil {
		return // сообщение вне оформления заказа
	}

	if len(msg.Photo) > 0 {
		b.handleProofPhoto(ctx, msg, sess)
		return
	}

	switch sess.Step {
	case session.StepPlayerID:
		b.handlePlayerIDInput(ctx, msg, sess)
	case session.StepPromo:
		b.handlePromoInput(ctx, msg, sess)
	case session.StepProof:
		b.sendHTML(msg.Chat.ID, "Пришлите скриншот чека об оплате (изображением).")
	}
}

func (b *StoreBot) handlePlayerIDInput(ctx context.Context, msg *tgbotapi.Message, sess *session.Session) {
	if err := sess.EnterPlayerID(msg.Text); err != nil {
		// самопереход: остаёмся на шаге и называем конкретную причину
		b.sendHTML(msg.Chat.ID, fmt.Sprintf("❌ %s\n\nВведите игровой ID ещё раз:", err))
		return
	}

	if err := b.sessions.Put(ctx, msg.From.ID, sess); err != nil {
		b.log.Error("не удалось сохранить сессию", "tg_id", msg.From.ID, "error", err)
		return
	}

	b.sendKeyboard(msg.Chat.ID, fmt.Sprintf(`ID принят: <code>%s</code>

Есть промокод? Введите его или продолжите без скидки.`, sess.PlayerID), skipPromoKeyboard())
}

func (b *StoreBot) handlePromoInput(ctx context.Context, msg *tgbotapi.Message, sess *session.Session) {
	user, err := b.userRepo.GetByTgID(ctx, msg.From.ID)
	if err != nil || user == nil {
		b.log.Error("не удалось загрузить пользователя для проверки промокода", "tg_id", msg.From.ID, "error", err)
		return
	}

	quote, err := b.promos.ValidateAndPrice(ctx, user.ID, msg.Text, sess.Price)
	if err != nil {
		if isBusinessPromoError(err) {
			// остаёмся на шаге: пользователь может попробовать другой код или пропустить
			b.sendKeyboard(msg.Chat.ID, fmt.Sprintf("❌ %s\n\nВведите другой код или продолжите без скидки.", err), skipPromoKeyboard())
			return
		}
		b.log.Error("ошибка проверки промокода", "user_id", user.ID, "error", err)
		b.sendKeyboard(msg.Chat.ID, "Не удалось проверить промокод, попробуйте ещё раз.", skipPromoKeyboard())
		return
	}

	if err := sess.ApplyPromo(quote.Promo.Code, quote.Discount); err != nil {
		b.log.Warn("промокод на неверном шаге", "tg_id", msg.From.ID, "step", sess.Step)
		return
	}
	if err := b.sessions.Put(ctx, msg.From.ID, sess); err != nil {
		b.log.Error("не удалось сохранить сессию", "tg_id", msg.From.ID, "error", err)
		return
	}

	b.sendKeyboard(msg.Chat.ID, fmt.Sprintf(`✅ Промокод <code>%s</code> применён!

Скидка: %d %s
<b>К оплате: %d %s</b>

Выберите способ оплаты:`,
		quote.Promo.Code, quote.Discount, sess.Currency, sess.FinalPrice, sess.Currency),
		paymentKeyboard(sess.Region))
}

// isBusinessPromoError отличает нарушения правил (показываем пользователю)
// от инфраструктурных ошибок (логируем, показываем общее сообщение)
func isBusinessPromoError(err error) bool {
	return errors.Is(err, service.ErrPromoNotFound) ||
		errors.Is(err, service.ErrPromoExpired) ||
		errors.Is(err, service.ErrPromoExhausted) ||
		errors.Is(err, service.ErrPromoBelowMinimum) ||
		errors.Is(err, service.ErrPromoAlreadyUsed) ||
		errors.Is(err, service.ErrPromoNotFirstOrder) ||
		errors.Is(err, service.ErrPromoBadFormat)
}

// --- callback-кнопки ---

func (b *StoreBot) handleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) {
	// callback от недоступного сообщения приходит без Message
	if cb.Message == nil || cb.Message.Chat == nil {
		b.log.Warn("callback без сообщения пропущен", "tg_id", cb.From.ID, "data", cb.Data)
		return
	}

	// снимаем "часики" сразу, ответ по сути уйдёт отдельным сообщением
	if _, err := b.bot.Request(tgbotapi.NewCallback(cb.ID, "")); err != nil {
		b.log.Debug("не удалось ответить на callback", "error", err)
	}

	action, err := ParseAction(cb.Data)
	if err != nil {
		b.log.Warn("неизвестный callback-токен", "data", cb.Data, "tg_id", cb.From.ID)
		return
	}

	chatID := cb.Message.Chat.ID

	switch action.Kind {
	case ActionBackToShop:
		b.sendKeyboard(chatID, "<b>Выберите регион:</b>", regionsKeyboard())

	case ActionShowRegion:
		region, ok := catalog.GetRegion(action.Region)
		if !ok {
			b.sendHTML(chatID, "Регион не найден.")
			return
		}
		b.sendKeyboard(chatID, fmt.Sprintf("<b>Каталог — %s</b>", region.Name), itemsKeyboard(region))

	case ActionSelectItem:
		b.handleSelectItem(ctx, cb, action)

	case ActionSkipPromo:
		b.handleSkipPromo(ctx, cb)

	case ActionPayMethod:
		b.handlePayMethod(ctx, cb, action.Method)

	case ActionConfirmOrder:
		b.handleAdminConfirm(ctx, cb, action.OrderID)

	case ActionDeclineOrder:
		b.handleAdminDecline(ctx, cb, action.OrderID)
	}
}

func (b *StoreBot) handleSelectItem(ctx context.Context, cb *tgbotapi.CallbackQuery, action Action) {
	item, ok := catalog.GetItem(action.Region, action.Index)
	if !ok {
		b.sendHTML(cb.Message.Chat.ID, "Позиция не найдена, откройте каталог заново: /shop")
		return
	}

	// новая сессия перекрывает незавершённую: выбор позиции — явное начало заказа
	sess := session.New(cb.From.ID, action.Region, action.Index, item.Title, item.Price, item.Currency)
	if err := b.sessions.Put(ctx, cb.From.ID, sess); err != nil {
		b.log.Error("не удалось создать сессию", "tg_id", cb.From.ID, "error", err)
		b.sendHTML(cb.Message.Chat.ID, "Что-то пошло не так, попробуйте позже.")
		return
	}

	b.sendHTML(cb.Message.Chat.ID, fmt.Sprintf(`<b>%s</b> — %d %s

Введите игровой ID (только цифры):`, item.Title, item.Price, item.Currency))
}

func (b *StoreBot) handleSkipPromo(ctx context.Context, cb *tgbotapi.CallbackQuery) {
	sess, err := b.sessions.Get(ctx, cb.From.ID)
	if err != nil || sess == nil {
		b.sendHTML(cb.Message.Chat.ID, "Сессия заказа не найдена, начните заново: /shop")
		return
	}

	// приглашённому без покупок скидка на первый заказ полагается и без кода
	referred := false
	if user, err := b.userRepo.GetByTgID(ctx, cb.From.ID); err == nil && user != nil &&
		user.ReferredBy != nil && user.PurchaseCount == 0 {
		if discount := b.referrals.ComputeReferredDiscount(sess.Price); discount > 0 {
			if err := sess.ApplyPromo("", discount); err == nil {
				referred = true
			}
		}
	}
	if !referred {
		if err := sess.SkipPromo(); err != nil {
			b.log.Debug("пропуск промокода на неверном шаге", "tg_id", cb.From.ID, "step", sess.Step)
			return
		}
	}
	if err := b.sessions.Put(ctx, cb.From.ID, sess); err != nil {
		b.log.Error("не удалось сохранить сессию", "tg_id", cb.From.ID, "error", err)
		return
	}

	text := fmt.Sprintf("<b>К оплате: %d %s</b>\n\nВыберите способ оплаты:", sess.FinalPrice, sess.Currency)
	if referred {
		text = fmt.Sprintf(`🎁 Скидка за приглашение: %d %s

<b>К оплате: %d %s</b>

Выберите способ оплаты:`, sess.Discount, sess.Currency, sess.FinalPrice, sess.Currency)
	}
	b.sendKeyboard(cb.Message.Chat.ID, text, paymentKeyboard(sess.Region))
}

func (b *StoreBot) handlePayMethod(ctx context.Context, cb *tgbotapi.CallbackQuery, method domain.PaymentMethod) {
	chatID := cb.Message.Chat.ID

	sess, err := b.sessions.Get(ctx, cb.From.ID)
	if err != nil || sess == nil {
		b.sendHTML(chatID, "Сессия заказа не найдена, начните заново: /shop")
		return
	}
	if sess.Step != session.StepPayment {
		return
	}

	user, err := b.userRepo.GetByTgID(ctx, cb.From.ID)
	if err != nil || user == nil {
		b.log.Error("не удалось загрузить пользователя при оплате", "tg_id", cb.From.ID, "error", err)
		b.sendHTML(chatID, "Что-то пошло не так, попробуйте позже.")
		return
	}

	orderID := uuid.NewString()
	invoiceURL := ""

	if method == domain.PayCrypto {
		invoice, err := b.crypto.CreateInvoice(ctx, cryptopay.CreateInvoiceRequest{
			CurrencyType: "fiat",
			Fiat:         string(sess.Currency),
			Amount:       fmt.Sprintf("%d", sess.FinalPrice),
			Description:  fmt.Sprintf("%s (ID %s)", sess.ItemTitle, sess.PlayerID),
			Payload:      orderID,
			ExpiresIn:    3600,
		})
		if err != nil {
			// сессия остаётся на выборе оплаты, предлагаем повтор или другой способ
			b.log.Error("не удалось создать крипто-инвойс", "tg_id", cb.From.ID, "error", err)
			b.sendKeyboard(chatID, "❌ Не удалось создать крипто-счёт. Попробуйте ещё раз или выберите другой способ.", retryPaymentKeyboard())
			return
		}
		invoiceURL = invoice.BotInvoiceURL
	}

	order := &domain.Order{
		OrderID:   orderID,
		UserID:    user.ID,
		Region:    sess.Region,
		ItemTitle: sess.ItemTitle,
		PlayerID:  sess.PlayerID,
		Amount:    sess.FinalPrice,
		Currency:  sess.Currency,
		PromoCode: sess.PromoCode,
		Discount:  sess.Discount,
		Method:    method,
	}
	if err := b.payments.CreateOrder(ctx, order); err != nil {
		b.log.Error("не удалось создать заказ", "tg_id", cb.From.ID, "error", err)
		b.sendHTML(chatID, "Что-то пошло не так, попробуйте позже.")
		return
	}

	if err := sess.ChooseMethod(method, orderID, invoiceURL); err != nil {
		return
	}
	if err := b.sessions.Put(ctx, cb.From.ID, sess); err != nil {
		b.log.Error("не удалось сохранить сессию", "tg_id", cb.From.ID, "error", err)
		return
	}

	switch method {
	case domain.PayCrypto:
		b.sendHTML(chatID, fmt.Sprintf(`<b>Крипто-оплата</b>

Сумма: %d %s
Счёт: %s

После оплаты заказ подтвердится автоматически.`, sess.FinalPrice, sess.Currency, invoiceURL))

	case domain.PayBank:
		b.sendHTML(chatID, fmt.Sprintf(`<b>Перевод на карту</b>

Карта: <code>%s</code> (%s)
Сумма: <b>%d %s</b>
Комментарий к переводу: <code>%s</code>

После перевода пришлите скриншот чека.`,
			b.cfg.BankCardNumber, b.cfg.BankCardHolder, sess.FinalPrice, sess.Currency, shortID(orderID)))

	case domain.PayEWallet:
		b.sendHTML(chatID, fmt.Sprintf(`<b>Оплата на кошелёк</b>

Номер: <code>%s</code>
Сумма: <b>%d %s</b>
Комментарий: <code>%s</code>

После оплаты пришлите скриншот чека.`,
			b.cfg.EWalletPhone, sess.FinalPrice, sess.Currency, shortID(orderID)))
	}
}

// handleProofPhoto закрывает сессию: чек уходит админам на ручную проверку
func (b *StoreBot) handleProofPhoto(ctx context.Context, msg *tgbotapi.Message, sess *session.Session) {
	if !sess.AwaitingProof() {
		return
	}

	user, err := b.userRepo.GetByTgID(ctx, msg.From.ID)
	if err != nil || user == nil {
		b.log.Error("не удалось загрузить пользователя для чека", "tg_id", msg.From.ID, "error", err)
		return
	}

	// самое большое из присланных разрешений
	photo := msg.Photo[len(msg.Photo)-1]

	caption := fmt.Sprintf(`🧾 <b>Чек на проверку</b>

Заказ: <code>%s</code>
Покупатель: @%s (TG: %d)
Позиция: %s
Игровой ID: <code>%s</code>
Сумма: %d %s`,
		sess.OrderID, user.Username, user.TgID,
		sess.ItemTitle, sess.PlayerID, sess.FinalPrice, sess.Currency)
	if sess.PromoCode != "" {
		caption += fmt.Sprintf("\nПромокод: %s (скидка %d)", sess.PromoCode, sess.Discount)
	}

	adminPhoto := tgbotapi.NewPhoto(b.cfg.AdminChatID, tgbotapi.FileID(photo.FileID))
	adminPhoto.Caption = caption
	adminPhoto.ParseMode = "HTML"
	adminPhoto.ReplyMarkup = reviewKeyboard(sess.OrderID)
	if _, err := b.bot.Send(adminPhoto); err != nil {
		b.log.Error("не удалось переслать чек админам", "order_id", sess.OrderID, "error", err)
		b.sendHTML(msg.Chat.ID, "Не удалось отправить чек на проверку, пришлите его ещё раз.")
		return
	}

	_ = b.sessions.Delete(ctx, msg.From.ID)

	b.sendHTML(msg.Chat.ID, `✅ Чек отправлен на проверку.

Обычно проверка занимает до 30 минут, после подтверждения придёт уведомление.`)
}

func shortID(orderID string) string {
	if len(orderID) > 8 {
		return orderID[:8]
	}
	return orderID
}

// --- отправка ---

func (b *StoreBot) sendHTML(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = "HTML"
	msg.DisableWebPagePreview = true
	if _, err := b.bot.Send(msg); err != nil {
		b.log.Error("не удалось отправить сообщение", "chat_id", chatID, "error", err)
	}
}

func (b *StoreBot) sendKeyboard(chatID int64, text string, kb tgbotapi.InlineKeyboardMarkup) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = "HTML"
	msg.ReplyMarkup = kb
	if _, err := b.bot.Send(msg); err != nil {
		b.log.Error("не удалось отправить сообщение", "chat_id", chatID, "error", err)
	}
}
