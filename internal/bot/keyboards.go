package bot

import (
	"fmt"

	"diamond_store/internal/catalog"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// regionsKeyboard — выбор региона витрины
func regionsKeyboard() tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	for _, r := range catalog.Regions() {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(
				fmt.Sprintf("%s (%s)", r.Name, r.Currency),
				"region_"+r.Code,
			),
		))
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// itemsKeyboard — позиции каталога региона
func itemsKeyboard(region catalog.Region) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	for i, item := range region.Items {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(
				fmt.Sprintf("%s — %d %s", item.Title, item.Price, item.Currency),
				fmt.Sprintf("item_%s_%d", region.Code, i),
			),
		))
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("« Регионы", "shop"),
	))
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// skipPromoKeyboard — кнопка пропуска промокода
func skipPromoKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Продолжить без промокода", "promo_skip"),
		),
	)
}

// paymentKeyboard — выбор способа оплаты; кошелёк подписывается по региону
func paymentKeyboard(region string) tgbotapi.InlineKeyboardMarkup {
	ewallet := "СБП"
	if region == "kz" {
		ewallet = "Kaspi"
	}
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Перевод на карту", "pay_bank"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(ewallet, "pay_ewallet"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Криптовалюта (Crypto Pay)", "pay_crypto"),
		),
	)
}

// retryPaymentKeyboard — повтор после ошибки создания инвойса
func retryPaymentKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Повторить", "pay_crypto"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Перевод на карту", "pay_bank"),
		),
	)
}

// reviewKeyboard — кнопки ручной проверки чека для админа
func reviewKeyboard(orderID string) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✅ Подтвердить", "confirm_"+orderID),
			tgbotapi.NewInlineKeyboardButtonData("❌ Отклонить", "decline_"+orderID),
		),
	)
}
