package handlers

import (
	"errors"
	"io"
	"net/http"

	"diamond_store/internal/cryptopay"
	"diamond_store/internal/logger"
	"diamond_store/internal/metrics"
	"diamond_store/internal/service"

	"github.com/gin-gonic/gin"
)

// заголовок подписи callback'а Crypto Pay
const signatureHeader = "crypto-pay-api-signature"

// CryptoPayWebhookHandler принимает callback'и Crypto Pay об оплате инвойсов
// и подтверждает соответствующий заказ. Повторная доставка того же callback'а
// безопасна: подтверждение идемпотентно по order id.
type CryptoPayWebhookHandler struct {
	token    string
	payments *service.PaymentService
}

func NewCryptoPayWebhookHandler(token string, payments *service.PaymentService) *CryptoPayWebhookHandler {
	return &CryptoPayWebhookHandler{token: token, payments: payments}
}

func (h *CryptoPayWebhookHandler) Handle(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		metrics.PaymentCallbacks.WithLabelValues("bad_request").Inc()
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot read body"})
		return
	}

	if !cryptopay.VerifySignature(h.token, body, c.GetHeader(signatureHeader)) {
		logger.Warn("callback с неверной подписью", "ip", c.ClientIP())
		metrics.PaymentCallbacks.WithLabelValues("bad_signature").Inc()
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid signature"})
		return
	}

	update, err := cryptopay.ParseUpdate(body)
	if err != nil {
		metrics.PaymentCallbacks.WithLabelValues("bad_request").Inc()
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}

	if update.UpdateType != cryptopay.UpdateInvoicePaid {
		// неинтересные типы подтверждаем, чтобы провайдер не ретраил
		c.JSON(http.StatusOK, gin.H{"ok": true})
		return
	}

	orderID := update.Payload.Payload
	if orderID == "" {
		logger.Warn("callback об оплате без order id", "invoice_id", update.Payload.InvoiceID)
		metrics.PaymentCallbacks.WithLabelValues("bad_request").Inc()
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing payload"})
		return
	}

	_, err = h.payments.Confirm(c.Request.Context(), orderID, "auto")
	switch {
	case errors.Is(err, service.ErrOrderFinalized):
		// дубликат доставки: заказ уже подтверждён, отвечаем успехом
		metrics.PaymentCallbacks.WithLabelValues("duplicate").Inc()
		c.JSON(http.StatusOK, gin.H{"ok": true})
	case errors.Is(err, service.ErrOrderNotFound):
		logger.Warn("callback по неизвестному заказу", "order_id", orderID)
		metrics.PaymentCallbacks.WithLabelValues("unknown_order").Inc()
		c.JSON(http.StatusOK, gin.H{"ok": true})
	case err != nil:
		logger.Error("ошибка подтверждения заказа из callback'а", "order_id", orderID, "error", err)
		metrics.PaymentCallbacks.WithLabelValues("error").Inc()
		c.JSON(http.StatusInternalServerError, gin.H{"error": "confirmation failed"})
	default:
		metrics.PaymentCallbacks.WithLabelValues("confirmed").Inc()
		c.JSON(http.StatusOK, gin.H{"ok": true})
	}
}
