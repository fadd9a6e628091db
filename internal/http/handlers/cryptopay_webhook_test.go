package handlers

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"diamond_store/internal/cryptopay"

	"github.com/gin-gonic/gin"
)

const testToken = "12345:TESTTOKEN"

func newTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	// сервис оплат не нужен: проверяются пути до обращения к нему
	h := NewCryptoPayWebhookHandler(testToken, nil)
	r.POST("/webhook/cryptopay", h.Handle)
	return r
}

func postWebhook(r *gin.Engine, body []byte, signature string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/webhook/cryptopay", bytes.NewReader(body))
	if signature != "" {
		req.Header.Set("crypto-pay-api-signature", signature)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestWebhookRejectsBadSignature(t *testing.T) {
	r := newTestRouter()
	body := []byte(`{"update_id":1,"update_type":"invoice_paid"}`)

	if w := postWebhook(r, body, ""); w.Code != http.StatusUnauthorized {
		t.Errorf("без подписи: статус %d, ожидался 401", w.Code)
	}
	if w := postWebhook(r, body, "deadbeef"); w.Code != http.StatusUnauthorized {
		t.Errorf("с неверной подписью: статус %d, ожидался 401", w.Code)
	}
}

func TestWebhookRejectsInvalidBody(t *testing.T) {
	r := newTestRouter()
	body := []byte("не json")

	w := postWebhook(r, body, cryptopay.Sign(testToken, body))
	if w.Code != http.StatusBadRequest {
		t.Errorf("невалидное тело: статус %d, ожидался 400", w.Code)
	}
}

func TestWebhookIgnoresOtherUpdateTypes(t *testing.T) {
	r := newTestRouter()
	body := []byte(`{"update_id":1,"update_type":"invoice_expired","payload":{"invoice_id":7}}`)

	w := postWebhook(r, body, cryptopay.Sign(testToken, body))
	if w.Code != http.StatusOK {
		t.Errorf("посторонний тип обновления: статус %d, ожидался 200", w.Code)
	}
}

func TestWebhookRejectsPaidWithoutOrderID(t *testing.T) {
	r := newTestRouter()
	body := []byte(`{"update_id":1,"update_type":"invoice_paid","payload":{"invoice_id":7,"status":"paid"}}`)

	w := postWebhook(r, body, cryptopay.Sign(testToken, body))
	if w.Code != http.StatusBadRequest {
		t.Errorf("оплата без order id: статус %d, ожидался 400", w.Code)
	}
}
