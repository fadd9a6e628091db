package cryptopay

import (
	"testing"
)

const testToken = "12345:TESTTOKEN"

func TestVerifySignature(t *testing.T) {
	body := []byte(`{"update_id":1,"update_type":"invoice_paid"}`)
	sig := Sign(testToken, body)

	if !VerifySignature(testToken, body, sig) {
		t.Error("валидная подпись не прошла проверку")
	}
}

func TestVerifySignatureTampered(t *testing.T) {
	body := []byte(`{"update_id":1,"update_type":"invoice_paid"}`)
	sig := Sign(testToken, body)

	tampered := []byte(`{"update_id":2,"update_type":"invoice_paid"}`)
	if VerifySignature(testToken, tampered, sig) {
		t.Error("подпись прошла для изменённого тела")
	}
	if VerifySignature("other:TOKEN", body, sig) {
		t.Error("подпись прошла с чужим токеном")
	}
	if VerifySignature(testToken, body, "") {
		t.Error("пустая подпись прошла проверку")
	}
}

func TestParseUpdate(t *testing.T) {
	body := []byte(`{
		"update_id": 42,
		"update_type": "invoice_paid",
		"request_date": "2024-06-01T12:00:00Z",
		"payload": {
			"invoice_id": 777,
			"status": "paid",
			"amount": "900",
			"payload": "order-abc-123"
		}
	}`)

	u, err := ParseUpdate(body)
	if err != nil {
		t.Fatalf("разбор callback'а: %v", err)
	}
	if u.UpdateType != UpdateInvoicePaid {
		t.Errorf("тип обновления %q, ожидался %q", u.UpdateType, UpdateInvoicePaid)
	}
	if u.Payload.InvoiceID != 777 {
		t.Errorf("invoice_id = %d, ожидалось 777", u.Payload.InvoiceID)
	}
	if u.Payload.Payload != "order-abc-123" {
		t.Errorf("order id из payload = %q, ожидалось order-abc-123", u.Payload.Payload)
	}
}

func TestParseUpdateInvalid(t *testing.T) {
	if _, err := ParseUpdate([]byte("не json")); err == nil {
		t.Error("ожидалась ошибка разбора невалидного тела")
	}
}
