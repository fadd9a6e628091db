package cryptopay

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// Тип обновления, который интересует магазин
const UpdateInvoicePaid = "invoice_paid"

// Update — callback Crypto Pay об изменении инвойса
type Update struct {
	UpdateID    int64   `json:"update_id"`
	UpdateType  string  `json:"update_type"`
	RequestDate string  `json:"request_date"`
	Payload     Invoice `json:"payload"`
}

// VerifySignature проверяет подпись callback'а: HMAC-SHA256 от тела запроса
// с ключом SHA256(токен приложения)
func VerifySignature(token string, body []byte, signature string) bool {
	secret := sha256.Sum256([]byte(token))
	mac := hmac.New(sha256.New, secret[:])
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}

// ParseUpdate разбирает тело callback'а
func ParseUpdate(body []byte) (*Update, error) {
	var u Update
	if err := json.Unmarshal(body, &u); err != nil {
		return nil, fmt.Errorf("разбор callback'а: %w", err)
	}
	return &u, nil
}

// Sign считает подпись для тела запроса (используется в тестах webhook'а)
func Sign(token string, body []byte) string {
	secret := sha256.Sum256([]byte(token))
	mac := hmac.New(sha256.New, secret[:])
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}
