package cryptopay

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	APIMainnet = "https://pay.crypt.bot/api"
	APITestnet = "https://testnet-pay.crypt.bot/api"

	// таймаут создания инвойса; по его истечении операция считается
	// неудавшейся и заказ не продвигается
	requestTimeout = 15 * time.Second
)

// Client — клиент Crypto Pay API (выставление крипто-инвойсов)
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// NewClient создает клиент Crypto Pay
func NewClient(token string, testnet bool) *Client {
	baseURL := APIMainnet
	if testnet {
		baseURL = APITestnet
	}
	return &Client{
		baseURL: baseURL,
		token:   token,
		httpClient: &http.Client{
			Timeout: requestTimeout,
		},
	}
}

// Invoice — инвойс в ответе API
type Invoice struct {
	InvoiceID     int64  `json:"invoice_id"`
	Status        string `json:"status"`
	Asset         string `json:"asset"`
	Amount        string `json:"amount"`
	BotInvoiceURL string `json:"bot_invoice_url"`
	Payload       string `json:"payload"`
	CreatedAt     string `json:"created_at"`
	PaidAt        string `json:"paid_at,omitempty"`
}

type apiResponse struct {
	Ok     bool            `json:"ok"`
	Result json.RawMessage `json:"result"`
	Error  *apiError       `json:"error,omitempty"`
}

type apiError struct {
	Code int    `json:"code"`
	Name string `json:"name"`
}

// CreateInvoiceRequest — параметры создания инвойса. Payload вернётся без
// изменений в callback'е об оплате — в нём передаётся order id.
// Магазин выставляет фиатные инвойсы (currency_type=fiat): покупатель платит
// любым поддерживаемым активом по курсу Crypto Pay.
type CreateInvoiceRequest struct {
	CurrencyType string `json:"currency_type,omitempty"` // "crypto" или "fiat"
	Asset        string `json:"asset,omitempty"`
	Fiat         string `json:"fiat,omitempty"`
	Amount       string `json:"amount"`
	Description  string `json:"description,omitempty"`
	Payload      string `json:"payload,omitempty"`
	ExpiresIn    int    `json:"expires_in,omitempty"`
}

// CreateInvoice выставляет инвойс и возвращает ссылку на оплату
func (c *Client) CreateInvoice(ctx context.Context, req CreateInvoiceRequest) (*Invoice, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/createInvoice", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Crypto-Pay-API-Token", c.token)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("запрос к Crypto Pay: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("ошибка Crypto Pay API: %s - %s", resp.Status, string(raw))
	}

	var apiResp apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return nil, err
	}
	if !apiResp.Ok {
		if apiResp.Error != nil {
			return nil, fmt.Errorf("ошибка Crypto Pay API: %d %s", apiResp.Error.Code, apiResp.Error.Name)
		}
		return nil, fmt.Errorf("ошибка Crypto Pay API: неизвестная ошибка")
	}

	var invoice Invoice
	if err := json.Unmarshal(apiResp.Result, &invoice); err != nil {
		return nil, err
	}
	return &invoice, nil
}

// GetMe проверяет токен приложения при старте
func (c *Client) GetMe(ctx context.Context) error {
	httpReq, err := http.NewRequestWithContext(ctx, "GET", c.baseURL+"/getMe", nil)
	if err != nil {
		return err
	}
	httpReq.Header.Set("Crypto-Pay-API-Token", c.token)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("запрос к Crypto Pay: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("ошибка Crypto Pay API: %s - %s", resp.Status, string(raw))
	}
	return nil
}
