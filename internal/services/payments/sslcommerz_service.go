package payments

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"travelbuddy_backend/internal/config"
)

// Gateway abstracts the hosted-checkout provider so the payment service
// can be tested without network access.
type Gateway interface {
	InitiateCheckout(ctx context.Context, req *CheckoutRequest) (*CheckoutSession, error)
	ValidatePayment(ctx context.Context, valID string) (*ValidationResult, error)
}

type CheckoutRequest struct {
	TransactionID string
	Amount        int64 // minor currency units
	Currency      string
	Description   string
	CustomerName  string
	CustomerEmail string
	CustomerPhone string
}

type CheckoutSession struct {
	GatewayPageURL string
	SessionKey     string
	Raw            map[string]interface{}
}

type ValidationResult struct {
	Status        string
	TransactionID string
	GatewayTxnID  string
	Amount        string
	Currency      string
	Raw           map[string]interface{}
}

// Valid reports whether the gateway settled the transaction. SSLCommerz
// answers VALID for a fresh validation and VALIDATED for a repeated one.
func (v *ValidationResult) Valid() bool {
	s := strings.ToUpper(strings.TrimSpace(v.Status))
	return s == "VALID" || s == "VALIDATED"
}

type SSLCommerzService struct {
	cfg    *config.PaymentsConfig
	client *http.Client
}

func NewSSLCommerzService(cfg *config.PaymentsConfig) *SSLCommerzService {
	return &SSLCommerzService{
		cfg: cfg,
		client: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// InitiateCheckout creates a hosted-checkout session and returns the URL
// the customer must be redirected to. The callback URLs carry the
// transaction id so the redirect handlers can recover it even when the
// gateway strips the POST body.
func (s *SSLCommerzService) InitiateCheckout(ctx context.Context, req *CheckoutRequest) (*CheckoutSession, error) {
	amount := fmt.Sprintf("%d.%02d", req.Amount/100, req.Amount%100)

	form := url.Values{}
	form.Set("store_id", s.cfg.StoreID)
	form.Set("store_passwd", s.cfg.StorePassword)
	form.Set("total_amount", amount)
	form.Set("currency", req.Currency)
	form.Set("tran_id", req.TransactionID)
	form.Set("success_url", s.callbackURL(s.cfg.SuccessURL, req.TransactionID, amount, "success"))
	form.Set("fail_url", s.callbackURL(s.cfg.FailURL, req.TransactionID, amount, "fail"))
	form.Set("cancel_url", s.callbackURL(s.cfg.CancelURL, req.TransactionID, amount, "cancel"))
	form.Set("ipn_url", s.cfg.IPNURL)
	form.Set("shipping_method", "NO")
	form.Set("product_name", req.Description)
	form.Set("product_category", "Subscription")
	form.Set("product_profile", "non-physical-goods")
	form.Set("cus_name", orDefault(req.CustomerName, "TravelBuddy User"))
	form.Set("cus_email", req.CustomerEmail)
	form.Set("cus_add1", "Dhaka")
	form.Set("cus_city", "Dhaka")
	form.Set("cus_country", "Bangladesh")
	form.Set("cus_phone", orDefault(req.CustomerPhone, "01700000000"))

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.PaymentAPI,
		strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("sslcommerz session request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("sslcommerz session request returned status %d", resp.StatusCode)
	}

	var raw map[string]interface{}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("sslcommerz session response is not JSON: %w", err)
	}

	status, _ := raw["status"].(string)
	pageURL, _ := raw["GatewayPageURL"].(string)
	if !strings.EqualFold(status, "SUCCESS") || pageURL == "" {
		reason, _ := raw["failedreason"].(string)
		if reason == "" {
			reason = "gateway did not return a checkout URL"
		}
		return nil, fmt.Errorf("sslcommerz session rejected: %s", reason)
	}

	sessionKey, _ := raw["sessionkey"].(string)
	return &CheckoutSession{
		GatewayPageURL: pageURL,
		SessionKey:     sessionKey,
		Raw:            raw,
	}, nil
}

// ValidatePayment asks the validation API whether a transaction really
// settled. Redirect callbacks are spoofable; this call is the only
// authoritative confirmation.
func (s *SSLCommerzService) ValidatePayment(ctx context.Context, valID string) (*ValidationResult, error) {
	params := url.Values{}
	params.Set("val_id", valID)
	params.Set("store_id", s.cfg.StoreID)
	params.Set("store_passwd", s.cfg.StorePassword)
	params.Set("format", "json")

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet,
		s.cfg.ValidationAPI+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := s.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("sslcommerz validation request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("sslcommerz validation returned status %d", resp.StatusCode)
	}

	var raw map[string]interface{}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("sslcommerz validation response is not JSON: %w", err)
	}

	result := &ValidationResult{Raw: raw}
	result.Status, _ = raw["status"].(string)
	result.TransactionID, _ = raw["tran_id"].(string)
	result.GatewayTxnID, _ = raw["bank_tran_id"].(string)
	result.Amount, _ = raw["amount"].(string)
	result.Currency, _ = raw["currency"].(string)
	return result, nil
}

func (s *SSLCommerzService) callbackURL(base, tranID, amount, status string) string {
	sep := "?"
	if strings.Contains(base, "?") {
		sep = "&"
	}
	q := url.Values{}
	q.Set("transactionId", tranID)
	q.Set("amount", amount)
	q.Set("status", status)
	return base + sep + q.Encode()
}

func orDefault(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}
