package paystack

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/voltvend/voltvend/internal/payment/domain"
)

const defaultBaseURL = "https://api.paystack.co"

type Provider struct {
	baseURL   string
	secretKey string
	client    *http.Client
}

func New(secretKey, baseURL string) *Provider {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Provider{
		baseURL:   baseURL,
		secretKey: strings.TrimSpace(secretKey),
		client:    &http.Client{Timeout: 15 * time.Second},
	}
}

func (p *Provider) Name() string {
	return "paystack"
}

type initializePayload struct {
	Reference string `json:"reference"`
	Amount    int64  `json:"amount"`
	Email     string `json:"email"`
}

type initializeEnvelope struct {
	Status  bool   `json:"status"`
	Message string `json:"message"`
	Data    struct {
		AuthorizationURL string `json:"authorization_url"`
		AccessCode       string `json:"access_code"`
		Reference        string `json:"reference"`
	} `json:"data"`
}

func (p *Provider) Initialize(ctx context.Context, req domain.InitializeRequest) (domain.InitializeResponse, error) {
	body, err := json.Marshal(initializePayload{
		Reference: req.Reference,
		Amount:    req.Amount,
		Email:     req.Email,
	})
	if err != nil {
		return domain.InitializeResponse{}, err
	}

	var envelope initializeEnvelope
	if err := p.do(ctx, http.MethodPost, "/transaction/initialize", body, &envelope); err != nil {
		return domain.InitializeResponse{}, err
	}
	if !envelope.Status {
		return domain.InitializeResponse{}, fmt.Errorf("%w: %s", domain.ErrProviderUnavailable, envelope.Message)
	}

	return domain.InitializeResponse{
		Reference:        envelope.Data.Reference,
		AuthorizationURL: envelope.Data.AuthorizationURL,
		AccessCode:       envelope.Data.AccessCode,
	}, nil
}

type verifyEnvelope struct {
	Status bool `json:"status"`
	Data   struct {
		Reference string `json:"reference"`
		Status    string `json:"status"`
		Amount    int64  `json:"amount"`
		PaidAt    string `json:"paid_at"`
	} `json:"data"`
}

func (p *Provider) Verify(ctx context.Context, reference string) (domain.VerifyResult, error) {
	reference = strings.TrimSpace(reference)
	if reference == "" {
		return domain.VerifyResult{}, domain.ErrTransactionNotFound
	}

	var envelope verifyEnvelope
	if err := p.do(ctx, http.MethodGet, "/transaction/verify/"+reference, nil, &envelope); err != nil {
		return domain.VerifyResult{}, err
	}
	if !envelope.Status {
		return domain.VerifyResult{}, domain.ErrTransactionNotFound
	}

	result := domain.VerifyResult{
		Reference: envelope.Data.Reference,
		Status:    envelope.Data.Status,
		Amount:    envelope.Data.Amount,
	}
	if paidAt, err := time.Parse(time.RFC3339, envelope.Data.PaidAt); err == nil {
		result.PaidAt = paidAt
	}
	if !strings.EqualFold(result.Status, "success") {
		return result, domain.ErrPaymentNotSuccessful
	}
	return result, nil
}

// VerifyWebhookSignature checks the x-paystack-signature header value, an
// HMAC-SHA512 hex digest of the raw body keyed by the secret key.
func (p *Provider) VerifyWebhookSignature(payload []byte, signature string) error {
	signature = strings.TrimSpace(signature)
	if signature == "" || p.secretKey == "" {
		return domain.ErrInvalidSignature
	}

	mac := hmac.New(sha512.New, []byte(p.secretKey))
	_, _ = mac.Write(payload)
	expected := hex.EncodeToString(mac.Sum(nil))

	if !hmac.Equal([]byte(strings.ToLower(signature)), []byte(expected)) {
		return domain.ErrInvalidSignature
	}
	return nil
}

type webhookEnvelope struct {
	Event string `json:"event"`
	Data  struct {
		Reference string `json:"reference"`
		Amount    int64  `json:"amount"`
		PaidAt    string `json:"paid_at"`
	} `json:"data"`
}

func (p *Provider) ParseWebhookEvent(payload []byte) (domain.WebhookEvent, error) {
	var envelope webhookEnvelope
	if err := json.Unmarshal(payload, &envelope); err != nil {
		return domain.WebhookEvent{}, domain.ErrInvalidPayload
	}
	if strings.TrimSpace(envelope.Data.Reference) == "" {
		return domain.WebhookEvent{}, domain.ErrInvalidPayload
	}
	if !strings.EqualFold(strings.TrimSpace(envelope.Event), domain.EventTypeChargeSucceeded) {
		return domain.WebhookEvent{}, domain.ErrEventIgnored
	}

	event := domain.WebhookEvent{
		Type:      domain.EventTypeChargeSucceeded,
		Reference: strings.TrimSpace(envelope.Data.Reference),
		Amount:    envelope.Data.Amount,
	}
	if paidAt, err := time.Parse(time.RFC3339, envelope.Data.PaidAt); err == nil {
		event.PaidAt = paidAt
	}
	return event, nil
}

func (p *Provider) do(ctx context.Context, method, path string, body []byte, out any) error {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, p.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+p.secretKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrProviderUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return domain.ErrTransactionNotFound
	}
	if resp.StatusCode >= http.StatusInternalServerError {
		return domain.ErrProviderUnavailable
	}

	return json.NewDecoder(resp.Body).Decode(out)
}
