package fake

import (
	"context"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/voltvend/voltvend/internal/payment/domain"
)

// Provider is an in-memory gateway used in development and tests.
// Every initialized reference verifies as a successful payment.
type Provider struct {
	secretKey string

	mu           sync.Mutex
	transactions map[string]int64
}

func New(secretKey string) *Provider {
	if strings.TrimSpace(secretKey) == "" {
		secretKey = "fake_secret"
	}
	return &Provider{
		secretKey:    secretKey,
		transactions: map[string]int64{},
	}
}

func (p *Provider) Name() string {
	return "fake"
}

func (p *Provider) Initialize(ctx context.Context, req domain.InitializeRequest) (domain.InitializeResponse, error) {
	reference := strings.TrimSpace(req.Reference)
	if reference == "" {
		return domain.InitializeResponse{}, domain.ErrInvalidPayload
	}

	p.mu.Lock()
	p.transactions[reference] = req.Amount
	p.mu.Unlock()

	return domain.InitializeResponse{
		Reference:        reference,
		AuthorizationURL: "https://checkout.invalid/" + reference,
		AccessCode:       "fake_" + reference,
	}, nil
}

func (p *Provider) Verify(ctx context.Context, reference string) (domain.VerifyResult, error) {
	reference = strings.TrimSpace(reference)

	p.mu.Lock()
	amount, ok := p.transactions[reference]
	p.mu.Unlock()

	if !ok {
		return domain.VerifyResult{}, domain.ErrTransactionNotFound
	}
	return domain.VerifyResult{
		Reference: reference,
		Status:    "success",
		Amount:    amount,
		PaidAt:    time.Now().UTC(),
	}, nil
}

func (p *Provider) VerifyWebhookSignature(payload []byte, signature string) error {
	mac := hmac.New(sha512.New, []byte(p.secretKey))
	_, _ = mac.Write(payload)
	expected := hex.EncodeToString(mac.Sum(nil))

	if !hmac.Equal([]byte(strings.ToLower(strings.TrimSpace(signature))), []byte(expected)) {
		return domain.ErrInvalidSignature
	}
	return nil
}

// Sign produces the webhook signature for payload, for use in tests.
func (p *Provider) Sign(payload []byte) string {
	mac := hmac.New(sha512.New, []byte(p.secretKey))
	_, _ = mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

func (p *Provider) ParseWebhookEvent(payload []byte) (domain.WebhookEvent, error) {
	var envelope struct {
		Event string `json:"event"`
		Data  struct {
			Reference string `json:"reference"`
			Amount    int64  `json:"amount"`
		} `json:"data"`
	}
	if err := json.Unmarshal(payload, &envelope); err != nil {
		return domain.WebhookEvent{}, domain.ErrInvalidPayload
	}
	if strings.TrimSpace(envelope.Data.Reference) == "" {
		return domain.WebhookEvent{}, domain.ErrInvalidPayload
	}
	if !strings.EqualFold(strings.TrimSpace(envelope.Event), domain.EventTypeChargeSucceeded) {
		return domain.WebhookEvent{}, domain.ErrEventIgnored
	}
	return domain.WebhookEvent{
		Type:      domain.EventTypeChargeSucceeded,
		Reference: strings.TrimSpace(envelope.Data.Reference),
		Amount:    envelope.Data.Amount,
		PaidAt:    time.Now().UTC(),
	}, nil
}
