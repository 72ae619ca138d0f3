package paystack

import (
	"context"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/voltvend/voltvend/internal/payment/domain"
)

func sign(secret string, payload []byte) string {
	mac := hmac.New(sha512.New, []byte(secret))
	_, _ = mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

func TestVerifyWebhookSignature(t *testing.T) {
	p := New("sk_test_secret", "")
	payload := []byte(`{"event":"charge.success","data":{"reference":"ref-1","amount":50000}}`)

	if err := p.VerifyWebhookSignature(payload, sign("sk_test_secret", payload)); err != nil {
		t.Fatalf("valid signature rejected: %v", err)
	}
	if err := p.VerifyWebhookSignature(payload, sign("wrong_secret", payload)); !errors.Is(err, domain.ErrInvalidSignature) {
		t.Fatalf("wrong key: err = %v, want ErrInvalidSignature", err)
	}
	if err := p.VerifyWebhookSignature(payload, ""); !errors.Is(err, domain.ErrInvalidSignature) {
		t.Fatalf("blank signature: err = %v, want ErrInvalidSignature", err)
	}

	tampered := append([]byte{}, payload...)
	tampered[len(tampered)-2] = '1'
	if err := p.VerifyWebhookSignature(tampered, sign("sk_test_secret", payload)); !errors.Is(err, domain.ErrInvalidSignature) {
		t.Fatalf("tampered payload: err = %v, want ErrInvalidSignature", err)
	}
}

func TestParseWebhookEvent(t *testing.T) {
	p := New("sk_test_secret", "")

	event, err := p.ParseWebhookEvent([]byte(`{"event":"charge.success","data":{"reference":"ref-1","amount":50000,"paid_at":"2025-06-01T12:00:00Z"}}`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if event.Reference != "ref-1" || event.Amount != 50000 {
		t.Fatalf("event = %+v", event)
	}
	if event.PaidAt.IsZero() {
		t.Fatal("paid_at not parsed")
	}

	if _, err := p.ParseWebhookEvent([]byte(`{"event":"transfer.success","data":{"reference":"ref-1"}}`)); !errors.Is(err, domain.ErrEventIgnored) {
		t.Fatalf("other event: err = %v, want ErrEventIgnored", err)
	}
	if _, err := p.ParseWebhookEvent([]byte(`{"event":"charge.success","data":{}}`)); !errors.Is(err, domain.ErrInvalidPayload) {
		t.Fatalf("missing reference: err = %v, want ErrInvalidPayload", err)
	}
	if _, err := p.ParseWebhookEvent([]byte(`not json`)); !errors.Is(err, domain.ErrInvalidPayload) {
		t.Fatalf("bad json: err = %v, want ErrInvalidPayload", err)
	}
}

func TestInitialize(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/transaction/initialize" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer sk_test_secret" {
			t.Errorf("authorization = %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":true,"data":{"authorization_url":"https://checkout.paystack.com/abc","access_code":"abc","reference":"ref-1"}}`))
	}))
	defer srv.Close()

	p := New("sk_test_secret", srv.URL)
	resp, err := p.Initialize(context.Background(), domain.InitializeRequest{Reference: "ref-1", Amount: 50000, Email: "ops@acme.test"})
	if err != nil {
		t.Fatalf("initialize: %v", err)
	}
	if resp.AuthorizationURL != "https://checkout.paystack.com/abc" || resp.Reference != "ref-1" {
		t.Fatalf("resp = %+v", resp)
	}
}

func TestVerify(t *testing.T) {
	status := `"success"`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/transaction/verify/ref-1" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":true,"data":{"reference":"ref-1","status":` + status + `,"amount":50000,"paid_at":"2025-06-01T12:00:00Z"}}`))
	}))
	defer srv.Close()

	p := New("sk_test_secret", srv.URL)

	result, err := p.Verify(context.Background(), "ref-1")
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if result.Amount != 50000 || result.Status != "success" {
		t.Fatalf("result = %+v", result)
	}

	status = `"abandoned"`
	if _, err := p.Verify(context.Background(), "ref-1"); !errors.Is(err, domain.ErrPaymentNotSuccessful) {
		t.Fatalf("abandoned: err = %v, want ErrPaymentNotSuccessful", err)
	}

	if _, err := p.Verify(context.Background(), "missing"); !errors.Is(err, domain.ErrTransactionNotFound) {
		t.Fatalf("missing: err = %v, want ErrTransactionNotFound", err)
	}
}

func TestVerifyProviderDown(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	p := New("sk_test_secret", srv.URL)
	if _, err := p.Verify(context.Background(), "ref-1"); !errors.Is(err, domain.ErrProviderUnavailable) {
		t.Fatalf("5xx: err = %v, want ErrProviderUnavailable", err)
	}
}
