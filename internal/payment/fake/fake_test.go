package fake

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/voltvend/voltvend/internal/payment/domain"
)

func TestInitializeThenVerify(t *testing.T) {
	p := New("")
	ctx := context.Background()

	resp, err := p.Initialize(ctx, domain.InitializeRequest{Reference: "ref-1", Amount: 50000, Email: "ops@acme.test"})
	require.NoError(t, err)
	assert.Equal(t, "ref-1", resp.Reference)
	assert.NotEmpty(t, resp.AuthorizationURL)

	result, err := p.Verify(ctx, "ref-1")
	require.NoError(t, err)
	assert.Equal(t, "success", result.Status)
	assert.Equal(t, int64(50000), result.Amount)

	_, err = p.Verify(ctx, "never-initialized")
	assert.ErrorIs(t, err, domain.ErrTransactionNotFound)

	_, err = p.Initialize(ctx, domain.InitializeRequest{Reference: " "})
	assert.ErrorIs(t, err, domain.ErrInvalidPayload)
}

func TestWebhookSignatureAndParse(t *testing.T) {
	p := New("fake_secret")
	payload := []byte(`{"event":"charge.success","data":{"reference":"ref-1","amount":50000}}`)

	require.NoError(t, p.VerifyWebhookSignature(payload, p.Sign(payload)))
	assert.ErrorIs(t, p.VerifyWebhookSignature(payload, "bad"), domain.ErrInvalidSignature)

	event, err := p.ParseWebhookEvent(payload)
	require.NoError(t, err)
	assert.Equal(t, "ref-1", event.Reference)
	assert.Equal(t, int64(50000), event.Amount)

	_, err = p.ParseWebhookEvent([]byte(`{"event":"refund.processed","data":{"reference":"ref-1"}}`))
	assert.ErrorIs(t, err, domain.ErrEventIgnored)
}
