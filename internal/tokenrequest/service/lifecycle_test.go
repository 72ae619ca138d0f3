package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/voltvend/voltvend/internal/actorctx"
	"github.com/voltvend/voltvend/internal/clock"
	"github.com/voltvend/voltvend/internal/config"
	customerdomain "github.com/voltvend/voltvend/internal/customer/domain"
	customerrepo "github.com/voltvend/voltvend/internal/customer/repository"
	paymentfake "github.com/voltvend/voltvend/internal/payment/fake"
	pricingdomain "github.com/voltvend/voltvend/internal/pricing/domain"
	pricingrepo "github.com/voltvend/voltvend/internal/pricing/repository"
	tokendomain "github.com/voltvend/voltvend/internal/token/domain"
	tokenrepo "github.com/voltvend/voltvend/internal/token/repository"
	"github.com/voltvend/voltvend/internal/tokenrequest/domain"
	"github.com/voltvend/voltvend/internal/tokenrequest/repository"
	vendordomain "github.com/voltvend/voltvend/internal/vendors/domain"
	vendorrepo "github.com/voltvend/voltvend/internal/vendors/repository"
	verificationdomain "github.com/voltvend/voltvend/internal/verification/domain"
	verificationrepo "github.com/voltvend/voltvend/internal/verification/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type fixture struct {
	db       *gorm.DB
	node     *snowflake.Node
	clock    *clock.FakeClock
	provider *paymentfake.Provider
	policy   *config.PolicyHolder
	svc      domain.Service

	vendorID   snowflake.ID
	customerID snowflake.ID
	meter      string
}

const validToken = "1234-5678-9012-3456"

func newFixture(t *testing.T) *fixture {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := conn.DB()
	if err != nil {
		t.Fatalf("db handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := conn.AutoMigrate(
		&vendordomain.Vendor{},
		&vendordomain.UpgradeIntent{},
		&customerdomain.Customer{},
		&verificationdomain.Verification{},
		&pricingdomain.DiscoPrice{},
		&domain.TokenRequest{},
		&tokendomain.Token{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatalf("snowflake: %v", err)
	}

	fakeClock := clock.NewFakeClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	provider := paymentfake.New("test_secret")
	policy := new(config.PolicyHolder)
	policy.Set(config.DefaultVendingPolicy())

	f := &fixture{
		db:       conn,
		node:     node,
		clock:    fakeClock,
		provider: provider,
		policy:   policy,
	}

	f.svc = New(Params{
		DB:            conn,
		Log:           zap.NewNop(),
		GenID:         node,
		Clock:         fakeClock,
		Policy:        policy,
		Provider:      provider,
		Repo:          repository.Provide(),
		Customers:     customerrepo.Provide(),
		Vendors:       vendorrepo.Provide(),
		Pricing:       pricingrepo.Provide(),
		Verifications: verificationrepo.Provide(),
		Tokens:        tokenrepo.Provide(),
	})

	now := fakeClock.Now()
	vendor := vendordomain.Vendor{
		ID:            node.Generate(),
		Name:          "Acme Power",
		Email:         "ops@acme.test",
		Approved:      true,
		CustomerLimit: 1000,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := conn.Create(&vendor).Error; err != nil {
		t.Fatalf("seed vendor: %v", err)
	}
	f.vendorID = vendor.ID

	f.meter = "0450001234567"
	customer := customerdomain.Customer{
		ID:          node.Generate(),
		VendorID:    vendor.ID,
		MeterNumber: f.meter,
		Disco:       "IKEDC",
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := conn.Create(&customer).Error; err != nil {
		t.Fatalf("seed customer: %v", err)
	}
	f.customerID = customer.ID

	verification := verificationdomain.Verification{
		ID:          node.Generate(),
		CustomerID:  customer.ID,
		MeterNumber: f.meter,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := conn.Create(&verification).Error; err != nil {
		t.Fatalf("seed verification: %v", err)
	}

	price := pricingdomain.DiscoPrice{
		ID:           node.Generate(),
		Disco:        "IKEDC",
		PricePerUnit: 5000,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := conn.Create(&price).Error; err != nil {
		t.Fatalf("seed price: %v", err)
	}

	return f
}

func (f *fixture) vendorCtx() context.Context {
	return actorctx.WithActor(context.Background(), actorctx.Actor{
		Subject:  "vendor-user",
		Role:     actorctx.RoleVendor,
		VendorID: f.vendorID,
	})
}

func (f *fixture) adminCtx() context.Context {
	return actorctx.WithActor(context.Background(), actorctx.Actor{
		Subject: "admin-user",
		Role:    actorctx.RoleAdmin,
	})
}

func (f *fixture) verifyMeter(t *testing.T) {
	t.Helper()
	now := f.clock.Now()
	err := f.db.Exec(
		`UPDATE verifications SET is_verified = ?, verified_at = ?, verified_by = ?,
		 krn = ?, sgc = ?, ti = ?, msn = ?, mtk1 = ?, mtk2 = ?, rtk1 = ?, rtk2 = ?
		 WHERE customer_id = ?`,
		true, now, "admin-user",
		"12345678", "600123", "02", "METER-001", "k1", "k2", "k3", "k4",
		f.customerID,
	).Error
	if err != nil {
		t.Fatalf("verify meter: %v", err)
	}
}

func (f *fixture) createConfirmed(t *testing.T) domain.TokenRequest {
	t.Helper()
	ctx := f.vendorCtx()

	request, err := f.svc.Create(ctx, domain.CreateRequest{CustomerID: f.customerID.String(), Units: 10})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := f.svc.SelectPaymentMethod(ctx, domain.SelectPaymentMethodRequest{
		ID:     request.ID.String(),
		Method: "BANK_TRANSFER",
	}); err != nil {
		t.Fatalf("select payment method: %v", err)
	}

	confirmed, err := f.svc.ConfirmPayment(ctx, domain.ConfirmPaymentRequest{ID: request.ID.String()})
	if err != nil {
		t.Fatalf("confirm payment: %v", err)
	}
	return confirmed
}

func TestCreateSnapshotsAmount(t *testing.T) {
	f := newFixture(t)
	ctx := f.vendorCtx()

	request, err := f.svc.Create(ctx, domain.CreateRequest{CustomerID: f.customerID.String(), Units: 25})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if request.Status != domain.StatusInitiated {
		t.Fatalf("status = %s, want INITIATED", request.Status)
	}
	if request.UnitPrice != 5000 || request.Amount != 125000 {
		t.Fatalf("amount = %d at unit price %d, want 125000 at 5000", request.Amount, request.UnitPrice)
	}

	// Later price changes must not leak into the frozen amount.
	if err := f.db.Exec(`UPDATE disco_prices SET price_per_unit = 9999 WHERE disco = 'IKEDC'`).Error; err != nil {
		t.Fatalf("update price: %v", err)
	}

	reloaded, err := f.svc.GetByID(ctx, domain.GetRequest{ID: request.ID.String()})
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if reloaded.Amount != 125000 {
		t.Fatalf("amount changed to %d after price update", reloaded.Amount)
	}
}

func TestCreateRejectsBadInput(t *testing.T) {
	f := newFixture(t)
	ctx := f.vendorCtx()

	if _, err := f.svc.Create(ctx, domain.CreateRequest{CustomerID: f.customerID.String(), Units: 0}); !errors.Is(err, domain.ErrInvalidUnits) {
		t.Fatalf("zero units: err = %v, want ErrInvalidUnits", err)
	}
	if _, err := f.svc.Create(ctx, domain.CreateRequest{CustomerID: f.node.Generate().String(), Units: 5}); !errors.Is(err, domain.ErrInvalidCustomer) {
		t.Fatalf("unknown customer: err = %v, want ErrInvalidCustomer", err)
	}
}

func TestCreateHonorsVendingPolicy(t *testing.T) {
	f := newFixture(t)
	ctx := f.vendorCtx()

	f.policy.Set(config.VendingPolicy{MinUnitsPerRequest: 10, MaxUnitsPerRequest: 100})

	if _, err := f.svc.Create(ctx, domain.CreateRequest{CustomerID: f.customerID.String(), Units: 5}); !errors.Is(err, domain.ErrInvalidUnits) {
		t.Fatalf("below minimum: err = %v, want ErrInvalidUnits", err)
	}
	if _, err := f.svc.Create(ctx, domain.CreateRequest{CustomerID: f.customerID.String(), Units: 101}); !errors.Is(err, domain.ErrInvalidUnits) {
		t.Fatalf("above maximum: err = %v, want ErrInvalidUnits", err)
	}
	if _, err := f.svc.Create(ctx, domain.CreateRequest{CustomerID: f.customerID.String(), Units: 50}); err != nil {
		t.Fatalf("within bounds: %v", err)
	}

	f.policy.Set(config.VendingPolicy{MinUnitsPerRequest: 1, MaxUnitsPerRequest: 100, VendingPaused: true})
	if _, err := f.svc.Create(ctx, domain.CreateRequest{CustomerID: f.customerID.String(), Units: 50}); !errors.Is(err, domain.ErrVendingPaused) {
		t.Fatalf("paused: err = %v, want ErrVendingPaused", err)
	}
}

func TestBankTransferLifecycle(t *testing.T) {
	f := newFixture(t)
	f.verifyMeter(t)

	confirmed := f.createConfirmed(t)
	if confirmed.Status != domain.StatusPaymentConfirmed {
		t.Fatalf("status = %s, want PAYMENT_CONFIRMED", confirmed.Status)
	}
	if confirmed.PaymentAt == nil {
		t.Fatal("payment_at not set")
	}

	approved, err := f.svc.AdminApprove(f.adminCtx(), domain.ApproveRequest{ID: confirmed.ID.String()})
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	if approved.Status != domain.StatusAdminApproved {
		t.Fatalf("status = %s, want ADMIN_APPROVED", approved.Status)
	}

	resp, err := f.svc.Issue(f.adminCtx(), domain.IssueRequest{ID: confirmed.ID.String(), Value: validToken})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if resp.Request.Status != domain.StatusIssued {
		t.Fatalf("status = %s, want ISSUED", resp.Request.Status)
	}
	if resp.Token.Value != validToken || resp.Token.TokenRequestID != confirmed.ID {
		t.Fatalf("token mismatch: %+v", resp.Token)
	}

	var lastToken string
	if err := f.db.Raw(`SELECT last_token FROM customers WHERE id = ?`, f.customerID).Scan(&lastToken).Error; err != nil {
		t.Fatalf("read last token: %v", err)
	}
	if lastToken != validToken {
		t.Fatalf("customer last_token = %q, want %q", lastToken, validToken)
	}
}

func TestIssueRequiresVerification(t *testing.T) {
	f := newFixture(t)

	confirmed := f.createConfirmed(t)
	if _, err := f.svc.AdminApprove(f.adminCtx(), domain.ApproveRequest{ID: confirmed.ID.String()}); err != nil {
		t.Fatalf("approve: %v", err)
	}

	_, err := f.svc.Issue(f.adminCtx(), domain.IssueRequest{ID: confirmed.ID.String(), Value: validToken})
	if !errors.Is(err, domain.ErrVerificationRequired) {
		t.Fatalf("err = %v, want ErrVerificationRequired", err)
	}
}

func TestIssueIsIdempotent(t *testing.T) {
	f := newFixture(t)
	f.verifyMeter(t)

	confirmed := f.createConfirmed(t)
	if _, err := f.svc.AdminApprove(f.adminCtx(), domain.ApproveRequest{ID: confirmed.ID.String()}); err != nil {
		t.Fatalf("approve: %v", err)
	}

	first, err := f.svc.Issue(f.adminCtx(), domain.IssueRequest{ID: confirmed.ID.String(), Value: validToken})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	second, err := f.svc.Issue(f.adminCtx(), domain.IssueRequest{ID: confirmed.ID.String(), Value: "9999-8888-7777-6666"})
	if !errors.Is(err, domain.ErrAlreadyIssued) {
		t.Fatalf("err = %v, want ErrAlreadyIssued", err)
	}
	if second.Token.Value != first.Token.Value {
		t.Fatalf("repeat issue returned %q, want original %q", second.Token.Value, first.Token.Value)
	}

	var count int64
	if err := f.db.Raw(`SELECT COUNT(*) FROM tokens WHERE token_request_id = ?`, confirmed.ID).Scan(&count).Error; err != nil {
		t.Fatalf("count tokens: %v", err)
	}
	if count != 1 {
		t.Fatalf("ledger rows = %d, want 1", count)
	}
}

func TestIssueValidatesTokenValue(t *testing.T) {
	f := newFixture(t)
	f.verifyMeter(t)

	confirmed := f.createConfirmed(t)
	if _, err := f.svc.AdminApprove(f.adminCtx(), domain.ApproveRequest{ID: confirmed.ID.String()}); err != nil {
		t.Fatalf("approve: %v", err)
	}

	for _, value := range []string{
		"",
		"123456789012345",       // 15 digits
		strings.Repeat("9", 47), // 47 digits
		"1234-5678-9012-345X",
	} {
		if _, err := f.svc.Issue(f.adminCtx(), domain.IssueRequest{ID: confirmed.ID.String(), Value: value}); !errors.Is(err, domain.ErrInvalidTokenValue) {
			t.Fatalf("value %q: err = %v, want ErrInvalidTokenValue", value, err)
		}
	}

	if _, err := f.svc.Issue(f.adminCtx(), domain.IssueRequest{ID: confirmed.ID.String(), Value: strings.Repeat("9", 46)}); err != nil {
		t.Fatalf("46 digits rejected: %v", err)
	}
}

func TestRejectAfterApproval(t *testing.T) {
	f := newFixture(t)
	f.verifyMeter(t)

	confirmed := f.createConfirmed(t)
	if _, err := f.svc.AdminApprove(f.adminCtx(), domain.ApproveRequest{ID: confirmed.ID.String()}); err != nil {
		t.Fatalf("approve: %v", err)
	}

	rejected, err := f.svc.AdminReject(f.adminCtx(), domain.RejectRequest{ID: confirmed.ID.String(), Reason: "suspicious payment"})
	if err != nil {
		t.Fatalf("reject after approve: %v", err)
	}
	if rejected.Status != domain.StatusAdminRejected {
		t.Fatalf("status = %s, want ADMIN_REJECTED", rejected.Status)
	}

	if _, err := f.svc.Issue(f.adminCtx(), domain.IssueRequest{ID: confirmed.ID.String(), Value: validToken}); !errors.Is(err, domain.ErrInvalidState) {
		t.Fatalf("issue after reject: err = %v, want ErrInvalidState", err)
	}
}

func TestCancelBeatsConfirm(t *testing.T) {
	f := newFixture(t)
	ctx := f.vendorCtx()

	request, err := f.svc.Create(ctx, domain.CreateRequest{CustomerID: f.customerID.String(), Units: 10})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := f.svc.SelectPaymentMethod(ctx, domain.SelectPaymentMethodRequest{ID: request.ID.String(), Method: "BANK_TRANSFER"}); err != nil {
		t.Fatalf("select payment method: %v", err)
	}

	if _, err := f.svc.Cancel(ctx, domain.CancelRequest{ID: request.ID.String()}); err != nil {
		t.Fatalf("cancel: %v", err)
	}

	// The loser of the race sees a state rejection, never a silent overwrite.
	if _, err := f.svc.ConfirmPayment(ctx, domain.ConfirmPaymentRequest{ID: request.ID.String()}); !errors.Is(err, domain.ErrInvalidState) {
		t.Fatalf("confirm after cancel: err = %v, want ErrInvalidState", err)
	}

	if _, err := f.svc.Cancel(f.adminCtx(), domain.CancelRequest{ID: request.ID.String()}); !errors.Is(err, domain.ErrInvalidState) {
		t.Fatalf("double cancel: err = %v, want ErrInvalidState", err)
	}
}

func TestGatewayWebhookFlow(t *testing.T) {
	f := newFixture(t)
	ctx := f.vendorCtx()

	request, err := f.svc.Create(ctx, domain.CreateRequest{CustomerID: f.customerID.String(), Units: 10})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	selected, err := f.svc.SelectPaymentMethod(ctx, domain.SelectPaymentMethodRequest{ID: request.ID.String(), Method: "GATEWAY"})
	if err != nil {
		t.Fatalf("select gateway: %v", err)
	}
	reference := selected.Request.PaymentReference
	if reference == "" {
		t.Fatal("gateway reference not assigned")
	}
	if selected.AuthorizationURL == "" {
		t.Fatal("authorization url not returned")
	}

	if _, err := f.svc.ConfirmGatewayPayment(context.Background(), reference, request.Amount+1); !errors.Is(err, domain.ErrAmountMismatch) {
		t.Fatalf("amount mismatch: err = %v, want ErrAmountMismatch", err)
	}

	confirmed, err := f.svc.ConfirmGatewayPayment(context.Background(), reference, request.Amount)
	if err != nil {
		t.Fatalf("webhook confirm: %v", err)
	}
	if confirmed.Status != domain.StatusPaymentConfirmed {
		t.Fatalf("status = %s, want PAYMENT_CONFIRMED", confirmed.Status)
	}

	// Retried webhooks are acknowledged without another transition.
	again, err := f.svc.ConfirmGatewayPayment(context.Background(), reference, request.Amount)
	if err != nil {
		t.Fatalf("webhook retry: %v", err)
	}
	if again.Status != domain.StatusPaymentConfirmed {
		t.Fatalf("retry status = %s", again.Status)
	}

	if _, err := f.svc.ConfirmGatewayPayment(context.Background(), "UNKNOWN-REF", request.Amount); !errors.Is(err, domain.ErrInvalidReference) {
		t.Fatalf("unknown reference: err = %v, want ErrInvalidReference", err)
	}
}

func TestVendorScopedVisibility(t *testing.T) {
	f := newFixture(t)
	ctx := f.vendorCtx()

	request, err := f.svc.Create(ctx, domain.CreateRequest{CustomerID: f.customerID.String(), Units: 10})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	otherCtx := actorctx.WithActor(context.Background(), actorctx.Actor{
		Subject:  "other-vendor",
		Role:     actorctx.RoleVendor,
		VendorID: f.node.Generate(),
	})
	if _, err := f.svc.GetByID(otherCtx, domain.GetRequest{ID: request.ID.String()}); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("cross-vendor read: err = %v, want ErrNotFound", err)
	}

	listed, err := f.svc.List(ctx, domain.ListRequest{Statuses: []string{"INITIATED"}})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(listed.Requests) != 1 {
		t.Fatalf("listed %d requests, want 1", len(listed.Requests))
	}

	if _, err := f.svc.List(ctx, domain.ListRequest{Statuses: []string{"NOT_A_STATUS"}}); !errors.Is(err, domain.ErrInvalidStatusFilter) {
		t.Fatalf("bad status filter: err = %v, want ErrInvalidStatusFilter", err)
	}
}
