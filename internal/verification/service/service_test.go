package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/voltvend/voltvend/internal/clock"
	"github.com/voltvend/voltvend/internal/verification/domain"
	"github.com/voltvend/voltvend/internal/verification/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newService(t *testing.T) (domain.Service, snowflake.ID) {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := conn.AutoMigrate(&domain.Verification{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatalf("snowflake: %v", err)
	}

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	customerID := node.Generate()
	record := domain.Verification{
		ID:          node.Generate(),
		CustomerID:  customerID,
		MeterNumber: "0450001234567",
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := conn.Create(&record).Error; err != nil {
		t.Fatalf("seed: %v", err)
	}

	svc := New(Params{
		DB:    conn,
		Log:   zap.NewNop(),
		Clock: clock.NewFakeClock(now),
		Repo:  repository.Provide(),
	})
	return svc, customerID
}

func submitRequest(customerID snowflake.ID) domain.SubmitVerificationRequest {
	return domain.SubmitVerificationRequest{
		CustomerID: customerID.String(),
		VerifiedBy: "admin-user",
		KRN:        "12345678",
		SGC:        "600123",
		TI:         "02",
		MSN:        "METER-001",
		MTK1:       "key-1",
		MTK2:       "key-2",
		RTK1:       "key-3",
		RTK2:       "key-4",
	}
}

func TestSubmitRequiresAllKeyFields(t *testing.T) {
	svc, customerID := newService(t)
	ctx := context.Background()

	req := submitRequest(customerID)
	req.RTK2 = "  "
	if _, err := svc.Submit(ctx, req); !errors.Is(err, domain.ErrMissingKeyField) {
		t.Fatalf("blank RTK2: err = %v, want ErrMissingKeyField", err)
	}

	verification, err := svc.Submit(ctx, submitRequest(customerID))
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if !verification.IsVerified || verification.VerifiedBy != "admin-user" {
		t.Fatalf("verification = %+v", verification)
	}
	if verification.VerifiedAt == nil {
		t.Fatal("verified_at not set")
	}
}

func TestSubmitTwice(t *testing.T) {
	svc, customerID := newService(t)
	ctx := context.Background()

	if _, err := svc.Submit(ctx, submitRequest(customerID)); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if _, err := svc.Submit(ctx, submitRequest(customerID)); !errors.Is(err, domain.ErrAlreadyVerified) {
		t.Fatalf("second submit: err = %v, want ErrAlreadyVerified", err)
	}
}

func TestRejectBlocksLaterSubmit(t *testing.T) {
	svc, customerID := newService(t)
	ctx := context.Background()

	rejected, err := svc.Reject(ctx, domain.RejectVerificationRequest{CustomerID: customerID.String(), Reason: "meter tampered"})
	if err != nil {
		t.Fatalf("reject: %v", err)
	}
	if !rejected.Rejected || rejected.RejectionReason != "meter tampered" {
		t.Fatalf("rejected = %+v", rejected)
	}

	if _, err := svc.Submit(ctx, submitRequest(customerID)); !errors.Is(err, domain.ErrRejected) {
		t.Fatalf("submit after reject: err = %v, want ErrRejected", err)
	}
}

func TestRejectNeedsReasonAndUnverifiedRecord(t *testing.T) {
	svc, customerID := newService(t)
	ctx := context.Background()

	if _, err := svc.Reject(ctx, domain.RejectVerificationRequest{CustomerID: customerID.String()}); !errors.Is(err, domain.ErrMissingReason) {
		t.Fatalf("no reason: err = %v, want ErrMissingReason", err)
	}

	if _, err := svc.Submit(ctx, submitRequest(customerID)); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if _, err := svc.Reject(ctx, domain.RejectVerificationRequest{CustomerID: customerID.String(), Reason: "late"}); !errors.Is(err, domain.ErrAlreadyVerified) {
		t.Fatalf("reject after verify: err = %v, want ErrAlreadyVerified", err)
	}
}

func TestGetByMeterMasksUnverified(t *testing.T) {
	svc, customerID := newService(t)
	ctx := context.Background()

	got, err := svc.GetByMeter(ctx, domain.GetVerificationRequest{MeterNumber: "0450001234567"})
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.KRN != "" || got.MSN != "" {
		t.Fatalf("unverified record leaked key material: %+v", got)
	}

	if _, err := svc.Submit(ctx, submitRequest(customerID)); err != nil {
		t.Fatalf("submit: %v", err)
	}

	got, err = svc.GetByMeter(ctx, domain.GetVerificationRequest{MeterNumber: "0450001234567"})
	if err != nil {
		t.Fatalf("get after verify: %v", err)
	}
	if got.KRN != "12345678" || got.MSN != "METER-001" {
		t.Fatalf("verified record missing key material: %+v", got)
	}

	if _, err := svc.GetByMeter(ctx, domain.GetVerificationRequest{MeterNumber: "0000000000"}); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("unknown meter: err = %v, want ErrNotFound", err)
	}
}
