package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/voltvend/voltvend/internal/actorctx"
	"github.com/voltvend/voltvend/internal/clock"
	"github.com/voltvend/voltvend/internal/customer/domain"
	"github.com/voltvend/voltvend/internal/customer/repository"
	vendordomain "github.com/voltvend/voltvend/internal/vendors/domain"
	vendorrepo "github.com/voltvend/voltvend/internal/vendors/repository"
	verificationdomain "github.com/voltvend/voltvend/internal/verification/domain"
	verificationrepo "github.com/voltvend/voltvend/internal/verification/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type env struct {
	db       *gorm.DB
	node     *snowflake.Node
	svc      domain.Service
	vendorID snowflake.ID
}

func newEnv(t *testing.T, customerLimit int64) *env {
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
		&domain.Customer{},
		&verificationdomain.Verification{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatalf("snowflake: %v", err)
	}

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	vendor := vendordomain.Vendor{
		ID:            node.Generate(),
		Name:          "Acme Power",
		Email:         "ops@acme.test",
		Approved:      true,
		CustomerLimit: customerLimit,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := conn.Create(&vendor).Error; err != nil {
		t.Fatalf("seed vendor: %v", err)
	}

	svc := New(Params{
		DB:            conn,
		Log:           zap.NewNop(),
		GenID:         node,
		Clock:         clock.NewFakeClock(now),
		Repo:          repository.Provide(),
		Vendors:       vendorrepo.Provide(),
		Verifications: verificationrepo.Provide(),
	})

	return &env{db: conn, node: node, svc: svc, vendorID: vendor.ID}
}

func (e *env) vendorCtx() context.Context {
	return actorctx.WithActor(context.Background(), actorctx.Actor{
		Subject:  "vendor-user",
		Role:     actorctx.RoleVendor,
		VendorID: e.vendorID,
	})
}

func TestRegister(t *testing.T) {
	e := newEnv(t, 10)
	ctx := e.vendorCtx()

	customer, err := e.svc.Register(ctx, domain.RegisterCustomerRequest{
		MeterNumber: "0450001234567",
		Disco:       "ikedc",
		Name:        "Ada O.",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if customer.Disco != "IKEDC" {
		t.Fatalf("disco = %q, want IKEDC", customer.Disco)
	}

	// Registration opens a blank verification record for the meter.
	var verification verificationdomain.Verification
	if err := e.db.Where("customer_id = ?", customer.ID).First(&verification).Error; err != nil {
		t.Fatalf("verification record: %v", err)
	}
	if verification.IsVerified || verification.MeterNumber != "0450001234567" {
		t.Fatalf("verification = %+v", verification)
	}

	count, err := e.svc.Count(ctx)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Fatalf("count = %d, want 1", count)
	}
}

func TestRegisterValidation(t *testing.T) {
	e := newEnv(t, 10)
	ctx := e.vendorCtx()

	cases := []struct {
		name string
		req  domain.RegisterCustomerRequest
		want error
	}{
		{"short meter", domain.RegisterCustomerRequest{MeterNumber: "12345", Disco: "IKEDC"}, domain.ErrInvalidMeterNumber},
		{"long meter", domain.RegisterCustomerRequest{MeterNumber: "12345678901234567", Disco: "IKEDC"}, domain.ErrInvalidMeterNumber},
		{"non numeric meter", domain.RegisterCustomerRequest{MeterNumber: "04500012345AB", Disco: "IKEDC"}, domain.ErrInvalidMeterNumber},
		{"unknown disco", domain.RegisterCustomerRequest{MeterNumber: "0450001234567", Disco: "XYZ"}, domain.ErrInvalidDisco},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := e.svc.Register(ctx, tc.req); !errors.Is(err, tc.want) {
				t.Fatalf("err = %v, want %v", err, tc.want)
			}
		})
	}

	if _, err := e.svc.Register(context.Background(), domain.RegisterCustomerRequest{MeterNumber: "0450001234567", Disco: "IKEDC"}); !errors.Is(err, domain.ErrInvalidVendor) {
		t.Fatalf("no actor: err = %v, want ErrInvalidVendor", err)
	}
}

func TestRegisterDuplicateMeterReleasesNothing(t *testing.T) {
	e := newEnv(t, 10)
	ctx := e.vendorCtx()

	if _, err := e.svc.Register(ctx, domain.RegisterCustomerRequest{MeterNumber: "0450001234567", Disco: "IKEDC"}); err != nil {
		t.Fatalf("first register: %v", err)
	}

	_, err := e.svc.Register(ctx, domain.RegisterCustomerRequest{MeterNumber: "0450001234567", Disco: "IKEDC"})
	if !errors.Is(err, domain.ErrMeterAlreadyRegistered) {
		t.Fatalf("duplicate: err = %v, want ErrMeterAlreadyRegistered", err)
	}

	// The failed transaction must not leave a consumed slot behind.
	var vendor vendordomain.Vendor
	if err := e.db.First(&vendor, "id = ?", e.vendorID).Error; err != nil {
		t.Fatalf("reload vendor: %v", err)
	}
	if vendor.CustomerCount != 1 {
		t.Fatalf("customer_count = %d, want 1", vendor.CustomerCount)
	}

	// Same meter under a different disco is a different customer.
	if _, err := e.svc.Register(ctx, domain.RegisterCustomerRequest{MeterNumber: "0450001234567", Disco: "AEDC"}); err != nil {
		t.Fatalf("other disco: %v", err)
	}
}

func TestRegisterQuota(t *testing.T) {
	e := newEnv(t, 2)
	ctx := e.vendorCtx()

	for i := 0; i < 2; i++ {
		meter := fmt.Sprintf("04500012345%02d", i)
		if _, err := e.svc.Register(ctx, domain.RegisterCustomerRequest{MeterNumber: meter, Disco: "IKEDC"}); err != nil {
			t.Fatalf("register %d: %v", i, err)
		}
	}

	_, err := e.svc.Register(ctx, domain.RegisterCustomerRequest{MeterNumber: "0450001234599", Disco: "IKEDC"})
	if !errors.Is(err, vendordomain.ErrQuotaExceeded) {
		t.Fatalf("over quota: err = %v, want ErrQuotaExceeded", err)
	}
}

func TestRegisterConcurrentQuota(t *testing.T) {
	const limit = 5
	const attempts = 12

	e := newEnv(t, limit)
	ctx := e.vendorCtx()

	var wg sync.WaitGroup
	var mu sync.Mutex
	succeeded := 0

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			meter := fmt.Sprintf("04500012346%02d", i)
			_, err := e.svc.Register(ctx, domain.RegisterCustomerRequest{MeterNumber: meter, Disco: "IKEDC"})
			if err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
				return
			}
			if !errors.Is(err, vendordomain.ErrQuotaExceeded) {
				t.Errorf("register %d: %v", i, err)
			}
		}(i)
	}
	wg.Wait()

	if succeeded != limit {
		t.Fatalf("%d registrations succeeded, want %d", succeeded, limit)
	}

	var count int64
	if err := e.db.Model(&domain.Customer{}).Count(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != limit {
		t.Fatalf("customers = %d, want %d", count, limit)
	}
}

func TestGetByIDScopedToVendor(t *testing.T) {
	e := newEnv(t, 10)
	ctx := e.vendorCtx()

	customer, err := e.svc.Register(ctx, domain.RegisterCustomerRequest{MeterNumber: "0450001234567", Disco: "IKEDC"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	otherCtx := actorctx.WithActor(context.Background(), actorctx.Actor{
		Subject:  "other-vendor",
		Role:     actorctx.RoleVendor,
		VendorID: e.node.Generate(),
	})
	if _, err := e.svc.GetByID(otherCtx, domain.GetCustomerRequest{ID: customer.ID.String()}); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("cross-vendor read: err = %v, want ErrNotFound", err)
	}

	adminCtx := actorctx.WithActor(context.Background(), actorctx.Actor{Subject: "admin", Role: actorctx.RoleAdmin})
	got, err := e.svc.GetByID(adminCtx, domain.GetCustomerRequest{ID: customer.ID.String()})
	if err != nil {
		t.Fatalf("admin read: %v", err)
	}
	if got.ID != customer.ID {
		t.Fatalf("admin read returned %v", got.ID)
	}
}
