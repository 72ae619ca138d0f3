package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/voltvend/voltvend/internal/actorctx"
	"github.com/voltvend/voltvend/internal/clock"
	"github.com/voltvend/voltvend/internal/customer/domain"
	obsmetrics "github.com/voltvend/voltvend/internal/observability/metrics"
	pricingdomain "github.com/voltvend/voltvend/internal/pricing/domain"
	vendordomain "github.com/voltvend/voltvend/internal/vendors/domain"
	verificationdomain "github.com/voltvend/voltvend/internal/verification/domain"
	"github.com/voltvend/voltvend/pkg/db"
	"github.com/voltvend/voltvend/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB            *gorm.DB
	Log           *zap.Logger
	GenID         *snowflake.Node
	Clock         clock.Clock
	Metrics       *obsmetrics.Metrics `optional:"true"`
	Repo          domain.Repository
	Vendors       vendordomain.Repository
	Verifications verificationdomain.Repository
}

type Service struct {
	db            *gorm.DB
	log           *zap.Logger
	genID         *snowflake.Node
	clock         clock.Clock
	metrics       *obsmetrics.Metrics
	repo          domain.Repository
	vendors       vendordomain.Repository
	verifications verificationdomain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:            p.DB,
		log:           p.Log.Named("customer.service"),
		genID:         p.GenID,
		clock:         p.Clock,
		metrics:       p.Metrics,
		repo:          p.Repo,
		vendors:       p.Vendors,
		verifications: p.Verifications,
	}
}

// Register claims a vendor customer slot and creates the customer together
// with its blank verification record in one transaction.
func (s *Service) Register(ctx context.Context, req domain.RegisterCustomerRequest) (domain.Customer, error) {
	vendorID, ok := actorctx.VendorIDFromContext(ctx)
	if !ok || vendorID == 0 {
		return domain.Customer{}, domain.ErrInvalidVendor
	}

	meter := strings.TrimSpace(req.MeterNumber)
	if !validMeterNumber(meter) {
		return domain.Customer{}, domain.ErrInvalidMeterNumber
	}

	disco := strings.ToUpper(strings.TrimSpace(req.Disco))
	if !pricingdomain.ValidDisco(disco) {
		return domain.Customer{}, domain.ErrInvalidDisco
	}

	now := s.clock.Now().UTC()
	customer := domain.Customer{
		ID:          s.genID.Generate(),
		VendorID:    vendorID,
		MeterNumber: meter,
		Disco:       disco,
		Name:        strings.TrimSpace(req.Name),
		Address:     strings.TrimSpace(req.Address),
		Phone:       strings.TrimSpace(req.Phone),
		LastToken:   strings.TrimSpace(req.LastToken),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		reserved, err := s.vendors.ReserveSlot(ctx, tx, vendorID)
		if err != nil {
			return err
		}
		if !reserved {
			vendor, err := s.vendors.FindByID(ctx, tx, vendorID)
			if err != nil {
				return err
			}
			if vendor == nil {
				return domain.ErrInvalidVendor
			}
			return vendordomain.ErrQuotaExceeded
		}

		if err := s.repo.Insert(ctx, tx, &customer); err != nil {
			if db.IsDuplicateKeyErr(err) {
				return domain.ErrMeterAlreadyRegistered
			}
			return err
		}

		return s.verifications.Insert(ctx, tx, &verificationdomain.Verification{
			ID:          s.genID.Generate(),
			CustomerID:  customer.ID,
			MeterNumber: meter,
			CreatedAt:   now,
			UpdatedAt:   now,
		})
	})
	if err != nil {
		if err == vendordomain.ErrQuotaExceeded {
			s.metrics.RecordQuotaRejection()
		}
		return domain.Customer{}, err
	}

	return customer, nil
}

func (s *Service) List(ctx context.Context, req domain.ListCustomerRequest) (domain.ListCustomerResponse, error) {
	filter := domain.ListCustomerFilter{
		Disco:       strings.ToUpper(strings.TrimSpace(req.Disco)),
		MeterNumber: strings.TrimSpace(req.MeterNumber),
	}

	if actor, ok := actorctx.FromContext(ctx); ok && actor.Role != actorctx.RoleAdmin {
		filter.VendorID = actor.VendorID
	} else if vendorID := strings.TrimSpace(req.VendorID); vendorID != "" {
		id, err := snowflake.ParseString(vendorID)
		if err != nil {
			return domain.ListCustomerResponse{}, domain.ErrInvalidVendor
		}
		filter.VendorID = id
	}

	pageSize := req.PageSize
	if pageSize <= 0 {
		pageSize = 50
	}

	items, err := s.repo.List(ctx, s.db, filter, pagination.Pagination{
		PageToken: req.PageToken,
		PageSize:  int(pageSize),
	})
	if err != nil {
		return domain.ListCustomerResponse{}, err
	}

	pageInfo := pagination.BuildCursorPageInfo(items, pageSize, func(customer *domain.Customer) string {
		token, err := pagination.EncodeCursor(pagination.Cursor{
			ID:        customer.ID.String(),
			CreatedAt: customer.CreatedAt.Format(time.RFC3339),
		})
		if err != nil {
			return ""
		}
		return token
	})
	if pageInfo != nil && pageInfo.HasMore && len(items) > int(pageSize) {
		items = items[:pageSize]
	}

	customers := make([]domain.Customer, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		customers = append(customers, *item)
	}

	resp := domain.ListCustomerResponse{Customers: customers}
	if pageInfo != nil {
		resp.PageInfo = *pageInfo
	}
	return resp, nil
}

func (s *Service) GetByID(ctx context.Context, req domain.GetCustomerRequest) (domain.Customer, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(req.ID))
	if err != nil || id == 0 {
		return domain.Customer{}, domain.ErrInvalidID
	}

	customer, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return domain.Customer{}, err
	}
	if customer == nil {
		return domain.Customer{}, domain.ErrNotFound
	}

	if actor, ok := actorctx.FromContext(ctx); ok && actor.Role != actorctx.RoleAdmin && customer.VendorID != actor.VendorID {
		return domain.Customer{}, domain.ErrNotFound
	}
	return *customer, nil
}

func (s *Service) Count(ctx context.Context) (int64, error) {
	vendorID, ok := actorctx.VendorIDFromContext(ctx)
	if !ok || vendorID == 0 {
		return 0, domain.ErrInvalidVendor
	}
	return s.repo.Count(ctx, s.db, vendorID)
}

func validMeterNumber(meter string) bool {
	if len(meter) < 6 || len(meter) > 16 {
		return false
	}
	for _, r := range meter {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
