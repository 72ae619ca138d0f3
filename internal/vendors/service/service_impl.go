package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/voltvend/voltvend/internal/clock"
	"github.com/voltvend/voltvend/internal/config"
	"github.com/voltvend/voltvend/internal/vendors/domain"
	"github.com/voltvend/voltvend/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB     *gorm.DB
	Log    *zap.Logger
	GenID  *snowflake.Node
	Clock  clock.Clock
	Config config.Config
	Repo   domain.Repository
}

type Service struct {
	db     *gorm.DB
	log    *zap.Logger
	genID  *snowflake.Node
	clock  clock.Clock
	config config.Config
	repo   domain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:     p.DB,
		log:    p.Log.Named("vendors.service"),
		genID:  p.GenID,
		clock:  p.Clock,
		config: p.Config,
		repo:   p.Repo,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateVendorRequest) (domain.Vendor, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return domain.Vendor{}, domain.ErrInvalidName
	}

	email := strings.TrimSpace(req.Email)
	if email == "" || !strings.Contains(email, "@") {
		return domain.Vendor{}, domain.ErrInvalidEmail
	}

	limit := s.config.DefaultCustomerLimit
	if limit <= 0 {
		limit = 1000
	}

	now := s.clock.Now().UTC()
	vendor := domain.Vendor{
		ID:            s.genID.Generate(),
		Name:          name,
		Email:         email,
		CustomerLimit: limit,
		Metadata:      datatypes.JSONMap{},
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.repo.Insert(ctx, s.db, &vendor); err != nil {
		return domain.Vendor{}, err
	}

	return vendor, nil
}

func (s *Service) List(ctx context.Context, req domain.ListVendorRequest) (domain.ListVendorResponse, error) {
	pageSize := req.PageSize
	if pageSize <= 0 {
		pageSize = 50
	}

	items, err := s.repo.List(ctx, s.db, pagination.Pagination{
		PageToken: req.PageToken,
		PageSize:  int(pageSize),
	})
	if err != nil {
		return domain.ListVendorResponse{}, err
	}

	pageInfo := pagination.BuildCursorPageInfo(items, pageSize, func(vendor *domain.Vendor) string {
		token, err := pagination.EncodeCursor(pagination.Cursor{
			ID:        vendor.ID.String(),
			CreatedAt: vendor.CreatedAt.Format(time.RFC3339),
		})
		if err != nil {
			return ""
		}
		return token
	})
	if pageInfo != nil && pageInfo.HasMore && len(items) > int(pageSize) {
		items = items[:pageSize]
	}

	vendors := make([]domain.Vendor, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		vendors = append(vendors, *item)
	}

	resp := domain.ListVendorResponse{Vendors: vendors}
	if pageInfo != nil {
		resp.PageInfo = *pageInfo
	}
	return resp, nil
}

func (s *Service) GetByID(ctx context.Context, req domain.GetVendorRequest) (domain.Vendor, error) {
	id, err := s.parseID(req.ID)
	if err != nil {
		return domain.Vendor{}, err
	}

	vendor, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return domain.Vendor{}, err
	}
	if vendor == nil {
		return domain.Vendor{}, domain.ErrNotFound
	}
	return *vendor, nil
}

func (s *Service) Approve(ctx context.Context, req domain.GetVendorRequest) (domain.Vendor, error) {
	id, err := s.parseID(req.ID)
	if err != nil {
		return domain.Vendor{}, err
	}

	updated, err := s.repo.SetApproved(ctx, s.db, id, true)
	if err != nil {
		return domain.Vendor{}, err
	}
	if !updated {
		return domain.Vendor{}, domain.ErrNotFound
	}

	vendor, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return domain.Vendor{}, err
	}
	if vendor == nil {
		return domain.Vendor{}, domain.ErrNotFound
	}
	return *vendor, nil
}

func (s *Service) CanAddCustomer(ctx context.Context, req domain.GetVendorRequest) (bool, domain.Usage, error) {
	usage, err := s.Usage(ctx, req)
	if err != nil {
		return false, domain.Usage{}, err
	}
	return usage.CustomerCount < usage.CustomerLimit, usage, nil
}

func (s *Service) Usage(ctx context.Context, req domain.GetVendorRequest) (domain.Usage, error) {
	id, err := s.parseID(req.ID)
	if err != nil {
		return domain.Usage{}, err
	}

	vendor, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return domain.Usage{}, err
	}
	if vendor == nil {
		return domain.Usage{}, domain.ErrNotFound
	}
	return domain.Usage{
		CustomerCount: vendor.CustomerCount,
		CustomerLimit: vendor.CustomerLimit,
	}, nil
}

func (s *Service) RequestUpgrade(ctx context.Context, req domain.RequestUpgradeRequest) (domain.UpgradeIntent, error) {
	id, err := s.parseID(req.VendorID)
	if err != nil {
		return domain.UpgradeIntent{}, err
	}
	if req.AdditionalSlots <= 0 {
		return domain.UpgradeIntent{}, domain.ErrInvalidSlots
	}

	vendor, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return domain.UpgradeIntent{}, err
	}
	if vendor == nil {
		return domain.UpgradeIntent{}, domain.ErrNotFound
	}

	unitPrice := s.config.UpgradeSlotPrice
	intent := domain.UpgradeIntent{
		ID:              s.genID.Generate(),
		VendorID:        id,
		AdditionalSlots: req.AdditionalSlots,
		UnitPrice:       unitPrice,
		Amount:          req.AdditionalSlots * unitPrice,
		Status:          domain.UpgradeStatusPending,
		CreatedAt:       s.clock.Now().UTC(),
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		flagged, err := s.repo.SetPendingUpgrade(ctx, tx, id, true)
		if err != nil {
			return err
		}
		if !flagged {
			return domain.ErrUpgradePending
		}
		return s.repo.InsertUpgrade(ctx, tx, &intent)
	})
	if err != nil {
		return domain.UpgradeIntent{}, err
	}

	return intent, nil
}

func (s *Service) ApplyUpgrade(ctx context.Context, req domain.ApplyUpgradeRequest) (domain.Vendor, error) {
	id, err := s.parseID(req.VendorID)
	if err != nil {
		return domain.Vendor{}, err
	}

	vendor, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return domain.Vendor{}, err
	}
	if vendor == nil {
		return domain.Vendor{}, domain.ErrNotFound
	}

	intent, err := s.repo.FindPendingUpgrade(ctx, s.db, id)
	if err != nil {
		return domain.Vendor{}, err
	}
	if intent == nil || !vendor.PendingUpgrade {
		return domain.Vendor{}, domain.ErrNoPendingUpgrade
	}

	now := s.clock.Now().UTC()
	intent.AppliedAt = &now

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		applied, err := s.repo.MarkUpgradeApplied(ctx, tx, intent)
		if err != nil {
			return err
		}
		if !applied {
			return domain.ErrNoPendingUpgrade
		}
		if _, err := s.repo.RaiseLimit(ctx, tx, id, intent.AdditionalSlots); err != nil {
			return err
		}
		cleared, err := s.repo.SetPendingUpgrade(ctx, tx, id, false)
		if err != nil {
			return err
		}
		if !cleared {
			return domain.ErrNoPendingUpgrade
		}
		return nil
	})
	if err != nil {
		return domain.Vendor{}, err
	}

	updated, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return domain.Vendor{}, err
	}
	if updated == nil {
		return domain.Vendor{}, domain.ErrNotFound
	}

	s.log.Info("upgrade applied",
		zap.String("vendor_id", id.String()),
		zap.Int64("additional_slots", intent.AdditionalSlots),
		zap.Int64("customer_limit", updated.CustomerLimit),
	)
	return *updated, nil
}

func (s *Service) parseID(value string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || id == 0 {
		return 0, domain.ErrInvalidID
	}
	return id, nil
}
