package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/voltvend/voltvend/internal/clock"
	"github.com/voltvend/voltvend/internal/verification/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	Clock clock.Clock
	Repo  domain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	clock clock.Clock
	repo  domain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("verification.service"),
		clock: p.Clock,
		repo:  p.Repo,
	}
}

func (s *Service) GetByMeter(ctx context.Context, req domain.GetVerificationRequest) (domain.Verification, error) {
	meter := strings.TrimSpace(req.MeterNumber)
	if meter == "" {
		return domain.Verification{}, domain.ErrInvalidMeter
	}

	verification, err := s.repo.FindByMeter(ctx, s.db, meter)
	if err != nil {
		return domain.Verification{}, err
	}
	if verification == nil {
		return domain.Verification{}, domain.ErrNotFound
	}
	return verification.Masked(), nil
}

func (s *Service) Submit(ctx context.Context, req domain.SubmitVerificationRequest) (domain.Verification, error) {
	customerID, err := s.parseID(req.CustomerID)
	if err != nil {
		return domain.Verification{}, err
	}

	fields := []string{req.KRN, req.SGC, req.TI, req.MSN, req.MTK1, req.MTK2, req.RTK1, req.RTK2}
	for _, field := range fields {
		if strings.TrimSpace(field) == "" {
			return domain.Verification{}, domain.ErrMissingKeyField
		}
	}

	existing, err := s.repo.FindByCustomerID(ctx, s.db, customerID)
	if err != nil {
		return domain.Verification{}, err
	}
	if existing == nil {
		return domain.Verification{}, domain.ErrNotFound
	}
	if existing.IsVerified {
		return domain.Verification{}, domain.ErrAlreadyVerified
	}
	if existing.Rejected {
		return domain.Verification{}, domain.ErrRejected
	}

	now := s.clock.Now().UTC()
	verification := *existing
	verification.IsVerified = true
	verification.VerifiedAt = &now
	verification.VerifiedBy = strings.TrimSpace(req.VerifiedBy)
	verification.KRN = strings.TrimSpace(req.KRN)
	verification.SGC = strings.TrimSpace(req.SGC)
	verification.TI = strings.TrimSpace(req.TI)
	verification.MSN = strings.TrimSpace(req.MSN)
	verification.MTK1 = strings.TrimSpace(req.MTK1)
	verification.MTK2 = strings.TrimSpace(req.MTK2)
	verification.RTK1 = strings.TrimSpace(req.RTK1)
	verification.RTK2 = strings.TrimSpace(req.RTK2)
	verification.UpdatedAt = now

	updated, err := s.repo.Verify(ctx, s.db, &verification)
	if err != nil {
		return domain.Verification{}, err
	}
	if !updated {
		// Lost a race with a concurrent verify or reject.
		current, err := s.repo.FindByCustomerID(ctx, s.db, customerID)
		if err != nil {
			return domain.Verification{}, err
		}
		if current != nil && current.Rejected {
			return domain.Verification{}, domain.ErrRejected
		}
		return domain.Verification{}, domain.ErrAlreadyVerified
	}

	s.log.Info("meter verified",
		zap.String("customer_id", customerID.String()),
		zap.String("meter_number", verification.MeterNumber),
	)
	return verification, nil
}

func (s *Service) Reject(ctx context.Context, req domain.RejectVerificationRequest) (domain.Verification, error) {
	customerID, err := s.parseID(req.CustomerID)
	if err != nil {
		return domain.Verification{}, err
	}

	reason := strings.TrimSpace(req.Reason)
	if reason == "" {
		return domain.Verification{}, domain.ErrMissingReason
	}

	existing, err := s.repo.FindByCustomerID(ctx, s.db, customerID)
	if err != nil {
		return domain.Verification{}, err
	}
	if existing == nil {
		return domain.Verification{}, domain.ErrNotFound
	}
	if existing.IsVerified {
		return domain.Verification{}, domain.ErrAlreadyVerified
	}

	now := s.clock.Now().UTC()
	verification := *existing
	verification.Rejected = true
	verification.RejectionReason = reason
	verification.RejectedAt = &now
	verification.UpdatedAt = now

	updated, err := s.repo.Reject(ctx, s.db, &verification)
	if err != nil {
		return domain.Verification{}, err
	}
	if !updated {
		return domain.Verification{}, domain.ErrAlreadyVerified
	}

	return verification.Masked(), nil
}

func (s *Service) parseID(value string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || id == 0 {
		return 0, domain.ErrInvalidID
	}
	return id, nil
}
