package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/voltvend/voltvend/internal/clock"
	"github.com/voltvend/voltvend/internal/pricing/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Clock clock.Clock
	Repo  domain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	clock clock.Clock
	repo  domain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("pricing.service"),
		genID: p.GenID,
		clock: p.Clock,
		repo:  p.Repo,
	}
}

func (s *Service) SetPrice(ctx context.Context, req domain.SetPriceRequest) (domain.DiscoPrice, error) {
	disco := strings.ToUpper(strings.TrimSpace(req.Disco))
	if !domain.ValidDisco(disco) {
		return domain.DiscoPrice{}, domain.ErrInvalidDisco
	}
	if req.PricePerUnit < 0 {
		return domain.DiscoPrice{}, domain.ErrInvalidPrice
	}

	now := s.clock.Now().UTC()
	price := domain.DiscoPrice{
		ID:           s.genID.Generate(),
		Disco:        disco,
		PricePerUnit: req.PricePerUnit,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.repo.Upsert(ctx, s.db, &price); err != nil {
		return domain.DiscoPrice{}, err
	}

	// The upsert may have kept the existing row's identity.
	stored, err := s.repo.FindByDisco(ctx, s.db, disco)
	if err != nil {
		return domain.DiscoPrice{}, err
	}
	if stored == nil {
		return price, nil
	}
	return *stored, nil
}

func (s *Service) GetByDisco(ctx context.Context, req domain.GetPriceRequest) (domain.DiscoPrice, error) {
	disco := strings.ToUpper(strings.TrimSpace(req.Disco))
	if !domain.ValidDisco(disco) {
		return domain.DiscoPrice{}, domain.ErrInvalidDisco
	}

	price, err := s.repo.FindByDisco(ctx, s.db, disco)
	if err != nil {
		return domain.DiscoPrice{}, err
	}
	if price == nil {
		return domain.DiscoPrice{}, domain.ErrNotFound
	}
	return *price, nil
}

func (s *Service) List(ctx context.Context) (domain.ListPricesResponse, error) {
	items, err := s.repo.List(ctx, s.db)
	if err != nil {
		return domain.ListPricesResponse{}, err
	}

	prices := make([]domain.DiscoPrice, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		prices = append(prices, *item)
	}
	return domain.ListPricesResponse{Prices: prices}, nil
}
