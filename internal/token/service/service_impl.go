package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/voltvend/voltvend/internal/actorctx"
	"github.com/voltvend/voltvend/internal/token/domain"
	"github.com/voltvend/voltvend/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB   *gorm.DB
	Log  *zap.Logger
	Repo domain.Repository
}

type Service struct {
	db   *gorm.DB
	log  *zap.Logger
	repo domain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:   p.DB,
		log:  p.Log.Named("token.service"),
		repo: p.Repo,
	}
}

func (s *Service) ListByMeter(ctx context.Context, req domain.ListTokenRequest) (domain.ListTokenResponse, error) {
	meter := strings.TrimSpace(req.MeterNumber)
	if meter == "" {
		return domain.ListTokenResponse{}, domain.ErrInvalidMeter
	}

	filter := domain.ListTokenFilter{MeterNumber: meter}
	if actor, ok := actorctx.FromContext(ctx); ok && actor.Role != actorctx.RoleAdmin {
		filter.VendorID = actor.VendorID
	}

	pageSize := req.PageSize
	if pageSize <= 0 {
		pageSize = 50
	}

	items, err := s.repo.ListByMeter(ctx, s.db, filter, pagination.Pagination{
		PageToken: req.PageToken,
		PageSize:  int(pageSize),
	})
	if err != nil {
		return domain.ListTokenResponse{}, err
	}

	pageInfo := pagination.BuildCursorPageInfo(items, pageSize, func(token *domain.Token) string {
		cursor, err := pagination.EncodeCursor(pagination.Cursor{
			ID:        token.ID.String(),
			CreatedAt: token.CreatedAt.Format(time.RFC3339),
		})
		if err != nil {
			return ""
		}
		return cursor
	})
	if pageInfo != nil && pageInfo.HasMore && len(items) > int(pageSize) {
		items = items[:pageSize]
	}

	tokens := make([]domain.Token, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		tokens = append(tokens, *item)
	}

	resp := domain.ListTokenResponse{Tokens: tokens}
	if pageInfo != nil {
		resp.PageInfo = *pageInfo
	}
	return resp, nil
}

func (s *Service) GetByRequestID(ctx context.Context, req domain.GetTokenRequest) (domain.Token, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(req.TokenRequestID))
	if err != nil || id == 0 {
		return domain.Token{}, domain.ErrInvalidID
	}

	token, err := s.repo.FindByRequestID(ctx, s.db, id)
	if err != nil {
		return domain.Token{}, err
	}
	if token == nil {
		return domain.Token{}, domain.ErrNotFound
	}

	if actor, ok := actorctx.FromContext(ctx); ok && actor.Role != actorctx.RoleAdmin && token.VendorID != actor.VendorID {
		return domain.Token{}, domain.ErrNotFound
	}
	return *token, nil
}
