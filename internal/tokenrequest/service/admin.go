package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/voltvend/voltvend/internal/actorctx"
	tokendomain "github.com/voltvend/voltvend/internal/token/domain"
	"github.com/voltvend/voltvend/internal/tokenrequest/domain"
	"github.com/voltvend/voltvend/pkg/db"
	"github.com/voltvend/voltvend/pkg/db/pagination"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func (s *Service) AdminApprove(ctx context.Context, req domain.ApproveRequest) (domain.TokenRequest, error) {
	request, err := s.loadOwned(ctx, req.ID)
	if err != nil {
		return domain.TokenRequest{}, err
	}
	if request.Status != domain.StatusPaymentConfirmed {
		return domain.TokenRequest{}, domain.ErrInvalidState
	}

	now := s.clock.Now().UTC()
	updated := *request
	updated.Status = domain.StatusAdminApproved
	updated.DecidedAt = &now
	updated.UpdatedAt = now

	moved, err := s.repo.Transition(ctx, s.db, &updated, domain.StatusPaymentConfirmed)
	if err != nil {
		return domain.TokenRequest{}, err
	}
	if !moved {
		return domain.TokenRequest{}, domain.ErrInvalidState
	}

	s.recordTransition(ctx, updated)
	return updated, nil
}

// AdminReject is allowed from PAYMENT_CONFIRMED and, because approval can
// be walked back until a token exists, from ADMIN_APPROVED.
func (s *Service) AdminReject(ctx context.Context, req domain.RejectRequest) (domain.TokenRequest, error) {
	request, err := s.loadOwned(ctx, req.ID)
	if err != nil {
		return domain.TokenRequest{}, err
	}

	switch request.Status {
	case domain.StatusPaymentConfirmed, domain.StatusAdminApproved:
	default:
		return domain.TokenRequest{}, domain.ErrInvalidState
	}

	reason := strings.TrimSpace(req.Reason)
	now := s.clock.Now().UTC()
	updated := *request
	updated.Status = domain.StatusAdminRejected
	updated.RejectionReason = reason
	updated.DecidedAt = &now
	updated.UpdatedAt = now

	moved, err := s.repo.Transition(ctx, s.db, &updated, request.Status)
	if err != nil {
		return domain.TokenRequest{}, err
	}
	if !moved {
		return domain.TokenRequest{}, domain.ErrInvalidState
	}

	s.recordTransition(ctx, updated)
	return updated, nil
}

// Issue finalizes the request and records the token in one transaction.
// Approval and meter verification gate it independently.
func (s *Service) Issue(ctx context.Context, req domain.IssueRequest) (domain.IssueResponse, error) {
	request, err := s.loadOwned(ctx, req.ID)
	if err != nil {
		return domain.IssueResponse{}, err
	}

	if request.Status == domain.StatusIssued {
		return s.issuedResponse(ctx, *request)
	}
	if request.Status != domain.StatusAdminApproved {
		return domain.IssueResponse{}, domain.ErrInvalidState
	}

	value := strings.TrimSpace(req.Value)
	if !tokendomain.ValidValue(value) {
		return domain.IssueResponse{}, domain.ErrInvalidTokenValue
	}

	verification, err := s.verifications.FindByMeter(ctx, s.db, request.MeterNumber)
	if err != nil {
		return domain.IssueResponse{}, err
	}
	if verification == nil || !verification.IsVerified {
		return domain.IssueResponse{}, domain.ErrVerificationRequired
	}

	msn := strings.TrimSpace(req.MSN)
	if msn == "" {
		msn = verification.MSN
	}

	now := s.clock.Now().UTC()
	updated := *request
	updated.Status = domain.StatusIssued
	updated.IssuedAt = &now
	updated.UpdatedAt = now

	issued := tokendomain.Token{
		ID:             s.genID.Generate(),
		TokenRequestID: request.ID,
		VendorID:       request.VendorID,
		CustomerID:     request.CustomerID,
		MeterNumber:    request.MeterNumber,
		Disco:          request.Disco,
		Value:          value,
		MSN:            msn,
		Units:          request.Units,
		Amount:         request.Amount,
		IssuedAt:       now,
		CreatedAt:      now,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		moved, err := s.repo.Transition(ctx, tx, &updated, domain.StatusAdminApproved)
		if err != nil {
			return err
		}
		if !moved {
			return domain.ErrInvalidState
		}

		if err := s.tokens.Insert(ctx, tx, &issued); err != nil {
			if db.IsDuplicateKeyErr(err) {
				return domain.ErrAlreadyIssued
			}
			return err
		}

		return s.customers.UpdateLastToken(ctx, tx, request.CustomerID, value)
	})
	if err != nil {
		if errors.Is(err, domain.ErrInvalidState) || errors.Is(err, domain.ErrAlreadyIssued) {
			current, ferr := s.repo.FindByID(ctx, s.db, request.ID)
			if ferr == nil && current != nil && current.Status == domain.StatusIssued {
				return s.issuedResponse(ctx, *current)
			}
		}
		return domain.IssueResponse{}, err
	}

	s.metrics.RecordTokenIssued()
	s.recordTransition(ctx, updated)
	s.log.Info("token issued",
		zap.String("request_id", request.ID.String()),
		zap.String("meter_number", request.MeterNumber),
	)
	return domain.IssueResponse{Request: updated, Token: issued}, nil
}

// issuedResponse resolves a double issue to the token already on file.
func (s *Service) issuedResponse(ctx context.Context, request domain.TokenRequest) (domain.IssueResponse, error) {
	existing, err := s.tokens.FindByRequestID(ctx, s.db, request.ID)
	if err != nil {
		return domain.IssueResponse{}, err
	}
	if existing == nil {
		return domain.IssueResponse{}, domain.ErrAlreadyIssued
	}
	return domain.IssueResponse{Request: request, Token: *existing}, domain.ErrAlreadyIssued
}

func (s *Service) List(ctx context.Context, req domain.ListRequest) (domain.ListResponse, error) {
	filter := domain.ListFilter{
		MeterNumber: strings.TrimSpace(req.MeterNumber),
	}

	for _, raw := range req.Statuses {
		status := domain.Status(strings.ToUpper(strings.TrimSpace(raw)))
		if status == "" {
			continue
		}
		if !domain.ValidStatus(status) {
			return domain.ListResponse{}, domain.ErrInvalidStatusFilter
		}
		filter.Statuses = append(filter.Statuses, status)
	}

	if actor, ok := actorctx.FromContext(ctx); ok && actor.Role != actorctx.RoleAdmin {
		filter.VendorID = actor.VendorID
	} else if vendorID := strings.TrimSpace(req.VendorID); vendorID != "" {
		id, err := snowflake.ParseString(vendorID)
		if err != nil {
			return domain.ListResponse{}, domain.ErrInvalidID
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
		return domain.ListResponse{}, err
	}

	pageInfo := pagination.BuildCursorPageInfo(items, pageSize, func(request *domain.TokenRequest) string {
		cursor, err := pagination.EncodeCursor(pagination.Cursor{
			ID:        request.ID.String(),
			CreatedAt: request.CreatedAt.Format(time.RFC3339),
		})
		if err != nil {
			return ""
		}
		return cursor
	})
	if pageInfo != nil && pageInfo.HasMore && len(items) > int(pageSize) {
		items = items[:pageSize]
	}

	requests := make([]domain.TokenRequest, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		requests = append(requests, *item)
	}

	resp := domain.ListResponse{Requests: requests}
	if pageInfo != nil {
		resp.PageInfo = *pageInfo
	}
	return resp, nil
}

func (s *Service) GetByID(ctx context.Context, req domain.GetRequest) (domain.TokenRequest, error) {
	request, err := s.loadOwned(ctx, req.ID)
	if err != nil {
		return domain.TokenRequest{}, err
	}
	return *request, nil
}

func (s *Service) CountsByStatus(ctx context.Context) (domain.StatusCounts, error) {
	vendorID, ok := actorctx.VendorIDFromContext(ctx)
	if !ok {
		return nil, domain.ErrNotFound
	}

	counts, err := s.repo.CountByStatus(ctx, s.db, vendorID)
	if err != nil {
		return nil, err
	}
	return domain.StatusCounts(counts), nil
}
