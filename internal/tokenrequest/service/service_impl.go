package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
	"github.com/voltvend/voltvend/internal/actorctx"
	"github.com/voltvend/voltvend/internal/clock"
	"github.com/voltvend/voltvend/internal/config"
	customerdomain "github.com/voltvend/voltvend/internal/customer/domain"
	"github.com/voltvend/voltvend/internal/notify"
	obsmetrics "github.com/voltvend/voltvend/internal/observability/metrics"
	paymentdomain "github.com/voltvend/voltvend/internal/payment/domain"
	pricingdomain "github.com/voltvend/voltvend/internal/pricing/domain"
	tokendomain "github.com/voltvend/voltvend/internal/token/domain"
	"github.com/voltvend/voltvend/internal/tokenrequest/domain"
	vendordomain "github.com/voltvend/voltvend/internal/vendors/domain"
	verificationdomain "github.com/voltvend/voltvend/internal/verification/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB      *gorm.DB
	Log     *zap.Logger
	GenID   *snowflake.Node
	Clock   clock.Clock
	Metrics *obsmetrics.Metrics `optional:"true"`

	Publisher notify.Publisher      `optional:"true"`
	Policy    *config.PolicyHolder  `optional:"true"`
	Provider  paymentdomain.Provider

	Repo          domain.Repository
	Customers     customerdomain.Repository
	Vendors       vendordomain.Repository
	Pricing       pricingdomain.Repository
	Verifications verificationdomain.Repository
	Tokens        tokendomain.Repository
}

type Service struct {
	db      *gorm.DB
	log     *zap.Logger
	genID   *snowflake.Node
	clock   clock.Clock
	metrics *obsmetrics.Metrics

	publisher notify.Publisher
	policy    *config.PolicyHolder
	provider  paymentdomain.Provider

	repo          domain.Repository
	customers     customerdomain.Repository
	vendors       vendordomain.Repository
	pricing       pricingdomain.Repository
	verifications verificationdomain.Repository
	tokens        tokendomain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:            p.DB,
		log:           p.Log.Named("tokenrequest.service"),
		genID:         p.GenID,
		clock:         p.Clock,
		metrics:       p.Metrics,
		publisher:     p.Publisher,
		policy:        p.Policy,
		provider:      p.Provider,
		repo:          p.Repo,
		customers:     p.Customers,
		vendors:       p.Vendors,
		pricing:       p.Pricing,
		verifications: p.Verifications,
		tokens:        p.Tokens,
	}
}

// Create snapshots the disco price into the request. The amount never
// changes afterwards, whatever happens to the pricing table.
func (s *Service) Create(ctx context.Context, req domain.CreateRequest) (domain.TokenRequest, error) {
	vendorID, ok := actorctx.VendorIDFromContext(ctx)
	if !ok {
		return domain.TokenRequest{}, domain.ErrInvalidCustomer
	}

	customerID, err := snowflake.ParseString(strings.TrimSpace(req.CustomerID))
	if err != nil || customerID == 0 {
		return domain.TokenRequest{}, domain.ErrInvalidCustomer
	}
	policy := config.DefaultVendingPolicy()
	if s.policy != nil {
		policy = s.policy.Get()
	}
	if policy.VendingPaused {
		return domain.TokenRequest{}, domain.ErrVendingPaused
	}
	if req.Units < policy.MinUnitsPerRequest || req.Units > policy.MaxUnitsPerRequest {
		return domain.TokenRequest{}, domain.ErrInvalidUnits
	}

	customer, err := s.customers.FindByID(ctx, s.db, customerID)
	if err != nil {
		return domain.TokenRequest{}, err
	}
	if customer == nil || customer.VendorID != vendorID {
		return domain.TokenRequest{}, domain.ErrInvalidCustomer
	}

	price, err := s.pricing.FindByDisco(ctx, s.db, customer.Disco)
	if err != nil {
		return domain.TokenRequest{}, err
	}
	if price == nil {
		return domain.TokenRequest{}, domain.ErrPriceNotSet
	}

	now := s.clock.Now().UTC()
	request := domain.TokenRequest{
		ID:          s.genID.Generate(),
		VendorID:    vendorID,
		CustomerID:  customerID,
		MeterNumber: customer.MeterNumber,
		Disco:       customer.Disco,
		Units:       req.Units,
		UnitPrice:   price.PricePerUnit,
		Amount:      req.Units * price.PricePerUnit,
		Status:      domain.StatusInitiated,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repo.Insert(ctx, s.db, &request); err != nil {
		return domain.TokenRequest{}, err
	}

	s.recordTransition(ctx, request)
	return request, nil
}

func (s *Service) SelectPaymentMethod(ctx context.Context, req domain.SelectPaymentMethodRequest) (domain.SelectPaymentMethodResponse, error) {
	request, err := s.loadOwned(ctx, req.ID)
	if err != nil {
		return domain.SelectPaymentMethodResponse{}, err
	}
	if request.Status != domain.StatusInitiated {
		return domain.SelectPaymentMethodResponse{}, domain.ErrInvalidState
	}

	method := paymentdomain.Method(strings.ToUpper(strings.TrimSpace(req.Method)))
	if !paymentdomain.ValidMethod(method) {
		return domain.SelectPaymentMethodResponse{}, domain.ErrInvalidMethod
	}

	now := s.clock.Now().UTC()
	updated := *request
	updated.Status = domain.StatusPaymentPending
	updated.PaymentMethod = string(method)
	updated.UpdatedAt = now

	var authorizationURL string
	switch method {
	case paymentdomain.MethodGateway:
		updated.PaymentReference = ulid.Make().String()

		vendor, err := s.vendors.FindByID(ctx, s.db, request.VendorID)
		if err != nil {
			return domain.SelectPaymentMethodResponse{}, err
		}
		if vendor == nil {
			return domain.SelectPaymentMethodResponse{}, domain.ErrNotFound
		}

		init, err := s.provider.Initialize(ctx, paymentdomain.InitializeRequest{
			Reference: updated.PaymentReference,
			Amount:    updated.Amount,
			Email:     vendor.Email,
		})
		if err != nil {
			return domain.SelectPaymentMethodResponse{}, err
		}
		authorizationURL = init.AuthorizationURL
	case paymentdomain.MethodBankTransfer:
		updated.PaymentReference = uuid.NewString()
	}

	moved, err := s.repo.Transition(ctx, s.db, &updated, domain.StatusInitiated)
	if err != nil {
		return domain.SelectPaymentMethodResponse{}, err
	}
	if !moved {
		return domain.SelectPaymentMethodResponse{}, domain.ErrInvalidState
	}

	s.recordTransition(ctx, updated)
	return domain.SelectPaymentMethodResponse{
		Request:          updated,
		AuthorizationURL: authorizationURL,
	}, nil
}

func (s *Service) ConfirmPayment(ctx context.Context, req domain.ConfirmPaymentRequest) (domain.TokenRequest, error) {
	request, err := s.loadOwned(ctx, req.ID)
	if err != nil {
		return domain.TokenRequest{}, err
	}
	if request.Status != domain.StatusPaymentPending {
		return domain.TokenRequest{}, domain.ErrInvalidState
	}

	if request.PaymentMethod == string(paymentdomain.MethodGateway) {
		result, err := s.provider.Verify(ctx, request.PaymentReference)
		if err != nil {
			return domain.TokenRequest{}, err
		}
		if result.Amount != request.Amount {
			return domain.TokenRequest{}, domain.ErrAmountMismatch
		}
	}

	now := s.clock.Now().UTC()
	updated := *request
	updated.Status = domain.StatusPaymentConfirmed
	updated.PaymentAt = &now
	updated.UpdatedAt = now

	moved, err := s.repo.Transition(ctx, s.db, &updated, domain.StatusPaymentPending)
	if err != nil {
		return domain.TokenRequest{}, err
	}
	if !moved {
		return domain.TokenRequest{}, domain.ErrInvalidState
	}

	s.recordTransition(ctx, updated)
	return updated, nil
}

func (s *Service) ConfirmGatewayPayment(ctx context.Context, reference string, amount int64) (domain.TokenRequest, error) {
	reference = strings.TrimSpace(reference)
	if reference == "" {
		return domain.TokenRequest{}, domain.ErrInvalidReference
	}

	request, err := s.repo.FindByReference(ctx, s.db, reference)
	if err != nil {
		return domain.TokenRequest{}, err
	}
	if request == nil {
		return domain.TokenRequest{}, domain.ErrInvalidReference
	}

	// Gateways retry webhooks; a request already past confirmation is fine.
	switch request.Status {
	case domain.StatusPaymentConfirmed, domain.StatusAdminApproved, domain.StatusIssued:
		return *request, nil
	case domain.StatusPaymentPending:
	default:
		return domain.TokenRequest{}, domain.ErrInvalidState
	}

	if request.PaymentMethod != string(paymentdomain.MethodGateway) {
		return domain.TokenRequest{}, domain.ErrInvalidState
	}
	if amount != request.Amount {
		return domain.TokenRequest{}, domain.ErrAmountMismatch
	}

	now := s.clock.Now().UTC()
	updated := *request
	updated.Status = domain.StatusPaymentConfirmed
	updated.PaymentAt = &now
	updated.UpdatedAt = now

	moved, err := s.repo.Transition(ctx, s.db, &updated, domain.StatusPaymentPending)
	if err != nil {
		return domain.TokenRequest{}, err
	}
	if !moved {
		current, err := s.repo.FindByID(ctx, s.db, request.ID)
		if err != nil {
			return domain.TokenRequest{}, err
		}
		if current != nil {
			switch current.Status {
			case domain.StatusPaymentConfirmed, domain.StatusAdminApproved, domain.StatusIssued:
				return *current, nil
			}
		}
		return domain.TokenRequest{}, domain.ErrInvalidState
	}

	s.recordTransition(ctx, updated)
	return updated, nil
}

func (s *Service) Cancel(ctx context.Context, req domain.CancelRequest) (domain.TokenRequest, error) {
	request, err := s.loadOwned(ctx, req.ID)
	if err != nil {
		return domain.TokenRequest{}, err
	}

	switch request.Status {
	case domain.StatusInitiated, domain.StatusPaymentPending, domain.StatusPaymentConfirmed:
	default:
		return domain.TokenRequest{}, domain.ErrInvalidState
	}

	now := s.clock.Now().UTC()
	updated := *request
	updated.Status = domain.StatusCanceled
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

func (s *Service) loadOwned(ctx context.Context, rawID string) (*domain.TokenRequest, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(rawID))
	if err != nil || id == 0 {
		return nil, domain.ErrInvalidID
	}

	request, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if request == nil {
		return nil, domain.ErrNotFound
	}

	if actor, ok := actorctx.FromContext(ctx); ok && actor.Role != actorctx.RoleAdmin && request.VendorID != actor.VendorID {
		return nil, domain.ErrNotFound
	}
	return request, nil
}

func (s *Service) recordTransition(ctx context.Context, request domain.TokenRequest) {
	s.metrics.RecordTransition(string(request.Status))
	if s.publisher != nil {
		s.publisher.PublishTransition(ctx, notify.Event{
			RequestID: request.ID,
			VendorID:  request.VendorID,
			Status:    string(request.Status),
			At:        request.UpdatedAt,
		})
	}
	s.log.Info("request transition",
		zap.String("request_id", request.ID.String()),
		zap.String("status", string(request.Status)),
	)
}
