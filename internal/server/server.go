package server

import (
	"context"
	"net/http"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/voltvend/voltvend/internal/actorctx"
	"github.com/voltvend/voltvend/internal/config"
	"github.com/voltvend/voltvend/internal/customer"
	customerdomain "github.com/voltvend/voltvend/internal/customer/domain"
	"github.com/voltvend/voltvend/internal/notify"
	"github.com/voltvend/voltvend/internal/observability"
	obslogger "github.com/voltvend/voltvend/internal/observability/logger"
	obsmetrics "github.com/voltvend/voltvend/internal/observability/metrics"
	obstracing "github.com/voltvend/voltvend/internal/observability/tracing"
	"github.com/voltvend/voltvend/internal/payment"
	paymentdomain "github.com/voltvend/voltvend/internal/payment/domain"
	"github.com/voltvend/voltvend/internal/pricing"
	pricingdomain "github.com/voltvend/voltvend/internal/pricing/domain"
	"github.com/voltvend/voltvend/internal/ratelimit"
	"github.com/voltvend/voltvend/internal/token"
	tokendomain "github.com/voltvend/voltvend/internal/token/domain"
	"github.com/voltvend/voltvend/internal/tokenrequest"
	tokenrequestdomain "github.com/voltvend/voltvend/internal/tokenrequest/domain"
	"github.com/voltvend/voltvend/internal/vendors"
	vendordomain "github.com/voltvend/voltvend/internal/vendors/domain"
	"github.com/voltvend/voltvend/internal/verification"
	verificationdomain "github.com/voltvend/voltvend/internal/verification/domain"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("http.server",
	fx.Provide(registerGin),
	notify.Module,
	ratelimit.Module,
	payment.Module,
	vendors.Module,
	customer.Module,
	verification.Module,
	pricing.Module,
	token.Module,
	tokenrequest.Module,
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obslogger.GinMiddleware(obslogger.MiddlewareConfig{
		Debug:           obsCfg.Debug(),
		ErrorClassifier: classifyErrorForLog,
	}))
	r.Use(obstracing.GinMiddleware())
	r.Use(obsmetrics.GinMiddleware(httpMetrics))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func registerGin(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	return NewEngine(obsCfg, httpMetrics)
}

func run(lc fx.Lifecycle, r *gin.Engine) {
	srv := &http.Server{
		Addr:    ":8080",
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					panic(err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine          *gin.Engine
	cfg             config.Config
	db              *gorm.DB
	genID           *snowflake.Node
	vendorSvc       vendordomain.Service
	customerSvc     customerdomain.Service
	verificationSvc verificationdomain.Service
	pricingSvc      pricingdomain.Service
	tokenSvc        tokendomain.Service
	tokenRequestSvc tokenrequestdomain.Service
	paymentProvider paymentdomain.Provider
	rateLimiter     *ratelimit.Limiter
	obsMetrics      *obsmetrics.Metrics
}

type ServerParams struct {
	fx.In

	Gin             *gin.Engine
	Cfg             config.Config
	DB              *gorm.DB
	GenID           *snowflake.Node
	VendorSvc       vendordomain.Service
	CustomerSvc     customerdomain.Service
	VerificationSvc verificationdomain.Service
	PricingSvc      pricingdomain.Service
	TokenSvc        tokendomain.Service
	TokenRequestSvc tokenrequestdomain.Service
	PaymentProvider paymentdomain.Provider
	RateLimiter     *ratelimit.Limiter  `optional:"true"`
	ObsMetrics      *obsmetrics.Metrics `optional:"true"`
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:          p.Gin,
		cfg:             p.Cfg,
		db:              p.DB,
		genID:           p.GenID,
		vendorSvc:       p.VendorSvc,
		customerSvc:     p.CustomerSvc,
		verificationSvc: p.VerificationSvc,
		pricingSvc:      p.PricingSvc,
		tokenSvc:        p.TokenSvc,
		tokenRequestSvc: p.TokenRequestSvc,
		paymentProvider: p.PaymentProvider,
		rateLimiter:     p.RateLimiter,
		obsMetrics:      p.ObsMetrics,
	}

	svc.registerAPIRoutes()
	svc.registerAdminRoutes()
	svc.registerWebhookRoutes()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerAPIRoutes() {
	api := s.engine.Group("/api")
	api.Use(s.AuthRequired(), s.RequireRole(actorctx.RoleVendor), ratelimit.GinMiddleware(s.rateLimiter))

	api.POST("/customers", s.RegisterCustomer)
	api.GET("/customers", s.ListCustomers)
	api.GET("/customers/count", s.CountCustomers)
	api.GET("/customers/:id", s.GetCustomer)

	api.GET("/verifications/:meter_number", s.GetVerification)

	api.GET("/prices", s.ListPrices)

	api.POST("/token-requests", s.CreateTokenRequest)
	api.GET("/token-requests", s.ListTokenRequests)
	api.GET("/token-requests/counts", s.CountTokenRequests)
	api.GET("/token-requests/:id", s.GetTokenRequest)
	api.POST("/token-requests/:id/payment-method", s.SelectPaymentMethod)
	api.POST("/token-requests/:id/confirm-payment", s.ConfirmPayment)
	api.POST("/token-requests/:id/cancel", s.CancelTokenRequest)

	api.GET("/tokens", s.ListTokensByMeter)

	api.POST("/upgrade", s.RequestUpgrade)
	api.GET("/usage", s.VendorUsage)
}

func (s *Server) registerAdminRoutes() {
	admin := s.engine.Group("/admin")
	admin.Use(s.AuthRequired(), s.RequireRole(actorctx.RoleAdmin))

	admin.POST("/vendors", s.CreateVendor)
	admin.GET("/vendors", s.ListVendors)
	admin.GET("/vendors/:id", s.GetVendor)
	admin.POST("/vendors/:id/approve", s.ApproveVendor)
	admin.POST("/vendors/:id/apply-upgrade", s.ApplyUpgrade)

	admin.GET("/customers", s.ListCustomers)
	admin.GET("/customers/:id", s.GetCustomer)
	admin.POST("/customers/:id/verify", s.SubmitVerification)
	admin.POST("/customers/:id/reject-verification", s.RejectVerification)

	admin.GET("/verifications/:meter_number", s.GetVerification)

	admin.GET("/prices", s.ListPrices)
	admin.PUT("/prices/:disco", s.SetDiscoPrice)

	admin.GET("/token-requests", s.ListTokenRequests)
	admin.GET("/token-requests/:id", s.GetTokenRequest)
	admin.POST("/token-requests/:id/approve", s.ApproveTokenRequest)
	admin.POST("/token-requests/:id/reject", s.RejectTokenRequest)
	admin.POST("/token-requests/:id/issue", s.IssueToken)

	admin.GET("/tokens", s.ListTokensByMeter)
}

func (s *Server) registerWebhookRoutes() {
	s.engine.POST("/api/payments/webhooks/paystack", s.PaystackWebhook)
}
