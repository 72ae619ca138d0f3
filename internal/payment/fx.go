package payment

import (
	"strings"

	"github.com/voltvend/voltvend/internal/config"
	"github.com/voltvend/voltvend/internal/payment/domain"
	"github.com/voltvend/voltvend/internal/payment/fake"
	"github.com/voltvend/voltvend/internal/payment/paystack"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// NewProvider selects the gateway adapter from configuration.
// Anything other than "paystack" gets the in-memory fake.
func NewProvider(cfg config.Config, log *zap.Logger) domain.Provider {
	switch strings.ToLower(strings.TrimSpace(cfg.PaymentProvider)) {
	case "paystack":
		return paystack.New(cfg.PaystackSecretKey, cfg.PaystackBaseURL)
	default:
		log.Named("payment").Warn("payment provider not configured, using fake gateway",
			zap.String("provider", cfg.PaymentProvider))
		return fake.New(cfg.PaystackSecretKey)
	}
}

var Module = fx.Module("payment",
	fx.Provide(NewProvider),
)
