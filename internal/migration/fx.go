package migration

import (
	"strings"

	"github.com/voltvend/voltvend/internal/config"
	customerdomain "github.com/voltvend/voltvend/internal/customer/domain"
	pricingdomain "github.com/voltvend/voltvend/internal/pricing/domain"
	"github.com/voltvend/voltvend/internal/seed"
	tokendomain "github.com/voltvend/voltvend/internal/token/domain"
	tokenrequestdomain "github.com/voltvend/voltvend/internal/tokenrequest/domain"
	vendordomain "github.com/voltvend/voltvend/internal/vendors/domain"
	verificationdomain "github.com/voltvend/voltvend/internal/verification/domain"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config) error {
		if strings.EqualFold(cfg.DBType, "postgres") {
			sqlDB, err := conn.DB()
			if err != nil {
				return err
			}
			if err := RunMigrations(sqlDB); err != nil {
				return err
			}
		} else {
			// sqlite and mysql are for local runs; gorm owns the schema there.
			if err := conn.AutoMigrate(
				&vendordomain.Vendor{},
				&vendordomain.UpgradeIntent{},
				&customerdomain.Customer{},
				&verificationdomain.Verification{},
				&pricingdomain.DiscoPrice{},
				&tokenrequestdomain.TokenRequest{},
				&tokendomain.Token{},
			); err != nil {
				return err
			}
		}

		if cfg.SeedDiscoPrices {
			return seed.EnsureDefaultDiscoPrices(conn)
		}
		return nil
	}),
)
