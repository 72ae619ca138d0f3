package pricing

import (
	"github.com/voltvend/voltvend/internal/pricing/repository"
	"github.com/voltvend/voltvend/internal/pricing/service"
	"go.uber.org/fx"
)

var Module = fx.Module("pricing.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
