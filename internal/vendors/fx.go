package vendors

import (
	"github.com/voltvend/voltvend/internal/vendors/repository"
	"github.com/voltvend/voltvend/internal/vendors/service"
	"go.uber.org/fx"
)

var Module = fx.Module("vendors.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
