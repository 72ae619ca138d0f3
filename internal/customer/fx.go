package customer

import (
	"github.com/voltvend/voltvend/internal/customer/repository"
	"github.com/voltvend/voltvend/internal/customer/service"
	"go.uber.org/fx"
)

var Module = fx.Module("customer.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
