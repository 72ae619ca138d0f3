package verification

import (
	"github.com/voltvend/voltvend/internal/verification/repository"
	"github.com/voltvend/voltvend/internal/verification/service"
	"go.uber.org/fx"
)

var Module = fx.Module("verification.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
