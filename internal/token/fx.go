package token

import (
	"github.com/voltvend/voltvend/internal/token/repository"
	"github.com/voltvend/voltvend/internal/token/service"
	"go.uber.org/fx"
)

var Module = fx.Module("token.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
