package tokenrequest

import (
	"github.com/voltvend/voltvend/internal/tokenrequest/repository"
	"github.com/voltvend/voltvend/internal/tokenrequest/service"
	"go.uber.org/fx"
)

var Module = fx.Module("tokenrequest.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
