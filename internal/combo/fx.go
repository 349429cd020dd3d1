package combo

import (
	"github.com/smallbiznis/optora/internal/combo/repository"
	"github.com/smallbiznis/optora/internal/combo/service"
	"go.uber.org/fx"
)

var Module = fx.Module("combo.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
