package categorydiscount

import (
	"github.com/smallbiznis/optora/internal/categorydiscount/repository"
	"github.com/smallbiznis/optora/internal/categorydiscount/service"
	"go.uber.org/fx"
)

var Module = fx.Module("categorydiscount.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
