package offerrule

import (
	"github.com/smallbiznis/optora/internal/offerrule/repository"
	"github.com/smallbiznis/optora/internal/offerrule/service"
	"go.uber.org/fx"
)

var Module = fx.Module("offerrule.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
