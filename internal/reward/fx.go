package reward

import (
	"github.com/smallbiznis/optora/internal/reward/service"
	"go.uber.org/fx"
)

var Module = fx.Module("reward.service",
	fx.Provide(service.New),
)
