package ruleset

import "go.uber.org/fx"

var Module = fx.Module("ruleset.loader",
	fx.Provide(New),
)
