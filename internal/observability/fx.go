package observability

import (
	"github.com/smallbiznis/optora/internal/observability/metrics"
	"go.uber.org/fx"
)

// Module wires metrics instruments.
var Module = fx.Module("observability",
	fx.Provide(
		metrics.NewHTTPMetrics,
		metrics.NewEngineMetrics,
	),
)
