package comparison

import (
	"github.com/cenergia/mercado/internal/comparison/service"
	"go.uber.org/fx"
)

var Module = fx.Module("comparison.service",
	fx.Provide(service.NewService),
)
