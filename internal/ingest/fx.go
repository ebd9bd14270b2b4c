package ingest

import (
	"github.com/cenergia/mercado/internal/ingest/repository"
	"github.com/cenergia/mercado/internal/ingest/service"
	"go.uber.org/fx"
)

var Module = fx.Module("ingest.service",
	fx.Provide(
		repository.New,
		service.NewService,
	),
)
