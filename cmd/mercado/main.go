package main

import (
	"github.com/cenergia/mercado/internal/clock"
	"github.com/cenergia/mercado/internal/comparison"
	"github.com/cenergia/mercado/internal/config"
	"github.com/cenergia/mercado/internal/ingest"
	"github.com/cenergia/mercado/internal/logger"
	"github.com/cenergia/mercado/internal/migration"
	"github.com/cenergia/mercado/internal/observability/metrics"
	"github.com/cenergia/mercado/internal/server"
	"github.com/cenergia/mercado/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		// Core infrastructure
		fx.Provide(config.Load),
		logger.Module,
		db.Module,
		clock.Module,
		metrics.Module,
		migration.Module,

		// Functional domains
		ingest.Module,
		comparison.Module,

		// HTTP surface
		server.Module,
	)

	app.Run()
}
