package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	comparisondomain "github.com/cenergia/mercado/internal/comparison/domain"
	"github.com/cenergia/mercado/internal/config"
	ingestdomain "github.com/cenergia/mercado/internal/ingest/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var Module = fx.Module("http.server",
	fx.Provide(NewEngine),
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

// NewEngine builds the gin engine with the shared middleware chain.
func NewEngine(log *zap.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestLogger(log))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func run(lc fx.Lifecycle, r *gin.Engine, cfg config.Config, log *zap.Logger) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				log.Info("http server listening", zap.String("addr", cfg.HTTPAddr))
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Fatal("http server failed", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

// Server holds the HTTP handlers and their dependencies.
type Server struct {
	engine        *gin.Engine
	cfg           config.Config
	db            *gorm.DB
	ingestSvc     ingestdomain.Service
	comparisonSvc comparisondomain.Service
	log           *zap.Logger
}

type ServerParams struct {
	fx.In

	Gin           *gin.Engine
	Cfg           config.Config
	DB            *gorm.DB
	IngestSvc     ingestdomain.Service
	ComparisonSvc comparisondomain.Service
	Log           *zap.Logger
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:        p.Gin,
		cfg:           p.Cfg,
		db:            p.DB,
		ingestSvc:     p.IngestSvc,
		comparisonSvc: p.ComparisonSvc,
		log:           p.Log.Named("server"),
	}

	svc.registerAPIRoutes()

	return svc
}

func (s *Server) registerAPIRoutes() {
	api := s.engine.Group("/api/v1/mercado")

	api.POST("/demanda", s.UpsertDemand)
	api.POST("/demanda/batch", s.UpsertDemandBatch)
	api.GET("/demanda/current-day", s.CurrentDayDemand)
	api.GET("/demanda/comparison", s.DemandComparison)
	api.GET("/demanda/aggregates", s.DemandAggregates)

	api.POST("/mda_mtr/:data_type", s.InsertPriceBatch)
	api.GET("/mda_mtr/:data_type/:fecha", s.PriceDataExists)

	api.POST("/capacidad-transferencia", s.InsertTransferCapacityBatch)

	api.POST("/demanda-real-balance", s.InsertBalanceBatch)
	api.GET("/demanda-real-balance/yearly-peak-comparison", s.YearlyPeakComparison)

	api.POST("/imp-exp-liquidada", s.InsertSettledInterchangeBatch)

	api.GET("/pnd/daily-average", s.PNDDailyAverage)
}
