package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/stockroomhq/warehouse-backend/api/controllers"
	"github.com/stockroomhq/warehouse-backend/api/routes"
	"github.com/stockroomhq/warehouse-backend/internal/categories"
	"github.com/stockroomhq/warehouse-backend/internal/orders"
	"github.com/stockroomhq/warehouse-backend/internal/products"
	"github.com/stockroomhq/warehouse-backend/internal/sequence"
	"github.com/stockroomhq/warehouse-backend/internal/statistics"
	"github.com/stockroomhq/warehouse-backend/internal/stock"
	"github.com/stockroomhq/warehouse-backend/pkg/config"
	"github.com/stockroomhq/warehouse-backend/pkg/db"
	"github.com/stockroomhq/warehouse-backend/pkg/logger"
	"github.com/stockroomhq/warehouse-backend/pkg/metrics"
	"github.com/stockroomhq/warehouse-backend/pkg/migrate"
	"github.com/stockroomhq/warehouse-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	pingers := map[string]controllers.Pinger{"database": dbClient}

	// the statistics cache is optional; without redis the dashboard hits the db
	var statsCache statistics.Cache
	if cfg.Redis.Enabled() {
		redisClient, err := redis.New(context.Background(), cfg.Redis)
		if err != nil {
			logg.Error(context.Background(), "failed to bootstrap redis", err)
			os.Exit(1)
		}
		defer func() {
			if err := redisClient.Close(); err != nil {
				logg.Error(context.Background(), "error closing redis", err)
			}
		}()
		statsCache = redisClient
		pingers["redis"] = redisClient
	}

	m := metrics.New()
	conn := dbClient.DB()

	stockSvc, err := stock.NewService(stock.NewRepository(conn))
	if err != nil {
		logg.Error(context.Background(), "failed to create stock service", err)
		os.Exit(1)
	}

	allocator, err := sequence.NewAllocator(sequence.NewRepository(conn))
	if err != nil {
		logg.Error(context.Background(), "failed to create sequence allocator", err)
		os.Exit(1)
	}

	productsRepo := products.NewRepository(conn)

	categoriesSvc, err := categories.NewService(categories.NewRepository(conn), productsRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create categories service", err)
		os.Exit(1)
	}

	productsSvc, err := products.NewService(products.Deps{
		Repo:       productsRepo,
		Tx:         dbClient,
		Ledger:     stockSvc,
		Categories: categoriesSvc,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create products service", err)
		os.Exit(1)
	}

	ordersSvc, err := orders.NewService(orders.Deps{
		Repo:      orders.NewRepository(conn),
		Tx:        dbClient,
		Sequences: allocator,
		Ledger:    stockSvc,
		Products:  productsSvc,
		Metrics:   m,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create orders service", err)
		os.Exit(1)
	}

	statisticsSvc, err := statistics.NewService(statistics.NewRepository(conn), statsCache, logg, cfg.Statistics)
	if err != nil {
		logg.Error(context.Background(), "failed to create statistics service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port

	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.Deps{
			Logger:     logg,
			Metrics:    m,
			Orders:     ordersSvc,
			Stock:      stockSvc,
			Products:   productsSvc,
			Categories: categoriesSvc,
			Statistics: statisticsSvc,
			Pingers:    pingers,
		}),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
