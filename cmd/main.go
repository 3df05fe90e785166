package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/gavran-magic/order-service/docs"
	"github.com/gavran-magic/order-service/internal/app"
	"github.com/gavran-magic/order-service/internal/config"
	"github.com/gavran-magic/order-service/internal/handler"
	"github.com/gavran-magic/order-service/internal/postgres"
	"github.com/gavran-magic/order-service/internal/region"
	"github.com/gavran-magic/order-service/internal/repo"
	"github.com/gavran-magic/order-service/internal/service"
	"github.com/gavran-magic/order-service/internal/shiprocket"
	"github.com/gavran-magic/order-service/pkg/cache"
	"github.com/gavran-magic/order-service/pkg/trm"

	"github.com/joho/godotenv"
)

// @title           Gavran Magic Order API
// @version         1.0
// @description     Order placement and fulfillment for the Gavran Magic storefront
func main() {
	conf := config.New()
	logger := newLogger(conf.Env)
	panicIfErr("invalid config", conf.Validate())

	db, err := postgres.New(conf.Postgres)
	panicIfErr("failed to connect to db", err)
	defer db.Close()
	logger.Info("postgres connected")

	storeRepo := repo.NewPostgresRepo(db)
	txManager := trm.NewManager(db)
	orderCache := cache.NewLRUCache(conf.Cache.Capacity, conf.Cache.TTL)
	carrier := shiprocket.New(logger, conf.Shiprocket)

	orderService := service.NewOrderService(logger, txManager, storeRepo, orderCache, carrier, region.Default(), conf.Shipping)
	productService := service.NewProductService(logger, storeRepo)

	kafkaHandler := handler.NewKafkaHandler(logger, conf.Kafka, orderService)
	httpHandler := handler.NewHTTPHandler(logger, orderService)
	productHandler := handler.NewProductHandler(logger, productService)

	handler.RegisterMetrics()

	app := app.New(logger, conf)

	app.SetHTTPHandlers(httpHandler, productHandler)
	app.SetConsumers(kafkaHandler)
	app.SetStarters(orderCache, catalogSeedAdapter{svc: productService})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	panicIfErr("failed to start app", app.Start(ctx))
	<-ctx.Done()
	panicIfErr("failed to stop app", app.Stop())
}

func init() {
	godotenv.Load()
}

func newLogger(env string) *slog.Logger {
	switch env {
	case "production":
		return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	default:
		return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
}

func panicIfErr(prefix string, err error) {
	if err != nil {
		panic(prefix + ": " + err.Error())
	}
}

type catalogSeeder interface {
	SeedDefaultCatalog(ctx context.Context) error
}

type catalogSeedAdapter struct {
	svc catalogSeeder
}

func (a catalogSeedAdapter) Start(ctx context.Context) error {
	return a.svc.SeedDefaultCatalog(ctx)
}
