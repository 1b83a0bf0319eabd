package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/ariefcatur/go-catalog-api/internal/catalog"
	"github.com/ariefcatur/go-catalog-api/internal/config"
	"github.com/ariefcatur/go-catalog-api/internal/events"
	"github.com/ariefcatur/go-catalog-api/internal/httpx"
	kafkax "github.com/ariefcatur/go-catalog-api/internal/kafka"
	"github.com/ariefcatur/go-catalog-api/internal/orders"
	"github.com/ariefcatur/go-catalog-api/internal/postgres"
	"github.com/ariefcatur/go-catalog-api/internal/redisx"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := postgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("db connect")
	}
	defer db.Close()

	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	ordersProd := kafkax.NewProducer(cfg.KafkaBrokers, events.TopicOrders, 1024)
	ordersProd.Start(ctx)
	productsProd := kafkax.NewProducer(cfg.KafkaBrokers, events.TopicProducts, 1024)
	productsProd.Start(ctx)

	catalogRepo := &catalog.Repo{DB: db}
	orderNotifier := &events.OrderNotifier{
		Emitter: &events.Emitter{Producer: ordersProd, Service: cfg.ServiceName},
	}
	svc := orders.NewService(&orders.PGRepo{DB: db}, catalogRepo, orderNotifier, cfg.TaxRate)

	router := httpx.NewRouter()
	oh := &httpx.OrdersHandler{Service: svc, Redis: rdb}
	oh.Register(router)
	ch := &httpx.CatalogHandler{
		Repo:    catalogRepo,
		Emitter: &events.Emitter{Producer: productsProd, Service: cfg.ServiceName},
		Redis:   rdb,
	}
	ch.Register(router)

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router}

	go func() {
		log.Info().Str("addr", cfg.HTTPAddr).Msg("HTTP listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("listen")
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Info().Msg("shutting down")

	ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel2()
	_ = srv.Shutdown(ctx2)
	ordersProd.Close() // stop accepting, flush remaining events
	productsProd.Close()
	cancel()
	ordersProd.WaitClosed()
	productsProd.WaitClosed()
}
