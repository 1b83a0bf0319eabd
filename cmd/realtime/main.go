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

	"github.com/ariefcatur/go-catalog-api/internal/config"
	"github.com/ariefcatur/go-catalog-api/internal/events"
	"github.com/ariefcatur/go-catalog-api/internal/httpx"
	kafkax "github.com/ariefcatur/go-catalog-api/internal/kafka"
	"github.com/ariefcatur/go-catalog-api/internal/mongox"
	"github.com/ariefcatur/go-catalog-api/internal/realtime"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	client, err := mongox.Connect(ctx, cfg.MongoURI)
	if err != nil {
		log.Fatal().Err(err).Msg("mongo connect")
	}
	defer func() { _ = client.Disconnect(context.Background()) }()

	hub := realtime.NewHub()
	go hub.Run(ctx)

	store := &realtime.Store{DB: client.Database(cfg.MongoDB)}
	router := httpx.NewRouter()
	h := &realtime.Handler{Store: store, Hub: hub}
	h.Register(router)

	// bridge order change events from the relational API to ws clients
	bridge := &realtime.Bridge{Hub: hub}
	consumer := kafkax.NewConsumer(cfg.KafkaBrokers, "realtime-push", events.TopicOrders, 2)
	go func() {
		if err := consumer.Start(ctx, bridge.Handle); err != nil {
			log.Error().Err(err).Msg("consumer stopped")
		}
	}()

	srv := &http.Server{Addr: cfg.RealtimeAddr, Handler: router}

	go func() {
		log.Info().Str("addr", cfg.RealtimeAddr).Msg("realtime listening")
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
	cancel()
}
