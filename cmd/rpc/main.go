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
	"github.com/ariefcatur/go-catalog-api/internal/httpx"
	"github.com/ariefcatur/go-catalog-api/internal/postgres"
	"github.com/ariefcatur/go-catalog-api/internal/rpcx"
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

	router := httpx.NewRouter()
	h := &rpcx.Handler{Repo: &catalog.Repo{DB: db}}
	h.Register(router)

	srv := &http.Server{Addr: cfg.RPCAddr, Handler: router}

	go func() {
		log.Info().Str("addr", cfg.RPCAddr).Msg("rpc listening")
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
}
