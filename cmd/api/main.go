package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/alexcjwei/llms-play-spyfall/internal/bot"
	"github.com/alexcjwei/llms-play-spyfall/internal/config"
	"github.com/alexcjwei/llms-play-spyfall/internal/game"
	"github.com/alexcjwei/llms-play-spyfall/internal/notify"
	"github.com/alexcjwei/llms-play-spyfall/internal/server"
	"github.com/alexcjwei/llms-play-spyfall/internal/ws"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	if err := godotenv.Load(); err != nil {
		log.Printf("[Main] no .env file loaded: %v", err)
	}
	cfg, err := config.Parse()
	if err != nil {
		log.Fatalf("[Main] configuration error: %v", err)
	}

	if cfg.BotProvider != "scripted" && cfg.AnthropicAPIKey == "" {
		log.Printf("[Main] ANTHROPIC_API_KEY not set, bots use scripted decisions")
	}
	gateway, err := bot.SelectGateway(cfg.BotProvider, cfg.AnthropicAPIKey, cfg.AnthropicModel)
	if err != nil {
		log.Fatalf("[Main] bot gateway: %v", err)
	}

	hub := ws.NewHub(cfg.AllowedOrigin)
	observers := []game.Observer{hub}

	var publisher *notify.Publisher
	if cfg.NATSURL != "" {
		publisher, err = notify.Connect(cfg.NATSURL)
		if err != nil {
			log.Fatalf("[Main] NATS: %v", err)
		}
		defer publisher.Close()
		observers = append(observers, publisher)
		log.Printf("[Main] mirroring session events to NATS at %s", cfg.NATSURL)
	}

	store := game.NewStore(game.Config{
		Gateway:         gateway,
		Observer:        game.CombineObservers(observers...),
		BotTimeout:      cfg.BotTimeout,
		BotMinDelay:     cfg.BotMinDelay,
		BotMaxDelay:     cfg.BotMaxDelay,
		DefaultDuration: cfg.DefaultDuration,
	})
	hub.SetStore(store)
	go store.Run()
	defer store.Stop()

	srv := server.NewServer(cfg, store, hub)

	done := make(chan os.Signal, 1)
	signal.Notify(done, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		log.Printf("[Main] listening on %s (bots=%s)", srv.Addr, cfg.BotProvider)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("[Main] http server: %v", err)
		}
	}()

	<-done
	log.Println("[Main] shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("[Main] shutdown: %v", err)
	}
}
