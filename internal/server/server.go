package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/alexcjwei/llms-play-spyfall/internal/config"
	"github.com/alexcjwei/llms-play-spyfall/internal/game"
	"github.com/alexcjwei/llms-play-spyfall/internal/ws"
)

type Server struct {
	port  int
	cfg   config.Config
	store *game.Store
	hub   *ws.Hub
}

func NewServer(cfg config.Config, store *game.Store, hub *ws.Hub) *http.Server {
	s := &Server{
		port:  cfg.Port,
		cfg:   cfg,
		store: store,
		hub:   hub,
	}
	return &http.Server{
		Addr:         fmt.Sprintf(":%d", s.port),
		Handler:      s.RegisterRoutes(),
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
}
