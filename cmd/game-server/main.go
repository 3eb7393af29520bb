package main

import (
	"context"
	"net/http"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"werewolf-arena/internal/app/arena"
	"werewolf-arena/internal/config"
	"werewolf-arena/internal/decider"
	"werewolf-arena/internal/game"
	"werewolf-arena/internal/logging"
	"werewolf-arena/internal/registry"
	"werewolf-arena/internal/snapshot"
	httptransport "werewolf-arena/internal/transport/http"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.LoadApp()
	if err != nil {
		panic(err)
	}
	logging.Init(cfg.Log)

	var snaps *snapshot.Store
	var healthy func() error
	if cfg.Server.PostgresDSN != "" {
		snaps, err = snapshot.New(cfg.Server.PostgresDSN)
		if err != nil {
			log.Fatal().Err(err).Msg("snapshot store init failed")
		}
		if err := snaps.Ping(context.Background()); err != nil {
			log.Fatal().Err(err).Msg("db ping failed")
		}
		if err := snaps.EnsureSchema(context.Background()); err != nil {
			log.Fatal().Err(err).Msg("ensure snapshot schema failed")
		}
		healthy = func() error { return snaps.Ping(context.Background()) }
	} else {
		log.Warn().Msg("POSTGRES_DSN unset, running without snapshot persistence")
	}

	reg := newRegistry(cfg.Game, snaps)
	reg.StartJanitor(context.Background(), cfg.Game.JanitorInterval)

	dec := decider.NewFallback(nil, cfg.Game.DecisionBudget, time.Now().UnixNano())
	eng := game.NewEngine(dec, time.Now().UnixNano())
	svc := arena.NewService(reg, eng, cfg.Game.MaxAutoSteps)

	if snaps != nil {
		restoreSessions(reg, snaps, cfg.Game.SessionTTL)
	}

	r := httptransport.NewRouter(svc, healthy)
	server := &http.Server{
		Addr:              cfg.Server.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	log.Info().Str("addr", cfg.Server.HTTPAddr).Msg("http listening")
	log.Fatal().Err(server.ListenAndServe()).Msg("server stopped")
}

func newRegistry(cfg config.GameConfig, snaps *snapshot.Store) *registry.Registry {
	regCfg := registry.Config{MaxSessions: cfg.MaxSessions, TTL: cfg.SessionTTL}
	if snaps == nil {
		return registry.New(regCfg, nil, nil)
	}
	return registry.New(regCfg, nil, snaps)
}

func restoreSessions(reg *registry.Registry, snaps *snapshot.Store, ttl time.Duration) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	sessions, err := snaps.LoadAllActive(ctx, ttl)
	if err != nil {
		log.Warn().Err(err).Msg("snapshot recovery failed, starting empty")
		return
	}
	n := reg.Restore(sessions)
	log.Info().Int("loaded", len(sessions)).Int("restored", n).Msg("sessions recovered from snapshots")
}
