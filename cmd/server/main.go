package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/cardapioweb/activation-board/internal/api"
	"github.com/cardapioweb/activation-board/internal/automigrate"
	"github.com/cardapioweb/activation-board/internal/boardconfig"
	"github.com/cardapioweb/activation-board/internal/calendar"
	"github.com/cardapioweb/activation-board/internal/calsync"
	"github.com/cardapioweb/activation-board/internal/config"
	"github.com/cardapioweb/activation-board/internal/store"
	"github.com/cardapioweb/activation-board/internal/ws"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	loc, err := time.LoadLocation(cfg.Calendar.Timezone)
	if err != nil {
		log.Fatalf("load timezone %q: %v", cfg.Calendar.Timezone, err)
	}

	var kv boardconfig.KV
	if cfg.DatabaseURL != "" {
		db, err := store.Open(cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("open database: %v", err)
		}
		defer db.Close()
		if err := automigrate.Run(db, cfg.MigrationsDir); err != nil {
			log.Fatalf("migrate: %v", err)
		}
		kv = store.NewKVStore(db)
	} else {
		log.Printf("DATABASE_URL not set, board configuration will not survive restarts")
		kv = store.NewMemoryKV()
	}
	configs := boardconfig.NewClient(kv)

	client, err := calendar.NewClient(cfg.Calendar.ID, calendar.Credentials{
		ClientID:     cfg.Calendar.ClientID,
		ClientSecret: cfg.Calendar.ClientSecret,
		RefreshToken: cfg.Calendar.RefreshToken,
	}, calendarOptions(cfg)...)
	if err != nil {
		log.Fatalf("calendar client: %v", err)
	}

	hub := ws.NewHub()
	go hub.Run()

	schedule, err := calsync.ParseSchedule(cfg.PollInterval, cfg.PollCron)
	if err != nil {
		log.Fatalf("poll schedule: %v", err)
	}

	engine := calsync.NewEngine(client, configs,
		calsync.WithNotifier(&ws.BoardNotifier{Hub: hub}),
		calsync.WithSchedule(schedule),
		calsync.WithLocation(loc),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go engine.Start(ctx)

	router := api.NewRouter(api.Deps{
		Engine:    engine,
		Source:    client,
		Configs:   configs,
		Hub:       hub,
		OrgDomain: cfg.OrgDomain,
		Location:  loc,
	})

	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	log.Printf("activation board listening on port %s", cfg.Port)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("server failed: %v", err)
	}
}

func calendarOptions(cfg config.Config) []calendar.Option {
	var opts []calendar.Option
	if cfg.Calendar.BaseURL != "" {
		opts = append(opts, calendar.WithBaseURL(cfg.Calendar.BaseURL))
	}
	if cfg.Calendar.TokenURL != "" {
		opts = append(opts, calendar.WithTokenURL(cfg.Calendar.TokenURL))
	}
	if cfg.Calendar.Timezone != "" {
		opts = append(opts, calendar.WithTimezone(cfg.Calendar.Timezone))
	}
	return opts
}
