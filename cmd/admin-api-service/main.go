package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"shopadmin/internal/adminapi"
	"shopadmin/pkg/accounts"
	"shopadmin/pkg/config"
	"shopadmin/pkg/db"
	"shopadmin/pkg/groups"
	"shopadmin/pkg/logger"
	"shopadmin/pkg/seed"
	"shopadmin/pkg/session"
	"shopadmin/pkg/shops"
)

func main() {
	cfg := config.Load()
	log := logger.New(cfg.Env)
	defer log.Sync()

	pool := db.MustConnect(cfg, log)

	var (
		shopStore    shops.Store
		groupStore   groups.Store
		accountStore accounts.Store
	)
	if pool != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		if err := shops.EnsureSchema(ctx, pool); err != nil {
			log.Fatalw("shops schema", "err", err)
		}
		if err := groups.EnsureSchema(ctx, pool); err != nil {
			log.Fatalw("groups schema", "err", err)
		}
		if err := accounts.EnsureSchema(ctx, pool); err != nil {
			log.Fatalw("accounts schema", "err", err)
		}
		cancel()
		shopStore = shops.NewPostgresStore(pool, log)
		groupStore = groups.NewPostgresStore(pool, log)
		accountStore = accounts.NewPostgresStore(pool, log)
	} else {
		log.Warnw("DATABASE_URL not set, using in-memory stores for dev")
		shopStore = shops.NewMemoryStore(log)
		groupStore = groups.NewMemoryStore(log)
		accountStore = accounts.NewMemoryStore(log)
	}

	if err := seed.ApplyFile(context.Background(), cfg.SeedFile, shopStore, groupStore, accountStore, log); err != nil {
		log.Warnw("seed failed", "file", cfg.SeedFile, "err", err)
	}

	var sessStore session.Store = session.NewMemoryStore()
	if rdb := db.MustRedis(cfg, log); rdb != nil {
		sessStore = session.NewRedisStore(rdb, cfg.SessionTTL)
	}
	sessions := session.NewManager(sessStore, cfg.AuthSettleTimeout)

	app := adminapi.New(log, cfg, shopStore, groupStore, accountStore, sessions)

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: app.Handler()}
	go func() {
		log.Infow("admin-api listening", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalw("ListenAndServe", "err", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(ctx)
	log.Infow("admin-api stopped")
}
