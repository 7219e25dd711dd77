// realmd runs the development recipe API server.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/reciperealm/reciperealm-v2/client/config"
	"github.com/reciperealm/reciperealm-v2/client/internal/devserver"
	"github.com/reciperealm/reciperealm-v2/client/internal/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(1)
	}

	log := logger.New(logger.Config{
		Environment: cfg.Log.Environment,
		Level:       logger.ParseLevel(cfg.Log.Level),
	})

	secret := cfg.Server.JWTSecret
	if secret == "" {
		secret = "dev-only-secret"
		log.Warn("RECIPEREALM_JWT_SECRET not set, using development default")
	}

	db, err := devserver.OpenDatabase(cfg.Server.DBDriver, cfg.Server.DBDSN)
	if err != nil {
		log.Error("opening database", "error", err)
		os.Exit(1)
	}

	srv, err := devserver.NewServer(db, devserver.Options{
		Addr:      cfg.Server.Addr,
		JWTSecret: secret,
		RedisAddr: cfg.Server.RedisAddr,
		Logger:    log,
	})
	if err != nil {
		log.Error("building server", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := srv.Start(ctx); err != nil {
		log.Error("server stopped", "error", err)
		os.Exit(1)
	}
}
