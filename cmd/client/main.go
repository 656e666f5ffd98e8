package main

import (
	"context"
	"log"
	"os"

	"github.com/dmitrijs2005/recruitme/internal/client/cli"
	"github.com/dmitrijs2005/recruitme/internal/client/config"
	"github.com/dmitrijs2005/recruitme/internal/client/credstore"
	"github.com/dmitrijs2005/recruitme/internal/cryptox"
	"github.com/dmitrijs2005/recruitme/internal/filex"
	"github.com/dmitrijs2005/recruitme/internal/logging"

	_ "modernc.org/sqlite"
)

func main() {

	cfg := config.LoadConfig()

	logger, err := logging.New(cfg.LogBackend, cfg.LogLevel, os.Stderr)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	if s, ok := logger.(interface{ Sync() error }); ok {
		defer func() { _ = s.Sync() }()
	}

	if err := filex.EnsureDatabaseDir(cfg.DatabasePath); err != nil {
		log.Fatalf("%v", err)
	}

	hasher, err := cryptox.NewPasswordHasher(cfg.PasswordScheme)
	if err != nil {
		log.Fatalf("%v", err)
	}

	store := credstore.New(cfg.DatabasePath,
		credstore.WithLogger(logger),
		credstore.WithHasher(hasher),
		credstore.WithJournalMode(cfg.JournalMode),
		credstore.WithBusyTimeout(cfg.BusyTimeout),
	)

	app := cli.NewApp(cfg, store, logger)
	if err := app.Run(context.Background()); err != nil {
		log.Printf("%v", err)
	}

}
