package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/Pesokrava/storefront/internal/config"
	"github.com/Pesokrava/storefront/internal/pkg/database"
	"github.com/Pesokrava/storefront/internal/pkg/logger"
)

func usage() {
	fmt.Fprintf(os.Stderr, "Usage: migrate [-timeout 2m] <up|down|status|redo|version|reset|up-to VERSION|down-to VERSION>\n")
	flag.PrintDefaults()
}

func main() {
	timeout := flag.Duration("timeout", 2*time.Minute, "maximum time to run the command")
	flag.Usage = usage
	flag.Parse()

	if flag.NArg() < 1 {
		usage()
		os.Exit(2)
	}
	command, args := flag.Arg(0), flag.Args()[1:]

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	appLogger := logger.NewWithLevel(cfg.Env, cfg.LogLevel).Named("migrate")

	db, err := database.WaitForDB(cfg, 5, 2*time.Second)
	if err != nil {
		appLogger.Fatal("Failed to connect to database", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	if err := database.Migrate(ctx, db, command, args...); err != nil {
		appLogger.Error("Migration failed", err)
		db.Close()
		os.Exit(1)
	}

	appLogger.WithFields(map[string]any{
		"command": command,
		"args":    args,
	}).Info("Migration command finished")
}
