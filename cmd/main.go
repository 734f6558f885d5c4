package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/thomas-vilte/promptcache/internal/cli/app"
	cfg "github.com/thomas-vilte/promptcache/internal/config"
	"github.com/thomas-vilte/promptcache/internal/i18n"
	"github.com/thomas-vilte/promptcache/internal/infrastructure/di"
	"github.com/thomas-vilte/promptcache/internal/ui"
)

func main() {
	cfgApp, err := cfg.Load()
	if err != nil {
		ui.HandleAppError(os.Stderr, err, nil)
		os.Exit(1)
	}

	translations, err := i18n.NewTranslations(cfgApp.Language, "")
	if err != nil {
		log.Fatalf("Error loading translations: %v", err)
	}

	container := di.NewContainer(cfgApp, translations)

	root, err := app.New(container)
	if err != nil {
		log.Fatalf("Error starting the cli: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Commands report their own errors.
	if err := root.Run(ctx, os.Args); err != nil {
		stop()
		os.Exit(1)
	}
}
