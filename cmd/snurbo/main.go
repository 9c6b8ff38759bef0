package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"snurbo/internal/cache"
	"snurbo/internal/config"
	"snurbo/internal/discord"
	"snurbo/internal/gate"
	"snurbo/internal/ollama"
	"snurbo/internal/orchestrator"
	"snurbo/internal/prompt"
	"snurbo/internal/respond"
	"snurbo/internal/session"
	"snurbo/internal/tracker"
)

func main() {
	log.Println("[INFO] Starting snurbo...")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.New()
	if err != nil {
		log.Fatal(err)
	}

	backend := ollama.NewClient(cfg.OllamaURL, cfg.DefaultModel)
	backend.SelectModel(ctx)
	if !backend.Healthy(ctx) {
		log.Printf("[WARN] inference backend not reachable at %s, will keep probing", cfg.OllamaURL)
	}

	activity := tracker.New()
	activity.StartSweeps(ctx)

	sessions := session.NewStore(cfg.MaxContextMessages, cfg.ResponseChance)
	sessions.StartSweep(ctx)

	orch := orchestrator.New(
		backend,
		cache.New(),
		sessions,
		prompt.NewBuilder(),
		respond.NewProcessor(nil),
		nil, // knowledge base disabled until an indexer is wired up
		cfg.BotName,
	)

	admission := gate.New(gate.DefaultConfig(cfg.BotName), activity, sessions)

	bot, err := discord.NewBot(cfg, admission, activity, sessions, orch)
	if err != nil {
		log.Fatal(err)
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- bot.Run(ctx)
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)

	select {
	case s := <-sig:
		log.Printf("[INFO] Received signal %s, shutting down...", s)
		cancel()
		<-errCh
	case err := <-errCh:
		if err != nil {
			log.Println("[ERR] Discord bot error:", err)
		}
		cancel()
	}

	log.Println("[INFO] snurbo exited cleanly")
}
