// cmd/discord/main.go
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/keshon/server-imouto/internal/command/affection"
	_ "github.com/keshon/server-imouto/internal/command/chat"
	_ "github.com/keshon/server-imouto/internal/command/core"

	"github.com/keshon/server-imouto/internal/ai"
	"github.com/keshon/server-imouto/internal/config"
	"github.com/keshon/server-imouto/internal/discord"
	"github.com/keshon/server-imouto/internal/engine"
	"github.com/keshon/server-imouto/internal/storage"
	v "github.com/keshon/server-imouto/internal/version"
)

func main() {
	log.Printf("[INFO] Starting %v bot...", v.AppName)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg := config.New()

	store, err := storage.New(cfg.StoragePath)
	if err != nil {
		log.Fatal(err)
	}
	defer store.Close()

	// Two independent provider instances: persona voice and exchange judge.
	chatProvider, err := ai.NewProvider(cfg)
	if err != nil {
		log.Fatal(err)
	}
	judgeProvider, err := ai.NewProvider(cfg)
	if err != nil {
		log.Fatal(err)
	}

	eng := engine.New(store, chatProvider, judgeProvider)

	errCh := make(chan error, 1)
	go func() {
		if err := discord.StartBot(ctx, cfg, store, eng); err != nil {
			errCh <- err
		}
		close(errCh)
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)

	select {
	case s := <-sig:
		log.Printf("[INFO] Received signal %s, shutting down...\n", s)
		cancel()
	case err := <-errCh:
		if err != nil {
			log.Println("[ERR] Discord bot error:", err)
		}
		cancel()
	case <-ctx.Done():
	}

	log.Println("[INFO] Discord bot exited cleanly")
}
