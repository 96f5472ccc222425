package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/GreenLED99/PlasmaBot/internal/config"
	"github.com/GreenLED99/PlasmaBot/internal/console"
	"github.com/GreenLED99/PlasmaBot/internal/discord"
	"github.com/GreenLED99/PlasmaBot/internal/dispatcher"
	"github.com/GreenLED99/PlasmaBot/internal/enablement"
	"github.com/GreenLED99/PlasmaBot/internal/permissions"
	"github.com/GreenLED99/PlasmaBot/internal/plugin"
	"github.com/GreenLED99/PlasmaBot/internal/plugins/custom"
	"github.com/GreenLED99/PlasmaBot/internal/plugins/moderation"
	"github.com/GreenLED99/PlasmaBot/internal/plugins/permsplugin"
	"github.com/GreenLED99/PlasmaBot/internal/plugins/standard"
	"github.com/GreenLED99/PlasmaBot/internal/plugins/utilities"
	"github.com/GreenLED99/PlasmaBot/internal/registry"
	"github.com/GreenLED99/PlasmaBot/internal/router"
	"github.com/GreenLED99/PlasmaBot/internal/storage"
)

// Exit codes for the supervising process: a plain shutdown exits 0, a
// restart request exits 10 so the supervisor relaunches.
const (
	exitShutdown = 0
	exitRestart  = 10
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg := config.New()
	log.Printf("[INFO] Starting %s...", cfg.BotName)

	store, err := storage.New(cfg.StoragePath)
	if err != nil {
		log.Fatal(err)
	}

	settings := config.NewSettings(store, cfg)
	perms := permissions.New(store, cfg.Owners)

	bot, err := discord.New(cfg)
	if err != nil {
		log.Fatal(err)
	}
	perms.Native = bot.NativeResolver()

	reg := registry.New()
	filter := enablement.New(reg, store)
	rt := router.New(reg, perms, filter, settings, bot.Gateway())
	rt.SetErrorLogger(bot.ErrorLogger())

	term := console.New(rt, settings, bot.Gateway(), os.Stdin, os.Stdout)

	runtime := &plugin.Runtime{
		Permissions: perms,
		Settings:    settings,
		Storage:     store,
		Gateway:     bot.Gateway(),
	}
	reg.LoadAll(runtime, []plugin.Plugin{
		standard.New(term),
		moderation.New(),
		permsplugin.New(),
		utilities.New(),
		custom.New(),
	})

	disp := dispatcher.New(reg, filter, rt)

	errCh := make(chan error, 1)
	go func() {
		if err := bot.Run(ctx, disp, rt); err != nil {
			errCh <- err
		}
		close(errCh)
	}()
	go term.Run(ctx)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)

	exitCode := exitShutdown
	select {
	case s := <-sig:
		log.Printf("[INFO] Received signal %s, shutting down...", s)
	case err := <-errCh:
		if err != nil {
			log.Println("[ERR] Discord bot error:", err)
		}
	case err := <-rt.Signals():
		if errors.Is(err, plugin.ErrRestart) {
			log.Println("[INFO] Restart requested")
			exitCode = exitRestart
		} else {
			log.Println("[INFO] Shutdown requested")
		}
	}
	cancel()

	disp.Wait()
	if err := store.Close(); err != nil {
		log.Println("[WARN] Failed to close storage:", err)
	}
	log.Printf("[INFO] %s exited cleanly", cfg.BotName)
	os.Exit(exitCode)
}
