package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/sourcegraph/conc"
	"github.com/yhkl-dev/PreviewCLI/catalog"
	"github.com/yhkl-dev/PreviewCLI/config"
	"github.com/yhkl-dev/PreviewCLI/coverart"
	"github.com/yhkl-dev/PreviewCLI/device"
	"github.com/yhkl-dev/PreviewCLI/lookup"
	"github.com/yhkl-dev/PreviewCLI/playback"
	"github.com/yhkl-dev/PreviewCLI/player"
	"github.com/yhkl-dev/PreviewCLI/store"
	"github.com/yhkl-dev/PreviewCLI/ui"
	"go.uber.org/multierr"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(args []string) (err error) {
	cfg, err := config.Load(args)
	if err != nil {
		return err
	}

	// tview owns the terminal, so logs go to a file
	logFile, err := os.OpenFile(cfg.Log.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	log.SetOutput(logFile)
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	out, err := player.NewMPVOutput(ctx)
	if err != nil {
		return multierr.Append(fmt.Errorf("failed to start audio output: %w", err), logFile.Close())
	}
	defer func() {
		err = multierr.Combine(err, out.Close(), logFile.Close())
	}()

	client := catalog.NewITunesClient(catalog.Options{
		RelayPrefix: cfg.Catalog.RelayPrefix,
		FeedURL:     cfg.Catalog.FeedURL,
		LookupURL:   cfg.Catalog.LookupURL,
		SearchURL:   cfg.Catalog.SearchURL,
		SearchLimit: cfg.Catalog.SearchLimit,
		Timeout:     cfg.Catalog.GetHTTPTimeout(),
		RateLimit:   cfg.Catalog.RateLimit,
		UserAgent:   cfg.Catalog.UserAgent,
	})

	engine := playback.NewEngine(out, cfg.Player.Volume)

	var finder *lookup.Finder
	if gen, genErr := lookup.NewGeminiGenerator(ctx, cfg.AI.APIKey, cfg.AI.Model); genErr != nil {
		log.Printf("[main] full song lookup disabled: %v", genErr)
		finder = lookup.NewFinder(nil)
	} else {
		finder = lookup.NewFinder(gen)
	}

	st := store.New(ctx, store.Options{
		Catalog:  client,
		Engine:   engine,
		Finder:   finder,
		Debounce: cfg.Search.GetDebounce(),
	})
	defer st.Close()

	app := ui.NewApp(ctx, cfg, st, coverart.NewConverter(coverart.DefaultWidth, coverart.DefaultHeight))

	var wg conc.WaitGroup
	defer wg.Wait()
	defer cancel()

	wg.Go(func() { engine.Run(ctx) })

	if cfg.UI.DeviceMonitor {
		monitor := device.NewAudioMonitor(func(o device.Output) {
			log.Printf("[main] output %q disconnected, pausing", o.Name)
			engine.Pause()
		})
		if monitor.Supported() {
			wg.Go(func() { monitor.Run(ctx) })
		}
	}

	wg.Go(func() {
		<-ctx.Done()
		app.Stop()
	})

	if err := app.Run(); err != nil {
		return fmt.Errorf("ui exited: %w", err)
	}
	engine.Close()
	log.Println("[main] bye")
	return nil
}
