package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"bubblevoyage/internal/audio"
	"bubblevoyage/internal/feed"
	"bubblevoyage/internal/game"
	"bubblevoyage/internal/hud"
	"bubblevoyage/internal/journal"
	"bubblevoyage/internal/logger"
	"bubblevoyage/internal/reply"
	"bubblevoyage/internal/settings"
	"bubblevoyage/internal/sim"

	"golang.org/x/sync/errgroup"
)

// The viewer's window must live on the main thread.
func init() { runtime.LockOSThread() }

func main() {
	cfg, err := loadConfig(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}
	if err := run(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(cfg config) error {
	log := logger.New("bubblevoyage")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	prefs := settings.NewManager(cfg.SettingsPath, logger.New("settings"))
	if err := prefs.Load(); err != nil {
		return err
	}

	var replies reply.Provider = reply.Offline{}
	if cfg.GeminiKey != "" {
		var opts []reply.GeminiOption
		if cfg.GeminiModel != "" {
			opts = append(opts, reply.WithModel(cfg.GeminiModel))
		}
		replies = reply.NewGeminiProvider(cfg.GeminiKey, opts...)
	} else {
		log.Warn("GEMINI_API_KEY not set, arrivals use the canned reply")
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}

	engine := audio.NewEngine(audio.WithLogger(logger.New("audio")), audio.WithSeed(seed))
	defer engine.Close()

	opts := []game.Option{
		game.WithLogger(logger.New("game")),
		game.WithReplyProvider(replies),
		game.WithSettings(prefs.Get()),
		game.WithRNG(sim.NewRand(seed)),
	}
	var history feed.History
	if cfg.JournalPath != "" {
		store, err := journal.Open(cfg.JournalPath)
		if err != nil {
			return err
		}
		defer store.Close()
		opts = append(opts, game.WithRecorder(store))
		history = store
	}

	session := game.NewSession(engine, opts...)
	defer session.Close()
	ctrl := &persistingSession{Session: session, prefs: prefs, log: log}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return game.NewRunner(session, game.WithRunnerLogger(logger.New("runner"))).Run(gctx)
	})

	if cfg.Addr != "" {
		srvOpts := []feed.ServerOption{feed.WithLogger(logger.New("feed")), feed.WithCatalog(session.Catalog())}
		if history != nil {
			srvOpts = append(srvOpts, feed.WithHistory(history))
		}
		srv := feed.NewServer(ctrl, srvOpts...)
		session.Bus().SubscribeAll(srv.OnEvent)
		httpSrv := &http.Server{Addr: cfg.Addr, Handler: srv.Handler(), ReadHeaderTimeout: 5 * time.Second}

		g.Go(func() error { return srv.Run(gctx) })
		g.Go(func() error {
			log.Info("feed listening on %s", cfg.Addr)
			if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("feed server: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return httpSrv.Shutdown(shutdownCtx)
		})
	}

	session.Bus().Subscribe(game.EventPhaseChanged, func(e game.Event) {
		log.Info("phase %s", e.Phase)
	})

	if !cfg.Headless {
		viewer := hud.NewViewer(ctrl, session.Catalog(), game.Letter{SenderName: cfg.Sender, Content: cfg.Letter}, logger.New("hud"))
		err := viewer.Run(gctx)
		switch {
		case errors.Is(err, hud.ErrUnavailable):
			log.Warn("no display support in this build, running headless")
		case err != nil:
			stop()
			g.Wait()
			return err
		default:
			// Closing the window ends the program.
			stop()
		}
	}

	return g.Wait()
}
