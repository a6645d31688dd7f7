package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/freekieb7/hearth/apps/calculator"
	"github.com/freekieb7/hearth/apps/pages"
	"github.com/freekieb7/hearth/apps/tasks"
	"github.com/freekieb7/hearth/config"
	"github.com/freekieb7/hearth/http"
	"github.com/freekieb7/hearth/telemetry"
)

func main() {
	if err := run(context.Background(), os.Args[1:]); err != nil {
		log.Fatalln(err)
	}
}

func run(ctx context.Context, args []string) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(args, os.Getenv, os.Stderr)
	if err != nil {
		return err
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	if cfg.Telemetry {
		tel, err := telemetry.Setup(ctx, cfg.ServiceName)
		if err != nil {
			return err
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := tel.Shutdown(shutdownCtx); err != nil {
				log.Printf("telemetry shutdown: %v", err)
			}
		}()
		logger = tel.Logger
	}
	slog.SetDefault(logger)

	todo, err := tasks.NewHandler(tasks.NewFileStore(cfg.TasksFile), filepath.Join(cfg.PagesRoot, "index.html"), logger)
	if err != nil {
		return err
	}

	about, err := pages.NewHandler(cfg.PagesRoot, map[string]string{
		"/about": "about.html",
	})
	if err != nil {
		return err
	}

	server, err := http.NewServer(http.Config{
		Workers:       cfg.Workers,
		PublicRoot:    cfg.PublicRoot,
		NotFoundPage:  cfg.NotFoundPage,
		ReadTimeout:   cfg.ReadTimeout,
		WriteTimeout:  cfg.WriteTimeout,
		LegacyFraming: cfg.LegacyFraming,
		Logger:        logger,
	},
		http.Wrap(todo, http.Recover()),
		http.Wrap(calculator.NewHandler(), http.Recover(), http.Only(http.MethodGet)),
		http.Wrap(about, http.Recover(), http.Only(http.MethodGet, http.MethodHead)),
	)
	if err != nil {
		return err
	}

	serverErrCh := make(chan error, 1)
	go func() {
		serverErrCh <- server.ListenAndServe(ctx, cfg.Addr)
	}()

	select {
	case err := <-serverErrCh:
		return err
	case <-ctx.Done():
		stop()
	}

	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-serverErrCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
