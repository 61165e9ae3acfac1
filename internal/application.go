package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/rocketscienceinc/tictactoe-solo/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-solo/internal/config"
	"github.com/rocketscienceinc/tictactoe-solo/internal/lifecycle"
	"github.com/rocketscienceinc/tictactoe-solo/internal/repository"
	"github.com/rocketscienceinc/tictactoe-solo/internal/repository/storage"
	"github.com/rocketscienceinc/tictactoe-solo/internal/service"
	"github.com/rocketscienceinc/tictactoe-solo/internal/tictactoe"
	"github.com/rocketscienceinc/tictactoe-solo/transport/rest"
	"github.com/rocketscienceinc/tictactoe-solo/transport/websocket"
)

const shutdownTimeout = 5 * time.Second

// RunApp - runs the application.
func RunApp(logger *slog.Logger, conf *config.Config) error {
	log := logger.With("component", "app")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	repo, closeStorage, err := newSnapshotRepository(ctx, logger, conf.Storage)
	if err != nil {
		return err
	}
	defer closeStorage()

	firstTurn, err := conf.Game.FirstTurn()
	if err != nil {
		return fmt.Errorf("invalid game config: %w", err)
	}

	signals := lifecycle.NewSignals(logger)

	opts := []tictactoe.Option{
		tictactoe.WithSnapshotKey(conf.Storage.Key),
		tictactoe.WithThinkingDelay(conf.Game.ThinkMin, conf.Game.ThinkMax),
		tictactoe.WithLifecycle(signals),
	}
	if conf.Game.Seed != 0 {
		opts = append(opts,
			tictactoe.WithRand(conf.Game.Seed),
			tictactoe.WithBot(service.NewBotService(conf.Game.Seed)),
		)
	}

	gameManager := tictactoe.NewGameManager(ctx, logger, repo, opts...)

	wsServer := websocket.New(logger, gameManager, conf.AllowedOrigins)
	router := rest.NewRouter(rest.NewHandlers(logger, gameManager), wsServer, conf.AllowedOrigins)
	httpServer := rest.NewServer(conf.HTTPPort, router)

	group, groupCtx := errgroup.WithContext(ctx)

	group.Go(func() error {
		watchSignals(groupCtx, log, signals, cancel)
		return nil
	})

	group.Go(func() error {
		err := gameManager.Run(groupCtx, firstTurn)
		if err == nil || errors.Is(err, context.Canceled) {
			return nil
		}

		return fmt.Errorf("game loop: %w", err)
	})

	group.Go(func() error {
		log.Info("Starting HTTP server", "port", conf.HTTPPort)

		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}

		return nil
	})

	group.Go(func() error {
		<-groupCtx.Done()

		wsServer.Close()

		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancelShutdown()

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("HTTP server shutdown: %w", err)
		}

		return nil
	})

	if err = group.Wait(); err != nil {
		return err
	}

	log.Info("Application stopped")

	return nil
}

type signalListener interface {
	Listen(ctx context.Context) bool
}

// watchSignals blocks until a quit signal or ctx ends. Listen has already
// run the quit hooks when it reports a quit.
func watchSignals(ctx context.Context, log *slog.Logger, listener signalListener, cancel context.CancelFunc) {
	if listener.Listen(ctx) {
		log.Info("Received quit signal, shutting down")
		cancel()
	}
}

func newSnapshotRepository(
	ctx context.Context, logger *slog.Logger, conf config.Storage,
) (repository.SnapshotRepository, func(), error) {
	log := logger.With("component", "app", "backend", conf.Backend)

	switch conf.Backend {
	case config.BackendRedis:
		redisStorage, err := storage.NewRedisStorage(ctx, conf.Redis.GetRedisAddr())
		if err != nil {
			return nil, nil, fmt.Errorf("could not connect to redis storage: %w", err)
		}

		closer := func() {
			if err := redisStorage.Close(); err != nil {
				log.Error("could not close redis storage", "error", err)
			}
		}

		return repository.NewSnapshotRepository(redisStorage.Connection), closer, nil

	case config.BackendSQLite:
		sqliteStorage, err := storage.NewSQLiteStorage(conf.SQLitePath)
		if err != nil {
			return nil, nil, fmt.Errorf("could not open sqlite storage: %w", err)
		}

		closer := func() {
			if err := sqliteStorage.Close(); err != nil {
				log.Error("could not close sqlite storage", "error", err)
			}
		}

		if err = sqliteStorage.Init(ctx); err != nil {
			closer()
			return nil, nil, fmt.Errorf("could not init sqlite storage: %w", err)
		}

		return repository.NewSQLiteSnapshotRepository(sqliteStorage.Connection), closer, nil

	case config.BackendFile:
		repo, err := repository.NewFileSnapshotRepository(conf.FileDir)
		if err != nil {
			return nil, nil, fmt.Errorf("could not open file storage: %w", err)
		}

		return repo, func() {}, nil

	default:
		return nil, nil, fmt.Errorf("%w: %q", apperror.ErrUnknownBackend, conf.Backend)
	}
}
